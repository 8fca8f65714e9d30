package tools

import "github.com/BaSui01/headerflow/mcp"

// JSON Schema 片段复用
func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

var resolutionProperty = map[string]any{
	"type":        "string",
	"enum":        []string{"1k", "2k", "4k"},
	"default":     "2k",
	"description": "分辨率档位",
}

var styleCategoryProperty = map[string]any{
	"type":        "string",
	"enum":        []string{"business", "social", "artistic", "nature", "tech", "casual"},
	"description": "风格类别",
}

func createImageDefinition() *mcp.ToolDefinition {
	return &mcp.ToolDefinition{
		Name:        "create_image",
		Description: "生成通用方形图片 (1:1 比例)，适合头像、图标、社交媒体帖子",
		InputSchema: objectSchema(map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "图片描述，用简单的语言描述你想要的图片",
			},
			"style_category": styleCategoryProperty,
			"resolution":     resolutionProperty,
			"width": map[string]any{
				"type":        "integer",
				"description": "自定义宽度（像素），需与 height 一并给出；超出上游限制时会按比例归一化",
			},
			"height": map[string]any{
				"type":        "integer",
				"description": "自定义高度（像素），需与 width 一并给出",
			},
		}, "prompt"),
	}
}

func createWeChatHeaderDefinition() *mcp.ToolDefinition {
	return &mcp.ToolDefinition{
		Name:        "create_wechat_header",
		Description: "生成微信公众号头图 (2.35:1 比例)，使用官方推荐尺寸",
		InputSchema: objectSchema(map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "头图描述，描述你想要的公众号头图内容",
			},
			"style_category": styleCategoryProperty,
			"resolution":     resolutionProperty,
		}, "prompt"),
	}
}

func queryGenerationTaskDefinition() *mcp.ToolDefinition {
	return &mcp.ToolDefinition{
		Name:        "query_generation_task",
		Description: "查询异步生成任务的状态与结果",
		InputSchema: objectSchema(map[string]any{
			"task_id": map[string]any{
				"type":        "string",
				"description": "提交生成时返回的任务 ID",
			},
		}, "task_id"),
	}
}

func cropImageToURLDefinition() *mcp.ToolDefinition {
	return &mcp.ToolDefinition{
		Name:        "crop_image_to_url",
		Description: "将图片裁剪到指定比例，支持参数、Base64、压缩三种输出格式",
		InputSchema: objectSchema(map[string]any{
			"original_image_url": map[string]any{
				"type":        "string",
				"description": "原始图片URL",
			},
			"target_ratio": map[string]any{
				"type":        "number",
				"default":     2.35,
				"description": "目标宽高比 (2.35为微信头图, 1.0为正方形, 1.91为社交媒体横幅)",
			},
			"output_format": map[string]any{
				"type":        "string",
				"enum":        []string{"params", "base64", "compressed"},
				"default":     "params",
				"description": "输出格式",
			},
		}, "original_image_url"),
	}
}

func getStyleSuggestionsDefinition() *mcp.ToolDefinition {
	return &mcp.ToolDefinition{
		Name:        "get_style_suggestions",
		Description: "根据内容类型和情感需求推荐艺术风格",
		InputSchema: objectSchema(map[string]any{
			"content_type": map[string]any{
				"type":        "string",
				"enum":        []string{"business", "social", "artistic", "nature", "tech", "casual"},
				"description": "内容类型",
			},
			"mood": map[string]any{
				"type":        "string",
				"enum":        []string{"professional", "friendly", "creative"},
				"description": "情感倾向",
			},
		}, "content_type"),
	}
}

func listDimensionPresetsDefinition() *mcp.ToolDefinition {
	return &mcp.ToolDefinition{
		Name:        "list_dimension_presets",
		Description: "列出所有命名尺寸预设及其像素尺寸",
		InputSchema: objectSchema(map[string]any{}),
	}
}
