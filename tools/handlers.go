package tools

import (
	"context"
	"fmt"

	"github.com/BaSui01/headerflow/crop"
	"github.com/BaSui01/headerflow/dimension"
	"github.com/BaSui01/headerflow/jimeng"
	"github.com/BaSui01/headerflow/prompt"
)

// 常见比例的中文描述
var ratioDescriptions = map[float64]string{
	2.35:     "微信头图标准",
	1.0:      "正方形",
	1.91:     "社交媒体横幅",
	16.0 / 9: "宽屏视频",
	4.0 / 3:  "传统照片",
}

// buildPrompt 按配置优化提示词, 并追加所选风格类别的首个推荐风格
func (r *Registry) buildPrompt(userPrompt string, useCase prompt.UseCase, style string) string {
	optimized := userPrompt
	if r.optimize {
		optimized = prompt.Optimize(userPrompt, useCase)
	}
	if style != "" {
		if advice := prompt.Suggestions(style, ""); len(advice.Styles) > 0 {
			optimized += ", " + advice.Styles[0]
		}
	}
	return optimized
}

// handleCreateImage 生成图片。缺省 1:1 方形；显式传入 width/height 时
// 尺寸先经过归一化再提交。
func (r *Registry) handleCreateImage(ctx context.Context, args map[string]any) (any, error) {
	userPrompt, err := requireString(args, "prompt")
	if err != nil {
		return nil, err
	}
	tier := dimension.Tier(stringArg(args, "resolution", string(r.defaultTier)))

	var (
		dims       dimension.Normalized
		aspect     string
		resolution string
	)
	width, hasWidth := intArg(args, "width")
	height, hasHeight := intArg(args, "height")
	if hasWidth && hasHeight {
		dims, err = dimension.NormalizePair(width, height)
		if err != nil {
			return nil, err
		}
		aspect = fmt.Sprintf("%.2f:1 (自定义)", dims.Ratio())
		resolution = fmt.Sprintf("自定义 (%dx%d)", dims.Width, dims.Height)
	} else {
		dims, err = dimension.Resolve("square", tier)
		if err != nil {
			return nil, err
		}
		aspect = "1:1 (正方形)"
		resolution = fmt.Sprintf("%s (%dx%d)", tier, dims.Width, dims.Height)
	}

	optimized := r.buildPrompt(userPrompt, prompt.UseCaseGeneral, stringArg(args, "style_category", ""))

	result, err := r.generator.Generate(ctx, &jimeng.SubmitRequest{
		Prompt: optimized,
		Width:  dims.Width,
		Height: dims.Height,
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"status":           "success",
		"task_id":          result.TaskID,
		"image_url":        result.ImageURL,
		"optimized_prompt": result.Prompt,
		"use_case":         "通用图片",
		"aspect_ratio":     aspect,
		"resolution":       resolution,
		"suitable_for":     []string{"头像", "社交媒体帖子", "图标", "缩略图"},
		"next_steps":       "直接下载使用，或根据需要进行后期编辑",
	}, nil
}

// handleCreateWeChatHeader 生成 2.35:1 微信头图
func (r *Registry) handleCreateWeChatHeader(ctx context.Context, args map[string]any) (any, error) {
	userPrompt, err := requireString(args, "prompt")
	if err != nil {
		return nil, err
	}
	tier := dimension.Tier(stringArg(args, "resolution", string(r.defaultTier)))

	dims, err := dimension.Resolve("wechat_header", tier)
	if err != nil {
		return nil, err
	}

	optimized := r.buildPrompt(userPrompt, prompt.UseCaseWeChatHeader, stringArg(args, "style_category", ""))

	result, err := r.generator.Generate(ctx, &jimeng.SubmitRequest{
		Prompt: optimized,
		Width:  dims.Width,
		Height: dims.Height,
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"status":             "success",
		"task_id":            result.TaskID,
		"image_url":          result.ImageURL,
		"original_image_url": result.ImageURL,
		"optimized_prompt":   result.Prompt,
		"use_case":           "微信公众号头图",
		"aspect_ratio":       "2.35:1 (微信标准)",
		"resolution":         fmt.Sprintf("%s (%dx%d)", tier, dims.Width, dims.Height),
		"suitable_for":       []string{"微信公众号头图", "文章封面", "品牌展示", "社交媒体横幅"},
		"next_steps":         "图片已按微信头图比例生成，可直接下载使用",
		"usage_tips": []string{
			fmt.Sprintf("微信头图比例 (%dx%d)", dims.Width, dims.Height),
			"无需裁剪，直接可用",
			"高清分辨率，适合各种显示设备",
			"已优化提示词，提升生成效果",
		},
	}, nil
}

// handleQueryGenerationTask 查询异步任务状态
func (r *Registry) handleQueryGenerationTask(ctx context.Context, args map[string]any) (any, error) {
	taskID, err := requireString(args, "task_id")
	if err != nil {
		return nil, err
	}

	result, err := r.generator.GetResult(ctx, taskID)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"task_id": result.TaskID,
		"status":  result.Status,
	}
	if result.Done() {
		out["image_urls"] = result.ImageURLs
		out["next_steps"] = "图片已生成完毕，可直接下载使用"
	} else {
		out["next_steps"] = "任务仍在处理中，请稍后再次查询"
	}
	return out, nil
}

// handleCropImageToURL 智能裁剪
func (r *Registry) handleCropImageToURL(ctx context.Context, args map[string]any) (any, error) {
	imageURL, err := requireString(args, "original_image_url")
	if err != nil {
		return nil, err
	}
	targetRatio := floatArg(args, "target_ratio", crop.DefaultRatio)
	format := stringArg(args, "output_format", crop.FormatParams)

	cropResult, err := r.cropper.Smart(ctx, imageURL, targetRatio, format)
	if err != nil {
		return nil, err
	}

	ratioDesc, ok := ratioDescriptions[targetRatio]
	if !ok {
		ratioDesc = fmt.Sprintf("自定义比例 %g", targetRatio)
	}

	out := map[string]any{
		"status":        "success",
		"operation":     "图片智能裁剪",
		"original_url":  imageURL,
		"actual_size":   cropResult.ActualSize,
		"target_ratio":  fmt.Sprintf("%.2f (%s)", targetRatio, ratioDesc),
		"cropped_size":  cropResult.CroppedSize,
		"crop_params":   cropResult.Params,
		"output_format": format,
		"usage":         cropResult.Usage,
		"next_steps":    "根据选择的输出格式使用相应结果",
	}

	switch format {
	case crop.FormatParams:
		out["crop_url"] = cropResult.CropURL
		out["manual_instructions"] = map[string]any{
			"photoshop": fmt.Sprintf("使用裁剪工具，设置 x=%d, y=%d, 宽度=%d, 高度=%d",
				cropResult.Params.X, cropResult.Params.Y,
				cropResult.Params.Width, cropResult.Params.Height),
			"online_tools": "使用支持URL参数的在线图片编辑器",
			"apps":         "使用手机图片编辑应用，手动输入裁剪参数",
		}
	case crop.FormatBase64, crop.FormatCompressed:
		out["cropped_base64"] = cropResult.CroppedBase64
		out["base64_length"] = cropResult.Base64Length
		if format == crop.FormatCompressed {
			out["compressed_size"] = cropResult.CompressedSize
		}
	}

	return out, nil
}

// handleGetStyleSuggestions 风格建议
func (r *Registry) handleGetStyleSuggestions(ctx context.Context, args map[string]any) (any, error) {
	contentType, err := requireString(args, "content_type")
	if err != nil {
		return nil, err
	}
	mood := stringArg(args, "mood", "")

	return prompt.Suggestions(contentType, mood), nil
}

// handleListDimensionPresets 预设目录
func (r *Registry) handleListDimensionPresets(ctx context.Context, args map[string]any) (any, error) {
	return map[string]any{
		"presets":      dimension.Presets(),
		"default_tier": string(r.defaultTier),
		"constraints": map[string]any{
			"min_area":  dimension.MinArea,
			"max_area":  dimension.MaxArea,
			"min_ratio": dimension.MinRatio,
			"max_ratio": dimension.MaxRatio,
		},
	}, nil
}
