// Package tools 定义对外暴露的全部 MCP 工具:
// 图片生成 (通用 1:1 与微信头图 2.35:1)、异步任务查询、
// 智能裁剪、风格建议与尺寸预设目录。
package tools
