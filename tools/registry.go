package tools

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/headerflow/crop"
	"github.com/BaSui01/headerflow/dimension"
	"github.com/BaSui01/headerflow/internal/metrics"
	"github.com/BaSui01/headerflow/jimeng"
	"github.com/BaSui01/headerflow/mcp"
	"github.com/BaSui01/headerflow/types"
)

// PresetsResourceURI 尺寸预设目录的资源地址
const PresetsResourceURI = "headerflow://dimensions/presets"

// Generator 生成工具依赖的即梦客户端切面
type Generator interface {
	Generate(ctx context.Context, req *jimeng.SubmitRequest) (*jimeng.GenerateResult, error)
	GetResult(ctx context.Context, taskID string) (*jimeng.TaskResult, error)
}

// Cropper 裁剪工具依赖的切面
type Cropper interface {
	Smart(ctx context.Context, imageURL string, targetRatio float64, format string) (*crop.Result, error)
}

// Registry 把全部工具与资源装配到 MCP 服务器上
type Registry struct {
	generator   Generator
	cropper     Cropper
	collector   *metrics.Collector
	logger      *zap.Logger
	optimize    bool
	defaultTier dimension.Tier
}

// NewRegistry 创建工具注册器。collector 可以为 nil。
func NewRegistry(generator Generator, cropper Cropper, collector *metrics.Collector, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		generator:   generator,
		cropper:     cropper,
		collector:   collector,
		logger:      logger.With(zap.String("component", "tools")),
		optimize:    true,
		defaultTier: dimension.DefaultTier,
	}
}

// WithPromptOptimization 开关提示词自动优化
func (r *Registry) WithPromptOptimization(enabled bool) *Registry {
	r.optimize = enabled
	return r
}

// WithDefaultTier 覆盖缺省分辨率档位
func (r *Registry) WithDefaultTier(tier dimension.Tier) *Registry {
	if tier != "" {
		r.defaultTier = tier
	}
	return r
}

// RegisterAll 注册全部工具与资源
func (r *Registry) RegisterAll(srv *mcp.Server) error {
	definitions := []struct {
		def     *mcp.ToolDefinition
		handler mcp.ToolHandler
	}{
		{createImageDefinition(), r.handleCreateImage},
		{createWeChatHeaderDefinition(), r.handleCreateWeChatHeader},
		{queryGenerationTaskDefinition(), r.handleQueryGenerationTask},
		{cropImageToURLDefinition(), r.handleCropImageToURL},
		{getStyleSuggestionsDefinition(), r.handleGetStyleSuggestions},
		{listDimensionPresetsDefinition(), r.handleListDimensionPresets},
	}

	for _, d := range definitions {
		if err := srv.RegisterTool(d.def, r.instrument(d.def.Name, d.handler)); err != nil {
			return fmt.Errorf("register tool %s: %w", d.def.Name, err)
		}
	}

	return srv.RegisterResource(&mcp.Resource{
		URI:         PresetsResourceURI,
		Name:        "dimension_presets",
		Description: "所有命名尺寸预设及其像素尺寸",
		MimeType:    "application/json",
		Content:     dimension.Presets(),
	})
}

// instrument 给工具 handler 加上调用指标与日志
func (r *Registry) instrument(name string, handler mcp.ToolHandler) mcp.ToolHandler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		start := time.Now()
		result, err := handler(ctx, args)
		status := "success"
		if err != nil {
			status = "error"
		}
		r.collector.RecordToolCall(name, status, time.Since(start))
		r.logger.Info("tool call finished",
			zap.String("tool", name),
			zap.String("status", status),
			zap.Duration("elapsed", time.Since(start)))
		return result, err
	}
}

// ---------------------------------------------------------------------------
// 参数提取
// ---------------------------------------------------------------------------

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// intArg 读取整数参数。JSON 解码后数字统一是 float64。
func intArg(args map[string]any, key string) (int, bool) {
	if v, ok := args[key].(float64); ok {
		return int(v), true
	}
	if v, ok := args[key].(int); ok {
		return v, true
	}
	return 0, false
}

func floatArg(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok && v > 0 {
		return v
	}
	return fallback
}

func requireString(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", types.NewError(types.ErrInvalidRequest,
			fmt.Sprintf("missing required argument: %s", key))
	}
	return v, nil
}
