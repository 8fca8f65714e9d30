// Package headerflow provides a top-level convenience entry point for
// embedding the image-generation MCP server with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/headerflow"
//
//	cfg := config.DefaultConfig()
//	cfg.Jimeng.AccessKey = "..."
//	cfg.Jimeng.SecretKey = "..."
//	srv, err := headerflow.New(cfg, logger)
//	err = srv.Serve(ctx, mcp.NewStdioTransport(os.Stdin, os.Stdout, logger))
//
// The cmd/headerflow binary wraps this same wiring with config loading,
// telemetry, and transport selection.
package headerflow

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/headerflow/config"
	"github.com/BaSui01/headerflow/crop"
	"github.com/BaSui01/headerflow/dimension"
	"github.com/BaSui01/headerflow/internal/metrics"
	"github.com/BaSui01/headerflow/internal/tlsutil"
	"github.com/BaSui01/headerflow/jimeng"
	"github.com/BaSui01/headerflow/mcp"
	"github.com/BaSui01/headerflow/tools"
)

// Version 服务版本, 构建时可注入
const Version = "0.1.0"

// New assembles a ready-to-serve MCP server: jimeng client, cropper, and
// the full tool registry, all configured from cfg. The caller picks the
// transport and runs Serve.
func New(cfg *config.Config, logger *zap.Logger) (*mcp.Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	collector := metrics.NewCollector("headerflow", logger)

	client, err := jimeng.New(cfg.Jimeng.ClientConfig(), collector, logger)
	if err != nil {
		return nil, fmt.Errorf("create jimeng client: %w", err)
	}

	cropper := crop.NewCropper(tlsutil.SecureHTTPClient(cfg.Generation.CropTimeout), logger)

	srv := mcp.NewServer("headerflow", Version, logger)
	srv.SetCallTimeout(cfg.Server.CallTimeout)

	registry := tools.NewRegistry(client, cropper, collector, logger).
		WithPromptOptimization(cfg.Generation.OptimizePrompts).
		WithDefaultTier(dimension.Tier(cfg.Generation.DefaultTier))
	if err := registry.RegisterAll(srv); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	return srv, nil
}
