// =============================================================================
// Headerflow 主入口
// =============================================================================
// 微信头图生成 MCP 服务入口点，支持 stdio 与 WebSocket 传输，
// 可选 Prometheus 指标与健康检查端口
//
// 使用方法:
//
//	headerflow serve                       # stdio 模式启动
//	headerflow serve --config config.yaml  # 指定配置文件
//	headerflow serve --mode websocket      # WebSocket 模式启动
//	headerflow check                       # 离线校验配置与凭证
//	headerflow version                     # 显示版本信息
//	headerflow health                      # 健康检查
// =============================================================================
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/headerflow"
	"github.com/BaSui01/headerflow/config"
	"github.com/BaSui01/headerflow/internal/telemetry"
	"github.com/BaSui01/headerflow/internal/tlsutil"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "version":
		printVersion()
	case "health":
		runHealthCheck(os.Args[2:])
	case "check":
		runCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	mode := fs.String("mode", "", "Transport mode override (stdio, websocket)")
	listen := fs.String("listen", "", "WebSocket listen address override")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Server.Mode = *mode
	}
	if *listen != "" {
		cfg.Server.ListenAddr = *listen
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("headerflow starting",
		zap.String("version", Version),
		zap.String("mode", cfg.Server.Mode),
	)

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Fatal("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	mcpServer, err := headerflow.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to assemble server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp(cfg, mcpServer, logger)
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}

	logger.Info("headerflow stopped")
}

// =============================================================================
// 🩺 health 命令
// =============================================================================

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:9191", "Metrics server base address")
	fs.Parse(args)

	httpClient := tlsutil.SecureHTTPClient(5 * time.Second)
	resp, err := httpClient.Get(*addr + "/healthz")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check returned HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}
	fmt.Println("OK")
}

// =============================================================================
// ✅ check 命令
// =============================================================================

// runCheck 离线校验配置与凭证是否齐全, 不发起任何网络请求。
// 退出码 0 表示配置可以启动服务。
func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: mode=%s host=%s req_key=%s default_tier=%s\n",
		cfg.Server.Mode, cfg.Jimeng.Host, cfg.Jimeng.ReqKey, cfg.Generation.DefaultTier)
}

// =============================================================================
// ℹ️ version / usage
// =============================================================================

func printVersion() {
	fmt.Printf("headerflow %s\n", Version)
	fmt.Printf("  build time: %s\n", BuildTime)
	fmt.Printf("  git commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`headerflow - 微信头图生成 MCP 服务

Usage:
  headerflow serve [--config config.yaml] [--mode stdio|websocket] [--listen addr]
  headerflow check [--config config.yaml]
  headerflow health [--addr http://localhost:9191]
  headerflow version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoding = "console"
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	// stdio 模式下 stdout 被 MCP 协议占用, 日志永远走 stderr
	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	opts := []zap.Option{}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
