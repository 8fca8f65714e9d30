// =============================================================================
// Headerflow 服务装配
// =============================================================================
// 根据配置启动 stdio 或 WebSocket 传输的 MCP 消息循环，
// 以及可选的 Prometheus 指标 / 健康检查 HTTP 服务
// =============================================================================
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/headerflow/config"
	"github.com/BaSui01/headerflow/mcp"
)

// app 持有运行一个 headerflow 进程所需的全部服务
type app struct {
	cfg    *config.Config
	server *mcp.Server
	logger *zap.Logger
}

func newApp(cfg *config.Config, server *mcp.Server, logger *zap.Logger) *app {
	return &app{
		cfg:    cfg,
		server: server,
		logger: logger.With(zap.String("component", "app")),
	}
}

// Run 启动所有服务并阻塞到上下文取消或某个服务出错
func (a *app) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.Server.MetricsAddr != "" {
		g.Go(func() error { return a.runMetricsServer(ctx) })
	}

	switch a.cfg.Server.Mode {
	case "websocket":
		g.Go(func() error { return a.runWebSocketServer(ctx) })
	default:
		g.Go(func() error { return a.runStdio(ctx) })
	}

	return g.Wait()
}

// runStdio 在标准输入输出上跑 MCP 消息循环
func (a *app) runStdio(ctx context.Context) error {
	a.logger.Info("serving MCP over stdio")
	transport := mcp.NewStdioTransport(os.Stdin, os.Stdout, a.logger)
	defer transport.Close()
	return a.server.Serve(ctx, transport)
}

// runWebSocketServer 监听 WebSocket 连接, 每条连接独立跑一个消息循环
func (a *app) runWebSocketServer(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols: []string{mcp.Subprotocol},
		})
		if err != nil {
			a.logger.Warn("websocket accept failed", zap.Error(err))
			return
		}

		transport := mcp.NewConnTransport(conn, a.logger)
		defer transport.Close()

		a.logger.Info("client connected", zap.String("remote", r.RemoteAddr))
		if err := a.server.Serve(r.Context(), transport); err != nil && r.Context().Err() == nil {
			a.logger.Info("client session ended", zap.Error(err))
		}
	})

	srv := &http.Server{
		Addr:         a.cfg.Server.ListenAddr,
		Handler:      mux,
		ReadTimeout:  0, // WebSocket 长连接不限读超时
		WriteTimeout: 0,
	}

	a.logger.Info("serving MCP over WebSocket",
		zap.String("addr", a.cfg.Server.ListenAddr))
	return a.runHTTPServer(ctx, srv)
}

// runMetricsServer 暴露 /metrics 与 /healthz
func (a *app) runMetricsServer(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"service": "headerflow",
		})
	})

	srv := &http.Server{
		Addr:         a.cfg.Server.MetricsAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	a.logger.Info("serving metrics", zap.String("addr", a.cfg.Server.MetricsAddr))
	return a.runHTTPServer(ctx, srv)
}

// runHTTPServer 运行一个 HTTP 服务并在上下文取消时优雅关闭
func (a *app) runHTTPServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("http server shutdown failed", zap.Error(err))
		}
		return ctx.Err()
	}
}
