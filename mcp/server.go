package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ToolHandler 工具处理函数
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// defaultCallTimeout 单次工具调用的超时上限。
// 图像生成工具内部会轮询任务直到完成, 所以要留足余量。
const defaultCallTimeout = 3 * time.Minute

// Server 默认 MCP 服务器实现
type Server struct {
	info        ServerInfo
	callTimeout time.Duration

	// 资源存储
	resources   map[string]*Resource
	resourcesMu sync.RWMutex

	// 工具注册
	tools        map[string]*ToolDefinition
	toolHandlers map[string]ToolHandler
	toolsMu      sync.RWMutex

	logger *zap.Logger
}

// NewServer 创建 MCP 服务器
func NewServer(name, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		info: ServerInfo{
			Name:            name,
			Version:         version,
			ProtocolVersion: Version,
			Capabilities: ServerCapabilities{
				Resources: true,
				Tools:     true,
				Logging:   true,
			},
		},
		callTimeout:  defaultCallTimeout,
		resources:    make(map[string]*Resource),
		tools:        make(map[string]*ToolDefinition),
		toolHandlers: make(map[string]ToolHandler),
		logger:       logger.With(zap.String("component", "mcp_server")),
	}
}

// SetCallTimeout 覆盖单次工具调用的超时
func (s *Server) SetCallTimeout(d time.Duration) {
	if d > 0 {
		s.callTimeout = d
	}
}

// GetServerInfo 获取服务器信息
func (s *Server) GetServerInfo() ServerInfo {
	return s.info
}

// RegisterResource 注册资源
func (s *Server) RegisterResource(resource *Resource) error {
	if err := resource.Validate(); err != nil {
		return fmt.Errorf("invalid resource: %w", err)
	}

	s.resourcesMu.Lock()
	defer s.resourcesMu.Unlock()

	s.resources[resource.URI] = resource

	s.logger.Info("resource registered",
		zap.String("uri", resource.URI),
		zap.String("name", resource.Name),
	)
	return nil
}

// ListResources 列出所有资源
func (s *Server) ListResources(ctx context.Context) ([]Resource, error) {
	s.resourcesMu.RLock()
	defer s.resourcesMu.RUnlock()

	result := make([]Resource, 0, len(s.resources))
	for _, resource := range s.resources {
		result = append(result, *resource)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].URI < result[j].URI })

	return result, nil
}

// GetResource 获取资源
func (s *Server) GetResource(ctx context.Context, uri string) (*Resource, error) {
	s.resourcesMu.RLock()
	defer s.resourcesMu.RUnlock()

	resource, ok := s.resources[uri]
	if !ok {
		return nil, fmt.Errorf("resource not found: %s", uri)
	}
	return resource, nil
}

// RegisterTool 注册工具
func (s *Server) RegisterTool(tool *ToolDefinition, handler ToolHandler) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}
	if handler == nil {
		return fmt.Errorf("tool handler is required")
	}

	s.toolsMu.Lock()
	defer s.toolsMu.Unlock()

	s.tools[tool.Name] = tool
	s.toolHandlers[tool.Name] = handler

	s.logger.Info("tool registered", zap.String("name", tool.Name))
	return nil
}

// ListTools 列出所有工具
func (s *Server) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	s.toolsMu.RLock()
	defer s.toolsMu.RUnlock()

	result := make([]ToolDefinition, 0, len(s.tools))
	for _, tool := range s.tools {
		result = append(result, *tool)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result, nil
}

// CallTool 调用工具（带超时控制）
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	s.toolsMu.RLock()
	handler, ok := s.toolHandlers[name]
	s.toolsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}

	s.logger.Debug("calling tool",
		zap.String("name", name),
		zap.Any("args", args),
	)

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	result, err := handler(callCtx, args)
	if err != nil {
		s.logger.Error("tool call failed",
			zap.String("name", name),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Debug("tool call succeeded", zap.String("name", name))
	return result, nil
}

// SetLogLevel 设置日志级别
func (s *Server) SetLogLevel(level string) error {
	s.logger.Info("log level changed", zap.String("level", level))
	return nil
}

// Close 关闭服务器
func (s *Server) Close() error {
	s.logger.Info("MCP server closed")
	return nil
}

// =============================================================================
// Message Dispatcher (JSON-RPC 2.0)
// =============================================================================

// HandleMessage dispatches an incoming JSON-RPC 2.0 request to the appropriate
// server method and returns a JSON-RPC 2.0 response. Notifications (messages
// without an ID) return nil response and nil error.
func (s *Server) HandleMessage(ctx context.Context, msg *Message) (*Message, error) {
	if msg == nil {
		return NewErrorResponse(nil, ErrorCodeInvalidRequest, "empty message", nil), nil
	}

	s.logger.Debug("handling message",
		zap.String("method", msg.Method),
		zap.Any("id", msg.ID),
	)

	// Notifications (no ID) are fire-and-forget; we process but don't respond.
	if msg.ID == nil {
		s.handleNotification(msg)
		return nil, nil
	}

	result, rpcErr := s.dispatch(ctx, msg.Method, msg.Params)
	if rpcErr != nil {
		return &Message{
			JSONRPC: "2.0",
			ID:      msg.ID,
			Error:   rpcErr,
		}, nil
	}

	return NewResponse(msg.ID, result), nil
}

// handleNotification processes notification messages (no response expected).
func (s *Server) handleNotification(msg *Message) {
	switch msg.Method {
	case "notifications/initialized":
		s.logger.Info("client initialized notification received")
	default:
		s.logger.Debug("unhandled notification", zap.String("method", msg.Method))
	}
}

// dispatch routes a method call to the corresponding server handler.
func (s *Server) dispatch(ctx context.Context, method string, params map[string]any) (any, *Error) {
	switch method {
	case "initialize":
		return s.handleInitialize(params)
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return s.handleToolsList(ctx)
	case "tools/call":
		return s.handleToolsCall(ctx, params)
	case "resources/list":
		return s.handleResourcesList(ctx)
	case "resources/read":
		return s.handleResourcesRead(ctx, params)
	default:
		return nil, &Error{
			Code:    ErrorCodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", method),
		}
	}
}

func (s *Server) handleInitialize(_ map[string]any) (any, *Error) {
	return map[string]any{
		"protocolVersion": Version,
		"capabilities":    s.info.Capabilities,
		"serverInfo": map[string]any{
			"name":    s.info.Name,
			"version": s.info.Version,
		},
	}, nil
}

func (s *Server) handleToolsList(ctx context.Context) (any, *Error) {
	tools, err := s.ListTools(ctx)
	if err != nil {
		return nil, &Error{Code: ErrorCodeInternalError, Message: err.Error()}
	}
	return map[string]any{"tools": tools}, nil
}

func (s *Server) handleToolsCall(ctx context.Context, params map[string]any) (any, *Error) {
	name, _ := params["name"].(string)
	if name == "" {
		return nil, &Error{Code: ErrorCodeInvalidParams, Message: "missing required parameter: name"}
	}

	// 参数可以为空, 无参工具不带 arguments
	args, _ := params["arguments"].(map[string]any)

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		return nil, &Error{Code: ErrorCodeInternalError, Message: err.Error()}
	}
	return result, nil
}

func (s *Server) handleResourcesList(ctx context.Context) (any, *Error) {
	resources, err := s.ListResources(ctx)
	if err != nil {
		return nil, &Error{Code: ErrorCodeInternalError, Message: err.Error()}
	}
	return map[string]any{"resources": resources}, nil
}

func (s *Server) handleResourcesRead(ctx context.Context, params map[string]any) (any, *Error) {
	uri, _ := params["uri"].(string)
	if uri == "" {
		return nil, &Error{Code: ErrorCodeInvalidParams, Message: "missing required parameter: uri"}
	}

	resource, err := s.GetResource(ctx, uri)
	if err != nil {
		return nil, &Error{Code: ErrorCodeInternalError, Message: err.Error()}
	}
	return resource, nil
}

// =============================================================================
// Serve — Transport Message Loop
// =============================================================================

// Serve runs the MCP server message loop over the given transport. It receives
// messages, dispatches them via HandleMessage, and sends responses back. The
// loop exits when the context is cancelled or the transport returns an error.
func (s *Server) Serve(ctx context.Context, transport Transport) error {
	if transport == nil {
		return fmt.Errorf("transport cannot be nil")
	}

	s.logger.Info("MCP server starting",
		zap.String("name", s.info.Name),
		zap.String("version", s.info.Version),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("MCP server stopping: context cancelled")
			return ctx.Err()
		default:
		}

		msg, err := transport.Receive(ctx)
		if err != nil {
			// 上下文取消属于正常停机
			if ctx.Err() != nil {
				s.logger.Info("MCP server stopping: context cancelled")
				return ctx.Err()
			}
			// 客户端关闭输入流, 正常退出
			if errors.Is(err, io.EOF) {
				s.logger.Info("MCP server stopping: transport closed")
				return nil
			}
			s.logger.Error("transport receive error", zap.Error(err))
			parseErrResp := NewErrorResponse(nil, ErrorCodeParseError, "failed to receive message", nil)
			if sendErr := transport.Send(ctx, parseErrResp); sendErr != nil {
				s.logger.Error("failed to send error response", zap.Error(sendErr))
				return err
			}
			continue
		}

		if msg.JSONRPC != "" && msg.JSONRPC != "2.0" {
			resp := NewErrorResponse(msg.ID, ErrorCodeInvalidRequest, "unsupported JSON-RPC version", nil)
			if sendErr := transport.Send(ctx, resp); sendErr != nil {
				s.logger.Error("failed to send error response", zap.Error(sendErr))
			}
			continue
		}

		resp, handleErr := s.HandleMessage(ctx, msg)
		if handleErr != nil {
			s.logger.Error("HandleMessage returned unexpected error", zap.Error(handleErr))
			continue
		}

		// Notifications produce no response
		if resp == nil {
			continue
		}

		if sendErr := transport.Send(ctx, resp); sendErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("failed to send response", zap.Error(sendErr))
		}
	}
}
