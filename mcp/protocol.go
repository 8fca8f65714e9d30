package mcp

import (
	"encoding/json"
	"fmt"
)

// MCP (Model Context Protocol) 标准接口
// 基于 Anthropic MCP 规范实现

// Version MCP 协议版本
const Version = "2024-11-05"

// Resource MCP 资源
type Resource struct {
	URI         string         `json:"uri"`         // 资源 URI
	Name        string         `json:"name"`        // 资源名称
	Description string         `json:"description"` // 资源描述
	MimeType    string         `json:"mimeType"`    // MIME 类型
	Content     any            `json:"content"`     // 资源内容
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ToolDefinition MCP 工具定义
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"` // JSON Schema
}

// ServerInfo 服务器信息
type ServerInfo struct {
	Name            string             `json:"name"`
	Version         string             `json:"version"`
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
}

// ServerCapabilities 服务器能力
type ServerCapabilities struct {
	Resources bool `json:"resources"`
	Tools     bool `json:"tools"`
	Logging   bool `json:"logging"`
}

// Message MCP 消息（JSON-RPC 2.0）
type Message struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      any            `json:"id,omitempty"`
	Method  string         `json:"method,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Result  any            `json:"result,omitempty"`
	Error   *Error         `json:"error,omitempty"`
}

// Error MCP 错误
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// 标准错误码
const (
	ErrorCodeParseError     = -32700
	ErrorCodeInvalidRequest = -32600
	ErrorCodeMethodNotFound = -32601
	ErrorCodeInvalidParams  = -32602
	ErrorCodeInternalError  = -32603
)

// Validate 验证资源
func (r *Resource) Validate() error {
	if r.URI == "" {
		return fmt.Errorf("resource URI is required")
	}
	if r.Name == "" {
		return fmt.Errorf("resource name is required")
	}
	return nil
}

// Validate 验证工具定义
func (t *ToolDefinition) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if t.Description == "" {
		return fmt.Errorf("tool description is required")
	}
	if t.InputSchema == nil {
		return fmt.Errorf("tool input schema is required")
	}
	return nil
}

// MarshalJSON 自定义 JSON 序列化
func (m *Message) MarshalJSON() ([]byte, error) {
	type Alias Message
	return json.Marshal(&struct {
		JSONRPC string `json:"jsonrpc"`
		*Alias
	}{
		JSONRPC: "2.0",
		Alias:   (*Alias)(m),
	})
}

// NewRequest 创建 MCP 请求
func NewRequest(id any, method string, params map[string]any) *Message {
	return &Message{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// NewResponse 创建 MCP 响应
func NewResponse(id any, result any) *Message {
	return &Message{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse 创建 MCP 错误响应
func NewErrorResponse(id any, code int, message string, data any) *Message {
	return &Message{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}
