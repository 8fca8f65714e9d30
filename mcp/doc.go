// Package mcp 实现 Anthropic Model Context Protocol (MCP) 规范的服务端。
//
// 本包提供 JSON-RPC 2.0 消息分发、工具与资源注册，
// 以及 stdio/WebSocket 双传输层，WebSocket 客户端传输
// 支持心跳与指数退避重连。
package mcp
