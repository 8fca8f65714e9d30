package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Transport MCP 传输层接口
type Transport interface {
	// Send 发送消息
	Send(ctx context.Context, msg *Message) error
	// Receive 接收消息（阻塞）
	Receive(ctx context.Context) (*Message, error)
	// Close 关闭传输
	Close() error
}

// ---------------------------------------------------------------------------
// StdioTransport 标准输入输出传输（Content-Length 头协议）
// ---------------------------------------------------------------------------

// StdioTransport 基于 bufio.Reader/io.Writer 的 stdio 传输
type StdioTransport struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
	logger  *zap.Logger
}

// NewStdioTransport 创建 stdio 传输
func NewStdioTransport(reader io.Reader, writer io.Writer, logger *zap.Logger) *StdioTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StdioTransport{
		reader: bufio.NewReader(reader),
		writer: writer,
		logger: logger,
	}
}

// Send 发送消息（Content-Length 头 + JSON body）
func (t *StdioTransport) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := t.writer.Write([]byte(header)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := t.writer.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// Receive 接收消息（读取 Content-Length 头 + JSON body）
func (t *StdioTransport) Receive(ctx context.Context) (*Message, error) {
	var contentLength int
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		if line == "\r\n" || line == "\n" {
			break
		}
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &contentLength); err == nil {
			continue
		}
	}

	if contentLength <= 0 {
		return nil, fmt.Errorf("missing or invalid Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Close 关闭 stdio 传输（无操作）
func (t *StdioTransport) Close() error {
	return nil
}
