package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// Subprotocol WebSocket 子协议名
const Subprotocol = "mcp"

// ---------------------------------------------------------------------------
// ConnTransport 服务端传输: 包装一条已接受的 WebSocket 连接
// ---------------------------------------------------------------------------

// ConnTransport 把 websocket.Accept 得到的连接适配成 Transport。
// 收到 "ping" 方法时自动回 "pong", 不把它上抛给消息循环。
type ConnTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	logger  *zap.Logger
}

// NewConnTransport 包装一条已建立的 WebSocket 连接
func NewConnTransport(conn *websocket.Conn, logger *zap.Logger) *ConnTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnTransport{
		conn:   conn,
		logger: logger.With(zap.String("component", "mcp_ws_conn")),
	}
}

// Send 发送一条 JSON-RPC 消息
func (t *ConnTransport) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.Write(ctx, websocket.MessageText, body)
}

// Receive 接收下一条 JSON-RPC 消息, 心跳 ping 在此层消化
func (t *ConnTransport) Receive(ctx context.Context) (*Message, error) {
	for {
		_, data, err := t.conn.Read(ctx)
		if err != nil {
			return nil, err
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, err
		}

		if msg.Method == "ping" && msg.ID == nil {
			pong := &Message{JSONRPC: "2.0", Method: "pong"}
			if err := t.Send(ctx, pong); err != nil {
				return nil, err
			}
			continue
		}

		return &msg, nil
	}
}

// Close 关闭连接
func (t *ConnTransport) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "closing")
}

// ---------------------------------------------------------------------------
// WebSocketTransport 客户端传输: 拨号 + 心跳 + 指数退避重连
// ---------------------------------------------------------------------------

// WSState WebSocket 连接状态
type WSState string

const (
	WSStateDisconnected WSState = "disconnected"
	WSStateConnecting   WSState = "connecting"
	WSStateConnected    WSState = "connected"
	WSStateReconnecting WSState = "reconnecting"
	WSStateFailed       WSState = "failed"
	WSStateClosed       WSState = "closed"
)

// WSTransportConfig 配置 WebSocket 客户端传输行为
type WSTransportConfig struct {
	HeartbeatInterval time.Duration // 心跳间隔 (默认 30s)
	HeartbeatTimeout  time.Duration // 无响应判定超时 (默认 10s)
	MaxReconnects     int           // 最大重连次数 (默认 5, 0 表示不重连)
	ReconnectDelay    time.Duration // 退避起始延迟 (默认 1s)
	MaxBackoff        time.Duration // 退避上限 (默认 30s)
	ReconnectEnabled  bool          // 是否自动重连
	EnableHeartbeat   bool          // 是否发送心跳
}

// DefaultWSTransportConfig 返回默认配置
func DefaultWSTransportConfig() WSTransportConfig {
	return WSTransportConfig{
		HeartbeatInterval: 30 * time.Second,
		HeartbeatTimeout:  10 * time.Second,
		MaxReconnects:     5,
		ReconnectDelay:    time.Second,
		MaxBackoff:        30 * time.Second,
		ReconnectEnabled:  true,
		EnableHeartbeat:   true,
	}
}

// WebSocketTransport 实现带心跳与指数退避重连的客户端传输
type WebSocketTransport struct {
	url    string
	logger *zap.Logger
	config WSTransportConfig

	mu             sync.Mutex
	conn           *websocket.Conn
	closed         bool
	state          WSState
	reconnecting   bool
	reconnectCount int
	lastHeartbeat  time.Time
	onStateChange  func(state WSState)
	done           chan struct{}
}

// NewWebSocketTransport 创建默认配置的客户端传输
func NewWebSocketTransport(url string, logger *zap.Logger) *WebSocketTransport {
	return NewWebSocketTransportWithConfig(url, DefaultWSTransportConfig(), logger)
}

// NewWebSocketTransportWithConfig 创建自定义配置的客户端传输
func NewWebSocketTransportWithConfig(url string, config WSTransportConfig, logger *zap.Logger) *WebSocketTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	return &WebSocketTransport{
		url:    url,
		logger: logger.With(zap.String("component", "mcp_ws_transport")),
		config: config,
		state:  WSStateDisconnected,
		done:   make(chan struct{}),
	}
}

// OnStateChange 注册连接状态变化回调
func (t *WebSocketTransport) OnStateChange(fn func(WSState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStateChange = fn
}

// setState 更新状态并触发回调。调用方不能持有 t.mu。
func (t *WebSocketTransport) setState(s WSState) {
	t.mu.Lock()
	t.state = s
	fn := t.onStateChange
	t.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// IsConnected 连接是否活跃
func (t *WebSocketTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == WSStateConnected && !t.closed
}

// State 当前连接状态
func (t *WebSocketTransport) State() WSState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Connect 建立连接并启动心跳
func (t *WebSocketTransport) Connect(ctx context.Context) error {
	t.setState(WSStateConnecting)

	conn, _, err := websocket.Dial(ctx, t.url, &websocket.DialOptions{
		Subprotocols: []string{Subprotocol},
	})
	if err != nil {
		t.setState(WSStateDisconnected)
		return fmt.Errorf("websocket connect: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.lastHeartbeat = time.Now()
	t.mu.Unlock()

	t.setState(WSStateConnected)

	go t.startHeartbeat(ctx)

	return nil
}

// Send 发送消息。写失败且开启重连时会重连后重试一次。
func (t *WebSocketTransport) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()

	if closed {
		return fmt.Errorf("websocket: transport is closed")
	}
	if conn == nil {
		return fmt.Errorf("websocket: not connected")
	}

	writeErr := conn.Write(ctx, websocket.MessageText, body)
	if writeErr == nil {
		return nil
	}
	if !t.config.ReconnectEnabled {
		return writeErr
	}

	t.logger.Warn("send failed, attempting reconnect", zap.Error(writeErr))
	if reconnErr := t.tryReconnect(ctx); reconnErr != nil {
		return fmt.Errorf("send failed and reconnect failed: %w", writeErr)
	}

	t.mu.Lock()
	conn = t.conn
	t.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("websocket: not connected after reconnect")
	}
	return conn.Write(ctx, websocket.MessageText, body)
}

// Receive 接收下一条消息。心跳 pong 在此层消化; 读失败且开启重连时
// 会重连后继续读。
func (t *WebSocketTransport) Receive(ctx context.Context) (*Message, error) {
	for {
		t.mu.Lock()
		conn := t.conn
		closed := t.closed
		t.mu.Unlock()

		if closed {
			return nil, fmt.Errorf("websocket: transport is closed")
		}
		if conn == nil {
			return nil, fmt.Errorf("websocket: not connected")
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.done:
				return nil, fmt.Errorf("websocket: transport is closed")
			default:
			}

			if !t.config.ReconnectEnabled {
				return nil, err
			}

			t.logger.Warn("receive failed, attempting reconnect", zap.Error(err))
			if reconnErr := t.tryReconnect(ctx); reconnErr != nil {
				return nil, fmt.Errorf("receive failed and reconnect failed: %w", err)
			}
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, err
		}

		t.mu.Lock()
		t.lastHeartbeat = time.Now()
		t.mu.Unlock()

		if msg.Method == "pong" {
			continue
		}

		return &msg, nil
	}
}

// Close 关闭传输, 停止心跳并关闭底层连接
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.done)
	conn := t.conn
	t.mu.Unlock()

	t.setState(WSStateClosed)

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

// startHeartbeat 周期性发送 ping 并检测超时
func (t *WebSocketTransport) startHeartbeat(ctx context.Context) {
	if !t.config.EnableHeartbeat {
		return
	}

	ticker := time.NewTicker(t.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		case <-ticker.C:
			ping := &Message{JSONRPC: "2.0", Method: "ping"}
			if err := t.Send(ctx, ping); err != nil {
				t.logger.Warn("heartbeat ping failed", zap.Error(err))
				if err := t.tryReconnect(ctx); err != nil {
					t.setState(WSStateClosed)
					return
				}
				continue
			}

			t.mu.Lock()
			lastBeat := t.lastHeartbeat
			t.mu.Unlock()

			if !lastBeat.IsZero() && time.Since(lastBeat) > t.config.HeartbeatTimeout+t.config.HeartbeatInterval {
				t.logger.Warn("heartbeat timeout", zap.Duration("since_last", time.Since(lastBeat)))
				if err := t.tryReconnect(ctx); err != nil {
					t.setState(WSStateClosed)
					return
				}
			}
		}
	}
}

// tryReconnect 以指数退避重建连接, 最多 MaxReconnects 次。
// 同一时刻只允许一个重连循环, 并发调用方等待进行中的重连结束。
func (t *WebSocketTransport) tryReconnect(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	if t.reconnecting {
		t.mu.Unlock()
		return t.waitForReconnect(ctx)
	}
	t.reconnecting = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.reconnecting = false
		t.mu.Unlock()
	}()

	t.setState(WSStateReconnecting)

	t.mu.Lock()
	oldConn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if oldConn != nil {
		_ = oldConn.Close(websocket.StatusNormalClosure, "reconnecting")
	}

	delay := t.config.ReconnectDelay

	for attempt := 1; ; attempt++ {
		t.mu.Lock()
		if t.reconnectCount >= t.config.MaxReconnects {
			t.mu.Unlock()
			t.setState(WSStateFailed)
			return fmt.Errorf("max reconnect attempts (%d) reached", t.config.MaxReconnects)
		}
		t.reconnectCount++
		t.mu.Unlock()

		t.logger.Info("attempting reconnect",
			zap.Int("attempt", attempt),
			zap.Int("max", t.config.MaxReconnects),
			zap.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.done:
			return fmt.Errorf("transport is closed")
		case <-time.After(delay):
		}

		conn, _, err := websocket.Dial(ctx, t.url, &websocket.DialOptions{
			Subprotocols: []string{Subprotocol},
		})
		if err != nil {
			t.logger.Error("reconnect dial failed",
				zap.Error(err),
				zap.Int("attempt", attempt))

			delay *= 2
			if delay > t.config.MaxBackoff {
				delay = t.config.MaxBackoff
			}
			continue
		}

		t.mu.Lock()
		t.conn = conn
		t.lastHeartbeat = time.Now()
		t.reconnectCount = 0
		t.mu.Unlock()

		t.setState(WSStateConnected)
		t.logger.Info("reconnected successfully", zap.Int("attempt", attempt))
		return nil
	}
}

// waitForReconnect 阻塞到进行中的重连结束
func (t *WebSocketTransport) waitForReconnect(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.done:
			return fmt.Errorf("transport is closed")
		case <-ticker.C:
			t.mu.Lock()
			reconnecting := t.reconnecting
			state := t.state
			t.mu.Unlock()
			if !reconnecting {
				if state == WSStateConnected {
					return nil
				}
				return fmt.Errorf("reconnect finished in state %s", state)
			}
		}
	}
}
