package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dep2p/go-nostrkit/internal/util/logger"
	"github.com/dep2p/go-nostrkit/pkg/interfaces"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

var log = logger.Logger("transport")

// closeGracePeriod 发送关闭帧的等待时间
const closeGracePeriod = time.Second

// ============================================================================
//                              Dialer
// ============================================================================

// Dialer WebSocket 拨号器
type Dialer struct {
	cfg    Config
	dialer *websocket.Dialer
}

var _ interfaces.Dialer = (*Dialer)(nil)

// NewDialer 创建拨号器
func NewDialer(cfg Config) *Dialer {
	return &Dialer{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:             http.ProxyFromEnvironment,
			HandshakeTimeout:  cfg.HandshakeTimeout,
			EnableCompression: cfg.EnableCompression,
		},
	}
}

// Dial 建立连接
func (d *Dialer) Dial(ctx context.Context, rawURL string) (interfaces.Channel, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	var header http.Header
	if d.cfg.UserAgent != "" {
		header = http.Header{"User-Agent": []string{d.cfg.UserAgent}}
	}

	conn, resp, err := d.dialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: dial %s: %v (http %d)", types.ErrTransport, target, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: dial %s: %v", types.ErrTransport, target, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	if d.cfg.ReadLimit > 0 {
		conn.SetReadLimit(d.cfg.ReadLimit)
	}

	log.Debug("dialed relay", "relay", target)
	return newChannel(conn, d.cfg.WriteTimeout), nil
}

// ============================================================================
//                              Channel
// ============================================================================

// Channel WebSocket 文本帧通道
//
// 同一时刻只允许一个读者；写操作内部串行化。
type Channel struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

var _ interfaces.Channel = (*Channel)(nil)

func newChannel(conn *websocket.Conn, writeTimeout time.Duration) *Channel {
	return &Channel{conn: conn, writeTimeout: writeTimeout}
}

// NewChannel 包装已建立的连接（服务端与测试使用）
func NewChannel(conn *websocket.Conn, writeTimeout time.Duration) *Channel {
	return newChannel(conn, writeTimeout)
}

// ReadMessage 读取下一条文本帧
//
// ctx 取消时底层连接被关闭，之后通道不可再用。二进制帧被跳过。
func (c *Channel) ReadMessage(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		c.conn.UnderlyingConn().Close()
	})
	defer stop()

	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: read: %w", types.ErrTransport, ctxErr)
			}
			return nil, fmt.Errorf("%w: read: %v", types.ErrTransport, err)
		}
		if typ == websocket.TextMessage {
			return data, nil
		}
	}
}

// WriteMessage 写入一条文本帧
func (c *Channel) WriteMessage(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: write: %w", types.ErrTransport, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var deadline time.Time
	if c.writeTimeout > 0 {
		deadline = time.Now().Add(c.writeTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: write: %v", types.ErrTransport, err)
	}
	return nil
}

// Close 发送关闭帧后关闭连接，可重复调用
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))

		if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			c.closeErr = fmt.Errorf("%w: close: %v", types.ErrTransport, err)
		}
	})
	return c.closeErr
}
