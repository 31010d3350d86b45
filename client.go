package nostrkit

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-nostrkit/internal/core/pool"
	"github.com/dep2p/go-nostrkit/internal/core/signature"
	"github.com/dep2p/go-nostrkit/internal/util/logger"
)

var log = logger.Logger("client")

const (
	// startTimeout Fx 应用启动超时（包含首次连接）
	startTimeout = 30 * time.Second

	// stopTimeout Fx 应用停止超时
	stopTimeout = 10 * time.Second
)

// Client 多中继客户端
type Client struct {
	app  *fx.App
	pool *pool.Pool
	sig  *signature.Service

	closeOnce sync.Once
	closeErr  error
}

// New 创建并启动客户端
//
// 启用 ConnectOnStart（默认）时会连接全部初始中继；单个中继连接失败
// 不会导致 New 失败，连接在后台继续重试。
func New(ctx context.Context, opts ...Option) (*Client, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPrecondition, err)
		}
	}

	c := &Client{}
	app, err := buildFxApp(o, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build client: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, fmt.Errorf("start client: %w", err)
	}
	c.app = app

	log.Info("client started", "relays", len(c.pool.Relays()))
	return c, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              发布与订阅
// ════════════════════════════════════════════════════════════════════════════

// Publish 签名事件并发布到全部中继
//
// ev 的 PubKey、ID、Sig 由签名结果覆盖，ev 本身不被修改。签名失败时不发送任何帧。
func (c *Client) Publish(ctx context.Context, ev Event, privateKey []byte) (Event, Outcomes, error) {
	signed, err := c.sig.SignEvent(ev, privateKey)
	if err != nil {
		return Event{}, nil, err
	}
	return signed, c.pool.Publish(ctx, &signed), nil
}

// PublishSigned 发布已签名的事件
func (c *Client) PublishSigned(ctx context.Context, ev *Event) Outcomes {
	return c.pool.Publish(ctx, ev)
}

// Subscribe 在全部中继上订阅，subID 为空时自动生成
func (c *Client) Subscribe(ctx context.Context, subID string, filters ...*Filter) (string, Outcomes) {
	return c.pool.Subscribe(ctx, subID, filters...)
}

// Unsubscribe 结束订阅
func (c *Client) Unsubscribe(ctx context.Context, subID string) Outcomes {
	return c.pool.Unsubscribe(ctx, subID)
}

// Events 全部中继的事件流（EVENT 按 id 去重），Close 后关闭
func (c *Client) Events() <-chan RelayEvent {
	return c.pool.Events()
}

// ════════════════════════════════════════════════════════════════════════════
//                              中继管理
// ════════════════════════════════════════════════════════════════════════════

// AddRelay 加入并连接中继，返回规范化后的地址
//
// 首次连接失败时返回 ErrTransport，中继保留在池中并在后台重试。
func (c *Client) AddRelay(ctx context.Context, url string) (string, error) {
	url, err := c.pool.Add(url)
	if err != nil {
		return "", err
	}
	conn, ok := c.pool.Connection(url)
	if !ok {
		return "", fmt.Errorf("%w: relay %s removed concurrently", ErrClosed, url)
	}
	return url, conn.Connect(ctx)
}

// RemoveRelay 关闭并移除中继
func (c *Client) RemoveRelay(url string) error {
	return c.pool.Remove(url)
}

// Relays 当前中继
func (c *Client) Relays() []string {
	return c.pool.Relays()
}

// States 各中继当前状态
func (c *Client) States() map[string]RelayState {
	return c.pool.States()
}

// PublicKey 返回私钥对应的 x-only 公钥（小写十六进制）
func (c *Client) PublicKey(privateKey []byte) (string, error) {
	pub, err := c.sig.DerivePublicKey(privateKey)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(signature.XOnly(pub)), nil
}

// Close 关闭全部连接并停止客户端，可重复调用
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := c.app.Stop(ctx); err != nil {
			c.closeErr = fmt.Errorf("stop client: %w", err)
		}
		log.Info("client closed")
	})
	return c.closeErr
}
