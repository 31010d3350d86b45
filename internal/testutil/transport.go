package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dep2p/go-nostrkit/pkg/interfaces"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

// ErrDropped MockChannel.Drop 的默认断线错误
var ErrDropped = errors.New("testutil: connection dropped")

// ============================================================================
//                              MockChannel
// ============================================================================

// MockChannel 内存 Channel
//
// Push 注入入站帧，Drop 模拟对端断开；写出的帧被记录并可等待。
type MockChannel struct {
	// WriteFunc 覆盖写行为（返回错误模拟写失败）
	WriteFunc func(ctx context.Context, data []byte) error

	inbound chan []byte
	writes  chan []byte

	mu      sync.Mutex
	written [][]byte
	dropErr error

	closed    chan struct{}
	closeOnce sync.Once
}

var _ interfaces.Channel = (*MockChannel)(nil)

// NewMockChannel 创建内存通道
func NewMockChannel() *MockChannel {
	return &MockChannel{
		inbound: make(chan []byte, 64),
		writes:  make(chan []byte, 1024),
		closed:  make(chan struct{}),
	}
}

// ReadMessage 读取 Push 注入的帧
func (m *MockChannel) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case data := <-m.inbound:
		return data, nil
	case <-m.closed:
		m.mu.Lock()
		err := m.dropErr
		m.mu.Unlock()
		if err == nil {
			err = errors.New("testutil: channel closed")
		}
		return nil, fmt.Errorf("%w: %w", types.ErrTransport, err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WriteMessage 记录写出的帧
func (m *MockChannel) WriteMessage(ctx context.Context, data []byte) error {
	if m.WriteFunc != nil {
		if err := m.WriteFunc(ctx, data); err != nil {
			return err
		}
	}
	select {
	case <-m.closed:
		return fmt.Errorf("%w: write on closed channel", types.ErrTransport)
	default:
	}

	frame := append([]byte(nil), data...)
	m.mu.Lock()
	m.written = append(m.written, frame)
	m.mu.Unlock()

	select {
	case m.writes <- frame:
	default:
	}
	return nil
}

// Close 关闭通道，可重复调用
func (m *MockChannel) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

// Push 注入一帧入站数据
func (m *MockChannel) Push(frame string) {
	select {
	case m.inbound <- []byte(frame):
	case <-m.closed:
	}
}

// Drop 模拟对端断开，err 为 nil 时使用 ErrDropped
func (m *MockChannel) Drop(err error) {
	if err == nil {
		err = ErrDropped
	}
	m.mu.Lock()
	m.dropErr = err
	m.mu.Unlock()
	m.Close()
}

// IsClosed 是否已关闭
func (m *MockChannel) IsClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

// Written 已写出帧的快照
func (m *MockChannel) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.written))
	for i, f := range m.written {
		out[i] = string(f)
	}
	return out
}

// NextWrite 等待下一帧写出
func (m *MockChannel) NextWrite(timeout time.Duration) (string, bool) {
	select {
	case f := <-m.writes:
		return string(f), true
	case <-time.After(timeout):
		return "", false
	}
}

// ============================================================================
//                              MockDialer
// ============================================================================

// MockDialer 内存 Dialer
//
// 默认每次拨号成功并返回新的 MockChannel，同时发布到 Channels。
type MockDialer struct {
	// DialFunc 覆盖拨号行为
	DialFunc func(ctx context.Context, url string) (interfaces.Channel, error)

	// Channels 默认拨号创建的通道
	Channels chan *MockChannel

	mu    sync.Mutex
	calls []string
}

var _ interfaces.Dialer = (*MockDialer)(nil)

// NewMockDialer 创建内存拨号器
func NewMockDialer() *MockDialer {
	return &MockDialer{Channels: make(chan *MockChannel, 64)}
}

// Dial 拨号
func (d *MockDialer) Dial(ctx context.Context, url string) (interfaces.Channel, error) {
	d.mu.Lock()
	d.calls = append(d.calls, url)
	d.mu.Unlock()

	if d.DialFunc != nil {
		return d.DialFunc(ctx, url)
	}
	ch := NewMockChannel()
	select {
	case d.Channels <- ch:
	default:
	}
	return ch, nil
}

// Calls 拨号记录
func (d *MockDialer) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// DialCount 拨号次数
func (d *MockDialer) DialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// NextChannel 等待下一次默认拨号创建的通道
func (d *MockDialer) NextChannel(timeout time.Duration) (*MockChannel, bool) {
	select {
	case ch := <-d.Channels:
		return ch, true
	case <-time.After(timeout):
		return nil, false
	}
}

// FailingDial 返回总是失败的 DialFunc
func FailingDial(err error) func(context.Context, string) (interfaces.Channel, error) {
	if err == nil {
		err = errors.New("testutil: dial refused")
	}
	return func(context.Context, string) (interfaces.Channel, error) {
		return nil, err
	}
}

// BlockingDial 返回阻塞到 ctx 取消的 DialFunc
func BlockingDial() func(context.Context, string) (interfaces.Channel, error) {
	return func(ctx context.Context, _ string) (interfaces.Channel, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}
