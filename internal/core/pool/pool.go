package pool

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-nostrkit/internal/core/protocol"
	"github.com/dep2p/go-nostrkit/internal/core/relay"
	"github.com/dep2p/go-nostrkit/internal/core/transport"
	"github.com/dep2p/go-nostrkit/internal/core/validator"
	"github.com/dep2p/go-nostrkit/internal/util/logger"
	"github.com/dep2p/go-nostrkit/pkg/interfaces"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

var log = logger.Logger("pool")

// Pool 中继连接池
type Pool struct {
	cfg    Config
	dialer interfaces.Dialer
	parser *protocol.Parser
	opts   []relay.Option

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	conns  map[string]*relay.Connection
	closed bool

	events    chan relay.Event
	seen      *lru.Cache[string, struct{}]
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// New 创建连接池并加入 cfg.Relays
//
// 连接不会自动建立，调用 Connect 开始连接。
func New(cfg Config, dialer interfaces.Dialer, parser *protocol.Parser, opts ...relay.Option) (*Pool, error) {
	if dialer == nil {
		return nil, fmt.Errorf("%w: nil dialer", types.ErrPrecondition)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: pool config: %v", types.ErrPrecondition, err)
	}
	if parser == nil {
		parser = protocol.NewParser(nil, true)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		cfg:    cfg,
		dialer: dialer,
		parser: parser,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		conns:  make(map[string]*relay.Connection),
		events: make(chan relay.Event, cfg.Relay.EventBuffer),
	}
	if cfg.DedupCacheSize > 0 {
		seen, err := lru.New[string, struct{}](cfg.DedupCacheSize)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("%w: dedup cache: %v", types.ErrPrecondition, err)
		}
		p.seen = seen
	}

	for _, url := range cfg.Relays {
		if _, err := p.Add(url); err != nil {
			p.Close()
			return nil, err
		}
	}
	return p, nil
}

// ============================================================================
//                              成员管理
// ============================================================================

// Add 加入中继，返回规范化后的地址；已存在时直接返回
func (p *Pool) Add(rawURL string) (string, error) {
	url, err := transport.NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", fmt.Errorf("%w: pool", types.ErrClosed)
	}
	if _, ok := p.conns[url]; ok {
		return url, nil
	}

	conn, err := relay.NewConnection(url, p.cfg.Relay, p.dialer, p.parser, p.opts...)
	if err != nil {
		return "", err
	}
	p.conns[url] = conn

	p.wg.Add(1)
	go p.forward(conn)

	log.Debug("relay added", "relay", url)
	return url, nil
}

// Remove 关闭并移除中继
func (p *Pool) Remove(rawURL string) error {
	url, err := transport.NormalizeURL(rawURL)
	if err != nil {
		return err
	}

	p.mu.Lock()
	conn, ok := p.conns[url]
	delete(p.conns, url)
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: relay %s not in pool", types.ErrPrecondition, url)
	}
	log.Debug("relay removed", "relay", url)
	return conn.Close()
}

// Relays 当前中继（按地址排序）
func (p *Pool) Relays() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	urls := make([]string, 0, len(p.conns))
	for url := range p.conns {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// Connection 返回指定中继的连接
func (p *Pool) Connection(rawURL string) (*relay.Connection, bool) {
	url, err := transport.NormalizeURL(rawURL)
	if err != nil {
		return nil, false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	conn, ok := p.conns[url]
	return conn, ok
}

// States 各中继当前状态
func (p *Pool) States() map[string]relay.State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]relay.State, len(p.conns))
	for url, conn := range p.conns {
		out[url] = conn.State()
	}
	return out
}

// ============================================================================
//                              扇出操作
// ============================================================================

// Connect 连接全部中继，返回每个中继第一次尝试的结果
func (p *Pool) Connect(ctx context.Context) Outcomes {
	return p.fanOut(ctx, func(ctx context.Context, c *relay.Connection) (bool, error) {
		return false, c.Connect(ctx)
	})
}

// Publish 向全部中继发布事件
//
// 事件在扇出前校验一次；校验失败时每个中继的结果都是该错误。
// 未连接或被限速的中继只把帧放入队列，其结果带 Queued 标记。
func (p *Pool) Publish(ctx context.Context, ev *types.Event) Outcomes {
	if ev != nil {
		if r := validator.ValidateEvent(ev); !r.Valid {
			return p.fail(r.Err())
		}
	}
	frame, err := protocol.BuildPublish(ev)
	if err != nil {
		return p.fail(err)
	}
	return p.fanOut(ctx, func(ctx context.Context, c *relay.Connection) (bool, error) {
		d, err := c.Deliver(ctx, frame)
		return d == relay.Queued, err
	})
}

// Subscribe 在全部中继上以同一 id 订阅，subID 为空时自动生成
func (p *Pool) Subscribe(ctx context.Context, subID string, filters ...*types.Filter) (string, Outcomes) {
	if subID == "" {
		subID = uuid.NewString()
	}
	for _, f := range filters {
		if err := validator.ValidateFilter(f); err != nil {
			return subID, p.fail(err)
		}
	}
	return subID, p.fanOut(ctx, func(ctx context.Context, c *relay.Connection) (bool, error) {
		_, err := c.Subscribe(ctx, subID, filters...)
		return false, err
	})
}

// Unsubscribe 在全部中继上结束订阅
func (p *Pool) Unsubscribe(ctx context.Context, subID string) Outcomes {
	return p.fanOut(ctx, func(ctx context.Context, c *relay.Connection) (bool, error) {
		return false, c.Unsubscribe(ctx, subID)
	})
}

// Events 汇聚后的事件通道，Close 后关闭
func (p *Pool) Events() <-chan relay.Event {
	return p.events
}

// Close 关闭全部连接
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		conns := make([]*relay.Connection, 0, len(p.conns))
		for _, c := range p.conns {
			conns = append(conns, c)
		}
		p.conns = make(map[string]*relay.Connection)
		p.mu.Unlock()

		var err error
		for _, c := range conns {
			err = multierr.Append(err, c.Close())
		}
		p.cancel()
		p.wg.Wait()
		close(p.events)
		p.closeErr = err
	})
	return p.closeErr
}

func (p *Pool) snapshot() []*relay.Connection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conns := make([]*relay.Connection, 0, len(p.conns))
	for _, c := range p.conns {
		conns = append(conns, c)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].URL() < conns[j].URL() })
	return conns
}

func (p *Pool) fanOut(ctx context.Context, fn func(context.Context, *relay.Connection) (bool, error)) Outcomes {
	conns := p.snapshot()
	out := make(Outcomes, len(conns))

	var g errgroup.Group
	if p.cfg.MaxConcurrency > 0 {
		g.SetLimit(p.cfg.MaxConcurrency)
	}
	for i, c := range conns {
		g.Go(func() error {
			queued, err := fn(ctx, c)
			out[i] = Outcome{Relay: c.URL(), Err: err, Queued: queued && err == nil}
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range out {
		if o.Err != nil {
			log.Debug("relay operation failed", "relay", o.Relay, "err", o.Err)
		}
	}
	return out
}

// fail 对每个中继返回同一错误
func (p *Pool) fail(err error) Outcomes {
	conns := p.snapshot()
	out := make(Outcomes, len(conns))
	for i, c := range conns {
		out[i] = Outcome{Relay: c.URL(), Err: err}
	}
	return out
}

// forward 转发单个连接的事件直到其关闭
func (p *Pool) forward(conn *relay.Connection) {
	defer p.wg.Done()
	for ev := range conn.Events() {
		if p.duplicate(ev) {
			continue
		}
		select {
		case p.events <- ev:
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) duplicate(ev relay.Event) bool {
	if p.seen == nil || ev.Kind != relay.EventMessage {
		return false
	}
	em, ok := ev.Message.(*protocol.EventMessage)
	if !ok {
		return false
	}
	found, _ := p.seen.ContainsOrAdd(strings.ToLower(em.Event.ID), struct{}{})
	return found
}
