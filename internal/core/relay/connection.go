package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-nostrkit/internal/core/protocol"
	"github.com/dep2p/go-nostrkit/internal/core/validator"
	"github.com/dep2p/go-nostrkit/internal/util/logger"
	"github.com/dep2p/go-nostrkit/pkg/interfaces"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

var log = logger.Logger("relay")

// 订阅结束原因
const (
	ReasonConnectionLost   = "connection lost"
	ReasonConnectionClosed = "connection closed"
)

// Option 连接选项
type Option func(*Connection)

// WithClock 注入时钟（测试用 clock.NewMock()）
func WithClock(clk clock.Clock) Option {
	return func(c *Connection) { c.clock = clk }
}

// WithMetrics 注入指标
func WithMetrics(m *Metrics) Option {
	return func(c *Connection) { c.metrics = m.forRelay(c.url) }
}

// WithJitterSource 注入抖动随机源，返回 [0,1)
func WithJitterSource(rnd func() float64) Option {
	return func(c *Connection) { c.rand = rnd }
}

// Delivery 出站帧的去向
type Delivery int

const (
	// Written 已写入传输通道
	Written Delivery = iota
	// Queued 已进入出站队列，连接恢复或令牌可用后写出；Close 时未写出的帧被丢弃
	Queued
)

// String 返回去向名
func (d Delivery) String() string {
	if d == Queued {
		return "queued"
	}
	return "written"
}

// ============================================================================
//                              命令与内部消息
// ============================================================================

type connectCmd struct {
	reply chan error
}

type sendCmd struct {
	frame []byte
	sub   *Subscription
	unsub string
	reply chan sendReply
}

type sendReply struct {
	delivery Delivery
	err      error
}

type subsCmd struct {
	reply chan []Subscription
}

type dialResult struct {
	gen uint64
	ch  interfaces.Channel
	err error
}

type readResult struct {
	gen      uint64
	msg      protocol.Message
	rejected *protocol.RejectedEventError
	err      error
}

// ============================================================================
//                              Connection
// ============================================================================

// Connection 单个中继连接
type Connection struct {
	url     string
	cfg     Config
	dialer  interfaces.Dialer
	parser  *protocol.Parser
	clock   clock.Clock
	rand    func() float64
	metrics relayMetrics
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	state  atomic.Int32
	cmds   chan any
	dials  chan dialResult
	reads  chan readResult
	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	// 以下字段只由循环 goroutine 访问
	cur          State
	gen          uint64
	ch           interfaces.Channel
	queue        *Queue
	bucket       *TokenBucket
	backoff      *Backoff
	backoffTimer *clock.Timer
	tokenTimer   *clock.Timer
	dialCancel   context.CancelFunc
	readCancel   context.CancelFunc
	waiters      []chan error
	subs         map[string]*Subscription
	backlog      []Event
	overflowing  bool
}

// NewConnection 创建连接（初始状态 Disconnected）
//
// 事件循环随即启动；调用方必须最终调用 Close。
func NewConnection(url string, cfg Config, dialer interfaces.Dialer, parser *protocol.Parser, opts ...Option) (*Connection, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty relay url", types.ErrPrecondition)
	}
	if dialer == nil {
		return nil, fmt.Errorf("%w: nil dialer", types.ErrPrecondition)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: relay config: %v", types.ErrPrecondition, err)
	}
	if parser == nil {
		parser = protocol.NewParser(nil, true)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		url:    url,
		cfg:    cfg,
		dialer: dialer,
		parser: parser,
		clock:  clock.New(),
		log:    log.With("relay", url),
		ctx:    ctx,
		cancel: cancel,
		cmds:   make(chan any),
		dials:  make(chan dialResult),
		reads:  make(chan readResult),
		events: make(chan Event, cfg.EventBuffer),
		done:   make(chan struct{}),
		queue:  NewQueue(cfg.Queue),
		subs:   make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.bucket = NewTokenBucket(cfg.RateLimit, c.clock)
	c.backoff = NewBackoff(cfg.Backoff, c.rand)
	c.metrics.state(StateDisconnected)

	go c.run()
	return c, nil
}

// URL 中继地址
func (c *Connection) URL() string {
	return c.url
}

// State 当前状态
func (c *Connection) State() State {
	return State(c.state.Load())
}

// Events 事件通道，连接关闭后被关闭
//
// 读取方跟不上时事件暂存在连接内部，超过 EventBacklog 后丢弃最旧的事件。
func (c *Connection) Events() <-chan Event {
	return c.events
}

// Done 连接进入 Closed 且所有 goroutine 退出后关闭
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Connect 开始连接并等待第一次尝试的结果
//
// 失败时返回 ErrTransport，连接继续在后台按退避重试。已连接时立即返回 nil。
func (c *Connection) Connect(ctx context.Context) error {
	reply := make(chan error, 1)
	res, err := await(ctx, c, connectCmd{reply: reply}, reply)
	if err != nil {
		return err
	}
	return res
}

// Send 发送一帧原始数据
//
// 返回 nil 不代表已写出，需要区分时使用 Deliver。
func (c *Connection) Send(ctx context.Context, frame []byte) error {
	_, err := c.Deliver(ctx, frame)
	return err
}

// Deliver 发送一帧原始数据并返回其去向
func (c *Connection) Deliver(ctx context.Context, frame []byte) (Delivery, error) {
	if len(frame) == 0 {
		return Queued, fmt.Errorf("%w: empty frame", types.ErrPrecondition)
	}
	return c.submit(ctx, sendCmd{frame: frame})
}

// Publish 发布已签名事件
func (c *Connection) Publish(ctx context.Context, ev *types.Event) error {
	if ev != nil {
		if r := validator.ValidateEvent(ev); !r.Valid {
			return r.Err()
		}
	}
	frame, err := protocol.BuildPublish(ev)
	if err != nil {
		return err
	}
	return c.Send(ctx, frame)
}

// Auth 回应认证挑战
func (c *Connection) Auth(ctx context.Context, ev *types.Event) error {
	frame, err := protocol.BuildAuth(ev)
	if err != nil {
		return err
	}
	return c.Send(ctx, frame)
}

// Subscribe 创建订阅，subID 为空时自动生成
//
// 相同 id 的订阅会被替换。返回实际使用的订阅 id。
func (c *Connection) Subscribe(ctx context.Context, subID string, filters ...*types.Filter) (string, error) {
	if subID == "" {
		subID = uuid.NewString()
	}
	for _, f := range filters {
		if err := validator.ValidateFilter(f); err != nil {
			return "", err
		}
	}
	frame, err := protocol.BuildSubscribe(subID, filters...)
	if err != nil {
		return "", err
	}

	sub := &Subscription{ID: subID, Filters: filters}
	if _, err := c.submit(ctx, sendCmd{frame: frame, sub: sub}); err != nil {
		return "", err
	}
	return subID, nil
}

// Unsubscribe 结束订阅
func (c *Connection) Unsubscribe(ctx context.Context, subID string) error {
	frame, err := protocol.BuildUnsubscribe(subID)
	if err != nil {
		return err
	}
	_, err = c.submit(ctx, sendCmd{frame: frame, unsub: subID})
	return err
}

// Subscriptions 返回活动订阅（按 id 排序）
func (c *Connection) Subscriptions() []Subscription {
	reply := make(chan []Subscription, 1)
	select {
	case c.cmds <- subsCmd{reply: reply}:
	case <-c.ctx.Done():
		return nil
	}
	select {
	case subs := <-reply:
		return subs
	case <-c.done:
		return nil
	}
}

// Close 关闭连接
//
// 取消退避等待与拨号，丢弃出站队列，状态立即变为 Closed。可重复调用。
func (c *Connection) Close() error {
	c.state.Store(int32(StateClosed))
	c.cancel()
	<-c.done
	return nil
}

func (c *Connection) submit(ctx context.Context, cmd sendCmd) (Delivery, error) {
	cmd.reply = make(chan sendReply, 1)
	res, err := await(ctx, c, cmd, cmd.reply)
	if err != nil {
		return Queued, err
	}
	return res.delivery, res.err
}

// await 把命令交给循环并等待回复；第二个返回值是提交或等待本身的错误
func await[T any](ctx context.Context, c *Connection, cmd any, reply chan T) (T, error) {
	var zero T
	select {
	case c.cmds <- cmd:
	case <-c.ctx.Done():
		return zero, fmt.Errorf("%w: %s", types.ErrClosed, c.url)
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case res := <-reply:
		return res, nil
	case <-c.done:
		select {
		case res := <-reply:
			return res, nil
		default:
			return zero, fmt.Errorf("%w: %s", types.ErrClosed, c.url)
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// ============================================================================
//                              事件循环
// ============================================================================

func (c *Connection) run() {
	defer c.finish()

	for {
		select {
		case <-c.ctx.Done():
			c.shutdown(nil)
			return

		case cmd := <-c.cmds:
			c.handle(cmd)

		case res := <-c.dials:
			c.onDial(res)

		case res := <-c.reads:
			c.onRead(res)

		case <-timerC(c.backoffTimer):
			c.backoffTimer = nil
			c.metrics.reconnect()
			c.startDial()

		case <-timerC(c.tokenTimer):
			c.tokenTimer = nil
			c.drain()

		case c.outbox() <- c.nextEvent():
			c.backlog[0] = Event{}
			c.backlog = c.backlog[1:]
			if len(c.backlog) == 0 {
				c.backlog = nil
				c.overflowing = false
			}
		}

		if c.cur == StateClosed {
			return
		}
	}
}

func timerC(t *clock.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

func (c *Connection) finish() {
	c.cancel()
	c.wg.Wait()
	for _, ev := range c.backlog {
		select {
		case c.events <- ev:
		default:
			c.metrics.eventDropped()
		}
	}
	c.backlog = nil
	close(c.events)
	close(c.done)
}

func (c *Connection) handle(cmd any) {
	switch cmd := cmd.(type) {
	case connectCmd:
		switch c.cur {
		case StateConnected:
			cmd.reply <- nil
		case StateDisconnected:
			c.waiters = append(c.waiters, cmd.reply)
			c.startDial()
		default:
			c.waiters = append(c.waiters, cmd.reply)
		}

	case sendCmd:
		d, err := c.handleSend(cmd)
		cmd.reply <- sendReply{delivery: d, err: err}

	case subsCmd:
		ids := make([]string, 0, len(c.subs))
		for id := range c.subs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out := make([]Subscription, 0, len(ids))
		for _, id := range ids {
			out = append(out, *c.subs[id])
		}
		cmd.reply <- out
	}
}

func (c *Connection) handleSend(cmd sendCmd) (Delivery, error) {
	if cmd.sub != nil {
		id := cmd.sub.ID
		prev, had := c.subs[id]
		c.subs[id] = cmd.sub
		d, err := c.send(cmd.frame)
		if err != nil {
			if had {
				c.subs[id] = prev
			} else {
				delete(c.subs, id)
			}
			return d, err
		}
		// 写失败触发断线时订阅已随之结束
		if c.subs[id] != cmd.sub {
			return d, fmt.Errorf("%w: %s: %s", types.ErrTransport, c.url, ReasonConnectionLost)
		}
		return d, nil
	}

	d, err := c.send(cmd.frame)
	if err != nil {
		return d, err
	}
	if cmd.unsub != "" {
		delete(c.subs, cmd.unsub)
	}
	return d, nil
}

// send 已连接时按令牌桶写出，否则入队
func (c *Connection) send(frame []byte) (Delivery, error) {
	if c.cur != StateConnected {
		return Queued, c.enqueue(frame)
	}

	if c.queue.Len() == 0 && c.bucket.Allow() {
		if err := c.write(frame); err != nil {
			c.requeue(frame)
			c.onDrop(err)
			return Queued, nil
		}
		return Written, nil
	}

	c.metrics.rateLimited()
	if c.cfg.RateLimit.OnExceeded == RateLimitReject {
		return Queued, fmt.Errorf("%w: %s", types.ErrRateLimited, c.url)
	}
	if err := c.enqueue(frame); err != nil {
		return Queued, err
	}
	c.armTokenTimer()
	return Queued, nil
}

// drain 按 FIFO 冲刷队列，令牌不足时等待
func (c *Connection) drain() {
	for c.cur == StateConnected && c.queue.Len() > 0 {
		if !c.bucket.Allow() {
			c.armTokenTimer()
			return
		}
		frame := c.queue.PopFront()
		if err := c.write(frame); err != nil {
			c.requeue(frame)
			c.onDrop(err)
			return
		}
	}
}

func (c *Connection) write(frame []byte) error {
	ctx := c.ctx
	if c.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(c.ctx, c.cfg.WriteTimeout)
		defer cancel()
	}
	if err := c.ch.WriteMessage(ctx, frame); err != nil {
		return err
	}
	c.metrics.sent()
	return nil
}

func (c *Connection) enqueue(frame []byte) error {
	dropped, err := c.queue.Push(frame)
	if err != nil {
		c.metrics.dropped(1)
		return err
	}
	if dropped != nil {
		c.metrics.dropped(1)
		c.log.Debug("queue full, dropped oldest frame", "pending", c.queue.Len())
	}
	return nil
}

func (c *Connection) requeue(frame []byte) {
	if dropped := c.queue.PushFront(frame); dropped != nil {
		c.metrics.dropped(1)
		c.log.Debug("queue full, dropped newest frame on requeue", "pending", c.queue.Len())
	}
}

func (c *Connection) armTokenTimer() {
	if c.tokenTimer != nil {
		return
	}
	d := c.bucket.Delay()
	if d <= 0 {
		d = time.Millisecond
	}
	c.tokenTimer = c.clock.Timer(d)
}

// ============================================================================
//                              拨号与读取
// ============================================================================

func (c *Connection) startDial() {
	c.gen++
	gen := c.gen

	var ctx context.Context
	if c.cfg.ConnectTimeout > 0 {
		ctx, c.dialCancel = context.WithTimeout(c.ctx, c.cfg.ConnectTimeout)
	} else {
		ctx, c.dialCancel = context.WithCancel(c.ctx)
	}
	c.transition(StateConnecting, nil)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ch, err := c.dialer.Dial(ctx, c.url)
		select {
		case c.dials <- dialResult{gen: gen, ch: ch, err: err}:
		case <-c.ctx.Done():
			if ch != nil {
				ch.Close()
			}
		}
	}()
}

func (c *Connection) onDial(res dialResult) {
	if res.gen != c.gen || c.cur != StateConnecting {
		if res.ch != nil {
			res.ch.Close()
		}
		return
	}
	if c.dialCancel != nil {
		c.dialCancel()
		c.dialCancel = nil
	}

	if res.err != nil {
		c.onFailure(transportError(res.err))
		return
	}

	c.ch = res.ch
	c.backoff.Reset()
	c.transition(StateConnected, nil)
	c.replyWaiters(nil)
	c.startReader(res.gen, res.ch)
	c.drain()
}

func (c *Connection) startReader(gen uint64, ch interfaces.Channel) {
	ctx, cancel := context.WithCancel(c.ctx)
	c.readCancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			data, err := ch.ReadMessage(ctx)
			if err != nil {
				c.deliver(readResult{gen: gen, err: err})
				return
			}
			c.metrics.received()

			res := readResult{gen: gen}
			msg, err := c.parser.Parse(data)
			var rejected *protocol.RejectedEventError
			switch {
			case err == nil:
				if unknown, ok := msg.(*protocol.UnknownMessage); ok {
					c.log.Debug("ignoring unknown frame", "label", unknown.Type)
					continue
				}
				res.msg = msg
			case errors.As(err, &rejected):
				c.metrics.rejected()
				c.log.Debug("dropped invalid event", "sub", rejected.SubscriptionID, "event", rejected.EventID, "reason", rejected.Reason)
				res.rejected = rejected
			default:
				c.metrics.parseError()
				c.log.Warn("ignoring unparseable frame", "err", err)
				continue
			}

			if !c.deliver(res) {
				return
			}
		}
	}()
}

func (c *Connection) deliver(res readResult) bool {
	select {
	case c.reads <- res:
		return true
	case <-c.ctx.Done():
		return false
	}
}

func (c *Connection) onRead(res readResult) {
	if res.gen != c.gen || c.cur != StateConnected {
		return
	}

	switch {
	case res.err != nil:
		c.onDrop(transportError(res.err))

	case res.rejected != nil:
		c.emit(Event{Kind: EventRejected, Err: res.rejected})

	case res.msg != nil:
		if closed, ok := res.msg.(*protocol.ClosedMessage); ok {
			delete(c.subs, closed.SubscriptionID)
			c.emit(Event{
				Kind:           EventSubscriptionClosed,
				Message:        closed,
				SubscriptionID: closed.SubscriptionID,
				Reason:         closed.Reason,
			})
			return
		}
		c.emit(Event{Kind: EventMessage, Message: res.msg})
	}
}

// ============================================================================
//                              状态转换
// ============================================================================

// onDrop 已建立的连接断开
func (c *Connection) onDrop(err error) {
	if c.readCancel != nil {
		c.readCancel()
		c.readCancel = nil
	}
	if c.ch != nil {
		c.ch.Close()
		c.ch = nil
	}
	if c.tokenTimer != nil {
		c.tokenTimer.Stop()
		c.tokenTimer = nil
	}
	c.log.Info("connection lost", "err", err)
	c.endSubscriptions(ReasonConnectionLost)
	c.onFailure(transportError(err))
}

// onFailure 拨号失败或断线后进入退避；超过最大尝试次数则关闭
func (c *Connection) onFailure(err error) {
	c.replyWaiters(err)

	d := c.backoff.Next()
	if limit := c.cfg.MaxAttempts; limit > 0 && c.backoff.Failures() >= limit {
		c.log.Warn("giving up after consecutive failures", "failures", c.backoff.Failures(), "err", err)
		c.shutdown(err)
		return
	}

	c.backoffTimer = c.clock.Timer(d)
	c.log.Debug("reconnecting after backoff", "delay", d, "failures", c.backoff.Failures())
	c.transition(StateReconnecting, err)
}

// shutdown 进入终态
func (c *Connection) shutdown(cause error) {
	c.state.Store(int32(StateClosed))
	c.cancel()

	if c.backoffTimer != nil {
		c.backoffTimer.Stop()
		c.backoffTimer = nil
	}
	if c.tokenTimer != nil {
		c.tokenTimer.Stop()
		c.tokenTimer = nil
	}
	if c.dialCancel != nil {
		c.dialCancel()
		c.dialCancel = nil
	}
	if c.readCancel != nil {
		c.readCancel()
		c.readCancel = nil
	}
	if c.ch != nil {
		c.ch.Close()
		c.ch = nil
	}
	if n := c.queue.Clear(); n > 0 {
		c.log.Debug("discarded pending frames", "count", n)
	}

	c.endSubscriptions(ReasonConnectionClosed)
	c.replyWaiters(fmt.Errorf("%w: %s", types.ErrClosed, c.url))
	c.transition(StateClosed, cause)
}

func (c *Connection) transition(to State, cause error) {
	from := c.cur
	if from == to {
		return
	}
	c.cur = to
	if to != StateClosed && c.State() != StateClosed {
		c.state.Store(int32(to))
	}
	c.metrics.state(to)
	c.log.Debug("state changed", "from", from, "to", to)
	c.emit(Event{Kind: EventStateChanged, Prev: from, State: to, Err: cause})
}

func (c *Connection) endSubscriptions(reason string) {
	if len(c.subs) == 0 {
		return
	}
	ids := make([]string, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	c.subs = make(map[string]*Subscription)
	for _, id := range ids {
		if n := c.queue.RemoveFunc(func(frame []byte) bool {
			return protocol.IsSubscribeFrame(frame, id)
		}); n > 0 {
			c.log.Debug("discarded pending REQ of ended subscription", "sub", id)
		}
		c.emit(Event{Kind: EventSubscriptionClosed, SubscriptionID: id, Reason: reason})
	}
}

func (c *Connection) replyWaiters(err error) {
	for _, w := range c.waiters {
		w <- err
	}
	c.waiters = nil
}

// emit 按顺序推送事件，从不阻塞循环
//
// 通道满时事件进入 backlog，由循环在通道有空位时补发；
// backlog 达到 EventBacklog 后丢弃最旧的事件。
func (c *Connection) emit(ev Event) {
	ev.Relay = c.url
	if len(c.backlog) == 0 {
		select {
		case c.events <- ev:
			return
		default:
		}
	}

	if len(c.backlog) >= c.cfg.EventBacklog {
		c.metrics.eventDropped()
		if !c.overflowing {
			c.overflowing = true
			c.log.Warn("event consumer too slow, dropping oldest events", "backlog", len(c.backlog))
		}
		if len(c.backlog) == 0 {
			return
		}
		c.backlog[0] = Event{}
		c.backlog = c.backlog[1:]
	}
	c.backlog = append(c.backlog, ev)
}

// outbox backlog 非空时返回事件通道，否则返回 nil 使 select 分支失效
func (c *Connection) outbox() chan<- Event {
	if len(c.backlog) == 0 {
		return nil
	}
	return c.events
}

func (c *Connection) nextEvent() Event {
	if len(c.backlog) == 0 {
		return Event{}
	}
	return c.backlog[0]
}

func transportError(err error) error {
	if errors.Is(err, types.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrTransport, err)
}
