package relay

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-nostrkit/internal/core/protocol"
	"github.com/dep2p/go-nostrkit/internal/testutil"
	"github.com/dep2p/go-nostrkit/pkg/interfaces"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

const (
	testURL  = "wss://relay.test"
	waitTime = 2 * time.Second
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Backoff.Jitter = 0
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestConn(t *testing.T, cfg Config, d interfaces.Dialer, opts ...Option) *Connection {
	t.Helper()
	c, err := NewConnection(testURL, cfg, d, nil, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// nextEvent 读取事件直到 match 返回 true
func nextEvent(t *testing.T, c *Connection, match func(Event) bool) Event {
	t.Helper()
	deadline := time.After(waitTime)
	for {
		select {
		case ev, ok := <-c.Events():
			require.True(t, ok, "events channel closed")
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}

func waitState(t *testing.T, c *Connection, s State) Event {
	t.Helper()
	return nextEvent(t, c, func(ev Event) bool {
		return ev.Kind == EventStateChanged && ev.State == s
	})
}

func connected(t *testing.T, cfg Config, opts ...Option) (*Connection, *testutil.MockDialer, *testutil.MockChannel) {
	t.Helper()
	d := testutil.NewMockDialer()
	c := newTestConn(t, cfg, d, opts...)
	require.NoError(t, c.Connect(context.Background()))
	waitState(t, c, StateConnected)
	ch, ok := d.NextChannel(waitTime)
	require.True(t, ok)
	return c, d, ch
}

// ============================================================================
//                              连接与状态
// ============================================================================

func TestConnection_InitialState(t *testing.T) {
	c := newTestConn(t, testConfig(), testutil.NewMockDialer())
	assert.Equal(t, StateDisconnected, c.State())
	assert.Equal(t, testURL, c.URL())
}

func TestConnection_ConnectSuccess(t *testing.T) {
	d := testutil.NewMockDialer()
	c := newTestConn(t, testConfig(), d)

	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, StateConnected, c.State())

	ev := waitState(t, c, StateConnecting)
	assert.Equal(t, StateDisconnected, ev.Prev)
	ev = waitState(t, c, StateConnected)
	assert.Equal(t, StateConnecting, ev.Prev)
	assert.Equal(t, testURL, ev.Relay)

	// 已连接时再次 Connect 立即返回
	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, 1, d.DialCount())
}

func TestConnection_ConnectFailureReportsTransportError(t *testing.T) {
	d := testutil.NewMockDialer()
	d.DialFunc = testutil.FailingDial(nil)
	c := newTestConn(t, testConfig(), d, WithClock(clock.NewMock()))

	err := c.Connect(context.Background())
	assert.ErrorIs(t, err, types.ErrTransport)

	ev := waitState(t, c, StateReconnecting)
	assert.ErrorIs(t, ev.Err, types.ErrTransport)
	assert.Equal(t, StateReconnecting, c.State())
}

func TestConnection_BackoffSchedule(t *testing.T) {
	clk := clock.NewMock()
	d := testutil.NewMockDialer()
	failures := 3
	var last *testutil.MockChannel
	d.DialFunc = func(ctx context.Context, url string) (interfaces.Channel, error) {
		if d.DialCount() <= failures {
			return nil, errors.New("refused")
		}
		last = testutil.NewMockChannel()
		return last, nil
	}

	cfg := testConfig()
	cfg.Backoff.Base = time.Second
	cfg.Backoff.Factor = 2
	c := newTestConn(t, cfg, d, WithClock(clk))

	require.Error(t, c.Connect(context.Background()))
	waitState(t, c, StateReconnecting)
	assert.Equal(t, 1, d.DialCount())

	// 第 2 次尝试在 1s 之后
	clk.Add(999 * time.Millisecond)
	assert.Equal(t, 1, d.DialCount())
	clk.Add(time.Millisecond)
	waitState(t, c, StateReconnecting)
	assert.Equal(t, 2, d.DialCount())

	// 第 3 次在 2s 之后
	clk.Add(2 * time.Second)
	waitState(t, c, StateReconnecting)
	assert.Equal(t, 3, d.DialCount())

	// 第 4 次至少在 4s 之后
	clk.Add(3 * time.Second)
	assert.Equal(t, 3, d.DialCount())
	clk.Add(time.Second)
	waitState(t, c, StateConnected)
	assert.Equal(t, 4, d.DialCount())

	// 连接成功后退避重置为 1s
	last.Drop(nil)
	waitState(t, c, StateReconnecting)
	clk.Add(999 * time.Millisecond)
	assert.Equal(t, 4, d.DialCount())
	clk.Add(time.Millisecond)
	waitState(t, c, StateConnected)
	assert.Equal(t, 5, d.DialCount())
}

func TestConnection_BackoffResetAfterDrop(t *testing.T) {
	clk := clock.NewMock()
	cfg := testConfig()
	c, d, ch := connected(t, cfg, WithClock(clk))

	ch.Drop(nil)
	waitState(t, c, StateReconnecting)

	clk.Add(999 * time.Millisecond)
	assert.Equal(t, 1, d.DialCount())
	clk.Add(time.Millisecond)
	waitState(t, c, StateConnected)
	assert.Equal(t, 2, d.DialCount())
}

func TestConnection_MaxAttemptsCloses(t *testing.T) {
	clk := clock.NewMock()
	d := testutil.NewMockDialer()
	d.DialFunc = testutil.FailingDial(nil)

	cfg := testConfig()
	cfg.MaxAttempts = 2
	c := newTestConn(t, cfg, d, WithClock(clk))

	require.Error(t, c.Connect(context.Background()))
	waitState(t, c, StateReconnecting)
	clk.Add(time.Second)
	waitState(t, c, StateClosed)

	select {
	case <-c.Done():
	case <-time.After(waitTime):
		t.Fatal("connection did not finish")
	}
	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, 2, d.DialCount())

	err := c.Send(context.Background(), []byte(`["CLOSE","x"]`))
	assert.ErrorIs(t, err, types.ErrClosed)
}

// ============================================================================
//                              关闭
// ============================================================================

func TestConnection_CloseCancelsDial(t *testing.T) {
	d := testutil.NewMockDialer()
	d.DialFunc = testutil.BlockingDial()
	c := newTestConn(t, testConfig(), d)

	connectErr := make(chan error, 1)
	go func() { connectErr <- c.Connect(context.Background()) }()
	waitState(t, c, StateConnecting)

	start := time.Now()
	require.NoError(t, c.Close())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, StateClosed, c.State())

	assert.ErrorIs(t, <-connectErr, types.ErrClosed)
}

func TestConnection_CloseCancelsBackoffAndDiscardsQueue(t *testing.T) {
	clk := clock.NewMock()
	d := testutil.NewMockDialer()
	d.DialFunc = testutil.FailingDial(nil)
	c := newTestConn(t, testConfig(), d, WithClock(clk))

	require.Error(t, c.Connect(context.Background()))
	waitState(t, c, StateReconnecting)
	require.NoError(t, c.Send(context.Background(), []byte(`["CLOSE","queued"]`)))

	require.NoError(t, c.Close())
	clk.Add(time.Hour)
	assert.Equal(t, 1, d.DialCount())

	// 事件通道最终关闭
	for range c.Events() {
	}
	assert.Equal(t, StateClosed, c.State())
}

func TestConnection_CloseIdempotent(t *testing.T) {
	c, _, ch := connected(t, testConfig())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, ch.IsClosed())

	_, err := c.Subscribe(context.Background(), "", &types.Filter{})
	assert.ErrorIs(t, err, types.ErrClosed)
	assert.Nil(t, c.Subscriptions())
}

// ============================================================================
//                              出站
// ============================================================================

func TestConnection_SendWhenConnected(t *testing.T) {
	c, _, ch := connected(t, testConfig())

	ev := testutil.SignedNote(t, 1700000000, "hello")
	require.NoError(t, c.Publish(context.Background(), &ev))

	frame, ok := ch.NextWrite(waitTime)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(frame, `["EVENT",{"id":"`+ev.ID+`"`))
}

func TestConnection_PublishRejectsInvalidEvent(t *testing.T) {
	c, _, ch := connected(t, testConfig())

	ev := testutil.SignedNote(t, 1700000000, "hello")
	ev.Content = "tampered"
	err := c.Publish(context.Background(), &ev)
	assert.ErrorIs(t, err, types.ErrStructuralInvalid)

	err = c.Publish(context.Background(), nil)
	assert.ErrorIs(t, err, types.ErrPrecondition)
	assert.Empty(t, ch.Written())
}

func TestConnection_OfflineQueueFlushedInOrder(t *testing.T) {
	d := testutil.NewMockDialer()
	c := newTestConn(t, testConfig(), d)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, c.Unsubscribe(context.Background(), id))
	}

	require.NoError(t, c.Connect(context.Background()))
	ch, ok := d.NextChannel(waitTime)
	require.True(t, ok)

	// 冲刷先于后续发送
	require.NoError(t, c.Unsubscribe(context.Background(), "d"))
	testutil.Eventually(t, waitTime, func() bool { return len(ch.Written()) == 4 }, "4 frames written")
	assert.Equal(t, []string{
		`["CLOSE","a"]`, `["CLOSE","b"]`, `["CLOSE","c"]`, `["CLOSE","d"]`,
	}, ch.Written())
}

func TestConnection_QueueDropOldest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	cfg := testConfig()
	cfg.Queue = QueueConfig{MaxSize: 2, Overflow: OverflowDropOldest}
	d := testutil.NewMockDialer()
	c := newTestConn(t, cfg, d, WithMetrics(m))

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, c.Unsubscribe(context.Background(), id))
	}
	assert.Equal(t, 1.0, promtest.ToFloat64(m.QueueDropped.WithLabelValues(testURL)))

	require.NoError(t, c.Connect(context.Background()))
	ch, _ := d.NextChannel(waitTime)
	testutil.Eventually(t, waitTime, func() bool { return len(ch.Written()) == 2 }, "2 frames written")
	assert.Equal(t, []string{`["CLOSE","b"]`, `["CLOSE","c"]`}, ch.Written())
}

func TestConnection_QueueRejectNew(t *testing.T) {
	cfg := testConfig()
	cfg.Queue = QueueConfig{MaxSize: 2, Overflow: OverflowRejectNew}
	c := newTestConn(t, cfg, testutil.NewMockDialer())

	require.NoError(t, c.Unsubscribe(context.Background(), "a"))
	require.NoError(t, c.Unsubscribe(context.Background(), "b"))
	err := c.Unsubscribe(context.Background(), "c")
	assert.ErrorIs(t, err, types.ErrQueueFull)
}

func TestConnection_RateLimitQueues(t *testing.T) {
	clk := clock.NewMock()
	cfg := testConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: true, Capacity: 2, RefillPerSecond: 1, OnExceeded: RateLimitQueue}
	c, _, ch := connected(t, cfg, WithClock(clk))

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, c.Unsubscribe(context.Background(), id))
	}
	assert.Len(t, ch.Written(), 2)

	clk.Add(time.Second)
	testutil.Eventually(t, waitTime, func() bool { return len(ch.Written()) == 3 }, "queued frame sent after refill")
	assert.Equal(t, `["CLOSE","c"]`, ch.Written()[2])
}

func TestConnection_RateLimitRejects(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	clk := clock.NewMock()
	cfg := testConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: true, Capacity: 1, RefillPerSecond: 1, OnExceeded: RateLimitReject}
	c, _, ch := connected(t, cfg, WithClock(clk), WithMetrics(m))

	require.NoError(t, c.Unsubscribe(context.Background(), "a"))
	err := c.Unsubscribe(context.Background(), "b")
	assert.ErrorIs(t, err, types.ErrRateLimited)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RateLimited.WithLabelValues(testURL)))

	clk.Add(time.Second)
	require.NoError(t, c.Unsubscribe(context.Background(), "b"))
	assert.Equal(t, []string{`["CLOSE","a"]`, `["CLOSE","b"]`}, ch.Written())
}

func TestConnection_DeliverReportsQueued(t *testing.T) {
	d := testutil.NewMockDialer()
	c := newTestConn(t, testConfig(), d)

	frame := []byte(`["CLOSE","a"]`)
	got, err := c.Deliver(context.Background(), frame)
	require.NoError(t, err)
	assert.Equal(t, Queued, got)

	require.NoError(t, c.Connect(context.Background()))
	got, err = c.Deliver(context.Background(), []byte(`["CLOSE","b"]`))
	require.NoError(t, err)
	assert.Equal(t, Written, got)
	assert.Equal(t, "written", got.String())
}

func TestConnection_DeliverRateLimitedIsQueued(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: true, Capacity: 1, RefillPerSecond: 1, OnExceeded: RateLimitQueue}
	c, _, _ := connected(t, cfg, WithClock(clock.NewMock()))

	got, err := c.Deliver(context.Background(), []byte(`["CLOSE","a"]`))
	require.NoError(t, err)
	assert.Equal(t, Written, got)

	got, err = c.Deliver(context.Background(), []byte(`["CLOSE","b"]`))
	require.NoError(t, err)
	assert.Equal(t, Queued, got)
}

func TestConnection_FailedWriteRequeued(t *testing.T) {
	clk := clock.NewMock()
	c, d, ch := connected(t, testConfig(), WithClock(clk))
	ch.WriteFunc = func(context.Context, []byte) error { return errors.New("broken pipe") }

	require.NoError(t, c.Unsubscribe(context.Background(), "retry"))
	waitState(t, c, StateReconnecting)
	assert.True(t, ch.IsClosed())

	clk.Add(time.Second)
	waitState(t, c, StateConnected)
	next, ok := d.NextChannel(waitTime)
	require.True(t, ok)
	testutil.Eventually(t, waitTime, func() bool { return len(next.Written()) == 1 }, "requeued frame written")
	assert.Equal(t, `["CLOSE","retry"]`, next.Written()[0])
}

// ============================================================================
//                              订阅与入站
// ============================================================================

func TestConnection_Subscribe(t *testing.T) {
	c, _, ch := connected(t, testConfig())

	id, err := c.Subscribe(context.Background(), "", &types.Filter{Kinds: []int{1}})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	frame, ok := ch.NextWrite(waitTime)
	require.True(t, ok)
	assert.Equal(t, `["REQ","`+id+`",{"kinds":[1]}]`, frame)

	subs := c.Subscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, id, subs[0].ID)

	require.NoError(t, c.Unsubscribe(context.Background(), id))
	assert.Empty(t, c.Subscriptions())
}

func TestConnection_SubscribeRejectsInvalidFilter(t *testing.T) {
	c, _, _ := connected(t, testConfig())

	_, err := c.Subscribe(context.Background(), "s", &types.Filter{Limit: types.Int(0)})
	assert.ErrorIs(t, err, types.ErrStructuralInvalid)

	_, err = c.Subscribe(context.Background(), "s")
	assert.ErrorIs(t, err, types.ErrPrecondition)
	assert.Empty(t, c.Subscriptions())
}

func TestConnection_InboundOrderAndValidation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c, _, ch := connected(t, testConfig(), WithMetrics(m))

	good := testutil.SignedNote(t, 1700000000, "hello")
	bad := good
	bad.Content = "tampered"

	ch.Push(`["NOTICE","relay overloaded"]`)
	ch.Push(testutil.EventFrame(t, "s1", &good))
	ch.Push(`this is not json`)
	ch.Push(`["COUNT","s1",{"count":1}]`)
	ch.Push(testutil.EventFrame(t, "s1", &bad))
	ch.Push(`["EOSE","s1"]`)

	isInbound := func(ev Event) bool { return ev.Kind == EventMessage || ev.Kind == EventRejected }

	ev := nextEvent(t, c, isInbound)
	assert.Equal(t, "relay overloaded", ev.Message.(*protocol.NoticeMessage).Text)

	ev = nextEvent(t, c, isInbound)
	assert.Equal(t, good.ID, ev.Message.(*protocol.EventMessage).Event.ID)

	ev = nextEvent(t, c, isInbound)
	require.Equal(t, EventRejected, ev.Kind)
	var rejected *protocol.RejectedEventError
	require.ErrorAs(t, ev.Err, &rejected)
	assert.Equal(t, "s1", rejected.SubscriptionID)

	ev = nextEvent(t, c, isInbound)
	assert.Equal(t, "s1", ev.Message.(*protocol.EOSEMessage).SubscriptionID)

	assert.Equal(t, StateConnected, c.State())
	assert.Equal(t, 6.0, promtest.ToFloat64(m.FramesReceived.WithLabelValues(testURL)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RejectedEvents.WithLabelValues(testURL)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.ParseErrors.WithLabelValues(testURL)))
}

func TestConnection_RelayClosedSubscription(t *testing.T) {
	c, _, ch := connected(t, testConfig())
	_, err := c.Subscribe(context.Background(), "s1", &types.Filter{})
	require.NoError(t, err)

	ch.Push(`["CLOSED","s1","auth-required: sign in"]`)
	ev := nextEvent(t, c, func(ev Event) bool { return ev.Kind == EventSubscriptionClosed })
	assert.Equal(t, "s1", ev.SubscriptionID)
	assert.Equal(t, "auth-required: sign in", ev.Reason)
	assert.IsType(t, &protocol.ClosedMessage{}, ev.Message)
	assert.Empty(t, c.Subscriptions())
}

func TestConnection_DropEndsSubscriptions(t *testing.T) {
	c, _, ch := connected(t, testConfig(), WithClock(clock.NewMock()))
	for _, id := range []string{"s2", "s1"} {
		_, err := c.Subscribe(context.Background(), id, &types.Filter{})
		require.NoError(t, err)
	}

	ch.Drop(nil)

	ev := nextEvent(t, c, func(ev Event) bool { return ev.Kind == EventSubscriptionClosed })
	assert.Equal(t, "s1", ev.SubscriptionID)
	assert.Equal(t, ReasonConnectionLost, ev.Reason)
	ev = nextEvent(t, c, func(ev Event) bool { return ev.Kind == EventSubscriptionClosed })
	assert.Equal(t, "s2", ev.SubscriptionID)

	ev = waitState(t, c, StateReconnecting)
	assert.ErrorIs(t, ev.Err, types.ErrTransport)
	assert.ErrorIs(t, ev.Err, testutil.ErrDropped)
	assert.Empty(t, c.Subscriptions())
}

func TestConnection_DropDiscardsQueuedSubscribe(t *testing.T) {
	clk := clock.NewMock()
	cfg := testConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: true, Capacity: 1, RefillPerSecond: 1, OnExceeded: RateLimitQueue}
	c, d, ch := connected(t, cfg, WithClock(clk))

	require.NoError(t, c.Unsubscribe(context.Background(), "first"))
	_, err := c.Subscribe(context.Background(), "s1", &types.Filter{Kinds: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, []string{`["CLOSE","first"]`}, ch.Written())

	ch.Drop(nil)
	ev := nextEvent(t, c, func(ev Event) bool { return ev.Kind == EventSubscriptionClosed })
	assert.Equal(t, "s1", ev.SubscriptionID)
	assert.Equal(t, ReasonConnectionLost, ev.Reason)
	waitState(t, c, StateReconnecting)

	clk.Add(time.Second)
	waitState(t, c, StateConnected)
	next, ok := d.NextChannel(waitTime)
	require.True(t, ok)

	// 队列已空，新帧直接写出
	require.NoError(t, c.Unsubscribe(context.Background(), "after"))
	assert.Equal(t, []string{`["CLOSE","after"]`}, next.Written())
	assert.Empty(t, c.Subscriptions())
}

func TestConnection_SubscribeFailsWhenWriteDropsConnection(t *testing.T) {
	c, _, ch := connected(t, testConfig(), WithClock(clock.NewMock()))
	ch.WriteFunc = func(context.Context, []byte) error { return errors.New("broken pipe") }

	_, err := c.Subscribe(context.Background(), "s1", &types.Filter{})
	assert.ErrorIs(t, err, types.ErrTransport)
	assert.Empty(t, c.Subscriptions())
}

// ============================================================================
//                              事件背压
// ============================================================================

func TestConnection_EventBufferMustBePositive(t *testing.T) {
	cfg := testConfig()
	cfg.EventBuffer = 0
	assert.Error(t, cfg.Validate())

	_, err := NewConnection(testURL, cfg, testutil.NewMockDialer(), nil)
	assert.ErrorIs(t, err, types.ErrPrecondition)
}

func TestConnection_SendWithoutEventReader(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	cfg := testConfig()
	cfg.EventBuffer = 1
	cfg.EventBacklog = 4
	d := testutil.NewMockDialer()
	c := newTestConn(t, cfg, d, WithMetrics(m))

	ctx, cancel := context.WithTimeout(context.Background(), waitTime)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	ch, ok := d.NextChannel(waitTime)
	require.True(t, ok)

	for _, text := range []string{"n00", "n01", "n02", "n03", "n04", "n05", "n06", "n07", "n08", "n09",
		"n10", "n11", "n12", "n13", "n14", "n15", "n16", "n17", "n18", "n19"} {
		ch.Push(`["NOTICE","` + text + `"]`)
	}
	// connecting 占满通道，connected 与 20 条 NOTICE 中只有最后 4 条留在 backlog
	testutil.Eventually(t, waitTime, func() bool {
		return promtest.ToFloat64(m.EventsDropped.WithLabelValues(testURL)) == 17
	}, "17 events dropped")

	got, err := c.Deliver(ctx, []byte(`["CLOSE","a"]`))
	require.NoError(t, err)
	assert.Equal(t, Written, got)
	_, err = c.Subscribe(ctx, "s1", &types.Filter{})
	require.NoError(t, err)

	ev := testutil.Receive(t, c.Events(), waitTime)
	assert.Equal(t, StateConnecting, ev.State)
	for _, want := range []string{"n16", "n17", "n18", "n19"} {
		ev = testutil.Receive(t, c.Events(), waitTime)
		require.Equal(t, EventMessage, ev.Kind)
		assert.Equal(t, want, ev.Message.(*protocol.NoticeMessage).Text)
	}
}

func TestConnection_StateMetric(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c, _, _ := connected(t, testConfig(), WithMetrics(m))
	assert.Equal(t, float64(StateConnected), promtest.ToFloat64(m.State.WithLabelValues(testURL)))

	require.NoError(t, c.Close())
	assert.Equal(t, float64(StateClosed), promtest.ToFloat64(m.State.WithLabelValues(testURL)))
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewMetrics(reg)
	b := NewMetrics(reg)
	assert.Same(t, a.FramesSent, b.FramesSent)
}

func TestNewConnection_Preconditions(t *testing.T) {
	_, err := NewConnection("", testConfig(), testutil.NewMockDialer(), nil)
	assert.ErrorIs(t, err, types.ErrPrecondition)

	_, err = NewConnection(testURL, testConfig(), nil, nil)
	assert.ErrorIs(t, err, types.ErrPrecondition)

	bad := testConfig()
	bad.Queue.MaxSize = 0
	_, err = NewConnection(testURL, bad, testutil.NewMockDialer(), nil)
	assert.ErrorIs(t, err, types.ErrPrecondition)
}
