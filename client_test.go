package nostrkit_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nostrkit "github.com/dep2p/go-nostrkit"
	"github.com/dep2p/go-nostrkit/config"
	"github.com/dep2p/go-nostrkit/internal/core/relay"
	"github.com/dep2p/go-nostrkit/internal/core/signature"
	"github.com/dep2p/go-nostrkit/internal/testutil"
)

const waitTime = 2 * time.Second

func newTestClient(t *testing.T, opts ...nostrkit.Option) (*nostrkit.Client, *testutil.MockDialer) {
	t.Helper()
	d := testutil.NewMockDialer()
	cfg := config.NewConfig()
	cfg.Relay.BackoffJitter = 0
	opts = append([]nostrkit.Option{nostrkit.WithConfig(cfg), nostrkit.WithDialer(d)}, opts...)

	c, err := nostrkit.New(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, d
}

func nextMessage(t *testing.T, c *nostrkit.Client) nostrkit.RelayEvent {
	t.Helper()
	deadline := time.After(waitTime)
	for {
		select {
		case ev, ok := <-c.Events():
			require.True(t, ok)
			if ev.Kind == nostrkit.EventMessageReceived {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for message")
		}
	}
}

func TestClient_PublishSignsAndSends(t *testing.T) {
	c, d := newTestClient(t, nostrkit.WithRelays("relay.test"))
	ch, ok := d.NextChannel(waitTime)
	require.True(t, ok)
	assert.Equal(t, nostrkit.StateConnected, c.States()["wss://relay.test"])

	priv := testutil.TestPrivateKey(t)
	draft := nostrkit.Event{CreatedAt: 1700000000, Kind: 1, Tags: nostrkit.Tags{{"t", "nostr"}}, Content: "hello"}

	signed, out, err := c.Publish(context.Background(), draft, priv)
	require.NoError(t, err)
	require.NoError(t, out.Err())
	assert.Equal(t, []string{"wss://relay.test"}, out.Succeeded())
	assert.Empty(t, draft.ID, "draft must not be mutated")

	ok, err = signature.NewService(nil).VerifyEvent(&signed)
	require.NoError(t, err)
	assert.True(t, ok)

	pub, err := c.PublicKey(priv)
	require.NoError(t, err)
	assert.Equal(t, pub, signed.PubKey)

	frame, ok := ch.NextWrite(waitTime)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(frame, `["EVENT",{"id":"`+signed.ID+`"`))
}

func TestClient_PublishBadKeySendsNothing(t *testing.T) {
	c, d := newTestClient(t, nostrkit.WithRelays("relay.test"))
	ch, ok := d.NextChannel(waitTime)
	require.True(t, ok)

	_, out, err := c.Publish(context.Background(), nostrkit.Event{CreatedAt: 1, Kind: 1}, make([]byte, 32))
	assert.ErrorIs(t, err, nostrkit.ErrSignature)
	assert.Nil(t, out)

	_, ok = ch.NextWrite(100 * time.Millisecond)
	assert.False(t, ok)
}

func TestClient_SubscribeAndReceive(t *testing.T) {
	c, d := newTestClient(t, nostrkit.WithRelays("relay.test"))
	ch, ok := d.NextChannel(waitTime)
	require.True(t, ok)

	id, out := c.Subscribe(context.Background(), "feed", &nostrkit.Filter{Kinds: []int{1}})
	require.NoError(t, out.Err())
	assert.Equal(t, "feed", id)

	frame, ok := ch.NextWrite(waitTime)
	require.True(t, ok)
	assert.Equal(t, `["REQ","feed",{"kinds":[1]}]`, frame)

	note := testutil.SignedNote(t, 1700000000, "incoming")
	ch.Push(testutil.EventFrame(t, "feed", &note))

	ev := nextMessage(t, c)
	msg, isEvent := ev.Message.(*nostrkit.EventMessage)
	require.True(t, isEvent)
	assert.Equal(t, "feed", msg.SubscriptionID)
	assert.Equal(t, note.ID, msg.Event.ID)

	require.NoError(t, c.Unsubscribe(context.Background(), "feed").Err())
	frame, ok = ch.NextWrite(waitTime)
	require.True(t, ok)
	assert.Equal(t, `["CLOSE","feed"]`, frame)
}

func TestClient_RelayManagement(t *testing.T) {
	c, d := newTestClient(t)
	assert.Empty(t, c.Relays())

	url, err := c.AddRelay(context.Background(), "https://Relay.Test/")
	require.NoError(t, err)
	assert.Equal(t, "wss://relay.test", url)
	_, ok := d.NextChannel(waitTime)
	require.True(t, ok)

	require.NoError(t, c.RemoveRelay(url))
	assert.Empty(t, c.Relays())
	assert.ErrorIs(t, c.RemoveRelay(url), nostrkit.ErrPrecondition)
}

func TestClient_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, d := newTestClient(t, nostrkit.WithRelays("relay.test"), nostrkit.WithMetricsRegisterer(reg))
	_, ok := d.NextChannel(waitTime)
	require.True(t, ok)

	_, out, err := c.Publish(context.Background(), nostrkit.Event{CreatedAt: 1, Kind: 1}, testutil.TestPrivateKey(t))
	require.NoError(t, err)
	require.NoError(t, out.Err())

	m := relay.NewMetrics(reg)
	assert.Equal(t, float64(1), promtestutil.ToFloat64(m.FramesSent.WithLabelValues("wss://relay.test")))
	assert.Equal(t, float64(relay.StateConnected), promtestutil.ToFloat64(m.State.WithLabelValues("wss://relay.test")))
}

func TestClient_Close(t *testing.T) {
	c, d := newTestClient(t, nostrkit.WithRelays("relay.test"))
	ch, ok := d.NextChannel(waitTime)
	require.True(t, ok)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, ch.IsClosed())

	for range c.Events() {
	}
	_, out, err := c.Publish(context.Background(), nostrkit.Event{CreatedAt: 1, Kind: 1}, testutil.TestPrivateKey(t))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNew_Preconditions(t *testing.T) {
	_, err := nostrkit.New(context.Background(), nostrkit.WithDialer(nil))
	assert.ErrorIs(t, err, nostrkit.ErrPrecondition)

	cfg := config.NewConfig()
	cfg.Queue.Overflow = "spill"
	_, err = nostrkit.New(context.Background(), nostrkit.WithConfig(cfg))
	assert.ErrorIs(t, err, nostrkit.ErrPrecondition)

	_, err = nostrkit.New(context.Background(),
		nostrkit.WithDialer(testutil.NewMockDialer()),
		nostrkit.WithRelays("ftp://relay.test"))
	assert.Error(t, err)
}

func TestVersionInfo(t *testing.T) {
	assert.True(t, strings.HasPrefix(nostrkit.VersionInfo(), "nostrkit "+nostrkit.Version))
}
