package relay

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "nostrkit"

// Metrics 中继连接指标
//
// 所有指标以 relay 标签区分连接。nil *Metrics 的方法均为空操作。
type Metrics struct {
	FramesSent     *prometheus.CounterVec
	FramesReceived *prometheus.CounterVec
	Reconnects     *prometheus.CounterVec
	QueueDropped   *prometheus.CounterVec
	RejectedEvents *prometheus.CounterVec
	ParseErrors    *prometheus.CounterVec
	RateLimited    *prometheus.CounterVec
	EventsDropped  *prometheus.CounterVec
	State          *prometheus.GaugeVec
}

// NewMetrics 创建并注册指标
//
// reg 为 nil 时不注册。同一 Registerer 上重复创建会复用已注册的收集器。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) *prometheus.CounterVec {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      name,
			Help:      help,
		}, []string{"relay"})
		return register(reg, c)
	}

	return &Metrics{
		FramesSent:     counter("frames_sent_total", "Frames written to the relay."),
		FramesReceived: counter("frames_received_total", "Frames read from the relay."),
		Reconnects:     counter("reconnects_total", "Reconnect attempts after a failure."),
		QueueDropped:   counter("queue_dropped_total", "Outbound frames dropped because the queue was full."),
		RejectedEvents: counter("rejected_events_total", "Inbound events that failed validation."),
		ParseErrors:    counter("parse_errors_total", "Inbound frames that could not be parsed."),
		RateLimited:    counter("rate_limited_total", "Sends that exceeded the token bucket."),
		EventsDropped:  counter("events_dropped_total", "Observer events dropped because the backlog was full."),
		State: register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "state",
			Help:      "Current connection state (0 disconnected, 1 connecting, 2 connected, 3 reconnecting, 4 closed).",
		}, []string{"relay"})),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

// relayMetrics 绑定到单个中继的指标视图
type relayMetrics struct {
	m   *Metrics
	url string
}

func (m *Metrics) forRelay(url string) relayMetrics {
	return relayMetrics{m: m, url: url}
}

func (r relayMetrics) sent() {
	if r.m != nil {
		r.m.FramesSent.WithLabelValues(r.url).Inc()
	}
}

func (r relayMetrics) received() {
	if r.m != nil {
		r.m.FramesReceived.WithLabelValues(r.url).Inc()
	}
}

func (r relayMetrics) reconnect() {
	if r.m != nil {
		r.m.Reconnects.WithLabelValues(r.url).Inc()
	}
}

func (r relayMetrics) dropped(n int) {
	if r.m != nil && n > 0 {
		r.m.QueueDropped.WithLabelValues(r.url).Add(float64(n))
	}
}

func (r relayMetrics) rejected() {
	if r.m != nil {
		r.m.RejectedEvents.WithLabelValues(r.url).Inc()
	}
}

func (r relayMetrics) parseError() {
	if r.m != nil {
		r.m.ParseErrors.WithLabelValues(r.url).Inc()
	}
}

func (r relayMetrics) rateLimited() {
	if r.m != nil {
		r.m.RateLimited.WithLabelValues(r.url).Inc()
	}
}

func (r relayMetrics) eventDropped() {
	if r.m != nil {
		r.m.EventsDropped.WithLabelValues(r.url).Inc()
	}
}

func (r relayMetrics) state(s State) {
	if r.m != nil {
		r.m.State.WithLabelValues(r.url).Set(float64(s))
	}
}
