package config

import (
	"github.com/dep2p/go-nostrkit/internal/core/pool"
	"github.com/dep2p/go-nostrkit/internal/core/relay"
	"github.com/dep2p/go-nostrkit/internal/core/transport"
)

// ============================================================================
//                              组件配置转换
// ============================================================================

// RelayConnection 转换为中继连接配置
func (c *Config) RelayConnection() relay.Config {
	return relay.Config{
		Backoff: relay.BackoffConfig{
			Base:   c.Relay.BackoffBase.Duration(),
			Factor: c.Relay.BackoffFactor,
			Max:    c.Relay.BackoffMax.Duration(),
			Jitter: c.Relay.BackoffJitter,
		},
		RateLimit: relay.RateLimitConfig{
			Enabled:         c.RateLimit.Enabled,
			Capacity:        c.RateLimit.Capacity,
			RefillPerSecond: c.RateLimit.RefillPerSecond,
			OnExceeded:      relay.RateLimitPolicy(c.RateLimit.OnExceeded),
		},
		Queue: relay.QueueConfig{
			MaxSize:  c.Queue.MaxSize,
			Overflow: relay.OverflowPolicy(c.Queue.Overflow),
		},
		MaxAttempts:    c.Relay.MaxAttempts,
		ConnectTimeout: c.Relay.ConnectTimeout.Duration(),
		WriteTimeout:   c.Relay.WriteTimeout.Duration(),
		EventBuffer:    c.Relay.EventBuffer,
		EventBacklog:   c.Relay.EventBacklog,
	}
}

// PoolConfig 转换为连接池配置
func (c *Config) PoolConfig() pool.Config {
	return pool.Config{
		Relays:         append([]string(nil), c.Relays...),
		Relay:          c.RelayConnection(),
		MaxConcurrency: c.Pool.MaxConcurrency,
		DedupCacheSize: c.Pool.DedupCacheSize,
		ConnectOnStart: c.Pool.ConnectOnStart,
	}
}

// TransportConfig 转换为传输配置
//
// 写超时与中继连接共用 Relay.WriteTimeout。
func (c *Config) TransportConfig() transport.Config {
	return transport.Config{
		HandshakeTimeout:  c.Transport.HandshakeTimeout.Duration(),
		WriteTimeout:      c.Relay.WriteTimeout.Duration(),
		ReadLimit:         c.Transport.ReadLimit,
		EnableCompression: c.Transport.EnableCompression,
		UserAgent:         c.Transport.UserAgent,
	}
}
