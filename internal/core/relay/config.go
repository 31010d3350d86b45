package relay

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitPolicy 超出速率时的处理方式
type RateLimitPolicy string

const (
	// RateLimitQueue 入队等待令牌
	RateLimitQueue RateLimitPolicy = "queue"
	// RateLimitReject 直接返回 ErrRateLimited
	RateLimitReject RateLimitPolicy = "reject"
)

// OverflowPolicy 队列满时的处理方式
type OverflowPolicy string

const (
	// OverflowDropOldest 丢弃最早的帧
	OverflowDropOldest OverflowPolicy = "drop-oldest"
	// OverflowRejectNew 拒绝新帧
	OverflowRejectNew OverflowPolicy = "reject-new"
)

// BackoffConfig 重连退避配置
type BackoffConfig struct {
	// Base 第一次失败后的等待时间
	Base time.Duration

	// Factor 每次失败的增长倍数
	Factor float64

	// Max 等待时间上限（抖动之前）
	Max time.Duration

	// Jitter 附加抖动比例，实际等待为 d + [0, Jitter·d)
	Jitter float64
}

// RateLimitConfig 令牌桶配置
type RateLimitConfig struct {
	Enabled         bool
	Capacity        int
	RefillPerSecond float64
	OnExceeded      RateLimitPolicy
}

// QueueConfig 出站队列配置
type QueueConfig struct {
	MaxSize  int
	Overflow OverflowPolicy
}

// Config 连接配置
type Config struct {
	Backoff   BackoffConfig
	RateLimit RateLimitConfig
	Queue     QueueConfig

	// MaxAttempts 连续失败多少次后进入 Closed（0 = 不限）
	MaxAttempts int

	// ConnectTimeout 单次拨号超时
	ConnectTimeout time.Duration

	// WriteTimeout 单帧写超时
	WriteTimeout time.Duration

	// EventBuffer 事件通道缓冲
	EventBuffer int

	// EventBacklog 通道满时循环内暂存的事件上限，超出后丢弃最旧的事件
	EventBacklog int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Backoff: BackoffConfig{
			Base:   time.Second,
			Factor: 2.0,
			Max:    60 * time.Second,
			Jitter: 0.2,
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			Capacity:        20,
			RefillPerSecond: 10,
			OnExceeded:      RateLimitQueue,
		},
		Queue: QueueConfig{
			MaxSize:  1000,
			Overflow: OverflowDropOldest,
		},
		ConnectTimeout: 15 * time.Second,
		WriteTimeout:   10 * time.Second,
		EventBuffer:    256,
		EventBacklog:   4096,
	}
}

// Validate 校验配置
func (c Config) Validate() error {
	var errs []error
	if c.Backoff.Base <= 0 {
		errs = append(errs, errors.New("backoff base must be positive"))
	}
	if c.Backoff.Factor < 1 {
		errs = append(errs, fmt.Errorf("backoff factor must be >= 1, got %v", c.Backoff.Factor))
	}
	if c.Backoff.Max < c.Backoff.Base {
		errs = append(errs, errors.New("backoff max must be >= base"))
	}
	if c.Backoff.Jitter < 0 || c.Backoff.Jitter > 1 {
		errs = append(errs, fmt.Errorf("backoff jitter must be in [0,1], got %v", c.Backoff.Jitter))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Capacity <= 0 {
			errs = append(errs, errors.New("rate limit capacity must be positive"))
		}
		if c.RateLimit.RefillPerSecond <= 0 {
			errs = append(errs, errors.New("rate limit refill must be positive"))
		}
		switch c.RateLimit.OnExceeded {
		case RateLimitQueue, RateLimitReject:
		default:
			errs = append(errs, fmt.Errorf("unknown rate limit policy %q", c.RateLimit.OnExceeded))
		}
	}
	if c.Queue.MaxSize <= 0 {
		errs = append(errs, errors.New("queue max size must be positive"))
	}
	switch c.Queue.Overflow {
	case OverflowDropOldest, OverflowRejectNew:
	default:
		errs = append(errs, fmt.Errorf("unknown queue overflow policy %q", c.Queue.Overflow))
	}
	if c.MaxAttempts < 0 {
		errs = append(errs, errors.New("max attempts must be >= 0"))
	}
	if c.EventBuffer < 1 {
		errs = append(errs, fmt.Errorf("event buffer must be >= 1, got %d", c.EventBuffer))
	}
	if c.EventBacklog < 0 {
		errs = append(errs, errors.New("event backlog must be >= 0"))
	}
	return errors.Join(errs...)
}
