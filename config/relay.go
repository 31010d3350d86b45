package config

import (
	"errors"
	"time"
)

// RelayConfig 单个中继连接配置
type RelayConfig struct {
	// BackoffBase 第一次失败后的等待时间
	BackoffBase Duration `json:"backoff_base"`

	// BackoffFactor 每次失败的增长倍数
	BackoffFactor float64 `json:"backoff_factor"`

	// BackoffMax 等待上限
	BackoffMax Duration `json:"backoff_max"`

	// BackoffJitter 附加抖动比例 [0,1]
	BackoffJitter float64 `json:"backoff_jitter"`

	// MaxAttempts 连续失败上限，0 表示无限重试
	MaxAttempts int `json:"max_attempts"`

	// ConnectTimeout 单次拨号超时
	ConnectTimeout Duration `json:"connect_timeout"`

	// WriteTimeout 单帧写超时
	WriteTimeout Duration `json:"write_timeout"`

	// EventBuffer 事件通道缓冲
	EventBuffer int `json:"event_buffer"`

	// EventBacklog 事件通道满时暂存的事件上限
	EventBacklog int `json:"event_backlog"`
}

// DefaultRelayConfig 返回默认中继连接配置
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		BackoffBase:    Duration(1 * time.Second),
		BackoffFactor:  2.0,
		BackoffMax:     Duration(60 * time.Second),
		BackoffJitter:  0.2,
		MaxAttempts:    0,
		ConnectTimeout: Duration(15 * time.Second),
		WriteTimeout:   Duration(10 * time.Second),
		EventBuffer:    256,
		EventBacklog:   4096,
	}
}

// Validate 验证中继连接配置
func (c RelayConfig) Validate() error {
	if c.BackoffBase <= 0 {
		return errors.New("relay.backoff_base must be positive")
	}
	if c.BackoffFactor < 1 {
		return errors.New("relay.backoff_factor must be >= 1")
	}
	if c.BackoffMax < c.BackoffBase {
		return errors.New("relay.backoff_max must be >= backoff_base")
	}
	if c.BackoffJitter < 0 || c.BackoffJitter > 1 {
		return errors.New("relay.backoff_jitter must be in [0, 1]")
	}
	if c.MaxAttempts < 0 {
		return errors.New("relay.max_attempts must be >= 0")
	}
	if c.ConnectTimeout <= 0 {
		return errors.New("relay.connect_timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("relay.write_timeout must be positive")
	}
	if c.EventBuffer < 1 {
		return errors.New("relay.event_buffer must be >= 1")
	}
	if c.EventBacklog < 0 {
		return errors.New("relay.event_backlog must be >= 0")
	}
	return nil
}
