package config

import "errors"

// RateLimitConfig 出站令牌桶配置
type RateLimitConfig struct {
	// Enabled 启用速率限制
	Enabled bool `json:"enabled"`

	// Capacity 桶容量（突发帧数）
	Capacity int `json:"capacity"`

	// RefillPerSecond 每秒补充的令牌
	RefillPerSecond float64 `json:"refill_per_second"`

	// OnExceeded 超出时的处理："queue" 或 "reject"
	OnExceeded string `json:"on_exceeded"`
}

// DefaultRateLimitConfig 返回默认速率限制配置
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:         true,
		Capacity:        20,
		RefillPerSecond: 10,
		OnExceeded:      "queue",
	}
}

// Validate 验证速率限制配置
func (c RateLimitConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Capacity <= 0 {
		return errors.New("rate_limit.capacity must be positive")
	}
	if c.RefillPerSecond <= 0 {
		return errors.New("rate_limit.refill_per_second must be positive")
	}
	switch c.OnExceeded {
	case "queue", "reject":
	default:
		return errors.New(`rate_limit.on_exceeded must be "queue" or "reject"`)
	}
	return nil
}
