package pool

import (
	"errors"

	"github.com/dep2p/go-nostrkit/internal/core/relay"
)

// Config 连接池配置
type Config struct {
	// Relays 初始中继列表
	Relays []string

	// Relay 每个连接的配置
	Relay relay.Config

	// MaxConcurrency 扇出并发上限（<= 0 表示不限）
	MaxConcurrency int

	// DedupCacheSize 事件去重缓存大小（0 = 不去重）
	DedupCacheSize int

	// ConnectOnStart fx 启动时连接全部中继
	ConnectOnStart bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Relay:          relay.DefaultConfig(),
		MaxConcurrency: 16,
		DedupCacheSize: 10000,
		ConnectOnStart: true,
	}
}

// Validate 校验配置
func (c Config) Validate() error {
	if c.DedupCacheSize < 0 {
		return errors.New("dedup cache size must be >= 0")
	}
	return c.Relay.Validate()
}
