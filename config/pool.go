package config

import "errors"

// PoolConfig 连接池配置
type PoolConfig struct {
	// MaxConcurrency 扇出并发上限，0 表示不限
	MaxConcurrency int `json:"max_concurrency"`

	// DedupCacheSize 入站事件去重缓存，0 表示关闭去重
	DedupCacheSize int `json:"dedup_cache_size"`

	// ConnectOnStart 启动时立即连接全部中继
	ConnectOnStart bool `json:"connect_on_start"`
}

// DefaultPoolConfig 返回默认连接池配置
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConcurrency: 16,
		DedupCacheSize: 10000,
		ConnectOnStart: true,
	}
}

// Validate 验证连接池配置
func (c PoolConfig) Validate() error {
	if c.MaxConcurrency < 0 {
		return errors.New("pool.max_concurrency must be >= 0")
	}
	if c.DedupCacheSize < 0 {
		return errors.New("pool.dedup_cache_size must be >= 0")
	}
	return nil
}
