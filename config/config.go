// Package config 提供 nostrkit 的统一配置
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 提供 Default*Config() 与 Validate()。配置可以从 JSON 加载：
//
//	cfg, err := config.Load("nostrkit.json")
//	cfg.Relays = append(cfg.Relays, "wss://relay.example.com")
//
// 各组件的运行时配置通过 Pool()、RelayConnection()、Transport() 转换得到。
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/multierr"
)

// Config 完整配置
type Config struct {
	// Relays 初始中继列表
	Relays []string `json:"relays,omitempty"`

	// Relay 单连接配置（退避、超时）
	Relay RelayConfig `json:"relay"`

	// RateLimit 出站速率限制
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Queue 离线出站队列
	Queue QueueConfig `json:"queue"`

	// Transport WebSocket 传输
	Transport TransportConfig `json:"transport"`

	// Validation 事件校验
	Validation ValidationConfig `json:"validation"`

	// Pool 连接池
	Pool PoolConfig `json:"pool"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Relay:      DefaultRelayConfig(),
		RateLimit:  DefaultRateLimitConfig(),
		Queue:      DefaultQueueConfig(),
		Transport:  DefaultTransportConfig(),
		Validation: DefaultValidationConfig(),
		Pool:       DefaultPoolConfig(),
	}
}

// Validate 验证所有子配置，返回全部错误
func (c *Config) Validate() error {
	return multierr.Combine(
		c.Relay.Validate(),
		c.RateLimit.Validate(),
		c.Queue.Validate(),
		c.Transport.Validate(),
		c.Validation.Validate(),
		c.Pool.Validate(),
	)
}

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load 从 JSON 文件加载配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return FromJSON(data)
}

// ToJSON 序列化为带缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
