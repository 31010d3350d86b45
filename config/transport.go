package config

import (
	"errors"
	"time"
)

// TransportConfig WebSocket 传输配置
type TransportConfig struct {
	// HandshakeTimeout 握手超时
	HandshakeTimeout Duration `json:"handshake_timeout"`

	// ReadLimit 单帧最大字节数，0 表示不限制
	ReadLimit int64 `json:"read_limit"`

	// EnableCompression 协商 permessage-deflate
	EnableCompression bool `json:"enable_compression"`

	// UserAgent 握手请求头
	UserAgent string `json:"user_agent,omitempty"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		HandshakeTimeout:  Duration(10 * time.Second),
		ReadLimit:         1 << 20,
		EnableCompression: true,
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.HandshakeTimeout <= 0 {
		return errors.New("transport.handshake_timeout must be positive")
	}
	if c.ReadLimit < 0 {
		return errors.New("transport.read_limit must be >= 0")
	}
	return nil
}
