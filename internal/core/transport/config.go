package transport

import "time"

// Config 传输配置
type Config struct {
	// HandshakeTimeout WebSocket 握手超时
	HandshakeTimeout time.Duration

	// WriteTimeout 单帧写超时
	WriteTimeout time.Duration

	// ReadLimit 单帧最大字节数（0 = 不限制）
	ReadLimit int64

	// EnableCompression 是否协商 permessage-deflate
	EnableCompression bool

	// UserAgent 握手请求的 User-Agent（空 = 不设置）
	UserAgent string
}

// DefaultConfig 默认传输配置
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout:  10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadLimit:         1 << 20,
		EnableCompression: true,
	}
}
