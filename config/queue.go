package config

import "errors"

// QueueConfig 离线出站队列配置
type QueueConfig struct {
	// MaxSize 队列容量
	MaxSize int `json:"max_size"`

	// Overflow 满时策略："drop-oldest" 或 "reject-new"
	Overflow string `json:"overflow"`
}

// DefaultQueueConfig 返回默认队列配置
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		MaxSize:  1000,
		Overflow: "drop-oldest",
	}
}

// Validate 验证队列配置
func (c QueueConfig) Validate() error {
	if c.MaxSize <= 0 {
		return errors.New("queue.max_size must be positive")
	}
	switch c.Overflow {
	case "drop-oldest", "reject-new":
	default:
		return errors.New(`queue.overflow must be "drop-oldest" or "reject-new"`)
	}
	return nil
}
