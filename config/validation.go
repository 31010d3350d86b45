package config

import "errors"

// ValidationConfig 入站事件校验配置
type ValidationConfig struct {
	// VerifySignatures 入站事件是否校验签名
	VerifySignatures bool `json:"verify_signatures"`

	// MaxContentBytes 事件内容上限（UTF-8 字节）
	MaxContentBytes int `json:"max_content_bytes"`
}

// DefaultValidationConfig 返回默认校验配置
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		VerifySignatures: true,
		MaxContentBytes:  64 * 1024,
	}
}

// Validate 验证校验配置
func (c ValidationConfig) Validate() error {
	if c.MaxContentBytes <= 0 {
		return errors.New("validation.max_content_bytes must be positive")
	}
	return nil
}
