package crypto

import "errors"

// ============================================================================
//                              错误定义
// ============================================================================

// 密钥相关错误
var (
	// ErrInvalidKeySize 密钥大小无效
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidPublicKey 公钥无效
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrInvalidPrivateKey 私钥无效（为零或不小于曲线阶）
	ErrInvalidPrivateKey = errors.New("invalid private key")
)

// 签名相关错误
var (
	// ErrInvalidHashSize 消息哈希长度无效
	ErrInvalidHashSize = errors.New("invalid message hash size")
)
