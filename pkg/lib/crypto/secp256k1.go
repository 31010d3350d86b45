package crypto

import (
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/dep2p/go-nostrkit/pkg/interfaces"
)

// Secp256k1 密钥常量
const (
	// Secp256k1PrivateKeySize Secp256k1 私钥大小（32 字节）
	Secp256k1PrivateKeySize = 32
	// Secp256k1PublicKeySize Secp256k1 压缩公钥大小（33 字节）
	Secp256k1PublicKeySize = 33
	// Secp256k1XOnlyPublicKeySize x-only 公钥大小（32 字节）
	Secp256k1XOnlyPublicKeySize = 32
	// Secp256k1SignatureSize Secp256k1 签名大小（64 字节）
	Secp256k1SignatureSize = 64
	// HashSize 消息哈希大小（32 字节）
	HashSize = 32
)

// 压缩公钥前缀
const (
	// PubKeyPrefixEven Y 为偶数
	PubKeyPrefixEven byte = 0x02
	// PubKeyPrefixOdd Y 为奇数
	PubKeyPrefixOdd byte = 0x03
)

// ============================================================================
//                              Secp256k1Signer
// ============================================================================

// Secp256k1Signer 基于 decred secp256k1 的确定性 ECDSA 签名器
type Secp256k1Signer struct{}

var _ interfaces.Signer = (*Secp256k1Signer)(nil)

// NewSecp256k1Signer 创建签名器
func NewSecp256k1Signer() *Secp256k1Signer {
	return &Secp256k1Signer{}
}

// Sign 对消息哈希签名
//
// 使用 RFC6979 派生 nonce，同一输入总是得到同一签名。
// 返回 64 字节 R || S，两部分各 32 字节大端左补零。
func (s *Secp256k1Signer) Sign(hash []byte, privateKey []byte) ([]byte, error) {
	if len(hash) != HashSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidHashSize, HashSize, len(hash))
	}
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	// compact 格式: [recovery code][R 32 字节][S 32 字节]
	compact := ecdsa.SignCompact(key, hash, true)
	if len(compact) != 1+Secp256k1SignatureSize {
		return nil, fmt.Errorf("unexpected compact signature length %d", len(compact))
	}

	sig := make([]byte, Secp256k1SignatureSize)
	copy(sig, compact[1:])
	return sig, nil
}

// Verify 验证签名
//
// publicKey 必须是完整公钥（33 字节压缩或 65 字节未压缩）。
// 任何解析失败都返回 false。
func (s *Secp256k1Signer) Verify(publicKey []byte, hash []byte, sig []byte) bool {
	if len(sig) != Secp256k1SignatureSize {
		return false
	}

	pub, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return false
	}

	var r, sv secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return false
	}
	if overflow := sv.SetByteSlice(sig[32:]); overflow || sv.IsZero() {
		return false
	}

	return ecdsa.NewSignature(&r, &sv).Verify(hash, pub)
}

// DerivePublicKey 从私钥派生 33 字节压缩公钥
func (s *Secp256k1Signer) DerivePublicKey(privateKey []byte) ([]byte, error) {
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return key.PubKey().SerializeCompressed(), nil
}

// ============================================================================
//                              工厂函数
// ============================================================================

// GenerateSecp256k1Key 生成新的 Secp256k1 私钥（32 字节）
func GenerateSecp256k1Key(src io.Reader) ([]byte, error) {
	for {
		buf := make([]byte, Secp256k1PrivateKeySize)
		if _, err := io.ReadFull(src, buf); err != nil {
			return nil, err
		}

		// 确保私钥在有效范围内 [1, n-1]
		if _, err := parsePrivateKey(buf); err != nil {
			continue
		}
		return buf, nil
	}
}

// ParsePublicKey 解析完整公钥并返回 33 字节压缩形式
func ParsePublicKey(data []byte) ([]byte, error) {
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pub.SerializeCompressed(), nil
}

// parsePrivateKey 校验并解析私钥
func parsePrivateKey(data []byte) (*secp256k1.PrivateKey, error) {
	if len(data) != Secp256k1PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidKeySize, Secp256k1PrivateKeySize, len(data))
	}

	var d secp256k1.ModNScalar
	if overflow := d.SetByteSlice(data); overflow || d.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	return secp256k1.NewPrivateKey(&d), nil
}
