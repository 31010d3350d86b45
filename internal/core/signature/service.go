package signature

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/dep2p/go-nostrkit/internal/core/codec"
	"github.com/dep2p/go-nostrkit/pkg/interfaces"
	"github.com/dep2p/go-nostrkit/pkg/lib/crypto"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

// Service 签名服务
//
// 无内部可变状态，可被多个 goroutine 并发使用。
type Service struct {
	signer interfaces.Signer
}

// NewService 创建签名服务
func NewService(signer interfaces.Signer) *Service {
	if signer == nil {
		signer = crypto.NewSecp256k1Signer()
	}
	return &Service{signer: signer}
}

// ============================================================================
//                              签名
// ============================================================================

// Sign 对事件 id 签名，返回 64 字节 low-S 签名
func (s *Service) Sign(id []byte, privateKey []byte) ([]byte, error) {
	if len(id) != codec.IDSize {
		return nil, fmt.Errorf("%w: event id must be %d bytes, got %d", types.ErrInvalidEncoding, codec.IDSize, len(id))
	}

	raw, err := s.signer.Sign(id, privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSignature, err)
	}
	if len(raw) != crypto.Secp256k1SignatureSize {
		return nil, fmt.Errorf("%w: signer returned %d bytes", types.ErrSignature, len(raw))
	}

	return NormalizeLowS(raw)
}

// SignHex 十六进制版本的 Sign
func (s *Service) SignHex(idHex, privateKeyHex string) (string, error) {
	id, err := decodeHex("event id", idHex)
	if err != nil {
		return "", err
	}
	priv, err := decodeHex("private key", privateKeyHex)
	if err != nil {
		return "", err
	}
	sig, err := s.Sign(id, priv)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}

// SignEvent 为事件写入公钥、id 与签名
//
// 返回新的事件值，入参不会被修改。
func (s *Service) SignEvent(ev types.Event, privateKey []byte) (types.Event, error) {
	pub, err := s.DerivePublicKey(privateKey)
	if err != nil {
		return types.Event{}, err
	}

	signed := ev.Clone()
	signed.PubKey = hex.EncodeToString(XOnly(pub))

	id, err := codec.EventIDBytes(&signed)
	if err != nil {
		return types.Event{}, err
	}
	sig, err := s.Sign(id[:], privateKey)
	if err != nil {
		return types.Event{}, err
	}

	signed.ID = codec.IDHex(id)
	signed.Sig = hex.EncodeToString(sig)
	return signed, nil
}

// ============================================================================
//                              验证
// ============================================================================

// Verify 验证签名
//
// pub 为 32 字节 x-only 公钥时依次尝试 0x02、0x03 前缀；
// 为 33 字节压缩公钥时直接验证。签名长度不是 64 字节直接返回 false。
func (s *Service) Verify(id, sig, pub []byte) bool {
	if len(sig) != crypto.Secp256k1SignatureSize {
		return false
	}

	switch len(pub) {
	case crypto.Secp256k1XOnlyPublicKeySize:
		full := make([]byte, crypto.Secp256k1PublicKeySize)
		copy(full[1:], pub)
		for _, prefix := range []byte{crypto.PubKeyPrefixEven, crypto.PubKeyPrefixOdd} {
			full[0] = prefix
			if s.signer.Verify(full, id, sig) {
				return true
			}
		}
		return false
	case crypto.Secp256k1PublicKeySize:
		return s.signer.Verify(pub, id, sig)
	default:
		return false
	}
}

// VerifyHex 十六进制版本的 Verify
//
// 任一输入不是合法十六进制时返回 ErrInvalidEncoding。
func (s *Service) VerifyHex(idHex, sigHex, pubHex string) (bool, error) {
	id, err := decodeHex("event id", idHex)
	if err != nil {
		return false, err
	}
	sig, err := decodeHex("signature", sigHex)
	if err != nil {
		return false, err
	}
	pub, err := decodeHex("pubkey", pubHex)
	if err != nil {
		return false, err
	}
	return s.Verify(id, sig, pub), nil
}

// VerifyEvent 验证事件签名（不重新计算 id）
func (s *Service) VerifyEvent(ev *types.Event) (bool, error) {
	if ev == nil {
		return false, fmt.Errorf("%w: nil event", types.ErrPrecondition)
	}
	return s.VerifyHex(ev.ID, ev.Sig, ev.PubKey)
}

// ============================================================================
//                              公钥
// ============================================================================

// DerivePublicKey 从私钥派生 33 字节压缩公钥
func (s *Service) DerivePublicKey(privateKey []byte) ([]byte, error) {
	pub, err := s.signer.DerivePublicKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSignature, err)
	}
	return pub, nil
}

// XOnly 去掉压缩公钥的前缀字节，返回 32 字节 x 坐标
func XOnly(compressed []byte) []byte {
	if len(compressed) == crypto.Secp256k1PublicKeySize {
		return compressed[1:]
	}
	return compressed
}

// ============================================================================
//                              low-S 规范化
// ============================================================================

// NormalizeLowS 将签名的 S 分量规范化到 [1, n/2]
//
// 同一消息存在 (R, S) 与 (R, n-S) 两个等价签名，只有较小者是规范形式。
// 返回新的 64 字节切片。
func NormalizeLowS(sig []byte) ([]byte, error) {
	if len(sig) != crypto.Secp256k1SignatureSize {
		return nil, fmt.Errorf("%w: signature must be %d bytes", types.ErrSignature, crypto.Secp256k1SignatureSize)
	}

	var sv secp256k1.ModNScalar
	if overflow := sv.SetByteSlice(sig[32:]); overflow {
		return nil, fmt.Errorf("%w: S component overflows curve order", types.ErrSignature)
	}
	if sv.IsOverHalfOrder() {
		sv.Negate()
	}

	out := make([]byte, crypto.Secp256k1SignatureSize)
	copy(out[:32], sig[:32])
	sv.PutBytesUnchecked(out[32:])
	return out, nil
}

// IsLowS 判断签名是否已是 low-S 形式
func IsLowS(sig []byte) bool {
	if len(sig) != crypto.Secp256k1SignatureSize {
		return false
	}
	var sv secp256k1.ModNScalar
	if overflow := sv.SetByteSlice(sig[32:]); overflow {
		return false
	}
	return !sv.IsOverHalfOrder()
}

func decodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidEncoding, field, err)
	}
	return b, nil
}
