package validator

import (
	"strings"

	"github.com/dep2p/go-nostrkit/internal/core/codec"
	"github.com/dep2p/go-nostrkit/internal/core/signature"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

// DefaultMaxContentBytes 默认内容大小上限（64 KiB）
const DefaultMaxContentBytes = 64 * 1024

const (
	idHexLen     = 64
	pubkeyHexLen = 64
	sigHexLen    = 128
)

// Option 校验器选项
type Option func(*Validator)

// WithMaxContentBytes 设置内容大小上限
func WithMaxContentBytes(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxContentBytes = n
		}
	}
}

// Validator 事件校验器
//
// 持有签名服务以支持签名校验；本身无可变状态。
type Validator struct {
	sig             *signature.Service
	maxContentBytes int
}

// New 创建校验器
func New(sig *signature.Service, opts ...Option) *Validator {
	if sig == nil {
		sig = signature.NewService(nil)
	}
	v := &Validator{
		sig:             sig,
		maxContentBytes: DefaultMaxContentBytes,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateEvent 使用默认上限做结构校验
func ValidateEvent(ev *types.Event) Result {
	return validateStructure(ev, DefaultMaxContentBytes)
}

// ValidateEvent 结构校验（步骤 1-5）
func (v *Validator) ValidateEvent(ev *types.Event) Result {
	return validateStructure(ev, v.maxContentBytes)
}

// VerifySignature 仅校验签名
func (v *Validator) VerifySignature(ev *types.Event) Result {
	ok, err := v.sig.VerifyEvent(ev)
	if err != nil {
		return badSignature("signature: " + err.Error())
	}
	if !ok {
		return badSignature("signature verification failed")
	}
	return pass()
}

// ValidateEventComplete 结构校验通过后再校验签名
func (v *Validator) ValidateEventComplete(ev *types.Event) Result {
	if r := v.ValidateEvent(ev); !r.Valid {
		return r
	}
	return v.VerifySignature(ev)
}

func validateStructure(ev *types.Event, maxContentBytes int) Result {
	if ev == nil {
		return structural("event is nil")
	}

	// 1. 必填
	switch {
	case ev.ID == "":
		return structural("missing id")
	case ev.PubKey == "":
		return structural("missing pubkey")
	case ev.Sig == "":
		return structural("missing sig")
	case ev.CreatedAt <= 0:
		return structural("created_at must be positive, got %d", ev.CreatedAt)
	}

	// 2. 格式
	if !IsHex(ev.ID, idHexLen) {
		return structural("id must be %d hex characters", idHexLen)
	}
	if !IsLowerHex(ev.PubKey, pubkeyHexLen) {
		return structural("pubkey must be %d lowercase hex characters", pubkeyHexLen)
	}
	if !IsHex(ev.Sig, sigHexLen) {
		return structural("sig must be %d hex characters", sigHexLen)
	}

	// 3. 内容大小
	if len(ev.Content) > maxContentBytes {
		return structural("content is %d bytes, limit is %d", len(ev.Content), maxContentBytes)
	}

	// 4. 标签
	for i, tag := range ev.Tags {
		if len(tag) == 0 {
			return structural("tag %d is empty", i)
		}
		if tag[0] == "" {
			return structural("tag %d has empty name", i)
		}
	}

	// 5. 标识
	id, err := codec.EventID(ev)
	if err != nil {
		return structural("cannot compute id: %v", err)
	}
	if !strings.EqualFold(id, ev.ID) {
		return structural("id mismatch: computed %s", id)
	}

	return pass()
}

// IsHex 判断 s 是否为恰好 n 个十六进制字符（大小写均可）
func IsHex(s string, n int) bool {
	return isHex(s, n, true)
}

// IsLowerHex 判断 s 是否为恰好 n 个小写十六进制字符
//
// pubkey 原样进入哈希原像，大写形式会得到与中继不同的 id。
func IsLowerHex(s string, n int) bool {
	return isHex(s, n, false)
}

func isHex(s string, n int, upper bool) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case '0' <= c && c <= '9', 'a' <= c && c <= 'f':
		case upper && 'A' <= c && c <= 'F':
		default:
			return false
		}
	}
	return true
}
