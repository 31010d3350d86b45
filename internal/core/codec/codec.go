package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/minio/sha256-simd"

	"github.com/dep2p/go-nostrkit/pkg/types"
)

// IDSize 事件 id 字节数
const IDSize = 32

// ============================================================================
//                              规范序列化
// ============================================================================

// CanonicalSerialize 生成事件 id 的哈希原像
//
// 输出 [0,pubkey,created_at,kind,tags,content]。
// pubkey、content 或任意标签值不是合法 UTF-8，或存在空标签时返回 ErrEncoding。
func CanonicalSerialize(pubkey string, createdAt int64, kind int, tags types.Tags, content string) ([]byte, error) {
	if err := checkFields(pubkey, tags, content); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 96+len(pubkey)+len(content)+tagsSizeHint(tags))
	buf = append(buf, '[', '0', ',')
	buf = appendString(buf, pubkey)
	buf = append(buf, ',')
	buf = appendInt(buf, createdAt)
	buf = append(buf, ',')
	buf = appendInt(buf, int64(kind))
	buf = append(buf, ',')
	buf = appendTags(buf, tags)
	buf = append(buf, ',')
	buf = appendString(buf, content)
	buf = append(buf, ']')
	return buf, nil
}

// ComputeID 计算规范序列化的 SHA-256
func ComputeID(serialized []byte) [IDSize]byte {
	return sha256.Sum256(serialized)
}

// IDHex 返回 id 的小写十六进制表示
func IDHex(id [IDSize]byte) string {
	return hex.EncodeToString(id[:])
}

// EventID 计算事件的 id（小写十六进制）
func EventID(ev *types.Event) (string, error) {
	id, err := EventIDBytes(ev)
	if err != nil {
		return "", err
	}
	return IDHex(id), nil
}

// EventIDBytes 计算事件的 id（原始字节）
func EventIDBytes(ev *types.Event) ([IDSize]byte, error) {
	if ev == nil {
		return [IDSize]byte{}, fmt.Errorf("%w: nil event", types.ErrPrecondition)
	}
	data, err := CanonicalSerialize(ev.PubKey, ev.CreatedAt, ev.Kind, ev.Tags, ev.Content)
	if err != nil {
		return [IDSize]byte{}, err
	}
	return ComputeID(data), nil
}

// ============================================================================
//                              完整序列化
// ============================================================================

// SerializeComplete 序列化完整事件对象
//
// 键顺序固定为 id, pubkey, created_at, kind, tags, content, sig，
// 十六进制字段转为小写。用于传输与存储，不用于计算标识。
func SerializeComplete(ev *types.Event) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: nil event", types.ErrPrecondition)
	}
	if err := checkFields(ev.PubKey, ev.Tags, ev.Content); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 320+len(ev.Content)+tagsSizeHint(ev.Tags))
	buf = append(buf, `{"id":`...)
	buf = appendString(buf, strings.ToLower(ev.ID))
	buf = append(buf, `,"pubkey":`...)
	buf = appendString(buf, strings.ToLower(ev.PubKey))
	buf = append(buf, `,"created_at":`...)
	buf = appendInt(buf, ev.CreatedAt)
	buf = append(buf, `,"kind":`...)
	buf = appendInt(buf, int64(ev.Kind))
	buf = append(buf, `,"tags":`...)
	buf = appendTags(buf, ev.Tags)
	buf = append(buf, `,"content":`...)
	buf = appendString(buf, ev.Content)
	buf = append(buf, `,"sig":`...)
	buf = appendString(buf, strings.ToLower(ev.Sig))
	buf = append(buf, '}')
	return buf, nil
}

// ParseEvent 解析事件 JSON 对象
//
// 只做 JSON 层面的解析，结构与签名校验由 validator 包负责。
func ParseEvent(data []byte) (*types.Event, error) {
	var ev types.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: event: %v", types.ErrEncoding, err)
	}
	return &ev, nil
}

// ============================================================================
//                              内部方法
// ============================================================================

// checkFields 检查 UTF-8 合法性与标签形态
func checkFields(pubkey string, tags types.Tags, content string) error {
	if !utf8.ValidString(pubkey) {
		return fmt.Errorf("%w: pubkey is not valid UTF-8", types.ErrEncoding)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("%w: content is not valid UTF-8", types.ErrEncoding)
	}
	for i, tag := range tags {
		if len(tag) == 0 {
			return fmt.Errorf("%w: tag %d is empty", types.ErrEncoding, i)
		}
		for _, v := range tag {
			if !utf8.ValidString(v) {
				return fmt.Errorf("%w: tag %d is not valid UTF-8", types.ErrEncoding, i)
			}
		}
	}
	return nil
}

func tagsSizeHint(tags types.Tags) int {
	n := 2
	for _, t := range tags {
		n += 3
		for _, v := range t {
			n += len(v) + 3
		}
	}
	return n
}
