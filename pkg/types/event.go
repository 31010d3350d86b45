package types

import "time"

// ============================================================================
//                              Event 事件
// ============================================================================

// Event 签名事件
//
// JSON 键固定为 id, pubkey, created_at, kind, tags, content, sig。
// 十六进制字段（id、pubkey、sig）一律小写。
type Event struct {
	// ID 事件标识：规范序列化的 SHA-256（64 个十六进制字符）
	ID string `json:"id"`

	// PubKey 作者公钥（32 字节 x-only，64 个十六进制字符）
	PubKey string `json:"pubkey"`

	// CreatedAt Unix 秒
	CreatedAt int64 `json:"created_at"`

	// Kind 事件类型
	Kind int `json:"kind"`

	// Tags 有序标签列表
	Tags Tags `json:"tags"`

	// Content 内容（UTF-8）
	Content string `json:"content"`

	// Sig 签名（64 字节，128 个十六进制字符）
	Sig string `json:"sig"`
}

// Time 返回 CreatedAt 对应的时间
func (e *Event) Time() time.Time {
	return time.Unix(e.CreatedAt, 0)
}

// IsSigned 是否已写入 id 和 sig
func (e *Event) IsSigned() bool {
	return e.ID != "" && e.Sig != ""
}

// Clone 深拷贝事件（标签切片不与原值共享）
func (e Event) Clone() Event {
	e.Tags = e.Tags.Clone()
	return e
}

// ============================================================================
//                              Tag 标签
// ============================================================================

// Tag 单个标签，第一个元素为标签名
type Tag []string

// Key 返回标签名
func (t Tag) Key() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Value 返回标签的第一个值
func (t Tag) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1]
}

// Tags 有序标签列表
type Tags []Tag

// GetFirst 返回第一个指定名称的标签
func (tags Tags) GetFirst(key string) (Tag, bool) {
	for _, t := range tags {
		if t.Key() == key {
			return t, true
		}
	}
	return nil, false
}

// GetAll 返回所有指定名称的标签
func (tags Tags) GetAll(key string) Tags {
	var out Tags
	for _, t := range tags {
		if t.Key() == key {
			out = append(out, t)
		}
	}
	return out
}

// Clone 深拷贝标签列表
func (tags Tags) Clone() Tags {
	if tags == nil {
		return nil
	}
	out := make(Tags, len(tags))
	for i, t := range tags {
		out[i] = append(Tag(nil), t...)
	}
	return out
}
