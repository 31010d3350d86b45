package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Filter 订阅过滤器
//
// 所有字段均为可选；nil 表示未设置。
// 标签过滤以单字母标签名为键，JSON 形态为 "#e": [...]。
type Filter struct {
	IDs     []string            `json:"ids,omitempty"`
	Authors []string            `json:"authors,omitempty"`
	Kinds   []int               `json:"kinds,omitempty"`
	Tags    map[string][]string `json:"-"`
	Since   *int64              `json:"since,omitempty"`
	Until   *int64              `json:"until,omitempty"`
	Limit   *int                `json:"limit,omitempty"`
}

// Int64 返回指针，便于构造 Since/Until
func Int64(v int64) *int64 { return &v }

// Int 返回指针，便于构造 Limit
func Int(v int) *int { return &v }

// MarshalJSON 实现 json.Marshaler
//
// 输出键按字典序排列，结果确定。
func (f Filter) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 6+len(f.Tags))
	if f.IDs != nil {
		m["ids"] = f.IDs
	}
	if f.Authors != nil {
		m["authors"] = f.Authors
	}
	if f.Kinds != nil {
		m["kinds"] = f.Kinds
	}
	for name, values := range f.Tags {
		if values == nil {
			values = []string{}
		}
		m["#"+name] = values
	}
	if f.Since != nil {
		m["since"] = *f.Since
	}
	if f.Until != nil {
		m["until"] = *f.Until
	}
	if f.Limit != nil {
		m["limit"] = *f.Limit
	}
	return json.Marshal(m)
}

// UnmarshalJSON 实现 json.Unmarshaler
func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: filter: %v", ErrEncoding, err)
	}

	out := Filter{}
	for key, value := range raw {
		var err error
		switch {
		case key == "ids":
			err = json.Unmarshal(value, &out.IDs)
		case key == "authors":
			err = json.Unmarshal(value, &out.Authors)
		case key == "kinds":
			err = json.Unmarshal(value, &out.Kinds)
		case key == "since":
			out.Since = new(int64)
			err = json.Unmarshal(value, out.Since)
		case key == "until":
			out.Until = new(int64)
			err = json.Unmarshal(value, out.Until)
		case key == "limit":
			out.Limit = new(int)
			err = json.Unmarshal(value, out.Limit)
		case strings.HasPrefix(key, "#"):
			var values []string
			err = json.Unmarshal(value, &values)
			if out.Tags == nil {
				out.Tags = make(map[string][]string)
			}
			out.Tags[key[1:]] = values
		default:
			// 未知扩展字段（例如 search）直接忽略
		}
		if err != nil {
			return fmt.Errorf("%w: filter field %q: %v", ErrEncoding, key, err)
		}
	}

	*f = out
	return nil
}
