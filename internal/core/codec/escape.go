package codec

import (
	"strconv"

	"github.com/dep2p/go-nostrkit/pkg/types"
)

const hexDigits = "0123456789abcdef"

// appendString 以规范 JSON 字符串形式追加 s
//
// 转义 " \ \n \r \t \b \f，其余 0x00-0x1f 控制字符写作 \u00xx，
// 其它字节（包括多字节 UTF-8）原样输出。
func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		default:
			if c < 0x20 {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0x0f])
			} else {
				dst = append(dst, c)
			}
		}
	}
	return append(dst, '"')
}

// AppendString 追加规范 JSON 字符串（供协议层构造帧使用）
func AppendString(dst []byte, s string) []byte {
	return appendString(dst, s)
}

// appendTags 追加标签数组
func appendTags(dst []byte, tags types.Tags) []byte {
	dst = append(dst, '[')
	for i, tag := range tags {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, '[')
		for j, v := range tag {
			if j > 0 {
				dst = append(dst, ',')
			}
			dst = appendString(dst, v)
		}
		dst = append(dst, ']')
	}
	return append(dst, ']')
}

func appendInt(dst []byte, v int64) []byte {
	return strconv.AppendInt(dst, v, 10)
}
