package transport

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dep2p/go-nostrkit/pkg/types"
)

// NormalizeURL 规范化中继地址
//
// 缺省协议补 wss://，http/https 映射为 ws/wss，去掉末尾的 "/"。
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty relay url", types.ErrPrecondition)
	}
	if !strings.Contains(raw, "://") {
		raw = "wss://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: relay url %q: %v", types.ErrPrecondition, raw, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "ws", "http":
		u.Scheme = "ws"
	case "wss", "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported relay url scheme %q", types.ErrPrecondition, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: relay url %q has no host", types.ErrPrecondition, raw)
	}

	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}
