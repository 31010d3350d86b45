package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	nostrkit "github.com/dep2p/go-nostrkit"
	"github.com/dep2p/go-nostrkit/internal/core/validator"
)

// ============================================================================
//                              参数解析（CLI 专用）
// ============================================================================

// relayList 可重复的 -relay 参数
type relayList []string

func (r *relayList) String() string { return strings.Join(*r, ",") }

func (r *relayList) Set(v string) error {
	for _, url := range strings.Split(v, ",") {
		if url = strings.TrimSpace(url); url != "" {
			*r = append(*r, url)
		}
	}
	return nil
}

// relaysFromEnv 读取 NOSTRKIT_RELAYS（逗号分隔）
func relaysFromEnv() []string {
	var r relayList
	_ = r.Set(os.Getenv("NOSTRKIT_RELAYS"))
	return r
}

// loadKey 解析十六进制私钥；参数不是 64 位十六进制时按文件路径读取
func loadKey(arg string) ([]byte, error) {
	if arg == "" {
		return nil, fmt.Errorf("%w: -key is required to publish", nostrkit.ErrPrecondition)
	}
	text := strings.TrimSpace(arg)
	if !validator.IsHex(text, 64) {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	key, err := hex.DecodeString(text)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("%w: private key must be 64 hex characters", nostrkit.ErrInvalidEncoding)
	}
	return key, nil
}

// parseFilter 解析 -filter JSON
func parseFilter(arg string) (*nostrkit.Filter, error) {
	var f nostrkit.Filter
	if err := json.Unmarshal([]byte(arg), &f); err != nil {
		return nil, fmt.Errorf("parse -filter: %w", err)
	}
	if err := validator.ValidateFilter(&f); err != nil {
		return nil, err
	}
	return &f, nil
}
