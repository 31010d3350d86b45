package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dep2p/go-nostrkit/internal/core/codec"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

// MaxSubscriptionIDLength 订阅 id 最大长度
const MaxSubscriptionIDLength = 64

// BuildPublish 构造 ["EVENT", <event>]
func BuildPublish(ev *types.Event) ([]byte, error) {
	return buildEventFrame(LabelEvent, ev)
}

// BuildAuth 构造 ["AUTH", <event>]，用于回应认证挑战
func BuildAuth(ev *types.Event) ([]byte, error) {
	return buildEventFrame(LabelAuth, ev)
}

// BuildSubscribe 构造 ["REQ", <sub-id>, <filter>...]
//
// 至少需要一个过滤器。过滤器内容由调用方事先校验。
func BuildSubscribe(subID string, filters ...*types.Filter) ([]byte, error) {
	if err := checkSubscriptionID(subID); err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return nil, fmt.Errorf("%w: REQ needs at least one filter", types.ErrPrecondition)
	}

	out := []byte(`["REQ",`)
	out = codec.AppendString(out, subID)
	for i, f := range filters {
		if f == nil {
			return nil, fmt.Errorf("%w: filter %d is nil", types.ErrPrecondition, i)
		}
		data, err := json.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("%w: filter %d: %v", types.ErrEncoding, i, err)
		}
		out = append(out, ',')
		out = append(out, data...)
	}
	return append(out, ']'), nil
}

// IsSubscribeFrame 判断 frame 是否为 BuildSubscribe 为 subID 构造的 REQ 帧
func IsSubscribeFrame(frame []byte, subID string) bool {
	prefix := []byte(`["REQ",`)
	prefix = codec.AppendString(prefix, subID)
	prefix = append(prefix, ',')
	return bytes.HasPrefix(frame, prefix)
}

// BuildUnsubscribe 构造 ["CLOSE", <sub-id>]
func BuildUnsubscribe(subID string) ([]byte, error) {
	if err := checkSubscriptionID(subID); err != nil {
		return nil, err
	}
	out := []byte(`["CLOSE",`)
	out = codec.AppendString(out, subID)
	return append(out, ']'), nil
}

// MachineReadablePrefix 拆分 OK/CLOSED 原因中的机器可读前缀
//
// "duplicate: already have this event" 返回 ("duplicate", "already have this event")。
// 没有前缀时 prefix 为空，message 为原文。
func MachineReadablePrefix(reason string) (prefix, message string) {
	i := strings.Index(reason, ":")
	if i <= 0 || strings.ContainsAny(reason[:i], " \t") {
		return "", reason
	}
	return reason[:i], strings.TrimSpace(reason[i+1:])
}

func buildEventFrame(label string, ev *types.Event) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: %s needs an event", types.ErrPrecondition, label)
	}
	if !ev.IsSigned() {
		return nil, fmt.Errorf("%w: %s event is not signed", types.ErrPrecondition, label)
	}

	data, err := codec.SerializeComplete(ev)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(label)+len(data)+5)
	out = append(out, '[')
	out = codec.AppendString(out, label)
	out = append(out, ',')
	out = append(out, data...)
	return append(out, ']'), nil
}

func checkSubscriptionID(subID string) error {
	if subID == "" {
		return fmt.Errorf("%w: empty subscription id", types.ErrPrecondition)
	}
	if len(subID) > MaxSubscriptionIDLength {
		return fmt.Errorf("%w: subscription id longer than %d", types.ErrPrecondition, MaxSubscriptionIDLength)
	}
	return nil
}
