package testutil

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-nostrkit/internal/core/codec"
	"github.com/dep2p/go-nostrkit/internal/core/signature"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

// TestPrivateKeyHex 固定测试私钥
const TestPrivateKeyHex = "b7e151628aed2a6abf7158809cf4f3c762e7160f38b4da56a784d9045190cfef"

// TestPrivateKey 固定测试私钥（字节）
func TestPrivateKey(t testing.TB) []byte {
	t.Helper()
	b, err := hex.DecodeString(TestPrivateKeyHex)
	require.NoError(t, err)
	return b
}

// SignedNote 返回用测试私钥签名的 kind 1 事件
func SignedNote(t testing.TB, createdAt int64, content string) types.Event {
	t.Helper()
	ev, err := signature.NewService(nil).SignEvent(types.Event{
		CreatedAt: createdAt,
		Kind:      1,
		Tags:      types.Tags{},
		Content:   content,
	}, TestPrivateKey(t))
	require.NoError(t, err)
	return ev
}

// EventFrame 构造入站 ["EVENT", subID, ev] 帧
func EventFrame(t testing.TB, subID string, ev *types.Event) string {
	t.Helper()
	body, err := codec.SerializeComplete(ev)
	require.NoError(t, err)
	out := []byte(`["EVENT",`)
	out = codec.AppendString(out, subID)
	out = append(out, ',')
	out = append(out, body...)
	out = append(out, ']')
	return string(out)
}
