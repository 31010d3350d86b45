package signature

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-nostrkit/internal/core/codec"
	"github.com/dep2p/go-nostrkit/pkg/lib/crypto"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

const testPrivHex = "b7e151628aed2a6abf7158809cf4f3c762e7160f38b4da56a784d9045190cfef"

func testPriv(t *testing.T) []byte {
	t.Helper()
	b, err := hex.DecodeString(testPrivHex)
	require.NoError(t, err)
	return b
}

func testID(seed string) []byte {
	id := codec.ComputeID([]byte(seed))
	return id[:]
}

// highSSigner 返回 S 取反后的签名，模拟未规范化的曲线库输出
type highSSigner struct {
	*crypto.Secp256k1Signer
}

func (h highSSigner) Sign(hash, priv []byte) ([]byte, error) {
	sig, err := h.Secp256k1Signer.Sign(hash, priv)
	if err != nil {
		return nil, err
	}
	var s secp256k1.ModNScalar
	s.SetByteSlice(sig[32:])
	s.Negate()
	s.PutBytesUnchecked(sig[32:])
	return sig, nil
}

// failingSigner 模拟曲线库报错
type failingSigner struct{ *crypto.Secp256k1Signer }

func (failingSigner) Sign([]byte, []byte) ([]byte, error) { return nil, errors.New("boom") }

func TestSign_Deterministic(t *testing.T) {
	svc := NewService(nil)
	priv := testPriv(t)
	id := testID("event")

	sig1, err := svc.Sign(id, priv)
	require.NoError(t, err)
	sig2, err := svc.Sign(id, priv)
	require.NoError(t, err)

	assert.Equal(t, sig1, sig2)
	assert.Len(t, sig1, 64)
	assert.True(t, IsLowS(sig1))
}

func TestSign_NormalizesHighS(t *testing.T) {
	priv := testPriv(t)
	id := testID("high-s")

	raw, err := highSSigner{crypto.NewSecp256k1Signer()}.Sign(id, priv)
	require.NoError(t, err)
	require.False(t, IsLowS(raw), "fake signer must produce high S")

	svc := NewService(highSSigner{crypto.NewSecp256k1Signer()})
	sig, err := svc.Sign(id, priv)
	require.NoError(t, err)
	assert.True(t, IsLowS(sig))

	// 规范化结果与直接签名的 low-S 结果一致
	want, err := NewService(nil).Sign(id, priv)
	require.NoError(t, err)
	assert.Equal(t, want, sig)
	assert.Equal(t, raw[:32], sig[:32])
}

func TestVerify_Symmetry(t *testing.T) {
	svc := NewService(nil)
	for i := 0; i < 8; i++ {
		priv := testID("key-" + string(rune('a'+i)))
		id := testID("msg-" + string(rune('a'+i)))

		pub, err := svc.DerivePublicKey(priv)
		require.NoError(t, err)
		sig, err := svc.Sign(id, priv)
		require.NoError(t, err)

		assert.True(t, svc.Verify(id, sig, pub), "compressed key %d", i)
		assert.True(t, svc.Verify(id, sig, XOnly(pub)), "x-only key %d", i)
	}
}

func TestVerify_DualPrefix(t *testing.T) {
	svc := NewService(nil)

	// 找到一把 Y 为奇数的密钥，确保 0x03 回退路径被覆盖
	var priv, pub []byte
	for i := 0; i < 64; i++ {
		candidate := testID("odd-" + string(rune('A'+i)))
		p, err := svc.DerivePublicKey(candidate)
		require.NoError(t, err)
		if p[0] == crypto.PubKeyPrefixOdd {
			priv, pub = candidate, p
			break
		}
	}
	require.NotNil(t, priv, "no odd-parity key found")

	id := testID("dual")
	sig, err := svc.Sign(id, priv)
	require.NoError(t, err)

	assert.True(t, svc.Verify(id, sig, XOnly(pub)))

	// 只用偶数前缀时必然失败
	even := append([]byte{crypto.PubKeyPrefixEven}, XOnly(pub)...)
	assert.False(t, svc.Verify(id, sig, even))
}

func TestVerify_Rejects(t *testing.T) {
	svc := NewService(nil)
	priv := testPriv(t)
	pub, _ := svc.DerivePublicKey(priv)
	id := testID("reject")
	sig, _ := svc.Sign(id, priv)

	assert.False(t, svc.Verify(id, sig[:63], pub), "short signature")
	assert.False(t, svc.Verify(id, append(sig, 0), pub), "long signature")
	assert.False(t, svc.Verify(testID("other"), sig, pub), "other message")
	assert.False(t, svc.Verify(id, sig, pub[:10]), "bad key length")

	flipped := bytes.Clone(sig)
	flipped[10] ^= 0x01
	assert.False(t, svc.Verify(id, flipped, pub), "flipped bit")
}

func TestHexVariants(t *testing.T) {
	svc := NewService(nil)
	idHex := hex.EncodeToString(testID("hex"))

	sigHex, err := svc.SignHex(idHex, testPrivHex)
	require.NoError(t, err)
	assert.Len(t, sigHex, 128)

	pub, _ := svc.DerivePublicKey(testPriv(t))
	ok, err := svc.VerifyHex(idHex, sigHex, hex.EncodeToString(XOnly(pub)))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.SignHex("zz", testPrivHex)
	assert.ErrorIs(t, err, types.ErrInvalidEncoding)
	_, err = svc.VerifyHex(idHex, "xyz", "00")
	assert.ErrorIs(t, err, types.ErrInvalidEncoding)
}

func TestSign_Errors(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Sign([]byte{1, 2, 3}, testPriv(t))
	assert.ErrorIs(t, err, types.ErrInvalidEncoding)

	_, err = svc.Sign(testID("x"), make([]byte, 32))
	assert.ErrorIs(t, err, types.ErrSignature)

	_, err = NewService(failingSigner{crypto.NewSecp256k1Signer()}).Sign(testID("x"), testPriv(t))
	assert.ErrorIs(t, err, types.ErrSignature)

	_, err = NormalizeLowS(make([]byte, 10))
	assert.ErrorIs(t, err, types.ErrSignature)
}

func TestSignEvent_TamperInvalidates(t *testing.T) {
	svc := NewService(nil)
	unsigned := types.Event{CreatedAt: 1700000000, Kind: 1, Tags: types.Tags{{"t", "nostr"}}, Content: "hello"}

	signed, err := svc.SignEvent(unsigned, testPriv(t))
	require.NoError(t, err)
	assert.Empty(t, unsigned.ID, "input must not be mutated")
	assert.Len(t, signed.PubKey, 64)

	ok, err := svc.VerifyEvent(&signed)
	require.NoError(t, err)
	assert.True(t, ok)

	tampered := signed.Clone()
	tampered.Content = "hellO"
	newID, err := codec.EventID(&tampered)
	require.NoError(t, err)
	assert.NotEqual(t, signed.ID, newID)

	tampered.ID = newID
	ok, err = svc.VerifyEvent(&tampered)
	require.NoError(t, err)
	assert.False(t, ok)
}
