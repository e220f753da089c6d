package signing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	digest := Sign("secret-key", "accessKey=abc&amount=500000&orderId=x1")
	require.Len(t, digest, 64)
	require.True(t, Verify("secret-key", "accessKey=abc&amount=500000&orderId=x1", digest))
}

func TestVerifyRejectsTamperedDigest(t *testing.T) {
	data := "app_id=553|app_trans_id=210901_abc|app_user=payer"
	digest := Sign("key2", data)

	for i := range digest {
		tampered := []byte(digest)
		if tampered[i] == 'a' {
			tampered[i] = 'b'
		} else {
			tampered[i] = 'a'
		}
		require.False(t, Verify("key2", data, string(tampered)), "flipped position %d", i)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	digest := Sign("key1", "data")
	require.False(t, Verify("key2", "data", digest))
}

func TestVerifyAcceptsUppercaseDigest(t *testing.T) {
	digest := Sign("s", "payload")
	upper := ""
	for _, r := range digest {
		if r >= 'a' && r <= 'f' {
			upper += string(r - 32)
		} else {
			upper += string(r)
		}
	}
	require.True(t, Verify("s", "payload", upper))
}

func TestCanonicalPreservesOrder(t *testing.T) {
	s := Canonical(
		KV{"accessKey", "abc"},
		KV{"amount", "500000"},
		KV{"extraData", ""},
	)
	require.Equal(t, "accessKey=abc&amount=500000&extraData=", s)

	reordered := Canonical(
		KV{"amount", "500000"},
		KV{"accessKey", "abc"},
		KV{"extraData", ""},
	)
	require.NotEqual(t, Sign("k", s), Sign("k", reordered))
}
