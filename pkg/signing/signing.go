package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign computes the lowercase hex HMAC-SHA256 digest of data under secret.
func Sign(secret, data string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the digest of data under secret and compares it against
// provided in constant time. A mismatch is an ordinary false, not an error;
// the caller decides what a failed verification means.
func Verify(secret, data, provided string) bool {
	expected := Sign(secret, data)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}

// KV is a single key=value pair of an already-serialized canonical string.
type KV struct {
	Key   string
	Value string
}

// Canonical joins pairs as "k=v&k=v" in the exact order given. Gateways fix
// the field order per operation; callers must list pairs in that order.
func Canonical(pairs ...KV) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}
