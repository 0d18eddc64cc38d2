package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Generate returns a hex-encoded opaque token of byteLen random bytes from
// the OS CSPRNG. Used for session tokens, reset tokens and API key secrets.
func Generate(byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashWithPepper is the at-rest form of an opaque token. Only hashes are
// persisted; a leaked table cannot be replayed without the pepper.
func HashWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}

// Prefix returns the non-secret display prefix of a credential.
func Prefix(raw string, n int) string {
	if len(raw) <= n {
		return raw
	}
	return raw[:n]
}

// ConstantTimeEqual compares two strings without early exit.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
