package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const opaqueTokenBytes = 32

// MintOpaqueToken produces a random URL-safe token for the admin session and
// admin token slots.
func MintOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating opaque token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashOpaqueToken returns the hex SHA-256 digest stored in place of the token.
func HashOpaqueToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifyOpaqueToken compares a presented token against a stored digest without
// leaking timing information.
func VerifyOpaqueToken(token, storedHash string) bool {
	if token == "" || storedHash == "" {
		return false
	}
	computed := HashOpaqueToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
