// Package token generates opaque single-use tokens for email verification
// and password reset links.
package token

import (
	"crypto/rand"
	"encoding/hex"
)

// DefaultBytes yields 160 bits of entropy
const DefaultBytes = 20

// New returns DefaultBytes random bytes, hex encoded
func New() (string, error) {
	return NewSize(DefaultBytes)
}

// NewSize returns n random bytes, hex encoded
func NewSize(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
