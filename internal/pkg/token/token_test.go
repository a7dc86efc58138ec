package token

import (
	"encoding/hex"
	"testing"
)

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := New()
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if len(tok) != DefaultBytes*2 {
			t.Fatalf("expected %d hex chars, got %d", DefaultBytes*2, len(tok))
		}
		if _, err := hex.DecodeString(tok); err != nil {
			t.Fatalf("token is not hex: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}
