package keys

import (
	"bytes"
	"errors"
	"testing"
)

func TestDerive_DeterministicPerPurpose(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	a1, err := SessionHashKey(secret)
	if err != nil {
		t.Fatalf("SessionHashKey: %v", err)
	}
	a2, _ := SessionHashKey(secret)
	if !bytes.Equal(a1, a2) {
		t.Error("same secret and purpose should give the same key")
	}

	c, err := CSRFKey(secret)
	if err != nil {
		t.Fatalf("CSRFKey: %v", err)
	}
	if len(c) != 32 {
		t.Errorf("CSRFKey length: got %d, want 32", len(c))
	}
	if bytes.Equal(a1[:32], c) {
		t.Error("different purposes must give different keys")
	}
}

func TestDerive_EmptySecret(t *testing.T) {
	if _, err := CSRFKey(nil); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("expected ErrEmptySecret, got %v", err)
	}
}
