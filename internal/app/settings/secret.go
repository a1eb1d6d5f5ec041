// internal/app/settings/secret.go
package settings

import (
	"crypto/rand"
	"fmt"
	"io"
)

// MinSecretLen is the shortest secret accepted when RequireSecret is set.
const MinSecretLen = 32

const redacted = "[REDACTED]"

// Secret is sensitive key material. Every textual rendering of it
// (fmt verbs, JSON, YAML, zap) prints a placeholder instead of the bytes.
type Secret []byte

func (s Secret) String() string   { return redacted }
func (s Secret) GoString() string { return redacted }

// Format covers %x, %q, %v and friends, which would otherwise bypass String.
func (s Secret) Format(f fmt.State, verb rune) {
	_, _ = io.WriteString(f, redacted)
}

// MarshalText is used by encoding/json and friends.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

// Len returns the key length in bytes.
func (s Secret) Len() int { return len(s) }

// Bytes returns a copy of the key material.
func (s Secret) Bytes() []byte {
	if s == nil {
		return nil
	}
	out := make([]byte, len(s))
	copy(out, s)
	return out
}

// NewEphemeralSecret returns a random key for development runs that were
// not given one. Sessions signed with it do not survive a restart.
func NewEphemeralSecret() (Secret, error) {
	b := make([]byte, 64)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate ephemeral secret: %w", err)
	}
	return Secret(b), nil
}
