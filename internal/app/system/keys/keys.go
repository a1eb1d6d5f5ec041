// Package keys derives purpose-specific keys from the application secret.
//
// The session signer and the CSRF protector must never share key material,
// so each gets its own HKDF-SHA256 expansion of the secret.
package keys

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Purposes used by the app.
const (
	PurposeSessionHash = "session-hash"
	PurposeCSRF        = "csrf"
)

// ErrEmptySecret is returned when there is nothing to derive from.
var ErrEmptySecret = errors.New("keys: empty secret")

// Derive returns size bytes bound to purpose.
func Derive(secret []byte, purpose string, size int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	r := hkdf.New(sha256.New, secret, nil, []byte("information/"+purpose))
	out := make([]byte, size)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("keys: derive %s: %w", purpose, err)
	}
	return out, nil
}

// SessionHashKey is the HMAC key for signing session ids.
func SessionHashKey(secret []byte) ([]byte, error) {
	return Derive(secret, PurposeSessionHash, 64)
}

// CSRFKey is the 32-byte key gorilla/csrf requires.
func CSRFKey(secret []byte) ([]byte, error) {
	return Derive(secret, PurposeCSRF, 32)
}
