// Package qrtoken implements the opaque QR token scheme: a keyed hash of the
// QR identifier combined with its creation date, reversible only by
// re-hashing candidate identifiers. The hash itself is never persisted.
package qrtoken

import "errors"

// KeyRing holds the HMAC secrets, newest first. Index 0 signs every new
// token; all indices remain valid for verification, which is what lets a key
// rotation keep previously issued codes scannable. The ring is loaded once
// at startup and never mutated; rotation means deploying a new list with the
// old key demoted.
type KeyRing struct {
	keys [][]byte
}

// ErrEmptyKeyRing is returned when no secrets are configured.
var ErrEmptyKeyRing = errors.New("qrtoken: key ring needs at least one secret")

// NewKeyRing builds a ring from the configured secrets, newest first.
func NewKeyRing(secrets []string) (*KeyRing, error) {
	if len(secrets) == 0 {
		return nil, ErrEmptyKeyRing
	}
	keys := make([][]byte, 0, len(secrets))
	for _, s := range secrets {
		if s == "" {
			return nil, errors.New("qrtoken: empty secret in key ring")
		}
		keys = append(keys, []byte(s))
	}
	return &KeyRing{keys: keys}, nil
}

// SigningKey returns the newest key, used for all new tokens.
func (r *KeyRing) SigningKey() []byte {
	return r.keys[0]
}

// VerificationKeys returns every key, newest first. Callers must not mutate
// the returned slices.
func (r *KeyRing) VerificationKeys() [][]byte {
	return r.keys
}

// Len returns the number of keys in the ring.
func (r *KeyRing) Len() int { return len(r.keys) }
