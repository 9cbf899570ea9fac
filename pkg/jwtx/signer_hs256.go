package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinHMACSecretLength is the shortest secret accepted for HS256 (256 bits).
const MinHMACSecretLength = 32

// HS256Signer implements the Signer interface using HMAC-SHA256.
type HS256Signer struct {
	kid    string
	secret []byte
}

func newHS256Signer(kid string, secret []byte) (*HS256Signer, error) {
	if len(secret) < MinHMACSecretLength {
		return nil, fmt.Errorf("jwtx: HS256 secret must be at least %d bytes, got %d", MinHMACSecretLength, len(secret))
	}

	s := &HS256Signer{kid: kid, secret: make([]byte, len(secret))}
	copy(s.secret, secret)
	return s, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }
func (s *HS256Signer) KID() string { return s.kid }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if s.kid != "" {
		t.Header["kid"] = s.kid
	}
	return t.SignedString(s.secret)
}

// Validate does a quick sanity check to make sure we actually have a secret.
func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinHMACSecretLength {
		return errors.New("jwtx: HS256 secret too short")
	}
	return nil
}

// Secret returns the shared secret so a matching verifier can be built.
func (s *HS256Signer) Secret() []byte {
	out := make([]byte, len(s.secret))
	copy(out, s.secret)
	return out
}
