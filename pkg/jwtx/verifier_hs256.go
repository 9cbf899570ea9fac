package jwtx

import "github.com/golang-jwt/jwt/v5"

// HS256Verifier validates JWTs signed with a shared HMAC secret.
type HS256Verifier struct {
	secret []byte
	opts   VerifyOptions
}

// NewVerifierHS256 creates a verifier for tokens minted by an HS256Signer
// holding the same secret.
func NewVerifierHS256(secret []byte, opts VerifyOptions) *HS256Verifier {
	s := make([]byte, len(secret))
	copy(s, secret)
	return &HS256Verifier{secret: s, opts: opts}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	return verify(tokenStr, jwt.SigningMethodHS256, v.secret, v.opts)
}
