package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/healthmate/server/pkg/jwtx"
)

// TokenIssuer mints and checks bearer tokens whose subject is the account
// email. The signing key is fixed for the life of the issuer.
type TokenIssuer struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration
	Now      func() time.Time
}

func (t *TokenIssuer) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Issue signs a token for subject.
func (t *TokenIssuer) Issue(subject, accountID string) (string, error) {
	ttl := t.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	token, err := t.Signer.Sign(jwtx.NewAccessClaims(subject, accountID, t.Issuer, ttl, t.now()))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Validate verifies signature, algorithm, issuer and expiry. Failures wrap
// both ErrTokenExpired/ErrTokenInvalid and the underlying jwtx error.
func (t *TokenIssuer) Validate(token string) (jwtx.Claims, error) {
	claims, err := t.Verifier.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		return jwtx.Claims{}, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if claims.AccountID == "" {
		return jwtx.Claims{}, fmt.Errorf("%w: missing account id", ErrTokenInvalid)
	}
	return claims, nil
}

// Subject validates token and returns only its subject.
func (t *TokenIssuer) Subject(token string) (string, error) {
	claims, err := t.Validate(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
