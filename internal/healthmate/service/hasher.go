package service

import "github.com/healthmate/server/pkg/cryptox"

// PasswordHasher turns passwords into encoded hashes and checks them back.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) error
}

// Argon2Hasher is the production PasswordHasher backed by cryptox.
type Argon2Hasher struct{}

func (Argon2Hasher) Hash(password string) (string, error) {
	return cryptox.HashPassword(password)
}

func (Argon2Hasher) Verify(password, encodedHash string) error {
	return cryptox.VerifyPassword(password, encodedHash)
}
