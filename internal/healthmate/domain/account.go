package domain

import (
	"strings"
	"time"
)

// Account is a registered user. OTP and OTPIssuedAt are set together while
// verification is pending and cleared together when it completes.
type Account struct {
	ID           string
	Email        string // normalized, see NormalizeEmail
	PasswordHash string // argon2 encoded
	Name         string
	OTP          *string
	OTPIssuedAt  *time.Time
	OTPAttempts  int // verification attempts against the current OTP
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PendingVerification reports whether an OTP has been issued and not consumed.
func (a Account) PendingVerification() bool {
	return !a.Verified && a.OTP != nil && a.OTPIssuedAt != nil
}

// OTPExpired reports whether the issued OTP is past its window at now. An
// account without an OTP is never expired.
func (a Account) OTPExpired(now time.Time, validity time.Duration) bool {
	if a.OTPIssuedAt == nil {
		return false
	}
	return now.After(a.OTPIssuedAt.Add(validity))
}

// NormalizeEmail trims and lower-cases an email so lookups are case
// insensitive and the stored value is canonical.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
