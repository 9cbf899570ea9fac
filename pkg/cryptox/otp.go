package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"

	"github.com/pquerna/otp"
)

// otpSpace is the number of distinct six digit codes.
var otpSpace = big.NewInt(1_000_000)

// GenerateOTP returns a uniformly random six digit numeric code, zero padded
// (e.g. "042817").
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to generate otp: %w", err)
	}
	return otp.DigitsSix.Format(int32(n.Int64())), nil // #nosec G115 - bounded by otpSpace
}

// EqualOTP compares two codes in constant time.
func EqualOTP(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
