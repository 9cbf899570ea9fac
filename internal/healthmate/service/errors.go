package service

import "errors"

var (
	ErrValidation         = errors.New("validation_error")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUnverified         = errors.New("unverified")
	ErrInvalidOTP         = errors.New("invalid_otp")
	ErrOTPExpired         = errors.New("otp_expired")
	ErrNotifier           = errors.New("notifier_error")
	ErrStoreUnavailable   = errors.New("store_unavailable")
	ErrTokenInvalid       = errors.New("invalid_token")
	ErrTokenExpired       = errors.New("token_expired")
	ErrInference          = errors.New("inference_error")
)

// VerifyResult is the non-error outcome of VerifyOTP.
type VerifyResult int

const (
	// Verified means this call consumed the OTP.
	Verified VerifyResult = iota + 1
	// VerifyAlreadyVerified means the account was verified before this call.
	VerifyAlreadyVerified
)

func (r VerifyResult) String() string {
	switch r {
	case Verified:
		return "verified"
	case VerifyAlreadyVerified:
		return "already_verified"
	default:
		return "unknown"
	}
}
