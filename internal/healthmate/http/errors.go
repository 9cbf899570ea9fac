package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/healthmate/server/internal/healthmate/service"
	"github.com/healthmate/server/pkg/healthsdk"
	"github.com/healthmate/server/pkg/httpx"
	"github.com/healthmate/server/pkg/slogx"
)

var (
	errBadBody      = healthsdk.NewAPIError(http.StatusBadRequest, healthsdk.ErrorCodeValidation, "Invalid JSON in request body")
	errMissingToken = healthsdk.NewAPIError(http.StatusUnauthorized, healthsdk.ErrorCodeInvalidToken, "Missing or invalid bearer token")
	errServer       = healthsdk.NewAPIError(http.StatusInternalServerError, healthsdk.ErrorCodeServerError, "Internal server error")
)

// apiError maps a service error onto exactly one status and code. Messages
// never carry driver or upstream details.
func apiError(err error) *healthsdk.APIError {
	switch {
	case errors.Is(err, httpx.ErrBadBody):
		return errBadBody
	case errors.Is(err, service.ErrValidation):
		return healthsdk.NewAPIError(http.StatusBadRequest, healthsdk.ErrorCodeValidation, validationMessage(err))
	case errors.Is(err, service.ErrConflict):
		return healthsdk.NewAPIError(http.StatusBadRequest, healthsdk.ErrorCodeConflict, "Email already registered")
	case errors.Is(err, service.ErrInvalidOTP):
		return healthsdk.NewAPIError(http.StatusBadRequest, healthsdk.ErrorCodeInvalidOTP, "Invalid OTP")
	case errors.Is(err, service.ErrOTPExpired):
		return healthsdk.NewAPIError(http.StatusBadRequest, healthsdk.ErrorCodeOTPExpired, "OTP has expired")
	case errors.Is(err, service.ErrNotFound):
		return healthsdk.NewAPIError(http.StatusNotFound, healthsdk.ErrorCodeNotFound, "Not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		return healthsdk.NewAPIError(http.StatusUnauthorized, healthsdk.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, service.ErrUnverified):
		return healthsdk.NewAPIError(http.StatusUnauthorized, healthsdk.ErrorCodeUnverified, "Email not verified")
	case errors.Is(err, service.ErrTokenInvalid), errors.Is(err, service.ErrTokenExpired):
		return healthsdk.NewAPIError(http.StatusUnauthorized, healthsdk.ErrorCodeInvalidToken, "Invalid or expired token")
	case errors.Is(err, service.ErrNotifier):
		return healthsdk.NewAPIError(http.StatusInternalServerError, healthsdk.ErrorCodeNotifier, "Could not send the verification email")
	case errors.Is(err, service.ErrStoreUnavailable):
		return healthsdk.NewAPIError(http.StatusInternalServerError, healthsdk.ErrorCodeStoreUnavailable, "Storage is temporarily unavailable")
	case errors.Is(err, service.ErrInference):
		return healthsdk.NewAPIError(http.StatusBadGateway, healthsdk.ErrorCodeInference, "Diagnosis service is unavailable")
	default:
		return errServer
	}
}

// validationMessage strips the sentinel prefix; what is left only
// describes the caller's own input.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), service.ErrValidation.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return "Invalid request"
	}
	return msg
}

// writeError logs err once through the request logger and writes the
// mapped error body.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	apiErr := apiError(err)

	log := slogx.FromContext(r.Context())
	if apiErr.StatusCode >= http.StatusInternalServerError {
		log.Error(op+" failed", "err", err)
	} else {
		log.Debug(op+" rejected", "code", apiErr.Code, "err", err)
	}

	apiErr.WriteError(w)
}
