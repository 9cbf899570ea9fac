package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/healthmate/server/internal/healthmate/service"
	"github.com/healthmate/server/pkg/healthsdk"
	"github.com/healthmate/server/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: email: cannot be blank", service.ErrValidation), http.StatusBadRequest, healthsdk.ErrorCodeValidation},
		{fmt.Errorf("%w: unexpected EOF", httpx.ErrBadBody), http.StatusBadRequest, healthsdk.ErrorCodeValidation},
		{service.ErrConflict, http.StatusBadRequest, healthsdk.ErrorCodeConflict},
		{service.ErrInvalidOTP, http.StatusBadRequest, healthsdk.ErrorCodeInvalidOTP},
		{service.ErrOTPExpired, http.StatusBadRequest, healthsdk.ErrorCodeOTPExpired},
		{service.ErrNotFound, http.StatusNotFound, healthsdk.ErrorCodeNotFound},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, healthsdk.ErrorCodeInvalidCredentials},
		{service.ErrUnverified, http.StatusUnauthorized, healthsdk.ErrorCodeUnverified},
		{service.ErrTokenInvalid, http.StatusUnauthorized, healthsdk.ErrorCodeInvalidToken},
		{service.ErrTokenExpired, http.StatusUnauthorized, healthsdk.ErrorCodeInvalidToken},
		{fmt.Errorf("%w: dial tcp: refused", service.ErrNotifier), http.StatusInternalServerError, healthsdk.ErrorCodeNotifier},
		{fmt.Errorf("%w: database is locked", service.ErrStoreUnavailable), http.StatusInternalServerError, healthsdk.ErrorCodeStoreUnavailable},
		{fmt.Errorf("%w: HTTP 503", service.ErrInference), http.StatusBadGateway, healthsdk.ErrorCodeInference},
		{errors.New("something else"), http.StatusInternalServerError, healthsdk.ErrorCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := apiError(tt.err)
			require.Equal(t, tt.status, got.StatusCode)
			require.Equal(t, tt.code, got.Code)
			require.NotContains(t, got.Message, "refused")
			require.NotContains(t, got.Message, "locked")
		})
	}
}

func TestValidationMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"wrapped detail", fmt.Errorf("%w: email: must be a valid email address.", service.ErrValidation), "email: must be a valid email address."},
		{"bare sentinel", service.ErrValidation, "Invalid request"},
		{"wrapped without detail", fmt.Errorf("%w: ", service.ErrValidation), "Invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, validationMessage(tt.err))
		})
	}
}

func TestAPIErrorBareValidation(t *testing.T) {
	t.Parallel()

	got := apiError(service.ErrValidation)
	require.Equal(t, http.StatusBadRequest, got.StatusCode)
	require.Equal(t, healthsdk.ErrorCodeValidation, got.Code)
	require.Equal(t, "Invalid request", got.Message)
}
