package http

import (
	"net/http"

	"github.com/healthmate/server/internal/healthmate/service"
	"github.com/healthmate/server/pkg/healthsdk"
	"github.com/healthmate/server/pkg/httpx"
)

type AuthHandler struct {
	AccountService *service.AccountService
}

// HandleRegister godoc
//
//	@Summary		Register an account
//	@Description	Creates an unverified account and emails a six digit OTP. The OTP is valid for five minutes by default.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		healthsdk.RegisterRequest	true	"email, password, optional name"
//	@Success		200		{object}	healthsdk.MessageResponse
//	@Failure		400		{object}	healthsdk.ErrorResponse	"validation_error or conflict"
//	@Failure		429		{object}	healthsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	healthsdk.ErrorResponse	"notifier_error or store_unavailable"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req healthsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, "register", err)
		return
	}

	err := h.AccountService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeError(w, r, "register", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, healthsdk.MessageResponse{
		Message: "Registration successful. Check your email for the verification code.",
	})
}

// HandleVerifyOTP godoc
//
//	@Summary		Verify an account
//	@Description	Consumes the emailed OTP. Verifying an already verified account succeeds without changes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		healthsdk.VerifyOTPRequest	true	"email, otp"
//	@Success		200		{object}	healthsdk.MessageResponse
//	@Failure		400		{object}	healthsdk.ErrorResponse	"validation_error, invalid_otp or otp_expired"
//	@Failure		404		{object}	healthsdk.ErrorResponse	"not_found"
//	@Failure		429		{object}	healthsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	healthsdk.ErrorResponse	"store_unavailable"
//	@Router			/auth/verify-otp [post].
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req healthsdk.VerifyOTPRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, "verify otp", err)
		return
	}

	res, err := h.AccountService.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, r, "verify otp", err)
		return
	}

	msg := "Email verified successfully"
	if res == service.VerifyAlreadyVerified {
		msg = "Email already verified"
	}
	httpx.WriteJSON(w, http.StatusOK, healthsdk.MessageResponse{Message: msg})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for a bearer token. Only verified accounts can log in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		healthsdk.LoginRequest	true	"email, password"
//	@Success		200		{object}	healthsdk.LoginResponse
//	@Failure		400		{object}	healthsdk.ErrorResponse	"validation_error"
//	@Failure		401		{object}	healthsdk.ErrorResponse	"invalid_credentials or unverified"
//	@Failure		429		{object}	healthsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	healthsdk.ErrorResponse	"store_unavailable"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req healthsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, "login", err)
		return
	}

	res, err := h.AccountService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, "login", err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, healthsdk.LoginResponse{
		Token:     res.Token,
		AccountID: res.AccountID,
	})
}
