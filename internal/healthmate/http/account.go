package http

import (
	"net/http"

	"github.com/healthmate/server/internal/healthmate/domain"
	"github.com/healthmate/server/internal/healthmate/service"
	"github.com/healthmate/server/pkg/healthsdk"
	"github.com/healthmate/server/pkg/httpx"
)

type AccountHandler struct {
	AccountService *service.AccountService
}

// HandleMe godoc
//
//	@Summary		Current account
//	@Description	Returns the authenticated account. The password hash and OTP are never included.
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	healthsdk.AccountResponse
//	@Failure		401	{object}	healthsdk.ErrorResponse	"invalid_token"
//	@Failure		404	{object}	healthsdk.ErrorResponse	"not_found"
//	@Router			/auth/me [get].
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r)
	if !ok {
		errMissingToken.WriteError(w)
		return
	}

	acct, err := h.AccountService.GetCurrent(r.Context(), identity)
	if err != nil {
		writeError(w, r, "get account", err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}

// HandleDelete godoc
//
//	@Summary		Delete account
//	@Description	Permanently deletes the authenticated account and its diagnosis history.
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	healthsdk.MessageResponse
//	@Failure		401	{object}	healthsdk.ErrorResponse	"invalid_token"
//	@Failure		404	{object}	healthsdk.ErrorResponse	"not_found"
//	@Router			/auth [delete].
func (h *AccountHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r)
	if !ok {
		errMissingToken.WriteError(w)
		return
	}

	if err := h.AccountService.Delete(r.Context(), identity); err != nil {
		writeError(w, r, "delete account", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, healthsdk.MessageResponse{Message: "Account deleted successfully"})
}

func toAccountResponse(a domain.Account) healthsdk.AccountResponse {
	return healthsdk.AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt,
	}
}
