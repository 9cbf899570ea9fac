package healthsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Session is an authenticated client bound to one bearer token. Tokens are
// not refreshed; log in again once it expires.
type Session struct {
	client    *SDKClient
	token     string
	accountID string
}

// Token returns the bearer token.
func (s *Session) Token() string { return s.token }

// AccountID returns the account the token was issued for.
func (s *Session) AccountID() string { return s.accountID }

func (s *Session) do(ctx context.Context, method, path string, payload, target any) error {
	resp, err := s.client.doRequest(ctx, method, path, s.token, payload)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, http.StatusOK)
}

// ============================================================================
// Account
// ============================================================================

// Me returns the authenticated account.
func (s *Session) Me(ctx context.Context) (*AccountResponse, error) {
	var out AccountResponse
	if err := s.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAccount permanently removes the authenticated account and its
// diagnosis history.
func (s *Session) DeleteAccount(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := s.do(ctx, http.MethodDelete, "/auth", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Diagnosis
// ============================================================================

// CreateDiagnosis runs inference on the symptoms and stores the result.
func (s *Session) CreateDiagnosis(ctx context.Context, symptoms string) (*DiagnosisReport, error) {
	var out DiagnosisReport
	if err := s.do(ctx, http.MethodPost, "/diagnosis", DiagnosisRequest{Symptoms: symptoms}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDiagnoses returns the caller's reports, newest first.
func (s *Session) ListDiagnoses(ctx context.Context) ([]DiagnosisReport, error) {
	var out []DiagnosisReport
	if err := s.do(ctx, http.MethodGet, "/diagnosis/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDiagnosis returns one of the caller's reports.
func (s *Session) GetDiagnosis(ctx context.Context, id string) (*DiagnosisReport, error) {
	var out DiagnosisReport
	if err := s.do(ctx, http.MethodGet, "/diagnosis/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDiagnosis removes one of the caller's reports.
func (s *Session) DeleteDiagnosis(ctx context.Context, id string) (*MessageResponse, error) {
	var out MessageResponse
	if err := s.do(ctx, http.MethodDelete, "/diagnosis/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
