package http

import (
	"net/http"

	"github.com/healthmate/server/internal/healthmate/domain"
	"github.com/healthmate/server/internal/healthmate/service"
	"github.com/healthmate/server/pkg/healthsdk"
	"github.com/healthmate/server/pkg/httpx"
)

// DiagnosisHandler serves the diagnosis history of the authenticated
// account. There is no way to address another account's reports.
type DiagnosisHandler struct {
	DiagnosisService *service.DiagnosisService
}

// HandleCreate godoc
//
//	@Summary		Diagnose symptoms
//	@Description	Sends the symptoms to the inference service and stores the resulting report.
//	@Tags			Diagnosis
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		healthsdk.DiagnosisRequest	true	"symptoms"
//	@Success		200		{object}	healthsdk.DiagnosisReport
//	@Failure		400		{object}	healthsdk.ErrorResponse	"validation_error"
//	@Failure		401		{object}	healthsdk.ErrorResponse	"invalid_token"
//	@Failure		502		{object}	healthsdk.ErrorResponse	"inference_error"
//	@Failure		500		{object}	healthsdk.ErrorResponse	"store_unavailable"
//	@Router			/diagnosis [post].
func (h *DiagnosisHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r)
	if !ok {
		errMissingToken.WriteError(w)
		return
	}

	var req healthsdk.DiagnosisRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, "create diagnosis", err)
		return
	}

	report, err := h.DiagnosisService.Create(r.Context(), identity, req.Symptoms)
	if err != nil {
		writeError(w, r, "create diagnosis", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toDiagnosisReport(report))
}

// HandleHistory godoc
//
//	@Summary		Diagnosis history
//	@Description	Lists the authenticated account's reports, newest first.
//	@Tags			Diagnosis
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		healthsdk.DiagnosisReport
//	@Failure		401	{object}	healthsdk.ErrorResponse	"invalid_token"
//	@Router			/diagnosis/history [get].
func (h *DiagnosisHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r)
	if !ok {
		errMissingToken.WriteError(w)
		return
	}

	reports, err := h.DiagnosisService.List(r.Context(), identity)
	if err != nil {
		writeError(w, r, "list diagnoses", err)
		return
	}

	out := make([]healthsdk.DiagnosisReport, 0, len(reports))
	for _, report := range reports {
		out = append(out, toDiagnosisReport(report))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get a report
//	@Tags			Diagnosis
//	@Security		BearerAuth
//	@Produce		json
//	@Param			reportId	path		string	true	"Report ID"
//	@Success		200			{object}	healthsdk.DiagnosisReport
//	@Failure		401			{object}	healthsdk.ErrorResponse	"invalid_token"
//	@Failure		404			{object}	healthsdk.ErrorResponse	"not_found"
//	@Router			/diagnosis/{reportId} [get].
func (h *DiagnosisHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r)
	if !ok {
		errMissingToken.WriteError(w)
		return
	}

	report, err := h.DiagnosisService.Get(r.Context(), identity, r.PathValue("reportId"))
	if err != nil {
		writeError(w, r, "get diagnosis", err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toDiagnosisReport(report))
}

// HandleDelete godoc
//
//	@Summary		Delete a report
//	@Tags			Diagnosis
//	@Security		BearerAuth
//	@Produce		json
//	@Param			reportId	path		string	true	"Report ID"
//	@Success		200			{object}	healthsdk.MessageResponse
//	@Failure		401			{object}	healthsdk.ErrorResponse	"invalid_token"
//	@Failure		404			{object}	healthsdk.ErrorResponse	"not_found"
//	@Router			/diagnosis/{reportId} [delete].
func (h *DiagnosisHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r)
	if !ok {
		errMissingToken.WriteError(w)
		return
	}

	if err := h.DiagnosisService.Delete(r.Context(), identity, r.PathValue("reportId")); err != nil {
		writeError(w, r, "delete diagnosis", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, healthsdk.MessageResponse{Message: "Report deleted successfully"})
}

func toDiagnosisReport(d domain.DiagnosisReport) healthsdk.DiagnosisReport {
	return healthsdk.DiagnosisReport{
		ID:        d.ID,
		AccountID: d.AccountID,
		Symptoms:  d.Symptoms,
		Diagnosis: d.Diagnosis,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
