package sqlite

import (
	"context"

	"github.com/healthmate/server/internal/healthmate/domain"
	"github.com/healthmate/server/internal/healthmate/store"
	"github.com/healthmate/server/internal/healthmate/store/drivers/sqlite/gen"
)

type diagnosisReportsRepo struct {
	q *gen.Queries
}

func (r *diagnosisReportsRepo) CreateDiagnosisReport(ctx context.Context, d domain.DiagnosisReport) (domain.DiagnosisReport, error) {
	if err := r.q.CreateDiagnosisReport(ctx, gen.CreateDiagnosisReportParams{
		ID:        d.ID,
		AccountID: d.AccountID,
		Symptoms:  d.Symptoms,
		Diagnosis: d.Diagnosis,
	}); err != nil {
		return domain.DiagnosisReport{}, mapConstraint(err)
	}
	return r.GetDiagnosisReport(ctx, d.AccountID, d.ID)
}

func (r *diagnosisReportsRepo) GetDiagnosisReport(ctx context.Context, accountID, id string) (domain.DiagnosisReport, error) {
	row, err := r.q.GetDiagnosisReport(ctx, gen.GetDiagnosisReportParams{ID: id, AccountID: accountID})
	if err != nil {
		return domain.DiagnosisReport{}, mapNotFound(err)
	}
	return mapDiagnosisReport(row), nil
}

func (r *diagnosisReportsRepo) ListDiagnosisReports(ctx context.Context, accountID string) ([]domain.DiagnosisReport, error) {
	rows, err := r.q.ListDiagnosisReportsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DiagnosisReport, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapDiagnosisReport(row))
	}
	return out, nil
}

func (r *diagnosisReportsRepo) DeleteDiagnosisReport(ctx context.Context, accountID, id string) error {
	n, err := r.q.DeleteDiagnosisReport(ctx, gen.DeleteDiagnosisReportParams{ID: id, AccountID: accountID})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
