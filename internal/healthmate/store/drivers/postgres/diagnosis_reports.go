package postgres

import (
	"context"

	"github.com/healthmate/server/internal/healthmate/domain"
	"github.com/healthmate/server/internal/healthmate/store"
)

type diagnosisReportsRepo struct {
	db DBTX
}

func (r *diagnosisReportsRepo) CreateDiagnosisReport(ctx context.Context, d domain.DiagnosisReport) (domain.DiagnosisReport, error) {
	query :=
		`INSERT INTO diagnosis_reports (id, account_id, symptoms, diagnosis)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, d.ID, d.AccountID, d.Symptoms, d.Diagnosis).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.DiagnosisReport{}, mapError("create report", err)
	}
	return d, nil
}

func (r *diagnosisReportsRepo) GetDiagnosisReport(ctx context.Context, accountID, id string) (domain.DiagnosisReport, error) {
	query :=
		`SELECT id, account_id, symptoms, diagnosis, created_at, updated_at
		 FROM diagnosis_reports
		 WHERE id = $1 AND account_id = $2`

	var d domain.DiagnosisReport
	err := r.db.QueryRowContext(ctx, query, id, accountID).
		Scan(&d.ID, &d.AccountID, &d.Symptoms, &d.Diagnosis, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.DiagnosisReport{}, mapError("get report", err)
	}
	return d, nil
}

func (r *diagnosisReportsRepo) ListDiagnosisReports(ctx context.Context, accountID string) ([]domain.DiagnosisReport, error) {
	query :=
		`SELECT id, account_id, symptoms, diagnosis, created_at, updated_at
		 FROM diagnosis_reports
		 WHERE account_id = $1
		 ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, mapError("list reports", err)
	}
	defer rows.Close()

	out := []domain.DiagnosisReport{}
	for rows.Next() {
		var d domain.DiagnosisReport
		if err := rows.Scan(&d.ID, &d.AccountID, &d.Symptoms, &d.Diagnosis, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, mapError("list reports", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list reports", err)
	}
	return out, nil
}

func (r *diagnosisReportsRepo) DeleteDiagnosisReport(ctx context.Context, accountID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM diagnosis_reports WHERE id = $1 AND account_id = $2`, id, accountID)
	if err != nil {
		return mapError("delete report", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("delete report", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
