package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/healthmate/server/internal/healthmate/domain"
	"github.com/healthmate/server/internal/healthmate/store"
)

// deleteBatchSize keeps each IN list far below the 65535 bind parameter
// limit of the Postgres wire protocol.
const deleteBatchSize = 500

const accountColumns = `id, email, password_hash, name, otp, otp_issued_at, verified, created_at, updated_at, otp_attempts`

type accountsRepo struct {
	db DBTX
}

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var (
		a        domain.Account
		otp      sql.NullString
		issuedAt sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &otp, &issuedAt, &a.Verified, &a.CreatedAt, &a.UpdatedAt, &a.OTPAttempts)
	if err != nil {
		return domain.Account{}, err
	}
	if otp.Valid {
		a.OTP = &otp.String
	}
	if issuedAt.Valid {
		t := time.UnixMilli(issuedAt.Int64).UTC()
		a.OTPIssuedAt = &t
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.Account{}, mapError("get account", err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return domain.Account{}, mapError("get account", err)
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	query :=
		`INSERT INTO accounts (id, email, password_hash, name, otp, otp_issued_at, verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var otp sql.NullString
	if a.OTP != nil {
		otp = sql.NullString{String: *a.OTP, Valid: true}
	}
	var issuedAt sql.NullInt64
	if a.OTPIssuedAt != nil {
		issuedAt = sql.NullInt64{Int64: a.OTPIssuedAt.UnixMilli(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, a.ID, a.Email, a.PasswordHash, a.Name, otp, issuedAt, a.Verified)
	if err != nil {
		return mapError("create account", err)
	}
	return nil
}

func (r *accountsRepo) MarkAccountVerified(ctx context.Context, id string, otpIssuedAt time.Time) (bool, error) {
	query :=
		`UPDATE accounts
		 SET verified = TRUE, otp = NULL, otp_issued_at = NULL, updated_at = now()
		 WHERE id = $1 AND verified = FALSE AND otp_issued_at = $2`

	return r.execOne(ctx, "mark verified", query, id, otpIssuedAt.UnixMilli())
}

func (r *accountsRepo) RecordOTPAttempt(ctx context.Context, id string, otpIssuedAt time.Time) (int, error) {
	query :=
		`UPDATE accounts SET otp_attempts = otp_attempts + 1
		 WHERE id = $1 AND verified = FALSE AND otp_issued_at = $2
		 RETURNING otp_attempts`

	var n int
	if err := r.db.QueryRowContext(ctx, query, id, otpIssuedAt.UnixMilli()).Scan(&n); err != nil {
		return 0, mapError("record otp attempt", err)
	}
	return n, nil
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	deleted, err := r.execOne(ctx, "delete account", `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if !deleted {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) DeleteUnverifiedAccount(ctx context.Context, id string, otpIssuedAt time.Time) (bool, error) {
	query := `DELETE FROM accounts WHERE id = $1 AND verified = FALSE AND otp_issued_at = $2`

	return r.execOne(ctx, "delete unverified account", query, id, otpIssuedAt.UnixMilli())
}

func (r *accountsRepo) FindExpiredUnverified(ctx context.Context, cutoff time.Time) ([]string, error) {
	query :=
		`SELECT id FROM accounts
		 WHERE verified = FALSE AND otp_issued_at < $1
		 ORDER BY otp_issued_at`

	rows, err := r.db.QueryContext(ctx, query, cutoff.UnixMilli())
	if err != nil {
		return nil, mapError("find expired", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError("find expired", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("find expired", err)
	}
	return ids, nil
}

func (r *accountsRepo) DeleteExpiredUnverified(ctx context.Context, ids []string, cutoff time.Time) (int64, error) {
	var total int64
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(ids))
		n, err := r.deleteExpiredBatch(ctx, ids[start:end], cutoff)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *accountsRepo) deleteExpiredBatch(ctx context.Context, ids []string, cutoff time.Time) (int64, error) {
	args := make([]any, 0, len(ids)+1)
	args = append(args, cutoff.UnixMilli())
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", i+2)
	}

	query := `DELETE FROM accounts
		 WHERE verified = FALSE AND otp_issued_at < $1
		 AND id IN (` + strings.Join(placeholders, ", ") + `)`

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError("delete expired", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError("delete expired", err)
	}
	return n, nil
}

func (r *accountsRepo) execOne(ctx context.Context, op, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, mapError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError(op, err)
	}
	return n == 1, nil
}
