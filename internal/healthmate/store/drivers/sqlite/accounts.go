package sqlite

import (
	"context"
	"time"

	"github.com/healthmate/server/internal/healthmate/domain"
	"github.com/healthmate/server/internal/healthmate/store"
	"github.com/healthmate/server/internal/healthmate/store/drivers/sqlite/gen"
)

// deleteBatchSize keeps IN lists well under SQLite's variable limit.
const deleteBatchSize = 500

type accountsRepo struct {
	q *gen.Queries
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row, err := r.q.GetAccountByID(ctx, id)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row, err := r.q.GetAccountByEmail(ctx, email)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	err := r.q.CreateAccount(ctx, gen.CreateAccountParams{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Name:         a.Name,
		Otp:          mapOptionalString(a.OTP),
		OtpIssuedAt:  mapOptionalMillis(a.OTPIssuedAt),
		Verified:     a.Verified,
	})
	return mapConstraint(err)
}

func (r *accountsRepo) MarkAccountVerified(ctx context.Context, id string, otpIssuedAt time.Time) (bool, error) {
	n, err := r.q.MarkAccountVerified(ctx, gen.MarkAccountVerifiedParams{
		ID:          id,
		OtpIssuedAt: mapMillis(otpIssuedAt),
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *accountsRepo) RecordOTPAttempt(ctx context.Context, id string, otpIssuedAt time.Time) (int, error) {
	n, err := r.q.RecordOTPAttempt(ctx, gen.RecordOTPAttemptParams{
		ID:          id,
		OtpIssuedAt: mapMillis(otpIssuedAt),
	})
	if err != nil {
		return 0, mapNotFound(err)
	}
	return int(n), nil
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	n, err := r.q.DeleteAccount(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) DeleteUnverifiedAccount(ctx context.Context, id string, otpIssuedAt time.Time) (bool, error) {
	n, err := r.q.DeleteUnverifiedAccount(ctx, gen.DeleteUnverifiedAccountParams{
		ID:          id,
		OtpIssuedAt: mapMillis(otpIssuedAt),
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *accountsRepo) FindExpiredUnverified(ctx context.Context, cutoff time.Time) ([]string, error) {
	return r.q.FindExpiredUnverified(ctx, mapMillis(cutoff))
}

func (r *accountsRepo) DeleteExpiredUnverified(ctx context.Context, ids []string, cutoff time.Time) (int64, error) {
	var total int64
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(ids))
		n, err := r.q.DeleteExpiredUnverified(ctx, gen.DeleteExpiredUnverifiedParams{
			Ids:    ids[start:end],
			Cutoff: mapMillis(cutoff),
		})
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
