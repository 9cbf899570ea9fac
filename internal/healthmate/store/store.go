package store

import (
	"context"
	"errors"
	"time"

	"github.com/healthmate/server/internal/healthmate/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a Tx cannot start another transaction.
type Store interface {
	Accounts() Accounts
	DiagnosisReports() DiagnosisReports

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail looks an account up by its normalized email.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account. Returns ErrAlreadyExists when the
	// email is taken; the unique index is the only authority on that.
	CreateAccount(ctx context.Context, a domain.Account) error

	// MarkAccountVerified sets verified and clears the OTP fields, but only
	// while the account is still unverified with the given otp_issued_at.
	// Reports whether a row was updated.
	MarkAccountVerified(ctx context.Context, id string, otpIssuedAt time.Time) (bool, error)

	// RecordOTPAttempt counts one verification attempt against the pending
	// OTP issued at otpIssuedAt and returns the new count. Returns
	// ErrNotFound when the account no longer holds that OTP.
	RecordOTPAttempt(ctx context.Context, id string, otpIssuedAt time.Time) (int, error)

	// DeleteAccount removes an account; diagnosis reports cascade.
	DeleteAccount(ctx context.Context, id string) error

	// DeleteUnverifiedAccount removes an account only while it is still
	// unverified with the given otp_issued_at. Reports whether a row went.
	DeleteUnverifiedAccount(ctx context.Context, id string, otpIssuedAt time.Time) (bool, error)

	// FindExpiredUnverified lists ids of unverified accounts whose OTP was
	// issued strictly before cutoff.
	FindExpiredUnverified(ctx context.Context, cutoff time.Time) ([]string, error)

	// DeleteExpiredUnverified deletes the given ids, re-checking that each is
	// still unverified with otp_issued_at before cutoff. Returns rows removed.
	DeleteExpiredUnverified(ctx context.Context, ids []string, cutoff time.Time) (int64, error)
}

type DiagnosisReports interface {
	// CreateDiagnosisReport inserts a report and returns it with the
	// timestamps assigned by the database.
	CreateDiagnosisReport(ctx context.Context, r domain.DiagnosisReport) (domain.DiagnosisReport, error)

	// GetDiagnosisReport returns a report owned by accountID.
	GetDiagnosisReport(ctx context.Context, accountID, id string) (domain.DiagnosisReport, error)

	// ListDiagnosisReports returns the account's reports, newest first.
	ListDiagnosisReports(ctx context.Context, accountID string) ([]domain.DiagnosisReport, error)

	// DeleteDiagnosisReport removes a report owned by accountID.
	DeleteDiagnosisReport(ctx context.Context, accountID, id string) error
}
