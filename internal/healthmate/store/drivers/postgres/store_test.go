package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/healthmate/server/internal/healthmate/domain"
	"github.com/healthmate/server/internal/healthmate/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewStoreFromDB(db), mock
}

var accountRowColumns = []string{"id", "email", "password_hash", "name", "otp", "otp_issued_at", "verified", "created_at", "updated_at", "otp_attempts"}

func TestGetAccountByEmail(t *testing.T) {
	st, mock := newStoreWithMock(t)
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	created := t0.Add(-time.Second)

	q := `(?s)^SELECT\s+id,\s*email,.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1$`
	mock.ExpectQuery(q).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(accountRowColumns).
			AddRow("acct-1", "alice@example.com", "argon2:x", "Alice", "042817", t0.UnixMilli(), false, created, created, 2))

	got, err := st.Accounts().GetAccountByEmail(t.Context(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "acct-1", got.ID)
	require.NotNil(t, got.OTP)
	require.Equal(t, "042817", *got.OTP)
	require.NotNil(t, got.OTPIssuedAt)
	require.True(t, t0.Equal(*got.OTPIssuedAt))
	require.False(t, got.Verified)
	require.Equal(t, 2, got.OTPAttempts)
}

func TestRecordOTPAttempt(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	q := `(?s)^UPDATE\s+accounts\s+SET\s+otp_attempts\s*=\s*otp_attempts\s*\+\s*1.*RETURNING\s+otp_attempts$`

	t.Run("counts", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectQuery(q).
			WithArgs("acct-1", t0.UnixMilli()).
			WillReturnRows(sqlmock.NewRows([]string{"otp_attempts"}).AddRow(3))

		n, err := st.Accounts().RecordOTPAttempt(t.Context(), "acct-1", t0)
		require.NoError(t, err)
		require.Equal(t, 3, n)
	})

	t.Run("otp no longer pending", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		mock.ExpectQuery(q).
			WithArgs("acct-1", t0.UnixMilli()).
			WillReturnError(sql.ErrNoRows)

		_, err := st.Accounts().RecordOTPAttempt(t.Context(), "acct-1", t0)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestGetAccountNotFound(t *testing.T) {
	st, mock := newStoreWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := st.Accounts().GetAccountByID(t.Context(), "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateAccountUniqueViolation(t *testing.T) {
	st, mock := newStoreWithMock(t)
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	otp := "042817"

	q := `(?s)^INSERT\s+INTO\s+accounts\s*\(id,\s*email,\s*password_hash,\s*name,\s*otp,\s*otp_issued_at,\s*verified\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)$`
	mock.ExpectExec(q).
		WithArgs("acct-1", "dup@example.com", "argon2:x", "", "042817", t0.UnixMilli(), false).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := st.Accounts().CreateAccount(t.Context(), domain.Account{
		ID:           "acct-1",
		Email:        "dup@example.com",
		PasswordHash: "argon2:x",
		OTP:          &otp,
		OTPIssuedAt:  &t0,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestCreateAccountDBError(t *testing.T) {
	st, mock := newStoreWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+accounts`).
		WillReturnError(errors.New("db down"))

	err := st.Accounts().CreateAccount(t.Context(), domain.Account{ID: "acct-1", Email: "a@example.com"})
	require.Error(t, err)
	require.NotErrorIs(t, err, store.ErrAlreadyExists)
	require.Contains(t, err.Error(), "postgres: create account: db down")
}

func TestMarkAccountVerified(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	q := `(?s)^UPDATE\s+accounts\s+SET\s+verified\s*=\s*TRUE,\s*otp\s*=\s*NULL,\s*otp_issued_at\s*=\s*NULL.*WHERE\s+id\s*=\s*\$1\s+AND\s+verified\s*=\s*FALSE\s+AND\s+otp_issued_at\s*=\s*\$2$`

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"row updated", 1, true},
		{"lost race", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, mock := newStoreWithMock(t)
			mock.ExpectExec(q).
				WithArgs("acct-1", t0.UnixMilli()).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			got, err := st.Accounts().MarkAccountVerified(t.Context(), "acct-1", t0)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDeleteAccountNotFound(t *testing.T) {
	st, mock := newStoreWithMock(t)

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, st.Accounts().DeleteAccount(t.Context(), "ghost"), store.ErrNotFound)
}

func TestExpiredUnverified(t *testing.T) {
	st, mock := newStoreWithMock(t)
	cutoff := time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^SELECT\s+id\s+FROM\s+accounts\s+WHERE\s+verified\s*=\s*FALSE\s+AND\s+otp_issued_at\s*<\s*\$1`).
		WithArgs(cutoff.UnixMilli()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))

	ids, err := st.Accounts().FindExpiredUnverified(t.Context(), cutoff)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+accounts\s+WHERE\s+verified\s*=\s*FALSE\s+AND\s+otp_issued_at\s*<\s*\$1\s+AND\s+id\s+IN\s+\(\$2,\s*\$3\)$`).
		WithArgs(cutoff.UnixMilli(), "a", "b").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := st.Accounts().DeleteExpiredUnverified(t.Context(), ids, cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = st.Accounts().DeleteExpiredUnverified(t.Context(), nil, cutoff)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestDeleteExpiredUnverifiedBatches(t *testing.T) {
	st, mock := newStoreWithMock(t)
	cutoff := time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC)

	ids := make([]string, 2*deleteBatchSize+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("acct-%04d", i)
	}

	for start := 0; start < len(ids); start += deleteBatchSize {
		batch := ids[start:min(start+deleteBatchSize, len(ids))]

		args := []driver.Value{cutoff.UnixMilli()}
		placeholders := make([]string, len(batch))
		for i, id := range batch {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf(`\$%d`, i+2)
		}

		mock.ExpectExec(`(?s)^DELETE\s+FROM\s+accounts.*id\s+IN\s+\(` + strings.Join(placeholders, `,\s*`) + `\)$`).
			WithArgs(args...).
			WillReturnResult(sqlmock.NewResult(0, int64(len(batch))))
	}

	n, err := st.Accounts().DeleteExpiredUnverified(t.Context(), ids, cutoff)
	require.NoError(t, err)
	require.EqualValues(t, len(ids), n)
}

func TestDeleteExpiredUnverifiedStopsOnBatchError(t *testing.T) {
	st, mock := newStoreWithMock(t)
	cutoff := time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC)

	ids := make([]string, deleteBatchSize+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("acct-%04d", i)
	}

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+accounts`).
		WillReturnResult(sqlmock.NewResult(0, deleteBatchSize))
	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+accounts`).
		WillReturnError(errors.New("connection reset"))

	n, err := st.Accounts().DeleteExpiredUnverified(t.Context(), ids, cutoff)
	require.Error(t, err)
	require.EqualValues(t, deleteBatchSize, n)
}

func TestDiagnosisReports(t *testing.T) {
	st, mock := newStoreWithMock(t)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+diagnosis_reports.*RETURNING\s+created_at,\s*updated_at$`).
		WithArgs("rep-1", "acct-1", "fever", "flu").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	created, err := st.DiagnosisReports().CreateDiagnosisReport(t.Context(), domain.DiagnosisReport{
		ID: "rep-1", AccountID: "acct-1", Symptoms: "fever", Diagnosis: "flu",
	})
	require.NoError(t, err)
	require.Equal(t, now, created.CreatedAt)

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+diagnosis_reports\s+WHERE\s+account_id\s*=\s*\$1\s+ORDER\s+BY\s+id\s+DESC$`).
		WithArgs("acct-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "symptoms", "diagnosis", "created_at", "updated_at"}))

	list, err := st.DiagnosisReports().ListDiagnosisReports(t.Context(), "acct-2")
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+diagnosis_reports\s+WHERE\s+id\s*=\s*\$1\s+AND\s+account_id\s*=\s*\$2$`).
		WithArgs("rep-1", "acct-2").
		WillReturnError(sql.ErrNoRows)

	_, err = st.DiagnosisReports().GetDiagnosisReport(t.Context(), "acct-2", "rep-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+diagnosis_reports`).
		WithArgs("rep-1", "acct-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, st.DiagnosisReports().DeleteDiagnosisReport(t.Context(), "acct-2", "rep-1"), store.ErrNotFound)
}

func TestWithTxCommitAndRollback(t *testing.T) {
	st, mock := newStoreWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+accounts`).WithArgs("acct-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, st.WithTx(t.Context(), func(tx store.Tx) error {
		return tx.Accounts().DeleteAccount(t.Context(), "acct-1")
	}))

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	require.ErrorIs(t, st.WithTx(t.Context(), func(tx store.Tx) error { return boom }), boom)
}
