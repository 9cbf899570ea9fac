package service

import (
	"testing"
	"time"

	"github.com/healthmate/server/internal/healthmate/domain"
	"github.com/healthmate/server/pkg/idx"
	"github.com/healthmate/server/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestReaperSweepSelection(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	clock := newFakeClock(t0.Add(10 * time.Minute))
	reaper := newTestReaper(st, clock)
	cutoff := t0.Add(5 * time.Minute)

	seed := func(email string, verified bool, issuedAt *time.Time) string {
		acct := domain.Account{
			ID:           idx.New().String(),
			Email:        email,
			PasswordHash: "$argon2id$unused",
			Verified:     verified,
		}
		if issuedAt != nil {
			otp := "123456"
			acct.OTP = &otp
			acct.OTPIssuedAt = issuedAt
		}
		require.NoError(t, st.Accounts().CreateAccount(t.Context(), acct))
		return acct.ID
	}

	old := t0
	atCutoff := cutoff
	fresh := t0.Add(9 * time.Minute)

	expired := seed("expired@example.com", false, &old)
	boundary := seed("boundary@example.com", false, &atCutoff)
	pending := seed("pending@example.com", false, &fresh)
	verified := seed("verified@example.com", true, nil)

	deleted, err := reaper.Sweep(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	_, err = st.Accounts().GetAccountByID(t.Context(), expired)
	require.Error(t, err)

	for _, id := range []string{boundary, pending, verified} {
		_, err := st.Accounts().GetAccountByID(t.Context(), id)
		require.NoError(t, err, "account %s must survive", id)
	}

	deleted, err = reaper.Sweep(t.Context())
	require.NoError(t, err)
	require.Zero(t, deleted, "sweeping is idempotent")
}

func TestReaperStartStop(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	clock := newFakeClock(t0)
	n := &recordingNotifier{}
	svc := newTestAccountService(t, st, clock, n)
	require.NoError(t, svc.Register(t.Context(), RegisterInput{Email: "late@example.com", Password: "hunter22"}))

	clock.Set(t0.Add(time.Hour))
	reaper := NewReaperService(st, slogx.Discard(), 10*time.Millisecond, 5*time.Minute)
	reaper.Now = clock.Now

	reaper.Start()
	require.Eventually(t, func() bool {
		_, err := st.Accounts().GetAccountByEmail(t.Context(), "late@example.com")
		return err != nil
	}, time.Second, 5*time.Millisecond)

	reaper.Stop()
	reaper.Stop()
}

func TestNewReaperServiceDefaults(t *testing.T) {
	t.Parallel()

	r := NewReaperService(nil, slogx.Discard(), 0, -time.Second)
	require.Equal(t, DefaultCleanupInterval, r.Interval)
	require.Equal(t, DefaultOTPValidity, r.OTPValidity)
}
