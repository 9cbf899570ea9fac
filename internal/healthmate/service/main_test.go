package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/healthmate/server/internal/healthmate/domain"
	"github.com/healthmate/server/internal/healthmate/store"
	"github.com/healthmate/server/internal/healthmate/store/drivers/sqlite"
	"github.com/healthmate/server/pkg/cryptox"
	"github.com/healthmate/server/pkg/jwtx"
	"github.com/healthmate/server/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "healthmate-test"

var testSecret = []byte(strings.Repeat("k", jwtx.MinHMACSecretLength))

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// fakeClock is a settable clock shared by the services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// recordingNotifier remembers the last OTP sent to each address.
type recordingNotifier struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (n *recordingNotifier) SendOTP(_ context.Context, email, otp string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	if n.sent == nil {
		n.sent = map[string]string{}
	}
	n.sent[email] = otp
	return nil
}

func (n *recordingNotifier) OTP(email string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	otp, ok := n.sent[email]
	return otp, ok
}

func (n *recordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

var errDeliveryFailed = errors.New("smtp: connection refused")

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestTokenIssuer(t *testing.T, clock *fakeClock) *TokenIssuer {
	t.Helper()

	signer, err := jwtx.NewSignerHS256("test", testSecret)
	require.NoError(t, err)

	return &TokenIssuer{
		Signer:   signer,
		Verifier: jwtx.NewVerifierHS256(testSecret, jwtx.VerifyOptions{Issuer: testIssuer, Now: clock.Now}),
		Issuer:   testIssuer,
		TTL:      time.Hour,
		Now:      clock.Now,
	}
}

func newTestAccountService(t *testing.T, st store.Store, clock *fakeClock, notifier Notifier) *AccountService {
	t.Helper()

	return &AccountService{
		Store:       st,
		Hasher:      Argon2Hasher{},
		Tokens:      newTestTokenIssuer(t, clock),
		Notifier:    notifier,
		Policy:      NewPasswordPolicy(0),
		OTPValidity: 5 * time.Minute,
		Now:         clock.Now,
	}
}

func newTestReaper(st store.Store, clock *fakeClock) *ReaperService {
	r := NewReaperService(st, slogx.Discard(), time.Hour, 5*time.Minute)
	r.Now = clock.Now
	return r
}

// fixedOTP makes GenerateOTP deterministic.
func fixedOTP(code string) func() (string, error) {
	return func() (string, error) { return code, nil }
}

// registerVerified creates a verified account through the public flow.
func registerVerified(t *testing.T, svc *AccountService, n *recordingNotifier, email, password string) domain.Account {
	t.Helper()
	ctx := t.Context()

	require.NoError(t, svc.Register(ctx, RegisterInput{Email: email, Password: password}))
	otp, ok := n.OTP(domain.NormalizeEmail(email))
	require.True(t, ok)

	res, err := svc.VerifyOTP(ctx, email, otp)
	require.NoError(t, err)
	require.Equal(t, Verified, res)

	acct, err := svc.GetCurrent(ctx, EmailIdentity(email))
	require.NoError(t, err)
	return acct
}

// hookedStore runs beforeVerify just before the conditional verify update,
// to interleave other work between VerifyOTP's read and its write.
type hookedStore struct {
	store.Store
	beforeVerify func()
}

func (s *hookedStore) Accounts() store.Accounts {
	return &hookedAccounts{Accounts: s.Store.Accounts(), beforeVerify: s.beforeVerify}
}

type hookedAccounts struct {
	store.Accounts
	beforeVerify func()
}

func (a *hookedAccounts) MarkAccountVerified(ctx context.Context, id string, otpIssuedAt time.Time) (bool, error) {
	if a.beforeVerify != nil {
		a.beforeVerify()
	}
	return a.Accounts.MarkAccountVerified(ctx, id, otpIssuedAt)
}
