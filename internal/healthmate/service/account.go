package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/healthmate/server/internal/healthmate/domain"
	"github.com/healthmate/server/internal/healthmate/store"
	"github.com/healthmate/server/pkg/cryptox"
	"github.com/healthmate/server/pkg/idx"
	"github.com/healthmate/server/pkg/slogx"
)

const (
	DefaultOTPValidity   = 5 * time.Minute
	DefaultOTPAttempts   = 5
	DefaultNotifyTimeout = 10 * time.Second
	DefaultStoreTimeout  = 5 * time.Second
)

// Notifier delivers one-time passwords to the account owner.
type Notifier interface {
	SendOTP(ctx context.Context, email, otp string) error
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Validate checks the shape of the input. Password strength is the
// policy's job.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required),
		validation.Field(&in.Name, validation.RuneLength(0, MaxNameLength)),
	)
}

type LoginResult struct {
	Token     string
	AccountID string
}

// AccountService owns the account lifecycle: registration with an emailed
// OTP, verification, password login and owner deletion.
type AccountService struct {
	Store    store.Store
	Hasher   PasswordHasher
	Tokens   *TokenIssuer
	Notifier Notifier
	Policy   *PasswordPolicy
	Metrics  *Metrics

	OTPValidity   time.Duration
	OTPAttempts   int // verification attempts allowed per OTP
	NotifyTimeout time.Duration
	StoreTimeout  time.Duration

	// Now and GenerateOTP default to the wall clock and cryptox.GenerateOTP.
	Now         func() time.Time
	GenerateOTP func() (string, error)

	dummyOnce sync.Once
	dummyHash string
}

// Register creates an unverified account and sends it an OTP. The row is
// written first so the unique email index decides concurrent registrations;
// if delivery then fails the row is removed again.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (err error) {
	defer func() { s.Metrics.registration(err) }()

	in.Email = domain.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.Policy.Validate(in.Password, in.Email, in.Name); err != nil {
		return fmt.Errorf("%w: password: %v", ErrValidation, err)
	}

	l := slogx.FromContext(ctx)

	if _, err := s.accountByEmail(ctx, in.Email); err == nil {
		return ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := s.hasher().Hash(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	code, err := s.generateOTP()
	if err != nil {
		return err
	}

	now := s.now()
	acct := domain.Account{
		ID:           idx.NewAt(now).String(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		OTP:          &code,
		OTPIssuedAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	sctx, cancel := s.storeCtx(ctx)
	err = s.Store.Accounts().CreateAccount(sctx, acct)
	cancel()
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrConflict
		}
		return storeError(err)
	}

	nctx, cancel := context.WithTimeout(ctx, orDefault(s.NotifyTimeout, DefaultNotifyTimeout))
	err = s.Notifier.SendOTP(nctx, acct.Email, code)
	cancel()
	if err != nil {
		l.Warn("otp delivery failed", slog.String("account_id", acct.ID), slog.Any("err", err))
		s.discardUnverified(ctx, acct)
		return fmt.Errorf("%w: %w", ErrNotifier, err)
	}

	l.Info("account registered", slog.String("account_id", acct.ID))
	return nil
}

// discardUnverified removes an account whose OTP never reached its owner.
// It runs even when ctx is already cancelled; if it fails, the reaper
// collects the row once the OTP expires.
func (s *AccountService) discardUnverified(ctx context.Context, acct domain.Account) {
	l := slogx.FromContext(ctx)

	dctx, cancel := s.storeCtx(context.WithoutCancel(ctx))
	defer cancel()

	removed, err := s.Store.Accounts().DeleteUnverifiedAccount(dctx, acct.ID, *acct.OTPIssuedAt)
	switch {
	case err != nil:
		l.Error("failed to remove undelivered account", slog.String("account_id", acct.ID), slog.Any("err", err))
	case !removed:
		l.Warn("undelivered account already changed", slog.String("account_id", acct.ID))
	}
}

// VerifyOTP consumes the account's OTP. The checks run in a fixed order:
// existence, already verified, value, then expiry.
func (s *AccountService) VerifyOTP(ctx context.Context, email, code string) (res VerifyResult, err error) {
	defer func() { s.Metrics.verification(res, err) }()

	email = domain.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	verr := validation.Errors{
		"email": validation.Validate(email, validation.Required),
		"otp":   validation.Validate(code, validation.Required),
	}
	if err := verr.Filter(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	acct, err := s.accountByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if acct.Verified {
		return VerifyAlreadyVerified, nil
	}
	if !acct.PendingVerification() {
		return 0, ErrInvalidOTP
	}

	// Every attempt is counted before the comparison so concurrent guesses
	// from different clients share one budget.
	sctx, cancel := s.storeCtx(ctx)
	attempts, err := s.Store.Accounts().RecordOTPAttempt(sctx, acct.ID, *acct.OTPIssuedAt)
	cancel()
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.resolveLostVerify(ctx, acct.ID)
	case err != nil:
		return 0, storeError(err)
	}
	if attempts > s.otpAttempts() {
		if attempts == s.otpAttempts()+1 {
			slogx.FromContext(ctx).Warn("otp attempts exhausted", slog.String("account_id", acct.ID))
		}
		return 0, ErrInvalidOTP
	}
	if !cryptox.EqualOTP(*acct.OTP, code) {
		return 0, ErrInvalidOTP
	}
	if acct.OTPExpired(s.now(), s.otpValidity()) {
		return 0, ErrOTPExpired
	}

	sctx, cancel = s.storeCtx(ctx)
	updated, err := s.Store.Accounts().MarkAccountVerified(sctx, acct.ID, *acct.OTPIssuedAt)
	cancel()
	if err != nil {
		return 0, storeError(err)
	}
	if !updated {
		return s.resolveLostVerify(ctx, acct.ID)
	}

	slogx.FromContext(ctx).Info("account verified", slog.String("account_id", acct.ID))
	return Verified, nil
}

// resolveLostVerify explains why the conditional update matched no row:
// the reaper deleted the account, or another verify got there first.
func (s *AccountService) resolveLostVerify(ctx context.Context, id string) (VerifyResult, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	acct, err := s.Store.Accounts().GetAccountByID(sctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return 0, ErrNotFound
	case err != nil:
		return 0, storeError(err)
	case acct.Verified:
		return VerifyAlreadyVerified, nil
	default:
		return 0, ErrOTPExpired
	}
}

// Login checks the password and issues a bearer token. Unknown emails and
// wrong passwords return the same error after the same amount of hashing
// work. The verified flag is only checked once the password matched.
func (s *AccountService) Login(ctx context.Context, email, password string) (res LoginResult, err error) {
	defer func() { s.Metrics.login(err) }()

	email = domain.NormalizeEmail(email)
	verr := validation.Errors{
		"email":    validation.Validate(email, validation.Required),
		"password": validation.Validate(password, validation.Required),
	}
	if err := verr.Filter(); err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	l := slogx.FromContext(ctx)

	acct, err := s.accountByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		_ = s.hasher().Verify(password, s.dummy())
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.hasher().Verify(password, acct.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrInvalidHash) {
			l.Error("stored password hash is unreadable", slog.String("account_id", acct.ID), slog.Any("err", err))
		}
		return LoginResult{}, ErrInvalidCredentials
	}
	if !acct.Verified {
		return LoginResult{}, ErrUnverified
	}

	token, err := s.Tokens.Issue(acct.Email, acct.ID)
	if err != nil {
		return LoginResult{}, err
	}

	l.Info("login succeeded", slog.String("account_id", acct.ID))
	return LoginResult{Token: token, AccountID: acct.ID}, nil
}

// GetCurrent returns the account for an authenticated identity.
func (s *AccountService) GetCurrent(ctx context.Context, identity Identity) (domain.Account, error) {
	return s.accountFor(ctx, identity)
}

// Delete removes the identity's account immediately. Diagnosis reports go
// with it.
func (s *AccountService) Delete(ctx context.Context, identity Identity) error {
	acct, err := s.accountFor(ctx, identity)
	if err != nil {
		return err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.Store.Accounts().DeleteAccount(sctx, acct.ID); err != nil {
		return storeError(err)
	}

	slogx.FromContext(ctx).Info("account deleted", slog.String("account_id", acct.ID))
	return nil
}

// accountFor resolves identity by email and checks the account id binding.
func (s *AccountService) accountFor(ctx context.Context, identity Identity) (domain.Account, error) {
	acct, err := s.accountByEmail(ctx, domain.NormalizeEmail(identity.Email))
	if err != nil {
		return domain.Account{}, err
	}
	if !identity.owns(acct) {
		return domain.Account{}, ErrNotFound
	}
	return acct, nil
}

func (s *AccountService) accountByEmail(ctx context.Context, email string) (domain.Account, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	acct, err := s.Store.Accounts().GetAccountByEmail(sctx, email)
	if err != nil {
		return domain.Account{}, storeError(err)
	}
	return acct, nil
}

func (s *AccountService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, orDefault(s.StoreTimeout, DefaultStoreTimeout))
}

func (s *AccountService) otpValidity() time.Duration {
	return orDefault(s.OTPValidity, DefaultOTPValidity)
}

func (s *AccountService) otpAttempts() int {
	return orDefault(s.OTPAttempts, DefaultOTPAttempts)
}

// now is truncated to the millisecond precision the stores keep, so the
// issued-at value read back compares equal to the one written.
func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC().Truncate(time.Millisecond)
	}
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *AccountService) generateOTP() (string, error) {
	if s.GenerateOTP != nil {
		return s.GenerateOTP()
	}
	return cryptox.GenerateOTP()
}

func (s *AccountService) hasher() PasswordHasher {
	if s.Hasher != nil {
		return s.Hasher
	}
	return Argon2Hasher{}
}

// dummy returns a throwaway hash verified against for unknown emails.
func (s *AccountService) dummy() string {
	s.dummyOnce.Do(func() {
		if h, err := s.hasher().Hash(idx.New().String()); err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// storeError maps store sentinels onto service errors. Anything else is an
// infrastructure failure.
func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

func orDefault[T int | time.Duration](d, def T) T {
	if d > 0 {
		return d
	}
	return def
}
