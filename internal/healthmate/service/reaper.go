package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/healthmate/server/internal/healthmate/store"
)

const DefaultCleanupInterval = 5 * time.Minute

// ReaperService periodically deletes accounts that were never verified
// before their OTP expired.
type ReaperService struct {
	Store       store.Store
	Logger      *slog.Logger
	Interval    time.Duration
	OTPValidity time.Duration
	Metrics     *Metrics
	Now         func() time.Time

	// Internal channels for lifecycle management
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewReaperService creates a reaper. Non-positive durations fall back to the
// defaults.
func NewReaperService(store store.Store, logger *slog.Logger, interval, otpValidity time.Duration) *ReaperService {
	return &ReaperService{
		Store:       store,
		Logger:      logger,
		Interval:    orDefault(interval, DefaultCleanupInterval),
		OTPValidity: orDefault(otpValidity, DefaultOTPValidity),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval on a background
// goroutine. Call Stop to shut it down.
func (s *ReaperService) Start() {
	go s.run()
	s.Logger.Info("reaper started", "interval", s.Interval, "otp_validity", s.OTPValidity)
}

// Stop signals the worker and blocks until any in-progress sweep finishes.
// It is safe to call more than once.
func (s *ReaperService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
		s.Logger.Info("reaper stopped")
	})
}

func (s *ReaperService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.tick()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopCh:
			return
		}
	}
}

func (s *ReaperService) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()

	deleted, err := s.Sweep(ctx)
	if err != nil {
		s.Logger.Error("reaper sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		s.Logger.Info("reaper removed expired accounts", "deleted", deleted)
	} else {
		s.Logger.Debug("reaper found nothing to remove")
	}
}

// Sweep deletes unverified accounts whose OTP was issued before
// now minus the OTP validity, and returns how many went. The delete
// re-checks both conditions, so an account verified after the lookup stays.
func (s *ReaperService) Sweep(ctx context.Context) (deleted int, err error) {
	defer func() { s.Metrics.sweep(deleted, err) }()

	cutoff := s.now().Add(-orDefault(s.OTPValidity, DefaultOTPValidity))

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		ids, err := tx.Accounts().FindExpiredUnverified(ctx, cutoff)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		n, err := tx.Accounts().DeleteExpiredUnverified(ctx, ids, cutoff)
		if err != nil {
			return err
		}
		deleted = int(n)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *ReaperService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
