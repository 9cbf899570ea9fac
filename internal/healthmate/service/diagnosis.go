package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/healthmate/server/internal/healthmate/domain"
	"github.com/healthmate/server/internal/healthmate/store"
	"github.com/healthmate/server/pkg/idx"
	"github.com/healthmate/server/pkg/slogx"
)

const MaxSymptomsLength = 2000

// Inference turns a free-text symptom description into a diagnosis.
type Inference interface {
	Diagnose(ctx context.Context, symptoms string) (string, error)
}

// DiagnosisService keeps an account's diagnosis history. Every operation is
// scoped to the authenticated identity; reports of other accounts look
// missing.
type DiagnosisService struct {
	Store        store.Store
	Inference    Inference
	StoreTimeout time.Duration
	Now          func() time.Time
}

// Create runs inference over symptoms and stores the result.
func (s *DiagnosisService) Create(ctx context.Context, identity Identity, symptoms string) (domain.DiagnosisReport, error) {
	symptoms = strings.TrimSpace(symptoms)
	if err := validation.Validate(symptoms,
		validation.Required,
		validation.RuneLength(1, MaxSymptomsLength),
	); err != nil {
		return domain.DiagnosisReport{}, fmt.Errorf("%w: symptoms: %v", ErrValidation, err)
	}

	acct, err := s.owner(ctx, identity)
	if err != nil {
		return domain.DiagnosisReport{}, err
	}

	diagnosis, err := s.Inference.Diagnose(ctx, symptoms)
	if err != nil {
		return domain.DiagnosisReport{}, fmt.Errorf("%w: %w", ErrInference, err)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	report, err := s.Store.DiagnosisReports().CreateDiagnosisReport(sctx, domain.DiagnosisReport{
		ID:        idx.NewAt(s.now()).String(),
		AccountID: acct.ID,
		Symptoms:  symptoms,
		Diagnosis: diagnosis,
	})
	if err != nil {
		return domain.DiagnosisReport{}, storeError(err)
	}

	slogx.FromContext(ctx).Info("diagnosis report created",
		slog.String("account_id", acct.ID),
		slog.String("report_id", report.ID),
	)
	return report, nil
}

// List returns the identity's reports, newest first.
func (s *DiagnosisService) List(ctx context.Context, identity Identity) ([]domain.DiagnosisReport, error) {
	acct, err := s.owner(ctx, identity)
	if err != nil {
		return nil, err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	reports, err := s.Store.DiagnosisReports().ListDiagnosisReports(sctx, acct.ID)
	if err != nil {
		return nil, storeError(err)
	}
	return reports, nil
}

func (s *DiagnosisService) Get(ctx context.Context, identity Identity, reportID string) (domain.DiagnosisReport, error) {
	acct, err := s.owner(ctx, identity)
	if err != nil {
		return domain.DiagnosisReport{}, err
	}
	if _, err := idx.Parse(reportID); err != nil {
		return domain.DiagnosisReport{}, ErrNotFound
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	report, err := s.Store.DiagnosisReports().GetDiagnosisReport(sctx, acct.ID, reportID)
	if err != nil {
		return domain.DiagnosisReport{}, storeError(err)
	}
	return report, nil
}

func (s *DiagnosisService) Delete(ctx context.Context, identity Identity, reportID string) error {
	acct, err := s.owner(ctx, identity)
	if err != nil {
		return err
	}
	if _, err := idx.Parse(reportID); err != nil {
		return ErrNotFound
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.Store.DiagnosisReports().DeleteDiagnosisReport(sctx, acct.ID, reportID); err != nil {
		return storeError(err)
	}

	slogx.FromContext(ctx).Info("diagnosis report deleted",
		slog.String("account_id", acct.ID),
		slog.String("report_id", reportID),
	)
	return nil
}

// owner resolves the identity to its account. Tokens can outlive the
// account they were issued for.
func (s *DiagnosisService) owner(ctx context.Context, identity Identity) (domain.Account, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	acct, err := s.Store.Accounts().GetAccountByEmail(sctx, domain.NormalizeEmail(identity.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrNotFound
		}
		return domain.Account{}, storeError(err)
	}
	if !identity.owns(acct) {
		return domain.Account{}, ErrNotFound
	}
	return acct, nil
}

func (s *DiagnosisService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, orDefault(s.StoreTimeout, DefaultStoreTimeout))
}

func (s *DiagnosisService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
