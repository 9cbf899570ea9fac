package service

import (
	"errors"

	"github.com/healthmate/server/pkg/promx"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts account lifecycle outcomes. A nil *Metrics is a no-op so
// tests can leave it unset.
type Metrics struct {
	Registrations *prometheus.CounterVec
	Verifications *prometheus.CounterVec
	Logins        *prometheus.CounterVec
	ReaperSweeps  *prometheus.CounterVec
	ReaperDeleted prometheus.Counter
}

// NewMetrics registers the lifecycle collectors with reg (the default
// registerer when nil).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	registrations, err := promx.Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthmate",
		Subsystem: "accounts",
		Name:      "registrations_total",
		Help:      "Registration attempts partitioned by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	verifications, err := promx.Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthmate",
		Subsystem: "accounts",
		Name:      "verifications_total",
		Help:      "OTP verification attempts partitioned by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	logins, err := promx.Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthmate",
		Subsystem: "accounts",
		Name:      "logins_total",
		Help:      "Login attempts partitioned by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	sweeps, err := promx.Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthmate",
		Subsystem: "reaper",
		Name:      "sweeps_total",
		Help:      "Expiry sweeps partitioned by result.",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	deleted, err := promx.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthmate",
		Subsystem: "reaper",
		Name:      "deleted_accounts_total",
		Help:      "Unverified accounts removed after their OTP expired.",
	}))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		Registrations: registrations,
		Verifications: verifications,
		Logins:        logins,
		ReaperSweeps:  sweeps,
		ReaperDeleted: deleted,
	}, nil
}

func (m *Metrics) registration(err error) {
	if m != nil {
		m.Registrations.WithLabelValues(outcome(err)).Inc()
	}
}

func (m *Metrics) verification(res VerifyResult, err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.Verifications.WithLabelValues(res.String()).Inc()
		return
	}
	m.Verifications.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) login(err error) {
	if m != nil {
		m.Logins.WithLabelValues(outcome(err)).Inc()
	}
}

func (m *Metrics) sweep(deleted int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ReaperSweeps.WithLabelValues("error").Inc()
		return
	}
	m.ReaperSweeps.WithLabelValues("ok").Inc()
	m.ReaperDeleted.Add(float64(deleted))
}

// outcome maps an error to a bounded label value.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	for _, kind := range []error{
		ErrValidation, ErrConflict, ErrNotFound, ErrInvalidCredentials, ErrUnverified,
		ErrInvalidOTP, ErrOTPExpired, ErrNotifier, ErrStoreUnavailable,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "error"
}
