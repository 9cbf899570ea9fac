package promx_test

import (
	"testing"

	"github.com/healthmate/server/pkg/promx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRegisterReturnsExisting(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := prometheus.CounterOpts{Name: "things_total", Help: "Things."}

	first, err := promx.Register(reg, prometheus.NewCounter(opts))
	require.NoError(t, err)

	second, err := promx.Register(reg, prometheus.NewCounter(opts))
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestRegisterTypeMismatch(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := promx.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{Name: "things", Help: "Things."}))
	require.NoError(t, err)

	_, err = promx.Register(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: "things", Help: "Things."}))
	require.Error(t, err)
}
