// Package promx holds small helpers shared by the Prometheus collectors.
package promx

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Register registers c with reg. If an equivalent collector is already
// registered the existing one is returned instead, so constructors can be
// called more than once against the default registry.
func Register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		var zero T
		return zero, fmt.Errorf("register collector: %w", err)
	}

	existing, ok := already.ExistingCollector.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
	}
	return existing, nil
}
