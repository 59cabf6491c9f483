package binding

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeFound  = "found"
	outcomeAbsent = "absent"
	outcomeCached = "cached"
)

type metrics struct {
	resolutions *prometheus.CounterVec
	lookups     *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rulebind",
		Name:      "artifact_resolutions_total",
		Help:      "Artifact resolutions by kind and outcome.",
	}, []string{"kind", "outcome"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rulebind",
		Name:      "dependency_lookups_total",
		Help:      "Rule dependency lookups by kind and outcome.",
	}, []string{"kind", "outcome"})

	var err error
	if resolutions, err = registerCounter(reg, resolutions); err != nil {
		return nil, err
	}
	if lookups, err = registerCounter(reg, lookups); err != nil {
		return nil, err
	}
	return &metrics{resolutions: resolutions, lookups: lookups}, nil
}

// registerCounter reuses an identical collector registered by another
// resolver sharing the registerer.
func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *metrics) resolved(kind Kind, outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(kind.String(), outcome).Inc()
}

func (m *metrics) looked(kind Kind, outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(kind.String(), outcome).Inc()
}
