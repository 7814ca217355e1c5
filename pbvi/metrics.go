package pbvi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the solver's prometheus instruments. A nil *Metrics records nothing.
type Metrics struct {
	Iterations      prometheus.Counter
	Backups         prometheus.Counter
	AcceptedVectors prometheus.Counter
	CacheBuilds     prometheus.Counter
	Vectors         prometheus.Gauge
}

// NewMetrics creates the instruments and registers them with reg. A nil reg
// creates unregistered instruments.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Iterations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pomdp",
			Subsystem: "pbvi",
			Name:      "iterations_total",
			Help:      "Completed point-based improvement iterations.",
		}),
		Backups: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pomdp",
			Subsystem: "pbvi",
			Name:      "backups_total",
			Help:      "Point-based Bellman backups performed.",
		}),
		AcceptedVectors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pomdp",
			Subsystem: "pbvi",
			Name:      "accepted_vectors_total",
			Help:      "Backed-up vectors accepted into the next value function.",
		}),
		CacheBuilds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pomdp",
			Subsystem: "pbvi",
			Name:      "gcache_builds_total",
			Help:      "G-cache rebuilds after the value function changed.",
		}),
		Vectors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "pomdp",
			Subsystem: "pbvi",
			Name:      "value_function_vectors",
			Help:      "Alpha vectors in the current value function.",
		}),
	}
}

func (m *Metrics) observeIteration(backups, accepted int) {
	if m == nil {
		return
	}
	m.Iterations.Inc()
	m.Backups.Add(float64(backups))
	m.AcceptedVectors.Add(float64(accepted))
}

func (m *Metrics) observeCache(vectors int) {
	if m == nil {
		return
	}
	m.CacheBuilds.Inc()
	m.Vectors.Set(float64(vectors))
}
