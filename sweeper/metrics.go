package sweeper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StatsRecorder is the narrow observability seam the engine calls into once
// a query's outcome is known (spec §4.4.4): outcome is one of the
// VerdictKind/CondKind String() labels ("equivalent", "not-equivalent",
// "undecided", "cond-unsat", "cond-sat", "cond-undecided"), proved reports
// whether the query
// established a definite (non-undecided) result, and d is the solve's
// wall-clock duration. The default Session has a no-op recorder; passing
// WithMetrics swaps in a Prometheus-backed one, mirroring the
// operator-lifecycle-manager's own optional-metrics registration idiom.
type StatsRecorder interface {
	ObserveQuery(outcome string, proved bool, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveQuery(string, bool, time.Duration) {}

// Metrics is a Prometheus-backed StatsRecorder. Unlike the counters
// exposed read-only through Session.Stats (which are per-Session), these
// are registered against a prometheus.Registerer so they can be scraped
// process-wide across every Session sharing it: a counter per verdict
// outcome, a counter of proofs established, and a histogram of solve
// wall-clock time labeled by outcome (SPEC_FULL.md §4.4).
type Metrics struct {
	queriesTotal  *prometheus.CounterVec
	proofsTotal   prometheus.Counter
	solveDuration *prometheus.HistogramVec
}

// NewMetrics constructs and registers a Metrics recorder against reg. reg
// is typically prometheus.DefaultRegisterer, but a caller running several
// Sessions under test commonly passes a fresh prometheus.NewRegistry()
// instead to avoid duplicate-registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aigsweep",
			Subsystem: "sweeper",
			Name:      "queries_total",
			Help:      "Total number of equivalence/condition queries issued to the SAT solver, by outcome.",
		}, []string{"outcome"}),
		proofsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aigsweep",
			Subsystem: "sweeper",
			Name:      "proofs_established_total",
			Help:      "Total number of queries that established a definite, non-undecided verdict.",
		}),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aigsweep",
			Subsystem: "sweeper",
			Name:      "solve_duration_seconds",
			Help:      "Wall-clock time spent per solve call, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.queriesTotal, m.proofsTotal, m.solveDuration)
	return m
}

func (m *Metrics) ObserveQuery(outcome string, proved bool, d time.Duration) {
	m.queriesTotal.WithLabelValues(outcome).Inc()
	if proved {
		m.proofsTotal.Inc()
	}
	m.solveDuration.WithLabelValues(outcome).Observe(d.Seconds())
}
