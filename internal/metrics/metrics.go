// Package metrics exports Prometheus instrumentation for the match engine.
// It generalises the teacher's internal/simulation.TickMonitor (an
// in-process mean/max/last accumulator) into a registry of exported
// gauges/histograms/counters so an operator can scrape /metrics instead
// of polling a snapshot struct.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles every metric the engine exports. A nil *Registry is
// safe to call methods on: every recording method is a no-op, so callers
// that run without a metrics sink (tests, headless batch runs) don't need
// to special-case it.
type Registry struct {
	registerer prometheus.Registerer

	schedulerDepth   prometheus.Gauge
	tickDuration     prometheus.Histogram
	externalEvents   *prometheus.CounterVec
	substitutionsCut *prometheus.CounterVec
}

// NewRegistry constructs a Registry and registers its collectors with reg.
// Passing prometheus.NewRegistry() isolates tests from the global default
// registry; passing nil falls back to prometheus.DefaultRegisterer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Registry{
		registerer: reg,
		schedulerDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "match",
			Subsystem: "scheduler",
			Name:      "queue_depth",
			Help:      "Number of events currently queued in the tick scheduler's heap.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "match",
			Subsystem: "scheduler",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of one simulated tick's work, as observed by the caller.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14),
		}),
		externalEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "match",
			Subsystem: "external",
			Name:      "events_total",
			Help:      "Total external events accepted, by payload kind.",
		}, []string{"kind"}),
		substitutionsCut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "match",
			Subsystem: "external",
			Name:      "substitutions_rejected_total",
			Help:      "Total substitution requests rejected by cooldown, by team.",
		}, []string{"team"}),
	}
	for _, c := range []prometheus.Collector{r.schedulerDepth, r.tickDuration, r.externalEvents, r.substitutionsCut} {
		_ = reg.Register(c)
	}
	return r
}

// ObserveTickDuration records how long one simulated tick's work took
// (cmd/matchd passes the duration of its ball-physics callback).
func (r *Registry) ObserveTickDuration(d time.Duration) {
	if r == nil {
		return
	}
	r.tickDuration.Observe(d.Seconds())
}

// SetSchedulerDepth reports the current number of queued events.
func (r *Registry) SetSchedulerDepth(depth int) {
	if r == nil {
		return
	}
	r.schedulerDepth.Set(float64(depth))
}

// IncExternalEvent records one accepted external event of the given kind.
func (r *Registry) IncExternalEvent(kind string) {
	if r == nil {
		return
	}
	r.externalEvents.WithLabelValues(kind).Inc()
}

// IncSubstitutionRejected records one substitution request rejected by the
// cooldown policy for the given team.
func (r *Registry) IncSubstitutionRejected(teamID string) {
	if r == nil {
		return
	}
	r.substitutionsCut.WithLabelValues(teamID).Inc()
}
