// Package prom exports factory metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/uniquefactory/factory"
)

// Adapter implements factory.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	createErrs prometheus.Counter
	finalized  *prometheus.CounterVec
	orphaned   prometheus.Counter
	live       prometheus.Gauge
	retained   prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:       counter("hits_total", "Gets served by a live value"),
		misses:     counter("misses_total", "Gets that called the create function"),
		createErrs: counter("create_errors_total", "Create functions that returned an error"),
		finalized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "finalized_total",
				Help:        "Values finalized, by finalizer state",
				ConstLabels: constLabels,
			},
			[]string{"state"},
		),
		orphaned: counter("orphaned_total", "Values detached from the factory while still referenced"),
		live:     gauge("live_entries", "Number of values reachable through the factory"),
		retained: gauge("retained_entries", "Number of values pinned by the retention policy"),
	}
	reg.MustRegister(a.hits, a.misses, a.createErrs, a.finalized, a.orphaned, a.live, a.retained)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// CreateError increments the create error counter.
func (a *Adapter) CreateError() { a.createErrs.Inc() }

// Finalize increments the finalization counter labelled with the state.
func (a *Adapter) Finalize(s factory.FinalizeState) {
	a.finalized.WithLabelValues(s.String()).Inc()
}

// Orphan adds n detached values.
func (a *Adapter) Orphan(n int) { a.orphaned.Add(float64(n)) }

// Size updates the live and retained gauges.
func (a *Adapter) Size(live, retained int) {
	a.live.Set(float64(live))
	a.retained.Set(float64(retained))
}

// Compile-time check: ensure Adapter implements factory.Metrics.
var _ factory.Metrics = (*Adapter)(nil)
