package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the patrol module: mutation outcomes,
// gateway round-trip durations, and the current warning counts by severity.
type Metrics struct {
	MovesAccepted    prometheus.Counter
	MovesRejected    prometheus.Counter
	DesyncRejections prometheus.Counter
	RoleChanges      prometheus.Counter
	Saves            prometheus.Counter
	SaveFailures     prometheus.Counter
	Regenerations    prometheus.Counter
	RegenFailures    prometheus.Counter

	SaveDuration  prometheus.Histogram
	LoadDuration  prometheus.Histogram
	RegenDuration prometheus.Histogram

	Warnings *prometheus.GaugeVec
}

// New creates a Metrics instance with all patrol module metrics registered.
func New() *Metrics {
	durationBuckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	return &Metrics{
		MovesAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolboard_moves_accepted_total",
			Help: "Total member moves accepted by the validator",
		}),
		MovesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolboard_moves_rejected_total",
			Help: "Total member moves rejected by the validator",
		}),
		DesyncRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolboard_desync_rejections_total",
			Help: "Rejections caused by requests naming unknown patrols or participants (desynchronized caller)",
		}),
		RoleChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolboard_role_changes_total",
			Help: "Total role change requests applied (including idempotent no-ops)",
		}),
		Saves: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolboard_saves_total",
			Help: "Total successful roster saves",
		}),
		SaveFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolboard_save_failures_total",
			Help: "Total roster save attempts that failed at the gateway",
		}),
		Regenerations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolboard_regenerations_total",
			Help: "Total successful roster regenerations",
		}),
		RegenFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolboard_regeneration_failures_total",
			Help: "Total roster regeneration attempts that failed at the gateway",
		}),
		SaveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "patrolboard_save_duration_seconds",
			Help:    "Duration of gateway Save calls",
			Buckets: durationBuckets,
		}),
		LoadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "patrolboard_load_duration_seconds",
			Help:    "Duration of gateway Load calls",
			Buckets: durationBuckets,
		}),
		RegenDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "patrolboard_regeneration_duration_seconds",
			Help:    "Duration of gateway Regenerate calls",
			Buckets: durationBuckets,
		}),
		Warnings: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "patrolboard_roster_warnings",
			Help: "Current diagnostic warnings on the live roster, by severity",
		}, []string{"severity"}),
	}
}

// ObserveSave records the duration of a gateway Save call.
func (m *Metrics) ObserveSave(start time.Time) {
	m.SaveDuration.Observe(time.Since(start).Seconds())
}

// ObserveLoad records the duration of a gateway Load call.
func (m *Metrics) ObserveLoad(start time.Time) {
	m.LoadDuration.Observe(time.Since(start).Seconds())
}

// ObserveRegenerate records the duration of a gateway Regenerate call.
func (m *Metrics) ObserveRegenerate(start time.Time) {
	m.RegenDuration.Observe(time.Since(start).Seconds())
}
