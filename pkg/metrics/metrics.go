// Package metrics exposes prometheus collectors for shedmon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shedmon"

// Outcomes of a reconciliation run
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Snapshot operations
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Reconciliation holds the collectors of the reconciliation engine
type Reconciliation struct {
	Runs         *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	Revisions    *prometheus.CounterVec
	Comparisons  *prometheus.CounterVec
	Snapshots    *prometheus.CounterVec
	InvalidFiles prometheus.Counter
	InFlight     prometheus.Gauge
}

// NewReconciliation creates and registers reconciliation metrics.
//
// A nil registerer gives collectors which are not registered anywhere.
func NewReconciliation(reg prometheus.Registerer) *Reconciliation {
	factory := promauto.With(reg)

	return &Reconciliation{
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconciliations_total",
				Help:      "Total number of repository reconciliations",
			},
			[]string{"outcome"},
		),

		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reconciliation_duration_seconds",
				Help:      "Duration of repository reconciliations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),

		Revisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "revisions_total",
				Help:      "Total number of revisions walked, by result",
			},
			[]string{"result"},
		),

		Comparisons: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comparisons_total",
				Help:      "Total number of metadata comparisons, by outcome",
			},
			[]string{"comparison"},
		),

		Snapshots: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_writes_total",
				Help:      "Total number of snapshot writes, by operation",
			},
			[]string{"op"},
		),

		InvalidFiles: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalid_files_total",
				Help:      "Total number of invalid files reported while extracting metadata",
			},
		),

		InFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reconciliations_in_flight",
				Help:      "Number of reconciliations currently running",
			},
		),
	}
}

// Handler serves the metrics gathered by some registry
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
