// Package metrics exposes Prometheus metrics for the voting engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	// Engine metrics
	SweepsRun       prometheus.Counter
	SweepsSkipped   prometheus.Counter
	SweepDuration   prometheus.Histogram
	RecordsDecayed  prometheus.Counter
	SweepItemErrors prometheus.Counter
	VotesCast       prometheus.Counter
	VotesWithdrawn  prometheus.Counter
	ProposalsPassed prometheus.Counter
	EvaluatorRuns   prometheus.Counter
	ActivityDropped prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		SweepsRun: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "conviction",
			Name:      "sweeps_total",
			Help:      "Number of completed sweep ticks.",
		}),
		SweepsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "conviction",
			Name:      "sweeps_skipped_total",
			Help:      "Ticks skipped because the previous sweep was still running.",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agora",
			Subsystem: "conviction",
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of a full sweep + evaluation tick.",
			Buckets:   prometheus.DefBuckets,
		}),
		RecordsDecayed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "conviction",
			Name:      "records_decayed_total",
			Help:      "Vote records advanced by the sweep.",
		}),
		SweepItemErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "conviction",
			Name:      "sweep_item_errors_total",
			Help:      "Per-record or per-proposal failures skipped by the sweep.",
		}),
		VotesCast: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "conviction",
			Name:      "votes_cast_total",
			Help:      "Successful vote casts.",
		}),
		VotesWithdrawn: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "conviction",
			Name:      "votes_withdrawn_total",
			Help:      "Successful vote withdrawals.",
		}),
		ProposalsPassed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "conviction",
			Name:      "proposals_passed_total",
			Help:      "Proposals promoted to approved by the evaluator.",
		}),
		EvaluatorRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "conviction",
			Name:      "evaluator_runs_total",
			Help:      "Threshold evaluator passes.",
		}),
		ActivityDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agora",
			Subsystem: "conviction",
			Name:      "activity_events_dropped_total",
			Help:      "Activity events that failed to persist (best effort).",
		}),
	}
}

// Handler serves the registry for scraping; mounted on the API mux.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
