// Package metrics exports download run results as a Prometheus textfile
// for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Gismakerr/DaChuang/pkg/reconcile"
)

var decisions = []reconcile.Decision{
	reconcile.DecisionSkip,
	reconcile.DecisionRefetch,
	reconcile.DecisionFetch,
	reconcile.DecisionInvalid,
}

// WriteOutcome writes the gauges for one run to path, replacing the previous file.
func WriteOutcome(path, shortName string, o *reconcile.Outcome, at time.Time) error {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	granules := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "swot_granules",
			Help:        "Granules in the last run by reconciliation decision",
			ConstLabels: prometheus.Labels{"short_name": shortName},
		},
		[]string{"decision"},
	)
	fetched := factory.NewGauge(
		prometheus.GaugeOpts{
			Name:        "swot_fetched_total",
			Help:        "Files returned by the last batch fetch",
			ConstLabels: prometheus.Labels{"short_name": shortName},
		},
	)
	requested := factory.NewGauge(
		prometheus.GaugeOpts{
			Name:        "swot_fetch_requested",
			Help:        "Granules handed to the last batch fetch",
			ConstLabels: prometheus.Labels{"short_name": shortName},
		},
	)
	lastRun := factory.NewGauge(
		prometheus.GaugeOpts{
			Name:        "swot_last_run_timestamp_seconds",
			Help:        "Unix time the last run finished",
			ConstLabels: prometheus.Labels{"short_name": shortName},
		},
	)

	for _, d := range decisions {
		granules.WithLabelValues(string(d)).Set(float64(o.Plan.Count(d)))
	}
	fetched.Set(float64(len(o.Fetched)))
	requested.Set(float64(len(o.Plan.ToFetch())))
	lastRun.Set(float64(at.Unix()))

	return prometheus.WriteToTextfile(path, reg)
}
