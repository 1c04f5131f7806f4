// Package metrics provides Prometheus metrics for the pipeline: dataset
// volumes, training timings, and tuning outcomes. The pipeline is a batch
// job, so the metrics endpoint is optional and off by default; the counters
// still feed the run report either way.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	RowsLoaded  prometheus.Gauge // Rows loaded from the source collection
	RowsDropped prometheus.Gauge // Rows dropped for null household income

	TrainingDuration prometheus.Histogram // Duration of classifier fits in seconds
	CVEvaluations    prometheus.Counter   // Total fold evaluations performed by the tuner
	BestCVAccuracy   prometheus.Gauge     // Best cross-validated accuracy found
	TestAccuracy     prometheus.Gauge     // Accuracy of the tuned model on the test split

	PlotErrors prometheus.Counter // Diagnostic plot failures (non-fatal)
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for tests).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		RowsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dataset_rows_loaded",
			Help: "Rows loaded from the source collection",
		}),
		RowsDropped: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dataset_rows_dropped",
			Help: "Rows dropped for null household income",
		}),
		TrainingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of classifier fits in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		CVEvaluations: factory.NewCounter(prometheus.CounterOpts{
			Name: "cv_evaluations_total",
			Help: "Total fold evaluations performed by the tuner",
		}),
		BestCVAccuracy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "best_cv_accuracy",
			Help: "Best cross-validated accuracy found by the grid search",
		}),
		TestAccuracy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "test_accuracy",
			Help: "Accuracy of the tuned model on the held-out test split",
		}),
		PlotErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "plot_errors_total",
			Help: "Diagnostic plot failures",
		}),
	}
}

// CVEvaluationsInc satisfies tune.MetricsInterface.
func (m *Metrics) CVEvaluationsInc() { m.CVEvaluations.Inc() }

// BestCVAccuracySet satisfies tune.MetricsInterface.
func (m *Metrics) BestCVAccuracySet(v float64) { m.BestCVAccuracy.Set(v) }

// ObserveTraining records a classifier fit duration.
func (m *Metrics) ObserveTraining(d time.Duration) { m.TrainingDuration.Observe(d.Seconds()) }
