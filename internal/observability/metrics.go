package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the Prometheus collectors for one forecast run. The job exits
// after a single run, so collectors live in a private registry that is pushed
// to a Pushgateway instead of being scraped.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec   // labels: outcome={success,failure}
	StageDuration *prometheus.HistogramVec // labels: stage
	StageErrors   *prometheus.CounterVec   // labels: stage, kind
	DocumentBytes prometheus.Gauge
	ReportBytes   prometheus.Gauge
	ForecastDays  prometheus.Gauge
	ArchiveErrors prometheus.Counter
	LastSuccess   prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates all run metrics registered with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo_forecast",
			Name:      "runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meteo_forecast",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo_forecast",
			Name:      "stage_errors_total",
			Help:      "Pipeline stage failures by stage and error kind.",
		}, []string{"stage", "kind"}),
		DocumentBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meteo_forecast",
			Name:      "document_bytes",
			Help:      "Size of the decoded forecast document.",
		}),
		ReportBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meteo_forecast",
			Name:      "report_bytes",
			Help:      "Size of the rendered report before encoding.",
		}),
		ForecastDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meteo_forecast",
			Name:      "forecast_days",
			Help:      "Number of days in the mapped forecast.",
		}),
		ArchiveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteo_forecast",
			Name:      "archive_errors_total",
			Help:      "Reports that could not be published to the archive topic.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meteo_forecast",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful dispatch.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.StageDuration,
		m.StageErrors,
		m.DocumentBytes,
		m.ReportBytes,
		m.ForecastDays,
		m.ArchiveErrors,
		m.LastSuccess,
	)

	return m
}

// Gatherer exposes the run registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Push replaces the metrics of job on the Pushgateway at url.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
