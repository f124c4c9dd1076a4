package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for ingestion
// and wind resolution.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	ReportsStored    *prometheus.CounterVec // labels: kind={metar,taf}
	TransformErrors  prometheus.Counter
	DeadLetters      prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Resolution metrics.
	WindResolutions   *prometheus.CounterVec // labels: outcome={metar,taf,none,error}
	ResolveDuration   prometheus.Histogram
	TafLastEndTime    *prometheus.GaugeVec // labels: airport
	StoreBreakerState *prometheus.GaugeVec // labels: name; 0=closed 1=half-open 2=open
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "met_update",
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the METAR and TAF topics.",
		}),
		ReportsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "met_update",
			Name:      "reports_stored_total",
			Help:      "Reports inserted into the report store by kind.",
		}, []string{"kind"}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "met_update",
			Name:      "transform_errors_total",
			Help:      "Total messages rejected as unparseable or invalid.",
		}),
		DeadLetters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "met_update",
			Name:      "dead_letters_total",
			Help:      "Total rejected messages published to the dead-letter topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "met_update",
			Name:      "pipeline_running",
			Help:      "1 when the ingestion pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "met_update",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "met_update",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		WindResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "met_update",
			Name:      "wind_resolutions_total",
			Help:      "Wind input resolutions by outcome.",
		}, []string{"outcome"}),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "met_update",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of a wind input resolution including store queries.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),
		TafLastEndTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "met_update",
			Name:      "taf_last_end_timestamp_seconds",
			Help:      "Latest TAF validity end per monitored airport, as a Unix timestamp.",
		}, []string{"airport"}),
		StoreBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "met_update",
			Name:      "store_breaker_state",
			Help:      "Report store circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}, []string{"name"}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.ReportsStored,
		m.TransformErrors,
		m.DeadLetters,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.WindResolutions,
		m.ResolveDuration,
		m.TafLastEndTime,
		m.StoreBreakerState,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "met_update", Name: "messages_consumed_total"}),
		ReportsStored:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "met_update", Name: "reports_stored_total"}, []string{"kind"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "met_update", Name: "transform_errors_total"}),
		DeadLetters:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "met_update", Name: "dead_letters_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "met_update", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "met_update", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "met_update", Name: "batch_processing_duration_seconds"}),
		WindResolutions:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "met_update", Name: "wind_resolutions_total"}, []string{"outcome"}),
		ResolveDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "met_update", Name: "resolve_duration_seconds"}),
		TafLastEndTime:          prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "met_update", Name: "taf_last_end_timestamp_seconds"}, []string{"airport"}),
		StoreBreakerState:       prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "met_update", Name: "store_breaker_state"}, []string{"name"}),
	}
}
