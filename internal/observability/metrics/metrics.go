// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "frontoffice_voice"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Pipeline metrics
	PipelineTotal    prometheus.Counter
	PipelineActive   prometheus.Gauge
	PipelineSuccess  prometheus.Counter
	PipelineFailed   *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
	StageLatency     *prometheus.HistogramVec
	StageErrors      *prometheus.CounterVec

	// Classification metrics
	IntentsClassified *prometheus.CounterVec
	HandoffsFlagged   prometheus.Counter

	// Redaction metrics
	RedactionMatches prometheus.Counter

	// Synthesis metrics
	SynthesisFallbacks prometheus.Counter

	// Provider metrics
	ProviderReady  *prometheus.GaugeVec
	ProviderProbes *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		PipelineTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_requests_total",
			Help:      "Total number of pipeline runs started",
		}),
		PipelineActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_requests_active",
			Help:      "Number of pipeline runs currently in flight",
		}),
		PipelineSuccess: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_success_total",
			Help:      "Total number of pipeline runs completed, degraded runs included",
		}),
		PipelineFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_failed_total",
			Help:      "Total number of pipeline runs aborted, by failed stage",
		}, []string{"stage"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end pipeline duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_seconds",
			Help:      "Per-stage processing latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15, 30},
		}, []string{"stage"}),
		StageErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Total number of stage failures",
		}, []string{"stage", "error_type"}),

		IntentsClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_classified_total",
			Help:      "Total number of classifications, by intent",
		}, []string{"intent"}),
		HandoffsFlagged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoffs_flagged_total",
			Help:      "Total number of results with a human-handoff recommendation",
		}),

		RedactionMatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redaction_matches_total",
			Help:      "Total number of PII patterns masked",
		}),

		SynthesisFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_fallbacks_total",
			Help:      "Total number of responses served with fallback silent audio",
		}),

		ProviderReady: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_ready",
			Help:      "Provider readiness per role (1 ready, 0 not ready)",
		}, []string{"role"}),
		ProviderProbes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_probes_total",
			Help:      "Total number of health probes, by role and outcome",
		}, []string{"role", "outcome"}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests, by route and status code",
		}, []string{"route", "code"}),
		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
		}, []string{"route"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordPipelineStart records a new pipeline run starting.
func (m *Metrics) RecordPipelineStart() {
	m.PipelineTotal.Inc()
	m.PipelineActive.Inc()
}

// RecordPipelineEnd records a pipeline run finishing. failedStage is empty
// for completed runs (including degraded ones).
func (m *Metrics) RecordPipelineEnd(failedStage string, durationSeconds float64) {
	m.PipelineActive.Dec()
	m.PipelineDuration.Observe(durationSeconds)
	if failedStage == "" {
		m.PipelineSuccess.Inc()
	} else {
		m.PipelineFailed.WithLabelValues(failedStage).Inc()
	}
}

// RecordStage records one stage's latency.
func (m *Metrics) RecordStage(stage string, seconds float64) {
	m.StageLatency.WithLabelValues(stage).Observe(seconds)
}

// RecordStageError records a stage failure.
func (m *Metrics) RecordStageError(stage, errorType string) {
	m.StageErrors.WithLabelValues(stage, errorType).Inc()
}

// RecordIntent records a classification outcome.
func (m *Metrics) RecordIntent(intent string, handoff bool) {
	m.IntentsClassified.WithLabelValues(intent).Inc()
	if handoff {
		m.HandoffsFlagged.Inc()
	}
}

// RecordRedactions records PII patterns masked during one request.
func (m *Metrics) RecordRedactions(count int) {
	if count > 0 {
		m.RedactionMatches.Add(float64(count))
	}
}

// RecordSynthesisFallback records a degraded response with silent audio.
func (m *Metrics) RecordSynthesisFallback() {
	m.SynthesisFallbacks.Inc()
}

// RecordProviderProbe records a health probe outcome and updates the
// readiness gauge.
func (m *Metrics) RecordProviderProbe(role string, ready bool) {
	outcome := "ready"
	value := 1.0
	if !ready {
		outcome = "not_ready"
		value = 0
	}
	m.ProviderProbes.WithLabelValues(role, outcome).Inc()
	m.ProviderReady.WithLabelValues(role).Set(value)
}

// RecordHTTPRequest records one HTTP request.
func (m *Metrics) RecordHTTPRequest(route, code string, seconds float64) {
	m.HTTPRequests.WithLabelValues(route, code).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(seconds)
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
