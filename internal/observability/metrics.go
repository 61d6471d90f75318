package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions  prometheus.Gauge
	SessionEvents   *prometheus.CounterVec
	WSMessages      *prometheus.CounterVec
	ProviderErrors  *prometheus.CounterVec
	ProviderRetries *prometheus.CounterVec
	StageLatency    *prometheus.HistogramVec
	Artifacts       *prometheus.CounterVec

	stages *stageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of connected voice sessions.",
		}),
		SessionEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events by type.",
		}, []string{"event"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Provider calls that failed after retries, by model and kind.",
		}, []string{"model", "kind"}),
		ProviderRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_retries_total",
			Help:      "Provider call retries by model.",
		}, []string{"model"}),
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_latency_ms",
			Help:      "Pipeline stage latency in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 3000, 5000, 8000, 13000, 21000, 34000},
		}, []string{"stage"}),
		Artifacts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_artifacts_total",
			Help:      "Audio artifacts by outcome (stored, served, missed, expired).",
		}, []string{"outcome"}),
		stages: newStageWindow(512),
	}
}

// ObserveStage records one pipeline stage duration in both the histogram and
// the rolling window behind /v1/perf/latency.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	ms := float64(d) / float64(time.Millisecond)
	m.StageLatency.WithLabelValues(stage).Observe(ms)
	m.stages.observe(stage, ms)
}

// ObserveIndicator counts a non-latency turn outcome such as a text-only reply.
func (m *Metrics) ObserveIndicator(name string) {
	if m == nil {
		return
	}
	m.stages.countOutcome(name)
}

func (m *Metrics) ObserveMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) ObserveEvent(event string) {
	if m == nil {
		return
	}
	m.SessionEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveArtifact(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Artifacts.WithLabelValues(outcome).Add(float64(n))
}

// LatencyReport summarises the rolling stage window.
func (m *Metrics) LatencyReport() LatencyReport {
	if m == nil {
		return newStageWindow(0).report()
	}
	return m.stages.report()
}

// ResetLatency clears the rolling stage window between load runs.
func (m *Metrics) ResetLatency() {
	if m == nil {
		return
	}
	m.stages.reset()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
