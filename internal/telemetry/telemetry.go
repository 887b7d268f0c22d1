// Package telemetry provides OpenTelemetry instrumentation for the report
// verifier. It exports Prometheus metrics and provides tracing capabilities.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "report-verifier"

// Metrics holds all verifier Prometheus metrics.
type Metrics struct {
	// Verification cascade metrics
	VerificationsTotal   *prometheus.CounterVec
	VerificationDuration *prometheus.HistogramVec

	// Rule engine metrics
	ClassificationsTotal *prometheus.CounterVec

	// Credibility ledger metrics
	CredibilityDeltas *prometheus.HistogramVec
	BlockedReporters  prometheus.Counter

	// Escalation metrics
	EscalationsTotal *prometheus.CounterVec

	// Worker pool metrics
	QueueDepth    prometheus.Gauge
	ActiveWorkers prometheus.Gauge
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}

	m.VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verifier_verifications_total",
		Help: "Total fake-report verifications by deciding tier and verdict",
	}, []string{"tier", "is_fake"})

	m.VerificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "verifier_verification_duration_seconds",
		Help:    "End-to-end time to verify one report",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"tier"})

	m.ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verifier_classifications_total",
		Help: "Total keyword rule classifications by crime category",
	}, []string{"category"})

	m.CredibilityDeltas = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "verifier_credibility_delta",
		Help:    "Signed credibility deltas applied to reporter scores",
		Buckets: []float64{-5, -3, -1, 0, 2, 5, 8, 12, 18, 22, 25},
	}, []string{"direction"})

	m.BlockedReporters = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verifier_blocked_reporters_total",
		Help: "Submissions rejected because the reporter is blocked",
	})

	m.EscalationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verifier_escalations_total",
		Help: "Escalation verdicts by final risk level and override flag",
	}, []string{"risk", "overridden"})

	m.QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "verifier_queue_depth",
		Help: "Current pending reports in the verification work queue",
	})

	m.ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "verifier_active_workers",
		Help: "Currently active verification workers",
	})

	return m
}

// ObserveVerification records one completed verification pass.
func (m *Metrics) ObserveVerification(tier string, isFake bool, d time.Duration) {
	m.VerificationsTotal.WithLabelValues(tier, strconv.FormatBool(isFake)).Inc()
	m.VerificationDuration.WithLabelValues(tier).Observe(d.Seconds())
}

// ObserveClassification records one rule engine verdict.
func (m *Metrics) ObserveClassification(category string) {
	m.ClassificationsTotal.WithLabelValues(category).Inc()
}

// ObserveCredibilityDelta records one ledger adjustment.
func (m *Metrics) ObserveCredibilityDelta(delta int) {
	direction := "penalty"
	if delta < 0 {
		direction = "reward"
	}
	m.CredibilityDeltas.WithLabelValues(direction).Observe(float64(delta))
}

// ObserveEscalation records one escalation verdict.
func (m *Metrics) ObserveEscalation(risk string, overridden bool) {
	m.EscalationsTotal.WithLabelValues(risk, strconv.FormatBool(overridden)).Inc()
}
