package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DecodeMetrics is what the pipeline and the signature resolver report into.
type DecodeMetrics interface {
	// outcome is the final pipeline state, e.g. "CodeGenerated", "NoInputData", "Failed"
	IncRun(outcome string)
	IncStageError(stage, kind string)
	// result is one of hit, miss, not_found, error
	IncSignatureLookup(result string)
	ObserveStage(stage string, seconds float64)
}

type DecoderMetrics struct {
	numRuns            *prometheus.CounterVec
	numStageErrors     *prometheus.CounterVec
	numSignatureLookup *prometheus.CounterVec
	stageDuration      *prometheus.HistogramVec
}

const txdNamespace = "txdecode"

func NewDecoderMetrics(reg prometheus.Registerer) *DecoderMetrics {
	return &DecoderMetrics{
		numRuns: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: txdNamespace,
				Name:      "num_runs_total",
				Help:      "The number of decode runs by final state",
			}, []string{"outcome"}),

		numStageErrors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: txdNamespace,
				Name:      "num_stage_errors_total",
				Help:      "The number of failed pipeline stages by stage and error kind",
			}, []string{"stage", "kind"}),

		numSignatureLookup: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: txdNamespace,
				Name:      "num_signature_lookups_total",
				Help:      "The number of selector lookups. A rising miss/hit ratio means the cache is not shared between requests",
			}, []string{"result"}),

		stageDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: txdNamespace,
				Name:      "stage_duration_seconds",
				Help:      "Time spent in each pipeline stage",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			}, []string{"stage"}),
	}
}

func (m *DecoderMetrics) IncRun(outcome string) {
	m.numRuns.WithLabelValues(outcome).Inc()
}

func (m *DecoderMetrics) IncStageError(stage, kind string) {
	m.numStageErrors.WithLabelValues(stage, kind).Inc()
}

func (m *DecoderMetrics) IncSignatureLookup(result string) {
	m.numSignatureLookup.WithLabelValues(result).Inc()
}

func (m *DecoderMetrics) ObserveStage(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

type NoOpMetrics struct{}

func (NoOpMetrics) IncRun(string)                {}
func (NoOpMetrics) IncStageError(string, string) {}
func (NoOpMetrics) IncSignatureLookup(string)    {}
func (NoOpMetrics) ObserveStage(string, float64) {}

// EnsureMetrics returns m, or a no-op implementation when it is nil.
func EnsureMetrics(m DecodeMetrics) DecodeMetrics {
	if m == nil {
		return NoOpMetrics{}
	}
	return m
}
