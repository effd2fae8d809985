package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	assessmentsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exporo_assessments_started_total",
			Help: "Total export readiness assessments started",
		},
	)

	assessmentsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exporo_assessments_completed_total",
			Help: "Total assessments completed by record variant",
		},
		[]string{"variant"},
	)

	assessmentsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exporo_assessments_failed_total",
			Help: "Total assessments that did not produce a record",
		},
		[]string{"reason"},
	)

	assessmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exporo_assessment_duration_seconds",
			Help:    "Wall-clock duration of an assessment turn",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	engineCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exporo_engine_calls_total",
			Help: "Reasoning engine invocations by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	engineLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exporo_engine_call_duration_seconds",
			Help:    "Reasoning engine call latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	engineRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exporo_engine_retries_total",
			Help: "Automatic engine retries after a transient failure",
		},
		[]string{"reason"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exporo_engine_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"},
	)

	detectorTriggers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exporo_detector_triggers_total",
			Help: "Utterances that triggered an assessment, by whether a country resolved",
		},
		[]string{"country_resolved"},
	)

	httpPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exporo_http_panics_total",
			Help: "Handler panics recovered by the router, by route",
		},
		[]string{"route"},
	)
)

// IncAssessmentStarted increments the started counter.
func IncAssessmentStarted() {
	assessmentsStarted.Inc()
}

// IncAssessmentCompleted counts a stored record of the given variant.
func IncAssessmentCompleted(variant string) {
	assessmentsCompleted.WithLabelValues(variant).Inc()
}

// IncAssessmentFailed counts an assessment turn that ended without a record.
func IncAssessmentFailed(reason string) {
	assessmentsFailed.WithLabelValues(reason).Inc()
}

// ObserveAssessmentDuration records an assessment duration in seconds.
func ObserveAssessmentDuration(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	assessmentDuration.Observe(seconds)
}

// ObserveEngineCall records one engine attempt.
func ObserveEngineCall(provider, outcome string, seconds float64) {
	engineCalls.WithLabelValues(provider, outcome).Inc()
	if seconds < 0 {
		seconds = 0
	}
	engineLatency.WithLabelValues(provider).Observe(seconds)
}

// IncEngineRetry counts an automatic retry.
func IncEngineRetry(reason string) {
	engineRetries.WithLabelValues(reason).Inc()
}

// IncCacheLookup counts a cache lookup with result hit, miss or error.
func IncCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// IncDetectorTrigger counts a triggered utterance.
func IncDetectorTrigger(countryResolved bool) {
	label := "false"
	if countryResolved {
		label = "true"
	}
	detectorTriggers.WithLabelValues(label).Inc()
}

// IncHTTPPanic counts a recovered handler panic.
func IncHTTPPanic(route string) {
	httpPanics.WithLabelValues(route).Inc()
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
