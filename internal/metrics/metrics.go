// Package metrics holds the Prometheus instruments of the verification API.
package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// MetricsNamespace prefixes every metric name.
	MetricsNamespace = "ogp"

	OutcomeValid    = "valid"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics are the verification counters and timings.
type Metrics struct {
	VerificationsTotal          *prometheus.CounterVec
	VerificationDurationSeconds prometheus.Histogram
	RateLimitedTotal            prometheus.Counter
	EventsPublishFailuresTotal  prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the instruments on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the instruments on reg and serves gatherer.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		VerificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "verifications_total",
				Help:      "Verification requests by outcome",
			},
			[]string{"outcome"},
		),
		VerificationDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Name:      "verification_duration_seconds",
				Help:      "Time spent fetching and verifying a page",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
		EventsPublishFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "events_publish_failures_total",
				Help:      "Verification events that could not be published",
			},
		),
		gatherer: gatherer,
	}
}

// ObserveVerification records one finished verification.
func (m *Metrics) ObserveVerification(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.VerificationsTotal.WithLabelValues(outcome).Inc()
	m.VerificationDurationSeconds.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RateLimitObserver counts responses with status 429.
func (m *Metrics) RateLimitObserver() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() == http.StatusTooManyRequests {
			m.RateLimitedTotal.Inc()
		}
	}
}
