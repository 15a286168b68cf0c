package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Parse outcomes, used as the "outcome" label.
const (
	OutcomeSuccess     = "success"
	OutcomeUnsupported = "unsupported"
	OutcomeIncomplete  = "incomplete"
	OutcomeMalformed   = "malformed"
	OutcomeError       = "error"
)

// UnknownIssuer labels parses that failed before an issuer was known.
const UnknownIssuer = "unknown"

// Metrics records statement parses at the service boundary.
type Metrics struct {
	parses   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the parse metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		parses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "statement_parse_total",
			Help: "Statements parsed, by issuer and outcome.",
		}, []string{"issuer", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statement_parse_duration_seconds",
			Help:    "Time spent extracting and parsing one statement.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
	}
}

// Observe records one parse.
func (m *Metrics) Observe(issuer, outcome string, elapsed time.Duration) {
	if issuer == "" {
		issuer = UnknownIssuer
	}
	m.parses.WithLabelValues(issuer, outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
