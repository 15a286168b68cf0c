package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Observe("HDFC Bank", OutcomeSuccess, 20*time.Millisecond)
	m.Observe("HDFC Bank", OutcomeSuccess, 30*time.Millisecond)
	m.Observe("", OutcomeUnsupported, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.parses.WithLabelValues("HDFC Bank", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.parses.WithLabelValues(UnknownIssuer, OutcomeUnsupported)))

	expected := `
# HELP statement_parse_total Statements parsed, by issuer and outcome.
# TYPE statement_parse_total counter
statement_parse_total{issuer="HDFC Bank",outcome="success"} 2
statement_parse_total{issuer="unknown",outcome="unsupported"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "statement_parse_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
