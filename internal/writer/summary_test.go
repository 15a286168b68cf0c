package writer

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, testStatement(true)))

	out := buf.String()
	assert.Contains(t, out, "HDFC Bank")
	assert.Contains(t, out, "XXXX 0591")
	assert.Contains(t, out, "08/05/2019 to 08/06/2019")
	assert.Contains(t, out, "45,240.00")
	assert.Contains(t, out, "13,636.00")
	assert.Contains(t, out, "Flipkart Payments BANGALORE")
	assert.Contains(t, out, "Recent transactions (2)")
}

func TestWriteSummaryAbsentOptionals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, testStatement(false)))
	assert.NotContains(t, buf.String(), "13,636.00")
	assert.NotContains(t, buf.String(), "28/06/2019")
}

func TestINR(t *testing.T) {
	assert.Contains(t, inr(decimal.RequireFromString("1234.5")), "1,234.50")
	assert.Contains(t, inr(decimal.RequireFromString("0.005")), "0.01")
}
