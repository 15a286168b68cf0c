package writer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-parser/internal/models"
)

func day(s string) models.Date {
	t, err := time.Parse(models.CanonicalDateLayout, s)
	if err != nil {
		panic(err)
	}
	return models.NewDate(t)
}

func testStatement(withOptionals bool) *models.Statement {
	total := decimal.RequireFromString("45240.00")
	f := models.Fields{
		Issuer:       models.IssuerHDFC,
		CardLastFour: "0591",
		BillingCycle: &models.BillingCycle{Start: day("08/05/2019"), End: day("08/06/2019")},
		TotalBalance: &total,
		Transactions: []models.Transaction{
			{Date: day("23/05/2019"), Description: "Flipkart Payments BANGALORE", Amount: decimal.RequireFromString("8249")},
			{Date: day("28/05/2019"), Description: "PAYMENT RECEIVED, THANK YOU", Amount: decimal.RequireFromString("-20000")},
		},
	}
	if withOptionals {
		due := day("28/06/2019")
		minimum := decimal.RequireFromString("13636")
		f.PaymentDueDate = &due
		f.MinimumPayment = &minimum
	}
	return models.NewStatement(f)
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	require.NoError(t, w.Write(&buf, testStatement(true)))

	want := "# Issuer,HDFC Bank\n" +
		"# Card Last Four,0591\n" +
		"# Billing Cycle,08/05/2019 to 08/06/2019\n" +
		"# Payment Due Date,28/06/2019\n" +
		"# Total Balance,45240.00\n" +
		"# Minimum Payment,13636.00\n" +
		"Date,Description,Amount\n" +
		"23/05/2019,Flipkart Payments BANGALORE,8249.00\n" +
		"28/05/2019,\"PAYMENT RECEIVED, THANK YOU\",-20000.00\n"
	assert.Equal(t, want, buf.String())
}

func TestCSVWriter_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	require.NoError(t, w.Write(&buf, testStatement(true)))

	output := buf.String()
	if strings.Contains(output, "# Issuer") {
		t.Error("should not contain metadata when IncludeHeader is false")
	}
	if !strings.HasPrefix(output, "Date,Description,Amount\n") {
		t.Errorf("expected column headers first, got %q", output)
	}
}

func TestCSVWriter_OmitsAbsentOptionals(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	require.NoError(t, w.Write(&buf, testStatement(false)))

	assert.NotContains(t, buf.String(), "# Payment Due Date")
	assert.NotContains(t, buf.String(), "# Minimum Payment")
	assert.Contains(t, buf.String(), "# Total Balance,45240.00")
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"csv", "CSV", "", "xlsx", "json"} {
		w, err := ForFormat(format, true)
		require.NoError(t, err, format)
		assert.NotNil(t, w)
	}
	_, err := ForFormat("pdf", false)
	assert.Error(t, err)
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONWriter{}).Write(&buf, testStatement(false)))
	assert.Contains(t, buf.String(), `"paymentDueDate":null`)
	assert.Contains(t, buf.String(), `"amount":8249.00`)
}
