package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// CSVWriter writes the transaction sample as CSV, optionally preceded by
// "# Label,value" metadata rows.
type CSVWriter struct {
	IncludeHeader bool
}

type csvRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
}

func (w *CSVWriter) Write(out io.Writer, st *models.Statement) error {
	cw := csv.NewWriter(out)

	if w.IncludeHeader {
		for _, row := range metadataRows(st) {
			if err := cw.Write([]string{"# " + row[0], row[1]}); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	txns := st.Transactions()
	rows := make([]csvRow, len(txns))
	for i, txn := range txns {
		rows[i] = csvRow{
			Date:        txn.Date.String(),
			Description: txn.Description,
			Amount:      txn.Amount.StringFixed(2),
		}
	}
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// metadataRows lists the statement summary as label/value pairs. Absent
// optional fields are left out.
func metadataRows(st *models.Statement) [][2]string {
	rows := [][2]string{
		{"Issuer", string(st.Issuer())},
		{"Card Last Four", st.CardLastFour()},
		{"Billing Cycle", st.BillingCycle().String()},
	}
	if due, ok := st.PaymentDueDate(); ok {
		rows = append(rows, [2]string{"Payment Due Date", due.String()})
	}
	rows = append(rows, [2]string{"Total Balance", st.TotalBalance().StringFixed(2)})
	if minimum, ok := st.MinimumPayment(); ok {
		rows = append(rows, [2]string{"Minimum Payment", minimum.StringFixed(2)})
	}
	return rows
}
