package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-parser/internal/models"
)

const (
	summarySheet      = "Summary"
	transactionsSheet = "Transactions"

	// numFmtThousands is Excel's built-in "#,##0.00".
	numFmtThousands = 4
)

// XLSXWriter writes a workbook with a Summary sheet and a Transactions
// sheet.
type XLSXWriter struct{}

func (w *XLSXWriter) Write(out io.Writer, st *models.Statement) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return fmt.Errorf("failed to add transactions sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtThousands})
	if err != nil {
		return err
	}

	for i, row := range metadataRows(st) {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &[]any{row[0], row[1]}); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
		if err := f.SetCellStyle(summarySheet, cell, cell, bold); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 24); err != nil {
		return err
	}

	if err := f.SetSheetRow(transactionsSheet, "A1", &[]any{"Date", "Description", "Amount"}); err != nil {
		return fmt.Errorf("failed to write transactions header: %w", err)
	}
	if err := f.SetCellStyle(transactionsSheet, "A1", "C1", bold); err != nil {
		return err
	}
	for i, txn := range st.Transactions() {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{txn.Date.String(), txn.Description, txn.Amount.InexactFloat64()}
		if err := f.SetSheetRow(transactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write transaction row: %w", err)
		}
		amountCell, _ := excelize.CoordinatesToCellName(3, i+2)
		if err := f.SetCellStyle(transactionsSheet, amountCell, amountCell, amountStyle); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(transactionsSheet, "B", "B", 48); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
