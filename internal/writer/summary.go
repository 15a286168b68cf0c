package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8")).Width(17)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
)

// WriteSummary prints a human-readable overview of st for the terminal.
func WriteSummary(out io.Writer, st *models.Statement) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render(string(st.Issuer())) + "\n")
	line := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	line("Card", "XXXX "+st.CardLastFour())
	line("Billing cycle", st.BillingCycle().String())
	if due, ok := st.PaymentDueDate(); ok {
		line("Payment due", due.String())
	} else {
		line("Payment due", dimStyle.Render("-"))
	}
	line("Total balance", inr(st.TotalBalance()))
	if minimum, ok := st.MinimumPayment(); ok {
		line("Minimum payment", inr(minimum))
	} else {
		line("Minimum payment", dimStyle.Render("-"))
	}

	txns := st.Transactions()
	b.WriteString(titleStyle.Render(fmt.Sprintf("Recent transactions (%d)", len(txns))) + "\n")
	for _, txn := range txns {
		fmt.Fprintf(&b, "  %s  %-40s %14s\n", txn.Date, txn.Description, inr(txn.Amount))
	}

	_, err := io.WriteString(out, b.String())
	return err
}

// inr formats d as rupees, e.g. ₹45,240.00.
func inr(d decimal.Decimal) string {
	paise := d.Shift(2).Round(0).IntPart()
	return money.New(paise, money.INR).Display()
}
