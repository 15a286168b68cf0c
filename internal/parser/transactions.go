package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// minDescriptionLen drops rows whose description is an extraction fragment.
const minDescriptionLen = 3

// txnTable describes where an issuer's transaction table sits and how its
// rows look.
type txnTable struct {
	header     *regexp.Regexp
	terminator *regexp.Regexp
	// row must define the named groups date, desc and amount, and may
	// define balance.
	row *regexp.Regexp
	// opening captures the balance the first row moves away from.
	opening *regexp.Regexp
	// signFromBalance signs rows by the running-balance movement, for
	// tables that print debits and credits as bare amounts.
	signFromBalance bool
}

// rows calls fn with the submatches of each table row, in order, until fn
// returns false. Scanning starts after the header line, or at the top of
// the text when no header is found. The terminator only applies once the
// table has started, so summary lines above an unheaded table do not end
// it early.
func (t txnTable) rows(text string, fn func(m []string) bool) {
	if t.row == nil {
		return
	}
	lines := strings.Split(text, "\n")

	start, inTable := 0, false
	if t.header != nil {
		for i, raw := range lines {
			if t.header.MatchString(normalizeLine(raw)) {
				start, inTable = i+1, true
				break
			}
		}
	}

	for _, raw := range lines[start:] {
		line := normalizeLine(raw)
		if line == "" {
			continue
		}
		if inTable && t.terminator != nil && t.terminator.MatchString(line) {
			return
		}
		m := t.row.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		inTable = true
		if !fn(m) {
			return
		}
	}
}

// scan collects up to models.MaxTransactions rows.
func (t txnTable) scan(text string, layouts []string, cycleEnd *models.Date) []models.Transaction {
	var prevBal *decimal.Decimal
	if t.signFromBalance && t.opening != nil {
		if bal, ok := firstAmount(text, []*regexp.Regexp{t.opening}); ok {
			prevBal = &bal
		}
	}

	var txns []models.Transaction
	t.rows(text, func(m []string) bool {
		date, ok := rowDate(namedGroup(t.row, m, "date"), layouts, cycleEnd)
		if !ok {
			return true
		}
		amt, ok := NormalizeAmount(namedGroup(t.row, m, "amount"))
		if !ok {
			return true
		}
		desc := cleanDescription(namedGroup(t.row, m, "desc"))
		if len(desc) < minDescriptionLen {
			return true
		}

		if t.signFromBalance {
			bal, hasBal := NormalizeAmount(namedGroup(t.row, m, "balance"))
			amt = signByBalance(amt.Abs(), bal, hasBal, prevBal, desc)
			if hasBal {
				prevBal = &bal
			}
		}

		txns = append(txns, models.Transaction{Date: date, Description: desc, Amount: amt})
		return len(txns) < models.MaxTransactions
	})
	return txns
}

// closingBalance returns the running balance on the table's last row.
func (t txnTable) closingBalance(text string) (decimal.Decimal, bool) {
	var last decimal.Decimal
	found := false
	t.rows(text, func(m []string) bool {
		if bal, ok := NormalizeAmount(namedGroup(t.row, m, "balance")); ok {
			last, found = bal, true
		}
		return true
	})
	return last, found
}

// rowDate normalises a row date, completing it with the cycle-end year
// when the table prints day and month only.
func rowDate(raw string, layouts []string, cycleEnd *models.Date) (models.Date, bool) {
	if d, ok := NormalizeDate(raw, layouts); ok {
		return d, true
	}
	if cycleEnd == nil {
		return models.Date{}, false
	}
	return dateWithInferredYear(raw, layouts, *cycleEnd)
}

// signByBalance returns amt as a debit (positive) or credit (negative).
// The balance movement from prev decides when it reconciles exactly;
// otherwise the narration does.
func signByBalance(amt, bal decimal.Decimal, hasBal bool, prev *decimal.Decimal, desc string) decimal.Decimal {
	if hasBal && prev != nil {
		debit := prev.Sub(amt).Equal(bal)
		credit := prev.Add(amt).Equal(bal)
		switch {
		case debit && !credit:
			return amt
		case credit && !debit:
			return amt.Neg()
		}
	}
	if isCreditNarration(desc) {
		return amt.Neg()
	}
	return amt
}

var creditKeywords = []string{"credit", "deposit", "refund", "reversal", "interest", "salary"}

func isCreditNarration(desc string) bool {
	lower := strings.ToLower(desc)
	if strings.HasPrefix(lower, "by ") {
		return true
	}
	if strings.HasPrefix(lower, "to ") || strings.Contains(lower, "debit") {
		return false
	}
	for _, kw := range creditKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
