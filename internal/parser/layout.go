package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Date tokens shared by the issuer pattern tables.
const (
	slashDate  = `\d{1,2}/\d{1,2}/\d{4}`
	dashDate   = `\d{1,2}-[A-Za-z]{3}-\d{4}`
	spacedDate = `\d{1,2}\s+[A-Za-z]{3}\s+\d{4}`
	longDate   = `[A-Za-z]+\s+\d{1,2},?\s*\d{4}`
)

// firstRowLine finds the first line that opens with a transaction date in
// any supported layout. Everything above it is the statement header.
var firstRowLine = regexp.MustCompile(`(?im)^[ \t]*(?:` + slashDate + `|` + dashDate + `|` + spacedDate +
	`|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[ \t]+\d{1,2}\b)[ \t]`)

// headerArea returns the text above the first transaction row, or all of
// text when it has none. Other banks named in narrations fall below it.
func headerArea(text string) string {
	if loc := firstRowLine.FindStringIndex(text); loc != nil {
		return text[:loc[0]]
	}
	return text
}

// layout is one issuer's statement format expressed as data. Fixing
// layout drift should only ever mean editing one of these tables.
type layout struct {
	issuer models.Issuer
	// markers are matched case-insensitively in the header area.
	markers []string

	card    []*regexp.Regexp // group 1: masked card or account number
	period  []*regexp.Regexp // named groups: start, end
	dueDate []*regexp.Regexp // group 1
	total   []*regexp.Regexp // group 1
	minimum []*regexp.Regexp // group 1

	// dateLayouts are tried in order for every date on the statement.
	dateLayouts []string
	txns        txnTable

	// balanceTotal falls back to the last running balance in the
	// transaction table when no total line is printed.
	balanceTotal bool
}

// labelledAmount builds `<label> [(Rs.)] [:] [Rs.] 1,234.56 [Cr]`.
func labelledAmount(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + label + `\s*(?:\(Rs\.?\))?\s*:?\s*` + currencyPrefix +
		`(` + amountToken + `(?:[ \t]*(?:cr|dr)\b)?)`)
}

// labelledDate builds `<label> [:] <date>`.
func labelledDate(label, date string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + label + `\s*:?\s*(` + date + `)`)
}

// layoutExtractor implements Extractor over a layout table. The issuer
// types embed it.
type layoutExtractor struct {
	layout *layout
	// ahocorasick.Matcher keeps per-search counters, so each Detect
	// borrows its own matcher.
	matchers *sync.Pool
}

func newLayoutExtractor(l *layout) layoutExtractor {
	markers := make([]string, len(l.markers))
	for i, m := range l.markers {
		markers[i] = strings.ToLower(m)
	}
	return layoutExtractor{
		layout: l,
		matchers: &sync.Pool{New: func() any {
			return ahocorasick.NewStringMatcher(markers)
		}},
	}
}

func (e layoutExtractor) Issuer() models.Issuer {
	return e.layout.issuer
}

// Detect reports whether any issuer marker appears above the first
// transaction row.
func (e layoutExtractor) Detect(text string) bool {
	m := e.matchers.Get().(*ahocorasick.Matcher)
	defer e.matchers.Put(m)
	return len(m.Match([]byte(strings.ToLower(headerArea(text))))) > 0
}

// Parse runs every field extraction independently, then fails on the
// first mandatory field that could not be resolved.
func (e layoutExtractor) Parse(text string) (*models.Statement, error) {
	l := e.layout
	f := models.Fields{Issuer: l.issuer}

	if v, ok := firstLastFour(text, l.card); ok {
		f.CardLastFour = v
	}
	if c, ok := l.billingCycle(text); ok {
		f.BillingCycle = &c
	}
	if d, ok := firstDate(text, l.dueDate, l.dateLayouts); ok {
		f.PaymentDueDate = &d
	} else if len(l.dueDate) > 0 {
		slog.Debug("optional field not found", "issuer", l.issuer, "field", "paymentDueDate")
	}
	total, ok := firstAmount(text, l.total)
	if !ok && l.balanceTotal {
		total, ok = l.txns.closingBalance(text)
	}
	if ok {
		total = total.Abs()
		f.TotalBalance = &total
	}
	if a, ok := firstAmount(text, l.minimum); ok {
		a = a.Abs()
		f.MinimumPayment = &a
	} else if len(l.minimum) > 0 {
		slog.Debug("optional field not found", "issuer", l.issuer, "field", "minimumPayment")
	}

	var cycleEnd *models.Date
	if f.BillingCycle != nil {
		cycleEnd = &f.BillingCycle.End
	}
	f.Transactions = l.txns.scan(text, l.dateLayouts, cycleEnd)

	if missing := f.MissingField(); missing != "" {
		return nil, &IncompleteStatementError{Issuer: l.issuer, Field: missing}
	}
	return models.NewStatement(f), nil
}

// billingCycle returns the first period whose ends both normalise and are
// in order. A start date printed without a year takes the end's year.
func (l *layout) billingCycle(text string) (models.BillingCycle, bool) {
	for _, p := range l.period {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		end, ok := NormalizeDate(namedGroup(p, m, "end"), l.dateLayouts)
		if !ok {
			continue
		}
		rawStart := namedGroup(p, m, "start")
		start, ok := NormalizeDate(rawStart, l.dateLayouts)
		if !ok {
			start, ok = dateWithInferredYear(rawStart, l.dateLayouts, end)
		}
		if !ok || start.After(end) {
			continue
		}
		return models.BillingCycle{Start: start, End: end}, true
	}
	return models.BillingCycle{}, false
}

// dateWithInferredYear completes a yearless date ("March 20", "18 Mar")
// with the year of ref, stepping back a year when that lands after ref.
func dateWithInferredYear(raw string, layouts []string, ref models.Date) (models.Date, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Date{}, false
	}
	year := ref.Year()
	d, ok := NormalizeDate(raw+" "+strconv.Itoa(year), layouts)
	if !ok {
		return models.Date{}, false
	}
	if d.After(ref) {
		return NormalizeDate(raw+" "+strconv.Itoa(year-1), layouts)
	}
	return d, true
}

