package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// currencyPrefix matches the rupee markers found in front of amounts.
// ICICI's statement font renders ₹ as a backtick.
const currencyPrefix = "(?:Rs\\.?|INR|₹|`)?\\s*"

// amountToken matches a locale-formatted amount, Indian grouping included.
const amountToken = `[\d,]+(?:\.\d{1,2})?`

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	commaSpacing  = regexp.MustCompile(`\s*,\s*`)
	nonDigit      = regexp.MustCompile(`\D`)

	// Trailing credit/debit markers: "1,234.00 Cr", "1,234.00CR", "1,234.00 Dr".
	creditSuffix = regexp.MustCompile(`(?i)\s*cr\.?$`)
	debitSuffix  = regexp.MustCompile(`(?i)\s*dr\.?$`)

	currencyMarkers = []string{"INR", "Rs.", "Rs", "\u20b9", "`", "\u00a0", " "}
)

// ExtractLastFour finds the masked number captured by the first group of
// context and returns its final four digits. Masking characters and
// separators are ignored.
func ExtractLastFour(text string, context *regexp.Regexp) (string, bool) {
	if context == nil {
		return "", false
	}
	m := context.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	digits := nonDigit.ReplaceAllString(m[1], "")
	if len(digits) < 4 {
		return "", false
	}
	return digits[len(digits)-4:], true
}

// NormalizeDate parses raw with the first matching layout. Layout order
// decides how ambiguous strings resolve, so each issuer supplies its own.
func NormalizeDate(raw string, layouts []string) (models.Date, bool) {
	raw = strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))
	raw = commaSpacing.ReplaceAllString(raw, ", ")
	if raw == "" {
		return models.Date{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return models.NewDate(t), true
		}
	}
	return models.Date{}, false
}

// NormalizeAmount converts "45,240.00", "Rs. 1,50,000", "(1,234.56)" or
// "500.00 Cr" to a decimal. Parentheses, a leading minus and a Cr suffix
// make the value negative; a Dr suffix keeps it positive.
func NormalizeAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	negative := false

	if creditSuffix.MatchString(s) {
		s = creditSuffix.ReplaceAllString(s, "")
		negative = true
	} else if debitSuffix.MatchString(s) {
		s = debitSuffix.ReplaceAllString(s, "")
	}

	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
		negative = !negative
	}

	for _, marker := range currencyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.ReplaceAll(s, ",", "")

	if strings.HasPrefix(s, "-") {
		s = s[1:]
		negative = !negative
	}
	if s == "" || strings.ContainsAny(s, "+-") {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

func firstLastFour(text string, patterns []*regexp.Regexp) (string, bool) {
	for _, p := range patterns {
		if v, ok := ExtractLastFour(text, p); ok {
			return v, true
		}
	}
	return "", false
}

func firstDate(text string, patterns []*regexp.Regexp, layouts []string) (models.Date, bool) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if d, ok := NormalizeDate(m[1], layouts); ok {
			return d, true
		}
	}
	return models.Date{}, false
}

func firstAmount(text string, patterns []*regexp.Regexp) (decimal.Decimal, bool) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if d, ok := NormalizeAmount(m[1]); ok {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

// namedGroup returns the submatch for name, or "".
func namedGroup(re *regexp.Regexp, m []string, name string) string {
	if i := re.SubexpIndex(name); i > 0 && i < len(m) {
		return strings.TrimSpace(m[i])
	}
	return ""
}

// cleanDescription collapses whitespace and drops trailing filler.
func cleanDescription(desc string) string {
	desc = whitespaceRun.ReplaceAllString(desc, " ")
	desc = strings.TrimRight(desc, "*- ")
	return strings.TrimSpace(desc)
}

// normalizeLine cleans common PDF extraction artifacts.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200b", "")
	line = strings.ReplaceAll(line, "\u00a0", " ")
	line = strings.ReplaceAll(line, "\t", " ")
	return strings.TrimSpace(line)
}
