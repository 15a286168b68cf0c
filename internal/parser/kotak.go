package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// spendsArea is the category column Kotak prints before the amount.
const spendsArea = `(?:Food|Shopping|Travel|Fuel|Entertainment|Utilities|Dining|Groceries|Medical|Apparel|Electronics|Others)`

// KotakExtractor handles Kotak Mahindra Bank credit card statements.
type KotakExtractor struct {
	layoutExtractor
}

func NewKotakExtractor() *KotakExtractor {
	return &KotakExtractor{newLayoutExtractor(&kotakLayout)}
}

var kotakLayout = layout{
	issuer:  models.IssuerKotak,
	markers: []string{"Kotak Mahindra Bank", "kotak.com"},
	card: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Primary\s+)?Card\s*(?:No|Number)\.?\s*:?\s*([0-9Xx*•. \t-]*\d{4})\b`),
	},
	period: []*regexp.Regexp{
		regexp.MustCompile(`(?i)Statement\s+Period\s*:?\s*(?P<start>` + dashDate + `)\s+(?:to|-)\s+(?P<end>` + dashDate + `)`),
		regexp.MustCompile(`(?i)Statement\s+Period\s*:?\s*(?P<start>` + slashDate + `)\s+(?:to|-)\s+(?P<end>` + slashDate + `)`),
	},
	dueDate: []*regexp.Regexp{
		labelledDate(`Payment\s+Due\s+Date`, dashDate),
		labelledDate(`Payment\s+Due\s+Date`, slashDate),
		labelledDate(`\bDue\s+Date`, dashDate),
	},
	total: []*regexp.Regexp{
		labelledAmount(`Total\s+Amount\s+Due`),
		labelledAmount(`Total\s+Dues`),
	},
	minimum: []*regexp.Regexp{
		labelledAmount(`Minimum\s+Amount\s+Due`),
	},
	dateLayouts: []string{"2-Jan-2006", "2/1/2006"},
	txns: txnTable{
		header:     regexp.MustCompile(`(?i)^Date\s+Transaction\s+Details`),
		terminator: regexp.MustCompile(`(?i)^(?:Total\s|Reward|Important|Summary\s+of)`),
		row: regexp.MustCompile(`^(?P<date>` + slashDate + `)\s+(?P<desc>.+?)\s+(?:` + spendsArea + `\s+)?` +
			`(?P<amount>[\d,]+\.\d{2}(?:\s*(?:Cr|CR|Dr|DR))?)$`),
	},
}
