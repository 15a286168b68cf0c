package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// ICICIExtractor handles ICICI Bank credit card statements. Rows carry a
// transaction serial number and, on rewards cards, a points column
// between the description and the amount.
type ICICIExtractor struct {
	layoutExtractor
}

func NewICICIExtractor() *ICICIExtractor {
	return &ICICIExtractor{newLayoutExtractor(&iciciLayout)}
}

var iciciLayout = layout{
	issuer:  models.IssuerICICI,
	markers: []string{"ICICI Bank"},
	card: []*regexp.Regexp{
		regexp.MustCompile(`(?i)Card\s+(?:Number|Account\s+No)\.?\s*:?\s*([0-9Xx*•. \t-]*\d{4})\b`),
	},
	period: []*regexp.Regexp{
		regexp.MustCompile(`(?i)Statement\s+Period\s*:?\s*From\s+(?P<start>` + slashDate + `)\s+to\s+(?P<end>` + slashDate + `)`),
		regexp.MustCompile(`(?i)Statement\s+Period\s*:?\s*(?P<start>` + slashDate + `)\s*(?:to|-)\s*(?P<end>` + slashDate + `)`),
	},
	dueDate: []*regexp.Regexp{
		labelledDate(`Payment\s+Due\s+Date`, slashDate),
		labelledDate(`\bDue\s+Date`, slashDate),
	},
	total: []*regexp.Regexp{
		labelledAmount(`Your\s+Total\s+Amount\s+Due`),
		labelledAmount(`Total\s+Amount\s+Due`),
		labelledAmount(`Total\s+Dues`),
	},
	minimum: []*regexp.Regexp{
		labelledAmount(`Minimum\s+Amount\s+Due`),
	},
	dateLayouts: []string{"2/1/2006", "2-1-2006"},
	txns: txnTable{
		header:     regexp.MustCompile(`(?i)^Date\s+SerNo\.?\s+Transaction\s+Details`),
		terminator: regexp.MustCompile(`(?i)^(?:Total\s|Reward\s+Points\s+Summary|Important|Earnings)`),
		row: regexp.MustCompile(`(?i)^(?P<date>` + slashDate + `)\s+\d{6,}\s+(?P<desc>.+?)(?:\s+\d{1,4})?\s+` +
			"`?" + `(?P<amount>[\d,]+\.\d{2}(?:\s*(?:Cr|Dr))?)$`),
	},
}
