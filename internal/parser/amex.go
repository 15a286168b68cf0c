package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// AmexExtractor handles American Express (India) card statements.
//
// The membership number is printed as XXXX-XXXXXX-71006; the last four
// come from the five-digit suffix. Period start and transaction dates
// omit the year ("From March 18 to April 17, 2019", "March 20"), which is
// taken from the cycle end.
type AmexExtractor struct {
	layoutExtractor
}

func NewAmexExtractor() *AmexExtractor {
	return &AmexExtractor{newLayoutExtractor(&amexLayout)}
}

var amexLayout = layout{
	issuer:  models.IssuerAmex,
	markers: []string{"American Express", "americanexpress.co.in"},
	card: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Membership|Card)\s+(?:Number|No\.?)\s*:?\s*([Xx*\d]{4}[-\s]*[Xx*\d]{6}[-\s]*\d{5})`),
		regexp.MustCompile(`(?i)(?:Membership|Card)\s+(?:Number|No\.?)\s*:?\s*([0-9Xx*•. \t-]*\d{4})\b`),
	},
	period: []*regexp.Regexp{
		regexp.MustCompile(`(?i)From\s+(?P<start>[A-Za-z]+\s+\d{1,2}(?:,?\s*\d{4})?)\s+to\s+(?P<end>` + longDate + `)`),
		regexp.MustCompile(`(?i)Statement\s+Period\s*:?\s*(?:From\s+)?(?P<start>` + slashDate + `)\s+to\s+(?P<end>` + slashDate + `)`),
	},
	dueDate: []*regexp.Regexp{
		labelledDate(`Payment\s+Due\s+Date`, longDate),
		labelledDate(`\bDue\s+Date`, slashDate),
	},
	total: []*regexp.Regexp{
		labelledAmount(`Closing\s+Balance`),
		labelledAmount(`New\s+Balance`),
		labelledAmount(`Total\s+Amount\s+Due`),
	},
	minimum: []*regexp.Regexp{
		labelledAmount(`Min(?:imum)?\s+Payment\s+Due`),
	},
	dateLayouts: []string{"January 2, 2006", "Jan 2, 2006", "January 2 2006", "Jan 2 2006", "2/1/2006"},
	txns: txnTable{
		header:     regexp.MustCompile(`(?i)^(?:Transaction\s+)?Date\s+Details\s+Amount`),
		terminator: regexp.MustCompile(`(?i)^(?:Total\s|Continued\s+on|Important)`),
		row:        regexp.MustCompile(`^(?P<date>[A-Za-z]{3,9}\s+\d{1,2})\s+(?P<desc>.+?)\s+(?P<amount>[\d,]+\.\d{2}(?:\s*(?:Cr|CR))?)$`),
	},
}
