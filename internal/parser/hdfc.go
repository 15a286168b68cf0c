package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// HDFCExtractor handles HDFC Bank credit card statements.
//
//	Card Number : 4893 77XX XXXX 0591
//	Statement Period 08/05/2019 to 08/06/2019
//	Date        Transaction Description        Amount (in Rs.)
//	23/05/2019  Flipkart Payments BANGALORE    8,249.00
//	02/06/2019  PAYMENT RECEIVED - THANK YOU   20,000.00 Cr
type HDFCExtractor struct {
	layoutExtractor
}

func NewHDFCExtractor() *HDFCExtractor {
	return &HDFCExtractor{newLayoutExtractor(&hdfcLayout)}
}

var hdfcLayout = layout{
	issuer:  models.IssuerHDFC,
	markers: []string{"HDFC Bank", "hdfcbank.com", "HDFC Credit Card"},
	card: []*regexp.Regexp{
		regexp.MustCompile(`(?i)Card\s*(?:No|Number)\.?\s*:?\s*([0-9Xx*•. \t-]*\d{4})\b`),
	},
	period: []*regexp.Regexp{
		regexp.MustCompile(`(?i)Statement\s+(?:Period|for)\s*:?\s*(?:from\s+)?(?P<start>` + slashDate + `)\s*(?:to|-)\s*(?P<end>` + slashDate + `)`),
	},
	dueDate: []*regexp.Regexp{
		labelledDate(`Payment\s+Due\s+Date`, slashDate),
		labelledDate(`\bDue\s+Date`, slashDate),
	},
	total: []*regexp.Regexp{
		labelledAmount(`Total\s+(?:Amount\s+Due|Dues)`),
		labelledAmount(`Current\s+Dues`),
	},
	minimum: []*regexp.Regexp{
		labelledAmount(`Minimum\s+(?:Amount|Payment)\s+Due`),
	},
	dateLayouts: []string{"2/1/2006", "2-1-2006"},
	txns: txnTable{
		header:     regexp.MustCompile(`(?i)^Date\s+Transaction\s+Description`),
		terminator: regexp.MustCompile(`(?i)^(?:Reward\s+Points|Total\s|Important\s+Information)`),
		row:        regexp.MustCompile(`(?i)^(?P<date>` + slashDate + `)\s+(?P<desc>.+?)\s+(?P<amount>[\d,]+\.\d{2}(?:\s*(?:Cr|Dr))?)$`),
	},
}
