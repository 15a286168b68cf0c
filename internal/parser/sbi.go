package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// SBIExtractor handles State Bank of India account statements. These
// have no payment due date or minimum payment, and the table prints
// debits and credits in separate columns, so each row is signed from the
// running balance.
//
//	Txn Date    Value Date  Description                  Debit     Credit     Balance
//	1 Apr 2019  1 Apr 2019  BY TRANSFER-NEFT ACME PAYROLL            25,000.00  65,000.00
type SBIExtractor struct {
	layoutExtractor
}

func NewSBIExtractor() *SBIExtractor {
	return &SBIExtractor{newLayoutExtractor(&sbiLayout)}
}

var sbiLayout = layout{
	issuer:  models.IssuerSBI,
	markers: []string{"State Bank of India", "SBIN0", "onlinesbi"},
	card: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Account\s+Number|A/c\s*No\.?)\s*:?\s*([Xx*\d]{6,17})\b`),
	},
	period: []*regexp.Regexp{
		regexp.MustCompile(`(?i)Statement\s+from\s+(?P<start>` + spacedDate + `)\s+to\s+(?P<end>` + spacedDate + `)`),
		regexp.MustCompile(`(?i)Statement\s+(?:Period|from)\s*:?\s*(?:from\s+)?(?P<start>` + slashDate + `)\s+to\s+(?P<end>` + slashDate + `)`),
	},
	total: []*regexp.Regexp{
		labelledAmount(`Closing\s+Balance`),
	},
	dateLayouts: []string{"2 Jan 2006", "2-Jan-2006", "2/1/2006"},
	txns: txnTable{
		header:     regexp.MustCompile(`(?i)^Txn\s+Date\s+Value\s+Date`),
		terminator: regexp.MustCompile(`(?i)^(?:Closing\s+Balance|\*\*|Please\s+do\s+not|This\s+is\s+a\s+computer)`),
		row: regexp.MustCompile(`(?i)^(?P<date>` + spacedDate + `)\s+` + spacedDate + `\s+(?P<desc>.+?)\s+` +
			`(?P<amount>[\d,]+\.\d{2})\s+(?P<balance>[\d,]+\.\d{2})(?:\s*(?:Cr|Dr))?$`),
		opening:         labelledAmount(`(?:Balance\s+as\s+on\s+` + spacedDate + `|Opening\s+Balance)`),
		signFromBalance: true,
	},
	balanceTotal: true,
}
