package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalDateLayout is the single textual form every emitted date takes.
const CanonicalDateLayout = "02/01/2006"

// MaxTransactions caps the recent-transactions sample kept per statement.
const MaxTransactions = 5

// Issuer identifies the bank that produced a statement layout.
type Issuer string

const (
	IssuerAmex  Issuer = "American Express"
	IssuerHDFC  Issuer = "HDFC Bank"
	IssuerICICI Issuer = "ICICI Bank"
	IssuerKotak Issuer = "Kotak Mahindra Bank"
	IssuerSBI   Issuer = "State Bank of India"
)

// Mandatory field names, as they appear in the JSON output.
const (
	FieldIssuer       = "issuer"
	FieldCardLastFour = "cardLastFour"
	FieldBillingCycle = "billingCycle"
	FieldTotalBalance = "totalBalance"
)

// Date is a calendar day without time-of-day or zone.
type Date struct {
	t time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Year() int { return d.t.Year() }
func (d Date) After(o Date) bool {
	return d.t.After(o.t)
}

func (d Date) String() string {
	return d.t.Format(CanonicalDateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// BillingCycle is the statement period, both ends inclusive.
type BillingCycle struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

func (c BillingCycle) String() string {
	return c.Start.String() + " to " + c.End.String()
}

// Transaction is one row of the recent-transactions sample.
// Debits are positive, credits negative.
type Transaction struct {
	Date        Date
	Description string
	Amount      decimal.Decimal
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date        Date        `json:"date"`
		Description string      `json:"description"`
		Amount      json.Number `json:"amount"`
	}{t.Date, t.Description, amountJSON(t.Amount)})
}

// Fields collects extraction results before a Statement is built.
// Nil pointers mean "not found".
type Fields struct {
	Issuer         Issuer
	CardLastFour   string
	BillingCycle   *BillingCycle
	PaymentDueDate *Date
	TotalBalance   *decimal.Decimal
	MinimumPayment *decimal.Decimal
	Transactions   []Transaction
}

// MissingField returns the first unresolved mandatory field, or "".
func (f Fields) MissingField() string {
	switch {
	case f.Issuer == "":
		return FieldIssuer
	case f.CardLastFour == "":
		return FieldCardLastFour
	case f.BillingCycle == nil:
		return FieldBillingCycle
	case f.TotalBalance == nil:
		return FieldTotalBalance
	}
	return ""
}

// Statement is the normalized result of one successful parse.
// It is immutable; read it through its accessors.
type Statement struct {
	issuer         Issuer
	cardLastFour   string
	billingCycle   BillingCycle
	paymentDueDate *Date
	totalBalance   decimal.Decimal
	minimumPayment *decimal.Decimal
	transactions   []Transaction
}

// NewStatement builds a Statement from f. Callers must check
// f.MissingField first; a missing mandatory field panics.
func NewStatement(f Fields) *Statement {
	if missing := f.MissingField(); missing != "" {
		panic(fmt.Sprintf("models: statement built without mandatory field %q", missing))
	}

	txns := f.Transactions
	if len(txns) > MaxTransactions {
		txns = txns[:MaxTransactions]
	}

	s := &Statement{
		issuer:       f.Issuer,
		cardLastFour: f.CardLastFour,
		billingCycle: *f.BillingCycle,
		totalBalance: *f.TotalBalance,
		transactions: append([]Transaction(nil), txns...),
	}
	if f.PaymentDueDate != nil {
		d := *f.PaymentDueDate
		s.paymentDueDate = &d
	}
	if f.MinimumPayment != nil {
		m := *f.MinimumPayment
		s.minimumPayment = &m
	}
	return s
}

func (s *Statement) Issuer() Issuer { return s.issuer }
func (s *Statement) CardLastFour() string { return s.cardLastFour }
func (s *Statement) BillingCycle() BillingCycle { return s.billingCycle }
func (s *Statement) TotalBalance() decimal.Decimal { return s.totalBalance }

// PaymentDueDate is absent for plain account statements.
func (s *Statement) PaymentDueDate() (Date, bool) {
	if s.paymentDueDate == nil {
		return Date{}, false
	}
	return *s.paymentDueDate, true
}

// MinimumPayment is present only for credit-card statements.
func (s *Statement) MinimumPayment() (decimal.Decimal, bool) {
	if s.minimumPayment == nil {
		return decimal.Decimal{}, false
	}
	return *s.minimumPayment, true
}

// Transactions returns a copy of the transaction sample in source order.
func (s *Statement) Transactions() []Transaction {
	return append([]Transaction(nil), s.transactions...)
}

func (s *Statement) MarshalJSON() ([]byte, error) {
	out := struct {
		Issuer         Issuer        `json:"issuer"`
		CardLastFour   string        `json:"cardLastFour"`
		BillingCycle   BillingCycle  `json:"billingCycle"`
		PaymentDueDate *Date         `json:"paymentDueDate"`
		TotalBalance   json.Number   `json:"totalBalance"`
		MinimumPayment *json.Number  `json:"minimumPayment"`
		Transactions   []Transaction `json:"transactions"`
	}{
		Issuer:         s.issuer,
		CardLastFour:   s.cardLastFour,
		BillingCycle:   s.billingCycle,
		PaymentDueDate: s.paymentDueDate,
		TotalBalance:   amountJSON(s.totalBalance),
		Transactions:   s.transactions,
	}
	if s.minimumPayment != nil {
		n := amountJSON(*s.minimumPayment)
		out.MinimumPayment = &n
	}
	// nil marshals to null, not []
	if out.Transactions == nil {
		out.Transactions = []Transaction{}
	}
	return json.Marshal(out)
}

func amountJSON(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
