package parser

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Extractor recognises and parses one issuer's statement layout.
type Extractor interface {
	// Issuer names the institution this extractor handles.
	Issuer() models.Issuer
	// Detect reports whether text looks like this issuer's statement.
	Detect(text string) bool
	// Parse turns statement text into a Statement, or returns
	// *IncompleteStatementError naming the first missing mandatory field.
	Parse(text string) (*models.Statement, error)
}

// minPrintableRatio is the share of printable runes below which text is
// treated as binary or mis-decoded.
const minPrintableRatio = 0.75

var aliases = map[string]models.Issuer{
	"amex":  models.IssuerAmex,
	"hdfc":  models.IssuerHDFC,
	"icici": models.IssuerICICI,
	"kotak": models.IssuerKotak,
	"sbi":   models.IssuerSBI,
}

// Alias returns the short name Lookup accepts for issuer, or "".
func Alias(issuer models.Issuer) string {
	for alias, i := range aliases {
		if i == issuer {
			return alias
		}
	}
	return ""
}

// New returns a fresh extractor for the given issuer.
func New(issuer models.Issuer) (Extractor, error) {
	switch issuer {
	case models.IssuerAmex:
		return NewAmexExtractor(), nil
	case models.IssuerHDFC:
		return NewHDFCExtractor(), nil
	case models.IssuerICICI:
		return NewICICIExtractor(), nil
	case models.IssuerKotak:
		return NewKotakExtractor(), nil
	case models.IssuerSBI:
		return NewSBIExtractor(), nil
	default:
		return nil, fmt.Errorf("unsupported issuer: %q", issuer)
	}
}

// Registry dispatches statement text to the first extractor that detects
// it. A Registry is never mutated after construction and is safe for
// concurrent use.
type Registry struct {
	extractors []Extractor
	logger     *slog.Logger
}

// NewRegistry returns a registry that consults extractors in the given
// order.
func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: append([]Extractor(nil), extractors...)}
}

// detectionOrder is the order the default registry consults issuers in.
var detectionOrder = []models.Issuer{
	models.IssuerAmex,
	models.IssuerHDFC,
	models.IssuerICICI,
	models.IssuerKotak,
	models.IssuerSBI,
}

// Default returns the process-wide registry: Amex, HDFC, ICICI, Kotak, SBI.
var Default = sync.OnceValue(func() *Registry {
	extractors := make([]Extractor, len(detectionOrder))
	for i, issuer := range detectionOrder {
		e, err := New(issuer)
		if err != nil {
			panic(err)
		}
		extractors[i] = e
	}
	return NewRegistry(extractors...)
})

// WithLogger returns a copy of r that logs to l.
func (r *Registry) WithLogger(l *slog.Logger) *Registry {
	cp := *r
	cp.logger = l
	return &cp
}

func (r *Registry) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Issuers lists the supported issuers in dispatch order.
func (r *Registry) Issuers() []models.Issuer {
	out := make([]models.Issuer, len(r.extractors))
	for i, e := range r.extractors {
		out[i] = e.Issuer()
	}
	return out
}

// Lookup finds the extractor for an issuer name ("HDFC Bank") or short
// alias ("hdfc"), case-insensitively.
func (r *Registry) Lookup(name string) (Extractor, bool) {
	name = strings.TrimSpace(name)
	if issuer, ok := aliases[strings.ToLower(name)]; ok {
		name = string(issuer)
	}
	for _, e := range r.extractors {
		if strings.EqualFold(string(e.Issuer()), name) {
			return e, true
		}
	}
	return nil, false
}

// Identify returns the first registered extractor that detects text.
// When several detect, the first still wins and the overlap is logged.
func (r *Registry) Identify(text string) (Extractor, error) {
	var matched []Extractor
	for _, e := range r.extractors {
		if e.Detect(text) {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return nil, &UnsupportedIssuerError{Supported: r.Issuers()}
	}
	if len(matched) > 1 {
		candidates := make([]string, len(matched))
		for i, e := range matched {
			candidates[i] = string(e.Issuer())
		}
		r.log().Warn("statement matches more than one issuer",
			"chosen", matched[0].Issuer(),
			"candidates", candidates,
		)
	}
	return matched[0], nil
}

// IdentifyAndParse detects the issuer of text and parses it. Extractor
// errors are returned unwrapped.
func (r *Registry) IdentifyAndParse(text string) (*models.Statement, error) {
	if err := checkReadable(text); err != nil {
		return nil, err
	}
	e, err := r.Identify(text)
	if err != nil {
		return nil, err
	}
	return e.Parse(text)
}

// IdentifyAndParsePages joins pages with newlines and parses the result.
func (r *Registry) IdentifyAndParsePages(pages []string) (*models.Statement, error) {
	return r.IdentifyAndParse(strings.Join(pages, "\n"))
}

// ParseAs skips detection and parses text with the named issuer's
// extractor.
func (r *Registry) ParseAs(issuer, text string) (*models.Statement, error) {
	if err := checkReadable(text); err != nil {
		return nil, err
	}
	e, ok := r.Lookup(issuer)
	if !ok {
		return nil, &UnsupportedIssuerError{Supported: r.Issuers()}
	}
	return e.Parse(text)
}

// checkReadable rejects text that is empty or mostly non-printable.
func checkReadable(text string) error {
	if strings.TrimSpace(text) == "" {
		return &MalformedInputError{Reason: "no text"}
	}
	var total, printable, letters int
	for _, r := range text {
		total++
		switch {
		case r == utf8.RuneError:
		case unicode.IsSpace(r) || unicode.IsPrint(r):
			printable++
			if unicode.IsLetter(r) {
				letters++
			}
		}
	}
	if float64(printable)/float64(total) < minPrintableRatio {
		return &MalformedInputError{Reason: "text is mostly non-printable"}
	}
	if letters == 0 {
		return &MalformedInputError{Reason: "text contains no words"}
	}
	return nil
}
