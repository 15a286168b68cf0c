package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// UnsupportedIssuerError means no registered extractor recognised the text.
type UnsupportedIssuerError struct {
	Supported []models.Issuer
}

func (e *UnsupportedIssuerError) Error() string {
	if len(e.Supported) == 0 {
		return "unrecognized statement format"
	}
	names := make([]string, len(e.Supported))
	for i, s := range e.Supported {
		names[i] = string(s)
	}
	return "unrecognized statement format; supported issuers: " + strings.Join(names, ", ")
}

// IncompleteStatementError names the mandatory field an extractor could
// not resolve after its issuer was detected.
type IncompleteStatementError struct {
	Issuer models.Issuer
	Field  string
}

func (e *IncompleteStatementError) Error() string {
	return fmt.Sprintf("%s statement is missing mandatory field %q", e.Issuer, e.Field)
}

// MalformedInputError means the extracted text was empty or unusable.
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return "malformed statement text: " + e.Reason
}
