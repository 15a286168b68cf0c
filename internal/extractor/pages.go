package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PageBreak separates pages in text submitted by clients that extracted
// the PDF themselves.
const PageBreak = "---PAGE_BREAK---"

// LoadPages returns the pages of a statement file: PDFs go through
// ExtractText, .txt files (pdftotext output) are split on form feeds.
func LoadPages(ctx context.Context, path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return ExtractText(ctx, path)
	case ".txt", ".text":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return splitFormFeeds(string(b)), nil
	default:
		return nil, fmt.Errorf("unsupported file type %q: expected .pdf or .txt", filepath.Ext(path))
	}
}

// SplitPages splits client-supplied text on PageBreak, dropping empty pages.
func SplitPages(text string) []string {
	return nonEmpty(strings.Split(text, PageBreak))
}

func splitFormFeeds(text string) []string {
	return nonEmpty(strings.Split(text, "\f"))
}

func nonEmpty(parts []string) []string {
	var pages []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	return pages
}
