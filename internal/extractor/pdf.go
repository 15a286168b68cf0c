package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrNoReadableText means every extraction method produced nothing that
// looks like statement text, typically because the PDF is a scan.
var ErrNoReadableText = errors.New("no readable text could be extracted from PDF")

// columnGap is the horizontal distance, in PDF units, treated as a column
// break when rebuilding rows from positioned text.
const columnGap = 15

// ExtractText returns the text of each page of the PDF at path. The
// ledongthuc/pdf reader is tried first; pdftotext from poppler-utils is
// the fallback. Text that fails the readability check is never returned.
func ExtractText(ctx context.Context, path string) ([]string, error) {
	pages, libErr := extractWithLibrary(ctx, path)
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	popplerPages, popplerErr := extractWithPdftotext(ctx, path)
	if popplerErr == nil && isReadableText(popplerPages) {
		return popplerPages, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if libErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoReadableText, libErr)
	}
	return nil, ErrNoReadableText
}

// textQuality is the share of runes that are plain ASCII statement
// characters. unicode.IsLetter is too broad here: identity-encoded fonts
// decode to accented garbage that it would accept.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if isStatementRune(r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func isStatementRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case unicode.IsSpace(r):
		return true
	}
	return strings.ContainsRune(".,-/:;()'\"₹`$%&@#!?+=*", r)
}

// statementWords appear in virtually every card or account statement.
var statementWords = []string{
	"bank", "card", "account", "balance", "date", "payment", "statement",
	"total", "amount", "due", "credit", "debit", "transaction", "period",
}

func containsStatementWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range statementWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 50 characters, over 60% plain
// characters and at least one statement word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsStatementWords(pages)
}

// extractWithPdftotext runs `pdftotext -layout`, which separates pages
// with form feeds.
func extractWithPdftotext(ctx context.Context, path string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}
	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}
	pages := splitFormFeeds(string(out))
	if len(pages) == 0 {
		return nil, errors.New("pdftotext produced no output")
	}
	return pages, nil
}

// extractWithLibrary tries the reader's extraction paths in order of how
// well they keep row layout.
func extractWithLibrary(ctx context.Context, path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF reader panicked: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, errors.New("PDF has no pages")
	}

	methods := []func(context.Context, *pdf.Reader, int) []string{
		extractByRow,
		extractByContent,
		extractByPagePlainText,
	}
	for _, method := range methods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = method(ctx, r, numPages)
		if isReadableText(pages) {
			return pages, nil
		}
	}

	if text := extractByReaderPlainText(r); isReadableText([]string{text}) {
		return []string{text}, nil
	}
	return pages, nil
}

// extractByRow uses the reader's own row grouping.
func extractByRow(ctx context.Context, r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages && ctx.Err() == nil; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent rebuilds rows from positioned text objects: pieces are
// grouped by rounded Y (top to bottom) and ordered by X within a row.
func extractByContent(ctx context.Context, r *pdf.Reader, numPages int) []string {
	type piece struct {
		x float64
		s string
	}

	var pages []string
	for i := 1; i <= numPages && ctx.Err() == nil; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rows := make(map[int][]piece)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], piece{x: t.X, s: t.S})
		}

		ys := make([]int, 0, len(rows))
		for y := range rows {
			ys = append(ys, y)
		}
		// PDF Y grows upwards.
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			items := rows[y]
			sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

			var sb strings.Builder
			for j, item := range items {
				if j > 0 && item.x-items[j-1].x > columnGap {
					sb.WriteString("  ")
				}
				sb.WriteString(item.s)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByPagePlainText decodes each page with its own font map.
func extractByPagePlainText(ctx context.Context, r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages && ctx.Err() == nil; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
