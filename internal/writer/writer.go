package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Writer renders a Statement in one output format.
type Writer interface {
	Write(out io.Writer, st *models.Statement) error
}

// ForFormat returns the writer for "csv", "xlsx" or "json".
func ForFormat(format string, includeHeader bool) (Writer, error) {
	switch strings.ToLower(format) {
	case "csv", "":
		return &CSVWriter{IncludeHeader: includeHeader}, nil
	case "xlsx":
		return &XLSXWriter{}, nil
	case "json":
		return &JSONWriter{Indent: "  "}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (want csv, xlsx or json)", format)
	}
}

// WriteFile renders st to a new file at path.
func WriteFile(path string, w Writer, st *models.Statement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := w.Write(f, st); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// JSONWriter emits the Statement's own JSON encoding.
type JSONWriter struct {
	Indent string
}

func (w *JSONWriter) Write(out io.Writer, st *models.Statement) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", w.Indent)
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("failed to encode statement: %w", err)
	}
	return nil
}
