package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-parser/internal/extractor"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/writer"
)

// stdoutPath sends the rendered statement to stdout instead of a file.
const stdoutPath = "-"

type parseOptions struct {
	issuer      string
	output      string
	format      string
	header      bool
	concurrency int
	quiet       bool
}

func newParseCmd(app *cliApp) *cobra.Command {
	opts := parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: "Parse statement PDFs or extracted text files",
		Long: `Parse one or more statements and write the extracted details as CSV,
XLSX or JSON. Each input is written next to itself with the format's
extension unless --output is given. Text inputs (.txt) may separate pages
with form feeds.`,
		Example: `  statement-parser parse statement.pdf
  statement-parser parse -f json -o - statement.pdf
  statement-parser parse --issuer hdfc -c 8 statements/*.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.concurrency <= 0 {
				opts.concurrency = app.cfg.Parse.Concurrency
			}
			return app.runParse(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.issuer, "issuer", "i", "", "skip detection and parse as this issuer (name or alias)")
	f.StringVarP(&opts.output, "output", "o", "", `output file for a single input ("-" for stdout)`)
	f.StringVarP(&opts.format, "format", "f", "csv", "output format: csv, xlsx or json")
	f.BoolVar(&opts.header, "header", true, "include statement metadata rows in CSV output")
	f.IntVarP(&opts.concurrency, "concurrency", "c", 0, "files parsed in parallel (default from parse.concurrency)")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print a summary per statement")
	return cmd
}

func (app *cliApp) runParse(ctx context.Context, out io.Writer, files []string, opts parseOptions) error {
	if opts.output != "" && opts.output != stdoutPath && len(files) > 1 {
		return errors.New("--output names a single file; omit it when parsing several inputs")
	}
	w, err := writer.ForFormat(opts.format, opts.header)
	if err != nil {
		return err
	}
	format := strings.ToLower(opts.format)
	if format == "" {
		format = "csv"
	}
	if format == "xlsx" && opts.output == stdoutPath {
		return errors.New("xlsx output cannot be written to stdout")
	}

	statements := make([]*models.Statement, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.concurrency, 1))
	for i, path := range files {
		g.Go(func() error {
			st, err := app.parseFile(gctx, path, opts.issuer)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			statements[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range files {
		st := statements[i]
		if opts.output == stdoutPath {
			if err := w.Write(out, st); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			continue
		}

		dest := opts.output
		if dest == "" {
			dest = strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
		}
		if err := writer.WriteFile(dest, w, st); err != nil {
			return err
		}
		if opts.quiet {
			continue
		}
		fmt.Fprintf(out, "Processing: %s\n", path)
		if err := writer.WriteSummary(out, st); err != nil {
			return err
		}
		fmt.Fprintf(out, "Output: %s\n\n", dest)
	}
	return nil
}

func (app *cliApp) parseFile(ctx context.Context, path, issuer string) (*models.Statement, error) {
	pages, err := extractor.LoadPages(ctx, path)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded statement", "file", path, "pages", len(pages))

	if issuer != "" {
		return app.registry.ParseAs(issuer, strings.Join(pages, "\n"))
	}
	return app.registry.IdentifyAndParsePages(pages)
}
