package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/insightdelivered/statement-parser/internal/extractor"
	"github.com/insightdelivered/statement-parser/internal/logger"
	"github.com/insightdelivered/statement-parser/internal/metrics"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/parser"
)

// Error kinds reported alongside HTTP 422.
const (
	KindUnsupportedIssuer   = "unsupported_issuer"
	KindIncompleteStatement = "incomplete_statement"
	KindMalformedInput      = "malformed_input"
)

// ParseResponse is the JSON body of /api/parse.
type ParseResponse struct {
	Success   bool              `json:"success"`
	RequestID string            `json:"requestId,omitempty"`
	Data      *models.Statement `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Field     string            `json:"field,omitempty"`
	Supported []models.Issuer   `json:"supportedIssuers,omitempty"`
}

// ExtractFunc turns a stored PDF into page texts.
type ExtractFunc func(ctx context.Context, path string) ([]string, error)

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Registry *parser.Registry
	// Metrics may be nil.
	Metrics *metrics.Metrics
	// Extract defaults to extractor.ExtractText.
	Extract        ExtractFunc
	ExtractTimeout time.Duration
	Version        string
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

func (h *Handler) HandleIssuers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"issuers": h.Registry.Issuers()})
}

// HandleParse accepts a multipart form with either a PDF in "file" or
// pre-extracted text in "text" (pages separated by ---PAGE_BREAK---),
// plus an optional "issuer" that skips detection.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	start := time.Now()
	log := logger.FromContext(c.UserContext())

	pages, err := h.pages(c)
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(ParseResponse{RequestID: requestID(c), Error: fe.Message})
		}
		return h.fail(c, err, start)
	}

	var st *models.Statement
	if issuer := strings.TrimSpace(c.FormValue("issuer")); issuer != "" {
		st, err = h.Registry.ParseAs(issuer, strings.Join(pages, "\n"))
	} else {
		st, err = h.Registry.IdentifyAndParsePages(pages)
	}
	if err != nil {
		return h.fail(c, err, start)
	}

	h.observe(string(st.Issuer()), metrics.OutcomeSuccess, start)
	log.Info("statement parsed",
		"issuer", st.Issuer(),
		"transactions", len(st.Transactions()),
		"elapsed", time.Since(start),
	)
	return c.JSON(ParseResponse{Success: true, RequestID: requestID(c), Data: st})
}

// pages returns the statement text from the request. Client errors come
// back as *fiber.Error.
func (h *Handler) pages(c *fiber.Ctx) ([]string, error) {
	if text := c.FormValue("text"); strings.TrimSpace(text) != "" {
		return extractor.SplitPages(text), nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file' or 'text'.")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	tmp := filepath.Join(os.TempDir(), "statement-"+uuid.NewString()+".pdf")
	if err := c.SaveFile(fh, tmp); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	defer os.Remove(tmp)

	ctx := c.UserContext()
	if h.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.ExtractTimeout)
		defer cancel()
	}

	extract := h.Extract
	if extract == nil {
		extract = extractor.ExtractText
	}
	pages, err := extract(ctx, tmp)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", fh.Filename, err)
	}
	return pages, nil
}

// fail maps parse failures to 422 with a kind, and anything else to 500.
func (h *Handler) fail(c *fiber.Ctx, err error, start time.Time) error {
	log := logger.FromContext(c.UserContext())
	resp := ParseResponse{RequestID: requestID(c), Error: err.Error()}
	status := fiber.StatusUnprocessableEntity
	issuer, outcome := "", metrics.OutcomeError

	var (
		unsupported *parser.UnsupportedIssuerError
		incomplete  *parser.IncompleteStatementError
		malformed   *parser.MalformedInputError
	)
	switch {
	case errors.As(err, &unsupported):
		resp.Kind, resp.Supported = KindUnsupportedIssuer, unsupported.Supported
		outcome = metrics.OutcomeUnsupported
	case errors.As(err, &incomplete):
		resp.Kind, resp.Field = KindIncompleteStatement, incomplete.Field
		issuer, outcome = string(incomplete.Issuer), metrics.OutcomeIncomplete
	case errors.As(err, &malformed), errors.Is(err, extractor.ErrNoReadableText):
		resp.Kind = KindMalformedInput
		outcome = metrics.OutcomeMalformed
	default:
		status = fiber.StatusInternalServerError
		log.Error("parse failed", "error", err)
	}
	if status != fiber.StatusInternalServerError {
		log.Info("statement rejected", "kind", resp.Kind, "error", err)
	}

	h.observe(issuer, outcome, start)
	return c.Status(status).JSON(resp)
}

func (h *Handler) observe(issuer, outcome string, start time.Time) {
	if h.Metrics != nil {
		h.Metrics.Observe(issuer, outcome, time.Since(start))
	}
}
