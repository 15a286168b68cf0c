package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-parser/internal/extractor"
	"github.com/insightdelivered/statement-parser/internal/metrics"
	"github.com/insightdelivered/statement-parser/internal/parser"
)

const hdfcSample = `HDFC Bank Credit Card Statement
Card Number ...0591
Statement Period 08/05/2019 to 08/06/2019
Payment Due Date 28/06/2019
Total Amount Due 45,240.00
Minimum Amount Due 13,636.00
23/05/2019 Flipkart Payments BANGALORE 8,249.00`

func setupTestApp(t *testing.T, extract ExtractFunc) *fiber.App {
	t.Helper()
	reg := prometheus.NewRegistry()
	h := &Handler{
		Registry: parser.Default(),
		Metrics:  metrics.New(reg),
		Extract:  extract,
		Version:  "test",
	}
	return NewApp(h, Options{BodyLimitMB: 5, Gatherer: reg})
}

// form builds a multipart body from fields; a "file" entry becomes an
// upload named by fileName.
func form(t *testing.T, fields map[string]string, fileName string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 placeholder"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func doParse(t *testing.T, app *fiber.App, fields map[string]string, fileName string) (*http.Response, ParseResponse, map[string]any) {
	t.Helper()
	body, contentType := form(t, fields, fileName)
	req := httptest.NewRequest("POST", "/api/parse", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// Statement only marshals, so data is inspected through the generic map.
	var parsed ParseResponse
	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed), string(raw))
	require.NoError(t, json.Unmarshal(raw, &generic))
	return resp, parsed, generic
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(t, nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}
	if result["engine"] != "fiber" {
		t.Errorf("expected engine=fiber, got %q", result["engine"])
	}
	if result["version"] != "test" {
		t.Errorf("expected version=test, got %q", result["version"])
	}
}

func TestSupportedIssuers(t *testing.T) {
	app := setupTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/supported-issuers", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Issuers []string `json:"issuers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"American Express", "HDFC Bank", "ICICI Bank", "Kotak Mahindra Bank", "State Bank of India"}, result.Issuers)
}

func TestParseText(t *testing.T) {
	app := setupTestApp(t, nil)

	resp, parsed, generic := doParse(t, app, map[string]string{"text": hdfcSample}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, parsed.Success)
	assert.NotEmpty(t, parsed.RequestID)
	assert.Equal(t, parsed.RequestID, resp.Header.Get("X-Request-ID"))

	data := generic["data"].(map[string]any)
	assert.Equal(t, "HDFC Bank", data["issuer"])
	assert.Equal(t, "0591", data["cardLastFour"])
	assert.Equal(t, 45240.0, data["totalBalance"])
	assert.Len(t, data["transactions"], 1)
}

func TestParseTextWithPageBreaks(t *testing.T) {
	app := setupTestApp(t, nil)

	text := strings.Replace(hdfcSample, "Total Amount Due", "---PAGE_BREAK---\nTotal Amount Due", 1)
	resp, parsed, _ := doParse(t, app, map[string]string{"text": text}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, parsed.Success)
}

func TestParseForcedIssuer(t *testing.T) {
	app := setupTestApp(t, nil)

	resp, _, generic := doParse(t, app, map[string]string{"text": hdfcSample, "issuer": "hdfc"}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "HDFC Bank", generic["data"].(map[string]any)["issuer"])

	resp, parsed, _ := doParse(t, app, map[string]string{"text": hdfcSample, "issuer": "citibank"}, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, KindUnsupportedIssuer, parsed.Kind)
}

func TestParseRequiresFile(t *testing.T) {
	app := setupTestApp(t, nil)

	resp, parsed, _ := doParse(t, app, map[string]string{}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.False(t, parsed.Success)
	assert.Contains(t, parsed.Error, "No file uploaded")
}

func TestParseRejectsNonPDF(t *testing.T) {
	app := setupTestApp(t, nil)

	resp, parsed, _ := doParse(t, app, nil, "statement.docx")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, parsed.Error, "Only PDF")
}

func TestParseUploadedPDF(t *testing.T) {
	var savedPath string
	app := setupTestApp(t, func(_ context.Context, path string) ([]string, error) {
		savedPath = path
		_, err := os.Stat(path)
		assert.NoError(t, err)
		return []string{hdfcSample}, nil
	})

	resp, parsed, _ := doParse(t, app, nil, "Statement.PDF")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, parsed.Success)

	assert.True(t, strings.HasSuffix(savedPath, ".pdf"))
	_, err := os.Stat(savedPath)
	assert.True(t, os.IsNotExist(err), "temporary upload should be removed")
}

func TestParseErrorKinds(t *testing.T) {
	incomplete := strings.Replace(hdfcSample, "Total Amount Due 45,240.00\n", "", 1)

	tests := []struct {
		name      string
		fields    map[string]string
		file      string
		extract   ExtractFunc
		wantKind  string
		wantField string
	}{
		{
			name:     "unsupported issuer",
			fields:   map[string]string{"text": "Some Unknown Bank\nStatement\nTotal 10.00"},
			wantKind: KindUnsupportedIssuer,
		},
		{
			name:      "incomplete statement",
			fields:    map[string]string{"text": incomplete},
			wantKind:  KindIncompleteStatement,
			wantField: "totalBalance",
		},
		{
			name:     "malformed text",
			fields:   map[string]string{"text": "---PAGE_BREAK---\n0000 1111"},
			wantKind: KindMalformedInput,
		},
		{
			name: "unreadable pdf",
			file: "scan.pdf",
			extract: func(context.Context, string) ([]string, error) {
				return nil, extractor.ErrNoReadableText
			},
			wantKind: KindMalformedInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t, tt.extract)
			resp, parsed, _ := doParse(t, app, tt.fields, tt.file)
			assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
			assert.False(t, parsed.Success)
			assert.Equal(t, tt.wantKind, parsed.Kind)
			assert.Equal(t, tt.wantField, parsed.Field)
		})
	}
}

func TestParseInternalErrors(t *testing.T) {
	app := setupTestApp(t, func(context.Context, string) ([]string, error) {
		return nil, errors.New("disk on fire")
	})
	resp, parsed, _ := doParse(t, app, nil, "statement.pdf")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, parsed.Kind)

	app = setupTestApp(t, func(context.Context, string) ([]string, error) {
		panic("extractor bug")
	})
	resp, _, _ = doParse(t, app, nil, "statement.pdf")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupTestApp(t, nil)
	doParse(t, app, map[string]string{"text": hdfcSample}, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `statement_parse_total{issuer="HDFC Bank",outcome="success"} 1`)
}

func TestExtractTimeout(t *testing.T) {
	h := &Handler{
		Registry:       parser.Default(),
		ExtractTimeout: 50 * time.Millisecond,
		Extract: func(ctx context.Context, _ string) ([]string, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	app := NewApp(h, Options{})

	resp, parsed, _ := doParse(t, app, nil, "slow.pdf")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, parsed.Error, "deadline exceeded")
}
