// Package pdf converts uploaded PDF documents into plain text.
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spherical/legal-simplifier/internal/config"
	"github.com/spherical/legal-simplifier/internal/domain"
	"github.com/spherical/legal-simplifier/internal/observability"
)

// pageSource is an opened document read one page at a time. Pages are numbered from 1.
type pageSource interface {
	NumPage() int
	PageText(pageNum int) (string, error)
	Close() error
}

type opener func(data []byte) (pageSource, error)

// Extractor implements domain.TextExtractor
type Extractor struct {
	backend   string
	open      opener
	validator *Validator
	logger    *observability.Logger
}

var _ domain.TextExtractor = (*Extractor)(nil)

// NewExtractor creates an extractor for the named backend.
func NewExtractor(backend string, validator *Validator, logger *observability.Logger) (*Extractor, error) {
	var open opener
	switch backend {
	case config.PDFBackendLedongthuc, "":
		backend = config.PDFBackendLedongthuc
		open = openLedongthuc
	case config.PDFBackendFitz:
		open = openFitz
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unknown pdf backend %q", backend), nil)
	}

	if validator == nil {
		validator = NewValidator(0, false)
	}
	if logger == nil {
		logger = observability.Nop()
	}

	return &Extractor{
		backend:   backend,
		open:      open,
		validator: validator,
		logger:    logger.WithComponent("pdf"),
	}, nil
}

// Extract returns the text of every page, in page order, each followed by a newline.
// Any failure aborts the whole extraction; no partial text is returned.
func (e *Extractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.ExtractionError("PDF parser failed", fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			e.logger.Warn().Err(err).Str("backend", e.backend).Int("bytes", len(data)).Msg("Extraction failed")
		}
	}()

	if err := e.validator.Validate(data); err != nil {
		return "", err
	}

	src, err := e.open(data)
	if err != nil {
		return "", domain.ExtractionError("Failed to open PDF", err)
	}
	defer src.Close()

	text, err = assemble(ctx, src)
	if err != nil {
		return "", err
	}

	e.logger.Info().
		Str("backend", e.backend).
		Int("pages", src.NumPage()).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("Extracted document text")

	return text, nil
}

// assemble concatenates pages 1..N, writing a newline after each page.
func assemble(ctx context.Context, src pageSource) (string, error) {
	pageCount := src.NumPage()
	if pageCount == 0 {
		return "", domain.ExtractionError("PDF has no pages", nil)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", domain.ExtractionError("extraction cancelled", err)
		}

		pageText, err := src.PageText(pageNum)
		if err != nil {
			return "", domain.ExtractionError(fmt.Sprintf("Failed to read page %d", pageNum), err)
		}
		sb.WriteString(pageText)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// joinItems joins the text fragments of a page with single spaces, skipping blanks.
func joinItems(items []string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, " ")
}
