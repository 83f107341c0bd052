package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sthwalo/acc-sub003/internal/common"
)

// PDFExtractor reads text-based PDF statements row by row.
type PDFExtractor struct {
	meta Metadata
}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractLines returns the text rows of every page in order. Scanned, image-only PDFs yield
// no lines and an error.
func (e *PDFExtractor) ExtractLines(ctx context.Context, path string) (lines []string, err error) {
	// The PDF library panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: unreadable PDF %s: %v", common.ErrParse, path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			slog.Warn("Failed to read PDF page",
				"path", path,
				"page", i,
				"error", err)
			continue
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no text in %s, the PDF may be scanned", common.ErrParse, path)
	}

	e.meta = DetectMetadata(lines)
	slog.Debug("Extracted PDF statement",
		"path", path,
		"pages", numPages,
		"lines", len(lines))
	return lines, nil
}

// AccountNumber returns the account number found in the last extracted statement.
func (e *PDFExtractor) AccountNumber() string {
	return e.meta.AccountNumber
}

// StatementPeriod returns the period found in the last extracted statement.
func (e *PDFExtractor) StatementPeriod() string {
	return e.meta.StatementPeriod
}
