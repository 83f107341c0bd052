package extractor

import (
	"context"
	"fmt"
	"os"
)

// TextExtractor reads statements that were already converted to plain text.
type TextExtractor struct {
	meta Metadata
}

// NewTextExtractor creates a plain text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// ExtractLines reads the file at path and returns its lines.
func (e *TextExtractor) ExtractLines(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // Statement paths come from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %w", err)
	}

	lines := splitLines(string(data))
	e.meta = DetectMetadata(lines)
	return lines, nil
}

// AccountNumber returns the account number found in the last extracted statement.
func (e *TextExtractor) AccountNumber() string {
	return e.meta.AccountNumber
}

// StatementPeriod returns the period found in the last extracted statement.
func (e *TextExtractor) StatementPeriod() string {
	return e.meta.StatementPeriod
}
