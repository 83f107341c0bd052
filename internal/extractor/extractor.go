// Package extractor turns statement documents into lines of text for the statement parser.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sthwalo/acc-sub003/internal/common"
)

// Extractor reads the lines of a statement document. AccountNumber and StatementPeriod
// describe the most recently extracted document, so an Extractor must not be shared between
// concurrent imports.
type Extractor interface {
	ExtractLines(ctx context.Context, path string) ([]string, error)
	AccountNumber() string
	StatementPeriod() string
}

// ErrUnsupportedFormat is returned for documents no extractor can read.
var ErrUnsupportedFormat = fmt.Errorf("%w: unsupported statement format", common.ErrParse)

// ForPath returns an extractor for the file's extension.
func ForPath(path string) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewPDFExtractor(), nil
	case ".txt", ".text", ".csv", "":
		return NewTextExtractor(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

var (
	accountNumberPattern = regexp.MustCompile(`(?i)\bacc(?:ount)?\.?\s*(?:number|no\.?|#)?\s*:?\s*(\d[\d -]{4,}\d)`)
	periodLinePattern    = regexp.MustCompile(`(?i)\bstatement\s+period\s*:?\s*(.+)$`)
	periodRangePattern   = regexp.MustCompile(`(?i)\d{1,2}\s+[a-z]{3,9}\s+\d{4}\s+(?:to|-|until)\s+\d{1,2}\s+[a-z]{3,9}\s+\d{4}`)
)

// Metadata is what a statement says about itself.
type Metadata struct {
	AccountNumber   string
	StatementPeriod string
}

// DetectMetadata scans statement lines for the account number and the statement period.
// The first occurrence of each wins.
func DetectMetadata(lines []string) Metadata {
	var meta Metadata
	for _, line := range lines {
		if meta.AccountNumber == "" {
			if m := accountNumberPattern.FindStringSubmatch(line); m != nil {
				meta.AccountNumber = strings.NewReplacer(" ", "", "-", "").Replace(m[1])
			}
		}
		if meta.StatementPeriod == "" {
			if m := periodLinePattern.FindStringSubmatch(line); m != nil {
				meta.StatementPeriod = strings.TrimSpace(m[1])
			} else if m := periodRangePattern.FindString(line); m != "" {
				meta.StatementPeriod = m
			}
		}
		if meta.AccountNumber != "" && meta.StatementPeriod != "" {
			break
		}
	}
	return meta
}

// splitLines breaks text into trimmed lines, keeping blank lines so line numbers stay meaningful.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
