package statement

import (
	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// ResultKind classifies the outcome of processing one statement line.
type ResultKind int

// Result kinds.
const (
	ResultOK ResultKind = iota
	ResultSkip
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultSkip:
		return "skip"
	case ResultError:
		return "error"
	}
	return "unknown"
}

// LineResult is emitted by the parser for every finished transaction, skipped line or failure.
type LineResult struct {
	Err            error
	Transaction    *model.ParsedTransaction
	OpeningBalance *decimal.Decimal
	Reason         string
	Line           model.RawLine
	Kind           ResultKind
}

// ParseResult summarises a parsed statement.
type ParseResult struct {
	OpeningBalance *decimal.Decimal
	Transactions   []model.ParsedTransaction
	Errors         []error
	Skipped        int
}
