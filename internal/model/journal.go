package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a balanced double-entry posting.
type JournalEntry struct {
	EntryDate      time.Time
	CreatedAt      time.Time
	FiscalPeriodID *int64
	Reference      string
	Description    string
	CreatedBy      string
	Lines          []JournalEntryLine
	ID             int64
	CompanyID      int64
}

// JournalEntryLine is one side of a journal entry. Exactly one amount is non-zero.
type JournalEntryLine struct {
	SourceTransactionID *int64
	AccountCode         string
	Description         string
	DebitAmount         decimal.Decimal
	CreditAmount        decimal.Decimal
	ID                  int64
	JournalEntryID      int64
	AccountID           int64
}

// TotalDebits sums the debit side of all lines.
func (e *JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.DebitAmount)
	}
	return total
}

// TotalCredits sums the credit side of all lines.
func (e *JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.CreditAmount)
	}
	return total
}

// IsBalanced reports whether debits equal credits.
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebits().Equal(e.TotalCredits())
}
