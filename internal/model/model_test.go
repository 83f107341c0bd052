package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFiscalPeriodContains(t *testing.T) {
	period := FiscalPeriod{
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		date time.Time
		name string
		want bool
	}{
		{name: "start boundary", date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), want: true},
		{name: "end boundary with time of day", date: time.Date(2025, 2, 28, 17, 30, 0, 0, time.UTC), want: true},
		{name: "inside", date: time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC), want: true},
		{name: "day before", date: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), want: false},
		{name: "day after", date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, period.Contains(tt.date))
		})
	}
}

func TestConfidenceLevel(t *testing.T) {
	tests := []struct {
		want  ConfidenceLevel
		score float64
	}{
		{score: 1.0, want: ConfidenceHigh},
		{score: 0.9, want: ConfidenceHigh},
		{score: 0.8, want: ConfidenceMedium},
		{score: 0.6, want: ConfidenceMedium},
		{score: 0.55, want: ConfidenceLow},
	}

	for _, tt := range tests {
		r := &ClassificationResult{ConfidenceScore: tt.score}
		assert.Equal(t, tt.want, r.ConfidenceLevel(), "score %v", tt.score)
	}
}

func TestJournalEntryBalance(t *testing.T) {
	entry := JournalEntry{Lines: []JournalEntryLine{
		{DebitAmount: decimal.RequireFromString("100.10"), CreditAmount: decimal.Zero},
		{DebitAmount: decimal.Zero, CreditAmount: decimal.RequireFromString("100.10")},
	}}
	assert.True(t, entry.IsBalanced())

	entry.Lines[1].CreditAmount = decimal.RequireFromString("100.09")
	assert.False(t, entry.IsBalanced())
}

func TestTransactionReferenceIsDeterministic(t *testing.T) {
	txn := Transaction{
		CompanyID:       1,
		TransactionDate: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		Details:         "SALARY PAYMENT FROM ACME",
		CreditAmount:    decimal.RequireFromString("10000"),
		DebitAmount:     decimal.Zero,
	}
	ref := txn.GenerateReference()
	assert.Len(t, ref, 64)
	assert.Equal(t, ref, txn.GenerateReference())

	txn.CreditAmount = decimal.RequireFromString("10000.01")
	assert.NotEqual(t, ref, txn.GenerateReference())
}
