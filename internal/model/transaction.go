// Package model defines the core data structures for statement ingestion and bookkeeping.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction a statement line moved money.
type TransactionType string

// Transaction type constants.
const (
	TypeCredit     TransactionType = "CREDIT"
	TypeDebit      TransactionType = "DEBIT"
	TypeServiceFee TransactionType = "SERVICE_FEE"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeCredit, TypeDebit, TypeServiceFee:
		return true
	}
	return false
}

// RawLine is one line of extracted statement text.
type RawLine struct {
	Text   string
	Number int
}

// ParsedTransaction is the parser's output for one reconstructed statement entry.
// Amount is always non-negative; the direction lives in Type.
type ParsedTransaction struct {
	Date        time.Time
	Balance     *decimal.Decimal
	Description string
	Type        TransactionType
	Amount      decimal.Decimal
}

// Transaction is a persisted bank transaction belonging to a company.
// Exactly one of DebitAmount and CreditAmount is non-zero.
type Transaction struct {
	TransactionDate time.Time
	CreatedAt       time.Time
	FiscalPeriodID  *int64
	Balance         *decimal.Decimal
	Reference       string
	Details         string
	AccountCode     string // empty until classified
	AccountName     string
	SourceFile      string
	AccountNumber   string
	DebitAmount     decimal.Decimal
	CreditAmount    decimal.Decimal
	ID              int64
	CompanyID       int64
}

// IsClassified reports whether an account has been assigned.
func (t *Transaction) IsClassified() bool {
	return t.AccountCode != ""
}

// IsCredit reports whether money came into the bank account.
func (t *Transaction) IsCredit() bool {
	return t.CreditAmount.IsPositive()
}

// Amount returns the non-zero side of the transaction.
func (t *Transaction) Amount() decimal.Decimal {
	if t.CreditAmount.IsPositive() {
		return t.CreditAmount
	}
	return t.DebitAmount
}

// GenerateReference creates a deterministic reference used for duplicate detection.
func (t *Transaction) GenerateReference() string {
	data := fmt.Sprintf("%d:%s:%s:%s:%s:%s:%s",
		t.CompanyID,
		t.TransactionDate.Format("2006-01-02"),
		t.Details,
		t.DebitAmount.StringFixed(2),
		t.CreditAmount.StringFixed(2),
		t.AccountNumber,
		t.SourceFile)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
