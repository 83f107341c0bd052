package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sthwalo/acc-sub003/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidRule        = errors.New("invalid classification rule")
	ErrInvalidJournal     = errors.New("invalid journal entry")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.CompanyID <= 0 {
		return fmt.Errorf("%w: missing company", ErrInvalidTransaction)
	}
	if txn.TransactionDate.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if strings.TrimSpace(txn.Details) == "" {
		return fmt.Errorf("%w: missing details", ErrInvalidTransaction)
	}
	if txn.DebitAmount.IsNegative() || txn.CreditAmount.IsNegative() {
		return fmt.Errorf("%w: negative amount", ErrInvalidTransaction)
	}
	if txn.DebitAmount.IsPositive() == txn.CreditAmount.IsPositive() {
		return fmt.Errorf("%w: exactly one of debit or credit must be non-zero", ErrInvalidTransaction)
	}
	return nil
}

// validateAccount validates an account before insert.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if account.CompanyID <= 0 {
		return fmt.Errorf("%w: missing company", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Code) == "" {
		return fmt.Errorf("%w: missing code", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	switch account.Type {
	case model.AccountTypeAsset, model.AccountTypeLiability, model.AccountTypeEquity,
		model.AccountTypeIncome, model.AccountTypeExpense:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAccount, account.Type)
	}
	return nil
}

// validateRule validates a classification rule before insert or update.
func validateRule(rule *model.ClassificationRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if strings.TrimSpace(rule.Pattern) == "" {
		return fmt.Errorf("%w: missing pattern", ErrInvalidRule)
	}
	if strings.TrimSpace(rule.AccountCode) == "" {
		return fmt.Errorf("%w: missing account code", ErrInvalidRule)
	}
	if _, err := model.ParseMatchType(string(rule.MatchType)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	return nil
}

// validateJournalEntry validates a journal entry before insert.
func validateJournalEntry(entry *model.JournalEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: journal entry", ErrNilParameter)
	}
	if strings.TrimSpace(entry.Reference) == "" {
		return fmt.Errorf("%w: missing reference", ErrInvalidJournal)
	}
	if len(entry.Lines) < 2 {
		return fmt.Errorf("%w: at least two lines required", ErrInvalidJournal)
	}
	for i, line := range entry.Lines {
		if line.AccountID <= 0 {
			return fmt.Errorf("%w: line %d has no account", ErrInvalidJournal, i)
		}
		if line.DebitAmount.IsPositive() == line.CreditAmount.IsPositive() {
			return fmt.Errorf("%w: line %d must have exactly one non-zero side", ErrInvalidJournal, i)
		}
	}
	return nil
}
