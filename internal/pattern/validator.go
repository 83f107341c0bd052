package pattern

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// ErrDirectionMismatch indicates a transaction posted to an account of the opposite kind.
var ErrDirectionMismatch = errors.New("transaction direction does not match account type")

// ValidateRule checks that a rule can be evaluated.
func ValidateRule(rule Rule) error {
	if strings.TrimSpace(rule.Pattern) == "" {
		return fmt.Errorf("%w: pattern cannot be empty", common.ErrValidation)
	}
	if _, err := model.ParseMatchType(string(rule.MatchType)); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	if rule.MatchType == model.MatchRegex {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("%w: invalid regex %q: %w", common.ErrValidation, rule.Pattern, err)
		}
	}
	if strings.TrimSpace(rule.AccountCode) == "" {
		return fmt.Errorf("%w: account code cannot be empty", common.ErrValidation)
	}
	if rule.Priority < 0 {
		return fmt.Errorf("%w: priority cannot be negative", common.ErrValidation)
	}
	return nil
}

// Validator implements DirectionValidator for direction consistency checks.
type Validator struct{}

// NewValidator creates a new transaction validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDirection ensures money in is posted to income accounts and money out to expense accounts.
func (v *Validator) ValidateDirection(_ context.Context, txn model.Transaction, account model.Account) error {
	// Balance sheet accounts can be used with any direction
	switch account.Type {
	case model.AccountTypeAsset, model.AccountTypeLiability, model.AccountTypeEquity:
		return nil
	}

	expected := model.AccountTypeExpense
	direction := "debit"
	if txn.IsCredit() {
		expected = model.AccountTypeIncome
		direction = "credit"
	}

	if account.Type != expected {
		return fmt.Errorf("%w: account %s (%s) is %s but transaction is a %s",
			ErrDirectionMismatch, account.Code, account.Name, account.Type, direction)
	}
	return nil
}
