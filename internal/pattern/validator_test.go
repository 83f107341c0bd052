package pattern

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{name: "valid", rule: Rule{Pattern: "fuel", MatchType: model.MatchContains, AccountCode: "8300-001"}},
		{name: "default match type", rule: Rule{Pattern: "fuel", AccountCode: "8300-001"}},
		{name: "valid regex", rule: Rule{Pattern: `^fuel\b`, MatchType: model.MatchRegex, AccountCode: "8300-001"}},
		{name: "empty pattern", rule: Rule{Pattern: " ", AccountCode: "8300-001"}, wantErr: true},
		{name: "unknown match type", rule: Rule{Pattern: "fuel", MatchType: "FUZZY", AccountCode: "8300-001"}, wantErr: true},
		{name: "bad regex", rule: Rule{Pattern: `([`, MatchType: model.MatchRegex, AccountCode: "8300-001"}, wantErr: true},
		{name: "missing account", rule: Rule{Pattern: "fuel"}, wantErr: true},
		{name: "negative priority", rule: Rule{Pattern: "fuel", AccountCode: "8300-001", Priority: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidator_ValidateDirection(t *testing.T) {
	credit := model.Transaction{CreditAmount: decimal.NewFromInt(100), DebitAmount: decimal.Zero}
	debit := model.Transaction{DebitAmount: decimal.NewFromInt(100), CreditAmount: decimal.Zero}

	tests := []struct {
		name    string
		txn     model.Transaction
		account model.Account
		wantErr bool
	}{
		{name: "income on credit", txn: credit, account: model.Account{Code: "4000-001", Type: model.AccountTypeIncome}},
		{name: "expense on debit", txn: debit, account: model.Account{Code: "8800-001", Type: model.AccountTypeExpense}},
		{name: "liability on either", txn: credit, account: model.Account{Code: "2500-001", Type: model.AccountTypeLiability}},
		{name: "equity on either", txn: debit, account: model.Account{Code: "3300-001", Type: model.AccountTypeEquity}},
		{name: "expense on credit", txn: credit, account: model.Account{Code: "8800-001", Type: model.AccountTypeExpense}, wantErr: true},
		{name: "income on debit", txn: debit, account: model.Account{Code: "4000-001", Type: model.AccountTypeIncome}, wantErr: true},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDirection(context.Background(), tt.txn, tt.account)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDirectionMismatch)
				return
			}
			assert.NoError(t, err)
		})
	}
}
