package model

import "time"

// AccountType is the kind of ledger account.
type AccountType string

// Account type constants.
const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// NormalBalance is the side on which an account's balance increases.
type NormalBalance string

// Normal balance constants.
const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// Account is an entry in a company's chart of accounts.
type Account struct {
	CreatedAt time.Time
	Code      string
	Name      string
	Type      AccountType
	Category  string
	ID        int64
	CompanyID int64
	IsActive  bool
}

// NormalBalance returns DEBIT for assets and expenses and CREDIT otherwise.
func (a Account) NormalBalance() NormalBalance {
	switch a.Type {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalDebit
	default:
		return NormalCredit
	}
}
