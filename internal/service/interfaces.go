// Package service defines the contracts shared between the pipeline and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/sthwalo/acc-sub003/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate      *time.Time
	EndDate        *time.Time
	FiscalPeriodID *int64
	CompanyID      int64
	Limit          int
	Offset         int
	// UnclassifiedOnly restricts results to transactions without an account code.
	UnclassifiedOnly bool
}

// ClassificationUpdate assigns an account to a persisted transaction.
type ClassificationUpdate struct {
	AccountCode   string
	AccountName   string
	TransactionID int64
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Company and fiscal period operations
	CreateCompany(ctx context.Context, company *model.Company) error
	GetCompany(ctx context.Context, id int64) (*model.Company, error)
	GetCompanies(ctx context.Context) ([]model.Company, error)
	CreateFiscalPeriod(ctx context.Context, period *model.FiscalPeriod) error
	GetFiscalPeriods(ctx context.Context, companyID int64) ([]model.FiscalPeriod, error)

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) ([]model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetFirstTransaction(ctx context.Context, companyID, fiscalPeriodID int64) (*model.Transaction, error)
	UpdateClassifications(ctx context.Context, updates []ClassificationUpdate) error

	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByCode(ctx context.Context, companyID int64, code string) (*model.Account, error)
	GetAccounts(ctx context.Context, companyID int64) ([]model.Account, error)

	// Classification rule operations
	CreateClassificationRule(ctx context.Context, rule *model.ClassificationRule) error
	UpdateClassificationRule(ctx context.Context, rule *model.ClassificationRule) error
	GetClassificationRules(ctx context.Context, companyID int64) ([]model.ClassificationRule, error)
	FindClassificationRule(ctx context.Context, companyID int64, pattern, accountCode string) (*model.ClassificationRule, error)
	IncrementRuleUsage(ctx context.Context, id int64) error
	DeleteClassificationRule(ctx context.Context, id int64) error

	// Journal operations
	SaveJournalEntry(ctx context.Context, entry *model.JournalEntry) error
	HasJournalEntry(ctx context.Context, transactionID int64) (bool, error)
	GetJournalEntries(ctx context.Context, companyID int64) ([]model.JournalEntry, error)
	DeleteJournalEntriesByPrefix(ctx context.Context, companyID, fiscalPeriodID int64, prefix string) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// CacheInvalidator receives notifications when cached reference data changes.
type CacheInvalidator interface {
	InvalidateRules(companyID int64)
	InvalidateAccounts(companyID int64)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
