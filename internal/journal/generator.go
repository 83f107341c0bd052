// Package journal posts classified bank transactions as balanced double-entry journal entries.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/cache"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/pattern"
	"github.com/sthwalo/acc-sub003/internal/service"
)

// Reference prefixes.
const (
	EntryPrefix          = "JE-"
	OpeningBalancePrefix = "OB-"
)

// Config names the well-known ledger accounts and the default author of entries.
type Config struct {
	BankAccountCode           string
	BankAccountName           string
	OpeningBalanceAccountCode string
	OpeningBalanceAccountName string
	CreatedBy                 string
	Retry                     service.RetryOptions
}

// DefaultConfig returns the standard ledger configuration.
func DefaultConfig() Config {
	return Config{
		BankAccountCode:           "1100",
		BankAccountName:           "Bank - Current Account",
		OpeningBalanceAccountCode: "3200",
		OpeningBalanceAccountName: "Opening Balance Equity",
		CreatedBy:                 "system",
	}
}

// Generator builds and persists journal entries. Each entry is written in its own storage
// transaction, so a failed entry never leaves partial lines behind.
type Generator struct {
	store        service.Storage
	cache        *cache.Cache
	validator    pattern.DirectionValidator
	newReference func(prefix string) string
	cfg          Config
}

// NewGenerator creates a generator. A nil cache gets a private one.
func NewGenerator(store service.Storage, c *cache.Cache, cfg Config) *Generator {
	if c == nil {
		c = cache.New()
	}
	defaults := DefaultConfig()
	if cfg.BankAccountCode == "" {
		cfg.BankAccountCode = defaults.BankAccountCode
	}
	if cfg.BankAccountName == "" {
		cfg.BankAccountName = defaults.BankAccountName
	}
	if cfg.OpeningBalanceAccountCode == "" {
		cfg.OpeningBalanceAccountCode = defaults.OpeningBalanceAccountCode
	}
	if cfg.OpeningBalanceAccountName == "" {
		cfg.OpeningBalanceAccountName = defaults.OpeningBalanceAccountName
	}
	if cfg.CreatedBy == "" {
		cfg.CreatedBy = defaults.CreatedBy
	}

	return &Generator{
		store:     store,
		cache:     c,
		validator: pattern.NewValidator(),
		cfg:       cfg,
		newReference: func(prefix string) string {
			return prefix + uuid.NewString()
		},
	}
}

// Generate posts txn to the account chosen by result. Money in credits the mapped account and
// debits the bank; money out debits the mapped account and credits the bank.
func (g *Generator) Generate(ctx context.Context, txn model.Transaction, result *model.ClassificationResult, createdBy string) (*model.JournalEntry, error) {
	if result == nil || result.AccountCode == "" {
		return nil, fmt.Errorf("%w: transaction %d has no classification", common.ErrClassificationFailed, txn.ID)
	}
	if txn.ID <= 0 {
		return nil, fmt.Errorf("%w: transaction has not been saved", common.ErrValidation)
	}
	if !txn.Amount().IsPositive() {
		return nil, fmt.Errorf("%w: transaction %d has no amount", common.ErrValidation, txn.ID)
	}
	if createdBy == "" {
		createdBy = g.cfg.CreatedBy
	}

	var entry *model.JournalEntry
	err := common.WithRetry(ctx, func() error {
		var err error
		entry, err = g.generateOnce(ctx, txn, result, createdBy)
		return err
	}, g.cfg.Retry)
	if err != nil {
		return nil, err
	}

	slog.Debug("Created journal entry",
		"reference", entry.Reference,
		"transaction_id", txn.ID,
		"account_code", result.AccountCode,
		"amount", txn.Amount().StringFixed(2))
	return entry, nil
}

func (g *Generator) generateOnce(ctx context.Context, txn model.Transaction, result *model.ClassificationResult, createdBy string) (*model.JournalEntry, error) {
	tx, err := g.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	resolved := newAccountSet(txn.CompanyID)

	bank, err := g.resolveAccount(ctx, tx, resolved, g.cfg.BankAccountCode, "", false)
	if err != nil {
		return nil, err
	}
	mapped, err := g.resolveAccount(ctx, tx, resolved, result.AccountCode, result.AccountName, true)
	if err != nil {
		return nil, err
	}

	if err := g.validator.ValidateDirection(ctx, txn, mapped); err != nil {
		slog.Warn("Posting against account of unexpected type",
			"transaction_id", txn.ID,
			"error", err)
	}

	amount := txn.Amount()
	source := txn.ID
	mappedLine := model.JournalEntryLine{
		AccountID:           mapped.ID,
		AccountCode:         mapped.Code,
		SourceTransactionID: &source,
	}
	bankLine := model.JournalEntryLine{
		AccountID:           bank.ID,
		AccountCode:         bank.Code,
		Description:         "Bank account - " + txn.Details,
		SourceTransactionID: &source,
	}
	if txn.IsCredit() {
		mappedLine.Description = "Income - " + txn.Details
		mappedLine.CreditAmount, mappedLine.DebitAmount = amount, decimal.Zero
		bankLine.DebitAmount, bankLine.CreditAmount = amount, decimal.Zero
	} else {
		mappedLine.Description = "Expense - " + txn.Details
		mappedLine.DebitAmount, mappedLine.CreditAmount = amount, decimal.Zero
		bankLine.CreditAmount, bankLine.DebitAmount = amount, decimal.Zero
	}

	entry := &model.JournalEntry{
		Reference:      g.newReference(EntryPrefix),
		EntryDate:      txn.TransactionDate,
		Description:    txn.Details,
		CompanyID:      txn.CompanyID,
		FiscalPeriodID: txn.FiscalPeriodID,
		CreatedBy:      createdBy,
		Lines:          []model.JournalEntryLine{mappedLine, bankLine},
	}

	if err := g.commit(ctx, tx, entry, resolved); err != nil {
		return nil, err
	}
	return entry, nil
}

// commit checks the entry balances, saves it and, once committed, publishes resolved account IDs to the cache.
func (g *Generator) commit(ctx context.Context, tx service.Transaction, entry *model.JournalEntry, resolved *accountSet) error {
	if err := CheckBalanced(entry); err != nil {
		return err
	}
	if err := tx.SaveJournalEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit journal entry: %w", err)
	}

	for code, id := range resolved.ids {
		g.cache.SetAccountID(resolved.companyID, code, id)
	}
	return nil
}

// EnsureLedgerAccounts creates the bank and opening balance equity accounts for a company
// when they do not exist yet.
func (g *Generator) EnsureLedgerAccounts(ctx context.Context, companyID int64) error {
	accounts := []model.Account{
		{Code: g.cfg.BankAccountCode, Name: g.cfg.BankAccountName},
		{Code: g.cfg.OpeningBalanceAccountCode, Name: g.cfg.OpeningBalanceAccountName},
	}
	for _, a := range accounts {
		_, err := g.store.GetAccountByCode(ctx, companyID, a.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("failed to look up account %s: %w", a.Code, err)
		}
		if _, err := createAccount(ctx, g.store, companyID, a.Code, a.Name); err != nil {
			return err
		}
	}
	return nil
}

// accountSet collects account IDs resolved inside one storage transaction.
type accountSet struct {
	ids       map[string]int64
	companyID int64
}

func newAccountSet(companyID int64) *accountSet {
	return &accountSet{companyID: companyID, ids: make(map[string]int64)}
}

// resolveAccount finds an account by code, consulting the cache first. When create is set a
// missing account is added to the chart; otherwise a missing account is a lookup failure.
func (g *Generator) resolveAccount(ctx context.Context, tx service.Transaction, resolved *accountSet, code, name string, create bool) (model.Account, error) {
	if id, ok := g.cache.AccountID(resolved.companyID, code); ok {
		accountType, _ := InferAccountType(code)
		return model.Account{ID: id, CompanyID: resolved.companyID, Code: code, Name: name, Type: accountType}, nil
	}

	account, err := tx.GetAccountByCode(ctx, resolved.companyID, code)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrNotFound) && create:
		if account, err = createAccount(ctx, tx, resolved.companyID, code, name); err != nil {
			return model.Account{}, err
		}
	case errors.Is(err, common.ErrNotFound):
		return model.Account{}, fmt.Errorf("%w: account %s for company %d: %w", common.ErrLookup, code, resolved.companyID, err)
	default:
		return model.Account{}, fmt.Errorf("failed to look up account %s: %w", code, err)
	}

	resolved.ids[code] = account.ID
	return *account, nil
}

// accountCreator is the storage subset needed to add an account.
type accountCreator interface {
	CreateAccount(ctx context.Context, account *model.Account) error
}

func createAccount(ctx context.Context, store accountCreator, companyID int64, code, name string) (*model.Account, error) {
	accountType, err := InferAccountType(code)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = code
	}

	account := &model.Account{
		CompanyID: companyID,
		Code:      code,
		Name:      name,
		Type:      accountType,
		Category:  InferCategory(code),
		IsActive:  true,
	}
	if err := store.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", code, err)
	}

	slog.Info("Created account",
		"company_id", companyID,
		"code", code,
		"type", accountType,
		"category", account.Category)
	return account, nil
}
