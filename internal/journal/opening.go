package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// OpeningBalance reconstructs the bank balance before txn posted: its running balance with
// its own movement reversed.
func OpeningBalance(txn model.Transaction) (decimal.Decimal, error) {
	if txn.Balance == nil {
		return decimal.Zero, fmt.Errorf("%w: transaction %d has no running balance", common.ErrLookup, txn.ID)
	}
	return txn.Balance.Sub(txn.CreditAmount).Add(txn.DebitAmount), nil
}

// GenerateOpeningBalance replaces the opening balance entry of a fiscal period. The balance is
// derived from the period's first transaction. A positive balance debits the bank and credits
// opening balance equity; an overdrawn balance reverses the sides. A zero balance only removes
// earlier entries and returns nil.
func (g *Generator) GenerateOpeningBalance(ctx context.Context, companyID, fiscalPeriodID int64, createdBy string) (*model.JournalEntry, error) {
	first, err := g.store.GetFirstTransaction(ctx, companyID, fiscalPeriodID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: fiscal period %d", common.ErrNoTransactions, fiscalPeriodID)
		}
		return nil, fmt.Errorf("failed to find first transaction: %w", err)
	}

	opening, err := OpeningBalance(*first)
	if err != nil {
		return nil, err
	}
	if createdBy == "" {
		createdBy = g.cfg.CreatedBy
	}

	var entry *model.JournalEntry
	err = common.WithRetry(ctx, func() error {
		var err error
		entry, err = g.openingBalanceOnce(ctx, *first, fiscalPeriodID, opening, createdBy)
		return err
	}, g.cfg.Retry)
	if err != nil {
		return nil, err
	}

	if entry == nil {
		slog.Info("Opening balance is zero, no entry created",
			"company_id", companyID,
			"fiscal_period_id", fiscalPeriodID)
		return nil, nil //nolint:nilnil // A zero opening balance needs no entry
	}

	slog.Info("Created opening balance entry",
		"company_id", companyID,
		"fiscal_period_id", fiscalPeriodID,
		"reference", entry.Reference,
		"amount", opening.StringFixed(2))
	return entry, nil
}

func (g *Generator) openingBalanceOnce(ctx context.Context, first model.Transaction, fiscalPeriodID int64, opening decimal.Decimal, createdBy string) (*model.JournalEntry, error) {
	tx, err := g.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleted, err := tx.DeleteJournalEntriesByPrefix(ctx, first.CompanyID, fiscalPeriodID, OpeningBalancePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to remove previous opening balance: %w", err)
	}
	if deleted > 0 {
		slog.Debug("Removed previous opening balance entries",
			"fiscal_period_id", fiscalPeriodID,
			"count", deleted)
	}

	if opening.IsZero() {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit: %w", err)
		}
		return nil, nil //nolint:nilnil // Nothing to post
	}

	resolved := newAccountSet(first.CompanyID)
	bank, err := g.resolveAccount(ctx, tx, resolved, g.cfg.BankAccountCode, "", false)
	if err != nil {
		return nil, err
	}
	equity, err := g.resolveAccount(ctx, tx, resolved, g.cfg.OpeningBalanceAccountCode, g.cfg.OpeningBalanceAccountName, true)
	if err != nil {
		return nil, err
	}

	amount := opening.Abs()
	bankLine := model.JournalEntryLine{
		AccountID:   bank.ID,
		AccountCode: bank.Code,
		Description: "Bank account - Opening balance",
	}
	equityLine := model.JournalEntryLine{
		AccountID:   equity.ID,
		AccountCode: equity.Code,
		Description: "Opening balance equity",
	}
	if opening.IsPositive() {
		bankLine.DebitAmount, bankLine.CreditAmount = amount, decimal.Zero
		equityLine.CreditAmount, equityLine.DebitAmount = amount, decimal.Zero
	} else {
		bankLine.CreditAmount, bankLine.DebitAmount = amount, decimal.Zero
		equityLine.DebitAmount, equityLine.CreditAmount = amount, decimal.Zero
	}

	periodID := fiscalPeriodID
	entry := &model.JournalEntry{
		Reference:      g.newReference(OpeningBalancePrefix),
		EntryDate:      first.TransactionDate,
		Description:    "Opening balance",
		CompanyID:      first.CompanyID,
		FiscalPeriodID: &periodID,
		CreatedBy:      createdBy,
		Lines:          []model.JournalEntryLine{bankLine, equityLine},
	}

	if err := g.commit(ctx, tx, entry, resolved); err != nil {
		return nil, err
	}
	return entry, nil
}
