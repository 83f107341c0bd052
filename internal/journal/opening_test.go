package journal

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func periodTransaction(db *testutil.TestDB, date, details, debit, credit, balance string) model.Transaction {
	txn := testutil.Transaction(db.Company.ID, date, details, debit, credit)
	periodID := db.Period.ID
	txn.FiscalPeriodID = &periodID
	if balance != "" {
		b := decimal.RequireFromString(balance)
		txn.Balance = &b
	}
	return txn
}

func TestOpeningBalance(t *testing.T) {
	balance := decimal.RequireFromString("15000.00")
	credit := model.Transaction{Balance: &balance, CreditAmount: decimal.RequireFromString("10000.00"), DebitAmount: decimal.Zero}
	got, err := OpeningBalance(credit)
	require.NoError(t, err)
	assert.Equal(t, "5000", got.String())

	debit := model.Transaction{Balance: &balance, DebitAmount: decimal.RequireFromString("500.00"), CreditAmount: decimal.Zero}
	got, err = OpeningBalance(debit)
	require.NoError(t, err)
	assert.Equal(t, "15500", got.String())

	_, err = OpeningBalance(model.Transaction{ID: 4})
	assert.ErrorIs(t, err, common.ErrLookup)
}

func TestGenerator_GenerateOpeningBalance(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	g := NewGenerator(db.Storage, nil, DefaultConfig())

	saved := db.MustSaveTransactions(
		periodTransaction(db, "2024-01-16", "SALARY PAYMENT FROM ACME", "0", "10000.00", "15000.00"),
		periodTransaction(db, "2024-01-31", "SERVICE FEE", "85.00", "0", "14915.00"),
	)

	entry, err := g.GenerateOpeningBalance(ctx, db.Company.ID, db.Period.ID, "")
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Contains(t, entry.Reference, OpeningBalancePrefix)
	assert.True(t, saved[0].TransactionDate.Equal(entry.EntryDate))
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, testutil.BankAccountCode, entry.Lines[0].AccountCode)
	assert.Equal(t, "5000", entry.Lines[0].DebitAmount.String())
	assert.Equal(t, testutil.OpeningBalanceAccountCode, entry.Lines[1].AccountCode)
	assert.Equal(t, "5000", entry.Lines[1].CreditAmount.String())
	assert.Nil(t, entry.Lines[0].SourceTransactionID)

	has, err := db.Storage.HasJournalEntry(ctx, saved[0].ID)
	require.NoError(t, err)
	assert.False(t, has, "opening balance must not mark the first transaction as posted")

	// Regenerating replaces the entry instead of duplicating it.
	again, err := g.GenerateOpeningBalance(ctx, db.Company.ID, db.Period.ID, "")
	require.NoError(t, err)
	assert.NotEqual(t, entry.Reference, again.Reference)

	entries, err := db.Storage.GetJournalEntries(ctx, db.Company.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, again.Reference, entries[0].Reference)
}

func TestGenerator_GenerateOpeningBalanceOverdrawn(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	g := NewGenerator(db.Storage, nil, DefaultConfig())

	db.MustSaveTransactions(periodTransaction(db, "2024-02-01", "RENT", "200.00", "0", "-700.00"))

	entry, err := g.GenerateOpeningBalance(ctx, db.Company.ID, db.Period.ID, "")
	require.NoError(t, err)
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, testutil.BankAccountCode, entry.Lines[0].AccountCode)
	assert.Equal(t, "500", entry.Lines[0].CreditAmount.String())
	assert.True(t, entry.Lines[0].DebitAmount.IsZero())
	assert.Equal(t, "500", entry.Lines[1].DebitAmount.String())
	assert.True(t, entry.IsBalanced())
}

func TestGenerator_GenerateOpeningBalanceZero(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	g := NewGenerator(db.Storage, nil, DefaultConfig())

	db.MustSaveTransactions(periodTransaction(db, "2024-01-02", "DEPOSIT", "0", "100.00", "100.00"))

	entry, err := g.GenerateOpeningBalance(ctx, db.Company.ID, db.Period.ID, "")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestGenerator_GenerateOpeningBalanceErrors(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	g := NewGenerator(db.Storage, nil, DefaultConfig())

	_, err := g.GenerateOpeningBalance(ctx, db.Company.ID, db.Period.ID, "")
	assert.ErrorIs(t, err, common.ErrNoTransactions)

	db.MustSaveTransactions(periodTransaction(db, "2024-01-02", "DEPOSIT", "0", "100.00", ""))
	_, err = g.GenerateOpeningBalance(ctx, db.Company.ID, db.Period.ID, "")
	assert.ErrorIs(t, err, common.ErrLookup)
}
