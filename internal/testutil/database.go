// Package testutil provides in-memory database fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/service"
	"github.com/sthwalo/acc-sub003/internal/storage"
)

// Well-known ledger accounts seeded by SetupTestDB.
const (
	BankAccountCode           = "1100"
	BankAccountName           = "Bank - Current Account"
	OpeningBalanceAccountCode = "3200"
	OpeningBalanceAccountName = "Opening Balance Equity"
)

// TestDB represents a test database with a seeded company.
type TestDB struct {
	Storage *storage.SQLiteStorage
	Company *model.Company
	Period  *model.FiscalPeriod
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database holding one company with a 2024 fiscal
// period, a bank account and an opening balance equity account.
// It automatically handles cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	saved := db.MustSaveTransactions(testutil.Transaction(db.Company.ID, "2024-01-16", "SALARY", "0", "100.00"))
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	db := SetupEmptyTestDB(t)
	ctx := context.Background()

	company := &model.Company{Name: "Test Company", RegistrationNumber: "2024/000001/07"}
	if err := db.Storage.CreateCompany(ctx, company); err != nil {
		t.Fatalf("failed to create company: %v", err)
	}

	period := &model.FiscalPeriod{
		CompanyID: company.ID,
		Name:      "FY2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Storage.CreateFiscalPeriod(ctx, period); err != nil {
		t.Fatalf("failed to create fiscal period: %v", err)
	}
	company.FiscalPeriods = []model.FiscalPeriod{*period}

	db.Company = company
	db.Period = period

	db.MustCreateAccount(BankAccountCode, BankAccountName, model.AccountTypeAsset)
	db.MustCreateAccount(OpeningBalanceAccountCode, OpeningBalanceAccountName, model.AccountTypeEquity)
	return db
}

// SetupEmptyTestDB creates a migrated in-memory database without any data.
func SetupEmptyTestDB(t *testing.T) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// MustCreateAccount adds an account to the seeded company or fails the test.
func (db *TestDB) MustCreateAccount(code, name string, accountType model.AccountType) *model.Account {
	db.t.Helper()

	account := &model.Account{
		CompanyID: db.Company.ID,
		Code:      code,
		Name:      name,
		Type:      accountType,
		IsActive:  true,
	}
	if err := db.Storage.CreateAccount(context.Background(), account); err != nil {
		db.t.Fatalf("failed to create account %s: %v", code, err)
	}
	return account
}

// MustSaveTransactions persists transactions and returns them with their IDs.
func (db *TestDB) MustSaveTransactions(txns ...model.Transaction) []model.Transaction {
	db.t.Helper()

	saved, err := db.Storage.SaveTransactions(context.Background(), txns)
	if err != nil {
		db.t.Fatalf("failed to save transactions: %v", err)
	}
	return saved
}

// Transaction builds an unsaved transaction dated YYYY-MM-DD with its reference filled in.
func Transaction(companyID int64, date, details, debit, credit string) model.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(fmt.Sprintf("testutil: bad date %q: %v", date, err))
	}

	txn := model.Transaction{
		CompanyID:       companyID,
		TransactionDate: d,
		Details:         details,
		DebitAmount:     decimal.RequireFromString(debit),
		CreditAmount:    decimal.RequireFromString(credit),
	}
	txn.Reference = txn.GenerateReference()
	return txn
}

// WithTransaction executes the given function within a database transaction.
// The transaction is automatically rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
