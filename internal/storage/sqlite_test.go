package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func createTestCompany(t *testing.T, store *SQLiteStorage) *model.Company {
	t.Helper()
	ctx := context.Background()

	company := &model.Company{Name: "Acme Trading"}
	require.NoError(t, store.CreateCompany(ctx, company))

	period := &model.FiscalPeriod{
		CompanyID: company.ID,
		Name:      "FY2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.CreateFiscalPeriod(ctx, period))
	company.FiscalPeriods = []model.FiscalPeriod{*period}
	return company
}

func makeTransaction(companyID int64, day int, details, debit, credit string) model.Transaction {
	txn := model.Transaction{
		CompanyID:       companyID,
		TransactionDate: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Details:         details,
		DebitAmount:     decimal.RequireFromString(debit),
		CreditAmount:    decimal.RequireFromString(credit),
		SourceFile:      "jan.pdf",
	}
	txn.Reference = txn.GenerateReference()
	return txn
}

type recordingInvalidator struct {
	rules    []int64
	accounts []int64
}

func (r *recordingInvalidator) InvalidateRules(companyID int64) { r.rules = append(r.rules, companyID) }

func (r *recordingInvalidator) InvalidateAccounts(companyID int64) {
	r.accounts = append(r.accounts, companyID)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestCompanyAndFiscalPeriods(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	company := createTestCompany(t, store)

	loaded, err := store.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Trading", loaded.Name)
	require.Len(t, loaded.FiscalPeriods, 1)
	assert.Equal(t, "FY2024", loaded.FiscalPeriods[0].Name)

	err = store.CreateCompany(ctx, &model.Company{Name: "Acme Trading"})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, err = store.GetCompany(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.CreateFiscalPeriod(ctx, &model.FiscalPeriod{
		CompanyID: company.ID,
		Name:      "backwards",
		StartDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestSaveTransactions_IgnoresDuplicates(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	company := createTestCompany(t, store)
	periodID := company.FiscalPeriods[0].ID

	txns := []model.Transaction{
		makeTransaction(company.ID, 16, "SALARY PAYMENT FROM ACME", "0", "10000.00"),
		makeTransaction(company.ID, 17, "ENGEN GARAGE", "450.25", "0"),
	}
	txns[0].FiscalPeriodID = &periodID
	balance := decimal.RequireFromString("15000.00")
	txns[0].Balance = &balance

	saved, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotZero(t, saved[0].ID)
	assert.NotZero(t, saved[1].ID)

	again, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)
	assert.Equal(t, saved[0].ID, again[0].ID)
	assert.Equal(t, saved[1].ID, again[1].ID)

	all, err := store.GetTransactions(ctx, service.TransactionFilter{CompanyID: company.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "10000", all[0].CreditAmount.String())
	assert.True(t, all[0].DebitAmount.IsZero())
	require.NotNil(t, all[0].Balance)
	assert.True(t, all[0].Balance.Equal(balance))
	require.NotNil(t, all[0].FiscalPeriodID)
	assert.Nil(t, all[1].Balance)
	assert.False(t, all[1].IsClassified())

	first, err := store.GetFirstTransaction(ctx, company.ID, periodID)
	require.NoError(t, err)
	assert.Equal(t, saved[0].ID, first.ID)
}

func TestSaveTransactions_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	company := createTestCompany(t, store)

	tests := []struct {
		name string
		txn  model.Transaction
	}{
		{name: "both sides zero", txn: makeTransaction(company.ID, 1, "NOTHING", "0", "0")},
		{name: "both sides set", txn: makeTransaction(company.ID, 1, "BOTH", "1", "1")},
		{name: "missing details", txn: makeTransaction(company.ID, 1, " ", "1", "0")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SaveTransactions(ctx, []model.Transaction{tt.txn})
			assert.ErrorIs(t, err, ErrInvalidTransaction)
		})
	}
}

func TestUpdateClassifications(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	company := createTestCompany(t, store)

	saved, err := store.SaveTransactions(ctx, []model.Transaction{
		makeTransaction(company.ID, 3, "MONTHLY SERVICE FEE", "85.00", "0"),
		makeTransaction(company.ID, 4, "UNKNOWN", "12.00", "0"),
	})
	require.NoError(t, err)

	err = store.UpdateClassifications(ctx, []service.ClassificationUpdate{
		{TransactionID: saved[0].ID, AccountCode: "8800-001", AccountName: "Bank Charges"},
	})
	require.NoError(t, err)

	txn, err := store.GetTransactionByID(ctx, saved[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "8800-001", txn.AccountCode)
	assert.Equal(t, "Bank Charges", txn.AccountName)

	unclassified, err := store.GetTransactions(ctx, service.TransactionFilter{CompanyID: company.ID, UnclassifiedOnly: true})
	require.NoError(t, err)
	require.Len(t, unclassified, 1)
	assert.Equal(t, saved[1].ID, unclassified[0].ID)

	err = store.UpdateClassifications(ctx, []service.ClassificationUpdate{
		{TransactionID: 12345, AccountCode: "8800-001"},
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAccounts(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	company := createTestCompany(t, store)

	inv := &recordingInvalidator{}
	store.SetInvalidator(inv)

	account := &model.Account{CompanyID: company.ID, Code: "1100", Name: "Bank", Type: model.AccountTypeAsset, IsActive: true}
	require.NoError(t, store.CreateAccount(ctx, account))
	assert.NotZero(t, account.ID)
	assert.Equal(t, []int64{company.ID}, inv.accounts)

	found, err := store.GetAccountByCode(ctx, company.ID, "1100")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
	assert.Equal(t, model.AccountTypeAsset, found.Type)

	_, err = store.GetAccountByCode(ctx, company.ID, "9999")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.CreateAccount(ctx, &model.Account{CompanyID: company.ID, Code: "1100", Name: "Dup", Type: model.AccountTypeAsset})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	err = store.CreateAccount(ctx, &model.Account{CompanyID: company.ID, Code: "1200", Name: "Bad", Type: "WIDGET"})
	assert.ErrorIs(t, err, ErrInvalidAccount)
}

func TestClassificationRules(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	company := createTestCompany(t, store)
	other := &model.Company{Name: "Other Co"}
	require.NoError(t, store.CreateCompany(ctx, other))

	inv := &recordingInvalidator{}
	store.SetInvalidator(inv)

	standard := &model.ClassificationRule{Pattern: "service fee", AccountCode: "8800-001", AccountName: "Bank Charges", Priority: 5, IsActive: true}
	require.NoError(t, store.CreateClassificationRule(ctx, standard))
	assert.Equal(t, model.MatchContains, standard.MatchType)

	companyID := company.ID
	learned := &model.ClassificationRule{
		CompanyID: &companyID, Pattern: "engen", Keywords: []string{"engen", "garage"},
		AccountCode: "8300-001", AccountName: "Fuel", Priority: 10, IsActive: true,
	}
	require.NoError(t, store.CreateClassificationRule(ctx, learned))

	otherID := other.ID
	require.NoError(t, store.CreateClassificationRule(ctx, &model.ClassificationRule{
		CompanyID: &otherID, Pattern: "rent", AccountCode: "8200-001", AccountName: "Rent", IsActive: true,
	}))

	assert.Equal(t, []int64{allCompanies, company.ID, other.ID}, inv.rules)

	rules, err := store.GetClassificationRules(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "engen", rules[0].Pattern)
	assert.Equal(t, []string{"engen", "garage"}, rules[0].Keywords)
	assert.False(t, rules[0].IsStandard())
	assert.True(t, rules[1].IsStandard())

	inv.rules = nil
	require.NoError(t, store.IncrementRuleUsage(ctx, learned.ID))
	require.NoError(t, store.IncrementRuleUsage(ctx, standard.ID))
	assert.Equal(t, []int64{company.ID, allCompanies}, inv.rules)
	assert.ErrorIs(t, store.IncrementRuleUsage(ctx, 9999), common.ErrNotFound)

	found, err := store.FindClassificationRule(ctx, company.ID, "ENGEN", "8300-001")
	require.NoError(t, err)
	assert.Equal(t, 1, found.UsageCount)

	_, err = store.FindClassificationRule(ctx, company.ID, "rent", "8200-001")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.DeleteClassificationRule(ctx, learned.ID))
	rules, err = store.GetClassificationRules(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	err = store.CreateClassificationRule(ctx, &model.ClassificationRule{Pattern: "x", AccountCode: "1", MatchType: "FUZZY"})
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestJournalEntries(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	company := createTestCompany(t, store)
	periodID := company.FiscalPeriods[0].ID

	bank := &model.Account{CompanyID: company.ID, Code: "1100", Name: "Bank", Type: model.AccountTypeAsset, IsActive: true}
	equity := &model.Account{CompanyID: company.ID, Code: "3200", Name: "Opening Balance Equity", Type: model.AccountTypeEquity, IsActive: true}
	require.NoError(t, store.CreateAccount(ctx, bank))
	require.NoError(t, store.CreateAccount(ctx, equity))

	saved, err := store.SaveTransactions(ctx, []model.Transaction{makeTransaction(company.ID, 5, "DEPOSIT", "0", "250.00")})
	require.NoError(t, err)
	txnID := saved[0].ID

	amount := decimal.RequireFromString("250.00")
	newEntry := func(ref string, source *int64) *model.JournalEntry {
		return &model.JournalEntry{
			CompanyID:      company.ID,
			FiscalPeriodID: &periodID,
			Reference:      ref,
			EntryDate:      time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Description:    "test",
			CreatedBy:      "tester",
			Lines: []model.JournalEntryLine{
				{AccountID: bank.ID, AccountCode: bank.Code, DebitAmount: amount, CreditAmount: decimal.Zero, SourceTransactionID: source},
				{AccountID: equity.ID, AccountCode: equity.Code, DebitAmount: decimal.Zero, CreditAmount: amount, SourceTransactionID: source},
			},
		}
	}

	entry := newEntry("JE-1", &txnID)
	require.NoError(t, store.SaveJournalEntry(ctx, entry))
	assert.NotZero(t, entry.ID)

	has, err := store.HasJournalEntry(ctx, txnID)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, store.SaveJournalEntry(ctx, newEntry("OB-1", nil)))
	require.NoError(t, store.SaveJournalEntry(ctx, newEntry("OB-2", nil)))
	assert.ErrorIs(t, store.SaveJournalEntry(ctx, newEntry("OB-2", nil)), common.ErrDuplicateEntry)

	entries, err := store.GetJournalEntries(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Len(t, e.Lines, 2)
		assert.True(t, e.IsBalanced())
	}

	deleted, err := store.DeleteJournalEntriesByPrefix(ctx, company.ID, periodID, "OB-")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	entries, err = store.GetJournalEntries(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "JE-1", entries[0].Reference)
}

func TestBeginTx_RollbackDiscardsWrites(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	company := createTestCompany(t, store)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.CreateAccount(ctx, &model.Account{
		CompanyID: company.ID, Code: "8800-001", Name: "Bank Charges", Type: model.AccountTypeExpense, IsActive: true,
	}))
	_, err = tx.GetAccountByCode(ctx, company.ID, "8800-001")
	require.NoError(t, err)
	require.Error(t, tx.Migrate(ctx))
	require.NoError(t, tx.Rollback())

	_, err = store.GetAccountByCode(ctx, company.ID, "8800-001")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
