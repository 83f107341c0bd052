package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const januaryText = `Statement Period: 01 January 2024 to 31 January 2024
Page 1 of 2
Details Service Fee Debits Credits Date Balance
01 01 BALANCE BROUGHT FORWARD 5,000.00
03 01 DEBIT ORDER OUTSURANCE 450.00 4,550.00
POLICY 88213
05 01 ENGEN GARAGE SANDTON 620.35 3,929.65
Continued on next page
Page 2 of 2
16 01 SALARY PAYMENT FROM ACME 10,000.00 13,929.65
20 01 CASH DEPOSIT 1 500.00 15 429.65
31 01 ## MONTHLY SERVICE FEE 85.00 15,344.65
Closing Balance 15,344.65
`

func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--database", dbPath, "--log-level", "error"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandWorkflow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	dbPath := filepath.Join(dir, "books.db")
	stmtPath := filepath.Join(dir, "jan.txt")
	require.NoError(t, os.WriteFile(stmtPath, []byte(januaryText), 0o600))

	steps := []struct {
		name string
		args []string
		want string
	}{
		{name: "create company", args: []string{"company", "add", "--name", "Acme Trading"}, want: "Created company 1"},
		{name: "create period", args: []string{"period", "add", "-c", "1", "--name", "FY2024", "--start", "2024-01-01", "--end", "2024-12-31"}, want: "FY2024"},
		{name: "seed rules", args: []string{"rules", "seed"}, want: "standard rules"},
		{name: "dry run", args: []string{"import", "-c", "1", "--dry-run", stmtPath}, want: "ENGEN GARAGE SANDTON"},
		{name: "import", args: []string{"import", "-c", "1", "--dry-run=false", stmtPath}, want: "Saved: 5"},
		{name: "reimport", args: []string{"import", "-c", "1", stmtPath}, want: "Duplicates ignored: 5"},
		{name: "journal", args: []string{"journal", "-c", "1", "--no-progress"}, want: "Journal entries: 5"},
		{name: "journal again", args: []string{"journal", "-c", "1", "--no-progress"}, want: "Already posted: 5"},
		{name: "opening balance", args: []string{"opening-balance", "-c", "1", "--period", "1"}, want: "5,000.00"},
		{name: "migration status", args: []string{"migrate", "--status"}, want: "Current version"},
	}

	for _, step := range steps {
		out, err := execute(t, dbPath, step.args...)
		require.NoError(t, err, "%s: %s", step.name, out)
		assert.Contains(t, out, step.want, step.name)
	}
}

func TestRulesLearnUnknownTransaction(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	_, err := execute(t, filepath.Join(dir, "books.db"), "rules", "learn", "--transaction", "7", "--account", "8200-001")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	files, err := expandFiles([]string{filepath.Join(dir, "*.pdf"), filepath.Join(dir, "notes.txt")})
	require.NoError(t, err)
	assert.Len(t, files, 3)

	_, err = expandFiles([]string{filepath.Join(dir, "*.ofx")})
	require.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("start", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = parseDate("start", "01/03/2024")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.True(t, strings.Contains(userErr.UserMessage, "--start"))
}

func TestServiceConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Ledger.BankAccountCode = "1000"
	cfg.Ledger.OpeningBalanceAccountCode = "3000"
	cfg.Classification.Floor = 0.4
	cfg.Classification.AutoThreshold = 0.7
	cfg.Classification.LearnedKeywords = 2
	cfg.Statement.ContinuationCreditOverride = true
	cfg.Retry.MaxAttempts = 5

	ec := serviceConfig(cfg)
	assert.Equal(t, "1000", ec.Journal.BankAccountCode)
	assert.Equal(t, "3000", ec.Journal.OpeningBalanceAccountCode)
	assert.InDelta(t, 0.4, ec.Floor, 1e-9)
	assert.InDelta(t, 0.7, ec.AutoThreshold, 1e-9)
	assert.Equal(t, 2, ec.LearnedKeywords)
	assert.True(t, ec.Format.ContinuationCreditOverride)
	assert.Equal(t, 5, ec.Journal.Retry.MaxAttempts)
}
