package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Companies, fiscal periods, accounts, transactions and classification rules",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS companies (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					registration_number TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS fiscal_periods (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					company_id INTEGER NOT NULL,
					name TEXT NOT NULL,
					start_date DATETIME NOT NULL,
					end_date DATETIME NOT NULL,
					is_closed BOOLEAN NOT NULL DEFAULT 0,
					UNIQUE(company_id, name),
					FOREIGN KEY (company_id) REFERENCES companies(id)
				)`,
				`CREATE TABLE IF NOT EXISTS accounts (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					company_id INTEGER NOT NULL,
					code TEXT NOT NULL,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					category TEXT NOT NULL DEFAULT '',
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(company_id, code),
					FOREIGN KEY (company_id) REFERENCES companies(id)
				)`,
				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					company_id INTEGER NOT NULL,
					fiscal_period_id INTEGER,
					reference TEXT NOT NULL,
					transaction_date DATETIME NOT NULL,
					details TEXT NOT NULL,
					debit_amount TEXT NOT NULL DEFAULT '0',
					credit_amount TEXT NOT NULL DEFAULT '0',
					balance TEXT,
					account_code TEXT,
					account_name TEXT,
					source_file TEXT NOT NULL DEFAULT '',
					account_number TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(company_id, reference),
					FOREIGN KEY (company_id) REFERENCES companies(id),
					FOREIGN KEY (fiscal_period_id) REFERENCES fiscal_periods(id)
				)`,
				`CREATE TABLE IF NOT EXISTS classification_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					company_id INTEGER,
					pattern TEXT NOT NULL,
					keywords TEXT NOT NULL DEFAULT '',
					match_type TEXT NOT NULL DEFAULT 'CONTAINS',
					account_code TEXT NOT NULL,
					account_name TEXT NOT NULL,
					priority INTEGER NOT NULL DEFAULT 0,
					usage_count INTEGER NOT NULL DEFAULT 0,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (company_id) REFERENCES companies(id)
				)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Journal entries and lines",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS journal_entries (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					company_id INTEGER NOT NULL,
					fiscal_period_id INTEGER,
					reference TEXT UNIQUE NOT NULL,
					entry_date DATETIME NOT NULL,
					description TEXT NOT NULL,
					created_by TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (company_id) REFERENCES companies(id),
					FOREIGN KEY (fiscal_period_id) REFERENCES fiscal_periods(id)
				)`,
				`CREATE TABLE IF NOT EXISTS journal_entry_lines (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					journal_entry_id INTEGER NOT NULL,
					account_id INTEGER NOT NULL,
					account_code TEXT NOT NULL,
					debit_amount TEXT NOT NULL DEFAULT '0',
					credit_amount TEXT NOT NULL DEFAULT '0',
					description TEXT NOT NULL DEFAULT '',
					source_transaction_id INTEGER,
					FOREIGN KEY (journal_entry_id) REFERENCES journal_entries(id) ON DELETE CASCADE,
					FOREIGN KEY (account_id) REFERENCES accounts(id),
					FOREIGN KEY (source_transaction_id) REFERENCES transactions(id)
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Lookup indexes",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_transactions_company_date ON transactions(company_id, transaction_date)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_period ON transactions(fiscal_period_id)`,
				`CREATE INDEX IF NOT EXISTS idx_rules_company ON classification_rules(company_id, is_active)`,
				`CREATE INDEX IF NOT EXISTS idx_journal_company_period ON journal_entries(company_id, fiscal_period_id)`,
				`CREATE INDEX IF NOT EXISTS idx_journal_lines_entry ON journal_entry_lines(journal_entry_id)`,
				`CREATE INDEX IF NOT EXISTS idx_journal_lines_source ON journal_entry_lines(source_transaction_id)`,
			})
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
