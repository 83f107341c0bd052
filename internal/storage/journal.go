package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// SaveJournalEntry inserts an entry header and its lines atomically.
func (s *store) SaveJournalEntry(ctx context.Context, entry *model.JournalEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateJournalEntry(entry); err != nil {
		return err
	}

	return s.inTx(ctx, func(q querier) error {
		result, err := q.ExecContext(ctx, `
			INSERT INTO journal_entries (company_id, fiscal_period_id, reference, entry_date, description, created_by)
			VALUES (?, ?, ?, ?, ?, ?)`,
			entry.CompanyID, entry.FiscalPeriodID, entry.Reference, entry.EntryDate, entry.Description, entry.CreatedBy)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("journal entry %s: %w", entry.Reference, common.ErrDuplicateEntry)
			}
			return wrapDBError("failed to insert journal entry", err)
		}

		entryID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get journal entry ID: %w", err)
		}

		for i := range entry.Lines {
			line := &entry.Lines[i]
			lineResult, err := q.ExecContext(ctx, `
				INSERT INTO journal_entry_lines (
					journal_entry_id, account_id, account_code, debit_amount, credit_amount,
					description, source_transaction_id
				) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				entryID, line.AccountID, line.AccountCode, line.DebitAmount, line.CreditAmount,
				line.Description, line.SourceTransactionID)
			if err != nil {
				return wrapDBError("failed to insert journal entry line", err)
			}
			if line.ID, err = lineResult.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get journal entry line ID: %w", err)
			}
			line.JournalEntryID = entryID
		}

		entry.ID = entryID
		entry.CreatedAt = time.Now()
		return nil
	})
}

// HasJournalEntry reports whether a transaction has already been posted.
func (s *store) HasJournalEntry(ctx context.Context, transactionID int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM journal_entry_lines WHERE source_transaction_id = ?)`,
		transactionID).Scan(&exists)
	if err != nil {
		return false, wrapDBError("failed to check journal entry", err)
	}
	return exists, nil
}

// GetJournalEntries returns a company's journal entries with their lines, in date order.
func (s *store) GetJournalEntries(ctx context.Context, companyID int64) ([]model.JournalEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT e.id, e.company_id, e.fiscal_period_id, e.reference, e.entry_date, e.description,
			e.created_by, e.created_at,
			l.id, l.account_id, l.account_code, l.debit_amount, l.credit_amount, l.description,
			l.source_transaction_id
		FROM journal_entries e
		JOIN journal_entry_lines l ON l.journal_entry_id = e.id
		WHERE e.company_id = ?
		ORDER BY e.entry_date, e.id, l.id`, companyID)
	if err != nil {
		return nil, wrapDBError("failed to get journal entries", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.JournalEntry
	index := make(map[int64]int)
	for rows.Next() {
		var (
			entry    model.JournalEntry
			line     model.JournalEntryLine
			periodID sql.NullInt64
			sourceID sql.NullInt64
		)
		if err := rows.Scan(&entry.ID, &entry.CompanyID, &periodID, &entry.Reference, &entry.EntryDate,
			&entry.Description, &entry.CreatedBy, &entry.CreatedAt,
			&line.ID, &line.AccountID, &line.AccountCode, &line.DebitAmount, &line.CreditAmount,
			&line.Description, &sourceID); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}

		if periodID.Valid {
			id := periodID.Int64
			entry.FiscalPeriodID = &id
		}
		if sourceID.Valid {
			id := sourceID.Int64
			line.SourceTransactionID = &id
		}
		line.JournalEntryID = entry.ID

		pos, ok := index[entry.ID]
		if !ok {
			pos = len(entries)
			index[entry.ID] = pos
			entries = append(entries, entry)
		}
		entries[pos].Lines = append(entries[pos].Lines, line)
	}
	return entries, rows.Err()
}

// DeleteJournalEntriesByPrefix removes a period's entries whose reference starts with prefix.
func (s *store) DeleteJournalEntriesByPrefix(ctx context.Context, companyID, fiscalPeriodID int64, prefix string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(prefix, "prefix"); err != nil {
		return 0, err
	}

	var deleted int
	err := s.inTx(ctx, func(q querier) error {
		const match = `SELECT id FROM journal_entries
			WHERE company_id = ? AND fiscal_period_id = ? AND substr(reference, 1, ?) = ?`

		if _, err := q.ExecContext(ctx,
			`DELETE FROM journal_entry_lines WHERE journal_entry_id IN (`+match+`)`,
			companyID, fiscalPeriodID, len(prefix), prefix); err != nil {
			return wrapDBError("failed to delete journal entry lines", err)
		}

		result, err := q.ExecContext(ctx,
			`DELETE FROM journal_entries WHERE id IN (`+match+`)`,
			companyID, fiscalPeriodID, len(prefix), prefix)
		if err != nil {
			return wrapDBError("failed to delete journal entries", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		deleted = int(n)
		return nil
	})
	return deleted, err
}
