package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/service"
)

const transactionColumns = `id, company_id, fiscal_period_id, reference, transaction_date, details,
	debit_amount, credit_amount, balance, account_code, account_name, source_file, account_number, created_at`

// SaveTransactions inserts transactions in bulk, ignoring ones whose reference already exists.
// The returned slice carries the database ID of every transaction, new or existing.
func (s *store) SaveTransactions(ctx context.Context, transactions []model.Transaction) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransactions(transactions); err != nil {
		return nil, err
	}

	saved := make([]model.Transaction, len(transactions))
	copy(saved, transactions)

	err := s.inTx(ctx, func(q querier) error {
		for i := range saved {
			txn := &saved[i]
			if txn.Reference == "" {
				txn.Reference = txn.GenerateReference()
			}

			result, err := q.ExecContext(ctx, `
				INSERT INTO transactions (
					company_id, fiscal_period_id, reference, transaction_date, details,
					debit_amount, credit_amount, balance, account_code, account_name,
					source_file, account_number
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(company_id, reference) DO NOTHING`,
				txn.CompanyID, txn.FiscalPeriodID, txn.Reference, txn.TransactionDate, txn.Details,
				txn.DebitAmount, txn.CreditAmount, decimal.NullDecimal{Decimal: derefDecimal(txn.Balance), Valid: txn.Balance != nil},
				nullString(txn.AccountCode), nullString(txn.AccountName),
				txn.SourceFile, txn.AccountNumber,
			)
			if err != nil {
				return wrapDBError("failed to insert transaction", err)
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			if affected == 1 {
				if txn.ID, err = result.LastInsertId(); err != nil {
					return fmt.Errorf("failed to get transaction ID: %w", err)
				}
				txn.CreatedAt = time.Now()
				continue
			}

			if err := q.QueryRowContext(ctx,
				`SELECT id FROM transactions WHERE company_id = ? AND reference = ?`,
				txn.CompanyID, txn.Reference).Scan(&txn.ID); err != nil {
				return wrapDBError("failed to look up existing transaction", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetTransactions returns transactions matching the filter in date order.
func (s *store) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.CompanyID > 0 {
		where = append(where, "company_id = ?")
		args = append(args, filter.CompanyID)
	}
	if filter.FiscalPeriodID != nil {
		where = append(where, "fiscal_period_id = ?")
		args = append(args, *filter.FiscalPeriodID)
	}
	if filter.StartDate != nil {
		where = append(where, "transaction_date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		where = append(where, "transaction_date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.UnclassifiedOnly {
		where = append(where, "(account_code IS NULL OR account_code = '')")
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY transaction_date, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("failed to query transactions", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

// GetTransactionByID loads a single transaction.
func (s *store) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return txn, nil
}

// GetFirstTransaction returns the chronologically first transaction of a fiscal period.
func (s *store) GetFirstTransaction(ctx context.Context, companyID, fiscalPeriodID int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, "SELECT "+transactionColumns+` FROM transactions
		WHERE company_id = ? AND fiscal_period_id = ?
		ORDER BY transaction_date, id
		LIMIT 1`, companyID, fiscalPeriodID)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no transactions in fiscal period %d: %w", fiscalPeriodID, common.ErrNotFound)
		}
		return nil, err
	}
	return txn, nil
}

// UpdateClassifications writes account assignments in a single transaction.
func (s *store) UpdateClassifications(ctx context.Context, updates []service.ClassificationUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	return s.inTx(ctx, func(q querier) error {
		for _, u := range updates {
			if err := validateString(u.AccountCode, "accountCode"); err != nil {
				return err
			}
			result, err := q.ExecContext(ctx,
				`UPDATE transactions SET account_code = ?, account_name = ? WHERE id = ?`,
				u.AccountCode, u.AccountName, u.TransactionID)
			if err != nil {
				return wrapDBError("failed to update classification", err)
			}
			if n, _ := result.RowsAffected(); n == 0 {
				return fmt.Errorf("transaction %d: %w", u.TransactionID, common.ErrNotFound)
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn         model.Transaction
		periodID    sql.NullInt64
		balance     decimal.NullDecimal
		accountCode sql.NullString
		accountName sql.NullString
	)

	err := row.Scan(
		&txn.ID, &txn.CompanyID, &periodID, &txn.Reference, &txn.TransactionDate, &txn.Details,
		&txn.DebitAmount, &txn.CreditAmount, &balance, &accountCode, &accountName,
		&txn.SourceFile, &txn.AccountNumber, &txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if periodID.Valid {
		id := periodID.Int64
		txn.FiscalPeriodID = &id
	}
	if balance.Valid {
		b := balance.Decimal
		txn.Balance = &b
	}
	txn.AccountCode = accountCode.String
	txn.AccountName = accountName.String

	return &txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
