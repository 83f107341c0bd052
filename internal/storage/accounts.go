package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// CreateAccount inserts an account into a company's chart of accounts.
func (s *store) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx,
		`INSERT INTO accounts (company_id, code, name, type, category, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
		account.CompanyID, account.Code, account.Name, account.Type, account.Category, account.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", account.Code, common.ErrDuplicateEntry)
		}
		return wrapDBError("failed to create account", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get account ID: %w", err)
	}
	account.ID = id
	account.CreatedAt = time.Now()

	s.hooks.accounts(account.CompanyID)
	return nil
}

// GetAccountByCode looks up an account by its code within a company.
func (s *store) GetAccountByCode(ctx context.Context, companyID int64, code string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(code, "code"); err != nil {
		return nil, err
	}

	var account model.Account
	err := s.q.QueryRowContext(ctx, `
		SELECT id, company_id, code, name, type, category, is_active, created_at
		FROM accounts
		WHERE company_id = ? AND code = ?`, companyID, code,
	).Scan(&account.ID, &account.CompanyID, &account.Code, &account.Name,
		&account.Type, &account.Category, &account.IsActive, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", code, common.ErrNotFound)
		}
		return nil, wrapDBError("failed to get account", err)
	}
	return &account, nil
}

// GetAccounts returns a company's chart of accounts ordered by code.
func (s *store) GetAccounts(ctx context.Context, companyID int64) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, company_id, code, name, type, category, is_active, created_at
		FROM accounts
		WHERE company_id = ?
		ORDER BY code`, companyID)
	if err != nil {
		return nil, wrapDBError("failed to get accounts", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.Category, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
