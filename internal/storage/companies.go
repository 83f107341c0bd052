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

// CreateCompany inserts a company and sets its ID.
func (s *store) CreateCompany(ctx context.Context, company *model.Company) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if company == nil {
		return fmt.Errorf("%w: company", ErrNilParameter)
	}
	if err := validateString(company.Name, "name"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx,
		`INSERT INTO companies (name, registration_number) VALUES (?, ?)`,
		company.Name, company.RegistrationNumber)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("company %q: %w", company.Name, common.ErrDuplicateEntry)
		}
		return wrapDBError("failed to create company", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get company ID: %w", err)
	}
	company.ID = id
	company.CreatedAt = time.Now()
	return nil
}

// GetCompany loads a company together with its fiscal periods.
func (s *store) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var company model.Company
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, registration_number, created_at FROM companies WHERE id = ?`, id,
	).Scan(&company.ID, &company.Name, &company.RegistrationNumber, &company.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company %d: %w", id, common.ErrNotFound)
		}
		return nil, wrapDBError("failed to get company", err)
	}

	periods, err := s.GetFiscalPeriods(ctx, id)
	if err != nil {
		return nil, err
	}
	company.FiscalPeriods = periods

	return &company, nil
}

// GetCompanies lists all companies without their fiscal periods.
func (s *store) GetCompanies(ctx context.Context) ([]model.Company, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, registration_number, created_at FROM companies ORDER BY name`)
	if err != nil {
		return nil, wrapDBError("failed to list companies", err)
	}
	defer func() { _ = rows.Close() }()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.RegistrationNumber, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// CreateFiscalPeriod inserts a fiscal period and sets its ID.
func (s *store) CreateFiscalPeriod(ctx context.Context, period *model.FiscalPeriod) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if period == nil {
		return fmt.Errorf("%w: fiscal period", ErrNilParameter)
	}
	if err := validateString(period.Name, "name"); err != nil {
		return err
	}
	if period.EndDate.Before(period.StartDate) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidDateRange,
			period.StartDate.Format("2006-01-02"), period.EndDate.Format("2006-01-02"))
	}

	result, err := s.q.ExecContext(ctx,
		`INSERT INTO fiscal_periods (company_id, name, start_date, end_date, is_closed) VALUES (?, ?, ?, ?, ?)`,
		period.CompanyID, period.Name, period.StartDate, period.EndDate, period.IsClosed)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("fiscal period %q: %w", period.Name, common.ErrDuplicateEntry)
		}
		return wrapDBError("failed to create fiscal period", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get fiscal period ID: %w", err)
	}
	period.ID = id
	return nil
}

// GetFiscalPeriods returns a company's fiscal periods ordered by start date.
func (s *store) GetFiscalPeriods(ctx context.Context, companyID int64) ([]model.FiscalPeriod, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, company_id, name, start_date, end_date, is_closed
		FROM fiscal_periods
		WHERE company_id = ?
		ORDER BY start_date, id`, companyID)
	if err != nil {
		return nil, wrapDBError("failed to get fiscal periods", err)
	}
	defer func() { _ = rows.Close() }()

	var periods []model.FiscalPeriod
	for rows.Next() {
		var p model.FiscalPeriod
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.StartDate, &p.EndDate, &p.IsClosed); err != nil {
			return nil, fmt.Errorf("failed to scan fiscal period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}
