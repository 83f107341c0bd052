package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
)

const ruleColumns = `id, company_id, pattern, keywords, match_type, account_code, account_name,
	priority, usage_count, is_active, created_at, updated_at`

// allCompanies is passed to invalidation hooks when a standard rule changes.
const allCompanies int64 = 0

// CreateClassificationRule inserts a rule and sets its ID.
func (s *store) CreateClassificationRule(ctx context.Context, rule *model.ClassificationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rule != nil && rule.MatchType == "" {
		rule.MatchType = model.MatchContains
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO classification_rules (
			company_id, pattern, keywords, match_type, account_code, account_name,
			priority, usage_count, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.CompanyID, rule.Pattern, joinKeywords(rule.Keywords), rule.MatchType,
		rule.AccountCode, rule.AccountName, rule.Priority, rule.UsageCount, rule.IsActive,
	)
	if err != nil {
		return wrapDBError("failed to create classification rule", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get classification rule ID: %w", err)
	}

	rule.ID = id
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt

	s.hooks.rules(ruleScope(rule))
	return nil
}

// UpdateClassificationRule rewrites every mutable field of a rule.
func (s *store) UpdateClassificationRule(ctx context.Context, rule *model.ClassificationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE classification_rules
		SET pattern = ?, keywords = ?, match_type = ?, account_code = ?, account_name = ?,
			priority = ?, usage_count = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		rule.Pattern, joinKeywords(rule.Keywords), rule.MatchType, rule.AccountCode, rule.AccountName,
		rule.Priority, rule.UsageCount, rule.IsActive, rule.ID,
	)
	if err != nil {
		return wrapDBError("failed to update classification rule", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("classification rule %d: %w", rule.ID, common.ErrNotFound)
	}

	rule.UpdatedAt = time.Now()
	s.hooks.rules(ruleScope(rule))
	return nil
}

// GetClassificationRules returns the active company rules together with the standard rules,
// ordered by priority.
func (s *store) GetClassificationRules(ctx context.Context, companyID int64) ([]model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, "SELECT "+ruleColumns+` FROM classification_rules
		WHERE is_active = 1 AND (company_id = ? OR company_id IS NULL)
		ORDER BY priority DESC, id ASC`, companyID)
	if err != nil {
		return nil, wrapDBError("failed to get classification rules", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.ClassificationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

// FindClassificationRule finds a company rule, or a standard rule, by pattern and target account.
func (s *store) FindClassificationRule(ctx context.Context, companyID int64, pattern, accountCode string) (*model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, "SELECT "+ruleColumns+` FROM classification_rules
		WHERE (company_id = ? OR company_id IS NULL) AND lower(pattern) = lower(?) AND account_code = ?
		ORDER BY company_id IS NULL, id
		LIMIT 1`, companyID, pattern, accountCode)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("classification rule %q: %w", pattern, common.ErrNotFound)
		}
		return nil, err
	}
	return rule, nil
}

// IncrementRuleUsage records that a rule produced a classification.
func (s *store) IncrementRuleUsage(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	scope, err := s.ruleScopeByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.q.ExecContext(ctx, `
		UPDATE classification_rules
		SET usage_count = usage_count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, id); err != nil {
		return wrapDBError("failed to increment rule usage", err)
	}

	// Usage count takes part in rule ordering
	s.hooks.rules(scope)
	return nil
}

// DeleteClassificationRule soft-deletes a rule.
func (s *store) DeleteClassificationRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	scope, err := s.ruleScopeByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.q.ExecContext(ctx,
		`UPDATE classification_rules SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return wrapDBError("failed to delete classification rule", err)
	}

	s.hooks.rules(scope)
	return nil
}

// ruleScopeByID returns the company a stored rule belongs to, or allCompanies for a standard rule.
func (s *store) ruleScopeByID(ctx context.Context, id int64) (int64, error) {
	var companyID sql.NullInt64
	if err := s.q.QueryRowContext(ctx,
		`SELECT company_id FROM classification_rules WHERE id = ?`, id).Scan(&companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("classification rule %d: %w", id, common.ErrNotFound)
		}
		return 0, wrapDBError("failed to look up classification rule", err)
	}
	if !companyID.Valid {
		return allCompanies, nil
	}
	return companyID.Int64, nil
}

func scanRule(row rowScanner) (*model.ClassificationRule, error) {
	var (
		rule      model.ClassificationRule
		companyID sql.NullInt64
		keywords  string
	)

	err := row.Scan(&rule.ID, &companyID, &rule.Pattern, &keywords, &rule.MatchType,
		&rule.AccountCode, &rule.AccountName, &rule.Priority, &rule.UsageCount, &rule.IsActive,
		&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan classification rule: %w", err)
	}

	if companyID.Valid {
		id := companyID.Int64
		rule.CompanyID = &id
	}
	rule.Keywords = splitKeywords(keywords)

	return &rule, nil
}

func ruleScope(rule *model.ClassificationRule) int64 {
	if rule.CompanyID == nil {
		return allCompanies
	}
	return *rule.CompanyID
}

func joinKeywords(keywords []string) string {
	return strings.Join(keywords, ",")
}

func splitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	keywords := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}
