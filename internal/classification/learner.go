package classification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/pattern"
)

// DefaultLearnedPriority ranks learned company rules above the standard rules.
const DefaultLearnedPriority = 10

// RuleRepository is the subset of storage the learner needs.
type RuleRepository interface {
	FindClassificationRule(ctx context.Context, companyID int64, pattern, accountCode string) (*model.ClassificationRule, error)
	CreateClassificationRule(ctx context.Context, rule *model.ClassificationRule) error
	IncrementRuleUsage(ctx context.Context, id int64) error
}

// Learner turns manual classifications into company rules.
type Learner struct {
	store        RuleRepository
	priority     int
	keywordLimit int
}

// NewLearner creates a learner. Non-positive settings fall back to the defaults.
func NewLearner(store RuleRepository, priority, keywordLimit int) *Learner {
	if priority <= 0 {
		priority = DefaultLearnedPriority
	}
	if keywordLimit <= 0 {
		keywordLimit = pattern.DefaultKeywordLimit
	}
	return &Learner{store: store, priority: priority, keywordLimit: keywordLimit}
}

// Learn records that details belong to accountCode. An existing rule with the same pattern
// and account has its usage incremented; otherwise a new company rule is created.
func (l *Learner) Learn(ctx context.Context, companyID int64, details, accountCode, accountName string) (*model.ClassificationRule, error) {
	keywords := pattern.ExtractKeywords(details, l.keywordLimit)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: no keywords in %q", common.ErrClassificationFailed, details)
	}
	rulePattern := pattern.SignificantKeyword(keywords)

	existing, err := l.store.FindClassificationRule(ctx, companyID, rulePattern, accountCode)
	switch {
	case err == nil:
		if err := l.store.IncrementRuleUsage(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to increment rule usage: %w", err)
		}
		existing.UsageCount++
		slog.Debug("Reinforced classification rule",
			"rule_id", existing.ID,
			"pattern", existing.Pattern,
			"usage_count", existing.UsageCount)
		return existing, nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("failed to find classification rule: %w", err)
	}

	rule := &model.ClassificationRule{
		CompanyID:   &companyID,
		Pattern:     rulePattern,
		Keywords:    keywords,
		MatchType:   model.MatchContains,
		AccountCode: accountCode,
		AccountName: accountName,
		Priority:    l.priority,
		UsageCount:  1,
		IsActive:    true,
	}
	if err := pattern.ValidateRule(*rule); err != nil {
		return nil, err
	}
	if err := l.store.CreateClassificationRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create classification rule: %w", err)
	}

	slog.Info("Learned classification rule",
		"company_id", companyID,
		"pattern", rule.Pattern,
		"keywords", rule.Keywords,
		"account_code", accountCode)
	return rule, nil
}
