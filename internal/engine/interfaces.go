package engine

import (
	"context"

	"github.com/sthwalo/acc-sub003/internal/model"
)

// Classifier defines the contract for rule-based transaction classification.
type Classifier interface {
	Classify(details string, rules []model.ClassificationRule) *model.ClassificationResult
}

// JournalGenerator defines the contract for posting a classified transaction.
type JournalGenerator interface {
	Generate(ctx context.Context, txn model.Transaction, result *model.ClassificationResult, createdBy string) (*model.JournalEntry, error)
}

// LineSource extracts statement lines and metadata from a document.
type LineSource interface {
	ExtractLines(ctx context.Context, path string) ([]string, error)
	AccountNumber() string
	StatementPeriod() string
}

// RuleLoader returns the classification rules that apply to a company.
type RuleLoader func(ctx context.Context, companyID int64) ([]model.ClassificationRule, error)
