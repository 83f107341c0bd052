package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/service"
)

// ValidationError describes one transaction that cannot be processed.
type ValidationError struct {
	Reference string
	Field     string
	Reason    string
	Index     int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("transaction %d (%s): %s %s", e.Index, e.Reference, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return common.ErrValidation
}

// BatchResult summarises a batch run.
type BatchResult struct {
	Errors       []error
	Unclassified []int64
	Duration     time.Duration
	Processed    int
	Classified   int
	Failed       int
	Journaled    int
	Skipped      int
}

// Success reports whether every processed transaction went through.
func (r *BatchResult) Success() bool {
	return r.Failed == 0
}

// BatchProcessor classifies and posts transactions one at a time. A failing transaction is
// counted and reported; it never stops the batch.
type BatchProcessor struct {
	store      service.Storage
	classifier Classifier
	journal    JournalGenerator
	loadRules  RuleLoader
	onProgress func(done, total int)
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithProgress registers a callback invoked after each transaction.
func WithProgress(fn func(done, total int)) BatchOption {
	return func(p *BatchProcessor) {
		p.onProgress = fn
	}
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(store service.Storage, classifier Classifier, journal JournalGenerator, loadRules RuleLoader, opts ...BatchOption) *BatchProcessor {
	p := &BatchProcessor{
		store:      store,
		classifier: classifier,
		journal:    journal,
		loadRules:  loadRules,
		onProgress: func(int, int) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks every transaction and returns all problems joined together, or nil.
func (p *BatchProcessor) Validate(txns []model.Transaction) error {
	var errs []error
	for i, txn := range txns {
		invalid := func(field, reason string) {
			errs = append(errs, &ValidationError{Index: i, Reference: txn.Reference, Field: field, Reason: reason})
		}
		if strings.TrimSpace(txn.Reference) == "" {
			invalid("reference", "is required")
		}
		if strings.TrimSpace(txn.Details) == "" {
			invalid("details", "is required")
		}
		if txn.TransactionDate.IsZero() {
			invalid("date", "is required")
		}
		if txn.DebitAmount.IsZero() && txn.CreditAmount.IsZero() {
			invalid("amount", "must be non-zero on one side")
		}
	}
	return errors.Join(errs...)
}

// ProcessValidated validates the batch first and processes nothing if any transaction is invalid.
func (p *BatchProcessor) ProcessValidated(ctx context.Context, txns []model.Transaction, companyID int64, createdBy string) (*BatchResult, error) {
	if err := p.Validate(txns); err != nil {
		return nil, err
	}
	return p.Process(ctx, txns, companyID, createdBy), nil
}

// Process classifies and posts each transaction and always returns a result. Cancelling ctx
// stops before the next transaction; entries already posted stay committed.
func (p *BatchProcessor) Process(ctx context.Context, txns []model.Transaction, companyID int64, createdBy string) *BatchResult {
	start := time.Now()
	result := &BatchResult{}
	defer func() {
		result.Duration = time.Since(start)
		slog.Info("Batch complete",
			"company_id", companyID,
			"processed", result.Processed,
			"classified", result.Classified,
			"journaled", result.Journaled,
			"skipped", result.Skipped,
			"failed", result.Failed,
			"duration", result.Duration)
	}()

	rules, err := p.loadRules(ctx, companyID)
	if err != nil {
		result.Failed = len(txns)
		result.Errors = append(result.Errors, fmt.Errorf("failed to load classification rules: %w", err))
		return result
	}

	for i, txn := range txns {
		if err := ctx.Err(); err != nil {
			slog.Warn("Batch cancelled",
				"remaining", len(txns)-i,
				"error", err)
			result.Errors = append(result.Errors, err)
			break
		}

		result.Processed++
		if err := p.processOne(ctx, txn, rules, createdBy, result); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("transaction %d: %w", txn.ID, err))
			slog.Warn("Failed to process transaction",
				"transaction_id", txn.ID,
				"error", err)
		}
		p.onProgress(i+1, len(txns))
	}

	return result
}

func (p *BatchProcessor) processOne(ctx context.Context, txn model.Transaction, rules []model.ClassificationRule, createdBy string, result *BatchResult) error {
	if txn.ID <= 0 {
		return fmt.Errorf("%w: transaction has not been saved", common.ErrValidation)
	}

	posted, err := p.store.HasJournalEntry(ctx, txn.ID)
	if err != nil {
		return err
	}
	if posted {
		result.Skipped++
		return nil
	}

	var classification *model.ClassificationResult
	if txn.IsClassified() {
		// An existing assignment is posted as is; ReclassifyAll is the way to revisit it
		classification = &model.ClassificationResult{
			AccountCode:      txn.AccountCode,
			AccountName:      txn.AccountName,
			ConfidenceScore:  1,
			IsAutoClassified: false,
		}
	} else {
		classification = p.classifier.Classify(txn.Details, rules)
		if classification == nil {
			result.Failed++
			result.Unclassified = append(result.Unclassified, txn.ID)
			slog.Debug("Transaction left unclassified",
				"transaction_id", txn.ID,
				"details", txn.Details)
			return nil
		}
		if err := p.recordClassification(ctx, txn, classification); err != nil {
			return err
		}
	}
	result.Classified++

	if _, err := p.journal.Generate(ctx, txn, classification, createdBy); err != nil {
		return err
	}
	result.Journaled++
	return nil
}

// recordClassification persists a new account assignment and counts the rule's use.
func (p *BatchProcessor) recordClassification(ctx context.Context, txn model.Transaction, result *model.ClassificationResult) error {
	if err := p.store.UpdateClassifications(ctx, []service.ClassificationUpdate{{
		TransactionID: txn.ID,
		AccountCode:   result.AccountCode,
		AccountName:   result.AccountName,
	}}); err != nil {
		return fmt.Errorf("failed to save classification: %w", err)
	}
	if result.MatchingRule != nil && result.MatchingRule.ID > 0 {
		if err := p.store.IncrementRuleUsage(ctx, result.MatchingRule.ID); err != nil {
			slog.Warn("Failed to record rule usage",
				"rule_id", result.MatchingRule.ID,
				"error", err)
		}
	}
	return nil
}
