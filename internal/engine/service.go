// Package engine wires the statement parser, rule engine and journal generator into the
// end-to-end import, classification and posting workflows.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/assembler"
	"github.com/sthwalo/acc-sub003/internal/cache"
	"github.com/sthwalo/acc-sub003/internal/classification"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/journal"
	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/pattern"
	"github.com/sthwalo/acc-sub003/internal/service"
	"github.com/sthwalo/acc-sub003/internal/statement"
)

// Config holds the tunables of the pipeline.
type Config struct {
	Format          statement.Format
	Journal         journal.Config
	Floor           float64
	AutoThreshold   float64
	LearnedPriority int
	LearnedKeywords int
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Format:          statement.StandardFormat(),
		Journal:         journal.DefaultConfig(),
		Floor:           model.ConfidenceFloor,
		AutoThreshold:   model.AutoClassifyThreshold,
		LearnedPriority: classification.DefaultLearnedPriority,
		LearnedKeywords: pattern.DefaultKeywordLimit,
	}
}

// invalidatable is implemented by storage that can notify a cache of writes.
type invalidatable interface {
	SetInvalidator(inv service.CacheInvalidator)
}

// Service is the core facade over the pipeline.
type Service struct {
	store      service.Storage
	cache      *cache.Cache
	parser     *statement.Parser
	classifier *classification.Engine
	generator  *journal.Generator
	learner    *classification.Learner
	batch      *BatchProcessor
	cfg        Config
}

// NewService creates a service. A nil cache gets a private one; storage that supports
// invalidation is connected to it.
func NewService(store service.Storage, c *cache.Cache, cfg Config, opts ...statement.Option) *Service {
	if c == nil {
		c = cache.New()
	}
	if inv, ok := store.(invalidatable); ok {
		inv.SetInvalidator(c)
	}

	s := &Service{
		store:      store,
		cache:      c,
		parser:     statement.NewParser(cfg.Format, opts...),
		classifier: classification.NewEngine(classification.WithThresholds(cfg.Floor, cfg.AutoThreshold)),
		generator:  journal.NewGenerator(store, c, cfg.Journal),
		learner:    classification.NewLearner(store, cfg.LearnedPriority, cfg.LearnedKeywords),
		cfg:        cfg,
	}
	s.batch = NewBatchProcessor(store, s.classifier, s.generator, s.Rules)
	return s
}

// Batch returns a batch processor sharing the service's collaborators.
func (s *Service) Batch(opts ...BatchOption) *BatchProcessor {
	if len(opts) == 0 {
		return s.batch
	}
	return NewBatchProcessor(s.store, s.classifier, s.generator, s.Rules, opts...)
}

// Generator exposes the journal generator.
func (s *Service) Generator() *journal.Generator {
	return s.generator
}

// StatementMeta identifies the document a set of lines came from.
type StatementMeta struct {
	SourceFile    string
	AccountNumber string
	Period        string
}

// ParseStatement parses lines and assembles the transactions for company without saving them.
func (s *Service) ParseStatement(ctx context.Context, lines []string, meta StatementMeta, company *model.Company) ([]model.Transaction, *statement.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if company == nil {
		return nil, nil, fmt.Errorf("%w: company is required", common.ErrValidation)
	}

	parsed := s.parser.Parse(lines, meta.Period)
	for _, err := range parsed.Errors {
		slog.Warn("Statement line rejected",
			"source_file", meta.SourceFile,
			"error", err)
	}

	txns := assembler.New(meta.SourceFile, meta.AccountNumber).AssembleAll(parsed.Transactions, company)
	return txns, parsed, nil
}

// ImportResult summarises an import.
type ImportResult struct {
	OpeningBalance *decimal.Decimal
	Transactions   []model.Transaction
	Errors         []error
	Parsed         int
	Saved          int
	Duplicates     int
	Skipped        int
}

// ImportStatement extracts, parses and saves the statement at path.
func (s *Service) ImportStatement(ctx context.Context, src LineSource, path string, companyID int64) (*ImportResult, error) {
	lines, err := src.ExtractLines(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", path, err)
	}

	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company %d: %w", companyID, err)
	}

	meta := StatementMeta{
		SourceFile:    filepath.Base(path),
		AccountNumber: src.AccountNumber(),
		Period:        src.StatementPeriod(),
	}
	txns, parsed, err := s.ParseStatement(ctx, lines, meta, company)
	if err != nil {
		return nil, err
	}

	result, err := s.SaveTransactions(ctx, txns)
	if result != nil {
		result.OpeningBalance = parsed.OpeningBalance
		result.Errors = parsed.Errors
		result.Skipped = parsed.Skipped
	}
	return result, err
}

// ImportParsed assembles and saves transactions that were parsed elsewhere, such as from an
// OFX download.
func (s *Service) ImportParsed(ctx context.Context, parsed []model.ParsedTransaction, meta StatementMeta, companyID int64) (*ImportResult, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company %d: %w", companyID, err)
	}

	txns := assembler.New(meta.SourceFile, meta.AccountNumber).AssembleAll(parsed, company)
	return s.SaveTransactions(ctx, txns)
}

// SaveTransactions stores assembled transactions. Transactions already imported are counted
// as duplicates and left untouched.
func (s *Service) SaveTransactions(ctx context.Context, txns []model.Transaction) (*ImportResult, error) {
	result := &ImportResult{Parsed: len(txns)}
	if len(txns) == 0 {
		return result, common.ErrNoTransactions
	}

	saved, err := s.store.SaveTransactions(ctx, txns)
	if err != nil {
		return result, fmt.Errorf("failed to save transactions: %w", err)
	}

	for _, txn := range saved {
		if txn.CreatedAt.IsZero() {
			result.Duplicates++
			continue
		}
		result.Saved++
	}
	result.Transactions = saved

	slog.Info("Imported transactions",
		"parsed", result.Parsed,
		"saved", result.Saved,
		"duplicates", result.Duplicates)
	return result, nil
}

// Rules returns the active rules for a company, standard rules included, through the cache.
func (s *Service) Rules(ctx context.Context, companyID int64) ([]model.ClassificationRule, error) {
	if rules, ok := s.cache.Rules(companyID); ok {
		return rules, nil
	}

	rules, err := s.store.GetClassificationRules(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load classification rules: %w", err)
	}
	s.cache.SetRules(companyID, rules)
	return rules, nil
}

// ClassifyBatch classifies txns without persisting anything. Transactions without a match are
// absent from the result.
func (s *Service) ClassifyBatch(ctx context.Context, txns []model.Transaction, companyID int64) (map[int64]*model.ClassificationResult, error) {
	rules, err := s.Rules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.classifier.ClassifyBatch(txns, rules), nil
}

// ClassifyUnclassified classifies and saves every unclassified transaction of a company.
// Only results confident enough to apply automatically are saved.
func (s *Service) ClassifyUnclassified(ctx context.Context, companyID int64) (int, error) {
	txns, err := s.store.GetTransactions(ctx, service.TransactionFilter{
		CompanyID:        companyID,
		UnclassifiedOnly: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load unclassified transactions: %w", err)
	}
	if len(txns) == 0 {
		return 0, nil
	}

	results, err := s.ClassifyBatch(ctx, txns, companyID)
	if err != nil {
		return 0, err
	}

	var updates []service.ClassificationUpdate
	var ruleIDs []int64
	for _, txn := range txns {
		result, ok := results[txn.ID]
		if !ok || !result.IsAutoClassified {
			continue
		}
		updates = append(updates, service.ClassificationUpdate{
			TransactionID: txn.ID,
			AccountCode:   result.AccountCode,
			AccountName:   result.AccountName,
		})
		if result.MatchingRule != nil && result.MatchingRule.ID > 0 {
			ruleIDs = append(ruleIDs, result.MatchingRule.ID)
		}
	}

	if err := s.applyClassifications(ctx, updates, ruleIDs); err != nil {
		return 0, err
	}

	slog.Info("Classified transactions",
		"company_id", companyID,
		"candidates", len(txns),
		"classified", len(updates))
	return len(updates), nil
}

// ReclassifyAll re-evaluates every transaction of a company against the current rules and
// saves the ones whose account changes. Running it twice in a row changes nothing the second time.
func (s *Service) ReclassifyAll(ctx context.Context, companyID int64) (int, error) {
	txns, err := s.store.GetTransactions(ctx, service.TransactionFilter{CompanyID: companyID})
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions: %w", err)
	}

	rules, err := s.Rules(ctx, companyID)
	if err != nil {
		return 0, err
	}

	changes := s.classifier.Reclassify(txns, rules)
	updates := make([]service.ClassificationUpdate, 0, len(changes))
	var ruleIDs []int64
	for _, change := range changes {
		updates = append(updates, service.ClassificationUpdate{
			TransactionID: change.TransactionID,
			AccountCode:   change.Result.AccountCode,
			AccountName:   change.Result.AccountName,
		})
		if rule := change.Result.MatchingRule; rule != nil && rule.ID > 0 {
			ruleIDs = append(ruleIDs, rule.ID)
		}
		slog.Debug("Reclassified transaction",
			"transaction_id", change.TransactionID,
			"from", change.PreviousCode,
			"to", change.Result.AccountCode)
	}

	if err := s.applyClassifications(ctx, updates, ruleIDs); err != nil {
		return 0, err
	}
	return len(updates), nil
}

func (s *Service) applyClassifications(ctx context.Context, updates []service.ClassificationUpdate, ruleIDs []int64) error {
	if len(updates) == 0 {
		return nil
	}
	if err := s.store.UpdateClassifications(ctx, updates); err != nil {
		return fmt.Errorf("failed to save classifications: %w", err)
	}
	for _, id := range ruleIDs {
		if err := s.store.IncrementRuleUsage(ctx, id); err != nil {
			slog.Warn("Failed to record rule usage",
				"rule_id", id,
				"error", err)
		}
	}
	return nil
}

// GenerateJournalEntries posts every classified transaction that has no entry yet. It returns
// the number of entries created and every per-transaction failure joined together.
func (s *Service) GenerateJournalEntries(ctx context.Context, txns []model.Transaction, createdBy string) (int, error) {
	var errs []error
	created := 0
	for _, txn := range txns {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !txn.IsClassified() {
			continue
		}

		posted, err := s.store.HasJournalEntry(ctx, txn.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("transaction %d: %w", txn.ID, err))
			continue
		}
		if posted {
			continue
		}

		result := &model.ClassificationResult{
			AccountCode:     txn.AccountCode,
			AccountName:     txn.AccountName,
			ConfidenceScore: 1,
		}
		if _, err := s.generator.Generate(ctx, txn, result, createdBy); err != nil {
			slog.Warn("Failed to generate journal entry",
				"transaction_id", txn.ID,
				"error", err)
			errs = append(errs, fmt.Errorf("transaction %d: %w", txn.ID, err))
			continue
		}
		created++
	}
	return created, errors.Join(errs...)
}

// LearnClassification assigns an account to a transaction by hand and turns the decision
// into a company rule.
func (s *Service) LearnClassification(ctx context.Context, transactionID int64, accountCode, accountName string) (*model.ClassificationRule, error) {
	accountCode = strings.TrimSpace(accountCode)
	if accountCode == "" {
		return nil, fmt.Errorf("%w: account code is required", common.ErrValidation)
	}

	txn, err := s.store.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %d: %w", transactionID, err)
	}

	if err := s.store.UpdateClassifications(ctx, []service.ClassificationUpdate{{
		TransactionID: txn.ID,
		AccountCode:   accountCode,
		AccountName:   accountName,
	}}); err != nil {
		return nil, fmt.Errorf("failed to save classification: %w", err)
	}

	rule, err := s.learner.Learn(ctx, txn.CompanyID, txn.Details, accountCode, accountName)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateRules(txn.CompanyID)
	return rule, nil
}

// OpeningBalance replaces the opening balance entry of a fiscal period.
func (s *Service) OpeningBalance(ctx context.Context, companyID, fiscalPeriodID int64, createdBy string) (*model.JournalEntry, error) {
	return s.generator.GenerateOpeningBalance(ctx, companyID, fiscalPeriodID, createdBy)
}

// SeedStandardRules stores the built-in rules that are not yet present and returns how many
// were added.
func (s *Service) SeedStandardRules(ctx context.Context) (int, error) {
	existing, err := s.store.GetClassificationRules(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to load standard rules: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.IsStandard() {
			known[r.Pattern+"|"+r.AccountCode] = true
		}
	}

	added := 0
	for _, rule := range classification.StandardRules() {
		if known[rule.Pattern+"|"+rule.AccountCode] {
			continue
		}
		if err := s.store.CreateClassificationRule(ctx, &rule); err != nil {
			return added, fmt.Errorf("failed to create rule %q: %w", rule.Pattern, err)
		}
		added++
	}
	s.cache.InvalidateRules(cache.AllCompanies)
	return added, nil
}

// SetupCompany creates a company and its bank and opening balance accounts.
func (s *Service) SetupCompany(ctx context.Context, company *model.Company) error {
	if err := s.store.CreateCompany(ctx, company); err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return s.generator.EnsureLedgerAccounts(ctx, company.ID)
}
