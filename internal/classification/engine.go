package classification

import (
	"log/slog"
	"strings"

	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/pattern"
)

// Engine scores transaction details against classification rules and picks the best account.
// It keeps no state between calls beyond its configuration and compiled patterns.
type Engine struct {
	matcher       *pattern.MatcherImpl
	detectors     []Detector
	floor         float64
	autoThreshold float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithDetectors replaces the default domain detectors.
func WithDetectors(detectors ...Detector) Option {
	return func(e *Engine) {
		e.detectors = detectors
	}
}

// WithThresholds overrides the acceptance floor and the auto-classification threshold.
func WithThresholds(floor, autoThreshold float64) Option {
	return func(e *Engine) {
		e.floor = floor
		e.autoThreshold = autoThreshold
	}
}

// NewEngine creates a classification engine with the default detectors and thresholds.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		matcher:       pattern.NewMatcher(nil),
		detectors:     DefaultDetectors(),
		floor:         model.ConfidenceFloor,
		autoThreshold: model.AutoClassifyThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Classify returns the best match for details among rules, or nil when no rule reaches the
// confidence floor. A nil result is a valid outcome, not an error.
func (e *Engine) Classify(details string, rules []model.ClassificationRule) *model.ClassificationResult {
	return e.classifyOrdered(details, pattern.ActiveRules(rules))
}

// ClassifyBatch classifies each transaction independently. Transactions without a match are
// omitted from the result.
func (e *Engine) ClassifyBatch(txns []model.Transaction, rules []model.ClassificationRule) map[int64]*model.ClassificationResult {
	ordered := pattern.ActiveRules(rules)
	results := make(map[int64]*model.ClassificationResult, len(txns))
	for _, txn := range txns {
		if result := e.classifyOrdered(txn.Details, ordered); result != nil {
			results[txn.ID] = result
		}
	}
	return results
}

// Reclassification is a change of account proposed for an already stored transaction.
type Reclassification struct {
	Result        *model.ClassificationResult
	PreviousCode  string
	TransactionID int64
}

// Reclassify re-evaluates every transaction and returns only those whose account code would change.
// Transactions without a match keep their current classification. Rules are ordered without
// usage counts, which the updates themselves change.
func (e *Engine) Reclassify(txns []model.Transaction, rules []model.ClassificationRule) []Reclassification {
	ordered := pattern.ActiveRules(rules)
	pattern.DefinitionOrder(ordered)
	var changes []Reclassification
	for _, txn := range txns {
		result := e.classifyOrdered(txn.Details, ordered)
		if result == nil || result.AccountCode == txn.AccountCode {
			continue
		}
		changes = append(changes, Reclassification{
			TransactionID: txn.ID,
			PreviousCode:  txn.AccountCode,
			Result:        result,
		})
	}
	return changes
}

// Score returns the clamped score of one rule, base score plus detector bonuses. Detectors
// only add to a rule whose pattern matched.
func (e *Engine) Score(details string, rule model.ClassificationRule) float64 {
	score := e.matcher.Score(details, rule)
	if score <= 0 {
		return 0
	}
	for _, d := range e.detectors {
		score += d.Bonus(details, rule)
	}
	return min(max(score, 0), 1)
}

// classifyOrdered expects rules already filtered and sorted into evaluation order.
func (e *Engine) classifyOrdered(details string, rules []model.ClassificationRule) *model.ClassificationResult {
	if strings.TrimSpace(details) == "" {
		return nil
	}

	var (
		best      *model.ClassificationRule
		bestScore float64
	)
	for i := range rules {
		// Only a strictly better score replaces the current best, so evaluation order breaks ties
		if score := e.Score(details, rules[i]); score > bestScore {
			best, bestScore = &rules[i], score
		}
	}

	if best == nil || bestScore < e.floor {
		slog.Debug("No classification rule matched",
			"details", details,
			"best_score", bestScore)
		return nil
	}

	rule := *best
	return &model.ClassificationResult{
		AccountCode:      rule.AccountCode,
		AccountName:      rule.AccountName,
		ConfidenceScore:  bestScore,
		MatchingRule:     &rule,
		IsAutoClassified: bestScore >= e.autoThreshold,
	}
}
