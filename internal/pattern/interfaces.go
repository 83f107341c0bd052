// Package pattern provides the matching primitives behind rule-based transaction classification.
package pattern

import (
	"context"

	"github.com/sthwalo/acc-sub003/internal/model"
)

// DirectionValidator checks that a transaction's direction suits the account it is posted to.
type DirectionValidator interface {
	// ValidateDirection ensures the transaction's direction is consistent with the account type.
	ValidateDirection(ctx context.Context, txn model.Transaction, account model.Account) error
}

// Scorer computes the base match score of a rule against transaction details.
type Scorer interface {
	Score(details string, rule Rule) float64
}

// Match is a rule together with its base score for one description.
type Match struct {
	Rule  Rule
	Score float64
}

// Rule is an alias to the model.ClassificationRule type for convenience.
type Rule = model.ClassificationRule
