package journal

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// UnbalancedEntryError reports a journal entry whose debits and credits differ.
type UnbalancedEntryError struct {
	Reference string
	Debits    decimal.Decimal
	Credits   decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry %s is unbalanced: debits %s, credits %s",
		e.Reference, e.Debits.StringFixed(2), e.Credits.StringFixed(2))
}

func (e *UnbalancedEntryError) Unwrap() error {
	return common.ErrUnbalancedEntry
}

// CheckBalanced returns an *UnbalancedEntryError unless the entry's debits equal its credits.
func CheckBalanced(entry *model.JournalEntry) error {
	if entry.IsBalanced() {
		return nil
	}
	return &UnbalancedEntryError{
		Reference: entry.Reference,
		Debits:    entry.TotalDebits(),
		Credits:   entry.TotalCredits(),
	}
}
