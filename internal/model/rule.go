package model

import (
	"fmt"
	"time"
)

// MatchType selects how a rule's pattern is compared against transaction details.
type MatchType string

// Match type constants.
const (
	MatchContains   MatchType = "CONTAINS"
	MatchStartsWith MatchType = "STARTS_WITH"
	MatchEndsWith   MatchType = "ENDS_WITH"
	MatchEquals     MatchType = "EQUALS"
	MatchRegex      MatchType = "REGEX"
)

// ParseMatchType converts user input into a MatchType.
func ParseMatchType(s string) (MatchType, error) {
	switch mt := MatchType(s); mt {
	case MatchContains, MatchStartsWith, MatchEndsWith, MatchEquals, MatchRegex:
		return mt, nil
	case "":
		return MatchContains, nil
	}
	return "", fmt.Errorf("unknown match type %q", s)
}

// ClassificationRule maps a description pattern to an account.
// Rules with a nil CompanyID are standard rules shared by every company.
// Confidence is computed per evaluation and never stored.
type ClassificationRule struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CompanyID   *int64    `json:"company_id,omitempty"`
	Pattern     string    `json:"pattern"`
	MatchType   MatchType `json:"match_type"`
	AccountCode string    `json:"account_code"`
	AccountName string    `json:"account_name"`
	Keywords    []string  `json:"keywords,omitempty"`
	ID          int64     `json:"id"`
	Priority    int       `json:"priority"`
	UsageCount  int       `json:"usage_count"`
	IsActive    bool      `json:"is_active"`
}

// IsStandard reports whether the rule is shared across companies.
func (r ClassificationRule) IsStandard() bool {
	return r.CompanyID == nil
}
