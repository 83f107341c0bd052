// Package classification maps transaction details to ledger accounts using scored rules.
package classification

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sthwalo/acc-sub003/internal/model"
)

// Detector adds a domain-specific bonus to a rule's base score.
type Detector interface {
	// Name identifies the detector in logs.
	Name() string
	// Bonus returns the amount to add to rule's score for details, or 0.
	Bonus(details string, rule model.ClassificationRule) float64
}

// DetectorPattern describes a DomainDetector: when details match DetailsRegex and the rule's
// account name or pattern matches RuleRegex, Bonus is added.
type DetectorPattern struct {
	Name         string
	DetailsRegex string
	RuleRegex    string
	Bonus        float64
}

// DomainDetector recognises well-known counterparties, such as insurers or fuel stations,
// and boosts rules that target the matching kind of account.
type DomainDetector struct {
	details *regexp.Regexp
	rule    *regexp.Regexp
	name    string
	bonus   float64
}

// NewDomainDetector compiles p. Patterns are case-insensitive.
func NewDomainDetector(p DetectorPattern) (*DomainDetector, error) {
	details, err := compileInsensitive(p.DetailsRegex)
	if err != nil {
		return nil, fmt.Errorf("failed to compile detector %s details pattern: %w", p.Name, err)
	}
	rule, err := compileInsensitive(p.RuleRegex)
	if err != nil {
		return nil, fmt.Errorf("failed to compile detector %s rule pattern: %w", p.Name, err)
	}
	if p.Bonus < 0 || p.Bonus > 1 {
		return nil, fmt.Errorf("detector %s bonus %.2f outside [0,1]", p.Name, p.Bonus)
	}

	return &DomainDetector{
		name:    p.Name,
		details: details,
		rule:    rule,
		bonus:   p.Bonus,
	}, nil
}

// NewDetectors compiles a set of detector patterns.
func NewDetectors(patterns []DetectorPattern) ([]Detector, error) {
	detectors := make([]Detector, 0, len(patterns))
	for _, p := range patterns {
		d, err := NewDomainDetector(p)
		if err != nil {
			return nil, err
		}
		detectors = append(detectors, d)
	}
	return detectors, nil
}

// Name returns the detector name.
func (d *DomainDetector) Name() string {
	return d.name
}

// Bonus implements Detector.
func (d *DomainDetector) Bonus(details string, rule model.ClassificationRule) float64 {
	if !d.details.MatchString(details) {
		return 0
	}
	if d.rule.MatchString(rule.AccountName) || d.rule.MatchString(rule.Pattern) || d.rule.MatchString(rule.AccountCode) {
		return d.bonus
	}
	return 0
}

func compileInsensitive(expr string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr // Make case-insensitive by default
	}
	return regexp.Compile(expr)
}
