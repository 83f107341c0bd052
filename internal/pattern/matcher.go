package pattern

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/sthwalo/acc-sub003/internal/model"
)

// Base scores.
const (
	// ExactScore is awarded for a full-strength match.
	ExactScore = 1.0
	// PartialScore is awarded for a short substring or a partial type-specific match.
	PartialScore = 0.8
	// significantLength is the pattern length above which a substring match is exact.
	significantLength = 4
)

// MatcherImpl scores descriptions against classification rules.
type MatcherImpl struct {
	compiledRegex map[string]*regexp.Regexp
	rules         []Rule
	mu            sync.RWMutex
}

// NewMatcher creates a matcher over the active rules, ordered for evaluation.
func NewMatcher(rules []Rule) *MatcherImpl {
	m := &MatcherImpl{
		rules:         ActiveRules(rules),
		compiledRegex: make(map[string]*regexp.Regexp),
	}

	// Pre-compile regex patterns
	for _, rule := range m.rules {
		if rule.MatchType == model.MatchRegex {
			m.regex(rule.Pattern)
		}
	}

	return m
}

// Rules returns the active rules in evaluation order.
func (m *MatcherImpl) Rules() []Rule {
	return m.rules
}

// Match scores details against every rule and returns those that matched, in evaluation order.
func (m *MatcherImpl) Match(details string) []Match {
	var matches []Match
	for _, rule := range m.rules {
		if score := m.Score(details, rule); score > 0 {
			matches = append(matches, Match{Rule: rule, Score: score})
		}
	}
	return matches
}

// Score returns the base score of rule against details, or 0 when it does not match.
// A literal substring hit scores 1.0 for significant patterns and 0.8 for short ones; otherwise
// the rule's match type is applied to the normalised text.
func (m *MatcherImpl) Score(details string, rule Rule) float64 {
	pattern := strings.ToLower(strings.TrimSpace(rule.Pattern))
	if pattern == "" {
		return 0
	}
	text := strings.ToLower(details)

	if rule.MatchType != model.MatchRegex && strings.Contains(text, pattern) {
		if len(pattern) > significantLength {
			return ExactScore
		}
		return PartialScore
	}

	normText := Normalize(text)
	normPattern := Normalize(pattern)

	switch rule.MatchType {
	case model.MatchStartsWith:
		if normPattern != "" && strings.HasPrefix(normText, normPattern) {
			return ExactScore
		}
	case model.MatchEquals:
		if normPattern != "" && normText == normPattern {
			return ExactScore
		}
	case model.MatchEndsWith:
		if normPattern != "" && strings.HasSuffix(normText, normPattern) {
			return PartialScore
		}
	case model.MatchRegex:
		return m.scoreRegex(text, rule.Pattern)
	default:
		if containsAll(normText, strings.Fields(normPattern)) || containsAll(normText, rule.Keywords) {
			return PartialScore
		}
	}

	return 0
}

func (m *MatcherImpl) scoreRegex(text, expr string) float64 {
	re := m.regex(expr)
	if re == nil {
		return 0
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return 0
	}
	if loc[0] == 0 && loc[1] == len(text) {
		return ExactScore
	}
	return PartialScore
}

// regex returns the compiled, case-insensitive form of expr. Invalid expressions are cached as nil.
func (m *MatcherImpl) regex(expr string) *regexp.Regexp {
	m.mu.RLock()
	re, ok := m.compiledRegex[expr]
	m.mu.RUnlock()
	if ok {
		return re
	}

	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		re = nil
	}
	m.mu.Lock()
	m.compiledRegex[expr] = re
	m.mu.Unlock()
	return re
}

// containsAll reports whether every non-empty word appears as a token of text.
func containsAll(text string, words []string) bool {
	tokens := strings.Fields(text)
	found := 0
	for _, w := range words {
		for _, part := range strings.Fields(Normalize(w)) {
			if !slices.Contains(tokens, part) {
				return false
			}
			found++
		}
	}
	return found > 0
}

// Normalize lower-cases s, replaces punctuation with spaces and collapses whitespace.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// ActiveRules returns the active rules sorted into evaluation order.
func ActiveRules(rules []Rule) []Rule {
	active := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			active = append(active, r)
		}
	}
	SortRules(active)
	return active
}

// SortRules orders rules by priority, then specificity (pattern length, keyword count),
// then usage count, all descending, and finally by id.
func SortRules(rules []Rule) {
	slices.SortStableFunc(rules, func(a, b Rule) int {
		if c := compareDefinition(a, b); c != 0 {
			return c
		}
		if c := cmp.Compare(b.UsageCount, a.UsageCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// DefinitionOrder orders rules like SortRules but ignores usage counts, so the order only
// changes when the rules themselves are edited.
func DefinitionOrder(rules []Rule) {
	slices.SortStableFunc(rules, func(a, b Rule) int {
		if c := compareDefinition(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func compareDefinition(a, b Rule) int {
	if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
		return c
	}
	if c := cmp.Compare(len(b.Pattern), len(a.Pattern)); c != 0 {
		return c
	}
	return cmp.Compare(len(b.Keywords), len(a.Keywords))
}
