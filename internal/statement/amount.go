package statement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency amounts carry exactly two decimals and may be grouped by comma or space thousands
// separators: 1,234.56 / 1 234.56 / 1234.56. A line sticks to one separator, so space grouping
// is only considered when the line has no comma-grouped number. That keeps "REF 789 250.00
// 5,000.00" from reading the reference as thousands.
var (
	commaAmountPattern = regexp.MustCompile(`\b(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}\b`)
	spaceAmountPattern = regexp.MustCompile(`\b(?:\d{1,3}(?: \d{3})+|\d+)\.\d{2}\b`)
	commaGroupPattern  = regexp.MustCompile(`\d,\d{3}\b`)
)

func amountPatternFor(line string) *regexp.Regexp {
	if commaGroupPattern.MatchString(line) {
		return commaAmountPattern
	}
	return spaceAmountPattern
}

// amountToken is an amount found in a line together with its byte offsets.
type amountToken struct {
	text  string
	start int
	end   int
}

func findAmounts(line string) []amountToken {
	locs := amountPatternFor(line).FindAllStringIndex(line, -1)
	tokens := make([]amountToken, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, amountToken{text: line[loc[0]:loc[1]], start: loc[0], end: loc[1]})
	}
	return tokens
}

// ParseAmount converts "1,234.56" or "1 234.56" into a decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %q", s)
	}
	return d, nil
}

// stripAmounts removes amount tokens and collapses whitespace.
func stripAmounts(line string) string {
	return cleanText(amountPatternFor(line).ReplaceAllString(line, " "))
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
