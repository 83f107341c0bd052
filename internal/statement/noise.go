// Package statement reconstructs transactions from extracted bank statement text.
package statement

import (
	"regexp"
	"strings"
)

// noisePatterns match lines that never carry transaction data: page furniture,
// column headers, balance summaries and footers.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^page\s+\d+(\s+of\s+\d+)?$`),
	regexp.MustCompile(`^\d{1,3}$`),
	regexp.MustCompile(`^\d+\s*/\s*\d+$`),
	regexp.MustCompile(`(?i)^date\s+(description|details|transaction)\b`),
	regexp.MustCompile(`(?i)\bdetails\b.*\bdebits?\b.*\bcredits?\b`),
	regexp.MustCompile(`(?i)\bdescription\b.*\bdebit\b.*\bcredit\b.*\bbalance\b`),
	regexp.MustCompile(`(?i)^(opening|closing)\s+balance\b`),
	regexp.MustCompile(`(?i)^month[- ]end\s+balance\b`),
	regexp.MustCompile(`(?i)^(sub[- ]?)?totals?\s*[:\-]?[\d,. ]*$`),
	regexp.MustCompile(`(?i)^total\s+(debits?|credits?|fees|charges|service\s+fees)\b`),
	regexp.MustCompile(`(?i)^statement\s+(period|date|number|no\.?)\b`),
	regexp.MustCompile(`(?i)^account\s+(number|no\.?|holder|type|summary)\b`),
	regexp.MustCompile(`(?i)continued\s+(on\s+next\s+page|overleaf)`),
	regexp.MustCompile(`(?i)^(vat\s+reg(istration)?|branch\s+code|company\s+reg(istration)?|registration\s+no)\b`),
	regexp.MustCompile(`(?i)^(please\s+verify|errors\s+and\s+omissions|e\s*&\s*o\s*e)\b`),
	regexp.MustCompile(`^[-=_*.\s]{3,}$`),
}

// IsNoise reports whether a line is structural noise that the parser must ignore.
func IsNoise(line string) bool {
	return matchesAny(noisePatterns, strings.TrimSpace(line))
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, re := range patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
