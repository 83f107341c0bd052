package pattern

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
)

// DefaultKeywordLimit is the number of keywords kept when learning a rule.
const DefaultKeywordLimit = 3

// minKeywordLength drops tokens too short to discriminate.
const minKeywordLength = 3

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "from": true, "with": true, "to": true, "of": true,
	"in": true, "on": true, "at": true, "by": true, "a": true, "an": true, "or": true,
	"pty": true, "ltd": true, "inc": true, "cc": true, "co": true,
	"payment": true, "transfer": true, "debit": true, "credit": true, "order": true,
	"ref": true, "reference": true, "card": true, "purchase": true, "pos": true,
	"int": true, "ib": true, "eft": true, "acc": true, "account": true, "no": true,
}

// ExtractKeywords returns up to limit distinctive tokens from details, most frequent first,
// then longest, then earliest. Stop-words and tokens containing digits are removed.
func ExtractKeywords(details string, limit int) []string {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	type candidate struct {
		word  string
		count int
		first int
	}

	var candidates []*candidate
	index := make(map[string]*candidate)
	for i, token := range strings.Fields(Normalize(details)) {
		if !isKeyword(token) {
			continue
		}
		if c, ok := index[token]; ok {
			c.count++
			continue
		}
		c := &candidate{word: token, count: 1, first: i}
		index[token] = c
		candidates = append(candidates, c)
	}

	slices.SortStableFunc(candidates, func(a, b *candidate) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		if c := cmp.Compare(len(b.word), len(a.word)); c != 0 {
			return c
		}
		return cmp.Compare(a.first, b.first)
	})

	keywords := make([]string, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		keywords = append(keywords, c.word)
	}
	return keywords
}

// SignificantKeyword picks the pattern for a learned rule: the first keyword long enough to
// score as an exact match, or the first keyword when none is.
func SignificantKeyword(keywords []string) string {
	for _, k := range keywords {
		if len(k) > significantLength {
			return k
		}
	}
	if len(keywords) > 0 {
		return keywords[0]
	}
	return ""
}

func isKeyword(token string) bool {
	if len(token) < minKeywordLength || stopWords[token] {
		return false
	}
	return !strings.ContainsFunc(token, unicode.IsDigit)
}
