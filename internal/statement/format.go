package statement

import (
	"regexp"
	"unicode"

	"github.com/sthwalo/acc-sub003/internal/model"
)

// Format describes the keyword vocabulary and quirks of one statement layout.
type Format struct {
	Name               string
	CreditPatterns     []string
	DebitPatterns      []string
	ServiceFeePatterns []string
	ExtraNoise         []*regexp.Regexp
	// ContinuationCreditOverride lets a continuation line such as
	// "CREDIT TRANSFER 1,500.00" turn the pending transaction into a credit.
	ContinuationCreditOverride bool
}

// StandardFormat returns the keyword sets used by common South African business statements.
func StandardFormat() Format {
	return Format{
		Name: "standard",
		CreditPatterns: []string{
			"CREDIT TRANSFER", "MAGTAPE CREDIT", "PAYMENT FROM", "PAYMENT RECEIVED",
			"TRANSFER FROM", "CASH DEPOSIT", "DEPOSIT", "INTEREST RECEIVED", "INTEREST CREDIT",
			"DEBIT ORDER REVERSAL", "REFUND", "REVERSAL", "CREDIT",
		},
		DebitPatterns: []string{
			"PAYMENT TO", "PAYMENT", "DEBIT ORDER", "DEBIT", "PURCHASE", "CASH WITHDRAWAL",
			"WITHDRAWAL", "CASH DEPOSIT FEE", "ATM", "TRANSFER TO", "IB PAYMENT", "SERVICE FEE", "FEE", "CHARGE",
			"CREDIT CARD", "CHEQUE", "PREPAID",
		},
		ServiceFeePatterns: []string{
			"SERVICE FEE", "MONTHLY FEE", "FEE", "FEES", "CHARGE", "CHARGES", "##",
		},
		ContinuationCreditOverride: true,
	}
}

// keyword is a compiled statement keyword.
type keyword struct {
	re   *regexp.Regexp
	text string
}

type keywordSet []keyword

func compileKeywords(words []string) keywordSet {
	set := make(keywordSet, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		set = append(set, keyword{text: w, re: keywordRegex(w)})
	}
	return set
}

// keywordRegex matches w case-insensitively on word boundaries where w begins or ends with a word character.
func keywordRegex(w string) *regexp.Regexp {
	expr := regexp.QuoteMeta(w)
	runes := []rune(w)
	if isWordRune(runes[0]) {
		expr = `\b` + expr
	}
	if isWordRune(runes[len(runes)-1]) {
		expr += `\b`
	}
	return regexp.MustCompile(`(?i)` + expr)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// longest returns the length of the longest keyword found in s and where it ends.
func (ks keywordSet) longest(s string) (length, end int) {
	end = -1
	for _, k := range ks {
		loc := k.re.FindStringIndex(s)
		if loc == nil {
			continue
		}
		if n := len(k.text); n > length {
			length, end = n, loc[1]
		}
	}
	return length, end
}

func (ks keywordSet) matches(s string) bool {
	n, _ := ks.longest(s)
	return n > 0
}

type compiledFormat struct {
	name       string
	credit     keywordSet
	debit      keywordSet
	serviceFee keywordSet
	extraNoise []*regexp.Regexp
	override   bool
}

func compileFormat(f Format) compiledFormat {
	return compiledFormat{
		name:       f.Name,
		credit:     compileKeywords(f.CreditPatterns),
		debit:      compileKeywords(f.DebitPatterns),
		serviceFee: compileKeywords(f.ServiceFeePatterns),
		extraNoise: f.ExtraNoise,
		override:   f.ContinuationCreditOverride,
	}
}

// direction picks the type implied by the longest matching keyword. Equal lengths favour
// CREDIT and details without any keyword are treated as DEBIT.
func (f compiledFormat) direction(details string) model.TransactionType {
	creditLen, _ := f.credit.longest(details)
	debitLen, _ := f.debit.longest(details)
	if creditLen > 0 && creditLen >= debitLen {
		return model.TypeCredit
	}
	return model.TypeDebit
}

func (f compiledFormat) isNoise(line string) bool {
	return IsNoise(line) || matchesAny(f.extraNoise, line)
}
