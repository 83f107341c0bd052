package statement

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// datedLinePattern matches a line opening with a "DD MM" or "DD/MM" date.
var datedLinePattern = regexp.MustCompile(`^(0[1-9]|[12]\d|3[01])[ /](0[1-9]|1[0-2])(?:\s+(.*))?$`)

var broughtForwardPattern = regexp.MustCompile(`(?i)\bbalance\s+brought\s+forward\b`)

const (
	reasonBlank          = "blank line"
	reasonNoise          = "noise"
	reasonOrphan         = "continuation without transaction"
	reasonNoAmount       = "no transaction amount"
	reasonEmptyDetails   = "empty details"
	reasonBroughtForward = "balance brought forward"
)

// state is the parser's position between lines: idle or accumulating a transaction.
type state interface {
	isState()
}

type idle struct{}

func (idle) isState() {}

type accumulating struct {
	date           time.Time
	amount         *decimal.Decimal
	balance        *decimal.Decimal
	txnType        model.TransactionType
	details        []string
	line           model.RawLine
	overridden     bool
	broughtForward bool
}

func (accumulating) isState() {}

// foldEnv carries the per-statement context threaded through a fold.
type foldEnv struct {
	parser *Parser
	dates  DateResolver
}

// lineRule is one entry of the dispatch table; the first rule whose match returns true handles the line.
type lineRule struct {
	match func(env foldEnv, s state, text string) bool
	apply func(env foldEnv, s state, line model.RawLine) (state, []LineResult)
	name  string
}

var lineRules = []lineRule{
	{name: "blank", match: matchBlank, apply: applySkip(reasonBlank)},
	{name: "noise", match: matchNoise, apply: applySkip(reasonNoise)},
	{name: "dated", match: matchDated, apply: applyDated},
	{name: "brought-forward", match: matchBroughtForward, apply: applyBroughtForward},
	{name: "continuation", match: matchContinuation, apply: applyContinuation},
	{name: "orphan", match: func(foldEnv, state, string) bool { return true }, apply: applySkip(reasonOrphan)},
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock overrides the clock used for date fallbacks and missing years.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// Parser turns statement lines into ParsedTransactions. It holds configuration only,
// so one Parser may be shared between statements and goroutines.
type Parser struct {
	now    func() time.Time
	format compiledFormat
}

// NewParser creates a parser for the given statement format.
func NewParser(format Format, opts ...Option) *Parser {
	p := &Parser{
		format: compileFormat(format),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reconstructs the transactions in lines. statementPeriod supplies the year for
// day/month dates. Line failures are collected rather than returned.
func (p *Parser) Parse(lines []string, statementPeriod string) *ParseResult {
	raw := make([]model.RawLine, len(lines))
	for i, text := range lines {
		raw[i] = model.RawLine{Text: text, Number: i + 1}
	}

	result := &ParseResult{}
	for _, r := range p.Fold(raw, NewDateResolver(statementPeriod, p.now)) {
		switch r.Kind {
		case ResultOK:
			result.Transactions = append(result.Transactions, *r.Transaction)
		case ResultSkip:
			result.Skipped++
			if r.OpeningBalance != nil && result.OpeningBalance == nil {
				result.OpeningBalance = r.OpeningBalance
			}
			if r.Reason != reasonBlank && r.Reason != reasonNoise {
				slog.Debug("Skipped statement line",
					"line", r.Line.Number,
					"reason", r.Reason)
			}
		case ResultError:
			result.Errors = append(result.Errors, r.Err)
			slog.Warn("Failed to parse statement line",
				"line", r.Line.Number,
				"error", r.Err)
		}
	}

	slog.Debug("Parsed statement",
		"format", p.format.name,
		"lines", len(lines),
		"transactions", len(result.Transactions),
		"skipped", result.Skipped,
		"errors", len(result.Errors))

	return result
}

// Fold runs the state machine over lines and returns one result per finished transaction,
// skipped line or failure. The fold never stops early.
func (p *Parser) Fold(lines []model.RawLine, dates DateResolver) []LineResult {
	env := foldEnv{parser: p, dates: dates}

	var (
		s       state = idle{}
		results []LineResult
	)
	for _, line := range lines {
		var out []LineResult
		s, out = step(env, s, line)
		results = append(results, out...)
	}

	if acc, ok := s.(accumulating); ok {
		results = append(results, finalize(p.format, acc))
	}
	return results
}

// step applies the first matching rule. A panic while handling a line becomes an error
// result and leaves the state untouched.
func step(env foldEnv, s state, line model.RawLine) (next state, out []LineResult) {
	defer func() {
		if r := recover(); r != nil {
			next = s
			out = []LineResult{errorResult(line, fmt.Errorf("panic: %v", r))}
		}
	}()

	text := strings.TrimSpace(line.Text)
	for _, rule := range lineRules {
		if rule.match(env, s, text) {
			return rule.apply(env, s, line)
		}
	}
	return s, nil
}

func matchBlank(_ foldEnv, _ state, text string) bool {
	return text == ""
}

func matchNoise(env foldEnv, _ state, text string) bool {
	return env.parser.format.isNoise(text)
}

func matchDated(_ foldEnv, _ state, text string) bool {
	return datedLinePattern.MatchString(text)
}

func matchBroughtForward(_ foldEnv, _ state, text string) bool {
	return broughtForwardPattern.MatchString(text)
}

func matchContinuation(_ foldEnv, s state, _ string) bool {
	_, ok := s.(accumulating)
	return ok
}

func applySkip(reason string) func(foldEnv, state, model.RawLine) (state, []LineResult) {
	return func(_ foldEnv, s state, line model.RawLine) (state, []LineResult) {
		return s, []LineResult{{Kind: ResultSkip, Reason: reason, Line: line}}
	}
}

// applyDated finalises any pending transaction and starts a new one.
func applyDated(env foldEnv, s state, line model.RawLine) (state, []LineResult) {
	var out []LineResult
	if acc, ok := s.(accumulating); ok {
		out = append(out, finalize(env.parser.format, acc))
	}

	m := datedLinePattern.FindStringSubmatch(strings.TrimSpace(line.Text))
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	rest := m[3]

	date, _ := env.dates.Resolve(day, month)
	next := accumulating{
		date:    date,
		line:    line,
		txnType: model.TypeDebit,
	}

	amounts, errs := parseTokens(findAmounts(rest))
	for _, err := range errs {
		out = append(out, errorResult(line, err))
	}

	switch {
	case len(amounts) >= 2:
		next.amount = &amounts[len(amounts)-2]
		next.balance = &amounts[len(amounts)-1]
	case len(amounts) == 1:
		next.balance = &amounts[0]
	}

	details := stripAmounts(rest)
	if broughtForwardPattern.MatchString(details) {
		next.broughtForward = true
		next.amount = nil
	} else {
		next.txnType = env.parser.format.direction(details)
	}
	if details != "" {
		next.details = []string{details}
	}

	return next, out
}

// applyBroughtForward records an undated opening balance line.
func applyBroughtForward(env foldEnv, s state, line model.RawLine) (state, []LineResult) {
	var out []LineResult
	if acc, ok := s.(accumulating); ok {
		out = append(out, finalize(env.parser.format, acc))
	}

	result := LineResult{Kind: ResultSkip, Reason: reasonBroughtForward, Line: line}
	amounts, errs := parseTokens(findAmounts(line.Text))
	for _, err := range errs {
		out = append(out, errorResult(line, err))
	}
	if len(amounts) > 0 {
		result.OpeningBalance = &amounts[len(amounts)-1]
	}
	return idle{}, append(out, result)
}

// applyContinuation appends a line to the pending transaction's details, and may move
// the amount to the credit side when the format allows it.
func applyContinuation(env foldEnv, s state, line model.RawLine) (state, []LineResult) {
	acc := s.(accumulating)
	text := strings.TrimSpace(line.Text)
	f := env.parser.format

	if f.override && !acc.overridden {
		if amount, ok := continuationCredit(f, text); ok {
			acc.amount = &amount
			acc.txnType = model.TypeCredit
			acc.overridden = true
			text = stripAmounts(text)
		}
	}

	if cleaned := cleanText(text); cleaned != "" {
		acc.details = append(slices.Clip(acc.details), cleaned)
	}
	return acc, nil
}

// continuationCredit finds a credit keyword followed by exactly one amount. The keyword must
// also win over any debit keyword in the same text, as it does for a transaction line.
func continuationCredit(f compiledFormat, text string) (decimal.Decimal, bool) {
	n, end := f.credit.longest(text)
	if n == 0 || f.direction(text) != model.TypeCredit {
		return decimal.Zero, false
	}
	tokens := findAmounts(text)
	if len(tokens) != 1 || tokens[0].start < end {
		return decimal.Zero, false
	}
	amount, err := ParseAmount(tokens[0].text)
	if err != nil || amount.IsZero() {
		return decimal.Zero, false
	}
	return amount, true
}

// finalize converts an accumulated transaction into its result.
func finalize(f compiledFormat, acc accumulating) LineResult {
	details := cleanText(strings.Join(acc.details, " "))

	if acc.broughtForward {
		return LineResult{Kind: ResultSkip, Reason: reasonBroughtForward, Line: acc.line, OpeningBalance: acc.balance}
	}
	if details == "" {
		return LineResult{Kind: ResultSkip, Reason: reasonEmptyDetails, Line: acc.line}
	}
	if acc.amount == nil || acc.amount.IsZero() {
		return LineResult{Kind: ResultSkip, Reason: reasonNoAmount, Line: acc.line}
	}

	txnType := acc.txnType
	if txnType == model.TypeDebit && f.serviceFee.matches(details) {
		txnType = model.TypeServiceFee
	}

	return LineResult{
		Kind: ResultOK,
		Line: acc.line,
		Transaction: &model.ParsedTransaction{
			Date:        acc.date,
			Description: details,
			Amount:      *acc.amount,
			Type:        txnType,
			Balance:     acc.balance,
		},
	}
}

func parseTokens(tokens []amountToken) ([]decimal.Decimal, []error) {
	var (
		amounts []decimal.Decimal
		errs    []error
	)
	for _, tok := range tokens {
		d, err := ParseAmount(tok.text)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		amounts = append(amounts, d)
	}
	return amounts, errs
}

func errorResult(line model.RawLine, err error) LineResult {
	return LineResult{
		Kind: ResultError,
		Line: line,
		Err:  &common.ParseError{Line: line.Text, Number: line.Number, Err: err},
	}
}
