// Package ofx reads OFX and QFX bank downloads into the same parsed form as text statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// periodLayout renders statement periods the way printed statements show them.
const periodLayout = "02 January 2006"

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Statement is one account's transactions from an OFX download.
type Statement struct {
	LedgerBalance *decimal.Decimal
	AccountID     string
	Period        string
	Transactions  []model.ParsedTransaction
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket of a bare opening tag
	return openTagPattern.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file and returns one statement per bank or credit card account.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse OFX file: %w", common.ErrParse, err)
	}

	var statements []Statement
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			statements = append(statements, p.convertStatement(string(stmt.BankAcctFrom.AcctID), stmt.BankTranList, &stmt.BalAmt))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			statements = append(statements, p.convertStatement(string(stmt.CCAcctFrom.AcctID), stmt.BankTranList, &stmt.BalAmt))
		}
	}

	total := 0
	for _, s := range statements {
		total += len(s.Transactions)
	}
	slog.Info("Parsed OFX file",
		"statements", len(statements),
		"total_transactions", total)

	return statements, nil
}

func (p *Parser) convertStatement(accountID string, list *ofxgo.TransactionList, ledger *ofxgo.Amount) Statement {
	stmt := Statement{AccountID: accountID}
	if balance, err := toDecimal(ledger); err == nil {
		stmt.LedgerBalance = &balance
	}
	if list == nil {
		return stmt
	}

	stmt.Period = formatPeriod(list.DtStart.Time, list.DtEnd.Time)
	for _, ofxTx := range list.Transactions {
		txn, ok := p.convertTransaction(ofxTx)
		if !ok {
			slog.Warn("Skipping OFX transaction without amount",
				"account", accountID,
				"fitid", string(ofxTx.FiTID))
			continue
		}
		stmt.Transactions = append(stmt.Transactions, txn)
	}
	return stmt
}

// convertTransaction converts an OFX transaction. OFX signs amounts: negative leaves the account.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) (model.ParsedTransaction, bool) {
	amount, err := toDecimal(&ofxTx.TrnAmt)
	if err != nil || amount.IsZero() {
		return model.ParsedTransaction{}, false
	}

	txnType := model.TypeDebit
	switch {
	case ofxTx.TrnType == ofxgo.TrnTypeFee || ofxTx.TrnType == ofxgo.TrnTypeSrvChg:
		txnType = model.TypeServiceFee
	case amount.IsPositive():
		txnType = model.TypeCredit
	}

	return model.ParsedTransaction{
		Date:        ofxTx.DtPosted.UTC(),
		Description: p.extractDescription(ofxTx),
		Type:        txnType,
		Amount:      amount.Abs(),
	}, true
}

func toDecimal(a *ofxgo.Amount) (decimal.Decimal, error) {
	return decimal.NewFromString(a.FloatString(2))
}

func formatPeriod(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return ""
	}
	return start.Format(periodLayout) + " to " + end.Format(periodLayout)
}

// extractDescription tries to get a clean counterparty description from OFX data.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " card date
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
