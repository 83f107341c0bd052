// Package assembler turns parsed statement entries into company transactions.
package assembler

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// Assembler stamps parsed statement entries with company, period and source metadata.
type Assembler struct {
	SourceFile    string
	AccountNumber string
}

// New creates an Assembler for one statement.
func New(sourceFile, accountNumber string) *Assembler {
	return &Assembler{SourceFile: sourceFile, AccountNumber: accountNumber}
}

// Assemble converts p into a Transaction for company. The amount lands on exactly one
// side; the other side is zero. A date outside every fiscal period leaves the period unset.
func (a *Assembler) Assemble(p model.ParsedTransaction, company *model.Company) model.Transaction {
	date := p.Date.UTC()
	txn := model.Transaction{
		CompanyID:       company.ID,
		TransactionDate: date,
		Details:         p.Description,
		SourceFile:      a.SourceFile,
		AccountNumber:   a.AccountNumber,
		DebitAmount:     decimal.Zero,
		CreditAmount:    decimal.Zero,
	}

	if p.Type == model.TypeCredit {
		txn.CreditAmount = p.Amount
	} else {
		txn.DebitAmount = p.Amount
	}

	if p.Balance != nil {
		balance := *p.Balance
		txn.Balance = &balance
	}

	if period := FindFiscalPeriod(company.FiscalPeriods, date); period != nil {
		id := period.ID
		txn.FiscalPeriodID = &id
	} else {
		slog.Warn("No fiscal period covers transaction date",
			"company_id", company.ID,
			"date", date.Format("2006-01-02"),
			"details", p.Description)
	}

	txn.Reference = txn.GenerateReference()
	return txn
}

// AssembleAll assembles every parsed entry in order.
func (a *Assembler) AssembleAll(parsed []model.ParsedTransaction, company *model.Company) []model.Transaction {
	txns := make([]model.Transaction, 0, len(parsed))
	for _, p := range parsed {
		txns = append(txns, a.Assemble(p, company))
	}
	return txns
}

// FindFiscalPeriod returns the first period containing date, or nil.
func FindFiscalPeriod(periods []model.FiscalPeriod, date time.Time) *model.FiscalPeriod {
	for i := range periods {
		if periods[i].Contains(date) {
			return &periods[i]
		}
	}
	return nil
}
