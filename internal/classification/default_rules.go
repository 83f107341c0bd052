package classification

import "github.com/sthwalo/acc-sub003/internal/model"

// Standard account codes targeted by the built-in rules.
const (
	AccountSales            = "4000-001"
	AccountInterestReceived = "4500-001"
	AccountSalaries         = "8100-001"
	AccountRent             = "8200-001"
	AccountFuel             = "8300-001"
	AccountInsurance        = "8400-001"
	AccountTelephone        = "8500-001"
	AccountElectricity      = "8600-001"
	AccountBankCharges      = "8800-001"
	AccountInterestPaid     = "9500-001"
	AccountVAT              = "2300-001"
	AccountLoans            = "2500-001"
	AccountDrawings         = "3300-001"
)

type standardRule struct {
	pattern   string
	code      string
	name      string
	matchType model.MatchType
	keywords  []string
	priority  int
}

var standardRules = []standardRule{
	{pattern: "cash deposit fee", code: AccountBankCharges, name: "Bank Charges", priority: 9},
	{pattern: "service fee", code: AccountBankCharges, name: "Bank Charges", priority: 8},
	{pattern: "monthly fee", code: AccountBankCharges, name: "Bank Charges", priority: 8},
	{pattern: "admin fee", code: AccountBankCharges, name: "Bank Charges", priority: 8},
	{pattern: "##", code: AccountBankCharges, name: "Bank Charges", priority: 6},
	{pattern: "debit interest", code: AccountInterestPaid, name: "Interest Paid", priority: 8},
	{pattern: "interest received", code: AccountInterestReceived, name: "Interest Received", priority: 8},
	{pattern: "credit interest", code: AccountInterestReceived, name: "Interest Received", priority: 8},
	{pattern: "insurance", code: AccountInsurance, name: "Insurance", priority: 7},
	{pattern: "assurance", code: AccountInsurance, name: "Insurance", priority: 7},
	{pattern: `\b(outsurance|old mutual|discovery|sanlam|santam|momentum|hollard|miway|king price|clientele|assupol)\b`, code: AccountInsurance, name: "Insurance", matchType: model.MatchRegex, priority: 6},
	{pattern: "fuel", code: AccountFuel, name: "Fuel and Oil", priority: 7},
	{pattern: "garage", code: AccountFuel, name: "Fuel and Oil", priority: 5},
	{pattern: `\b(engen|sasol|caltex|astron)\b`, code: AccountFuel, name: "Fuel and Oil", matchType: model.MatchRegex, priority: 5},
	{pattern: "salary", code: AccountSalaries, name: "Salaries and Wages", priority: 7, keywords: []string{"salary"}},
	{pattern: "salaries", code: AccountSalaries, name: "Salaries and Wages", priority: 7},
	{pattern: "wages", code: AccountSalaries, name: "Salaries and Wages", priority: 7},
	{pattern: "rental", code: AccountRent, name: "Rent Paid", priority: 6},
	{pattern: "rent", code: AccountRent, name: "Rent Paid", priority: 5},
	{pattern: "airtime", code: AccountTelephone, name: "Telephone and Internet", priority: 6},
	{pattern: "telephone", code: AccountTelephone, name: "Telephone and Internet", priority: 6},
	{pattern: "internet", code: AccountTelephone, name: "Telephone and Internet", priority: 6},
	{pattern: "electricity", code: AccountElectricity, name: "Electricity and Water", priority: 6},
	{pattern: `^(prepaid\s+)?elec`, code: AccountElectricity, name: "Electricity and Water", matchType: model.MatchRegex, priority: 6},
	{pattern: "sars vat", code: AccountVAT, name: "VAT Control", priority: 8, keywords: []string{"sars", "vat"}},
	{pattern: "vat payment", code: AccountVAT, name: "VAT Control", priority: 8},
	{pattern: "loan repayment", code: AccountLoans, name: "Loans Payable", priority: 7},
	{pattern: "loan", code: AccountLoans, name: "Loans Payable", priority: 4},
	{pattern: "drawings", code: AccountDrawings, name: "Drawings", priority: 7},
	{pattern: "payment from", code: AccountSales, name: "Sales", priority: 4},
	{pattern: "deposit", code: AccountSales, name: "Sales", priority: 3},
}

// StandardRules returns the rules shared by every company. They carry no company and sit
// below the priority of learned company rules.
func StandardRules() []model.ClassificationRule {
	rules := make([]model.ClassificationRule, 0, len(standardRules))
	for _, r := range standardRules {
		matchType := r.matchType
		if matchType == "" {
			matchType = model.MatchContains
		}
		rules = append(rules, model.ClassificationRule{
			Pattern:     r.pattern,
			MatchType:   matchType,
			AccountCode: r.code,
			AccountName: r.name,
			Keywords:    r.keywords,
			Priority:    r.priority,
			IsActive:    true,
		})
	}
	return rules
}
