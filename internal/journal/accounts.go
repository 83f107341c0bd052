package journal

import (
	"fmt"
	"strings"

	"github.com/sthwalo/acc-sub003/internal/common"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// DefaultCategory is used when no roll-up prefix matches an account code.
const DefaultCategory = "Other"

// categoryRollup maps account code prefixes to reporting categories. The longest matching
// prefix wins.
var categoryRollup = map[string]string{
	"1":  "Current Assets",
	"11": "Bank and Cash",
	"12": "Accounts Receivable",
	"13": "Inventory",
	"15": "Fixed Assets",
	"2":  "Current Liabilities",
	"21": "Accounts Payable",
	"23": "Tax Liabilities",
	"25": "Long-term Liabilities",
	"3":  "Equity",
	"31": "Share Capital",
	"32": "Opening Balance Equity",
	"33": "Drawings",
	"4":  "Revenue",
	"40": "Sales Revenue",
	"45": "Interest Income",
	"5":  "Other Income",
	"6":  "Other Income",
	"7":  "Cost of Sales",
	"8":  "Operating Expenses",
	"81": "Employee Costs",
	"82": "Occupancy",
	"83": "Vehicle Expenses",
	"84": "Insurance",
	"85": "Communication",
	"86": "Utilities",
	"88": "Bank Charges",
	"9":  "Other Expenses",
	"95": "Finance Costs",
}

// InferAccountType derives an account type from the leading digit of its code:
// 1 asset, 2 liability, 3 equity, 4 to 6 income, 7 to 9 expense.
func InferAccountType(code string) (model.AccountType, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: empty account code", common.ErrValidation)
	}

	switch code[0] {
	case '1':
		return model.AccountTypeAsset, nil
	case '2':
		return model.AccountTypeLiability, nil
	case '3':
		return model.AccountTypeEquity, nil
	case '4', '5', '6':
		return model.AccountTypeIncome, nil
	case '7', '8', '9':
		return model.AccountTypeExpense, nil
	}
	return "", fmt.Errorf("%w: account code %q does not start with a digit 1-9", common.ErrValidation, code)
}

// InferCategory returns the reporting category for an account code.
func InferCategory(code string) string {
	code = strings.TrimSpace(code)
	for n := len(code); n > 0; n-- {
		if category, ok := categoryRollup[code[:n]]; ok {
			return category
		}
	}
	return DefaultCategory
}
