package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ProfitAndLossAccount represents one line item in a P&L section.
type ProfitAndLossAccount struct {
	Code   string
	Name   string
	Amount decimal.Decimal
}

// ProfitAndLossSection groups accounts by nature.
type ProfitAndLossSection struct {
	Label    string
	Accounts []ProfitAndLossAccount
	Total    decimal.Decimal
}

// ProfitAndLoss contains the structured output for the report. COGS and
// expense totals are positive magnitudes.
type ProfitAndLoss struct {
	From        time.Time
	To          time.Time
	Currency    string
	Revenue     ProfitAndLossSection
	COGS        ProfitAndLossSection
	Expenses    ProfitAndLossSection
	GrossProfit decimal.Decimal
	NetIncome   decimal.Decimal
}

// BuildProfitAndLoss aggregates period activity into revenue, cost of goods
// sold, and expense sections.
func BuildProfitAndLoss(balances []AccountBalance, from, to time.Time) ProfitAndLoss {
	revenue := ProfitAndLossSection{Label: "Revenue", Total: decimal.Zero}
	cogs := ProfitAndLossSection{Label: "Cost of Goods Sold", Total: decimal.Zero}
	expenses := ProfitAndLossSection{Label: "Expenses", Total: decimal.Zero}

	for _, acc := range balances {
		amount := acc.Amount(false)
		row := ProfitAndLossAccount{Code: acc.Code, Name: acc.Name, Amount: amount}
		var section *ProfitAndLossSection
		switch {
		case acc.Type.IsRevenue():
			section = &revenue
		case acc.Type.IsCOGS():
			section = &cogs
		case acc.Type.IsExpense():
			section = &expenses
		default:
			continue
		}
		section.Total = section.Total.Add(amount)
		if nonTrivial(amount) {
			section.Accounts = append(section.Accounts, row)
		}
	}

	for _, section := range []*ProfitAndLossSection{&revenue, &cogs, &expenses} {
		sort.Slice(section.Accounts, func(i, j int) bool {
			return section.Accounts[i].Code < section.Accounts[j].Code
		})
	}

	gross := revenue.Total.Sub(cogs.Total)
	return ProfitAndLoss{
		From:        from,
		To:          to,
		Revenue:     revenue,
		COGS:        cogs,
		Expenses:    expenses,
		GrossProfit: gross,
		NetIncome:   gross.Sub(expenses.Total),
	}
}
