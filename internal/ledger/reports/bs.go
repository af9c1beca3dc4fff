package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// BalanceSheetAccount summarises an account for assets, liabilities, or equity.
type BalanceSheetAccount struct {
	Code    string
	Name    string
	Balance decimal.Decimal
}

// BalanceSheetSection contains the accounts and total for one classification.
type BalanceSheetSection struct {
	Label    string
	Accounts []BalanceSheetAccount
	Total    decimal.Decimal
}

// BalanceSheetCheck carries the statement's own consistency verdict. A
// failed check is reported with the statement, never corrected away.
type BalanceSheetCheck struct {
	Balanced   bool
	Difference decimal.Decimal
}

// BalanceSheet is the structured response for the balance sheet report.
type BalanceSheet struct {
	AsOf                      time.Time
	Currency                  string
	Assets                    BalanceSheetSection
	Liabilities               BalanceSheetSection
	Equity                    BalanceSheetSection
	RetainedEarnings          decimal.Decimal
	TotalEquity               decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal
	Check                     BalanceSheetCheck
}

// BuildBalanceSheet folds point-in-time balances into assets, liabilities and
// equity, adds retained earnings to equity, and verifies the accounting
// identity assets == liabilities + equity within rounding tolerance.
func BuildBalanceSheet(balances []AccountBalance, retainedEarnings decimal.Decimal, asOf time.Time) BalanceSheet {
	assets := BalanceSheetSection{Label: "Assets", Total: decimal.Zero}
	liabilities := BalanceSheetSection{Label: "Liabilities", Total: decimal.Zero}
	equity := BalanceSheetSection{Label: "Equity", Total: decimal.Zero}

	for _, acc := range balances {
		balance := acc.Amount(true)
		row := BalanceSheetAccount{Code: acc.Code, Name: acc.Name, Balance: balance}
		var section *BalanceSheetSection
		switch {
		case acc.Type.IsAsset():
			section = &assets
		case acc.Type.IsLiability():
			section = &liabilities
		case acc.Type.IsEquity():
			section = &equity
		default:
			continue
		}
		section.Total = section.Total.Add(balance)
		if nonTrivial(balance) {
			section.Accounts = append(section.Accounts, row)
		}
	}

	for _, section := range []*BalanceSheetSection{&assets, &liabilities, &equity} {
		sort.Slice(section.Accounts, func(i, j int) bool {
			return section.Accounts[i].Code < section.Accounts[j].Code
		})
	}

	totalEquity := equity.Total.Add(retainedEarnings)
	totalLiabEquity := liabilities.Total.Add(totalEquity)
	diff := assets.Total.Sub(totalLiabEquity)
	return BalanceSheet{
		AsOf:                      asOf,
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		RetainedEarnings:          retainedEarnings,
		TotalEquity:               totalEquity,
		TotalLiabilitiesAndEquity: totalLiabEquity,
		Check: BalanceSheetCheck{
			Balanced:   shared.WithinTolerance(assets.Total, totalLiabEquity),
			Difference: diff,
		},
	}
}
