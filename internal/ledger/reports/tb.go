package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TrialBalanceAccount represents a row in the trial balance.
type TrialBalanceAccount struct {
	Code    string
	Name    string
	Opening decimal.Decimal
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// TrialBalance aggregates every posted account; a healthy ledger nets total
// debits against total credits exactly.
type TrialBalance struct {
	Accounts    []TrialBalanceAccount
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Net is debits minus credits over all posted activity; zero for a ledger
// whose entries were all individually balanced.
func (tb TrialBalance) Net() decimal.Decimal {
	return tb.TotalDebit.Sub(tb.TotalCredit)
}

// BuildTrialBalance converts account activity into trial balance rows.
func BuildTrialBalance(balances []AccountBalance) TrialBalance {
	tb := TrialBalance{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, acc := range balances {
		tb.Accounts = append(tb.Accounts, TrialBalanceAccount{
			Code:    acc.Code,
			Name:    acc.Name,
			Opening: acc.Opening,
			Debit:   acc.Debit,
			Credit:  acc.Credit,
		})
		tb.TotalDebit = tb.TotalDebit.Add(acc.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(acc.Credit)
	}
	sort.Slice(tb.Accounts, func(i, j int) bool { return tb.Accounts[i].Code < tb.Accounts[j].Code })
	return tb
}
