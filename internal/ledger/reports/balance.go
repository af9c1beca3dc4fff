package reports

import (
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
)

// AccountBalance models one ledger account with debit/credit activity summed
// over posted lines in a reporting window.
type AccountBalance struct {
	AccountID     int64
	Code          string
	Name          string
	Type          accounts.AccountType
	NormalBalance accounts.NormalBalance
	Opening       decimal.Decimal
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// Amount folds the two activity sums into one signed balance in the
// account's normal-balance sense. Opening balances only participate in
// point-in-time queries (no lower date bound), never in period activity.
func (a AccountBalance) Amount(includeOpening bool) decimal.Decimal {
	var bal decimal.Decimal
	if a.NormalBalance == accounts.NormalDebit {
		bal = a.Debit.Sub(a.Credit)
	} else {
		bal = a.Credit.Sub(a.Debit)
	}
	if includeOpening {
		bal = bal.Add(a.Opening)
	}
	return bal
}

// nonTrivial reports whether the balance is worth a line item. Zero-activity
// accounts are suppressed from breakdowns but still counted in totals.
func nonTrivial(amount decimal.Decimal) bool {
	return amount.Abs().GreaterThan(decimal.New(1, -2))
}
