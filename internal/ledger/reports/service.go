package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/quillbooks/quillbooks/internal/ledger/fx"
)

// Epoch is the lower bound used when a statement needs all history, e.g. the
// retained-earnings rollup.
var Epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// Service derives financial statements from posted ledger activity. The
// reporting currency is an explicit context value handed in at construction;
// nothing here consults hidden global state.
type Service struct {
	repo     Repository
	currency string
	oracle   fx.Oracle
	sf       singleflight.Group
}

// NewService constructs the statement engine for one reporting currency.
func NewService(repo Repository, currency string, oracle fx.Oracle) *Service {
	return &Service{repo: repo, currency: currency, oracle: oracle}
}

// AccountBalance sums posted activity for one account over [from, to] and
// folds it by the account's normal balance. With a nil from the query is
// point-in-time and the opening balance participates.
func (s *Service) AccountBalance(ctx context.Context, accountID int64, from *time.Time, to time.Time) (decimal.Decimal, error) {
	activity, err := s.repo.SingleAccountActivity(ctx, accountID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return activity.Amount(from == nil), nil
}

// ProfitAndLoss builds the P&L for a period. Identical concurrent requests
// collapse into one computation.
func (s *Service) ProfitAndLoss(ctx context.Context, from, to time.Time) (ProfitAndLoss, error) {
	key := fmt.Sprintf("pl:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	v, err, _ := s.sf.Do(key, func() (any, error) {
		balances, err := s.repo.AccountActivity(ctx, &from, to)
		if err != nil {
			return nil, err
		}
		pl := BuildProfitAndLoss(balances, from, to)
		pl.Currency = s.currency
		return pl, nil
	})
	if err != nil {
		return ProfitAndLoss{}, err
	}
	return v.(ProfitAndLoss), nil
}

// ProfitAndLossIn converts a period P&L into another currency through the
// oracle, using the period end as the valuation date.
func (s *Service) ProfitAndLossIn(ctx context.Context, from, to time.Time, currency string) (ProfitAndLoss, error) {
	pl, err := s.ProfitAndLoss(ctx, from, to)
	if err != nil {
		return ProfitAndLoss{}, err
	}
	if currency == s.currency {
		return pl, nil
	}
	rate, err := s.oracle.Rate(ctx, s.currency, currency, to)
	if err != nil {
		return ProfitAndLoss{}, err
	}
	// The flight result is shared with concurrent same-window callers, and
	// the struct copy still aliases the section slices. Conversion must
	// build fresh rows, never scale them in place.
	pl.Revenue = convertSection(pl.Revenue, rate)
	pl.COGS = convertSection(pl.COGS, rate)
	pl.Expenses = convertSection(pl.Expenses, rate)
	pl.GrossProfit = pl.GrossProfit.Mul(rate)
	pl.NetIncome = pl.NetIncome.Mul(rate)
	pl.Currency = currency
	return pl, nil
}

// convertSection scales a P&L section into a new currency, copying the
// account rows so the source section is left untouched.
func convertSection(section ProfitAndLossSection, rate decimal.Decimal) ProfitAndLossSection {
	out := section
	out.Total = section.Total.Mul(rate)
	out.Accounts = make([]ProfitAndLossAccount, len(section.Accounts))
	for i, acc := range section.Accounts {
		acc.Amount = acc.Amount.Mul(rate)
		out.Accounts[i] = acc
	}
	return out
}

// BalanceSheet builds the point-in-time statement. Retained earnings is the
// all-history P&L net income up to asOf, derived from the same balance set.
func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (BalanceSheet, error) {
	key := "bs:" + asOf.Format("2006-01-02")
	v, err, _ := s.sf.Do(key, func() (any, error) {
		balances, err := s.repo.AccountActivity(ctx, nil, asOf)
		if err != nil {
			return nil, err
		}
		retained := BuildProfitAndLoss(balances, Epoch, asOf).NetIncome
		bs := BuildBalanceSheet(balances, retained, asOf)
		bs.Currency = s.currency
		return bs, nil
	})
	if err != nil {
		return BalanceSheet{}, err
	}
	return v.(BalanceSheet), nil
}

// TrialBalance aggregates all posted activity; its Net must be zero for a
// ledger whose entries all balanced individually.
func (s *Service) TrialBalance(ctx context.Context, asOf time.Time) (TrialBalance, error) {
	balances, err := s.repo.AccountActivity(ctx, nil, asOf)
	if err != nil {
		return TrialBalance{}, err
	}
	return BuildTrialBalance(balances), nil
}

// CashFlow derives the indirect-method statement for a period and
// cross-checks it against the cash accounts' own movement.
func (s *Service) CashFlow(ctx context.Context, from, to time.Time) (CashFlow, error) {
	key := fmt.Sprintf("cf:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	v, err, _ := s.sf.Do(key, func() (any, error) {
		period, err := s.repo.AccountActivity(ctx, &from, to)
		if err != nil {
			return nil, err
		}
		pl := BuildProfitAndLoss(period, from, to)

		// Indirect method: cash released by shrinking non-cash assets,
		// cash raised from liabilities and owner activity.
		investing, financing := decimal.Zero, decimal.Zero
		for _, acc := range period {
			switch {
			case acc.Type.IsAsset() && !acc.Type.IsCash():
				investing = investing.Sub(acc.Amount(false))
			case acc.Type.IsLiability() || acc.Type.IsEquity():
				financing = financing.Add(acc.Amount(false))
			}
		}

		openingCash, err := s.endingCash(ctx, from.AddDate(0, 0, -1))
		if err != nil {
			return nil, err
		}
		endingCash, err := s.endingCash(ctx, to)
		if err != nil {
			return nil, err
		}

		cf := BuildCashFlow(pl.NetIncome, nil, investing, financing, openingCash, endingCash, from, to)
		cf.Currency = s.currency
		return cf, nil
	})
	if err != nil {
		return CashFlow{}, err
	}
	return v.(CashFlow), nil
}

// endingCash sums point-in-time balances of bank and cash accounts.
func (s *Service) endingCash(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	balances, err := s.repo.AccountActivity(ctx, nil, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, acc := range balances {
		if acc.Type.IsCash() {
			total = total.Add(acc.Amount(true))
		}
	}
	return total, nil
}
