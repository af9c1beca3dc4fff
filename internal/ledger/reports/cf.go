package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// CashFlowAdjustment is a non-cash add-back applied to net income. The set is
// deliberately open ended; depreciation is the usual occupant.
type CashFlowAdjustment struct {
	Label  string
	Amount decimal.Decimal
}

// CashFlowCheck cross-checks the derived net change against the movement of
// the cash accounts themselves. A divergence points at a data-quality problem
// in the ledger, not at the statement engine; it is surfaced, never smoothed
// over.
type CashFlowCheck struct {
	Consistent   bool
	CashMovement decimal.Decimal
	Difference   decimal.Decimal
}

// CashFlow is the structured cash flow statement.
type CashFlow struct {
	From                 time.Time
	To                   time.Time
	Currency             string
	NetIncome            decimal.Decimal
	OperatingAdjustments []CashFlowAdjustment
	OperatingTotal       decimal.Decimal
	InvestingTotal       decimal.Decimal
	FinancingTotal       decimal.Decimal
	NetChangeInCash      decimal.Decimal
	OpeningCash          decimal.Decimal
	EndingCash           decimal.Decimal
	Check                CashFlowCheck
}

// BuildCashFlow derives the statement from the period's net income plus
// activity totals, then cross-checks against the cash accounts' own movement
// (endingCash - openingCash).
func BuildCashFlow(netIncome decimal.Decimal, adjustments []CashFlowAdjustment,
	investing, financing, openingCash, endingCash decimal.Decimal, from, to time.Time) CashFlow {

	operating := netIncome
	for _, adj := range adjustments {
		operating = operating.Add(adj.Amount)
	}
	netChange := operating.Add(investing).Add(financing)
	movement := endingCash.Sub(openingCash)
	return CashFlow{
		From:                 from,
		To:                   to,
		NetIncome:            netIncome,
		OperatingAdjustments: adjustments,
		OperatingTotal:       operating,
		InvestingTotal:       investing,
		FinancingTotal:       financing,
		NetChangeInCash:      netChange,
		OpeningCash:          openingCash,
		EndingCash:           endingCash,
		Check: CashFlowCheck{
			Consistent:   shared.WithinTolerance(netChange, movement),
			CashMovement: movement,
			Difference:   netChange.Sub(movement),
		},
	}
}
