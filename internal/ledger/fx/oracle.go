// Package fx defines the currency-conversion boundary. The ledger only
// consumes rates; sourcing them is a collaborator's problem.
package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// Oracle supplies an exchange rate for a currency pair on a date. A missing
// rate is a recoverable condition (shared.ErrRateUnavailable), never fatal to
// posting.
type Oracle interface {
	Rate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error)
}

// Unavailable is the oracle used until a real rate source is wired in; every
// lookup fails with the recoverable shared.ErrRateUnavailable.
type Unavailable struct{}

// Rate always reports the pair as unpriced.
func (Unavailable) Rate(_ context.Context, from, to string, _ time.Time) (decimal.Decimal, error) {
	return decimal.Zero, fmt.Errorf("%w: %s/%s", shared.ErrRateUnavailable, from, to)
}

// Convert values an amount in another currency through the oracle. Same-pair
// conversions short-circuit without consulting it.
func Convert(ctx context.Context, oracle Oracle, amount decimal.Decimal, from, to string, date time.Time) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	rate, err := oracle.Rate(ctx, from, to, date)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}
