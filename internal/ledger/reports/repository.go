package reports

import (
	"context"
	"time"
)

// Repository supplies aggregated posted-line activity. All queries are pure
// reads over already-posted data; no locks are taken.
type Repository interface {
	// AccountActivity sums debits and credits over posted lines whose entry
	// date falls in [from, to], for every account. A nil from means
	// "everything up to to" (point-in-time).
	AccountActivity(ctx context.Context, from *time.Time, to time.Time) ([]AccountBalance, error)
	// SingleAccountActivity is the same aggregation restricted to one account.
	SingleAccountActivity(ctx context.Context, accountID int64, from *time.Time, to time.Time) (AccountBalance, error)
}
