package recon

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the reconciliation-facing projection of ledger activity for
// one account. Amount is signed: positive for credits (money in), negative
// for debits (money out).
type Transaction struct {
	ID               int64
	AccountID        int64
	Date             time.Time
	Amount           decimal.Decimal
	Description      string
	Reconciled       bool
	DiscrepancyNotes string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StatementLine is one claimed transaction on an imported bank statement.
type StatementLine struct {
	ID          int64
	StatementID int64
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// BankStatement is an externally supplied claim about one account's month.
type BankStatement struct {
	ID            int64
	AccountID     int64
	StatementDate time.Time
	TotalCredits  decimal.Decimal
	TotalDebits   decimal.Decimal
	EndingBalance decimal.Decimal
	Reconciled    bool
	ImportID      uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []StatementLine
}

// MonthBounds returns the first and last day of the statement's calendar
// month; reconciliation only considers internal transactions inside it.
func (s BankStatement) MonthBounds() (time.Time, time.Time) {
	first := time.Date(s.StatementDate.Year(), s.StatementDate.Month(), 1, 0, 0, 0, 0, s.StatementDate.Location())
	last := first.AddDate(0, 1, -1)
	return first, last
}

// DiscrepancyType tags a reconciliation finding.
type DiscrepancyType string

const (
	DiscrepancyUnmatched       DiscrepancyType = "unmatched_transaction"
	DiscrepancyBalanceMismatch DiscrepancyType = "balance_mismatch"
)

// Discrepancy is a structured finding returned for display, never discarded.
type Discrepancy struct {
	Type     DiscrepancyType
	Date     time.Time
	Amount   decimal.Decimal
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

// MatchKind records how a transaction was matched.
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
)

// Match pairs an internal transaction with the statement line it consumed.
type Match struct {
	Transaction Transaction
	Line        StatementLine
	Kind        MatchKind
}

// Result is the full reconciliation outcome for one statement.
type Result struct {
	StatementID        int64
	Matched            []Match
	Unmatched          []Transaction
	Discrepancies      []Discrepancy
	TotalCredits       decimal.Decimal
	TotalDebits        decimal.Decimal
	BalanceDiscrepancy decimal.Decimal
}

// Clean reports whether the run produced no findings.
func (r Result) Clean() bool {
	return len(r.Discrepancies) == 0
}
