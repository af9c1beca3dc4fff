package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// EntryStatus is the explicit lifecycle tag of a journal entry. A reversed
// entry is not a draft again; its effect has been applied and undone, and it
// can never be posted a second time.
type EntryStatus string

const (
	StatusDraft    EntryStatus = "DRAFT"
	StatusPosted   EntryStatus = "POSTED"
	StatusReversed EntryStatus = "REVERSED"
)

// EntryType classifies the bookkeeping purpose of an entry.
type EntryType string

const (
	EntryTypeGeneral   EntryType = "GENERAL"
	EntryTypeAdjusting EntryType = "ADJUSTING"
	EntryTypeClosing   EntryType = "CLOSING"
	EntryTypeReversing EntryType = "REVERSING"
)

// Valid reports whether the entry type is recognized.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeGeneral, EntryTypeAdjusting, EntryTypeClosing, EntryTypeReversing:
		return true
	}
	return false
}

// Entry captures a journal entry and its lifecycle metadata.
type Entry struct {
	ID         int64
	Number     string
	Date       time.Time
	Type       EntryType
	Status     EntryStatus
	PostedAt   *time.Time
	ReversedAt *time.Time
	Memo       string
	Reference  string
	SourceID   uuid.UUID
	ApprovedBy *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Lines      []Line
}

// Line stores the debit or credit amount for one account.
type Line struct {
	ID          int64
	EntryID     int64
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	CostCenter  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Delta is the signed change the line implies for an account balance kept in
// the account's normal-balance sign.
func (l Line) Delta(normal accounts.NormalBalance) decimal.Decimal {
	if normal == accounts.NormalDebit {
		return l.Debit.Sub(l.Credit)
	}
	return l.Credit.Sub(l.Debit)
}

// IsBalanced compares total debits and credits at cent precision. An entry
// with no lines is vacuously balanced; creation rules keep such an entry from
// ever existing.
func IsBalanced(lines []Line) bool {
	debit, credit := decimal.Zero, decimal.Zero
	for _, line := range lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return shared.EqualCents(debit, credit)
}

// AccountIDs returns the distinct accounts the lines touch.
func AccountIDs(lines []Line) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	var ids []int64
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	return ids
}
