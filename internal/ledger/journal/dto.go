package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// LineInput describes one journal line in a creation request.
type LineInput struct {
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	CostCenter  string
}

// CreateInput groups the fields required to create a draft entry.
type CreateInput struct {
	Date      time.Time
	Type      EntryType
	Memo      string
	Reference string
	SourceID  uuid.UUID
	Lines     []LineInput
}

// Validate ensures the draft is structurally sound. Balance is not required
// here: a draft may be work in progress, and posting re-checks it anyway.
func (in CreateInput) Validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("%w: entry date required", shared.ErrValidation)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown entry type %q", shared.ErrValidation, in.Type)
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("%w: line %d missing account", shared.ErrValidation, idx)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d negative amount", shared.ErrValidation, idx)
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return fmt.Errorf("%w: line %d cannot be both debit and credit", shared.ErrValidation, idx)
		}
	}
	return nil
}

// PostInput wraps parameters for posting.
type PostInput struct {
	EntryID int64
	ActorID int64
}

// ReverseInput wraps parameters for reversal.
type ReverseInput struct {
	EntryID int64
	ActorID int64
	Reason  string
}
