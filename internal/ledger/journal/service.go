package journal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
	internalshared "github.com/quillbooks/quillbooks/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

// Service coordinates entry creation, posting and reversal.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the journal service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create persists a draft entry with a freshly allocated entry number.
// Number allocation and the inserts share one transaction, so a failed
// creation never burns a visible number out of order.
func (s *Service) Create(ctx context.Context, input CreateInput) (Entry, error) {
	if err := input.Validate(); err != nil {
		return Entry{}, err
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		seq, err := tx.NextEntryNumber(ctx, input.Date.Year())
		if err != nil {
			return err
		}
		inserted, err := tx.InsertEntry(ctx, input, FormatEntryNumber(input.Date.Year(), seq))
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, input.Lines); err != nil {
			return err
		}
		entry = inserted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	full, err := s.repo.GetEntry(ctx, entry.ID)
	if err != nil {
		return Entry{}, err
	}
	return full, nil
}

// Get fetches one entry with its lines.
func (s *Service) Get(ctx context.Context, entryID int64) (Entry, error) {
	return s.repo.GetEntry(ctx, entryID)
}

// List returns all entries, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.ListEntries(ctx)
}

// Post applies the entry's balance deltas to its accounts and marks it
// posted, all inside one transaction. Posting an already-posted (or reversed)
// entry fails cleanly; double-application would silently corrupt every
// downstream balance.
func (s *Service) Post(ctx context.Context, input PostInput) (Entry, error) {
	if input.EntryID == 0 {
		return Entry{}, fmt.Errorf("%w: entry id required", shared.ErrValidation)
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, lines, err := tx.GetEntryForUpdate(ctx, input.EntryID)
		if err != nil {
			return err
		}
		switch current.Status {
		case StatusPosted:
			return shared.ErrAlreadyPosted
		case StatusReversed:
			return fmt.Errorf("%w: entry was reversed", shared.ErrAlreadyPosted)
		}
		if !IsBalanced(lines) {
			return shared.ErrUnbalanced
		}
		if err := s.applyDeltas(ctx, tx, lines, 1); err != nil {
			return err
		}
		now := s.now()
		if err := tx.MarkPosted(ctx, current.ID, now); err != nil {
			return err
		}
		current.Status = StatusPosted
		current.PostedAt = &now
		current.Lines = lines
		entry = current
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.record(ctx, input.ActorID, "journal.post", entry, map[string]any{"number": entry.Number})
	return entry, nil
}

// Reverse undoes a posted entry's balance effect, the exact algebraic
// inverse of Post, and tags the entry reversed.
func (s *Service) Reverse(ctx context.Context, input ReverseInput) (Entry, error) {
	if input.EntryID == 0 {
		return Entry{}, fmt.Errorf("%w: entry id required", shared.ErrValidation)
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, lines, err := tx.GetEntryForUpdate(ctx, input.EntryID)
		if err != nil {
			return err
		}
		if current.Status != StatusPosted {
			return shared.ErrNotPosted
		}
		if err := s.applyDeltas(ctx, tx, lines, -1); err != nil {
			return err
		}
		now := s.now()
		if err := tx.MarkReversed(ctx, current.ID, now); err != nil {
			return err
		}
		current.Status = StatusReversed
		current.PostedAt = nil
		current.ReversedAt = &now
		current.Lines = lines
		entry = current
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.record(ctx, input.ActorID, "journal.reverse", entry, map[string]any{
		"number": entry.Number,
		"reason": input.Reason,
	})
	return entry, nil
}

// applyDeltas locks the touched accounts in a fixed order and adds each
// line's delta (negated when sign is -1). Entry eligibility is checked on
// the posting direction only: an account deactivated after posting must
// still accept the reversal that undoes it.
func (s *Service) applyDeltas(ctx context.Context, tx TxRepository, lines []Line, sign int64) error {
	ids := AccountIDs(lines)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	locked, err := tx.GetAccountsForUpdate(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		account, ok := locked[id]
		if !ok {
			return fmt.Errorf("%w: account %d", shared.ErrAccountNotFound, id)
		}
		if sign > 0 && !account.AcceptsEntries() {
			return fmt.Errorf("%w: account %s", shared.ErrPostingNotAllowed, account.Code)
		}
	}
	for _, line := range lines {
		account := locked[line.AccountID]
		delta := line.Delta(account.NormalBalance)
		if sign < 0 {
			delta = delta.Neg()
		}
		if delta.IsZero() {
			continue
		}
		if err := tx.AddToAccountBalance(ctx, line.AccountID, delta); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, entry Entry, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalshared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "journal_entry",
		EntityID: fmt.Sprintf("%d", entry.ID),
		Meta:     meta,
		At:       s.now(),
	})
}
