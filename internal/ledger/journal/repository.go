package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetEntry(ctx context.Context, entryID int64) (Entry, error)
	ListEntries(ctx context.Context) ([]Entry, error)
}

// TxRepository exposes the operations available inside one atomic unit of
// work. Posting and reversal do all their reads and writes through it.
type TxRepository interface {
	// NextEntryNumber hands out the next sequence for the year under a
	// serialized counter update. Duplicate hand-outs surface as ErrConflict.
	NextEntryNumber(ctx context.Context, year int) (int64, error)
	InsertEntry(ctx context.Context, in CreateInput, number string) (Entry, error)
	InsertLines(ctx context.Context, entryID int64, lines []LineInput) error
	// GetEntryForUpdate locks the entry row so concurrent post/reverse of the
	// same entry serialize.
	GetEntryForUpdate(ctx context.Context, entryID int64) (Entry, []Line, error)
	// GetAccountsForUpdate locks the account rows in ascending id order so
	// entries touching overlapping account sets cannot deadlock.
	GetAccountsForUpdate(ctx context.Context, ids []int64) (map[int64]accounts.Account, error)
	AddToAccountBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error
	MarkPosted(ctx context.Context, entryID int64, at time.Time) error
	MarkReversed(ctx context.Context, entryID int64, at time.Time) error
}
