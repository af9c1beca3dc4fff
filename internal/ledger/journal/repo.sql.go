package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/ledger/shared"
	"github.com/quillbooks/quillbooks/internal/platform/db"
)

// Repository persists journal entries and applies posting mutations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes fn within a repeatable-read transaction. Serialization and
// uniqueness failures come back as ErrConflict so callers can retry.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("journal repository not initialised")
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
	return mapConflict(err)
}

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected, 23505 unique_violation
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return fmt.Errorf("%w: %s", shared.ErrConflict, pgErr.Code)
		}
	}
	return err
}

const entryColumns = `id, number, date, type, status, posted_at, reversed_at, memo, reference, source_id, approved_by, created_at, updated_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Number, &e.Date, &e.Type, &e.Status, &e.PostedAt, &e.ReversedAt,
		&e.Memo, &e.Reference, &e.SourceID, &e.ApprovedBy, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *txRepository) NextEntryNumber(ctx context.Context, year int) (int64, error) {
	var seq int64
	err := r.tx.QueryRow(ctx, `INSERT INTO entry_number_counters (year, last_seq) VALUES ($1, 1)
ON CONFLICT (year) DO UPDATE SET last_seq = entry_number_counters.last_seq + 1
RETURNING last_seq`, year).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *txRepository) InsertEntry(ctx context.Context, in CreateInput, number string) (Entry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (number, date, type, status, memo, reference, source_id)
VALUES ($1,$2,$3,'DRAFT',$4,$5,$6) RETURNING `+entryColumns, number, in.Date, in.Type, in.Memo, in.Reference, in.SourceID)
	return scanEntry(row)
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_lines (entry_id, account_id, debit, credit, description, cost_center)
VALUES ($1,$2,$3,$4,$5,$6)`, entryID, line.AccountID, shared.Cents(line.Debit), shared.Cents(line.Credit), line.Description, line.CostCenter); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetEntryForUpdate(ctx context.Context, entryID int64) (Entry, []Line, error) {
	entry, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1 FOR UPDATE`, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, nil, shared.ErrEntryNotFound
		}
		return Entry{}, nil, err
	}
	lines, err := queryLines(ctx, r.tx, entryID)
	if err != nil {
		return Entry{}, nil, err
	}
	return entry, lines, nil
}

func (r *txRepository) GetAccountsForUpdate(ctx context.Context, ids []int64) (map[int64]accounts.Account, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, code, name, type, normal_balance, balance, opening_balance, parent_id,
EXISTS (SELECT 1 FROM accounts c WHERE c.parent_id = a.id) AS has_children,
is_active, allow_manual_entry, created_at, updated_at
FROM accounts a WHERE id = ANY($1) ORDER BY id FOR UPDATE OF a`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]accounts.Account, len(ids))
	for rows.Next() {
		var a accounts.Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.NormalBalance, &a.Balance, &a.OpeningBalance,
			&a.ParentID, &a.HasChildren, &a.IsActive, &a.AllowManualEntry, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

func (r *txRepository) AddToAccountBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET balance = balance + $2, updated_at=NOW() WHERE id=$1`, accountID, delta)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) MarkPosted(ctx context.Context, entryID int64, at time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status='POSTED', posted_at=$2, updated_at=NOW() WHERE id=$1`, entryID, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

func (r *txRepository) MarkReversed(ctx context.Context, entryID int64, at time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status='REVERSED', posted_at=NULL, reversed_at=$2, updated_at=NOW() WHERE id=$1`, entryID, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

// GetEntry loads one entry with its lines outside any transaction.
func (r *Repository) GetEntry(ctx context.Context, entryID int64) (Entry, error) {
	entry, err := scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrEntryNotFound
		}
		return Entry{}, err
	}
	lines, err := queryLines(ctx, r.pool, entryID)
	if err != nil {
		return Entry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries returns all journal entries, newest allocation first. Ordering
// by id tracks number allocation order without relying on the number string,
// whose sequence part widens past six digits.
func (r *Repository) ListEntries(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryLines(ctx context.Context, q querier, entryID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT id, entry_id, account_id, debit, credit, description, cost_center, created_at, updated_at
FROM journal_lines WHERE entry_id=$1 ORDER BY id ASC`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.Debit, &line.Credit,
			&line.Description, &line.CostCenter, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
