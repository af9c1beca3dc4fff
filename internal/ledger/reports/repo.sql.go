package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed reporting repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const activityQuery = `SELECT a.id, a.code, a.name, a.type, a.normal_balance, a.opening_balance,
COALESCE(SUM(p.debit), 0) AS debit, COALESCE(SUM(p.credit), 0) AS credit
FROM accounts a
LEFT JOIN (
	SELECT l.account_id, l.debit, l.credit
	FROM journal_lines l
	JOIN journal_entries e ON e.id = l.entry_id
	WHERE e.status = 'POSTED'
		AND ($1::date IS NULL OR e.date >= $1)
		AND e.date <= $2
) p ON p.account_id = a.id
GROUP BY a.id, a.code, a.name, a.type, a.normal_balance, a.opening_balance`

func (r *repository) AccountActivity(ctx context.Context, from *time.Time, to time.Time) ([]AccountBalance, error) {
	rows, err := r.pool.Query(ctx, activityQuery+` ORDER BY a.code`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Name, &b.Type, &b.NormalBalance, &b.Opening, &b.Debit, &b.Credit); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repository) SingleAccountActivity(ctx context.Context, accountID int64, from *time.Time, to time.Time) (AccountBalance, error) {
	var b AccountBalance
	err := r.pool.QueryRow(ctx, activityQuery+` HAVING a.id = $3::bigint`, from, to, accountID).
		Scan(&b.AccountID, &b.Code, &b.Name, &b.Type, &b.NormalBalance, &b.Opening, &b.Debit, &b.Credit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountBalance{}, shared.ErrAccountNotFound
		}
		return AccountBalance{}, err
	}
	return b, nil
}
