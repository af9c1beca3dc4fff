package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, code, name, type, normal_balance, balance, opening_balance, parent_id,
EXISTS (SELECT 1 FROM accounts c WHERE c.parent_id = accounts.id) AS has_children,
is_active, allow_manual_entry, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.NormalBalance, &a.Balance, &a.OpeningBalance,
		&a.ParentID, &a.HasChildren, &a.IsActive, &a.AllowManualEntry, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) Insert(ctx context.Context, account Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (code, name, type, normal_balance, balance, opening_balance, parent_id, is_active, allow_manual_entry)
VALUES ($1,$2,$3,$4,$5,$6,$7,true,$8)
RETURNING id, created_at, updated_at`,
		account.Code, account.Name, account.Type, account.NormalBalance,
		account.Balance, account.OpeningBalance, account.ParentID, account.AllowManualEntry)
	if err := row.Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return Account{}, err
	}
	account.IsActive = true
	return account, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET is_active=false, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}
