package recon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
	"github.com/quillbooks/quillbooks/internal/platform/db"
)

// Repository persists bank statements and ledger transactions.
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

// WithTx wraps the reconciliation write-back in one transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("recon repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *Repository) GetStatement(ctx context.Context, statementID int64) (BankStatement, error) {
	var s BankStatement
	err := r.pool.QueryRow(ctx, `SELECT id, account_id, statement_date, total_credits, total_debits, ending_balance, reconciled, import_id, created_at, updated_at
FROM bank_statements WHERE id=$1`, statementID).
		Scan(&s.ID, &s.AccountID, &s.StatementDate, &s.TotalCredits, &s.TotalDebits, &s.EndingBalance, &s.Reconciled, &s.ImportID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BankStatement{}, shared.ErrStatementNotFound
		}
		return BankStatement{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, statement_id, date, amount, description FROM bank_statement_lines WHERE statement_id=$1 ORDER BY date, id`, statementID)
	if err != nil {
		return BankStatement{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line StatementLine
		if err := rows.Scan(&line.ID, &line.StatementID, &line.Date, &line.Amount, &line.Description); err != nil {
			return BankStatement{}, err
		}
		s.Lines = append(s.Lines, line)
	}
	return s, rows.Err()
}

func (r *Repository) ListTransactions(ctx context.Context, accountID int64, from, to time.Time) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, account_id, date, amount, description, reconciled, COALESCE(discrepancy_notes, ''), created_at, updated_at
FROM transactions WHERE account_id=$1 AND date BETWEEN $2 AND $3 ORDER BY date, id`, accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Date, &t.Amount, &t.Description, &t.Reconciled, &t.DiscrepancyNotes, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) InsertStatement(ctx context.Context, stmt BankStatement) (BankStatement, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO bank_statements (account_id, statement_date, total_credits, total_debits, ending_balance, reconciled, import_id)
VALUES ($1,$2,$3,$4,$5,false,$6) RETURNING id, created_at, updated_at`,
		stmt.AccountID, stmt.StatementDate, stmt.TotalCredits, stmt.TotalDebits, stmt.EndingBalance, stmt.ImportID)
	if err := row.Scan(&stmt.ID, &stmt.CreatedAt, &stmt.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return BankStatement{}, shared.ErrStatementImported
		}
		return BankStatement{}, err
	}
	for i, line := range stmt.Lines {
		if err := r.pool.QueryRow(ctx, `INSERT INTO bank_statement_lines (statement_id, date, amount, description)
VALUES ($1,$2,$3,$4) RETURNING id`, stmt.ID, line.Date, shared.Cents(line.Amount), line.Description).Scan(&stmt.Lines[i].ID); err != nil {
			return BankStatement{}, err
		}
		stmt.Lines[i].StatementID = stmt.ID
	}
	return stmt, nil
}

func (r *Repository) InsertTransaction(ctx context.Context, txn Transaction) (Transaction, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO transactions (account_id, date, amount, description, reconciled)
VALUES ($1,$2,$3,$4,false) RETURNING id, created_at, updated_at`,
		txn.AccountID, txn.Date, shared.Cents(txn.Amount), txn.Description)
	if err := row.Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

func (r *txRepository) MarkTransactionsReconciled(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.tx.Exec(ctx, `UPDATE transactions SET reconciled=true, updated_at=NOW() WHERE id = ANY($1)`, ids)
	return err
}

func (r *txRepository) SetDiscrepancyNotes(ctx context.Context, id int64, notes string) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE transactions SET discrepancy_notes=$2, updated_at=NOW() WHERE id=$1`, id, notes)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("recon: transaction %d not found", id)
	}
	return nil
}

func (r *txRepository) SetStatementReconciled(ctx context.Context, statementID int64, reconciled bool) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE bank_statements SET reconciled=$2, updated_at=NOW() WHERE id=$1`, statementID, reconciled)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrStatementNotFound
	}
	return nil
}
