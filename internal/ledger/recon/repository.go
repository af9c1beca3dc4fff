package recon

import (
	"context"
	"time"
)

// RepositoryPort abstracts reconciliation persistence.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetStatement(ctx context.Context, statementID int64) (BankStatement, error)
	ListTransactions(ctx context.Context, accountID int64, from, to time.Time) ([]Transaction, error)
	InsertStatement(ctx context.Context, stmt BankStatement) (BankStatement, error)
	InsertTransaction(ctx context.Context, txn Transaction) (Transaction, error)
}

// TxRepository holds the write-back operations of one reconciliation run.
type TxRepository interface {
	MarkTransactionsReconciled(ctx context.Context, ids []int64) error
	SetDiscrepancyNotes(ctx context.Context, id int64, notes string) error
	SetStatementReconciled(ctx context.Context, statementID int64, reconciled bool) error
}
