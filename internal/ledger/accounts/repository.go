package accounts

import "context"

// Repository persists chart-of-accounts nodes.
type Repository interface {
	Insert(ctx context.Context, account Account) (Account, error)
	Get(ctx context.Context, id int64) (Account, error)
	List(ctx context.Context) ([]Account, error)
	Deactivate(ctx context.Context, id int64) error
}
