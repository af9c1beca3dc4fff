package accounts

import (
	"context"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// Service manages the chart of accounts.
type Service struct {
	repo Repository
}

// NewService constructs the account registry service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the input, derives the normal balance from the account type
// and persists the node. The normal balance is fixed here and never
// recomputed afterwards.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if err := in.Validate(); err != nil {
		return Account{}, err
	}
	account := Account{
		Code:             in.Code,
		Name:             in.Name,
		Type:             in.Type,
		NormalBalance:    in.Type.NormalBalance(),
		Balance:          shared.Cents(in.OpeningBalance),
		OpeningBalance:   shared.Cents(in.OpeningBalance),
		ParentID:         in.ParentID,
		AllowManualEntry: in.AllowManualEntry,
	}
	return s.repo.Insert(ctx, account)
}

// Get fetches a single account.
func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	return s.repo.Get(ctx, id)
}

// List returns the full chart of accounts ordered by code.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

// CanAcceptEntries reports whether the account is an eligible posting target.
func (s *Service) CanAcceptEntries(ctx context.Context, id int64) (bool, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return account.AcceptsEntries(), nil
}

// Deactivate retires an account. Accounts referenced by posted lines are
// never deleted, only deactivated.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}
