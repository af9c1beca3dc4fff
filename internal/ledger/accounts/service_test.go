package accounts

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

type memoryAccountRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]Account
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{byID: make(map[int64]Account)}
}

func (r *memoryAccountRepo) Insert(ctx context.Context, account Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	account.ID = r.nextID
	account.IsActive = true
	if account.ParentID != nil {
		parent, ok := r.byID[*account.ParentID]
		if !ok {
			return Account{}, shared.ErrAccountNotFound
		}
		parent.HasChildren = true
		r.byID[parent.ID] = parent
	}
	r.byID[account.ID] = account
	return account, nil
}

func (r *memoryAccountRepo) Get(ctx context.Context, id int64) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byID[id]
	if !ok {
		return Account{}, shared.ErrAccountNotFound
	}
	return account, nil
}

func (r *memoryAccountRepo) List(ctx context.Context) ([]Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memoryAccountRepo) Deactivate(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byID[id]
	if !ok {
		return shared.ErrAccountNotFound
	}
	account.IsActive = false
	r.byID[id] = account
	return nil
}

func TestNormalBalanceByType(t *testing.T) {
	tests := []struct {
		typ  AccountType
		want NormalBalance
	}{
		{AccountTypeAsset, NormalDebit},
		{AccountTypeBank, NormalDebit},
		{AccountTypeCash, NormalDebit},
		{AccountTypeExpense, NormalDebit},
		{AccountTypeCOGS, NormalDebit},
		{AccountTypeLiability, NormalCredit},
		{AccountTypeEquity, NormalCredit},
		{AccountTypeRevenue, NormalCredit},
	}
	for _, tt := range tests {
		if got := tt.typ.NormalBalance(); got != tt.want {
			t.Fatalf("%s: got %s, want %s", tt.typ, got, tt.want)
		}
	}
}

func TestAccountTypeValid(t *testing.T) {
	for _, typ := range []AccountType{
		AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense, AccountTypeCOGS,
		AccountTypeBank, AccountTypeCash,
	} {
		require.True(t, typ.Valid(), "%s should be valid", typ)
	}
	require.False(t, AccountType("CONTRA_ASSET").Valid())
	require.False(t, AccountType("").Valid())
	require.False(t, AccountType("asset").Valid(), "type comparison is case sensitive")
}

func TestCreateDerivesNormalBalance(t *testing.T) {
	svc := NewService(newMemoryAccountRepo())

	account, err := svc.Create(context.Background(), CreateInput{
		Code:           "1200",
		Name:           "Business current account",
		Type:           AccountTypeBank,
		OpeningBalance: decimal.RequireFromString("1500.005"),
	})
	require.NoError(t, err)
	require.Equal(t, NormalDebit, account.NormalBalance)
	// Opening balances round to cents on the way in.
	require.True(t, account.Balance.Equal(decimal.RequireFromString("1500.01")))
	require.True(t, account.OpeningBalance.Equal(account.Balance))
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := NewService(newMemoryAccountRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		Code: "9999",
		Name: "Mystery",
		Type: AccountType("ACCRUAL"),
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{Name: "No code", Type: AccountTypeAsset})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestSummaryNodesRefuseEntries(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := NewService(repo)
	ctx := context.Background()

	parent, err := svc.Create(ctx, CreateInput{Code: "1000", Name: "Current assets", Type: AccountTypeAsset})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateInput{Code: "1010", Name: "Petty cash", Type: AccountTypeCash, ParentID: &parent.ID})
	require.NoError(t, err)

	ok, err := svc.CanAcceptEntries(ctx, parent.ID)
	require.NoError(t, err)
	require.False(t, ok, "summary node must not accept entries")

	ok, err = svc.CanAcceptEntries(ctx, child.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.Deactivate(ctx, child.ID))
	ok, err = svc.CanAcceptEntries(ctx, child.ID)
	require.NoError(t, err)
	require.False(t, ok, "deactivated account must not accept entries")
}

func TestCanAcceptEntriesMissingAccount(t *testing.T) {
	svc := NewService(newMemoryAccountRepo())
	_, err := svc.CanAcceptEntries(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}
