package journal

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

type memoryRepo struct {
	mu         sync.Mutex
	accounts   map[int64]accounts.Account
	entries    map[int64]Entry
	lines      map[int64][]Line
	counters   map[int]int64
	nextEntry  int64
	nextLineID int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		accounts: make(map[int64]accounts.Account),
		entries:  make(map[int64]Entry),
		lines:    make(map[int64][]Line),
		counters: make(map[int]int64),
	}
}

func (r *memoryRepo) addAccount(id int64, code string, typ accounts.AccountType, opts ...func(*accounts.Account)) {
	a := accounts.Account{
		ID:            id,
		Code:          code,
		Name:          code,
		Type:          typ,
		NormalBalance: typ.NormalBalance(),
		Balance:       decimal.Zero,
		IsActive:      true,
	}
	for _, opt := range opts {
		opt(&a)
	}
	r.accounts[id] = a
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) GetEntry(ctx context.Context, entryID int64) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[entryID]
	if !ok {
		return Entry{}, shared.ErrEntryNotFound
	}
	entry.Lines = append([]Line(nil), r.lines[entryID]...)
	return entry, nil
}

func (r *memoryRepo) ListEntries(ctx context.Context) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (t *memoryTx) NextEntryNumber(ctx context.Context, year int) (int64, error) {
	t.repo.counters[year]++
	return t.repo.counters[year], nil
}

func (t *memoryTx) InsertEntry(ctx context.Context, in CreateInput, number string) (Entry, error) {
	t.repo.nextEntry++
	now := time.Now()
	entry := Entry{
		ID:        t.repo.nextEntry,
		Number:    number,
		Date:      in.Date,
		Type:      in.Type,
		Status:    StatusDraft,
		Memo:      in.Memo,
		Reference: in.Reference,
		SourceID:  in.SourceID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.repo.entries[entry.ID] = entry
	return entry, nil
}

func (t *memoryTx) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	for _, in := range lines {
		t.repo.nextLineID++
		t.repo.lines[entryID] = append(t.repo.lines[entryID], Line{
			ID:          t.repo.nextLineID,
			EntryID:     entryID,
			AccountID:   in.AccountID,
			Debit:       shared.Cents(in.Debit),
			Credit:      shared.Cents(in.Credit),
			Description: in.Description,
			CostCenter:  in.CostCenter,
		})
	}
	return nil
}

func (t *memoryTx) GetEntryForUpdate(ctx context.Context, entryID int64) (Entry, []Line, error) {
	entry, ok := t.repo.entries[entryID]
	if !ok {
		return Entry{}, nil, shared.ErrEntryNotFound
	}
	return entry, append([]Line(nil), t.repo.lines[entryID]...), nil
}

func (t *memoryTx) GetAccountsForUpdate(ctx context.Context, ids []int64) (map[int64]accounts.Account, error) {
	out := make(map[int64]accounts.Account, len(ids))
	for _, id := range ids {
		if a, ok := t.repo.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (t *memoryTx) AddToAccountBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error {
	a, ok := t.repo.accounts[accountID]
	if !ok {
		return shared.ErrAccountNotFound
	}
	a.Balance = a.Balance.Add(delta)
	t.repo.accounts[accountID] = a
	return nil
}

func (t *memoryTx) MarkPosted(ctx context.Context, entryID int64, at time.Time) error {
	e, ok := t.repo.entries[entryID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	e.Status = StatusPosted
	e.PostedAt = &at
	t.repo.entries[entryID] = e
	return nil
}

func (t *memoryTx) MarkReversed(ctx context.Context, entryID int64, at time.Time) error {
	e, ok := t.repo.entries[entryID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	e.Status = StatusReversed
	e.PostedAt = nil
	e.ReversedAt = &at
	t.repo.entries[entryID] = e
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func validInput(lines ...LineInput) CreateInput {
	return CreateInput{
		Date:     time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		Type:     EntryTypeGeneral,
		Memo:     "test entry",
		SourceID: uuid.New(),
		Lines:    lines,
	}
}

func TestCreateAssignsEntryNumber(t *testing.T) {
	repo := newMemoryRepo()
	repo.addAccount(1, "1000", accounts.AccountTypeBank)
	repo.addAccount(2, "4000", accounts.AccountTypeRevenue)
	svc := NewService(repo, nil)

	entry, err := svc.Create(context.Background(), validInput(
		LineInput{AccountID: 1, Debit: dec("100.00")},
		LineInput{AccountID: 2, Credit: dec("100.00")},
	))
	require.NoError(t, err)
	require.Equal(t, "JE-2026-000001", entry.Number)
	require.Equal(t, StatusDraft, entry.Status)
	require.Len(t, entry.Lines, 2)

	second, err := svc.Create(context.Background(), validInput(
		LineInput{AccountID: 1, Debit: dec("1.00")},
		LineInput{AccountID: 2, Credit: dec("1.00")},
	))
	require.NoError(t, err)
	require.Equal(t, "JE-2026-000002", second.Number)
}

func TestListOrderSurvivesWideSequences(t *testing.T) {
	repo := newMemoryRepo()
	repo.addAccount(1, "1000", accounts.AccountTypeBank)
	repo.addAccount(2, "4000", accounts.AccountTypeRevenue)
	repo.counters[2026] = 999998
	svc := NewService(repo, nil)

	// The sequence widens past six digits here, so a lexicographic sort of
	// the number string would put JE-2026-999999 ahead of JE-2026-1000001.
	var created []string
	for i := 0; i < 3; i++ {
		entry, err := svc.Create(context.Background(), validInput(
			LineInput{AccountID: 1, Debit: dec("1.00")},
			LineInput{AccountID: 2, Credit: dec("1.00")},
		))
		require.NoError(t, err)
		created = append([]string{entry.Number}, created...)
	}
	require.Equal(t, []string{"JE-2026-1000001", "JE-2026-1000000", "JE-2026-999999"}, created)

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	var got []string
	for _, e := range listed {
		got = append(got, e.Number)
	}
	require.Equal(t, created, got)
}

func TestCreateRejectsMalformedInput(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateInput{})
	require.ErrorIs(t, err, shared.ErrValidation)

	in := validInput(LineInput{AccountID: 1, Debit: dec("10.00")})
	_, err = svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrTooFewLines)

	in = validInput(
		LineInput{AccountID: 1, Debit: dec("10.00"), Credit: dec("5.00")},
		LineInput{AccountID: 2, Credit: dec("5.00")},
	)
	_, err = svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)

	in = validInput(
		LineInput{AccountID: 1, Debit: dec("-10.00")},
		LineInput{AccountID: 2, Credit: dec("-10.00")},
	)
	_, err = svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestConcurrentNumberAllocation(t *testing.T) {
	repo := newMemoryRepo()
	repo.addAccount(1, "1000", accounts.AccountTypeBank)
	repo.addAccount(2, "4000", accounts.AccountTypeRevenue)
	svc := NewService(repo, nil)

	const n = 50
	numbers := make(chan string, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			entry, err := svc.Create(context.Background(), validInput(
				LineInput{AccountID: 1, Debit: dec("5.00")},
				LineInput{AccountID: 2, Credit: dec("5.00")},
			))
			if err != nil {
				return err
			}
			numbers <- entry.Number
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(numbers)

	seen := make(map[string]bool, n)
	for number := range numbers {
		require.False(t, seen[number], "duplicate entry number %s", number)
		seen[number] = true
	}
	require.Len(t, seen, n)
}

func TestPostAppliesDeltas(t *testing.T) {
	repo := newMemoryRepo()
	repo.addAccount(1, "1000", accounts.AccountTypeBank)
	repo.addAccount(2, "4000", accounts.AccountTypeRevenue)
	svc := NewService(repo, nil)

	entry, err := svc.Create(context.Background(), validInput(
		LineInput{AccountID: 1, Debit: dec("250.00")},
		LineInput{AccountID: 2, Credit: dec("250.00")},
	))
	require.NoError(t, err)

	posted, err := svc.Post(context.Background(), PostInput{EntryID: entry.ID})
	require.NoError(t, err)
	require.Equal(t, StatusPosted, posted.Status)
	require.NotNil(t, posted.PostedAt)

	// Both balances grow: each in its own normal-balance sense.
	require.True(t, repo.accounts[1].Balance.Equal(dec("250.00")))
	require.True(t, repo.accounts[2].Balance.Equal(dec("250.00")))
}

func TestPostReverseRoundTrip(t *testing.T) {
	repo := newMemoryRepo()
	repo.addAccount(1, "1000", accounts.AccountTypeBank, func(a *accounts.Account) {
		a.Balance = dec("1000.00")
	})
	repo.addAccount(2, "2000", accounts.AccountTypeLiability)
	repo.addAccount(3, "5000", accounts.AccountTypeExpense)
	svc := NewService(repo, nil)

	before := map[int64]decimal.Decimal{}
	for id, a := range repo.accounts {
		before[id] = a.Balance
	}

	entry, err := svc.Create(context.Background(), validInput(
		LineInput{AccountID: 3, Debit: dec("75.50")},
		LineInput{AccountID: 1, Credit: dec("50.50")},
		LineInput{AccountID: 2, Credit: dec("25.00")},
	))
	require.NoError(t, err)

	_, err = svc.Post(context.Background(), PostInput{EntryID: entry.ID})
	require.NoError(t, err)

	reversed, err := svc.Reverse(context.Background(), ReverseInput{EntryID: entry.ID, Reason: "keyed twice"})
	require.NoError(t, err)
	require.Equal(t, StatusReversed, reversed.Status)
	require.Nil(t, reversed.PostedAt)
	require.NotNil(t, reversed.ReversedAt)

	for id, a := range repo.accounts {
		require.True(t, a.Balance.Equal(before[id]),
			"account %d: want %s got %s", id, before[id], a.Balance)
	}
}

func TestPostUnbalancedFails(t *testing.T) {
	repo := newMemoryRepo()
	repo.addAccount(1, "1000", accounts.AccountTypeBank)
	repo.addAccount(2, "4000", accounts.AccountTypeRevenue)
	svc := NewService(repo, nil)

	entry, err := svc.Create(context.Background(), validInput(
		LineInput{AccountID: 1, Debit: dec("500.00")},
		LineInput{AccountID: 2, Credit: dec("300.00")},
	))
	require.NoError(t, err)

	_, err = svc.Post(context.Background(), PostInput{EntryID: entry.ID})
	require.ErrorIs(t, err, shared.ErrUnbalanced)

	require.True(t, repo.accounts[1].Balance.IsZero())
	require.True(t, repo.accounts[2].Balance.IsZero())

	got, err := svc.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, got.Status)
}

func TestPostIdempotenceGuards(t *testing.T) {
	repo := newMemoryRepo()
	repo.addAccount(1, "1000", accounts.AccountTypeBank)
	repo.addAccount(2, "4000", accounts.AccountTypeRevenue)
	svc := NewService(repo, nil)

	entry, err := svc.Create(context.Background(), validInput(
		LineInput{AccountID: 1, Debit: dec("40.00")},
		LineInput{AccountID: 2, Credit: dec("40.00")},
	))
	require.NoError(t, err)

	// Reversing a draft fails.
	_, err = svc.Reverse(context.Background(), ReverseInput{EntryID: entry.ID})
	require.ErrorIs(t, err, shared.ErrNotPosted)

	_, err = svc.Post(context.Background(), PostInput{EntryID: entry.ID})
	require.NoError(t, err)

	// Double post fails and does not double-apply.
	_, err = svc.Post(context.Background(), PostInput{EntryID: entry.ID})
	require.ErrorIs(t, err, shared.ErrAlreadyPosted)
	require.True(t, repo.accounts[1].Balance.Equal(dec("40.00")))

	_, err = svc.Reverse(context.Background(), ReverseInput{EntryID: entry.ID})
	require.NoError(t, err)

	// Double reverse fails and does not double-undo.
	_, err = svc.Reverse(context.Background(), ReverseInput{EntryID: entry.ID})
	require.ErrorIs(t, err, shared.ErrNotPosted)
	require.True(t, repo.accounts[1].Balance.IsZero())

	// A reversed entry can never be posted again.
	_, err = svc.Post(context.Background(), PostInput{EntryID: entry.ID})
	require.ErrorIs(t, err, shared.ErrAlreadyPosted)
}

func TestPostRejectsIneligibleAccounts(t *testing.T) {
	repo := newMemoryRepo()
	parent := int64(10)
	repo.addAccount(parent, "1000", accounts.AccountTypeAsset, func(a *accounts.Account) {
		a.HasChildren = true
	})
	repo.addAccount(11, "1000.1", accounts.AccountTypeAsset, func(a *accounts.Account) {
		a.ParentID = &parent
	})
	repo.addAccount(12, "4000", accounts.AccountTypeRevenue, func(a *accounts.Account) {
		a.IsActive = false
	})
	svc := NewService(repo, nil)

	entry, err := svc.Create(context.Background(), validInput(
		LineInput{AccountID: parent, Debit: dec("10.00")},
		LineInput{AccountID: 12, Credit: dec("10.00")},
	))
	require.NoError(t, err)

	_, err = svc.Post(context.Background(), PostInput{EntryID: entry.ID})
	require.ErrorIs(t, err, shared.ErrPostingNotAllowed)
	for _, a := range repo.accounts {
		require.True(t, a.Balance.IsZero())
	}
}

func TestReverseSurvivesAccountDeactivation(t *testing.T) {
	repo := newMemoryRepo()
	repo.addAccount(1, "1000", accounts.AccountTypeBank)
	repo.addAccount(2, "4000", accounts.AccountTypeRevenue)
	svc := NewService(repo, nil)

	entry, err := svc.Create(context.Background(), validInput(
		LineInput{AccountID: 1, Debit: dec("40.00")},
		LineInput{AccountID: 2, Credit: dec("40.00")},
	))
	require.NoError(t, err)
	_, err = svc.Post(context.Background(), PostInput{EntryID: entry.ID})
	require.NoError(t, err)

	// Retire the revenue account after the fact. Its posted history must
	// stay reversible.
	retired := repo.accounts[2]
	retired.IsActive = false
	repo.accounts[2] = retired

	reversed, err := svc.Reverse(context.Background(), ReverseInput{EntryID: entry.ID})
	require.NoError(t, err)
	require.Equal(t, StatusReversed, reversed.Status)
	require.True(t, repo.accounts[1].Balance.IsZero())
	require.True(t, repo.accounts[2].Balance.IsZero())

	// New postings to the retired account still fail.
	draft, err := svc.Create(context.Background(), validInput(
		LineInput{AccountID: 1, Debit: dec("5.00")},
		LineInput{AccountID: 2, Credit: dec("5.00")},
	))
	require.NoError(t, err)
	_, err = svc.Post(context.Background(), PostInput{EntryID: draft.ID})
	require.ErrorIs(t, err, shared.ErrPostingNotAllowed)
}

func TestPostMissingEntry(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Post(context.Background(), PostInput{EntryID: 99})
	require.ErrorIs(t, err, shared.ErrEntryNotFound)
}

func TestIsBalanced(t *testing.T) {
	lines := []Line{
		{Debit: dec("100.00")},
		{Credit: dec("60.00")},
		{Credit: dec("40.00")},
	}
	require.True(t, IsBalanced(lines))

	// Nudging one side by more than a cent flips the predicate.
	lines[0].Debit = dec("100.02")
	require.False(t, IsBalanced(lines))

	// Sub-cent noise is invisible at the comparison precision.
	require.True(t, IsBalanced([]Line{
		{Debit: dec("0.004")},
		{Credit: dec("0.001")},
	}))
}

// A zero-line entry is vacuously balanced. The predicate keeps that shape on
// purpose; CreateInput.Validate refuses to create such an entry, which is
// what actually protects the ledger.
func TestIsBalancedVacuousOnNoLines(t *testing.T) {
	require.True(t, IsBalanced(nil))

	_, err := NewService(newMemoryRepo(), nil).Create(context.Background(), validInput())
	require.ErrorIs(t, err, shared.ErrTooFewLines)
}

func TestFormatEntryNumber(t *testing.T) {
	tests := []struct {
		year int
		seq  int64
		want string
	}{
		{2026, 1, "JE-2026-000001"},
		{2026, 42, "JE-2026-000042"},
		{2025, 999999, "JE-2025-999999"},
		{2027, 1000000, "JE-2027-1000000"},
	}
	for _, tt := range tests {
		got := FormatEntryNumber(tt.year, tt.seq)
		if got != tt.want {
			t.Fatalf("FormatEntryNumber(%d, %d) = %s, want %s", tt.year, tt.seq, got, tt.want)
		}
	}
}
