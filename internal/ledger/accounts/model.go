package accounts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// AccountType enumerates CoA categories. The set is closed: anything outside
// it is rejected when the account is created, not when a balance is computed.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
	AccountTypeCOGS      AccountType = "COGS"
	AccountTypeBank      AccountType = "BANK"
	AccountTypeCash      AccountType = "CASH"
)

// NormalBalance states whether an account grows with debits or credits.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// Valid reports whether the type belongs to the closed enumeration.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense, AccountTypeCOGS,
		AccountTypeBank, AccountTypeCash:
		return true
	}
	return false
}

// NormalBalance is a total function over valid account types. Callers must
// validate the type first; an invalid type never reaches this point because
// construction rejects it.
func (t AccountType) NormalBalance() NormalBalance {
	switch t {
	case AccountTypeAsset, AccountTypeExpense, AccountTypeCOGS, AccountTypeBank, AccountTypeCash:
		return NormalDebit
	default:
		return NormalCredit
	}
}

// IsCash reports whether balances of this type count toward ending cash on
// the cash flow statement.
func (t AccountType) IsCash() bool {
	return t == AccountTypeBank || t == AccountTypeCash
}

// IsAsset groups the balance-sheet asset types, bank and cash included.
func (t AccountType) IsAsset() bool {
	return t == AccountTypeAsset || t.IsCash()
}

// IsLiability reports the liability type.
func (t AccountType) IsLiability() bool { return t == AccountTypeLiability }

// IsEquity reports the equity type.
func (t AccountType) IsEquity() bool { return t == AccountTypeEquity }

// IsRevenue reports the revenue type.
func (t AccountType) IsRevenue() bool { return t == AccountTypeRevenue }

// IsCOGS reports the cost-of-goods-sold type.
func (t AccountType) IsCOGS() bool { return t == AccountTypeCOGS }

// IsExpense reports the expense type.
func (t AccountType) IsExpense() bool { return t == AccountTypeExpense }

// Account models a chart of accounts node. Balance is kept in the account's
// own normal-balance sign; only the posting engine mutates it.
type Account struct {
	ID               int64
	Code             string
	Name             string
	Type             AccountType
	NormalBalance    NormalBalance
	Balance          decimal.Decimal
	OpeningBalance   decimal.Decimal
	ParentID         *int64
	HasChildren      bool
	IsActive         bool
	AllowManualEntry bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AcceptsEntries reports whether the account is a legal posting target.
// Summary nodes (accounts with children) aggregate through their children and
// never hold lines of their own.
func (a Account) AcceptsEntries() bool {
	return a.IsActive && !a.HasChildren
}

// CreateInput carries the fields needed to create an account.
type CreateInput struct {
	Code             string
	Name             string
	Type             AccountType
	OpeningBalance   decimal.Decimal
	ParentID         *int64
	AllowManualEntry bool
}

// Validate rejects malformed specifications, in particular unknown account
// types, before anything touches the store.
func (in CreateInput) Validate() error {
	if in.Code == "" {
		return fmt.Errorf("%w: account code required", shared.ErrValidation)
	}
	if in.Name == "" {
		return fmt.Errorf("%w: account name required", shared.ErrValidation)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", shared.ErrValidation, in.Type)
	}
	return nil
}
