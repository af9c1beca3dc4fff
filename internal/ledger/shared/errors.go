package shared

import "errors"

var (
	// ErrValidation indicates a malformed account or entry specification.
	ErrValidation = errors.New("ledger: validation failed")
	// ErrUnbalanced indicates entry debits != credits at cent precision.
	ErrUnbalanced = errors.New("ledger: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("ledger: journal entry requires at least two lines")
	// ErrAlreadyPosted indicates post() on a posted entry.
	ErrAlreadyPosted = errors.New("ledger: journal entry already posted")
	// ErrNotPosted indicates reverse() on an entry that is not posted.
	ErrNotPosted = errors.New("ledger: journal entry not posted")
	// ErrPostingNotAllowed indicates the target account cannot accept entries.
	ErrPostingNotAllowed = errors.New("ledger: account cannot accept entries")
	// ErrConflict indicates lock or version contention; the caller may retry.
	ErrConflict = errors.New("ledger: concurrency conflict")
	// ErrAccountNotFound indicates a missing account.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrEntryNotFound indicates a missing journal entry.
	ErrEntryNotFound = errors.New("ledger: journal entry not found")
	// ErrStatementNotFound indicates a missing bank statement.
	ErrStatementNotFound = errors.New("ledger: bank statement not found")
	// ErrStatementImported indicates a duplicate statement import.
	ErrStatementImported = errors.New("ledger: bank statement already imported")
	// ErrRateUnavailable indicates the currency oracle has no rate for the pair.
	ErrRateUnavailable = errors.New("ledger: exchange rate unavailable")
	// ErrReconciliationBusy indicates another reconciliation run holds the
	// statement lock.
	ErrReconciliationBusy = errors.New("ledger: reconciliation already running for statement")
)
