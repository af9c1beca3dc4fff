package recon

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
	internalshared "github.com/quillbooks/quillbooks/internal/shared"
)

// lockTTL bounds how long a crashed run can keep a statement locked.
const lockTTL = 5 * time.Minute

// AuditPort records reconciliation outcomes.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

// Service runs reconciliations. Runs are single-flight per statement: a redis
// lock keeps concurrent runs (same process or not) from double-counting
// matches.
type Service struct {
	repo  RepositoryPort
	redis *redis.Client
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the reconciliation service.
func NewService(repo RepositoryPort, rdb *redis.Client, audit AuditPort) *Service {
	return &Service{repo: repo, redis: rdb, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ImportInput carries an externally supplied statement.
type ImportInput struct {
	AccountID     int64
	StatementDate time.Time
	TotalCredits  decimal.Decimal
	TotalDebits   decimal.Decimal
	EndingBalance decimal.Decimal
	ImportID      uuid.UUID
	Lines         []StatementLine
}

// Validate rejects malformed imports.
func (in ImportInput) Validate() error {
	if in.AccountID == 0 {
		return fmt.Errorf("%w: statement account required", shared.ErrValidation)
	}
	if in.StatementDate.IsZero() {
		return fmt.Errorf("%w: statement date required", shared.ErrValidation)
	}
	if in.ImportID == uuid.Nil {
		return fmt.Errorf("%w: import id required", shared.ErrValidation)
	}
	return nil
}

// Import stores a bank statement and its claimed lines. Re-importing the same
// ImportID fails with ErrStatementImported.
func (s *Service) Import(ctx context.Context, in ImportInput) (BankStatement, error) {
	if err := in.Validate(); err != nil {
		return BankStatement{}, err
	}
	return s.repo.InsertStatement(ctx, BankStatement{
		AccountID:     in.AccountID,
		StatementDate: in.StatementDate,
		TotalCredits:  shared.Cents(in.TotalCredits),
		TotalDebits:   shared.Cents(in.TotalDebits),
		EndingBalance: shared.Cents(in.EndingBalance),
		ImportID:      in.ImportID,
		Lines:         in.Lines,
	})
}

// RecordTransaction stores one ledger transaction for later reconciliation.
func (s *Service) RecordTransaction(ctx context.Context, txn Transaction) (Transaction, error) {
	if txn.AccountID == 0 {
		return Transaction{}, fmt.Errorf("%w: transaction account required", shared.ErrValidation)
	}
	if txn.Date.IsZero() {
		return Transaction{}, fmt.Errorf("%w: transaction date required", shared.ErrValidation)
	}
	return s.repo.InsertTransaction(ctx, txn)
}

// LockKey builds the redis key guarding one statement's reconciliation.
func LockKey(statementID int64) string {
	return fmt.Sprintf("recon:statement:%d:lock", statementID)
}

// unlockScript deletes the lock only while it still holds this run's token.
// A run that outlives the TTL must not delete a lock a newer run now owns.
var unlockScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

func (s *Service) releaseLock(ctx context.Context, statementID int64, token string) {
	_ = unlockScript.Run(ctx, s.redis, []string{LockKey(statementID)}, token).Err()
}

// Run reconciles one statement against the ledger transactions of its
// account and calendar month, then writes back the reconciled flags and
// discrepancy notes in one transaction.
func (s *Service) Run(ctx context.Context, statementID int64, actorID int64) (Result, error) {
	if s.redis != nil {
		token := uuid.NewString()
		ok, err := s.redis.SetNX(ctx, LockKey(statementID), token, lockTTL).Result()
		if err != nil {
			return Result{}, fmt.Errorf("recon: acquire lock: %w", err)
		}
		if !ok {
			return Result{}, shared.ErrReconciliationBusy
		}
		defer s.releaseLock(context.WithoutCancel(ctx), statementID, token)
	}

	stmt, err := s.repo.GetStatement(ctx, statementID)
	if err != nil {
		return Result{}, err
	}
	from, to := stmt.MonthBounds()
	txns, err := s.repo.ListTransactions(ctx, stmt.AccountID, from, to)
	if err != nil {
		return Result{}, err
	}

	result := Reconcile(stmt, txns)

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ids := make([]int64, 0, len(result.Matched))
		for _, m := range result.Matched {
			ids = append(ids, m.Transaction.ID)
		}
		if err := tx.MarkTransactionsReconciled(ctx, ids); err != nil {
			return err
		}
		for _, txn := range result.Unmatched {
			note := fmt.Sprintf("no statement line for %s %s", txn.Date.Format("2006-01-02"), txn.Amount.StringFixed(2))
			if err := tx.SetDiscrepancyNotes(ctx, txn.ID, note); err != nil {
				return err
			}
		}
		return tx.SetStatementReconciled(ctx, stmt.ID, result.Clean())
	})
	if err != nil {
		return Result{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, internalshared.AuditLog{
			ActorID:  actorID,
			Action:   "recon.run",
			Entity:   "bank_statement",
			EntityID: fmt.Sprintf("%d", stmt.ID),
			Meta: map[string]any{
				"matched":             len(result.Matched),
				"unmatched":           len(result.Unmatched),
				"balance_discrepancy": result.BalanceDiscrepancy.StringFixed(2),
			},
			At: s.now(),
		})
	}
	return result, nil
}
