package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity is the nightly ledger self-check.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReconcileStatement reconciles one imported bank statement.
	TaskReconcileStatement = "recon:run"
)

// LedgerIntegrityPayload scopes the integrity scan to a reporting date.
type LedgerIntegrityPayload struct {
	AsOf string `json:"as_of"`
}

// NewLedgerIntegrityTask constructs an Asynq task for the integrity scan.
func NewLedgerIntegrityTask(asOf time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerIntegrityPayload{AsOf: asOf.Format("2006-01-02")})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// ReconcileStatementPayload identifies the statement to reconcile.
type ReconcileStatementPayload struct {
	StatementID int64 `json:"statement_id"`
}

// NewReconcileStatementTask constructs an Asynq task for a reconciliation run.
func NewReconcileStatementTask(statementID int64) (*asynq.Task, error) {
	data, err := json.Marshal(ReconcileStatementPayload{StatementID: statementID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileStatement, data), nil
}
