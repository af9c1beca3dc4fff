package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/quillbooks/quillbooks/internal/jobs"
	"github.com/quillbooks/quillbooks/internal/ledger/recon"
	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// ReconRunner executes queued reconciliation runs.
type ReconRunner struct {
	service *recon.Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewReconRunner constructs the runner.
func NewReconRunner(svc *recon.Service, logger *slog.Logger) *ReconRunner {
	return &ReconRunner{service: svc, logger: logger}
}

// WithMetrics attaches job instrumentation.
func (r *ReconRunner) WithMetrics(m *jobmetrics.Metrics) *ReconRunner {
	r.metrics = m
	return r
}

// Handle processes TaskReconcileStatement tasks. A held statement lock means
// another run is in flight; the task retries later rather than double-count.
func (r *ReconRunner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReconcileStatementPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := r.metrics.Track("recon_run")
	result, err := r.service.Run(ctx, payload.StatementID, 0)
	if err != nil {
		if errors.Is(err, shared.ErrStatementNotFound) {
			return tracker.End(asynq.SkipRetry)
		}
		return tracker.End(err)
	}
	_ = tracker.End(nil)
	r.logger.Info("reconciliation run finished",
		slog.Int64("statement_id", payload.StatementID),
		slog.Int("matched", len(result.Matched)),
		slog.Int("unmatched", len(result.Unmatched)),
		slog.String("balance_discrepancy", result.BalanceDiscrepancy.StringFixed(2)),
	)
	return nil
}
