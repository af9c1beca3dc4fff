package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/quillbooks/quillbooks/internal/jobs"
	"github.com/quillbooks/quillbooks/internal/ledger/reports"
)

// IntegrityChecker runs the ledger's own consistency checks: the trial
// balance must net to zero and the balance sheet must balance. Failures are
// logged loudly for the operator; they signal data problems in the ledger,
// and nothing here tries to repair them.
type IntegrityChecker struct {
	reports *reports.Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewIntegrityChecker constructs the checker.
func NewIntegrityChecker(svc *reports.Service, logger *slog.Logger) *IntegrityChecker {
	return &IntegrityChecker{reports: svc, logger: logger}
}

// WithMetrics attaches job instrumentation.
func (c *IntegrityChecker) WithMetrics(m *jobmetrics.Metrics) *IntegrityChecker {
	c.metrics = m
	return c
}

// Handle processes TaskLedgerIntegrity tasks.
func (c *IntegrityChecker) Handle(ctx context.Context, t *asynq.Task) error {
	asOf := time.Now().UTC()
	if len(t.Payload()) > 0 {
		var payload LedgerIntegrityPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.AsOf != "" {
			parsed, err := time.Parse("2006-01-02", payload.AsOf)
			if err != nil {
				return asynq.SkipRetry
			}
			asOf = parsed
		}
	}
	return c.Run(ctx, asOf)
}

// Run executes both checks concurrently.
func (c *IntegrityChecker) Run(ctx context.Context, asOf time.Time) (err error) {
	tracker := c.metrics.Track("ledger_integrity")
	defer func() { err = tracker.End(err) }()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tb, err := c.reports.TrialBalance(ctx, asOf)
		if err != nil {
			return fmt.Errorf("jobs: trial balance: %w", err)
		}
		if !tb.Net().IsZero() {
			c.metrics.AddFindings("trial_balance", 1)
			c.logger.Error("trial balance does not net to zero",
				slog.String("as_of", asOf.Format("2006-01-02")),
				slog.String("net", tb.Net().StringFixed(2)),
			)
		}
		return nil
	})

	g.Go(func() error {
		bs, err := c.reports.BalanceSheet(ctx, asOf)
		if err != nil {
			return fmt.Errorf("jobs: balance sheet: %w", err)
		}
		if !bs.Check.Balanced {
			c.metrics.AddFindings("balance_sheet", 1)
			c.logger.Error("balance sheet identity violated",
				slog.String("as_of", asOf.Format("2006-01-02")),
				slog.String("difference", bs.Check.Difference.StringFixed(2)),
			)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	c.logger.Info("ledger integrity scan complete", slog.String("as_of", asOf.Format("2006-01-02")))
	return nil
}
