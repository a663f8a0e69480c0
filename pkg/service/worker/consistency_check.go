package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/service/metrics"
	"github.com/secmon-lab/auditflow/pkg/usecase"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
)

// Validator runs the read-only DB consistency check
type Validator interface {
	ValidateDB(ctx context.Context, tenantIDs []string) (*usecase.ValidationResult, error)
}

// ConsistencyCheckWorker periodically looks for categorized findings that
// have no matching case and exports the count per tenant.
//
// Single server instance assumed; the check never writes, so running it on
// several instances only duplicates work.
type ConsistencyCheckWorker struct {
	validator Validator
	tenantIDs []string
	metrics   *metrics.Metrics
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewConsistencyCheckWorker(validator Validator, tenantIDs []string, m *metrics.Metrics, interval time.Duration) *ConsistencyCheckWorker {
	return &ConsistencyCheckWorker{
		validator: validator,
		tenantIDs: tenantIDs,
		metrics:   m,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the first check and the periodic loop in the background
func (w *ConsistencyCheckWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("consistency check interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("Consistency check worker starting",
		"interval", w.interval.String(),
		"tenants", w.tenantIDs)

	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ConsistencyCheckWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Consistency check worker stopped")
}

func (w *ConsistencyCheckWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.Check(ctx); err != nil {
		logging.Default().Error("Initial consistency check failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Check(ctx); err != nil {
				logging.Default().Error("Consistency check failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

// Check performs a single check cycle
func (w *ConsistencyCheckWorker) Check(ctx context.Context) error {
	startTime := time.Now()

	result, err := w.validator.ValidateDB(ctx, w.tenantIDs)
	if err != nil {
		return goerr.Wrap(err, "failed to validate DB")
	}

	perTenant := make(map[string]int, len(w.tenantIDs))
	for _, tenantID := range w.tenantIDs {
		perTenant[tenantID] = 0
	}
	for _, issue := range result.Issues {
		perTenant[issue.TenantID]++
		logging.Default().Warn("DB consistency issue found",
			"tenant_id", issue.TenantID,
			"finding_id", issue.FindingID,
			"message", issue.Message,
			"expected", issue.Expected,
			"actual", issue.Actual,
		)
	}
	for tenantID, n := range perTenant {
		w.metrics.SetConsistencyIssues(tenantID, n)
	}

	logging.Default().Info("Consistency check completed",
		"checked", result.Checked,
		"issues", len(result.Issues),
		"duration", time.Since(startTime).String())
	return nil
}
