package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
)

// PageSyncer is the reconcile service as the scheduler sees it: each call
// processes exactly one page.
type PageSyncer interface {
	SyncOrders(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error)
	SyncInvoices(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error)
	SyncPayments(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error)
}

// JobExecutor executes reconcile jobs
type JobExecutor interface {
	Execute(ctx context.Context, job *ReconcileJob) error
}

// JobMetrics receives per-page item counts and per-job timings
type JobMetrics interface {
	RecordSyncPage(ctx context.Context, kind string, success, failed int)
	RecordSyncJob(ctx context.Context, kind, status string, d time.Duration)
}

// ReconcileExecutor drives a PageSyncer across pages until the provider
// reports no more data or the per-tick page cap is reached.
type ReconcileExecutor struct {
	syncer   PageSyncer
	maxPages int
	pageSize int
	metrics  JobMetrics
	logger   *zap.Logger
}

// NewReconcileExecutor creates an executor. maxPages <= 0 means 10.
func NewReconcileExecutor(syncer PageSyncer, maxPages, pageSize int, logger *zap.Logger) *ReconcileExecutor {
	if maxPages <= 0 {
		maxPages = 10
	}
	return &ReconcileExecutor{
		syncer:   syncer,
		maxPages: maxPages,
		pageSize: pageSize,
		logger:   logger,
	}
}

// WithMetrics reports page and job figures to m
func (e *ReconcileExecutor) WithMetrics(m JobMetrics) *ReconcileExecutor {
	e.metrics = m
	return e
}

// Execute walks pages for the job. A page-level error fails the job (and
// makes it eligible for retry); item failures only count against it.
func (e *ReconcileExecutor) Execute(ctx context.Context, job *ReconcileJob) error {
	started := time.Now()
	status := JobStatusFailed
	defer func() {
		if e.metrics != nil {
			e.metrics.RecordSyncJob(ctx, string(job.Kind), string(status), time.Since(started))
		}
	}()

	run, err := e.entryPoint(job.Kind)
	if err != nil {
		return err
	}

	page := integration.PageRequest{Limit: e.pageSize}
	for range e.maxPages {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrSyncTimeout, ctx.Err())
		}

		result, err := run(ctx, job.TenantID, page)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %v", ErrSyncTimeout, err)
			}
			return fmt.Errorf("%w: page %q: %w", ErrSyncFailed, page.Cursor, err)
		}

		job.Record(result)
		if e.metrics != nil {
			e.metrics.RecordSyncPage(ctx, string(job.Kind), result.SuccessCount, result.FailedCount)
		}
		e.logger.Debug("reconcile page done",
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(job.Kind)),
			zap.String("cursor", page.Cursor),
			zap.Int("success", result.SuccessCount),
			zap.Int("failed", result.FailedCount),
			zap.Bool("has_more", result.HasMore),
		)

		if !result.HasMore {
			job.Cursor = ""
			break
		}
		page.Cursor = result.NextCursor
	}

	job.Complete()
	status = job.Status
	return nil
}

func (e *ReconcileExecutor) entryPoint(kind SyncKind) (func(context.Context, uuid.UUID, integration.PageRequest) (*integration.BatchResult, error), error) {
	switch kind {
	case SyncKindOrders:
		return e.syncer.SyncOrders, nil
	case SyncKindInvoices:
		return e.syncer.SyncInvoices, nil
	case SyncKindPayments:
		return e.syncer.SyncPayments, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSyncKind, kind)
	}
}

var _ JobExecutor = (*ReconcileExecutor)(nil)
