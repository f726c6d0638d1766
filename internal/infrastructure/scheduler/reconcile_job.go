// Package scheduler runs the periodic re-sync of ERP orders, NF-e invoices
// and payments for every connected tenant.
package scheduler

import (
	"time"

	"github.com/google/uuid"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
)

// maxRetryDelay caps the exponential retry backoff
const maxRetryDelay = 30 * time.Minute

// ---------------------------------------------------------------------------
// Job types
// ---------------------------------------------------------------------------

// SyncKind selects which reconcile entry point a job drives
type SyncKind string

const (
	SyncKindOrders   SyncKind = "orders"
	SyncKindInvoices SyncKind = "invoices"
	SyncKindPayments SyncKind = "payments"
)

// Provider returns the provider whose connected tenants this kind runs for
func (k SyncKind) Provider() integration.Provider {
	if k == SyncKindPayments {
		return integration.ProviderMercadoPago
	}
	return integration.ProviderBling
}

// JobStatus represents the status of a reconcile job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusPartial JobStatus = "PARTIAL"
	JobStatusFailed  JobStatus = "FAILED"
)

// ReconcileJob walks the pages of one sync kind for one tenant
type ReconcileJob struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Kind        SyncKind
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time

	Pages         int
	SuccessCount  int
	FailedCount   int
	FailedItemIDs []string
	// Cursor is where the next tick would resume if the page cap was hit
	Cursor string
}

// NewReconcileJob creates a pending job
func NewReconcileJob(tenantID uuid.UUID, kind SyncKind, maxRetries int) *ReconcileJob {
	return &ReconcileJob{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Kind:       kind,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// key identifies the tenant+kind slot a job occupies
func (j *ReconcileJob) key() string {
	return j.TenantID.String() + ":" + string(j.Kind)
}

// Start marks the job as running and clears the previous run's counters
func (j *ReconcileJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
	j.Pages = 0
	j.SuccessCount = 0
	j.FailedCount = 0
	j.FailedItemIDs = nil
}

// Record folds one page result into the job
func (j *ReconcileJob) Record(page *integration.BatchResult) {
	j.Pages++
	j.SuccessCount += page.SuccessCount
	j.FailedCount += page.FailedCount
	for _, f := range page.FailedItems {
		j.FailedItemIDs = append(j.FailedItemIDs, f.ExternalID)
	}
	j.Cursor = page.NextCursor
}

// Complete derives the final status from the item counters
func (j *ReconcileJob) Complete() {
	now := time.Now()
	j.CompletedAt = &now

	switch {
	case j.FailedCount == 0:
		j.Status = JobStatusSuccess
	case j.SuccessCount > 0:
		j.Status = JobStatusPartial
	default:
		j.Status = JobStatusFailed
	}
}

// Fail marks the job as failed
func (j *ReconcileJob) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job failed as a whole and has retries left.
// Item-level failures are left to the next tick.
func (j *ReconcileJob) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.Error != "" && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff and
// returns the delay.
func (j *ReconcileJob) ScheduleRetry(baseDelay time.Duration) time.Duration {
	j.RetryCount++
	j.Status = JobStatusPending
	delay := min(baseDelay*time.Duration(1<<(j.RetryCount-1)), maxRetryDelay)
	next := time.Now().Add(delay)
	j.NextRetryAt = &next
	return delay
}
