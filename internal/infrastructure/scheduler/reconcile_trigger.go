package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
)

// TenantProvider lists the tenants connected to a provider
type TenantProvider interface {
	ListTenants(ctx context.Context, provider integration.Provider) ([]uuid.UUID, error)
}

// ReconcileTriggerConfig holds configuration for the periodic trigger
type ReconcileTriggerConfig struct {
	// Interval between ticks
	Interval time.Duration
	// Kinds run on every tick, in order
	Kinds []SyncKind
	// StaticTenants are added to the tenants of a provider. Mercado Pago
	// authenticates with one static token, so its tenant comes from config.
	StaticTenants map[integration.Provider][]uuid.UUID
}

// ReconcileTrigger submits a job per connected tenant and kind on every tick
type ReconcileTrigger struct {
	config    ReconcileTriggerConfig
	scheduler *ReconcileScheduler
	tenants   TenantProvider
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewReconcileTrigger creates a new trigger
func NewReconcileTrigger(config ReconcileTriggerConfig, scheduler *ReconcileScheduler, tenants TenantProvider, logger *zap.Logger) *ReconcileTrigger {
	if config.Interval <= 0 {
		config.Interval = 15 * time.Minute
	}
	if len(config.Kinds) == 0 {
		config.Kinds = []SyncKind{SyncKindOrders, SyncKindInvoices, SyncKindPayments}
	}
	return &ReconcileTrigger{
		config:    config,
		scheduler: scheduler,
		tenants:   tenants,
		logger:    logger,
	}
}

// Start starts the tick loop; the first tick runs immediately
func (t *ReconcileTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return nil
	}
	t.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Reconcile trigger started", zap.Duration("interval", t.config.Interval))
	return nil
}

// Stop stops the tick loop
func (t *ReconcileTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *ReconcileTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	t.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Tick submits one job per tenant and kind and returns how many were queued.
// Tenants whose previous job is still in flight are skipped.
func (t *ReconcileTrigger) Tick(ctx context.Context) int {
	queued := 0
	for _, kind := range t.config.Kinds {
		tenants, err := t.tenantsFor(ctx, kind.Provider())
		if err != nil {
			t.logger.Error("Failed to list tenants for reconcile",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
			continue
		}

		for _, tenantID := range tenants {
			err := t.scheduler.ScheduleSync(tenantID, kind)
			switch {
			case err == nil:
				queued++
			case errors.Is(err, ErrSyncAlreadyInProgress):
				t.logger.Debug("Reconcile still in progress, skipping",
					zap.String("tenant_id", tenantID.String()),
					zap.String("kind", string(kind)),
				)
			default:
				t.logger.Warn("Failed to schedule reconcile job",
					zap.String("tenant_id", tenantID.String()),
					zap.String("kind", string(kind)),
					zap.Error(err),
				)
			}
		}
	}
	return queued
}

// tenantsFor merges connected and static tenants, without duplicates
func (t *ReconcileTrigger) tenantsFor(ctx context.Context, provider integration.Provider) ([]uuid.UUID, error) {
	var connected []uuid.UUID
	if t.tenants != nil {
		var err error
		connected, err = t.tenants.ListTenants(ctx, provider)
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(connected))
	out := make([]uuid.UUID, 0, len(connected))
	for _, id := range append(connected, t.config.StaticTenants[provider]...) {
		if _, dup := seen[id]; dup || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
