package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

// ReconcileSchedulerConfig holds configuration for the reconcile worker pool
type ReconcileSchedulerConfig struct {
	// MaxConcurrentJobs is the number of workers
	MaxConcurrentJobs int
	// JobTimeout bounds one job (all of its pages)
	JobTimeout time.Duration
	// RetryAttempts is the number of retries for a job that failed as a whole
	RetryAttempts int
	// RetryDelay is the base delay of the exponential backoff
	RetryDelay time.Duration
	// QueueSize is the job channel capacity
	QueueSize int
}

// DefaultReconcileSchedulerConfig returns default configuration
func DefaultReconcileSchedulerConfig() ReconcileSchedulerConfig {
	return ReconcileSchedulerConfig{
		MaxConcurrentJobs: 3,
		JobTimeout:        10 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        time.Minute,
		QueueSize:         100,
	}
}

// Validate validates the configuration
func (c *ReconcileSchedulerConfig) Validate() error {
	if c.MaxConcurrentJobs <= 0 || c.JobTimeout <= 0 || c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 100
	}
	return nil
}

// ---------------------------------------------------------------------------
// ReconcileScheduler
// ---------------------------------------------------------------------------

// ReconcileScheduler runs reconcile jobs on a bounded worker pool. At most
// one job per tenant and kind is queued or running at a time.
type ReconcileScheduler struct {
	config   ReconcileSchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan *ReconcileJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  map[string]struct{}

	historyMu  sync.RWMutex
	history    []*ReconcileJob
	maxHistory int
}

// NewReconcileScheduler creates a new scheduler
func NewReconcileScheduler(config ReconcileSchedulerConfig, executor JobExecutor, logger *zap.Logger) (*ReconcileScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ReconcileScheduler{
		config:     config,
		executor:   executor,
		logger:     logger,
		jobs:       make(chan *ReconcileJob, config.QueueSize),
		inFlight:   make(map[string]struct{}),
		history:    make([]*ReconcileJob, 0, 100),
		maxHistory: 100,
	}, nil
}

// Start starts the worker pool
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Reconcile scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for the workers
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reconcile scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reconcile scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a job. It fails when the scheduler is stopped, the queue is
// full, or the same tenant and kind already has a job in flight.
func (s *ReconcileScheduler) Submit(job *ReconcileJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	if _, busy := s.inFlight[job.key()]; busy {
		return ErrSyncAlreadyInProgress
	}
	if err := s.enqueueLocked(job); err != nil {
		return err
	}
	s.inFlight[job.key()] = struct{}{}

	s.logger.Debug("Reconcile job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("tenant_id", job.TenantID.String()),
		zap.String("kind", string(job.Kind)),
	)
	return nil
}

// ScheduleSync submits a fresh job for tenant and kind
func (s *ReconcileScheduler) ScheduleSync(tenantID uuid.UUID, kind SyncKind) error {
	return s.Submit(NewReconcileJob(tenantID, kind, s.config.RetryAttempts))
}

func (s *ReconcileScheduler) enqueueLocked(job *ReconcileJob) error {
	select {
	case s.jobs <- job:
		return nil
	default:
		return ErrJobQueueFull
	}
}

// release frees the tenant+kind slot
func (s *ReconcileScheduler) release(job *ReconcileJob) {
	s.mu.Lock()
	delete(s.inFlight, job.key())
	s.mu.Unlock()
}

func (s *ReconcileScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *ReconcileScheduler) processJob(ctx context.Context, job *ReconcileJob, workerID int) {
	job.Start()
	s.logger.Info("Processing reconcile job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("tenant_id", job.TenantID.String()),
		zap.String("kind", string(job.Kind)),
		zap.Int("retry_count", job.RetryCount),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := s.executor.Execute(jobCtx, job)
	cancel()

	if err != nil {
		job.Fail(err.Error())
		s.logger.Error("Reconcile job failed",
			zap.String("job_id", job.ID.String()),
			zap.String("tenant_id", job.TenantID.String()),
			zap.String("kind", string(job.Kind)),
			zap.Error(err),
		)
		s.addToHistory(job)

		if job.ShouldRetry() && ctx.Err() == nil {
			s.scheduleRetry(job)
			return
		}
		s.release(job)
		return
	}

	s.logger.Info("Reconcile job completed",
		zap.String("job_id", job.ID.String()),
		zap.String("tenant_id", job.TenantID.String()),
		zap.String("kind", string(job.Kind)),
		zap.String("status", string(job.Status)),
		zap.Int("pages", job.Pages),
		zap.Int("success_count", job.SuccessCount),
		zap.Int("failed_count", job.FailedCount),
	)
	s.addToHistory(job)
	s.release(job)
}

// scheduleRetry re-queues the job after its backoff delay. The tenant+kind
// slot stays taken until the retry finishes.
func (s *ReconcileScheduler) scheduleRetry(job *ReconcileJob) {
	delay := job.ScheduleRetry(s.config.RetryDelay)
	s.logger.Info("Reconcile job scheduled for retry",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Duration("delay", delay),
	)

	time.AfterFunc(delay, func() {
		s.mu.Lock()
		running := s.isRunning
		var err error
		if running {
			err = s.enqueueLocked(job)
		}
		s.mu.Unlock()

		if !running || err != nil {
			s.logger.Warn("Dropping reconcile retry",
				zap.String("job_id", job.ID.String()),
				zap.Bool("running", running),
				zap.Error(err),
			)
			s.release(job)
		}
	})
}

func (s *ReconcileScheduler) addToHistory(job *ReconcileJob) {
	snapshot := *job
	snapshot.FailedItemIDs = append([]string(nil), job.FailedItemIDs...)

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*ReconcileJob{&snapshot}, s.history...)
	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// JobHistory returns recent finished jobs, newest first
func (s *ReconcileScheduler) JobHistory(limit int) []*ReconcileJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]*ReconcileJob, limit)
	copy(result, s.history[:limit])
	return result
}
