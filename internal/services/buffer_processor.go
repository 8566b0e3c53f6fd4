package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nexusliving/bms/internal/infrastructure/buffer"
	"github.com/nexusliving/bms/repository"
)

// ConnectionHealth reports whether the primary store is reachable.
type ConnectionHealth interface {
	IsOnline() bool
}

type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Retention bounds how long an upsert may wait before it is discarded.
	Retention time.Duration
}

// DrainReport summarises one replay pass.
type DrainReport struct {
	Replayed   int
	Superseded int
	Retried    int
	Dropped    int
	Expired    int
}

// BufferProcessor replays deferred profile upserts on a cron schedule.
type BufferProcessor struct {
	queue   *buffer.Queue
	monitor ConnectionHealth
	users   repository.UserRepository
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
	now     func() time.Time
}

func NewBufferProcessor(
	queue *buffer.Queue,
	monitor ConnectionHealth,
	users repository.UserRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) (*BufferProcessor, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		queue:   queue,
		monitor: monitor,
		users:   users,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		now:     time.Now,
	}

	if _, err := bp.cron.AddJob(fmt.Sprintf("@every %s", cfg.Interval), bp); err != nil {
		return nil, fmt.Errorf("schedule buffer drain: %w", err)
	}
	return bp, nil
}

// Run implements cron.Job.
func (bp *BufferProcessor) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), bp.cfg.Interval)
	defer cancel()

	report, err := bp.Drain(ctx)
	if err != nil {
		bp.logger.Error("buffer drain failed", zap.Error(err))
		return
	}
	if report != (DrainReport{}) {
		bp.logger.Info("buffer drained",
			zap.Int("replayed", report.Replayed),
			zap.Int("superseded", report.Superseded),
			zap.Int("retried", report.Retried),
			zap.Int("dropped", report.Dropped),
			zap.Int("expired", report.Expired))
	}
}

func (bp *BufferProcessor) Start() {
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

func (bp *BufferProcessor) Stop(ctx context.Context) {
	select {
	case <-bp.cron.Stop().Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain expires stale entries and replays one batch. It does nothing while
// the primary store is offline.
func (bp *BufferProcessor) Drain(ctx context.Context) (DrainReport, error) {
	var report DrainReport
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return report, nil
	}

	expired, err := bp.queue.Expire(bp.now().Add(-bp.cfg.Retention))
	if err != nil {
		return report, fmt.Errorf("expire buffer: %w", err)
	}
	report.Expired = expired

	entries, err := bp.queue.Batch(bp.cfg.BatchSize)
	if err != nil {
		return report, fmt.Errorf("read buffer: %w", err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		profile := entry.Profile
		if err := bp.users.Upsert(ctx, &profile); err != nil {
			bp.recordFailure(entry, err, &report)
			continue
		}

		settled, err := bp.queue.Settle(entry.Email(), entry.Version)
		if err != nil {
			return report, fmt.Errorf("settle %s: %w", entry.Email(), err)
		}
		if settled {
			report.Replayed++
		} else {
			report.Superseded++
		}
	}
	return report, nil
}

func (bp *BufferProcessor) recordFailure(entry buffer.Pending, cause error, report *DrainReport) {
	log := bp.logger.With(zap.String("email", entry.Email()), zap.Uint64("version", entry.Version))

	updated, found, err := bp.queue.Fail(entry.Email(), entry.Version, cause)
	if err != nil {
		log.Error("failed to record replay failure", zap.Error(err))
		return
	}
	if !found {
		report.Superseded++
		return
	}
	if updated.Attempts < bp.cfg.MaxRetries {
		log.Warn("profile replay failed", zap.Int("attempts", updated.Attempts), zap.Error(cause))
		report.Retried++
		return
	}

	log.Error("dropping profile upsert (max retries reached)", zap.Int("attempts", updated.Attempts), zap.Error(cause))
	if _, err := bp.queue.Settle(entry.Email(), entry.Version); err != nil {
		log.Error("failed to drop profile upsert", zap.Error(err))
		return
	}
	report.Dropped++
}

func (bp *BufferProcessor) Pending() int {
	n, err := bp.queue.Len()
	if err != nil {
		return 0
	}
	return n
}
