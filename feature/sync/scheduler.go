package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type schedule struct {
	job   Job
	every time.Duration
}

// Scheduler runs the recurring jobs on fixed intervals.
type Scheduler struct {
	runner    *Runner
	schedules []schedule
	logger    *zap.Logger
	wg        gosync.WaitGroup
}

// NewScheduler creates a scheduler for the intervals in cfg. Zero intervals are skipped.
func NewScheduler(runner *Runner, cfg Config, logger *zap.Logger) *Scheduler {
	s := &Scheduler{runner: runner, logger: logger}
	for _, sc := range []schedule{
		{job: JobSyncAll, every: cfg.FullSyncInterval},
		{job: JobSyncUsers, every: cfg.UsersInterval},
		{job: JobIncremental, every: cfg.IncrementalInterval},
	} {
		if sc.every > 0 {
			s.schedules = append(s.schedules, sc)
		}
	}
	return s
}

// Start registers one duration job per schedule and starts them. A job whose
// previous run is still going skips its tick. Jobs stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	cron, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	for _, sc := range s.schedules {
		job := sc.job
		_, err := cron.NewJob(
			gocron.DurationJob(sc.every),
			gocron.NewTask(func() { s.runJob(ctx, job) }),
			gocron.WithName(string(sc.job)),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = cron.Shutdown()
			return fmt.Errorf("failed to schedule %s: %w", sc.job, err)
		}
		s.logger.Info("Scheduled job", zap.String("job", string(sc.job)), zap.Duration("every", sc.every))
	}

	cron.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-ctx.Done()
		if err := cron.Shutdown(); err != nil {
			s.logger.Warn("Scheduler shutdown incomplete", zap.Error(err))
		}
	}()
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	if _, err := s.runner.Run(ctx, job); err != nil {
		s.logger.Warn("Scheduled job failed", zap.String("job", string(job)), zap.Error(err))
	}
}

// Wait blocks until the scheduler has shut down.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
