// Package scheduler wires the periodic trigger that invokes pipeline runs.
// Each invocation is a bounded batch job, not a long-lived service loop.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"jobpilot/internal/pipeline"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PostingCacheCleaner prunes stale entries from the posting cache.
type PostingCacheCleaner interface {
	CleanOldPostingsCache(ctx context.Context, daysOld int) (int64, error)
}

// Cached postings older than this are pruned by the daily maintenance job.
const postingCacheMaxAgeDays = 30

type Scheduler struct {
	cron     *cron.Cron
	runner   *pipeline.Runner
	cleaner  PostingCacheCleaner
	interval time.Duration
	logger   *zap.Logger
}

func New(runner *pipeline.Runner, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// SetCleaner enables the daily posting-cache maintenance job.
func (s *Scheduler) SetCleaner(c PostingCacheCleaner) {
	s.cleaner = c
}

// Start registers the periodic run and fires one immediately so a fresh
// deployment does not wait a full interval.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.interval)

	_, err := s.cron.AddFunc(spec, func() {
		s.RunNow(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	if s.cleaner != nil {
		_, err := s.cron.AddFunc("@daily", func() {
			if _, err := s.cleaner.CleanOldPostingsCache(ctx, postingCacheMaxAgeDays); err != nil {
				s.logger.Error("posting cache cleanup failed", zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("cron.AddFunc: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))

	go s.RunNow(ctx)

	return nil
}

// Stop shuts the scheduler down and waits for a running job to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}

// RunNow executes one pipeline run and logs the outcome. The trigger gets
// success/failure plus the human-readable summary.
func (s *Scheduler) RunNow(ctx context.Context) (pipeline.Summary, error) {
	summary, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("pipeline run failed", zap.Error(err))
		return summary, err
	}

	s.logger.Info("pipeline run complete", zap.String("summary", summary.String()))
	return summary, nil
}
