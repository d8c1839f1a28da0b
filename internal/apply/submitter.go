package apply

import (
	"context"
	"math/rand"
	"time"

	"jobpilot/internal/models"

	"go.uber.org/zap"
)

// Submitter dispatches submissions through the registry and spaces
// consecutive submissions for one user with a randomized delay, so the
// outbound traffic does not present as a burst.
type Submitter struct {
	registry  *Registry
	pacingMin time.Duration
	pacingMax time.Duration
	logger    *zap.Logger

	// injectable for tests
	sleep func(ctx context.Context, d time.Duration)
	randN func(n int64) int64
}

func NewSubmitter(registry *Registry, pacingMin, pacingMax time.Duration, logger *zap.Logger) *Submitter {
	return &Submitter{
		registry:  registry,
		pacingMin: pacingMin,
		pacingMax: pacingMax,
		logger:    logger,
		sleep:     sleepCtx,
		randN:     rand.Int63n,
	}
}

// Submit sends one application via the handler for the posting's source.
// Failures come back as a failed result, never as an error.
func (s *Submitter) Submit(ctx context.Context, posting *models.JobPosting, app *Application) models.ApplicationResult {
	handler := s.registry.HandlerFor(posting.Source)

	s.logger.Debug("submitting application",
		zap.Int64("user_id", app.UserID),
		zap.String("posting", posting.Key().String()),
		zap.String("source", posting.Source),
	)

	return handler.Submit(ctx, posting, app)
}

// Pace waits the randomized inter-submission delay. This is a cooperative
// scheduling wait, not a retry; it returns early only on context
// cancellation.
func (s *Submitter) Pace(ctx context.Context) {
	delay := s.pacingMin
	if spread := int64(s.pacingMax - s.pacingMin); spread > 0 {
		delay += time.Duration(s.randN(spread))
	}

	s.sleep(ctx, delay)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
