package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobpilot/internal/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RateLimiter budgets outbound requests per board. A nil limiter means no
// budget is enforced on our side.
type RateLimiter interface {
	CheckBoardRateLimit(ctx context.Context, sourceName string) error
}

// Aggregator runs all registered sources concurrently under one timeout.
// A failing source contributes nothing; it never fails the aggregation.
type Aggregator struct {
	sources []Source
	timeout time.Duration
	limiter RateLimiter
	logger  *zap.Logger
}

func NewAggregator(timeout time.Duration, logger *zap.Logger, sources ...Source) *Aggregator {
	return &Aggregator{
		sources: sources,
		timeout: timeout,
		logger:  logger,
	}
}

// SetRateLimiter enables the per-board outbound request budget.
func (a *Aggregator) SetRateLimiter(l RateLimiter) {
	a.limiter = l
}

// Search fans out to every source and concatenates the successful results,
// unordered. Source failures are collected and logged only.
func (a *Aggregator) Search(ctx context.Context, criteria models.SearchCriteria) []models.JobPosting {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type sourceResult struct {
		name     string
		postings []models.JobPosting
		err      error
	}

	results := make(chan sourceResult, len(a.sources))

	var wg sync.WaitGroup
	for _, src := range a.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()

			if a.limiter != nil {
				if err := a.limiter.CheckBoardRateLimit(ctx, src.Name()); err != nil {
					results <- sourceResult{name: src.Name(), err: fmt.Errorf("%w: %v", ErrRateLimited, err)}
					return
				}
			}

			postings, err := src.Search(ctx, criteria)
			results <- sourceResult{name: src.Name(), postings: postings, err: err}
		}(src)
	}

	wg.Wait()
	close(results)

	var all []models.JobPosting
	var errs error

	for r := range results {
		if r.err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.name, r.err))
			continue
		}

		all = append(all, r.postings...)

		a.logger.Debug("source returned postings",
			zap.String("source", r.name),
			zap.Int("count", len(r.postings)),
		)
	}

	if errs != nil {
		a.logger.Warn("some job sources failed",
			zap.String("job_title", criteria.JobTitle),
			zap.Error(errs),
		)
	}

	return all
}
