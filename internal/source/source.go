// Package source defines the job-source capability and the aggregator that
// fans a search out across every registered source.
package source

import (
	"context"
	"errors"

	"jobpilot/internal/models"
)

var (
	// ErrUnavailable marks a source that could not be reached this run.
	ErrUnavailable = errors.New("job source unavailable")

	// ErrRateLimited marks a source that refused the request for quota
	// reasons. The source is skipped for the rest of the run.
	ErrRateLimited = errors.New("job source rate limited")
)

// Source searches one external job board. Adding a board means adding an
// implementation, never touching the aggregator.
type Source interface {
	Name() string
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.JobPosting, error)
}
