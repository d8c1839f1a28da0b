// Package pipeline orchestrates the automated job-search-and-apply run:
// resolve eligible users, aggregate postings, score, filter, and submit
// applications within quota.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"jobpilot/internal/apply"
	"jobpilot/internal/letter"
	"jobpilot/internal/models"
)

// ProfileStore resolves candidate profiles. Profiles are owned by the
// surrounding product; the pipeline only reads them.
type ProfileStore interface {
	GetEligibleProfiles(ctx context.Context) ([]models.CandidateProfile, error)
	GetProfile(ctx context.Context, userID int64) (*models.CandidateProfile, error)
}

// ApplicationStore persists application outcomes and applied-posting marks.
type ApplicationStore interface {
	InsertApplicationRecord(ctx context.Context, record *models.ApplicationRecord) error
	MarkPostingApplied(ctx context.Context, userID int64, source, externalID string) error
	HasApplied(ctx context.Context, userID int64, source, externalID string) (bool, error)
	CachePosting(ctx context.Context, posting *models.JobPosting) error
	GetCachedPosting(ctx context.Context, source, externalID string) (*models.CachedPosting, error)
}

// Aggregator fans a search out to every configured job source.
type Aggregator interface {
	Search(ctx context.Context, criteria models.SearchCriteria) []models.JobPosting
}

// RelevanceFilter retains postings worth applying to, ranked.
type RelevanceFilter interface {
	Relevant(ctx context.Context, userID int64, scored []models.ScoredPosting, threshold int) ([]models.ScoredPosting, error)
}

// LetterGenerator produces the cover letter for one application.
type LetterGenerator interface {
	Generate(ctx context.Context, posting *models.JobPosting, profile *models.CandidateProfile) letter.Letter
}

// Submitter dispatches one submission and paces consecutive ones.
type Submitter interface {
	Submit(ctx context.Context, posting *models.JobPosting, app *apply.Application) models.ApplicationResult
	Pace(ctx context.Context)
}

// Notifier receives per-user events after submissions go out.
type Notifier interface {
	ApplicationsSubmitted(ctx context.Context, profile *models.CandidateProfile, submitted int)
}

// RunCache provides per-user run locks and short-lived search caching.
type RunCache interface {
	AcquireRunLock(ctx context.Context, userID int64) (bool, error)
	ReleaseRunLock(ctx context.Context, userID int64) error
	GetSearchResults(ctx context.Context, userID int64, criteria models.SearchCriteria) ([]models.JobPosting, error)
	SetSearchResults(ctx context.Context, userID int64, criteria models.SearchCriteria, postings []models.JobPosting) error
}

// Summary is what the external trigger gets back from a run.
type Summary struct {
	Started        time.Time
	Finished       time.Time
	UsersProcessed int
	UsersSkipped   int
	PostingsFound  int
	Submitted      int
	Failed         int
	UserErrors     int
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"processed %d users (%d skipped) in %s: %d postings found, %d applications submitted, %d failed, %d user errors",
		s.UsersProcessed, s.UsersSkipped, s.Finished.Sub(s.Started).Round(time.Second),
		s.PostingsFound, s.Submitted, s.Failed, s.UserErrors,
	)
}
