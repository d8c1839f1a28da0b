package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobpilot/internal/apply"
	"jobpilot/internal/config"
	"jobpilot/internal/match"
	"jobpilot/internal/models"
	"jobpilot/internal/quota"

	"go.uber.org/zap"
)

// Runner executes one pipeline run across all eligible users. Users are
// processed sequentially by default; a bounded worker pool can be enabled
// through configuration. Submission for one user is always sequential.
type Runner struct {
	profiles   ProfileStore
	store      ApplicationStore
	cache      RunCache
	aggregator Aggregator
	filter     RelevanceFilter
	quotas     *quota.Manager
	letters    LetterGenerator
	submitter  Submitter
	recorder   *Recorder
	notifier   Notifier
	cfg        *config.Config
	logger     *zap.Logger

	// injectable for tests
	sleep func(ctx context.Context, d time.Duration)
}

func NewRunner(
	profiles ProfileStore,
	store ApplicationStore,
	cache RunCache,
	aggregator Aggregator,
	filter RelevanceFilter,
	quotas *quota.Manager,
	letters LetterGenerator,
	submitter Submitter,
	cfg *config.Config,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		profiles:   profiles,
		store:      store,
		cache:      cache,
		aggregator: aggregator,
		filter:     filter,
		quotas:     quotas,
		letters:    letters,
		submitter:  submitter,
		recorder:   NewRecorder(store, logger),
		cfg:        cfg,
		logger:     logger,
		sleep:      sleepCtx,
	}
}

// SetNotifier enables per-user notifications after submissions. A nil
// notifier is fine; events are dropped.
func (r *Runner) SetNotifier(n Notifier) {
	r.notifier = n
}

// Run processes every eligible user once. The only fatal condition is
// failing to resolve the eligible-user list; everything else is logged
// and degrades per user.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{Started: time.Now()}

	r.logger.Info("starting automated job search")

	profiles, err := r.profiles.GetEligibleProfiles(ctx)
	if err != nil {
		summary.Finished = time.Now()
		return summary, fmt.Errorf("resolve eligible users: %w", err)
	}

	if len(profiles) == 0 {
		r.logger.Info("no eligible users")
		summary.Finished = time.Now()
		return summary, nil
	}

	r.logger.Info("processing users", zap.Int("count", len(profiles)))

	if r.cfg.UserConcurrency <= 1 {
		r.runSequential(ctx, profiles, &summary)
	} else {
		r.runPool(ctx, profiles, &summary)
	}

	summary.Finished = time.Now()

	r.logger.Info("automated job search finished",
		zap.Int("users", summary.UsersProcessed),
		zap.Int("submitted", summary.Submitted),
		zap.Int("failed", summary.Failed),
		zap.Int("user_errors", summary.UserErrors),
	)

	return summary, nil
}

func (r *Runner) runSequential(ctx context.Context, profiles []models.CandidateProfile, summary *Summary) {
	for i := range profiles {
		if ctx.Err() != nil {
			return
		}

		r.runUser(ctx, &profiles[i], summary, nil)

		// spread load between users
		if i < len(profiles)-1 {
			r.sleep(ctx, r.cfg.UserDelay)
		}
	}
}

func (r *Runner) runPool(ctx context.Context, profiles []models.CandidateProfile, summary *Summary) {
	var mu sync.Mutex
	jobs := make(chan *models.CandidateProfile)

	var wg sync.WaitGroup
	for w := 0; w < r.cfg.UserConcurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for profile := range jobs {
				r.runUser(ctx, profile, summary, &mu)
				r.sleep(ctx, r.cfg.UserDelay)
			}
		}()
	}

	for i := range profiles {
		if ctx.Err() != nil {
			break
		}
		jobs <- &profiles[i]
	}
	close(jobs)

	wg.Wait()
}

// runUser isolates one user's processing: any error is logged and counted,
// never propagated to the run.
func (r *Runner) runUser(ctx context.Context, profile *models.CandidateProfile, summary *Summary, mu *sync.Mutex) {
	stats, err := r.processUser(ctx, profile)

	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}

	if err != nil {
		r.logger.Error("failed to process user",
			zap.Int64("user_id", profile.UserID),
			zap.Error(err),
		)
		summary.UserErrors++
	}

	if stats.skipped {
		summary.UsersSkipped++
		return
	}

	summary.UsersProcessed++
	summary.PostingsFound += stats.found
	summary.Submitted += stats.submitted
	summary.Failed += stats.failed
}

type userStats struct {
	found     int
	submitted int
	failed    int
	skipped   bool
}

func (r *Runner) processUser(ctx context.Context, profile *models.CandidateProfile) (userStats, error) {
	var stats userStats

	r.logger.Debug("processing user", zap.Int64("user_id", profile.UserID))

	acquired, err := r.cache.AcquireRunLock(ctx, profile.UserID)
	if err == nil && !acquired {
		r.logger.Warn("user already being processed, skipping",
			zap.Int64("user_id", profile.UserID),
		)
		stats.skipped = true
		return stats, nil
	}
	if acquired {
		defer func() {
			if err := r.cache.ReleaseRunLock(context.WithoutCancel(ctx), profile.UserID); err != nil {
				r.logger.Error("failed to release run lock",
					zap.Int64("user_id", profile.UserID),
					zap.Error(err),
				)
			}
		}()
	}

	// Criteria and tier are snapshotted here and not re-read mid-run.
	criteria, err := profile.Criteria()
	if err != nil {
		return stats, fmt.Errorf("resolve criteria: %w", err)
	}

	state, err := r.quotas.Snapshot(ctx, profile.UserID, profile.SubscriptionTier)
	if err != nil {
		return stats, fmt.Errorf("quota snapshot: %w", err)
	}

	if state.Remaining() == 0 {
		// Not an error: the user simply has no allowance left this period.
		r.logger.Info("application quota reached",
			zap.Int64("user_id", profile.UserID),
			zap.String("tier", profile.SubscriptionTier),
		)
		return stats, nil
	}

	postings := r.searchPostings(ctx, profile.UserID, criteria)
	stats.found = len(postings)

	if len(postings) == 0 {
		r.logger.Debug("no postings found", zap.Int64("user_id", profile.UserID))
		return stats, nil
	}

	scored := make([]models.ScoredPosting, len(postings))
	for i := range postings {
		scored[i] = models.ScoredPosting{
			Posting: postings[i],
			Score:   match.Score(profile, criteria, &postings[i]),
		}
	}

	relevant, err := r.filter.Relevant(ctx, profile.UserID, scored, r.cfg.AutoApplyThreshold)
	if err != nil {
		return stats, fmt.Errorf("filter postings: %w", err)
	}

	if len(relevant) == 0 {
		r.logger.Debug("no relevant postings", zap.Int64("user_id", profile.UserID))
		return stats, nil
	}

	r.logger.Info("relevant postings found",
		zap.Int64("user_id", profile.UserID),
		zap.Int("count", len(relevant)),
	)

	r.submitLoop(ctx, profile, relevant, state, &stats)

	if r.notifier != nil && stats.submitted > 0 {
		r.notifier.ApplicationsSubmitted(ctx, profile, stats.submitted)
	}

	return stats, nil
}

// searchPostings aggregates across sources, with a short-TTL cache so a
// browse and an auto-apply pass close together share one search.
func (r *Runner) searchPostings(ctx context.Context, userID int64, criteria models.SearchCriteria) []models.JobPosting {
	if cached, err := r.cache.GetSearchResults(ctx, userID, criteria); err == nil {
		r.logger.Debug("using cached search results",
			zap.Int64("user_id", userID),
			zap.Int("count", len(cached)),
		)
		return cached
	}

	postings := r.aggregator.Search(ctx, criteria)

	if len(postings) > 0 {
		if err := r.cache.SetSearchResults(ctx, userID, criteria, postings); err != nil {
			r.logger.Debug("failed to cache search results", zap.Error(err))
		}
	}

	return postings
}

// submitLoop applies to the ranked postings, bounded by quota and the
// per-run cap, re-checking remaining quota before every submission.
func (r *Runner) submitLoop(
	ctx context.Context,
	profile *models.CandidateProfile,
	relevant []models.ScoredPosting,
	state *quota.State,
	stats *userStats,
) {
	limit := state.Remaining()
	if limit > r.cfg.PerRunCap {
		limit = r.cfg.PerRunCap
	}
	if limit > len(relevant) {
		limit = len(relevant)
	}

	app := buildApplication(profile)

	for i := 0; i < limit; i++ {
		if ctx.Err() != nil {
			return
		}

		// Defensive re-check: a long pass must never overshoot even if
		// quota state moved underneath it.
		if state.Remaining() == 0 {
			return
		}

		if i > 0 {
			r.submitter.Pace(ctx)
		}

		posting := relevant[i].Posting

		generated := r.letters.Generate(ctx, &posting, profile)
		app.CoverLetter = generated.Text

		result := r.submitter.Submit(ctx, &posting, app)

		if err := r.recorder.Record(ctx, profile.UserID, &posting, generated.Text, result, state); err != nil {
			r.logger.Error("failed to record application",
				zap.Int64("user_id", profile.UserID),
				zap.String("posting", posting.Key().String()),
				zap.Error(err),
			)
			stats.failed++
			continue
		}

		if result.Success {
			r.logger.Info("application submitted",
				zap.Int64("user_id", profile.UserID),
				zap.String("posting", posting.Key().String()),
				zap.String("company", posting.Company),
				zap.Int("score", relevant[i].Score),
				zap.Bool("letter_fallback", generated.Fallback),
			)
			stats.submitted++
		} else {
			stats.failed++
		}
	}
}

func buildApplication(profile *models.CandidateProfile) *apply.Application {
	app := &apply.Application{
		UserID:    profile.UserID,
		Email:     profile.Email,
		ResumeURL: profile.ResumeURL,
	}

	if profile.Phone != nil {
		app.Phone = *profile.Phone
	}
	if profile.LinkedInURL != nil {
		app.LinkedInURL = *profile.LinkedInURL
	}

	return app
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
