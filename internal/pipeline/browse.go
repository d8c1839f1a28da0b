package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"jobpilot/internal/match"
	"jobpilot/internal/models"

	"go.uber.org/zap"
)

// BrowseMatches returns the user's current matches at the browse
// threshold, ranked, without applying to anything. Results feed the
// on-demand "browse matches" surface.
func (r *Runner) BrowseMatches(ctx context.Context, userID int64) ([]models.ScoredPosting, error) {
	profile, err := r.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %d not found", userID)
	}

	criteria, err := profile.Criteria()
	if err != nil {
		return nil, fmt.Errorf("resolve criteria: %w", err)
	}

	postings := r.searchPostings(ctx, userID, criteria)
	if len(postings) == 0 {
		return nil, nil
	}

	scored := make([]models.ScoredPosting, len(postings))
	for i := range postings {
		scored[i] = models.ScoredPosting{
			Posting: postings[i],
			Score:   match.Score(profile, criteria, &postings[i]),
		}
	}

	relevant, err := r.filter.Relevant(ctx, userID, scored, r.cfg.BrowseThreshold)
	if err != nil {
		return nil, fmt.Errorf("filter postings: %w", err)
	}

	// Keep browsed postings around so a later single-job apply can find
	// them by key.
	for i := range relevant {
		if err := r.store.CachePosting(ctx, &relevant[i].Posting); err != nil {
			r.logger.Debug("failed to cache browsed posting",
				zap.String("posting", relevant[i].Posting.Key().String()),
				zap.Error(err),
			)
		}
	}

	return relevant, nil
}

// ApplyToJob submits a single application on demand, outside the
// scheduled run. The posting must have been seen before (browse or a
// prior aggregation) so it exists in the posting cache.
func (r *Runner) ApplyToJob(ctx context.Context, userID int64, sourceName, externalID string) (models.ApplicationResult, error) {
	var zero models.ApplicationResult

	profile, err := r.profiles.GetProfile(ctx, userID)
	if err != nil {
		return zero, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		return zero, fmt.Errorf("profile %d not found", userID)
	}

	applied, err := r.store.HasApplied(ctx, userID, sourceName, externalID)
	if err != nil {
		return zero, fmt.Errorf("check applied: %w", err)
	}
	if applied {
		return zero, fmt.Errorf("already applied to %s:%s", sourceName, externalID)
	}

	cached, err := r.store.GetCachedPosting(ctx, sourceName, externalID)
	if err != nil {
		return zero, fmt.Errorf("get cached posting: %w", err)
	}
	if cached == nil {
		return zero, fmt.Errorf("posting %s:%s not found", sourceName, externalID)
	}

	var posting models.JobPosting
	if err := json.Unmarshal([]byte(cached.RawData), &posting); err != nil {
		return zero, fmt.Errorf("decode cached posting: %w", err)
	}

	state, err := r.quotas.Snapshot(ctx, userID, profile.SubscriptionTier)
	if err != nil {
		return zero, fmt.Errorf("quota snapshot: %w", err)
	}
	if state.Remaining() == 0 {
		return zero, fmt.Errorf("application quota reached for user %d", userID)
	}

	generated := r.letters.Generate(ctx, &posting, profile)

	app := buildApplication(profile)
	app.CoverLetter = generated.Text

	result := r.submitter.Submit(ctx, &posting, app)

	if err := r.recorder.Record(ctx, userID, &posting, generated.Text, result, state); err != nil {
		return result, fmt.Errorf("record application: %w", err)
	}

	return result, nil
}
