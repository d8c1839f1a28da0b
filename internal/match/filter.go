package match

import (
	"context"
	"fmt"
	"sort"

	"jobpilot/internal/models"

	"go.uber.org/zap"
)

// AppliedStore answers which of a batch of postings the user has already
// applied to.
type AppliedStore interface {
	FilterUnapplied(ctx context.Context, userID int64, keys []models.PostingKey) ([]models.PostingKey, error)
}

// Filter retains postings at or above a score threshold, drops duplicates
// and already-applied postings, and ranks the remainder.
type Filter struct {
	store  AppliedStore
	logger *zap.Logger
}

func NewFilter(store AppliedStore, logger *zap.Logger) *Filter {
	return &Filter{store: store, logger: logger}
}

// Relevant returns the user's actionable postings, best first. Ordering is
// descending score with earliest posted timestamp breaking ties, so the
// freshest best-fit postings win when quota is scarce.
func (f *Filter) Relevant(ctx context.Context, userID int64, scored []models.ScoredPosting, threshold int) ([]models.ScoredPosting, error) {
	seen := make(map[models.PostingKey]bool, len(scored))
	var candidates []models.ScoredPosting

	for _, sp := range scored {
		if sp.Score < threshold {
			continue
		}

		key := sp.Posting.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		candidates = append(candidates, sp)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	keys := make([]models.PostingKey, len(candidates))
	for i, sp := range candidates {
		keys[i] = sp.Posting.Key()
	}

	unapplied, err := f.store.FilterUnapplied(ctx, userID, keys)
	if err != nil {
		return nil, fmt.Errorf("filter unapplied: %w", err)
	}

	unappliedSet := make(map[models.PostingKey]bool, len(unapplied))
	for _, key := range unapplied {
		unappliedSet[key] = true
	}

	var relevant []models.ScoredPosting
	for _, sp := range candidates {
		if unappliedSet[sp.Posting.Key()] {
			relevant = append(relevant, sp)
		}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		if relevant[i].Score != relevant[j].Score {
			return relevant[i].Score > relevant[j].Score
		}
		return relevant[i].Posting.PostedAt.Before(relevant[j].Posting.PostedAt)
	})

	f.logger.Debug("filtered postings",
		zap.Int64("user_id", userID),
		zap.Int("scored", len(scored)),
		zap.Int("above_threshold", len(candidates)),
		zap.Int("relevant", len(relevant)),
	)

	return relevant, nil
}
