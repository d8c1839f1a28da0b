package match_test

import (
	"context"
	"testing"
	"time"

	"jobpilot/internal/match"
	"jobpilot/internal/models"

	"go.uber.org/zap"
)

type fakeAppliedStore struct {
	applied map[models.PostingKey]bool
}

func (f *fakeAppliedStore) FilterUnapplied(_ context.Context, _ int64, keys []models.PostingKey) ([]models.PostingKey, error) {
	var unapplied []models.PostingKey
	for _, key := range keys {
		if !f.applied[key] {
			unapplied = append(unapplied, key)
		}
	}
	return unapplied, nil
}

func scoredPosting(source, id string, score int, postedAt time.Time) models.ScoredPosting {
	return models.ScoredPosting{
		Posting: models.JobPosting{
			ExternalID: id,
			Source:     source,
			Title:      "Backend Engineer",
			PostedAt:   postedAt,
		},
		Score: score,
	}
}

func TestFilter_Threshold(t *testing.T) {
	filter := match.NewFilter(&fakeAppliedStore{}, zap.NewNop())
	now := time.Now()

	scored := []models.ScoredPosting{
		scoredPosting("linkedin", "a", 90, now),
		scoredPosting("linkedin", "b", 84, now),
		scoredPosting("indeed", "c", 85, now),
	}

	got, err := filter.Relevant(context.Background(), 1, scored, 85)
	if err != nil {
		t.Fatalf("Relevant returned unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Relevant returned %d postings, want 2", len(got))
	}
	for _, sp := range got {
		if sp.Score < 85 {
			t.Errorf("posting %s below threshold: %d", sp.Posting.Key(), sp.Score)
		}
	}
}

func TestFilter_ExcludesApplied(t *testing.T) {
	store := &fakeAppliedStore{
		applied: map[models.PostingKey]bool{
			{Source: "linkedin", ExternalID: "a"}: true,
		},
	}
	filter := match.NewFilter(store, zap.NewNop())
	now := time.Now()

	scored := []models.ScoredPosting{
		scoredPosting("linkedin", "a", 95, now),
		scoredPosting("linkedin", "b", 90, now),
	}

	got, err := filter.Relevant(context.Background(), 1, scored, 85)
	if err != nil {
		t.Fatalf("Relevant returned unexpected error: %v", err)
	}

	if len(got) != 1 || got[0].Posting.ExternalID != "b" {
		t.Errorf("Relevant = %v, want only posting b", got)
	}
}

func TestFilter_DropsDuplicateKeys(t *testing.T) {
	filter := match.NewFilter(&fakeAppliedStore{}, zap.NewNop())
	now := time.Now()

	scored := []models.ScoredPosting{
		scoredPosting("linkedin", "a", 95, now),
		scoredPosting("linkedin", "a", 95, now),
	}

	got, err := filter.Relevant(context.Background(), 1, scored, 85)
	if err != nil {
		t.Fatalf("Relevant returned unexpected error: %v", err)
	}

	if len(got) != 1 {
		t.Errorf("Relevant kept %d postings for one key, want 1", len(got))
	}
}

func TestFilter_RanksByScoreThenFreshness(t *testing.T) {
	filter := match.NewFilter(&fakeAppliedStore{}, zap.NewNop())
	older := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	scored := []models.ScoredPosting{
		scoredPosting("indeed", "low", 86, older),
		scoredPosting("linkedin", "tie-new", 92, newer),
		scoredPosting("linkedin", "tie-old", 92, older),
		scoredPosting("indeed", "high", 99, newer),
	}

	got, err := filter.Relevant(context.Background(), 1, scored, 85)
	if err != nil {
		t.Fatalf("Relevant returned unexpected error: %v", err)
	}

	wantOrder := []string{"high", "tie-old", "tie-new", "low"}
	if len(got) != len(wantOrder) {
		t.Fatalf("Relevant returned %d postings, want %d", len(got), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got[i].Posting.ExternalID != want {
			t.Errorf("position %d: got %s, want %s", i, got[i].Posting.ExternalID, want)
		}
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	filter := match.NewFilter(&fakeAppliedStore{}, zap.NewNop())

	got, err := filter.Relevant(context.Background(), 1, nil, 85)
	if err != nil {
		t.Fatalf("Relevant returned unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Relevant on empty input returned %d postings", len(got))
	}
}
