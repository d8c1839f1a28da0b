package pipeline

import (
	"context"
	"fmt"

	"jobpilot/internal/models"
	"jobpilot/internal/quota"

	"go.uber.org/zap"
)

// Recorder persists submission outcomes. Success creates the application
// record, marks the posting applied and consumes quota. Failure only logs:
// no record, no quota, no applied mark, so the posting stays eligible for
// a later run.
type Recorder struct {
	store  ApplicationStore
	logger *zap.Logger
}

func NewRecorder(store ApplicationStore, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

func (r *Recorder) Record(
	ctx context.Context,
	userID int64,
	posting *models.JobPosting,
	coverLetter string,
	result models.ApplicationResult,
	state *quota.State,
) error {
	if !result.Success {
		r.logger.Warn("application not recorded",
			zap.Int64("user_id", userID),
			zap.String("posting", result.Posting.String()),
			zap.String("reason", result.Reason),
		)
		return nil
	}

	record := &models.ApplicationRecord{
		UserID:       userID,
		Source:       posting.Source,
		ExternalID:   posting.ExternalID,
		JobTitle:     posting.Title,
		Company:      posting.Company,
		CoverLetter:  coverLetter,
		Status:       models.StatusApplied,
		AppliedAt:    result.AppliedAt,
		StatusChange: result.AppliedAt,
	}

	if err := r.store.InsertApplicationRecord(ctx, record); err != nil {
		return fmt.Errorf("insert application record: %w", err)
	}

	if err := r.store.MarkPostingApplied(ctx, userID, posting.Source, posting.ExternalID); err != nil {
		// The record exists; exclusion on future runs relies on this
		// mark, so surface the fault loudly.
		r.logger.Error("failed to mark posting applied",
			zap.Int64("user_id", userID),
			zap.String("posting", posting.Key().String()),
			zap.Error(err),
		)
	}

	if err := r.store.CachePosting(ctx, posting); err != nil {
		r.logger.Error("failed to cache applied posting",
			zap.String("posting", posting.Key().String()),
			zap.Error(err),
		)
	}

	if err := state.Commit(); err != nil {
		return fmt.Errorf("commit quota: %w", err)
	}

	return nil
}
