package postgres

import (
	"context"
	"fmt"

	"jobpilot/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

// GetEligibleProfiles returns profiles of users with an active subscription
// and a configured job target. Only these users are processed by a run.
func (s *Store) GetEligibleProfiles(ctx context.Context) ([]models.CandidateProfile, error) {
	var profiles []models.CandidateProfile

	_, err := s.sess.
		Select("*").
		From("user_profiles").
		Where("subscription_active = TRUE AND job_title_target <> ''").
		OrderBy("user_id").
		LoadContext(ctx, &profiles)

	if err != nil {
		s.logger.Error("failed to get eligible profiles", zap.Error(err))
		return nil, fmt.Errorf("get eligible profiles: %w", err)
	}

	return profiles, nil
}

func (s *Store) GetProfile(ctx context.Context, userID int64) (*models.CandidateProfile, error) {
	var profile models.CandidateProfile

	err := s.sess.
		Select("*").
		From("user_profiles").
		Where("user_id = ?", userID).
		LoadOneContext(ctx, &profile)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get profile",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}
