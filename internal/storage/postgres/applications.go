package postgres

import (
	"context"
	"fmt"
	"time"

	"jobpilot/internal/models"

	"github.com/gocraft/dbr/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

func (s *Store) InsertApplicationRecord(ctx context.Context, record *models.ApplicationRecord) error {
	query := `
		INSERT INTO applications (
			user_id, source, external_id, job_title, company,
			cover_letter, status, applied_at, status_changed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`

	var id int64
	err := s.sess.
		SelectBySql(query,
			record.UserID,
			record.Source,
			record.ExternalID,
			record.JobTitle,
			record.Company,
			record.CoverLetter,
			record.Status,
			record.AppliedAt,
		).
		LoadOneContext(ctx, &id)

	if err != nil {
		s.logger.Error("failed to insert application record",
			zap.Int64("user_id", record.UserID),
			zap.String("posting", record.Source+":"+record.ExternalID),
			zap.Error(err),
		)
		return fmt.Errorf("insert application record: %w", err)
	}

	record.ID = id

	s.logger.Info("application recorded",
		zap.Int64("user_id", record.UserID),
		zap.String("posting", record.Source+":"+record.ExternalID),
		zap.String("company", record.Company),
	)

	return nil
}

func (s *Store) MarkPostingApplied(ctx context.Context, userID int64, source, externalID string) error {
	query := `
		INSERT INTO user_applied_postings (user_id, source, external_id, applied_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, source, external_id) DO NOTHING
	`

	_, err := s.sess.
		InsertBySql(query, userID, source, externalID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to mark posting applied",
			zap.Int64("user_id", userID),
			zap.String("posting", source+":"+externalID),
			zap.Error(err),
		)
		return fmt.Errorf("mark posting applied: %w", err)
	}

	return nil
}

func (s *Store) HasApplied(ctx context.Context, userID int64, source, externalID string) (bool, error) {
	var count int

	err := s.sess.
		Select("COUNT(*)").
		From("user_applied_postings").
		Where("user_id = ? AND source = ? AND external_id = ?", userID, source, externalID).
		LoadOneContext(ctx, &count)

	if err != nil {
		s.logger.Error("failed to check applied posting",
			zap.Int64("user_id", userID),
			zap.String("posting", source+":"+externalID),
			zap.Error(err),
		)
		return false, fmt.Errorf("has applied: %w", err)
	}

	return count > 0, nil
}

// FilterUnapplied returns the subset of keys the user has not applied to,
// via set difference against user_applied_postings.
func (s *Store) FilterUnapplied(ctx context.Context, userID int64, keys []models.PostingKey) ([]models.PostingKey, error) {
	if len(keys) == 0 {
		return []models.PostingKey{}, nil
	}

	sources := make([]string, len(keys))
	externalIDs := make([]string, len(keys))
	for i, key := range keys {
		sources[i] = key.Source
		externalIDs[i] = key.ExternalID
	}

	query := `
		SELECT * FROM unnest($1::text[], $2::text[]) AS t(source, external_id)
		EXCEPT
		SELECT source, external_id FROM user_applied_postings WHERE user_id = $3
	`

	var unapplied []models.PostingKey

	rows, err := s.sess.
		SelectBySql(query, pq.Array(sources), pq.Array(externalIDs), userID).
		Rows()

	if err != nil {
		s.logger.Error("failed to filter unapplied postings",
			zap.Int64("user_id", userID),
			zap.Int("total_postings", len(keys)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("filter unapplied: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key models.PostingKey
		if err := rows.Scan(&key.Source, &key.ExternalID); err != nil {
			s.logger.Error("failed to scan posting key",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("scan posting key: %w", err)
		}
		unapplied = append(unapplied, key)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error("failed during rows iteration",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	s.logger.Debug("unapplied postings",
		zap.Int64("user_id", userID),
		zap.Int("total", len(keys)),
		zap.Int("unapplied", len(unapplied)),
	)

	return unapplied, nil
}

// CountApplicationsThisPeriod counts applications recorded since the start
// of the user's current billing period.
func (s *Store) CountApplicationsThisPeriod(ctx context.Context, userID int64, periodStart time.Time) (int, error) {
	var count int

	err := s.sess.
		Select("COUNT(*)").
		From("applications").
		Where("user_id = ? AND applied_at >= ?", userID, periodStart).
		LoadOneContext(ctx, &count)

	if err != nil {
		s.logger.Error("failed to count applications",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return 0, fmt.Errorf("count applications this period: %w", err)
	}

	return count, nil
}

// UpdateApplicationStatus moves a record through the status graph. Invalid
// transitions are rejected before touching the row.
func (s *Store) UpdateApplicationStatus(ctx context.Context, recordID int64, to models.ApplicationStatus) error {
	var current string

	err := s.sess.
		Select("status").
		From("applications").
		Where("id = ?", recordID).
		LoadOneContext(ctx, &current)

	if err == dbr.ErrNotFound {
		return fmt.Errorf("application %d not found", recordID)
	}
	if err != nil {
		return fmt.Errorf("load application status: %w", err)
	}

	from, err := models.ParseApplicationStatus(current)
	if err != nil {
		return err
	}

	if !models.IsStatusTransitionAllowed(from, to) {
		return fmt.Errorf("status transition %s -> %s not allowed", from, to)
	}

	_, err = s.sess.
		Update("applications").
		Set("status", to).
		Set("status_changed_at", time.Now()).
		Where("id = ?", recordID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to update application status",
			zap.Int64("record_id", recordID),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		return fmt.Errorf("update application status: %w", err)
	}

	s.logger.Info("application status updated",
		zap.Int64("record_id", recordID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	return nil
}
