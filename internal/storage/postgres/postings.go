package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobpilot/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

// CachePosting persists a posting that was applied to, so application
// records can be displayed with full job details later.
func (s *Store) CachePosting(ctx context.Context, posting *models.JobPosting) error {
	raw, err := json.Marshal(posting)
	if err != nil {
		return fmt.Errorf("marshal posting: %w", err)
	}

	query := `
		INSERT INTO postings_cache (
			source, external_id, title, company, location,
			url, posted_at, raw_data, cached_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (source, external_id) DO UPDATE SET
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			url = EXCLUDED.url,
			posted_at = EXCLUDED.posted_at,
			raw_data = EXCLUDED.raw_data,
			cached_at = EXCLUDED.cached_at
	`

	_, err = s.sess.
		InsertBySql(query,
			posting.Source,
			posting.ExternalID,
			posting.Title,
			posting.Company,
			posting.Location,
			posting.URL,
			posting.PostedAt,
			models.RawJSON(raw),
			time.Now(),
		).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to cache posting",
			zap.String("posting", posting.Key().String()),
			zap.Error(err),
		)
		return fmt.Errorf("cache posting: %w", err)
	}

	return nil
}

func (s *Store) GetCachedPosting(ctx context.Context, source, externalID string) (*models.CachedPosting, error) {
	var posting models.CachedPosting

	err := s.sess.
		Select("*").
		From("postings_cache").
		Where("source = ? AND external_id = ?", source, externalID).
		LoadOneContext(ctx, &posting)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get cached posting",
			zap.String("posting", source+":"+externalID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get cached posting: %w", err)
	}

	return &posting, nil
}

func (s *Store) CleanOldPostingsCache(ctx context.Context, daysOld int) (int64, error) {
	result, err := s.sess.
		DeleteFrom("postings_cache").
		Where("cached_at < NOW() - ? * INTERVAL '1 day'", daysOld).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to clean old postings cache",
			zap.Int("days_old", daysOld),
			zap.Error(err),
		)
		return 0, fmt.Errorf("clean old postings cache: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()

	s.logger.Info("old postings cleaned",
		zap.Int("days_old", daysOld),
		zap.Int64("count", rowsAffected),
	)

	return rowsAffected, nil
}
