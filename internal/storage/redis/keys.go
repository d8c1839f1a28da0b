package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"jobpilot/internal/models"
)

const (
	SearchCacheTTL     = 5 * time.Minute
	RateLimitWindowTTL = 1 * time.Minute
	RunLockTTL         = 30 * time.Minute
)

// Outbound request budget per board per minute.
const MaxBoardRequestsPerMinute = 50

func BoardRateLimitKey(source string) string {
	return fmt.Sprintf("ratelimit:board:%s", source)
}

func RunLockKey(userID int64) string {
	return fmt.Sprintf("runlock:user:%d", userID)
}

// SearchCacheKey derives a stable key from the criteria so identical
// searches within the TTL share one cached result set.
func SearchCacheKey(userID int64, criteria models.SearchCriteria) string {
	data, _ := json.Marshal(criteria)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("search:user:%d:%s", userID, hex.EncodeToString(sum[:8]))
}

// CheckBoardRateLimit counts an outbound request against the board's
// one-minute window and reports whether the budget is exhausted.
func (c *Cache) CheckBoardRateLimit(ctx context.Context, source string) error {
	count, err := c.GetInt(ctx, BoardRateLimitKey(source))
	if err != nil {
		// Redis trouble must not block searching; the boards enforce
		// their own limits anyway.
		return nil
	}

	if count > MaxBoardRequestsPerMinute {
		return fmt.Errorf("board %s rate limit exceeded: %d requests", source, count)
	}

	if _, err := c.IncrementWithExpiry(ctx, BoardRateLimitKey(source), RateLimitWindowTTL); err != nil {
		c.logger.Error("failed to increment board rate limit")
	}

	return nil
}

// AcquireRunLock takes the per-user run lock so two overlapping trigger
// invocations cannot process the same user concurrently.
func (c *Cache) AcquireRunLock(ctx context.Context, userID int64) (bool, error) {
	return c.SetIfAbsent(ctx, RunLockKey(userID), "1", RunLockTTL)
}

func (c *Cache) ReleaseRunLock(ctx context.Context, userID int64) error {
	return c.Delete(ctx, RunLockKey(userID))
}

func (c *Cache) GetSearchResults(ctx context.Context, userID int64, criteria models.SearchCriteria) ([]models.JobPosting, error) {
	var postings []models.JobPosting
	if err := c.Get(ctx, SearchCacheKey(userID, criteria), &postings); err != nil {
		return nil, err
	}
	return postings, nil
}

func (c *Cache) SetSearchResults(ctx context.Context, userID int64, criteria models.SearchCriteria, postings []models.JobPosting) error {
	return c.Set(ctx, SearchCacheKey(userID, criteria), postings, SearchCacheTTL)
}
