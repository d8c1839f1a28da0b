// Package quota tracks per-user, per-billing-period application budgets.
package quota

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Unlimited is the sentinel tier limit for subscriptions without a cap.
const Unlimited = -1

const (
	TierStarter      = "starter"
	TierProfessional = "professional"
	TierPremium      = "premium"
)

// TierLimit maps a subscription tier to its applications-per-period cap.
// Unknown tiers get the starter cap.
func TierLimit(tier string) int {
	switch tier {
	case TierProfessional:
		return 150
	case TierPremium:
		return Unlimited
	default:
		return 50
	}
}

// PeriodStart returns the start of the billing period containing now.
// Billing periods are calendar months.
func PeriodStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// UsageStore counts applications already recorded this period.
type UsageStore interface {
	CountApplicationsThisPeriod(ctx context.Context, userID int64, periodStart time.Time) (int, error)
}

// Manager hands out per-user quota states. All mutation goes through the
// state's own lock, so check-then-commit stays atomic no matter how many
// workers the orchestrator runs.
type Manager struct {
	store  UsageStore
	logger *zap.Logger
}

func NewManager(store UsageStore, logger *zap.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// Snapshot loads the user's quota state for this run. Tier and consumed
// count are read once here and not re-read mid-run.
func (m *Manager) Snapshot(ctx context.Context, userID int64, tier string) (*State, error) {
	periodStart := PeriodStart(time.Now())

	used, err := m.store.CountApplicationsThisPeriod(ctx, userID, periodStart)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}

	limit := TierLimit(tier)

	m.logger.Debug("quota snapshot",
		zap.Int64("user_id", userID),
		zap.String("tier", tier),
		zap.Int("limit", limit),
		zap.Int("used", used),
	)

	return &State{
		UserID:      userID,
		PeriodStart: periodStart,
		limit:       limit,
		used:        used,
	}, nil
}

// State is one user's quota for the current billing period. Remaining and
// Commit share a lock: a worker that checked Remaining and then commits
// cannot interleave with another in a way that exceeds the cap.
type State struct {
	UserID      int64
	PeriodStart time.Time

	mu    sync.Mutex
	limit int
	used  int
}

// Remaining reports how many more applications may be submitted this
// period. Unlimited tiers report a practically infinite allowance.
func (s *State) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked()
}

func (s *State) remainingLocked() int {
	if s.limit == Unlimited {
		return math.MaxInt32
	}

	remaining := s.limit - s.used
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Commit consumes one application from the budget after a confirmed
// successful submission. It fails when the budget is already exhausted,
// which means a check was skipped somewhere.
func (s *State) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remainingLocked() == 0 {
		return fmt.Errorf("quota exhausted for user %d", s.UserID)
	}

	s.used++
	return nil
}

// Used reports applications consumed this period, including commits made
// during this run.
func (s *State) Used() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}
