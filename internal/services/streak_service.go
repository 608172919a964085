package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/metrics"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

const maxStreakRetries = 3

// StreakStore is the storage surface the streak service needs.
type StreakStore interface {
	GetUserByID(ctx context.Context, id string) (storage.User, error)
	UpdateStreakCAS(ctx context.Context, id string, days int, lastActive core.Date, expectedVersion int64) (bool, error)
	ListBadges(ctx context.Context, userID string) ([]string, error)
	AddBadge(ctx context.Context, userID, badge string) error
}

// StreakService advances per-user activity streaks. Writes for the same
// user are serialized through a per-user lock, and the storage write is
// guarded by a version check so concurrent workers never clobber each
// other's updates.
type StreakService struct {
	store StreakStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStreakService(store StreakStore) *StreakService {
	return &StreakService{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *StreakService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// Advance records activity for a user on the given day and returns the
// resulting streak state. Re-processing the same day is a no-op, so
// redelivered messages are safe.
func (s *StreakService) Advance(ctx context.Context, userID string, day core.Date) (core.StreakState, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; attempt < maxStreakRetries; attempt++ {
		user, err := s.store.GetUserByID(ctx, userID)
		if err != nil {
			return core.StreakState{}, err
		}

		badges, err := s.store.ListBadges(ctx, userID)
		if err != nil {
			return core.StreakState{}, fmt.Errorf("load badges: %w", err)
		}

		state := core.StreakState{
			Days:       user.StreakDays,
			LastActive: user.LastActive,
			Badges:     badges,
		}

		next, awarded := core.AdvanceStreak(state, day)
		if next.Days == state.Days && !state.LastActive.IsZero() && state.LastActive.Equal(next.LastActive.Time) {
			return next, nil
		}

		ok, err := s.store.UpdateStreakCAS(ctx, userID, next.Days, next.LastActive, user.Version)
		if err != nil {
			return core.StreakState{}, err
		}
		if !ok {
			metrics.RecordStreakConflict()
			slog.WarnContext(ctx, "Streak version conflict, retrying",
				"user_id", userID, "attempt", attempt+1)
			continue
		}

		for _, badge := range awarded {
			if err := s.store.AddBadge(ctx, userID, badge); err != nil {
				return core.StreakState{}, fmt.Errorf("award badge %s: %w", badge, err)
			}
		}
		if len(awarded) > 0 {
			metrics.RecordBadgeAwarded(len(awarded))
		}

		metrics.RecordStreakUpdate()
		slog.InfoContext(ctx, "Streak advanced",
			"user_id", userID,
			"streak_days", next.Days,
			"badges_awarded", len(awarded))

		return next, nil
	}

	return core.StreakState{}, fmt.Errorf("advance streak for %s: version conflict persisted after %d attempts", userID, maxStreakRetries)
}
