package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Md905908324/NoSpendy/internal/cache"
	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/metrics"
	"github.com/Md905908324/NoSpendy/internal/regions"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

const (
	leaderboardCacheSize = 64
	leaderboardCacheTTL  = 30 * time.Second
	sumConcurrency       = 8
)

// LeaderboardStore is the storage surface the leaderboard service needs.
type LeaderboardStore interface {
	ListUsers(ctx context.Context) ([]storage.User, error)
	ListUsersByRegion(ctx context.Context, regionCode string) ([]storage.User, error)
	GetUserByID(ctx context.Context, id string) (storage.User, error)
	GetChallenge(ctx context.Context, id string) (core.Challenge, error)
	ListParticipants(ctx context.Context, challengeID string) ([]string, error)
	SumExpensesInRange(ctx context.Context, userID string, from, to core.Date) (core.Money, error)
	ListBadges(ctx context.Context, userID string) ([]string, error)
}

// LeaderboardService ranks users by cost-of-living adjusted spending.
// Boards are cached briefly since they are read far more often than the
// underlying totals change.
type LeaderboardService struct {
	store   LeaderboardStore
	indexes core.IndexLookup
	cache   *cache.TTLCache[[]core.Snapshot]
	limit   int
	opts    core.RankOptions
}

func NewLeaderboardService(store LeaderboardStore, indexes core.IndexLookup, limit int, includeZeroSpend bool) *LeaderboardService {
	return &LeaderboardService{
		store:   store,
		indexes: indexes,
		cache:   cache.New[[]core.Snapshot](leaderboardCacheSize, leaderboardCacheTTL),
		limit:   limit,
		opts:    core.RankOptions{IncludeZeroSpend: includeZeroSpend},
	}
}

func (s *LeaderboardService) snapshot(u storage.User, raw core.Money) core.Snapshot {
	index := regions.NeutralIndex
	if s.indexes != nil {
		if v, ok := s.indexes.Lookup(u.RegionCode); ok {
			index = v
		}
	}
	return core.Snapshot{
		UserID:     u.ID,
		Username:   u.Username,
		RegionCode: u.RegionCode,
		Raw:        raw,
		Adjusted:   core.Normalize(raw, u.RegionCode, s.indexes),
		Index:      index,
		StreakDays: u.StreakDays,
	}
}

func (s *LeaderboardService) truncate(snaps []core.Snapshot) []core.Snapshot {
	if s.limit > 0 && len(snaps) > s.limit {
		return snaps[:s.limit]
	}
	return snaps
}

// Global ranks all users by their adjusted running monthly spending.
func (s *LeaderboardService) Global(ctx context.Context) ([]core.Snapshot, error) {
	if board, ok := s.cache.Get("global"); ok {
		metrics.RecordLeaderboardCacheHit()
		return board, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	snaps := make([]core.Snapshot, len(users))
	for i, u := range users {
		snaps[i] = s.snapshot(u, u.MonthlySpending)
	}

	board := s.truncate(core.Rank(snaps, s.opts))
	metrics.RecordLeaderboardComputation()
	s.cache.Set("global", board)
	return board, nil
}

// Monthly ranks all users by adjusted spending summed over the calendar
// month containing today.
func (s *LeaderboardService) Monthly(ctx context.Context, today core.Date) ([]core.Snapshot, error) {
	key := "monthly:" + today.Format("2006-01")
	if board, ok := s.cache.Get(key); ok {
		metrics.RecordLeaderboardCacheHit()
		return board, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	from := core.NewDate(today.Year(), int(today.Month()), 1)
	to := from.AddDays(daysInMonth(today.Year(), int(today.Month())) - 1)

	snaps, err := s.rankByRange(ctx, users, from, to)
	if err != nil {
		return nil, err
	}

	board := s.truncate(snaps)
	metrics.RecordLeaderboardComputation()
	s.cache.Set(key, board)
	return board, nil
}

// Challenge ranks a challenge's participants by adjusted spending inside
// the challenge window.
func (s *LeaderboardService) Challenge(ctx context.Context, challengeID string) ([]core.Snapshot, error) {
	key := "challenge:" + challengeID
	if board, ok := s.cache.Get(key); ok {
		metrics.RecordLeaderboardCacheHit()
		return board, nil
	}

	ch, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	participantIDs, err := s.store.ListParticipants(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	users := make([]storage.User, 0, len(participantIDs))
	for _, id := range participantIDs {
		u, err := s.store.GetUserByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load participant %s: %w", id, err)
		}
		users = append(users, u)
	}

	snaps, err := s.rankByRange(ctx, users, ch.StartDate, ch.EndDate)
	if err != nil {
		return nil, err
	}

	// Challenge boards always show everyone who joined, spenders first.
	board := s.truncate(snaps)
	metrics.RecordLeaderboardComputation()
	s.cache.Set(key, board)
	return board, nil
}

// rankByRange sums every user's expenses inside [from, to] concurrently,
// then ranks the adjusted totals.
func (s *LeaderboardService) rankByRange(ctx context.Context, users []storage.User, from, to core.Date) ([]core.Snapshot, error) {
	snaps := make([]core.Snapshot, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sumConcurrency)
	for i, u := range users {
		g.Go(func() error {
			raw, err := s.store.SumExpensesInRange(gctx, u.ID, from, to)
			if err != nil {
				return fmt.Errorf("sum spending for %s: %w", u.ID, err)
			}
			snaps[i] = s.snapshot(u, raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return core.Rank(snaps, s.opts), nil
}

// Streaks ranks users by current streak length, longest first. Ties keep
// username order.
func (s *LeaderboardService) Streaks(ctx context.Context) ([]core.Snapshot, error) {
	if board, ok := s.cache.Get("streaks"); ok {
		metrics.RecordLeaderboardCacheHit()
		return board, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	snaps := make([]core.Snapshot, 0, len(users))
	for _, u := range users {
		if u.StreakDays <= 0 {
			continue
		}
		snap := s.snapshot(u, u.MonthlySpending)
		badges, err := s.store.ListBadges(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("load badges for %s: %w", u.ID, err)
		}
		snap.Badges = badges
		snaps = append(snaps, snap)
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].StreakDays > snaps[j].StreakDays
	})

	board := s.truncate(snaps)
	metrics.RecordLeaderboardComputation()
	s.cache.Set("streaks", board)
	return board, nil
}

// Region ranks users within one region by adjusted running monthly
// spending. Everyone shares the same index, so the ordering matches raw
// spending; the adjusted figures still travel for display.
func (s *LeaderboardService) Region(ctx context.Context, regionCode string) ([]core.Snapshot, error) {
	key := "region:" + regionCode
	if board, ok := s.cache.Get(key); ok {
		metrics.RecordLeaderboardCacheHit()
		return board, nil
	}

	users, err := s.store.ListUsersByRegion(ctx, regionCode)
	if err != nil {
		return nil, err
	}

	snaps := make([]core.Snapshot, len(users))
	for i, u := range users {
		snaps[i] = s.snapshot(u, u.MonthlySpending)
	}

	board := s.truncate(core.Rank(snaps, s.opts))
	metrics.RecordLeaderboardComputation()
	s.cache.Set(key, board)
	return board, nil
}
