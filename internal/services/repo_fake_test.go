package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

func decimalFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// fakeRepo is an in-memory stand-in for the SQLite repository, shared by
// the challenge and leaderboard service tests.
type fakeRepo struct {
	users         map[string]storage.User
	expenses      []core.Expense
	challenges    map[string]core.Challenge
	participants  map[string][]string
	badges        map[string][]string
	challengesWon map[string]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:         make(map[string]storage.User),
		challenges:    make(map[string]core.Challenge),
		participants:  make(map[string][]string),
		badges:        make(map[string][]string),
		challengesWon: make(map[string]int),
	}
}

func (f *fakeRepo) addUser(u storage.User) {
	f.users[u.ID] = u
}

func (f *fakeRepo) addExpense(userID string, cents int64, day core.Date) {
	f.expenses = append(f.expenses, core.Expense{
		OwnerID:    userID,
		Amount:     core.Money{Cents: cents},
		Category:   "groceries",
		OccurredAt: day,
	})
}

func (f *fakeRepo) GetUserByID(_ context.Context, id string) (storage.User, error) {
	u, ok := f.users[id]
	if !ok {
		return storage.User{}, fmt.Errorf("get user %s: %w", id, storage.ErrNotFound)
	}
	return u, nil
}

func (f *fakeRepo) ListUsers(_ context.Context) ([]storage.User, error) {
	users := make([]storage.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (f *fakeRepo) ListUsersByRegion(ctx context.Context, regionCode string) ([]storage.User, error) {
	all, _ := f.ListUsers(ctx)
	var users []storage.User
	for _, u := range all {
		if u.RegionCode == regionCode {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeRepo) SumExpensesInRange(_ context.Context, userID string, from, to core.Date) (core.Money, error) {
	var owned []core.Expense
	for _, e := range f.expenses {
		if e.OwnerID == userID {
			owned = append(owned, e)
		}
	}
	return core.SumInRange(owned, from, to), nil
}

func (f *fakeRepo) ListBadges(_ context.Context, userID string) ([]string, error) {
	return append([]string(nil), f.badges[userID]...), nil
}

func (f *fakeRepo) AddBadge(_ context.Context, userID, badge string) error {
	for _, b := range f.badges[userID] {
		if b == badge {
			return nil
		}
	}
	f.badges[userID] = append(f.badges[userID], badge)
	return nil
}

func (f *fakeRepo) IncrementChallengesWon(_ context.Context, id string) error {
	f.challengesWon[id]++
	return nil
}

func (f *fakeRepo) CreateChallenge(_ context.Context, c core.Challenge) error {
	if _, ok := f.challenges[c.ID]; ok {
		return fmt.Errorf("create challenge %s: %w", c.ID, storage.ErrDuplicate)
	}
	f.challenges[c.ID] = c
	return nil
}

func (f *fakeRepo) GetChallenge(_ context.Context, id string) (core.Challenge, error) {
	c, ok := f.challenges[id]
	if !ok {
		return core.Challenge{}, fmt.Errorf("get challenge %s: %w", id, storage.ErrNotFound)
	}
	return c, nil
}

func (f *fakeRepo) ListChallenges(_ context.Context) ([]core.Challenge, error) {
	challenges := make([]core.Challenge, 0, len(f.challenges))
	for _, c := range f.challenges {
		challenges = append(challenges, c)
	}
	sort.Slice(challenges, func(i, j int) bool { return challenges[i].ID < challenges[j].ID })
	return challenges, nil
}

func (f *fakeRepo) ListChallengesByUser(ctx context.Context, userID string) ([]core.Challenge, error) {
	all, _ := f.ListChallenges(ctx)
	var mine []core.Challenge
	for _, c := range all {
		for _, p := range f.participants[c.ID] {
			if p == userID {
				mine = append(mine, c)
				break
			}
		}
	}
	return mine, nil
}

func (f *fakeRepo) ListEndedUncompleted(ctx context.Context, asOf core.Date) ([]core.Challenge, error) {
	all, _ := f.ListChallenges(ctx)
	var ended []core.Challenge
	for _, c := range all {
		if !c.Completed && !asOf.Before(c.EndDate.Time) {
			ended = append(ended, c)
		}
	}
	return ended, nil
}

func (f *fakeRepo) JoinChallenge(_ context.Context, challengeID, userID string) error {
	for _, p := range f.participants[challengeID] {
		if p == userID {
			return fmt.Errorf("join challenge %s: %w", challengeID, storage.ErrDuplicate)
		}
	}
	f.participants[challengeID] = append(f.participants[challengeID], userID)
	return nil
}

func (f *fakeRepo) ListParticipants(_ context.Context, challengeID string) ([]string, error) {
	return append([]string(nil), f.participants[challengeID]...), nil
}

func (f *fakeRepo) MarkChallengeCompleted(_ context.Context, id, winnerID string) error {
	c, ok := f.challenges[id]
	if !ok {
		return fmt.Errorf("challenge %s: %w", id, storage.ErrNotFound)
	}
	if c.Completed {
		return fmt.Errorf("challenge %s: %w", id, core.ErrChallengeCompleted)
	}
	c.Completed = true
	c.WinnerID = winnerID
	f.challenges[id] = c
	return nil
}
