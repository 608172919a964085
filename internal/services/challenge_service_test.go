package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

type fakeIndexes map[string]decimal.Decimal

func (f fakeIndexes) Lookup(code string) (decimal.Decimal, bool) {
	v, ok := f[code]
	return v, ok
}

func testIndexes() fakeIndexes {
	return fakeIndexes{
		"CA": decimal.NewFromInt(150),
		"TX": decimal.NewFromInt(90),
	}
}

func TestChallengeService_Create(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(storage.User{ID: "creator", Username: "casey"})
	svc := NewChallengeService(repo, testIndexes())

	start := core.NewDate(2026, 8, 1)
	ch, err := svc.Create(context.Background(), CreateParams{
		Name:         "August No-Spend",
		Description:  "Skip the takeout",
		Target:       core.Money{Cents: 10000},
		DurationDays: 30,
		StartDate:    start,
		CreatedBy:    "creator",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if ch.ID == "" {
		t.Error("Create() should assign an ID")
	}
	want := start.AddDays(30)
	if !ch.EndDate.Equal(want.Time) {
		t.Errorf("EndDate = %s, want %s", ch.EndDate.ISO(), want.ISO())
	}

	participants, _ := repo.ListParticipants(context.Background(), ch.ID)
	if len(participants) != 1 || participants[0] != "creator" {
		t.Errorf("participants = %v, want creator enrolled", participants)
	}
}

func TestChallengeService_Create_Invalid(t *testing.T) {
	svc := NewChallengeService(newFakeRepo(), testIndexes())

	_, err := svc.Create(context.Background(), CreateParams{
		Name:         "",
		Description:  "x",
		Target:       core.Money{Cents: 100},
		DurationDays: 7,
		StartDate:    core.NewDate(2026, 8, 1),
		CreatedBy:    "creator",
	})
	if !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("Create() error = %v, want ErrEmptyName", err)
	}
}

func TestChallengeService_Join(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(storage.User{ID: "creator"})
	repo.addUser(storage.User{ID: "friend"})
	svc := NewChallengeService(repo, testIndexes())

	ch, err := svc.Create(context.Background(), CreateParams{
		Name:         "test",
		Description:  "test",
		Target:       core.Money{Cents: 100},
		DurationDays: 7,
		StartDate:    core.NewDate(2026, 8, 1),
		CreatedBy:    "creator",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Join(context.Background(), ch.ID, "friend"); err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	if err := svc.Join(context.Background(), ch.ID, "friend"); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("second Join() error = %v, want ErrDuplicate", err)
	}

	if err := svc.Join(context.Background(), ch.ID, "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Join() with unknown user error = %v, want ErrNotFound", err)
	}
}

func TestChallengeService_Complete(t *testing.T) {
	ctx := context.Background()
	start := core.NewDate(2026, 8, 1)
	end := start.AddDays(7)

	setup := func() (*ChallengeService, *fakeRepo, core.Challenge) {
		repo := newFakeRepo()
		repo.addUser(storage.User{ID: "alice", Username: "alice", RegionCode: "CA"})
		repo.addUser(storage.User{ID: "bob", Username: "bob", RegionCode: "TX"})
		svc := NewChallengeService(repo, testIndexes())

		ch, err := svc.Create(ctx, CreateParams{
			Name:         "test",
			Description:  "test",
			Target:       core.Money{Cents: 10000},
			DurationDays: 7,
			StartDate:    start,
			CreatedBy:    "alice",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := svc.Join(ctx, ch.ID, "bob"); err != nil {
			t.Fatalf("Join() error = %v", err)
		}
		return svc, repo, ch
	}

	t.Run("adjusted spending decides the winner", func(t *testing.T) {
		svc, repo, ch := setup()
		// alice spends $150 raw in CA (index 150) -> adjusted $100
		// bob spends $120 raw in TX (index 90) -> adjusted ~$133
		repo.addExpense("alice", 15000, start.AddDays(1))
		repo.addExpense("bob", 12000, start.AddDays(2))

		settled, err := svc.Complete(ctx, ch.ID, end)
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}

		if settled.WinnerID != "alice" {
			t.Errorf("WinnerID = %s, want alice", settled.WinnerID)
		}
		if !settled.Completed {
			t.Error("challenge should be completed")
		}
		if repo.challengesWon["alice"] != 1 {
			t.Errorf("challengesWon = %d, want 1", repo.challengesWon["alice"])
		}
		badges, _ := repo.ListBadges(ctx, "alice")
		if len(badges) != 1 || badges[0] != core.BadgeFrugalChampion {
			t.Errorf("badges = %v, want [%s]", badges, core.BadgeFrugalChampion)
		}
	})

	t.Run("before end date fails", func(t *testing.T) {
		svc, _, ch := setup()

		_, err := svc.Complete(ctx, ch.ID, end.AddDays(-1))
		if !errors.Is(err, core.ErrChallengeNotEnded) {
			t.Errorf("Complete() error = %v, want ErrChallengeNotEnded", err)
		}
	})

	t.Run("second completion fails and keeps winner", func(t *testing.T) {
		svc, repo, ch := setup()
		repo.addExpense("alice", 1000, start.AddDays(1))
		repo.addExpense("bob", 12000, start.AddDays(2))

		if _, err := svc.Complete(ctx, ch.ID, end); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}

		_, err := svc.Complete(ctx, ch.ID, end)
		if !errors.Is(err, core.ErrChallengeCompleted) {
			t.Errorf("second Complete() error = %v, want ErrChallengeCompleted", err)
		}

		stored, _ := repo.GetChallenge(ctx, ch.ID)
		if stored.WinnerID != "alice" {
			t.Errorf("WinnerID = %s, want alice unchanged", stored.WinnerID)
		}
		if repo.challengesWon["alice"] != 1 {
			t.Errorf("challengesWon = %d, want 1", repo.challengesWon["alice"])
		}
	})
}

func TestChallengeService_SweepEnded(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.addUser(storage.User{ID: "alice", Username: "alice"})
	svc := NewChallengeService(repo, testIndexes())

	ended, err := svc.Create(ctx, CreateParams{
		Name:         "over",
		Description:  "done",
		Target:       core.Money{Cents: 100},
		DurationDays: 7,
		StartDate:    core.NewDate(2026, 8, 1),
		CreatedBy:    "alice",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Create(ctx, CreateParams{
		Name:         "running",
		Description:  "still going",
		Target:       core.Money{Cents: 100},
		DurationDays: 30,
		StartDate:    core.NewDate(2026, 8, 20),
		CreatedBy:    "alice",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	settled, err := svc.SweepEnded(ctx, core.NewDate(2026, 8, 31))
	if err != nil {
		t.Fatalf("SweepEnded() error = %v", err)
	}
	if settled != 1 {
		t.Errorf("settled = %d, want 1", settled)
	}

	stored, _ := repo.GetChallenge(ctx, ended.ID)
	if !stored.Completed {
		t.Error("ended challenge should be settled by the sweep")
	}
}
