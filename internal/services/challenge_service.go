package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/metrics"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

// ChallengeStore is the storage surface the challenge service needs.
type ChallengeStore interface {
	CreateChallenge(ctx context.Context, c core.Challenge) error
	GetChallenge(ctx context.Context, id string) (core.Challenge, error)
	ListChallenges(ctx context.Context) ([]core.Challenge, error)
	ListChallengesByUser(ctx context.Context, userID string) ([]core.Challenge, error)
	ListEndedUncompleted(ctx context.Context, asOf core.Date) ([]core.Challenge, error)
	JoinChallenge(ctx context.Context, challengeID, userID string) error
	ListParticipants(ctx context.Context, challengeID string) ([]string, error)
	MarkChallengeCompleted(ctx context.Context, id, winnerID string) error
	GetUserByID(ctx context.Context, id string) (storage.User, error)
	SumExpensesInRange(ctx context.Context, userID string, from, to core.Date) (core.Money, error)
	AddBadge(ctx context.Context, userID, badge string) error
	IncrementChallengesWon(ctx context.Context, id string) error
}

// ChallengeService manages group no-spend challenges, from creation
// through settling the winner.
type ChallengeService struct {
	store   ChallengeStore
	indexes core.IndexLookup
}

func NewChallengeService(store ChallengeStore, indexes core.IndexLookup) *ChallengeService {
	return &ChallengeService{
		store:   store,
		indexes: indexes,
	}
}

// CreateParams carries the fields accepted when creating a challenge.
type CreateParams struct {
	Name         string
	Description  string
	Target       core.Money
	DurationDays int
	StartDate    core.Date
	Category     string
	CreatedBy    string
}

// Create builds a challenge, derives its end date from the duration, and
// enrolls the creator as the first participant.
func (s *ChallengeService) Create(ctx context.Context, p CreateParams) (core.Challenge, error) {
	ch := core.Challenge{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(p.Name),
		Description:  strings.TrimSpace(p.Description),
		Target:       p.Target,
		DurationDays: p.DurationDays,
		StartDate:    p.StartDate,
		EndDate:      p.StartDate.AddDays(p.DurationDays),
		Category:     strings.TrimSpace(p.Category),
		CreatedBy:    p.CreatedBy,
	}

	if err := ch.Validate(); err != nil {
		return core.Challenge{}, fmt.Errorf("validate challenge: %w: %w", ErrInvalidParams, err)
	}

	if err := s.store.CreateChallenge(ctx, ch); err != nil {
		return core.Challenge{}, err
	}

	if err := s.store.JoinChallenge(ctx, ch.ID, p.CreatedBy); err != nil {
		return core.Challenge{}, fmt.Errorf("enroll creator: %w", err)
	}

	return ch, nil
}

func (s *ChallengeService) Get(ctx context.Context, id string) (core.Challenge, error) {
	return s.store.GetChallenge(ctx, id)
}

func (s *ChallengeService) List(ctx context.Context) ([]core.Challenge, error) {
	return s.store.ListChallenges(ctx)
}

func (s *ChallengeService) ListForUser(ctx context.Context, userID string) ([]core.Challenge, error) {
	return s.store.ListChallengesByUser(ctx, userID)
}

func (s *ChallengeService) Participants(ctx context.Context, challengeID string) ([]string, error) {
	return s.store.ListParticipants(ctx, challengeID)
}

// Join enrolls a user in a challenge. Joining one already settled fails.
func (s *ChallengeService) Join(ctx context.Context, challengeID, userID string) error {
	ch, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	if ch.Completed {
		return fmt.Errorf("join challenge %s: %w", challengeID, core.ErrChallengeCompleted)
	}

	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return err
	}

	return s.store.JoinChallenge(ctx, challengeID, userID)
}

// Complete settles a challenge whose window has closed: the participant
// with the lowest adjusted spending inside the window wins, gets the
// champion badge and a win on their record.
func (s *ChallengeService) Complete(ctx context.Context, challengeID string, today core.Date) (core.Challenge, error) {
	ch, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return core.Challenge{}, err
	}

	participantIDs, err := s.store.ListParticipants(ctx, challengeID)
	if err != nil {
		return core.Challenge{}, err
	}

	spendings := make(map[string]decimal.Decimal, len(participantIDs))
	for _, id := range participantIDs {
		user, err := s.store.GetUserByID(ctx, id)
		if err != nil {
			return core.Challenge{}, fmt.Errorf("load participant %s: %w", id, err)
		}

		raw, err := s.store.SumExpensesInRange(ctx, id, ch.StartDate, ch.EndDate)
		if err != nil {
			return core.Challenge{}, fmt.Errorf("sum spending for %s: %w", id, err)
		}

		spendings[id] = core.Normalize(raw, user.RegionCode, s.indexes)
	}

	settled, err := core.CompleteChallenge(ch, spendings, today)
	if err != nil {
		return core.Challenge{}, err
	}

	if err := s.store.MarkChallengeCompleted(ctx, settled.ID, settled.WinnerID); err != nil {
		return core.Challenge{}, err
	}
	metrics.RecordChallengeCompleted()

	if settled.WinnerID != "" {
		if err := s.store.AddBadge(ctx, settled.WinnerID, core.BadgeFrugalChampion); err != nil {
			return core.Challenge{}, fmt.Errorf("award champion badge: %w", err)
		}
		if err := s.store.IncrementChallengesWon(ctx, settled.WinnerID); err != nil {
			return core.Challenge{}, fmt.Errorf("record win: %w", err)
		}
		metrics.RecordBadgeAwarded(1)
	}

	slog.InfoContext(ctx, "Challenge completed",
		"challenge_id", settled.ID,
		"winner_id", settled.WinnerID,
		"participants", len(participantIDs))

	return settled, nil
}

// SweepEnded settles every challenge whose window has closed. Individual
// failures are logged and skipped so one bad challenge cannot wedge the
// sweep.
func (s *ChallengeService) SweepEnded(ctx context.Context, today core.Date) (int, error) {
	ended, err := s.store.ListEndedUncompleted(ctx, today)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, ch := range ended {
		if _, err := s.Complete(ctx, ch.ID, today); err != nil {
			slog.ErrorContext(ctx, "Failed to settle ended challenge",
				"challenge_id", ch.ID, "error", err)
			continue
		}
		settled++
	}

	if len(ended) > 0 {
		slog.InfoContext(ctx, "Challenge sweep complete",
			"ended", len(ended), "settled", settled)
	}

	return settled, nil
}
