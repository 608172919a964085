package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Md905908324/NoSpendy/internal/amqp"
	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/services"
)

// ActivityWorker consumes spending activity messages and advances user
// streaks. It also owns the periodic maintenance loops: the monthly
// spending reset and the sweep that settles ended challenges.
type ActivityWorker struct {
	streaks    *services.StreakService
	challenges *services.ChallengeService
	resets     *services.ResetProcessor
}

func NewActivityWorker(streaks *services.StreakService, challenges *services.ChallengeService, resets *services.ResetProcessor) *ActivityWorker {
	return &ActivityWorker{
		streaks:    streaks,
		challenges: challenges,
		resets:     resets,
	}
}

// HandleActivityMessage processes a single activity message from AMQP
func (w *ActivityWorker) HandleActivityMessage(ctx context.Context, msg *amqp.ActivityMessage) error {
	if msg.UserID == "" {
		return fmt.Errorf("activity message missing user id")
	}

	day, err := core.ParseDate(msg.OccurredOn)
	if err != nil {
		return fmt.Errorf("parse activity day %q: %w", msg.OccurredOn, err)
	}

	state, err := w.streaks.Advance(ctx, msg.UserID, day)
	if err != nil {
		return fmt.Errorf("advance streak: %w", err)
	}

	slog.InfoContext(ctx, "Activity processed",
		"user_id", msg.UserID,
		"day", msg.OccurredOn,
		"streak_days", state.Days)

	return nil
}

// RunMaintenance runs the reset processor and challenge sweep once.
// Failures are logged, not returned: one bad cycle should not kill the
// loop.
func (w *ActivityWorker) RunMaintenance(ctx context.Context, now time.Time) {
	if w.resets != nil {
		if _, err := w.resets.Run(ctx, now); err != nil {
			slog.ErrorContext(ctx, "Maintenance run failed", "error", err)
		}
	}

	if w.challenges != nil {
		if _, err := w.challenges.SweepEnded(ctx, core.DateOf(now)); err != nil {
			slog.ErrorContext(ctx, "Challenge sweep failed", "error", err)
		}
	}
}

// StartMaintenanceLoops launches the periodic reset and sweep tickers.
// They stop when the context is cancelled.
func (w *ActivityWorker) StartMaintenanceLoops(ctx context.Context, resetInterval, sweepInterval time.Duration) {
	go w.loop(ctx, "reset", resetInterval, func(now time.Time) {
		if w.resets == nil {
			return
		}
		if _, err := w.resets.Run(ctx, now); err != nil {
			slog.ErrorContext(ctx, "Periodic reset run failed", "error", err)
		}
	})

	go w.loop(ctx, "challenge sweep", sweepInterval, func(now time.Time) {
		if w.challenges == nil {
			return
		}
		if _, err := w.challenges.SweepEnded(ctx, core.DateOf(now)); err != nil {
			slog.ErrorContext(ctx, "Periodic challenge sweep failed", "error", err)
		}
	})
}

func (w *ActivityWorker) loop(ctx context.Context, name string, interval time.Duration, fn func(now time.Time)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Maintenance loop started", "loop", name, "interval", interval)

	// Run once at startup to recover from downtime across a period turn.
	fn(time.Now())

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Maintenance loop stopped", "loop", name)
			return
		case now := <-ticker.C:
			fn(now)
		}
	}
}
