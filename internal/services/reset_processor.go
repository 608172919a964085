package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/metrics"
)

// ResetStore is the storage surface the reset processor needs.
type ResetStore interface {
	ResetMonthlySpending(ctx context.Context) (int64, error)
	PruneDailyTotals(ctx context.Context, before core.Date) (int64, error)
}

// ResetProcessor performs the periodic maintenance runs: zeroing running
// monthly spending at the turn of the month and pruning the rolling daily
// spending cache. It tracks last-run times itself; re-running inside the
// same period is a no-op.
type ResetProcessor struct {
	store         ResetStore
	retentionDays int

	lastReset time.Time
	lastPrune time.Time
}

func NewResetProcessor(store ResetStore, retentionDays int) *ResetProcessor {
	return &ResetProcessor{
		store:         store,
		retentionDays: retentionDays,
	}
}

// Run performs whichever maintenance jobs are due at now. It returns the
// number of jobs that actually ran.
func (p *ResetProcessor) Run(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	ran := 0

	resetChecker, err := GetDuenessChecker(MonthlyReset)
	if err != nil {
		return 0, err
	}
	if resetChecker.IsDue(p.lastReset, now) {
		if err := p.resetMonthly(ctx); err != nil {
			return ran, err
		}
		p.lastReset = now
		ran++
	}

	pruneChecker, err := GetDuenessChecker(DailyPrune)
	if err != nil {
		return ran, err
	}
	if pruneChecker.IsDue(p.lastPrune, now) {
		if err := p.pruneDaily(ctx, now); err != nil {
			return ran, err
		}
		p.lastPrune = now
		ran++
	}

	return ran, nil
}

func (p *ResetProcessor) resetMonthly(ctx context.Context) error {
	affected, err := p.store.ResetMonthlySpending(ctx)
	if err != nil {
		return fmt.Errorf("monthly reset: %w", err)
	}

	metrics.RecordMonthlyReset()
	slog.InfoContext(ctx, "Monthly spending reset complete", "users_reset", affected)
	return nil
}

func (p *ResetProcessor) pruneDaily(ctx context.Context, now time.Time) error {
	cutoff := core.DateOf(now).AddDays(-p.retentionDays)
	pruned, err := p.store.PruneDailyTotals(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune daily totals: %w", err)
	}

	if pruned > 0 {
		metrics.RecordDailyRowsPruned(pruned)
	}
	slog.InfoContext(ctx, "Daily spending cache pruned",
		"rows_pruned", pruned,
		"cutoff", cutoff.ISO())
	return nil
}
