package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Md905908324/NoSpendy/internal/amqp"
	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/metrics"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

// ExpenseStore is the storage surface the expense service needs.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	ListExpensesByUser(ctx context.Context, userID string) ([]core.Expense, error)
	ListExpensesByCategory(ctx context.Context, userID, category string) ([]core.Expense, error)
	SumExpensesInRange(ctx context.Context, userID string, from, to core.Date) (core.Money, error)
	AddMonthlySpending(ctx context.Context, id string, cents int64) error
	UpsertDailyTotal(ctx context.Context, userID string, day core.Date, cents int64) error
	ListDailyTotals(ctx context.Context, userID string, since core.Date) ([]storage.DailyTotal, error)
}

// ActivityPublisher publishes spending activity for async processing.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, userID, occurredOn string) error
}

// ExpenseService orchestrates expense writes across SQLite and AMQP
type ExpenseService struct {
	store     ExpenseStore
	publisher ActivityPublisher
}

func NewExpenseService(store ExpenseStore, publisher ActivityPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

// CreateExpense saves an expense locally, updates the running monthly and
// daily totals, and publishes an activity message for the streak worker.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w: %w", ErrInvalidParams, err)
	}

	// Save to SQLite first (fast, reliable)
	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	e.ID = id
	metrics.RecordExpense()

	if err := s.store.AddMonthlySpending(ctx, e.OwnerID, e.Amount.Cents); err != nil {
		return core.Expense{}, fmt.Errorf("update monthly spending: %w", err)
	}

	if err := s.store.UpsertDailyTotal(ctx, e.OwnerID, e.OccurredAt, e.Amount.Cents); err != nil {
		return core.Expense{}, fmt.Errorf("update daily total: %w", err)
	}

	// Publish async activity message (non-blocking for the caller)
	if err := s.publishActivity(ctx, e.OwnerID, e.OccurredAt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish activity message",
			"user_id", e.OwnerID, "error", err)
		metrics.RecordPublishFailure()
		// Don't fail the request - expense is saved locally
	}

	return e, nil
}

func (s *ExpenseService) publishActivity(ctx context.Context, userID string, day core.Date) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping activity message")
		return nil
	}
	return s.publisher.PublishActivity(ctx, userID, day.ISO())
}

// ListExpenses returns a user's expenses, most recent day first.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	return s.store.ListExpensesByUser(ctx, userID)
}

// ListByCategory returns a user's expenses in one category.
func (s *ExpenseService) ListByCategory(ctx context.Context, userID, category string) ([]core.Expense, error) {
	return s.store.ListExpensesByCategory(ctx, userID, category)
}

// MonthlySummary totals a user's spending for a calendar month.
func (s *ExpenseService) MonthlySummary(ctx context.Context, userID string, year, month int) (core.Money, error) {
	from := core.NewDate(year, month, 1)
	to := from.AddDays(daysInMonth(year, month) - 1)
	return s.store.SumExpensesInRange(ctx, userID, from, to)
}

// DailyHistory returns the rolling per-day totals for the last n days,
// today included.
func (s *ExpenseService) DailyHistory(ctx context.Context, userID string, today core.Date, days int) ([]storage.DailyTotal, error) {
	if days < 1 {
		days = 1
	}
	since := today.AddDays(-(days - 1))
	return s.store.ListDailyTotals(ctx, userID, since)
}

func daysInMonth(year, month int) int {
	return core.NewDate(year, month+1, 1).AddDays(-1).Day()
}

// Closer pairs the storage and AMQP handles so main can shut both down.
type Closer struct {
	Storage *storage.SQLiteRepository
	AMQP    *amqp.Client
}

func (c Closer) Close() error {
	var errs []error

	if c.Storage != nil {
		if err := c.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c.AMQP != nil {
		if err := c.AMQP.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close services: %v", errs)
	}

	return nil
}
