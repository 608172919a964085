package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Md905908324/NoSpendy/internal/core"
)

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (user_id, amount_cents, category, note, occurred_on)
		VALUES (?, ?, ?, ?, ?)`,
		e.OwnerID, e.Amount.Cents, e.Category, e.Note, e.OccurredAt.ISO())
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"user_id", e.OwnerID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category,
		"day", e.OccurredAt.ISO())

	return id, nil
}

const expenseColumns = `id, user_id, amount_cents, category, note, occurred_on`

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e   core.Expense
		day string
	)
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Amount.Cents, &e.Category, &e.Note, &day); err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(day)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse occurred_on %q: %w", day, err)
	}
	e.OccurredAt = d
	return e, nil
}

func (r *SQLiteRepository) listExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) ListExpensesByUser(ctx context.Context, userID string) ([]core.Expense, error) {
	expenses, err := r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? ORDER BY occurred_on DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (r *SQLiteRepository) ListExpensesByCategory(ctx context.Context, userID, category string) ([]core.Expense, error) {
	expenses, err := r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND category = ? ORDER BY occurred_on DESC, id DESC`,
		userID, category)
	if err != nil {
		return nil, fmt.Errorf("list expenses by category: %w", err)
	}
	return expenses, nil
}

// SumExpensesInRange totals a user's expenses with occurred_on inside
// [from, to], bounds inclusive.
func (r *SQLiteRepository) SumExpensesInRange(ctx context.Context, userID string, from, to core.Date) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		WHERE user_id = ? AND occurred_on >= ? AND occurred_on <= ?`,
		userID, from.ISO(), to.ISO()).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses in range: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// DailyTotal is one day of the rolling per-user spending cache.
type DailyTotal struct {
	Day    core.Date
	Amount core.Money
}

// UpsertDailyTotal adds cents to the user's total for the given day,
// creating the row on first spend.
func (r *SQLiteRepository) UpsertDailyTotal(ctx context.Context, userID string, day core.Date, cents int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_expenses (user_id, day, amount_cents) VALUES (?, ?, ?)
		ON CONFLICT (user_id, day) DO UPDATE SET amount_cents = amount_cents + excluded.amount_cents`,
		userID, day.ISO(), cents)
	if err != nil {
		return fmt.Errorf("upsert daily total: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListDailyTotals(ctx context.Context, userID string, since core.Date) ([]DailyTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day, amount_cents FROM daily_expenses
		WHERE user_id = ? AND day >= ? ORDER BY day`,
		userID, since.ISO())
	if err != nil {
		return nil, fmt.Errorf("list daily totals: %w", err)
	}
	defer rows.Close()

	var totals []DailyTotal
	for rows.Next() {
		var (
			day   string
			cents int64
		)
		if err := rows.Scan(&day, &cents); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		d, err := core.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		totals = append(totals, DailyTotal{Day: d, Amount: core.Money{Cents: cents}})
	}
	return totals, rows.Err()
}

// PruneDailyTotals deletes cached days strictly before the cutoff and
// returns the number of rows removed.
func (r *SQLiteRepository) PruneDailyTotals(ctx context.Context, before core.Date) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM daily_expenses WHERE day < ?`, before.ISO())
	if err != nil {
		return 0, fmt.Errorf("prune daily totals: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
