package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Md905908324/NoSpendy/internal/core"
)

// User is the persisted account row. Money fields are stored as cents,
// calendar days as YYYY-MM-DD strings.
type User struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	RegionCode      string
	MonthlySpending core.Money
	MonthlyBudget   core.Money
	MonthlyIncome   core.Money
	SavingsGoal     core.Money
	StreakDays      int
	LastActive      core.Date
	ChallengesWon   int
	Version         int64
	JoinedAt        time.Time
}

const userColumns = `id, username, email, password_hash, region_code,
	monthly_spending_cents, monthly_budget_cents, monthly_income_cents, savings_goal_cents,
	streak_days, last_active, challenges_won, version, joined_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var (
		u          User
		lastActive string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RegionCode,
		&u.MonthlySpending.Cents, &u.MonthlyBudget.Cents, &u.MonthlyIncome.Cents, &u.SavingsGoal.Cents,
		&u.StreakDays, &lastActive, &u.ChallengesWon, &u.Version, &u.JoinedAt)
	if err != nil {
		return User{}, err
	}
	if lastActive != "" {
		d, err := core.ParseDate(lastActive)
		if err != nil {
			return User{}, fmt.Errorf("parse last_active %q: %w", lastActive, err)
		}
		u.LastActive = d
	}
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, region_code,
			monthly_budget_cents, monthly_income_cents, savings_goal_cents, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.RegionCode,
		u.MonthlyBudget.Cents, u.MonthlyIncome.Cents, u.SavingsGoal.Cents, u.JoinedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("create user %s: %w", u.Username, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User saved to SQLite", "id", u.ID, "username", u.Username)
	return nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("get user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("get user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("get user by email: %w", ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// ProfileUpdate carries the mutable profile fields. Nil pointers leave
// the stored value untouched.
type ProfileUpdate struct {
	RegionCode    *string
	MonthlyBudget *core.Money
	MonthlyIncome *core.Money
	SavingsGoal   *core.Money
}

func (r *SQLiteRepository) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			region_code = COALESCE(?, region_code),
			monthly_budget_cents = COALESCE(?, monthly_budget_cents),
			monthly_income_cents = COALESCE(?, monthly_income_cents),
			savings_goal_cents = COALESCE(?, savings_goal_cents)
		WHERE id = ?`,
		upd.RegionCode, moneyCents(upd.MonthlyBudget), moneyCents(upd.MonthlyIncome), moneyCents(upd.SavingsGoal), id)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(res, id)
}

func moneyCents(m *core.Money) *int64 {
	if m == nil {
		return nil
	}
	return &m.Cents
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

// AddMonthlySpending adds cents to the user's running monthly total.
func (r *SQLiteRepository) AddMonthlySpending(ctx context.Context, id string, cents int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET monthly_spending_cents = monthly_spending_cents + ? WHERE id = ?`, cents, id)
	if err != nil {
		return fmt.Errorf("add monthly spending: %w", err)
	}
	return requireRow(res, id)
}

// UpdateStreakCAS writes the streak counter only when the stored version
// still matches expectedVersion. Returns false on a version conflict so
// the caller can re-read and retry.
func (r *SQLiteRepository) UpdateStreakCAS(ctx context.Context, id string, days int, lastActive core.Date, expectedVersion int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET streak_days = ?, last_active = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		days, lastActive.ISO(), id, expectedVersion)
	if err != nil {
		return false, fmt.Errorf("update streak: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// AddBadge records a badge award. Awarding the same badge twice is a no-op.
func (r *SQLiteRepository) AddBadge(ctx context.Context, userID, badge string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO badges (user_id, badge) VALUES (?, ?)`, userID, badge)
	if err != nil {
		return fmt.Errorf("add badge: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBadges(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT badge FROM badges WHERE user_id = ? ORDER BY awarded_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var badges []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func (r *SQLiteRepository) IncrementChallengesWon(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET challenges_won = challenges_won + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment challenges won: %w", err)
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLiteRepository) ListUsersByRegion(ctx context.Context, regionCode string) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE region_code = ? ORDER BY username`, regionCode)
	if err != nil {
		return nil, fmt.Errorf("list users by region: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ResetMonthlySpending zeroes every user's running monthly total and
// returns the number of affected rows.
func (r *SQLiteRepository) ResetMonthlySpending(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET monthly_spending_cents = 0 WHERE monthly_spending_cents <> 0`)
	if err != nil {
		return 0, fmt.Errorf("reset monthly spending: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
