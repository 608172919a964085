package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Md905908324/NoSpendy/internal/core"
)

const challengeColumns = `id, name, description, target_cents, duration_days,
	start_date, end_date, category, created_by, completed, winner_id`

func scanChallenge(row interface{ Scan(...any) error }) (core.Challenge, error) {
	var (
		c          core.Challenge
		start, end string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Target.Cents, &c.DurationDays,
		&start, &end, &c.Category, &c.CreatedBy, &c.Completed, &c.WinnerID)
	if err != nil {
		return core.Challenge{}, err
	}
	if c.StartDate, err = core.ParseDate(start); err != nil {
		return core.Challenge{}, fmt.Errorf("parse start_date %q: %w", start, err)
	}
	if c.EndDate, err = core.ParseDate(end); err != nil {
		return core.Challenge{}, fmt.Errorf("parse end_date %q: %w", end, err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateChallenge(ctx context.Context, c core.Challenge) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO challenges (id, name, description, target_cents, duration_days,
			start_date, end_date, category, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.Target.Cents, c.DurationDays,
		c.StartDate.ISO(), c.EndDate.ISO(), c.Category, c.CreatedBy)
	if isUniqueViolation(err) {
		return fmt.Errorf("create challenge %s: %w", c.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create challenge: %w", err)
	}

	slog.InfoContext(ctx, "Challenge saved to SQLite",
		"id", c.ID,
		"name", c.Name,
		"end_date", c.EndDate.ISO())
	return nil
}

func (r *SQLiteRepository) GetChallenge(ctx context.Context, id string) (core.Challenge, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id)
	c, err := scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Challenge{}, fmt.Errorf("get challenge %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) listChallenges(ctx context.Context, query string, args ...any) ([]core.Challenge, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []core.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

func (r *SQLiteRepository) ListChallenges(ctx context.Context) ([]core.Challenge, error) {
	challenges, err := r.listChallenges(ctx,
		`SELECT `+challengeColumns+` FROM challenges ORDER BY start_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return challenges, nil
}

func (r *SQLiteRepository) ListChallengesByUser(ctx context.Context, userID string) ([]core.Challenge, error) {
	challenges, err := r.listChallenges(ctx, `
		SELECT `+challengeColumns+` FROM challenges
		WHERE id IN (SELECT challenge_id FROM challenge_participants WHERE user_id = ?)
		ORDER BY start_date DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list challenges by user: %w", err)
	}
	return challenges, nil
}

// ListEndedUncompleted returns challenges whose window has closed but
// that have not been settled yet.
func (r *SQLiteRepository) ListEndedUncompleted(ctx context.Context, asOf core.Date) ([]core.Challenge, error) {
	challenges, err := r.listChallenges(ctx, `
		SELECT `+challengeColumns+` FROM challenges
		WHERE completed = 0 AND end_date <= ? ORDER BY end_date, id`, asOf.ISO())
	if err != nil {
		return nil, fmt.Errorf("list ended challenges: %w", err)
	}
	return challenges, nil
}

func (r *SQLiteRepository) JoinChallenge(ctx context.Context, challengeID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO challenge_participants (challenge_id, user_id) VALUES (?, ?)`,
		challengeID, userID)
	if isUniqueViolation(err) {
		return fmt.Errorf("join challenge %s: %w", challengeID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("join challenge: %w", err)
	}
	return nil
}

// ListParticipants returns participant user IDs in join order.
func (r *SQLiteRepository) ListParticipants(ctx context.Context, challengeID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM challenge_participants WHERE challenge_id = ? ORDER BY rowid`, challengeID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkChallengeCompleted settles a challenge. The completed flag only
// moves forward; a second settle attempt affects no rows.
func (r *SQLiteRepository) MarkChallengeCompleted(ctx context.Context, id, winnerID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE challenges SET completed = 1, winner_id = ? WHERE id = ? AND completed = 0`,
		winnerID, id)
	if err != nil {
		return fmt.Errorf("mark challenge completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("challenge %s: %w", id, core.ErrChallengeCompleted)
	}
	return nil
}
