package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// BadgeWeekStreak and friends are awarded when a streak first reaches
	// the matching threshold. BadgeFrugalChampion goes to challenge winners.
	BadgeWeekStreak     = "Week Streak"
	BadgeMonthStreak    = "Month Streak"
	BadgeHundredStreak  = "100 Day Streak"
	BadgeFrugalChampion = "Frugal Champion"
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID         int64
		OwnerID    string
		Amount     Money
		Category   string
		Note       string
		OccurredAt Date
	}

	// StreakState is the per-user consecutive-activity counter together
	// with the badges it has earned. Badges are append-only.
	StreakState struct {
		Days       int
		LastActive Date
		Badges     []string
	}

	Challenge struct {
		ID           string
		Name         string
		Description  string
		Target       Money
		DurationDays int
		StartDate    Date
		EndDate      Date
		Category     string
		CreatedBy    string
		Completed    bool
		WinnerID     string
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrChallengeNotEnded  = errors.New("challenge is not yet complete")
	ErrChallengeCompleted = errors.New("challenge already completed")
)

// NewDate creates a Date pinned to UTC midnight. All streak and range
// comparisons work on calendar days, never on timestamps.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its UTC calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

const dayLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD day string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Time.Format(dayLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysUntil returns the number of calendar days from d to other.
// Negative when other is before d.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Note) > 200 {
		return errors.New("note too long (max 200 characters)")
	}
	if err := e.OccurredAt.Validate(); err != nil {
		return err
	}
	return nil
}

func (c Challenge) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Description) == "" {
		return errors.New("empty description")
	}
	if err := c.Target.Validate(); err != nil {
		return err
	}
	if c.DurationDays < 1 {
		return ErrInvalidDuration
	}
	if err := c.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	return nil
}

// HasBadge reports whether the streak state already carries the badge.
func (s StreakState) HasBadge(badge string) bool {
	for _, b := range s.Badges {
		if b == badge {
			return true
		}
	}
	return false
}
