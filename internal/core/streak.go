package core

// streakThresholds are evaluated in ascending order; a badge is awarded the
// first time the counter lands exactly on a threshold.
var streakThresholds = []struct {
	days  int
	badge string
}{
	{7, BadgeWeekStreak},
	{30, BadgeMonthStreak},
	{100, BadgeHundredStreak},
}

// AdvanceStreak applies one activity event to a streak state. Comparing
// calendar dates: same day leaves the counter untouched, exactly the next
// day increments it, and any larger gap (or a last-active date in the
// future) resets it to 1. Badge thresholds are then checked; re-awarding an
// existing badge is a no-op. LastActive always moves to today.
//
// The returned slice lists badges awarded by this call, in threshold order.
func AdvanceStreak(state StreakState, today Date) (StreakState, []string) {
	switch gap := state.LastActive.DaysUntil(today); {
	case state.LastActive.IsZero():
		state.Days = 1
	case gap == 0:
		// Repeat activity on the same day.
	case gap == 1:
		state.Days++
	default:
		state.Days = 1
	}

	var awarded []string
	for _, t := range streakThresholds {
		if state.Days == t.days && !state.HasBadge(t.badge) {
			state.Badges = append(state.Badges, t.badge)
			awarded = append(awarded, t.badge)
		}
	}

	state.LastActive = today
	return state, awarded
}
