package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CompleteChallenge resolves a challenge once its end date has passed.
// The winner is the participant with the lowest adjusted spending; an empty
// spending map leaves the challenge completed with no winner. Completing
// before the end date or completing twice fails with a named error and
// mutates nothing. The open→completed transition is terminal.
//
// Ties break toward the lexicographically smallest participant ID so the
// outcome is deterministic.
func CompleteChallenge(ch Challenge, spendings map[string]decimal.Decimal, now Date) (Challenge, error) {
	if ch.Completed {
		return ch, ErrChallengeCompleted
	}
	if now.Before(ch.EndDate.Time) {
		return ch, ErrChallengeNotEnded
	}

	ids := make([]string, 0, len(spendings))
	for id := range spendings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var winnerID string
	var lowest decimal.Decimal
	for _, id := range ids {
		if winnerID == "" || spendings[id].LessThan(lowest) {
			winnerID = id
			lowest = spendings[id]
		}
	}

	ch.Completed = true
	ch.WinnerID = winnerID
	return ch, nil
}
