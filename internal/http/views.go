package http

import (
	"time"

	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

// moneyString formats a money value as a fixed two-decimal dollar string.
func moneyString(m core.Money) string {
	return m.Decimal().StringFixed(2)
}

type userView struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	RegionCode      string    `json:"region_code"`
	MonthlySpending string    `json:"monthly_spending"`
	MonthlyBudget   string    `json:"monthly_budget"`
	MonthlyIncome   string    `json:"monthly_income"`
	SavingsGoal     string    `json:"savings_goal"`
	StreakDays      int       `json:"streak_days"`
	ChallengesWon   int       `json:"challenges_won"`
	JoinedAt        time.Time `json:"joined_at"`
	Badges          []string  `json:"badges,omitempty"`
}

func newUserView(u storage.User, badges []string) userView {
	return userView{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		RegionCode:      u.RegionCode,
		MonthlySpending: moneyString(u.MonthlySpending),
		MonthlyBudget:   moneyString(u.MonthlyBudget),
		MonthlyIncome:   moneyString(u.MonthlyIncome),
		SavingsGoal:     moneyString(u.SavingsGoal),
		StreakDays:      u.StreakDays,
		ChallengesWon:   u.ChallengesWon,
		JoinedAt:        u.JoinedAt,
		Badges:          badges,
	}
}

type expenseView struct {
	ID       int64  `json:"id"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Note     string `json:"note,omitempty"`
	Date     string `json:"date"`
}

func newExpenseView(e core.Expense) expenseView {
	return expenseView{
		ID:       e.ID,
		Amount:   moneyString(e.Amount),
		Category: e.Category,
		Note:     e.Note,
		Date:     e.OccurredAt.ISO(),
	}
}

func newExpenseViews(expenses []core.Expense) []expenseView {
	views := make([]expenseView, 0, len(expenses))
	for _, e := range expenses {
		views = append(views, newExpenseView(e))
	}
	return views
}

type challengeView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Target       string `json:"target"`
	DurationDays int    `json:"duration_days"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Category     string `json:"category,omitempty"`
	CreatedBy    string `json:"created_by"`
	Completed    bool   `json:"completed"`
	WinnerID     string `json:"winner_id,omitempty"`
}

func newChallengeView(c core.Challenge) challengeView {
	return challengeView{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Target:       moneyString(c.Target),
		DurationDays: c.DurationDays,
		StartDate:    c.StartDate.ISO(),
		EndDate:      c.EndDate.ISO(),
		Category:     c.Category,
		CreatedBy:    c.CreatedBy,
		Completed:    c.Completed,
		WinnerID:     c.WinnerID,
	}
}

func newChallengeViews(challenges []core.Challenge) []challengeView {
	views := make([]challengeView, 0, len(challenges))
	for _, c := range challenges {
		views = append(views, newChallengeView(c))
	}
	return views
}

type leaderboardEntryView struct {
	Rank        int      `json:"rank"`
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	RegionCode  string   `json:"region_code"`
	RawSpending string   `json:"raw_spending"`
	Adjusted    string   `json:"adjusted_spending"`
	CostIndex   string   `json:"cost_index"`
	StreakDays  int      `json:"streak_days,omitempty"`
	Badges      []string `json:"badges,omitempty"`
}

func newLeaderboardView(snapshots []core.Snapshot) []leaderboardEntryView {
	views := make([]leaderboardEntryView, 0, len(snapshots))
	for i, s := range snapshots {
		views = append(views, leaderboardEntryView{
			Rank:        i + 1,
			UserID:      s.UserID,
			Username:    s.Username,
			RegionCode:  s.RegionCode,
			RawSpending: moneyString(s.Raw),
			Adjusted:    s.Adjusted.StringFixed(2),
			CostIndex:   s.Index.String(),
			StreakDays:  s.StreakDays,
			Badges:      s.Badges,
		})
	}
	return views
}

type dailyTotalView struct {
	Day   string `json:"day"`
	Total string `json:"total"`
}

func newDailyTotalViews(totals []storage.DailyTotal) []dailyTotalView {
	views := make([]dailyTotalView, 0, len(totals))
	for _, t := range totals {
		views = append(views, dailyTotalView{
			Day:   t.Day.ISO(),
			Total: moneyString(t.Amount),
		})
	}
	return views
}
