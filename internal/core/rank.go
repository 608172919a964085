package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Snapshot is one participant's spending picture at ranking time. It is
// computed per request and never persisted.
type Snapshot struct {
	UserID     string
	Username   string
	RegionCode string
	Raw        Money
	Adjusted   decimal.Decimal
	Index      decimal.Decimal
	StreakDays int
	Badges     []string
}

// RankOptions tunes ranking behaviour. Excluding zero-spend participants
// mirrors the historical leaderboard behaviour; it is an option rather than
// a hard rule because that exclusion was never clearly intentional.
type RankOptions struct {
	IncludeZeroSpend bool
}

// Rank orders snapshots ascending by adjusted spending (lower spend wins).
// The sort is stable: participants with equal adjusted totals keep their
// input order. Participants with no raw spending are dropped unless
// IncludeZeroSpend is set. The full ordering is returned; callers truncate
// for top-N views.
func Rank(snapshots []Snapshot, opts RankOptions) []Snapshot {
	ranked := make([]Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if !opts.IncludeZeroSpend && s.Raw.Cents <= 0 {
			continue
		}
		ranked = append(ranked, s)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Adjusted.LessThan(ranked[j].Adjusted)
	})
	return ranked
}
