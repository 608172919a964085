package core

// SumInRange sums the amounts of every expense whose date falls within
// [from, to] inclusive. Records are treated as an unordered set; the result
// does not depend on input order. An empty input or empty match yields zero.
func SumInRange(records []Expense, from, to Date) Money {
	var total int64
	for _, r := range records {
		if r.OccurredAt.Before(from.Time) || r.OccurredAt.After(to.Time) {
			continue
		}
		total += r.Amount.Cents
	}
	return Money{Cents: total}
}
