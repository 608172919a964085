package core

import "github.com/shopspring/decimal"

// referenceIndex is the national-average cost-of-living index. Adjusted
// spending is only meaningful relative to this base.
var referenceIndex = decimal.NewFromInt(100)

// IndexLookup resolves a region code to its cost-of-living index.
// The second return is false when the region is unknown.
type IndexLookup interface {
	Lookup(code string) (decimal.Decimal, bool)
}

// Normalize converts raw spending into spending at the reference index:
// raw * 100 / index(code). When the code is empty, unknown, or carries a
// non-positive index, the raw amount is returned unchanged (implicit 100).
func Normalize(raw Money, code string, indexes IndexLookup) decimal.Decimal {
	if code == "" || indexes == nil {
		return raw.Decimal()
	}
	idx, ok := indexes.Lookup(code)
	if !ok || idx.Sign() <= 0 {
		return raw.Decimal()
	}
	return raw.Decimal().Mul(referenceIndex).Div(idx)
}
