// Package regions loads and serves the cost-of-living index table.
//
// The table is built once at startup from a CSV resource and is immutable
// afterwards, so it can be shared across requests without synchronization.
// It is passed explicitly to the code that needs it rather than living in
// package-level state.
package regions

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// NeutralIndex is the national-average index used for unknown regions.
var NeutralIndex = decimal.NewFromInt(100)

// Table maps region codes to cost-of-living indexes (base 100 = national
// average). Read-only after construction.
type Table struct {
	indexes map[string]decimal.Decimal
}

// NewTable builds a table from explicit code→index pairs. Entries with a
// non-positive index are dropped.
func NewTable(indexes map[string]decimal.Decimal) *Table {
	t := &Table{indexes: make(map[string]decimal.Decimal, len(indexes))}
	for code, idx := range indexes {
		if idx.Sign() > 0 {
			t.indexes[strings.ToUpper(code)] = idx
		}
	}
	return t
}

// LoadCSV reads a cost-of-living table from a CSV stream. The header row
// names the columns; "State" and "Index" are required. State names are
// converted to postal codes, rows with unknown states or unparseable
// indexes are skipped.
func LoadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	stateCol, indexCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "State":
			stateCol = i
		case "Index":
			indexCol = i
		}
	}
	if stateCol < 0 || indexCol < 0 {
		return nil, fmt.Errorf("csv header missing State/Index columns: %v", header)
	}

	indexes := make(map[string]decimal.Decimal)
	skipped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if stateCol >= len(row) || indexCol >= len(row) {
			skipped++
			continue
		}
		code := CodeForState(strings.TrimSpace(row[stateCol]))
		if code == "" {
			skipped++
			continue
		}
		idx, err := decimal.NewFromString(strings.TrimSpace(row[indexCol]))
		if err != nil || idx.Sign() <= 0 {
			skipped++
			continue
		}
		indexes[code] = idx
	}

	if skipped > 0 {
		slog.Warn("Skipped unusable cost-of-living rows", "skipped", skipped, "loaded", len(indexes))
	}
	return NewTable(indexes), nil
}

// LoadFile loads the table from a CSV file on disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cost-of-living file: %w", err)
	}
	defer f.Close()

	t, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load cost-of-living table from %s: %w", path, err)
	}
	slog.Info("Cost of living table loaded", "path", path, "regions", t.Len())
	return t, nil
}

// Lookup returns the index for a region code. The second return is false
// when the region is unknown; callers treat that as the neutral index 100.
func (t *Table) Lookup(code string) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Decimal{}, false
	}
	idx, ok := t.indexes[strings.ToUpper(code)]
	return idx, ok
}

// Index returns the index for a region code, falling back to the neutral
// index 100 for unknown regions.
func (t *Table) Index(code string) decimal.Decimal {
	if idx, ok := t.Lookup(code); ok {
		return idx
	}
	return NeutralIndex
}

// Len returns the number of loaded regions.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.indexes)
}
