// Package http provides the JSON API server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data. It reduces duplication by providing reusable functions for JSON
// body decoding, query parameter extraction and input sanitization.

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Md905908324/NoSpendy/internal/core"
)

// maxBodyBytes caps request bodies. The largest legitimate payload is a
// challenge description, well under this.
const maxBodyBytes = 1 << 20

// decodeJSON reads and decodes a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// Amount accepts a money value sent as either a JSON number (12.34) or a
// string ("12.34", "12,34"). Negative values are rejected; zero is allowed
// so that optional budget fields can be omitted or cleared. Whether zero is
// acceptable for a given field is decided by domain validation.
type Amount struct {
	core.Money
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" || zeroAmount(s) {
		a.Money = core.Money{}
		return nil
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return err
	}
	a.Money = core.Money{Cents: cents}
	return nil
}

// zeroAmount reports whether s spells out an explicit zero ("0", "0.00",
// "0,0"), which Amount accepts even though the cent parser rejects it.
func zeroAmount(s string) bool {
	parts := strings.Split(strings.ReplaceAll(s, ",", "."), ".")
	if len(parts) > 2 {
		return false
	}
	seen := false
	for _, part := range parts {
		for _, r := range part {
			if r != '0' {
				return false
			}
			seen = true
		}
	}
	return seen
}

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using the
// current date as defaults.
func ParseMonthParams(query url.Values) MonthParams {
	now := time.Now()
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			params.Month = m
		}
	}

	return params
}

// parseDaysParam extracts a positive day count from the query string,
// falling back to the given default.
func parseDaysParam(query url.Values, fallback int) int {
	v := strings.TrimSpace(query.Get("days"))
	if v == "" {
		return fallback
	}
	d, err := strconv.Atoi(v)
	if err != nil || d < 1 {
		return fallback
	}
	return d
}

// parseDateParam extracts an optional YYYY-MM-DD date from the query
// string, falling back to today.
func parseDateParam(query url.Values, key string) (core.Date, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return core.DateOf(time.Now()), nil
	}
	return core.ParseDate(v)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
