// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for periodic maintenance
// dueness checking. Each cadence has its own strategy encapsulating the
// logic for deciding whether a maintenance run is due.

package services

import (
	"fmt"
	"time"
)

// MaintenanceKind names a periodic maintenance job.
type MaintenanceKind string

const (
	MonthlyReset MaintenanceKind = "monthly_reset"
	DailyPrune   MaintenanceKind = "daily_prune"
)

// DuenessChecker is the strategy interface for deciding whether a
// maintenance job should run now given when it last ran.
type DuenessChecker interface {
	// IsDue returns true if the job should be processed based on the last
	// run time and the current time.
	IsDue(lastRun, now time.Time) bool
}

// MonthStartChecker implements DuenessChecker for jobs that fire once at
// the turn of each calendar month.
type MonthStartChecker struct{}

// IsDue returns true when now is in a month the job has not run in yet.
// The periodic check interval guarantees the run lands on or shortly
// after the first of the month.
func (MonthStartChecker) IsDue(lastRun, now time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	return lastRun.Year() != now.Year() || lastRun.Month() != now.Month()
}

// DailyChecker implements DuenessChecker for jobs that fire once per
// calendar day.
type DailyChecker struct{}

// IsDue returns true if the last run was before today.
func (DailyChecker) IsDue(lastRun, now time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	return lastRun.Format("2006-01-02") != now.Format("2006-01-02")
}

// duenessStrategies maps maintenance kinds to their corresponding checkers.
var duenessStrategies = map[MaintenanceKind]DuenessChecker{
	MonthlyReset: MonthStartChecker{},
	DailyPrune:   DailyChecker{},
}

// GetDuenessChecker returns the appropriate dueness checker for a
// maintenance kind. Returns an error if the kind is not supported.
func GetDuenessChecker(kind MaintenanceKind) (DuenessChecker, error) {
	checker, ok := duenessStrategies[kind]
	if !ok {
		return nil, fmt.Errorf("unknown maintenance kind: %s", kind)
	}
	return checker, nil
}

// RegisterDuenessChecker allows registering custom dueness checkers for
// new maintenance kinds.
func RegisterDuenessChecker(kind MaintenanceKind, checker DuenessChecker) {
	duenessStrategies[kind] = checker
}
