package insight

import (
	"time"

	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK POLICY
// One abstraction, two modes. See the package doc for why both exist.
// ══════════════════════════════════════════════════════════════════════════════

// StreakMode selects which streak definition a call site wants.
type StreakMode int

const (
	// LoggedEntriesOnly counts only days with an explicit log entry.
	// A multi-day gap between two zero-cigarette entries does not break
	// the streak.
	LoggedEntriesOnly StreakMode = iota

	// CalendarComplete materializes every calendar day from the first log
	// through yesterday. Unlogged days count as smoke-free; smoking today
	// resets the current streak to zero.
	CalendarComplete
)

// String returns the mode name.
func (m StreakMode) String() string {
	switch m {
	case LoggedEntriesOnly:
		return "logged_entries"
	case CalendarComplete:
		return "calendar_complete"
	default:
		return "unknown"
	}
}

// Streak holds a current and longest streak pair, in days.
// Both values are always >= 0.
type Streak struct {
	Current int
	Longest int
}

// StreakPolicy computes streaks under an explicit mode.
type StreakPolicy struct {
	Mode StreakMode
}

// Compute calculates the current and longest smoke-free streaks over a
// chronologically sorted entry series. The entries must already be
// normalized; today is the reference day for calendar-complete accounting.
func (p StreakPolicy) Compute(entries []tracking.SmokeLogEntry, today time.Time) Streak {
	switch p.Mode {
	case CalendarComplete:
		return calendarCompleteStreak(entries, today)
	default:
		return loggedEntriesStreak(entries)
	}
}

// loggedEntriesStreak operates only over days that have an explicit entry.
func loggedEntriesStreak(entries []tracking.SmokeLogEntry) Streak {
	var s Streak

	// Current: trailing zero-cigarette entries, scanning backward.
	for i := len(entries) - 1; i >= 0; i-- {
		if !entries[i].IsSmokeFree() {
			break
		}
		s.Current++
	}

	// Longest: longest run of consecutive zero entries in the sequence.
	run := 0
	for _, e := range entries {
		if e.IsSmokeFree() {
			run++
			if run > s.Longest {
				s.Longest = run
			}
		} else {
			run = 0
		}
	}

	return s
}

// calendarCompleteStreak walks every calendar day from the first log date
// through yesterday. Today is excluded from completed history but smoking
// today still zeroes the current streak.
func calendarCompleteStreak(entries []tracking.SmokeLogEntry, today time.Time) Streak {
	if len(entries) == 0 {
		return Streak{}
	}

	day := timeutil.StartOfDay(today)
	smoked := make(map[time.Time]bool, len(entries))
	for _, e := range entries {
		if !e.IsSmokeFree() {
			smoked[timeutil.StartOfDay(e.Date)] = true
		}
	}

	var s Streak
	run := 0
	// If the first log is today the interval is empty and both streaks
	// stay zero.
	for d := timeutil.StartOfDay(entries[0].Date); d.Before(day); d = d.AddDate(0, 0, 1) {
		if smoked[d] {
			run = 0
			continue
		}
		run++
		if run > s.Longest {
			s.Longest = run
		}
	}

	s.Current = run
	if smoked[day] {
		s.Current = 0
	}
	return s
}

// EntriesSince returns the suffix of a sorted entry series on or after the
// given day. Used to scope the goal-progress streak to the goal start date.
func EntriesSince(entries []tracking.SmokeLogEntry, since time.Time) []tracking.SmokeLogEntry {
	day := timeutil.StartOfDay(since)
	for i, e := range entries {
		if !e.Date.Before(day) {
			return entries[i:]
		}
	}
	return nil
}
