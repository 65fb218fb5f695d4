// Package timeutil provides calendar-day utilities for Respira.
// All tracking data is keyed by UTC calendar days, and the analytics
// pipeline compares weeks anchored on Sunday (the convention the mobile
// calendar uses). Handles day arithmetic, week/month boundaries, and
// date formatting. No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatHumanDate is a human-readable format (Jan 2, 2006).
	FormatHumanDate = "Jan 2, 2006"
	// FormatWeekday is the weekday name format (Monday).
	FormatWeekday = "Monday"
)

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// Today returns the current calendar day (00:00:00 UTC).
func Today() time.Time {
	return StartOfDay(Now())
}

// Date creates a calendar day (00:00:00 UTC).
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay truncates a time to the start of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the start of the calendar week containing t.
// Weeks run Sunday through Saturday.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// StartOfMonth returns the first day of the month containing t.
func StartOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of the month containing t.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// IsSameDay checks if two times fall on the same UTC calendar day.
func IsSameDay(t1, t2 time.Time) bool {
	u1, u2 := t1.UTC(), t2.UTC()
	return u1.Year() == u2.Year() && u1.YearDay() == u2.YearDay()
}

// DaysBetween returns the number of whole days from t1 to t2.
// Negative when t2 is before t1.
func DaysBetween(t1, t2 time.Time) int {
	d1 := StartOfDay(t1)
	d2 := StartOfDay(t2)
	return int(d2.Sub(d1).Hours() / 24)
}

// WeekIndexInMonth returns the zero-based index of the calendar week
// (Sunday-anchored) that day falls into, relative to the month containing
// monthStart. This is a deterministic replacement for locale week numbering:
// week 0 is the week containing the first day of the month.
func WeekIndexInMonth(monthStart, day time.Time) int {
	firstWeek := StartOfWeek(StartOfMonth(monthStart))
	return DaysBetween(firstWeek, StartOfDay(day)) / 7
}

// WeeksInMonth returns the number of Sunday-anchored calendar weeks that the
// month containing t spans.
func WeeksInMonth(t time.Time) int {
	return WeekIndexInMonth(t, EndOfMonth(t)) + 1
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in UTC.
func FormatDateStr(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// FormatHuman formats a time as a human-readable date (Jan 2, 2006).
func FormatHuman(t time.Time) string {
	return t.UTC().Format(FormatHumanDate)
}

// WeekdayName returns the English weekday name for a time.
func WeekdayName(t time.Time) string {
	return t.UTC().Format(FormatWeekday)
}

// ParseDate parses a date string (YYYY-MM-DD) as a UTC calendar day.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, time.UTC)
}

// ParseTimestamp parses an RFC 3339 timestamp, falling back to a plain date.
// Urge and game events are recorded with full timestamps, but older clients
// sent bare dates.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t.UTC(), nil
	}
	return ParseDate(value)
}

// ClockLabel formats an hour of day (0-23) as a 12-hour clock label
// ("7AM", "12PM", "9PM").
func ClockLabel(hour int) string {
	switch {
	case hour == 0:
		return "12AM"
	case hour < 12:
		return fmt.Sprintf("%dAM", hour)
	case hour == 12:
		return "12PM"
	default:
		return fmt.Sprintf("%dPM", hour-12)
	}
}
