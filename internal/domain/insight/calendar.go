package insight

import (
	"time"

	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CALENDAR DAY CLASSIFIER
// Assigns a status to every day of a requested year for the calendar view.
// Strict rule: tracking starts from the user's FIRST LOG DATE, never the
// account creation date. Today with nothing logged is "future" (pending),
// not smoke-free - the day has not been earned yet.
// ══════════════════════════════════════════════════════════════════════════════

// DayStatus is the classification of one calendar day.
type DayStatus string

const (
	// DayFuture - the day is after today, or is today with nothing smoked yet.
	DayFuture DayStatus = "future"
	// DaySmoked - at least one cigarette was logged for the day.
	DaySmoked DayStatus = "smoked"
	// DaySmokeFree - a completed tracked day with zero cigarettes.
	DaySmokeFree DayStatus = "smoke-free"
	// DayUntracked - the day precedes the user's first log.
	DayUntracked DayStatus = "untracked"
)

// CalendarDay is one classified day of the requested year.
type CalendarDay struct {
	Date       time.Time `json:"-"`
	DateStr    string    `json:"date"`
	Status     DayStatus `json:"status"`
	Cigarettes int       `json:"cigarettes"`
}

// YearStats aggregates the classified year.
type YearStats struct {
	// SmokeFreeDays - completed tracked days with zero cigarettes.
	SmokeFreeDays int `json:"smoke_free_days"`

	// DaysSmoked - days with at least one cigarette (today included when
	// it already has a count).
	DaysSmoked int `json:"days_smoked"`

	// LongestStreak - longest smoke-free run within this year's day list,
	// counted up to today.
	LongestStreak int `json:"longest_streak"`

	// MoneySpent - DaysSmoked times the configured unit cost.
	MoneySpent int `json:"money_spent"`

	// TotalCigarettes - cigarette sum over the year.
	TotalCigarettes int `json:"total_cigarettes"`

	// MonthlyCounts - cigarette sum per month, January first.
	MonthlyCounts [12]int `json:"monthly_counts"`

	// FirstLogMonth - 0-indexed month of the first-ever log if it falls in
	// this year, 0 if the first log was in an earlier year, -1 if the user
	// has never logged.
	FirstLogMonth int `json:"first_log_month"`

	// MinYear - year of the first-ever log (current year if none).
	MinYear int `json:"min_year"`
}

// Classifier builds the per-day calendar classification for a year.
type Classifier struct {
	// UnitCost - cost charged per smoked day for the money-spent estimate.
	// Supplied by configuration; the product treats a smoked day as one
	// pack regardless of count.
	UnitCost int
}

// NewClassifier creates a classifier with the given per-day unit cost.
func NewClassifier(unitCost int) *Classifier {
	return &Classifier{UnitCost: unitCost}
}

// ClassifyYear classifies every day of the year and aggregates stats.
// entries must be the user's normalized logs for that year; firstLogDate is
// the first-ever log across all years (nil when the user never logged).
func (c *Classifier) ClassifyYear(
	year int,
	entries []tracking.SmokeLogEntry,
	firstLogDate *time.Time,
	today time.Time,
) ([]CalendarDay, YearStats) {
	todayDay := timeutil.StartOfDay(today)

	counts := make(map[time.Time]int, len(entries))
	for _, e := range entries {
		counts[timeutil.StartOfDay(e.Date)] = int(e.Cigarettes)
	}

	var effectiveStart time.Time
	if firstLogDate != nil {
		effectiveStart = timeutil.StartOfDay(*firstLogDate)
	}

	stats := YearStats{FirstLogMonth: -1, MinYear: todayDay.Year()}

	first := timeutil.Date(year, 1, 1)
	last := timeutil.Date(year, 12, 31)
	days := make([]CalendarDay, 0, 366)

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		count := counts[d]

		var status DayStatus
		switch {
		case d.After(todayDay):
			status = DayFuture
		case d.Equal(todayDay) && count == 0:
			// Today with nothing logged stays pending.
			status = DayFuture
		case count > 0:
			status = DaySmoked
			stats.DaysSmoked++
			stats.TotalCigarettes += count
		case firstLogDate == nil || d.Before(effectiveStart):
			status = DayUntracked
		default:
			status = DaySmokeFree
			stats.SmokeFreeDays++
		}

		days = append(days, CalendarDay{
			Date:       d,
			DateStr:    timeutil.FormatDateStr(d),
			Status:     status,
			Cigarettes: count,
		})
	}

	stats.LongestStreak = longestRunInYear(days, todayDay)
	stats.MoneySpent = stats.DaysSmoked * c.UnitCost

	if firstLogDate != nil {
		stats.MinYear = effectiveStart.Year()
		switch {
		case effectiveStart.Year() == year:
			stats.FirstLogMonth = int(effectiveStart.Month()) - 1
		case effectiveStart.Year() < year:
			stats.FirstLogMonth = 0
		}

		for day, count := range counts {
			stats.MonthlyCounts[int(day.Month())-1] += count
		}
	}

	return days, stats
}

// longestRunInYear scans smoke-free runs in the classified list, stopping
// at today. Future and untracked days neither extend nor break a run.
func longestRunInYear(days []CalendarDay, today time.Time) int {
	longest := 0
	run := 0
	for _, day := range days {
		switch day.Status {
		case DaySmokeFree:
			run++
			if run > longest {
				longest = run
			}
		case DaySmoked:
			run = 0
		}
		if day.Date.Equal(today) {
			break
		}
	}
	return longest
}
