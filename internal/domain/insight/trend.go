package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TREND ANALYZER
// Week-over-week and month-over-month consumption comparison. Weeks run
// Sunday through Saturday; the current week is week-to-date. Means are taken
// over logged entries, not calendar days - an unlogged day contributes
// nothing to either side.
// ══════════════════════════════════════════════════════════════════════════════

// Trend classifies the weekly direction of consumption.
type Trend string

const (
	// TrendImproving - this week's mean is below last week's.
	TrendImproving Trend = "improving"
	// TrendIncreasing - this week's mean is above last week's.
	TrendIncreasing Trend = "increasing"
	// TrendSteady - no prior signal or no change.
	TrendSteady Trend = "steady"
)

// WeeklyComparison compares the current week-to-date against the preceding
// full week.
type WeeklyComparison struct {
	// ThisWeekAvg - mean cigarettes per logged entry this week, one decimal.
	ThisWeekAvg float64

	// LastWeekAvg - mean cigarettes per logged entry last week, one decimal.
	LastWeekAvg float64

	// Trend - direction classification.
	Trend Trend

	// ReductionPercent - whole-percent reduction, only when improving.
	ReductionPercent int
}

// MonthlyComparison compares the two most recent logged months.
type MonthlyComparison struct {
	// ReductionRate - percent reduction vs the previous month, one decimal,
	// floored at zero. 100 when two smoke-free months follow each other.
	ReductionRate float64

	// Status - supportive status line for the dashboard.
	Status string
}

// WeeklySeries is the current month bucketed into Sunday-anchored calendar
// weeks for the dashboard chart.
type WeeklySeries struct {
	// Data - cigarette sum per week bucket.
	Data []int

	// Labels - matching "Week N" labels.
	Labels []string
}

// Analyzer computes consumption trends over a normalized entry series.
type Analyzer struct{}

// NewAnalyzer creates a trend analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Weekly compares the current week-to-date against the preceding full week.
func (a *Analyzer) Weekly(entries []tracking.SmokeLogEntry, now time.Time) WeeklyComparison {
	thisWeekStart := timeutil.StartOfWeek(now)
	lastWeekStart := thisWeekStart.AddDate(0, 0, -7)

	var thisSum, lastSum float64
	var thisN, lastN int
	for _, e := range entries {
		switch {
		case !e.Date.Before(thisWeekStart):
			thisSum += float64(e.Cigarettes)
			thisN++
		case !e.Date.Before(lastWeekStart):
			lastSum += float64(e.Cigarettes)
			lastN++
		}
	}

	thisMean := mean(thisSum, thisN)
	lastMean := mean(lastSum, lastN)

	cmp := WeeklyComparison{
		ThisWeekAvg: round1(thisMean),
		LastWeekAvg: round1(lastMean),
		Trend:       TrendSteady,
	}

	switch {
	case lastMean > 0 && thisMean < lastMean:
		cmp.Trend = TrendImproving
		cmp.ReductionPercent = int(math.Round((lastMean - thisMean) / lastMean * 100))
	case lastMean > 0 && thisMean > lastMean:
		cmp.Trend = TrendIncreasing
	}

	return cmp
}

// Monthly compares mean consumption of the two most recent logged months.
func (a *Analyzer) Monthly(entries []tracking.SmokeLogEntry) MonthlyComparison {
	cmp := MonthlyComparison{
		Status: "Keep logging - your monthly comparison will appear here soon!",
	}

	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, e := range entries {
		month := timeutil.StartOfMonth(e.Date)
		sums[month] += float64(e.Cigarettes)
		counts[month]++
	}
	if len(sums) < 2 {
		return cmp
	}

	months := make([]time.Time, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	prevMonth := months[len(months)-2]
	currMonth := months[len(months)-1]
	prev := mean(sums[prevMonth], counts[prevMonth])
	curr := mean(sums[currMonth], counts[currMonth])

	switch {
	case prev > 0:
		cmp.ReductionRate = math.Max(0, round1((prev-curr)/prev*100))
		if cmp.ReductionRate > 0 {
			cmp.Status = fmt.Sprintf("You're %.1f%% lower than last month!", cmp.ReductionRate)
		} else {
			cmp.Status = "Staying steady."
		}
	case curr == 0:
		// Two smoke-free months in a row.
		cmp.ReductionRate = 100
		cmp.Status = "Perfect reduction!"
	}

	return cmp
}

// CurrentMonthWeekly buckets the current month's entries into Sunday-anchored
// calendar weeks and sums cigarette counts per bucket. Bucketing is explicit
// day arithmetic, independent of any week-numbering convention.
func (a *Analyzer) CurrentMonthWeekly(entries []tracking.SmokeLogEntry, now time.Time) WeeklySeries {
	monthStart := timeutil.StartOfMonth(now)
	numWeeks := timeutil.WeeksInMonth(now)

	series := WeeklySeries{
		Data:   make([]int, numWeeks),
		Labels: make([]string, numWeeks),
	}
	for i := range series.Labels {
		series.Labels[i] = fmt.Sprintf("Week %d", i+1)
	}

	for _, e := range entries {
		if e.Date.Before(monthStart) {
			continue
		}
		idx := timeutil.WeekIndexInMonth(monthStart, e.Date)
		if idx >= 0 && idx < numWeeks {
			series.Data[idx] += int(e.Cigarettes)
		}
	}

	return series
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
