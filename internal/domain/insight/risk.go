package insight

import (
	"fmt"

	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RISK PATTERN DETECTOR
// Surfaces when and why a user is most at risk: the hour of day urges
// cluster around, the day of month smoking peaks on, and the most frequent
// trigger labels.
// ══════════════════════════════════════════════════════════════════════════════

// UnknownRiskTime is the sentinel reported when there is no urge data.
const UnknownRiskTime = "Unknown"

// DayPeriod buckets an hour of day.
type DayPeriod string

const (
	PeriodMorning   DayPeriod = "Morning"   // before 12
	PeriodAfternoon DayPeriod = "Afternoon" // 12 through 17
	PeriodEvening   DayPeriod = "Evening"   // 18 onward
)

// PeriodOfHour returns the day period an hour falls into.
func PeriodOfHour(hour int) DayPeriod {
	switch {
	case hour >= 18:
		return PeriodEvening
	case hour >= 12:
		return PeriodAfternoon
	default:
		return PeriodMorning
	}
}

// TriggerCount is one trigger label with its occurrence count.
type TriggerCount struct {
	Label string
	Count int
}

// Format renders the trigger as "label (Nx)".
func (tc TriggerCount) Format() string {
	return fmt.Sprintf("%s (%dx)", tc.Label, tc.Count)
}

// RiskPatterns is the detector's combined output.
type RiskPatterns struct {
	// PeakUrgeHour - hour of day (0-23) urges cluster around; -1 without data.
	PeakUrgeHour int

	// HighRiskTime - formatted label like "Evening (9PM)"; UnknownRiskTime
	// without data.
	HighRiskTime string

	// HighRiskDay - day of month (1-31) smoking peaks on; 0 without data.
	HighRiskDay int

	// TopTriggers - up to three most frequent triggers, most frequent first.
	TopTriggers []TriggerCount
}

// PatternDetector finds risk patterns in urge and smoking history.
type PatternDetector struct{}

// NewPatternDetector creates a pattern detector.
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{}
}

// Detect computes all risk patterns for one user's normalized series.
func (d *PatternDetector) Detect(entries []tracking.SmokeLogEntry, urges []tracking.UrgeEvent) RiskPatterns {
	p := RiskPatterns{
		PeakUrgeHour: PeakUrgeHour(urges),
		HighRiskDay:  PeakSmokingDayOfMonth(entries),
		TopTriggers:  TopTriggers(entries, 3),
	}
	p.HighRiskTime = FormatRiskTime(p.PeakUrgeHour)
	return p
}

// PeakUrgeHour returns the mode of the hour-of-day across urge events.
// Ties resolve to the earliest hour. Returns -1 when there are no events.
func PeakUrgeHour(urges []tracking.UrgeEvent) int {
	if len(urges) == 0 {
		return -1
	}

	var byHour [24]int
	for _, u := range urges {
		byHour[u.Timestamp.Hour()]++
	}

	peak := 0
	for h := 1; h < 24; h++ {
		if byHour[h] > byHour[peak] {
			peak = h
		}
	}
	return peak
}

// FormatRiskTime renders a peak hour as "<period> (<12-hour label>)".
func FormatRiskTime(hour int) string {
	if hour < 0 {
		return UnknownRiskTime
	}
	return fmt.Sprintf("%s (%s)", PeriodOfHour(hour), timeutil.ClockLabel(hour))
}

// PeakSmokingDayOfMonth returns the day of month (1-31) with the highest
// summed cigarette count over smoked days. Ties resolve to the earliest
// day. Returns 0 when the user never smoked.
func PeakSmokingDayOfMonth(entries []tracking.SmokeLogEntry) int {
	var byDay [32]int
	smoked := false
	for _, e := range entries {
		if e.IsSmokeFree() {
			continue
		}
		smoked = true
		byDay[e.Date.Day()] += int(e.Cigarettes)
	}
	if !smoked {
		return 0
	}

	peak := 1
	for day := 2; day <= 31; day++ {
		if byDay[day] > byDay[peak] {
			peak = day
		}
	}
	return peak
}

// TopTriggers flattens per-entry trigger lists, counts frequency, and
// returns the top n, most frequent first. Ties keep first-encountered
// order.
func TopTriggers(entries []tracking.SmokeLogEntry, n int) []TriggerCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, e := range entries {
		for _, trigger := range e.Triggers {
			if _, seen := counts[trigger]; !seen {
				order = append(order, trigger)
			}
			counts[trigger]++
		}
	}
	if len(order) == 0 {
		return nil
	}

	// Stable selection sort keeps encounter order among equal counts.
	result := make([]TriggerCount, len(order))
	for i, label := range order {
		result[i] = TriggerCount{Label: label, Count: counts[label]}
	}
	for i := 1; i < len(result); i++ {
		for j := i; j > 0 && result[j].Count > result[j-1].Count; j-- {
			result[j], result[j-1] = result[j-1], result[j]
		}
	}

	if len(result) > n {
		result = result[:n]
	}
	return result
}
