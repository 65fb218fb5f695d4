package scheduler

import (
	"fmt"
	"time"
)

// minInterval floors schedules so a misconfigured duration cannot spin the
// refresh job in a tight loop against the database.
const minInterval = time.Second

// IntervalSchedule runs a job at a fixed interval, measured from the end of
// the previous scheduling decision rather than from a wall-clock anchor.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates an interval schedule, flooring the interval
// at one second.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval < minInterval {
		interval = minInterval
	}
	return &IntervalSchedule{Interval: interval}
}

// Next returns the next scheduled time.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}
