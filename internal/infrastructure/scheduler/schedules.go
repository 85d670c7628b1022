package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule schedules a job to run at a fixed interval.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a new IntervalSchedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
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

// WeeklySchedule schedules a job to run once a week, on a fixed weekday
// and hour in the schedule's timezone. Used by the weekly digest.
type WeeklySchedule struct {
	Weekday  time.Weekday
	Hour     int
	Location *time.Location
}

// NewWeeklySchedule creates a new WeeklySchedule. A nil location defaults to UTC.
func NewWeeklySchedule(weekday time.Weekday, hour int, loc *time.Location) *WeeklySchedule {
	if loc == nil {
		loc = time.UTC
	}
	return &WeeklySchedule{Weekday: weekday, Hour: hour, Location: loc}
}

// Next returns the next occurrence of the configured weekday and hour after t.
func (s *WeeklySchedule) Next(t time.Time) time.Time {
	local := t.In(s.Location)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.Hour, 0, 0, 0, s.Location)
	for next.Weekday() != s.Weekday || !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// String returns the string representation of the schedule.
func (s *WeeklySchedule) String() string {
	return fmt.Sprintf("@weekly %s %02d:00 (%s)", s.Weekday, s.Hour, s.Location)
}
