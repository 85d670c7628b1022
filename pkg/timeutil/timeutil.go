// Package timeutil provides timezone utilities for the campus timezone (UTC+5).
// All students and club events live in Almaty time, so deadlines, event windows
// and the weekly digest are computed against this zone rather than UTC.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// CampusTZ is the campus timezone (UTC+5, no DST).
// Kazakhstan abolished DST in 2005, so this is constant year-round.
var CampusTZ = time.FixedZone("Asia/Almaty", 5*60*60)

// Now returns the current time in the campus timezone.
func Now() time.Time {
	return time.Now().In(CampusTZ)
}

// ToCampus converts a time to the campus timezone.
func ToCampus(t time.Time) time.Time {
	return t.In(CampusTZ)
}

// Date creates a time in the campus timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, CampusTZ)
}

// StartOfDay returns the start of the day (00:00:00) in the campus timezone.
func StartOfDay(t time.Time) time.Time {
	c := ToCampus(t)
	return time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, CampusTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the campus timezone.
func EndOfDay(t time.Time) time.Time {
	c := ToCampus(t)
	return time.Date(c.Year(), c.Month(), c.Day(), 23, 59, 59, 999999999, CampusTZ)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in the campus timezone.
func StartOfWeek(t time.Time) time.Time {
	c := ToCampus(t)
	weekday := int(c.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(c.AddDate(0, 0, -(weekday - 1)))
}

// EndOfWeek returns the end of the week (Sunday 23:59:59) in the campus timezone.
func EndOfWeek(t time.Time) time.Time {
	return EndOfDay(StartOfWeek(t).AddDate(0, 0, 6))
}

// UpcomingWeek returns the window covered by the weekly digest: from the given
// time until the end of the following Sunday. This keeps Friday digests useful
// instead of cutting off two days later.
func UpcomingWeek(t time.Time) (from, to time.Time) {
	from = ToCampus(t)
	to = EndOfWeek(from.AddDate(0, 0, 7))
	return from, to
}

// IsThisWeek checks if the given time is in the current campus week.
func IsThisWeek(t time.Time) bool {
	now := Now()
	c := ToCampus(t)
	return !c.Before(StartOfWeek(now)) && !c.After(EndOfWeek(now))
}

// DaysUntil returns the number of whole campus days from now until t.
// Negative values mean the time has passed.
func DaysUntil(t time.Time) int {
	today := StartOfDay(Now())
	then := StartOfDay(t)
	return int(then.Sub(today).Hours() / 24)
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatHumanDate is a human-readable format used in prompts and digests.
	FormatHumanDate = "Monday, 2 January"
)

// FormatCampus formats a time in the campus timezone with the given layout.
func FormatCampus(t time.Time, layout string) string {
	return ToCampus(t).Format(layout)
}

// FormatEventTime renders an event start time the way it appears in digests
// and agent prompts, e.g. "Friday, 12 September at 18:30".
func FormatEventTime(t time.Time) string {
	c := ToCampus(t)
	return fmt.Sprintf("%s at %s", c.Format(FormatHumanDate), c.Format(FormatTime))
}

// HumanizeUntil describes how far away t is in digest-friendly terms:
// "today", "tomorrow", "in 5 days", or "passed".
func HumanizeUntil(t time.Time) string {
	days := DaysUntil(t)
	switch {
	case days < 0:
		return "passed"
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
