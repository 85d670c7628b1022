package timeutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCampusTZ_FixedOffset(t *testing.T) {
	_, offset := Date(2026, 9, 1).Zone()
	assert.Equal(t, 5*60*60, offset)

	// No DST: the offset is identical in winter.
	_, winter := Date(2026, 1, 15).Zone()
	assert.Equal(t, offset, winter)
}

func TestToCampus_ConvertsFromUTC(t *testing.T) {
	utc := time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC)
	campus := ToCampus(utc)

	assert.Equal(t, 2, campus.Day(), "20:00 UTC is already the next campus day")
	assert.Equal(t, 1, campus.Hour())
}

func TestStartOfWeek_AlwaysMonday(t *testing.T) {
	tests := []struct {
		day      int // September 2026: Mon 7 ... Sun 13
		expected int
	}{
		{7, 7},   // Monday maps to itself
		{9, 7},   // Wednesday
		{13, 7},  // Sunday still belongs to the week of the 7th
		{14, 14}, // next Monday
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("day %d", tt.day), func(t *testing.T) {
			start := StartOfWeek(Date(2026, 9, tt.day))
			assert.Equal(t, time.Monday, start.Weekday())
			assert.Equal(t, tt.expected, start.Day())
			assert.Equal(t, 0, start.Hour())
		})
	}
}

func TestEndOfWeek_SundayNight(t *testing.T) {
	end := EndOfWeek(Date(2026, 9, 9))

	assert.Equal(t, time.Sunday, end.Weekday())
	assert.Equal(t, 13, end.Day())
	assert.Equal(t, 23, end.Hour())
}

func TestUpcomingWeek_CoversFollowingSunday(t *testing.T) {
	// Friday evening: the window must reach past the imminent weekend.
	friday := time.Date(2026, 9, 11, 18, 0, 0, 0, CampusTZ)
	from, to := UpcomingWeek(friday)

	assert.Equal(t, friday, from)
	assert.Equal(t, time.Sunday, to.Weekday())
	assert.Equal(t, 20, to.Day(), "window ends on the following Sunday, not in two days")
}

func TestStartAndEndOfDay(t *testing.T) {
	noon := time.Date(2026, 9, 1, 12, 30, 0, 0, CampusTZ)

	start := StartOfDay(noon)
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, noon.Day(), start.Day())

	end := EndOfDay(noon)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
}

func TestFormatEventTime(t *testing.T) {
	evening := time.Date(2026, 9, 11, 18, 30, 0, 0, CampusTZ)
	assert.Equal(t, "Friday, 11 September at 18:30", FormatEventTime(evening))

	// UTC input is rendered in campus time.
	sameInstant := evening.UTC()
	assert.Equal(t, "Friday, 11 September at 18:30", FormatEventTime(sameInstant))
}

func TestFormatCampus(t *testing.T) {
	d := Date(2026, 9, 11)
	assert.Equal(t, "2026-09-11", FormatCampus(d, FormatDate))
	assert.Equal(t, "2026-09-11 00:00", FormatCampus(d, FormatDateTime))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 0, DaysUntil(Now()))
	assert.Equal(t, 1, DaysUntil(StartOfDay(Now()).AddDate(0, 0, 1)))
	assert.Equal(t, 5, DaysUntil(Now().AddDate(0, 0, 5)))
	assert.Equal(t, -1, DaysUntil(Now().AddDate(0, 0, -1)))
}

func TestHumanizeUntil(t *testing.T) {
	assert.Equal(t, "today", HumanizeUntil(Now()))
	assert.Equal(t, "tomorrow", HumanizeUntil(StartOfDay(Now()).AddDate(0, 0, 1).Add(time.Hour)))
	assert.Equal(t, "in 3 days", HumanizeUntil(Now().AddDate(0, 0, 3)))
	assert.Equal(t, "passed", HumanizeUntil(Now().AddDate(0, 0, -2)))
}

func TestIsThisWeek(t *testing.T) {
	assert.True(t, IsThisWeek(Now()))
	assert.False(t, IsThisWeek(Now().AddDate(0, 0, 8)))
	assert.False(t, IsThisWeek(Now().AddDate(0, 0, -8)))
}
