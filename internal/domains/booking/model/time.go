package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WireTimeLayout is the instant format on the API surface: ISO-8601 UTC
// with milliseconds.
const WireTimeLayout = "2006-01-02T15:04:05.000Z"

// TimeOfDayLayout is the HH:mm format used by recurring time slots.
const TimeOfDayLayout = "15:04"

// ParseInstant parses an ISO-8601 instant and normalizes it to UTC.
func ParseInstant(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Accept the milliseconds wire layout as well; RFC3339 already
		// covers it, this is for inputs without an offset designator.
		t, err = time.Parse(WireTimeLayout, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid instant %q: %w", value, err)
		}
	}
	return t.UTC(), nil
}

// FormatInstant renders an instant in the wire format.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(WireTimeLayout)
}

// =====================================================
// TIME OF DAY (HH:mm on a 15-minute grid)
// =====================================================

// TimeOfDay is a clock time within a day, minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:mm". It does not enforce the grid; callers
// use Validate for that.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", value)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", value)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String renders the slot back to HH:mm.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// OnGrid reports whether the minute falls on the 15-minute grid.
func (t TimeOfDay) OnGrid() bool {
	return t.Minute%15 == 0
}

// FitsDuration reports whether a meeting of the given length starting at
// this slot ends within the same day.
func (t TimeOfDay) FitsDuration(d time.Duration) bool {
	start := time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
	return start+d <= 24*time.Hour
}

// Minutes is the slot as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// At places the slot on a concrete UTC date.
func (t TimeOfDay) At(date time.Time) time.Time {
	date = date.UTC()
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, time.UTC)
}

// =====================================================
// WEEKDAY
// =====================================================

var weekdayNames = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
}

// ParseWeekday maps an upper-case weekday name to time.Weekday.
func ParseWeekday(value string) (time.Weekday, error) {
	day, ok := weekdayNames[value]
	if !ok {
		return 0, fmt.Errorf("invalid weekday %q", value)
	}
	return day, nil
}

// WeekdayName is the inverse of ParseWeekday.
func WeekdayName(day time.Weekday) string {
	return strings.ToUpper(day.String())
}

// NextWeekdayAt finds the first instant at tod on the given weekday that
// is not before from.
func NextWeekdayAt(from time.Time, day time.Weekday, tod TimeOfDay) time.Time {
	from = from.UTC()
	candidate := tod.At(from)
	daysAhead := (int(day) - int(from.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, daysAhead)
	if candidate.Before(from) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
