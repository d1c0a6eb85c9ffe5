package util

import "time"

// WeekDateLayout is the calendar-week key format used across the service.
const WeekDateLayout = "2006-01-02"

// ParseWeekDate parses a YYYY-MM-DD calendar week key.
func ParseWeekDate(value string) (time.Time, error) {
	return time.Parse(WeekDateLayout, value)
}

// WeekStart truncates a timestamp to the Monday of its ISO week, in UTC.
func WeekStart(t time.Time) time.Time {
	t = t.UTC().Truncate(24 * time.Hour)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}
