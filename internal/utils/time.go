package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/quitlog/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// DayKey returns t's local calendar day as YYYY-MM-DD.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(constants.DateFormat)
}

// WholeDaysBetween counts complete 24 hour periods from earlier to later,
// truncated toward zero.
func WholeDaysBetween(later, earlier time.Time) int {
	return int(later.Sub(earlier) / (24 * time.Hour))
}

// CalendarDaysBetween counts calendar day boundaries between two local days.
// DST transitions do not shift the result.
func CalendarDaysBetween(later, earlier time.Time, loc *time.Location) int {
	a := StartOfDay(later, loc)
	b := StartOfDay(earlier, loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ua.Sub(ub).Hours() / 24)
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ParseMoment parses a user supplied instant. Accepted forms are RFC 3339,
// "YYYY-MM-DD HH:MM" and "HH:MM" (today, relative to now).
func ParseMoment(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(constants.DateFormat+" "+constants.TimeFormat, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(constants.TimeFormat, s); err == nil {
		day := StartOfDay(now, loc)
		return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (want RFC 3339, %q or %q)", s, "YYYY-MM-DD HH:MM", "HH:MM")
}
