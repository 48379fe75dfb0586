// Package streaks measures smoke-free spans between logged cigarettes and
// the run of consecutive days with at least one log.
package streaks

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/utils"
)

// NotApplicable is rendered for durations that cannot be shown (negative spans).
const NotApplicable = "N/A"

// SmokeFree holds the two smoke-free streak measures.
type SmokeFree struct {
	Current time.Duration `json:"current"`
	Best    time.Duration `json:"best"`
}

// SmokeStreaks computes the current and best smoke-free spans.
// Entries outside [journeyStart, now] are ignored. With no entries both
// streaks equal the time since the journey started.
func SmokeStreaks(entries []models.SmokingEntry, journeyStart, now time.Time) SmokeFree {
	stamps := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		if e.Timestamp.Before(journeyStart) || e.Timestamp.After(now) {
			continue
		}
		stamps = append(stamps, e.Timestamp)
	}

	if len(stamps) == 0 {
		d := now.Sub(journeyStart)
		return SmokeFree{Current: d, Best: d}
	}

	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	current := now.Sub(stamps[len(stamps)-1])
	best := stamps[0].Sub(journeyStart)
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap > best {
			best = gap
		}
	}
	if current > best {
		best = current
	}

	return SmokeFree{Current: current, Best: best}
}

// LoggingStreak counts consecutive local calendar days with at least one
// entry, walking back from today. The streak is 0 unless the newest logged
// day is today or yesterday.
func LoggingStreak(entries []models.SmokingEntry, now time.Time, loc *time.Location) int {
	if len(entries) == 0 {
		return 0
	}

	seen := make(map[time.Time]struct{}, len(entries))
	days := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		day := utils.StartOfDay(e.Timestamp, loc)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	lag := utils.CalendarDaysBetween(now, days[0], loc)
	if lag != 0 && lag != 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if utils.CalendarDaysBetween(days[i-1], days[i], loc) != 1 {
			break
		}
		streak++
	}
	return streak
}

// FormatDuration renders a span in the two largest meaningful units,
// e.g. "3 days 4 hours" or "12 minutes". Spans of ten days or more show
// days only.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return NotApplicable
	}

	totalSeconds := int64(d / time.Second)
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	switch {
	case totalSeconds < 60:
		return plural(seconds, "second")
	case totalSeconds < 3600:
		return join(plural(minutes, "minute"), seconds, "second")
	case totalSeconds < 86400:
		return join(plural(hours, "hour"), minutes, "minute")
	case days < 10:
		return join(plural(days, "day"), hours, "hour")
	default:
		return plural(days, "day")
	}
}

// FormatLifeMinutes renders regained life the way the stats screen does:
// minutes under an hour, fractional hours under a day, fractional days after.
func FormatLifeMinutes(minutes float64) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d min", int64(minutes))
	case minutes < 1440:
		return fmt.Sprintf("%.1f hours", minutes/60)
	default:
		return fmt.Sprintf("%.1f days", minutes/1440)
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func join(head string, n int64, unit string) string {
	if n == 0 {
		return head
	}
	return head + " " + plural(n, unit)
}
