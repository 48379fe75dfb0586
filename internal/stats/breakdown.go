package stats

import (
	"sort"
	"time"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/utils"
)

// HeatBlocks is the number of 4-hour blocks in a day.
const HeatBlocks = 6

// DayCount is one day of the trend chart.
type DayCount struct {
	Day   string `json:"day" yaml:"day"`
	Count int    `json:"count" yaml:"count"`
	Goal  *int   `json:"goal" yaml:"goal"`
}

// Bucket is a labelled count.
type Bucket struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// HeatRow is one day of the hour-block heat map.
type HeatRow struct {
	Day    string          `json:"day"`
	Blocks [HeatBlocks]int `json:"blocks"`
}

// GoalForDate returns the limit in force on date: the latest goal record
// whose day is not after date's day, else fallback.
func GoalForDate(goals []models.GoalHistoryRecord, date time.Time, fallback *int, loc *time.Location) *int {
	target := utils.StartOfDay(date, loc)

	var best *models.GoalHistoryRecord
	for i := range goals {
		g := &goals[i]
		if utils.StartOfDay(g.Date, loc).After(target) {
			continue
		}
		if best == nil || g.Date.After(best.Date) {
			best = g
		}
	}
	if best == nil {
		return fallback
	}
	limit := best.Limit
	return &limit
}

// DailyCounts buckets entries per local day over [from, to], inclusive of
// both days, and attaches the goal in force for each day.
func DailyCounts(entries []models.SmokingEntry, goals []models.GoalHistoryRecord, profile *models.UserProfile, from, to time.Time, loc *time.Location) []DayCount {
	var fallback *int
	if profile != nil {
		fallback = profile.DailyLimit
	}

	counts := make(map[string]int)
	for _, e := range entries {
		counts[utils.DayKey(e.Timestamp, loc)]++
	}

	first := utils.StartOfDay(from, loc)
	last := utils.StartOfDay(to, loc)
	var out []DayCount
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := utils.DayKey(d, loc)
		out = append(out, DayCount{
			Day:   key,
			Count: counts[key],
			Goal:  GoalForDate(goals, d, fallback, loc),
		})
	}
	return out
}

// TriggerBreakdown counts entries per trigger, most frequent first.
// Entries without a trigger are not counted.
func TriggerBreakdown(entries []models.SmokingEntry) []Bucket {
	return breakdown(entries, func(e models.SmokingEntry) string { return string(e.Trigger) })
}

// LocationBreakdown counts entries per location, most frequent first.
func LocationBreakdown(entries []models.SmokingEntry) []Bucket {
	return breakdown(entries, func(e models.SmokingEntry) string { return string(e.Location) })
}

func breakdown(entries []models.SmokingEntry, label func(models.SmokingEntry) string) []Bucket {
	counts := make(map[string]int)
	for _, e := range entries {
		if l := label(e); l != "" {
			counts[l]++
		}
	}
	out := make([]Bucket, 0, len(counts))
	for name, n := range counts {
		out = append(out, Bucket{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// HeatMap counts entries per local day and 4-hour block over [from, to].
func HeatMap(entries []models.SmokingEntry, from, to time.Time, loc *time.Location) []HeatRow {
	if loc == nil {
		loc = time.Local
	}
	first := utils.StartOfDay(from, loc)
	last := utils.StartOfDay(to, loc)

	index := make(map[string]int)
	var rows []HeatRow
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := utils.DayKey(d, loc)
		index[key] = len(rows)
		rows = append(rows, HeatRow{Day: key})
	}

	for _, e := range entries {
		i, ok := index[utils.DayKey(e.Timestamp, loc)]
		if !ok {
			continue
		}
		rows[i].Blocks[e.Timestamp.In(loc).Hour()/4]++
	}
	return rows
}

// TodayCount counts entries on now's local day.
func TodayCount(entries []models.SmokingEntry, now time.Time, loc *time.Location) int {
	today := utils.DayKey(now, loc)
	n := 0
	for _, e := range entries {
		if utils.DayKey(e.Timestamp, loc) == today {
			n++
		}
	}
	return n
}

// LimitStatus classifies count against limit. Near starts at 80% of the limit.
func LimitStatus(count int, limit *int) constants.LimitStatus {
	if limit == nil {
		return constants.LimitNone
	}
	switch {
	case count > *limit:
		return constants.LimitOver
	case *limit > 0 && float64(count) >= float64(*limit)*constants.LimitNearRatio:
		return constants.LimitNear
	default:
		return constants.LimitUnder
	}
}
