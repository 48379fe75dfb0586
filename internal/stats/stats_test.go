package stats

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
)

const day = 24 * time.Hour

var t0 = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func baseProfile() *models.UserProfile {
	return &models.UserProfile{
		ID:                     "user-1",
		CigarettesPerDayBefore: 20,
		CostPerPack:            10,
		CigarettesPerPack:      floatPtr(20),
		Currency:               "USD",
		JourneyStartDate:       t0,
	}
}

func logsEvery(start time.Time, step time.Duration, n int) []models.SmokingEntry {
	out := make([]models.SmokingEntry, n)
	for i := range out {
		out[i] = models.SmokingEntry{ID: string(rune('a' + i%26)), Timestamp: start.Add(time.Duration(i) * step)}
	}
	return out
}

func TestCalculateFifthDayWithoutLogs(t *testing.T) {
	// fifth journey day: four full days plus a partial one
	now := t0.Add(4*day + 12*time.Hour)
	got := Calculate(nil, baseProfile(), t0, now, time.UTC)

	if got.DaysSinceOnboarding != 5 {
		t.Errorf("DaysSinceOnboarding = %d, want 5", got.DaysSinceOnboarding)
	}
	if got.CigarettesAvoided != 100 {
		t.Errorf("CigarettesAvoided = %v, want 100", got.CigarettesAvoided)
	}
	if got.MoneySaved != 50 {
		t.Errorf("MoneySaved = %v, want 50", got.MoneySaved)
	}
	if got.LifeRegainedMinutes != 500 {
		t.Errorf("LifeRegainedMinutes = %v, want 500", got.LifeRegainedMinutes)
	}
	if got.CurrentStreakDays != 5 {
		t.Errorf("CurrentStreakDays = %d, want 5", got.CurrentStreakDays)
	}
	if got.ReductionPercentage != 100 {
		t.Errorf("ReductionPercentage = %v, want 100", got.ReductionPercentage)
	}
	if FormatMoney(got.MoneySaved, "USD") != "$50.00" {
		t.Errorf("FormatMoney = %s, want $50.00", FormatMoney(got.MoneySaved, "USD"))
	}
}

func TestCalculateReductionPercentage(t *testing.T) {
	// 4 days, 5 per day
	now := t0.Add(3*day + 23*time.Hour)
	entries := logsEvery(t0.Add(time.Minute), 4*time.Hour+30*time.Minute, 20)

	got := Calculate(entries, baseProfile(), t0, now, time.UTC)

	if got.DaysSinceOnboarding != 4 {
		t.Fatalf("DaysSinceOnboarding = %d, want 4", got.DaysSinceOnboarding)
	}
	if got.CurrentDailyAvg != 5 {
		t.Errorf("CurrentDailyAvg = %v, want 5", got.CurrentDailyAvg)
	}
	if got.ReductionPercentage != 75 {
		t.Errorf("ReductionPercentage = %v, want 75", got.ReductionPercentage)
	}
	if got.CigarettesAvoided != 60 {
		t.Errorf("CigarettesAvoided = %v, want 60", got.CigarettesAvoided)
	}
}

func TestCalculateFiltersEntriesOutsideJourney(t *testing.T) {
	now := t0.Add(2 * day)
	entries := []models.SmokingEntry{
		{ID: "before", Timestamp: t0.Add(-time.Hour)},
		{ID: "inside-old", Timestamp: t0.Add(time.Hour)},
		{ID: "inside-new", Timestamp: t0.Add(30 * time.Hour)},
		{ID: "future", Timestamp: now.Add(time.Hour)},
	}

	got := Calculate(entries, baseProfile(), t0, now, time.UTC)

	var ids []string
	for _, e := range got.ValidEntries {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]string{"inside-new", "inside-old"}, ids); diff != "" {
		t.Errorf("ValidEntries mismatch (-want +got):\n%s", diff)
	}
	if got.TotalLogs != 2 {
		t.Errorf("TotalLogs = %d, want 2", got.TotalLogs)
	}
	// newest valid entry is 18h before now
	if got.CurrentStreakDays != 0 {
		t.Errorf("CurrentStreakDays = %d, want 0", got.CurrentStreakDays)
	}
}

func TestCalculateDegradesWithoutProfile(t *testing.T) {
	now := t0.Add(3 * day)
	entries := logsEvery(t0, time.Hour, 3)

	for name, profile := range map[string]*models.UserProfile{
		"nil profile":   nil,
		"zero baseline": {ID: "x", CostPerPack: 12},
		"nan baseline":  {ID: "y", CigarettesPerDayBefore: math.NaN()},
	} {
		t.Run(name, func(t *testing.T) {
			got := Calculate(entries, profile, t0, now, time.UTC)
			if got.CigarettesAvoided != 0 || got.MoneySaved != 0 || got.LifeRegainedMinutes != 0 {
				t.Errorf("expected zero savings, got %+v", got)
			}
			if got.ReductionPercentage != 0 {
				t.Errorf("ReductionPercentage = %v, want 0", got.ReductionPercentage)
			}
			if got.TotalLogs != 3 {
				t.Errorf("TotalLogs = %d, want 3", got.TotalLogs)
			}
		})
	}
}

func TestCalculateWithoutJourneyStart(t *testing.T) {
	now := t0.Add(3 * day)
	entries := append(logsEvery(t0, time.Hour, 4), models.SmokingEntry{ID: "now", Timestamp: now})

	got := Calculate(entries, baseProfile(), time.Time{}, now, time.UTC)
	if !got.JourneyStart.Equal(now) {
		t.Errorf("JourneyStart = %v, want %v", got.JourneyStart, now)
	}
	if got.DaysSinceOnboarding != 1 {
		t.Errorf("DaysSinceOnboarding = %d, want 1", got.DaysSinceOnboarding)
	}
	// Only the entry logged at now falls inside the journey.
	if got.TotalLogs != 1 {
		t.Errorf("TotalLogs = %d, want 1", got.TotalLogs)
	}
	if got.CigarettesAvoided != 19 {
		t.Errorf("CigarettesAvoided = %v, want 19", got.CigarettesAvoided)
	}
}

func TestCalculateNeverNegative(t *testing.T) {
	// far more than baseline
	entries := logsEvery(t0, 10*time.Minute, 200)
	got := Calculate(entries, baseProfile(), t0, t0.Add(day), time.UTC)

	if got.CigarettesAvoided != 0 {
		t.Errorf("CigarettesAvoided = %v, want 0", got.CigarettesAvoided)
	}
	if got.ReductionPercentage != 0 {
		t.Errorf("ReductionPercentage = %v, want 0", got.ReductionPercentage)
	}
	if got.MoneySaved != 0 {
		t.Errorf("MoneySaved = %v, want 0", got.MoneySaved)
	}
}

func TestCalculateMonotonicWithoutNewEntries(t *testing.T) {
	entries := logsEvery(t0.Add(time.Hour), 3*time.Hour, 6)
	prev := Calculate(entries, baseProfile(), t0, t0.Add(day), time.UTC)
	for h := 25; h < 24*40; h += 5 {
		cur := Calculate(entries, baseProfile(), t0, t0.Add(time.Duration(h)*time.Hour), time.UTC)
		if cur.CigarettesAvoided < prev.CigarettesAvoided {
			t.Fatalf("avoided decreased at +%dh: %v -> %v", h, prev.CigarettesAvoided, cur.CigarettesAvoided)
		}
		if cur.MoneySaved < prev.MoneySaved || cur.LifeRegainedMinutes < prev.LifeRegainedMinutes {
			t.Fatalf("savings decreased at +%dh", h)
		}
		prev = cur
	}
}

func TestPricePerCigarette(t *testing.T) {
	tests := []struct {
		name    string
		perPack *float64
		want    string
	}{
		{name: "explicit pack size", perPack: floatPtr(25), want: "0.4"},
		{name: "missing pack size uses default", perPack: nil, want: "0.5"},
		{name: "zero pack size", perPack: floatPtr(0), want: "0"},
		{name: "negative pack size", perPack: floatPtr(-5), want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			p.CigarettesPerPack = tt.perPack
			if got := PricePerCigarette(p).String(); got != tt.want {
				t.Errorf("PricePerCigarette() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStatsValue(t *testing.T) {
	s := Stats{CigarettesAvoided: 42, LoggingStreakDays: 3}

	if v, ok := s.Value(MetricCigarettesAvoided); !ok || v != 42 {
		t.Errorf("Value(cigarettesAvoided) = %v, %v", v, ok)
	}
	if v, ok := s.Value(MetricLoggingStreakDays); !ok || v != 3 {
		t.Errorf("Value(loggingStreakDays) = %v, %v", v, ok)
	}
	if _, ok := s.Value("lungCapacity"); ok {
		t.Error("Value() accepted an unknown metric")
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(12.5, "GBP"); got != "£12.50" {
		t.Errorf("FormatMoney(GBP) = %s", got)
	}
	if got := FormatMoney(3, "XYZ"); got != "$3.00" {
		t.Errorf("FormatMoney(unknown) = %s", got)
	}
}

func TestLimitStatus(t *testing.T) {
	tests := []struct {
		count int
		limit *int
		want  constants.LimitStatus
	}{
		{3, nil, constants.LimitNone},
		{3, intPtr(10), constants.LimitUnder},
		{8, intPtr(10), constants.LimitNear},
		{10, intPtr(10), constants.LimitNear},
		{11, intPtr(10), constants.LimitOver},
		{0, intPtr(0), constants.LimitUnder},
		{1, intPtr(0), constants.LimitOver},
	}

	for _, tt := range tests {
		if got := LimitStatus(tt.count, tt.limit); got != tt.want {
			t.Errorf("LimitStatus(%d, %v) = %s, want %s", tt.count, tt.limit, got, tt.want)
		}
	}
}
