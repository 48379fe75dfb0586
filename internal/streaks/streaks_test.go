package streaks

import (
	"testing"
	"time"

	"github.com/julianstephens/quitlog/internal/models"
)

const day = 24 * time.Hour

func entriesAt(base time.Time, offsets ...time.Duration) []models.SmokingEntry {
	out := make([]models.SmokingEntry, 0, len(offsets))
	for _, off := range offsets {
		out = append(out, models.SmokingEntry{Timestamp: base.Add(off)})
	}
	return out
}

func TestSmokeStreaks(t *testing.T) {
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	t.Run("largest gap between entries wins", func(t *testing.T) {
		// journey starts a day before the first entry, entries on days 0, 3, 10
		start := base.Add(-1 * day)
		now := base.Add(12 * day)
		got := SmokeStreaks(entriesAt(base, 0, 3*day, 10*day), start, now)

		if got.Best != 7*day {
			t.Errorf("Best = %v, want %v", got.Best, 7*day)
		}
		if got.Current != 2*day {
			t.Errorf("Current = %v, want %v", got.Current, 2*day)
		}
	})

	t.Run("no entries means both equal journey length", func(t *testing.T) {
		now := base.Add(36 * time.Hour)
		got := SmokeStreaks(nil, base, now)
		if got.Current != 36*time.Hour || got.Best != 36*time.Hour {
			t.Errorf("got %+v, want 36h/36h", got)
		}
	})

	t.Run("current streak can become the best", func(t *testing.T) {
		now := base.Add(20 * day)
		got := SmokeStreaks(entriesAt(base, time.Hour, 2*time.Hour), base, now)
		if got.Best != got.Current {
			t.Errorf("Best = %v, want current %v", got.Best, got.Current)
		}
	})

	t.Run("entries outside the journey are ignored", func(t *testing.T) {
		now := base.Add(5 * day)
		entries := entriesAt(base, -2*day, 1*day, 9*day)
		got := SmokeStreaks(entries, base, now)
		if got.Current != 4*day {
			t.Errorf("Current = %v, want %v", got.Current, 4*day)
		}
		if got.Best != 4*day {
			t.Errorf("Best = %v, want %v", got.Best, 4*day)
		}
	})
}

func TestSmokeStreaksBestNeverBelowCurrent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := entriesAt(start, 2*time.Hour, 5*time.Hour, 30*time.Hour, 31*time.Hour)
	for h := 31; h < 24*15; h += 7 {
		now := start.Add(time.Duration(h) * time.Hour)
		got := SmokeStreaks(entries, start, now)
		if got.Best < got.Current {
			t.Fatalf("at +%dh Best %v < Current %v", h, got.Best, got.Current)
		}
	}
}

func TestLoggingStreak(t *testing.T) {
	now := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
	today := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		entries []models.SmokingEntry
		want    int
	}{
		{
			name:    "no entries",
			entries: nil,
			want:    0,
		},
		{
			name:    "today and yesterday",
			entries: entriesAt(today, 0, 2*time.Hour, -day),
			want:    2,
		},
		{
			name:    "only two days ago",
			entries: entriesAt(today, -2*day),
			want:    0,
		},
		{
			name:    "yesterday keeps the streak alive",
			entries: entriesAt(today, -day, -2*day, -3*day),
			want:    3,
		},
		{
			name:    "stops at the first gap",
			entries: entriesAt(today, 0, -day, -3*day, -4*day),
			want:    2,
		},
		{
			name:    "future entries do not count as today",
			entries: entriesAt(today, 3*day),
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoggingStreak(tt.entries, now, time.UTC); got != tt.want {
				t.Errorf("LoggingStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoggingStreakUsesLocalDays(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 02:00 UTC on the 15th is still the evening of the 14th in New York
	now := time.Date(2026, 6, 15, 14, 0, 0, 0, time.UTC)
	entries := []models.SmokingEntry{
		{Timestamp: time.Date(2026, 6, 15, 2, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2026, 6, 15, 13, 0, 0, 0, time.UTC)},
	}

	if got := LoggingStreak(entries, now, time.UTC); got != 1 {
		t.Errorf("UTC streak = %d, want 1", got)
	}
	if got := LoggingStreak(entries, now, ny); got != 2 {
		t.Errorf("New York streak = %d, want 2", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-time.Second, NotApplicable},
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{59 * time.Second, "59 seconds"},
		{time.Minute, "1 minute"},
		{2*time.Minute + time.Second, "2 minutes 1 second"},
		{time.Hour, "1 hour"},
		{5*time.Hour + 30*time.Minute, "5 hours 30 minutes"},
		{day + time.Hour, "1 day 1 hour"},
		{3 * day, "3 days"},
		{9*day + 23*time.Hour, "9 days 23 hours"},
		{10*day + 5*time.Hour, "10 days"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatLifeMinutes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{25, "25 min"},
		{90, "1.5 hours"},
		{500, "8.3 hours"},
		{2880, "2.0 days"},
	}

	for _, tt := range tests {
		if got := FormatLifeMinutes(tt.in); got != tt.want {
			t.Errorf("FormatLifeMinutes(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
