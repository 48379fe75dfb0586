package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: "", wantErr: false},
		{name: "Local returns local", timezone: "Local", wantErr: false},
		{name: "valid timezone UTC", timezone: "UTC", wantErr: false},
		{name: "valid timezone Europe/London", timezone: "Europe/London", wantErr: false},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestDayKeyUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 20:00 UTC is already the next morning in Tokyo
	ts := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	if got := DayKey(ts, time.UTC); got != "2026-03-01" {
		t.Errorf("DayKey(UTC) = %s, want 2026-03-01", got)
	}
	if got := DayKey(ts, tokyo); got != "2026-03-02" {
		t.Errorf("DayKey(Tokyo) = %s, want 2026-03-02", got)
	}
}

func TestWholeDaysBetween(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		later time.Time
		want  int
	}{
		{name: "same instant", later: start, want: 0},
		{name: "23 hours", later: start.Add(23 * time.Hour), want: 0},
		{name: "exactly one day", later: start.Add(24 * time.Hour), want: 1},
		{name: "four and a half days", later: start.Add(4*24*time.Hour + 12*time.Hour), want: 4},
		{name: "before start", later: start.Add(-30 * time.Hour), want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WholeDaysBetween(tt.later, start); got != tt.want {
				t.Errorf("WholeDaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalendarDaysBetween(t *testing.T) {
	late := time.Date(2026, 1, 2, 0, 30, 0, 0, time.UTC)
	early := time.Date(2026, 1, 1, 23, 30, 0, 0, time.UTC)
	if got := CalendarDaysBetween(late, early, time.UTC); got != 1 {
		t.Errorf("CalendarDaysBetween() = %d, want 1", got)
	}
	if got := CalendarDaysBetween(early, early, time.UTC); got != 0 {
		t.Errorf("CalendarDaysBetween(same) = %d, want 0", got)
	}
}

func TestParseMoment(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339", input: "2026-05-09T08:15:00Z", want: time.Date(2026, 5, 9, 8, 15, 0, 0, time.UTC)},
		{name: "date and time", input: "2026-05-08 21:40", want: time.Date(2026, 5, 8, 21, 40, 0, 0, time.UTC)},
		{name: "time only means today", input: "07:05", want: time.Date(2026, 5, 10, 7, 5, 0, 0, time.UTC)},
		{name: "garbage", input: "yesterday-ish", wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoment(tt.input, now, time.UTC)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMoment() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseMoment() = %v, want %v", got, tt.want)
			}
		})
	}
}
