package awards

import (
	"math"
	"testing"

	"github.com/julianstephens/quitlog/internal/stats"
)

func TestLibraryShape(t *testing.T) {
	lib := Library()
	if len(lib) != 21 {
		t.Fatalf("len(Library()) = %d, want 21", len(lib))
	}

	seen := make(map[string]bool)
	known := make(map[Category]bool)
	for _, c := range Categories() {
		known[c.ID] = true
	}

	for _, tmpl := range lib {
		if seen[tmpl.ID] {
			t.Errorf("duplicate template id %s", tmpl.ID)
		}
		seen[tmpl.ID] = true

		if !known[tmpl.Category] {
			t.Errorf("%s has unknown category %s", tmpl.ID, tmpl.Category)
		}
		if _, ok := (stats.Stats{}).Value(tmpl.ProgressKey); !ok {
			t.Errorf("%s has unknown progress key %s", tmpl.ID, tmpl.ProgressKey)
		}
		if len(tmpl.Rules) == 0 {
			t.Errorf("%s has no rules", tmpl.ID)
		}
		if tmpl.TargetValue <= 0 {
			t.Errorf("%s has non-positive target", tmpl.ID)
		}
	}
}

func TestSequenceWithinCategory(t *testing.T) {
	for cat, templates := range ByCategory() {
		for i, tmpl := range templates {
			want := ""
			if i > 0 {
				want = templates[i-1].ID
			}
			if tmpl.PreviousID != want {
				t.Errorf("%s/%s PreviousID = %q, want %q", cat, tmpl.ID, tmpl.PreviousID, want)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	tmpl, ok := Lookup("avoider_elite_100")
	if !ok {
		t.Fatal("Lookup(avoider_elite_100) not found")
	}
	if tmpl.Name != "Avoider Elite: 100" || tmpl.TargetValue != 100 {
		t.Errorf("Lookup returned %+v", tmpl)
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) found a template")
	}
}

func TestProgressClampsToTarget(t *testing.T) {
	tmpl, _ := Lookup("avoider_champion_500")
	s := stats.Stats{CigarettesAvoided: 650}

	if got := Progress(tmpl, s); got != 500 {
		t.Errorf("Progress() = %v, want 500", got)
	}
	if !CheckUnlock(tmpl, s) {
		t.Error("CheckUnlock() = false, want true")
	}
}

func TestProgressUnknownKey(t *testing.T) {
	tmpl := Template{ID: "broken", TargetValue: 10, ProgressKey: "lungs"}
	if got := Progress(tmpl, stats.Stats{}); got != 0 {
		t.Errorf("Progress() = %v, want 0", got)
	}
}

func TestCheckUnlock(t *testing.T) {
	tests := []struct {
		name string
		id   string
		s    stats.Stats
		want bool
	}{
		{name: "below threshold", id: "first_five", s: stats.Stats{CigarettesAvoided: 4.9}, want: false},
		{name: "at threshold", id: "first_five", s: stats.Stats{CigarettesAvoided: 5}, want: true},
		{name: "money", id: "saved_tenner", s: stats.Stats{MoneySaved: 10}, want: true},
		{name: "reduction too early", id: "half_cut_hero", s: stats.Stats{DaysSinceOnboarding: 6, ReductionPercentage: 90}, want: false},
		{name: "reduction after a week", id: "half_cut_hero", s: stats.Stats{DaysSinceOnboarding: 7, ReductionPercentage: 50}, want: true},
		{name: "deep detox needs 75", id: "deep_detox_75", s: stats.Stats{DaysSinceOnboarding: 10, ReductionPercentage: 74.9}, want: false},
		{name: "streak day", id: "one_day_wall", s: stats.Stats{CurrentStreakDays: 1}, want: true},
		{name: "first log", id: "getting_started", s: stats.Stats{TotalLogs: 1}, want: true},
		{name: "logging streak", id: "daily_logger_7", s: stats.Stats{LoggingStreakDays: 6}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, ok := Lookup(tt.id)
			if !ok {
				t.Fatalf("Lookup(%s) failed", tt.id)
			}
			if got := CheckUnlock(tmpl, tt.s); got != tt.want {
				t.Errorf("CheckUnlock() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name string
		tmpl Template
		s    stats.Stats
	}{
		{name: "unknown metric", tmpl: Template{ID: "x", Rules: []Rule{{Metric: "lungs", Min: 1}}}},
		{name: "nan value", tmpl: Template{ID: "y", Rules: atLeast(stats.MetricMoneySaved, 1)}, s: stats.Stats{MoneySaved: math.NaN()}},
		{name: "no rules", tmpl: Template{ID: "z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Evaluate(tt.tmpl, tt.s); err == nil {
				t.Error("Evaluate() error = nil")
			}
			if CheckUnlock(tt.tmpl, tt.s) {
				t.Error("CheckUnlock() = true for a failing rule")
			}
		})
	}
}

func TestLocked(t *testing.T) {
	first, _ := Lookup("first_five")
	second, _ := Lookup("pack_saver")

	if Locked(first, nil) {
		t.Error("first template of a category is never locked")
	}
	if !Locked(second, map[string]bool{}) {
		t.Error("pack_saver should be locked until first_five completes")
	}
	if Locked(second, map[string]bool{"first_five": true}) {
		t.Error("pack_saver should unlock after first_five")
	}
	if Locked(second, map[string]bool{"pack_saver": true}) {
		t.Error("completed template shown locked")
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		current, target float64
		want            int
	}{
		{0, 5, 0},
		{2, 3, 67},
		{5, 5, 100},
		{9, 5, 100},
		{0, 0, 0},
		{1, 0, 100},
	}

	for _, tt := range tests {
		if got := ProgressPercent(tt.current, tt.target); got != tt.want {
			t.Errorf("ProgressPercent(%v, %v) = %d, want %d", tt.current, tt.target, got, tt.want)
		}
	}
}
