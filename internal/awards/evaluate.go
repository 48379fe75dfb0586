package awards

import (
	"fmt"
	"math"

	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/stats"
)

// Progress returns the template's progress-key value clamped to
// [0, TargetValue]. Unknown keys and non-finite values count as 0.
func Progress(t Template, s stats.Stats) float64 {
	v, ok := s.Value(t.ProgressKey)
	if !ok || math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, t.TargetValue)
}

// Evaluate reports whether every rule of t holds for s.
func Evaluate(t Template, s stats.Stats) (bool, error) {
	if len(t.Rules) == 0 {
		return false, fmt.Errorf("template %s has no rules", t.ID)
	}
	for _, r := range t.Rules {
		v, ok := s.Value(r.Metric)
		if !ok {
			return false, fmt.Errorf("template %s: unknown metric %q", t.ID, r.Metric)
		}
		if math.IsNaN(v) {
			return false, fmt.Errorf("template %s: metric %q is NaN", t.ID, r.Metric)
		}
		if v < r.Min {
			return false, nil
		}
	}
	return true, nil
}

// CheckUnlock is Evaluate with errors logged and treated as locked.
func CheckUnlock(t Template, s stats.Stats) bool {
	ok, err := Evaluate(t, s)
	if err != nil {
		logger.Warn("Achievement rule evaluation failed", "template", t.ID, "error", err)
		return false
	}
	return ok
}

// Locked reports whether t should be shown locked: it is not completed and
// the template before it in its category is not completed either.
func Locked(t Template, completed map[string]bool) bool {
	if completed[t.ID] || t.PreviousID == "" {
		return false
	}
	return !completed[t.PreviousID]
}

// ProgressPercent is current/target as a rounded percentage capped at 100.
// A zero target reads as 100 once anything has been achieved.
func ProgressPercent(current, target float64) int {
	if target <= 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	pct := math.Round(current / target * 100)
	switch {
	case pct > 100:
		return 100
	case pct < 0 || math.IsNaN(pct):
		return 0
	}
	return int(pct)
}
