// Package stats derives every journey metric from the raw entry log and the
// user's baseline. All screens read their numbers from here.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/streaks"
	"github.com/julianstephens/quitlog/internal/utils"
)

// Metric names a numeric field of Stats that rules and progress bars read.
type Metric string

const (
	MetricDaysSinceOnboarding Metric = "daysSinceOnboarding"
	MetricCigarettesAvoided   Metric = "cigarettesAvoided"
	MetricMoneySaved          Metric = "moneySaved"
	MetricLifeRegained        Metric = "lifeRegainedMinutes"
	MetricCurrentDailyAvg     Metric = "currentDailyAvg"
	MetricReduction           Metric = "reductionPercentage"
	MetricCurrentStreakDays   Metric = "currentStreakDays"
	MetricLoggingStreakDays   Metric = "loggingStreakDays"
	MetricTotalLogs           Metric = "totalLogs"
)

// Stats is the derived snapshot of a user's journey. It is never persisted.
type Stats struct {
	DaysSinceOnboarding      int                   `json:"days_since_onboarding"`
	CigarettesAvoided        float64               `json:"cigarettes_avoided"`
	MoneySaved               float64               `json:"money_saved"`
	LifeRegainedMinutes      float64               `json:"life_regained_minutes"`
	CurrentDailyAvg          float64               `json:"current_daily_avg"`
	ReductionPercentage      float64               `json:"reduction_percentage"`
	CurrentStreakDays        int                   `json:"current_streak_days"`
	LoggingStreakDays        int                   `json:"logging_streak_days"`
	TotalLogs                int                   `json:"total_logs"`
	BaselineCigarettesPerDay float64               `json:"baseline_cigarettes_per_day"`
	JourneyStart             time.Time             `json:"journey_start"`
	ValidEntries             []models.SmokingEntry `json:"-"`
}

// Value returns the named metric. ok is false for unknown names.
func (s Stats) Value(m Metric) (v float64, ok bool) {
	switch m {
	case MetricDaysSinceOnboarding:
		return float64(s.DaysSinceOnboarding), true
	case MetricCigarettesAvoided:
		return s.CigarettesAvoided, true
	case MetricMoneySaved:
		return s.MoneySaved, true
	case MetricLifeRegained:
		return s.LifeRegainedMinutes, true
	case MetricCurrentDailyAvg:
		return s.CurrentDailyAvg, true
	case MetricReduction:
		return s.ReductionPercentage, true
	case MetricCurrentStreakDays:
		return float64(s.CurrentStreakDays), true
	case MetricLoggingStreakDays:
		return float64(s.LoggingStreakDays), true
	case MetricTotalLogs:
		return float64(s.TotalLogs), true
	}
	return 0, false
}

// Calculate computes Stats for the journey anchored at journeyStart.
// A nil profile or missing baseline fields yield zero-valued metrics.
// A zero journeyStart means the journey starts now, so earlier entries do
// not count.
func Calculate(entries []models.SmokingEntry, profile *models.UserProfile, journeyStart, now time.Time, loc *time.Location) Stats {
	if journeyStart.IsZero() {
		journeyStart = now
	}

	valid := make([]models.SmokingEntry, 0, len(entries))
	for _, e := range entries {
		if e.Timestamp.Before(journeyStart) || e.Timestamp.After(now) {
			continue
		}
		valid = append(valid, e)
	}
	// newest first
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Timestamp.After(valid[j].Timestamp) })

	days := utils.WholeDaysBetween(now, journeyStart) + 1
	if days < 1 {
		days = 1
	}

	var baseline float64
	if profile != nil && finitePositive(profile.CigarettesPerDayBefore) {
		baseline = profile.CigarettesPerDayBefore
	}

	count := float64(len(valid))
	avoided := math.Max(0, baseline*float64(days)-count)
	avg := count / float64(days)

	reduction := 0.0
	if baseline > 0 {
		reduction = math.Max(0, (baseline-avg)/baseline*100)
	}

	streakDays := days
	if len(valid) > 0 {
		streakDays = utils.WholeDaysBetween(now, valid[0].Timestamp)
		if streakDays < 0 {
			streakDays = 0
		}
	}

	return Stats{
		DaysSinceOnboarding:      days,
		CigarettesAvoided:        avoided,
		MoneySaved:               moneySaved(avoided, profile),
		LifeRegainedMinutes:      avoided * constants.LifeMinutesPerCigarette,
		CurrentDailyAvg:          avg,
		ReductionPercentage:      reduction,
		CurrentStreakDays:        streakDays,
		LoggingStreakDays:        streaks.LoggingStreak(valid, now, loc),
		TotalLogs:                len(valid),
		BaselineCigarettesPerDay: baseline,
		JourneyStart:             journeyStart,
		ValidEntries:             valid,
	}
}

// PricePerCigarette is cost_per_pack / cigarettes_per_pack, or 0 when the
// pack size is not positive. A missing pack size means the default of 20.
func PricePerCigarette(profile *models.UserProfile) decimal.Decimal {
	if profile == nil || !finitePositive(profile.CostPerPack) {
		return decimal.Zero
	}
	perPack := float64(constants.DefaultCigarettesPerPack)
	if profile.CigarettesPerPack != nil {
		perPack = *profile.CigarettesPerPack
	}
	if !finitePositive(perPack) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(profile.CostPerPack).Div(decimal.NewFromFloat(perPack))
}

func moneySaved(avoided float64, profile *models.UserProfile) float64 {
	saved := PricePerCigarette(profile).Mul(decimal.NewFromFloat(avoided)).Round(2)
	return saved.InexactFloat64()
}

func finitePositive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
