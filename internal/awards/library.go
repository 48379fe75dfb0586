// Package awards holds the static achievement catalog and evaluates its
// rules against a stats snapshot.
package awards

import "github.com/julianstephens/quitlog/internal/stats"

// Category groups templates for display and locking.
type Category string

const (
	CategoryProgress    Category = "progress"
	CategoryHealth      Category = "health"
	CategoryConsistency Category = "consistency"
	CategoryMoney       Category = "money"
	CategoryLogging     Category = "logging"
	CategoryMilestone   Category = "milestone"
)

// CategoryInfo is the display metadata for a category.
type CategoryInfo struct {
	ID    Category `json:"id"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
	Icon  string   `json:"icon"`
}

// Rule holds when Metric >= Min.
type Rule struct {
	Metric stats.Metric `json:"metric"`
	Min    float64      `json:"min"`
}

// Template is one unlockable achievement. It unlocks when every rule holds.
// PreviousID names the template before it in the same category and is
// empty for the first one.
type Template struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    Category     `json:"category"`
	BadgeIcon   string       `json:"badge_icon"`
	BadgeColor  string       `json:"badge_color"`
	TargetValue float64      `json:"target_value"`
	ProgressKey stats.Metric `json:"progress_key"`
	Rules       []Rule       `json:"rules"`
	PreviousID  string       `json:"previous_id,omitempty"`
}

func atLeast(m stats.Metric, min float64) []Rule {
	return []Rule{{Metric: m, Min: min}}
}

// reduction rules only count once the journey has run a full week
func reducedBy(pct float64) []Rule {
	return []Rule{
		{Metric: stats.MetricDaysSinceOnboarding, Min: 7},
		{Metric: stats.MetricReduction, Min: pct},
	}
}

var categories = []CategoryInfo{
	{ID: CategoryProgress, Name: "Progress", Color: "blue", Icon: "trending-up"},
	{ID: CategoryHealth, Name: "Health", Color: "green", Icon: "heart"},
	{ID: CategoryConsistency, Name: "Consistency", Color: "purple", Icon: "calendar"},
	{ID: CategoryMoney, Name: "Money", Color: "yellow", Icon: "dollar-sign"},
	{ID: CategoryLogging, Name: "Logging", Color: "gray", Icon: "edit"},
	{ID: CategoryMilestone, Name: "Milestone", Color: "gold", Icon: "trophy"},
}

var library = []Template{
	// ── Cigarettes avoided ───────────────────────────────────────────
	{
		ID: "first_five", Name: "The First Five", Category: CategoryProgress,
		Description: "You've avoided 5 cigarettes. Every one counts.",
		BadgeIcon: "award", BadgeColor: "blue",
		TargetValue: 5, ProgressKey: stats.MetricCigarettesAvoided,
		Rules: atLeast(stats.MetricCigarettesAvoided, 5),
	},
	{
		ID: "pack_saver", Name: "Pack Saver", Category: CategoryProgress,
		Description: "You've saved an entire pack!",
		BadgeIcon: "package", BadgeColor: "green",
		TargetValue: 20, ProgressKey: stats.MetricCigarettesAvoided,
		Rules: atLeast(stats.MetricCigarettesAvoided, 20), PreviousID: "first_five",
	},
	{
		ID: "avoider_50", Name: "Avoider: 50 Club", Category: CategoryProgress,
		Description: "You've dodged 50 cigarettes. That's strength.",
		BadgeIcon: "shield", BadgeColor: "blue",
		TargetValue: 50, ProgressKey: stats.MetricCigarettesAvoided,
		Rules: atLeast(stats.MetricCigarettesAvoided, 50), PreviousID: "pack_saver",
	},
	{
		ID: "avoider_elite_100", Name: "Avoider Elite: 100", Category: CategoryProgress,
		Description: "100 cigarettes not smoked. Your lungs love you.",
		BadgeIcon: "trophy", BadgeColor: "purple",
		TargetValue: 100, ProgressKey: stats.MetricCigarettesAvoided,
		Rules: atLeast(stats.MetricCigarettesAvoided, 100), PreviousID: "avoider_50",
	},
	{
		ID: "avoider_champion_500", Name: "Avoider Champion: 500", Category: CategoryProgress,
		Description: "500 cigarettes dodged. You're becoming unstoppable.",
		BadgeIcon: "crown", BadgeColor: "gold",
		TargetValue: 500, ProgressKey: stats.MetricCigarettesAvoided,
		Rules: atLeast(stats.MetricCigarettesAvoided, 500), PreviousID: "avoider_elite_100",
	},

	// ── Life regained ────────────────────────────────────────────────
	{
		ID: "one_hour_healthier", Name: "1 Hour Healthier", Category: CategoryHealth,
		Description: "An hour of life regained through better choices.",
		BadgeIcon: "clock", BadgeColor: "green",
		TargetValue: 60, ProgressKey: stats.MetricLifeRegained,
		Rules: atLeast(stats.MetricLifeRegained, 60),
	},
	{
		ID: "half_day_back", Name: "Half a Day Back", Category: CategoryHealth,
		Description: "12 hours of life regained. Not bad at all.",
		BadgeIcon: "hourglass", BadgeColor: "green",
		TargetValue: 720, ProgressKey: stats.MetricLifeRegained,
		Rules: atLeast(stats.MetricLifeRegained, 720), PreviousID: "one_hour_healthier",
	},
	{
		ID: "full_day_bonus", Name: "Full Day Bonus", Category: CategoryHealth,
		Description: "You just gained back an entire day of life.",
		BadgeIcon: "calendar", BadgeColor: "purple",
		TargetValue: 1440, ProgressKey: stats.MetricLifeRegained,
		Rules: atLeast(stats.MetricLifeRegained, 1440), PreviousID: "half_day_back",
	},

	// ── Money saved ──────────────────────────────────────────────────
	{
		ID: "coffee_on_me", Name: "Coffee on Me", Category: CategoryMoney,
		Description: "Enough saved for a coffee.",
		BadgeIcon: "coffee", BadgeColor: "yellow",
		TargetValue: 5, ProgressKey: stats.MetricMoneySaved,
		Rules: atLeast(stats.MetricMoneySaved, 5),
	},
	{
		ID: "saved_tenner", Name: "Saved a Tenner", Category: CategoryMoney,
		Description: "10 bucks saved. That's a coffee and a snack.",
		BadgeIcon: "dollar-sign", BadgeColor: "yellow",
		TargetValue: 10, ProgressKey: stats.MetricMoneySaved,
		Rules: atLeast(stats.MetricMoneySaved, 10), PreviousID: "coffee_on_me",
	},
	{
		ID: "smokin_saver_100", Name: "Smokin' Saver: $100", Category: CategoryMoney,
		Description: "That's $100 not lit on fire. Nice work.",
		BadgeIcon: "dollar-sign", BadgeColor: "yellow",
		TargetValue: 100, ProgressKey: stats.MetricMoneySaved,
		Rules: atLeast(stats.MetricMoneySaved, 100), PreviousID: "saved_tenner",
	},
	{
		ID: "money_boss_500", Name: "Money Boss: $500", Category: CategoryMoney,
		Description: "Half a grand saved. Still smoke-free.",
		BadgeIcon: "piggy-bank", BadgeColor: "gold",
		TargetValue: 500, ProgressKey: stats.MetricMoneySaved,
		Rules: atLeast(stats.MetricMoneySaved, 500), PreviousID: "smokin_saver_100",
	},

	// ── Daily reduction ──────────────────────────────────────────────
	{
		ID: "half_cut_hero", Name: "Half Cut Hero", Category: CategoryProgress,
		Description: "You've cut your daily smoking by 50%. Respect.",
		BadgeIcon: "trending-down", BadgeColor: "blue",
		TargetValue: 50, ProgressKey: stats.MetricReduction,
		Rules: reducedBy(50), PreviousID: "avoider_champion_500",
	},
	{
		ID: "deep_detox_75", Name: "Deep Detox: -75%", Category: CategoryProgress,
		Description: "You've dropped your habit by 75%. Almost there.",
		BadgeIcon: "trending-down", BadgeColor: "purple",
		TargetValue: 75, ProgressKey: stats.MetricReduction,
		Rules: reducedBy(75), PreviousID: "half_cut_hero",
	},

	// ── Smoke-free days ──────────────────────────────────────────────
	{
		ID: "one_day_wall", Name: "1-Day Wall", Category: CategoryMilestone,
		Description: "You've gone 24 hours without smoking. That's the first wall broken.",
		BadgeIcon: "star", BadgeColor: "green",
		TargetValue: 1, ProgressKey: stats.MetricCurrentStreakDays,
		Rules: atLeast(stats.MetricCurrentStreakDays, 1),
	},
	{
		ID: "week_warrior", Name: "The Week Warrior", Category: CategoryMilestone,
		Description: "7 days clean. That's a full circle.",
		BadgeIcon: "trophy", BadgeColor: "blue",
		TargetValue: 7, ProgressKey: stats.MetricCurrentStreakDays,
		Rules: atLeast(stats.MetricCurrentStreakDays, 7), PreviousID: "one_day_wall",
	},
	{
		ID: "unshakeable_30", Name: "Unshakeable: 30 Days", Category: CategoryMilestone,
		Description: "One full month smoke-free. That's transformation.",
		BadgeIcon: "crown", BadgeColor: "gold",
		TargetValue: 30, ProgressKey: stats.MetricCurrentStreakDays,
		Rules: atLeast(stats.MetricCurrentStreakDays, 30), PreviousID: "week_warrior",
	},

	// ── Logging ──────────────────────────────────────────────────────
	{
		ID: "getting_started", Name: "Getting Started", Category: CategoryLogging,
		Description: "You've logged your very first cigarette. The journey begins.",
		BadgeIcon: "plus-circle", BadgeColor: "green",
		TargetValue: 1, ProgressKey: stats.MetricTotalLogs,
		Rules: atLeast(stats.MetricTotalLogs, 1),
	},
	{
		ID: "daily_logger_3", Name: "Daily Logger: 3 Days", Category: CategoryConsistency,
		Description: "You've logged a cigarette 3 days in a row.",
		BadgeIcon: "calendar", BadgeColor: "purple",
		TargetValue: 3, ProgressKey: stats.MetricLoggingStreakDays,
		Rules: atLeast(stats.MetricLoggingStreakDays, 3),
	},
	{
		ID: "daily_logger_7", Name: "Daily Logger: 7 Days", Category: CategoryConsistency,
		Description: "7 days straight of tracking. That's how change begins.",
		BadgeIcon: "calendar-check", BadgeColor: "purple",
		TargetValue: 7, ProgressKey: stats.MetricLoggingStreakDays,
		Rules: atLeast(stats.MetricLoggingStreakDays, 7), PreviousID: "daily_logger_3",
	},
	{
		ID: "habit_tracker_pro_30", Name: "Habit Tracker Pro: 30 Days", Category: CategoryConsistency,
		Description: "30 days of logs. Win or lose, you're showing up.",
		BadgeIcon: "clipboard-check", BadgeColor: "gold",
		TargetValue: 30, ProgressKey: stats.MetricLoggingStreakDays,
		Rules: atLeast(stats.MetricLoggingStreakDays, 30), PreviousID: "daily_logger_7",
	},
}

var byID = func() map[string]int {
	m := make(map[string]int, len(library))
	for i, t := range library {
		m[t.ID] = i
	}
	return m
}()

// Library returns the full catalog in display order. The slice is a copy.
func Library() []Template {
	out := make([]Template, len(library))
	copy(out, library)
	return out
}

// Lookup finds a template by id.
func Lookup(id string) (Template, bool) {
	i, ok := byID[id]
	if !ok {
		return Template{}, false
	}
	return library[i], true
}

// Categories returns category display metadata.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

// ByCategory groups the catalog, keeping each category's sequence order.
func ByCategory() map[Category][]Template {
	out := make(map[Category][]Template)
	for _, t := range library {
		out[t.Category] = append(out[t.Category], t)
	}
	return out
}
