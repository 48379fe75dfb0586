package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/journey"
	"github.com/julianstephens/quitlog/internal/stats"
	"github.com/julianstephens/quitlog/internal/streaks"
)

type StatsCmd struct {
	JSON bool `help:"Print the dashboard as JSON."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	d, err := svc.Refresh(context.Background())
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(ctx, d)
	}
	if !d.Onboarded {
		ctx.Println("No journey yet. Run 'quitlog onboard' to set your baseline.")
		return nil
	}

	s := d.Stats
	name := d.Profile.DisplayName
	if name == "" {
		name = "you"
	}
	ctx.Printf("Journey for %s, day %d\n\n", name, s.DaysSinceOnboarding)
	ctx.Printf("  Smoke-free now     %s\n", streaks.FormatDuration(d.Streaks.Current))
	ctx.Printf("  Cigarettes avoided %s\n", trimFloat(s.CigarettesAvoided))
	ctx.Printf("  Money saved        %s\n", stats.FormatMoney(s.MoneySaved, ctx.Currency(d.Profile)))
	ctx.Printf("  Life regained      %s\n", streaks.FormatLifeMinutes(s.LifeRegainedMinutes))
	ctx.Printf("  Daily average      %.1f (baseline %s)\n", s.CurrentDailyAvg, trimFloat(s.BaselineCigarettesPerDay))
	ctx.Printf("  Reduction          %.0f%%\n", s.ReductionPercentage)
	ctx.Printf("  Logged             %d cigarettes, %d-day logging streak\n", s.TotalLogs, s.LoggingStreakDays)
	printLimit(ctx, d)

	if len(d.Unlocked) > 0 {
		titles := make([]string, len(d.Unlocked))
		for i, r := range d.Unlocked {
			titles[i] = r.Title
		}
		ctx.Printf("\n🏆 Newly unlocked: %s\n", strings.Join(titles, ", "))
	}
	return nil
}

type StreakCmd struct{}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	snap, err := svc.Snapshot()
	if err != nil {
		return err
	}
	if !snap.Onboarded {
		ctx.Println("No journey yet. Run 'quitlog onboard' to set your baseline.")
		return nil
	}
	ctx.Printf("Current smoke-free streak: %s\n", streaks.FormatDuration(snap.Streaks.Current))
	ctx.Printf("Best smoke-free streak:    %s\n", streaks.FormatDuration(snap.Streaks.Best))
	ctx.Printf("Logging streak:            %d day(s)\n", snap.Stats.LoggingStreakDays)
	return nil
}

func printLimit(ctx *cli.Context, d journey.Dashboard) {
	if d.Profile.DailyLimit == nil {
		ctx.Printf("  Today              %d\n", d.TodayCount)
		return
	}
	ctx.Printf("  Today              %d of %d (%s)\n", d.TodayCount, *d.Profile.DailyLimit, d.LimitStatus)
}

// trimFloat prints whole numbers without a fraction.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.1f", f)
}
