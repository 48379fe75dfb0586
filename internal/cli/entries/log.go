package entries

import (
	"context"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/forms"
	"github.com/julianstephens/quitlog/internal/journey"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/utils"
)

type LogCmd struct {
	Detailed bool   `help:"Ask where you were, what triggered it and for notes."`
	At       string `help:"When it happened: RFC 3339, \"YYYY-MM-DD HH:MM\" or \"HH:MM\" today. Defaults to now."`
	Location string `help:"Where you were (home, work, car, outside, social, other)."`
	Trigger  string `help:"What set it off (stress, boredom, habit, social, craving, after_meal, break, other)."`
	Notes    string `help:"Free-form notes."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}

	entry := models.SmokingEntry{
		Location: constants.Location(c.Location),
		Trigger:  constants.Trigger(c.Trigger),
		Notes:    c.Notes,
	}
	if c.At != "" {
		at, err := utils.ParseMoment(c.At, svc.Now(), svc.Location())
		if err != nil {
			return err
		}
		entry.Timestamp = at
	}

	if c.Detailed && c.Location == "" && c.Trigger == "" && c.Notes == "" {
		fm := &forms.EntryFormModel{}
		if err := forms.NewEntryForm(fm).Run(); err != nil {
			return err
		}
		entry = fm.Entry(entry)
	}

	res, err := svc.LogEntry(context.Background(), entry)
	if err != nil {
		return err
	}

	kind := "Quick log"
	if !res.Entry.QuickLog {
		kind = "Logged"
	}
	ctx.Printf("✓ %s at %s\n", kind, res.Entry.Timestamp.In(svc.Location()).Format(constants.DateFormat+" "+constants.TimeFormat))
	printToday(ctx, res.Dashboard)
	if p := res.Dashboard.Pending; p != nil {
		ctx.Printf("🏆 Achievement unlocked: %s (%s)\n", p.Title, p.Description)
	}
	if res.AskSupport {
		ctx.Println("💛 Enjoying quitlog? Consider supporting the project.")
	}
	return nil
}

// printToday reports today's count against the daily limit.
func printToday(ctx *cli.Context, d journey.Dashboard) {
	limit := d.Profile.DailyLimit
	if limit == nil {
		ctx.Printf("  Today: %d\n", d.TodayCount)
		return
	}
	ctx.Printf("  Today: %d of %d\n", d.TodayCount, *limit)
	switch d.LimitStatus {
	case constants.LimitNear:
		ctx.Println("  ⚠️  You are close to your daily limit.")
	case constants.LimitOver:
		ctx.Printf("  ❌ Over your daily limit by %d.\n", d.TodayCount-*limit)
	}
}
