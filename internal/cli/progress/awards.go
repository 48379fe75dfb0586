package progress

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/julianstephens/quitlog/internal/awards"
	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/journey"
)

type AwardsCmd struct {
	All      bool   `help:"Include achievements that are still in progress."`
	Category string `help:"Only show one category (progress, health, consistency, money, logging, milestone)."`
}

func (c *AwardsCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	d, err := svc.Refresh(context.Background())
	if err != nil {
		return err
	}
	if !d.Onboarded {
		ctx.Println("No journey yet. Run 'quitlog onboard' to set your baseline.")
		return nil
	}

	views := filterViews(d.Achievements, c.All, awards.Category(c.Category))
	if len(views) == 0 {
		if c.All {
			ctx.Println("No achievements match.")
		} else {
			ctx.Println("No achievements unlocked yet. Use --all to see what is coming.")
		}
		return nil
	}

	done := 0
	for _, v := range d.Achievements {
		if v.Record.IsCompleted {
			done++
		}
	}
	ctx.Printf("%d of %d achievements unlocked\n\n", done, len(d.Achievements))

	w := tabwriter.NewWriter(ctx.Writer(), 0, 0, 2, ' ', 0)
	defer w.Flush()
	for _, v := range views {
		r := v.Record
		status := fmt.Sprintf("%s %3d%%", bar(v.Percent, 10), v.Percent)
		switch {
		case r.IsCompleted && r.CompletedDate != nil:
			status = "✓ " + r.CompletedDate.In(svc.Location()).Format("Jan 2")
		case v.Locked:
			status = "🔒 " + status
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\n", r.BadgeIcon, r.Title, v.Category, r.Description, status)
	}
	return nil
}

func filterViews(views []journey.AchievementView, all bool, category awards.Category) []journey.AchievementView {
	var out []journey.AchievementView
	for _, v := range views {
		if !all && !v.Record.IsCompleted {
			continue
		}
		if category != "" && v.Category != category {
			continue
		}
		out = append(out, v)
	}
	return out
}

// bar renders percent as a fixed-width text progress bar.
func bar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
