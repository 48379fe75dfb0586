package progress

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/stats"
)

type HistoryCmd struct {
	Days int `help:"Number of days to show, ending today." default:"7"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 || c.Days > 90 {
		return fmt.Errorf("--days must be between 1 and 90")
	}
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	snap, err := svc.Snapshot()
	if err != nil {
		return err
	}
	goals, err := svc.Goals()
	if err != nil {
		return err
	}

	from := snap.Now.AddDate(0, 0, -(c.Days - 1))
	days := stats.DailyCounts(snap.Stats.ValidEntries, goals, &snap.Profile, from, snap.Now, svc.Location())

	peak := 1
	total := 0
	for _, d := range days {
		total += d.Count
		if d.Count > peak {
			peak = d.Count
		}
		if d.Goal != nil && *d.Goal > peak {
			peak = *d.Goal
		}
	}

	w := tabwriter.NewWriter(ctx.Writer(), 0, 0, 2, ' ', 0)
	for _, d := range days {
		goal := "-"
		mark := ""
		if d.Goal != nil {
			goal = fmt.Sprintf("%d", *d.Goal)
			if d.Count > *d.Goal {
				mark = " over"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d\tlimit %s%s\n", d.Day, strings.Repeat("█", d.Count*20/peak), d.Count, goal, mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	ctx.Printf("\n%d cigarettes over %d days (%.1f per day)\n", total, c.Days, float64(total)/float64(c.Days))
	return nil
}

type TriggersCmd struct {
	Heatmap bool `help:"Also show when you smoke, in 4-hour blocks over the last week."`
}

func (c *TriggersCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	snap, err := svc.Snapshot()
	if err != nil {
		return err
	}
	valid := snap.Stats.ValidEntries
	if len(valid) == 0 {
		ctx.Println("No entries logged yet.")
		return nil
	}

	printBuckets(ctx, "Triggers", stats.TriggerBreakdown(valid), len(valid))
	ctx.Println()
	printBuckets(ctx, "Locations", stats.LocationBreakdown(valid), len(valid))

	if c.Heatmap {
		ctx.Println()
		ctx.Println("Time of day   00  04  08  12  16  20")
		from := snap.Now.AddDate(0, 0, -6)
		for _, row := range stats.HeatMap(valid, from, snap.Now, svc.Location()) {
			cells := make([]string, len(row.Blocks))
			for i, n := range row.Blocks {
				cells[i] = fmt.Sprintf("%3d", n)
			}
			ctx.Printf("%s  %s\n", row.Day, strings.Join(cells, " "))
		}
	}
	return nil
}

func printBuckets(ctx *cli.Context, title string, buckets []stats.Bucket, total int) {
	ctx.Println(title)
	w := tabwriter.NewWriter(ctx.Writer(), 0, 0, 2, ' ', 0)
	for _, b := range buckets {
		fmt.Fprintf(w, "  %s\t%d\t%.0f%%\n", b.Name, b.Count, float64(b.Count)*100/float64(total))
	}
	_ = w.Flush()
}

func writeJSON(ctx *cli.Context, v interface{}) error {
	enc := json.NewEncoder(ctx.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
