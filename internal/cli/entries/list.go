package entries

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/utils"
)

type ListCmd struct {
	Since    string `help:"Only entries on or after this day (YYYY-MM-DD)."`
	Limit    int    `help:"Show at most this many entries." default:"20"`
	Cravings bool   `help:"List cravings instead of cigarettes."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	loc := svc.Location()

	opts := models.ListOptions{Sort: models.SortDesc, Limit: c.Limit}
	if c.Since != "" {
		since, err := utils.ParseDateInLocation(c.Since, loc)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		opts.Since = &since
	}

	w := tabwriter.NewWriter(ctx.Writer(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	if c.Cravings {
		cravings, err := svc.Cravings(opts)
		if err != nil {
			return err
		}
		if len(cravings) == 0 {
			ctx.Println("No cravings logged.")
			return nil
		}
		fmt.Fprintln(w, "ID\tWHEN\tINTENSITY\tTRIGGER\tRESISTED\tSTRATEGY")
		for _, cr := range cravings {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				shortID(cr.ID), stamp(cr.Timestamp, loc), cr.Intensity, dash(string(cr.Trigger)), yesNo(cr.Resisted), dash(cr.Strategy))
		}
		return nil
	}

	list, err := svc.Entries(opts)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ctx.Println("No entries logged.")
		return nil
	}
	fmt.Fprintln(w, "ID\tWHEN\tLOCATION\tTRIGGER\tNOTES")
	for _, e := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(e.ID), stamp(e.Timestamp, loc), dash(string(e.Location)), dash(string(e.Trigger)), dash(oneLine(e.Notes)))
	}
	return nil
}

type DeleteCmd struct {
	ID      string `arg:"" help:"Entry ID, or a unique prefix of it."`
	Craving bool   `help:"Delete a craving instead of a cigarette."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}

	if c.Craving {
		cravings, err := svc.Cravings(models.ListOptions{})
		if err != nil {
			return err
		}
		ids := make([]string, len(cravings))
		for i, cr := range cravings {
			ids[i] = cr.ID
		}
		id, err := resolveID(c.ID, ids)
		if err != nil {
			return err
		}
		if err := svc.DeleteCraving(id); err != nil {
			return err
		}
		ctx.Printf("✓ Deleted craving %s\n", shortID(id))
		return nil
	}

	list, err := svc.Entries(models.ListOptions{})
	if err != nil {
		return err
	}
	ids := make([]string, len(list))
	for i, e := range list {
		ids[i] = e.ID
	}
	id, err := resolveID(c.ID, ids)
	if err != nil {
		return err
	}
	if err := svc.DeleteEntry(id); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted entry %s\n", shortID(id))
	return nil
}

// resolveID expands a unique prefix to a full ID.
func resolveID(prefix string, ids []string) (string, error) {
	var match string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("no entry with id %q", prefix)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func stamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.DateFormat + " " + constants.TimeFormat)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}
