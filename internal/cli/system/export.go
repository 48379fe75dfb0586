package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/storage"
)

// Export is the full data dump written by 'quitlog export'.
type Export struct {
	App          string                     `json:"app" yaml:"app"`
	Version      string                     `json:"version" yaml:"version"`
	ExportedAt   time.Time                  `json:"exported_at" yaml:"exported_at"`
	Profile      *models.UserProfile        `json:"profile" yaml:"profile"`
	Entries      []models.SmokingEntry      `json:"entries" yaml:"entries"`
	Cravings     []models.CravingEntry      `json:"cravings" yaml:"cravings"`
	Goals        []models.GoalHistoryRecord `json:"goals" yaml:"goals"`
	Achievements []models.AchievementRecord `json:"achievements" yaml:"achievements"`
}

type ExportCmd struct {
	Format string `help:"Output format." enum:"json,yaml" default:"json"`
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	dump, err := collect(ctx)
	if err != nil {
		return err
	}

	var w io.Writer = ctx.Writer()
	if c.Output != "" {
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Output, err)
		}
		defer f.Close()
		w = f
	}

	switch c.Format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(dump); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dump); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
	}

	if c.Output != "" {
		ctx.Printf("✓ Exported %d entries to %s\n", len(dump.Entries), c.Output)
	}
	return nil
}

func collect(ctx *cli.Context) (Export, error) {
	now := time.Now
	if ctx.Clock != nil {
		now = ctx.Clock
	}
	dump := Export{App: constants.AppName, Version: constants.Version, ExportedAt: now().UTC()}

	p, err := ctx.Store.GetProfile()
	switch {
	case err == nil:
		dump.Profile = &p
	case !errors.Is(err, storage.ErrNotFound):
		return dump, err
	}

	all := models.ListOptions{Sort: models.SortAsc}
	if dump.Entries, err = ctx.Store.ListEntries(all); err != nil {
		return dump, err
	}
	if dump.Cravings, err = ctx.Store.ListCravings(all); err != nil {
		return dump, err
	}
	if dump.Goals, err = ctx.Store.ListGoals(); err != nil {
		return dump, err
	}
	if dump.Achievements, err = ctx.Store.ListAchievements(); err != nil {
		return dump, err
	}
	return dump, nil
}
