package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/keyring"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/storage"
	"github.com/julianstephens/quitlog/internal/storage/backend"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing database file before initializing."`
	Source string `help:"Database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.Kind != backend.Postgres {
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" {
			absDB, errDB := filepath.Abs(dbPath)
			absSrc, errSrc := filepath.Abs(c.Source)
			if errDB == nil && errSrc == nil && absDB == absSrc {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized quitlog storage at: %s\n", keyring.MaskPassword(ctx.Store.GetConfigPath()))

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", keyring.MaskPassword(c.Source))
		n, err := copyFrom(c.Source, ctx.Store)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Printf("✓ Copied %d records\n", n)
	}
	return nil
}

// copyFrom copies every record and known state key from the store at
// source into dst, preserving IDs and timestamps.
func copyFrom(source string, dst storage.Provider) (int, error) {
	src, _, err := backend.New(source)
	if err != nil {
		return 0, err
	}
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	n := 0
	profile, err := src.GetProfile()
	switch {
	case err == nil:
		if err := dst.SaveProfile(profile); err != nil {
			return n, fmt.Errorf("failed to copy profile: %w", err)
		}
		n++
	case !errors.Is(err, storage.ErrNotFound):
		return n, err
	}

	all := models.ListOptions{Sort: models.SortAsc}
	entries, err := src.ListEntries(all)
	if err != nil {
		return n, err
	}
	for _, e := range entries {
		if _, err := dst.AddEntry(e); err != nil {
			return n, fmt.Errorf("failed to copy entry %s: %w", e.ID, err)
		}
		n++
	}

	cravings, err := src.ListCravings(all)
	if err != nil {
		return n, err
	}
	for _, cr := range cravings {
		if _, err := dst.AddCraving(cr); err != nil {
			return n, fmt.Errorf("failed to copy craving %s: %w", cr.ID, err)
		}
		n++
	}

	goals, err := src.ListGoals()
	if err != nil {
		return n, err
	}
	for _, g := range goals {
		if _, err := dst.AddGoal(g); err != nil {
			return n, fmt.Errorf("failed to copy goal %s: %w", g.ID, err)
		}
		n++
	}

	records, err := src.ListAchievements()
	if err != nil {
		return n, err
	}
	for _, r := range records {
		if _, err := dst.AddAchievement(r); err != nil {
			return n, fmt.Errorf("failed to copy achievement %s: %w", r.ID, err)
		}
		n++
	}

	for _, key := range []string{constants.StateShownAwards, constants.StateSupportData, constants.StateOnboardingDone} {
		v, err := src.GetState(key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		if err := dst.SetState(key, v); err != nil {
			return n, err
		}
	}
	logger.Info("Copied data between stores", "records", n)
	return n, nil
}
