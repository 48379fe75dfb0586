package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/config"
	"github.com/julianstephens/quitlog/internal/keyring"
	"github.com/julianstephens/quitlog/internal/logger"
)

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *cli.Context) error {
	ctx.Printf("# settings: %s\n", ctx.SettingsPath)
	ctx.Printf("# database: %s (%s)\n", keyring.MaskPassword(ctx.Store.GetConfigPath()), ctx.Kind)
	if path := logger.Path(); path != "" {
		ctx.Printf("# log file: %s\n", path)
	}
	ctx.Println()
	return toml.NewEncoder(ctx.Writer()).Encode(ctx.Settings)
}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing settings file."`
}

func (c *ConfigInitCmd) Run(ctx *cli.Context) error {
	path := ctx.SettingsPath
	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("settings file already exists at %s (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	ctx.Printf("✓ Wrote default settings to %s\n", path)
	return nil
}
