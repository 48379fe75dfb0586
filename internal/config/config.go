// Package config loads the optional quitlog.toml settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/utils"
)

type Config struct {
	Display DisplayConfig `toml:"display"`
	Cache   CacheConfig   `toml:"cache"`
	API     APIConfig     `toml:"api"`
	Support SupportConfig `toml:"support"`
	Log     LogConfig     `toml:"log"`
}

// DisplayConfig overrides how numbers and days are shown. An empty
// currency defers to the profile; an empty timezone means the local zone.
type DisplayConfig struct {
	Currency string `toml:"currency"`
	Timezone string `toml:"timezone"`
}

type CacheConfig struct {
	TTL string `toml:"ttl"`
}

type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	Metrics     bool     `toml:"metrics"`
}

type SupportConfig struct {
	Enabled bool `toml:"enabled"`
}

// LogConfig sets the file log level. --debug overrides it.
type LogConfig struct {
	Level string `toml:"level"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

func Default() Config {
	return Config{
		Cache: CacheConfig{TTL: constants.DefaultCacheTTL.String()},
		API: APIConfig{
			Host:        constants.DefaultAPIHost,
			Port:        constants.DefaultAPIPort,
			CORSOrigins: []string{"http://localhost:5173"},
			Metrics:     true,
		},
		Support: SupportConfig{Enabled: true},
		Log:     LogConfig{Level: "warn"},
	}
}

// DefaultPath is the settings file beside the default database.
func DefaultPath() string {
	return filepath.Join(filepath.Dir(ExpandPath(constants.DefaultConfigPath)), constants.DefaultSettingsFile)
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	path = ExpandPath(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func (c Config) Validate() error {
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.Display.Timezone != "" {
		if !utils.ValidateTimezone(c.Display.Timezone) {
			return fmt.Errorf("unknown timezone %q", c.Display.Timezone)
		}
	}
	if c.Display.Currency != "" && len(c.Display.Currency) != 3 {
		return fmt.Errorf("currency must be a 3-letter code, got %q", c.Display.Currency)
	}
	if c.Log.Level != "" && !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log level must be one of %v, got %q", logLevels, c.Log.Level)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api port %d is outside 0-65535", c.API.Port)
	}
	return nil
}

// CacheTTL parses the cache TTL; empty means the default.
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return constants.DefaultCacheTTL, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("cache ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("cache ttl must not be negative")
	}
	return d, nil
}

// Location resolves the display timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Display.Timezone == "" {
		return time.Local, nil
	}
	return utils.LoadLocation(c.Display.Timezone)
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// ExpandPath resolves a leading ~/ against the home directory.
func ExpandPath(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
