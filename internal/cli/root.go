package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/quitlog/internal/backup"
	"github.com/julianstephens/quitlog/internal/config"
	"github.com/julianstephens/quitlog/internal/journey"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/notifier"
	"github.com/julianstephens/quitlog/internal/storage"
	"github.com/julianstephens/quitlog/internal/storage/backend"
)

type Context struct {
	Store        storage.Provider
	Kind         backend.Kind
	Settings     config.Config
	SettingsPath string
	// Notify pushes fresh unlocks to the tray app when it is running.
	Notify bool
	// Clock and Out default to time.Now and os.Stdout.
	Clock func() time.Time
	Out   io.Writer
}

// NewService builds a journey service over the loaded store using the
// settings file. extra options are applied last.
func (c *Context) NewService(extra ...journey.Option) (*journey.Service, error) {
	loc, err := c.Settings.Location()
	if err != nil {
		return nil, err
	}
	ttl, err := c.Settings.CacheTTL()
	if err != nil {
		return nil, err
	}

	opts := []journey.Option{
		journey.WithLocation(loc),
		journey.WithCacheTTL(ttl),
		journey.WithSupport(c.Settings.Support.Enabled),
	}
	if c.Clock != nil {
		opts = append(opts, journey.WithClock(c.Clock))
	}
	if c.Notify {
		opts = append(opts, journey.WithNotifier(notifier.New()))
	}
	return journey.New(c.Store, append(opts, extra...)...), nil
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Writer(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Writer(), args...)
}

func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Currency is the display currency: the settings override, then the profile.
func (c *Context) Currency(p models.UserProfile) string {
	if c.Settings.Display.Currency != "" {
		return c.Settings.Display.Currency
	}
	return p.Currency
}

// BackupManager returns a manager for file-backed stores. PostgreSQL
// databases are backed up with their own tooling.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if c.Kind == backend.Postgres {
		return nil, fmt.Errorf("backups are not supported for PostgreSQL, use pg_dump instead")
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ParseLimit parses a daily limit argument. "none" and "off" clear it.
func ParseLimit(s string) (*int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off", "clear":
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid daily limit %q: want a non-negative number or \"none\"", s)
	}
	return &n, nil
}
