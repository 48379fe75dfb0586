// Package backup keeps rotating snapshots of the local quitlog database.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/logger"
)

const (
	minuteLayout = "20060102-1504"
	secondLayout = "20060102-150405"
)

// ErrNoDatabase is returned when there is nothing on disk to back up.
var ErrNoDatabase = errors.New("database does not exist")

// Info describes one backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager creates, lists, rotates and restores backups of a single data file.
// SQLite files are snapshotted with VACUUM INTO; JSON documents are copied.
type Manager struct {
	dataPath  string
	backupDir string
	suffix    string
	keep      int
	now       func() time.Time
}

type Option func(*Manager)

// WithClock overrides the clock used to name backups.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRetention overrides how many backups survive rotation.
func WithRetention(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.keep = n
		}
	}
}

func NewManager(dataPath string, opts ...Option) *Manager {
	suffix := constants.BackupFileSuffix
	if strings.EqualFold(filepath.Ext(dataPath), ".json") {
		suffix = ".json"
	}
	m := &Manager{
		dataPath:  dataPath,
		backupDir: filepath.Join(filepath.Dir(dataPath), constants.BackupDirName),
		suffix:    suffix,
		keep:      constants.MaxBackups,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) BackupDir() string {
	return m.backupDir
}

func (m *Manager) isJSON() bool {
	return m.suffix == ".json"
}

// CreateBackup snapshots the data file and rotates old backups.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(true)
}

func (m *Manager) createBackup(rotate bool) (string, error) {
	if _, err := os.Stat(m.dataPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNoDatabase, m.dataPath)
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest, err := m.nextPath()
	if err != nil {
		return "", err
	}

	if m.isJSON() {
		err = copyFile(m.dataPath, dest)
	} else {
		err = m.vacuumInto(dest)
	}
	if err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}
	logger.Debug("Created backup", "path", dest)

	if rotate {
		if err := m.rotate(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	return dest, nil
}

// nextPath names a backup after the current minute, falling back to
// seconds and then a counter when names collide.
func (m *Manager) nextPath() (string, error) {
	now := m.now()
	candidate := m.pathFor(now.Format(minuteLayout))
	if !exists(candidate) {
		return candidate, nil
	}
	stamp := now.Format(secondLayout)
	candidate = m.pathFor(stamp)
	for n := 1; exists(candidate); n++ {
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		candidate = m.pathFor(stamp + "-" + strconv.Itoa(n))
	}
	return candidate, nil
}

func (m *Manager) pathFor(stamp string) string {
	return filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+m.suffix)
}

func (m *Manager) vacuumInto(dest string) error {
	src, err := sql.Open("sqlite", m.dataPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer src.Close()

	var count int
	if err := src.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := src.Exec("VACUUM INTO ?", dest); err != nil {
		logger.Debug("VACUUM INTO failed, copying file instead", "error", err)
		src.Close()
		return copyFile(m.dataPath, dest)
	}
	return nil
}

// parseStamp reads the timestamp and optional counter out of a backup name.
func parseStamp(stamp string) (time.Time, int, bool) {
	counter := 0
	if i := strings.LastIndex(stamp, "-"); i > 0 && strings.Count(stamp, "-") == 2 {
		n, err := strconv.Atoi(stamp[i+1:])
		if err != nil {
			return time.Time{}, 0, false
		}
		counter = n
		stamp = stamp[:i]
	}
	for _, layout := range []string{minuteLayout, secondLayout} {
		if ts, err := time.ParseInLocation(layout, stamp, time.Local); err == nil {
			return ts, counter, true
		}
	}
	return time.Time{}, 0, false
}

// ListBackups returns backups newest first.
func (m *Manager) ListBackups() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type ranked struct {
		Info
		counter int
	}
	var found []ranked
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, m.suffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), m.suffix)
		ts, counter, ok := parseStamp(stamp)
		if !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, ranked{
			Info:    Info{Path: filepath.Join(m.backupDir, name), Timestamp: ts, Size: fi.Size()},
			counter: counter,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if !found[i].Timestamp.Equal(found[j].Timestamp) {
			return found[i].Timestamp.After(found[j].Timestamp)
		}
		return found[i].counter > found[j].counter
	})

	out := make([]Info, len(found))
	for i, r := range found {
		out[i] = r.Info
	}
	return out, nil
}

func (m *Manager) rotate() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup replaces the data file with the backup at path. The current
// file is snapshotted first; that snapshot's path is returned (empty when
// there was no current file).
func (m *Manager) RestoreBackup(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("backup file does not exist: %s", path)
	}
	if err := m.Verify(path); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var previous string
	if exists(m.dataPath) {
		p, err := m.createBackup(false)
		if err != nil {
			return "", fmt.Errorf("failed to back up current database before restore: %w", err)
		}
		previous = p
	}

	tmp := m.dataPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return previous, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dataPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return previous, fmt.Errorf("failed to restore database: %w", err)
	}
	logger.Info("Restored backup", "from", path, "previous", previous)
	return previous, nil
}

// Verify checks that path holds a readable backup of the right kind.
func (m *Manager) Verify(path string) error {
	if m.isJSON() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			return fmt.Errorf("not a JSON document")
		}
		return nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
