package backups

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/config"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/storage/backend"
	"github.com/julianstephens/quitlog/internal/storage/sqlite"
)

func setupTestBackupDB(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "quitlog.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	out := &bytes.Buffer{}
	return &cli.Context{Store: store, Kind: backend.SQLite, Settings: config.Default(), Out: out}, out, dbPath
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, out, dbPath := setupTestBackupDB(t)

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if !strings.Contains(out.String(), "Backup created: quitlog-") {
		t.Errorf("unexpected output: %s", out.String())
	}

	files, err := os.ReadDir(filepath.Join(filepath.Dir(dbPath), "backups"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d backup files, want 1", len(files))
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list failed: %v", err)
	}
	if !strings.Contains(out.String(), files[0].Name()) {
		t.Errorf("list does not mention %s:\n%s", files[0].Name(), out.String())
	}
}

func TestBackupListEmpty(t *testing.T) {
	ctx, out, _ := setupTestBackupDB(t)
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, out, dbPath := setupTestBackupDB(t)

	if _, err := ctx.Store.AddEntry(models.SmokingEntry{Timestamp: time.Now(), Notes: "before backup"}); err != nil {
		t.Fatal(err)
	}
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out.String()), "✓ Backup created:"))

	if _, err := ctx.Store.AddEntry(models.SmokingEntry{Timestamp: time.Now(), Notes: "after backup"}); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&BackupRestoreCmd{BackupFile: name, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Database restored successfully") {
		t.Errorf("unexpected output: %s", out.String())
	}

	restored := sqlite.NewStore(dbPath)
	if err := restored.Load(); err != nil {
		t.Fatal(err)
	}
	defer restored.Close()
	list, err := restored.ListEntries(models.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Notes != "before backup" {
		t.Errorf("entries after restore = %+v", list)
	}
}

func TestBackupRestoreMissing(t *testing.T) {
	ctx, _, _ := setupTestBackupDB(t)
	err := (&BackupRestoreCmd{BackupFile: "quitlog-19990101-0000.db", Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestBackupPostgresUnsupported(t *testing.T) {
	ctx, _, _ := setupTestBackupDB(t)
	ctx.Kind = backend.Postgres
	if err := (&BackupCreateCmd{}).Run(ctx); err == nil {
		t.Error("expected error for PostgreSQL backups")
	}
}
