package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func newTestNotifier(t *testing.T, exe string) (*Notifier, string) {
	t.Helper()
	base := t.TempDir()
	n := New()
	n.configDir = func() (string, error) { return base, nil }
	n.findProcess = func(pid int) (ps.Process, error) {
		if exe == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
	dir := filepath.Join(base, constants.TrayAppIdentifier)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	return n, dir
}

func writeLockfile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, constants.NotifierLockfileName), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestTrayConfigDir(t *testing.T) {
	n, dir := newTestNotifier(t, constants.TrayAppExecutable)

	got, err := n.TrayConfigDir()
	if err != nil || got != dir {
		t.Errorf("TrayConfigDir() = %q, %v, want %q", got, err, dir)
	}

	custom := "/custom/quitlog/dir"
	settings := fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, custom)
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = n.TrayConfigDir()
	if err != nil || got != custom {
		t.Errorf("TrayConfigDir() = %q, %v, want %q", got, err, custom)
	}
}

func TestReadLockfile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		exe     string
		wantErr error
	}{
		{"valid", "8080|1234|s3cret", constants.TrayAppExecutable, nil},
		{"valid with suffix", "8080|1234|s3cret\n", constants.TrayAppExecutable + ".exe", nil},
		{"too few parts", "8080|1234", constants.TrayAppExecutable, ErrBadLockfile},
		{"bad port", "http|1234|s", constants.TrayAppExecutable, ErrBadLockfile},
		{"port out of range", "70000|1234|s", constants.TrayAppExecutable, ErrBadLockfile},
		{"bad pid", "8080|abc|s", constants.TrayAppExecutable, ErrBadLockfile},
		{"empty secret", "8080|1234| ", constants.TrayAppExecutable, ErrBadLockfile},
		{"no process", "8080|1234|s", "", ErrTrayNotRunning},
		{"wrong process", "8080|1234|s", "bash", ErrTrayNotRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, dir := newTestNotifier(t, tt.exe)
			writeLockfile(t, dir, tt.content)
			port, secret, err := n.readLockfile(filepath.Join(dir, constants.NotifierLockfileName))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("readLockfile() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("readLockfile() failed: %v", err)
			}
			if port != 8080 || secret != "s3cret" {
				t.Errorf("readLockfile() = %d, %q", port, secret)
			}
		})
	}
}

func TestSendWithoutTray(t *testing.T) {
	n, _ := newTestNotifier(t, constants.TrayAppExecutable)
	err := n.Send(context.Background(), Payload{Text: "hi"})
	if !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("Send() error = %v, want ErrTrayNotRunning", err)
	}
}

func TestNotifyUnlock(t *testing.T) {
	var got Payload
	var gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get(constants.TraySecretHeader)
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	n, dir := newTestNotifier(t, constants.TrayAppExecutable)
	writeLockfile(t, dir, u.Port()+"|42|topsecret")

	rec := models.AchievementRecord{Title: "First Day", Description: "One day in", BadgeIcon: "star"}
	if err := n.NotifyUnlock(context.Background(), rec); err != nil {
		t.Fatalf("NotifyUnlock() failed: %v", err)
	}
	if gotSecret != "topsecret" {
		t.Errorf("secret header = %q, want topsecret", gotSecret)
	}
	if got.Text != "First Day: One day in" || got.Icon != "star" || got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("payload = %+v", got)
	}
}

func TestSendReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	n, dir := newTestNotifier(t, constants.TrayAppExecutable)
	writeLockfile(t, dir, u.Port()+"|42|wrong")

	if err := n.Send(context.Background(), Payload{Text: "x"}); err == nil {
		t.Error("Send() should fail on a non-200 response")
	}
}
