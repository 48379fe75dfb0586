// Package notifier pushes unlock toasts to the quitlog tray companion.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
)

var (
	// ErrTrayNotRunning means there is no live tray process to talk to.
	ErrTrayNotRunning = errors.New(constants.TrayAppExecutable + " is not running")
	ErrBadLockfile    = errors.New("tray lockfile is malformed")
)

type Payload struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	Icon       string `json:"icon,omitempty"`
	DurationMs uint32 `json:"duration_ms"`
}

type Notifier struct {
	configDir   func() (string, error)
	findProcess func(int) (ps.Process, error)
	client      *http.Client
}

func New() *Notifier {
	return &Notifier{
		configDir:   os.UserConfigDir,
		findProcess: ps.FindProcess,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// NotifyUnlock announces a completed achievement.
func (n *Notifier) NotifyUnlock(ctx context.Context, r models.AchievementRecord) error {
	return n.Send(ctx, Payload{
		Title:      "Achievement unlocked",
		Text:       fmt.Sprintf("%s: %s", r.Title, r.Description),
		Icon:       r.BadgeIcon,
		DurationMs: constants.NotificationDurationMs,
	})
}

func (n *Notifier) Send(ctx context.Context, p Payload) error {
	dir, err := n.TrayConfigDir()
	if err != nil {
		return err
	}
	port, secret, err := n.readLockfile(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}
	return n.post(ctx, port, secret, p)
}

// TrayConfigDir returns the tray app's config directory, honouring a
// lockfile_dir override in its settings.json.
func (n *Notifier) TrayConfigDir() (string, error) {
	base, err := n.configDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	dir := filepath.Join(base, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		return dir, nil
	}
	var settings struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &settings); err == nil {
		if d := settings.Settings.LockfileDir; d != nil && *d != "" {
			return *d, nil
		}
	}
	return dir, nil
}

// readLockfile parses "port|pid|secret" and checks pid belongs to the tray app.
func (n *Notifier) readLockfile(path string) (int, string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, "", ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return 0, "", ErrBadLockfile
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, "", fmt.Errorf("%w: invalid port %q", ErrBadLockfile, parts[0])
	}
	if port < 1 || port > 65535 {
		return 0, "", fmt.Errorf("%w: port %d is outside 1-65535", ErrBadLockfile, port)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, "", fmt.Errorf("%w: invalid process ID %q", ErrBadLockfile, parts[1])
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return 0, "", fmt.Errorf("%w: empty secret", ErrBadLockfile)
	}

	proc, err := n.findProcess(pid)
	if err != nil || proc == nil {
		return 0, "", ErrTrayNotRunning
	}
	if !strings.HasPrefix(proc.Executable(), constants.TrayAppExecutable) {
		return 0, "", fmt.Errorf("%w: pid %d is %s", ErrTrayNotRunning, pid, proc.Executable())
	}
	return port, secret, nil
}

func (n *Notifier) post(ctx context.Context, port int, secret string, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("http://127.0.0.1:%d", port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.TraySecretHeader, secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(msg))
}
