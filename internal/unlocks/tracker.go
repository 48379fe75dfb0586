// Package unlocks decides which completed achievement the user has not been
// told about yet.
package unlocks

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/storage"
)

// StateStore is the key/value area the shown-set lives in.
type StateStore interface {
	GetState(key string) (string, error)
	SetState(key, value string) error
}

// Tracker remembers which unlocks were already shown. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	store   StateStore
	shown   []string
	seen    map[string]struct{}
	pending *models.AchievementRecord
}

// NewTracker loads the persisted shown-set. A missing or unreadable value
// starts an empty set.
func NewTracker(store StateStore) *Tracker {
	t := &Tracker{store: store, seen: make(map[string]struct{})}
	t.load()
	return t
}

func (t *Tracker) load() {
	raw, err := t.store.GetState(constants.StateShownAwards)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("Failed to read shown notifications, starting empty", "error", err)
		}
		return
	}
	if raw == "" {
		return
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logger.Warn("Shown notifications state is corrupt, starting empty", "error", err)
		return
	}
	for _, id := range ids {
		t.add(id)
	}
}

func (t *Tracker) add(id string) bool {
	if _, ok := t.seen[id]; ok {
		return false
	}
	t.seen[id] = struct{}{}
	t.shown = append(t.shown, id)
	return true
}

// Check picks the newest completed record that was not shown yet and makes
// it the pending notification. It returns nil when there is nothing new.
func (t *Tracker) Check(records []models.AchievementRecord) *models.AchievementRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	var newest *models.AchievementRecord
	for i := range records {
		r := &records[i]
		if !r.IsCompleted || r.CompletedDate == nil {
			continue
		}
		if _, ok := t.seen[r.ID]; ok {
			continue
		}
		if newest == nil || r.CompletedDate.After(*newest.CompletedDate) ||
			(r.CompletedDate.Equal(*newest.CompletedDate) && r.ID < newest.ID) {
			newest = r
		}
	}

	if newest == nil {
		t.pending = nil
		return nil
	}
	rec := *newest
	t.pending = &rec
	return &rec
}

// Pending returns the current pending notification, if any.
func (t *Tracker) Pending() *models.AchievementRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return nil
	}
	rec := *t.pending
	return &rec
}

// MarkShown records id as shown and persists the set. Marking an id twice
// is a no-op.
func (t *Tracker) MarkShown(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[id]; ok {
		t.clearPending(id)
		return nil
	}

	// The set only grows in memory once the store has it.
	next := append(slices.Clone(t.shown), id)
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode shown notifications: %w", err)
	}
	if err := t.store.SetState(constants.StateShownAwards, string(data)); err != nil {
		return fmt.Errorf("failed to save shown notifications: %w", err)
	}
	t.add(id)
	t.clearPending(id)
	return nil
}

func (t *Tracker) clearPending(id string) {
	if t.pending != nil && t.pending.ID == id {
		t.pending = nil
	}
}

// Dismiss clears the pending notification without marking it shown.
func (t *Tracker) Dismiss() {
	t.mu.Lock()
	t.pending = nil
	t.mu.Unlock()
}

// Shown returns the shown ids in the order they were recorded.
func (t *Tracker) Shown() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.shown))
	copy(out, t.shown)
	return out
}
