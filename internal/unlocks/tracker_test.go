package unlocks

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/storage"
)

type mapState struct {
	values  map[string]string
	getErr  error
	setErr  error
	setCall int
}

func newMapState() *mapState {
	return &mapState{values: map[string]string{}}
}

func (m *mapState) GetState(key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (m *mapState) SetState(key, value string) error {
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func completedAt(id string, at time.Time) models.AchievementRecord {
	return models.AchievementRecord{ID: id, IsCompleted: true, CompletedDate: &at}
}

var base = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

func TestCheckPicksNewestUnseen(t *testing.T) {
	state := newMapState()
	state.values[constants.StateShownAwards] = `["c"]`
	tr := NewTracker(state)

	records := []models.AchievementRecord{
		completedAt("a", base),
		completedAt("b", base.Add(time.Hour)),
		completedAt("c", base.Add(2*time.Hour)),
		{ID: "d", IsCompleted: false},
		{ID: "e", IsCompleted: true}, // no completion date
	}

	got := tr.Check(records)
	if got == nil || got.ID != "b" {
		t.Fatalf("Check() = %+v, want b", got)
	}
	if p := tr.Pending(); p == nil || p.ID != "b" {
		t.Errorf("Pending() = %+v, want b", p)
	}
}

func TestMarkShownPersistsAndClearsPending(t *testing.T) {
	state := newMapState()
	tr := NewTracker(state)
	records := []models.AchievementRecord{completedAt("a", base), completedAt("b", base.Add(time.Minute))}

	tr.Check(records)
	if err := tr.MarkShown("b"); err != nil {
		t.Fatalf("MarkShown() error = %v", err)
	}
	if tr.Pending() != nil {
		t.Error("pending not cleared after MarkShown")
	}
	if got := state.values[constants.StateShownAwards]; got != `["b"]` {
		t.Errorf("persisted = %s", got)
	}

	// the next check surfaces the older one
	if got := tr.Check(records); got == nil || got.ID != "a" {
		t.Errorf("Check() after MarkShown = %+v, want a", got)
	}

	// idempotent
	calls := state.setCall
	if err := tr.MarkShown("b"); err != nil {
		t.Fatal(err)
	}
	if state.setCall != calls {
		t.Error("MarkShown rewrote state for an id already shown")
	}

	reloaded := NewTracker(state)
	if diff := cmp.Diff([]string{"b"}, reloaded.Shown()); diff != "" {
		t.Errorf("reloaded Shown() mismatch (-want +got):\n%s", diff)
	}
}

func TestCorruptOrMissingStateStartsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*mapState)
	}{
		{name: "missing", setup: func(*mapState) {}},
		{name: "not json", setup: func(m *mapState) { m.values[constants.StateShownAwards] = "{oops" }},
		{name: "wrong shape", setup: func(m *mapState) { m.values[constants.StateShownAwards] = `{"a":1}` }},
		{name: "read error", setup: func(m *mapState) { m.getErr = errors.New("io") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newMapState()
			tt.setup(state)
			tr := NewTracker(state)
			if len(tr.Shown()) != 0 {
				t.Errorf("Shown() = %v, want empty", tr.Shown())
			}
			if got := tr.Check([]models.AchievementRecord{completedAt("x", base)}); got == nil {
				t.Error("Check() = nil with an empty shown-set")
			}
		})
	}
}

func TestDismissKeepsUnseen(t *testing.T) {
	tr := NewTracker(newMapState())
	records := []models.AchievementRecord{completedAt("a", base)}

	tr.Check(records)
	tr.Dismiss()
	if tr.Pending() != nil {
		t.Error("Pending() after Dismiss")
	}
	if got := tr.Check(records); got == nil || got.ID != "a" {
		t.Errorf("dismissed unlock should come back on the next check, got %+v", got)
	}
}

func TestMarkShownSaveError(t *testing.T) {
	state := newMapState()
	state.setErr = errors.New("readonly")
	if err := NewTracker(state).MarkShown("a"); err == nil {
		t.Error("MarkShown() error = nil")
	}
}

func TestMarkShownRetriesAfterSaveError(t *testing.T) {
	state := newMapState()
	tr := NewTracker(state)
	tr.Check([]models.AchievementRecord{completedAt("a", base)})

	state.setErr = errors.New("disk full")
	if err := tr.MarkShown("a"); err == nil {
		t.Fatal("MarkShown() error = nil")
	}
	if got := tr.Shown(); len(got) != 0 {
		t.Errorf("Shown() after failed save = %v, want empty", got)
	}
	if p := tr.Pending(); p == nil || p.ID != "a" {
		t.Errorf("Pending() after failed save = %+v, want a", p)
	}

	state.setErr = nil
	if err := tr.MarkShown("a"); err != nil {
		t.Fatalf("retry MarkShown() error = %v", err)
	}
	if state.setCall != 2 {
		t.Errorf("SetState calls = %d, want 2", state.setCall)
	}
	if tr.Pending() != nil {
		t.Error("Pending() after successful retry")
	}
	if diff := cmp.Diff([]string{"a"}, NewTracker(state).Shown()); diff != "" {
		t.Errorf("reloaded shown-set mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckNothingNew(t *testing.T) {
	tr := NewTracker(newMapState())
	if got := tr.Check(nil); got != nil {
		t.Errorf("Check(nil) = %+v", got)
	}
}
