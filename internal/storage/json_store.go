package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/julianstephens/quitlog/internal/models"
)

type document struct {
	Version      int                                 `json:"version"`
	Profile      *models.UserProfile                 `json:"profile,omitempty"`
	Entries      map[string]models.SmokingEntry      `json:"entries"`
	Cravings     map[string]models.CravingEntry      `json:"cravings"`
	Achievements map[string]models.AchievementRecord `json:"achievements"`
	Goals        []models.GoalHistoryRecord          `json:"goals"`
	State        map[string]string                   `json:"state"`
}

func newDocument() *document {
	return &document{
		Version:      1,
		Entries:      make(map[string]models.SmokingEntry),
		Cravings:     make(map[string]models.CravingEntry),
		Achievements: make(map[string]models.AchievementRecord),
		State:        make(map[string]string),
	}
}

// JSONStore keeps everything in one JSON file, rewritten on every change.
type JSONStore struct {
	mu   sync.RWMutex
	path string
	doc  *document
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.doc = newDocument()
	return s.commit(func() { s.doc = nil })
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]models.SmokingEntry)
	}
	if doc.Cravings == nil {
		doc.Cravings = make(map[string]models.CravingEntry)
	}
	if doc.Achievements == nil {
		doc.Achievements = make(map[string]models.AchievementRecord)
	}
	if doc.State == nil {
		doc.State = make(map[string]string)
	}
	s.doc = doc
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// save writes through a temp file so a crash never leaves half a document.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

// commit saves the document and runs undo if the write fails, so memory never
// holds a change the file does not.
func (s *JSONStore) commit(undo func()) error {
	if err := s.save(); err != nil {
		undo()
		return err
	}
	return nil
}

// restoreKey captures m[key] and returns a func that puts it back.
func restoreKey[V any](m map[string]V, key string) func() {
	old, had := m[key]
	return func() {
		if had {
			m[key] = old
		} else {
			delete(m, key)
		}
	}
}

func (s *JSONStore) loaded() error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *JSONStore) GetProfile() (models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return models.UserProfile{}, err
	}
	if s.doc.Profile == nil {
		return models.UserProfile{}, ErrNotFound
	}
	return *s.doc.Profile, nil
}

func (s *JSONStore) SaveProfile(p models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = NewID()
	}
	p.UpdatedAt = time.Now()
	old := s.doc.Profile
	s.doc.Profile = &p
	return s.commit(func() { s.doc.Profile = old })
}

func (s *JSONStore) AddEntry(e models.SmokingEntry) (models.SmokingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return models.SmokingEntry{}, err
	}
	if e.ID == "" {
		e.ID = NewID()
	}
	Stamp(&e.CreatedAt, &e.UpdatedAt, time.Now())
	undo := restoreKey(s.doc.Entries, e.ID)
	s.doc.Entries[e.ID] = e
	if err := s.commit(undo); err != nil {
		return models.SmokingEntry{}, err
	}
	return e, nil
}

func (s *JSONStore) GetEntry(id string) (models.SmokingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return models.SmokingEntry{}, err
	}
	e, ok := s.doc.Entries[id]
	if !ok {
		return models.SmokingEntry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (s *JSONStore) ListEntries(opts models.ListOptions) ([]models.SmokingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}
	var out []models.SmokingEntry
	for _, e := range s.doc.Entries {
		if InRange(e.Timestamp, opts) {
			out = append(out, e)
		}
	}
	return SortAndLimit(out, func(e models.SmokingEntry) time.Time { return e.Timestamp }, opts), nil
}

func (s *JSONStore) UpdateEntry(e models.SmokingEntry) (models.SmokingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return models.SmokingEntry{}, err
	}
	old, ok := s.doc.Entries[e.ID]
	if !ok {
		return models.SmokingEntry{}, fmt.Errorf("entry %s: %w", e.ID, ErrNotFound)
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = time.Now()
	s.doc.Entries[e.ID] = e
	if err := s.commit(func() { s.doc.Entries[e.ID] = old }); err != nil {
		return models.SmokingEntry{}, err
	}
	return e, nil
}

func (s *JSONStore) DeleteEntry(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return false, err
	}
	old, ok := s.doc.Entries[id]
	if !ok {
		return false, nil
	}
	delete(s.doc.Entries, id)
	if err := s.commit(func() { s.doc.Entries[id] = old }); err != nil {
		return false, err
	}
	return true, nil
}

func (s *JSONStore) AddCraving(c models.CravingEntry) (models.CravingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return models.CravingEntry{}, err
	}
	if c.ID == "" {
		c.ID = NewID()
	}
	Stamp(&c.CreatedAt, &c.UpdatedAt, time.Now())
	undo := restoreKey(s.doc.Cravings, c.ID)
	s.doc.Cravings[c.ID] = c
	if err := s.commit(undo); err != nil {
		return models.CravingEntry{}, err
	}
	return c, nil
}

func (s *JSONStore) ListCravings(opts models.ListOptions) ([]models.CravingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}
	var out []models.CravingEntry
	for _, c := range s.doc.Cravings {
		if InRange(c.Timestamp, opts) {
			out = append(out, c)
		}
	}
	return SortAndLimit(out, func(c models.CravingEntry) time.Time { return c.Timestamp }, opts), nil
}

func (s *JSONStore) DeleteCraving(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return false, err
	}
	old, ok := s.doc.Cravings[id]
	if !ok {
		return false, nil
	}
	delete(s.doc.Cravings, id)
	if err := s.commit(func() { s.doc.Cravings[id] = old }); err != nil {
		return false, err
	}
	return true, nil
}

func (s *JSONStore) AddAchievement(r models.AchievementRecord) (models.AchievementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return models.AchievementRecord{}, err
	}
	if r.ID == "" {
		r.ID = NewID()
	}
	Stamp(&r.CreatedAt, &r.UpdatedAt, time.Now())
	undo := restoreKey(s.doc.Achievements, r.ID)
	s.doc.Achievements[r.ID] = r
	if err := s.commit(undo); err != nil {
		return models.AchievementRecord{}, err
	}
	return r, nil
}

func (s *JSONStore) ListAchievements() ([]models.AchievementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}
	out := make([]models.AchievementRecord, 0, len(s.doc.Achievements))
	for _, r := range s.doc.Achievements {
		out = append(out, r)
	}
	return SortAndLimit(out, func(r models.AchievementRecord) time.Time { return r.CreatedAt }, models.ListOptions{}), nil
}

func (s *JSONStore) UpdateAchievement(id string, u models.AchievementUpdate) (models.AchievementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return models.AchievementRecord{}, err
	}
	old, ok := s.doc.Achievements[id]
	if !ok {
		return models.AchievementRecord{}, fmt.Errorf("achievement %s: %w", id, ErrNotFound)
	}
	r := u.Apply(old, time.Now())
	s.doc.Achievements[id] = r
	if err := s.commit(func() { s.doc.Achievements[id] = old }); err != nil {
		return models.AchievementRecord{}, err
	}
	return r, nil
}

func (s *JSONStore) DeleteAchievement(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return false, err
	}
	old, ok := s.doc.Achievements[id]
	if !ok {
		return false, nil
	}
	delete(s.doc.Achievements, id)
	if err := s.commit(func() { s.doc.Achievements[id] = old }); err != nil {
		return false, err
	}
	return true, nil
}

func (s *JSONStore) AddGoal(g models.GoalHistoryRecord) (models.GoalHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return models.GoalHistoryRecord{}, err
	}
	if g.ID == "" {
		g.ID = NewID()
	}
	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.Date.IsZero() {
		g.Date = now
	}
	n := len(s.doc.Goals)
	s.doc.Goals = append(s.doc.Goals, g)
	if err := s.commit(func() { s.doc.Goals = s.doc.Goals[:n] }); err != nil {
		return models.GoalHistoryRecord{}, err
	}
	return g, nil
}

func (s *JSONStore) ListGoals() ([]models.GoalHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}
	out := make([]models.GoalHistoryRecord, len(s.doc.Goals))
	copy(out, s.doc.Goals)
	return SortAndLimit(out, func(g models.GoalHistoryRecord) time.Time { return g.Date }, models.ListOptions{}), nil
}

func (s *JSONStore) GetState(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.loaded(); err != nil {
		return "", err
	}
	v, ok := s.doc.State[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *JSONStore) SetState(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	undo := restoreKey(s.doc.State, key)
	s.doc.State[key] = value
	return s.commit(undo)
}

func (s *JSONStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}

	var profile *models.UserProfile
	if s.doc.Profile != nil {
		p := ClearBaseline(*s.doc.Profile)
		profile = &p
	}
	old := s.doc
	s.doc = newDocument()
	s.doc.Profile = profile
	return s.commit(func() { s.doc = old })
}

// ClearBaseline returns p with its journey fields reset so onboarding runs again.
func ClearBaseline(p models.UserProfile) models.UserProfile {
	return models.UserProfile{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Currency:    p.Currency,
		UpdatedAt:   time.Now(),
	}
}
