// Package journey ties the store, the stats cache, the achievement engine
// and the unlock tracker together behind the operations every front end
// (CLI, TUI, HTTP API) uses.
package journey

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/julianstephens/quitlog/internal/achievements"
	"github.com/julianstephens/quitlog/internal/awards"
	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/stats"
	"github.com/julianstephens/quitlog/internal/storage"
	"github.com/julianstephens/quitlog/internal/streaks"
	"github.com/julianstephens/quitlog/internal/support"
	"github.com/julianstephens/quitlog/internal/unlocks"
)

// ErrInvalid marks input rejected before it reached the store.
var ErrInvalid = errors.New("invalid input")

// futureSlack tolerates small clock skew between a client and the store.
const futureSlack = time.Minute

// TrendDays is the length of the dashboard trend.
const TrendDays = 7

// Notifier delivers a freshly pending unlock outside the app.
type Notifier interface {
	NotifyUnlock(ctx context.Context, r models.AchievementRecord) error
}

// Observer is told about every reconciliation, mainly for metrics.
type Observer interface {
	Reconciled(res achievements.Result, err error)
}

type Service struct {
	store    storage.Provider
	cache    *stats.Cache
	engine   *achievements.Engine
	prompter *support.Prompter
	clock    func() time.Time
	loc      *time.Location
	notifier Notifier
	observer Observer
	support  bool

	// refreshMu serializes reconciliation so two callers never create the
	// same record twice.
	refreshMu sync.Mutex
	trackerMu sync.Mutex
	tracker   *unlocks.Tracker
	notified  string
}

type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.cache = stats.NewCache(ttl) }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithSupport turns the support prompt counters on or off.
func WithSupport(enabled bool) Option {
	return func(s *Service) { s.support = enabled }
}

// New builds a service over a loaded store.
func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:   store,
		cache:   stats.NewCache(constants.DefaultCacheTTL),
		clock:   time.Now,
		loc:     time.Local,
		support: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = achievements.NewEngine(store, achievements.WithClock(s.clock))
	s.prompter = support.NewPrompter(store, s.clock)
	s.tracker = unlocks.NewTracker(store)
	return s
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) Now() time.Time { return s.clock() }

func (s *Service) Cache() *stats.Cache { return s.cache }

func (s *Service) unlockTracker() *unlocks.Tracker {
	s.trackerMu.Lock()
	defer s.trackerMu.Unlock()
	return s.tracker
}

// Snapshot is the derived state of the journey at one instant.
type Snapshot struct {
	Now         time.Time             `json:"now"`
	Profile     models.UserProfile    `json:"profile"`
	Onboarded   bool                  `json:"onboarded"`
	Stats       stats.Stats           `json:"stats"`
	Streaks     streaks.SmokeFree     `json:"streaks"`
	TodayCount  int                   `json:"today_count"`
	LimitStatus constants.LimitStatus `json:"limit_status"`
}

// Profile returns the stored profile, or an empty one before onboarding.
func (s *Service) Profile() (models.UserProfile, error) {
	p, err := s.store.GetProfile()
	if errors.Is(err, storage.ErrNotFound) {
		return models.UserProfile{Currency: "USD"}, nil
	}
	return p, err
}

func (s *Service) Snapshot() (Snapshot, error) {
	profile, err := s.Profile()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load profile: %w", err)
	}
	entries, err := s.store.ListEntries(models.ListOptions{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load entries: %w", err)
	}

	now := s.clock()
	st := s.cache.Get(entries, &profile, profile.JourneyStartDate, now, s.loc)
	today := stats.TodayCount(entries, now, s.loc)

	return Snapshot{
		Now:         now,
		Profile:     profile,
		Onboarded:   profile.OnboardingCompleted && profile.HasJourneyStart(),
		Stats:       st,
		Streaks:     streaks.SmokeStreaks(st.ValidEntries, st.JourneyStart, now),
		TodayCount:  today,
		LimitStatus: stats.LimitStatus(today, profile.DailyLimit),
	}, nil
}

// AchievementView is a record joined with its template and display state.
type AchievementView struct {
	Record   models.AchievementRecord `json:"record"`
	Category awards.Category          `json:"category"`
	Locked   bool                     `json:"locked"`
	Percent  int                      `json:"percent"`
}

// Dashboard is a Snapshot plus reconciled achievements and the trend.
type Dashboard struct {
	Snapshot
	Achievements []AchievementView          `json:"achievements"`
	Pending      *models.AchievementRecord  `json:"pending"`
	Trend        []stats.DayCount           `json:"trend"`
	Unlocked     []models.AchievementRecord `json:"unlocked"`
}

// Refresh recomputes the snapshot, reconciles achievements against it and
// picks the next unlock to announce. Achievements are only reconciled once
// the journey has started. A partial reconciliation failure is logged and
// the dashboard still carries every record that could be read.
func (s *Service) Refresh(ctx context.Context) (Dashboard, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{Snapshot: snap}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	var records []models.AchievementRecord
	if snap.Onboarded {
		res, err := s.engine.Reconcile(snap.Stats)
		if s.observer != nil {
			s.observer.Reconciled(res, err)
		}
		var batch *achievements.BatchError
		switch {
		case errors.As(err, &batch) && res.Records != nil:
			logger.Warn("Some achievements could not be saved", "failed", len(batch.Failures))
		case err != nil:
			return d, err
		}
		records = res.Records
		d.Unlocked = res.NewlyCompleted
	} else {
		records, err = s.store.ListAchievements()
		if err != nil {
			return d, fmt.Errorf("failed to list achievements: %w", err)
		}
	}

	d.Achievements = Views(records)
	d.Pending = s.unlockTracker().Check(records)
	if d.Pending != nil {
		s.announce(ctx, *d.Pending)
	}

	goals, err := s.store.ListGoals()
	if err != nil {
		return d, fmt.Errorf("failed to list goals: %w", err)
	}
	from := snap.Now.AddDate(0, 0, -(TrendDays - 1))
	d.Trend = stats.DailyCounts(snap.Stats.ValidEntries, goals, &snap.Profile, from, snap.Now, s.loc)
	return d, nil
}

// announce pushes a pending unlock once per process.
func (s *Service) announce(ctx context.Context, r models.AchievementRecord) {
	if s.notifier == nil || s.notified == r.ID {
		return
	}
	s.notified = r.ID
	if err := s.notifier.NotifyUnlock(ctx, r); err != nil {
		logger.Debug("Unlock notification not delivered", "achievement", r.ID, "error", err)
	}
}

// Views orders records by catalog position and marks locked and percent.
// Records whose template is unknown sort last.
func Views(records []models.AchievementRecord) []AchievementView {
	completed := make(map[string]bool)
	byTemplate := make(map[string]models.AchievementRecord)
	for _, r := range records {
		if r.TemplateID == "" {
			continue
		}
		byTemplate[r.TemplateID] = r
		if r.IsCompleted {
			completed[r.TemplateID] = true
		}
	}

	views := make([]AchievementView, 0, len(records))
	used := make(map[string]bool)
	for _, t := range awards.Library() {
		r, ok := byTemplate[t.ID]
		if !ok {
			continue
		}
		used[r.ID] = true
		views = append(views, AchievementView{
			Record:   r,
			Category: t.Category,
			Locked:   awards.Locked(t, completed),
			Percent:  awards.ProgressPercent(r.CurrentProgress, r.TargetValue),
		})
	}
	for _, r := range records {
		if used[r.ID] {
			continue
		}
		views = append(views, AchievementView{
			Record:   r,
			Category: awards.Category(r.Category),
			Percent:  awards.ProgressPercent(r.CurrentProgress, r.TargetValue),
		})
	}
	return views
}

// LogResult is what a front end needs after a log.
type LogResult struct {
	Entry     models.SmokingEntry `json:"entry"`
	Dashboard Dashboard           `json:"dashboard"`
	// AskSupport is true when the support prompt should be shown.
	AskSupport bool `json:"ask_support"`
}

// ValidateEntry fills a missing timestamp and rejects future timestamps and
// unknown enum values.
func (s *Service) ValidateEntry(e *models.SmokingEntry) error {
	now := s.clock()
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if e.Timestamp.After(now.Add(futureSlack)) {
		return fmt.Errorf("%w: entry timestamp %s is in the future", ErrInvalid, e.Timestamp.Format(time.RFC3339))
	}
	if !constants.IsKnownLocation(e.Location) {
		return fmt.Errorf("%w: unknown location %q", ErrInvalid, e.Location)
	}
	if !constants.IsKnownTrigger(e.Trigger) {
		return fmt.Errorf("%w: unknown trigger %q", ErrInvalid, e.Trigger)
	}
	return nil
}

// LogEntry stores a smoking entry and returns the refreshed dashboard.
func (s *Service) LogEntry(ctx context.Context, e models.SmokingEntry) (LogResult, error) {
	if err := s.ValidateEntry(&e); err != nil {
		return LogResult{}, err
	}
	e.QuickLog = e.QuickLog || (e.Location == "" && e.Trigger == "" && e.Notes == "")

	saved, err := s.store.AddEntry(e)
	if err != nil {
		return LogResult{}, fmt.Errorf("failed to save entry: %w", err)
	}
	s.cache.Invalidate()
	logger.Info("Logged entry", "id", saved.ID, "quick", saved.QuickLog)

	res := LogResult{Entry: saved}
	if s.support {
		ask, err := s.prompter.Track()
		if err != nil {
			logger.Warn("Failed to track support interaction", "error", err)
		}
		res.AskSupport = ask
	}

	res.Dashboard, err = s.Refresh(ctx)
	return res, err
}

// UpdateEntry edits an existing entry.
func (s *Service) UpdateEntry(e models.SmokingEntry) (models.SmokingEntry, error) {
	if e.ID == "" {
		return models.SmokingEntry{}, fmt.Errorf("%w: missing entry id", ErrInvalid)
	}
	if err := s.ValidateEntry(&e); err != nil {
		return models.SmokingEntry{}, err
	}
	saved, err := s.store.UpdateEntry(e)
	if err != nil {
		return models.SmokingEntry{}, err
	}
	s.cache.Invalidate()
	return saved, nil
}

// DeleteEntry removes an entry. Completed achievements stay completed.
func (s *Service) DeleteEntry(id string) error {
	ok, err := s.store.DeleteEntry(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("entry %s: %w", id, storage.ErrNotFound)
	}
	s.cache.Invalidate()
	return nil
}

func (s *Service) Entries(opts models.ListOptions) ([]models.SmokingEntry, error) {
	return s.store.ListEntries(opts)
}

func (s *Service) Entry(id string) (models.SmokingEntry, error) {
	return s.store.GetEntry(id)
}

// LogCraving stores a craving. Intensity runs 1 to 5.
func (s *Service) LogCraving(c models.CravingEntry) (models.CravingEntry, error) {
	now := s.clock()
	if c.Timestamp.IsZero() {
		c.Timestamp = now
	}
	if c.Timestamp.After(now.Add(futureSlack)) {
		return models.CravingEntry{}, fmt.Errorf("%w: craving timestamp is in the future", ErrInvalid)
	}
	if c.Intensity < 1 || c.Intensity > 5 {
		return models.CravingEntry{}, fmt.Errorf("%w: intensity must be between 1 and 5, got %d", ErrInvalid, c.Intensity)
	}
	if !constants.IsKnownTrigger(c.Trigger) {
		return models.CravingEntry{}, fmt.Errorf("%w: unknown trigger %q", ErrInvalid, c.Trigger)
	}
	return s.store.AddCraving(c)
}

func (s *Service) Cravings(opts models.ListOptions) ([]models.CravingEntry, error) {
	return s.store.ListCravings(opts)
}

func (s *Service) DeleteCraving(id string) error {
	ok, err := s.store.DeleteCraving(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("craving %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *Service) Goals() ([]models.GoalHistoryRecord, error) {
	return s.store.ListGoals()
}

// SetDailyLimit changes the daily limit. A nil limit clears it. A goal
// history record is appended only when a new limit takes effect.
func (s *Service) SetDailyLimit(limit *int) (models.UserProfile, error) {
	if limit != nil && *limit < 0 {
		return models.UserProfile{}, fmt.Errorf("%w: daily limit must not be negative", ErrInvalid)
	}
	p, err := s.Profile()
	if err != nil {
		return models.UserProfile{}, err
	}
	if sameLimit(p.DailyLimit, limit) {
		return p, nil
	}

	p.DailyLimit = copyLimit(limit)
	if err := s.store.SaveProfile(p); err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	if limit != nil {
		if _, err := s.store.AddGoal(models.GoalHistoryRecord{Date: s.clock(), Limit: *limit}); err != nil {
			return p, fmt.Errorf("failed to record goal: %w", err)
		}
	}
	s.cache.Invalidate()
	return s.Profile()
}

func sameLimit(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyLimit(l *int) *int {
	if l == nil {
		return nil
	}
	v := *l
	return &v
}

// ValidateBaseline checks the numbers every avoided metric depends on.
func ValidateBaseline(p models.UserProfile) error {
	switch {
	case !finite(p.CigarettesPerDayBefore) || p.CigarettesPerDayBefore <= 0:
		return fmt.Errorf("%w: cigarettes per day must be positive", ErrInvalid)
	case !finite(p.CostPerPack) || p.CostPerPack < 0:
		return fmt.Errorf("%w: cost per pack must not be negative", ErrInvalid)
	case p.CigarettesPerPack != nil && (!finite(*p.CigarettesPerPack) || *p.CigarettesPerPack <= 0):
		return fmt.Errorf("%w: cigarettes per pack must be positive", ErrInvalid)
	case p.DailyLimit != nil && *p.DailyLimit < 0:
		return fmt.Errorf("%w: daily limit must not be negative", ErrInvalid)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// CompleteOnboarding stores the baseline and starts the journey. The start
// date is set once; onboarding again only edits the baseline. Starting a
// new journey drops achievement records left from an earlier one.
func (s *Service) CompleteOnboarding(ctx context.Context, in models.UserProfile) (Dashboard, error) {
	if err := ValidateBaseline(in); err != nil {
		return Dashboard{}, err
	}
	current, err := s.Profile()
	if err != nil {
		return Dashboard{}, err
	}

	p := in
	p.ID = current.ID
	if p.Currency == "" {
		p.Currency = current.Currency
	}
	p.OnboardingCompleted = true
	starting := !current.HasJourneyStart()
	if starting {
		p.JourneyStartDate = s.clock()
		if err := s.clearAchievements(); err != nil {
			return Dashboard{}, err
		}
	} else {
		p.JourneyStartDate = current.JourneyStartDate
	}

	if err := s.store.SaveProfile(p); err != nil {
		return Dashboard{}, fmt.Errorf("failed to save profile: %w", err)
	}
	if p.DailyLimit != nil && !sameLimit(current.DailyLimit, p.DailyLimit) {
		if _, err := s.store.AddGoal(models.GoalHistoryRecord{Date: s.clock(), Limit: *p.DailyLimit}); err != nil {
			return Dashboard{}, fmt.Errorf("failed to record goal: %w", err)
		}
	}
	s.cache.Invalidate()
	logger.Info("Onboarding saved", "new_journey", starting)
	return s.Refresh(ctx)
}

// UpdateProfile edits the baseline without touching the journey anchor.
func (s *Service) UpdateProfile(in models.UserProfile) (models.UserProfile, error) {
	if err := ValidateBaseline(in); err != nil {
		return models.UserProfile{}, err
	}
	current, err := s.Profile()
	if err != nil {
		return models.UserProfile{}, err
	}
	in.ID = current.ID
	in.JourneyStartDate = current.JourneyStartDate
	in.OnboardingCompleted = current.OnboardingCompleted
	in.DailyLimit = current.DailyLimit
	if in.Currency == "" {
		in.Currency = current.Currency
	}
	if err := s.store.SaveProfile(in); err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	s.cache.Invalidate()
	return s.Profile()
}

func (s *Service) clearAchievements() error {
	records, err := s.store.ListAchievements()
	if err != nil {
		return fmt.Errorf("failed to list achievements: %w", err)
	}
	for _, r := range records {
		if _, err := s.store.DeleteAchievement(r.ID); err != nil {
			return fmt.Errorf("failed to delete achievement %s: %w", r.ID, err)
		}
	}
	return nil
}

// Reset deletes every entry, achievement, goal and piece of state and
// strips the profile back to its identity.
func (s *Service) Reset() error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if err := s.store.Reset(); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}
	s.cache.Invalidate()
	s.trackerMu.Lock()
	s.tracker = unlocks.NewTracker(s.store)
	s.notified = ""
	s.trackerMu.Unlock()
	logger.Info("Journey reset")
	return nil
}

// Achievements lists stored records as views without reconciling.
func (s *Service) Achievements() ([]AchievementView, error) {
	records, err := s.store.ListAchievements()
	if err != nil {
		return nil, err
	}
	return Views(records), nil
}

// Pending returns the unlock waiting to be shown, if any.
func (s *Service) Pending() *models.AchievementRecord {
	return s.unlockTracker().Pending()
}

// MarkShown records that the unlock with record id id was shown.
func (s *Service) MarkShown(id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing achievement id", ErrInvalid)
	}
	return s.unlockTracker().MarkShown(id)
}

// Dismiss hides the pending unlock until the next refresh.
func (s *Service) Dismiss() {
	s.unlockTracker().Dismiss()
}

// Support exposes the support prompt counters.
func (s *Service) Support() *support.Prompter {
	return s.prompter
}

// MarkAllShown marks every completed, unannounced achievement as shown and
// returns how many were marked.
func (s *Service) MarkAllShown(ctx context.Context) (int, error) {
	d, err := s.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	records := make([]models.AchievementRecord, len(d.Achievements))
	for i, v := range d.Achievements {
		records[i] = v.Record
	}

	tracker := s.unlockTracker()
	n := 0
	for p := d.Pending; p != nil; p = tracker.Check(records) {
		if err := tracker.MarkShown(p.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
