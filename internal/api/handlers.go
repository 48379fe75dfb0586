package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/quitlog/internal/journey"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/stats"
	"github.com/julianstephens/quitlog/internal/streaks"
)

// listOptions reads ?since, ?until (RFC3339), ?limit and ?sort.
func listOptions(r *http.Request) (models.ListOptions, error) {
	q := r.URL.Query()
	opts := models.ListOptions{Sort: models.SortDesc}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"since", &opts.Since}, {"until", &opts.Until}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return opts, fmt.Errorf("%w: %s must be RFC3339", journey.ErrInvalid, p.name)
		}
		*p.dst = &t
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("%w: limit must be a non-negative integer", journey.ErrInvalid)
		}
		opts.Limit = n
	}
	switch q.Get("sort") {
	case "", "desc":
	case "asc":
		opts.Sort = models.SortAsc
	default:
		return opts, fmt.Errorf("%w: sort must be asc or desc", journey.ErrInvalid)
	}
	return opts, nil
}

// Entries

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	entries, err := s.svc.Entries(opts)
	if err != nil {
		writeErr(w, err)
		return
	}
	if entries == nil {
		entries = []models.SmokingEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var e models.SmokingEntry
	if !decode(w, r, &e) {
		return
	}
	e.ID = ""
	res, err := s.svc.LogEntry(r.Context(), e)
	if err != nil {
		writeErr(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.entriesLogged.Inc()
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Entry(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var e models.SmokingEntry
	if !decode(w, r, &e) {
		return
	}
	e.ID = chi.URLParam(r, "id")
	saved, err := s.svc.UpdateEntry(e)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteEntry(chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cravings

func (s *Server) handleListCravings(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	cravings, err := s.svc.Cravings(opts)
	if err != nil {
		writeErr(w, err)
		return
	}
	if cravings == nil {
		cravings = []models.CravingEntry{}
	}
	writeJSON(w, http.StatusOK, cravings)
}

func (s *Server) handleCreateCraving(w http.ResponseWriter, r *http.Request) {
	var c models.CravingEntry
	if !decode(w, r, &c) {
		return
	}
	c.ID = ""
	saved, err := s.svc.LogCraving(c)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteCraving(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteCraving(chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Profile and goals

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.svc.Goals()
	if err != nil {
		writeErr(w, err)
		return
	}
	if goals == nil {
		goals = []models.GoalHistoryRecord{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p models.UserProfile
	if !decode(w, r, &p) {
		return
	}
	saved, err := s.svc.UpdateProfile(p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type dailyLimitRequest struct {
	DailyLimit *int `json:"daily_limit"`
}

func (s *Server) handleSetDailyLimit(w http.ResponseWriter, r *http.Request) {
	var req dailyLimitRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := s.svc.SetDailyLimit(req.DailyLimit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	var p models.UserProfile
	if !decode(w, r, &p) {
		return
	}
	d, err := s.svc.CompleteOnboarding(r.Context(), p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Stats

type statsResponse struct {
	Stats           stats.Stats      `json:"stats"`
	CurrentStreakMs int64            `json:"current_streak_ms"`
	BestStreakMs    int64            `json:"best_streak_ms"`
	CurrentStreak   string           `json:"current_streak"`
	BestStreak      string           `json:"best_streak"`
	MoneySaved      string           `json:"money_saved"`
	LifeRegained    string           `json:"life_regained"`
	TodayCount      int              `json:"today_count"`
	DailyLimit      *int             `json:"daily_limit"`
	LimitStatus     string           `json:"limit_status"`
	Trend           []stats.DayCount `json:"trend"`
	Triggers        []stats.Bucket   `json:"triggers"`
	Locations       []stats.Bucket   `json:"locations"`
}

// handleStats reports the snapshot without reconciling achievements.
// ?days picks the trend length (default 7, at most 90).
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	days := journey.TrendDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 90 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 90")
			return
		}
		days = n
	}

	snap, err := s.svc.Snapshot()
	if err != nil {
		writeErr(w, err)
		return
	}
	goals, err := s.svc.Goals()
	if err != nil {
		writeErr(w, err)
		return
	}

	loc := s.svc.Location()
	valid := snap.Stats.ValidEntries
	writeJSON(w, http.StatusOK, statsResponse{
		Stats:           snap.Stats,
		CurrentStreakMs: snap.Streaks.Current.Milliseconds(),
		BestStreakMs:    snap.Streaks.Best.Milliseconds(),
		CurrentStreak:   streaks.FormatDuration(snap.Streaks.Current),
		BestStreak:      streaks.FormatDuration(snap.Streaks.Best),
		MoneySaved:      stats.FormatMoney(snap.Stats.MoneySaved, snap.Profile.Currency),
		LifeRegained:    streaks.FormatLifeMinutes(snap.Stats.LifeRegainedMinutes),
		TodayCount:      snap.TodayCount,
		DailyLimit:      snap.Profile.DailyLimit,
		LimitStatus:     string(snap.LimitStatus),
		Trend:           stats.DailyCounts(valid, goals, &snap.Profile, snap.Now.AddDate(0, 0, -(days-1)), snap.Now, loc),
		Triggers:        stats.TriggerBreakdown(valid),
		Locations:       stats.LocationBreakdown(valid),
	})
}

// Achievements and notifications

type achievementsResponse struct {
	Achievements []journey.AchievementView  `json:"achievements"`
	Pending      *models.AchievementRecord  `json:"pending"`
	Unlocked     []models.AchievementRecord `json:"unlocked"`
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Refresh(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	views := d.Achievements
	if views == nil {
		views = []journey.AchievementView{}
	}
	unlocked := d.Unlocked
	if unlocked == nil {
		unlocked = []models.AchievementRecord{}
	}
	writeJSON(w, http.StatusOK, achievementsResponse{Achievements: views, Pending: d.Pending, Unlocked: unlocked})
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.Refresh(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.AchievementRecord{"pending": s.svc.Pending()})
}

func (s *Server) handleShown(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.MarkShown(chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
