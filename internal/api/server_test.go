package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/quitlog/internal/journey"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/storage"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

type testEnv struct {
	srv   *httptest.Server
	now   time.Time
	store storage.Provider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "quitlog.json"))
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	env := &testEnv{now: t0, store: store}

	var svc *journey.Service
	metrics := NewMetrics(func() (uint64, uint64) { return svc.Cache().Counts() })
	svc = journey.New(store,
		journey.WithClock(func() time.Time { return env.now }),
		journey.WithLocation(time.UTC),
		journey.WithObserver(metrics),
	)

	server := NewServer(svc)
	server.EnableMetrics(metrics)
	server.SetCORSOrigins([]string{"http://localhost:5173"})
	env.srv = httptest.NewServer(server.Handler())
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			if err != nil {
				t.Fatal(err)
			}
			r = bytes.NewReader(data)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return res, data
}

func (e *testEnv) onboard(t *testing.T) {
	t.Helper()
	res, body := e.do(t, http.MethodPost, "/api/onboarding", map[string]interface{}{
		"cigarettes_per_day_before": 20,
		"cost_per_pack":             10,
		"currency":                  "USD",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("onboarding status = %d: %s", res.StatusCode, body)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	res, body := env.do(t, http.MethodGet, "/health", nil)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ok"`) {
		t.Errorf("GET /health = %d %s", res.StatusCode, body)
	}
}

func TestEntryCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t)
	env.now = t0.Add(3 * time.Hour)

	res, body := env.do(t, http.MethodPost, "/api/entries", map[string]interface{}{
		"location": "home",
		"trigger":  "stress",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/entries = %d: %s", res.StatusCode, body)
	}
	var created journey.LogResult
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}
	id := created.Entry.ID
	if id == "" || created.Dashboard.Stats.TotalLogs != 1 {
		t.Fatalf("created = %+v", created.Entry)
	}

	res, body = env.do(t, http.MethodGet, "/api/entries", nil)
	var list []models.SmokingEntry
	if err := json.Unmarshal(body, &list); err != nil || res.StatusCode != http.StatusOK || len(list) != 1 {
		t.Fatalf("GET /api/entries = %d %s", res.StatusCode, body)
	}

	res, body = env.do(t, http.MethodPut, "/api/entries/"+id, map[string]interface{}{
		"timestamp": t0.Add(time.Hour).Format(time.RFC3339),
		"notes":     "edited",
	})
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), "edited") {
		t.Errorf("PUT /api/entries/{id} = %d %s", res.StatusCode, body)
	}

	res, _ = env.do(t, http.MethodDelete, "/api/entries/"+id, nil)
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE = %d, want 204", res.StatusCode)
	}
	res, body = env.do(t, http.MethodGet, "/api/entries/"+id, nil)
	if res.StatusCode != http.StatusNotFound || !strings.Contains(string(body), `"error"`) {
		t.Errorf("GET deleted entry = %d %s", res.StatusCode, body)
	}
}

func TestBadRequests(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"future entry", http.MethodPost, "/api/entries", map[string]string{"timestamp": t0.Add(time.Hour).Format(time.RFC3339)}},
		{"unknown trigger", http.MethodPost, "/api/entries", map[string]string{"trigger": "nope"}},
		{"malformed json", http.MethodPost, "/api/entries", "{"},
		{"unknown field", http.MethodPost, "/api/entries", map[string]string{"mood": "bad"}},
		{"bad intensity", http.MethodPost, "/api/cravings", map[string]int{"intensity": 9}},
		{"negative limit", http.MethodPut, "/api/profile/daily-limit", map[string]int{"daily_limit": -2}},
		{"bad since", http.MethodGet, "/api/entries?since=yesterday", nil},
		{"bad days", http.MethodGet, "/api/stats?days=0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := env.do(t, tt.method, tt.path, tt.body)
			if res.StatusCode != http.StatusBadRequest {
				t.Errorf("%s %s = %d %s, want 400", tt.method, tt.path, res.StatusCode, body)
			}
			var e map[string]string
			if err := json.Unmarshal(body, &e); err != nil || e["error"] == "" {
				t.Errorf("error body = %s", body)
			}
		})
	}
}

func TestStatsAndAchievements(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t)
	env.now = t0.Add(4*24*time.Hour + 12*time.Hour)

	res, body := env.do(t, http.MethodGet, "/api/stats", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/stats = %d %s", res.StatusCode, body)
	}
	var st statsResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatal(err)
	}
	if st.Stats.CigarettesAvoided != 100 || st.MoneySaved != "$50.00" {
		t.Errorf("stats = %+v", st)
	}
	if st.CurrentStreakMs != (4*24*time.Hour + 12*time.Hour).Milliseconds() {
		t.Errorf("current streak ms = %d", st.CurrentStreakMs)
	}
	if len(st.Trend) != journey.TrendDays {
		t.Errorf("trend has %d days", len(st.Trend))
	}

	res, body = env.do(t, http.MethodGet, "/api/achievements", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/achievements = %d %s", res.StatusCode, body)
	}
	var ach achievementsResponse
	if err := json.Unmarshal(body, &ach); err != nil {
		t.Fatal(err)
	}
	if ach.Pending == nil {
		t.Fatal("expected a pending unlock")
	}

	res, body = env.do(t, http.MethodGet, "/api/notifications/pending", nil)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), ach.Pending.ID) {
		t.Errorf("GET pending = %d %s", res.StatusCode, body)
	}
	res, _ = env.do(t, http.MethodPost, "/api/notifications/"+ach.Pending.ID+"/shown", nil)
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("POST shown = %d, want 204", res.StatusCode)
	}
	_, body = env.do(t, http.MethodGet, "/api/notifications/pending", nil)
	if strings.Contains(string(body), ach.Pending.ID) {
		t.Errorf("pending after shown = %s", body)
	}
}

func TestDailyLimitAndGoals(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t)

	res, body := env.do(t, http.MethodPut, "/api/profile/daily-limit", map[string]int{"daily_limit": 6})
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), `"daily_limit":6`) {
		t.Fatalf("PUT daily-limit = %d %s", res.StatusCode, body)
	}
	_, body = env.do(t, http.MethodGet, "/api/goals", nil)
	var goals []models.GoalHistoryRecord
	if err := json.Unmarshal(body, &goals); err != nil || len(goals) != 1 || goals[0].Limit != 6 {
		t.Errorf("GET /api/goals = %s", body)
	}
}

func TestProfileUpdateKeepsJourneyStart(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t)

	res, body := env.do(t, http.MethodPut, "/api/profile", map[string]interface{}{
		"cigarettes_per_day_before": 15,
		"cost_per_pack":             12,
		"journey_start_date":        "2020-01-01T00:00:00Z",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("PUT /api/profile = %d %s", res.StatusCode, body)
	}
	var p models.UserProfile
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatal(err)
	}
	if !p.JourneyStartDate.Equal(t0) || p.CigarettesPerDayBefore != 15 {
		t.Errorf("profile = %+v", p)
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)
	req, _ := http.NewRequest(http.MethodOptions, env.srv.URL+"/api/entries", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d", res.StatusCode)
	}
	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}

	req, _ = http.NewRequest(http.MethodGet, env.srv.URL+"/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin allowed: %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t)
	env.do(t, http.MethodGet, "/api/achievements", nil)

	res, body := env.do(t, http.MethodGet, "/metrics", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET /metrics = %d", res.StatusCode)
	}
	for _, name := range []string{
		"quitlog_achievement_reconciles_total",
		"quitlog_http_request_duration_seconds",
		"quitlog_stats_cache_misses_total",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("/metrics missing %s", name)
		}
	}
}
