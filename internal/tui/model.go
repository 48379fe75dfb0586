package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/quitlog/internal/forms"
	"github.com/julianstephens/quitlog/internal/journey"
	"github.com/julianstephens/quitlog/internal/models"
)

type SessionState int

const (
	StateDashboard SessionState = iota
	StateAchievements
	StateHistory
	StateLogForm
	StateCravingForm
	StateUnlock
)

// tabCount is the number of states reachable with tab.
const tabCount = 3

var tabNames = []string{"Dashboard", "Achievements", "History"}

type Model struct {
	svc           *journey.Service
	currency      func(models.UserProfile) string
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	bar           progress.Model
	form          *huh.Form
	entryForm     *forms.EntryFormModel
	cravingForm   *forms.CravingFormModel
	dashboard     journey.Dashboard
	loaded        bool
	anchor        time.Time
	live          time.Duration
	offset        int
	status        string
	err           error
	width         int
	height        int
	quitting      bool
}

func NewModel(svc *journey.Service, currency func(models.UserProfile) string) Model {
	if currency == nil {
		currency = func(p models.UserProfile) string { return p.Currency }
	}
	return Model{
		svc:      svc,
		currency: currency,
		state:    StateDashboard,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(24), progress.WithoutPercentage()),
	}
}

type tickMsg time.Time

type dashboardMsg struct {
	dashboard journey.Dashboard
	err       error
}

type loggedMsg struct {
	result journey.LogResult
	err    error
}

type cravingMsg struct {
	craving models.CravingEntry
	err     error
}

type shownMsg struct {
	err error
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick())
}

func (m Model) refresh() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		d, err := svc.Refresh(context.Background())
		return dashboardMsg{dashboard: d, err: err}
	}
}

func (m Model) quickLog() tea.Cmd {
	return m.logEntry(models.SmokingEntry{QuickLog: true})
}

func (m Model) logEntry(e models.SmokingEntry) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		res, err := svc.LogEntry(context.Background(), e)
		return loggedMsg{result: res, err: err}
	}
}

func (m Model) logCraving(c models.CravingEntry) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		saved, err := svc.LogCraving(c)
		return cravingMsg{craving: saved, err: err}
	}
}

func (m Model) markShown(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return shownMsg{err: svc.MarkShown(id)}
	}
}

// setDashboard stores d and re-anchors the live timer at the last valid
// entry, or at the journey start when nothing was logged since.
func (m *Model) setDashboard(d journey.Dashboard) {
	m.dashboard = d
	m.loaded = true
	m.anchor = d.Stats.JourneyStart
	for _, e := range d.Stats.ValidEntries {
		if e.Timestamp.After(m.anchor) {
			m.anchor = e.Timestamp
		}
	}
	m.live = d.Streaks.Current

	if m.offset >= len(d.Achievements) {
		m.offset = 0
	}
	if d.Pending != nil && m.state < tabCount {
		m.previousState = m.state
		m.state = StateUnlock
	}
}
