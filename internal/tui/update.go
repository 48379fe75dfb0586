package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/quitlog/internal/forms"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		// Only the current streak moves between refreshes.
		if m.loaded && m.dashboard.Onboarded && !m.anchor.IsZero() {
			if d := time.Time(msg).Sub(m.anchor); d >= 0 {
				m.live = d
			}
		}
		return m, tick()

	case dashboardMsg:
		if msg.err != nil {
			logger.Warn("Dashboard refresh failed", "error", msg.err)
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.setDashboard(msg.dashboard)
		return m, nil

	case loggedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("✓ Logged at %s", msg.result.Entry.Timestamp.In(m.svc.Location()).Format("15:04"))
		if msg.result.AskSupport {
			m.status += " · Rough day? Press c to log a craving instead next time."
		}
		m.setDashboard(msg.result.Dashboard)
		return m, nil

	case cravingMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.craving.Resisted {
			m.status = "✓ Craving resisted. Nice work."
		} else {
			m.status = "✓ Craving logged"
		}
		return m, nil

	case shownMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, m.refresh()
	}

	switch m.state {
	case StateLogForm, StateCravingForm:
		return m.updateForm(msg)
	case StateUnlock:
		return m.updateUnlock(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(keyMsg, m.keys.Tab):
		m.state = (m.state + 1) % tabCount
	case key.Matches(keyMsg, m.keys.ShiftTab):
		m.state = (m.state - 1 + tabCount) % tabCount
	case key.Matches(keyMsg, m.keys.Up):
		if m.offset > 0 {
			m.offset--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.offset < len(m.dashboard.Achievements)-1 {
			m.offset++
		}
	case key.Matches(keyMsg, m.keys.Refresh):
		m.status = ""
		return m, m.refresh()
	case key.Matches(keyMsg, m.keys.QuickLog):
		return m, m.quickLog()
	case key.Matches(keyMsg, m.keys.DetailedLog):
		m.entryForm = &forms.EntryFormModel{}
		m.form = forms.NewEntryForm(m.entryForm)
		m.previousState = m.state
		m.state = StateLogForm
		return m, m.form.Init()
	case key.Matches(keyMsg, m.keys.Craving):
		m.cravingForm = &forms.CravingFormModel{}
		m.form = forms.NewCravingForm(m.cravingForm)
		m.previousState = m.state
		m.state = StateCravingForm
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		m.form = nil
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == StateLogForm {
			cmds = append(cmds, m.logEntry(m.entryForm.Entry(models.SmokingEntry{})))
		} else {
			c, err := m.cravingForm.Craving()
			if err != nil {
				m.err = err
			} else {
				cmds = append(cmds, m.logCraving(c))
			}
		}
		m.state = m.previousState
		m.form = nil
	case huh.StateAborted:
		m.state = m.previousState
		m.form = nil
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateUnlock(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Enter), key.Matches(keyMsg, m.keys.Close):
		m.state = m.previousState
		if p := m.dashboard.Pending; p != nil {
			m.dashboard.Pending = nil
			return m, m.markShown(p.ID)
		}
	case key.Matches(keyMsg, m.keys.Later):
		// Hidden until the next refresh picks it up again.
		m.svc.Dismiss()
		m.dashboard.Pending = nil
		m.state = m.previousState
	case keyMsg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}
