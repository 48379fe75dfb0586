package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/journey"
	"github.com/julianstephens/quitlog/internal/stats"
	"github.com/julianstephens/quitlog/internal/streaks"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateLogForm, StateCravingForm:
		if m.form == nil {
			return ""
		}
		return docStyle.Render(m.form.View())
	case StateUnlock:
		return m.viewUnlock()
	}

	var tabs []string
	for i, name := range tabNames {
		if SessionState(i) == m.state {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	var content string
	switch {
	case !m.loaded:
		content = "Loading..."
	case !m.dashboard.Onboarded:
		content = warningStyle.Render("No journey yet. Run 'quitlog onboard' to set your baseline.")
	case m.state == StateAchievements:
		content = m.viewAchievements()
	case m.state == StateHistory:
		content = m.viewHistory()
	default:
		content = m.viewDashboard()
	}

	var footer []string
	if m.err != nil {
		footer = append(footer, dangerStyle.Render("Error: "+m.err.Error()))
	}
	if m.status != "" {
		footer = append(footer, statusStyle.Render(m.status))
	}

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		content,
		"",
		strings.Join(footer, "\n"),
		m.help.View(m.keys),
	))
}

func card(label, value string) string {
	return cardStyle.Render(cardLabelStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func (m Model) viewDashboard() string {
	d := m.dashboard
	s := d.Stats
	currency := m.currency(d.Profile)

	timer := timerStyle.Render("Smoke-free for " + streaks.FormatDuration(m.live))

	today := fmt.Sprintf("%d", d.TodayCount)
	if d.Profile.DailyLimit != nil {
		today = fmt.Sprintf("%d of %d", d.TodayCount, *d.Profile.DailyLimit)
	}
	switch d.LimitStatus {
	case constants.LimitOver:
		today = dangerStyle.Render(today + " over")
	case constants.LimitNear:
		today = warningStyle.Render(today + " near")
	}

	rows := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top,
			card("Day", fmt.Sprintf("%d", s.DaysSinceOnboarding)),
			card("Cigarettes avoided", fmt.Sprintf("%.0f", s.CigarettesAvoided)),
			card("Money saved", stats.FormatMoney(s.MoneySaved, currency)),
			card("Life regained", streaks.FormatLifeMinutes(s.LifeRegainedMinutes)),
		),
		lipgloss.JoinHorizontal(lipgloss.Top,
			card("Today", today),
			card("Daily average", fmt.Sprintf("%.1f of %.0f", s.CurrentDailyAvg, s.BaselineCigarettesPerDay)),
			card("Reduction", fmt.Sprintf("%.0f%%", s.ReductionPercentage)),
			card("Best streak", streaks.FormatDuration(d.Streaks.Best)),
		),
	)
	return lipgloss.JoinVertical(lipgloss.Left, timer, rows)
}

// visibleRows is how many achievements fit below the tabs and above the help.
func (m Model) visibleRows() int {
	if m.height <= 0 {
		return 12
	}
	return max(m.height-10, 3)
}

func (m Model) viewAchievements() string {
	views := m.dashboard.Achievements
	if len(views) == 0 {
		return "No achievements yet."
	}
	done := 0
	for _, v := range views {
		if v.Record.IsCompleted {
			done++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d unlocked\n\n", done, len(views))
	end := min(m.offset+m.visibleRows(), len(views))
	for _, v := range views[m.offset:end] {
		b.WriteString(m.achievementRow(v))
		b.WriteString("\n")
	}
	if end < len(views) {
		fmt.Fprintf(&b, "… %d more", len(views)-end)
	}
	return b.String()
}

func (m Model) achievementRow(v journey.AchievementView) string {
	r := v.Record
	title := fmt.Sprintf("%s %-26s", r.BadgeIcon, r.Title)
	switch {
	case v.Locked:
		return lockedStyle.Render(fmt.Sprintf("🔒 %-26s %s", r.Title, m.bar.ViewAs(0)))
	case r.IsCompleted:
		when := ""
		if r.CompletedDate != nil {
			when = r.CompletedDate.In(m.svc.Location()).Format("Jan 2")
		}
		return doneStyle.Render(fmt.Sprintf("%s %s ✓ %s", title, m.bar.ViewAs(1), when))
	default:
		return fmt.Sprintf("%s %s %3d%%", title, m.bar.ViewAs(float64(v.Percent)/100), v.Percent)
	}
}

func (m Model) viewHistory() string {
	trend := m.dashboard.Trend
	if len(trend) == 0 {
		return "Nothing logged yet."
	}
	peak := 1
	for _, d := range trend {
		peak = max(peak, d.Count)
		if d.Goal != nil {
			peak = max(peak, *d.Goal)
		}
	}

	var b strings.Builder
	b.WriteString("Last 7 days\n\n")
	for _, d := range trend {
		bar := strings.Repeat("█", d.Count*30/peak)
		line := fmt.Sprintf("%s %-30s %d", d.Day, bar, d.Count)
		if d.Goal != nil {
			line += fmt.Sprintf(" / limit %d", *d.Goal)
			if d.Count > *d.Goal {
				line = dangerStyle.Render(line)
			}
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) viewUnlock() string {
	p := m.dashboard.Pending
	if p == nil {
		return ""
	}
	box := popupStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		warningStyle.Render("Achievement unlocked!"),
		"",
		fmt.Sprintf("%s  %s", p.BadgeIcon, cardValueStyle.Render(p.Title)),
		p.Description,
		"",
		cardLabelStyle.Render("enter to continue · d to remind me later"),
	))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
