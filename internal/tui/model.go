package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"execedge/internal/engine"
	"execedge/internal/ui"
)

type boardModel struct {
	ctx    context.Context
	svc    *engine.Service
	userID string

	keys keyMap
	help help.Model

	width  int
	height int

	dash     *engine.Dashboard
	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	dash *engine.Dashboard
	err  error
}

type toggledMsg struct {
	habitID string
	res     *engine.ToggleResult
	err     error
}

func newBoardModel(ctx context.Context, svc *engine.Service, userID string) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		userID:  userID,
		keys:    defaultKeyMap(),
		help:    help.New(),
		loading: true,
		lastLog: "Loading…",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		d, err := m.svc.Dashboard(m.ctx, m.userID)
		return loadedMsg{dash: d, err: err}
	}
}

func (m boardModel) toggleCmd(habitID string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.ToggleCompletion(m.ctx, m.userID, engine.ToggleInput{HabitID: habitID})
		return toggledMsg{habitID: habitID, res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.dash = msg.dash
		if m.selected >= len(m.dash.Habits) {
			m.selected = max(len(m.dash.Habits)-1, 0)
		}
		if m.lastLog == "Loading…" || m.lastLog == "Refreshing…" {
			m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		}
		return m, nil
	case toggledMsg:
		if msg.err != nil {
			m.lastLog = "Toggle failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = toggleSummary(msg.res)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.dash != nil && m.selected < len(m.dash.Habits)-1 {
				m.selected++
			}
			return m, nil
		case key.Matches(msg, m.keys.Toggle):
			if m.dash == nil || len(m.dash.Habits) == 0 {
				m.lastLog = "No habits to toggle. Subscribe with `execedge subscribe <habit>`."
				return m, nil
			}
			h := m.dash.Habits[m.selected].Habit
			m.lastLog = fmt.Sprintf("Toggling %s…", h.Title)
			return m, m.toggleCmd(h.ID)
		}
	}
	return m, nil
}

func toggleSummary(res *engine.ToggleResult) string {
	var b strings.Builder
	if res.Action == engine.ActionCompleted {
		fmt.Fprintf(&b, "%s Done: +%d pts", ui.IconDone, res.PointsEarned)
	} else {
		fmt.Fprintf(&b, "Undone: -%d pts", res.PointsLost)
	}
	fmt.Fprintf(&b, " | streak %d", res.Snapshot.CurrentStreak)
	for _, a := range res.NewAchievements {
		fmt.Fprintf(&b, " | %s %s", ui.IconTrophy, a.Definition.Title)
	}
	for _, c := range res.ChallengeUpdates {
		if c.Status.IsTerminal() {
			fmt.Fprintf(&b, " | %s %s %s", ui.IconFlag, c.Definition.Title, c.Status)
		}
	}
	return b.String()
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	left := ui.Panel.Render(m.renderHabits())
	right := ui.Panel.Render(m.renderGoals())
	body := left + "\n" + right
	if m.width >= 100 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	}
	return header + "\n" + body + "\n" + m.lastLog + "\n" + m.help.View(m.keys)
}

func (m boardModel) renderHeader() string {
	if m.dash == nil {
		return ui.Heading(ui.IconChart, "ExecEdge") + " " + ui.Muted.Render("loading…")
	}
	s := m.dash.Snapshot
	done := 0
	for _, h := range m.dash.Habits {
		if h.CompletedToday {
			done++
		}
	}
	return fmt.Sprintf("%s  %s  %s  %s  %s",
		ui.Heading(ui.IconChart, "ExecEdge "+engine.FormatDay(m.dash.Today)),
		ui.LabelValue("points", s.TotalPoints),
		ui.LabelValue(ui.IconFire+" streak", fmt.Sprintf("%d (best %d)", s.CurrentStreak, s.LongestStreak)),
		ui.LabelValue("today", fmt.Sprintf("%d/%d", done, len(m.dash.Habits))),
		ui.LabelValue("week", s.CompletedThisWeek),
	)
}

func (m boardModel) renderHabits() string {
	lines := []string{ui.PanelTitle.Render("Today")}
	if m.loading && m.dash == nil {
		return strings.Join(append(lines, "Loading…"), "\n")
	}
	if len(m.dash.Habits) == 0 {
		return strings.Join(append(lines, ui.Muted.Render("(no subscribed habits)")), "\n")
	}
	for i, h := range m.dash.Habits {
		row := fmt.Sprintf("%s %-28s %s %d  %s",
			ui.Check(h.CompletedToday), h.Habit.Title, ui.IconFire, h.Streak,
			ui.Muted.Render(fmt.Sprintf("%d/7 · %s", h.WeeklyCount, h.Habit.Category)))
		if i == m.selected {
			row = ui.SelectedRow.Render(row)
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

// renderGoals lists the closest locked achievements and all challenges.
func (m boardModel) renderGoals() string {
	lines := []string{ui.PanelTitle.Render("Achievements")}
	if m.dash == nil {
		return strings.Join(append(lines, "Loading…"), "\n")
	}
	lines = append(lines, ui.Muted.Render(fmt.Sprintf("%d/%d unlocked", m.dash.UnlockedCount(), len(m.dash.Achievements))))
	for _, a := range nextAchievements(m.dash.Achievements, 4) {
		lines = append(lines, fmt.Sprintf("%s %-22s %s %s",
			ui.ProgressBar(a.Progress, a.Definition.Requirement, 10),
			a.Definition.Title,
			ui.TierText(string(a.Definition.Tier)),
			ui.Muted.Render(fmt.Sprintf("%.0f%%", a.Percent()))))
	}

	lines = append(lines, "", ui.PanelTitle.Render("Challenges"))
	if len(m.dash.Challenges) == 0 {
		lines = append(lines, ui.Muted.Render("(none)"))
	}
	for _, c := range m.dash.Challenges {
		lines = append(lines, fmt.Sprintf("%s %-22s %s %s",
			ui.ProgressBar(c.Progress, c.Definition.Target, 10),
			c.Definition.Title,
			ui.ChallengeStatusText(string(c.Status)),
			ui.Muted.Render("until "+engine.FormatDay(c.Definition.Deadline))))
	}
	return strings.Join(lines, "\n")
}

// nextAchievements returns up to n locked achievements, closest first.
func nextAchievements(all []engine.AchievementProgress, n int) []engine.AchievementProgress {
	var locked []engine.AchievementProgress
	for _, a := range all {
		if !a.Unlocked {
			locked = append(locked, a)
		}
	}
	sort.SliceStable(locked, func(i, j int) bool { return locked[i].Percent() > locked[j].Percent() })
	if len(locked) > n {
		locked = locked[:n]
	}
	return locked
}
