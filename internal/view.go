package internal

import (
	"fmt"
	"strings"
	"time"

	"dayplan/internal/focus"
	"dayplan/internal/schedule"
	"dayplan/internal/streak"
	"dayplan/internal/task"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	viewWidth  = 80
	viewHeight = 24
	// editorChrome is the rows around the scrolling form: title, gap, box
	// border, summary block and help line.
	editorChrome = 14
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	taglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("69")).
			Italic(true)

	taskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	taskItemSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("69")).
			Bold(true)

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Strikethrough(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	inputInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

var features = []struct{ title, body string }{
	{"Plan your day", "Lay out today's tasks with a start time and a duration."},
	{"Track progress", "Tick tasks off as you go and see what is left."},
	{"Build streaks", "Keep completing tasks day after day to grow your streaks."},
}

func (m *Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = viewWidth
	}
	if h <= 0 {
		h = viewHeight
	}
	return w, h
}

func (m *Model) statusLine() string {
	switch {
	case m.Err != nil:
		return errorStyle.Render(m.Err.Error())
	case m.Notice != "":
		return noticeStyle.Render(m.Notice)
	}
	return ""
}

func (m *Model) homeView() string {
	w, h := m.size()
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(60).Render("Daily Schedule Tracker"))
	sb.WriteString("\n")
	sb.WriteString(taglineStyle.Width(60).Align(lipgloss.Center).Render("Organize your day, one task at a time."))
	sb.WriteString("\n\n")
	for _, f := range features {
		sb.WriteString(headerStyle.Render(f.title))
		sb.WriteString("\n")
		sb.WriteString(inactiveStyle.Render(f.body))
		sb.WriteString("\n\n")
	}
	action := "Get Started: Enter"
	if m.session.Authenticated() {
		action = "Dashboard: Enter"
	}
	sb.WriteString(helpStyle.Render(action + " | Quit: q"))
	if line := m.statusLine(); line != "" {
		sb.WriteString("\n\n" + line)
	}

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, boxStyle.Width(64).Render(sb.String()))
}

func (m *Model) loginView() string {
	w, h := m.size()
	f := m.login
	if f == nil {
		return ""
	}

	label := func(field loginField, text string) string {
		if f.focused == field {
			return inputStyle.Render("→ " + text)
		}
		return inputInactiveStyle.Render("  " + text)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Width(46).Render("Sign In"))
	sb.WriteString("\n\n")
	sb.WriteString(label(loginEmail, "Email:    ") + f.email.View())
	sb.WriteString("\n\n")
	sb.WriteString(label(loginPassword, "Password: ") + f.password.View())
	sb.WriteString("\n\n")
	switch {
	case f.submitting:
		sb.WriteString(inactiveStyle.Render("Signing in..."))
	case f.err != "":
		sb.WriteString(errorStyle.Render(f.err))
	case m.Notice != "":
		sb.WriteString(noticeStyle.Render(m.Notice))
	}
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Tab: Switch | Enter: Sign in | Esc: Back"))

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, boxStyle.Width(50).Render(sb.String()))
}

func (m *Model) dashboardView() string {
	var sb strings.Builder

	heading := "Today"
	if email := m.session.Email(); email != "" {
		heading = fmt.Sprintf("Today · %s", email)
	}
	sb.WriteString(titleStyle.Width(viewWidth).Render(heading))
	sb.WriteString("\n\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.taskListView(),
		"  ",
		m.streakView(),
	)
	sb.WriteString(boxes)
	sb.WriteString("\n\n")
	sb.WriteString(m.refreshLine())
	if line := m.statusLine(); line != "" {
		sb.WriteString("\n" + line)
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Navigate: Up/Down | Done: Enter | New: n | Edit: e | Delete: d | Refresh: r | Logout: L | Quit: q"))

	return sb.String()
}

func (m *Model) refreshLine() string {
	if m.Loading && m.LastRefresh.IsZero() {
		return inactiveStyle.Render("Loading...")
	}
	parts := []string{}
	if !m.LastRefresh.IsZero() {
		parts = append(parts, "Updated "+humanize.RelTime(m.LastRefresh, m.now(), "ago", "from now"))
	}
	if m.refresh.Running() {
		parts = append(parts, fmt.Sprintf("next refresh in %s", m.refresh.Remaining().Round(time.Second)))
	}
	if m.Loading {
		parts = append(parts, "refreshing...")
	}
	return inactiveStyle.Render(strings.Join(parts, " · "))
}

func taskLine(t task.Task) string {
	mark := "[ ]"
	if t.IsCompleted {
		mark = "[x]"
	}
	span := fmt.Sprintf("%s – %s", t.StartLabel(), t.EndLabel())
	return fmt.Sprintf("%s %s %s", mark, span, t.Title)
}

func (m *Model) taskListView() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Tasks"))
	sb.WriteString("\n\n")

	if len(m.Tasks) == 0 {
		if m.Loading {
			sb.WriteString(inactiveStyle.Render("Loading..."))
		} else {
			sb.WriteString(inactiveStyle.Render("No tasks yet. Press 'n' to add one."))
		}
		return boxStyle.Width(50).Height(16).Render(sb.String())
	}

	for i, t := range m.Tasks {
		line := taskLine(t)
		switch {
		case i == m.SelectedIndex:
			sb.WriteString(taskItemSelectedStyle.Render(line))
		case t.IsCompleted:
			sb.WriteString(taskItemStyle.Render(completedStyle.Render(line)))
		default:
			sb.WriteString(taskItemStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	if t := m.SelectedTask(); t != nil {
		sb.WriteString("\n")
		style, ok := priorityStyles[t.Priority]
		if !ok {
			style = inactiveStyle
		}
		detail := fmt.Sprintf("%s · %s", timeStyle.Render(t.DurationLabel()), style.Render(string(t.Priority)))
		if t.Category != "" {
			detail += " · " + t.Category
		}
		if t.IsRecurring && t.RecurrencePattern != "" {
			detail += " · repeats " + t.RecurrencePattern
		}
		sb.WriteString(detail)
		if t.Description != "" {
			sb.WriteString("\n" + inactiveStyle.Render(t.Description))
		}
	}

	return boxStyle.Width(50).Height(16).Render(sb.String())
}

func (m *Model) streakView() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Streaks"))
	sb.WriteString("\n\n")

	if len(m.Streaks) == 0 {
		sb.WriteString(inactiveStyle.Render("Complete a task to start a streak."))
		return boxStyle.Width(26).Height(16).Render(sb.String())
	}
	now := m.now()
	for _, s := range m.Streaks {
		sb.WriteString(streakCard(s, now))
		sb.WriteString("\n")
	}
	return boxStyle.Width(26).Height(16).Render(sb.String())
}

func streakCard(s streak.Streak, now time.Time) string {
	return fmt.Sprintf("%s\n  %s current\n  best %s\n  %s\n",
		timeStyle.Render(s.Label()),
		streak.Days(s.CurrentStreak),
		streak.Days(s.LongestStreak),
		inactiveStyle.Render("last "+s.LastCompletedLabel(now)),
	)
}

func (m *Model) confirmDeleteView() string {
	w, h := m.size()
	title := ""
	if t := m.SelectedTask(); t != nil {
		title = t.Title
	}
	body := fmt.Sprintf("%s\n\nDelete %q?\n\n%s",
		titleStyle.Width(40).Render("Delete Task"),
		title,
		helpStyle.Render("y: Delete | n: Cancel"),
	)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, boxStyle.Width(46).Render(body))
}

// formHeight is the number of form rows that fit on screen; zero means no
// limit.
func (m *Model) formHeight() int {
	if m.height <= 0 {
		return 0
	}
	return max(m.height-editorChrome, 3)
}

// editorLines renders one row per form field and reports the row each field
// sits on.
func (m *Model) editorLines() ([]string, map[editorField]int) {
	e := m.editor
	rows := make(map[editorField]int)
	var lines []string

	add := func(f editorField, label, value string) {
		rows[f] = len(lines)
		marker := "  "
		labelStyle := inputInactiveStyle
		if e.focused == f {
			marker = "→ "
			labelStyle = inputStyle
		}
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%s%-12s", marker, label))+value)
	}
	selector := func(f editorField, v string) string {
		if e.focused == f {
			return inputStyle.Render("‹ " + v + " ›")
		}
		return v
	}

	for _, f := range e.order() {
		switch f {
		case fieldTitle:
			add(f, "Title", e.inputs[f].View())
		case fieldDescription:
			add(f, "Description", e.inputs[f].View())
		case fieldCategory:
			add(f, "Category", selector(f, e.categoryName()))
		case fieldMode:
			add(f, "Time mode", selector(f, e.times.Mode().String()))
		case fieldStart:
			add(f, "Start", e.inputs[f].View())
		case fieldHours:
			add(f, "Hours", e.inputs[f].View())
		case fieldMinutes:
			add(f, "Minutes", e.inputs[f].View())
		case fieldEnd:
			add(f, "End", e.inputs[f].View())
		case fieldPriority:
			style, ok := priorityStyles[e.priority]
			if !ok {
				style = inactiveStyle
			}
			add(f, "Priority", selector(f, style.Render(string(e.priority))))
		case fieldRecurring:
			v := "no"
			if e.recurring {
				v = "yes"
			}
			add(f, "Recurring", selector(f, v))
		case fieldPattern:
			add(f, "Repeats", selector(f, e.pattern))
		}
	}
	return lines, rows
}

func summaryLines(s schedule.Summary) []string {
	return []string{
		fmt.Sprintf("Start:    %s", timeStyle.Render(s.Start)),
		fmt.Sprintf("End:      %s", timeStyle.Render(s.End)),
		fmt.Sprintf("Duration: %s", timeStyle.Render(s.Duration)),
		fmt.Sprintf("Total: %s", s.Total),
	}
}

func (m *Model) editorView() string {
	w, h := m.size()
	heading := "New Task"
	if m.editor != nil && m.editor.editing() {
		heading = "Edit Task"
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Width(60).Render(heading))
	sb.WriteString("\n\n")

	e := m.editor
	if e == nil {
		if m.Err != nil {
			sb.WriteString(errorStyle.Render(m.Err.Error()))
		} else {
			sb.WriteString(inactiveStyle.Render("Loading..."))
		}
		sb.WriteString("\n\n" + helpStyle.Render("Esc: Back"))
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, boxStyle.Width(64).Render(sb.String()))
	}

	lines, _ := m.editorLines()
	sb.WriteString(strings.Join(focus.Window(lines, m.scroller.Offset(), m.formHeight()), "\n"))
	sb.WriteString("\n\n")
	sb.WriteString(strings.Join(summaryLines(e.times.Summary()), "\n"))
	sb.WriteString("\n\n")
	switch {
	case e.saving:
		sb.WriteString(inactiveStyle.Render("Saving..."))
	case e.err != "":
		sb.WriteString(errorStyle.Render(e.err))
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Tab: Next | ←/→: Change | Enter: Save | Esc: Cancel"))

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, boxStyle.Width(64).Render(sb.String()))
}
