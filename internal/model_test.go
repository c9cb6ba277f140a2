package internal

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dayplan/internal/api"
	"dayplan/internal/config"
	"dayplan/internal/focus"
	"dayplan/internal/schedule"
	"dayplan/internal/session"
	"dayplan/internal/streak"
	"dayplan/internal/task"
	"dayplan/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu         sync.Mutex
	tasks      []task.Task
	streaks    []streak.Streak
	categories []task.Category
	tasksErr   error
	streaksErr error
	saved      []task.Input
	completed  map[int64]bool
	deleted    []int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tasks: []task.Task{
			{ID: 1, Title: "Standup", StartTime: "09:00:00", DurationMinutes: 30, Priority: task.PriorityHigh, CategoryID: 1},
			{ID: 2, Title: "Lunch", StartTime: "12:30:00", DurationMinutes: 60, Priority: task.PriorityLow, CategoryID: 2},
		},
		streaks: []streak.Streak{
			{ID: 1, StreakType: "daily_completion", CurrentStreak: 3, LongestStreak: 7, LastCompletedDate: "2024-05-01"},
		},
		categories: []task.Category{
			{ID: 1, Name: "Work"},
			{ID: 2, Name: "Health"},
			{ID: 3, Name: "Personal"},
		},
		completed: make(map[int64]bool),
	}
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (string, error) {
	if password != "secret" {
		return "", &api.Error{Status: http.StatusUnauthorized, Detail: "Incorrect email or password"}
	}
	return "token-for-" + email, nil
}

func (f *fakeBackend) Tasks(context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tasksErr != nil {
		return nil, f.tasksErr
	}
	return append([]task.Task(nil), f.tasks...), nil
}

func (f *fakeBackend) Task(_ context.Context, id int64) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, &api.Error{Status: http.StatusNotFound, Detail: "Task not found"}
}

func (f *fakeBackend) CreateTask(_ context.Context, in task.Input) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, in)
	return task.Task{ID: 99, Title: in.Title, StartTime: in.StartTime, DurationMinutes: in.DurationMinutes}, nil
}

func (f *fakeBackend) UpdateTask(_ context.Context, id int64, in task.Input) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, in)
	return task.Task{ID: id, Title: in.Title, StartTime: in.StartTime, DurationMinutes: in.DurationMinutes}, nil
}

func (f *fakeBackend) DeleteTask(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) CompleteTask(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[id] = true
	return nil
}

func (f *fakeBackend) UncompleteTask(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[id] = false
	return nil
}

func (f *fakeBackend) Streaks(context.Context) ([]streak.Streak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.streaksErr != nil {
		return nil, f.streaksErr
	}
	return append([]streak.Streak(nil), f.streaks...), nil
}

func (f *fakeBackend) Categories(context.Context) ([]task.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]task.Category(nil), f.categories...), nil
}

var testNow = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, b *fakeBackend, signedIn bool) *Model {
	t.Helper()

	store, err := session.Open(filepath.Join(t.TempDir(), "dayplan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sess, err := session.Load(store)
	require.NoError(t, err)
	if signedIn {
		require.NoError(t, sess.SignIn("ada@example.com", "good-token"))
	}

	m, err := NewModel(Deps{
		Session: sess,
		Backend: b,
		Refresh: timer.New(time.Hour),
		Config:  &config.Config{RefreshInterval: time.Hour, RequestTimeout: time.Second},
		Logger:  log.New(io.Discard, "", 0),
		Now:     func() time.Time { return testNow },
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(key(string(r)))
	}
}

// loadDashboard enters the dashboard and delivers its first load.
func loadDashboard(t *testing.T, m *Model) {
	t.Helper()
	m.enterDashboard()
	m.Update(m.loadDashboardCmd()())
	require.Equal(t, screenDashboard, m.screen)
	require.NoError(t, m.Err)
}

// openEditor opens the editor for id and delivers the fetched task.
func openEditor(t *testing.T, m *Model, id int64) *editor {
	t.Helper()
	cmd := m.openEditor(id)
	require.NotNil(t, cmd)
	m.Update(cmd())
	require.Equal(t, screenEditor, m.screen)
	require.NotNil(t, m.editor)
	return m.editor
}

func TestInit_SignedOutShowsHome(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), false)

	assert.Nil(t, m.Init())
	assert.Equal(t, screenHome, m.screen)
	assert.Contains(t, m.View(), "Daily Schedule Tracker")
	assert.False(t, m.refresh.Running())
}

func TestInit_SignedInOpensDashboard(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), true)

	assert.NotNil(t, m.Init())
	assert.Equal(t, screenDashboard, m.screen)
	assert.True(t, m.refresh.Running())
}

func TestLogin_Flow(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b, false)

	m.Update(key("enter"))
	require.Equal(t, screenLogin, m.screen)

	m.Update(key("enter"))
	assert.Equal(t, loginPassword, m.login.focused, "enter on an empty form moves to password")
	m.Update(key("enter"))
	assert.Equal(t, "Email and password are required", m.login.err)

	m.Update(key("shift+tab"))
	typeText(m, "ada@example.com")
	m.Update(key("tab"))
	typeText(m, "secret")
	assert.Contains(t, m.View(), "ada@example.com")
	assert.NotContains(t, m.View(), "secret")

	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.login.submitting)

	m.Update(cmd())
	assert.Equal(t, screenDashboard, m.screen)
	assert.True(t, m.session.Authenticated())
	assert.Equal(t, "token-for-ada@example.com", m.session.Token())
	assert.True(t, m.refresh.Running())
}

func TestLogin_RejectedCredentials(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), false)
	m.enterLogin("")

	typeText(m, "ada@example.com")
	m.Update(key("tab"))
	typeText(m, "wrong")
	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Equal(t, screenLogin, m.screen)
	assert.Equal(t, "Invalid email or password", m.login.err)
	assert.False(t, m.session.Authenticated())
}

func TestDashboard_ShowsTasksAndStreaks(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), true)
	loadDashboard(t, m)

	require.Len(t, m.Tasks, 2)
	assert.Equal(t, testNow, m.LastRefresh)

	view := m.View()
	assert.Contains(t, view, "9:00 AM – 9:30 AM")
	assert.Contains(t, view, "Standup")
	assert.Contains(t, view, "3 days current")
	assert.Contains(t, view, "Updated now")
}

func TestDashboard_UnauthorizedSignsOut(t *testing.T) {
	b := newFakeBackend()
	b.tasksErr = &api.Error{Status: http.StatusUnauthorized, Detail: "Could not validate credentials"}
	m := newTestModel(t, b, true)

	m.enterDashboard()
	require.True(t, m.refresh.Running())
	m.Update(m.loadDashboardCmd()())

	assert.Equal(t, screenLogin, m.screen)
	assert.False(t, m.session.Authenticated())
	assert.False(t, m.refresh.Running())
	assert.Contains(t, m.View(), "Your session has expired")
}

func TestDashboard_OtherErrorsStayOnDashboard(t *testing.T) {
	b := newFakeBackend()
	b.tasksErr = &api.Error{Status: http.StatusInternalServerError}
	m := newTestModel(t, b, true)

	m.enterDashboard()
	m.Update(m.loadDashboardCmd()())

	assert.Equal(t, screenDashboard, m.screen)
	require.Error(t, m.Err)
	assert.Contains(t, m.View(), "failed to load dashboard")
}

func TestDashboard_ToggleComplete(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b, true)
	loadDashboard(t, m)

	m.Update(key("down"))
	require.Equal(t, int64(2), m.SelectedTask().ID)

	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.True(t, b.completed[2])
	assert.True(t, m.Tasks[1].IsCompleted)

	_, cmd = m.Update(key(" "))
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.False(t, b.completed[2])
}

func TestDashboard_DeleteNeedsConfirmation(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b, true)
	loadDashboard(t, m)

	m.Update(key("d"))
	require.True(t, m.ConfirmDelete)
	assert.Contains(t, m.View(), `Delete "Standup"?`)

	m.Update(key("n"))
	assert.False(t, m.ConfirmDelete)
	assert.Empty(t, b.deleted)

	m.Update(key("d"))
	_, cmd := m.Update(key("y"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Equal(t, []int64{1}, b.deleted)
	require.Len(t, m.Tasks, 1)
	assert.Equal(t, "Lunch", m.Tasks[0].Title)
}

func TestDashboard_Logout(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), true)
	loadDashboard(t, m)

	m.Update(key("L"))

	assert.Equal(t, screenLogin, m.screen)
	assert.False(t, m.session.Authenticated())
	assert.False(t, m.refresh.Running())
	assert.Nil(t, m.Tasks)
}

func TestRefreshDue_IgnoresStaleRuns(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), true)
	loadDashboard(t, m)
	gen := m.refreshGen

	assert.Nil(t, m.handleRefreshDue(refreshDueMsg{gen: gen - 1}))

	cmd := m.handleRefreshDue(refreshDueMsg{gen: gen})
	assert.NotNil(t, cmd)
	assert.True(t, m.Loading)
}

func TestEditor_ShowsStoredTimes(t *testing.T) {
	b := newFakeBackend()
	b.tasks = append(b.tasks, task.Task{ID: 5, Title: "Review", StartTime: "14:00", DurationMinutes: 45, CategoryID: 1, Priority: task.PriorityMedium})
	m := newTestModel(t, b, true)

	e := openEditor(t, m, 5)

	sum := e.times.Summary()
	assert.Equal(t, "2:00 PM", sum.Start)
	assert.Equal(t, "2:45 PM", sum.End)
	assert.Equal(t, "0h 45m", sum.Total)

	view := m.View()
	assert.Contains(t, view, "Edit Task")
	assert.Contains(t, view, "2:00 PM")
	assert.Contains(t, view, "2:45 PM")
	assert.Contains(t, view, "0h 45m")
}

func TestEditor_DurationModeRecomputesEnd(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), true)
	e := openEditor(t, m, 1)
	require.False(t, m.refresh.Running())

	e.focused = fieldHours
	e.focus()
	e.setValue(fieldHours, "")
	m.Update(key("a"))
	assert.Equal(t, "", e.value(fieldHours), "hours take digits only")

	m.Update(key("1"))
	assert.Equal(t, "1", e.value(fieldHours))
	assert.Equal(t, "10:30", e.times.Spec().End)
	assert.Equal(t, "10:30", e.value(fieldEnd))
}

func TestEditor_EndModeRecomputesDuration(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), true)
	e := openEditor(t, m, 1)

	for e.focused != fieldMode {
		m.Update(key("tab"))
	}
	m.Update(key(" "))
	require.Equal(t, schedule.StartEnd, e.times.Mode())
	assert.Contains(t, e.order(), fieldEnd)
	assert.NotContains(t, e.order(), fieldHours)

	e.setValue(fieldEnd, "10:15")
	e.edited(fieldEnd)
	assert.Equal(t, "1", e.value(fieldHours))
	assert.Equal(t, "15", e.value(fieldMinutes))
	assert.Equal(t, "1h 15m", e.times.Summary().Total)

	e.setValue(fieldEnd, "09:00")
	e.edited(fieldEnd)
	assert.Equal(t, "1h 15m", e.times.Summary().Total, "end before start leaves the duration alone")

	_, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, "End time must be after start time", e.err)
	assert.Contains(t, m.View(), "End time must be after start time")
}

func TestEditor_TitleRequired(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), true)
	e := openEditor(t, m, 0)

	_, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, "Task title is required", e.err)
}

func TestEditor_CreateSubmitsReconciledDuration(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b, true)
	e := openEditor(t, m, 0)
	assert.Contains(t, m.View(), "New Task")

	typeText(m, "Gym")
	for e.focused != fieldCategory {
		m.Update(key("tab"))
	}
	m.Update(key("right"))
	assert.Equal(t, int64(2), e.categoryID)
	assert.Contains(t, m.View(), "Health")

	for e.focused != fieldPriority {
		m.Update(key("tab"))
	}
	m.Update(key("right"))
	assert.Equal(t, task.PriorityHigh, e.priority)

	m.Update(key("tab"))
	m.Update(key(" "))
	require.True(t, e.recurring)
	assert.Equal(t, "daily", e.pattern)
	m.Update(key("tab"))
	m.Update(key("right"))
	assert.Equal(t, "weekly", e.pattern)

	e.setValue(fieldStart, "18:00")
	e.edited(fieldStart)
	e.setValue(fieldMinutes, "45")
	e.edited(fieldMinutes)

	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, e.saving)
	m.Update(cmd())

	require.Len(t, b.saved, 1)
	got := b.saved[0]
	assert.Equal(t, "Gym", got.Title)
	assert.Equal(t, "18:00", got.StartTime)
	assert.Equal(t, 45, got.DurationMinutes)
	assert.Equal(t, int64(2), got.CategoryID)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.True(t, got.IsRecurring)
	assert.Equal(t, "weekly", got.RecurrencePattern)

	assert.Equal(t, screenDashboard, m.screen)
	assert.Equal(t, `Created "Gym"`, m.Notice)
}

func TestEditor_EscReturnsToDashboard(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), true)
	openEditor(t, m, 1)

	m.Update(key("esc"))
	assert.Equal(t, screenDashboard, m.screen)
	assert.Nil(t, m.editor)
	assert.True(t, m.refresh.Running())
}

func TestEditor_MissingTaskReturnsToDashboard(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), true)

	cmd := m.openEditor(42)
	m.Update(cmd())

	assert.Equal(t, screenDashboard, m.screen)
	require.Error(t, m.Err)
	assert.ErrorIs(t, m.Err, api.ErrNotFound)
}

func TestEditor_ScrollsFocusedFieldIntoView(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), true)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: editorChrome + 4})
	e := openEditor(t, m, 1)

	for e.focused != fieldPriority {
		m.Update(key("tab"))
	}
	msg, ok := m.scroller.Request()().(focus.ScrollMsg)
	require.True(t, ok)
	m.Update(msg)

	lines, rows := m.editorLines()
	off := m.scroller.Offset()
	assert.Greater(t, off, 0)
	visible := focus.Window(lines, off, m.formHeight())
	assert.Contains(t, visible, lines[rows[fieldPriority]])
}

func TestDashboard_StreaksFailureKeepsTasks(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b, true)
	loadDashboard(t, m)
	require.Len(t, m.Streaks, 1)

	b.mu.Lock()
	b.streaksErr = errors.New("streaks down")
	b.tasks = b.tasks[:1]
	b.mu.Unlock()
	m.Update(m.loadDashboardCmd()())

	assert.Equal(t, screenDashboard, m.screen)
	assert.NoError(t, m.Err)
	assert.Len(t, m.Tasks, 1, "tasks still refresh")
	assert.Len(t, m.Streaks, 1, "previous streaks are kept")
	assert.Contains(t, m.View(), "Standup")
}

func TestDashboard_StreaksUnauthorizedSignsOut(t *testing.T) {
	b := newFakeBackend()
	b.streaksErr = &api.Error{Status: http.StatusUnauthorized}
	m := newTestModel(t, b, true)

	m.enterDashboard()
	m.Update(m.loadDashboardCmd()())

	assert.Equal(t, screenLogin, m.screen)
	assert.False(t, m.session.Authenticated())
}

func TestDashboard_TickKeepsRendering(t *testing.T) {
	m := newTestModel(t, newFakeBackend(), true)
	loadDashboard(t, m)
	gen := m.refreshGen

	_, cmd := m.Update(dashboardTickMsg{gen: gen})
	assert.NotNil(t, cmd)

	_, cmd = m.Update(dashboardTickMsg{gen: gen - 1})
	assert.Nil(t, cmd)

	m.openEditor(1)
	_, cmd = m.Update(dashboardTickMsg{gen: gen})
	assert.Nil(t, cmd, "ticks stop once the dashboard is left")
}

func TestEditor_SeedsFromStoredRecord(t *testing.T) {
	b := newFakeBackend()
	b.tasks = append(b.tasks, task.Task{ID: 7, Title: "Stretch", StartTime: "10:00:00", DurationMinutes: 0})
	m := newTestModel(t, b, true)

	e := openEditor(t, m, 7)

	assert.Equal(t, schedule.Spec{Start: "10:00", Hours: 0, Minutes: 0, End: schedule.DefaultEnd}, e.times.Spec())
	assert.Equal(t, "0", e.value(fieldMinutes))
	assert.Equal(t, task.PriorityMedium, e.priority)

	_, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, "Duration must be greater than zero", e.err)
	assert.Empty(t, b.saved)
}
