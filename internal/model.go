package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dayplan/internal/api"
	"dayplan/internal/config"
	"dayplan/internal/focus"
	"dayplan/internal/session"
	"dayplan/internal/streak"
	"dayplan/internal/task"
	"dayplan/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
)

type screen int

const (
	screenHome screen = iota
	screenLogin
	screenDashboard
	screenEditor
)

// Backend is the part of the API client the screens use.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Tasks(ctx context.Context) ([]task.Task, error)
	Task(ctx context.Context, id int64) (task.Task, error)
	CreateTask(ctx context.Context, in task.Input) (task.Task, error)
	UpdateTask(ctx context.Context, id int64, in task.Input) (task.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	CompleteTask(ctx context.Context, id int64) error
	UncompleteTask(ctx context.Context, id int64) error
	Streaks(ctx context.Context) ([]streak.Streak, error)
	Categories(ctx context.Context) ([]task.Category, error)
}

var _ Backend = (*api.Client)(nil)

// Deps are the long-lived objects the model is built from. The model owns
// Refresh and stops it on Close.
type Deps struct {
	Session *session.Session
	Backend Backend
	Refresh *timer.Timer
	Config  *config.Config
	Logger  *log.Logger
	Now     func() time.Time
}

type Model struct {
	screen  screen
	session *session.Session
	backend Backend
	refresh *timer.Timer
	cfg     *config.Config
	logger  *log.Logger
	now     func() time.Time

	refreshGen int
	scroller   *focus.Scroller
	width      int
	height     int

	login  *loginForm
	editor *editor

	Tasks         []task.Task
	Streaks       []streak.Streak
	SelectedIndex int
	ConfirmDelete bool
	Loading       bool
	LastRefresh   time.Time
	Notice        string
	Err           error
}

func NewModel(d Deps) (*Model, error) {
	if d.Session == nil || d.Backend == nil || d.Refresh == nil || d.Config == nil {
		return nil, errors.New("model needs a session, backend, refresh timer and config")
	}
	m := &Model{
		screen:   screenHome,
		session:  d.Session,
		backend:  d.Backend,
		refresh:  d.Refresh,
		cfg:      d.Config,
		logger:   d.Logger,
		now:      d.Now,
		scroller: focus.NewScroller(d.Config.FocusDelay),
	}
	if m.logger == nil {
		m.logger = log.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	if m.session.Authenticated() {
		m.logger.Printf("INFO: resuming session for %s", m.session.Email())
		return m.enterDashboard()
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case loginDoneMsg:
		return m, m.handleLoginDone(msg)
	case dashboardLoadedMsg:
		return m, m.handleDashboardLoaded(msg)
	case editorLoadedMsg:
		return m, m.handleEditorLoaded(msg)
	case taskSavedMsg:
		return m, m.handleTaskSaved(msg)
	case taskToggledMsg:
		return m, m.handleTaskToggled(msg)
	case taskDeletedMsg:
		return m, m.handleTaskDeleted(msg)
	case refreshDueMsg:
		return m, m.handleRefreshDue(msg)
	case dashboardTickMsg:
		if msg.gen != m.refreshGen || m.screen != screenDashboard || !m.refresh.Running() {
			return m, nil
		}
		return m, m.dashboardTickCmd()
	case focus.ScrollMsg:
		if m.editor != nil {
			lines, rows := m.editorLines()
			m.scroller.Apply(msg, rows[m.editor.focused], len(lines), m.formHeight())
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	switch m.screen {
	case screenLogin:
		return m.loginView()
	case screenDashboard:
		if m.ConfirmDelete {
			return m.confirmDeleteView()
		}
		return m.dashboardView()
	case screenEditor:
		return m.editorView()
	}
	return m.homeView()
}

func (m *Model) SelectedTask() *task.Task {
	if m.SelectedIndex >= 0 && m.SelectedIndex < len(m.Tasks) {
		return &m.Tasks[m.SelectedIndex]
	}
	return nil
}

// Close stops the refresh timer. The caller owns the session store.
func (m *Model) Close() {
	m.refresh.Stop()
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenLogin:
		return m.handleLoginInput(msg)
	case screenDashboard:
		return m.handleDashboardInput(msg)
	case screenEditor:
		return m.handleEditorInput(msg)
	}
	return m.handleHomeInput(msg)
}

func (m *Model) handleHomeInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter", " ", "l":
		if m.session.Authenticated() {
			return m, m.enterDashboard()
		}
		return m, m.enterLogin("")
	}
	return m, nil
}

func (m *Model) enterLogin(notice string) tea.Cmd {
	m.leaveDashboard()
	m.screen = screenLogin
	m.editor = nil
	m.Notice = notice
	m.login = newLoginForm(m.session.Email())
	return m.login.focus()
}

// enterDashboard shows the dashboard, reloads it and starts the refresh
// timer if it is not already running.
func (m *Model) enterDashboard() tea.Cmd {
	m.screen = screenDashboard
	m.editor = nil
	m.login = nil
	m.ConfirmDelete = false
	m.Loading = true

	cmds := []tea.Cmd{m.loadDashboardCmd()}
	if !m.refresh.Running() {
		m.refresh.Start()
		m.refreshGen++
		cmds = append(cmds, m.waitRefreshCmd(), m.dashboardTickCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) leaveDashboard() {
	m.ConfirmDelete = false
	m.refresh.Stop()
}

func (m *Model) openEditor(id int64) tea.Cmd {
	m.leaveDashboard()
	m.screen = screenEditor
	m.editor = nil
	m.Err = nil
	m.Notice = ""
	m.scroller.Center(0, 0, 0)
	return m.loadEditorCmd(id)
}

// signOut clears the stored token and returns to the login screen.
func (m *Model) signOut(notice string) tea.Cmd {
	m.leaveDashboard()
	if err := m.session.SignOut(); err != nil {
		m.logger.Printf("ERROR: failed to clear session: %v", err)
	}
	m.Tasks = nil
	m.Streaks = nil
	m.SelectedIndex = 0
	m.LastRefresh = time.Time{}
	m.Err = nil
	return m.enterLogin(notice)
}

// fail records err for display, or signs out when the backend no longer
// accepts the token.
func (m *Model) fail(err error) tea.Cmd {
	if errors.Is(err, api.ErrUnauthorized) {
		m.logger.Printf("WARN: session rejected: %v", err)
		return m.signOut("Your session has expired. Please sign in again.")
	}
	m.logger.Printf("ERROR: %v", err)
	m.Err = err
	return nil
}

func (m *Model) handleLoginDone(msg loginDoneMsg) tea.Cmd {
	if m.login == nil {
		return nil
	}
	m.login.submitting = false
	if msg.err != nil {
		m.logger.Printf("WARN: login failed for %s: %v", msg.email, msg.err)
		if errors.Is(msg.err, api.ErrUnauthorized) {
			m.login.err = "Invalid email or password"
		} else {
			m.login.err = fmt.Sprintf("Login failed: %v", msg.err)
		}
		return nil
	}
	if err := m.session.SignIn(msg.email, msg.token); err != nil {
		m.login.err = fmt.Sprintf("Could not save session: %v", err)
		return nil
	}
	m.logger.Printf("INFO: signed in as %s", msg.email)
	m.Notice = "Signed in as " + msg.email
	m.Err = nil
	return m.enterDashboard()
}

func (m *Model) handleDashboardLoaded(msg dashboardLoadedMsg) tea.Cmd {
	m.Loading = false
	if msg.err != nil {
		return m.fail(fmt.Errorf("failed to load dashboard: %w", msg.err))
	}
	if msg.streaksErr != nil {
		if errors.Is(msg.streaksErr, api.ErrUnauthorized) {
			return m.fail(msg.streaksErr)
		}
		m.logger.Printf("WARN: failed to load streaks: %v", msg.streaksErr)
	} else {
		m.Streaks = msg.streaks
	}
	m.Tasks = msg.tasks
	m.LastRefresh = msg.at
	m.Err = nil
	if m.SelectedIndex >= len(m.Tasks) {
		m.SelectedIndex = len(m.Tasks) - 1
	}
	if m.SelectedIndex < 0 {
		m.SelectedIndex = 0
	}
	return nil
}

func (m *Model) handleEditorLoaded(msg editorLoadedMsg) tea.Cmd {
	if m.screen != screenEditor {
		return nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return m.fail(msg.err)
		}
		cmd := m.enterDashboard()
		m.Err = fmt.Errorf("failed to open task: %w", msg.err)
		return cmd
	}
	m.editor = newEditor(msg.task, msg.categories)
	return m.editor.focus()
}

func (m *Model) handleTaskSaved(msg taskSavedMsg) tea.Cmd {
	if m.editor == nil {
		return nil
	}
	m.editor.saving = false
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return m.fail(msg.err)
		}
		m.logger.Printf("ERROR: failed to save task: %v", msg.err)
		m.editor.err = fmt.Sprintf("Failed to save task: %v", msg.err)
		return nil
	}
	verb := "Updated"
	if msg.created {
		verb = "Created"
	}
	cmd := m.enterDashboard()
	m.Notice = fmt.Sprintf("%s %q", verb, msg.task.Title)
	return cmd
}

func (m *Model) handleTaskToggled(msg taskToggledMsg) tea.Cmd {
	if msg.err != nil {
		return m.fail(fmt.Errorf("failed to update task: %w", msg.err))
	}
	for i := range m.Tasks {
		if m.Tasks[i].ID == msg.id {
			m.Tasks[i].IsCompleted = msg.completed
		}
	}
	if m.screen != screenDashboard {
		return nil
	}
	m.refresh.Reset()
	return m.loadDashboardCmd()
}

func (m *Model) handleTaskDeleted(msg taskDeletedMsg) tea.Cmd {
	if msg.err != nil {
		return m.fail(fmt.Errorf("failed to delete task: %w", msg.err))
	}
	for i := range m.Tasks {
		if m.Tasks[i].ID == msg.id {
			m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
			break
		}
	}
	if m.SelectedIndex >= len(m.Tasks) {
		m.SelectedIndex = max(len(m.Tasks)-1, 0)
	}
	m.Notice = "Task deleted"
	if m.screen != screenDashboard {
		return nil
	}
	m.refresh.Reset()
	return m.loadDashboardCmd()
}

func (m *Model) handleRefreshDue(msg refreshDueMsg) tea.Cmd {
	if msg.gen != m.refreshGen || m.screen != screenDashboard || !m.refresh.Running() {
		return nil
	}
	if m.Loading {
		return m.waitRefreshCmd()
	}
	m.Loading = true
	return tea.Batch(m.loadDashboardCmd(), m.waitRefreshCmd())
}
