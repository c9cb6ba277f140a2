package internal

import (
	"context"
	"time"

	"dayplan/internal/streak"
	"dayplan/internal/task"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

type loginDoneMsg struct {
	email string
	token string
	err   error
}

// dashboardLoadedMsg carries one dashboard load. A streaks failure is
// reported on its own so the tasks still show.
type dashboardLoadedMsg struct {
	tasks      []task.Task
	streaks    []streak.Streak
	at         time.Time
	err        error
	streaksErr error
}

type editorLoadedMsg struct {
	task       task.Task
	categories []task.Category
	err        error
}

type taskSavedMsg struct {
	task    task.Task
	created bool
	err     error
}

type taskToggledMsg struct {
	id        int64
	completed bool
	err       error
}

type taskDeletedMsg struct {
	id  int64
	err error
}

// refreshDueMsg is sent when the refresh timer fires. gen ties it to one run
// of the timer so a stopped run cannot trigger a reload.
type refreshDueMsg struct {
	gen int
}

type dashboardTickMsg struct {
	gen int
}

func (m *Model) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.cfg.RequestTimeout)
}

func (m *Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		token, err := m.backend.Login(ctx, email, password)
		return loginDoneMsg{email: email, token: token, err: err}
	}
}

// loadDashboardCmd fetches tasks and streaks side by side. Neither request
// cancels the other.
func (m *Model) loadDashboardCmd() tea.Cmd {
	now := m.now
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		var (
			tasks      []task.Task
			streaks    []streak.Streak
			streaksErr error
			g          errgroup.Group
		)
		g.Go(func() error {
			var err error
			tasks, err = m.backend.Tasks(ctx)
			return err
		})
		g.Go(func() error {
			streaks, streaksErr = m.backend.Streaks(ctx)
			return nil
		})
		if err := g.Wait(); err != nil {
			return dashboardLoadedMsg{err: err, streaksErr: streaksErr}
		}
		return dashboardLoadedMsg{tasks: tasks, streaks: streaks, streaksErr: streaksErr, at: now()}
	}
}

// loadEditorCmd fetches the task being edited as stored, or starts from a
// blank one with defaults when id is zero, along with the category list.
// Categories are optional: the editor falls back to showing the raw
// category id.
func (m *Model) loadEditorCmd(id int64) tea.Cmd {
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		t := task.New()
		var categories []task.Category
		g, ctx := errgroup.WithContext(ctx)
		if id != 0 {
			g.Go(func() error {
				fetched, err := m.backend.Task(ctx, id)
				if err != nil {
					return err
				}
				t = fetched
				return nil
			})
		}
		g.Go(func() error {
			var err error
			categories, err = m.backend.Categories(ctx)
			if err != nil {
				logger.Printf("WARN: failed to load categories: %v", err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return editorLoadedMsg{err: err}
		}
		return editorLoadedMsg{task: t, categories: categories}
	}
}

func (m *Model) saveTaskCmd(id int64, in task.Input) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		if id == 0 {
			t, err := m.backend.CreateTask(ctx, in)
			return taskSavedMsg{task: t, created: true, err: err}
		}
		t, err := m.backend.UpdateTask(ctx, id, in)
		return taskSavedMsg{task: t, err: err}
	}
}

func (m *Model) toggleTaskCmd(id int64, complete bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		var err error
		if complete {
			err = m.backend.CompleteTask(ctx, id)
		} else {
			err = m.backend.UncompleteTask(ctx, id)
		}
		return taskToggledMsg{id: id, completed: complete, err: err}
	}
}

func (m *Model) deleteTaskCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		return taskDeletedMsg{id: id, err: m.backend.DeleteTask(ctx, id)}
	}
}

// dashboardTickCmd re-renders the dashboard once a second so relative times
// stay current. gen ties it to one run of the refresh timer.
func (m *Model) dashboardTickCmd() tea.Cmd {
	gen := m.refreshGen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return dashboardTickMsg{gen: gen}
	})
}

// waitRefreshCmd blocks until the refresh timer fires or its run ends.
func (m *Model) waitRefreshCmd() tea.Cmd {
	fired, done, gen := m.refresh.Fired(), m.refresh.Done(), m.refreshGen
	return func() tea.Msg {
		select {
		case <-fired:
			return refreshDueMsg{gen: gen}
		case <-done:
			return nil
		}
	}
}
