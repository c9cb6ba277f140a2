package internal

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleDashboardInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ConfirmDelete {
		return m.handleConfirmInput(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.SelectedIndex > 0 {
			m.SelectedIndex--
		}
	case "down", "j":
		if m.SelectedIndex < len(m.Tasks)-1 {
			m.SelectedIndex++
		}
	case "r":
		if m.Loading {
			return m, nil
		}
		m.Loading = true
		m.refresh.Reset()
		return m, m.loadDashboardCmd()
	case "enter", " ":
		if t := m.SelectedTask(); t != nil {
			m.Notice = ""
			return m, m.toggleTaskCmd(t.ID, !t.IsCompleted)
		}
	case "d":
		if m.SelectedTask() != nil {
			m.ConfirmDelete = true
		}
	case "e":
		if t := m.SelectedTask(); t != nil {
			return m, m.openEditor(t.ID)
		}
	case "n":
		return m, m.openEditor(0)
	case "L":
		m.logger.Printf("INFO: signed out %s", m.session.Email())
		return m, m.signOut("Signed out.")
	case "esc":
		m.Notice = ""
		m.Err = nil
	}
	return m, nil
}

func (m *Model) handleConfirmInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.ConfirmDelete = false
		if t := m.SelectedTask(); t != nil {
			return m, m.deleteTaskCmd(t.ID)
		}
	case "n", "esc", "q":
		m.ConfirmDelete = false
	}
	return m, nil
}
