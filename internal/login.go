package internal

import (
	"strings"

	"dayplan/internal/focus"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loginField int

const (
	loginEmail loginField = iota
	loginPassword
)

var loginOrder = []loginField{loginEmail, loginPassword}

type loginForm struct {
	email      textinput.Model
	password   textinput.Model
	focused    loginField
	submitting bool
	err        string
}

func newLoginForm(email string) *loginForm {
	e := textinput.New()
	e.Placeholder = "you@example.com"
	e.CharLimit = 254
	e.Width = 32
	e.SetValue(email)

	p := textinput.New()
	p.Placeholder = "password"
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'
	p.CharLimit = 128
	p.Width = 32

	f := &loginForm{email: e, password: p}
	if email != "" {
		f.focused = loginPassword
	}
	f.focus()
	return f
}

func (f *loginForm) focus() tea.Cmd {
	f.email.Blur()
	f.password.Blur()
	if f.focused == loginPassword {
		return f.password.Focus()
	}
	return f.email.Focus()
}

// credentials returns the trimmed email and the raw password, or false with
// f.err set when either is missing.
func (f *loginForm) credentials() (string, string, bool) {
	email := strings.TrimSpace(f.email.Value())
	password := f.password.Value()
	if email == "" || password == "" {
		f.err = "Email and password are required"
		return "", "", false
	}
	return email, password, true
}

func (m *Model) handleLoginInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.login
	if f.submitting {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.screen = screenHome
		return m, nil
	case "tab", "down":
		f.focused = focus.Next(loginOrder, f.focused)
		return m, f.focus()
	case "shift+tab", "up":
		f.focused = focus.Prev(loginOrder, f.focused)
		return m, f.focus()
	case "enter":
		if f.focused == loginEmail && f.password.Value() == "" {
			f.focused = loginPassword
			return m, f.focus()
		}
		email, password, ok := f.credentials()
		if !ok {
			return m, nil
		}
		f.err = ""
		f.submitting = true
		return m, m.loginCmd(email, password)
	}

	var cmd tea.Cmd
	if f.focused == loginPassword {
		f.password, cmd = f.password.Update(msg)
	} else {
		f.email, cmd = f.email.Update(msg)
	}
	return m, cmd
}
