package internal

import (
	"errors"
	"strconv"
	"strings"

	"dayplan/internal/focus"
	"dayplan/internal/schedule"
	"dayplan/internal/task"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type editorField int

const (
	fieldTitle editorField = iota
	fieldDescription
	fieldCategory
	fieldMode
	fieldStart
	fieldHours
	fieldMinutes
	fieldEnd
	fieldPriority
	fieldRecurring
	fieldPattern
)

var (
	errTitleRequired = errors.New("task title is required")
	errNoDuration    = errors.New("duration must be greater than zero")
)

// editor is one edit or create session. It owns its Reconciler.
type editor struct {
	id         int64
	inputs     map[editorField]textinput.Model
	times      *schedule.Reconciler
	categories []task.Category
	categoryID int64
	priority   task.Priority
	recurring  bool
	pattern    string
	focused    editorField
	saving     bool
	err        string
}

func newEditor(t task.Task, categories []task.Category) *editor {
	e := &editor{
		id:         t.ID,
		inputs:     make(map[editorField]textinput.Model),
		times:      t.Times(),
		categories: categories,
		categoryID: t.CategoryID,
		priority:   t.Priority,
		recurring:  t.IsRecurring,
		pattern:    t.RecurrencePattern,
		focused:    fieldTitle,
	}
	if e.recurring && e.pattern == "" {
		e.pattern = task.Patterns[0]
	}
	if e.priority == "" {
		e.priority = task.PriorityMedium
	}

	e.inputs[fieldTitle] = newInput("What needs doing?", 120, 40)
	e.inputs[fieldDescription] = newInput("Optional details", 500, 40)
	e.inputs[fieldStart] = newInput("HH:MM", 5, 6)
	e.inputs[fieldHours] = newInput("0", 2, 3)
	e.inputs[fieldMinutes] = newInput("0", 2, 3)
	e.inputs[fieldEnd] = newInput("HH:MM", 5, 6)

	e.setValue(fieldTitle, t.Title)
	e.setValue(fieldDescription, t.Description)
	e.syncTimes(-1)
	e.focus()
	return e
}

func newInput(placeholder string, limit, width int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = width
	return ti
}

func (e *editor) editing() bool {
	return e.id != 0
}

func (e *editor) value(f editorField) string {
	return e.inputs[f].Value()
}

func (e *editor) setValue(f editorField, v string) {
	ti := e.inputs[f]
	ti.SetValue(v)
	e.inputs[f] = ti
}

// order is the focus ring. It changes with the time mode and the recurring
// flag.
func (e *editor) order() []editorField {
	fields := []editorField{fieldTitle, fieldDescription, fieldCategory, fieldMode, fieldStart}
	switch e.times.Mode() {
	case schedule.StartDuration:
		fields = append(fields, fieldHours, fieldMinutes)
	case schedule.StartEnd:
		fields = append(fields, fieldEnd)
	}
	fields = append(fields, fieldPriority, fieldRecurring)
	if e.recurring {
		fields = append(fields, fieldPattern)
	}
	return fields
}

func (e *editor) focus() tea.Cmd {
	var cmd tea.Cmd
	for f, ti := range e.inputs {
		if f == e.focused {
			cmd = ti.Focus()
		} else {
			ti.Blur()
		}
		e.inputs[f] = ti
	}
	return cmd
}

func (e *editor) move(delta int) tea.Cmd {
	if delta > 0 {
		e.focused = focus.Next(e.order(), e.focused)
	} else {
		e.focused = focus.Prev(e.order(), e.focused)
	}
	return e.focus()
}

// cycle steps the selector under focus. It reports whether the focused
// field is a selector.
func (e *editor) cycle(delta int) bool {
	switch e.focused {
	case fieldCategory:
		if len(e.categories) == 0 {
			return true
		}
		ids := make([]int64, len(e.categories))
		for i, c := range e.categories {
			ids[i] = c.ID
		}
		if delta > 0 {
			e.categoryID = focus.Next(ids, e.categoryID)
		} else {
			e.categoryID = focus.Prev(ids, e.categoryID)
		}
	case fieldMode:
		e.toggleMode()
	case fieldPriority:
		if delta > 0 {
			e.priority = e.priority.Next()
		} else {
			e.priority = e.priority.Prev()
		}
	case fieldRecurring:
		e.recurring = !e.recurring
		if e.recurring && e.pattern == "" {
			e.pattern = task.Patterns[0]
		}
	case fieldPattern:
		e.pattern = task.NextPattern(e.pattern, delta)
	default:
		return false
	}
	return true
}

func (e *editor) toggleMode() {
	e.times.SetMode(e.times.Mode().Toggle())
	e.syncTimes(-1)
}

// edited feeds a changed time input into the Reconciler and refreshes the
// inputs it derives.
func (e *editor) edited(f editorField) {
	switch f {
	case fieldStart:
		e.times.SetStart(strings.TrimSpace(e.value(fieldStart)))
	case fieldHours:
		e.times.SetHours(atoi(e.value(fieldHours)))
	case fieldMinutes:
		e.times.SetMinutes(atoi(e.value(fieldMinutes)))
	case fieldEnd:
		e.times.SetEnd(strings.TrimSpace(e.value(fieldEnd)))
	default:
		return
	}
	e.syncTimes(f)
}

// syncTimes copies the Reconciler's values into every time input except skip,
// which holds what the user is typing.
func (e *editor) syncTimes(skip editorField) {
	spec := e.times.Spec()
	values := map[editorField]string{
		fieldStart:   spec.Start,
		fieldHours:   strconv.Itoa(spec.Hours),
		fieldMinutes: strconv.Itoa(spec.Minutes),
		fieldEnd:     spec.End,
	}
	for f, v := range values {
		if f == skip || e.value(f) == v {
			continue
		}
		e.setValue(f, v)
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func digitsOnly(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes {
		return true
	}
	for _, r := range msg.Runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// input validates the form and builds the payload.
func (e *editor) input() (task.Input, error) {
	title := strings.TrimSpace(e.value(fieldTitle))
	if title == "" {
		return task.Input{}, errTitleRequired
	}
	if err := e.times.Validate(); err != nil {
		return task.Input{}, err
	}
	start, minutes := e.times.Payload()
	if minutes <= 0 {
		return task.Input{}, errNoDuration
	}

	in := task.Input{
		Title:           title,
		Description:     strings.TrimSpace(e.value(fieldDescription)),
		CategoryID:      e.categoryID,
		StartTime:       start,
		DurationMinutes: minutes,
		Priority:        e.priority,
		IsRecurring:     e.recurring,
	}
	if e.recurring {
		in.RecurrencePattern = e.pattern
	}
	return in, nil
}

func (e *editor) categoryName() string {
	for _, c := range e.categories {
		if c.ID == e.categoryID {
			if c.Icon != "" {
				return c.Icon + " " + c.Name
			}
			return c.Name
		}
	}
	return "#" + strconv.FormatInt(e.categoryID, 10)
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, errTitleRequired):
		return "Task title is required"
	case errors.Is(err, errNoDuration):
		return "Duration must be greater than zero"
	}
	return schedule.Message(err)
}

func (m *Model) handleEditorInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.editor
	if e == nil {
		if msg.String() == "esc" {
			return m, m.enterDashboard()
		}
		return m, nil
	}
	if e.saving {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m, m.enterDashboard()
	case "tab", "down":
		return m, tea.Batch(e.move(1), m.scroller.Request())
	case "shift+tab", "up":
		return m, tea.Batch(e.move(-1), m.scroller.Request())
	case "enter", "ctrl+s":
		in, err := e.input()
		if err != nil {
			e.err = errorMessage(err)
			return m, nil
		}
		e.err = ""
		e.saving = true
		return m, m.saveTaskCmd(e.id, in)
	case "left", "right", " ":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		if e.cycle(delta) {
			return m, nil
		}
	}

	ti, ok := e.inputs[e.focused]
	if !ok {
		return m, nil
	}
	if (e.focused == fieldHours || e.focused == fieldMinutes) && !digitsOnly(msg) {
		return m, nil
	}
	before := ti.Value()
	ti, cmd := ti.Update(msg)
	e.inputs[e.focused] = ti
	if ti.Value() != before {
		e.err = ""
		e.edited(e.focused)
	}
	return m, cmd
}
