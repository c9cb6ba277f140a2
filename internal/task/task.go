package task

import (
	"dayplan/internal/clock"
	"dayplan/internal/schedule"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists priorities in the order the editor cycles through them.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Patterns lists the recurrence patterns the backend understands.
var Patterns = []string{"daily", "weekly", "monthly"}

// Task mirrors the backend's task record.
type Task struct {
	ID                int64    `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	CategoryID        int64    `json:"category_id"`
	Category          string   `json:"category,omitempty"`
	StartTime         string   `json:"start_time"`
	DurationMinutes   int      `json:"duration_minutes"`
	Priority          Priority `json:"priority"`
	IsRecurring       bool     `json:"is_recurring"`
	RecurrencePattern string   `json:"recurrence_pattern,omitempty"`
	IsCompleted       bool     `json:"is_completed"`
	CompletedAt       string   `json:"completed_at,omitempty"`
}

// Input is the create/update payload. End time is never sent; the backend
// only stores start and duration.
type Input struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	CategoryID        int64    `json:"category_id"`
	StartTime         string   `json:"start_time"`
	DurationMinutes   int      `json:"duration_minutes"`
	Priority          Priority `json:"priority"`
	IsRecurring       bool     `json:"is_recurring"`
	RecurrencePattern string   `json:"recurrence_pattern,omitempty"`
}

type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// New returns the blank task the editor starts from when creating.
func New() Task {
	return Task{}.WithDefaults()
}

// WithDefaults fills the fields the backend would otherwise default.
func (t Task) WithDefaults() Task {
	out := t
	if out.StartTime == "" {
		out.StartTime = "09:00"
	}
	if out.DurationMinutes == 0 {
		out.DurationMinutes = 30
	}
	if out.CategoryID == 0 {
		out.CategoryID = 1
	}
	if out.Priority == "" {
		out.Priority = PriorityMedium
	}
	return out
}

func (t Task) StartLabel() string {
	return clock.FormatDisplayTime(t.StartTime)
}

func (t Task) EndLabel() string {
	return clock.FormatEndTime(t.StartTime, t.DurationMinutes)
}

func (t Task) DurationLabel() string {
	return clock.FormatDuration(t.DurationMinutes)
}

// Times opens an editing session over the task's start and duration.
func (t Task) Times() *schedule.Reconciler {
	return schedule.New(t.StartTime, t.DurationMinutes)
}

// Next returns the priority after p, wrapping around.
func (p Priority) Next() Priority {
	return cycle(Priorities, p, 1)
}

// Prev returns the priority before p, wrapping around.
func (p Priority) Prev() Priority {
	return cycle(Priorities, p, -1)
}

// NextPattern steps through Patterns by delta, wrapping around. An unknown
// pattern moves to the first entry.
func NextPattern(p string, delta int) string {
	return cycle(Patterns, p, delta)
}

func cycle[T comparable](order []T, cur T, delta int) T {
	idx := -1
	for i, v := range order {
		if v == cur {
			idx = i
			break
		}
	}
	if idx < 0 {
		return order[0]
	}
	n := len(order)
	return order[((idx+delta)%n+n)%n]
}
