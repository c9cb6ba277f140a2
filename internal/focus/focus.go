// Package focus moves focus around a form and keeps the focused field in view.
package focus

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Next returns the element after cur in order, wrapping around. An unknown
// cur yields the first element.
func Next[T comparable](order []T, cur T) T {
	return step(order, cur, 1)
}

// Prev returns the element before cur in order, wrapping around.
func Prev[T comparable](order []T, cur T) T {
	return step(order, cur, -1)
}

func step[T comparable](order []T, cur T, delta int) T {
	var zero T
	if len(order) == 0 {
		return zero
	}
	for i, v := range order {
		if v == cur {
			n := len(order)
			return order[((i+delta)%n+n)%n]
		}
	}
	return order[0]
}

// ScrollMsg asks the owner to centre the focused field. Only the most recent
// request is honoured.
type ScrollMsg struct {
	seq int
}

// Scroller tracks the first visible row of a form taller than the screen.
type Scroller struct {
	Delay  time.Duration
	offset int
	seq    int
}

func NewScroller(delay time.Duration) *Scroller {
	return &Scroller{Delay: delay}
}

// Request schedules a ScrollMsg after Delay, superseding earlier requests.
func (s *Scroller) Request() tea.Cmd {
	s.seq++
	seq := s.seq
	if s.Delay <= 0 {
		return func() tea.Msg { return ScrollMsg{seq: seq} }
	}
	return tea.Tick(s.Delay, func(time.Time) tea.Msg {
		return ScrollMsg{seq: seq}
	})
}

// Apply centres target if msg is the latest request. It reports whether the
// offset was updated.
func (s *Scroller) Apply(msg ScrollMsg, target, total, height int) bool {
	if msg.seq != s.seq {
		return false
	}
	s.Center(target, total, height)
	return true
}

// Center sets the offset so row target sits in the middle of height visible
// rows, clamped to the content.
func (s *Scroller) Center(target, total, height int) {
	if height <= 0 || total <= height {
		s.offset = 0
		return
	}
	off := target - height/2
	off = max(off, 0)
	off = min(off, total-height)
	s.offset = off
}

func (s *Scroller) Offset() int {
	return s.offset
}

// Window returns the rows of lines visible at offset.
func Window(lines []string, offset, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	offset = max(offset, 0)
	offset = min(offset, len(lines)-height)
	return lines[offset : offset+height]
}
