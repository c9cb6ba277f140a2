// Package schedule keeps a task's start time, duration and end time in step
// while the task is being edited.
package schedule

import (
	"errors"
	"fmt"

	"dayplan/internal/clock"
)

// DefaultEnd is shown when a task's stored times cannot produce an end time.
const DefaultEnd = "09:30"

// ErrEndNotAfterStart blocks submission when the end time does not come
// after the start time.
var ErrEndNotAfterStart = fmt.Errorf("end time must be after start time: %w", clock.ErrNonPositive)

// Mode selects which of duration and end time the user is editing directly.
type Mode int

const (
	// StartDuration derives the end time from start and duration.
	StartDuration Mode = iota
	// StartEnd derives the duration from start and end time.
	StartEnd
)

func (m Mode) String() string {
	switch m {
	case StartDuration:
		return "Start Time + Duration"
	case StartEnd:
		return "Start Time + End Time"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == StartDuration {
		return StartEnd
	}
	return StartDuration
}

type field int

const (
	fieldStart field = iota
	fieldDuration
	fieldEnd
)

// drives reports whether a change to f triggers a recompute in mode m.
func (m Mode) drives(f field) bool {
	switch m {
	case StartDuration:
		return f == fieldStart || f == fieldDuration
	case StartEnd:
		return f == fieldStart || f == fieldEnd
	}
	return false
}

// Spec is the editable time triple. Start and End hold "HH:MM" as typed.
type Spec struct {
	Start   string
	Hours   int
	Minutes int
	End     string
}

// TotalMinutes is the duration as sent to the backend.
func (s Spec) TotalMinutes() int {
	return s.Hours*60 + s.Minutes
}

// Reconciler owns one editing session's Spec and recomputes the derived
// field whenever an authoritative one changes.
type Reconciler struct {
	mode Mode
	spec Spec
}

// New seeds a Reconciler from a stored task in StartDuration mode.
func New(startTime string, durationMinutes int) *Reconciler {
	start := clock.Short(startTime)
	if tod, err := clock.Parse(startTime); err == nil {
		start = tod.String()
	}
	hours, minutes := clock.SplitMinutes(durationMinutes)
	end, err := clock.EndTime(start, durationMinutes)
	if err != nil {
		end = DefaultEnd
	}
	return &Reconciler{
		mode: StartDuration,
		spec: Spec{Start: start, Hours: hours, Minutes: minutes, End: end},
	}
}

func (r *Reconciler) Mode() Mode { return r.mode }

func (r *Reconciler) Spec() Spec { return r.spec }

// SetMode switches input mode. Entering StartDuration re-splits the current
// total into hours and minutes; the end time is left alone until the next
// edit.
func (r *Reconciler) SetMode(m Mode) {
	r.mode = m
	if m == StartDuration {
		r.spec.Hours, r.spec.Minutes = clock.SplitMinutes(r.spec.TotalMinutes())
	}
}

func (r *Reconciler) SetStart(s string) {
	r.spec.Start = s
	r.changed(fieldStart)
}

func (r *Reconciler) SetHours(h int) {
	r.spec.Hours = h
	r.changed(fieldDuration)
}

func (r *Reconciler) SetMinutes(m int) {
	r.spec.Minutes = m
	r.changed(fieldDuration)
}

func (r *Reconciler) SetEnd(s string) {
	r.spec.End = s
	r.changed(fieldEnd)
}

func (r *Reconciler) changed(f field) {
	if r.mode.drives(f) {
		r.Recompute()
	}
}

// Recompute derives the dependent field for the current mode. Inputs that
// cannot be parsed, and non-positive intervals, leave the previous value in
// place.
func (r *Reconciler) Recompute() {
	switch r.mode {
	case StartDuration:
		total := r.spec.TotalMinutes()
		if total <= 0 {
			return
		}
		end, err := clock.EndTime(r.spec.Start, total)
		if err != nil {
			return
		}
		r.spec.End = end
	case StartEnd:
		diff, err := clock.MinutesBetween(r.spec.Start, r.spec.End)
		if err != nil || diff <= 0 {
			return
		}
		r.spec.Hours, r.spec.Minutes = clock.SplitMinutes(diff)
	}
}

// Validate is run immediately before submission.
func (r *Reconciler) Validate() error {
	if _, err := clock.Parse(r.spec.Start); err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	switch r.mode {
	case StartDuration:
		return nil
	case StartEnd:
		diff, err := clock.MinutesBetween(r.spec.Start, r.spec.End)
		if err != nil {
			return fmt.Errorf("end time: %w", err)
		}
		if diff <= 0 {
			return ErrEndNotAfterStart
		}
	}
	return nil
}

// Payload returns what the backend stores: the start time and one
// duration in minutes, whichever mode produced it.
func (r *Reconciler) Payload() (startTime string, durationMinutes int) {
	return r.spec.Start, r.spec.TotalMinutes()
}

// Summary is the display form of a Spec.
type Summary struct {
	Start    string
	End      string
	Duration string
	Total    string
}

func (r *Reconciler) Summary() Summary {
	return Summary{
		Start:    clock.FormatDisplayTime(r.spec.Start),
		End:      clock.FormatDisplayTime(r.spec.End),
		Duration: clock.FormatDuration(r.spec.TotalMinutes()),
		Total:    clock.FormatHoursMinutes(r.spec.Hours, r.spec.Minutes),
	}
}

// Message turns a Validate error into the text shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEndNotAfterStart):
		return "End time must be after start time"
	case errors.Is(err, clock.ErrMalformedTime), errors.Is(err, clock.ErrUnanchored):
		return "Enter times as HH:MM"
	}
	return err.Error()
}
