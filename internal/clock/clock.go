// Package clock parses, shifts and formats wall-clock times of day.
//
// Times travel as "HH:MM" or "HH:MM:SS" strings. Arithmetic anchors them to a
// fixed calendar date so ordinary instant addition and subtraction can be
// used; the date itself never leaks out.
package clock

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// InvalidTime is rendered in place of any time that could not be parsed or
// computed.
const InvalidTime = "Invalid time"

const (
	anchorLayout = "2006-01-02T15:04:05"
	anchorDate   = "2000-01-01T"
	shortLayout  = "15:04"
)

var (
	// ErrMalformedTime reports a missing time or one whose hour or minute is not
	// an integer.
	ErrMalformedTime = errors.New("malformed time")
	// ErrNonPositive reports a zero or negative duration, or an end that does
	// not come after its start.
	ErrNonPositive = errors.New("non-positive interval")
	// ErrUnanchored reports a time that looks numeric but is not a valid
	// instant on the anchor date, such as "25:00".
	ErrUnanchored = errors.New("time out of range")
)

// placeholders are strings other layers have been known to produce for
// missing times.
var placeholders = map[string]bool{
	"NaN:undefined": true,
	InvalidTime:     true,
}

// TimeOfDay is a wall-clock time without date or zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Parse reads "HH:MM" or "HH:MM:SS". Seconds are accepted and dropped.
func Parse(s string) (TimeOfDay, error) {
	t, err := Anchor(s)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String renders the time as zero-padded "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Anchor places s on the anchor date. Two-segment input gets ":00" seconds
// appended; anything that is not already three segments gets the same
// treatment and is left to fail parsing.
func Anchor(s string) (time.Time, error) {
	if s == "" || placeholders[s] {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	for _, p := range parts[:2] {
		if _, err := strconv.Atoi(p); err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
		}
	}

	normalized := s
	if len(parts) != 3 {
		normalized = s + ":00"
	}
	t, err := time.ParseInLocation(anchorLayout, anchorDate+normalized, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnanchored, s)
	}
	return t, nil
}

// Short trims a "HH:MM:SS" value to "HH:MM". Other input is returned as is.
func Short(s string) string {
	parts := strings.Split(s, ":")
	if len(parts) == 3 {
		return parts[0] + ":" + parts[1]
	}
	return s
}

// DisplayTime converts a 24-hour time into "h:mm AM|PM". The minute token is
// passed through untouched once it is known to be numeric.
func DisplayTime(raw string) (string, error) {
	if raw == "" || placeholders[raw] {
		return "", fmt.Errorf("%w: %q", ErrMalformedTime, raw)
	}
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: %q", ErrMalformedTime, raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedTime, raw)
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedTime, raw)
	}

	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	displayHour := hour
	switch {
	case hour == 0:
		displayHour = 12
	case hour > 12:
		displayHour = hour - 12
	}
	return fmt.Sprintf("%d:%s %s", displayHour, parts[1], ampm), nil
}

// FormatDisplayTime is DisplayTime for rendering: failures become InvalidTime.
func FormatDisplayTime(raw string) string {
	s, err := DisplayTime(raw)
	if err != nil {
		return InvalidTime
	}
	return s
}

// EndTime adds durationMinutes to start and returns "HH:MM". Results past
// midnight wrap around the clock.
func EndTime(start string, durationMinutes int) (string, error) {
	if start == "" {
		return "", fmt.Errorf("%w: empty start", ErrMalformedTime)
	}
	if durationMinutes <= 0 {
		return "", fmt.Errorf("%w: %d minutes", ErrNonPositive, durationMinutes)
	}
	t, err := Anchor(start)
	if err != nil {
		return "", err
	}
	return t.Add(time.Duration(durationMinutes) * time.Minute).Format(shortLayout), nil
}

// FormatEndTime renders the display form of EndTime, or InvalidTime.
func FormatEndTime(start string, durationMinutes int) string {
	end, err := EndTime(start, durationMinutes)
	if err != nil {
		return InvalidTime
	}
	return FormatDisplayTime(end)
}

// MinutesBetween returns the whole minutes from start to end on the anchor
// date, floored. A negative result means end is earlier in the day.
func MinutesBetween(start, end string) (int, error) {
	s, err := Anchor(start)
	if err != nil {
		return 0, err
	}
	e, err := Anchor(end)
	if err != nil {
		return 0, err
	}
	return int(math.Floor(e.Sub(s).Minutes())), nil
}

// SplitMinutes decomposes a minute total into hours and remaining minutes.
func SplitMinutes(total int) (hours, minutes int) {
	return total / 60, total % 60
}

// FormatDuration renders "1h 30m", or "45m" when under an hour.
func FormatDuration(totalMinutes int) string {
	hours, mins := SplitMinutes(totalMinutes)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// FormatHoursMinutes always renders both parts, as in "0h 45m".
func FormatHoursMinutes(hours, minutes int) string {
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
