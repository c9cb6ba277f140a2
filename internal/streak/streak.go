package streak

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const dateLayout = "2006-01-02"

// Streak is a run of consecutive completed days as reported by the backend.
type Streak struct {
	ID                int64  `json:"id"`
	StreakType        string `json:"streak_type"`
	TaskID            *int64 `json:"task_id,omitempty"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	LastCompletedDate string `json:"last_completed_date,omitempty"`
}

// Label is the streak type with its first letter upper-cased.
func (s Streak) Label() string {
	if s.StreakType == "" {
		return "Streak"
	}
	return strings.ToUpper(s.StreakType[:1]) + s.StreakType[1:]
}

// LastCompleted parses LastCompletedDate. The backend sends either a plain
// date or a full timestamp.
func (s Streak) LastCompleted() (time.Time, bool) {
	if s.LastCompletedDate == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s.LastCompletedDate, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LastCompletedLabel describes the last completion relative to now.
func (s Streak) LastCompletedLabel(now time.Time) string {
	t, ok := s.LastCompleted()
	if !ok {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Days renders a count with the right plural.
func Days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return humanize.Comma(int64(n)) + " days"
}
