package timeline

import (
	"time"

	"github.com/horizon-sh/horizon/internal/models"
)

// StaleAfter is how long a task may sit without activity before it is
// flagged as stale.
const StaleAfter = 7 * 24 * time.Hour

// horizonDays is the length of the "This Week" window.
const horizonDays = 7

// dayStart truncates t to local midnight.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsOverdue reports whether the task has a hard due date in the past.
func IsOverdue(t *models.Task, now time.Time) bool {
	if t.DueDate == nil || t.DueDateType != models.DueDateHard {
		return false
	}
	return t.DueDate.Before(now)
}

// IsStale reports whether the task has seen no activity for StaleAfter
// or longer. A zero LastActivityAt means activity was never recorded and
// is treated as not stale. The dismissal flag, when supplied, overrides
// the age check.
func IsStale(t *models.Task, now time.Time, dismissals DismissalChecker) bool {
	if t.LastActivityAt.IsZero() {
		return false
	}
	if dismissals != nil && dismissals.IsDismissed(t.ID) {
		return false
	}
	if t.StaleDismissed {
		return false
	}
	return now.Sub(t.LastActivityAt) >= StaleAfter
}

// dueBucket places a dated task or timed event by its day relative to
// now: today-or-earlier, within the week window, or later.
func dueBucket(when, now time.Time) BucketKey {
	today := dayStart(now)
	weekEnd := today.AddDate(0, 0, horizonDays)
	// Stored timestamps may carry a different location than now; day
	// boundaries are always evaluated in the caller's zone.
	day := dayStart(when.In(now.Location()))
	switch {
	case !day.After(today):
		return BucketToday
	case !day.After(weekEnd):
		return BucketThisWeek
	default:
		return BucketLater
	}
}

// dueTodayOrEarlier reports whether the task's due day is on or before
// the current day.
func dueTodayOrEarlier(t *models.Task, now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return !dayStart(t.DueDate.In(now.Location())).After(dayStart(now))
}

// ParseWhen parses a date or timestamp string leniently. Classification
// must stay total, so an unparsable value yields nil rather than an
// error: the task simply has no date.
func ParseWhen(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
