package timeline

import (
	"time"

	"github.com/horizon-sh/horizon/internal/models"
)

// Recommendation reason strings.
const (
	ReasonHardDeadline   = "Hard deadline passed"
	ReasonHighPriority   = "High priority"
	ReasonDueToday       = "Due today"
	ReasonRecentlyActive = "Recently active"
	ReasonMeetingSoon    = "Meeting soon"
)

// MeetingSoonWindow is how far ahead an event start may be for the
// event to outrank the task cascade in Focus.
const MeetingSoonWindow = 30 * time.Minute

// Recommend picks at most one task to act on right now.
//
// It is a strict precedence cascade, not a weighted score: the first
// tier with a non-empty candidate set wins and lower tiers are never
// consulted. Tiers, in order: most-overdue hard deadline, high-priority
// task due today or earlier, any task due today or earlier, dateless
// high-priority task, most recently active task.
func Recommend(tasks []models.Task, now time.Time) Recommendation {
	eligible := make([]*models.Task, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if t.Status != models.TaskStatusActive || t.IsSubtask() {
			continue
		}
		eligible = append(eligible, t)
	}
	if len(eligible) == 0 {
		return Recommendation{}
	}

	// Tier 1: hard deadline already passed, most overdue first.
	if t := earliestDue(eligible, func(t *models.Task) bool {
		return IsOverdue(t, now)
	}); t != nil {
		return Recommendation{Task: t, Reason: ReasonHardDeadline}
	}

	// Tier 2: high priority and due today or earlier.
	if t := earliestDue(eligible, func(t *models.Task) bool {
		return t.Priority == models.PriorityHigh && dueTodayOrEarlier(t, now)
	}); t != nil {
		return Recommendation{Task: t, Reason: ReasonHighPriority + ", " + ReasonDueToday}
	}

	// Tier 3: anything due today or earlier.
	if t := earliestDue(eligible, func(t *models.Task) bool {
		return dueTodayOrEarlier(t, now)
	}); t != nil {
		return Recommendation{Task: t, Reason: ReasonDueToday}
	}

	// Tier 4: high priority without a due date.
	for _, t := range eligible {
		if t.Priority == models.PriorityHigh && t.DueDate == nil {
			return Recommendation{Task: t, Reason: ReasonHighPriority}
		}
	}

	// Tier 5: whatever was touched most recently.
	best := eligible[0]
	for _, t := range eligible[1:] {
		if t.LastActivityAt.After(best.LastActivityAt) {
			best = t
		}
	}
	return Recommendation{Task: best, Reason: ReasonRecentlyActive}
}

// Focus combines the task cascade with the calendar: an imminent
// meeting outranks any task suggestion. Per the dashboard contract it
// suggests nothing when there are no tasks at all.
func Focus(tasks []models.Task, events []models.CalendarEvent, now time.Time) Recommendation {
	if len(tasks) == 0 {
		return Recommendation{}
	}
	var soonest *models.CalendarEvent
	for i := range events {
		ev := &events[i]
		if ev.IsAllDay || ev.IsCancelled {
			continue
		}
		if ev.StartDateTime.Before(now) || ev.StartDateTime.Sub(now) > MeetingSoonWindow {
			continue
		}
		if soonest == nil || ev.StartDateTime.Before(soonest.StartDateTime) {
			soonest = ev
		}
	}
	if soonest != nil {
		return Recommendation{Event: soonest, Reason: ReasonMeetingSoon}
	}
	return Recommend(tasks, now)
}

// earliestDue returns the matching task with the earliest due date.
// Matching dateless tasks are considered only if no dated task matches.
func earliestDue(tasks []*models.Task, match func(*models.Task) bool) *models.Task {
	var dated, dateless *models.Task
	for _, t := range tasks {
		if !match(t) {
			continue
		}
		if t.DueDate == nil {
			if dateless == nil {
				dateless = t
			}
			continue
		}
		if dated == nil || t.DueDate.Before(*dated.DueDate) {
			dated = t
		}
	}
	if dated != nil {
		return dated
	}
	return dateless
}
