package timeline

import (
	"testing"
	"time"

	"github.com/horizon-sh/horizon/internal/models"
)

func TestRecommendEmpty(t *testing.T) {
	rec := Recommend(nil, testNow)
	if !rec.Empty() || rec.Reason != "" {
		t.Errorf("no tasks should yield an empty recommendation, got %+v", rec)
	}
}

func TestRecommendHardDeadlineWins(t *testing.T) {
	// Cascade precedence: a hard overdue task beats everything below.
	overdue := activeTask("t1", "hard overdue")
	overdue.DueDate = dueIn(-24 * time.Hour)
	overdue.DueDateType = models.DueDateHard

	moreOverdue := activeTask("t2", "even more overdue")
	moreOverdue.DueDate = dueIn(-72 * time.Hour)
	moreOverdue.DueDateType = models.DueDateHard

	high := activeTask("t3", "high priority due today")
	high.Priority = models.PriorityHigh
	high.DueDate = dueIn(time.Hour)

	rec := Recommend([]models.Task{overdue, high, moreOverdue}, testNow)
	if rec.Task == nil || rec.Task.ID != "t2" {
		t.Fatalf("expected most overdue task t2, got %+v", rec)
	}
	if rec.Reason != ReasonHardDeadline {
		t.Errorf("expected reason %q, got %q", ReasonHardDeadline, rec.Reason)
	}
}

func TestRecommendHighPriorityDueToday(t *testing.T) {
	high := activeTask("t1", "high due today")
	high.Priority = models.PriorityHigh
	high.DueDate = dueIn(2 * time.Hour)

	normal := activeTask("t2", "normal due today")
	normal.DueDate = dueIn(time.Hour)

	rec := Recommend([]models.Task{normal, high}, testNow)
	if rec.Task == nil || rec.Task.ID != "t1" {
		t.Fatalf("expected high-priority today task, got %+v", rec)
	}
	if rec.Reason != ReasonHighPriority+", "+ReasonDueToday {
		t.Errorf("unexpected reason %q", rec.Reason)
	}
}

func TestRecommendDueTodayBeatsDatelessHighPriority(t *testing.T) {
	// A normal-priority task due today wins over a dateless
	// high-priority task: tier 3 sits above tier 4.
	datelessHigh := activeTask("t1", "important someday")
	datelessHigh.Priority = models.PriorityHigh

	dueToday := activeTask("t2", "mundane but due")
	dueToday.DueDate = dueIn(3 * time.Hour)

	rec := Recommend([]models.Task{datelessHigh, dueToday}, testNow)
	if rec.Task == nil || rec.Task.ID != "t2" {
		t.Fatalf("expected the due-today task, got %+v", rec)
	}
	if rec.Reason != ReasonDueToday {
		t.Errorf("expected reason %q, got %q", ReasonDueToday, rec.Reason)
	}
}

func TestRecommendDatelessHighPriority(t *testing.T) {
	datelessHigh := activeTask("t1", "important someday")
	datelessHigh.Priority = models.PriorityHigh

	nextWeek := activeTask("t2", "due next week")
	nextWeek.DueDate = dueIn(5 * 24 * time.Hour)

	rec := Recommend([]models.Task{nextWeek, datelessHigh}, testNow)
	if rec.Task == nil || rec.Task.ID != "t1" {
		t.Fatalf("expected dateless high-priority task, got %+v", rec)
	}
	if rec.Reason != ReasonHighPriority {
		t.Errorf("expected reason %q, got %q", ReasonHighPriority, rec.Reason)
	}
}

func TestRecommendRecentlyActiveFallback(t *testing.T) {
	old := activeTask("t1", "touched last week")
	old.LastActivityAt = testNow.Add(-5 * 24 * time.Hour)

	recent := activeTask("t2", "touched this morning")
	recent.LastActivityAt = testNow.Add(-time.Hour)

	rec := Recommend([]models.Task{old, recent}, testNow)
	if rec.Task == nil || rec.Task.ID != "t2" {
		t.Fatalf("expected most recently active task, got %+v", rec)
	}
	if rec.Reason != ReasonRecentlyActive {
		t.Errorf("expected reason %q, got %q", ReasonRecentlyActive, rec.Reason)
	}
}

func TestRecommendIgnoresSubtasksAndCompleted(t *testing.T) {
	sub := activeTask("t1", "overdue subtask")
	sub.ParentTaskID = "parent"
	sub.DueDate = dueIn(-24 * time.Hour)
	sub.DueDateType = models.DueDateHard

	done := activeTask("t2", "completed")
	done.Status = models.TaskStatusCompleted

	rec := Recommend([]models.Task{sub, done}, testNow)
	if !rec.Empty() {
		t.Errorf("subtasks and completed tasks are not candidates, got %+v", rec)
	}
}

func TestFocusMeetingSoon(t *testing.T) {
	task := activeTask("t1", "some task")
	soon := models.CalendarEvent{
		ID:            "e1",
		Subject:       "planning",
		StartDateTime: testNow.Add(10 * time.Minute),
		EndDateTime:   testNow.Add(40 * time.Minute),
	}
	farOff := models.CalendarEvent{
		ID:            "e2",
		StartDateTime: testNow.Add(3 * time.Hour),
		EndDateTime:   testNow.Add(4 * time.Hour),
	}

	rec := Focus([]models.Task{task}, []models.CalendarEvent{farOff, soon}, testNow)
	if rec.Event == nil || rec.Event.ID != "e1" {
		t.Fatalf("expected the imminent meeting, got %+v", rec)
	}
	if rec.Task != nil {
		t.Error("a recommendation never carries both a task and an event")
	}
	if rec.Reason != ReasonMeetingSoon {
		t.Errorf("expected reason %q, got %q", ReasonMeetingSoon, rec.Reason)
	}
}

func TestFocusSkipsAllDayAndCancelled(t *testing.T) {
	task := activeTask("t1", "some task")
	allDay := models.CalendarEvent{
		ID:            "e1",
		StartDateTime: testNow.Add(5 * time.Minute),
		IsAllDay:      true,
	}
	cancelled := models.CalendarEvent{
		ID:            "e2",
		StartDateTime: testNow.Add(5 * time.Minute),
		IsCancelled:   true,
	}

	rec := Focus([]models.Task{task}, []models.CalendarEvent{allDay, cancelled}, testNow)
	if rec.Event != nil {
		t.Errorf("all-day and cancelled events must not be suggested, got %+v", rec)
	}
	if rec.Task == nil || rec.Task.ID != "t1" {
		t.Errorf("expected task fallback, got %+v", rec)
	}
}

func TestFocusRequiresTasks(t *testing.T) {
	soon := models.CalendarEvent{
		ID:            "e1",
		StartDateTime: testNow.Add(10 * time.Minute),
	}
	rec := Focus(nil, []models.CalendarEvent{soon}, testNow)
	if !rec.Empty() {
		t.Errorf("no tasks means no suggestion, got %+v", rec)
	}
}
