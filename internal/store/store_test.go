package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/horizon-sh/horizon/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	due := time.Date(2026, 4, 1, 17, 0, 0, 0, time.UTC)
	task, err := s.CreateTask(TaskFields{
		Title:       "Write report",
		Notes:       "quarterly numbers",
		Priority:    models.PriorityHigh,
		DueDate:     &due,
		DueDateType: models.DueDateHard,
		SpaceSlug:   "work",
		SpaceName:   "Work",
		Color:       "#7C3AED",
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.ID == "" {
		t.Error("Task ID should not be empty")
	}
	if task.Status != models.TaskStatusActive {
		t.Errorf("Expected status active, got %s", task.Status)
	}
	if task.LastActivityAt.IsZero() {
		t.Error("LastActivityAt should be initialised")
	}

	got, err := s.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Title != "Write report" {
		t.Errorf("Expected title 'Write report', got %s", got.Title)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("Due date round trip failed: %v", got.DueDate)
	}
	if got.DueDateType != models.DueDateHard {
		t.Errorf("Expected hard due date, got %s", got.DueDateType)
	}

	missing, err := s.GetTask("nope")
	if err != nil {
		t.Fatalf("GetTask for missing id failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for missing task")
	}

	if err := s.UpdateTask(task.ID, TaskFields{Title: "Write the report", Priority: models.PriorityNormal}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	got, _ = s.GetTask(task.ID)
	if got.Title != "Write the report" {
		t.Errorf("Update did not apply, got %s", got.Title)
	}
	if got.DueDate != nil {
		t.Error("Update with no due date should clear it")
	}

	if err := s.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	got, _ = s.GetTask(task.ID)
	if got != nil {
		t.Error("Task should be gone after delete")
	}
}

func TestStatusTransitions(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, err := s.CreateTask(TaskFields{Title: "Task"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := s.UpdateTaskStatus(task.ID, models.TaskStatusCompleted); err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Status != models.TaskStatusCompleted {
		t.Errorf("Expected completed, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt should be set on completion")
	}

	if err := s.UpdateTaskStatus(task.ID, models.TaskStatusActive); err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	got, _ = s.GetTask(task.ID)
	if got.CompletedAt != nil {
		t.Error("CompletedAt should clear when reactivated")
	}

	if err := s.UpdateTaskStatus("missing", models.TaskStatusActive); err != ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestListActiveTopLevel(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	parent, _ := s.CreateTask(TaskFields{Title: "Parent"})
	_, _ = s.CreateTask(TaskFields{Title: "Child", ParentTaskID: parent.ID})
	done, _ := s.CreateTask(TaskFields{Title: "Done"})
	s.UpdateTaskStatus(done.ID, models.TaskStatusCompleted)

	tasks, err := s.ListActiveTopLevel()
	if err != nil {
		t.Fatalf("ListActiveTopLevel failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != parent.ID {
		t.Errorf("Expected only the active parent, got %+v", tasks)
	}

	subs, err := s.ListSubtasks(parent.ID)
	if err != nil {
		t.Fatalf("ListSubtasks failed: %v", err)
	}
	if len(subs) != 1 || subs[0].Title != "Child" {
		t.Errorf("Expected one subtask, got %+v", subs)
	}
}

func TestDismissalLifecycle(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask(TaskFields{Title: "Stale candidate"})

	if err := s.DismissStale(task.ID); err != nil {
		t.Fatalf("DismissStale failed: %v", err)
	}
	set, err := s.Dismissals()
	if err != nil {
		t.Fatalf("Dismissals failed: %v", err)
	}
	if !set.IsDismissed(task.ID) {
		t.Error("Task should be in the dismissal set")
	}

	// Fresh activity resets the dismissal.
	before, _ := s.GetTask(task.ID)
	if err := s.TouchActivity(task.ID); err != nil {
		t.Fatalf("TouchActivity failed: %v", err)
	}
	after, _ := s.GetTask(task.ID)
	if after.StaleDismissed {
		t.Error("TouchActivity should clear the dismissal")
	}
	if !after.LastActivityAt.After(before.LastActivityAt) && !after.LastActivityAt.Equal(before.LastActivityAt) {
		t.Error("TouchActivity should not move LastActivityAt backwards")
	}

	set, _ = s.Dismissals()
	if set.IsDismissed(task.ID) {
		t.Error("Dismissal set should be empty after activity")
	}

	if err := s.DismissStale(task.ID); err != nil {
		t.Fatalf("DismissStale failed: %v", err)
	}
	if err := s.ReopenStale(task.ID); err != nil {
		t.Fatalf("ReopenStale failed: %v", err)
	}
	set, _ = s.Dismissals()
	if set.IsDismissed(task.ID) {
		t.Error("ReopenStale should clear the dismissal")
	}
}

func TestActivityLog(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask(TaskFields{Title: "Task"})

	if _, err := s.WriteActivity(task.ID, "task.create", "created via test"); err != nil {
		t.Fatalf("WriteActivity failed: %v", err)
	}
	if _, err := s.WriteActivity(task.ID, "task.complete", ""); err != nil {
		t.Fatalf("WriteActivity failed: %v", err)
	}

	entries, err := s.GetActivityForTask(task.ID)
	if err != nil {
		t.Fatalf("GetActivityForTask failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
}

func TestDeleteCascadesToSubtasks(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	parent, _ := s.CreateTask(TaskFields{Title: "Parent"})
	child, _ := s.CreateTask(TaskFields{Title: "Child", ParentTaskID: parent.ID})

	if err := s.DeleteTask(parent.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	got, _ := s.GetTask(child.ID)
	if got != nil {
		t.Error("Subtask should be deleted with its parent")
	}
}
