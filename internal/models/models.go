// Package models defines the core domain types for Horizon.
package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	TaskStatusActive    TaskStatus = "active"
	TaskStatusPlanning  TaskStatus = "planning"
	TaskStatusCompleted TaskStatus = "completed"
)

// TaskPriority represents the urgency level of a task.
type TaskPriority string

const (
	PriorityNormal TaskPriority = "normal"
	PriorityHigh   TaskPriority = "high"
)

// DueDateType marks how negotiable a due date is. A hard due date in the
// past makes the task overdue.
type DueDateType string

const (
	DueDateSoft DueDateType = "soft"
	DueDateHard DueDateType = "hard"
)

// Task represents a single unit of work.
type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Notes          string       `json:"notes,omitempty"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	DueDateType    DueDateType  `json:"due_date_type,omitempty"`
	LastActivityAt time.Time    `json:"last_activity_at"`
	ParentTaskID   string       `json:"parent_task_id,omitempty"`
	AreaID         string       `json:"area_id,omitempty"`
	SpaceSlug      string       `json:"space_slug,omitempty"`
	SpaceName      string       `json:"space_name,omitempty"`
	Color          string       `json:"color,omitempty"`
	StaleDismissed bool         `json:"stale_dismissed,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
}

// IsSubtask reports whether the task belongs to a parent task.
func (t *Task) IsSubtask() bool {
	return t.ParentTaskID != ""
}

// CalendarEvent represents an event fetched from a calendar provider.
type CalendarEvent struct {
	ID            string    `json:"id"`
	Subject       string    `json:"subject"`
	StartDateTime time.Time `json:"start_date_time"`
	EndDateTime   time.Time `json:"end_date_time"`
	IsAllDay      bool      `json:"is_all_day"`
	IsCancelled   bool      `json:"is_cancelled"`
}

// ActivityEntry records a state-mutating action applied to a task.
type ActivityEntry struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id,omitempty"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
