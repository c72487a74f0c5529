// Package server provides the HTTP API and service layer for Horizon.
package server

import (
	"time"

	"github.com/horizon-sh/horizon/internal/activity"
	"github.com/horizon-sh/horizon/internal/calendar"
	"github.com/horizon-sh/horizon/internal/models"
	"github.com/horizon-sh/horizon/internal/store"
	"github.com/horizon-sh/horizon/internal/timeline"
)

// EventSource supplies the current calendar snapshot. The refresher
// implements it; tests substitute a stub.
type EventSource interface {
	Snapshot() ([]models.CalendarEvent, calendar.ConnectionState, time.Time)
}

// Service provides the API business logic.
type Service struct {
	store   *store.Store
	journal *activity.Journal
	events  EventSource
}

// NewService creates a new service.
func NewService(s *store.Store, j *activity.Journal, events EventSource) *Service {
	return &Service{store: s, journal: j, events: events}
}

// --- Task Operations ---

// CreateTask creates a new task or subtask.
func (s *Service) CreateTask(f store.TaskFields) (*models.Task, error) {
	if f.Title == "" {
		return nil, ErrTitleRequired
	}
	if f.ParentTaskID != "" {
		parent, err := s.store.GetTask(f.ParentTaskID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
		if parent.IsSubtask() {
			return nil, ErrParentIsSubtask
		}
	}

	task, err := s.store.CreateTask(f)
	if err != nil {
		return nil, err
	}
	s.journal.Record(task.ID, "task.create", task.Title)
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *Service) GetTask(id string) (*models.Task, error) {
	return s.store.GetTask(id)
}

// ListTasks returns filtered tasks.
func (s *Service) ListTasks(status string) ([]models.Task, error) {
	return s.store.ListTasks(status)
}

// ListSubtasks returns a task's subtasks.
func (s *Service) ListSubtasks(parentID string) ([]models.Task, error) {
	return s.store.ListSubtasks(parentID)
}

// UpdateTask overwrites a task's editable fields.
func (s *Service) UpdateTask(id string, f store.TaskFields) (*models.Task, error) {
	if f.Title == "" {
		return nil, ErrTitleRequired
	}
	if err := s.store.UpdateTask(id, f); err != nil {
		if err == store.ErrTaskNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	s.journal.Record(id, "task.update", "")
	return s.store.GetTask(id)
}

// SetStatus moves a task between active, planning and completed.
func (s *Service) SetStatus(id string, status models.TaskStatus) (*models.Task, error) {
	switch status {
	case models.TaskStatusActive, models.TaskStatusPlanning, models.TaskStatusCompleted:
	default:
		return nil, ErrBadStatus
	}
	if err := s.store.UpdateTaskStatus(id, status); err != nil {
		if err == store.ErrTaskNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	s.journal.Record(id, "task."+string(status), "")
	return s.store.GetTask(id)
}

// DeleteTask removes a task and its subtasks.
func (s *Service) DeleteTask(id string) error {
	task, err := s.store.GetTask(id)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}
	if err := s.store.DeleteTask(id); err != nil {
		return err
	}
	s.journal.Note("", "task.delete", task.Title)
	return nil
}

// DismissStale suppresses the staleness flag for a task until new
// activity resets it. Dismissing is deliberately not recorded as
// activity: it must not bump LastActivityAt, or the dismissal would
// defeat the very signal it silences.
func (s *Service) DismissStale(id string) error {
	if err := s.store.DismissStale(id); err != nil {
		if err == store.ErrTaskNotFound {
			return ErrTaskNotFound
		}
		return err
	}
	s.journal.Note(id, "task.dismiss_stale", "")
	return nil
}

// ReopenStale clears a dismissal so the staleness rule applies again.
func (s *Service) ReopenStale(id string) error {
	if err := s.store.ReopenStale(id); err != nil {
		if err == store.ErrTaskNotFound {
			return ErrTaskNotFound
		}
		return err
	}
	s.journal.Note(id, "task.reopen_stale", "")
	return nil
}

// GetTaskActivity returns the activity log for a task.
func (s *Service) GetTaskActivity(id string) ([]models.ActivityEntry, error) {
	return s.store.GetActivityForTask(id)
}

// --- Timeline Operations ---

// TimelineResponse is the classified dashboard payload.
type TimelineResponse struct {
	GeneratedAt   time.Time                `json:"generated_at"`
	View          timeline.View            `json:"view"`
	CalendarState calendar.ConnectionState `json:"calendar_state"`
	Buckets       []timeline.Bucket        `json:"buckets"`
}

// Timeline classifies the current task snapshot, interleaving calendar
// events when the feed is loaded.
func (s *Service) Timeline(view timeline.View, now time.Time) (*TimelineResponse, error) {
	tasks, err := s.store.ListActiveTopLevel()
	if err != nil {
		return nil, err
	}
	dismissals, err := s.store.Dismissals()
	if err != nil {
		return nil, err
	}

	events, state, _ := s.events.Snapshot()
	if state != calendar.StateLoaded {
		// Interleaving is only attempted once the feed has loaded.
		events = nil
	}

	buckets := timeline.Classify(tasks, events, now, timeline.Options{
		View:       view,
		Dismissals: dismissals,
	})
	return &TimelineResponse{
		GeneratedAt:   now,
		View:          view,
		CalendarState: state,
		Buckets:       buckets,
	}, nil
}

// FocusSuggestion picks the single item to act on right now.
func (s *Service) FocusSuggestion(now time.Time) (timeline.Recommendation, error) {
	tasks, err := s.store.ListActiveTopLevel()
	if err != nil {
		return timeline.Recommendation{}, err
	}
	events, state, _ := s.events.Snapshot()
	if state != calendar.StateLoaded {
		events = nil
	}
	return timeline.Focus(tasks, events, now), nil
}

// EventsResponse is the raw calendar snapshot.
type EventsResponse struct {
	State    calendar.ConnectionState `json:"state"`
	SyncedAt *time.Time               `json:"synced_at,omitempty"`
	Events   []models.CalendarEvent   `json:"events"`
}

// Events returns the cached calendar snapshot.
func (s *Service) Events() EventsResponse {
	events, state, syncedAt := s.events.Snapshot()
	resp := EventsResponse{State: state, Events: events}
	if !syncedAt.IsZero() {
		resp.SyncedAt = &syncedAt
	}
	if resp.Events == nil {
		resp.Events = []models.CalendarEvent{}
	}
	return resp
}
