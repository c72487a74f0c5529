package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/horizon-sh/horizon/internal/activity"
	"github.com/horizon-sh/horizon/internal/calendar"
	"github.com/horizon-sh/horizon/internal/models"
	"github.com/horizon-sh/horizon/internal/store"
	"github.com/horizon-sh/horizon/internal/timeline"
)

// stubEvents is an EventSource with a fixed snapshot.
type stubEvents struct {
	events []models.CalendarEvent
	state  calendar.ConnectionState
}

func (s *stubEvents) Snapshot() ([]models.CalendarEvent, calendar.ConnectionState, time.Time) {
	syncedAt := time.Time{}
	if s.state == calendar.StateLoaded {
		syncedAt = time.Now()
	}
	return s.events, s.state, syncedAt
}

func newTestServer(t *testing.T, events *stubEvents) (*Server, *store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if events == nil {
		events = &stubEvents{state: calendar.StateNotConnected}
	}
	journal := activity.NewJournal(st)
	service := NewService(st, journal, events)
	return NewServer(service, st, "127.0.0.1:0"), st
}

func postJSON(t *testing.T, s *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	s.handleTaskByID(w, req)
	return w
}

func TestHealthEndpoint_OK(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !health.OK {
		t.Error("Expected health.OK to be true")
	}
	if health.DB != "ok" {
		t.Errorf("Expected DB status 'ok', got '%s'", health.DB)
	}
	if health.Version == "" {
		t.Error("Expected version to be set")
	}
}

func TestHealthEndpoint_DBError(t *testing.T) {
	s, st := newTestServer(t, nil)
	st.Close()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	if w.Result().StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Result().StatusCode)
	}
}

func TestCreateAndGetTask(t *testing.T) {
	s, _ := newTestServer(t, nil)

	body := map[string]string{
		"title":         "Write report",
		"priority":      "high",
		"due_date":      "2026-04-01",
		"due_date_type": "hard",
	}
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(data))
	w := httptest.NewRecorder()
	s.handleTasks(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Result().StatusCode, w.Body.String())
	}

	var task models.Task
	if err := json.NewDecoder(w.Result().Body).Decode(&task); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if task.Priority != models.PriorityHigh {
		t.Errorf("Expected high priority, got %s", task.Priority)
	}
	if task.DueDate == nil || task.DueDateType != models.DueDateHard {
		t.Errorf("Due date did not survive, got %+v", task)
	}

	req = httptest.NewRequest(http.MethodGet, "/tasks/"+task.ID, nil)
	w = httptest.NewRecorder()
	s.handleTaskByID(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Result().StatusCode)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)

	data, _ := json.Marshal(map[string]string{"title": ""})
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(data))
	w := httptest.NewRecorder()
	s.handleTasks(w, req)
	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("Empty title should 400, got %d", w.Result().StatusCode)
	}

	data, _ = json.Marshal(map[string]string{"title": "child", "parent_task_id": "missing"})
	req = httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(data))
	w = httptest.NewRecorder()
	s.handleTasks(w, req)
	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("Unknown parent should 404, got %d", w.Result().StatusCode)
	}
}

func TestUnparsableDueDateFailsOpen(t *testing.T) {
	s, _ := newTestServer(t, nil)

	data, _ := json.Marshal(map[string]string{"title": "Task", "due_date": "whenever"})
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(data))
	w := httptest.NewRecorder()
	s.handleTasks(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Result().StatusCode)
	}
	var task models.Task
	json.NewDecoder(w.Result().Body).Decode(&task)
	if task.DueDate != nil {
		t.Error("Unparsable due date must behave as no date")
	}
}

func TestCompleteTask(t *testing.T) {
	s, st := newTestServer(t, nil)
	task, _ := st.CreateTask(store.TaskFields{Title: "Task"})

	w := postJSON(t, s, "/tasks/"+task.ID+"/complete", nil)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Result().StatusCode)
	}

	var got models.Task
	json.NewDecoder(w.Result().Body).Decode(&got)
	if got.Status != models.TaskStatusCompleted {
		t.Errorf("Expected completed, got %s", got.Status)
	}

	w = postJSON(t, s, "/tasks/missing/complete", nil)
	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Result().StatusCode)
	}
}

func TestTimelineEndpoint(t *testing.T) {
	s, st := newTestServer(t, nil)

	yesterday := time.Now().Add(-24 * time.Hour)
	st.CreateTask(store.TaskFields{
		Title:       "Overdue",
		DueDate:     &yesterday,
		DueDateType: models.DueDateHard,
	})
	endOfDay := lateToday(23, 59)
	st.CreateTask(store.TaskFields{Title: "Today", DueDate: &endOfDay, DueDateType: models.DueDateSoft})

	req := httptest.NewRequest(http.MethodGet, "/timeline", nil)
	w := httptest.NewRecorder()
	s.handleTimeline(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Result().StatusCode, w.Body.String())
	}

	var resp TimelineResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Buckets) != 5 {
		t.Fatalf("Expected 5 buckets, got %d", len(resp.Buckets))
	}
	if resp.CalendarState != calendar.StateNotConnected {
		t.Errorf("Expected not-connected, got %s", resp.CalendarState)
	}
	if resp.Buckets[0].Key != timeline.BucketNeedsAttention || len(resp.Buckets[0].Items) != 1 {
		t.Errorf("Expected the overdue task in needsAttention, got %+v", resp.Buckets[0])
	}

	req = httptest.NewRequest(http.MethodGet, "/timeline?view=bogus", nil)
	w = httptest.NewRecorder()
	s.handleTimeline(w, req)
	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("Invalid view should 400, got %d", w.Result().StatusCode)
	}
}

func TestTimelineInterleavesLoadedCalendar(t *testing.T) {
	events := &stubEvents{
		state: calendar.StateLoaded,
		events: []models.CalendarEvent{{
			ID:            "e1",
			Subject:       "standup",
			StartDateTime: lateToday(23, 0),
			EndDateTime:   lateToday(23, 30),
		}},
	}
	s, st := newTestServer(t, events)
	endOfDay := lateToday(23, 59)
	st.CreateTask(store.TaskFields{Title: "Today", DueDate: &endOfDay, DueDateType: models.DueDateSoft})

	req := httptest.NewRequest(http.MethodGet, "/timeline", nil)
	w := httptest.NewRecorder()
	s.handleTimeline(w, req)

	var resp TimelineResponse
	json.NewDecoder(w.Result().Body).Decode(&resp)

	var today *timeline.Bucket
	for i := range resp.Buckets {
		if resp.Buckets[i].Key == timeline.BucketToday {
			today = &resp.Buckets[i]
		}
	}
	if today == nil || len(today.Items) != 2 {
		t.Fatalf("Expected event + task in today, got %+v", today)
	}
	if today.Items[0].Type != timeline.ItemEvent {
		t.Errorf("Event at 23:00 should sort before task due at 23:59")
	}
}

// lateToday returns a timestamp on the current local day, keeping the
// timeline assertions independent of when the test runs.
func lateToday(hour, min int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, time.Local)
}

func TestFocusEndpoint(t *testing.T) {
	s, st := newTestServer(t, nil)

	yesterday := time.Now().Add(-24 * time.Hour)
	st.CreateTask(store.TaskFields{
		Title:       "Overdue",
		DueDate:     &yesterday,
		DueDateType: models.DueDateHard,
	})

	req := httptest.NewRequest(http.MethodGet, "/focus", nil)
	w := httptest.NewRecorder()
	s.handleFocus(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Result().StatusCode)
	}

	var rec timeline.Recommendation
	if err := json.NewDecoder(w.Result().Body).Decode(&rec); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if rec.Task == nil || rec.Reason != timeline.ReasonHardDeadline {
		t.Errorf("Expected hard-deadline suggestion, got %+v", rec)
	}
}

func TestDismissStaleFlow(t *testing.T) {
	s, st := newTestServer(t, nil)
	task, _ := st.CreateTask(store.TaskFields{Title: "Quiet task"})

	w := postJSON(t, s, fmt.Sprintf("/tasks/%s/dismiss-stale", task.ID), nil)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Result().StatusCode)
	}

	got, _ := st.GetTask(task.ID)
	if !got.StaleDismissed {
		t.Error("Dismissal should persist")
	}

	w = postJSON(t, s, fmt.Sprintf("/tasks/%s/reopen-stale", task.ID), nil)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Result().StatusCode)
	}
	got, _ = st.GetTask(task.ID)
	if got.StaleDismissed {
		t.Error("Reopen should clear the dismissal")
	}
}

func TestEventsEndpoint(t *testing.T) {
	events := &stubEvents{state: calendar.StateLoaded, events: []models.CalendarEvent{{ID: "e1"}}}
	s, _ := newTestServer(t, events)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	s.handleEvents(w, req)

	var resp EventsResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.State != calendar.StateLoaded || len(resp.Events) != 1 {
		t.Errorf("Unexpected events payload: %+v", resp)
	}
}
