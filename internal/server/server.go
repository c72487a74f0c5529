package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/horizon-sh/horizon/internal/models"
	"github.com/horizon-sh/horizon/internal/store"
	"github.com/horizon-sh/horizon/internal/timeline"
)

// Version is reported by the health endpoint.
const Version = "0.4.0"

// Server provides the HTTP API for Horizon.
type Server struct {
	service *Service
	store   *store.Store
	addr    string
	server  *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(service *Service, st *store.Store, addr string) *Server {
	return &Server{
		service: service,
		store:   st,
		addr:    addr,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Task endpoints
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTaskByID)

	// Dashboard endpoints
	mux.HandleFunc("/timeline", s.handleTimeline)
	mux.HandleFunc("/focus", s.handleFocus)
	mux.HandleFunc("/events", s.handleEvents)

	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Starting Horizon daemon on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	DB      string `json:"db"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := HealthResponse{
		OK:      true,
		DB:      "ok",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		health.OK = false
		health.DB = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	writeJSON(w, http.StatusOK, health)
}

// handleTasks handles POST /tasks and GET /tasks
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTask(w, r)
	case http.MethodGet:
		s.listTasks(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTaskByID handles /tasks/{id}/*
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/tasks/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "task id required", http.StatusBadRequest)
		return
	}

	taskID := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.getTask(w, r, taskID)
	case action == "" && r.Method == http.MethodDelete:
		s.deleteTask(w, r, taskID)
	case action == "update" && r.Method == http.MethodPost:
		s.updateTask(w, r, taskID)
	case action == "complete" && r.Method == http.MethodPost:
		s.setStatus(w, r, taskID, models.TaskStatusCompleted)
	case action == "plan" && r.Method == http.MethodPost:
		s.setStatus(w, r, taskID, models.TaskStatusPlanning)
	case action == "activate" && r.Method == http.MethodPost:
		s.setStatus(w, r, taskID, models.TaskStatusActive)
	case action == "dismiss-stale" && r.Method == http.MethodPost:
		s.dismissStale(w, r, taskID)
	case action == "reopen-stale" && r.Method == http.MethodPost:
		s.reopenStale(w, r, taskID)
	case action == "subtasks" && r.Method == http.MethodGet:
		s.listSubtasks(w, r, taskID)
	case action == "activity" && r.Method == http.MethodGet:
		s.getTaskActivity(w, r, taskID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// --- Task Handlers ---

type taskRequest struct {
	Title        string `json:"title"`
	Notes        string `json:"notes"`
	Priority     string `json:"priority"`
	DueDate      string `json:"due_date"`
	DueDateType  string `json:"due_date_type"`
	ParentTaskID string `json:"parent_task_id"`
	AreaID       string `json:"area_id"`
	SpaceSlug    string `json:"space_slug"`
	SpaceName    string `json:"space_name"`
	Color        string `json:"color"`
}

// fields converts the wire request to store fields. Dates parse
// leniently: an unparsable due date is treated as no due date.
func (req *taskRequest) fields() store.TaskFields {
	f := store.TaskFields{
		Title:        req.Title,
		Notes:        req.Notes,
		Priority:     models.TaskPriority(req.Priority),
		DueDate:      timeline.ParseWhen(req.DueDate),
		ParentTaskID: req.ParentTaskID,
		AreaID:       req.AreaID,
		SpaceSlug:    req.SpaceSlug,
		SpaceName:    req.SpaceName,
		Color:        req.Color,
	}
	if f.DueDate != nil {
		f.DueDateType = models.DueDateType(req.DueDateType)
		if f.DueDateType != models.DueDateHard {
			f.DueDateType = models.DueDateSoft
		}
	}
	return f
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	task, err := s.service.CreateTask(req.fields())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	tasks, err := s.service.ListTasks(status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := s.service.GetTask(taskID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if task == nil {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, taskID string) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	task, err := s.service.UpdateTask(taskID, req.fields())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request, taskID string, status models.TaskStatus) {
	task, err := s.service.SetStatus(taskID, status)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if err := s.service.DeleteTask(taskID); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"deleted"}`))
}

func (s *Server) dismissStale(w http.ResponseWriter, r *http.Request, taskID string) {
	if err := s.service.DismissStale(taskID); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"dismissed"}`))
}

func (s *Server) reopenStale(w http.ResponseWriter, r *http.Request, taskID string) {
	if err := s.service.ReopenStale(taskID); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"reopened"}`))
}

func (s *Server) listSubtasks(w http.ResponseWriter, r *http.Request, taskID string) {
	tasks, err := s.service.ListSubtasks(taskID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) getTaskActivity(w http.ResponseWriter, r *http.Request, taskID string) {
	entries, err := s.service.GetTaskActivity(taskID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Dashboard Handlers ---

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view := timeline.View(r.URL.Query().Get("view"))
	switch view {
	case "", timeline.ViewAll:
		view = timeline.ViewAll
	case timeline.ViewTasks, timeline.ViewCalendar:
	default:
		http.Error(w, "invalid view", http.StatusBadRequest)
		return
	}

	resp, err := s.service.Timeline(view, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rec, err := s.service.FocusSuggestion(time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Events())
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch err {
	case ErrTaskNotFound, ErrParentNotFound:
		return http.StatusNotFound
	case ErrTitleRequired, ErrParentIsSubtask, ErrBadStatus:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
