// Package store provides SQLite-backed persistence for Horizon.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/horizon-sh/horizon/internal/models"
	"github.com/horizon-sh/horizon/internal/timeline"
)

// Store provides access to the Horizon SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		priority TEXT NOT NULL DEFAULT 'normal',
		due_date DATETIME,
		due_date_type TEXT,
		last_activity_at DATETIME NOT NULL,
		parent_task_id TEXT,
		area_id TEXT,
		space_slug TEXT,
		space_name TEXT,
		color TEXT,
		stale_dismissed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS activity_log (
		id TEXT PRIMARY KEY,
		task_id TEXT,
		action TEXT NOT NULL,
		details TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id);
	CREATE INDEX IF NOT EXISTS idx_activity_task_id ON activity_log(task_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// TaskFields holds the editable fields of a task.
type TaskFields struct {
	Title        string
	Notes        string
	Priority     models.TaskPriority
	DueDate      *time.Time
	DueDateType  models.DueDateType
	ParentTaskID string
	AreaID       string
	SpaceSlug    string
	SpaceName    string
	Color        string
}

const taskColumns = `id, title, notes, status, priority, due_date, due_date_type,
	last_activity_at, parent_task_id, area_id, space_slug, space_name, color,
	stale_dismissed, created_at, updated_at, completed_at`

// --- Task Operations ---

// CreateTask inserts a new active task.
func (s *Store) CreateTask(f TaskFields) (*models.Task, error) {
	now := time.Now().UTC()
	if f.Priority == "" {
		f.Priority = models.PriorityNormal
	}
	task := &models.Task{
		ID:             uuid.New().String(),
		Title:          f.Title,
		Notes:          f.Notes,
		Status:         models.TaskStatusActive,
		Priority:       f.Priority,
		DueDate:        f.DueDate,
		DueDateType:    f.DueDateType,
		LastActivityAt: now,
		ParentTaskID:   f.ParentTaskID,
		AreaID:         f.AreaID,
		SpaceSlug:      f.SpaceSlug,
		SpaceName:      f.SpaceName,
		Color:          f.Color,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := s.db.Exec(
		`INSERT INTO tasks (id, title, notes, status, priority, due_date, due_date_type,
			last_activity_at, parent_task_id, area_id, space_slug, space_name, color,
			stale_dismissed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		task.ID, task.Title, task.Notes, task.Status, task.Priority,
		nullableTime(task.DueDate), nullableString(string(task.DueDateType)),
		task.LastActivityAt, nullableString(task.ParentTaskID),
		nullableString(task.AreaID), nullableString(task.SpaceSlug),
		nullableString(task.SpaceName), nullableString(task.Color),
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// GetTask retrieves a task by ID. Returns nil when the task does not exist.
func (s *Store) GetTask(id string) (*models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// ListTasks returns all tasks, optionally filtered by status.
func (s *Store) ListTasks(status string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []interface{}

	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	return s.queryTasks(query, args...)
}

// ListActiveTopLevel returns the classifier's input snapshot: active
// tasks without a parent.
func (s *Store) ListActiveTopLevel() ([]models.Task, error) {
	return s.queryTasks(
		`SELECT `+taskColumns+` FROM tasks
		 WHERE status = ? AND parent_task_id IS NULL
		 ORDER BY created_at DESC`,
		models.TaskStatusActive,
	)
}

// ListSubtasks returns the subtasks of a parent task.
func (s *Store) ListSubtasks(parentID string) ([]models.Task, error) {
	return s.queryTasks(
		`SELECT `+taskColumns+` FROM tasks WHERE parent_task_id = ? ORDER BY created_at ASC`,
		parentID,
	)
}

// UpdateTask overwrites the editable fields of a task.
func (s *Store) UpdateTask(id string, f TaskFields) error {
	res, err := s.db.Exec(
		`UPDATE tasks SET title = ?, notes = ?, priority = ?, due_date = ?,
			due_date_type = ?, area_id = ?, space_slug = ?, space_name = ?,
			color = ?, updated_at = ? WHERE id = ?`,
		f.Title, f.Notes, f.Priority, nullableTime(f.DueDate),
		nullableString(string(f.DueDateType)), nullableString(f.AreaID),
		nullableString(f.SpaceSlug), nullableString(f.SpaceName),
		nullableString(f.Color), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireRow(res)
}

// UpdateTaskStatus updates the status of a task, maintaining completed_at.
func (s *Store) UpdateTaskStatus(id string, status models.TaskStatus) error {
	now := time.Now().UTC()
	var res sql.Result
	var err error
	if status == models.TaskStatusCompleted {
		res, err = s.db.Exec(
			`UPDATE tasks SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
			status, now, now, id,
		)
	} else {
		res, err = s.db.Exec(
			`UPDATE tasks SET status = ?, completed_at = NULL, updated_at = ? WHERE id = ?`,
			status, now, id,
		)
	}
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return requireRow(res)
}

// DeleteTask removes a task and its subtasks.
func (s *Store) DeleteTask(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ? OR parent_task_id = ?`, id, id)
	return err
}

// --- Staleness Operations ---

// DismissStale marks a task's staleness as dismissed. The flag holds
// until the next recorded activity resets it.
func (s *Store) DismissStale(id string) error {
	res, err := s.db.Exec(
		`UPDATE tasks SET stale_dismissed = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("dismiss stale: %w", err)
	}
	return requireRow(res)
}

// ReopenStale clears the dismissal so the staleness rule applies again.
func (s *Store) ReopenStale(id string) error {
	res, err := s.db.Exec(
		`UPDATE tasks SET stale_dismissed = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("reopen stale: %w", err)
	}
	return requireRow(res)
}

// TouchActivity records fresh activity on a task: it bumps
// last_activity_at and resets any staleness dismissal.
func (s *Store) TouchActivity(id string) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`UPDATE tasks SET last_activity_at = ?, stale_dismissed = 0, updated_at = ? WHERE id = ?`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}
	return requireRow(res)
}

// Dismissals returns the set of tasks with staleness dismissed, in the
// form the classifier consumes.
func (s *Store) Dismissals() (timeline.DismissalSet, error) {
	rows, err := s.db.Query(`SELECT id FROM tasks WHERE stale_dismissed = 1`)
	if err != nil {
		return nil, fmt.Errorf("query dismissals: %w", err)
	}
	defer rows.Close()

	set := timeline.DismissalSet{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan dismissal: %w", err)
		}
		set[id] = true
	}
	return set, rows.Err()
}

// --- Activity Log Operations ---

// WriteActivity appends an entry to the activity log.
func (s *Store) WriteActivity(taskID, action, details string) (*models.ActivityEntry, error) {
	entry := &models.ActivityEntry{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO activity_log (id, task_id, action, details, timestamp) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, nullableString(entry.TaskID), entry.Action, entry.Details, entry.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	return entry, nil
}

// GetActivityForTask returns the activity log entries for a task.
func (s *Store) GetActivityForTask(taskID string) ([]models.ActivityEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, action, details, timestamp FROM activity_log
		 WHERE task_id = ? ORDER BY timestamp DESC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var entries []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		var taskID, details sql.NullString
		if err := rows.Scan(&e.ID, &taskID, &e.Action, &details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.TaskID = taskID.String
		e.Details = details.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var notes, dueDateType, parentID, areaID, spaceSlug, spaceName, color sql.NullString
	var dueDate, completedAt sql.NullTime
	var dismissed int

	err := row.Scan(
		&task.ID, &task.Title, &notes, &task.Status, &task.Priority,
		&dueDate, &dueDateType, &task.LastActivityAt, &parentID, &areaID,
		&spaceSlug, &spaceName, &color, &dismissed,
		&task.CreatedAt, &task.UpdatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Notes = notes.String
	task.DueDateType = models.DueDateType(dueDateType.String)
	task.ParentTaskID = parentID.String
	task.AreaID = areaID.String
	task.SpaceSlug = spaceSlug.String
	task.SpaceName = spaceName.String
	task.Color = color.String
	task.StaleDismissed = dismissed != 0
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	return task, nil
}

func (s *Store) queryTasks(query string, args ...interface{}) ([]models.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// ErrTaskNotFound indicates the task does not exist.
var ErrTaskNotFound = fmt.Errorf("task not found")

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
