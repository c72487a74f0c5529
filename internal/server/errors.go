package server

import "errors"

// Sentinel errors for API operations.
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrTitleRequired   = errors.New("task title is required")
	ErrParentNotFound  = errors.New("parent task not found")
	ErrParentIsSubtask = errors.New("subtasks cannot be nested")
	ErrBadStatus       = errors.New("invalid task status")
)
