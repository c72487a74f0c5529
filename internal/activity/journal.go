// Package activity records state-mutating actions applied to tasks.
package activity

import (
	"log"

	"github.com/horizon-sh/horizon/internal/models"
	"github.com/horizon-sh/horizon/internal/store"
)

// Journal appends activity entries and keeps per-task activity
// timestamps current. Recording activity on a task also resets any
// staleness dismissal, which is what lets a dismissed task become
// eligible for the stale check again after it goes quiet.
type Journal struct {
	store *store.Store
}

// NewJournal creates a journal backed by the given store.
func NewJournal(s *store.Store) *Journal {
	return &Journal{store: s}
}

// Record writes an activity entry for a task and bumps the task's
// LastActivityAt. Failures are logged, not returned: the journal must
// never block the operation it documents.
func (j *Journal) Record(taskID, action, details string) *models.ActivityEntry {
	entry, err := j.store.WriteActivity(taskID, action, details)
	if err != nil {
		log.Printf("activity: write failed for %s: %v", action, err)
		return nil
	}
	if taskID != "" {
		if err := j.store.TouchActivity(taskID); err != nil && err != store.ErrTaskNotFound {
			log.Printf("activity: touch failed for task %s: %v", taskID, err)
		}
	}
	return entry
}

// Note writes an activity entry without bumping LastActivityAt. Used
// for bookkeeping actions like dismissing staleness, which must not
// count as activity on the task itself.
func (j *Journal) Note(taskID, action, details string) *models.ActivityEntry {
	entry, err := j.store.WriteActivity(taskID, action, details)
	if err != nil {
		log.Printf("activity: write failed for %s: %v", action, err)
		return nil
	}
	return entry
}
