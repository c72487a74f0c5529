// Package timeline groups tasks and calendar events into the horizon
// buckets shown on the dashboard and picks a single focus suggestion.
// Everything in this package is pure: callers pass the task/event
// snapshot and the reference instant, and get new structures back.
package timeline

import "github.com/horizon-sh/horizon/internal/models"

// BucketKey identifies one of the five fixed timeline buckets.
type BucketKey string

const (
	BucketNeedsAttention BucketKey = "needsAttention"
	BucketToday          BucketKey = "today"
	BucketThisWeek       BucketKey = "thisWeek"
	BucketLater          BucketKey = "later"
	BucketAnytime        BucketKey = "anytime"
)

// BucketOrder lists the bucket keys in display order.
var BucketOrder = []BucketKey{
	BucketNeedsAttention,
	BucketToday,
	BucketThisWeek,
	BucketLater,
	BucketAnytime,
}

var bucketTitles = map[BucketKey]string{
	BucketNeedsAttention: "Needs Attention",
	BucketToday:          "Today",
	BucketThisWeek:       "This Week",
	BucketLater:          "Later",
	BucketAnytime:        "Anytime",
}

// ItemType tags the variant held by an Item.
type ItemType string

const (
	ItemTask  ItemType = "task"
	ItemEvent ItemType = "event"
)

// Item is the unit a bucket holds: either a task or a calendar event.
type Item struct {
	Type  ItemType              `json:"type"`
	Task  *models.Task          `json:"task,omitempty"`
	Event *models.CalendarEvent `json:"event,omitempty"`
}

// Bucket is one named group of ordered timeline items.
type Bucket struct {
	Key   BucketKey `json:"key"`
	Title string    `json:"title"`
	Items []Item    `json:"items"`

	// AllDayEvents summarises all-day events falling on this bucket's
	// day range. They never participate in Items or the NOW divider.
	AllDayEvents []models.CalendarEvent `json:"all_day_events,omitempty"`

	// NowIndex is the position of the NOW divider within Items: the
	// index of the first timed item at or after the reference instant.
	// Dateless tasks sort after all timed items and sit below the
	// divider. -1 means the divider is not meaningful for this bucket.
	NowIndex int `json:"now_index"`
}

// View filters which item kinds a classification includes.
type View string

const (
	ViewAll      View = "all"
	ViewTasks    View = "tasks"
	ViewCalendar View = "calendar"
)

// DismissalChecker reports whether staleness has been dismissed for a
// task. The flag is owned by the task store; the classifier only reads
// it.
type DismissalChecker interface {
	IsDismissed(taskID string) bool
}

// DismissalSet is a map-backed DismissalChecker.
type DismissalSet map[string]bool

// IsDismissed implements DismissalChecker.
func (s DismissalSet) IsDismissed(taskID string) bool { return s[taskID] }

// Options control a Classify invocation.
type Options struct {
	View       View
	Dismissals DismissalChecker
}

// Recommendation is the single "do this next" suggestion. At most one
// of Task and Event is set; both nil means there is nothing to suggest.
type Recommendation struct {
	Task   *models.Task          `json:"task,omitempty"`
	Event  *models.CalendarEvent `json:"event,omitempty"`
	Reason string                `json:"reason"`
}

// Empty reports whether the recommendation carries no suggestion.
func (r Recommendation) Empty() bool { return r.Task == nil && r.Event == nil }
