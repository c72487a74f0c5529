package timeline

import (
	"sort"
	"time"

	"github.com/horizon-sh/horizon/internal/models"
)

// Classify partitions tasks and calendar events into the five timeline
// buckets for the given reference instant.
//
// Membership is exclusive: a task that is overdue or stale lands in
// Needs Attention and is not considered for the date buckets. Subtasks
// and non-active tasks are never classified. Non-all-day events merge
// into the bucket matching their start day (view "all" only); all-day
// events are collected per bucket in a separate summary.
func Classify(tasks []models.Task, events []models.CalendarEvent, now time.Time, opts Options) []Bucket {
	if opts.View == "" {
		opts.View = ViewAll
	}

	byKey := make(map[BucketKey]*Bucket, len(BucketOrder))
	out := make([]Bucket, len(BucketOrder))
	for i, key := range BucketOrder {
		out[i] = Bucket{Key: key, Title: bucketTitles[key], Items: []Item{}, NowIndex: -1}
		byKey[key] = &out[i]
	}

	if opts.View != ViewCalendar {
		for i := range tasks {
			t := &tasks[i]
			if t.Status != models.TaskStatusActive || t.IsSubtask() {
				continue
			}
			key := classifyTask(t, now, opts.Dismissals)
			b := byKey[key]
			b.Items = append(b.Items, Item{Type: ItemTask, Task: t})
		}
		for _, b := range byKey {
			sortTasks(b.Items)
		}
	}

	if opts.View != ViewTasks {
		for i := range events {
			ev := &events[i]
			key := dueBucket(ev.StartDateTime, now)
			b := byKey[key]
			if ev.IsAllDay {
				b.AllDayEvents = append(b.AllDayEvents, *ev)
				continue
			}
			b.Items = append(b.Items, Item{Type: ItemEvent, Event: ev})
		}
	}

	for i := range out {
		b := &out[i]
		mergeTimed(b, now)
	}
	return out
}

// classifyTask picks the bucket for a single active top-level task.
func classifyTask(t *models.Task, now time.Time, dismissals DismissalChecker) BucketKey {
	if IsOverdue(t, now) || IsStale(t, now, dismissals) {
		return BucketNeedsAttention
	}
	if t.DueDate == nil {
		return BucketAnytime
	}
	return dueBucket(*t.DueDate, now)
}

// sortTasks orders a task-only item list: high priority first, then
// ascending due date with dateless tasks last.
func sortTasks(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Task, items[j].Task
		if a.Priority != b.Priority {
			return a.Priority == models.PriorityHigh
		}
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return false
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		default:
			return a.DueDate.Before(*b.DueDate)
		}
	})
}

// mergeTimed re-orders a bucket holding both tasks and events by a
// single time key (event start, task due date) with dateless tasks
// after all timed items. The sort is stable, so the priority ordering
// established by sortTasks survives as the tie-break among tasks. It
// then places the NOW divider.
func mergeTimed(b *Bucket, now time.Time) {
	hasEvent := false
	for _, it := range b.Items {
		if it.Type == ItemEvent {
			hasEvent = true
			break
		}
	}
	if hasEvent {
		sort.SliceStable(b.Items, func(i, j int) bool {
			ti, iok := itemTime(b.Items[i])
			tj, jok := itemTime(b.Items[j])
			switch {
			case iok && jok:
				return ti.Before(tj)
			case iok:
				return true
			default:
				return false
			}
		})
	}

	if b.Key == BucketNeedsAttention || b.Key == BucketAnytime {
		return
	}
	timed := 0
	for i, it := range b.Items {
		t, ok := itemTime(it)
		if !ok {
			break
		}
		timed++
		if b.NowIndex == -1 && !t.Before(now) {
			b.NowIndex = i
		}
	}
	if b.NowIndex == -1 && timed > 0 {
		b.NowIndex = timed
	}
}

// itemTime returns the ordering key for a timeline item.
func itemTime(it Item) (time.Time, bool) {
	if it.Type == ItemEvent {
		return it.Event.StartDateTime, true
	}
	if it.Task.DueDate != nil {
		return *it.Task.DueDate, true
	}
	return time.Time{}, false
}
