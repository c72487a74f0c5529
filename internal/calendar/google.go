package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/horizon-sh/horizon/internal/models"
)

// GoogleProvider fetches events from a Google Calendar.
type GoogleProvider struct {
	srv        *gcal.Service
	calendarID string
}

// NewGoogleProvider creates a provider for the given calendar ID.
// "primary" selects the account's default calendar.
func NewGoogleProvider(srv *gcal.Service, calendarID string) *GoogleProvider {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleProvider{srv: srv, calendarID: calendarID}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string { return "google" }

// Events implements Provider.
func (p *GoogleProvider) Events(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	call := p.srv.Events.List(p.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]models.CalendarEvent, 0, len(res.Items))
	for _, item := range res.Items {
		ev, ok := convertEvent(item)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// convertEvent maps a Google Calendar event onto the domain type. Events
// with unusable times are skipped rather than surfaced as errors.
func convertEvent(item *gcal.Event) (models.CalendarEvent, bool) {
	ev := models.CalendarEvent{
		ID:          item.Id,
		Subject:     item.Summary,
		IsCancelled: item.Status == "cancelled",
	}

	start, allDay, ok := eventTime(item.Start)
	if !ok {
		return models.CalendarEvent{}, false
	}
	end, _, _ := eventTime(item.End)

	ev.StartDateTime = start
	ev.EndDateTime = end
	ev.IsAllDay = allDay
	return ev, true
}

func eventTime(edt *gcal.EventDateTime) (time.Time, bool, bool) {
	if edt == nil {
		return time.Time{}, false, false
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, false, true
	}
	if edt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", edt.Date, time.Local)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, true, true
	}
	return time.Time{}, false, false
}
