// Package calendar defines calendar providers for Horizon.
package calendar

import (
	"context"
	"time"

	"github.com/horizon-sh/horizon/internal/models"
)

// ConnectionState describes the calendar feed from the dashboard's
// point of view.
type ConnectionState string

const (
	StateNotConnected ConnectionState = "not-connected"
	StateLoading      ConnectionState = "loading"
	StateLoaded       ConnectionState = "loaded"
	StateError        ConnectionState = "error"
)

// Provider defines the interface for fetching calendar events.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Events returns the events starting within [from, to).
	Events(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error)
}
