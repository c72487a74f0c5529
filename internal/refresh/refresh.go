// Package refresh keeps a rolling snapshot of calendar events warm.
package refresh

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/horizon-sh/horizon/internal/calendar"
	"github.com/horizon-sh/horizon/internal/models"
)

// Refresher polls a calendar provider on a fixed cadence and holds the
// latest event snapshot for the API to serve. Classification itself
// happens per request; the refresher only owns the slow, remote part.
type Refresher struct {
	provider calendar.Provider
	config   *Config

	mu       sync.Mutex
	events   []models.CalendarEvent
	state    calendar.ConnectionState
	syncedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a refresher. A nil provider leaves the feed in the
// not-connected state permanently.
func New(provider calendar.Provider, cfg *Config) *Refresher {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	state := calendar.StateNotConnected
	if provider != nil {
		state = calendar.StateLoading
	}

	return &Refresher{
		provider: provider,
		config:   cfg,
		state:    state,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the refresh loop.
func (r *Refresher) Start() {
	if r.provider == nil {
		log.Println("Calendar refresher idle: no provider configured")
		return
	}
	r.wg.Add(1)
	go r.loop()
	log.Printf("Calendar refresher started (provider=%s, every %s)", r.provider.Name(), r.config.Interval)
}

// Stop gracefully stops the refresh loop.
func (r *Refresher) Stop() {
	r.cancel()
	r.wg.Wait()
}

func (r *Refresher) loop() {
	defer r.wg.Done()

	// First sync immediately, then on the ticker.
	r.refreshOnce()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.refreshOnce()
		}
	}
}

func (r *Refresher) refreshOnce() {
	now := time.Now()
	from := now.AddDate(0, 0, -r.config.PastDays)
	to := now.AddDate(0, 0, r.config.WindowDays)

	ctx, cancel := context.WithTimeout(r.ctx, 30*time.Second)
	defer cancel()

	events, err := r.provider.Events(ctx, from, to)
	if err != nil {
		log.Printf("Calendar refresh failed: %v", err)
		r.mu.Lock()
		r.state = calendar.StateError
		r.mu.Unlock()
		return
	}

	r.mu.Lock()
	r.events = events
	r.state = calendar.StateLoaded
	r.syncedAt = now
	r.mu.Unlock()
}

// Snapshot returns the latest events together with the feed state and
// the time of the last successful sync. The returned slice is shared;
// callers must not mutate it.
func (r *Refresher) Snapshot() ([]models.CalendarEvent, calendar.ConnectionState, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events, r.state, r.syncedAt
}
