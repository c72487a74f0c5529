package tui

import (
	"github.com/horizon-sh/horizon/internal/server"
	"github.com/horizon-sh/horizon/internal/timeline"
)

// Messages passed through the bubbletea update loop.

type timelineLoadedMsg struct {
	timeline *server.TimelineResponse
	focus    timeline.Recommendation
}

type daemonStatusMsg struct {
	online bool
}

type actionDoneMsg struct {
	message string
}

type errMsg struct {
	err error
}

type tickMsg struct{}

// row is one selectable line in the flattened bucket list.
type row struct {
	bucket timeline.BucketKey
	item   timeline.Item
}
