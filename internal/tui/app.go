// Package tui provides the interactive terminal dashboard for Horizon.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/horizon-sh/horizon/internal/calendar"
	"github.com/horizon-sh/horizon/internal/models"
	"github.com/horizon-sh/horizon/internal/server"
	"github.com/horizon-sh/horizon/internal/timeline"
)

const refreshEvery = 30 * time.Second

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")
	cyanColor    = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	focusBannerStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(warningColor).
				Padding(0, 1)

	bucketTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(cyanColor)

	urgentTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(errorColor)

	itemStyle = lipgloss.NewStyle().
			Padding(0, 2)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true).
			Padding(0, 2)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	nowStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Padding(0, 2)

	highStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	onlineStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

var views = []timeline.View{timeline.ViewAll, timeline.ViewTasks, timeline.ViewCalendar}

// App is the main TUI application model.
type App struct {
	client       *Client
	timeline     *server.TimelineResponse
	focus        timeline.Recommendation
	rows         []row
	selectedIdx  int
	viewIdx      int
	input        textinput.Model
	viewport     viewport.Model
	adding       bool
	width        int
	height       int
	message      string
	daemonOnline bool
}

// New creates a new TUI application.
func New(apiAddr string) *App {
	ti := textinput.New()
	ti.Placeholder = "New task title"
	ti.CharLimit = 256
	ti.Width = 60

	vp := viewport.New(80, 20)

	return &App{
		client:   NewClient(apiAddr),
		input:    ti,
		viewport: vp,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.fetchTimeline(),
		a.checkDaemon(),
		a.tickCmd(),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.adding {
			return a.updateAdding(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit

		case "up", "k":
			if a.selectedIdx > 0 {
				a.selectedIdx--
			}

		case "down", "j":
			if a.selectedIdx < len(a.rows)-1 {
				a.selectedIdx++
			}

		case "tab", "v":
			a.viewIdx = (a.viewIdx + 1) % len(views)
			a.selectedIdx = 0
			return a, a.fetchTimeline()

		case "r":
			return a, tea.Batch(a.fetchTimeline(), a.checkDaemon())

		case "a":
			a.adding = true
			a.input.SetValue("")
			return a, a.input.Focus()

		case "c":
			if task := a.selectedTask(); task != nil {
				return a, a.taskAction(task.ID, a.client.CompleteTask, "Completed "+task.Title)
			}

		case "p":
			if task := a.selectedTask(); task != nil {
				return a, a.taskAction(task.ID, a.client.PlanTask, "Planning "+task.Title)
			}

		case "d":
			if task := a.selectedTask(); task != nil {
				return a, a.taskAction(task.ID, a.client.DismissStale, "Dismissed staleness for "+task.Title)
			}

		case "o":
			if task := a.selectedTask(); task != nil {
				return a, a.taskAction(task.ID, a.client.ReopenStale, "Stale check re-enabled for "+task.Title)
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 8

	case timelineLoadedMsg:
		a.timeline = msg.timeline
		a.focus = msg.focus
		a.rows = flattenRows(msg.timeline)
		if a.selectedIdx >= len(a.rows) {
			a.selectedIdx = max(0, len(a.rows)-1)
		}

	case daemonStatusMsg:
		a.daemonOnline = msg.online

	case actionDoneMsg:
		a.message = msg.message
		return a, a.fetchTimeline()

	case errMsg:
		a.message = "Error: " + msg.err.Error()

	case tickMsg:
		return a, tea.Batch(a.fetchTimeline(), a.checkDaemon(), a.tickCmd())
	}

	return a, nil
}

func (a *App) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.adding = false
		a.input.Blur()
		return a, nil

	case "enter":
		title := strings.TrimSpace(a.input.Value())
		a.adding = false
		a.input.Blur()
		if title == "" {
			return a, nil
		}
		return a, func() tea.Msg {
			if _, err := a.client.CreateTask(title); err != nil {
				return errMsg{err}
			}
			return actionDoneMsg{"Created " + title}
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	if !a.focus.Empty() {
		b.WriteString(focusBannerStyle.Render(a.renderFocus()))
		b.WriteString("\n")
	}

	a.viewport.SetContent(a.renderBuckets())
	b.WriteString(a.viewport.View())
	b.WriteString("\n")

	if a.adding {
		b.WriteString(inputBoxStyle.Render(a.input.View()))
		b.WriteString("\n")
	}

	b.WriteString(a.renderStatusBar())
	return b.String()
}

func (a *App) renderHeader() string {
	title := titleStyle.Render("HORIZON")

	daemon := offlineStyle.Render("● daemon offline")
	if a.daemonOnline {
		daemon = onlineStyle.Render("● daemon online")
	}

	view := "all"
	calState := ""
	if a.timeline != nil {
		view = string(a.timeline.View)
		switch a.timeline.CalendarState {
		case calendar.StateLoaded:
			calState = onlineStyle.Render("  calendar synced")
		case calendar.StateLoading:
			calState = mutedStyle.Render("  calendar syncing…")
		case calendar.StateError:
			calState = offlineStyle.Render("  calendar error")
		}
	}

	return fmt.Sprintf("%s  %s  %s%s", title, daemon, mutedStyle.Render("view: "+view), calState)
}

func (a *App) renderFocus() string {
	switch {
	case a.focus.Event != nil:
		return fmt.Sprintf("%s  %s at %s",
			highStyle.Render(a.focus.Reason),
			a.focus.Event.Subject,
			a.focus.Event.StartDateTime.Local().Format("15:04"))
	case a.focus.Task != nil:
		return fmt.Sprintf("%s  %s",
			highStyle.Render(a.focus.Reason),
			a.focus.Task.Title)
	}
	return ""
}

func (a *App) renderBuckets() string {
	if a.timeline == nil {
		return mutedStyle.Render("  loading…")
	}

	var b strings.Builder
	idx := 0
	for _, bucket := range a.timeline.Buckets {
		if len(bucket.Items) == 0 && len(bucket.AllDayEvents) == 0 {
			continue
		}

		style := bucketTitleStyle
		if bucket.Key == timeline.BucketNeedsAttention {
			style = urgentTitleStyle
		}
		b.WriteString("\n" + style.Render(bucket.Title) + "\n")

		for _, ev := range bucket.AllDayEvents {
			b.WriteString(mutedStyle.Render("  all day: "+ev.Subject) + "\n")
		}

		for i, item := range bucket.Items {
			if i == bucket.NowIndex {
				b.WriteString(nowStyle.Render("──── now ────") + "\n")
			}
			line := renderItem(item)
			if idx == a.selectedIdx {
				b.WriteString(selectedStyle.Render(line) + "\n")
			} else {
				b.WriteString(itemStyle.Render(line) + "\n")
			}
			idx++
		}
		if bucket.NowIndex == len(bucket.Items) && bucket.NowIndex >= 0 {
			b.WriteString(nowStyle.Render("──── now ────") + "\n")
		}
	}

	if idx == 0 {
		b.WriteString(mutedStyle.Render("  nothing scheduled") + "\n")
	}
	return b.String()
}

func renderItem(item timeline.Item) string {
	switch item.Type {
	case timeline.ItemEvent:
		return fmt.Sprintf("%s  %s",
			item.Event.StartDateTime.Local().Format("15:04"), item.Event.Subject)
	case timeline.ItemTask:
		line := item.Task.Title
		if item.Task.Priority == models.PriorityHigh {
			line = highStyle.Render("▲ ") + line
		} else {
			line = "  " + line
		}
		if item.Task.DueDate != nil {
			due := item.Task.DueDate.Local().Format("Jan 2")
			if item.Task.DueDateType == models.DueDateHard {
				due += "!"
			}
			line += mutedStyle.Render("  due " + due)
		}
		return line
	}
	return ""
}

func (a *App) renderStatusBar() string {
	help := "↑/↓ move · a add · c complete · p plan · d dismiss · o reopen · tab view · r refresh · q quit"
	if a.message != "" {
		help = a.message
	}
	return statusBarStyle.Width(max(a.width, len(help)+2)).Render(help)
}

// selectedTask returns the task under the cursor, or nil when the
// cursor sits on an event.
func (a *App) selectedTask() *models.Task {
	if a.selectedIdx < 0 || a.selectedIdx >= len(a.rows) {
		return nil
	}
	return a.rows[a.selectedIdx].item.Task
}

func flattenRows(tl *server.TimelineResponse) []row {
	var rows []row
	for _, bucket := range tl.Buckets {
		for _, item := range bucket.Items {
			rows = append(rows, row{bucket: bucket.Key, item: item})
		}
	}
	return rows
}

// --- Commands ---

func (a *App) fetchTimeline() tea.Cmd {
	view := views[a.viewIdx]
	return func() tea.Msg {
		tl, err := a.client.Timeline(view)
		if err != nil {
			return errMsg{err}
		}
		focus, err := a.client.Focus()
		if err != nil {
			return errMsg{err}
		}
		return timelineLoadedMsg{timeline: tl, focus: focus}
	}
}

func (a *App) checkDaemon() tea.Cmd {
	return func() tea.Msg {
		ok, _ := a.client.CheckHealth()
		return daemonStatusMsg{online: ok}
	}
}

func (a *App) taskAction(taskID string, fn func(string) error, doneMsg string) tea.Cmd {
	return func() tea.Msg {
		if err := fn(taskID); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{doneMsg}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(refreshEvery, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
