package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/horizon-sh/horizon/internal/calendar"
	"github.com/horizon-sh/horizon/internal/models"
	"github.com/horizon-sh/horizon/internal/server"
	"github.com/horizon-sh/horizon/internal/timeline"
)

var timelineView string

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show the five-bucket timeline",
	RunE:  runTimeline,
}

func init() {
	timelineCmd.Flags().StringVar(&timelineView, "view", "all", "View filter (all, tasks, calendar)")
}

var (
	bucketHeading = color.New(color.FgCyan, color.Bold)
	urgentHeading = color.New(color.FgRed, color.Bold)
	dimText       = color.New(color.Faint)
	highMark      = color.New(color.FgYellow, color.Bold)
)

func runTimeline(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/timeline?view=" + timelineView)
	if err != nil {
		return err
	}

	var tl server.TimelineResponse
	if err := json.Unmarshal(resp, &tl); err != nil {
		return err
	}

	if tl.CalendarState == calendar.StateError {
		dimText.Println("calendar sync failed; showing tasks only")
	}

	for _, bucket := range tl.Buckets {
		if len(bucket.Items) == 0 && len(bucket.AllDayEvents) == 0 {
			continue
		}

		heading := bucketHeading
		if bucket.Key == timeline.BucketNeedsAttention {
			heading = urgentHeading
		}
		heading.Printf("\n%s\n", bucket.Title)

		for _, ev := range bucket.AllDayEvents {
			dimText.Printf("  all day: %s\n", ev.Subject)
		}

		table := uitable.New()
		table.MaxColWidth = 50
		for i, item := range bucket.Items {
			if i == bucket.NowIndex {
				table.AddRow("", dimText.Sprint("──── now ────"), "")
			}
			switch item.Type {
			case timeline.ItemTask:
				table.AddRow("  "+truncateID(item.Task.ID), item.Task.Title, taskBadge(item.Task))
			case timeline.ItemEvent:
				table.AddRow("  "+eventClock(item.Event), item.Event.Subject, dimText.Sprint("meeting"))
			}
		}
		if bucket.NowIndex == len(bucket.Items) && bucket.NowIndex >= 0 {
			table.AddRow("", dimText.Sprint("──── now ────"), "")
		}
		fmt.Println(table)
	}

	fmt.Println()
	return nil
}

func taskBadge(t *models.Task) string {
	badge := ""
	if t.Priority == models.PriorityHigh {
		badge = highMark.Sprint("high")
	}
	if t.DueDate != nil {
		if badge != "" {
			badge += " "
		}
		badge += t.DueDate.Local().Format("Jan 2 15:04")
		if t.DueDateType == models.DueDateHard {
			badge += "!"
		}
	}
	return badge
}

func eventClock(ev *models.CalendarEvent) string {
	return ev.StartDateTime.Local().Format("15:04")
}
