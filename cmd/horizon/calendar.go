package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horizon-sh/horizon/internal/calendar"
	"github.com/horizon-sh/horizon/internal/config"
	"github.com/horizon-sh/horizon/internal/server"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Manage the calendar connection",
}

var calendarLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize Horizon to read your Google Calendar",
	RunE:  runCalendarLogin,
}

var calendarStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the calendar sync state",
	RunE:  runCalendarStatus,
}

func init() {
	calendarCmd.AddCommand(calendarLoginCmd, calendarStatusCmd)
}

func runCalendarLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := calendar.Authorize(cmd.Context(), cfg.Calendar.Credentials, cfg.Calendar.Token); err != nil {
		return err
	}
	fmt.Println("Token saved. Set calendar.enabled: true in config.yaml and restart the daemon.")
	return nil
}

func runCalendarStatus(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/events")
	if err != nil {
		return err
	}

	var events server.EventsResponse
	if err := json.Unmarshal(resp, &events); err != nil {
		return err
	}

	fmt.Printf("State:    %s\n", events.State)
	if events.SyncedAt != nil {
		fmt.Printf("Synced:   %s\n", events.SyncedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Events:   %d\n", len(events.Events))
	return nil
}
