package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/horizon-sh/horizon/internal/timeline"
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Show the one thing to focus on now",
	RunE:  runFocus,
}

func runFocus(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/focus")
	if err != nil {
		return err
	}

	var rec timeline.Recommendation
	if err := json.Unmarshal(resp, &rec); err != nil {
		return err
	}

	if rec.Empty() {
		fmt.Println("Nothing to focus on. Enjoy the quiet.")
		return nil
	}

	reason := color.New(color.FgMagenta).Sprint(rec.Reason)
	switch {
	case rec.Event != nil:
		fmt.Printf("%s  %s at %s\n", reason, rec.Event.Subject,
			rec.Event.StartDateTime.Local().Format("15:04"))
	case rec.Task != nil:
		fmt.Printf("%s  %s [%s]\n", reason, rec.Task.Title, truncateID(rec.Task.ID))
	}
	return nil
}
