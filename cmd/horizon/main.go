package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "horizon",
	Short: "Horizon - task timeline daemon and CLI",
	Long: `Horizon groups your tasks and meetings into a five-bucket timeline
(Needs Attention, Today, This Week, Later, Anytime) and suggests the one
thing to focus on next.`,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	apiAddr string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "http://127.0.0.1:7467", "API server address")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
