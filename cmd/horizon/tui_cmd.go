package main

import (
	"github.com/spf13/cobra"

	"github.com/horizon-sh/horizon/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.New(apiAddr).Run()
}
