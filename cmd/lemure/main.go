// Command lemure is a terminal viewer and exporter for refrigeration test
// runs served by a lemure backend.
//
// Usage:
//
//	lemure [folder]                 Run the TUI, optionally loading folder
//	lemure events                   JSONL event log viewer
//	lemure export <folder>          Headless export of selected channels
//	lemure orders list              List saved channel orders
//	lemure presets list             List saved presets
//	lemure style                    Show or update the template style
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dataDir string
	backend string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lemure:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var gf globalFlags

	rootCmd := &cobra.Command{
		Use:   "lemure [folder]",
		Short: "Viewer and exporter for refrigeration test runs",
		Long: `lemure shows the channels of a recorded test run, plots the selected
ones and exports them as CSV, XLSX or the report template.

Environment:
  LEMURE_BACKEND    backend URL (default http://127.0.0.1:8787)
  LEMURE_DATA_DIR   local state directory (default ~/.lemure)
  LEMURE_TRACE      set to 1 to record every UI message in the event log`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := ""
			if len(args) == 1 {
				folder = args[0]
			}
			return runTUI(gf, folder)
		},
	}
	rootCmd.PersistentFlags().StringVar(&gf.dataDir, "data-dir", "", "local state directory")
	rootCmd.PersistentFlags().StringVar(&gf.backend, "backend", "", "backend URL, overrides the config file")

	rootCmd.AddCommand(newEventsCommand(&gf))
	rootCmd.AddCommand(newExportCommand(&gf))
	rootCmd.AddCommand(newOrdersCommand(&gf))
	rootCmd.AddCommand(newPresetsCommand(&gf))
	rootCmd.AddCommand(newStyleCommand(&gf))
	return rootCmd
}
