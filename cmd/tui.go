package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/earshot/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the library in a terminal UI",
	Long: `Open an interactive browser over the library of recognized tracks.

The table refreshes periodically, so tracks recognized by a running daemon
appear without restarting.

Keys:
  n / p    next / previous page
  /        search (Enter to run, Esc to cancel)
  Esc      clear the search
  f        toggle favorite on the selected track
  F        show favorites only
  r        reload
  q        quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().Int("page-size", tui.DefaultConfig().PageSize, "Tracks per page")
}

func runTUI(cmd *cobra.Command, args []string) error {
	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}

	library, err := openLibrary(dataDir)
	if err != nil {
		return err
	}
	defer library.Close()

	queue, err := openQueue(dataDir)
	if err != nil {
		return err
	}
	defer queue.Close()

	tuiCfg := tui.DefaultConfig()
	tuiCfg.PageSize, _ = cmd.Flags().GetInt("page-size")

	app := tui.NewWithConfig(tuiCfg, library, queue)
	if err := app.Run(cmd.Context()); err != nil {
		return fmt.Errorf("failed to run library browser: %w", err)
	}
	return nil
}
