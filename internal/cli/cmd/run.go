package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mosaicwm/mosaic/internal/cli"
)

var runWorkspace string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive tiling session",
	Long: `Start mosaic's interactive session: a full-screen tiling window
manager over your real terminal, one shell per pane.

The layout is loaded from --workspace (or the default workspace) if a
saved one exists, and saved back to it on exit when
session.auto_save_on_exit is enabled.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		app := GetApp()
		if err := cli.Run(GetContext(), app, runWorkspace); err != nil {
			return wrapPrintedError(err)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runWorkspace, "workspace", "w", "", "workspace name (default: \"default\")")
	rootCmd.AddCommand(runCmd)
}
