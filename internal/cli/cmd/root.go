// Package cmd provides the Cobra CLI commands for mosaic.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mosaicwm/mosaic/internal/cli"
)

var (
	app       *cli.App
	appCtx    context.Context
	buildInfo BuildInfo

	rootCmd = &cobra.Command{
		Use:           "mosaic",
		Short:         "A terminal tiling window manager",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `mosaic - a terminal tiling window manager.

Splits your terminal into a tree of panes, each backed by its own
shell, with keyboard-driven splitting, navigation and resizing.
Layouts are saved per named workspace and restored on the next run.

Run 'mosaic run' to start the interactive session, or explore the
subcommands below for configuration and workspace management.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}

			var err error
			app, appCtx, err = cli.NewApp(context.Background())
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// BuildInfo carries version metadata baked in at link time by main.go.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// SetBuildInfo records version metadata for the version subcommand.
// Must be called before Execute.
func SetBuildInfo(info BuildInfo) {
	buildInfo = info
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var printedErr *printedError
		if errors.As(err, &printedErr) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printedError marks an error whose message has already been written
// to the user (e.g. via a styled renderer), so Execute exits quietly
// instead of printing it a second time.
type printedError struct {
	err error
}

func (e *printedError) Error() string {
	if e == nil || e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *printedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

func wrapPrintedError(err error) error {
	if err == nil {
		return nil
	}
	return &printedError{err: err}
}

// GetApp returns the app initialized by PersistentPreRunE, for use by
// subcommand Run funcs.
func GetApp() *cli.App {
	return app
}

// GetContext returns the context carrying the logger PersistentPreRunE
// installed, for use by subcommand Run funcs.
func GetContext() context.Context {
	if appCtx == nil {
		return context.Background()
	}
	return appCtx
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Printf("mosaic %s (%s) built %s\n", nonEmpty(buildInfo.Version, "dev"), nonEmpty(buildInfo.Commit, "unknown"), nonEmpty(buildInfo.BuildDate, "unknown"))
		return nil
	},
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
