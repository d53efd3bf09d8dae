package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mosaicwm/mosaic/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"workspace"},
	Short:   "Inspect saved workspace layouts",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved workspaces",
	RunE: func(_ *cobra.Command, _ []string) error {
		app := GetApp()
		infos, err := session.List(GetContext(), app.DB)
		if err != nil {
			return fmt.Errorf("list workspaces: %w", err)
		}
		if len(infos) == 0 {
			fmt.Println("no saved workspaces")
			return nil
		}
		for _, info := range infos {
			fmt.Printf("%-20s updated %s\n", info.Name, time.Unix(info.UpdatedAt, 0).Format(time.RFC3339))
		}
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved workspace layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		app := GetApp()
		if err := session.Delete(GetContext(), app.DB, args[0]); err != nil {
			return fmt.Errorf("delete workspace %s: %w", args[0], err)
		}
		fmt.Printf("deleted workspace %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
}
