package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/mosaicwm/mosaic/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(_ *cobra.Command, _ []string) error {
		path, err := config.GetConfigFile()
		if err != nil {
			return fmt.Errorf("get config file: %w", err)
		}
		fmt.Println(path)
		return nil
	},
}

var configOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the config file in your editor",
	Long: `Opens the config file using your preferred editor.

Editor selection order:
  1. $EDITOR environment variable
  2. $VISUAL environment variable
  3. Fallback to: nano, vim, vi (first found)`,
	RunE: runConfigOpen,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config file",
	Long:  `Loads and validates the config file, reporting any error found.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		mgr, err := config.NewManager()
		if err != nil {
			return fmt.Errorf("new config manager: %w", err)
		}
		if err := mgr.Load(); err != nil {
			return wrapPrintedError(fmt.Errorf("invalid configuration: %w", err))
		}
		fmt.Println("configuration is valid")
		return nil
	},
}

var configSchemaJSON bool

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show all config keys with types and descriptions",
	Long: `Display a reference of every configuration key, its type and
description, reflected from the live configuration struct.

Use --json for machine-readable output.`,
	RunE: runConfigSchema,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configOpenCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configSchemaCmd)
	configSchemaCmd.Flags().BoolVar(&configSchemaJSON, "json", false, "output as JSON")
}

func runConfigSchema(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if configSchemaJSON {
		r := new(jsonschema.Reflector)
		schema := r.Reflect(&config.Config{})
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal schema: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	theme := config.NewSchemaTheme(app.Config.Theme)
	fmt.Println(config.RenderSchema(theme, &config.Config{}))
	return nil
}

func runConfigOpen(_ *cobra.Command, _ []string) error {
	configFile, err := config.GetConfigFile()
	if err != nil {
		return fmt.Errorf("get config file: %w", err)
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configFile)
	}

	editor := getEditor()
	if editor == "" {
		return fmt.Errorf("no editor found: set $EDITOR or install nano, vim, or vi")
	}

	c := exec.Command(editor, configFile)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("run editor %s: %w", editor, err)
	}
	return nil
}

func getEditor() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if e := os.Getenv(env); e != "" {
			return e
		}
	}
	for _, fallback := range []string{"nano", "vim", "vi"} {
		if path, err := exec.LookPath(fallback); err == nil {
			return path
		}
	}
	return ""
}
