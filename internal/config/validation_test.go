package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigDefaultIsValid(t *testing.T) {
	require.NoError(t, validateConfig(DefaultConfig()))
}

func TestValidateConfigWorkspaceMinSize(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		wantErr bool
	}{
		{name: "zero width", width: 0, height: 1, wantErr: true},
		{name: "zero height", width: 4, height: 0, wantErr: true},
		{name: "minimum valid", width: 1, height: 1, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Workspace.MinPaneWidth = tt.width
			cfg.Workspace.MinPaneHeight = tt.height

			err := validateConfig(cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateConfigSplitterStyle(t *testing.T) {
	tests := []struct {
		name    string
		style   string
		wantErr bool
	}{
		{name: "line", style: "line", wantErr: false},
		{name: "block", style: "block", wantErr: false},
		{name: "invalid", style: "dotted", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Theme.SplitterStyle = tt.style

			err := validateConfig(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "theme.splitter_style")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateConfigLoggingLevelAndFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"
	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	err = validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidateConfigRejectsEmptyKeybinding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keybindings["quit"] = ""

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keybindings.quit")
}

func TestValidateConfigRejectsDuplicateChord(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keybindings = map[string]string{
		"split-right": "ctrl+p r",
		"split-left":  "ctrl+p r",
	}

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key chord")
}
