// Package config provides configuration management for mosaic with Viper integration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// File permission constants
const (
	dirPerm  = 0755 // Standard directory permissions (rwxr-xr-x)
	filePerm = 0644 // Standard file permissions (rw-r--r--)
)

// Config represents the complete configuration for mosaic.
type Config struct {
	Workspace   WorkspaceConfig   `mapstructure:"workspace" toml:"workspace"`
	Keybindings map[string]string `mapstructure:"keybindings" toml:"keybindings"`
	Theme       ThemeConfig       `mapstructure:"theme" toml:"theme"`
	Logging     LoggingConfig     `mapstructure:"logging" toml:"logging"`
	Session     SessionConfig     `mapstructure:"session" toml:"session"`
}

// WorkspaceConfig holds layout-engine tunables: the floor below which a
// pane refuses to shrink any further, enforced by every split and resize
// operation.
type WorkspaceConfig struct {
	MinPaneWidth  int `mapstructure:"min_pane_width" toml:"min_pane_width"`
	MinPaneHeight int `mapstructure:"min_pane_height" toml:"min_pane_height"`
}

// ThemeConfig controls the cosmetic rendering of splitters and the focus
// indicator; everything here is purely advisory to the paint layer.
type ThemeConfig struct {
	SplitterStyle string `mapstructure:"splitter_style" toml:"splitter_style"` // "line" or "block"
	FocusBorder   string `mapstructure:"focus_border" toml:"focus_border"`     // lipgloss color spec
}

// LoggingConfig controls the zerolog writer: level/format select its
// filtering and encoding, Dir selects where rotated log files land, and
// FileName names the active log file within Dir.
type LoggingConfig struct {
	Level    string `mapstructure:"level" toml:"level"`
	Format   string `mapstructure:"format" toml:"format"` // "text" or "json"
	Dir      string `mapstructure:"dir" toml:"dir"`
	FileName string `mapstructure:"file_name" toml:"file_name"`
}

// SessionConfig controls automatic layout persistence across restarts.
type SessionConfig struct {
	AutoSaveOnExit bool   `mapstructure:"auto_save_on_exit" toml:"auto_save_on_exit"`
	Path           string `mapstructure:"path" toml:"path"`
}

// getDefaultLogDir returns the default log directory, falling back to
// empty string (meaning: stderr only) on error.
func getDefaultLogDir() string {
	logDir, err := GetLogDir()
	if err != nil {
		return ""
	}
	return logDir
}

// DefaultConfig returns the default configuration values for mosaic.
func DefaultConfig() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			MinPaneWidth:  defaultMinPaneWidth,
			MinPaneHeight: defaultMinPaneHeight,
		},
		Keybindings: DefaultKeybindings(),
		Theme: ThemeConfig{
			SplitterStyle: "line",
			FocusBorder:   "33", // lipgloss ANSI256 blue
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Dir:      getDefaultLogDir(),
			FileName: "mosaic.log",
		},
		Session: SessionConfig{
			AutoSaveOnExit: true,
			// Path is set dynamically in Load() from GetSessionFile.
		},
	}
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	// Viper auto-detects format from the extension it finds on disk
	// (toml/yaml/json); GetConfigFile/createDefaultConfig standardize on
	// .toml for the file mosaic itself writes.
	v.SetConfigName("config")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Current directory for development

	v.SetEnvPrefix("MOSAIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"workspace.min_pane_width":  "WORKSPACE_MIN_PANE_WIDTH",
		"workspace.min_pane_height": "WORKSPACE_MIN_PANE_HEIGHT",
		"theme.splitter_style":      "THEME_SPLITTER_STYLE",
		"theme.focus_border":        "THEME_FOCUS_BORDER",
		"logging.level":             "LOGGING_LEVEL",
		"logging.format":            "LOGGING_FORMAT",
		"logging.dir":               "LOGGING_DIR",
		"session.auto_save_on_exit": "SESSION_AUTO_SAVE_ON_EXIT",
		"session.path":              "SESSION_PATH",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, "MOSAIC_"+env); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			if err := m.createDefaultConfig(); err != nil {
				return fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Session.Path == "" {
		sessionPath, err := GetSessionFile()
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		config.Session.Path = sessionPath
	}

	if len(config.Keybindings) == 0 {
		config.Keybindings = DefaultKeybindings()
	}

	if err := validateConfig(config); err != nil {
		return err
	}

	m.config = config
	return nil
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	return &configCopy
}

// Watch starts watching the config file for changes and reloads automatically.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}

	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		m.mu.Lock()
		err := m.reload()
		m.mu.Unlock()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to reload config: %v\n", err)
			return
		}

		m.mu.RLock()
		config := m.config
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.RUnlock()

		for _, callback := range callbacks {
			callback(config)
		}
	})

	m.watching = true
	return nil
}

// OnConfigChange registers a callback function to be called when config changes.
func (m *Manager) OnConfigChange(callback func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
}

// reload reloads the configuration (internal method, must be called with lock).
func (m *Manager) reload() error {
	if err := m.viper.ReadInConfig(); err != nil {
		return err
	}

	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return err
	}

	if config.Session.Path == "" {
		sessionPath, err := GetSessionFile()
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		config.Session.Path = sessionPath
	}

	if len(config.Keybindings) == 0 {
		config.Keybindings = DefaultKeybindings()
	}

	if err := validateConfig(config); err != nil {
		return err
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("workspace.min_pane_width", defaults.Workspace.MinPaneWidth)
	m.viper.SetDefault("workspace.min_pane_height", defaults.Workspace.MinPaneHeight)
	m.viper.SetDefault("keybindings", defaults.Keybindings)
	m.viper.SetDefault("theme.splitter_style", defaults.Theme.SplitterStyle)
	m.viper.SetDefault("theme.focus_border", defaults.Theme.FocusBorder)
	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.dir", defaults.Logging.Dir)
	m.viper.SetDefault("session.auto_save_on_exit", defaults.Session.AutoSaveOnExit)
}

func (m *Manager) createDefaultConfig() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), dirPerm); err != nil {
		return err
	}

	if err := m.viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created default configuration file: %s\n", configFile)
	return nil
}

// GetConfigFile returns the path to the configuration file being used.
func (m *Manager) GetConfigFile() string {
	return m.viper.ConfigFileUsed()
}

// New returns a new default configuration instance. This is a
// convenience function for getting a default config without the full
// manager (e.g. `mosaic config schema`).
func New() *Config {
	return DefaultConfig()
}
