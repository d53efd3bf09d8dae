// Package config provides default configuration values for mosaic.
package config

// Default configuration constants
const (
	defaultMinPaneWidth  = 20 // cells, matches winmgr's own floor
	defaultMinPaneHeight = 2  // cells
)

// DefaultKeybindings returns the built-in keymap: directional navigation,
// splitting, and closing a pane, all prefixed with a ctrl+p leader chord
// rather than a modal sub-mode the user has to enter and exit.
func DefaultKeybindings() map[string]string {
	return map[string]string{
		"split-right":  "ctrl+p r",
		"split-left":   "ctrl+p l",
		"split-up":     "ctrl+p u",
		"split-down":   "ctrl+p d",
		"close-pane":   "ctrl+p x",
		"focus-left":   "ctrl+p h",
		"focus-right":  "ctrl+p shift+l",
		"focus-up":     "ctrl+p k",
		"focus-down":   "ctrl+p j",
		"focus-next":   "ctrl+p tab",
		"resize-grow":  "ctrl+p +",
		"resize-shrink": "ctrl+p -",
		"quit":         "ctrl+p q",
	}
}
