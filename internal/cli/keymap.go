package cli

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/mosaicwm/mosaic/internal/winmgr"
)

// chord is one parsed space-separated token of a configured key
// binding, e.g. "ctrl+p" or "shift+l". mods is a bitmask of
// winmgr.Mod* and key is the lowercased key name ("p", "tab", "+").
type chord struct {
	mods int
	key  string
}

// parseChord splits a binding string like "ctrl+p r" into its
// constituent per-press tokens.
func parseChord(binding string) []chord {
	fields := strings.Fields(binding)
	chords := make([]chord, 0, len(fields))
	for _, f := range fields {
		chords = append(chords, parseToken(f))
	}
	return chords
}

func parseToken(tok string) chord {
	parts := strings.Split(tok, "+")
	key, mods := parts[len(parts)-1], parts[:len(parts)-1]
	if key == "" && len(parts) > 1 {
		// A trailing "+" is the plus key itself ("+", "ctrl++").
		key, mods = "+", parts[:len(parts)-2]
	}
	c := chord{key: strings.ToLower(key)}
	for _, mod := range mods {
		switch strings.ToLower(mod) {
		case "ctrl":
			c.mods |= winmgr.ModCtrl
		case "alt":
			c.mods |= winmgr.ModAlt
		case "shift":
			c.mods |= winmgr.ModShift
		}
	}
	return c
}

// keyName maps a decoded winmgr.Key onto the same vocabulary
// parseToken produces, so a configured binding and an incoming key
// event can be compared directly.
func keyName(k winmgr.Key) string {
	if k.IsChar {
		return strings.ToLower(string(k.Rune))
	}
	switch tcell.Key(k.Code) {
	case tcell.KeyTab:
		return "tab"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace"
	case tcell.KeyEscape:
		return "esc"
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	default:
		// tcell reports ctrl+letter as its own key code, not as a rune.
		if key := tcell.Key(k.Code); key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
			return string(rune('a' + int(key-tcell.KeyCtrlA)))
		}
		return strconv.Itoa(k.Code)
	}
}

// keymap resolves a sequence of key presses into a configured action
// name. Every binding is a space-separated chord sequence (one token
// per keypress, e.g. "ctrl+p r"); a binding with a single token fires
// immediately, a multi-token binding arms after its earlier tokens
// match and waits for the rest.
type keymap struct {
	bindings map[string][]chord // action -> chord sequence
	pending  []chord            // tokens already matched this sequence
}

func newKeymap(bindings map[string]string) *keymap {
	km := &keymap{bindings: make(map[string][]chord, len(bindings))}
	for action, binding := range bindings {
		if seq := parseChord(binding); len(seq) > 0 {
			km.bindings[action] = seq
		}
	}
	return km
}

// Feed advances the in-progress chord sequence by one keypress. It
// returns the matched action and true once a full sequence completes,
// or ("", false) while a sequence is still pending or no binding
// matches at all (in which case any partial sequence is reset).
func (km *keymap) Feed(k winmgr.Key) (string, bool) {
	next := append(append([]chord{}, km.pending...), chordOf(k))

	var bestAction string
	stillPending := false
	for action, seq := range km.bindings {
		if len(seq) < len(next) {
			continue
		}
		if !chordPrefixEqual(seq, next) {
			continue
		}
		if len(seq) == len(next) {
			bestAction = action
			break
		}
		stillPending = true
	}

	if bestAction != "" {
		km.pending = nil
		return bestAction, true
	}
	if stillPending {
		km.pending = next
		return "", false
	}
	km.pending = nil
	return "", false
}

func chordOf(k winmgr.Key) chord {
	return chord{mods: k.Modifiers, key: keyName(k)}
}

func chordPrefixEqual(seq, prefix []chord) bool {
	for i, c := range prefix {
		if seq[i] != c {
			return false
		}
	}
	return true
}
