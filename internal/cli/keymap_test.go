package cli

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"

	"github.com/mosaicwm/mosaic/internal/winmgr"
)

func charKey(r rune, mods int) winmgr.Key {
	return winmgr.Key{Rune: r, IsChar: true, Modifiers: mods}
}

func codeKey(code int, mods int) winmgr.Key {
	return winmgr.Key{Code: code, Modifiers: mods}
}

func TestKeymapSingleChord(t *testing.T) {
	km := newKeymap(map[string]string{"quit": "ctrl+q"})

	action, complete := km.Feed(charKey('q', winmgr.ModCtrl))
	assert.True(t, complete)
	assert.Equal(t, "quit", action)
}

func TestKeymapMultiChordSequence(t *testing.T) {
	km := newKeymap(map[string]string{"split-right": "ctrl+p r"})

	action, complete := km.Feed(charKey('p', winmgr.ModCtrl))
	assert.False(t, complete)
	assert.Empty(t, action)

	action, complete = km.Feed(charKey('r', 0))
	assert.True(t, complete)
	assert.Equal(t, "split-right", action)
}

func TestKeymapAbandonsStaleSequenceOnMismatch(t *testing.T) {
	km := newKeymap(map[string]string{"split-right": "ctrl+p r"})

	_, complete := km.Feed(charKey('p', winmgr.ModCtrl))
	assert.False(t, complete)

	action, complete := km.Feed(charKey('x', 0))
	assert.False(t, complete)
	assert.Empty(t, action)
	assert.Empty(t, km.pending)
}

func TestKeymapDistinguishesSequencesBySharedPrefix(t *testing.T) {
	km := newKeymap(map[string]string{
		"split-right": "ctrl+p r",
		"split-left":  "ctrl+p l",
	})

	km.Feed(charKey('p', winmgr.ModCtrl))

	action, complete := km.Feed(charKey('l', 0))
	assert.True(t, complete)
	assert.Equal(t, "split-left", action)
}

func TestKeyNameNonCharacterKeys(t *testing.T) {
	assert.Equal(t, "tab", keyName(codeKey(int(tcell.KeyTab), 0)))
	assert.Equal(t, "enter", keyName(codeKey(int(tcell.KeyEnter), 0)))
}
