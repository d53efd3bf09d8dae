package tilelayout

import (
	"github.com/mosaicwm/mosaic/internal/geom"
	"github.com/mosaicwm/mosaic/internal/winmgr"
)

// SplitterGlyph selects the character drawn down a splitter's length.
// Vertical and horizontal splitters get independent glyphs so a themed
// "block" style can differ per orientation.
type SplitterGlyph struct {
	Vertical   rune
	Horizontal rune
}

var defaultSplitterGlyph = SplitterGlyph{Vertical: '│', Horizontal: '─'}

// SetSplitterGlyph overrides the characters used to paint splitters,
// e.g. from the configured theme's splitter style.
func (m *Manager) SetSplitterGlyph(g SplitterGlyph) {
	m.splitterGlyph = g
}

func (m *Manager) createSplitter(lay *Layout) *winmgr.Window {
	h := m.wm.Handlers().Create(func(id int, data any) uintptr {
		if id == winmgr.WMPaint {
			m.paintSplitter(lay)
		}
		return 0
	})
	rc := geom.New(0, 0, 1, 1)
	w, err := m.wm.CreateWindow(m.host, &rc, h, 0)
	if err != nil {
		m.wm.Handlers().Destroy(h)
		return nil
	}
	return w
}

func (m *Manager) paintSplitter(lay *Layout) {
	w := lay.splitter
	if w == nil {
		return
	}
	rc := w.Rect()

	glyph := m.splitterGlyph.Horizontal
	if lay.parent != nil && lay.parent.vert {
		glyph = m.splitterGlyph.Vertical
	}

	style := winmgr.Style{Fg: winmgr.ColorDefault, Bg: winmgr.ColorDefault}
	for y := 0; y < rc.Height(); y++ {
		for x := 0; x < rc.Width(); x++ {
			m.wm.SetCell(w, x, y, glyph, style)
		}
	}
}
