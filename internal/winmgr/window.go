package winmgr

import (
	"github.com/mosaicwm/mosaic/internal/geom"
	"github.com/mosaicwm/mosaic/internal/msgqueue"
)

// Window is a node in the retained-mode window tree. Rectangles are kept
// in screen coordinates internally; all public entry points speak
// parent-relative coordinates, converting at the boundary.
type Window struct {
	mgr *Manager

	parent      *Window
	firstChild  *Window
	nextSibling *Window

	rect    geom.Rect // screen coordinates
	visible bool
	invalid bool

	id      int
	handler msgqueue.Handler

	// hasSurface is true for leaves with a backing cell buffer, false
	// for pure containers created with a nil rect. A single flag rather
	// than separate "no paint" / "is container" bits, since in practice
	// a window is always exactly one or the other.
	hasSurface bool
	cell       CellHandle
}

// ID returns the window's application-assigned identifier.
func (w *Window) ID() int { return w.id }

// Handler returns the window's current handler.
func (w *Window) Handler() msgqueue.Handler { return w.handler }

// HasSurface reports whether the window owns a backing cell buffer.
func (w *Window) HasSurface() bool { return w.hasSurface }

// Visible reports the window's visibility flag.
func (w *Window) Visible() bool { return w.visible }

// Parent returns the window's parent, or nil for the root.
func (w *Window) Parent() *Window { return w.parent }

// FirstChild returns the window's first child in insertion order.
func (w *Window) FirstChild() *Window { return w.firstChild }

// NextSibling returns the next sibling in insertion order.
func (w *Window) NextSibling() *Window { return w.nextSibling }

// ScreenRect returns the window's rectangle in screen coordinates.
func (w *Window) ScreenRect() geom.Rect { return w.rect }

// Rect returns w's rectangle translated into parent-relative
// coordinates, matching window_rect.
func (w *Window) Rect() geom.Rect {
	if w.parent == nil {
		return w.rect
	}
	return w.rect.Offset(-w.parent.rect.Left, -w.parent.rect.Top)
}

func (w *Window) lastChild() *Window {
	if w.firstChild == nil {
		return nil
	}
	c := w.firstChild
	for c.nextSibling != nil {
		c = c.nextSibling
	}
	return c
}

func (w *Window) appendChild(child *Window) {
	child.parent = w
	if last := w.lastChild(); last != nil {
		last.nextSibling = child
	} else {
		w.firstChild = child
	}
}

func (w *Window) unlinkFromParent() {
	p := w.parent
	if p == nil {
		return
	}
	if p.firstChild == w {
		p.firstChild = w.nextSibling
	} else {
		prev := p.firstChild
		for prev != nil && prev.nextSibling != w {
			prev = prev.nextSibling
		}
		if prev != nil {
			prev.nextSibling = w.nextSibling
		}
	}
	w.nextSibling = nil
	w.parent = nil
}

// FindWindow does a linear search of w's direct children for one with
// the given application id.
func (w *Window) FindWindow(id int) *Window {
	for c := w.firstChild; c != nil; c = c.nextSibling {
		if c.id == id {
			return c
		}
	}
	return nil
}
