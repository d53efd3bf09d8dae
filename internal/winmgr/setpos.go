package winmgr

import (
	"github.com/mosaicwm/mosaic/internal/geom"
	"golang.org/x/sys/unix"
)

// SetPos repositions/resizes w. rc is parent-relative. Returns false if
// clipping the new rectangle against the root produces an empty result
// for a non-root window, in which case w's rectangle is left unchanged.
func (m *Manager) SetPos(w *Window, rc geom.Rect) bool {
	var target geom.Rect
	if w.parent != nil {
		target = rc.Offset(w.parent.rect.Left, w.parent.rect.Top)
		clipped, ok := geom.Intersect(target, m.root.rect)
		if !ok {
			if w != m.root {
				return false
			}
			clipped = geom.Rect{}
		}
		target = clipped
	} else {
		target = rc
	}

	old := w.rect
	if old.Equal(target) {
		return true
	}

	// Two-step resize-then-move: pre-resize the backing surface to the
	// union of old and new, move, then resize to the final rectangle.
	// This avoids the terminal backend rejecting a move through a
	// partially offscreen intermediate state.
	if w.hasSurface {
		union := geom.Union(old, target)
		m.surface.MoveAndResize(w.cell, union)
		m.surface.MoveAndResize(w.cell, target)
	}

	// Capture each child's current parent-relative rectangle before
	// moving w: that value is invariant under a pure translation of the
	// parent, so re-applying it through SetPos (which converts
	// parent-relative -> screen using w's *new* rect) shifts every
	// descendant's screen rectangle by exactly the same delta w moved.
	type pending struct {
		child *Window
		rel   geom.Rect
	}
	var children []pending
	for c := w.firstChild; c != nil; c = c.nextSibling {
		children = append(children, pending{child: c, rel: c.Rect()})
	}

	w.rect = target

	for _, p := range children {
		m.SetPos(p.child, p.rel)
	}

	oldParentRel, newParentRel := old, target
	if w.parent != nil {
		oldParentRel = old.Offset(-w.parent.rect.Left, -w.parent.rect.Top)
		newParentRel = target.Offset(-w.parent.rect.Left, -w.parent.rect.Top)
		m.InvalidateRect(w.parent, geom.Union(oldParentRel, newParentRel))
	} else {
		m.Invalidate(w)
	}

	if !oldParentRel.Equal(newParentRel) {
		resized := oldParentRel.Width() != newParentRel.Width() || oldParentRel.Height() != newParentRel.Height()
		m.handlers.Call(w.handler, WMPosChanged, PosChangedData{RectOld: oldParentRel, RectNew: newParentRel, Resized: resized})
	}

	return true
}

// SetFocus makes w the focused window, dispatching WMLoseFocus to the
// previous focus and WMSetFocus to the new one.
func (m *Manager) SetFocus(w *Window) {
	prev := m.focus
	if prev == w {
		return
	}
	m.focus = w
	if prev != nil {
		m.handlers.Call(prev.handler, WMLoseFocus, FocusChangeData{Other: w})
	}
	if w != nil {
		m.handlers.Call(w.handler, WMSetFocus, FocusChangeData{Other: prev})
	}
}

// Focus returns the currently focused window, or nil.
func (m *Manager) Focus() *Window {
	return m.focus
}

// Resize consumes the resize-pipe byte, queries the new terminal size,
// and, if changed, resizes the root (which cascades through SetPos).
// Backend errors on resize are swallowed; the old geometry stays in
// effect.
func (m *Manager) Resize() {
	var b [1]byte
	_, _ = unix.Read(m.surface.ResizeFD(), b[:])

	cols, rows := m.surface.Size()
	newRect := geom.New(0, 0, cols, rows)
	if newRect.Equal(m.root.rect) {
		return
	}
	m.SetPos(m.root, newRect)
}
