package winmgr

import (
	"github.com/mosaicwm/mosaic/internal/geom"
	"github.com/mosaicwm/mosaic/internal/msgqueue"
)

const msgHookPokeID = msgqueue.MReadable

// Invalidate clips w's rectangle up through all ancestors, then walks
// down marking every visible leaf descendant of w (or w itself, if it is
// a leaf) that intersects the clipped result as invalid. Sets the global
// invalid flag and pokes the readable hook so the paint scheduler runs
// at the next message-queue idle.
func (m *Manager) Invalidate(w *Window) {
	m.InvalidateRect(w, geom.New(0, 0, w.rect.Width(), w.rect.Height()))
}

// InvalidateRect is Invalidate restricted to the intersection with rc
// (w-relative).
func (m *Manager) InvalidateRect(w *Window, rc geom.Rect) {
	// rc is w-relative; w.rect is already in screen coordinates, so
	// offsetting by w's own screen origin yields the screen rectangle.
	screenRC := rc.Offset(w.rect.Left, w.rect.Top)

	// Clip up through ancestors: the damage can never exceed any
	// ancestor's own rectangle.
	clipped := screenRC
	for p := w; p != nil; p = p.parent {
		c, ok := geom.Intersect(clipped, p.rect)
		if !ok {
			return
		}
		clipped = c
	}

	if m.markInvalidDescendants(w, clipped) {
		m.invalid = true
		m.pokeReadable()
	}
}

// markInvalidDescendants walks w's subtree (screen coordinates) marking
// every visible leaf intersecting clipped as invalid. Returns true if any
// window was newly marked.
func (m *Manager) markInvalidDescendants(w *Window, clipped geom.Rect) bool {
	if !w.visible {
		return false
	}
	if _, ok := geom.Intersect(w.rect, clipped); !ok {
		return false
	}

	marked := false
	if w.hasSurface {
		if !w.invalid {
			w.invalid = true
			marked = true
		}
	}
	for c := w.firstChild; c != nil; c = c.nextSibling {
		if m.markInvalidDescendants(c, clipped) {
			marked = true
		}
	}
	return marked
}

// pokeReadable posts a wake message addressed to the zero handler, which
// dispatches nowhere. Invalidation can happen with the queue already
// empty (no message in flight to trigger the hook naturally); the posted
// message makes the queue descriptor readable, and once the application
// loop pops it the queue drains and consults the readable hook, so a bare
// Invalidate call still gets a paint at the next message-queue idle.
func (m *Manager) pokeReadable() {
	m.queue.Post(0, msgHookPokeID, nil)
}

// paintIdle implements the paint scheduler. It loops: find the first
// visible invalid leaf in pre-order, clear it, dispatch WMPaint, blit its
// surface onto the virtual backing store; repeat until no invalid leaf
// remains, then flush the virtual store to the physical terminal and
// clear the global invalid flag. It always returns false (never claims
// continued pipe readiness), since by the time it returns every pending
// paint has been flushed.
func (m *Manager) paintIdle() bool {
	if !m.invalid || m.root == nil {
		return false
	}

	for {
		leaf := findInvalidLeaf(m.root)
		if leaf == nil {
			break
		}
		leaf.invalid = false
		m.handlers.Call(leaf.handler, WMPaint, PaintData{Clip: leaf.Rect()})
		m.surface.BlitToVirtual(leaf.cell)
	}

	m.surface.FlushVirtualToPhysical()
	m.invalid = false
	return false
}

func findInvalidLeaf(w *Window) *Window {
	if !w.visible {
		return nil
	}
	if w.hasSurface && w.invalid {
		return w
	}
	for c := w.firstChild; c != nil; c = c.nextSibling {
		if found := findInvalidLeaf(c); found != nil {
			return found
		}
	}
	return nil
}
