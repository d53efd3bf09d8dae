// Package tilelayout implements a recursive tiling layout tree on top of
// the window manager: containers that flow their children horizontally or
// vertically, leaves that hold a single client window, and splitters
// rendered as their own thin windows between siblings.
package tilelayout

import (
	"github.com/mosaicwm/mosaic/internal/geom"
	"github.com/mosaicwm/mosaic/internal/msgqueue"
	"github.com/mosaicwm/mosaic/internal/winmgr"
)

// Direction is an edge or split direction. The low bit selects the flow
// axis (0 = vertical splitter / left-right flow, 1 = horizontal splitter
// / top-bottom flow); the high bit selects which side (prev vs next).
type Direction int

const (
	DirLeft Direction = iota
	DirUp
	DirRight
	DirDown
)

func isDirVert(d Direction) bool       { return d&1 == 0 }
func isDirPrev(d Direction) bool       { return d&2 == 0 }
func dirReverse(d Direction) Direction { return d ^ 2 }

// SizeHalf requests the size closest to an even half-split; layout_split
// clamps it to whatever actually fits.
const SizeHalf = -1

// asyncUpdateMsg is the manager's private message id for a deferred
// layout apply pass, posted at most once per burst of mutations.
const asyncUpdateMsg = winmgr.WMUser + 0x2000

// Layout is one node of the tiling tree. A node with children is a
// container (client is nil); a node with no children holds a single
// client window, except the degenerate empty root before any pane has
// been created.
type Layout struct {
	mgr    *Manager
	next   *Layout
	parent *Layout
	child  *Layout

	client   *winmgr.Window
	splitter *winmgr.Window

	vert bool // flow direction of this node's children
	size int  // size along the parent's flow axis, excluding the splitter
	pct  float64
}

// Window returns the client window this leaf holds, or nil for a container.
func (l *Layout) Window() *winmgr.Window { return l.client }

// Parent returns the containing layout, or nil for the root.
func (l *Layout) Parent() *Layout { return l.parent }

// Child returns this node's first child, or nil for a leaf.
func (l *Layout) Child() *Layout { return l.child }

// Next returns this node's next sibling, or nil if it's the last child
// of its parent.
func (l *Layout) Next() *Layout { return l.next }

// Vert reports whether this container flows its children left-right
// (true) or top-bottom (false). Meaningless on a leaf.
func (l *Layout) Vert() bool { return l.vert }

// Size returns this node's size along its parent's flow axis.
func (l *Layout) Size() int { return l.size }

// Pct returns this node's last-computed proportional share of its
// parent's flow axis, used to redistribute space on resize.
func (l *Layout) Pct() float64 { return l.pct }

// HasSplitter reports whether a splitter window is rendered immediately
// before this node in its parent's flow.
func (l *Layout) HasSplitter() bool { return l.splitter != nil }

// Manager owns one tiling tree anchored to a host window. It intercepts
// the host's WM_POSCHANGED to re-flow the tree on resize, matching the
// handler-chaining pattern used throughout the window manager: it stores
// the host's previous handler and forwards every message to it after its
// own processing.
type Manager struct {
	host       *winmgr.Window
	wm         *winmgr.Manager
	handler    msgqueue.Handler
	oldHandler msgqueue.Handler

	root *Layout

	updatePending bool
	splitterGlyph SplitterGlyph
}

// New creates a layout manager rooted at host, replacing host's handler
// with one that reflows the tree on resize and forwards everything else
// to host's previous handler.
func New(wm *winmgr.Manager, host *winmgr.Window) *Manager {
	m := &Manager{wm: wm, host: host, splitterGlyph: defaultSplitterGlyph}
	m.handler = wm.Handlers().Create(m.hostProc)
	m.oldHandler = wm.SetHandler(host, m.handler)
	m.root = m.alloc(nil, nil, 0)
	return m
}

// Close tears down the entire tree (destroying every splitter window,
// but none of the tree's client windows — those are never owned by the
// layout, so the caller destroys them) and restores the host's original
// handler.
func (m *Manager) Close() {
	m.closeHelper(m.root, false)
	m.wm.SetHandler(m.host, m.oldHandler)
	m.wm.Handlers().Destroy(m.handler)
}

// Root returns the tree's root layout.
func (m *Manager) Root() *Layout { return m.root }

func (m *Manager) hostProc(id int, data any) uintptr {
	switch id {
	case winmgr.WMPosChanged:
		d, ok := data.(winmgr.PosChangedData)
		if ok && d.Resized {
			heightOld, heightNew := d.RectOld.Height(), d.RectNew.Height()
			if heightOld != heightNew {
				updateChildSize(m.root, false, heightNew-heightOld)
			}
			widthOld, widthNew := d.RectOld.Width(), d.RectNew.Width()
			if widthOld != widthNew {
				updateChildSize(m.root, true, widthNew-widthOld)
			}
			m.Update(true)
		}
	case asyncUpdateMsg:
		m.Update(false)
	}
	return m.wm.Handlers().Call(m.oldHandler, id, data)
}

// CreateLeaf creates a window suitable for passing to Split or
// SetWindow: a child of the manager's host window, given a throwaway
// 1x1 rect that gets replaced by the next layout pass. Every client
// window in the tree must be created this way so it shares the host as
// its winmgr parent, which is what lets applyLayout's host-relative
// rectangles apply directly via SetPos.
func (m *Manager) CreateLeaf(handler msgqueue.Handler, id int) (*winmgr.Window, error) {
	rc := geom.New(0, 0, 1, 1)
	return m.wm.CreateWindow(m.host, &rc, handler, id)
}

// Find returns the layout holding w, or nil if w isn't part of this tree.
func (m *Manager) Find(w *winmgr.Window) *Layout {
	return findLayout(m.root, w)
}

func findLayout(lay *Layout, w *winmgr.Window) *Layout {
	if lay.client == w {
		return lay
	}
	for c := lay.child; c != nil; c = c.next {
		if found := findLayout(c, w); found != nil {
			return found
		}
	}
	return nil
}

func (m *Manager) alloc(parent *Layout, client *winmgr.Window, size int) *Layout {
	return &Layout{mgr: m, parent: parent, client: client, size: size}
}

// minSize returns the minimum width/height this layout (and, for a
// container, its whole subtree) can be shrunk to. Leaves query their
// client's WM_GETMINSIZE handler, falling back to the package defaults.
func minSize(lay *Layout) (width, height int) {
	for c := lay.child; c != nil; c = c.next {
		cw, ch := minSize(c)
		if lay.vert {
			if ch > height {
				height = ch
			}
			if c.splitter != nil {
				width++
			}
			width += cw
		} else {
			if cw > width {
				width = cw
			}
			if c.splitter != nil {
				height++
			}
			height += ch
		}
	}

	if lay.client != nil {
		width, height = lay.mgr.wm.MinSize(lay.client)
	}

	return width, height
}

// rect computes lay's rectangle relative to the host window, walking up
// through ancestors and summing sibling sizes (and splitter widths) in
// the parent's flow direction.
func (lay *Layout) rect() geom.Rect {
	if lay.parent == nil {
		hostRC := lay.mgr.host.ScreenRect()
		return geom.New(0, 0, hostRC.Width(), hostRC.Height())
	}

	rc := lay.parent.rect()
	if lay.parent.vert {
		left := rc.Left
		for c := lay.parent.child; c != nil; c = c.next {
			if c.splitter != nil {
				left++
			}
			if c == lay {
				return geom.New(left, rc.Top, left+c.size, rc.Bottom)
			}
			left += c.size
		}
	} else {
		top := rc.Top
		for c := lay.parent.child; c != nil; c = c.next {
			if c.splitter != nil {
				top++
			}
			if c == lay {
				return geom.New(rc.Left, top, rc.Right, top+c.size)
			}
			top += c.size
		}
	}

	return geom.Rect{}
}

// updateChildSize redistributes child layouts sized along axis vert by
// sizeChanged, proportional to each child's stored pct, and recurses into
// any child that is itself a container. Containers whose own flow axis
// doesn't match vert just forward the call down unchanged, since none of
// their own children's sizes are affected by a cross-axis resize.
func updateChildSize(parent *Layout, vert bool, sizeChanged int) {
	if parent.child == nil {
		return
	}

	if parent.vert != vert {
		for c := parent.child; c != nil; c = c.next {
			updateChildSize(c, vert, sizeChanged)
		}
		return
	}

	childSizeTotal := 0
	for c := parent.child; c != nil; c = c.next {
		childSizeTotal += c.size
	}
	childSizeTotal += sizeChanged

	sizeRemaining := childSizeTotal
	for c := parent.child; c != nil; c = c.next {
		sizeNew := int(c.pct*float64(childSizeTotal) + 0.5)
		if sizeNew > sizeRemaining {
			sizeNew = sizeRemaining
		}
		delta := sizeNew - c.size
		if delta != 0 {
			c.size = sizeNew
			if c.child != nil {
				updateChildSize(c, vert, delta)
			}
		}
		sizeRemaining -= sizeNew
	}
}

func updateChildPct(parent *Layout) {
	total := 0
	for c := parent.child; c != nil; c = c.next {
		total += c.size
	}
	if total == 0 {
		return
	}
	for c := parent.child; c != nil; c = c.next {
		c.pct = float64(c.size) / float64(total)
	}
}

// adjustSize changes lay's own size by delta, redistributes that delta
// among lay's children (if it has any), and refreshes the pct of lay and
// its siblings so future proportional resizes stay consistent.
func adjustSize(lay *Layout, delta int) {
	if lay.parent != nil {
		updateChildSize(lay, lay.parent.vert, delta)
	}
	lay.size += delta
	if lay.parent != nil {
		updateChildPct(lay.parent)
	}
}

func setSplitterVisible(lay *Layout, visible bool) {
	if visible {
		if lay.splitter == nil {
			lay.splitter = lay.mgr.createSplitter(lay)
		}
	} else if lay.splitter != nil {
		lay.mgr.wm.Destroy(lay.splitter)
		lay.splitter = nil
	}
}

func (lay *Layout) free() {
	setSplitterVisible(lay, false)
}
