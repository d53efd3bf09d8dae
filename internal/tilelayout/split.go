package tilelayout

import "github.com/mosaicwm/mosaic/internal/winmgr"

// checkSplitSize reports the size (in the requested direction) that the
// new pane should actually get, or -1 if ref has no room to split at
// all. It clamps sizeRequested against both ref's and the new client's
// minimum sizes, preferring to shrink ref down to its floor before
// refusing outright.
func checkSplitSize(ref *Layout, client *winmgr.Window, splitter bool, sizeRequested int, dir Direction) int {
	widthRefMin, heightRefMin := minSize(ref)

	widthClientMin, heightClientMin := ref.mgr.wm.MinSize(client)

	var sizeRefMin, sizeClientMin int
	if isDirVert(dir) {
		sizeRefMin = widthRefMin
		sizeClientMin = widthClientMin
	} else {
		sizeRefMin = heightRefMin
		sizeClientMin = heightClientMin
	}
	if splitter {
		sizeClientMin++
	}

	inlineSplit := ref.parent != nil && isDirVert(dir) == ref.parent.vert

	sizeRefCurrent := ref.size
	if !inlineSplit {
		rc := ref.rect()
		if isDirVert(dir) {
			sizeRefCurrent = rc.Width()
		} else {
			sizeRefCurrent = rc.Height()
		}
	}

	if sizeRefMin+sizeClientMin > sizeRefCurrent {
		return -1
	}

	if sizeRequested == SizeHalf {
		sizeRequested = sizeRefCurrent / 2
	}
	if sizeRefCurrent-sizeRequested >= sizeRefMin {
		if sizeRequested >= sizeClientMin {
			return sizeRequested
		}
		return sizeClientMin
	}
	return sizeRefCurrent - sizeRefMin
}

func createInlineSplit(ref *Layout, client *winmgr.Window, splitter bool, size int, dir Direction) *Layout {
	if ref.parent == nil {
		return nil
	}

	size = checkSplitSize(ref, client, splitter, size, dir)
	if size < 0 {
		return nil
	}

	lay := ref.mgr.alloc(ref.parent, client, size)
	splitterSize := 0
	if splitter {
		splitterSize = 1
	}

	if isDirPrev(dir) {
		if ref.parent.child == ref {
			lay.next = ref
			ref.parent.child = lay
			adjustSize(ref, -lay.size-splitterSize)
			setSplitterVisible(ref, splitter)
		} else {
			prev := ref.parent.child
			for prev.next != ref {
				prev = prev.next
			}
			lay.next = ref
			prev.next = lay
			adjustSize(ref, -lay.size-splitterSize)
			setSplitterVisible(lay, ref.splitter != nil)
			setSplitterVisible(ref, splitter)
		}
	} else {
		lay.next = ref.next
		ref.next = lay
		adjustSize(ref, -lay.size-splitterSize)
		setSplitterVisible(lay, splitter)
	}

	lay.mgr.Update(true)
	return lay
}

func createChildSplit(ref *Layout, client *winmgr.Window, splitter bool, size int, dir Direction) *Layout {
	if ref.child != nil {
		return nil
	}

	size = checkSplitSize(ref, client, splitter, size, dir)
	if size < 0 {
		return nil
	}

	cont := ref.mgr.alloc(ref.parent, nil, ref.size)
	setSplitterVisible(cont, ref.splitter != nil)
	cont.vert = isDirVert(dir)
	cont.pct = ref.pct

	if ref.parent == nil {
		ref.mgr.root = cont
	} else {
		pp := &ref.parent.child
		for *pp != nil {
			if *pp == ref {
				*pp = cont
				cont.next = ref.next
				break
			}
			pp = &(*pp).next
		}
	}

	ref.parent = cont
	ref.next = nil
	cont.child = ref
	setSplitterVisible(ref, false)

	rc := cont.rect()
	if isDirVert(dir) {
		ref.size = rc.Width()
	} else {
		ref.size = rc.Height()
	}
	ref.pct = 1.0

	result := Split(ref, client, splitter, size, dir)
	if result == nil {
		panic("tilelayout: inline split after child-split setup unexpectedly refused")
	}
	return result
}

// Split splits ref in direction dir, inserting a new leaf holding client.
// client must already exist (created via the window manager, typically
// with a throwaway placeholder rect) — Split only manages the tree and
// triggers the reflow that gives it its real position. splitter requests
// a 1-cell divider between ref and the new leaf. size is the new leaf's
// size in the split direction, or SizeHalf. Returns nil if there isn't
// room for both ref and client at their minimum sizes.
func Split(ref *Layout, client *winmgr.Window, splitter bool, size int, dir Direction) *Layout {
	if ref.parent != nil && isDirVert(dir) == ref.parent.vert {
		return createInlineSplit(ref, client, splitter, size, dir)
	}
	return createChildSplit(ref, client, splitter, size, dir)
}

// SetWindow attaches w as lay's client, replacing whatever window (if
// any) it previously held. Fails only if lay is a container (has
// children) — it does not reject based on w's minimum size, matching the
// window manager's own "don't second-guess the caller" stance on SetPos.
func SetWindow(lay *Layout, w *winmgr.Window) bool {
	if lay.child != nil {
		return false
	}
	lay.client = w
	lay.mgr.Update(true)
	return true
}

func layoutListRemove(lay *Layout) {
	pp := &lay.parent.child
	for *pp != nil {
		if *pp == lay {
			*pp = lay.next
			return
		}
		pp = &(*pp).next
	}
}

// promoteChild collapses redundant single-child containers: a container
// holding only lay is removed and lay is spliced into its grandparent's
// list, and a container whose sole child shares its own flow direction
// has that child's children spliced in directly.
func promoteChild(child *Layout) {
	parent := child.parent
	if child.next == nil && parent.parent != nil {
		child.parent = parent.parent
		child.next = parent.next
		parent.next = child
		parent.child = nil
		layoutListRemove(parent)

		setSplitterVisible(child, parent.splitter != nil)

		child.size = parent.size
		updateChildPct(child.parent)

		parent.free()
	}

	if child.child != nil && child.parent.vert == child.vert {
		last := child.child
		for {
			last.parent = child.parent
			if last.next == nil {
				break
			}
			last = last.next
		}
		last.next = child.next
		child.next = child.child
		child.child = nil

		setSplitterVisible(child.next, child.splitter != nil)
		layoutListRemove(child)

		updateChildPct(child.parent)
		child.free()
	}
}

func closeHelper(lay *Layout, promote bool) {
	for lay.child != nil {
		closeHelper(lay.child, false)
	}

	if lay.parent != nil {
		if lay.parent.child == lay {
			next := lay.next
			lay.parent.child = next
			if next != nil {
				splitterSize := 0
				if next.splitter != nil {
					splitterSize = 1
				}
				adjustSize(next, lay.size+splitterSize)
				setSplitterVisible(next, false)
			}
		} else {
			prev := lay.parent.child
			for prev.next != lay {
				prev = prev.next
			}
			prev.next = lay.next
			splitterSize := 0
			if lay.splitter != nil {
				splitterSize = 1
			}
			adjustSize(prev, lay.size+splitterSize)
		}

		if promote {
			if lay.parent.child != nil && lay.parent.child.next == nil && lay.parent.parent != nil {
				promoteChild(lay.parent.child)
			}
		}
	}

	lay.mgr.Update(true)
	lay.free()
}

// (m *Manager) closeHelper is the entry point used by Manager.Close,
// which tears down the whole tree without the promotion step (there is
// nothing left to promote into once every layout is being freed).
func (m *Manager) closeHelper(lay *Layout, promote bool) {
	closeHelper(lay, promote)
}

// Close removes lay (and, recursively, its children) from the tree and
// reflows its siblings to reclaim the freed space. A non-root container
// left with a single remaining child is replaced by that child; the root
// container is kept even with one child. Close does not
// destroy any client window it unlinks — client windows are never
// owned by a layout, so the caller destroys them, typically right
// after Close returns.
func Close(lay *Layout) {
	closeHelper(lay, true)
}
