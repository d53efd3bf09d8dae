package tilelayout

// findMoveLayout walks up from lay looking for an ancestor (or lay
// itself) whose parent flows in edge's axis and which has a sibling on
// the edge's side — that ancestor is the one whose size actually moves.
// Returns nil if no such ancestor exists (lay is, or is contained
// entirely within, the side of the tree touching the root boundary).
func findMoveLayout(lay *Layout, edge Direction) *Layout {
	layT := lay
	for layT != nil {
		if layT.parent == nil {
			return nil
		}
		if isDirVert(edge) != layT.parent.vert {
			layT = layT.parent
			continue
		}
		atPrevEnd := isDirPrev(edge) && layT.parent.child == layT
		atNextEnd := !isDirPrev(edge) && layT.next == nil
		if atPrevEnd || atNextEnd {
			layT = layT.parent
			continue
		}
		break
	}
	return layT
}

// MoveEdge moves the edge of lay in direction edge by delta cells,
// clamped so neither side shrinks below its minimum size. When no
// ancestor in that axis has a neighbor on edge's side, the opposite edge
// is moved instead. Returns false if neither edge is movable (lay borders
// the root on both sides in that axis) or if the clamped delta is zero.
func MoveEdge(lay *Layout, delta int, edge Direction) bool {
	layT := findMoveLayout(lay, edge)
	if layT == nil {
		edge = dirReverse(edge)
		layT = findMoveLayout(lay, edge)
		if layT == nil {
			return false
		}
	}

	var lay1, lay2 *Layout
	if isDirPrev(edge) {
		prev := layT.parent.child
		for prev.next != layT {
			prev = prev.next
		}
		lay1, lay2 = prev, layT
	} else {
		lay1, lay2 = layT, layT.next
	}

	if delta < 0 {
		widthMin, heightMin := minSize(lay1)
		sizeMin := heightMin
		if lay1.parent.vert {
			sizeMin = widthMin
		}
		if lay1.size+delta < sizeMin {
			delta = sizeMin - lay1.size
		}
		if delta >= 0 {
			return false
		}
	} else {
		widthMin, heightMin := minSize(lay2)
		sizeMin := heightMin
		if lay2.parent.vert {
			sizeMin = widthMin
		}
		if lay2.size-delta < sizeMin {
			delta = lay2.size - sizeMin
		}
		if delta <= 0 {
			return false
		}
	}

	adjustSize(lay1, delta)
	adjustSize(lay2, -delta)

	lay.mgr.Update(true)
	return true
}

func intervalDistance(i, i1, i2 int) int {
	if i < i1 {
		return i1 - i
	}
	if i >= i2 {
		return i - i2
	}
	return 0
}

// findClosestLayout descends from lay toward whichever child's span (in
// lay's flow axis) is nearest to the point (x,y), host-relative, bottoming
// out at a leaf.
func findClosestLayout(lay *Layout, x, y int) *Layout {
	var closest *Layout
	distMin := int(^uint(0) >> 1) // max int

	if lay.child != nil {
		rc := lay.rect()
		left, top := rc.Left, rc.Top
		for c := lay.child; c != nil; c = c.next {
			var dist int
			if lay.vert {
				if c.splitter != nil {
					left++
				}
				right := left + c.size
				dist = intervalDistance(x, left, right-1)
				left = right
			} else {
				if c.splitter != nil {
					top++
				}
				bottom := top + c.size
				dist = intervalDistance(y, top, bottom-1)
				top = bottom
			}
			if dist < distMin {
				distMin = dist
				closest = c
			}
		}
	}

	if closest != nil {
		return findClosestLayout(closest, x, y)
	}
	return lay
}

// NavigateDir finds the layout across lay's edge in direction dir that is
// geometrically closest to (x, y) — host-relative coordinates, typically
// the navigating pane's own cursor or center. Returns nil if dir has no
// neighbor (lay borders the root on that side).
func NavigateDir(lay *Layout, x, y int, dir Direction) *Layout {
	layT := findMoveLayout(lay, dir)
	if layT == nil {
		return nil
	}

	if isDirPrev(dir) {
		prev := layT.parent.child
		for prev.next != layT {
			prev = prev.next
		}
		layT = prev
	} else {
		layT = layT.next
	}

	return findClosestLayout(layT, x, y)
}

// findChildOrdered descends to the first (next) or last (prev) leaf of
// lay's subtree, for ordered (tab-like) navigation.
func findChildOrdered(lay *Layout, next bool) *Layout {
	if lay.child == nil {
		return lay
	}
	if next {
		return findChildOrdered(lay.child, next)
	}
	last := lay.child
	for last.next != nil {
		last = last.next
	}
	return findChildOrdered(last, next)
}

func navigateOrderedHelper(lay *Layout, next bool) *Layout {
	layT := lay
	for layT != nil {
		if layT.parent == nil {
			return nil
		}
		atStart := !next && layT.parent.child == layT
		atEnd := next && layT.next == nil
		if atStart || atEnd {
			layT = layT.parent
			continue
		}
		break
	}
	if layT == nil {
		return nil
	}

	if !next {
		prev := layT.parent.child
		for prev.next != layT {
			prev = prev.next
		}
		layT = prev
	} else {
		layT = layT.next
	}

	return findChildOrdered(layT, next)
}

// NavigateOrdered returns the next (or, if next is false, previous) leaf
// in document order, wrapping around to the opposite end of the tree
// when lay is already the last (or first) leaf.
func NavigateOrdered(lay *Layout, next bool) *Layout {
	if found := navigateOrderedHelper(lay, next); found != nil {
		return found
	}

	var last *Layout
	for e := lay; e != nil; e = navigateOrderedHelper(e, !next) {
		last = e
	}
	return last
}
