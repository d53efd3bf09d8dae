package session

import (
	"fmt"

	"github.com/mosaicwm/mosaic/internal/tilelayout"
	"github.com/mosaicwm/mosaic/internal/winmgr"
)

// UserDataQuery is the payload for winmgr.MsgGetUserData: a handler that
// backs a pane with durable identity sets Value to its PaneRecord and
// returns 1; a handler that doesn't understand the message leaves Value
// nil and returns 0, matching the WMGetMinSize convention of writing
// through a pointer in the payload rather than the return value.
type UserDataQuery struct {
	Value any
}

// PaneRecordOf queries w's handler for its PaneRecord via the
// MsgGetUserData convention. A handler that doesn't implement it leaves
// the query unanswered and PaneRecordOf returns nil.
func PaneRecordOf(wm *winmgr.Manager, w *winmgr.Window) *PaneRecord {
	q := &UserDataQuery{}
	if wm.Handlers().Call(w.Handler(), winmgr.MsgGetUserData, q) == 0 {
		return nil
	}
	rec, ok := q.Value.(PaneRecord)
	if !ok {
		return nil
	}
	return &rec
}

// Capture walks lay's subtree read-only and returns its serializable
// mirror. Leaves with no queryable PaneRecord (any handler that doesn't
// implement MsgGetUserData) snapshot with Pane ==
// nil; Restore recreates them as bare leaves.
func Capture(wm *winmgr.Manager, lay *tilelayout.Layout) LayoutSnapshot {
	snap := LayoutSnapshot{
		Vert:        lay.Vert(),
		Size:        lay.Size(),
		Pct:         lay.Pct(),
		HasSplitter: lay.HasSplitter(),
	}

	if w := lay.Window(); w != nil {
		snap.Pane = PaneRecordOf(wm, w)
	}

	for c := lay.Child(); c != nil; c = c.Next() {
		snap.Children = append(snap.Children, Capture(wm, c))
	}

	return snap
}

// LeafFactory creates the client window for a restored leaf. pane is nil
// both for leaves that never had a PaneRecord and for the transient
// placeholder windows Restore uses to anchor a Split while it's still
// building out a container's children — a factory rendering a
// placeholder should produce whatever its "new empty pane" default is.
type LeafFactory func(pane *PaneRecord) (*winmgr.Window, error)

// Restore replays snap into lm's tree, which must still be empty (fresh
// from tilelayout.New). It reconstructs the tree depth-first: a
// container's first child is established via SetWindow directly on the
// node passed in (which tilelayout.Split will itself wrap in a new
// container once a second child is added), and every subsequent sibling
// via Split. Returns an error without partially-applied cleanup if a
// Split or SetWindow call is refused — the caller is expected to fall
// back to a fresh, empty workspace on error rather than limp along with
// half a tree.
func Restore(wm *winmgr.Manager, lm *tilelayout.Manager, snap LayoutSnapshot, newLeaf LeafFactory) error {
	root := lm.Root()
	if root.Window() != nil || root.Child() != nil {
		return fmt.Errorf("session: restore: layout manager is not empty")
	}
	return restoreInto(wm, root, snap, newLeaf)
}

func restoreInto(wm *winmgr.Manager, lay *tilelayout.Layout, snap LayoutSnapshot, newLeaf LeafFactory) error {
	if snap.IsLeaf() {
		w, err := newLeaf(snap.Pane)
		if err != nil {
			return fmt.Errorf("session: restore: create leaf window: %w", err)
		}
		if !tilelayout.SetWindow(lay, w) {
			return fmt.Errorf("session: restore: SetWindow refused")
		}
		return nil
	}

	dir := tilelayout.DirDown
	if snap.Vert {
		dir = tilelayout.DirRight
	}

	children := snap.Children
	childLayouts := make([]*tilelayout.Layout, len(children))

	w0, err := newLeaf(nil)
	if err != nil {
		return fmt.Errorf("session: restore: create placeholder window: %w", err)
	}
	if !tilelayout.SetWindow(lay, w0) {
		return fmt.Errorf("session: restore: SetWindow refused for placeholder")
	}
	childLayouts[0] = lay

	prev := lay
	for i := 1; i < len(children); i++ {
		wi, err := newLeaf(nil)
		if err != nil {
			return fmt.Errorf("session: restore: create placeholder window: %w", err)
		}
		next := tilelayout.Split(prev, wi, children[i].HasSplitter, children[i].Size, dir)
		if next == nil {
			return fmt.Errorf("session: restore: split refused for child %d", i)
		}
		childLayouts[i] = next
		prev = next
	}

	// Each childLayouts[i] currently holds a throwaway placeholder window.
	// Recursing overwrites it with the child's real content (directly via
	// SetWindow for a leaf, or via its own placeholder-then-recurse for a
	// nested container); once the slot holds something else, the original
	// placeholder is orphaned and must be destroyed explicitly.
	for i, childSnap := range children {
		placeholder := childLayouts[i].Window()
		if err := restoreInto(wm, childLayouts[i], childSnap, newLeaf); err != nil {
			return err
		}
		if placeholder != nil && childLayouts[i].Window() != placeholder {
			wm.Destroy(placeholder)
		}
	}

	return nil
}
