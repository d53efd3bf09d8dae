package tilelayout

import (
	"context"
	"testing"

	"github.com/mosaicwm/mosaic/internal/geom"
	"github.com/mosaicwm/mosaic/internal/msgqueue"
	"github.com/mosaicwm/mosaic/internal/winmgr"
	"github.com/stretchr/testify/require"
)

// testFixture bundles a window manager, a layout manager rooted at its
// root window, and enough plumbing to drive splits/closes and pump the
// async update message through to applyLayout.
type testFixture struct {
	t    *testing.T
	wm   *winmgr.Manager
	lm   *Manager
	surf *fakeSurface
}

func newFixture(t *testing.T, cols, rows int) *testFixture {
	t.Helper()
	surf := newFakeSurface(cols, rows)
	wm, err := winmgr.Init(context.Background(), surf)
	require.NoError(t, err)
	t.Cleanup(wm.Shutdown)

	lm := New(wm, wm.Root())
	return &testFixture{t: t, wm: wm, lm: lm, surf: surf}
}

// pump drains every message currently queued, dispatching each to its
// handler. tilelayout's own Update(true) posts exactly one coalesced
// message per burst of mutations, so a single pump after a batch of
// calls is enough to observe the resulting geometry.
func (f *testFixture) pump() {
	f.t.Helper()
	for {
		m, ok := f.wm.Queue().Get()
		if !ok {
			return
		}
		f.wm.Queue().Dispatch(m)
	}
}

// minSizeHandler creates a leaf handler reporting the given minimum
// size, small enough that tests can pack many panes into a modest host
// without hitting the package's 20x2 floor.
func (f *testFixture) minSizeHandler(minW, minH int) msgqueue.Handler {
	return f.wm.Handlers().Create(func(id int, data any) uintptr {
		if id == winmgr.WMGetMinSize {
			d := data.(winmgr.MinSizeData)
			*d.Width = minW
			*d.Height = minH
		}
		return 0
	})
}

func (f *testFixture) newLeaf(minW, minH, id int) *winmgr.Window {
	f.t.Helper()
	w, err := f.lm.CreateLeaf(f.minSizeHandler(minW, minH), id)
	require.NoError(f.t, err)
	return w
}

func TestSetWindowOnEmptyRoot(t *testing.T) {
	f := newFixture(t, 80, 24)
	w := f.newLeaf(1, 1, 1)
	require.True(t, SetWindow(f.lm.Root(), w))
	require.Equal(t, w, f.lm.Root().Window())
}

func TestChildSplitCreatesPerpendicularContainer(t *testing.T) {
	f := newFixture(t, 80, 24)
	w1 := f.newLeaf(1, 1, 1)
	require.True(t, SetWindow(f.lm.Root(), w1))

	w2 := f.newLeaf(1, 1, 2)
	right := Split(f.lm.Root(), w2, true, SizeHalf, DirRight)
	require.NotNil(t, right)
	f.pump()

	// root is now a container flowing left-right with two children.
	root := f.lm.Root()
	require.Nil(t, root.Window())
	require.NotNil(t, root.child)
	require.True(t, root.vert)

	leftRC := root.child.rect()
	rightRC := right.rect()
	require.Equal(t, leftRC.Right+1, rightRC.Left) // one-cell splitter between them
	require.Equal(t, 80, rightRC.Right)
	require.Equal(t, w1, root.child.Window())
	require.Equal(t, w2, right.Window())
}

func TestInlineSplitKeepsFlatSiblings(t *testing.T) {
	f := newFixture(t, 80, 24)
	w1 := f.newLeaf(1, 1, 1)
	require.True(t, SetWindow(f.lm.Root(), w1))

	w2 := f.newLeaf(1, 1, 2)
	laySecond := Split(f.lm.Root(), w2, true, SizeHalf, DirRight)
	require.NotNil(t, laySecond)

	w3 := f.newLeaf(1, 1, 3)
	layThird := Split(laySecond, w3, true, SizeHalf, DirRight)
	require.NotNil(t, layThird)
	f.pump()

	root := f.lm.Root()
	count := 0
	for c := root.child; c != nil; c = c.next {
		count++
	}
	require.Equal(t, 3, count, "three leaves should sit flat under one vert container, not nest")
}

func TestSplitRefusedWhenNoRoomForMinSizes(t *testing.T) {
	f := newFixture(t, 20, 24)
	w1 := f.newLeaf(18, 1, 1)
	require.True(t, SetWindow(f.lm.Root(), w1))

	w2 := f.newLeaf(18, 1, 2)
	lay := Split(f.lm.Root(), w2, true, SizeHalf, DirRight)
	require.Nil(t, lay, "two 18-wide minimums plus a splitter cannot fit in 20 columns")
}

func TestProportionalResizeOnHostGrowth(t *testing.T) {
	f := newFixture(t, 80, 24)
	w1 := f.newLeaf(1, 1, 1)
	require.True(t, SetWindow(f.lm.Root(), w1))
	w2 := f.newLeaf(1, 1, 2)
	lay2 := Split(f.lm.Root(), w2, true, SizeHalf, DirRight)
	require.NotNil(t, lay2)
	f.pump()

	root := f.lm.Root()
	widthBefore1 := root.child.size
	widthBefore2 := lay2.size
	require.InDelta(t, widthBefore1, widthBefore2, 1)

	f.wm.SetPos(f.wm.Root(), geom.New(0, 0, 160, 24))
	f.pump()

	widthAfter1 := root.child.size
	widthAfter2 := lay2.size
	// 39:40 of 79 cells rescaled to 159: round(78.49) = 78, round(80.51) = 81.
	require.Equal(t, 78, widthAfter1)
	require.Equal(t, 81, widthAfter2)
	require.Greater(t, widthAfter1+widthAfter2, widthBefore1+widthBefore2)
}

func TestCloseReclaimsSpaceAndPromotesSingleChild(t *testing.T) {
	f := newFixture(t, 80, 24)
	w1 := f.newLeaf(1, 1, 1)
	require.True(t, SetWindow(f.lm.Root(), w1))
	w2 := f.newLeaf(1, 1, 2)
	lay2 := Split(f.lm.Root(), w2, true, SizeHalf, DirRight)
	require.NotNil(t, lay2)
	f.pump()

	lay1 := f.lm.Root().child
	Close(lay2)
	f.pump()

	// The top-level container has no grandparent, so promoteChild leaves
	// it in place as a single-child pass-through rather than collapsing
	// it away — matching layout_promote_child's "parent->parent" guard.
	root := f.lm.Root()
	require.Equal(t, lay1, root.child)
	require.Nil(t, root.child.next)
	require.Equal(t, w1, root.child.Window())
	require.Equal(t, 80, root.child.rect().Width())
}

func TestCloseDoesNotDestroyClientWindow(t *testing.T) {
	f := newFixture(t, 80, 24)
	w1 := f.newLeaf(1, 1, 1)
	require.True(t, SetWindow(f.lm.Root(), w1))

	destroyed := false
	h2 := f.wm.Handlers().Create(func(id int, data any) uintptr {
		if id == winmgr.WMDestroy {
			destroyed = true
		}
		return 0
	})
	w2, err := f.lm.CreateLeaf(h2, 2)
	require.NoError(t, err)
	lay2 := Split(f.lm.Root(), w2, true, SizeHalf, DirRight)
	require.NotNil(t, lay2)
	f.pump()

	Close(lay2)
	f.pump()

	// Close unlinks the layout node but leaves w2 itself alone — it's
	// still a live window the manager will happily paint — until the
	// caller destroys it.
	require.False(t, destroyed)
	require.True(t, f.wm.SetCell(w2, 0, 0, 'x', winmgr.Style{}))

	f.wm.Destroy(w2)
	require.True(t, destroyed)
}

func TestMoveEdgeShrinksAndGrowsNeighbors(t *testing.T) {
	f := newFixture(t, 80, 24)
	w1 := f.newLeaf(5, 1, 1)
	require.True(t, SetWindow(f.lm.Root(), w1))
	w2 := f.newLeaf(5, 1, 2)
	lay2 := Split(f.lm.Root(), w2, true, SizeHalf, DirRight)
	require.NotNil(t, lay2)
	f.pump()

	lay1 := f.lm.Root().child
	sizeBefore1, sizeBefore2 := lay1.size, lay2.size

	ok := MoveEdge(lay1, 5, DirRight)
	require.True(t, ok)
	f.pump()

	require.Equal(t, sizeBefore1+5, lay1.size)
	require.Equal(t, sizeBefore2-5, lay2.size)
}

func TestMoveEdgeRefusedPastMinSize(t *testing.T) {
	f := newFixture(t, 30, 24)
	w1 := f.newLeaf(5, 1, 1)
	require.True(t, SetWindow(f.lm.Root(), w1))
	w2 := f.newLeaf(5, 1, 2)
	lay2 := Split(f.lm.Root(), w2, true, SizeHalf, DirRight)
	require.NotNil(t, lay2)
	f.pump()

	lay1 := f.lm.Root().child
	// First move clamps down to lay2's minimum width instead of being
	// refused outright.
	require.True(t, MoveEdge(lay1, 1000, DirRight))
	require.Equal(t, 5, lay2.size)

	// lay2 is now exactly at its minimum, so any further shrink clamps
	// to a zero delta and is refused.
	require.False(t, MoveEdge(lay1, 1, DirRight))
}

func TestNavigateDirFindsGeometricNeighbor(t *testing.T) {
	f := newFixture(t, 80, 24)
	w1 := f.newLeaf(1, 1, 1)
	require.True(t, SetWindow(f.lm.Root(), w1))
	w2 := f.newLeaf(1, 1, 2)
	right := Split(f.lm.Root(), w2, true, SizeHalf, DirRight)
	require.NotNil(t, right)
	f.pump()

	left := f.lm.Root().child
	found := NavigateDir(left, 0, 0, DirRight)
	require.Equal(t, right, found)

	require.Nil(t, NavigateDir(left, 0, 0, DirLeft), "nothing left of the leftmost pane")
}

func TestNavigateOrderedWrapsAround(t *testing.T) {
	f := newFixture(t, 80, 24)
	w1 := f.newLeaf(1, 1, 1)
	require.True(t, SetWindow(f.lm.Root(), w1))
	w2 := f.newLeaf(1, 1, 2)
	second := Split(f.lm.Root(), w2, true, SizeHalf, DirRight)
	require.NotNil(t, second)
	w3 := f.newLeaf(1, 1, 3)
	third := Split(second, w3, true, SizeHalf, DirRight)
	require.NotNil(t, third)
	f.pump()

	first := f.lm.Root().child
	require.Equal(t, second, NavigateOrdered(first, true))
	require.Equal(t, third, NavigateOrdered(second, true))
	require.Equal(t, first, NavigateOrdered(third, true), "next from the last leaf wraps to the first")
	require.Equal(t, third, NavigateOrdered(first, false), "prev from the first leaf wraps to the last")
}
