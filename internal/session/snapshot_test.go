package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mosaicwm/mosaic/internal/geom"
	"github.com/mosaicwm/mosaic/internal/msgqueue"
	"github.com/mosaicwm/mosaic/internal/tilelayout"
	"github.com/mosaicwm/mosaic/internal/winmgr"
)

type fakeSurface struct {
	cols, rows int
	cells      map[winmgr.CellHandle]geom.Rect
	next       winmgr.CellHandle
}

func newFakeSurface(cols, rows int) *fakeSurface {
	return &fakeSurface{cols: cols, rows: rows, cells: map[winmgr.CellHandle]geom.Rect{}}
}

func (f *fakeSurface) Init() error      { return nil }
func (f *fakeSurface) Shutdown()        {}
func (f *fakeSurface) Size() (int, int) { return f.cols, f.rows }
func (f *fakeSurface) AllocCellWindow(rc geom.Rect) (winmgr.CellHandle, bool) {
	f.next++
	f.cells[f.next] = rc
	return f.next, true
}
func (f *fakeSurface) FreeCellWindow(h winmgr.CellHandle) { delete(f.cells, h) }
func (f *fakeSurface) MoveAndResize(h winmgr.CellHandle, rc geom.Rect) bool {
	f.cells[h] = rc
	return true
}
func (f *fakeSurface) SetCell(winmgr.CellHandle, int, int, rune, winmgr.Style) bool { return true }
func (f *fakeSurface) BlitToVirtual(winmgr.CellHandle)                              {}
func (f *fakeSurface) FlushVirtualToPhysical()                                      {}
func (f *fakeSurface) ReadKey() (winmgr.Key, bool)                                  { return winmgr.Key{}, false }
func (f *fakeSurface) ResizeFD() int                                                { return -1 }

func newFixtureManager(t *testing.T, cols, rows int) (*winmgr.Manager, *tilelayout.Manager) {
	t.Helper()
	surf := newFakeSurface(cols, rows)
	wm, err := winmgr.Init(context.Background(), surf)
	require.NoError(t, err)
	t.Cleanup(wm.Shutdown)

	lm := tilelayout.New(wm, wm.Root())
	return wm, lm
}

// newRecordedLeaf creates a leaf window whose handler answers
// MsgGetUserData with rec (or stays silent if rec is nil, matching a
// handler that keeps no PaneRecord).
func newRecordedLeaf(t *testing.T, wm *winmgr.Manager, lm *tilelayout.Manager, rec *PaneRecord) *winmgr.Window {
	t.Helper()
	var h msgqueue.Handler
	h = wm.Handlers().Create(func(id int, data any) uintptr {
		if id == winmgr.MsgGetUserData && rec != nil {
			if q, ok := data.(*UserDataQuery); ok {
				q.Value = *rec
				return 1
			}
		}
		return 0
	})
	w, err := lm.CreateLeaf(h, 0)
	require.NoError(t, err)
	return w
}

func TestCaptureRoundTripsThroughRestore(t *testing.T) {
	wm, lm := newFixtureManager(t, 80, 24)

	rootRec := &PaneRecord{PaneID: "left", Command: "top", WorkingDir: "/"}
	w0 := newRecordedLeaf(t, wm, lm, rootRec)
	require.True(t, tilelayout.SetWindow(lm.Root(), w0))

	rightRec := &PaneRecord{PaneID: "right", Command: "htop", WorkingDir: "/tmp"}
	w1 := newRecordedLeaf(t, wm, lm, rightRec)
	right := tilelayout.Split(lm.Root(), w1, true, 30, tilelayout.DirRight)
	require.NotNil(t, right)

	bottomRec := &PaneRecord{PaneID: "bottom", Command: "logs", WorkingDir: "/var/log"}
	w2 := newRecordedLeaf(t, wm, lm, bottomRec)
	bottom := tilelayout.Split(right, w2, true, 10, tilelayout.DirDown)
	require.NotNil(t, bottom)

	snap := Capture(wm, lm.Root())
	require.False(t, snap.IsLeaf())
	require.Equal(t, 2, len(snap.Children))

	// Round-trip through JSON, exactly as Save/Load do against the
	// database, to make sure the struct tags and nested pointers survive.
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded LayoutSnapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))

	wm2, lm2 := newFixtureManager(t, 80, 24)
	newLeaf := func(pane *PaneRecord) (*winmgr.Window, error) {
		return newRecordedLeaf(t, wm2, lm2, pane), nil
	}

	require.NoError(t, Restore(wm2, lm2, decoded, newLeaf))

	restored := Capture(wm2, lm2.Root())
	require.Equal(t, decoded, restored)
}
