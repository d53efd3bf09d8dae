package tilelayout

import (
	"github.com/mosaicwm/mosaic/internal/geom"
	"github.com/mosaicwm/mosaic/internal/winmgr"
	"golang.org/x/sys/unix"
)

// fakeSurface is a synthetic, in-memory winmgr.Surface used only by
// this package's tests, so the layout tree can be exercised without a
// real terminal.
type fakeSurface struct {
	cols, rows int
	cells      map[winmgr.CellHandle]geom.Rect
	next       winmgr.CellHandle
	resizeR    int
	resizeW    int
}

func newFakeSurface(cols, rows int) *fakeSurface {
	var fds [2]int
	_ = unix.Pipe2(fds[:], unix.O_NONBLOCK)
	return &fakeSurface{
		cols: cols, rows: rows,
		cells:   map[winmgr.CellHandle]geom.Rect{},
		resizeR: fds[0], resizeW: fds[1],
	}
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

func (f *fakeSurface) SetCell(winmgr.CellHandle, int, int, rune, winmgr.Style) bool {
	return true
}

func (f *fakeSurface) BlitToVirtual(winmgr.CellHandle) {}
func (f *fakeSurface) FlushVirtualToPhysical()          {}
func (f *fakeSurface) ReadKey() (winmgr.Key, bool)      { return winmgr.Key{}, false }
func (f *fakeSurface) ResizeFD() int                    { return f.resizeR }
