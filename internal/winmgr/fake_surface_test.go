package winmgr

import (
	"github.com/mosaicwm/mosaic/internal/geom"
	"golang.org/x/sys/unix"
)

// fakeSurface is a synthetic, in-memory Surface implementation used only
// by tests, so the window manager can be exercised without a real
// terminal.
type fakeSurface struct {
	cols, rows int
	cells      map[CellHandle]geom.Rect
	glyphs     map[CellHandle]map[[2]int]rune
	next       CellHandle
	flushes    int
	resizeR    int
	resizeW    int
	refuse     bool
}

func newFakeSurface(cols, rows int) *fakeSurface {
	var fds [2]int
	_ = unix.Pipe2(fds[:], unix.O_NONBLOCK)
	return &fakeSurface{
		cols: cols, rows: rows,
		cells:   map[CellHandle]geom.Rect{},
		glyphs:  map[CellHandle]map[[2]int]rune{},
		resizeR: fds[0], resizeW: fds[1],
	}
}

func (f *fakeSurface) Init() error  { return nil }
func (f *fakeSurface) Shutdown()    {}
func (f *fakeSurface) Size() (int, int) { return f.cols, f.rows }

func (f *fakeSurface) AllocCellWindow(rc geom.Rect) (CellHandle, bool) {
	if f.refuse {
		return 0, false
	}
	f.next++
	f.cells[f.next] = rc
	return f.next, true
}

func (f *fakeSurface) FreeCellWindow(h CellHandle) { delete(f.cells, h) }

func (f *fakeSurface) MoveAndResize(h CellHandle, rc geom.Rect) bool {
	f.cells[h] = rc
	return true
}

func (f *fakeSurface) SetCell(h CellHandle, x, y int, ch rune, style Style) bool {
	rc, ok := f.cells[h]
	if !ok || x < 0 || y < 0 || x >= rc.Width() || y >= rc.Height() {
		return false
	}
	g, ok := f.glyphs[h]
	if !ok {
		g = map[[2]int]rune{}
		f.glyphs[h] = g
	}
	g[[2]int{x, y}] = ch
	return true
}

func (f *fakeSurface) BlitToVirtual(h CellHandle)   {}
func (f *fakeSurface) FlushVirtualToPhysical()      { f.flushes++ }
func (f *fakeSurface) ReadKey() (Key, bool)         { return Key{}, false }
func (f *fakeSurface) ResizeFD() int                { return f.resizeR }

func (f *fakeSurface) setSize(cols, rows int) {
	f.cols, f.rows = cols, rows
	var b [1]byte
	_, _ = unix.Write(f.resizeW, b[:])
}
