package winmgr

import "github.com/mosaicwm/mosaic/internal/geom"

// CellHandle identifies a backing cell-surface buffer allocated by a
// Surface implementation. It is opaque to the window manager.
type CellHandle uint32

// Key represents a single decoded input event from the terminal.
type Key struct {
	Rune      rune // valid when IsChar
	Code      int  // backend-defined non-character key code, when !IsChar
	IsChar    bool
	Modifiers int
}

// Color is a backend-neutral color value. ColorDefault means "the
// terminal's default foreground/background"; any other value is an
// ANSI 256-color index, left for the concrete surface to translate.
type Color int32

// ColorDefault requests the terminal's default color for a cell.
const ColorDefault Color = -1

// Style is the paint attributes for a single cell.
type Style struct {
	Fg, Bg  Color
	Bold    bool
	Reverse bool
}

// Surface is the abstract terminal backend the window manager consumes.
// Concrete implementations (see internal/termsurface) target a real
// terminal, or a synthetic buffer for tests.
type Surface interface {
	Init() error
	Shutdown()

	// Size returns the current terminal size in (cols, rows).
	Size() (cols, rows int)

	// AllocCellWindow creates a cell buffer sized exactly to rc. Returns
	// the zero CellHandle and false if the backend refuses.
	AllocCellWindow(rc geom.Rect) (CellHandle, bool)
	FreeCellWindow(h CellHandle)

	// MoveAndResize repositions/resizes an existing cell buffer. Errors
	// from the backend are swallowed by the caller; the backend itself
	// reports success so the caller can choose to retry or log.
	MoveAndResize(h CellHandle, rc geom.Rect) bool

	// SetCell writes one glyph into the cell buffer at window-local
	// (x,y). Out-of-bounds coordinates are a no-op returning false.
	SetCell(h CellHandle, x, y int, ch rune, style Style) bool

	BlitToVirtual(h CellHandle)
	FlushVirtualToPhysical()

	// ReadKey is non-blocking; ok is false when no input is pending.
	ReadKey() (k Key, ok bool)

	// ResizeFD returns a descriptor that becomes readable exactly once
	// per terminal-size change (the surface's SIGWINCH self-pipe).
	ResizeFD() int
}
