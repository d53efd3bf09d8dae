// Package termsurface implements winmgr.Surface on top of tcell,
// translating the window manager's backend-neutral cell windows, colors
// and key events into real terminal I/O.
package termsurface

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sys/unix"

	"github.com/mosaicwm/mosaic/internal/geom"
	"github.com/mosaicwm/mosaic/internal/winmgr"
)

// Surface is a winmgr.Surface backed by a real terminal via tcell. Every
// cell window shares tcell's own screen buffer directly — SetCell writes
// straight into it, so BlitToVirtual is a no-op and FlushVirtualToPhysical
// is just screen.Show().
type Surface struct {
	screen tcell.Screen

	mu    sync.Mutex
	cells map[winmgr.CellHandle]geom.Rect
	next  winmgr.CellHandle

	keyCh chan winmgr.Key

	resizeR, resizeW int
	keyR, keyW       int
}

// New creates a Surface wrapping a freshly allocated tcell screen. Init
// must still be called before use.
func New() (*Surface, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("termsurface: new screen: %w", err)
	}
	return &Surface{screen: screen, cells: map[winmgr.CellHandle]geom.Rect{}}, nil
}

// Init starts the terminal in raw/alternate-screen mode and spawns the
// background event pump that decodes tcell's blocking PollEvent loop
// into the self-pipes ResizeFD and KeyFD signal.
func (s *Surface) Init() error {
	if err := s.screen.Init(); err != nil {
		return fmt.Errorf("termsurface: init screen: %w", err)
	}
	s.screen.EnableMouse()
	s.screen.HideCursor()

	var resizeFDs, keyFDs [2]int
	if err := unix.Pipe2(resizeFDs[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		s.screen.Fini()
		return fmt.Errorf("termsurface: resize pipe: %w", err)
	}
	if err := unix.Pipe2(keyFDs[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		s.screen.Fini()
		return fmt.Errorf("termsurface: key pipe: %w", err)
	}
	s.resizeR, s.resizeW = resizeFDs[0], resizeFDs[1]
	s.keyR, s.keyW = keyFDs[0], keyFDs[1]
	s.keyCh = make(chan winmgr.Key, 64)

	go s.pumpEvents()
	return nil
}

// Shutdown stops the event pump (Fini unblocks the pump's PollEvent
// call with a nil event) and restores the terminal.
func (s *Surface) Shutdown() {
	s.screen.Fini()
	_ = unix.Close(s.resizeR)
	_ = unix.Close(s.resizeW)
	_ = unix.Close(s.keyR)
	_ = unix.Close(s.keyW)
}

// Size returns the terminal's current size in (cols, rows).
func (s *Surface) Size() (cols, rows int) {
	return s.screen.Size()
}

// AllocCellWindow records a new cell window's screen rectangle. tcell
// has no notion of per-window buffers, so this is pure bookkeeping: the
// handle just tracks where SetCell's window-local coordinates land on
// the shared screen.
func (s *Surface) AllocCellWindow(rc geom.Rect) (winmgr.CellHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.cells[s.next] = rc
	return s.next, true
}

// FreeCellWindow forgets h's rectangle. The cells it covered are left as
// whatever was last drawn until the next window claims and repaints that
// area (the window manager always repaints what it overlaps).
func (s *Surface) FreeCellWindow(h winmgr.CellHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cells, h)
}

// MoveAndResize updates h's tracked rectangle. It never fails; any
// terminal-side inconsistency is resolved by the next full repaint.
func (s *Surface) MoveAndResize(h winmgr.CellHandle, rc geom.Rect) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells[h] = rc
	return true
}

// SetCell writes ch into the screen at h's rectangle offset by the
// window-local (x,y), translating style to tcell's representation.
// Out-of-bounds coordinates are a no-op returning false.
func (s *Surface) SetCell(h winmgr.CellHandle, x, y int, ch rune, style winmgr.Style) bool {
	s.mu.Lock()
	rc, ok := s.cells[h]
	s.mu.Unlock()
	if !ok || x < 0 || y < 0 || x >= rc.Width() || y >= rc.Height() {
		return false
	}
	s.screen.SetContent(rc.Left+x, rc.Top+y, ch, nil, toTcellStyle(style))
	return true
}

func toTcellStyle(style winmgr.Style) tcell.Style {
	st := tcell.StyleDefault.
		Foreground(toTcellColor(style.Fg)).
		Background(toTcellColor(style.Bg)).
		Bold(style.Bold).
		Reverse(style.Reverse)
	return st
}

func toTcellColor(c winmgr.Color) tcell.Color {
	if c == winmgr.ColorDefault {
		return tcell.ColorDefault
	}
	return tcell.PaletteColor(int(c))
}

// BlitToVirtual is a no-op: SetCell already writes directly into tcell's
// own back buffer, so there is no separate per-window buffer to copy.
func (s *Surface) BlitToVirtual(winmgr.CellHandle) {}

// FlushVirtualToPhysical diffs tcell's back buffer against the terminal
// and writes out the changes.
func (s *Surface) FlushVirtualToPhysical() {
	s.screen.Show()
}

// ReadKey is non-blocking: it drains one already-decoded key from the
// event pump's channel, or reports ok=false if none is pending.
func (s *Surface) ReadKey() (winmgr.Key, bool) {
	select {
	case k := <-s.keyCh:
		return k, true
	default:
		return winmgr.Key{}, false
	}
}

// ResizeFD returns the read end of the resize self-pipe: readable
// exactly once per terminal-size change, matching winmgr.Surface's
// contract.
func (s *Surface) ResizeFD() int {
	return s.resizeR
}

// KeyFD returns the read end of a second self-pipe, signalled whenever
// ReadKey has at least one decoded key waiting. winmgr.Surface doesn't
// require this (ResizeFD is its only wake descriptor), but the
// application's select loop needs a way to learn about pending key
// input without busy-polling ReadKey, so termsurface exposes it as an
// addition specific to this concrete backend.
func (s *Surface) KeyFD() int {
	return s.keyR
}

func (s *Surface) pumpEvents() {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			// Fini() unblocks PollEvent with a nil event; this is the
			// pump's only exit path.
			return
		}
		switch e := ev.(type) {
		case *tcell.EventResize:
			s.signal(s.resizeW)
		case *tcell.EventKey:
			s.keyCh <- translateKey(e)
			s.signal(s.keyW)
		}
	}
}

func (s *Surface) signal(fd int) {
	var b [1]byte
	_, _ = unix.Write(fd, b[:])
}

func translateKey(e *tcell.EventKey) winmgr.Key {
	mods := 0
	if e.Modifiers()&tcell.ModShift != 0 {
		mods |= winmgr.ModShift
	}
	if e.Modifiers()&tcell.ModAlt != 0 {
		mods |= winmgr.ModAlt
	}
	if e.Modifiers()&tcell.ModCtrl != 0 {
		mods |= winmgr.ModCtrl
	}

	if e.Key() == tcell.KeyRune {
		return winmgr.Key{Rune: e.Rune(), IsChar: true, Modifiers: mods}
	}
	return winmgr.Key{Code: int(e.Key()), IsChar: false, Modifiers: mods}
}
