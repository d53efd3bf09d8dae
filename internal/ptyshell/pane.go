package ptyshell

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/mosaicwm/mosaic/internal/geom"
	"github.com/mosaicwm/mosaic/internal/logging"
	"github.com/mosaicwm/mosaic/internal/session"
	"github.com/mosaicwm/mosaic/internal/winmgr"
)

const (
	minCols = 4
	minRows = 1
	tabStop = 8
)

// Pane is a winmgr handler backing one leaf with a live shell. Output
// is decoded just enough to place glyphs in the right cell — newline,
// carriage return, backspace and tab move the cursor; a leading ESC
// starts a control sequence that is swallowed up to its terminating
// byte rather than interpreted, so a full-screen program won't corrupt
// the pane's buffer even though its cursor addressing is ignored.
type Pane struct {
	wm  *winmgr.Manager
	win *winmgr.Window

	record session.PaneRecord
	log    zerolog.Logger

	// minCols/minRows are this pane's WMGetMinSize answer. NewPane seeds
	// them with the package floor; a caller that knows the configured
	// workspace floor (internal/cli's commandState) overrides them
	// before the pane is attached to a tree.
	minCols, minRows int

	mu      sync.Mutex
	session *Session
	cols    int
	rows    int
	cursorX int
	cursorY int
	grid    [][]rune

	inEscape bool

	wakeR, wakeW int
	out          chan []byte
}

// NewPane builds an unattached pane for the given identity. Its log
// messages are tagged with the pane's ID (via logging.WithPaneID) so
// they can be told apart from every other pane's in a shared log file.
// Attach it to a tree by registering Handle as a winmgr handler on wm
// and creating (or splitting in) a leaf window with it, the same way
// every other leaf handler in this repository is wired.
func NewPane(ctx context.Context, wm *winmgr.Manager, rec session.PaneRecord) *Pane {
	log := *logging.FromContext(logging.WithPaneID(ctx, rec.PaneID))
	return &Pane{wm: wm, record: rec, log: log, minCols: minCols, minRows: minRows, out: make(chan []byte, 64)}
}

// Record returns the identity this pane was constructed with.
func (p *Pane) Record() session.PaneRecord {
	return p.record
}

// SetMinSize overrides the floor reported to WMGetMinSize. Values below
// the package's own floor are ignored so a misconfigured workspace
// can't shrink a pane past what its own rendering can support.
func (p *Pane) SetMinSize(cols, rows int) {
	if cols > minCols {
		p.minCols = cols
	}
	if rows > minRows {
		p.minRows = rows
	}
}

// Handle is the msgqueue.HandlerProc for this pane.
func (p *Pane) Handle(id int, data any) uintptr {
	switch id {
	case winmgr.WMCreate:
		cd := data.(winmgr.CreateData)
		p.win = cd.Window
		p.onCreate()
	case winmgr.WMDestroy:
		p.onDestroy()
	case winmgr.WMPosChanged:
		pc := data.(winmgr.PosChangedData)
		if pc.Resized {
			p.resize(pc.RectNew.Width(), pc.RectNew.Height())
		}
	case winmgr.WMChar:
		cd := data.(winmgr.CharData)
		if p.session != nil {
			_, _ = p.session.Write([]byte(cd.Text))
		}
	case winmgr.WMKey:
		kd := data.(winmgr.KeyData)
		if seq := keySequence(kd); seq != "" && p.session != nil {
			_, _ = p.session.Write([]byte(seq))
		}
	case winmgr.WMGetMinSize:
		md := data.(winmgr.MinSizeData)
		*md.Width = p.minCols
		*md.Height = p.minRows
	case winmgr.WMPaint:
		pd := data.(winmgr.PaintData)
		p.paint(pd.Clip)
	case winmgr.MsgGetUserData:
		if q, ok := data.(*session.UserDataQuery); ok {
			q.Value = p.record
			return 1
		}
	}
	return 0
}

func (p *Pane) onCreate() {
	rc := p.win.Rect()
	cols, rows := rc.Width(), rc.Height()
	if cols < p.minCols {
		cols = p.minCols
	}
	if rows < p.minRows {
		rows = p.minRows
	}

	sess, err := NewSession(p.record.Command, p.record.WorkingDir, uint16(cols), uint16(rows))
	if err != nil {
		p.log.Error().Err(err).Msg("failed to start pane shell")
		p.wm.SetCell(p.win, 0, 0, '!', winmgr.Style{Fg: winmgr.ColorDefault, Bg: winmgr.ColorDefault})
		return
	}

	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		p.log.Error().Err(err).Msg("failed to open pane wake pipe")
		sess.Close()
		return
	}
	p.wakeR, p.wakeW = fds[0], fds[1]

	p.mu.Lock()
	p.session = sess
	p.cols, p.rows = cols, rows
	p.grid = newGrid(cols, rows)
	p.mu.Unlock()

	go p.pump()
}

func (p *Pane) onDestroy() {
	if p.session != nil {
		p.session.Close()
	}
	if p.wakeR != 0 || p.wakeW != 0 {
		_ = unix.Close(p.wakeR)
		_ = unix.Close(p.wakeW)
	}
}

// pump blocks reading the pseudoterminal in its own goroutine (the
// same shape as termsurface's tcell event pump) and hands each chunk
// off through a buffered channel, signalling WakeFD so the
// application's select loop knows to call Drain on the window
// manager's own dispatch goroutine.
func (p *Pane) pump() {
	buf := make([]byte, 4096)
	for {
		n, err := p.session.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			p.out <- chunk
			var b [1]byte
			_, _ = unix.Write(p.wakeW, b[:])
		}
		if err != nil {
			return
		}
	}
}

// WakeFD returns the read end of this pane's self-pipe, readable
// whenever Drain has decoded output waiting to be applied.
func (p *Pane) WakeFD() int {
	return p.wakeR
}

// Drain applies every chunk buffered since the last call into the
// pane's cell grid and invalidates the window, and must be called from
// the same goroutine that dispatches winmgr messages.
func (p *Pane) Drain() {
	var b [1]byte
	_, _ = unix.Read(p.wakeR, b[:])

	for {
		select {
		case chunk := <-p.out:
			p.apply(chunk)
		default:
			if p.wm != nil {
				p.wm.Invalidate(p.win)
			}
			return
		}
	}
}

func newGrid(cols, rows int) [][]rune {
	g := make([][]rune, rows)
	for y := range g {
		g[y] = make([]rune, cols)
		for x := range g[y] {
			g[y][x] = ' '
		}
	}
	return g
}

func (p *Pane) apply(chunk []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, b := range chunk {
		if p.inEscape {
			if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '~' {
				p.inEscape = false
			}
			continue
		}
		switch b {
		case 0x1b: // ESC
			p.inEscape = true
		case '\r':
			p.cursorX = 0
		case '\n':
			p.newline()
		case '\t':
			p.cursorX = ((p.cursorX / tabStop) + 1) * tabStop
			p.wrapIfNeeded()
		case 0x08, 0x7f: // backspace / DEL
			if p.cursorX > 0 {
				p.cursorX--
			}
		default:
			if b < 0x20 {
				continue
			}
			p.putRune(rune(b))
		}
	}
}

func (p *Pane) putRune(r rune) {
	if p.cursorY >= 0 && p.cursorY < p.rows && p.cursorX >= 0 && p.cursorX < p.cols {
		p.grid[p.cursorY][p.cursorX] = r
	}
	p.cursorX++
	p.wrapIfNeeded()
}

func (p *Pane) wrapIfNeeded() {
	if p.cursorX >= p.cols {
		p.cursorX = 0
		p.newline()
	}
}

func (p *Pane) newline() {
	p.cursorY++
	if p.cursorY >= p.rows {
		// Scroll the grid up one row, discarding the oldest.
		copy(p.grid, p.grid[1:])
		last := make([]rune, p.cols)
		for x := range last {
			last[x] = ' '
		}
		p.grid[p.rows-1] = last
		p.cursorY = p.rows - 1
	}
}

func (p *Pane) resize(cols, rows int) {
	if cols < p.minCols {
		cols = p.minCols
	}
	if rows < p.minRows {
		rows = p.minRows
	}

	p.mu.Lock()
	p.grid = resizeGrid(p.grid, p.cols, p.rows, cols, rows)
	p.cols, p.rows = cols, rows
	if p.cursorX >= cols {
		p.cursorX = cols - 1
	}
	if p.cursorY >= rows {
		p.cursorY = rows - 1
	}
	sess := p.session
	p.mu.Unlock()

	if sess != nil {
		_ = sess.Resize(uint16(cols), uint16(rows))
	}
}

func resizeGrid(old [][]rune, oldCols, oldRows, cols, rows int) [][]rune {
	g := newGrid(cols, rows)
	for y := 0; y < oldRows && y < rows; y++ {
		for x := 0; x < oldCols && x < cols; x++ {
			g[y][x] = old[y][x]
		}
	}
	return g
}

// paint redraws the pane's current buffer inside clip, the handler
// side of a WMPaint dispatch. The buffer is small enough that a full
// repaint within clip's bounds is simpler than tracking a separate
// damage region per pane.
func (p *Pane) paint(clip geom.Rect) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for y := 0; y < p.rows; y++ {
		if y < clip.Top || y >= clip.Bottom {
			continue
		}
		for x := 0; x < p.cols; x++ {
			if x < clip.Left || x >= clip.Right {
				continue
			}
			p.wm.SetCell(p.win, x, y, p.grid[y][x], winmgr.Style{Fg: winmgr.ColorDefault, Bg: winmgr.ColorDefault})
		}
	}
}

// keySequence translates a non-character key into the byte sequence a
// shell expects on its stdin. Key codes are backend-defined (see
// winmgr.Key.Code); termsurface passes tcell's own key constants
// through unchanged, so this pane reads them back as tcell constants.
// Only the handful of keys a shell's line editor actually consumes are
// covered; anything else is ignored.
func keySequence(kd winmgr.KeyData) string {
	switch tcell.Key(kd.Key) {
	case tcell.KeyEnter:
		return "\r"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "\x7f"
	case tcell.KeyTab:
		return "\t"
	case tcell.KeyUp:
		return "\x1b[A"
	case tcell.KeyDown:
		return "\x1b[B"
	case tcell.KeyRight:
		return "\x1b[C"
	case tcell.KeyLeft:
		return "\x1b[D"
	case tcell.KeyCtrlC:
		return "\x03"
	case tcell.KeyCtrlD:
		return "\x04"
	default:
		return ""
	}
}
