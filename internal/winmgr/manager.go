package winmgr

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mosaicwm/mosaic/internal/geom"
	"github.com/mosaicwm/mosaic/internal/logging"
	"github.com/mosaicwm/mosaic/internal/msgqueue"
)

const (
	defaultMinWidth  = 20
	defaultMinHeight = 2
)

// Manager owns the window tree, the message queue's handler table, focus
// state, and the terminal surface. It is the single process-wide window
// manager instance; it runs single-threaded and lock-free off one
// message queue, so Manager holds no mutex.
type Manager struct {
	ctx context.Context

	surface  Surface
	handlers *msgqueue.Handlers
	queue    *msgqueue.Queue

	root *Window

	focus *Window

	invalid  bool
	readable msgqueue.Handler
}

// Init initializes the message queue and the terminal surface in
// parallel (they share no state, so there's nothing to gain by
// serializing them), queries the surface's size, and creates the root
// window wrapping the full-screen surface. If either independent
// initializer fails, the other's partial state is torn down and the
// first error is returned.
func Init(ctx context.Context, surface Surface) (*Manager, error) {
	log := logging.FromContext(ctx)

	var handlers *msgqueue.Handlers
	var queue *msgqueue.Queue
	var surfaceReady bool

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		handlers = msgqueue.NewHandlers()
		q, err := msgqueue.Init(handlers)
		if err != nil {
			return fmt.Errorf("winmgr: init message queue: %w", err)
		}
		queue = q
		return nil
	})
	g.Go(func() error {
		if err := surface.Init(); err != nil {
			return fmt.Errorf("winmgr: init surface: %w", err)
		}
		surfaceReady = true
		return nil
	})
	if err := g.Wait(); err != nil {
		if queue != nil {
			queue.Shutdown()
		}
		if surfaceReady {
			surface.Shutdown()
		}
		return nil, err
	}

	m := &Manager{ctx: ctx, surface: surface, handlers: handlers, queue: queue}

	cols, rows := surface.Size()
	rootRect := geom.New(0, 0, cols, rows)

	rootHandler := handlers.Create(func(id int, data any) uintptr { return 0 })
	root, err := m.createWindowScreen(nil, rootRect, rootHandler, 0, true)
	if err != nil {
		surface.Shutdown()
		queue.Shutdown()
		return nil, fmt.Errorf("winmgr: create root window: %w", err)
	}
	m.root = root

	m.readable = handlers.Create(func(id int, data any) uintptr {
		if id != msgqueue.MReadable {
			return 0
		}
		return boolToUint(m.paintIdle())
	})
	queue.SetHook(m.readable)

	log.Debug().Int("cols", cols).Int("rows", rows).Msg("winmgr initialized")
	return m, nil
}

func boolToUint(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}

// Shutdown destroys the root (cascading through all descendants),
// restores nothing signal-related here (left to the caller's surface),
// and tears down the surface and queue.
func (m *Manager) Shutdown() {
	if m.root != nil {
		m.Destroy(m.root)
		m.root = nil
	}
	m.surface.Shutdown()
	m.queue.Shutdown()
}

// Root returns the root window.
func (m *Manager) Root() *Window { return m.root }

// Queue returns the shared message queue, for the application's select
// loop to watch (m.Queue().FD()) and drain (Get/Dispatch).
func (m *Manager) Queue() *msgqueue.Queue { return m.queue }

// Handlers returns the shared handler table.
func (m *Manager) Handlers() *msgqueue.Handlers { return m.handlers }

// CreateWindow allocates a new window under parent. rc is parent-relative;
// a nil rc creates a 1x1 window with no backing surface (a container).
// The rectangle is clipped to the screen; a backing cell surface is
// allocated sized to the clipped rectangle when rc is non-nil.
func (m *Manager) CreateWindow(parent *Window, rc *geom.Rect, h msgqueue.Handler, id int) (*Window, error) {
	if parent == nil {
		parent = m.root
	}

	hasSurface := rc != nil
	var screenRect geom.Rect
	if rc == nil {
		screenRect = geom.New(parent.rect.Left, parent.rect.Top, parent.rect.Left+1, parent.rect.Top+1)
	} else {
		screenRect = rc.Offset(parent.rect.Left, parent.rect.Top)
	}

	return m.createWindowScreen(parent, screenRect, h, id, hasSurface)
}

func (m *Manager) createWindowScreen(parent *Window, screenRect geom.Rect, h msgqueue.Handler, id int, hasSurface bool) (*Window, error) {
	clipped := screenRect
	if parent != nil {
		if c, ok := geom.Intersect(screenRect, parent.rect); ok {
			clipped = c
		} else {
			clipped = geom.Rect{}
		}
	}

	w := &Window{mgr: m, rect: clipped, visible: true, id: id, handler: h, hasSurface: hasSurface}

	if hasSurface {
		cell, ok := m.surface.AllocCellWindow(clipped)
		if !ok {
			return nil, fmt.Errorf("winmgr: surface refused cell window %v", clipped)
		}
		w.cell = cell
	}

	if parent != nil {
		parent.appendChild(w)
	}

	m.handlers.Call(h, WMCreate, CreateData{Window: w})
	m.Invalidate(w)

	return w, nil
}

// Destroy recursively destroys children first, dispatches WMDestroy,
// unlinks from the parent, and frees the backing surface.
func (m *Manager) Destroy(w *Window) {
	for c := w.firstChild; c != nil; {
		next := c.nextSibling
		m.Destroy(c)
		c = next
	}

	m.handlers.Call(w.handler, WMDestroy, nil)

	if m.focus == w {
		m.focus = nil
	}

	w.unlinkFromParent()

	if w.hasSurface {
		m.surface.FreeCellWindow(w.cell)
	}
	m.handlers.Destroy(w.handler)
}

// SetHandler replaces w's handler and returns the previous one, enabling
// handler-chaining (the decorator/subclass pattern): the new handler
// typically stores hOld and forwards to it explicitly after its own
// logic.
func (m *Manager) SetHandler(w *Window, h msgqueue.Handler) msgqueue.Handler {
	old := w.handler
	w.handler = h
	return old
}

// FindWindow is window_find_window: linear search of w's direct children.
func (m *Manager) FindWindow(w *Window, id int) *Window {
	return w.FindWindow(id)
}

// MinSize queries w's minimum size via WMGetMinSize, starting from the
// package defaults (20x2) which the handler may shrink.
func (m *Manager) MinSize(w *Window) (width, height int) {
	width, height = defaultMinWidth, defaultMinHeight
	m.handlers.Call(w.handler, WMGetMinSize, MinSizeData{Width: &width, Height: &height})
	return width, height
}

// SetVisible toggles a window's visibility flag.
func (m *Manager) SetVisible(w *Window, visible bool) {
	w.visible = visible
}

// SetCell writes one glyph into w's own cell buffer at window-local
// (x,y). A no-op on windows with no backing surface.
func (m *Manager) SetCell(w *Window, x, y int, ch rune, style Style) bool {
	if !w.hasSurface {
		return false
	}
	return m.surface.SetCell(w.cell, x, y, ch, style)
}
