package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mosaicwm/mosaic/internal/logging"
	"github.com/mosaicwm/mosaic/internal/ptyshell"
	"github.com/mosaicwm/mosaic/internal/session"
	"github.com/mosaicwm/mosaic/internal/termsurface"
	"github.com/mosaicwm/mosaic/internal/tilelayout"
	"github.com/mosaicwm/mosaic/internal/winmgr"
)

// defaultWorkspace is the session name used when the user doesn't ask
// for a specific one, matching a single unnamed default session the
// way most terminal multiplexers behave before the user names anything.
const defaultWorkspace = "default"

// resizeEdgeStep is how many cells resize-grow/resize-shrink move an
// edge per keypress.
const resizeEdgeStep = 2

// Run drives the full interactive application: surface and window
// manager bring-up, session restore, a select-style single-threaded
// event loop, and autosave/session persistence on exit.
func Run(ctx context.Context, app *App, workspace string) error {
	log := logging.FromContext(ctx)
	if workspace == "" {
		workspace = defaultWorkspace
	}

	surf, err := termsurface.New()
	if err != nil {
		return fmt.Errorf("cli: new terminal surface: %w", err)
	}

	wm, err := winmgr.Init(ctx, surf)
	if err != nil {
		return fmt.Errorf("cli: init window manager: %w", err)
	}
	defer wm.Shutdown()

	lm := tilelayout.New(wm, wm.Root())
	defer lm.Close()

	cs := &commandState{
		ctx:     ctx,
		wm:      wm,
		lm:      lm,
		panes:   make(map[*winmgr.Window]*ptyshell.Pane),
		km:      newKeymap(app.Config.Keybindings),
		minW:    app.Config.Workspace.MinPaneWidth,
		minH:    app.Config.Workspace.MinPaneHeight,
		workDir: ".",
	}

	if snap, err := session.Load(ctx, app.DB, workspace); err == nil {
		if err := cs.restore(snap); err != nil {
			log.Warn().Err(err).Str("workspace", workspace).Msg("discarding unrestorable session, starting fresh")
			cs.panes = make(map[*winmgr.Window]*ptyshell.Pane)
		}
	}
	if lm.Root().Window() == nil && lm.Root().Child() == nil {
		if _, err := cs.spawnLeaf(lm.Root(), session.PaneRecord{PaneID: "0"}); err != nil {
			return fmt.Errorf("cli: spawn initial pane: %w", err)
		}
	}
	if w := firstLeafWindow(lm.Root()); w != nil {
		wm.SetFocus(w)
	}

	// A terminating signal still needs to unwind through the normal quit
	// path so the deferred wm.Shutdown restores the terminal and the
	// final-save block below runs, rather than leaving raw mode on and
	// the shell orphaned.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			log.Info().Msg("received interrupt, quitting")
			wm.Queue().Post(0, winmgr.WMQuit, nil)
		}
	}()

	var autosaver *session.Autosaver
	if app.Config.Session.AutoSaveOnExit {
		autosaver = session.NewAutosaver(func(fn func()) {
			time.AfterFunc(500*time.Millisecond, fn)
		}, func() {
			snap := session.Capture(wm, lm.Root())
			if err := session.Save(ctx, app.DB, workspace, snap, time.Now().Unix()); err != nil {
				log.Error().Err(err).Msg("autosave failed")
			}
		})
		cs.onChange = autosaver.NotifyChanged
		defer autosaver.Stop()
	}

	quit, err := cs.loop(ctx, surf)
	if quit && app.Config.Session.AutoSaveOnExit {
		snap := session.Capture(wm, lm.Root())
		if err := session.Save(ctx, app.DB, workspace, snap, time.Now().Unix()); err != nil {
			log.Error().Err(err).Msg("final save failed")
		}
	}
	return err
}

func firstLeafWindow(lay *tilelayout.Layout) *winmgr.Window {
	if w := lay.Window(); w != nil {
		return w
	}
	for c := lay.Child(); c != nil; c = c.Next() {
		if w := firstLeafWindow(c); w != nil {
			return w
		}
	}
	return nil
}

// loop is the select-driven event dispatcher: it polls the message
// queue, the surface's resize and key self-pipes, and every live
// pane's output self-pipe, handling whichever are ready each pass.
func (cs *commandState) loop(ctx context.Context, surf *termsurface.Surface) (quit bool, err error) {
	log := logging.FromContext(ctx)

	for {
		fds, owners := cs.pollSet(surf)
		n, perr := unix.Poll(fds, -1)
		if perr == unix.EINTR {
			continue
		}
		if perr != nil {
			return false, fmt.Errorf("cli: poll: %w", perr)
		}
		if n == 0 {
			continue
		}

		for i, pfd := range fds {
			if pfd.Revents&unix.POLLIN == 0 {
				continue
			}
			switch owner := owners[i].(type) {
			case queueOwner:
				if cs.drainQueue() {
					return true, nil
				}
			case resizeOwner:
				cs.wm.Resize()
			case keyOwner:
				cs.handleKeys(surf)
			case *ptyshell.Pane:
				owner.Drain()
			default:
				log.Warn().Int("fd", int(pfd.Fd)).Msg("unrecognized ready descriptor")
			}
		}
	}
}

type queueOwner struct{}
type resizeOwner struct{}
type keyOwner struct{}

func (cs *commandState) pollSet(surf *termsurface.Surface) ([]unix.PollFd, []any) {
	fds := []unix.PollFd{
		{Fd: int32(cs.wm.Queue().FD()), Events: unix.POLLIN},
		{Fd: int32(surf.ResizeFD()), Events: unix.POLLIN},
		{Fd: int32(surf.KeyFD()), Events: unix.POLLIN},
	}
	owners := []any{queueOwner{}, resizeOwner{}, keyOwner{}}

	for _, p := range cs.panes {
		fds = append(fds, unix.PollFd{Fd: int32(p.WakeFD()), Events: unix.POLLIN})
		owners = append(owners, p)
	}
	return fds, owners
}

// drainQueue pops and dispatches every pending message, reporting
// whether WMQuit was seen.
func (cs *commandState) drainQueue() bool {
	q := cs.wm.Queue()
	for {
		msg, ok := q.Get()
		if !ok {
			return false
		}
		if msg.ID == winmgr.WMQuit {
			return true
		}
		q.Dispatch(msg)
	}
}

// handleKeys drains every pending decoded key, running each through the
// configured keymap first; a key that neither completes nor continues a
// binding sequence goes to the focused pane. The key self-pipe is emptied
// before the keys are read, so a key arriving later signals KeyFD again.
func (cs *commandState) handleKeys(surf *termsurface.Surface) {
	var wake [64]byte
	for {
		if n, err := unix.Read(surf.KeyFD(), wake[:]); n <= 0 || err != nil {
			break
		}
	}
	for {
		k, ok := surf.ReadKey()
		if !ok {
			return
		}

		action, complete := cs.km.Feed(k)
		if complete {
			if cs.dispatch(action) {
				cs.wm.Queue().Post(0, winmgr.WMQuit, nil)
			}
			continue
		}
		if len(cs.km.pending) > 0 {
			// Mid-sequence: swallow the keystroke rather than also
			// forwarding it to the focused pane.
			continue
		}

		focus := cs.wm.Focus()
		if focus == nil {
			continue
		}
		if k.IsChar {
			cs.wm.Handlers().Call(focus.Handler(), winmgr.WMChar, winmgr.CharData{Text: string(k.Rune), Modifiers: k.Modifiers})
		} else {
			cs.wm.Handlers().Call(focus.Handler(), winmgr.WMKey, winmgr.KeyData{Key: k.Code, Modifiers: k.Modifiers})
		}
	}
}
