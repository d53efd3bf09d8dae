package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mosaicwm/mosaic/internal/ptyshell"
	"github.com/mosaicwm/mosaic/internal/session"
	"github.com/mosaicwm/mosaic/internal/tilelayout"
	"github.com/mosaicwm/mosaic/internal/winmgr"
)

// commandState is the application's keyboard command dispatcher: no
// package-level globals, every dependency it needs to act on the tree
// lives on the struct, dispatching through a table of named actions
// driven by config.Keybindings rather than a fixed switch of command
// codes.
type commandState struct {
	ctx context.Context
	wm  *winmgr.Manager
	lm  *tilelayout.Manager

	panes map[*winmgr.Window]*ptyshell.Pane
	km    *keymap

	minW, minH int
	workDir    string

	paneSeq int

	onChange func()
}

// dispatch runs action (one produced by keymap.Feed) against the
// current tree and focus. It returns true when action is "quit".
func (cs *commandState) dispatch(action string) bool {
	switch action {
	case "quit":
		return true
	case "split-right":
		cs.split(tilelayout.DirRight)
	case "split-left":
		cs.split(tilelayout.DirLeft)
	case "split-up":
		cs.split(tilelayout.DirUp)
	case "split-down":
		cs.split(tilelayout.DirDown)
	case "close-pane":
		cs.closeFocused()
	case "focus-left":
		cs.navigate(tilelayout.DirLeft)
	case "focus-right":
		cs.navigate(tilelayout.DirRight)
	case "focus-up":
		cs.navigate(tilelayout.DirUp)
	case "focus-down":
		cs.navigate(tilelayout.DirDown)
	case "focus-next":
		cs.navigateOrdered()
	case "resize-grow":
		cs.resize(resizeEdgeStep)
	case "resize-shrink":
		cs.resize(-resizeEdgeStep)
	}
	return false
}

func (cs *commandState) focusedLayout() *tilelayout.Layout {
	w := cs.wm.Focus()
	if w == nil {
		return nil
	}
	return cs.lm.Find(w)
}

func (cs *commandState) split(dir tilelayout.Direction) {
	lay := cs.focusedLayout()
	if lay == nil {
		lay = cs.lm.Root()
	}

	cs.paneSeq++
	w, err := cs.spawnLeaf(nil, session.PaneRecord{PaneID: fmt.Sprint(cs.paneSeq), WorkingDir: cs.workDir})
	if err != nil {
		return
	}

	next := tilelayout.Split(lay, w, true, tilelayout.SizeHalf, dir)
	if next == nil {
		cs.wm.Destroy(w)
		return
	}
	cs.wm.SetFocus(w)
	cs.notifyChanged()
}

func (cs *commandState) closeFocused() {
	lay := cs.focusedLayout()
	if lay == nil {
		return
	}
	w := lay.Window()
	if w != nil {
		delete(cs.panes, w)
	}
	tilelayout.Close(lay)
	if w != nil {
		cs.wm.Destroy(w)
	}
	cs.notifyChanged()
}

func (cs *commandState) navigate(dir tilelayout.Direction) {
	lay := cs.focusedLayout()
	if lay == nil {
		return
	}
	w := lay.Window()
	if w == nil {
		return
	}
	rc := w.ScreenRect()
	x, y := (rc.Left+rc.Right)/2, (rc.Top+rc.Bottom)/2

	if target := tilelayout.NavigateDir(lay, x, y, dir); target != nil {
		if tw := target.Window(); tw != nil {
			cs.wm.SetFocus(tw)
		}
	}
}

func (cs *commandState) navigateOrdered() {
	lay := cs.focusedLayout()
	if lay == nil {
		return
	}
	if target := tilelayout.NavigateOrdered(lay, true); target != nil {
		if tw := target.Window(); tw != nil {
			cs.wm.SetFocus(tw)
		}
	}
}

func (cs *commandState) resize(delta int) {
	lay := cs.focusedLayout()
	if lay == nil {
		return
	}
	if tilelayout.MoveEdge(lay, delta, tilelayout.DirRight) {
		cs.notifyChanged()
		return
	}
	if tilelayout.MoveEdge(lay, delta, tilelayout.DirDown) {
		cs.notifyChanged()
	}
}

func (cs *commandState) notifyChanged() {
	if cs.onChange != nil {
		cs.onChange()
	}
}

// spawnLeaf creates a pty-backed pane handler and either sets it as
// lay's window (lay non-nil, typically an empty root or a Restore
// placeholder) or just returns the window for the caller to Split in.
func (cs *commandState) spawnLeaf(lay *tilelayout.Layout, rec session.PaneRecord) (*winmgr.Window, error) {
	pane := ptyshell.NewPane(cs.ctx, cs.wm, rec)
	pane.SetMinSize(cs.minW, cs.minH)
	h := cs.wm.Handlers().Create(pane.Handle)

	w, err := cs.lm.CreateLeaf(h, 0)
	if err != nil {
		return nil, err
	}
	if lay != nil && !tilelayout.SetWindow(lay, w) {
		cs.wm.Destroy(w)
		return nil, fmt.Errorf("cli: set window on layout refused")
	}

	cs.panes[w] = pane
	return w, nil
}

// restore replays a saved tree via session.Restore, wiring a fresh
// ptyshell.Pane for each leaf from its PaneRecord.
func (cs *commandState) restore(snap session.LayoutSnapshot) error {
	newLeaf := func(rec *session.PaneRecord) (*winmgr.Window, error) {
		r := session.PaneRecord{WorkingDir: cs.workDir}
		if rec != nil {
			r = *rec
		}
		pane := ptyshell.NewPane(cs.ctx, cs.wm, r)
		pane.SetMinSize(cs.minW, cs.minH)
		h := cs.wm.Handlers().Create(pane.Handle)
		w, err := cs.lm.CreateLeaf(h, 0)
		if err != nil {
			return nil, err
		}
		cs.panes[w] = pane
		return w, nil
	}

	if err := session.Restore(cs.wm, cs.lm, snap, newLeaf); err != nil {
		return err
	}
	cs.seedPaneSeq()
	return nil
}

// seedPaneSeq advances paneSeq past every numeric pane ID already in
// use, so a split created after a restore can't mint an ID that
// collides with a restored pane.
func (cs *commandState) seedPaneSeq() {
	for _, p := range cs.panes {
		if n, err := strconv.Atoi(p.Record().PaneID); err == nil && n > cs.paneSeq {
			cs.paneSeq = n
		}
	}
}
