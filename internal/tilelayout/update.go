package tilelayout

import "github.com/mosaicwm/mosaic/internal/geom"

// Update applies pending size changes to every window in the tree. When
// async is true it only arms a deferred pass (coalescing any number of
// calls within the same message-queue turn into one apply), posting the
// manager's own message and returning immediately; the queue delivers it
// back to hostProc, which calls Update(false) to actually walk the tree.
func (m *Manager) Update(async bool) {
	if async {
		if !m.updatePending {
			m.wm.Queue().Post(m.handler, asyncUpdateMsg, nil)
			m.updatePending = true
		}
		return
	}
	m.updatePending = false

	hostRC := m.host.ScreenRect()
	m.applyLayout(m.root, geom.New(0, 0, hostRC.Width(), hostRC.Height()))
}

// applyLayout positions lay's splitter (if any) and recurses into its
// children, handing each the slice of rc its size entitles it to; a leaf
// repositions its client window to whatever remains after the splitter
// is carved off.
func (m *Manager) applyLayout(lay *Layout, rc geom.Rect) {
	rcL := rc
	if lay.splitter != nil && lay.parent != nil {
		if lay.parent.vert {
			m.wm.SetPos(lay.splitter, geom.New(rcL.Left, rcL.Top, rcL.Left+1, rcL.Bottom))
			rcL.Left++
		} else {
			m.wm.SetPos(lay.splitter, geom.New(rcL.Left, rcL.Top, rcL.Right, rcL.Top+1))
			rcL.Top++
		}
	}

	rcC := rcL
	for c := lay.child; c != nil; c = c.next {
		splitterSize := 0
		if c.splitter != nil {
			splitterSize = 1
		}
		if lay.vert {
			rcC.Right = rcC.Left + splitterSize + c.size
			m.applyLayout(c, rcC)
			rcC.Left = rcC.Right
		} else {
			rcC.Bottom = rcC.Top + splitterSize + c.size
			m.applyLayout(c, rcC)
			rcC.Top = rcC.Bottom
		}
	}

	if lay.client != nil {
		m.wm.SetPos(lay.client, rcL)
	}
}
