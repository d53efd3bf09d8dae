// Package winmgr implements the retained-mode window tree: parent/child
// geometry, damage tracking, paint scheduling, focus routing, and resize
// propagation, all dispatched through the msgqueue handler contract.
package winmgr

import "github.com/mosaicwm/mosaic/internal/geom"

// Message IDs. Values below WMUser are reserved system events; WMUser and
// above are available to embedders (MsgGetUserData below is WMUser
// itself; tilelayout posts its private update message at WMUser+0x2000).
const (
	WMCreate = iota + 1
	WMDestroy
	WMPaint
	WMPosChanged
	WMGetMinSize
	WMSetFocus
	WMLoseFocus
	WMChar
	WMKey
	WMQuit
	WMUser = 0x1000
)

// MsgGetUserData is a convention reserved for embedders that want to
// query a handler's backing struct via handler_call rather than keeping
// a separate side table of their own; the window manager itself never
// sends it.
const MsgGetUserData = WMUser

// Modifier bits for WMChar/WMKey payloads.
const (
	ModShift = 1 << 0
	ModAlt   = 1 << 1
	ModCtrl  = 1 << 2
)

// CreateData is the WMCreate payload: the newly created window.
type CreateData struct {
	Window *Window
}

// PosChangedData is the WMPosChanged payload.
type PosChangedData struct {
	RectOld, RectNew geom.Rect
	Resized          bool
}

// FocusChangeData is the WMSetFocus/WMLoseFocus payload: the other window
// involved in the focus transition (the window losing focus, when
// delivered as WMSetFocus; the window gaining focus, when delivered as
// WMLoseFocus).
type FocusChangeData struct {
	Other *Window
}

// MinSizeData is the WMGetMinSize payload. Width/Height arrive preset to
// the window manager's defaults (20x2); a handler overwrites them with
// its own minimum, which may be smaller or larger.
type MinSizeData struct {
	Width, Height *int
}

// CharData is the WMChar payload: decoded UTF-8 text input.
type CharData struct {
	Text      string
	Modifiers int
}

// KeyData is the WMKey payload: a non-character key event.
type KeyData struct {
	Key       int
	Modifiers int
}

// PaintData is the WMPaint payload: the rectangle (window-relative) that
// needs to be repainted.
type PaintData struct {
	Clip geom.Rect
}
