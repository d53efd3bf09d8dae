package session

// PaneRecord is the application-level identity attached to a leaf's
// client window: what command it runs and where, independent of its
// current position in the tree. A leaf without a PaneRecord (a handler
// that does not answer MsgGetUserData) round-trips with Pane == nil.
type PaneRecord struct {
	PaneID     string `json:"pane_id"`
	Command    string `json:"command"`
	WorkingDir string `json:"working_dir"`
}

// LayoutSnapshot is a serializable mirror of one tilelayout.Layout node.
// Vert is the node's flow flag with the same meaning as
// tilelayout.Layout.Vert (true: children laid out left to right).
type LayoutSnapshot struct {
	Vert        bool             `json:"vert"`
	Size        int              `json:"size"`
	Pct         float64          `json:"pct"`
	HasSplitter bool             `json:"has_splitter"`
	Pane        *PaneRecord      `json:"pane,omitempty"`
	Children    []LayoutSnapshot `json:"children,omitempty"`
}

// IsLeaf reports whether this snapshot node held a client window rather
// than child containers.
func (s LayoutSnapshot) IsLeaf() bool { return len(s.Children) == 0 }
