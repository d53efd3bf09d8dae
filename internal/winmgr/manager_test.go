package winmgr

import (
	"context"
	"testing"

	"github.com/mosaicwm/mosaic/internal/geom"
	"github.com/mosaicwm/mosaic/internal/msgqueue"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, cols, rows int) (*Manager, *fakeSurface) {
	t.Helper()
	surf := newFakeSurface(cols, rows)
	m, err := Init(context.Background(), surf)
	require.NoError(t, err)
	t.Cleanup(m.Shutdown)
	return m, surf
}

func TestInitCreatesRootCoveringScreen(t *testing.T) {
	m, _ := newTestManager(t, 80, 24)
	require.Equal(t, geom.New(0, 0, 80, 24), m.Root().ScreenRect())
}

func TestInvalidateCascadeEmitsOnePaintPerLeaf(t *testing.T) {
	m, _ := newTestManager(t, 80, 24)

	var painted []int
	mkLeaf := func(id int, rc geom.Rect) *Window {
		h := m.Handlers().Create(func(msgID int, data any) uintptr {
			if msgID == WMPaint {
				painted = append(painted, id)
			}
			return 0
		})
		w, err := m.CreateWindow(m.Root(), &rc, h, id)
		require.NoError(t, err)
		return w
	}

	left := mkLeaf(1, geom.New(0, 0, 40, 24))
	right := mkLeaf(2, geom.New(40, 0, 80, 24))
	painted = nil // ignore the WMCreate-triggered invalidate noise from setup

	m.Invalidate(m.Root())
	require.True(t, left.invalid)
	require.True(t, right.invalid)

	m.handlers.Call(m.readable, msgqueue.MReadable, nil)
	require.Equal(t, []int{1, 2}, painted)
	require.False(t, left.invalid)
	require.False(t, right.invalid)
}

func TestSetPosRejectsEmptyClipForNonRoot(t *testing.T) {
	m, _ := newTestManager(t, 80, 24)
	h := m.Handlers().Create(func(int, any) uintptr { return 0 })
	rc := geom.New(0, 0, 10, 10)
	w, err := m.CreateWindow(m.Root(), &rc, h, 1)
	require.NoError(t, err)

	ok := m.SetPos(w, geom.New(200, 200, 210, 210))
	require.False(t, ok)
}

func TestSetPosDispatchesPosChangedWithResizedFlag(t *testing.T) {
	m, _ := newTestManager(t, 80, 24)
	var got *PosChangedData
	h := m.Handlers().Create(func(id int, data any) uintptr {
		if id == WMPosChanged {
			d := data.(PosChangedData)
			got = &d
		}
		return 0
	})
	rc := geom.New(0, 0, 10, 10)
	w, err := m.CreateWindow(m.Root(), &rc, h, 1)
	require.NoError(t, err)

	got = nil
	require.True(t, m.SetPos(w, geom.New(0, 0, 20, 10)))
	require.NotNil(t, got)
	require.True(t, got.Resized)

	got = nil
	require.True(t, m.SetPos(w, geom.New(5, 0, 25, 10)))
	require.NotNil(t, got)
	require.False(t, got.Resized)
}

func TestSetPosTranslatesDescendants(t *testing.T) {
	m, _ := newTestManager(t, 80, 24)
	noopH := m.Handlers().Create(func(int, any) uintptr { return 0 })

	parentRC := geom.New(0, 0, 40, 20)
	parent, err := m.CreateWindow(m.Root(), &parentRC, noopH, 1)
	require.NoError(t, err)

	childRC := geom.New(2, 2, 10, 10)
	child, err := m.CreateWindow(parent, &childRC, noopH, 2)
	require.NoError(t, err)
	require.Equal(t, geom.New(2, 2, 10, 10), child.Rect())

	require.True(t, m.SetPos(parent, geom.New(5, 5, 45, 25)))
	require.Equal(t, geom.New(2, 2, 10, 10), child.Rect(), "child's parent-relative rect is unchanged")
	require.Equal(t, geom.New(7, 7, 15, 15), child.ScreenRect(), "child's screen rect shifts by the same delta as its parent")
}

func TestFocusDispatchesLoseAndSetFocus(t *testing.T) {
	m, _ := newTestManager(t, 80, 24)
	var events []string
	mk := func(name string) *Window {
		h := m.Handlers().Create(func(id int, data any) uintptr {
			switch id {
			case WMSetFocus:
				events = append(events, name+":set")
			case WMLoseFocus:
				events = append(events, name+":lose")
			}
			return 0
		})
		rc := geom.New(0, 0, 1, 1)
		w, err := m.CreateWindow(m.Root(), &rc, h, 0)
		require.NoError(t, err)
		return w
	}

	a := mk("a")
	b := mk("b")

	m.SetFocus(a)
	m.SetFocus(b)
	require.Equal(t, []string{"a:set", "a:lose", "b:set"}, events)
	require.Equal(t, b, m.Focus())
}

func TestResizeCascadesRootRect(t *testing.T) {
	m, surf := newTestManager(t, 80, 24)
	surf.setSize(100, 30)
	m.Resize()
	require.Equal(t, geom.New(0, 0, 100, 30), m.Root().ScreenRect())
}

func TestDestroyDispatchesDestroyBeforeUnlink(t *testing.T) {
	m, _ := newTestManager(t, 80, 24)
	destroyed := false
	h := m.Handlers().Create(func(id int, data any) uintptr {
		if id == WMDestroy {
			destroyed = true
		}
		return 0
	})
	rc := geom.New(0, 0, 1, 1)
	w, err := m.CreateWindow(m.Root(), &rc, h, 7)
	require.NoError(t, err)

	m.Destroy(w)
	require.True(t, destroyed)
	require.Nil(t, m.Root().FindWindow(7))
}

func TestMinSizeDefaultsAndHandlerShrink(t *testing.T) {
	m, _ := newTestManager(t, 80, 24)
	h := m.Handlers().Create(func(id int, data any) uintptr {
		if id == WMGetMinSize {
			d := data.(MinSizeData)
			*d.Width = 5
		}
		return 0
	})
	rc := geom.New(0, 0, 1, 1)
	w, err := m.CreateWindow(m.Root(), &rc, h, 0)
	require.NoError(t, err)

	width, height := m.MinSize(w)
	require.Equal(t, 5, width)
	require.Equal(t, defaultMinHeight, height)
}
