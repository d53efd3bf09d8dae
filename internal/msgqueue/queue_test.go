package msgqueue

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func isReadable(t *testing.T, fd int) bool {
	t.Helper()
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	require.NoError(t, err)
	return n > 0
}

func TestPostGetFIFO(t *testing.T) {
	h := NewHandlers()
	var got []int
	handler := h.Create(func(id int, data any) uintptr {
		got = append(got, id)
		return 0
	})

	q, err := Init(h)
	require.NoError(t, err)
	defer q.Shutdown()

	q.Post(handler, 1, nil)
	q.Post(handler, 2, nil)
	q.Post(handler, 3, nil)

	for i := 0; i < 3; i++ {
		m, ok := q.Get()
		require.True(t, ok)
		q.Dispatch(m)
	}
	_, ok := q.Get()
	require.False(t, ok)

	require.Equal(t, []int{1, 2, 3}, got)
}

func TestPipeSignalsOnlyOnEmptyToNonEmpty(t *testing.T) {
	h := NewHandlers()
	handler := h.Create(func(id int, data any) uintptr { return 0 })
	q, err := Init(h)
	require.NoError(t, err)
	defer q.Shutdown()

	require.False(t, isReadable(t, q.FD()))

	q.Post(handler, 1, nil)
	require.True(t, isReadable(t, q.FD()))

	q.Post(handler, 2, nil) // still non-empty, must not write a second byte
	require.True(t, isReadable(t, q.FD()))

	q.Get()
	require.True(t, isReadable(t, q.FD())) // one item still queued

	q.Get()
	require.False(t, isReadable(t, q.FD())) // drained, byte consumed
}

func TestHookClaimsReadiness(t *testing.T) {
	h := NewHandlers()
	client := h.Create(func(id int, data any) uintptr { return 0 })
	claim := true
	hook := h.Create(func(id int, data any) uintptr {
		if id != MReadable {
			return 0
		}
		if claim {
			return 1
		}
		return 0
	})

	q, err := Init(h)
	require.NoError(t, err)
	defer q.Shutdown()
	q.SetHook(hook)

	q.Post(client, 1, nil)
	q.Get() // drains to empty; hook claims readiness
	require.True(t, isReadable(t, q.FD()))

	claim = false
	q.Post(client, 2, nil)
	q.Get() // drains to empty; hook does not claim
	require.False(t, isReadable(t, q.FD()))
}

func TestStaleHandlerIsNoop(t *testing.T) {
	h := NewHandlers()
	called := false
	handler := h.Create(func(id int, data any) uintptr {
		called = true
		return 0
	})
	h.Destroy(handler)

	q, err := Init(h)
	require.NoError(t, err)
	defer q.Shutdown()

	q.Post(handler, 1, nil)
	m, ok := q.Get()
	require.True(t, ok)
	q.Dispatch(m)
	require.False(t, called)
}
