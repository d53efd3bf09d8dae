package msgqueue

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MUser is the first ID reserved for this package's own synthetic events;
// mirrors the C queue's MM_USER/MM_READABLE reserved range.
const (
	MUser     = 0xff00
	MReadable = MUser + 1
)

// Message is one FIFO entry: a target handler, a message ID, and an
// opaque payload. Unlike the fixed-width C queue_item, Go payloads are
// typed values (interface{}) — there is no fixed-width memcpy contract to
// honor in a memory-safe language, so the queue stores payloads directly
// instead of requiring a caller-supplied buffer width at Init.
type Message struct {
	Handler Handler
	ID      int
	Data    any
}

type queueItem struct {
	msg  Message
	next *queueItem
}

// Queue is the single process-wide FIFO of posted messages. It exposes a
// self-pipe readable descriptor for an external select/poll loop: the
// write end gets one byte whenever the queue transitions from empty to
// non-empty, and the read end is drained to one byte whenever the queue
// empties back out, so the descriptor is readable iff there is work
// pending (or a readable hook claims there still is).
type Queue struct {
	handlers *Handlers

	first, last *queueItem

	r, w int

	readable bool // true iff we have written an unconsumed byte to w
	hook     Handler
}

// Init creates the queue and its self-pipe. The handlers table is shared
// with whatever owns Handler identities (typically the window manager).
func Init(handlers *Handlers) (*Queue, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("msgqueue: create self-pipe: %w", err)
	}
	return &Queue{handlers: handlers, r: fds[0], w: fds[1]}, nil
}

// Shutdown drains and frees all pending items and closes the self-pipe.
func (q *Queue) Shutdown() {
	q.first = nil
	q.last = nil
	_ = unix.Close(q.r)
	_ = unix.Close(q.w)
}

// FD returns the read end of the self-pipe for the application's
// selector to watch for readability.
func (q *Queue) FD() int {
	return q.r
}

// SetHook registers a handler to receive the synthetic MReadable id
// whenever the queue drains to empty. If the hook's return value is
// non-zero, the pipe is left (or made) readable so the next poll
// immediately re-enters Get; this is how the window manager's deferred
// paint pass gets invoked at message-queue idle.
func (q *Queue) SetHook(h Handler) {
	q.hook = h
}

func (q *Queue) signalReadable() {
	if q.readable {
		return
	}
	q.readable = true
	var b [1]byte
	_, _ = unix.Write(q.w, b[:])
}

func (q *Queue) consumeReadable() {
	if !q.readable {
		return
	}
	q.readable = false
	var b [1]byte
	_, _ = unix.Read(q.r, b[:])
}

// Post appends a message to the tail of the queue. If this transitions
// the queue from empty to non-empty, one wakeup byte is written to the
// self-pipe; the pipe is never given more than one outstanding byte.
func (q *Queue) Post(h Handler, id int, data any) {
	item := &queueItem{msg: Message{Handler: h, ID: id, Data: data}}
	wasEmpty := q.first == nil
	if wasEmpty {
		q.first = item
	} else {
		q.last.next = item
	}
	q.last = item
	if wasEmpty {
		q.signalReadable()
	}
}

// Get pops the head message. When this empties the queue, the readable
// hook (if any) is consulted: if it claims readiness (non-zero return)
// the pipe stays signalled, otherwise the wakeup byte is consumed so the
// next select call blocks.
func (q *Queue) Get() (Message, bool) {
	item := q.first
	if item == nil {
		return Message{}, false
	}
	q.first = item.next
	if q.first == nil {
		q.last = nil
		claimed := q.handlers != nil && q.hook != Handler(0) && q.handlers.Call(q.hook, MReadable, nil) != 0
		if !claimed {
			q.consumeReadable()
		}
	}
	return item.msg, true
}

// Dispatch calls the target handler with the message's id and data.
func (q *Queue) Dispatch(m Message) uintptr {
	if q.handlers == nil {
		return 0
	}
	return q.handlers.Call(m.Handler, m.ID, m.Data)
}
