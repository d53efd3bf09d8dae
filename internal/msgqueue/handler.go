package msgqueue

import "github.com/mosaicwm/mosaic/internal/handle"

// HandlerProc processes a message addressed to a handler. id is the
// message ID, data is the message payload (nil for payload-less
// messages). The return value is an opaque result the caller may
// interpret (e.g. a min-size query writes through data instead of using
// the return value).
type HandlerProc func(id int, data any) uintptr

type handlerEntry struct {
	proc HandlerProc
}

// Handlers is the process-wide table mapping Handler handles to
// (user-proc) pairs, mirroring the C handler_create/destroy/call trio
// built atop the same generational handle table as window handles.
type Handlers struct {
	table *handle.Table[*handlerEntry]
}

// NewHandlers returns an empty handler table.
func NewHandlers() *Handlers {
	return &Handlers{table: handle.New[*handlerEntry]()}
}

// Handler is the generational identifier for a registered handler proc.
type Handler = handle.Handle

// Create registers proc and returns a handle addressing it.
func (h *Handlers) Create(proc HandlerProc) Handler {
	return h.table.Alloc(&handlerEntry{proc: proc})
}

// Destroy releases the handler's slot. Subsequent Call on the same
// handle becomes a no-op.
func (h *Handlers) Destroy(handler Handler) {
	h.table.Free(handler)
}

// Call invokes the handler's proc with (id, data). A stale or zero
// handle resolves to a no-op returning 0, matching the C contract where
// a null handler_call is harmless.
func (h *Handlers) Call(handler Handler, id int, data any) uintptr {
	e, ok := h.table.Resolve(handler)
	if !ok || e.proc == nil {
		return 0
	}
	return e.proc(id, data)
}
