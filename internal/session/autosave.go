package session

import "sync"

// Debouncer merges a burst of same-key triggers into a single deferred
// call. A tiling session fires a save-worthy event (split, close, resize
// settle) many times per second while the user is actively rearranging
// panes; without coalescing, autosave would serialize the whole tree and
// hit the database on every single one of them.
type Debouncer struct {
	mu        sync.Mutex
	pending   map[string]bool
	callbacks map[string]func()
	post      func(func())
	destroyed bool
}

// NewDebouncer returns a Debouncer that schedules its deferred calls
// through post — typically time.AfterFunc for a fixed settle delay, or a
// message-queue Post so the save actually runs on the window manager's
// own dispatch thread instead of a timer goroutine.
func NewDebouncer(post func(func())) *Debouncer {
	if post == nil {
		panic("session.NewDebouncer: post function cannot be nil")
	}

	return &Debouncer{
		pending:   make(map[string]bool),
		callbacks: make(map[string]func()),
		post:      post,
	}
}

// Post schedules fn under key. If a call under the same key is already
// pending, fn replaces the callback that will eventually run (the latest
// state wins) without scheduling a second deferred call.
func (d *Debouncer) Post(key string, fn func()) {
	if fn == nil || key == "" {
		return
	}

	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	d.callbacks[key] = fn
	if d.pending[key] {
		d.mu.Unlock()
		return
	}
	d.pending[key] = true
	post := d.post
	d.mu.Unlock()

	post(func() {
		d.mu.Lock()
		if d.destroyed {
			delete(d.pending, key)
			delete(d.callbacks, key)
			d.mu.Unlock()
			return
		}
		fn := d.callbacks[key]
		delete(d.pending, key)
		delete(d.callbacks, key)
		d.mu.Unlock()

		if fn != nil {
			fn()
		}
	})
}

// Destroy drops any pending, not-yet-run callbacks and makes all further
// Post calls no-ops. Call it once the session is shutting down so a
// straggling debounced save doesn't run against a torn-down tree.
func (d *Debouncer) Destroy() {
	d.mu.Lock()
	d.destroyed = true
	d.pending = map[string]bool{}
	d.callbacks = map[string]func(){}
	d.mu.Unlock()
}

// autosaveKey is the single key used for every layout-changed trigger:
// there is only ever one tree to save per workspace, so unlike a
// key-per-query debounce this always collapses to at most one pending
// write regardless of how many distinct panes changed.
const autosaveKey = "autosave"

// Autosaver debounces repeated layout-changed notifications into at most
// one save per settle window, then hands the coalesced save off to save.
type Autosaver struct {
	debounce *Debouncer
	save     func()
}

// NewAutosaver wraps save (typically a closure that captures the window
// manager, the layout tree, and the target workspace name) in debounced
// scheduling via post.
func NewAutosaver(post func(func()), save func()) *Autosaver {
	return &Autosaver{debounce: NewDebouncer(post), save: save}
}

// NotifyChanged arms (or refreshes) the pending debounced save. Call
// this from every layout-mutating operation — split, close, move-edge,
// resize settle.
func (a *Autosaver) NotifyChanged() {
	a.debounce.Post(autosaveKey, a.save)
}

// Stop cancels any pending debounced save.
func (a *Autosaver) Stop() {
	a.debounce.Destroy()
}
