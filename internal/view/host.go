package view

import "sync"

// Factory builds an unmounted view. reload remounts the route of the view
// it is handed to and is a no-op once that view has been replaced.
type Factory func(reload func()) View

// Host owns the single mounted view of a browser session.
type Host struct {
	mu      sync.Mutex
	current View
	factory Factory
	shown   bool
	closed  bool
}

// Show returns a mounted view for route. A view for the same route that
// has not been shown yet (the product of a reload) is reused; otherwise
// the current view is unmounted and a fresh one is mounted.
func (h *Host) Show(route string, f Factory) View {
	h.mu.Lock()
	if !h.closed && h.current != nil && h.current.Route() == route && !h.shown {
		h.shown = true
		v := h.current
		h.mu.Unlock()
		return v
	}
	prev := h.current
	v := h.build(f)
	h.shown = true
	h.closed = false
	h.mu.Unlock()

	if prev != nil {
		prev.Unmount()
	}
	v.Mount()
	return v
}

// Current returns the mounted view, or nil.
func (h *Host) Current() View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Reload discards the current view and mounts a fresh instance of its route.
func (h *Host) Reload() {
	h.reloadFrom(nil)
}

func (h *Host) reloadFrom(origin View) {
	h.mu.Lock()
	if h.closed || h.current == nil || (origin != nil && h.current != origin) {
		h.mu.Unlock()
		return
	}
	prev := h.current
	v := h.build(h.factory)
	h.shown = false
	h.mu.Unlock()

	prev.Unmount()
	v.Mount()
}

// build creates and installs a view. Caller holds h.mu.
func (h *Host) build(f Factory) View {
	var v View
	v = f(func() { h.reloadFrom(v) })
	h.current = v
	h.factory = f
	return v
}

// Close unmounts the current view. Reloads requested afterwards are ignored.
func (h *Host) Close() {
	h.mu.Lock()
	prev := h.current
	h.current = nil
	h.closed = true
	h.mu.Unlock()

	if prev != nil {
		prev.Unmount()
	}
}
