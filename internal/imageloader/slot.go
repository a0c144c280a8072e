package imageloader

import "sync"

// Slot is a display position holding at most one handle. Installing a new
// handle releases the one it supersedes.
type Slot struct {
	mu       sync.Mutex
	registry *Registry
	current  *Handle
}

// NewSlot creates an empty slot whose handles live in r.
func NewSlot(r *Registry) *Slot {
	return &Slot{registry: r}
}

// Set installs h, revoking the previous handle.
func (s *Slot) Set(h *Handle) {
	s.mu.Lock()
	prev := s.current
	s.current = h
	s.mu.Unlock()

	if prev != nil && prev != h {
		s.registry.Revoke(prev)
	}
}

// Clear revokes the current handle and leaves the slot empty.
func (s *Slot) Clear() {
	s.Set(nil)
}

// Handle returns the current handle, or nil.
func (s *Slot) Handle() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// URL returns the display URL of the current handle, or "" when empty.
func (s *Slot) URL() string {
	if h := s.Handle(); h != nil {
		return h.URL()
	}
	return ""
}
