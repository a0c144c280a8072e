package imageloader

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// BlobPrefix is the URL path under which live handles are served.
const BlobPrefix = "/blobs/"

// Handle is an opaque, revocable reference to image bytes of one item.
// A handle belongs to exactly one display slot.
type Handle struct {
	key     string
	itemID  int64
	mime    string
	data    []byte
	revoked atomic.Bool
}

// Key returns the opaque identifier of the handle.
func (h *Handle) Key() string { return h.key }

// ItemID returns the item the image belongs to.
func (h *Handle) ItemID() int64 { return h.itemID }

// MIME returns the content type of the image.
func (h *Handle) MIME() string { return h.mime }

// Data returns the image bytes. It returns nil once the handle is revoked.
func (h *Handle) Data() []byte {
	if h.revoked.Load() {
		return nil
	}
	return h.data
}

// Size returns the number of image bytes held.
func (h *Handle) Size() int { return len(h.data) }

// URL returns the display URL of the handle.
func (h *Handle) URL() string {
	return BlobPrefix + h.key
}

// Revoked reports whether the handle has been released.
func (h *Handle) Revoked() bool { return h.revoked.Load() }

// Registry tracks every live handle of the process.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

// Create wraps data in a new live handle.
func (r *Registry) Create(itemID int64, mime string, data []byte) *Handle {
	h := &Handle{
		key:    uuid.NewString(),
		itemID: itemID,
		mime:   mime,
		data:   data,
	}

	r.mu.Lock()
	r.handles[h.key] = h
	r.mu.Unlock()
	return h
}

// Lookup returns the live handle for key.
func (r *Registry) Lookup(key string) (*Handle, bool) {
	r.mu.RLock()
	h, ok := r.handles[key]
	r.mu.RUnlock()
	return h, ok
}

// Revoke releases h. Revoking a nil or already revoked handle is a no-op.
func (r *Registry) Revoke(h *Handle) {
	if h == nil || !h.revoked.CompareAndSwap(false, true) {
		return
	}

	r.mu.Lock()
	delete(r.handles, h.key)
	r.mu.Unlock()
}

// Live returns the number of handles not yet revoked.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
