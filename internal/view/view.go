// Package view holds the per-session view models of the marketplace pages:
// the catalog, the item detail with its purchase transition, and the host
// that mounts and unmounts them.
//
// Every asynchronous completion is checked against the generation it was
// started in and against the view still being mounted; stale completions
// are dropped and any image handle they produced is released.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/erazemk/trznica/internal/client"
	"github.com/erazemk/trznica/internal/imageloader"
	"github.com/erazemk/trznica/internal/model"
)

// View is a mountable page model.
type View interface {
	Route() string
	Mount()
	Unmount()
	// Wait blocks until the current load round has settled or ctx is done.
	Wait(ctx context.Context) error
}

// CatalogSource lists catalog items.
type CatalogSource interface {
	ListItems(ctx context.Context) ([]model.CatalogItem, error)
}

// ItemSource reads and buys single items.
type ItemSource interface {
	GetItem(ctx context.Context, id int64) (model.Item, error)
	Purchase(ctx context.Context, id, userID int64, token string) error
}

// ImageLoader resolves item ids to image handles.
type ImageLoader interface {
	Load(ctx context.Context, itemID int64, token string) (*imageloader.Handle, error)
	Registry() *imageloader.Registry
}

// Errors returned by view operations.
var (
	ErrNotReady       = errors.New("item is still loading")
	ErrNotPurchasable = errors.New("item is sold out")
	ErrBusy           = errors.New("purchase already in progress")
	ErrStale          = errors.New("view is no longer mounted")
)

// round tracks the asynchronous work started by one load. It settles when
// every piece of work has finished.
type round struct {
	mu      sync.Mutex
	pending int
	done    chan struct{}
}

func newRound(pending int) *round {
	r := &round{pending: pending, done: make(chan struct{})}
	if pending == 0 {
		close(r.done)
	}
	return r
}

func (r *round) add(n int) {
	r.mu.Lock()
	r.pending += n
	r.mu.Unlock()
}

func (r *round) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending--
	if r.pending == 0 {
		close(r.done)
	}
}

func (r *round) wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// message returns the text shown to the user for a failed operation.
func message(err error) string {
	return client.Message(err)
}
