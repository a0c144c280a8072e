// Package imageloader turns item ids into revocable image handles.
//
// Concurrent loads of the same item collapse into one backend request and
// the number of requests in flight is capped, but every caller receives its
// own handle: handles are never shared between display slots.
package imageloader

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/erazemk/trznica/internal/client"
	"github.com/erazemk/trznica/internal/imaging"
)

// DefaultConcurrency caps concurrent image requests when no limit is configured.
const DefaultConcurrency = 8

// Fetcher retrieves the raw image bytes of an item.
type Fetcher interface {
	GetItemImage(ctx context.Context, id int64, token string) (*client.Blob, error)
}

// Loader resolves item ids to handles.
type Loader struct {
	fetcher  Fetcher
	registry *Registry
	group    singleflight.Group
	sem      *semaphore.Weighted
	maxDim   int
}

// Option configures a Loader.
type Option func(*Loader)

// WithConcurrency caps the number of image requests in flight.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithThumbnail downscales loaded images so neither edge exceeds maxDim.
func WithThumbnail(maxDim int) Option {
	return func(l *Loader) { l.maxDim = maxDim }
}

// New creates a loader that registers handles in r.
func New(f Fetcher, r *Registry, opts ...Option) *Loader {
	l := &Loader{
		fetcher:  f,
		registry: r,
		sem:      semaphore.NewWeighted(DefaultConcurrency),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the registry handles are created in.
func (l *Loader) Registry() *Registry {
	return l.registry
}

// Load fetches the image of itemID and wraps it in a new handle. The caller
// owns the handle and must revoke it (usually through a Slot). On failure
// no handle is created.
func (l *Loader) Load(ctx context.Context, itemID int64, token string) (*Handle, error) {
	key := strconv.FormatInt(itemID, 10) + "\x00" + token

	ch := l.group.DoChan(key, func() (any, error) {
		// The shared fetch must not die with whichever caller started it.
		fctx := context.WithoutCancel(ctx)
		if err := l.sem.Acquire(fctx, 1); err != nil {
			return nil, err
		}
		defer l.sem.Release(1)
		return l.fetch(fctx, itemID, token)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		blob := res.Val.(*client.Blob)
		return l.registry.Create(itemID, blob.MIME, blob.Data), nil
	}
}

func (l *Loader) fetch(ctx context.Context, itemID int64, token string) (*client.Blob, error) {
	blob, err := l.fetcher.GetItemImage(ctx, itemID, token)
	if err != nil {
		return nil, err
	}
	if l.maxDim <= 0 {
		return blob, nil
	}

	thumb, err := imaging.Thumbnail(blob.Data, l.maxDim)
	if err != nil {
		slog.Warn("keeping original image", "item", itemID, "error", fmt.Errorf("thumbnail: %w", err))
		return blob, nil
	}
	if len(thumb.Data) < len(blob.Data) {
		slog.Debug("image downscaled", "item", itemID,
			"from", humanize.Bytes(uint64(len(blob.Data))), "to", humanize.Bytes(uint64(len(thumb.Data))))
	}
	return &client.Blob{Data: thumb.Data, MIME: thumb.MIME}, nil
}
