package view

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/erazemk/trznica/internal/imageloader"
	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/notify"
)

// DetailState is the lifecycle state of a DetailView.
type DetailState int

// Detail states.
const (
	StateLoading DetailState = iota
	StateLoaded
	StateSubmitting
	StateReloaded
)

func (s DetailState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateSubmitting:
		return "submitting"
	case StateReloaded:
		return "reloaded"
	default:
		return fmt.Sprintf("DetailState(%d)", int(s))
	}
}

// DetailRoute returns the route of an item detail page.
func DetailRoute(id int64) string {
	return fmt.Sprintf("/items/%d", id)
}

// DetailView shows one item with its image and drives the purchase.
type DetailView struct {
	id       int64
	items    ItemSource
	images   ImageLoader
	notifier notify.Notifier
	creds    model.Credentials
	onReload func()

	mu      sync.Mutex
	cancel  context.CancelFunc
	mounted bool
	gen     uint64
	state   DetailState
	item    *model.Item
	slot    *imageloader.Slot
	round   *round
}

// NewDetailView creates an unmounted detail view for item id. onReload is
// invoked after a successful purchase to re-derive the page from scratch.
func NewDetailView(id int64, items ItemSource, images ImageLoader, n notify.Notifier, creds model.Credentials, onReload func()) *DetailView {
	return &DetailView{
		id:       id,
		items:    items,
		images:   images,
		notifier: n,
		creds:    creds,
		onReload: onReload,
		slot:     imageloader.NewSlot(images.Registry()),
		round:    newRound(0),
	}
}

// ItemID returns the id of the item shown.
func (v *DetailView) ItemID() int64 { return v.id }

// Credentials returns the credentials the view was opened with. They are
// the ones a purchase is sent with.
func (v *DetailView) Credentials() model.Credentials { return v.creds }

// Route implements View.
func (v *DetailView) Route() string { return DetailRoute(v.id) }

// Mount fetches the item and its image concurrently. Either may finish first.
func (v *DetailView) Mount() {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.mounted = true
	v.gen++
	v.state = StateLoading
	gen := v.gen
	r := newRound(2)
	v.round = r
	v.mu.Unlock()

	go v.fetchItem(ctx, gen, r)
	go v.fetchImage(ctx, gen, r)
}

func (v *DetailView) fetchItem(ctx context.Context, gen uint64, r *round) {
	defer r.finish()

	item, err := v.items.GetItem(ctx, v.id)
	if err != nil {
		v.fail(ctx, gen, "failed to load item", err)
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.current(gen) {
		return
	}
	v.item = &item
	v.settle()
}

func (v *DetailView) fetchImage(ctx context.Context, gen uint64, r *round) {
	defer r.finish()

	h, err := v.images.Load(ctx, v.id, v.creds.Token)
	if err != nil {
		v.fail(ctx, gen, "failed to load item image", err)
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.current(gen) {
		v.images.Registry().Revoke(h)
		return
	}
	v.slot.Set(h)
	v.settle()
}

// settle moves to Loaded once both the item and its image are present.
// Caller holds v.mu.
func (v *DetailView) settle() {
	if v.state == StateLoading && v.item != nil && v.slot.Handle() != nil {
		v.state = StateLoaded
	}
}

func (v *DetailView) fail(ctx context.Context, gen uint64, what string, err error) {
	v.mu.Lock()
	stale := !v.current(gen)
	v.mu.Unlock()
	if stale || ctx.Err() != nil {
		return
	}
	slog.Warn(what, "item", v.id, "error", err)
	v.notifier.Error(message(err))
}

func (v *DetailView) current(gen uint64) bool {
	return v.mounted && v.gen == gen
}

// Purchase buys the item for the session user. It is only reachable from
// Loaded with a purchasable status. On success the view becomes Reloaded,
// drops everything it holds and triggers a reload; it never flips the
// status locally. On failure the view returns to Loaded untouched and the
// error is reported to the notifier.
func (v *DetailView) Purchase(ctx context.Context) error {
	v.mu.Lock()
	switch {
	case !v.mounted:
		v.mu.Unlock()
		return ErrStale
	case v.state == StateSubmitting:
		v.mu.Unlock()
		return ErrBusy
	case v.state != StateLoaded:
		v.mu.Unlock()
		return ErrNotReady
	case !v.item.Status.Purchasable():
		v.mu.Unlock()
		return ErrNotPurchasable
	}
	v.state = StateSubmitting
	gen := v.gen
	v.mu.Unlock()

	err := v.submit(ctx)

	v.mu.Lock()
	if !v.current(gen) {
		v.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		v.state = StateLoaded
		v.mu.Unlock()
		slog.Warn("purchase failed", "item", v.id, "user", v.creds.UserID, "error", err)
		v.notifier.Error(message(err))
		return err
	}

	v.state = StateReloaded
	v.item = nil
	v.slot.Clear()
	v.mu.Unlock()

	slog.Info("item purchased", "item", v.id, "user", v.creds.UserID)
	if v.onReload != nil {
		v.onReload()
	}
	return nil
}

func (v *DetailView) submit(ctx context.Context) error {
	userID, err := v.creds.NumericUserID()
	if err != nil {
		return err
	}
	return v.items.Purchase(ctx, v.id, userID, v.creds.Token)
}

// Unmount cancels outstanding fetches and releases the image.
func (v *DetailView) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	v.mounted = false
	v.cancel()
	v.slot.Clear()
}

// Wait implements View.
func (v *DetailView) Wait(ctx context.Context) error {
	v.mu.Lock()
	r := v.round
	v.mu.Unlock()
	return r.wait(ctx)
}

// State returns the current lifecycle state.
func (v *DetailView) State() DetailState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Control is the render model of the purchase button.
type Control struct {
	Label     string
	Disabled  bool
	ElementID string
}

// PurchaseControl derives the purchase button from the item status alone.
func PurchaseControl(status model.ItemStatus) Control {
	if !status.Purchasable() {
		return Control{Label: "SoldOut", Disabled: true, ElementID: "SoldOutMerButton"}
	}
	return Control{Label: "Purchase", ElementID: "PurchaseMerButton"}
}

// DetailSnapshot is the render model of the detail page. Item is nil until
// the body may be shown.
type DetailSnapshot struct {
	State     DetailState
	Item      *model.Item
	PriceText string
	ImageURL  string
	Control   Control
}

// Snapshot returns the current render model. The body is only present
// once both the item and its image have resolved.
func (v *DetailView) Snapshot() DetailSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := DetailSnapshot{State: v.state}
	if v.state != StateLoaded && v.state != StateSubmitting {
		return snap
	}
	item := *v.item
	snap.Item = &item
	snap.PriceText = FormatPrice(item.Price)
	snap.ImageURL = v.slot.URL()
	snap.Control = PurchaseControl(item.Status)
	if v.state == StateSubmitting {
		snap.Control.Disabled = true
	}
	return snap
}
