package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/erazemk/trznica/internal/imageloader"
	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/notify"
)

// CatalogRoute is the route of the catalog page.
const CatalogRoute = "/"

// CatalogView lists the catalog. Each row is a Cell owning its image.
type CatalogView struct {
	source   CatalogSource
	images   ImageLoader
	notifier notify.Notifier
	creds    model.Credentials

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	mounted bool
	gen     uint64
	loaded  bool
	cells   []*Cell
	round   *round
}

// NewCatalogView creates an unmounted catalog view.
func NewCatalogView(src CatalogSource, images ImageLoader, n notify.Notifier, creds model.Credentials) *CatalogView {
	return &CatalogView{
		source:   src,
		images:   images,
		notifier: n,
		creds:    creds,
		round:    newRound(0),
	}
}

// Route implements View.
func (v *CatalogView) Route() string { return CatalogRoute }

// Mount issues GET /items.
func (v *CatalogView) Mount() {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return
	}
	v.ctx, v.cancel = context.WithCancel(context.Background())
	v.mounted = true
	v.gen++
	gen, ctx := v.gen, v.ctx
	r := newRound(1)
	v.round = r
	v.mu.Unlock()

	go v.fetchList(ctx, gen, r)
}

func (v *CatalogView) fetchList(ctx context.Context, gen uint64, r *round) {
	defer r.finish()

	items, err := v.source.ListItems(ctx)

	v.mu.Lock()
	if !v.current(gen) {
		v.mu.Unlock()
		return
	}
	if err != nil {
		v.mu.Unlock()
		slog.Warn("failed to load catalog", "error", err)
		v.notifier.Error(message(err))
		return
	}

	loads := v.replaceCells(items)
	r.add(len(loads))
	v.loaded = true
	v.mu.Unlock()

	for _, c := range loads {
		go c.loadImage(ctx, v.images, v.creds.Token, v.notifier, r)
	}
}

// replaceCells swaps in one fresh cell per fetched item, in server order,
// and releases the cells they supersede. Caller holds v.mu.
func (v *CatalogView) replaceCells(items []model.CatalogItem) []*Cell {
	next := make([]*Cell, len(items))
	for i, item := range items {
		c := newCell(v.images.Registry())
		c.setItem(item)
		next[i] = c
	}
	for _, c := range v.cells {
		c.release()
	}
	v.cells = next
	return next
}

func (v *CatalogView) current(gen uint64) bool {
	return v.mounted && v.gen == gen
}

// Unmount cancels outstanding work and releases every cell image.
func (v *CatalogView) Unmount() {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	v.mounted = false
	v.cancel()
	cells := v.cells
	v.cells = nil
	v.mu.Unlock()

	for _, c := range cells {
		c.release()
	}
}

// Wait implements View.
func (v *CatalogView) Wait(ctx context.Context) error {
	v.mu.Lock()
	r := v.round
	v.mu.Unlock()
	return r.wait(ctx)
}

// CatalogSnapshot is the render model of the catalog.
type CatalogSnapshot struct {
	UserID string
	Loaded bool
	Cells  []CellSnapshot
}

// CellSnapshot is the render model of one catalog row. Name and category
// are optional display data; the template decides whether to show them.
type CellSnapshot struct {
	ID           int64
	Name         string
	CategoryName string
	Price        int64
	PriceText    string
	ImageURL     string
}

// Snapshot returns the current render model.
func (v *CatalogView) Snapshot() CatalogSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := CatalogSnapshot{UserID: v.creds.UserID, Loaded: v.loaded}
	for _, c := range v.cells {
		snap.Cells = append(snap.Cells, c.snapshot())
	}
	return snap
}

// Cell is one catalog row. It owns the image slot of its item.
type Cell struct {
	mu   sync.Mutex
	item model.CatalogItem
	gen  uint64
	has  bool
	dead bool
	slot *imageloader.Slot
}

func newCell(reg *imageloader.Registry) *Cell {
	return &Cell{slot: imageloader.NewSlot(reg)}
}

// setItem updates the row and reports whether the subject item changed,
// in which case the previous image is released and a new load is due.
func (c *Cell) setItem(item model.CatalogItem) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := !c.has || c.item.ID != item.ID
	c.item = item
	c.has = true
	if changed {
		c.gen++
		c.slot.Clear()
	}
	return changed
}

func (c *Cell) loadImage(ctx context.Context, images ImageLoader, token string, n notify.Notifier, r *round) {
	defer r.finish()

	c.mu.Lock()
	gen, id := c.gen, c.item.ID
	c.mu.Unlock()

	h, err := images.Load(ctx, id, token)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("failed to load item image", "item", id, "error", err)
			n.Error(message(err))
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dead || c.gen != gen {
		images.Registry().Revoke(h)
		return
	}
	c.slot.Set(h)
}

func (c *Cell) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dead = true
	c.slot.Clear()
}

func (c *Cell) snapshot() CellSnapshot {
	c.mu.Lock()
	item := c.item
	c.mu.Unlock()

	return CellSnapshot{
		ID:           item.ID,
		Name:         item.Name,
		CategoryName: item.CategoryName,
		Price:        item.Price,
		PriceText:    FormatPrice(item.Price),
		ImageURL:     c.slot.URL(),
	}
}
