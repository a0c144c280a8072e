package view

import (
	"context"
	"errors"
	"sync"

	"github.com/erazemk/trznica/internal/client"
	"github.com/erazemk/trznica/internal/imageloader"
	"github.com/erazemk/trznica/internal/model"
)

type fakeBackend struct {
	mu            sync.Mutex
	items         []model.CatalogItem
	listErr       error
	detail        map[int64]model.Item
	itemErr       error
	imageErr      error
	purchaseErr   error
	itemGate      chan struct{}
	imageGate     chan struct{}
	itemCalls     map[int64]int
	imageCalls    map[int64]int
	purchaseCalls int
	purchasedBy   int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		detail:     make(map[int64]model.Item),
		itemCalls:  make(map[int64]int),
		imageCalls: make(map[int64]int),
	}
}

func (f *fakeBackend) ListItems(ctx context.Context) ([]model.CatalogItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeBackend) GetItem(ctx context.Context, id int64) (model.Item, error) {
	f.mu.Lock()
	f.itemCalls[id]++
	gate := f.itemGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.Item{}, ctx.Err()
		}
	}
	if f.itemErr != nil {
		return model.Item{}, f.itemErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.detail[id]
	if !ok {
		return model.Item{}, &client.RequestError{Kind: client.KindStatus, Status: 404, Message: "item not found"}
	}
	return item, nil
}

func (f *fakeBackend) GetItemImage(ctx context.Context, id int64, token string) (*client.Blob, error) {
	f.mu.Lock()
	f.imageCalls[id]++
	gate := f.imageGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return &client.Blob{Data: []byte("img"), MIME: "image/jpeg"}, nil
}

func (f *fakeBackend) Purchase(ctx context.Context, id, userID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchaseCalls++
	f.purchasedBy = userID
	if f.purchaseErr != nil {
		return f.purchaseErr
	}
	item := f.detail[id]
	item.Status = model.ItemStatusSoldOut
	f.detail[id] = item
	return nil
}

func (f *fakeBackend) calls(id int64) (items, images int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.itemCalls[id], f.imageCalls[id]
}

type recordingNotifier struct {
	mu     sync.Mutex
	errors []string
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Info(string) {}

func (n *recordingNotifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

var errBoom = errors.New("boom")

func newLoader(f *fakeBackend) *imageloader.Loader {
	return imageloader.New(f, imageloader.NewRegistry())
}
