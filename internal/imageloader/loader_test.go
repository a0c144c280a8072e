package imageloader

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/trznica/internal/client"
	"github.com/erazemk/trznica/internal/imaging"
)

type fakeFetcher struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
	data    []byte
	active  atomic.Int32
	peak    atomic.Int32
}

func (f *fakeFetcher) GetItemImage(ctx context.Context, id int64, token string) (*client.Blob, error) {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	data := f.data
	if data == nil {
		data = []byte("image-bytes")
	}
	return &client.Blob{Data: data, MIME: "image/jpeg"}, nil
}

func TestLoadCreatesHandle(t *testing.T) {
	reg := NewRegistry()
	l := New(&fakeFetcher{}, reg)

	h, err := l.Load(context.Background(), 1, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.ItemID())
	assert.Equal(t, []byte("image-bytes"), h.Data())
	assert.Equal(t, BlobPrefix+h.Key(), h.URL())
	assert.Equal(t, 1, reg.Live())

	got, ok := reg.Lookup(h.Key())
	require.True(t, ok)
	assert.Same(t, h, got)
}

func TestLoadFailureProducesNoHandle(t *testing.T) {
	reg := NewRegistry()
	l := New(&fakeFetcher{err: errors.New("boom")}, reg)

	h, err := l.Load(context.Background(), 1, "tok")
	require.Error(t, err)
	assert.Nil(t, h)
	assert.Equal(t, 0, reg.Live())
}

func TestConcurrentLoadsCollapseButHandlesAreDistinct(t *testing.T) {
	reg := NewRegistry()
	f := &fakeFetcher{release: make(chan struct{})}
	l := New(f, reg)

	const callers = 5
	handles := make([]*Handle, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := l.Load(context.Background(), 9, "tok")
			assert.NoError(t, err)
			handles[i] = h
		}()
	}

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(f.release)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, callers, reg.Live())
	seen := map[string]bool{}
	for _, h := range handles {
		require.NotNil(t, h)
		assert.False(t, seen[h.Key()], "handles must not be shared")
		seen[h.Key()] = true
	}
}

func TestConcurrencyCap(t *testing.T) {
	f := &fakeFetcher{release: make(chan struct{})}
	l := New(f, NewRegistry(), WithConcurrency(2))

	var wg sync.WaitGroup
	for id := int64(1); id <= 6; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Load(context.Background(), id, "")
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return f.active.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), f.active.Load())
	close(f.release)
	wg.Wait()

	assert.Equal(t, int32(6), f.calls.Load())
	assert.LessOrEqual(t, f.peak.Load(), int32(2))
}

func TestLoadHonoursCallerContext(t *testing.T) {
	f := &fakeFetcher{release: make(chan struct{})}
	defer close(f.release)
	l := New(f, NewRegistry())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := l.Load(ctx, 1, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestThumbnailOption(t *testing.T) {
	big, err := imaging.Placeholder(800, 800, color.Gray{Y: 128})
	require.NoError(t, err)

	l := New(&fakeFetcher{data: big}, NewRegistry(), WithThumbnail(imaging.ThumbnailDimension))
	h, err := l.Load(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Less(t, h.Size(), len(big))
	assert.Equal(t, "image/jpeg", h.MIME())
}

func TestThumbnailFallsBackToRawBytes(t *testing.T) {
	l := New(&fakeFetcher{data: []byte("not an image")}, NewRegistry(), WithThumbnail(10))
	h, err := l.Load(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("not an image"), h.Data())
}
