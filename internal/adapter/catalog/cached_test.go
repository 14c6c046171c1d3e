package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/catalog"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

type countingLoader struct {
	calls   atomic.Int32
	err     error
	price   float64
	gate    chan struct{}
	started chan struct{}
}

func (l *countingLoader) Load(context.Context) (domain.ActionCatalog, error) {
	l.calls.Add(1)
	if l.started != nil {
		l.started <- struct{}{}
	}
	if l.gate != nil {
		<-l.gate
	}
	if l.err != nil {
		return nil, l.err
	}
	return domain.ActionCatalog{"wrkaction-1": {ListPrice: l.price}}, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCached_ServesWithinTTL(t *testing.T) {
	loader := &countingLoader{price: 1}
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := catalog.NewCached(loader, catalog.Config{TTL: time.Minute, Now: clock.Now})
	ctx := context.Background()

	for range 3 {
		got, err := c.Catalog(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 1, got["wrkaction-1"].ListPrice, 1e-9)
	}
	assert.Equal(t, int32(1), loader.calls.Load())

	clock.Advance(2 * time.Minute)
	loader.price = 2
	got, err := c.Catalog(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2, got["wrkaction-1"].ListPrice, 1e-9)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCached_ReturnsCopies(t *testing.T) {
	c := catalog.NewCached(&countingLoader{price: 1}, catalog.Config{})

	got, err := c.Catalog(context.Background())
	require.NoError(t, err)
	delete(got, "wrkaction-1")

	again, err := c.Catalog(context.Background())
	require.NoError(t, err)
	assert.Contains(t, again, "wrkaction-1")
}

func TestCached_StaleOnError(t *testing.T) {
	loader := &countingLoader{price: 1}
	clock := &fakeClock{now: time.Now()}
	c := catalog.NewCached(loader, catalog.Config{TTL: time.Minute, Now: clock.Now})
	ctx := context.Background()

	_, err := c.Catalog(ctx)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	loader.err = errors.New("catalog service down")

	got, err := c.Catalog(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1, got["wrkaction-1"].ListPrice, 1e-9)
}

func TestCached_ErrorWithoutStale(t *testing.T) {
	c := catalog.NewCached(&countingLoader{err: errors.New("boom")}, catalog.Config{})

	_, err := c.Catalog(context.Background())
	assert.ErrorContains(t, err, "boom")
}

func TestCached_ConcurrentReloadsCollapse(t *testing.T) {
	loader := &countingLoader{price: 1, gate: make(chan struct{}), started: make(chan struct{}, 1)}
	c := catalog.NewCached(loader, catalog.Config{})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Catalog(context.Background())
			assert.NoError(t, err)
		}()
	}

	<-loader.started
	// Give the other callers time to join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(loader.gate)
	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestCached_Invalidate(t *testing.T) {
	loader := &countingLoader{price: 1}
	c := catalog.NewCached(loader, catalog.Config{TTL: time.Hour})

	_, err := c.Catalog(context.Background())
	require.NoError(t, err)
	c.Invalidate()
	_, err = c.Catalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"wrkaction-79":{"listPrice":0.25},"wrkaction-1":{"listPrice":1}}`), 0o600))

	got, err := catalog.FileLoader{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.25, got["wrkaction-79"].ListPrice, 1e-9)
	assert.Len(t, got, 2)
}

func TestFileLoader_Errors(t *testing.T) {
	_, err := catalog.FileLoader{Path: filepath.Join(t.TempDir(), "missing.json")}.Load(context.Background())
	assert.Error(t, err)

	_, err = catalog.Decode([]byte(`{"x":{"listPrice":-1}}`))
	assert.ErrorContains(t, err, "negative list price")

	_, err = catalog.Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestStaticLoader_Copies(t *testing.T) {
	got, err := catalog.DefaultCatalog.Load(context.Background())
	require.NoError(t, err)
	got["wrkaction-1"] = domain.CatalogEntry{ListPrice: 99}

	assert.InDelta(t, 1, catalog.DefaultCatalog["wrkaction-1"].ListPrice, 1e-9)
}
