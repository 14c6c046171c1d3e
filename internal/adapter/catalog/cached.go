package catalog

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// Compile-time check: Cached implements domain.CatalogProvider.
var _ domain.CatalogProvider = (*Cached)(nil)

// DefaultTTL is how long a loaded catalog is served before reloading.
const DefaultTTL = 5 * time.Minute

// Config holds configuration for the cached provider.
type Config struct {
	TTL    time.Duration
	Now    func() time.Time
	Logger *zap.Logger
}

// Cached serves a catalog from memory and reloads it through a Loader once
// the TTL has passed. Concurrent reloads collapse into one Loader call, and a
// failed reload keeps serving the last good catalog.
type Cached struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	group singleflight.Group

	mu       sync.RWMutex
	catalog  domain.ActionCatalog
	loadedAt time.Time
}

// NewCached creates a provider around loader.
func NewCached(loader Loader, cfg Config) *Cached {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Cached{
		loader: loader,
		ttl:    cfg.TTL,
		now:    cfg.Now,
		logger: cfg.Logger,
	}
}

// Catalog returns a copy of the current catalog, reloading it when stale.
func (c *Cached) Catalog(ctx context.Context) (domain.ActionCatalog, error) {
	if catalog, fresh := c.cached(); fresh {
		return catalog, nil
	}

	v, err, _ := c.group.Do("catalog", func() (any, error) {
		// A reload started by one caller must not fail for the others
		// when that caller goes away.
		return c.reload(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return maps.Clone(v.(domain.ActionCatalog)), nil
}

// Invalidate forces the next Catalog call to reload.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadedAt = time.Time{}
}

func (c *Cached) cached() (domain.ActionCatalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.catalog == nil || c.loadedAt.IsZero() || c.now().Sub(c.loadedAt) >= c.ttl {
		return nil, false
	}
	return maps.Clone(c.catalog), true
}

func (c *Cached) reload(ctx context.Context) (domain.ActionCatalog, error) {
	if catalog, fresh := c.cached(); fresh {
		return catalog, nil
	}

	loaded, err := c.loader.Load(ctx)
	if err != nil {
		c.mu.RLock()
		stale := c.catalog
		c.mu.RUnlock()
		if stale != nil {
			c.logger.Warn("catalog reload failed, serving stale catalog", zap.Error(err))
			return stale, nil
		}
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	c.mu.Lock()
	c.catalog = loaded
	c.loadedAt = c.now()
	c.mu.Unlock()

	c.logger.Debug("catalog loaded", zap.Int("entries", len(loaded)))
	return loaded, nil
}
