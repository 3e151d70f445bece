// Package icecat implements a time-indexed multi-source file catalog for
// scientific data trees. One Catalog indexes one data product's directory
// tree into a persisted store of file and dataset records, and answers
// range, closest-in-time and latest-N queries with lazily-loaded result
// handles.
//
// Example usage:
//
//	cat, err := icecat.Open("crsim", "/archive/crsim", "/var/icecat/crsim.yaml",
//		icecat.WithSyncOnOpen(true))
//	if err != nil {
//		return err
//	}
//	defer cat.Close()
//
//	h, err := cat.Closest(ctx, t, icecat.Filters{Radar: "Isen"})
package icecat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/handle"
	"github.com/icepolcka/icecat/pkg/products"
	"github.com/icepolcka/icecat/pkg/query"
	"github.com/icepolcka/icecat/pkg/records"
	"github.com/icepolcka/icecat/pkg/store"
)

// Filters is re-exported so callers of the root package do not need to
// import pkg/query for the common case.
type Filters = query.Filters

// Catalog is the per-product indexing and query service. A Catalog owns its
// store exclusively for the lifetime of the open handle; callers mutate
// catalog state only through Sync.
//
// One Sync runs at a time per Catalog. Queries are safe to run concurrently
// with each other and with a Sync: they read the store's committed state
// under its read lock.
type Catalog struct {
	product products.Product
	rootDir string
	cfg     *config
	store   *store.Store
	engine  *query.Engine
	logger  zerolog.Logger

	syncMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

// Open opens the catalog for the named registered product, creating and
// seeding the store at storePath if none exists. With WithSyncOnOpen a full
// sync runs before Open returns.
func Open(product, rootDir, storePath string, opts ...Option) (*Catalog, error) {
	p, ok := products.Get(product)
	if !ok {
		return nil, errors.NewConfigError("catalog", "unknown product "+product, nil)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.parser != nil {
		p.Parser = cfg.parser
	}
	if cfg.loader != nil {
		p.Loader = cfg.loader
	}

	st, err := store.Open(storePath, p.Reference)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		product: p,
		rootDir: rootDir,
		cfg:     cfg,
		store:   st,
		engine:  query.New(p.Name, st),
		logger:  cfg.logger.With().Str("product", p.Name).Logger(),
	}

	if cfg.syncOnOpen {
		if _, err := c.Sync(context.Background()); err != nil {
			st.Close()
			return nil, err
		}
	}
	return c, nil
}

// Product returns the name of the product the catalog indexes.
func (c *Catalog) Product() string {
	return c.product.Name
}

// Root returns the data root directory the catalog scans.
func (c *Catalog) Root() string {
	return c.rootDir
}

// Len returns the number of dataset records currently indexed.
func (c *Catalog) Len() int {
	return c.store.Len()
}

// Range returns handles for all datasets whose time falls in [start, end]
// inclusive, ordered ascending by time. An empty result is valid.
func (c *Catalog) Range(ctx context.Context, start, end time.Time, f Filters) ([]*handle.Handle, error) {
	if err := c.readable(ctx); err != nil {
		return nil, err
	}
	return c.handles(c.engine.Range(start, end, f)), nil
}

// Closest returns a handle for the dataset nearest to t. When two datasets
// are equally distant the earlier one is returned.
func (c *Catalog) Closest(ctx context.Context, t time.Time, f Filters) (*handle.Handle, error) {
	if err := c.readable(ctx); err != nil {
		return nil, err
	}
	rec, err := c.engine.Closest(t, f)
	if err != nil {
		return nil, err
	}
	return handle.New(c.product.Name, rec, c.product.Loader), nil
}

// Latest returns handles for up to n datasets ordered by time descending,
// index 0 being the most recent. Fewer than n records is not an error.
func (c *Catalog) Latest(ctx context.Context, n int, f Filters) ([]*handle.Handle, error) {
	if err := c.readable(ctx); err != nil {
		return nil, err
	}
	return c.handles(c.engine.Latest(n, f)), nil
}

// Days splits [start, end] into day-sized windows and returns the handles of
// each non-empty day in order. Bulk consumers page over long campaigns this
// way instead of materializing one giant result slice.
func (c *Catalog) Days(ctx context.Context, start, end time.Time, f Filters) ([][]*handle.Handle, error) {
	if err := c.readable(ctx); err != nil {
		return nil, err
	}
	var out [][]*handle.Handle
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dayEnd := day.AddDate(0, 0, 1).Add(-time.Nanosecond)
		if dayEnd.After(end) {
			dayEnd = end
		}
		recs := c.engine.Range(day, dayEnd, f)
		if len(recs) == 0 {
			continue
		}
		out = append(out, c.handles(recs))
	}
	return out, nil
}

// Close releases the catalog's store handle. Handles already returned by
// queries stay valid; further syncs and queries fail.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.ErrStoreClosed
	}
	c.closed = true
	return c.store.Close()
}

func (c *Catalog) readable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.ErrStoreClosed
	}
	return nil
}

func (c *Catalog) handles(recs []records.DatasetRecord) []*handle.Handle {
	out := make([]*handle.Handle, 0, len(recs))
	for _, rec := range recs {
		out = append(out, handle.New(c.product.Name, rec, c.product.Loader))
	}
	return out
}
