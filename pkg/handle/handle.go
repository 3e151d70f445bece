// Package handle provides the lazily-resolved result handles returned by
// catalog queries. A query over years of radar data may match thousands of
// records; opening each one would waste memory, so a handle carries only the
// resolved file paths and attributes, and pays the loader's I/O cost when
// the caller explicitly asks for the dataset.
package handle

import (
	"context"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/records"
)

// Dataset is the materialized scientific dataset returned by a Loader. Its
// concrete shape is the loader's business; the catalog never inspects it.
type Dataset any

// Loader materializes a dataset from the resolved role→path map of one
// dataset record. Loaders are external collaborators: the catalog itself
// never invokes one.
type Loader func(ctx context.Context, paths map[string]string) (Dataset, error)

// Handle is an immutable, attribute-bearing reference to one dataset. It is
// a snapshot taken at query time: it holds no lock on the catalog and stays
// valid after the catalog is closed, but the catalog makes no freshness
// guarantee between query time and Load time.
type Handle struct {
	product string
	attrs   records.Attributes
	paths   map[string]string
	loader  Loader
}

// New creates a handle for one dataset record.
func New(product string, rec records.DatasetRecord, loader Loader) *Handle {
	paths := make(map[string]string, len(rec.Roles))
	for role, path := range rec.Roles {
		paths[role] = path
	}
	return &Handle{
		product: product,
		attrs:   rec.Attrs,
		paths:   paths,
		loader:  loader,
	}
}

// Product returns the name of the product the handle came from.
func (h *Handle) Product() string {
	return h.product
}

// Attribute returns the named attribute captured at query time. Names follow
// the filter vocabulary: time, start_time, end_time, mp_id, source, radar,
// method, domain, hm.
func (h *Handle) Attribute(name string) (any, bool) {
	return h.attrs.Get(name)
}

// Attributes returns a copy of all captured attributes.
func (h *Handle) Attributes() records.Attributes {
	return h.attrs
}

// Path returns the resolved path for the given role.
func (h *Handle) Path(role string) (string, bool) {
	path, ok := h.paths[role]
	return path, ok
}

// Paths returns a copy of the full role→path map.
func (h *Handle) Paths() map[string]string {
	out := make(map[string]string, len(h.paths))
	for role, path := range h.paths {
		out[role] = path
	}
	return out
}

// Load materializes the dataset through the configured loader. Staleness
// detection is Sync's job, not the handle's: a file removed since the last
// sync surfaces here as a LoadError.
func (h *Handle) Load(ctx context.Context) (Dataset, error) {
	if h.loader == nil {
		return nil, errors.NewLoadError(h.product, h.anyPath(), errors.ErrNoLoader)
	}
	ds, err := h.loader(ctx, h.Paths())
	if err != nil {
		return nil, errors.NewLoadError(h.product, h.anyPath(), err)
	}
	return ds, nil
}

// anyPath picks a representative path for error messages; with a single
// role there is exactly one.
func (h *Handle) anyPath() string {
	if len(h.paths) == 1 {
		for _, path := range h.paths {
			return path
		}
	}
	return ""
}
