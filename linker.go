package icecat

import (
	"github.com/google/uuid"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/products"
	"github.com/icepolcka/icecat/pkg/records"
	"github.com/icepolcka/icecat/pkg/store"
)

// linker resolves which dataset record a parsed file belongs to, enforcing
// the one-record-per-identity invariant.
type linker struct {
	product string
	store   *store.Store
}

// attachResult reports whether the attach created a new dataset record or
// merged into an existing one.
type attachResult int

const (
	attachCreated attachResult = iota
	attachUpdated
)

// attach finds or creates the dataset record for the parsed file's identity
// key and populates its role slot. Finding more than one existing record for
// one identity is a consistency fault: the catalog must not guess which
// record is authoritative, so the sync that discovers it aborts.
func (l *linker) attach(parsed products.ParsedFile, path string) (attachResult, error) {
	key := parsed.Identity.Normalize()
	matches := l.store.DatasetsByIdentity(key)

	switch len(matches) {
	case 0:
		rec := records.DatasetRecord{
			ID:       uuid.NewString(),
			Identity: key,
			Roles:    map[string]string{parsed.Role: path},
			Attrs:    parsed.Attrs,
		}
		if err := l.store.InsertDataset(rec); err != nil {
			return 0, err
		}
		return attachCreated, nil

	case 1:
		// Re-parses only happen when the source file actually changed, so
		// the freshly parsed attributes win over the stored ones.
		rec := matches[0]
		rec.Roles[parsed.Role] = path
		rec.Attrs = parsed.Attrs
		if err := l.store.UpdateDataset(rec); err != nil {
			return 0, err
		}
		return attachUpdated, nil

	default:
		return 0, errors.NewDuplicateDatasetError(l.product, key.String(), len(matches))
	}
}
