// Package query implements the read side of the catalog: time-range,
// closest-in-time and latest-N lookups over dataset records, with equality
// filters applied before the temporal operation.
package query

import (
	"sort"
	"time"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/records"
)

// Source supplies the committed dataset records, ordered ascending by their
// primary time attribute. The store satisfies this.
type Source interface {
	Datasets() []records.DatasetRecord
}

// Filters enumerates the recognized equality predicates. The zero value of a
// field means "not filtered on". MP uses 0 as the unset marker; 0 is not a
// valid WRF microphysics scheme ID.
type Filters struct {
	Source      string
	MP          int
	Radar       string
	Method      string
	Domain      string
	Hydrometeor string
}

// Match reports whether a record satisfies every supplied predicate.
func (f Filters) Match(rec records.DatasetRecord) bool {
	if f.Source != "" && rec.Attrs.Source != f.Source {
		return false
	}
	if f.MP != 0 && rec.Attrs.MP != f.MP {
		return false
	}
	if f.Radar != "" && rec.Attrs.Radar != f.Radar {
		return false
	}
	if f.Method != "" && rec.Attrs.Method != f.Method {
		return false
	}
	if f.Domain != "" && rec.Attrs.Domain != f.Domain {
		return false
	}
	if f.Hydrometeor != "" && rec.Attrs.Hydrometeor != f.Hydrometeor {
		return false
	}
	return true
}

// Engine answers queries over one product's dataset records. All operations
// are pure reads over the source's current committed state.
type Engine struct {
	product string
	source  Source
}

// New creates a query engine for the given product over the given source.
func New(product string, source Source) *Engine {
	return &Engine{product: product, source: source}
}

// filtered returns the records passing the filters, preserving the source's
// ascending time order.
func (e *Engine) filtered(f Filters) []records.DatasetRecord {
	all := e.source.Datasets()
	out := make([]records.DatasetRecord, 0, len(all))
	for _, rec := range all {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Range returns all records whose primary time attribute falls in
// [start, end] inclusive, ordered ascending by time. An empty result is
// valid, not an error.
func (e *Engine) Range(start, end time.Time, f Filters) []records.DatasetRecord {
	candidates := e.filtered(f)
	out := make([]records.DatasetRecord, 0, len(candidates))
	for _, rec := range candidates {
		t := rec.Time()
		if t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Closest returns the record nearest to t. The candidate set is split into
// records at or before t and records after it; the split makes each side a
// single ordered lookup instead of a scan, which matters once the catalog
// holds years of 5-minute data. When both sides exist, the later record wins
// only if strictly closer; an exact tie resolves to the earlier record.
func (e *Engine) Closest(t time.Time, f Filters) (records.DatasetRecord, error) {
	candidates := e.filtered(f)
	if len(candidates) == 0 {
		return records.DatasetRecord{}, errors.NewNotFoundError(
			e.product, "closest to "+t.UTC().Format(time.RFC3339))
	}

	// First index whose time is after t. Everything left of it is the
	// "lesser" side, everything from it on the "greater" side.
	split := sort.Search(len(candidates), func(i int) bool {
		return candidates[i].Time().After(t)
	})

	if split == 0 {
		return candidates[0], nil
	}
	if split == len(candidates) {
		return candidates[len(candidates)-1], nil
	}

	lesser := candidates[split-1]
	greater := candidates[split]
	if t.Sub(lesser.Time()) > greater.Time().Sub(t) {
		return greater, nil
	}
	return lesser, nil
}

// Latest returns up to n records ordered by time descending, index 0 being
// the most recent. Fewer than n records is not an error.
func (e *Engine) Latest(n int, f Filters) []records.DatasetRecord {
	candidates := e.filtered(f)
	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]records.DatasetRecord, 0, n)
	for i := len(candidates) - 1; i >= len(candidates)-n; i-- {
		out = append(out, candidates[i])
	}
	return out
}
