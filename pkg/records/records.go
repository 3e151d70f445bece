// Package records defines the persisted data model of the catalog: file
// records with their change-detection watermark, dataset records that group
// the physical files of one logical observation, and the identity keys and
// denormalized attributes that queries run against.
package records

import (
	"fmt"
	"strings"
	"time"
)

// FileKind tags a data file with the role its filename pattern implies for a
// product, e.g. "wrfout" or "nc". KindCorrupt marks files that matched a
// pattern but could not be parsed.
type FileKind string

// KindCorrupt is the kind recorded for files whose parse failed. Corrupt
// files are remembered so repeated syncs do not retry them, but they are
// never linked into a dataset.
const KindCorrupt FileKind = "corrupt"

// FileRecord is the index entry for one physical file.
type FileRecord struct {
	// Path is the normalized absolute path, unique within one store.
	Path string `yaml:"path"`

	// Kind is the accepted file kind, or KindCorrupt.
	Kind FileKind `yaml:"kind"`

	// LastChecked is the watermark of the last successful scan. A file is
	// re-parsed only when its on-disk modification time is newer.
	LastChecked time.Time `yaml:"last_checked"`
}

// IdentityKey is the attribute tuple that uniquely identifies one logical
// observation. Products populate only the fields that apply to them; the
// zero value of an unused field is part of the identity.
type IdentityKey struct {
	// Start and End bound the observation in time. Products with a single
	// timestamp set Start == End.
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`

	// MP is the WRF microphysics scheme ID (8, 10, 28, 30 or 50), 0 when the
	// product has no scheme dimension.
	MP int `yaml:"mp,omitempty"`

	Source      string `yaml:"source,omitempty"`
	Radar       string `yaml:"radar,omitempty"`
	Method      string `yaml:"method,omitempty"`
	Domain      string `yaml:"domain,omitempty"`
	Hydrometeor string `yaml:"hydrometeor,omitempty"`
}

// String renders the key in a stable, human-readable form used for map keys,
// log events and consistency-fault messages.
func (k IdentityKey) String() string {
	parts := []string{
		k.Start.UTC().Format(time.RFC3339),
		k.End.UTC().Format(time.RFC3339),
	}
	if k.MP != 0 {
		parts = append(parts, fmt.Sprintf("mp=%d", k.MP))
	}
	if k.Source != "" {
		parts = append(parts, "source="+k.Source)
	}
	if k.Radar != "" {
		parts = append(parts, "radar="+k.Radar)
	}
	if k.Method != "" {
		parts = append(parts, "method="+k.Method)
	}
	if k.Domain != "" {
		parts = append(parts, "domain="+k.Domain)
	}
	if k.Hydrometeor != "" {
		parts = append(parts, "hm="+k.Hydrometeor)
	}
	return strings.Join(parts, "/")
}

// Normalize returns the key with both timestamps forced to UTC, so that keys
// extracted on machines with different local zones compare equal.
func (k IdentityKey) Normalize() IdentityKey {
	k.Start = k.Start.UTC()
	k.End = k.End.UTC()
	return k
}

// Attributes are the denormalized descriptive fields captured on a dataset
// record and exposed to result handles. They duplicate the identity fields
// on purpose: handles are snapshots and must not reach back into the store.
type Attributes struct {
	Time        time.Time `yaml:"time,omitempty"`
	Start       time.Time `yaml:"start,omitempty"`
	End         time.Time `yaml:"end,omitempty"`
	MP          int       `yaml:"mp,omitempty"`
	Source      string    `yaml:"source,omitempty"`
	Radar       string    `yaml:"radar,omitempty"`
	Method      string    `yaml:"method,omitempty"`
	Domain      string    `yaml:"domain,omitempty"`
	Hydrometeor string    `yaml:"hydrometeor,omitempty"`
}

// Get looks up an attribute by its query name. The names match the filter
// vocabulary: time, start_time, end_time, mp_id, source, radar, method,
// domain, hm.
func (a Attributes) Get(name string) (any, bool) {
	switch name {
	case "time":
		if a.Time.IsZero() {
			return nil, false
		}
		return a.Time, true
	case "start_time":
		if a.Start.IsZero() {
			return nil, false
		}
		return a.Start, true
	case "end_time":
		if a.End.IsZero() {
			return nil, false
		}
		return a.End, true
	case "mp_id":
		if a.MP == 0 {
			return nil, false
		}
		return a.MP, true
	case "source":
		if a.Source == "" {
			return nil, false
		}
		return a.Source, true
	case "radar":
		if a.Radar == "" {
			return nil, false
		}
		return a.Radar, true
	case "method":
		if a.Method == "" {
			return nil, false
		}
		return a.Method, true
	case "domain":
		if a.Domain == "" {
			return nil, false
		}
		return a.Domain, true
	case "hm":
		if a.Hydrometeor == "" {
			return nil, false
		}
		return a.Hydrometeor, true
	}
	return nil, false
}

// DatasetRecord is one logical observation, possibly backed by several
// physical files attached under named roles (e.g. "wrfout", "clouds",
// "wrfmp" for one WRF time step).
type DatasetRecord struct {
	// ID is a stable random identifier assigned at creation.
	ID string `yaml:"id"`

	// Identity uniquely identifies the observation. The store enforces at
	// most one record per identity.
	Identity IdentityKey `yaml:"identity"`

	// Roles maps role name to the path of the file filling that role. Roles
	// are populated independently, possibly across separate sync passes.
	Roles map[string]string `yaml:"roles"`

	// Attrs are the denormalized query attributes, refreshed whenever a
	// backing file is re-parsed (last writer wins).
	Attrs Attributes `yaml:"attrs"`
}

// Time returns the record's primary time attribute: the single timestamp if
// present, otherwise the start of the observation window.
func (d DatasetRecord) Time() time.Time {
	if !d.Attrs.Time.IsZero() {
		return d.Attrs.Time
	}
	if !d.Attrs.Start.IsZero() {
		return d.Attrs.Start
	}
	return d.Identity.Start
}

// Clone returns a deep copy, so callers holding query results never alias
// store-owned state.
func (d DatasetRecord) Clone() DatasetRecord {
	out := d
	out.Roles = make(map[string]string, len(d.Roles))
	for role, path := range d.Roles {
		out.Roles[role] = path
	}
	return out
}
