// Package products defines the data products the catalog can index. A
// product bundles everything that varies between data sources: the filename
// patterns that identify its files, the parser that extracts identity keys
// from an accepted file, the role schema its datasets use, and the static
// reference data seeded into a fresh store.
//
// The built-in products mirror one polarimetric radar measurement campaign:
// WRF simulation output, CR-SIM forward-simulated radar variables, the
// radar-filter and regular-grid interpolation products derived from them,
// hydrometeor classification output, interpolated temperature fields, and
// DWD C-band volume scans.
package products

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/handle"
	"github.com/icepolcka/icecat/pkg/records"
)

// ParsedFile is the result of parsing one accepted data file: the identity
// key of the dataset it belongs to, the role it fills there, and the
// denormalized attributes queries will see.
type ParsedFile struct {
	Identity records.IdentityKey
	Role     string
	Attrs    records.Attributes
}

// Parser extracts identity keys from one data file. Parsers are the
// boundary to format-specific code: a failure here marks the file corrupt
// in the store, it never aborts a sync.
type Parser interface {
	Parse(ctx context.Context, path string, kind records.FileKind) (ParsedFile, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(ctx context.Context, path string, kind records.FileKind) (ParsedFile, error)

// Parse implements Parser.
func (f ParserFunc) Parse(ctx context.Context, path string, kind records.FileKind) (ParsedFile, error) {
	return f(ctx, path, kind)
}

// KindRule maps a filename glob pattern to a file kind. Rules are evaluated
// in order against the base name; the first match wins.
type KindRule struct {
	Kind    records.FileKind
	Pattern string
}

// Product describes one indexable data product.
type Product struct {
	// Name is the registry key, e.g. "crsim".
	Name string

	// Kinds is the static filename→kind lookup table. Files matching no
	// rule are skipped with a diagnostic during sync.
	Kinds []KindRule

	// Parser extracts identity keys from accepted files.
	Parser Parser

	// Loader materializes datasets for result handles. Nil is valid: the
	// scientific readers live outside the catalog and are injected by the
	// application that owns them.
	Loader handle.Loader

	// Reference is the static data seeded into a fresh store.
	Reference records.Reference
}

// Classify returns the file kind implied by the path's base name, or false
// if no rule matches.
func (p Product) Classify(path string) (records.FileKind, bool) {
	base := filepath.Base(path)
	for _, rule := range p.Kinds {
		if ok, err := doublestar.Match(rule.Pattern, base); err == nil && ok {
			return rule.Kind, true
		}
	}
	return "", false
}

// registry of built-in and application-registered products.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]Product)
)

// Register adds a product to the registry. Registering a duplicate name
// panics; product names are compile-time constants, so a collision is a
// programming error.
func Register(p Product) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if p.Name == "" {
		panic("products: Register called with empty product name")
	}
	if _, dup := registry[p.Name]; dup {
		panic("products: Register called twice for product " + p.Name)
	}
	registry[p.Name] = p
}

// Get returns the registered product with the given name.
func Get(name string) (Product, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	return p, ok
}

// Names returns the registered product names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Shared parsing helpers. The campaign's directory layout encodes the
// query dimensions in path segments (e.g. .../MP8/Isen/graupel/file.nc),
// and timestamps in the file names themselves.

var (
	mpSegmentRe   = regexp.MustCompile(`^(?i:mp)(\d+)$`)
	stampRe       = regexp.MustCompile(`\d{14}`)
	wrfNameTimeRe = regexp.MustCompile(`_(\d{4}-\d{2}-\d{2})_(\d{6})$`)
)

// segments splits a path into its directory components, base name last.
func segments(path string) []string {
	return strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
}

// trimExt drops the filename extension so name-time parsing can anchor at
// the end of the stem.
func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// mpFromPath finds the microphysics scheme segment (e.g. "MP8") and
// validates the ID against the reference block.
func mpFromPath(product, path string, ref records.Reference) (int, error) {
	for _, seg := range segments(path) {
		m := mpSegmentRe.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, ok := ref.SchemeByID(id); !ok {
			return 0, errors.NewParseError(product, path,
				fmt.Sprintf("unknown microphysics scheme ID %d", id), nil)
		}
		return id, nil
	}
	return 0, errors.NewParseError(product, path, "no microphysics scheme segment in path", nil)
}

// radarFromPath finds the path segment naming a known radar site.
func radarFromPath(product, path string, ref records.Reference) (string, error) {
	for _, seg := range segments(path) {
		if _, ok := ref.RadarByName(seg); ok {
			return seg, nil
		}
	}
	return "", errors.NewParseError(product, path, "no radar segment in path", nil)
}

// hydrometeorFromPath finds the path segment naming a known hydrometeor
// class.
func hydrometeorFromPath(product, path string, ref records.Reference) (string, error) {
	for _, seg := range segments(path) {
		if ref.HasHydrometeor(seg) {
			return seg, nil
		}
	}
	return "", errors.NewParseError(product, path, "no hydrometeor segment in path", nil)
}

// sourceFromPath finds the MODEL/DWD segment distinguishing simulated from
// observed input.
func sourceFromPath(product, path string) (string, error) {
	for _, seg := range segments(path) {
		if seg == "MODEL" || seg == "DWD" {
			return seg, nil
		}
	}
	return "", errors.NewParseError(product, path, "no MODEL/DWD source segment in path", nil)
}

// timeFromWRFName parses the campaign's WRF naming convention, e.g.
// wrfout_d03_2019-07-01_120000. The date and time are the third and fourth
// underscore-separated fields.
func timeFromWRFName(product, path string) (time.Time, error) {
	base := filepath.Base(path)
	m := wrfNameTimeRe.FindStringSubmatch(base)
	if m == nil {
		return time.Time{}, errors.NewParseError(product, path,
			"file name does not end in _%Y-%m-%d_%H%M%S", nil)
	}
	t, err := time.ParseInLocation("2006-01-02_150405", m[1]+"_"+m[2], time.UTC)
	if err != nil {
		return time.Time{}, errors.WrapParse(product, path, err)
	}
	return t, nil
}

// timeFromStamp parses the first 14-digit timestamp (yyyymmddhhmmss) found
// in the base name, the convention of the DWD archive files.
func timeFromStamp(product, path string) (time.Time, error) {
	base := filepath.Base(path)
	m := stampRe.FindString(base)
	if m == "" {
		return time.Time{}, errors.NewParseError(product, path,
			"no yyyymmddhhmmss timestamp in file name", nil)
	}
	t, err := time.ParseInLocation("20060102150405", m, time.UTC)
	if err != nil {
		return time.Time{}, errors.WrapParse(product, path, err)
	}
	return t, nil
}

// domainForGridID maps the WRF nest index in a file name (d01..d03) to the
// campaign domain name.
func domainForGridID(product, path string) (string, error) {
	base := filepath.Base(path)
	for gridID, name := range map[string]string{
		"d01": "Europe",
		"d02": "Germany",
		"d03": "Munich",
	} {
		if strings.Contains(base, "_"+gridID+"_") {
			return name, nil
		}
	}
	return "", errors.NewParseError(product, path, "no WRF domain marker (d01/d02/d03) in file name", nil)
}
