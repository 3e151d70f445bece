// Package store implements the persisted per-product catalog store: one YAML
// document per product holding the reference block, every file record ever
// accepted, and the dataset records built from them. The document is loaded
// whole into memory at open; mutations accumulate in memory and reach disk
// only through Commit, which writes a temp file and renames it so a crashed
// or canceled sync leaves the previous commit intact.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/records"
)

// File permissions for created stores.
const (
	dirPermissions  = 0755
	filePermissions = 0644
)

// document is the on-disk shape of a store.
type document struct {
	Reference records.Reference       `yaml:"reference"`
	Files     []records.FileRecord    `yaml:"files,omitempty"`
	Datasets  []records.DatasetRecord `yaml:"datasets,omitempty"`
}

// Store is a single product's persisted index. A Store is safe for
// concurrent readers; writers are expected to follow the catalog's
// single-sync-at-a-time discipline, but every method locks regardless.
type Store struct {
	mu     sync.RWMutex
	path   string
	closed bool
	dirty  bool

	reference  records.Reference
	files      map[string]records.FileRecord
	datasets   []*records.DatasetRecord
	byIdentity map[string][]*records.DatasetRecord
	byID       map[string]*records.DatasetRecord
}

// Open loads the store at path, creating and seeding an empty one with the
// given reference block if none exists. Failures to create, read or decode
// the store surface as an OpenError.
func Open(path string, ref records.Reference) (*Store, error) {
	s := &Store{
		path:       path,
		reference:  ref,
		files:      make(map[string]records.FileRecord),
		byIdentity: make(map[string][]*records.DatasetRecord),
		byID:       make(map[string]*records.DatasetRecord),
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fresh store: seed the reference block and persist immediately so
		// a later read-only open sees a valid document.
		s.dirty = true
		if err := s.commitLocked(); err != nil {
			return nil, errors.WrapOpen(path, err)
		}
		return s, nil
	case err != nil:
		return nil, errors.WrapOpen(path, err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapOpen(path, err)
	}
	s.load(doc)
	return s, nil
}

// load replaces the in-memory state with the given document. Callers hold
// the write lock or own the store exclusively.
func (s *Store) load(doc document) {
	s.reference = doc.Reference
	s.files = make(map[string]records.FileRecord, len(doc.Files))
	for _, f := range doc.Files {
		s.files[f.Path] = f
	}
	s.datasets = nil
	s.byIdentity = make(map[string][]*records.DatasetRecord)
	s.byID = make(map[string]*records.DatasetRecord)
	for i := range doc.Datasets {
		rec := doc.Datasets[i].Clone()
		s.index(&rec)
	}
}

// index adds a dataset record to the in-memory indexes.
func (s *Store) index(rec *records.DatasetRecord) {
	s.datasets = append(s.datasets, rec)
	key := rec.Identity.String()
	s.byIdentity[key] = append(s.byIdentity[key], rec)
	s.byID[rec.ID] = rec
}

// Path returns the store's file path.
func (s *Store) Path() string {
	return s.path
}

// Reference returns the store's static reference block.
func (s *Store) Reference() records.Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reference
}

// File returns the file record for the given path, if one exists.
func (s *Store) File(path string) (records.FileRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.files[path]
	return rec, ok
}

// Files returns all file records ordered by path.
func (s *Store) Files() []records.FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]records.FileRecord, 0, len(s.files))
	for _, rec := range s.files {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// UpsertFile inserts or replaces the record for rec.Path. Re-insertion
// updates, never duplicates.
func (s *Store) UpsertFile(rec records.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStoreClosed
	}
	s.files[rec.Path] = rec
	s.dirty = true
	return nil
}

// DatasetsByIdentity returns copies of every dataset record matching the
// given identity key. More than one match is a consistency fault the caller
// must raise, not resolve.
func (s *Store) DatasetsByIdentity(key records.IdentityKey) []records.DatasetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := s.byIdentity[key.Normalize().String()]
	out := make([]records.DatasetRecord, 0, len(matches))
	for _, rec := range matches {
		out = append(out, rec.Clone())
	}
	return out
}

// InsertDataset adds a new dataset record.
func (s *Store) InsertDataset(rec records.DatasetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStoreClosed
	}
	if _, exists := s.byID[rec.ID]; exists {
		return fmt.Errorf("dataset %s already exists", rec.ID)
	}
	cp := rec.Clone()
	s.index(&cp)
	s.dirty = true
	return nil
}

// UpdateDataset replaces the stored record with the same ID. The identity
// key of a dataset never changes after creation; only roles and attributes
// are refreshed.
func (s *Store) UpdateDataset(rec records.DatasetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStoreClosed
	}
	existing, ok := s.byID[rec.ID]
	if !ok {
		return errors.NewNotFoundError("dataset", rec.ID)
	}
	cp := rec.Clone()
	cp.Identity = existing.Identity
	*existing = cp
	s.dirty = true
	return nil
}

// Datasets returns copies of all dataset records ordered ascending by their
// primary time attribute, ties broken by identity for deterministic output.
func (s *Store) Datasets() []records.DatasetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]records.DatasetRecord, 0, len(s.datasets))
	for _, rec := range s.datasets {
		out = append(out, rec.Clone())
	}
	sortDatasets(out)
	return out
}

// Len returns the number of dataset records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

// Dirty reports whether there are uncommitted mutations.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Commit persists the current state as one atomic document write. A commit
// with no pending mutations is a no-op, so repeated syncs of an unchanged
// tree never touch the store file.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStoreClosed
	}
	if !s.dirty {
		return nil
	}
	return s.commitLocked()
}

func (s *Store) commitLocked() error {
	doc := document{Reference: s.reference}
	for _, rec := range s.files {
		doc.Files = append(doc.Files, rec)
	}
	sort.Slice(doc.Files, func(i, j int) bool { return doc.Files[i].Path < doc.Files[j].Path })
	for _, rec := range s.datasets {
		doc.Datasets = append(doc.Datasets, rec.Clone())
	}
	sortDatasets(doc.Datasets)

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.WrapIO("encode", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return errors.WrapIO("mkdir", dir, err)
	}

	// Temp file + rename keeps the previous commit readable if this write
	// dies halfway.
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.WrapIO("close", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		os.Remove(tmpPath)
		return errors.WrapIO("chmod", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errors.WrapIO("rename", s.path, err)
	}
	s.dirty = false
	return nil
}

// Rollback discards all uncommitted mutations by reloading the last
// committed document, so an aborted sync leaves no trace in memory and a
// repeated pass re-encounters whatever fault aborted the first one.
func (s *Store) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStoreClosed
	}
	if !s.dirty {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return errors.WrapIO("read", s.path, err)
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return errors.WrapIO("decode", s.path, err)
	}
	s.load(doc)
	s.dirty = false
	return nil
}

// Close marks the store closed. Uncommitted mutations are discarded; the
// sync path commits explicitly before returning.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStoreClosed
	}
	s.closed = true
	return nil
}

func sortDatasets(recs []records.DatasetRecord) {
	sort.Slice(recs, func(i, j int) bool {
		ti, tj := recs[i].Time(), recs[j].Time()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return recs[i].Identity.String() < recs[j].Identity.String()
	})
}
