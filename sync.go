package icecat

import (
	"context"
	"os"
	"time"

	"github.com/karrick/godirwalk"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/records"
)

// SyncSummary reports what one sync pass did. It is returned even when the
// pass failed partway, so operators can see how far the walk got before the
// fault.
type SyncSummary struct {
	Scanned         int
	Accepted        int
	Skipped         int
	Corrupt         int
	Unrecognized    int
	DatasetsCreated int
	DatasetsUpdated int

	// Fatal is 1 when the pass aborted on a consistency or infrastructure
	// fault; the returned error carries the fault itself.
	Fatal int

	Duration time.Duration
}

// Sync reconciles the catalog with the filesystem: it walks the data root in
// lexicographic order, indexes new files, re-checks known ones when recheck
// is enabled, and commits all changes as one atomic store write.
//
// Sync is idempotent. A second pass over an unchanged tree performs no
// parses and leaves the store untouched. Per-file problems (unrecognized
// names, unparseable files) are absorbed as diagnostics; only consistency
// faults and infrastructure failures abort the pass, and an aborted pass
// commits nothing.
func (c *Catalog) Sync(ctx context.Context) (SyncSummary, error) {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	start := c.cfg.clock.Now()
	c.cfg.metrics.SetRunning(c.product.Name, true)
	defer c.cfg.metrics.SetRunning(c.product.Name, false)

	var summary SyncSummary
	defer func() {
		summary.Duration = c.cfg.clock.Now().Sub(start)
		c.cfg.metrics.ObserveSync(c.product.Name, summary.Duration)
		c.recordCounts(summary)
	}()

	if err := c.readable(ctx); err != nil {
		return summary, err
	}

	link := &linker{product: c.product.Name, store: c.store}

	err := godirwalk.Walk(c.rootDir, &godirwalk.Options{
		// Sorted traversal keeps linking outcomes reproducible when two
		// files could independently create the same dataset record.
		Unsorted: false,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !de.IsRegular() {
				return nil
			}
			return c.syncFile(ctx, link, path, &summary)
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			// A directory that vanished mid-walk is not worth aborting an
			// hours-long pass over a large archive.
			if os.IsNotExist(err) {
				c.logger.Warn().Str("path", path).Msg("Path vanished during sync walk")
				return godirwalk.SkipNode
			}
			return godirwalk.Halt
		},
	})
	if err != nil {
		// An aborted pass commits nothing: the in-memory mutations are
		// discarded too, so the next pass starts from the last committed
		// state and re-encounters the fault instead of skipping past it.
		if !errors.IsCanceled(err) {
			summary.Fatal = 1
		}
		if rbErr := c.store.Rollback(); rbErr != nil {
			c.logger.Err(rbErr).Msg("Cannot roll back aborted sync")
		}
		c.logger.Err(err).
			Int("scanned", summary.Scanned).
			Msg("Sync aborted")
		return summary, err
	}

	if err := c.store.Commit(); err != nil {
		summary.Fatal = 1
		return summary, err
	}

	c.logger.Info().
		Int("scanned", summary.Scanned).
		Int("accepted", summary.Accepted).
		Int("skipped", summary.Skipped).
		Int("corrupt", summary.Corrupt).
		Int("unrecognized", summary.Unrecognized).
		Int("created", summary.DatasetsCreated).
		Int("updated", summary.DatasetsUpdated).
		Msg("Sync finished")
	return summary, nil
}

// syncFile applies the per-file decision tree: classify, skip known and
// unchanged files, parse and link the rest.
func (c *Catalog) syncFile(ctx context.Context, link *linker, path string, summary *SyncSummary) error {
	summary.Scanned++

	kind, ok := c.product.Classify(path)
	if !ok {
		summary.Unrecognized++
		c.logger.Debug().Str("path", path).Msg("Not a recognized data file")
		return nil
	}

	if existing, known := c.store.File(path); known {
		if !c.cfg.recheck {
			summary.Skipped++
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			// Same tolerance as the walk's error callback: a file deleted
			// between listing and stat must not kill the pass.
			if os.IsNotExist(err) {
				summary.Skipped++
				c.logger.Warn().Str("path", path).Msg("File vanished before recheck")
				return nil
			}
			return errors.WrapIO("stat", path, err)
		}
		if !info.ModTime().After(existing.LastChecked) {
			summary.Skipped++
			c.logger.Debug().Str("path", path).Msg("Skipping unchanged file")
			return nil
		}
	}

	return c.indexFile(ctx, link, path, kind, summary)
}

// indexFile parses one accepted file and links it into its dataset. A parse
// failure records the file as corrupt so later passes do not retry it, and
// never fails the sync.
func (c *Catalog) indexFile(ctx context.Context, link *linker, path string, kind records.FileKind, summary *SyncSummary) error {
	parsed, err := c.product.Parser.Parse(ctx, path, kind)
	if err != nil {
		summary.Corrupt++
		c.logger.Warn().Err(err).Str("path", path).Msg("Recording unparseable file as corrupt")
		return c.store.UpsertFile(records.FileRecord{
			Path:        path,
			Kind:        records.KindCorrupt,
			LastChecked: c.cfg.clock.Now(),
		})
	}

	// Link before recording the file, so a consistency fault never leaves
	// behind a FileRecord for a file that was attached to nothing.
	result, err := link.attach(parsed, path)
	if err != nil {
		return err
	}
	if err := c.store.UpsertFile(records.FileRecord{
		Path:        path,
		Kind:        kind,
		LastChecked: c.cfg.clock.Now(),
	}); err != nil {
		return err
	}
	summary.Accepted++
	switch result {
	case attachCreated:
		summary.DatasetsCreated++
	case attachUpdated:
		summary.DatasetsUpdated++
	}
	return nil
}

func (c *Catalog) recordCounts(s SyncSummary) {
	m := c.cfg.metrics
	if m == nil {
		return
	}
	name := c.product.Name
	m.Add(m.FilesScanned, name, s.Scanned)
	m.Add(m.FilesAccepted, name, s.Accepted)
	m.Add(m.FilesSkipped, name, s.Skipped)
	m.Add(m.FilesCorrupt, name, s.Corrupt)
	m.Add(m.FilesUnrecognized, name, s.Unrecognized)
	m.Add(m.DatasetsCreated, name, s.DatasetsCreated)
	m.Add(m.DatasetsUpdated, name, s.DatasetsUpdated)
}
