package icecat

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"

	"github.com/icepolcka/icecat/pkg/errors"
)

// watchDebounce batches the event bursts a single archive transfer produces
// into one sync pass.
const watchDebounce = 2 * time.Second

// Watch re-runs Sync whenever the data root changes, and additionally on the
// interval configured with WithWatchInterval. It blocks until the context is
// canceled, which is the normal way to stop watching.
//
// A sync failure is logged and watching continues; only consistency faults
// stop the watch, since re-running into the same fault would loop forever.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapIO("watch", c.rootDir, err)
	}
	defer watcher.Close()

	if err := c.watchTree(watcher); err != nil {
		return err
	}

	// The debounce timer starts stopped and is armed by the first event.
	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	var tick <-chan time.Time
	if c.cfg.watchInterval > 0 {
		ticker := time.NewTicker(c.cfg.watchInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	c.logger.Info().Str("root", c.rootDir).Msg("Watching data root")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// New directories must be added explicitly; fsnotify does
				// not watch recursively.
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := watcher.Add(ev.Name); err != nil {
						c.logger.Warn().Err(err).Str("path", ev.Name).Msg("Cannot watch new directory")
					}
				}
			}
			debounce.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn().Err(err).Msg("Filesystem watcher error")

		case <-debounce.C:
			if err := c.watchSync(ctx); err != nil {
				return err
			}

		case <-tick:
			if err := c.watchSync(ctx); err != nil {
				return err
			}
		}
	}
}

// watchTree registers the root and every subdirectory with the watcher.
func (c *Catalog) watchTree(watcher *fsnotify.Watcher) error {
	return godirwalk.Walk(c.rootDir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			if err := watcher.Add(path); err != nil {
				return errors.WrapIO("watch", path, err)
			}
			return nil
		},
	})
}

func (c *Catalog) watchSync(ctx context.Context) error {
	_, err := c.Sync(ctx)
	switch {
	case err == nil:
		return nil
	case errors.IsCanceled(err):
		return err
	case errors.IsDuplicateDataset(err):
		return err
	default:
		c.logger.Err(err).Msg("Sync from watch failed")
		return nil
	}
}
