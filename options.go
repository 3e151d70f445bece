package icecat

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/handle"
	"github.com/icepolcka/icecat/pkg/logging"
	"github.com/icepolcka/icecat/pkg/metrics"
	"github.com/icepolcka/icecat/pkg/products"
)

// Option is a function that configures a Catalog instance.
type Option func(*config) error

// config holds the resolved open-time configuration.
type config struct {
	syncOnOpen    bool
	recheck       bool
	clock         clockwork.Clock
	logger        *zerolog.Logger
	loader        handle.Loader
	parser        products.Parser
	metrics       *metrics.Metrics
	watchInterval time.Duration
}

func defaultConfig() *config {
	return &config{
		clock:  clockwork.NewRealClock(),
		logger: logging.Default(),
	}
}

// WithSyncOnOpen configures whether Open performs a full sync before
// returning, so the catalog is consistent with disk at open time.
func WithSyncOnOpen(enabled bool) Option {
	return func(c *config) error {
		c.syncOnOpen = enabled
		return nil
	}
}

// WithRecheck configures whether syncs verify already-indexed files against
// their on-disk modification time instead of trusting the prior indexing.
func WithRecheck(enabled bool) Option {
	return func(c *config) error {
		c.recheck = enabled
		return nil
	}
}

// WithClock configures the clock used for file watermarks. Tests pass a fake
// clock to make change detection deterministic.
func WithClock(clock clockwork.Clock) Option {
	return func(c *config) error {
		if clock == nil {
			return errors.NewConfigError("catalog", "clock must not be nil", nil)
		}
		c.clock = clock
		return nil
	}
}

// WithLogger configures the logger for sync diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.NewConfigError("catalog", "logger must not be nil", nil)
		}
		c.logger = logger
		return nil
	}
}

// WithLoader configures the loader handed to result handles. Without one,
// handles resolve paths and attributes but Load fails with ErrNoLoader.
func WithLoader(loader handle.Loader) Option {
	return func(c *config) error {
		c.loader = loader
		return nil
	}
}

// WithParser overrides the product's built-in parser. Intended for tests and
// for applications indexing a nonstandard tree layout.
func WithParser(parser products.Parser) Option {
	return func(c *config) error {
		c.parser = parser
		return nil
	}
}

// WithMetrics configures Prometheus instrumentation for sync passes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) error {
		c.metrics = m
		return nil
	}
}

// WithWatchInterval configures a periodic re-sync for Watch, in addition to
// filesystem notifications. Zero disables the ticker.
func WithWatchInterval(interval time.Duration) Option {
	return func(c *config) error {
		if interval < 0 {
			return errors.NewConfigError("catalog", "watch interval must not be negative", nil)
		}
		c.watchInterval = interval
		return nil
	}
}
