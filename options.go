package sheetsync

import (
	"github.com/dotshop/sheetsync/pkg/record"
	"github.com/dotshop/sheetsync/pkg/sync"
)

// Option is a function that configures a Syncer.
type Option func(*config) error

// config collects construction-time settings before they are split between
// the normalizer and the executor.
type config struct {
	normalizerOpts []record.NormalizerOption
	syncOpts       *sync.Options
}

func defaultConfig() *config {
	return &config{syncOpts: sync.Defaults()}
}

// WithMapping configures how raw scraper fields map onto sheet columns.
func WithMapping(m record.Mapping) Option {
	return func(c *config) error {
		c.normalizerOpts = append(c.normalizerOpts, record.WithMapping(m))
		return nil
	}
}

// WithSchema overrides the sheet column schema.
func WithSchema(s record.Schema) Option {
	return func(c *config) error {
		c.normalizerOpts = append(c.normalizerOpts, record.WithSchema(s))
		return nil
	}
}

// WithSyncOptions configures the default executor options for every cycle.
// Per-cycle options passed to Sync override these.
func WithSyncOptions(opts ...sync.Option) Option {
	return func(c *config) error {
		c.syncOpts = c.syncOpts.Apply(opts...)
		return nil
	}
}
