// Package cmd implements the icecat CLI commands.
package cmd

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/icepolcka/icecat"
	"github.com/icepolcka/icecat/internal/config"
	"github.com/icepolcka/icecat/pkg/logging"
)

var (
	configFile string
	verbose    bool

	// cfg is loaded once before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "icecat",
	Short: "Time-indexed catalog for scientific data trees",
	Long: `icecat indexes directory trees of scientific data files (model output,
radar scans, derived products) into per-product catalogs and answers
time-range, closest-in-time and latest-N queries against them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		var err error
		cfg, err = config.Load(configFile)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.icecat.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openCatalog opens the configured catalog for one product, honoring the
// config file's sync and recheck settings plus any overrides.
func openCatalog(product string, opts ...icecat.Option) (*icecat.Catalog, error) {
	p, err := cfg.Product(product)
	if err != nil {
		return nil, err
	}
	base := []icecat.Option{
		icecat.WithRecheck(cfg.Recheck),
		icecat.WithLogger(logging.Default()),
	}
	return icecat.Open(product, p.Data, p.Store, append(base, opts...)...)
}
