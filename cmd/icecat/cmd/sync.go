package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/icepolcka/icecat"
	"github.com/icepolcka/icecat/pkg/logging"
)

var (
	syncRecheck  bool
	syncWatch    bool
	syncInterval time.Duration
)

var syncCmd = &cobra.Command{
	Use:   "sync [product...]",
	Short: "Reconcile catalogs with their data trees",
	Long: `Sync walks each product's data root, indexes new files and commits the
result. Without arguments every configured product is synced. Products sync
concurrently; each one is a single-writer pass over its own store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := args
		if len(names) == 0 {
			names = cfg.Names()
		}
		if len(names) == 0 {
			return fmt.Errorf("no products configured and none given")
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		for _, name := range names {
			g.Go(func() error {
				opts := []icecat.Option{icecat.WithRecheck(syncRecheck || cfg.Recheck)}
				if syncInterval > 0 {
					opts = append(opts, icecat.WithWatchInterval(syncInterval))
				}
				cat, err := openCatalog(name, opts...)
				if err != nil {
					return err
				}
				defer cat.Close()

				summary, err := cat.Sync(logging.WithProduct(ctx, name))
				printSummary(cmd, name, summary)
				if err != nil {
					return err
				}
				if syncWatch {
					return cat.Watch(ctx)
				}
				return nil
			})
		}
		return g.Wait()
	},
}

func printSummary(cmd *cobra.Command, product string, s icecat.SyncSummary) {
	cmd.Printf("%s: scanned %d, accepted %d, skipped %d, corrupt %d, unrecognized %d, created %d, updated %d, fatal %d (%s)\n",
		product, s.Scanned, s.Accepted, s.Skipped, s.Corrupt, s.Unrecognized,
		s.DatasetsCreated, s.DatasetsUpdated, s.Fatal, s.Duration.Round(time.Millisecond))
}

func init() {
	syncCmd.Flags().BoolVar(&syncRecheck, "recheck", false, "verify known files against their modification time")
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "keep running and re-sync on filesystem changes")
	syncCmd.Flags().DurationVar(&syncInterval, "interval", 0, "additional periodic re-sync interval in watch mode")
	rootCmd.AddCommand(syncCmd)
}
