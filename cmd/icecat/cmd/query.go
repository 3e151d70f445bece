package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/icepolcka/icecat"
	"github.com/icepolcka/icecat/pkg/handle"
)

var (
	filterSource      string
	filterMP          int
	filterRadar       string
	filterMethod      string
	filterDomain      string
	filterHydrometeor string

	queryFrom string
	queryTo   string
	queryAt   string
	queryN    int
)

// timeLayouts are accepted for --from/--to/--at, most specific first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseQueryTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q; use RFC3339 or 2006-01-02 15:04:05", value)
}

func queryFilters() icecat.Filters {
	return icecat.Filters{
		Source:      filterSource,
		MP:          filterMP,
		Radar:       filterRadar,
		Method:      filterMethod,
		Domain:      filterDomain,
		Hydrometeor: filterHydrometeor,
	}
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a product's catalog",
}

var queryRangeCmd = &cobra.Command{
	Use:   "range <product>",
	Short: "List datasets in a time window",
	Long: `Range lists every dataset whose time falls in [--from, --to] inclusive.
Long windows are paged day by day, so querying a whole campaign does not
materialize one giant result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseQueryTime(queryFrom)
		if err != nil {
			return err
		}
		end, err := parseQueryTime(queryTo)
		if err != nil {
			return err
		}

		cat, err := openCatalog(args[0], icecat.WithSyncOnOpen(cfg.Sync))
		if err != nil {
			return err
		}
		defer cat.Close()

		days, err := cat.Days(cmd.Context(), start, end, queryFilters())
		if err != nil {
			return err
		}
		total := 0
		for _, handles := range days {
			for _, h := range handles {
				printHandle(cmd, h)
				total++
			}
		}
		cmd.Printf("%d datasets\n", total)
		return nil
	},
}

var queryClosestCmd = &cobra.Command{
	Use:   "closest <product>",
	Short: "Find the dataset nearest to a time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseQueryTime(queryAt)
		if err != nil {
			return err
		}

		cat, err := openCatalog(args[0], icecat.WithSyncOnOpen(cfg.Sync))
		if err != nil {
			return err
		}
		defer cat.Close()

		h, err := cat.Closest(cmd.Context(), at, queryFilters())
		if err != nil {
			return err
		}
		printHandle(cmd, h)
		return nil
	},
}

var queryLatestCmd = &cobra.Command{
	Use:   "latest <product>",
	Short: "List the most recent datasets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog(args[0], icecat.WithSyncOnOpen(cfg.Sync))
		if err != nil {
			return err
		}
		defer cat.Close()

		handles, err := cat.Latest(cmd.Context(), queryN, queryFilters())
		if err != nil {
			return err
		}
		for _, h := range handles {
			printHandle(cmd, h)
		}
		return nil
	},
}

// printHandle writes one dataset line: time, the attributes that are set,
// then the role→path map.
func printHandle(cmd *cobra.Command, h *handle.Handle) {
	line := ""
	if v, ok := h.Attribute("time"); ok {
		line = v.(time.Time).Format(time.RFC3339)
	} else if v, ok := h.Attribute("start_time"); ok {
		line = v.(time.Time).Format(time.RFC3339)
	}
	for _, name := range []string{"mp_id", "source", "radar", "method", "domain", "hm"} {
		if v, ok := h.Attribute(name); ok {
			line += fmt.Sprintf(" %s=%v", name, v)
		}
	}
	cmd.Println(line)
	for role, path := range h.Paths() {
		cmd.Printf("  %s: %s\n", role, path)
	}
}

func init() {
	for _, sub := range []*cobra.Command{queryRangeCmd, queryClosestCmd, queryLatestCmd} {
		sub.Flags().StringVar(&filterSource, "source", "", "filter by source (MODEL or DWD)")
		sub.Flags().IntVar(&filterMP, "mp", 0, "filter by microphysics scheme ID")
		sub.Flags().StringVar(&filterRadar, "radar", "", "filter by radar site")
		sub.Flags().StringVar(&filterMethod, "method", "", "filter by classification method")
		sub.Flags().StringVar(&filterDomain, "domain", "", "filter by model domain")
		sub.Flags().StringVar(&filterHydrometeor, "hm", "", "filter by hydrometeor class")
		queryCmd.AddCommand(sub)
	}

	queryRangeCmd.Flags().StringVar(&queryFrom, "from", "", "window start (inclusive)")
	queryRangeCmd.Flags().StringVar(&queryTo, "to", "", "window end (inclusive)")
	_ = queryRangeCmd.MarkFlagRequired("from")
	_ = queryRangeCmd.MarkFlagRequired("to")

	queryClosestCmd.Flags().StringVar(&queryAt, "at", "", "target time")
	_ = queryClosestCmd.MarkFlagRequired("at")

	queryLatestCmd.Flags().IntVarP(&queryN, "count", "n", 1, "number of datasets")

	rootCmd.AddCommand(queryCmd)
}
