package cmd

import (
	"fmt"

	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/matthieukhl/shopstats/internal/report"
	"github.com/spf13/cobra"
)

var (
	rangeFrom string
	rangeTo   string
	asCSV     bool
)

var queryCmd = &cobra.Command{
	Use:   "query <name>",
	Short: "Run a catalogued analytics query",
	Long: `Run one analytics query against a fresh snapshot of the store and
print the result as a table (or CSV with --csv).

Range queries need --from and --to. The lower bound is exclusive and the
upper bound inclusive. Use "shopstats queries" to list every query.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List the catalogued analytics queries",
	Args:  cobra.NoArgs,
	RunE:  listQueries,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(queriesCmd)

	queryCmd.Flags().StringVar(&rangeFrom, "from", "", "Range start, exclusive (YYYY-MM-DD)")
	queryCmd.Flags().StringVar(&rangeTo, "to", "", "Range end, inclusive (YYYY-MM-DD)")
	queryCmd.Flags().BoolVar(&asCSV, "csv", false, "Write CSV instead of a table")
}

func runQuery(cmd *cobra.Command, args []string) error {
	q, err := analytics.Lookup(args[0])
	if err != nil {
		return err
	}
	params, err := q.ParseParams(rangeFrom, rangeTo)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	_, db, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := loadSnapshot(ctx, db)
	if err != nil {
		return err
	}

	rs, err := q.Run(snapshot, params)
	if err != nil {
		return err
	}

	if asCSV {
		return report.WriteCSV(cmd.OutOrStdout(), rs)
	}
	report.RenderTable(cmd.OutOrStdout(), q.Description, rs)
	return nil
}

func listQueries(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, q := range analytics.Catalog() {
		suffix := ""
		if q.NeedsRange {
			suffix = " (--from, --to)"
		}
		fmt.Fprintf(out, "%-28s %s%s\n", q.Name, q.Description, suffix)
	}
	return nil
}
