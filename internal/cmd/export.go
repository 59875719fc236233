package cmd

import (
	"fmt"

	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/matthieukhl/shopstats/internal/database"
	"github.com/matthieukhl/shopstats/internal/models"
	"github.com/matthieukhl/shopstats/internal/report"
	"github.com/spf13/cobra"
)

var (
	exportDir     string
	exportPrefix  string
	exportTables  bool
	exportQueries bool
	exportFrom    string
	exportTo      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export relations and query results as CSV files",
	Long: `Write one CSV file per relation and per catalogued query into the
export directory, named <prefix><name>.csv.

Range queries are exported only when --from and --to are given.`,
	Args: cobra.NoArgs,
	RunE: exportCSV,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Export directory (default: export.dir from config)")
	exportCmd.Flags().StringVar(&exportPrefix, "prefix", "", "File name prefix (default: export.prefix from config)")
	exportCmd.Flags().BoolVar(&exportTables, "tables", true, "Export the four relations")
	exportCmd.Flags().BoolVar(&exportQueries, "queries", true, "Export every catalogued query")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start for range queries (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end for range queries (YYYY-MM-DD)")
}

func exportCSV(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, db, logger, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	dir, prefix := cfg.Export.Dir, cfg.Export.Prefix
	if exportDir != "" {
		dir = exportDir
	}
	if exportPrefix != "" {
		prefix = exportPrefix
	}

	sets := make(map[string]analytics.ResultSet)
	err = db.WithSession(ctx, func(s *database.Session) error {
		if exportTables {
			for _, rel := range models.Relations {
				rs, err := s.Relation(ctx, rel)
				if err != nil {
					return err
				}
				sets[rel] = rs
			}
		}

		if !exportQueries {
			return nil
		}
		snapshot, err := s.LoadSnapshot(ctx)
		if err != nil {
			return err
		}
		for _, q := range analytics.Catalog() {
			if q.NeedsRange && (exportFrom == "" || exportTo == "") {
				logger.Info("skipping range query without --from/--to", "query", q.Name)
				continue
			}
			params, err := q.ParseParams(exportFrom, exportTo)
			if err != nil {
				return err
			}
			rs, err := q.Run(snapshot, params)
			if err != nil {
				return err
			}
			sets[q.Name] = rs
		}
		return nil
	})
	if err != nil {
		return err
	}

	paths, err := report.ExportAll(dir, prefix, sets)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprintf(out, "   📄 %s\n", p)
	}
	fmt.Fprintf(out, "✅ Exported %d files to %s\n", len(paths), dir)
	return nil
}
