package cmd

import (
	"fmt"

	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/matthieukhl/shopstats/internal/database"
	"github.com/matthieukhl/shopstats/internal/report"
	"github.com/spf13/cobra"
)

var showRows bool

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the relations of the store",
	Args:  cobra.NoArgs,
	RunE:  listTables,
}

var describeCmd = &cobra.Command{
	Use:   "describe <table>",
	Short: "Show the columns of a relation",
	Long: `Show the columns of a relation in declaration order. With --rows
the full relation is printed as well.`,
	Args: cobra.ExactArgs(1),
	RunE: describeTable,
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().BoolVar(&showRows, "rows", false, "Print every row of the relation")
}

func listTables(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, db, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.WithSession(ctx, func(s *database.Session) error {
		tables, err := s.ListTables(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "📋 %d relations\n", len(tables))
		for _, t := range tables {
			fmt.Fprintf(out, "   • %s\n", t)
		}
		return nil
	})
}

func describeTable(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, db, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.WithSession(ctx, func(s *database.Session) error {
		columns, err := s.Describe(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "📋 %s\n", args[0])
		for i, c := range columns {
			fmt.Fprintf(out, "   %d. %s\n", i+1, c)
		}

		if !showRows {
			return nil
		}
		var rs analytics.ResultSet
		if rs, err = s.Relation(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(out)
		report.RenderTable(out, "", rs)
		return nil
	})
}
