package cmd

import (
	"fmt"

	"github.com/matthieukhl/shopstats/internal/database"
	"github.com/spf13/cobra"
)

var (
	dropFirst bool
	skipData  bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the four relations and load sample data",
	Long: `Creates the Customers, Employees, Orders and OrderDetails relations
and populates them with a small sample data set.

The sample includes a customer without orders, an unshipped order and
two orders placed by one customer on the same day, so every query has
something interesting to show.`,
	Args: cobra.NoArgs,
	RunE: seedStore,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "Drop the existing relations before creating")
	seedCmd.Flags().BoolVar(&skipData, "schema-only", false, "Create schema only, skip sample data")
}

func seedStore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔧 Setting up store...")

	_, db, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if dropFirst {
		fmt.Fprintln(out, "🗑️  Dropping existing relations...")
		if err := db.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	fmt.Fprintln(out, "📋 Creating schema...")
	if err := db.CreateSchema(ctx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if !skipData {
		fmt.Fprintln(out, "📊 Populating with sample data...")
		if err := db.Seed(ctx, database.SampleFixture()); err != nil {
			return fmt.Errorf("failed to populate sample data: %w", err)
		}
	}

	fmt.Fprintln(out, "✅ Store setup complete!")
	return nil
}
