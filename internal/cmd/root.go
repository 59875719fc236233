package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/matthieukhl/shopstats/internal/config"
	"github.com/matthieukhl/shopstats/internal/database"
	"github.com/matthieukhl/shopstats/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shopstats",
	Short: "Shopstats - analytics over an e-commerce order store",
	Long: `Shopstats reads the Customers, Employees, Orders and OrderDetails
relations of an e-commerce store and answers aggregation and window
queries over them: spend per customer, best employee, order ranks,
running totals, days between orders and more.

Results can be printed as tables, exported as CSV files or served
over a small read-only HTTP API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&config.ConfigFile, "config", "", "Config file (default: config.yaml in ./deploy, ., $HOME/.shopstats or /etc/shopstats)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore loads the configuration, builds the logger and connects to the
// configured store
func openStore(ctx context.Context) (*config.Config, *database.DB, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	db, err := database.NewConnection(ctx, &cfg.Store, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return cfg, db, logger, nil
}

// loadSnapshot reads the four relations inside one session
func loadSnapshot(ctx context.Context, db *database.DB) (*analytics.Snapshot, error) {
	var snapshot *analytics.Snapshot
	err := db.WithSession(ctx, func(s *database.Session) error {
		var err error
		snapshot, err = s.LoadSnapshot(ctx)
		return err
	})
	return snapshot, err
}
