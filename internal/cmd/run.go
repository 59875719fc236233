package cmd

import (
	"fmt"

	"github.com/matthieukhl/shopstats/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only HTTP API",
	Long: `Start the HTTP API which provides:
- the relations of the store and their rows
- every catalogued analytics query, evaluated per request
- the integrity report`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "🚀 Shopstats server starting...")

	cfg, db, logger, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Connected to %s store\n", db.Dialect().Name)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.NewServer(db, logger)
	fmt.Fprintf(cmd.OutOrStdout(), "🌐 Starting server on %s...\n", addr)
	if err := srv.Start(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
