package cmd

import (
	"errors"
	"fmt"

	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/spf13/cobra"
)

var strictIntegrity bool

var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Report dangling references and unshipped orders",
	Long: `Count the foreign keys that do not resolve (order lines without an
order, orders without a customer or employee) and the orders that have
no shipped date. Inner-join queries silently drop such rows.

With --strict a dangling reference fails the command.`,
	Args: cobra.NoArgs,
	RunE: checkIntegrity,
}

func init() {
	rootCmd.AddCommand(integrityCmd)

	integrityCmd.Flags().BoolVar(&strictIntegrity, "strict", false, "Fail when any foreign key does not resolve")
}

func checkIntegrity(cmd *cobra.Command, args []string) error {
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
	r := snapshot.Integrity()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔍 Store integrity")
	fmt.Fprintf(out, "   Customers:    %d\n", r.Customers)
	fmt.Fprintf(out, "   Employees:    %d\n", r.Employees)
	fmt.Fprintf(out, "   Orders:       %d\n", r.Orders)
	fmt.Fprintf(out, "   OrderDetails: %d\n", r.Lines)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "   Lines without order:      %d\n", r.DanglingLineOrders)
	fmt.Fprintf(out, "   Orders without customer:  %d\n", r.DanglingOrderCustomers)
	fmt.Fprintf(out, "   Orders without employee:  %d\n", r.DanglingOrderEmployees)
	fmt.Fprintf(out, "   Orders not yet shipped:   %d\n", r.UnshippedOrders)
	fmt.Fprintf(out, "   Orders without date:      %d\n", r.UndatedOrders)
	fmt.Fprintf(out, "   Duplicate rows dropped:   %d\n", r.DuplicateRows)

	err = r.Err()
	if err == nil {
		fmt.Fprintln(out, "✅ All references resolve")
		return nil
	}
	if strictIntegrity && errors.Is(err, analytics.ErrDanglingReference) {
		return err
	}
	fmt.Fprintf(out, "⚠️  %v\n", err)
	return nil
}
