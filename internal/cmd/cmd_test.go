package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/matthieukhl/shopstats/internal/config"
	"github.com/matthieukhl/shopstats/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useStore points the commands at a fresh sqlite file and resets the flags
// a previous test may have set
func useStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("SHOPSTATS_STORE_DRIVER", config.DriverSQLite)
	t.Setenv("SHOPSTATS_STORE_DSN", filepath.Join(dir, "data", "shop.sqlite"))
	t.Setenv("SHOPSTATS_LOG_LEVEL", "error")

	config.ConfigFile = ""
	showRows, asCSV, strictIntegrity = false, false, false
	rangeFrom, rangeTo = "", ""
	exportDir, exportPrefix, exportFrom, exportTo = "", "", "", ""
	exportTables, exportQueries = true, true
	dropFirst, skipData = false, false
	color.NoColor = true
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func seeded(t *testing.T) string {
	t.Helper()
	dir := useStore(t)
	out, err := run(t, "seed")
	require.NoError(t, err, out)
	require.Contains(t, out, "Store setup complete")
	return dir
}

func TestTablesAndDescribe(t *testing.T) {
	seeded(t)

	out, err := run(t, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "4 relations")
	assert.Contains(t, out, "OrderDetails")

	out, err = run(t, "describe", "orders", "--rows")
	require.NoError(t, err)
	assert.Contains(t, out, "5. ShippedDate")
	assert.Contains(t, out, "10248")
	assert.Contains(t, out, "(9 rows)")

	_, err = run(t, "describe", "Products")
	assert.ErrorIs(t, err, analytics.ErrUnknownRelation)
}

func TestQuery(t *testing.T) {
	seeded(t)

	out, err := run(t, "query", "best-employee")
	require.NoError(t, err)
	assert.Contains(t, out, "Davolio")
	assert.Contains(t, out, "3375.8")

	out, err = run(t, "query", "orders-in-range", "--from", "1996-07-05", "--to", "1996-07-08", "--csv")
	require.NoError(t, err)
	rs, err := report.ReadCSV(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, "10250", rs.Rows[0][0])
}

func TestQuery_Errors(t *testing.T) {
	seeded(t)

	_, err := run(t, "query", "no-such-query")
	assert.ErrorIs(t, err, analytics.ErrUnknownQuery)

	_, err = run(t, "query", "orders-in-range", "--from", "1996-07-05", "--to", "")
	assert.ErrorIs(t, err, analytics.ErrInvalidParams)
}

func TestQueries(t *testing.T) {
	useStore(t)

	out, err := run(t, "queries")
	require.NoError(t, err)
	for _, q := range analytics.Catalog() {
		assert.Contains(t, out, q.Name)
	}
}

func TestIntegrity(t *testing.T) {
	seeded(t)

	out, err := run(t, "integrity", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "Orders not yet shipped:   1")
	assert.Contains(t, out, "without shipped date")
}

func TestExport(t *testing.T) {
	dir := seeded(t)
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "export", "--dir", outDir)
	require.NoError(t, err)

	// four relations plus every query except the range one
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 4+len(analytics.Catalog())-1)
	assert.FileExists(t, filepath.Join(outDir, "csv_ecommerce_Customers.csv"))
	assert.FileExists(t, filepath.Join(outDir, "csv_ecommerce_order-rank.csv"))
	assert.NoFileExists(t, filepath.Join(outDir, "csv_ecommerce_orders-in-range.csv"))
	assert.Contains(t, out, "Exported")
}

func TestSeed_DropFirst(t *testing.T) {
	seeded(t)

	out, err := run(t, "seed", "--drop-first")
	require.NoError(t, err)
	assert.Contains(t, out, "Dropping existing relations")

	out, err = run(t, "query", "orders-per-customer", "--csv")
	require.NoError(t, err)
	rs, err := report.ReadCSV(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 5, rs.Len())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir for go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
