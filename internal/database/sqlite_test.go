package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/matthieukhl/shopstats/internal/config"
	"github.com/matthieukhl/shopstats/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seededStore opens a file-backed sqlite store holding SampleFixture
func seededStore(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := NewConnection(ctx, &config.StoreConfig{
		Driver:       config.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "shop.sqlite"),
		MaxOpenConns: 1,
	}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.CreateSchema(ctx))
	require.NoError(t, db.Seed(ctx, SampleFixture()))
	return db
}

func loadSnapshot(t *testing.T, db *DB) *analytics.Snapshot {
	t.Helper()
	var snapshot *analytics.Snapshot
	err := db.WithSession(context.Background(), func(s *Session) error {
		var err error
		snapshot, err = s.LoadSnapshot(context.Background())
		return err
	})
	require.NoError(t, err)
	return snapshot
}

func TestSQLite_ListAndDescribe(t *testing.T) {
	db := seededStore(t)

	err := db.WithSession(context.Background(), func(s *Session) error {
		tables, err := s.ListTables(context.Background())
		require.NoError(t, err)
		assert.ElementsMatch(t, models.Relations, tables)

		columns, err := s.Describe(context.Background(), models.RelationOrderDetails)
		require.NoError(t, err)
		assert.Equal(t, lineColumns, columns)

		_, err = s.Describe(context.Background(), "Products")
		assert.ErrorIs(t, err, analytics.ErrUnknownRelation)
		return nil
	})
	require.NoError(t, err)
}

func TestSQLite_RelationRows(t *testing.T) {
	db := seededStore(t)

	err := db.WithSession(context.Background(), func(s *Session) error {
		rs, err := s.Relation(context.Background(), models.RelationCustomers)
		require.NoError(t, err)
		assert.Equal(t, customerColumns, rs.Columns)
		assert.Equal(t, len(SampleFixture().Customers), rs.Len())
		return nil
	})
	require.NoError(t, err)
}

func TestSQLite_SnapshotMatchesFixture(t *testing.T) {
	db := seededStore(t)
	fixture := SampleFixture()
	snapshot := loadSnapshot(t, db)

	assert.Equal(t, fixture.Customers, snapshot.Customers())
	assert.Equal(t, fixture.Employees, snapshot.Employees())
	require.Len(t, snapshot.Orders(), len(fixture.Orders))
	require.Len(t, snapshot.Lines(), len(fixture.Lines))

	for i, got := range snapshot.Orders() {
		want := fixture.Orders[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.CustomerID, got.CustomerID)
		assert.True(t, want.OrderDate.Equal(got.OrderDate), "order %d date %s", got.ID, got.OrderDate)
		assert.Equal(t, want.Shipped(), got.Shipped(), "order %d", got.ID)
	}

	report := snapshot.Integrity()
	assert.Zero(t, report.Dangling())
	assert.Equal(t, 1, report.UnshippedOrders)
}

func TestSQLite_SpendPerCustomer(t *testing.T) {
	snapshot := loadSnapshot(t, seededStore(t))

	totals := map[string]string{}
	for _, s := range snapshot.SpendPerCustomer() {
		totals[s.CustomerID] = s.Exact.StringFixed(2)
	}

	assert.Equal(t, map[string]string{
		"ALFKI": "4419.00",
		"ANATR": "2320.60",
		"ANTON": "922.60",
		"AROUT": "200.00",
	}, totals)
}

func TestSQLite_QueriesRunEndToEnd(t *testing.T) {
	snapshot := loadSnapshot(t, seededStore(t))
	from := time.Date(1996, 7, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(1996, 7, 10, 0, 0, 0, 0, time.UTC)

	for _, q := range analytics.Catalog() {
		rs, err := q.Run(snapshot, analytics.Params{From: from, To: to})
		require.NoError(t, err, q.Name)
		assert.Equal(t, q.Columns, rs.Columns, q.Name)
		assert.NotZero(t, rs.Len(), q.Name)
	}
}

func TestSQLite_DropSchema(t *testing.T) {
	db := seededStore(t)
	require.NoError(t, db.DropSchema(context.Background()))

	err := db.WithSession(context.Background(), func(s *Session) error {
		_, err := s.LoadSnapshot(context.Background())
		return err
	})
	assert.ErrorIs(t, err, analytics.ErrSchemaMismatch)
}

func TestNewConnection_CreatesSQLiteDir(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "shop.sqlite")

	db, err := NewConnection(context.Background(), &config.StoreConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + dsn + "?_pragma=busy_timeout(5000)",
	}, discardLogger())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.DirExists(t, filepath.Dir(dsn))
	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestNewConnection_UnknownDriver(t *testing.T) {
	_, err := NewConnection(context.Background(), &config.StoreConfig{Driver: "oracle", DSN: "x"}, discardLogger())
	assert.Error(t, err)
}

func TestSQLite_NullOrderDateIsFlaggedNotFatal(t *testing.T) {
	db := seededStore(t)
	_, err := db.ExecContext(context.Background(), `UPDATE "Orders" SET "OrderDate" = NULL WHERE "OrderID" = 10249`)
	require.NoError(t, err)

	snapshot := loadSnapshot(t, db)
	require.Len(t, snapshot.Orders(), len(SampleFixture().Orders))

	report := snapshot.Integrity()
	assert.Equal(t, 1, report.UndatedOrders)
	assert.ErrorIs(t, report.Err(), analytics.ErrNullBoundary)

	for _, r := range snapshot.OrderRankPerCustomer() {
		assert.NotEqual(t, int64(10249), r.OrderID)
	}
	for _, iv := range snapshot.OrderIntervals() {
		assert.NotEqual(t, int64(10249), iv.OrderID)
	}

	// queries that never read dates still see the order
	for _, c := range snapshot.OrdersPerCustomer() {
		if c.CustomerID == "ANATR" {
			assert.Equal(t, 2, c.Orders)
		}
	}
	for _, s := range snapshot.SpendPerCustomer() {
		if s.CustomerID == "ANATR" {
			assert.Equal(t, "2320.60", s.Exact.StringFixed(2))
		}
	}
}
