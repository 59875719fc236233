package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/matthieukhl/shopstats/internal/models"
	"github.com/shopspring/decimal"
)

// Fixture is a complete data set for the four relations
type Fixture struct {
	Customers []models.Customer
	Employees []models.Employee
	Orders    []models.Order
	Lines     []models.OrderLine
}

type columnDef struct {
	name string
	kind string
}

func (d Dialect) tableDefs() map[string][]columnDef {
	return map[string][]columnDef{
		models.RelationCustomers: {
			{"CustomerID", "VARCHAR(16) NOT NULL PRIMARY KEY"},
			{"ContactName", "VARCHAR(100) NOT NULL"},
		},
		models.RelationEmployees: {
			{"EmployeeID", "INTEGER NOT NULL PRIMARY KEY"},
			{"FirstName", "VARCHAR(50) NOT NULL"},
			{"LastName", "VARCHAR(50) NOT NULL"},
		},
		models.RelationOrders: {
			{"OrderID", "INTEGER NOT NULL PRIMARY KEY"},
			{"CustomerID", "VARCHAR(16) NOT NULL"},
			{"EmployeeID", "INTEGER NOT NULL"},
			{"OrderDate", d.DateTimeType + " NULL"},
			{"ShippedDate", d.DateTimeType + " NULL"},
		},
		models.RelationOrderDetails: {
			{"OrderID", "INTEGER NOT NULL"},
			{"ProductID", "INTEGER NOT NULL"},
			{"UnitPrice", "DECIMAL(10,2) NOT NULL"},
			{"Quantity", "INTEGER NOT NULL"},
		},
	}
}

// CreateSchema creates the four relations if they do not exist yet
func (db *DB) CreateSchema(ctx context.Context) error {
	defs := db.dialect.tableDefs()
	for _, rel := range models.Relations {
		cols := make([]string, len(defs[rel]))
		for i, c := range defs[rel] {
			cols[i] = db.dialect.Quote(c.name) + " " + c.kind
		}
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", db.dialect.Quote(rel), strings.Join(cols, ", "))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create %s: %w", rel, err)
		}
	}
	return nil
}

// DropSchema removes the four relations
func (db *DB) DropSchema(ctx context.Context) error {
	for i := len(models.Relations) - 1; i >= 0; i-- {
		rel := models.Relations[i]
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+db.dialect.Quote(rel)); err != nil {
			return fmt.Errorf("drop %s: %w", rel, err)
		}
	}
	return nil
}

// Seed inserts a fixture in one transaction
func (db *DB) Seed(ctx context.Context, f Fixture) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range f.Customers {
		if err := db.insert(ctx, tx, models.RelationCustomers, customerColumns, c.ID, c.ContactName); err != nil {
			return err
		}
	}
	for _, e := range f.Employees {
		if err := db.insert(ctx, tx, models.RelationEmployees, employeeColumns, e.ID, e.FirstName, e.LastName); err != nil {
			return err
		}
	}
	for _, o := range f.Orders {
		var shipped any
		if o.ShippedDate != nil {
			shipped = *o.ShippedDate
		}
		if err := db.insert(ctx, tx, models.RelationOrders, orderColumns, o.ID, o.CustomerID, o.EmployeeID, o.OrderDate, shipped); err != nil {
			return err
		}
	}
	for _, l := range f.Lines {
		if err := db.insert(ctx, tx, models.RelationOrderDetails, lineColumns, l.OrderID, l.ProductID, l.UnitPrice.StringFixed(2), l.Quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	db.logger.Info("store seeded",
		"customers", len(f.Customers),
		"employees", len(f.Employees),
		"orders", len(f.Orders),
		"order_lines", len(f.Lines),
	)
	return nil
}

func (db *DB) insert(ctx context.Context, tx *sql.Tx, table string, columns []string, args ...any) error {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = db.dialect.Quote(c)
		marks[i] = db.dialect.Placeholder(i + 1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		db.dialect.Quote(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// SampleFixture is a small, fixed data set. It has a customer without
// orders, an unshipped order and two orders placed by one customer on the
// same day.
func SampleFixture() Fixture {
	date := func(s string) time.Time {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			panic(err)
		}
		return t
	}
	shipped := func(s string) *time.Time {
		t := date(s)
		return &t
	}
	price := decimal.RequireFromString

	return Fixture{
		Customers: []models.Customer{
			{ID: "ALFKI", ContactName: "Maria Anders"},
			{ID: "ANATR", ContactName: "Ana Trujillo"},
			{ID: "ANTON", ContactName: "Antonio Moreno"},
			{ID: "AROUT", ContactName: "Thomas Hardy"},
			{ID: "BERGS", ContactName: "Christina Berglund"},
		},
		Employees: []models.Employee{
			{ID: 1, FirstName: "Nancy", LastName: "Davolio"},
			{ID: 2, FirstName: "Andrew", LastName: "Fuller"},
			{ID: 3, FirstName: "Janet", LastName: "Leverling"},
		},
		Orders: []models.Order{
			{ID: 10248, CustomerID: "ALFKI", EmployeeID: 1, OrderDate: date("1996-07-04"), ShippedDate: shipped("1996-07-16")},
			{ID: 10249, CustomerID: "ANATR", EmployeeID: 2, OrderDate: date("1996-07-05"), ShippedDate: shipped("1996-07-10")},
			{ID: 10250, CustomerID: "ALFKI", EmployeeID: 3, OrderDate: date("1996-07-08"), ShippedDate: shipped("1996-07-12")},
			{ID: 10251, CustomerID: "ANTON", EmployeeID: 2, OrderDate: date("1996-07-08"), ShippedDate: shipped("1996-07-15")},
			{ID: 10252, CustomerID: "ALFKI", EmployeeID: 1, OrderDate: date("1996-07-20"), ShippedDate: shipped("1996-07-22")},
			{ID: 10253, CustomerID: "AROUT", EmployeeID: 2, OrderDate: date("1996-07-10")},
			{ID: 10254, CustomerID: "ANATR", EmployeeID: 3, OrderDate: date("1996-07-10"), ShippedDate: shipped("1996-07-23")},
			{ID: 10255, CustomerID: "ANTON", EmployeeID: 2, OrderDate: date("1996-07-12"), ShippedDate: shipped("1996-07-15")},
			{ID: 10256, CustomerID: "ANTON", EmployeeID: 1, OrderDate: date("1996-07-12"), ShippedDate: shipped("1996-07-17")},
		},
		Lines: []models.OrderLine{
			{OrderID: 10248, ProductID: 11, UnitPrice: price("14.00"), Quantity: 12},
			{OrderID: 10248, ProductID: 42, UnitPrice: price("9.80"), Quantity: 10},
			{OrderID: 10249, ProductID: 14, UnitPrice: price("18.60"), Quantity: 9},
			{OrderID: 10249, ProductID: 51, UnitPrice: price("42.40"), Quantity: 40},
			{OrderID: 10250, ProductID: 41, UnitPrice: price("7.70"), Quantity: 10},
			{OrderID: 10250, ProductID: 51, UnitPrice: price("42.40"), Quantity: 35},
			{OrderID: 10251, ProductID: 22, UnitPrice: price("16.80"), Quantity: 6},
			{OrderID: 10252, ProductID: 20, UnitPrice: price("64.80"), Quantity: 40},
			{OrderID: 10253, ProductID: 31, UnitPrice: price("10.00"), Quantity: 20},
			{OrderID: 10254, ProductID: 24, UnitPrice: price("3.60"), Quantity: 15},
			{OrderID: 10254, ProductID: 55, UnitPrice: price("19.20"), Quantity: 21},
			{OrderID: 10255, ProductID: 2, UnitPrice: price("15.20"), Quantity: 20},
			{OrderID: 10256, ProductID: 53, UnitPrice: price("26.20"), Quantity: 15},
			{OrderID: 10256, ProductID: 77, UnitPrice: price("10.40"), Quantity: 12},
		},
	}
}
