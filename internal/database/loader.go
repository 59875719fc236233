package database

import (
	"context"
	"fmt"

	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/matthieukhl/shopstats/internal/models"
)

// Column lists of the four relations, in the order the loader scans them
var (
	customerColumns = []string{"CustomerID", "ContactName"}
	employeeColumns = []string{"EmployeeID", "FirstName", "LastName"}
	orderColumns    = []string{"OrderID", "CustomerID", "EmployeeID", "OrderDate", "ShippedDate"}
	lineColumns     = []string{"OrderID", "ProductID", "UnitPrice", "Quantity"}
)

// LoadSnapshot reads the four relations and builds an immutable snapshot.
// A missing relation is reported as ErrSchemaMismatch.
func (s *Session) LoadSnapshot(ctx context.Context) (*analytics.Snapshot, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(models.Relations))
	for _, rel := range models.Relations {
		name, err := matchRelation(tables, rel)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w: %w", analytics.ErrSchemaMismatch, err)
		}
		names[rel] = name
	}

	customers, err := s.loadCustomers(ctx, names[models.RelationCustomers])
	if err != nil {
		return nil, err
	}
	employees, err := s.loadEmployees(ctx, names[models.RelationEmployees])
	if err != nil {
		return nil, err
	}
	orders, err := s.loadOrders(ctx, names[models.RelationOrders])
	if err != nil {
		return nil, err
	}
	lines, err := s.loadLines(ctx, names[models.RelationOrderDetails])
	if err != nil {
		return nil, err
	}

	snapshot := analytics.NewSnapshot(customers, employees, orders, lines)

	report := snapshot.Integrity()
	s.logger.Info("snapshot loaded",
		"customers", report.Customers,
		"employees", report.Employees,
		"orders", report.Orders,
		"order_lines", report.Lines,
	)
	if err := report.Err(); err != nil {
		s.logger.Warn("snapshot integrity", "error", err,
			"dangling_line_orders", report.DanglingLineOrders,
			"dangling_order_customers", report.DanglingOrderCustomers,
			"dangling_order_employees", report.DanglingOrderEmployees,
			"unshipped_orders", report.UnshippedOrders,
			"undated_orders", report.UndatedOrders,
		)
	}

	return snapshot, nil
}

// scanRelation resolves the wanted columns against the relation, runs a
// SELECT over them ordered by the first one and hands each row's raw values
// to fn
func (s *Session) scanRelation(ctx context.Context, table string, wanted []string, fn func([]any) error) error {
	available, err := s.columns(ctx, table)
	if err != nil {
		return err
	}
	columns, err := matchColumns(table, available, wanted)
	if err != nil {
		return err
	}

	query := s.dialect.selectColumns(table, columns, columns[0])
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return storeError("read "+table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		values, err := scanRow(rows, len(columns))
		if err != nil {
			return fmt.Errorf("read %s: %w", table, err)
		}
		if err := fn(values); err != nil {
			return fmt.Errorf("read %s: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return storeError("read "+table, err)
	}
	return nil
}

func (s *Session) loadCustomers(ctx context.Context, table string) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.scanRelation(ctx, table, customerColumns, func(v []any) error {
		var c models.Customer
		var err error
		if c.ID, err = asString("CustomerID", v[0]); err != nil {
			return err
		}
		if c.ContactName, err = asString("ContactName", v[1]); err != nil {
			return err
		}
		customers = append(customers, c)
		return nil
	})
	return customers, err
}

func (s *Session) loadEmployees(ctx context.Context, table string) ([]models.Employee, error) {
	var employees []models.Employee
	err := s.scanRelation(ctx, table, employeeColumns, func(v []any) error {
		var e models.Employee
		var err error
		if e.ID, err = asInt64("EmployeeID", v[0]); err != nil {
			return err
		}
		if e.FirstName, err = asString("FirstName", v[1]); err != nil {
			return err
		}
		if e.LastName, err = asString("LastName", v[2]); err != nil {
			return err
		}
		employees = append(employees, e)
		return nil
	})
	return employees, err
}

func (s *Session) loadOrders(ctx context.Context, table string) ([]models.Order, error) {
	var orders []models.Order
	err := s.scanRelation(ctx, table, orderColumns, func(v []any) error {
		var o models.Order
		var err error
		if o.ID, err = asInt64("OrderID", v[0]); err != nil {
			return err
		}
		if o.CustomerID, err = asString("CustomerID", v[1]); err != nil {
			return err
		}
		if o.EmployeeID, err = asInt64("EmployeeID", v[2]); err != nil {
			return err
		}
		date, err := asNullTime("OrderDate", v[3])
		if err != nil {
			return err
		}
		if date != nil {
			o.OrderDate = *date
		}
		if o.ShippedDate, err = asNullTime("ShippedDate", v[4]); err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	})
	return orders, err
}

func (s *Session) loadLines(ctx context.Context, table string) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := s.scanRelation(ctx, table, lineColumns, func(v []any) error {
		var l models.OrderLine
		var err error
		if l.OrderID, err = asInt64("OrderID", v[0]); err != nil {
			return err
		}
		if l.ProductID, err = asInt64("ProductID", v[1]); err != nil {
			return err
		}
		if l.UnitPrice, err = asDecimal("UnitPrice", v[2]); err != nil {
			return err
		}
		if l.Quantity, err = asInt64("Quantity", v[3]); err != nil {
			return err
		}
		lines = append(lines, l)
		return nil
	})
	return lines, err
}
