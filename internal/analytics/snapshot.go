package analytics

import (
	"errors"
	"fmt"

	"github.com/matthieukhl/shopstats/internal/models"
	"github.com/shopspring/decimal"
)

// Snapshot is an immutable, indexed view of the four relations. Every query
// is a pure function of a Snapshot, so one Snapshot may be shared by any
// number of concurrent readers.
type Snapshot struct {
	customers []models.Customer
	employees []models.Employee
	orders    []models.Order
	lines     []models.OrderLine

	customerByID map[string]int
	employeeByID map[int64]int
	orderByID    map[int64]int

	// orderValue holds the summed line value of every existing order that
	// has at least one line. Orders without lines have no entry.
	orderValue map[int64]decimal.Decimal

	// duplicates counts the dropped customer, employee and order rows
	duplicates int
}

// NewSnapshot copies the given rows and indexes them. When an identifier is
// repeated the first row wins and later rows are dropped.
func NewSnapshot(customers []models.Customer, employees []models.Employee, orders []models.Order, lines []models.OrderLine) *Snapshot {
	s := &Snapshot{
		lines:        append([]models.OrderLine(nil), lines...),
		customerByID: make(map[string]int, len(customers)),
		employeeByID: make(map[int64]int, len(employees)),
		orderByID:    make(map[int64]int, len(orders)),
		orderValue:   make(map[int64]decimal.Decimal, len(orders)),
	}

	for _, c := range customers {
		if _, ok := s.customerByID[c.ID]; ok {
			s.duplicates++
			continue
		}
		s.customerByID[c.ID] = len(s.customers)
		s.customers = append(s.customers, c)
	}
	for _, e := range employees {
		if _, ok := s.employeeByID[e.ID]; ok {
			s.duplicates++
			continue
		}
		s.employeeByID[e.ID] = len(s.employees)
		s.employees = append(s.employees, e)
	}
	for _, o := range orders {
		if _, ok := s.orderByID[o.ID]; ok {
			s.duplicates++
			continue
		}
		s.orderByID[o.ID] = len(s.orders)
		s.orders = append(s.orders, o)
	}
	for _, l := range s.lines {
		if _, ok := s.orderByID[l.OrderID]; !ok {
			continue
		}
		s.orderValue[l.OrderID] = s.orderValue[l.OrderID].Add(l.Value())
	}

	return s
}

// Customers returns a copy of the Customers relation
func (s *Snapshot) Customers() []models.Customer {
	return append([]models.Customer(nil), s.customers...)
}

// Employees returns a copy of the Employees relation
func (s *Snapshot) Employees() []models.Employee {
	return append([]models.Employee(nil), s.employees...)
}

// Orders returns a copy of the Orders relation
func (s *Snapshot) Orders() []models.Order {
	return append([]models.Order(nil), s.orders...)
}

// Lines returns a copy of the OrderDetails relation
func (s *Snapshot) Lines() []models.OrderLine {
	return append([]models.OrderLine(nil), s.lines...)
}

func (s *Snapshot) customer(id string) (models.Customer, bool) {
	i, ok := s.customerByID[id]
	if !ok {
		return models.Customer{}, false
	}
	return s.customers[i], true
}

func (s *Snapshot) employee(id int64) (models.Employee, bool) {
	i, ok := s.employeeByID[id]
	if !ok {
		return models.Employee{}, false
	}
	return s.employees[i], true
}

// OrderValue returns the summed line value of an order. ok is false when the
// order does not exist or has no lines.
func (s *Snapshot) OrderValue(orderID int64) (value decimal.Decimal, ok bool) {
	value, ok = s.orderValue[orderID]
	return value, ok
}

// valuedOrders returns, in relation order, the orders that have lines
func (s *Snapshot) valuedOrders() []models.Order {
	out := make([]models.Order, 0, len(s.orderValue))
	for _, o := range s.orders {
		if _, ok := s.orderValue[o.ID]; ok {
			out = append(out, o)
		}
	}
	return out
}

// datedOrders returns, in relation order, the orders that carry an order date
func datedOrders(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Dated() {
			out = append(out, o)
		}
	}
	return out
}

// IntegrityReport counts the rows that inner joins silently drop and the
// orders whose order or shipped date is missing. Undated orders are left out
// of every date-based query.
type IntegrityReport struct {
	Customers int `json:"customers"`
	Employees int `json:"employees"`
	Orders    int `json:"orders"`
	Lines     int `json:"order_lines"`

	DanglingLineOrders     int `json:"dangling_line_orders"`
	DanglingOrderCustomers int `json:"dangling_order_customers"`
	DanglingOrderEmployees int `json:"dangling_order_employees"`
	UnshippedOrders        int `json:"unshipped_orders"`
	UndatedOrders          int `json:"undated_orders"`
	DuplicateRows          int `json:"duplicate_rows"`
}

// Integrity inspects the foreign keys and nullable dates of the snapshot
func (s *Snapshot) Integrity() IntegrityReport {
	r := IntegrityReport{
		Customers: len(s.customers),
		Employees: len(s.employees),
		Orders:    len(s.orders),
		Lines:     len(s.lines),

		DuplicateRows: s.duplicates,
	}
	for _, l := range s.lines {
		if _, ok := s.orderByID[l.OrderID]; !ok {
			r.DanglingLineOrders++
		}
	}
	for _, o := range s.orders {
		if _, ok := s.customerByID[o.CustomerID]; !ok {
			r.DanglingOrderCustomers++
		}
		if _, ok := s.employeeByID[o.EmployeeID]; !ok {
			r.DanglingOrderEmployees++
		}
		if !o.Shipped() {
			r.UnshippedOrders++
		}
		if !o.Dated() {
			r.UndatedOrders++
		}
	}
	return r
}

// Dangling returns the total number of unresolved foreign keys
func (r IntegrityReport) Dangling() int {
	return r.DanglingLineOrders + r.DanglingOrderCustomers + r.DanglingOrderEmployees
}

// Err classifies the report: ErrDanglingReference when any foreign key does
// not resolve, ErrNullBoundary when orders lack an order or shipped date, or
// both. Duplicate rows are reported but not classified.
func (r IntegrityReport) Err() error {
	var errs []error
	if n := r.Dangling(); n > 0 {
		errs = append(errs, fmt.Errorf("%d unresolved foreign keys: %w", n, ErrDanglingReference))
	}
	if r.UnshippedOrders > 0 {
		errs = append(errs, fmt.Errorf("%d orders without shipped date: %w", r.UnshippedOrders, ErrNullBoundary))
	}
	if r.UndatedOrders > 0 {
		errs = append(errs, fmt.Errorf("%d orders without order date: %w", r.UndatedOrders, ErrNullBoundary))
	}
	return errors.Join(errs...)
}
