package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer represents a row of the Customers relation
type Customer struct {
	ID          string `json:"customer_id" db:"CustomerID"`
	ContactName string `json:"contact_name" db:"ContactName"`
}

// Employee represents a row of the Employees relation
type Employee struct {
	ID        int64  `json:"employee_id" db:"EmployeeID"`
	FirstName string `json:"first_name" db:"FirstName"`
	LastName  string `json:"last_name" db:"LastName"`
}

// Order represents a row of the Orders relation
type Order struct {
	ID          int64      `json:"order_id" db:"OrderID"`
	CustomerID  string     `json:"customer_id" db:"CustomerID"`
	EmployeeID  int64      `json:"employee_id" db:"EmployeeID"`
	OrderDate   time.Time  `json:"order_date" db:"OrderDate"`
	ShippedDate *time.Time `json:"shipped_date" db:"ShippedDate"`
}

// Dated reports whether the order carries an order date. A NULL order date
// is read as the zero time.
func (o Order) Dated() bool {
	return !o.OrderDate.IsZero()
}

// Shipped reports whether the order carries a shipped date
func (o Order) Shipped() bool {
	return o.ShippedDate != nil
}

// OrderLine represents a row of the OrderDetails relation
type OrderLine struct {
	OrderID   int64           `json:"order_id" db:"OrderID"`
	ProductID int64           `json:"product_id" db:"ProductID"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"UnitPrice"`
	Quantity  int64           `json:"quantity" db:"Quantity"`
}

// Value returns UnitPrice * Quantity
func (l OrderLine) Value() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Relation names as they exist in the store
const (
	RelationCustomers    = "Customers"
	RelationEmployees    = "Employees"
	RelationOrders       = "Orders"
	RelationOrderDetails = "OrderDetails"
)

// Relations lists the four relations the analytics core reads
var Relations = []string{
	RelationCustomers,
	RelationEmployees,
	RelationOrders,
	RelationOrderDetails,
}
