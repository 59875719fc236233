package analytics

import (
	"time"

	"github.com/matthieukhl/shopstats/internal/models"
	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func order(id int64, customer string, employee int64, date string) models.Order {
	return models.Order{ID: id, CustomerID: customer, EmployeeID: employee, OrderDate: day(date)}
}

func line(orderID, productID int64, price string, qty int64) models.OrderLine {
	return models.OrderLine{OrderID: orderID, ProductID: productID, UnitPrice: money(price), Quantity: qty}
}

// shopSnapshot is a small dataset with one customer without orders (ZED),
// one single-order customer (BOB), a multi-line order and an unshipped order.
func shopSnapshot() *Snapshot {
	customers := []models.Customer{
		{ID: "ANA", ContactName: "Ana Trujillo"},
		{ID: "BOB", ContactName: "Bob Ross"},
		{ID: "CAT", ContactName: "Cat Stevens"},
		{ID: "ZED", ContactName: "Zed Shaw"},
	}
	employees := []models.Employee{
		{ID: 1, FirstName: "Nancy", LastName: "Davolio"},
		{ID: 2, FirstName: "Andrew", LastName: "Fuller"},
	}
	orders := []models.Order{
		{ID: 10, CustomerID: "ANA", EmployeeID: 1, OrderDate: day("2021-01-01"), ShippedDate: dayPtr("2021-01-03")},
		{ID: 11, CustomerID: "ANA", EmployeeID: 2, OrderDate: day("2021-01-10"), ShippedDate: dayPtr("2021-01-11")},
		{ID: 12, CustomerID: "BOB", EmployeeID: 1, OrderDate: day("2021-02-01"), ShippedDate: dayPtr("2021-02-05")},
		{ID: 13, CustomerID: "CAT", EmployeeID: 2, OrderDate: day("2021-03-01")},
		{ID: 14, CustomerID: "CAT", EmployeeID: 2, OrderDate: day("2021-03-05"), ShippedDate: dayPtr("2021-03-05")},
	}
	lines := []models.OrderLine{
		line(10, 1, "25.00", 2),
		line(11, 2, "70.00", 1),
		line(12, 1, "10.00", 1),
		line(12, 3, "5.00", 18),
		line(13, 4, "100.00", 3),
		line(14, 2, "12.50", 4),
	}
	return NewSnapshot(customers, employees, orders, lines)
}
