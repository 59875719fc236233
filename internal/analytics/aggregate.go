package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/matthieukhl/shopstats/internal/models"
	"github.com/shopspring/decimal"
)

const secondsPerDay = 24 * 60 * 60

// OrdersInRange returns the orders with from < OrderDate <= to, in relation
// order. The lower bound is exclusive and the upper bound inclusive. Undated
// orders never match.
func (s *Snapshot) OrdersInRange(from, to time.Time) []models.Order {
	var out []models.Order
	for _, o := range datedOrders(s.orders) {
		if o.OrderDate.After(from) && !o.OrderDate.After(to) {
			out = append(out, o)
		}
	}
	return out
}

// OrderDelay is an order with the fractional number of days between its
// order date and its shipped date.
type OrderDelay struct {
	Order     models.Order
	DeltaDays decimal.Decimal
}

// ShippingReport splits the orders into ranked shipping delays and the ids
// of orders that have no shipped date yet.
type ShippingReport struct {
	Delays    []OrderDelay
	Unshipped []int64
}

// ShippingDelay computes ShippedDate - OrderDate in days for every shipped
// order, ascending by delay then OrderID. Orders without a shipped date are
// listed in Unshipped and never ranked. Undated orders are left out of both.
func (s *Snapshot) ShippingDelay() ShippingReport {
	var r ShippingReport
	for _, o := range datedOrders(s.orders) {
		if !o.Shipped() {
			r.Unshipped = append(r.Unshipped, o.ID)
			continue
		}
		r.Delays = append(r.Delays, OrderDelay{
			Order:     o,
			DeltaDays: daysBetween(o.OrderDate, *o.ShippedDate),
		})
	}
	sort.SliceStable(r.Delays, func(i, j int) bool {
		if c := r.Delays[i].DeltaDays.Cmp(r.Delays[j].DeltaDays); c != 0 {
			return c < 0
		}
		return r.Delays[i].Order.ID < r.Delays[j].Order.ID
	})
	return r
}

// daysBetween returns to - from in fractional days
func daysBetween(from, to time.Time) decimal.Decimal {
	d := to.Sub(from)
	return decimal.New(int64(d/time.Millisecond), -3).Div(decimal.NewFromInt(secondsPerDay))
}

// DetailedOrder is an order joined with its customer and employee names
type DetailedOrder struct {
	OrderID           int64
	ContactName       string
	EmployeeFirstName string
}

// DetailedOrders inner-joins orders with customers and employees, ascending by
// OrderID. Orders with an unresolved customer or employee are dropped.
func (s *Snapshot) DetailedOrders() []DetailedOrder {
	var out []DetailedOrder
	for _, o := range s.orders {
		c, ok := s.customer(o.CustomerID)
		if !ok {
			continue
		}
		e, ok := s.employee(o.EmployeeID)
		if !ok {
			continue
		}
		out = append(out, DetailedOrder{
			OrderID:           o.ID,
			ContactName:       c.ContactName,
			EmployeeFirstName: e.FirstName,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

// CustomerSpend is the summed line value of a customer's orders. Total is
// rounded to whole units; Exact keeps the unrounded sum.
type CustomerSpend struct {
	CustomerID  string
	ContactName string
	Total       decimal.Decimal
	Exact       decimal.Decimal
}

// SpendPerCustomer sums UnitPrice*Quantity per customer, ascending by the
// rounded total then CustomerID. Customers without order lines are excluded.
func (s *Snapshot) SpendPerCustomer() []CustomerSpend {
	totals := make(map[string]decimal.Decimal)
	for _, o := range s.valuedOrders() {
		if _, ok := s.customerByID[o.CustomerID]; !ok {
			continue
		}
		totals[o.CustomerID] = totals[o.CustomerID].Add(s.orderValue[o.ID])
	}

	out := make([]CustomerSpend, 0, len(totals))
	for id, total := range totals {
		c, _ := s.customer(id)
		out = append(out, CustomerSpend{
			CustomerID:  id,
			ContactName: c.ContactName,
			Total:       total.Round(0),
			Exact:       total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c < 0
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

// EmployeeSales is an employee with the summed line value of the orders they
// handled.
type EmployeeSales struct {
	EmployeeID int64
	FirstName  string
	LastName   string
	Total      decimal.Decimal
}

// EmployeeRevenue sums line revenue per employee, descending by total with
// ties broken by the lowest EmployeeID.
func (s *Snapshot) EmployeeRevenue() []EmployeeSales {
	totals := make(map[int64]decimal.Decimal)
	for _, o := range s.valuedOrders() {
		if _, ok := s.employeeByID[o.EmployeeID]; !ok {
			continue
		}
		totals[o.EmployeeID] = totals[o.EmployeeID].Add(s.orderValue[o.ID])
	}

	out := make([]EmployeeSales, 0, len(totals))
	for id, total := range totals {
		e, _ := s.employee(id)
		out = append(out, EmployeeSales{
			EmployeeID: id,
			FirstName:  e.FirstName,
			LastName:   e.LastName,
			Total:      total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

// BestEmployee returns the employee with the highest line revenue. Ties go to
// the lowest EmployeeID. ErrEmptyPartition is returned when nobody sold
// anything.
func (s *Snapshot) BestEmployee() (EmployeeSales, error) {
	ranked := s.EmployeeRevenue()
	if len(ranked) == 0 {
		return EmployeeSales{}, fmt.Errorf("best employee: no sales: %w", ErrEmptyPartition)
	}
	return ranked[0], nil
}

// CustomerOrderCount is the number of orders a customer placed
type CustomerOrderCount struct {
	CustomerID  string
	ContactName string
	Orders      int
}

// OrdersPerCustomer counts orders for every customer, including those with
// none, ascending by count then CustomerID.
func (s *Snapshot) OrdersPerCustomer() []CustomerOrderCount {
	counts := make(map[string]int, len(s.customers))
	for _, o := range s.orders {
		if _, ok := s.customerByID[o.CustomerID]; ok {
			counts[o.CustomerID]++
		}
	}

	out := make([]CustomerOrderCount, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, CustomerOrderCount{
			CustomerID:  c.ID,
			ContactName: c.ContactName,
			Orders:      counts[c.ID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Orders != out[j].Orders {
			return out[i].Orders < out[j].Orders
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

// CustomerAverage is a customer's mean order value rounded to 2 decimals
type CustomerAverage struct {
	CustomerID string
	Average    decimal.Decimal
}

// AveragePurchasePerCustomer averages per-order totals for each customer,
// ascending by CustomerID. Each order's total is computed once before
// averaging so multi-line orders are not over-weighted.
func (s *Snapshot) AveragePurchasePerCustomer() []CustomerAverage {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, o := range s.valuedOrders() {
		if _, ok := s.customerByID[o.CustomerID]; !ok {
			continue
		}
		sums[o.CustomerID] = sums[o.CustomerID].Add(s.orderValue[o.ID])
		counts[o.CustomerID]++
	}

	out := make([]CustomerAverage, 0, len(sums))
	for id, sum := range sums {
		out = append(out, CustomerAverage{
			CustomerID: id,
			Average:    sum.Div(decimal.NewFromInt(counts[id])).Round(2),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out
}

// GeneralAverageOrder is the mean of every order total, rounded to 2
// decimals. ErrEmptyPartition is returned when no order has lines.
func (s *Snapshot) GeneralAverageOrder() (decimal.Decimal, error) {
	if len(s.orderValue) == 0 {
		return decimal.Zero, fmt.Errorf("general average order: no valued orders: %w", ErrEmptyPartition)
	}
	sum := decimal.Zero
	for _, v := range s.orderValue {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(s.orderValue)))).Round(2), nil
}

// BestCustomers returns the rows of AveragePurchasePerCustomer whose average
// strictly exceeds GeneralAverageOrder, descending by average then
// CustomerID. Both sides are compared at 2 decimals.
func (s *Snapshot) BestCustomers() []CustomerAverage {
	general, err := s.GeneralAverageOrder()
	if err != nil {
		return nil
	}

	var out []CustomerAverage
	for _, a := range s.AveragePurchasePerCustomer() {
		if a.Average.GreaterThan(general) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Average.Cmp(out[j].Average); c != 0 {
			return c > 0
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}
