package analytics

import (
	"errors"
	"fmt"
	"time"
)

// ResultSet pairs column names with row values in the same order. It is the
// contract handed to renderers and exporters.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len returns the number of rows
func (rs ResultSet) Len() int {
	return len(rs.Rows)
}

// Params carries the literal arguments of parameterised queries
type Params struct {
	From time.Time
	To   time.Time
}

// Query is a named, catalogued analytical query
type Query struct {
	Name        string
	Description string
	Columns     []string
	NeedsRange  bool

	rows func(s *Snapshot, p Params) ([][]any, error)
}

// Run evaluates the query against a snapshot. A query over an empty partition
// yields an empty result set rather than an error.
func (q Query) Run(s *Snapshot, p Params) (ResultSet, error) {
	if q.NeedsRange && p.To.Before(p.From) {
		return ResultSet{}, fmt.Errorf("%s: range end %s precedes start %s: %w", q.Name,
			p.To.Format(time.DateOnly), p.From.Format(time.DateOnly), ErrInvalidParams)
	}
	rows, err := q.rows(s, p)
	if errors.Is(err, ErrEmptyPartition) {
		rows, err = [][]any{}, nil
	}
	if err != nil {
		return ResultSet{}, fmt.Errorf("%s: %w", q.Name, err)
	}
	if rows == nil {
		rows = [][]any{}
	}
	return ResultSet{Columns: append([]string(nil), q.Columns...), Rows: rows}, nil
}

// dateLayouts are the accepted spellings of a range bound
var dateLayouts = []string{time.DateOnly, time.DateTime, time.RFC3339}

// ParseParams reads the range bounds of a query from their text form. Bounds
// are required for range queries and ignored otherwise.
func (q Query) ParseParams(from, to string) (Params, error) {
	if !q.NeedsRange {
		return Params{}, nil
	}
	if from == "" || to == "" {
		return Params{}, fmt.Errorf("%s: both from and to are required: %w", q.Name, ErrInvalidParams)
	}

	var p Params
	var err error
	if p.From, err = parseDate(from); err != nil {
		return Params{}, fmt.Errorf("%s: from: %w", q.Name, err)
	}
	if p.To, err = parseDate(to); err != nil {
		return Params{}, fmt.Errorf("%s: to: %w", q.Name, err)
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date: %w", s, ErrInvalidParams)
}

var catalog = []Query{
	{
		Name:        "orders-in-range",
		Description: "Orders placed after --from and up to and including --to",
		Columns:     []string{"OrderID", "CustomerID", "EmployeeID", "OrderDate", "ShippedDate"},
		NeedsRange:  true,
		rows: func(s *Snapshot, p Params) ([][]any, error) {
			orders := s.OrdersInRange(p.From, p.To)
			rows := make([][]any, 0, len(orders))
			for _, o := range orders {
				rows = append(rows, []any{o.ID, o.CustomerID, o.EmployeeID, o.OrderDate, nullableTime(o.ShippedDate)})
			}
			return rows, nil
		},
	},
	{
		Name:        "shipping-delay",
		Description: "Days between order and shipment, shortest first; unshipped orders excluded",
		Columns:     []string{"OrderID", "CustomerID", "EmployeeID", "OrderDate", "ShippedDate", "TimeDelta"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			report := s.ShippingDelay()
			rows := make([][]any, 0, len(report.Delays))
			for _, d := range report.Delays {
				o := d.Order
				rows = append(rows, []any{o.ID, o.CustomerID, o.EmployeeID, o.OrderDate, nullableTime(o.ShippedDate), d.DeltaDays})
			}
			return rows, nil
		},
	},
	{
		Name:        "detailed-orders",
		Description: "Orders with customer contact and employee first name",
		Columns:     []string{"OrderID", "ContactName", "FirstName"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			orders := s.DetailedOrders()
			rows := make([][]any, 0, len(orders))
			for _, o := range orders {
				rows = append(rows, []any{o.OrderID, o.ContactName, o.EmployeeFirstName})
			}
			return rows, nil
		},
	},
	{
		Name:        "spend-per-customer",
		Description: "Total spend per customer, rounded, smallest first",
		Columns:     []string{"ContactName", "TotalSpend"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			spend := s.SpendPerCustomer()
			rows := make([][]any, 0, len(spend))
			for _, c := range spend {
				rows = append(rows, []any{c.ContactName, c.Total})
			}
			return rows, nil
		},
	},
	{
		Name:        "best-employee",
		Description: "Employee with the highest sales",
		Columns:     []string{"FirstName", "LastName", "TotalSales"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			e, err := s.BestEmployee()
			if err != nil {
				return nil, err
			}
			return [][]any{{e.FirstName, e.LastName, e.Total}}, nil
		},
	},
	{
		Name:        "orders-per-customer",
		Description: "Number of orders per customer, including customers without orders",
		Columns:     []string{"ContactName", "OrderCount"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			counts := s.OrdersPerCustomer()
			rows := make([][]any, 0, len(counts))
			for _, c := range counts {
				rows = append(rows, []any{c.ContactName, int64(c.Orders)})
			}
			return rows, nil
		},
	},
	{
		Name:        "average-purchase",
		Description: "Average order value per customer",
		Columns:     []string{"CustomerID", "AvgOrderValue"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			return customerAverageRows(s.AveragePurchasePerCustomer()), nil
		},
	},
	{
		Name:        "general-average-order",
		Description: "Average value of all orders",
		Columns:     []string{"AvgOrderValue"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			avg, err := s.GeneralAverageOrder()
			if err != nil {
				return nil, err
			}
			return [][]any{{avg}}, nil
		},
	},
	{
		Name:        "best-customers",
		Description: "Customers whose average order beats the general average",
		Columns:     []string{"CustomerID", "AvgOrderValue"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			return customerAverageRows(s.BestCustomers()), nil
		},
	},
	{
		Name:        "order-rank",
		Description: "Chronological rank of each order within its customer",
		Columns:     []string{"OrderID", "CustomerID", "OrderDate", "OrderRank"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			ranks := s.OrderRankPerCustomer()
			rows := make([][]any, 0, len(ranks))
			for _, r := range ranks {
				rows = append(rows, []any{r.OrderID, r.CustomerID, r.OrderDate, r.Rank})
			}
			return rows, nil
		},
	},
	{
		Name:        "cumulative-amount",
		Description: "Running total of order values per customer",
		Columns:     []string{"OrderID", "CustomerID", "OrderDate", "OrderCumulativeAmount"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			amounts := s.CumulativeAmountPerCustomer()
			rows := make([][]any, 0, len(amounts))
			for _, a := range amounts {
				rows = append(rows, []any{a.OrderID, a.CustomerID, a.OrderDate, a.Amount})
			}
			return rows, nil
		},
	},
	{
		Name:        "top-product",
		Description: "Highest-value product per customer",
		Columns:     []string{"CustomerID", "ProductID", "ProductValue"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			top := s.TopProductPerCustomer()
			rows := make([][]any, 0, len(top))
			for _, t := range top {
				rows = append(rows, []any{t.CustomerID, t.ProductID, t.Value})
			}
			return rows, nil
		},
	},
	{
		Name:        "order-intervals",
		Description: "Each order with its customer's previous order date",
		Columns:     []string{"OrderID", "CustomerID", "OrderDate", "PreviousOrderDate", "DeltaDays"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			intervals := s.OrderIntervals()
			rows := make([][]any, 0, len(intervals))
			for _, iv := range intervals {
				var delta any
				if iv.DeltaDays != nil {
					delta = *iv.DeltaDays
				}
				rows = append(rows, []any{iv.OrderID, iv.CustomerID, iv.OrderDate, nullableTime(iv.PreviousDate), delta})
			}
			return rows, nil
		},
	},
	{
		Name:        "average-days-between-orders",
		Description: "Average days between consecutive orders of the same customer",
		Columns:     []string{"AvgDays", "Intervals"},
		rows: func(s *Snapshot, _ Params) ([][]any, error) {
			avg, err := s.AverageDaysBetweenOrders()
			if err != nil {
				return nil, err
			}
			return [][]any{{avg.Days, int64(avg.Intervals)}}, nil
		},
	},
}

// Catalog lists every available query in a stable order
func Catalog() []Query {
	return append([]Query(nil), catalog...)
}

// Lookup finds a query by name
func Lookup(name string) (Query, error) {
	for _, q := range catalog {
		if q.Name == name {
			return q, nil
		}
	}
	return Query{}, fmt.Errorf("%q: %w", name, ErrUnknownQuery)
}

func customerAverageRows(averages []CustomerAverage) [][]any {
	rows := make([][]any, 0, len(averages))
	for _, a := range averages {
		rows = append(rows, []any{a.CustomerID, a.Average})
	}
	return rows
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
