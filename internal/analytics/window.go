package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/matthieukhl/shopstats/internal/models"
	"github.com/shopspring/decimal"
)

// partitionOrders groups orders by CustomerID. Partitions are returned in
// ascending CustomerID order and each one is stably sorted by
// (OrderDate, OrderID) so window results never depend on store row order.
func partitionOrders(orders []models.Order) [][]models.Order {
	byCustomer := make(map[string][]models.Order)
	for _, o := range orders {
		byCustomer[o.CustomerID] = append(byCustomer[o.CustomerID], o)
	}

	keys := make([]string, 0, len(byCustomer))
	for k := range byCustomer {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	partitions := make([][]models.Order, 0, len(keys))
	for _, k := range keys {
		partitions = append(partitions, sortPartition(byCustomer[k]))
	}
	return partitions
}

// sortPartition orders a partition chronologically with OrderID as the tie
// break key
func sortPartition(partition []models.Order) []models.Order {
	sorted := make([]models.Order, len(partition))
	copy(sorted, partition)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].OrderDate.Equal(sorted[j].OrderDate) {
			return sorted[i].OrderDate.Before(sorted[j].OrderDate)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// OrderRank is an order with its chronological rank among its customer's orders
type OrderRank struct {
	OrderID    int64
	CustomerID string
	OrderDate  time.Time
	Rank       int64
}

// OrderRankPerCustomer ranks every customer's orders by date using
// competition ranking: equal dates share a rank and the next distinct date
// skips the size of the tie (1, 1, 3). Undated orders are not ranked.
func (s *Snapshot) OrderRankPerCustomer() []OrderRank {
	dated := datedOrders(s.orders)
	out := make([]OrderRank, 0, len(dated))
	for _, partition := range partitionOrders(dated) {
		rank := int64(1)
		for i, o := range partition {
			if i > 0 && !partition[i-1].OrderDate.Equal(o.OrderDate) {
				rank = int64(i + 1)
			}
			out = append(out, OrderRank{
				OrderID:    o.ID,
				CustomerID: o.CustomerID,
				OrderDate:  o.OrderDate,
				Rank:       rank,
			})
		}
	}
	return out
}

// CumulativeAmount is an order with the running total of its customer's
// order values up to and including it
type CumulativeAmount struct {
	OrderID    int64
	CustomerID string
	OrderDate  time.Time
	Amount     decimal.Decimal
}

// CumulativeAmountPerCustomer computes the running sum of order values per
// customer in (OrderDate, OrderID) order. Orders without lines do not
// appear, nor do undated ones. Same-day orders accumulate one at a time in
// OrderID order.
func (s *Snapshot) CumulativeAmountPerCustomer() []CumulativeAmount {
	valued := datedOrders(s.valuedOrders())
	out := make([]CumulativeAmount, 0, len(valued))
	for _, partition := range partitionOrders(valued) {
		running := decimal.Zero
		for _, o := range partition {
			running = running.Add(s.orderValue[o.ID])
			out = append(out, CumulativeAmount{
				OrderID:    o.ID,
				CustomerID: o.CustomerID,
				OrderDate:  o.OrderDate,
				Amount:     running,
			})
		}
	}
	return out
}

// TopProduct is the product a customer spent the most on
type TopProduct struct {
	CustomerID string
	ProductID  int64
	Value      decimal.Decimal
}

// TopProductPerCustomer picks, per customer, the product with the largest
// summed Quantity*UnitPrice. Ties go to the lowest ProductID. Results are
// descending by value then ascending by CustomerID.
func (s *Snapshot) TopProductPerCustomer() []TopProduct {
	spend := make(map[string]map[int64]decimal.Decimal)
	for _, l := range s.lines {
		i, ok := s.orderByID[l.OrderID]
		if !ok {
			continue
		}
		customerID := s.orders[i].CustomerID
		if spend[customerID] == nil {
			spend[customerID] = make(map[int64]decimal.Decimal)
		}
		spend[customerID][l.ProductID] = spend[customerID][l.ProductID].Add(l.Value())
	}

	out := make([]TopProduct, 0, len(spend))
	for customerID, products := range spend {
		best := TopProduct{CustomerID: customerID}
		first := true
		for productID, value := range products {
			c := value.Cmp(best.Value)
			if first || c > 0 || (c == 0 && productID < best.ProductID) {
				best.ProductID = productID
				best.Value = value
				first = false
			}
		}
		out = append(out, best)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

// OrderInterval is an order together with the date of the customer's
// previous order. PreviousDate and DeltaDays are nil for a customer's first
// order, which has no predecessor.
type OrderInterval struct {
	OrderID      int64
	CustomerID   string
	OrderDate    time.Time
	PreviousDate *time.Time
	DeltaDays    *decimal.Decimal
}

// OrderIntervals applies a lag of one over each customer's orders in
// (OrderDate, OrderID) order. Undated orders are skipped.
func (s *Snapshot) OrderIntervals() []OrderInterval {
	dated := datedOrders(s.orders)
	out := make([]OrderInterval, 0, len(dated))
	for _, partition := range partitionOrders(dated) {
		for i, o := range partition {
			iv := OrderInterval{
				OrderID:    o.ID,
				CustomerID: o.CustomerID,
				OrderDate:  o.OrderDate,
			}
			if i > 0 {
				prev := partition[i-1].OrderDate
				delta := daysBetween(prev, o.OrderDate)
				iv.PreviousDate = &prev
				iv.DeltaDays = &delta
			}
			out = append(out, iv)
		}
	}
	return out
}

// AvgDays is the mean gap between consecutive orders of the same customer.
// Days is rounded to whole days; Exact keeps the unrounded mean.
type AvgDays struct {
	Days      decimal.Decimal
	Exact     decimal.Decimal
	Intervals int
}

// AverageDaysBetweenOrders averages every defined order interval. First
// orders contribute nothing, so a customer with a single order is ignored.
// ErrEmptyPartition is returned when no customer has two orders.
func (s *Snapshot) AverageDaysBetweenOrders() (AvgDays, error) {
	sum := decimal.Zero
	n := 0
	for _, iv := range s.OrderIntervals() {
		if iv.DeltaDays == nil {
			continue
		}
		sum = sum.Add(*iv.DeltaDays)
		n++
	}
	if n == 0 {
		return AvgDays{}, fmt.Errorf("average days between orders: no intervals: %w", ErrEmptyPartition)
	}
	exact := sum.Div(decimal.NewFromInt(int64(n)))
	return AvgDays{Days: exact.Round(0), Exact: exact, Intervals: n}, nil
}
