package report

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"

	"github.com/buanay/pos/internal/domain/order"
)

// Period selects the revenue bucket size.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ErrUnknownPeriod is returned for a period outside day/week/month.
var ErrUnknownPeriod = errors.New("unknown report period")

// Range is a time bucket, inclusive at both endpoints.
type Range struct {
	Start time.Time
	End   time.Time
}

// TopProduct is one entry of the best-seller ranking.
type TopProduct struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Revenue  int64  `json:"revenue"`
}

// Report holds aggregate revenue statistics for a single bucket. Reports
// are computed fresh on each request and never persisted.
type Report struct {
	Period            Period       `json:"period"`
	Start             time.Time    `json:"start"`
	End               time.Time    `json:"end"`
	TotalRevenue      int64        `json:"total_revenue"`
	TotalOrders       int          `json:"total_orders"`
	AverageOrderValue int64        `json:"average_order_value"`
	TopProducts       []TopProduct `json:"top_products,omitempty"`
}

// topProductLimit caps the best-seller ranking length.
const topProductLimit = 5

// BucketRange returns the bucket containing now for the given period.
// Weeks start on Sunday; days and months follow the calendar in now's
// location. The end is the last nanosecond of the bucket, so both
// endpoints are inclusive.
func BucketRange(p Period, now time.Time) (Range, error) {
	y, m, d := now.Date()
	loc := now.Location()

	switch p {
	case PeriodDay:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return Range{Start: start, End: start.AddDate(0, 0, 1).Add(-time.Nanosecond)}, nil
	case PeriodWeek:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, -int(now.Weekday()))
		return Range{Start: start, End: start.AddDate(0, 0, 7).Add(-time.Nanosecond)}, nil
	case PeriodMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}, nil
	default:
		return Range{}, ErrUnknownPeriod
	}
}

// Build aggregates the given orders into a revenue report. The caller is
// responsible for restricting orders to the bucket; Build assumes the input
// set is exactly the bucket's members.
//
// Pure and re-entrant: the input is never mutated, so concurrent report
// requests may share it.
func Build(p Period, rng Range, orders []order.Order) Report {
	r := Report{
		Period:      p,
		Start:       rng.Start,
		End:         rng.End,
		TotalOrders: len(orders),
	}

	for _, o := range orders {
		r.TotalRevenue += o.Total
	}
	// Division by zero is a defined-zero case, not an error.
	if r.TotalOrders > 0 {
		r.AverageOrderValue = r.TotalRevenue / int64(r.TotalOrders)
	}

	r.TopProducts = topProducts(orders)
	return r
}

// topProducts flattens every order's items, groups by exact product name,
// and ranks by summed revenue. Ties keep input encounter order.
func topProducts(orders []order.Order) []TopProduct {
	byName := make(map[string]int)
	var ranked []TopProduct

	for _, o := range orders {
		for _, item := range o.Items {
			qty := item.Quantity
			if qty <= 0 {
				qty = 1
			}
			idx, ok := byName[item.Name]
			if !ok {
				idx = len(ranked)
				byName[item.Name] = idx
				ranked = append(ranked, TopProduct{Name: item.Name})
			}
			ranked[idx].Quantity += qty
			ranked[idx].Revenue += item.Price * int64(qty)
		}
	}

	if len(ranked) == 0 {
		// Omit the field entirely rather than emitting an empty list.
		return nil
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue > ranked[j].Revenue
	})
	if len(ranked) > topProductLimit {
		ranked = ranked[:topProductLimit]
	}
	return ranked
}

// Repository is the read side the aggregator depends on.
type Repository interface {
	List(ctx context.Context, f order.Filter) ([]order.Order, error)
}

// Service computes revenue reports from persisted orders.
type Service struct {
	orders Repository
}

// NewService creates a report Service backed by the given order repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// Report computes the revenue report for the bucket containing now.
// A repository read failure propagates as a single error; partial reports
// are never emitted.
func (s *Service) Report(ctx context.Context, p Period, now time.Time) (*Report, error) {
	rng, err := BucketRange(p, now)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.List(ctx, order.Filter{From: &rng.Start, To: &rng.End})
	if err != nil {
		return nil, errors.Wrap(err, "list orders for report")
	}

	r := Build(p, rng, orders)
	return &r, nil
}
