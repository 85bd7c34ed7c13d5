// Package notify delivers order and revenue events to external chat sinks.
//
// Delivery is fire-and-forget: messages pass through an in-process outbox so
// sink availability never couples into the checkout path. Failures are
// logged and dropped.
package notify

import (
	"context"
	"strconv"

	"github.com/buanay/pos/internal/domain/order"
	"github.com/buanay/pos/internal/domain/report"
)

// Kind discriminates outbox messages.
type Kind string

const (
	KindOrderPlaced   Kind = "order_placed"
	KindRevenueReport Kind = "revenue_report"
)

// Message is one event queued for delivery. Exactly one of Order or Report
// is set, matching Kind.
type Message struct {
	Kind   Kind
	Order  *order.Order
	Report *report.Report
}

// Sink delivers a prepared message to one external destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// FormatVND renders an integer dong amount the way the receipts do:
// thousands grouped with dots and a trailing đ, e.g. 25000 -> "25.000đ".
func FormatVND(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	if neg {
		out = append([]byte{'-'}, out...)
	}
	return string(out) + "đ"
}
