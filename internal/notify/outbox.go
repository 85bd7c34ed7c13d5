package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/buanay/pos/internal/domain/order"
	"github.com/buanay/pos/internal/domain/report"
)

// sendTimeout bounds one delivery attempt per sink.
const sendTimeout = 10 * time.Second

// Outbox queues messages for asynchronous delivery to all configured sinks.
// Enqueueing never blocks the caller: when the buffer is full the message is
// dropped and logged, keeping order durability decoupled from sink health.
type Outbox struct {
	sinks []Sink
	ch    chan Message
	done  chan struct{}
	lg    *zap.Logger
}

// NewOutbox creates an Outbox delivering to the given sinks. Call Start to
// begin draining the queue.
func NewOutbox(lg *zap.Logger, buffer int, sinks ...Sink) *Outbox {
	if buffer <= 0 {
		buffer = 64
	}
	return &Outbox{
		sinks: sinks,
		ch:    make(chan Message, buffer),
		done:  make(chan struct{}),
		lg:    lg,
	}
}

// Start launches the delivery worker. It drains until ctx is cancelled.
func (o *Outbox) Start(ctx context.Context) {
	go func() {
		defer close(o.done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-o.ch:
				o.deliver(ctx, msg)
			}
		}
	}()
}

// Wait blocks until the delivery worker has stopped.
func (o *Outbox) Wait() {
	<-o.done
}

// OrderPlaced queues an order-placed event. Implements order.Notifier.
func (o *Outbox) OrderPlaced(ord *order.Order) {
	o.enqueue(Message{Kind: KindOrderPlaced, Order: ord})
}

// ReportReady queues a revenue-report event.
func (o *Outbox) ReportReady(r *report.Report) {
	o.enqueue(Message{Kind: KindRevenueReport, Report: r})
}

func (o *Outbox) enqueue(msg Message) {
	select {
	case o.ch <- msg:
	default:
		o.lg.Warn("notification dropped, outbox full", zap.String("kind", string(msg.Kind)))
	}
}

// deliver fans one message out to every sink concurrently. A sink failure
// is logged and never propagated.
func (o *Outbox) deliver(ctx context.Context, msg Message) {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range o.sinks {
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(gctx, sendTimeout)
			defer cancel()

			if err := s.Send(sendCtx, msg); err != nil {
				o.lg.Error("notification delivery failed",
					zap.String("sink", s.Name()),
					zap.String("kind", string(msg.Kind)),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}
