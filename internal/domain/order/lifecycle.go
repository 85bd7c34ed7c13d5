package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// ErrForbidden is returned when the acting user lacks the staff capability
// required for status transitions.
var ErrForbidden = errors.New("staff capability required")

// InvalidTransitionError indicates a disallowed status transition, naming
// both the current and the attempted state.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %q to %q", e.From, e.To)
}

// Actor carries explicit capability flags for the acting user. The auth
// collaborator decides the flags; this package only consults them.
type Actor struct {
	Staff bool
	Admin bool
}

// CanTransition reports whether the actor may change order status.
func (a Actor) CanTransition() bool {
	return a.Staff || a.Admin
}

// UpdateStatus transitions a persisted order to the given status.
//
// The only permitted transitions are pending to completed and pending to
// cancelled; terminal states absorb. The update rewrites the status field
// only, never the item or price snapshot.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status, actor Actor) (*Order, error) {
	if !actor.CanTransition() {
		return nil, ErrForbidden
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %q", id)
	}

	if !validTransition(o.Status, next) {
		return nil, &InvalidTransitionError{From: o.Status, To: next}
	}

	if err := s.orders.UpdateStatus(ctx, id, next); err != nil {
		return nil, errors.Wrapf(err, "update order %q status", id)
	}

	o.Status = next
	return o, nil
}

// Get returns a persisted order by id.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns persisted orders matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]Order, error) {
	return s.orders.List(ctx, f)
}

func validTransition(from, to Status) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusCompleted || to == StatusCancelled
}
