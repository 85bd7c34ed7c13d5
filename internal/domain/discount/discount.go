package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage reduces the subtotal by a percentage of its value.
	TypePercentage Type = "percentage"
	// TypeFixed reduces the subtotal by a fixed dong amount.
	TypeFixed Type = "fixed"
)

// Validation errors, surfaced verbatim to the customer. Each check in the
// validator produces a distinct error so the UI can show a specific message.
var (
	// ErrNotFound is returned when no discount with the given code exists.
	ErrNotFound = errors.New("discount code not found")
	// ErrExpired is returned for deactivated codes and codes past their end date.
	ErrExpired = errors.New("discount code expired")
	// ErrNotYetActive is returned for codes before their start date.
	ErrNotYetActive = errors.New("discount code not yet active")
)

// BelowMinimumError is returned when the cart subtotal does not reach the
// code's minimum order amount. Minimum is carried for display.
type BelowMinimumError struct {
	Minimum int64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("order must be at least %dđ to use this code", e.Minimum)
}

// Code is an administrator-issued discount rule. The pricing engine only
// reads codes; creation and edits happen through the admin surface.
//
// A zero MinOrderAmount or MaxDiscountAmount means the constraint is unset.
// Value is a percentage in [0,100] for TypePercentage, a dong amount for
// TypeFixed.
type Code struct {
	ID                string
	Code              string
	Type              Type
	Value             int64
	MinOrderAmount    int64
	MaxDiscountAmount int64
	StartDate         *time.Time
	EndDate           *time.Time
	Active            bool
	CreatedAt         time.Time
}

// Applied records a successfully validated discount: the code that matched
// and the bounded amount to subtract from the subtotal.
type Applied struct {
	Code   Code
	Amount int64
}

// Repository provides lookup of discount codes by exact code string.
type Repository interface {
	// FindByCode returns ErrNotFound when no discount with the code exists.
	FindByCode(ctx context.Context, code string) (*Code, error)
}

// AdminRepository provides the administrator surface over discount codes.
type AdminRepository interface {
	Repository
	Create(ctx context.Context, c *Code) error
	List(ctx context.Context) ([]Code, error)
	SetActive(ctx context.Context, id string, active bool) error
}
