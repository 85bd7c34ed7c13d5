package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Validator validates a discount code against a cart subtotal and returns
// the bounded discount amount.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal int64) (*Applied, error)
}

// RepoValidator implements Validator by looking up codes in a Repository.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate checks the code against its activation window and minimum order
// amount, then computes the discount amount.
//
// Checks run in a fixed order and short-circuit on the first failure, so
// each failure mode maps to one user-facing message: lookup, active flag,
// start date, end date, minimum order amount. The activation window is
// inclusive at both ends.
//
// Validation has no side effects: a code is not consumed and may be
// reapplied across unrelated carts. Usage limits are deliberately not
// enforced anywhere in this system.
func (v *RepoValidator) Validate(ctx context.Context, code string, subtotal int64) (*Applied, error) {
	dc, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup discount")
	}

	if !dc.Active {
		return nil, ErrExpired
	}

	now := v.now()
	if dc.StartDate != nil && now.Before(*dc.StartDate) {
		return nil, ErrNotYetActive
	}
	if dc.EndDate != nil && now.After(*dc.EndDate) {
		return nil, ErrExpired
	}

	if dc.MinOrderAmount > 0 && subtotal < dc.MinOrderAmount {
		return nil, &BelowMinimumError{Minimum: dc.MinOrderAmount}
	}

	return &Applied{Code: *dc, Amount: amount(dc, subtotal)}, nil
}

// amount computes the bounded discount amount for a valid code.
// The result is clamped to the max discount ceiling when set, and always
// stays within [0, subtotal] so a malformed fixed value can never invert
// the order total.
func amount(dc *Code, subtotal int64) int64 {
	var raw int64
	switch dc.Type {
	case TypePercentage:
		raw = subtotal * dc.Value / 100
	case TypeFixed:
		raw = dc.Value
	}

	if dc.MaxDiscountAmount > 0 && raw > dc.MaxDiscountAmount {
		raw = dc.MaxDiscountAmount
	}
	if raw < 0 {
		raw = 0
	}
	if raw > subtotal {
		raw = subtotal
	}
	return raw
}
