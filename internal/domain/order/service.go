package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/buanay/pos/internal/domain/cart"
	"github.com/buanay/pos/internal/domain/catalog"
	"github.com/buanay/pos/internal/domain/discount"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrUnknownOrderType     = errors.New("unknown order type")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// MissingFieldError indicates a required takeaway customer field is blank.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("customer %s is required for takeaway orders", e.Field)
}

// LineInput is one cart line as submitted at checkout, referencing the
// catalog by product id.
type LineInput struct {
	ProductID string
	Spec      cart.Spec
}

// CheckoutRequest holds the input for assembling an order.
type CheckoutRequest struct {
	Lines         []LineInput
	DiscountCode  string
	OrderType     Type
	CustomerInfo  CustomerInfo
	PaymentMethod PaymentMethod
}

// Service assembles carts into persisted orders and manages their lifecycle.
type Service struct {
	products  catalog.Repository
	discounts discount.Validator
	orders    Repository
	notifier  Notifier
	now       func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	products catalog.Repository,
	discounts discount.Validator,
	orders Repository,
	notifier Notifier,
) *Service {
	return &Service{
		products:  products,
		discounts: discounts,
		orders:    orders,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Checkout prices the submitted lines, validates the discount code against
// the subtotal, assembles an immutable order record, persists it, and hands
// it to the notifier.
//
// Pricing order is fixed: subtotal first, then discount. A persistence
// failure is fatal to the attempt and leaves no partial order; a
// notification failure never is.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	switch req.OrderType {
	case TypeDineIn, TypeTakeaway:
	default:
		return nil, ErrUnknownOrderType
	}
	switch req.PaymentMethod {
	case PaymentCash, PaymentVietQR:
	default:
		return nil, ErrUnknownPaymentMethod
	}

	customer, err := resolveCustomer(req.OrderType, req.CustomerInfo)
	if err != nil {
		return nil, err
	}

	// Resolve and price every line against the catalog.
	lines := make(cart.Cart, 0, len(req.Lines))
	for _, in := range req.Lines {
		p, err := s.products.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve product %q", in.ProductID)
		}
		line, err := cart.NewLine(*p, in.Spec)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	subtotal := lines.Subtotal()

	// Validate the discount against the subtotal when a code is provided.
	var (
		discountAmount int64
		discountCode   string
	)
	if req.DiscountCode != "" {
		applied, err := s.discounts.Validate(ctx, req.DiscountCode, subtotal)
		if err != nil {
			return nil, err
		}
		discountAmount = applied.Amount
		discountCode = applied.Code.Code
	}

	o := &Order{
		ID:            uuid.New().String(),
		Type:          req.OrderType,
		CustomerInfo:  customer,
		Items:         snapshotItems(lines),
		Subtotal:      subtotal,
		Discount:      discountAmount,
		DiscountCode:  discountCode,
		Total:         subtotal - discountAmount,
		PaymentMethod: req.PaymentMethod,
		Status:        StatusPending,
		CreatedAt:     s.now(),
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// Best-effort: the notifier logs its own failures and never reports
	// them back here.
	s.notifier.OrderPlaced(o)

	return o, nil
}

// resolveCustomer validates takeaway customer fields in fixed priority
// order (name, phone, address) and substitutes the dine-in placeholder
// otherwise.
func resolveCustomer(t Type, info CustomerInfo) (CustomerInfo, error) {
	if t == TypeDineIn {
		return DineInCustomer, nil
	}
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", info.Name},
		{"phone", info.Phone},
		{"address", info.Address},
	} {
		if isBlank(f.value) {
			return CustomerInfo{}, &MissingFieldError{Field: f.name}
		}
	}
	return info, nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// snapshotItems freezes cart lines into order items.
func snapshotItems(lines cart.Cart) []Item {
	items := make([]Item, len(lines))
	for i, l := range lines {
		item := Item{
			Name:     l.ProductName,
			Size:     "Mặc định",
			Quantity: l.Quantity,
			Price:    l.UnitPrice(),
			Sugar:    string(l.Sugar),
			Ice:      string(l.Ice),
			Note:     l.Note,
		}
		if l.Size != nil {
			item.Size = l.Size.Name
		}
		for _, t := range l.Toppings {
			item.Toppings = append(item.Toppings, ItemTopping{Name: t.Name, Price: t.Price})
		}
		items[i] = item
	}
	return items
}
