package cart

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/buanay/pos/internal/domain/catalog"
)

// Sentinel errors for line construction.
var (
	// ErrMissingSize is returned when a product defines sizes but the line
	// does not select one.
	ErrMissingSize = errors.New("size selection required")
	// ErrToppingsNotAllowed is returned when toppings are selected for a
	// product that does not accept them.
	ErrToppingsNotAllowed = errors.New("product does not allow toppings")
)

// UnknownSizeError indicates the selected size is not one of the product's sizes.
type UnknownSizeError struct {
	ProductID string
	Size      string
}

func (e *UnknownSizeError) Error() string {
	return fmt.Sprintf("product %s has no size %q", e.ProductID, e.Size)
}

// UnknownToppingError indicates a selected topping is not available for the product.
type UnknownToppingError struct {
	ProductID string
	ToppingID string
}

func (e *UnknownToppingError) Error() string {
	return fmt.Sprintf("product %s has no topping %q", e.ProductID, e.ToppingID)
}

// Line is one configured product instance pending checkout. The size and
// topping prices are resolved from the catalog at construction time.
type Line struct {
	ID          string
	ProductID   string
	ProductName string
	Size        *catalog.Size
	Toppings    []catalog.Topping
	Sugar       catalog.Level
	Ice         catalog.Level
	Quantity    int
	Note        string
}

// Spec describes the customer's configuration of a product.
type Spec struct {
	Size     string
	Toppings []string
	Sugar    string
	Ice      string
	Quantity int
	Note     string
}

// NewLine builds a validated cart line from a catalog product and a spec.
//
// The selected size must be one of the product's sizes when the product
// defines any (ErrMissingSize / UnknownSizeError). Toppings are resolved
// against the product's available list with set semantics: duplicate ids
// collapse to one. Quantities below 1 are clamped to 1, matching the
// minimum-one-unit policy of the cart controls.
func NewLine(p catalog.Product, spec Spec) (Line, error) {
	line := Line{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		ProductName: p.Name,
		Sugar:       catalog.LevelOrDefault(spec.Sugar),
		Ice:         catalog.LevelOrDefault(spec.Ice),
		Quantity:    clampQuantity(spec.Quantity),
		Note:        spec.Note,
	}

	if len(p.Sizes) > 0 {
		if spec.Size == "" {
			return Line{}, ErrMissingSize
		}
		size, ok := p.FindSize(spec.Size)
		if !ok {
			return Line{}, &UnknownSizeError{ProductID: p.ID, Size: spec.Size}
		}
		line.Size = &size
	}

	if len(spec.Toppings) > 0 {
		if !p.AllowToppings {
			return Line{}, ErrToppingsNotAllowed
		}
		seen := make(map[string]struct{}, len(spec.Toppings))
		for _, id := range spec.Toppings {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			t, ok := p.FindTopping(id)
			if !ok {
				return Line{}, &UnknownToppingError{ProductID: p.ID, ToppingID: id}
			}
			line.Toppings = append(line.Toppings, t)
		}
	}

	return line, nil
}

// UnitPrice is the price of one unit: selected size plus all toppings.
func (l Line) UnitPrice() int64 {
	var price int64
	if l.Size != nil {
		price = l.Size.Price
	}
	for _, t := range l.Toppings {
		price += t.Price
	}
	return price
}

// Total is the monetary line total: unit price times quantity.
func (l Line) Total() int64 {
	return l.UnitPrice() * int64(l.Quantity)
}

// Cart is an ordered collection of lines belonging to one session.
type Cart []Line

// Subtotal sums all line totals, in dong. Integer arithmetic throughout;
// no float accumulation of currency amounts.
func (c Cart) Subtotal() int64 {
	var sum int64
	for _, l := range c {
		sum += l.Total()
	}
	return sum
}

// UpdateQuantity returns a cart with the quantity of the line identified by
// lineID set to qty, clamped to a minimum of 1. Lines are addressed by
// identity rather than position so the operation survives concurrent
// removals; an unknown id is a no-op, not an error.
func (c Cart) UpdateQuantity(lineID string, qty int) Cart {
	out := make(Cart, len(c))
	copy(out, c)
	for i := range out {
		if out[i].ID == lineID {
			out[i].Quantity = clampQuantity(qty)
			break
		}
	}
	return out
}

// Remove returns a cart without the line identified by lineID. An unknown
// id is a no-op.
func (c Cart) Remove(lineID string) Cart {
	out := make(Cart, 0, len(c))
	for _, l := range c {
		if l.ID == lineID {
			continue
		}
		out = append(out, l)
	}
	return out
}

func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
