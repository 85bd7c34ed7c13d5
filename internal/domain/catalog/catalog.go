package catalog

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Size is a purchasable variant of a product. Price is the unit price for
// this size, in Vietnamese dong.
type Size struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Topping is an optional add-on. Price is added per unit, in dong.
type Topping struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Product is an immutable catalog item. Products that define sizes are
// priced per size; a product without sizes has no base price of its own.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Sizes         []Size    `json:"sizes"`
	Toppings      []Topping `json:"toppings,omitempty"`
	AllowToppings bool      `json:"allow_toppings"`
}

// FindSize returns the product's size with the given name.
func (p Product) FindSize(name string) (Size, bool) {
	for _, s := range p.Sizes {
		if s.Name == name {
			return s, true
		}
	}
	return Size{}, false
}

// FindTopping returns the product's available topping with the given id.
func (p Product) FindTopping(id string) (Topping, bool) {
	for _, t := range p.Toppings {
		if t.ID == id {
			return t, true
		}
	}
	return Topping{}, false
}

// Category groups products for menu filtering.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Categories(ctx context.Context) ([]Category, error)
}
