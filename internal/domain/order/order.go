package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Type distinguishes dine-in from takeaway orders.
type Type string

const (
	TypeDineIn   Type = "dine-in"
	TypeTakeaway Type = "takeaway"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentVietQR PaymentMethod = "vietqr"
)

// Status is the order lifecycle state. Orders start pending; completed and
// cancelled are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// CustomerInfo identifies the customer on a takeaway order.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// DineInCustomer is the fixed placeholder record used for dine-in orders,
// which carry no real customer details.
var DineInCustomer = CustomerInfo{
	Name:    "Khách tại quán",
	Phone:   "-",
	Address: "Tại quán",
}

// ItemTopping is a topping snapshot on an order item.
type ItemTopping struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Item is an immutable snapshot of one cart line at checkout time: the
// resolved unit price, size name, and configuration are frozen so later
// catalog or discount changes never alter a created order.
type Item struct {
	Name     string        `json:"name"`
	Size     string        `json:"size"`
	Quantity int           `json:"quantity"`
	Price    int64         `json:"price"`
	Sugar    string        `json:"sugar"`
	Ice      string        `json:"ice"`
	Toppings []ItemTopping `json:"toppings,omitempty"`
	Note     string        `json:"note,omitempty"`
}

// Order is the persisted record of a completed checkout. Every field except
// Status is immutable after creation.
type Order struct {
	ID            string
	Type          Type
	CustomerInfo  CustomerInfo
	Items         []Item
	Subtotal      int64
	Discount      int64
	DiscountCode  string
	Total         int64
	PaymentMethod PaymentMethod
	Status        Status
	CreatedAt     time.Time
}

// Filter narrows order listings.
type Filter struct {
	Status Status
	From   *time.Time
	To     *time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, error)
	// UpdateStatus rewrites only the status field of the order.
	UpdateStatus(ctx context.Context, id string, status Status) error
}

// Notifier receives a created order for best-effort delivery to external
// sinks. Implementations must never block checkout or surface failures.
type Notifier interface {
	OrderPlaced(o *Order)
}
