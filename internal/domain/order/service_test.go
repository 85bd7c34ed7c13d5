package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buanay/pos/internal/domain/cart"
	"github.com/buanay/pos/internal/domain/catalog"
	"github.com/buanay/pos/internal/domain/discount"
)

// --- Mock implementations ---

type mockCatalog struct {
	byID map[string]*catalog.Product
}

func (m *mockCatalog) List(_ context.Context) ([]catalog.Product, error) { return nil, nil }

func (m *mockCatalog) Categories(_ context.Context) ([]catalog.Category, error) { return nil, nil }

func (m *mockCatalog) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

type mockValidator struct {
	applied *discount.Applied
	err     error
	calls   int
}

func (m *mockValidator) Validate(_ context.Context, _ string, _ int64) (*discount.Applied, error) {
	m.calls++
	return m.applied, m.err
}

type mockOrderRepo struct {
	created       *Order
	createErr     error
	byID          map[string]*Order
	updatedStatus Status
	updateErr     error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, errors.New("order not found")
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) List(_ context.Context, _ Filter) ([]Order, error) { return nil, nil }

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ string, status Status) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedStatus = status
	return nil
}

type mockNotifier struct {
	placed []*Order
}

func (m *mockNotifier) OrderPlaced(o *Order) {
	m.placed = append(m.placed, o)
}

// --- Helpers ---

func testProduct() *catalog.Product {
	return &catalog.Product{
		ID:   "tra-sua",
		Name: "Trà sữa truyền thống",
		Sizes: []catalog.Size{
			{Name: "M", Price: 25000},
			{Name: "L", Price: 30000},
		},
		Toppings: []catalog.Topping{
			{ID: "pearls", Name: "Trân châu đen", Price: 5000},
		},
		AllowToppings: true,
	}
}

func newTestService(repo *mockOrderRepo, v *mockValidator, n *mockNotifier) *Service {
	svc := NewService(
		&mockCatalog{byID: map[string]*catalog.Product{"tra-sua": testProduct()}},
		v, repo, n,
	)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC) }
	return svc
}

func dineInRequest() CheckoutRequest {
	return CheckoutRequest{
		Lines: []LineInput{
			{ProductID: "tra-sua", Spec: cart.Spec{Size: "M", Quantity: 2}},
		},
		OrderType:     TypeDineIn,
		PaymentMethod: PaymentCash,
	}
}

// --- Checkout tests ---

func TestCheckout_EmptyCart(t *testing.T) {
	svc := newTestService(&mockOrderRepo{}, &mockValidator{}, &mockNotifier{})

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		OrderType:     TypeDineIn,
		PaymentMethod: PaymentCash,
	})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_DineInUsesPlaceholderCustomer(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := newTestService(repo, &mockValidator{}, &mockNotifier{})

	o, err := svc.Checkout(context.Background(), dineInRequest())
	require.NoError(t, err)

	assert.Equal(t, DineInCustomer, o.CustomerInfo)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(50000), o.Subtotal)
	assert.Equal(t, int64(50000), o.Total)
	assert.Equal(t, repo.created, o)
}

func TestCheckout_TakeawayMissingFieldPriority(t *testing.T) {
	tests := []struct {
		name      string
		info      CustomerInfo
		wantField string
	}{
		{"all blank reports name first", CustomerInfo{}, "name"},
		{"blank name and phone reports name", CustomerInfo{Address: "12 Lý Thường Kiệt"}, "name"},
		{"blank phone reports phone", CustomerInfo{Name: "An"}, "phone"},
		{"whitespace phone reports phone", CustomerInfo{Name: "An", Phone: "  "}, "phone"},
		{"blank address reports address", CustomerInfo{Name: "An", Phone: "0901234567"}, "address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockOrderRepo{}, &mockValidator{}, &mockNotifier{})

			req := dineInRequest()
			req.OrderType = TypeTakeaway
			req.CustomerInfo = tt.info

			_, err := svc.Checkout(context.Background(), req)

			var mfErr *MissingFieldError
			require.ErrorAs(t, err, &mfErr)
			assert.Equal(t, tt.wantField, mfErr.Field)
		})
	}
}

func TestCheckout_TakeawayWithFullCustomerInfo(t *testing.T) {
	svc := newTestService(&mockOrderRepo{}, &mockValidator{}, &mockNotifier{})

	req := dineInRequest()
	req.OrderType = TypeTakeaway
	req.CustomerInfo = CustomerInfo{Name: "An", Phone: "0901234567", Address: "12 Lý Thường Kiệt"}

	o, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.CustomerInfo, o.CustomerInfo)
}

func TestCheckout_DiscountSubtractedFromSubtotal(t *testing.T) {
	v := &mockValidator{applied: &discount.Applied{
		Code:   discount.Code{Code: "SALE10"},
		Amount: 5000,
	}}
	svc := newTestService(&mockOrderRepo{}, v, &mockNotifier{})

	req := dineInRequest()
	req.DiscountCode = "SALE10"

	o, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(50000), o.Subtotal)
	assert.Equal(t, int64(5000), o.Discount)
	assert.Equal(t, "SALE10", o.DiscountCode)
	assert.Equal(t, int64(45000), o.Total)
	assert.Equal(t, 1, v.calls)
}

func TestCheckout_NoCodeSkipsValidation(t *testing.T) {
	v := &mockValidator{err: errors.New("must not be called")}
	svc := newTestService(&mockOrderRepo{}, v, &mockNotifier{})

	o, err := svc.Checkout(context.Background(), dineInRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(0), o.Discount)
	assert.Zero(t, v.calls)
}

func TestCheckout_DiscountErrorPropagates(t *testing.T) {
	v := &mockValidator{err: discount.ErrExpired}
	repo := &mockOrderRepo{}
	svc := newTestService(repo, v, &mockNotifier{})

	req := dineInRequest()
	req.DiscountCode = "OLD"

	_, err := svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, discount.ErrExpired)
	assert.Nil(t, repo.created)
}

func TestCheckout_SnapshotsLineConfiguration(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := newTestService(repo, &mockValidator{}, &mockNotifier{})

	req := CheckoutRequest{
		Lines: []LineInput{{
			ProductID: "tra-sua",
			Spec: cart.Spec{
				Size:     "L",
				Toppings: []string{"pearls"},
				Sugar:    "50%",
				Ice:      "30%",
				Quantity: 2,
				Note:     "ít ngọt",
			},
		}},
		OrderType:     TypeDineIn,
		PaymentMethod: PaymentVietQR,
	}

	o, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, o.Items, 1)
	item := o.Items[0]
	assert.Equal(t, "Trà sữa truyền thống", item.Name)
	assert.Equal(t, "L", item.Size)
	assert.Equal(t, int64(35000), item.Price)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "50%", item.Sugar)
	assert.Equal(t, "30%", item.Ice)
	assert.Equal(t, []ItemTopping{{Name: "Trân châu đen", Price: 5000}}, item.Toppings)
	assert.Equal(t, "ít ngọt", item.Note)
	assert.Equal(t, int64(70000), o.Total)
}

func TestCheckout_MissingSizeFails(t *testing.T) {
	svc := newTestService(&mockOrderRepo{}, &mockValidator{}, &mockNotifier{})

	req := dineInRequest()
	req.Lines[0].Spec.Size = ""

	_, err := svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, cart.ErrMissingSize)
}

func TestCheckout_UnknownProductFails(t *testing.T) {
	svc := newTestService(&mockOrderRepo{}, &mockValidator{}, &mockNotifier{})

	req := dineInRequest()
	req.Lines[0].ProductID = "missing"

	_, err := svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCheckout_PersistenceFailureIsFatal(t *testing.T) {
	repo := &mockOrderRepo{createErr: errors.New("connection refused")}
	n := &mockNotifier{}
	svc := newTestService(repo, &mockValidator{}, n)

	_, err := svc.Checkout(context.Background(), dineInRequest())
	require.Error(t, err)
	assert.Empty(t, n.placed, "failed checkout must not notify")
}

func TestCheckout_NotifiesOnSuccess(t *testing.T) {
	n := &mockNotifier{}
	svc := newTestService(&mockOrderRepo{}, &mockValidator{}, n)

	o, err := svc.Checkout(context.Background(), dineInRequest())
	require.NoError(t, err)
	require.Len(t, n.placed, 1)
	assert.Equal(t, o.ID, n.placed[0].ID)
}

// --- Lifecycle tests ---

func pendingOrder(id string) *Order {
	return &Order{ID: id, Status: StatusPending, Total: 50000}
}

func TestUpdateStatus_PendingToCompleted(t *testing.T) {
	repo := &mockOrderRepo{byID: map[string]*Order{"o1": pendingOrder("o1")}}
	svc := newTestService(repo, &mockValidator{}, &mockNotifier{})

	o, err := svc.UpdateStatus(context.Background(), "o1", StatusCompleted, Actor{Staff: true})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, o.Status)
	assert.Equal(t, StatusCompleted, repo.updatedStatus)
}

func TestUpdateStatus_PendingToCancelled(t *testing.T) {
	repo := &mockOrderRepo{byID: map[string]*Order{"o1": pendingOrder("o1")}}
	svc := newTestService(repo, &mockValidator{}, &mockNotifier{})

	_, err := svc.UpdateStatus(context.Background(), "o1", StatusCancelled, Actor{Admin: true})
	require.NoError(t, err)
}

func TestUpdateStatus_TerminalStateAbsorbs(t *testing.T) {
	completed := pendingOrder("o1")
	completed.Status = StatusCompleted
	repo := &mockOrderRepo{byID: map[string]*Order{"o1": completed}}
	svc := newTestService(repo, &mockValidator{}, &mockNotifier{})

	_, err := svc.UpdateStatus(context.Background(), "o1", StatusPending, Actor{Staff: true})

	var itErr *InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
	assert.Equal(t, StatusCompleted, itErr.From)
	assert.Equal(t, StatusPending, itErr.To)
}

func TestUpdateStatus_PendingToPendingRejected(t *testing.T) {
	repo := &mockOrderRepo{byID: map[string]*Order{"o1": pendingOrder("o1")}}
	svc := newTestService(repo, &mockValidator{}, &mockNotifier{})

	_, err := svc.UpdateStatus(context.Background(), "o1", StatusPending, Actor{Staff: true})

	var itErr *InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
}

func TestUpdateStatus_RequiresCapability(t *testing.T) {
	repo := &mockOrderRepo{byID: map[string]*Order{"o1": pendingOrder("o1")}}
	svc := newTestService(repo, &mockValidator{}, &mockNotifier{})

	_, err := svc.UpdateStatus(context.Background(), "o1", StatusCompleted, Actor{})
	require.ErrorIs(t, err, ErrForbidden)
}
