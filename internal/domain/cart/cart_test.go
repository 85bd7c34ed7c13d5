package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buanay/pos/internal/domain/catalog"
)

func milkTea() catalog.Product {
	return catalog.Product{
		ID:       "tra-sua-truyen-thong",
		Name:     "Trà sữa truyền thống",
		Category: "tea",
		Sizes: []catalog.Size{
			{Name: "M", Price: 25000},
			{Name: "L", Price: 30000},
		},
		Toppings: []catalog.Topping{
			{ID: "pearls", Name: "Trân châu đen", Price: 5000},
			{ID: "pudding", Name: "Pudding", Price: 8000},
		},
		AllowToppings: true,
	}
}

func TestNewLine_PricesSizeAndToppings(t *testing.T) {
	l, err := NewLine(milkTea(), Spec{
		Size:     "M",
		Toppings: []string{"pearls", "pudding"},
		Quantity: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(25000+5000+8000), l.UnitPrice())
	assert.Equal(t, int64(2*(25000+5000+8000)), l.Total())
	assert.Equal(t, catalog.DefaultLevel, l.Sugar)
	assert.Equal(t, catalog.DefaultLevel, l.Ice)
}

func TestNewLine_MissingSize(t *testing.T) {
	_, err := NewLine(milkTea(), Spec{Quantity: 1})
	require.ErrorIs(t, err, ErrMissingSize)
}

func TestNewLine_UnknownSize(t *testing.T) {
	_, err := NewLine(milkTea(), Spec{Size: "XL", Quantity: 1})

	var usErr *UnknownSizeError
	require.ErrorAs(t, err, &usErr)
	assert.Equal(t, "XL", usErr.Size)
}

func TestNewLine_UnknownTopping(t *testing.T) {
	_, err := NewLine(milkTea(), Spec{Size: "M", Toppings: []string{"cheese"}})

	var utErr *UnknownToppingError
	require.ErrorAs(t, err, &utErr)
	assert.Equal(t, "cheese", utErr.ToppingID)
}

func TestNewLine_ToppingsNotAllowed(t *testing.T) {
	p := milkTea()
	p.AllowToppings = false

	_, err := NewLine(p, Spec{Size: "M", Toppings: []string{"pearls"}})
	require.ErrorIs(t, err, ErrToppingsNotAllowed)
}

func TestNewLine_DuplicateToppingsCollapse(t *testing.T) {
	l, err := NewLine(milkTea(), Spec{
		Size:     "M",
		Toppings: []string{"pearls", "pearls", "pearls"},
	})
	require.NoError(t, err)

	require.Len(t, l.Toppings, 1)
	assert.Equal(t, int64(25000+5000), l.UnitPrice())
}

func TestNewLine_QuantityClampedToOne(t *testing.T) {
	for _, q := range []int{-3, 0, 1} {
		l, err := NewLine(milkTea(), Spec{Size: "M", Quantity: q})
		require.NoError(t, err)
		assert.Equal(t, 1, l.Quantity, "quantity %d should clamp to 1", q)
	}
}

func TestNewLine_NoSizesProduct(t *testing.T) {
	p := catalog.Product{ID: "p1", Name: "Combo"}

	l, err := NewLine(p, Spec{Quantity: 3})
	require.NoError(t, err)
	assert.Nil(t, l.Size)
	assert.Equal(t, int64(0), l.Total())
}

func testCart(t *testing.T) Cart {
	t.Helper()
	l1, err := NewLine(milkTea(), Spec{Size: "M", Quantity: 2})
	require.NoError(t, err)
	l2, err := NewLine(milkTea(), Spec{Size: "L", Toppings: []string{"pearls"}, Quantity: 1})
	require.NoError(t, err)
	return Cart{l1, l2}
}

func TestCart_SubtotalEqualsSumOfLineTotals(t *testing.T) {
	c := testCart(t)

	var want int64
	for _, l := range c {
		want += l.Total()
	}
	assert.Equal(t, want, c.Subtotal())
	assert.GreaterOrEqual(t, c.Subtotal(), int64(0))
	assert.Equal(t, int64(2*25000+30000+5000), c.Subtotal())
}

func TestCart_EmptySubtotalIsZero(t *testing.T) {
	assert.Equal(t, int64(0), Cart{}.Subtotal())
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := testCart(t)

	updated := c.UpdateQuantity(c[0].ID, 5)
	assert.Equal(t, 5, updated[0].Quantity)
	// Original cart untouched.
	assert.Equal(t, 2, c[0].Quantity)
}

func TestCart_UpdateQuantityBelowOneClamps(t *testing.T) {
	c := testCart(t)

	updated := c.UpdateQuantity(c[0].ID, 0)
	assert.Equal(t, 1, updated[0].Quantity)

	updated = c.UpdateQuantity(c[0].ID, -2)
	assert.Equal(t, 1, updated[0].Quantity)
}

func TestCart_UpdateQuantityUnknownIDIsNoop(t *testing.T) {
	c := testCart(t)

	updated := c.UpdateQuantity("missing", 9)
	assert.Equal(t, c, updated)
}

func TestCart_Remove(t *testing.T) {
	c := testCart(t)

	removed := c.Remove(c[0].ID)
	require.Len(t, removed, 1)
	assert.Equal(t, c[1].ID, removed[0].ID)
}

func TestCart_RemoveUnknownIDIsNoop(t *testing.T) {
	c := testCart(t)

	removed := c.Remove("missing")
	assert.Equal(t, c, removed)
}
