package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"goflare.io/catering/models"
)

func TestPrice_EmptyCart(t *testing.T) {
	summary := Price(nil)

	assert.True(t, summary.Subtotal.IsZero())
	assert.True(t, summary.Shipping.Equal(FlatShipping))
	assert.True(t, summary.Total.Equal(FlatShipping))
}

func TestPrice_SumsLineTotals(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "A", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		{ProductID: "B", UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
	}

	summary := Price(items)

	assert.True(t, summary.Subtotal.Equal(decimal.RequireFromString("25.00")),
		"subtotal = %s", summary.Subtotal)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("30.00")),
		"total = %s", summary.Total)
}

func TestPrice_ExactDecimals(t *testing.T) {
	// 0.1 * 3 must be exactly 0.3, not a float approximation.
	items := []models.CartItem{
		{ProductID: "A", UnitPrice: decimal.RequireFromString("0.10"), Quantity: 3},
	}

	summary := Price(items)

	assert.True(t, summary.Subtotal.Equal(decimal.RequireFromString("0.30")),
		"subtotal = %s", summary.Subtotal)
}

func TestPrice_DoesNotMutateInput(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "A", UnitPrice: decimal.RequireFromString("9.99"), Quantity: 4},
	}

	_ = Price(items)

	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("9.99")))
	assert.EqualValues(t, 4, items[0].Quantity)
}
