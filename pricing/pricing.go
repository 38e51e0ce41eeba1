// Package pricing computes cart totals. It is pure: no I/O, no state.
package pricing

import (
	"github.com/shopspring/decimal"

	"goflare.io/catering/models"
)

// FlatShipping is the flat fee added to every subtotal. It is not derived
// from cart contents.
var FlatShipping = decimal.RequireFromString("5.00")

// Summary is derived from cart contents, never stored.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Price returns the summary for the given items. An empty cart prices to a
// zero subtotal and a total equal to the shipping fee; that is a display
// convention, not a submittable order.
func Price(items []models.CartItem) Summary {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}

	return Summary{
		Subtotal: subtotal,
		Shipping: FlatShipping,
		Total:    subtotal.Add(FlatShipping),
	}
}
