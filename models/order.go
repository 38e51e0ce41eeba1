package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"

	"goflare.io/catering/models/enum"
)

// Order is the immutable snapshot handed to the remote order store. It is
// built once per submission attempt and never mutated afterwards.
type Order struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Items          []CartItem       `json:"items"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	Shipping       decimal.Decimal  `json:"shipping"`
	Total          decimal.Decimal  `json:"total"`
	Currency       stripe.Currency  `json:"currency"`
	Status         enum.OrderStatus `json:"status"`
	IdempotencyKey string           `json:"idempotency_key"`
	SubmittedAt    time.Time        `json:"submitted_at"`
}

// ItemCount sums the quantities of all order items.
func (o *Order) ItemCount() int64 {
	var count int64
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
