package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"goflare.io/catering/models"
)

// Storage persists the cart blob across sessions. The in-memory cart is the
// source of truth while a session runs; storage is best-effort durability,
// and its failures never roll back an in-memory mutation.
type Storage interface {
	Load(ctx context.Context) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context) error

	// The pending-clear marker records that an order was accepted remotely
	// but the local blob could not be cleared. Store.Open redeems it before
	// loading, so a stale blob cannot resurrect an already-ordered cart.
	SetPendingClear(ctx context.Context) error
	PendingClear(ctx context.Context) (bool, error)
	ClearPendingClear(ctx context.Context) error
}

// ErrNotFound reports that no cart blob is stored.
var ErrNotFound = errors.New("cart not found in storage")

func encodeCart(cart *models.Cart) ([]byte, error) {
	data, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

func decodeCart(data []byte) (*models.Cart, error) {
	cart := models.NewCart()
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return cart, nil
}
