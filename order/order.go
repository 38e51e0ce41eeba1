// Package order is the remote order store: it accepts an immutable order
// snapshot and returns a durable identifier, and serves order history reads.
package order

import (
	"context"
	"errors"

	"goflare.io/catering/models"
)

type Store interface {
	// Create persists the order and returns its durable ID. Submissions
	// carrying an idempotency key already seen return the original ID
	// instead of creating a duplicate.
	Create(ctx context.Context, order *models.Order) (string, error)

	Get(ctx context.Context, orderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset uint64) ([]*models.Order, error)
}

var ErrOrderNotFound = errors.New("order not found")
