// Package catalog exposes the read-only product catalog this core resolves
// cart additions against.
package catalog

import (
	"context"
	"errors"

	"goflare.io/catering/models"
)

type Service interface {
	GetByID(ctx context.Context, productID string) (*models.Product, error)
}

var ErrProductNotFound = errors.New("product not found")
