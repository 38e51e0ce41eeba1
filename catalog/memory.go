package catalog

import (
	"context"
	"sync"

	"goflare.io/catering/models"
)

var _ Service = (*Memory)(nil)

// Memory is an in-process catalog, for embedding without a database and for
// tests.
type Memory struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewMemory(products ...*models.Product) *Memory {
	m := &Memory{
		products: make(map[string]models.Product, len(products)),
	}
	for _, p := range products {
		m.products[p.ID] = *p
	}
	return m
}

func (m *Memory) GetByID(_ context.Context, productID string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	product, ok := m.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Put adds or replaces a product.
func (m *Memory) Put(product *models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = *product
}
