// Package cart owns the authoritative in-memory cart for one session and its
// persistence across reloads.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"goflare.io/catering/catalog"
	"goflare.io/catering/models"
)

// Subscriber receives the cart state after every mutation. The snapshot is
// shared between subscribers and must be treated as read-only.
type Subscriber func(*models.Cart)

// Store holds the cart for the lifetime of a session. All mutations are
// serialized by a mutex; persistence runs after each mutation and its
// failures are logged, never surfaced. The in-memory cart stays the source
// of truth until the session ends.
type Store struct {
	mu   sync.Mutex
	cart models.Cart

	storage Storage
	catalog catalog.Service
	logger  *zap.Logger

	subMu sync.RWMutex
	subs  []Subscriber
}

func NewStore(storage Storage, catalogSvc catalog.Service, currency stripe.Currency, logger *zap.Logger) *Store {
	return &Store{
		cart:    models.Cart{Currency: currency},
		storage: storage,
		catalog: catalogSvc,
		logger:  logger,
	}
}

// Open rehydrates the cart from storage, once, at session start. A pending
// clear left by a previous session is redeemed first. Load failures degrade
// to an empty cart; they are never fatal.
func (s *Store) Open(ctx context.Context) {
	pending, err := s.storage.PendingClear(ctx)
	if err != nil {
		s.logger.Warn("Failed to check pending clear marker", zap.Error(err))
	}
	if pending {
		if err = s.storage.Clear(ctx); err != nil {
			s.logger.Error("Failed to redeem pending clear", zap.Error(err))
		} else if err = s.storage.ClearPendingClear(ctx); err != nil {
			s.logger.Warn("Failed to drop pending clear marker", zap.Error(err))
		}
	}

	stored, err := s.storage.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("Failed to load cart, starting empty", zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	s.cart.Items = sanitize(stored.Items)
	if stored.Currency != "" {
		s.cart.Currency = stored.Currency
	}
	s.cart.UpdatedAt = stored.UpdatedAt
	count := len(s.cart.Items)
	s.mu.Unlock()

	s.logger.Info("Cart rehydrated", zap.Int("items", count))
}

// Add resolves the product against the catalog and merges it into the cart.
// An item already present has its quantity incremented by one; its price,
// name and image snapshots are not refreshed. An unknown product leaves the
// cart untouched and returns catalog.ErrProductNotFound.
func (s *Store) Add(ctx context.Context, productID string) error {
	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			s.logger.Warn("Product not found for cart", zap.String("product_id", productID))
		}
		return err
	}

	s.mu.Lock()
	if item := s.cart.Find(productID); item != nil {
		item.Quantity++
	} else {
		s.cart.Items = append(s.cart.Items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Image:     product.Image,
			Quantity:  1,
		})
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.notify(snapshot)

	s.logger.Info("Product added to cart",
		zap.String("product_id", productID), zap.String("product_name", product.Name))
	return nil
}

// Remove deletes the matching item. A missing item is a no-op, not an error.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	removed := false
	for i := range s.cart.Items {
		if s.cart.Items[i].ProductID == productID {
			s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.notify(snapshot)

	s.logger.Info("Product removed from cart", zap.String("product_id", productID))
	return nil
}

// SetQuantity sets the item's quantity. A quantity of zero or less removes
// the item; a missing item is a no-op.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int64) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}

	s.mu.Lock()
	item := s.cart.Find(productID)
	if item == nil {
		s.mu.Unlock()
		return nil
	}
	item.Quantity = quantity
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.notify(snapshot)

	s.logger.Debug("Cart quantity updated",
		zap.String("product_id", productID), zap.Int64("quantity", quantity))
	return nil
}

// Clear empties the cart unconditionally. If the stored blob cannot be
// cleared, a pending-clear marker is set so the next Open does not
// resurrect it.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.cart.Items = nil
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.storage.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear stored cart, flagging for re-clear", zap.Error(err))
		if merr := s.storage.SetPendingClear(ctx); merr != nil {
			s.logger.Error("Failed to set pending clear marker", zap.Error(merr))
		}
	}

	s.notify(snapshot)
}

// Snapshot returns an immutable deep copy of the current cart, so in-flight
// order submissions are isolated from concurrent mutations.
func (s *Store) Snapshot() *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ItemCount sums the quantities of all items.
func (s *Store) ItemCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// Subscribe registers a callback invoked after every state change.
func (s *Store) Subscribe(fn Subscriber) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) snapshotLocked() *models.Cart {
	s.cart.UpdatedAt = time.Now()
	return s.cart.Clone()
}

func (s *Store) persist(ctx context.Context, snapshot *models.Cart) {
	if err := s.storage.Save(ctx, snapshot); err != nil {
		s.logger.Error("Failed to persist cart", zap.Error(err))
	}
}

func (s *Store) notify(snapshot *models.Cart) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, fn := range s.subs {
		fn(snapshot)
	}
}

// sanitize drops items that violate the cart invariants. A well-formed blob
// written by this package never trips it; it guards hand-edited or foreign
// blobs.
func sanitize(items []models.CartItem) []models.CartItem {
	var clean []models.CartItem
	seen := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			continue
		}
		if i, ok := seen[item.ProductID]; ok {
			clean[i].Quantity += item.Quantity
			continue
		}
		seen[item.ProductID] = len(clean)
		clean = append(clean, item)
	}
	return clean
}
