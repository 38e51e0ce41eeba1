package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"goflare.io/catering/driver"
	"goflare.io/catering/models"
)

var _ Service = (*Repository)(nil)

const cacheTTL = 15 * time.Minute

// Repository reads products from Postgres through a Redis read-through
// cache. Cache failures are logged and ignored; the database stays
// authoritative.
type Repository struct {
	conn   driver.PostgresPool
	cache  *redis.Client
	logger *zap.Logger
	sfg    singleflight.Group // collapses concurrent lookups for the same product
}

func NewRepository(conn driver.PostgresPool, cache *redis.Client, logger *zap.Logger) *Repository {
	return &Repository{
		conn:   conn,
		cache:  cache,
		logger: logger,
	}
}

func (r *Repository) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	v, err, _ := r.sfg.Do(productID, func() (any, error) {
		if product := r.fromCache(ctx, productID); product != nil {
			return product, nil
		}

		var product models.Product
		row := r.conn.QueryRow(ctx,
			`SELECT id, name, price, image, description FROM products WHERE id = $1`,
			productID)
		err := row.Scan(&product.ID, &product.Name, &product.Price, &product.Image, &product.Description)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			r.logger.Error("Failed to get product", zap.String("product_id", productID), zap.Error(err))
			return nil, fmt.Errorf("get product %s: %w", productID, err)
		}

		// refresh the cache off the request path
		go r.toCache(context.Background(), &product)

		return &product, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.Product), nil
}

func (r *Repository) fromCache(ctx context.Context, productID string) *models.Product {
	if r.cache == nil {
		return nil
	}

	data, err := r.cache.Get(ctx, cacheKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		r.logger.Warn("Failed to get product from cache", zap.Error(err))
		return nil
	}

	var product models.Product
	if err = json.Unmarshal(data, &product); err != nil {
		r.logger.Warn("Failed to decode cached product", zap.Error(err))
		return nil
	}
	return &product
}

func (r *Repository) toCache(ctx context.Context, product *models.Product) {
	if r.cache == nil {
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		r.logger.Warn("Failed to encode product for cache", zap.Error(err))
		return
	}
	if err = r.cache.Set(ctx, cacheKey(product.ID), data, cacheTTL).Err(); err != nil {
		r.logger.Warn("Failed to cache product", zap.Error(err))
	}
}

func cacheKey(productID string) string {
	return fmt.Sprintf("catering:product:%s", productID)
}
