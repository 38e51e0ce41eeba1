package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"goflare.io/catering/models"
)

var _ Storage = (*RedisStorage)(nil)

// RedisStorage keeps the cart blob under a key namespaced per owner. The
// blob has no TTL: it survives until an order clears it.
type RedisStorage struct {
	client  *redis.Client
	ownerID string
	logger  *zap.Logger
}

func NewRedisStorage(client *redis.Client, ownerID string, logger *zap.Logger) *RedisStorage {
	return &RedisStorage{
		client:  client,
		ownerID: ownerID,
		logger:  logger,
	}
}

func (s *RedisStorage) Load(ctx context.Context) (*models.Cart, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	cart, err := decodeCart(data)
	if err != nil {
		// a corrupt blob fails closed to an empty cart
		s.logger.Error("Discarding corrupt cart blob",
			zap.String("owner_id", s.ownerID), zap.Error(err))
		return nil, ErrNotFound
	}
	return cart, nil
}

func (s *RedisStorage) Save(ctx context.Context, cart *models.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}

	if err = s.client.Set(ctx, s.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStorage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (s *RedisStorage) SetPendingClear(ctx context.Context) error {
	if err := s.client.Set(ctx, s.pendingClearKey(), "1", 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStorage) PendingClear(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, s.pendingClearKey()).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStorage) ClearPendingClear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.pendingClearKey()).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (s *RedisStorage) key() string {
	return fmt.Sprintf("catering:cart:%s", s.ownerID)
}

func (s *RedisStorage) pendingClearKey() string {
	return s.key() + ":pending_clear"
}
