package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"goflare.io/catering/driver"
	"goflare.io/catering/models"
	"goflare.io/catering/models/enum"
)

var _ Store = (*repository)(nil)

type repository struct {
	conn               driver.PostgresPool
	transactionManager *driver.TransactionManager
	logger             *zap.Logger
}

func NewRepository(conn driver.PostgresPool, tm *driver.TransactionManager, logger *zap.Logger) Store {
	return &repository{
		conn:               conn,
		transactionManager: tm,
		logger:             logger,
	}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (string, error) {
	var orderID string

	// serializable so two concurrent retries of the same submission cannot
	// both miss the idempotency check
	err := r.transactionManager.ExecuteSerializableTransaction(ctx, func(tx pgx.Tx) error {
		// 1. dedup on the idempotency key: a retried submission whose first
		// attempt actually landed returns the original ID
		var existing string
		err := tx.QueryRow(ctx,
			`SELECT id FROM orders WHERE idempotency_key = $1`,
			order.IdempotencyKey).Scan(&existing)
		if err == nil {
			r.logger.Info("Duplicate submission detected, returning existing order",
				zap.String("idempotency_key", order.IdempotencyKey),
				zap.String("order_id", existing))
			orderID = existing
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to check idempotency key: %w", err)
		}

		// 2. insert the order
		id := uuid.NewString()
		_, err = tx.Exec(ctx,
			`INSERT INTO orders (id, user_id, subtotal, shipping, total, currency, status, idempotency_key, submitted_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, order.UserID, order.Subtotal, order.Shipping, order.Total,
			string(order.Currency), string(order.Status), order.IdempotencyKey, order.SubmittedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		// 3. batch-insert the items
		batch := &pgx.Batch{}
		for _, item := range order.Items {
			batch.Queue(
				`INSERT INTO order_items (order_id, product_id, name, unit_price, image, quantity)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				id, item.ProductID, item.Name, item.UnitPrice, item.Image, item.Quantity)
		}
		results := tx.SendBatch(ctx, batch)
		defer func() {
			if cerr := results.Close(); cerr != nil {
				r.logger.Error("Failed to close batch results", zap.Error(cerr))
			}
		}()
		for range order.Items {
			if _, err = results.Exec(); err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}

		orderID = id
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return "", err
	}

	return orderID, nil
}

func (r *repository) Get(ctx context.Context, orderID string) (*models.Order, error) {
	orderModel, err := r.scanOrder(r.conn.QueryRow(ctx,
		`SELECT id, user_id, subtotal, shipping, total, currency, status, idempotency_key, submitted_at
		 FROM orders WHERE id = $1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}

	if orderModel.Items, err = r.listItems(ctx, orderID); err != nil {
		return nil, err
	}
	return orderModel, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string, limit, offset uint64) ([]*models.Order, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT id, user_id, subtotal, shipping, total, currency, status, idempotency_key, submitted_at
		 FROM orders WHERE user_id = $1 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		orderModel, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, orderModel)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, orderModel := range orders {
		if orderModel.Items, err = r.listItems(ctx, orderModel.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *repository) listItems(ctx context.Context, orderID string) ([]models.CartItem, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT product_id, name, unit_price, image, quantity
		 FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		r.logger.Error("Failed to list order items", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		if err = rows.Scan(&item.ProductID, &item.Name, &item.UnitPrice, &item.Image, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) scanOrder(row pgx.Row) (*models.Order, error) {
	var orderModel models.Order
	var currency, status string
	if err := row.Scan(&orderModel.ID, &orderModel.UserID, &orderModel.Subtotal, &orderModel.Shipping,
		&orderModel.Total, &currency, &status, &orderModel.IdempotencyKey, &orderModel.SubmittedAt); err != nil {
		return nil, err
	}
	orderModel.Currency = stripe.Currency(currency)
	orderModel.Status = enum.OrderStatus(status)
	return &orderModel, nil
}
