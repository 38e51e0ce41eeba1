// Package catering is the cart and order submission core of the catering
// storefront. It owns the cart state machine, pricing, and the hand-off of a
// frozen cart snapshot to the remote order store; identity, catalog and the
// store itself are collaborators reached through narrow interfaces.
package catering

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"goflare.io/catering/cart"
	"goflare.io/catering/identity"
	"goflare.io/catering/models"
	"goflare.io/catering/models/enum"
	"goflare.io/catering/order"
	"goflare.io/catering/pricing"
	"goflare.io/catering/view"
)

// historyPageSize bounds the order history refresh triggered by a placed
// order.
const historyPageSize = 20

type Service interface {
	// Open rehydrates the cart from storage. Call once at session start.
	Open(ctx context.Context)

	AddToCart(ctx context.Context, productID string) error
	RemoveFromCart(ctx context.Context, productID string) error
	UpdateQuantity(ctx context.Context, productID string, quantity int64) error
	ClearCart(ctx context.Context)
	CartSnapshot() *models.Cart
	CartView() view.View
	Subscribe(fn func(view.View))

	PlaceOrder(ctx context.Context) (string, error)
	CheckoutStatus() enum.CheckoutStatus

	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, limit, offset uint64) ([]*models.Order, error)
	SubscribeOrders(fn func([]*models.Order))

	Close()
}

type service struct {
	cart     *cart.Store
	orders   order.Store
	identity identity.Provider

	eventManager *EventManager
	workerPool   *WorkerPool

	inFlight atomic.Bool
	statusMu sync.RWMutex
	status   enum.CheckoutStatus

	subMu     sync.RWMutex
	viewSubs  []func(view.View)
	orderSubs []func([]*models.Order)

	logger *zap.Logger
}

// NewService wires the core together. natsConn may be nil; events then stay
// in process.
func NewService(cartStore *cart.Store, orders order.Store, idp identity.Provider,
	natsConn *nats.Conn, logger *zap.Logger) Service {
	s := &service{
		cart:     cartStore,
		orders:   orders,
		identity: idp,
		status:   enum.CheckoutStatusIdle,
		logger:   logger,
	}
	s.eventManager = NewEventManager(natsConn, logger)
	s.workerPool = NewWorkerPool(10, s, logger)
	s.registerEventHandlers()

	if err := s.eventManager.SubscribeToEvents(s.workerPool); err != nil {
		logger.Error("Failed to subscribe to events", zap.Error(err))
	}

	s.cart.Subscribe(func(snapshot *models.Cart) {
		s.notifyView(view.Project(snapshot.Items))
	})

	return s
}

func (s *service) Open(ctx context.Context) {
	s.cart.Open(ctx)
	s.notifyView(view.Project(s.cart.Snapshot().Items))
}

func (s *service) AddToCart(ctx context.Context, productID string) error {
	return s.cart.Add(ctx, productID)
}

func (s *service) RemoveFromCart(ctx context.Context, productID string) error {
	return s.cart.Remove(ctx, productID)
}

func (s *service) UpdateQuantity(ctx context.Context, productID string, quantity int64) error {
	return s.cart.SetQuantity(ctx, productID, quantity)
}

func (s *service) ClearCart(ctx context.Context) {
	s.cart.Clear(ctx)
}

func (s *service) CartSnapshot() *models.Cart {
	return s.cart.Snapshot()
}

func (s *service) CartView() view.View {
	return view.Project(s.cart.Snapshot().Items)
}

// Subscribe registers a callback receiving the projected cart after every
// state change.
func (s *service) Subscribe(fn func(view.View)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.viewSubs = append(s.viewSubs, fn)
}

// PlaceOrder runs the submission workflow: validate, freeze a snapshot,
// hand it to the remote store, and clear the cart only on confirmed
// acceptance. At most one submission runs at a time; a failure anywhere
// leaves the cart exactly as it was.
func (s *service) PlaceOrder(ctx context.Context) (string, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return "", ErrCheckoutInFlight
	}
	defer s.inFlight.Store(false)

	s.setCheckoutStatus(enum.CheckoutStatusValidating)

	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		s.setCheckoutStatus(enum.CheckoutStatusFailed)
		return "", err
	}

	// the workflow reads this frozen snapshot from here on; concurrent cart
	// mutations no longer reach it
	snapshot := s.cart.Snapshot()
	if snapshot.IsEmpty() {
		s.setCheckoutStatus(enum.CheckoutStatusFailed)
		return "", ErrEmptyCart
	}

	summary := pricing.Price(snapshot.Items)
	orderModel := &models.Order{
		UserID:         user.ID,
		Items:          snapshot.Items,
		Subtotal:       summary.Subtotal,
		Shipping:       summary.Shipping,
		Total:          summary.Total,
		Currency:       snapshot.Currency,
		Status:         enum.OrderStatusPending,
		IdempotencyKey: uuid.NewString(),
		SubmittedAt:    time.Now(),
	}

	s.setCheckoutStatus(enum.CheckoutStatusSubmitting)
	s.logger.Info("Placing order",
		zap.String("user_id", user.ID), zap.Int64("item_count", orderModel.ItemCount()))

	orderID, err := s.orders.Create(ctx, orderModel)
	if err != nil {
		s.setCheckoutStatus(enum.CheckoutStatusFailed)
		orderModel.Status = enum.OrderStatusFailed
		s.publishOrderEvent(enum.EventTypeOrderFailed, orderModel)
		s.logger.Error("Failed to place order", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	orderModel.ID = orderID
	orderModel.Status = enum.OrderStatusConfirmed

	// the remote store is authoritative once it returns an ID; Clear flags a
	// pending re-clear if its own persistence fails
	s.cart.Clear(ctx)
	s.setCheckoutStatus(enum.CheckoutStatusSucceeded)
	s.publishOrderEvent(enum.EventTypeOrderPlaced, orderModel)

	s.logger.Info("Order placed successfully", zap.String("order_id", orderID))
	return orderID, nil
}

func (s *service) CheckoutStatus() enum.CheckoutStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *service) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.orders.Get(ctx, orderID)
}

func (s *service) ListOrders(ctx context.Context, limit, offset uint64) ([]*models.Order, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, user.ID, limit, offset)
}

// SubscribeOrders registers a callback receiving the refreshed order history
// after each placed order.
func (s *service) SubscribeOrders(fn func([]*models.Order)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.orderSubs = append(s.orderSubs, fn)
}

// Close drops the event subscription first so nothing is submitted to the
// pool after it stops.
func (s *service) Close() {
	s.eventManager.Unsubscribe()
	s.workerPool.Shutdown()
}

// ProcessEvent dispatches a bus event to its registered handler.
func (s *service) ProcessEvent(ctx context.Context, event *models.Event) error {
	handler, exists := s.eventManager.GetHandler(event.Type)
	if !exists {
		s.logger.Warn("No handler for event", zap.String("event_type", string(event.Type)))
		return nil
	}
	return handler(ctx, event)
}

func (s *service) registerEventHandlers() {
	eventHandlers := map[enum.EventType]EventHandler{
		enum.EventTypeOrderPlaced: s.handleOrderPlaced,
		enum.EventTypeOrderFailed: s.handleOrderFailed,
	}

	for eventType, handler := range eventHandlers {
		s.eventManager.RegisterHandler(eventType, handler)
	}
}

func (s *service) handleOrderPlaced(ctx context.Context, event *models.Event) error {
	if event.Order == nil {
		return errors.New("order.placed event without order payload")
	}

	orders, err := s.orders.ListByUser(ctx, event.Order.UserID, historyPageSize, 0)
	if err != nil {
		return fmt.Errorf("failed to refresh order history: %w", err)
	}

	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, fn := range s.orderSubs {
		fn(orders)
	}
	return nil
}

func (s *service) handleOrderFailed(_ context.Context, event *models.Event) error {
	if event.Order != nil {
		s.logger.Warn("Order submission failed",
			zap.String("user_id", event.Order.UserID),
			zap.String("idempotency_key", event.Order.IdempotencyKey))
	}
	return nil
}

func (s *service) publishOrderEvent(eventType enum.EventType, orderModel *models.Order) {
	event := &models.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Order:     orderModel,
		CreatedAt: time.Now(),
	}

	if s.eventManager.Connected() {
		if err := s.eventManager.Publish(event); err != nil {
			s.logger.Error("Failed to publish event",
				zap.String("event_type", string(eventType)), zap.Error(err))
		}
		return
	}

	// no broker: dispatch locally
	s.workerPool.Submit(context.Background(), event)
}

func (s *service) setCheckoutStatus(status enum.CheckoutStatus) {
	s.statusMu.Lock()
	s.status = status
	s.statusMu.Unlock()
}

func (s *service) notifyView(v view.View) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, fn := range s.viewSubs {
		fn(v)
	}
}
