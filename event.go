package catering

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"goflare.io/catering/models"
	"goflare.io/catering/models/enum"
)

const eventSubjectPrefix = "catering.order.event."

type EventHandler func(context.Context, *models.Event) error

// EventManager routes order lifecycle events. With a NATS connection it
// publishes and subscribes on the broker; without one, callers dispatch
// events to the worker pool directly and everything stays in process.
type EventManager struct {
	natsConn     *nats.Conn
	subscription *nats.Subscription
	handlers     map[enum.EventType]EventHandler
	logger       *zap.Logger
}

func NewEventManager(natsConn *nats.Conn, logger *zap.Logger) *EventManager {
	return &EventManager{
		natsConn: natsConn,
		handlers: make(map[enum.EventType]EventHandler),
		logger:   logger,
	}
}

func (em *EventManager) RegisterHandler(eventType enum.EventType, handler EventHandler) {
	em.handlers[eventType] = handler
}

func (em *EventManager) GetHandler(eventType enum.EventType) (EventHandler, bool) {
	handler, exists := em.handlers[eventType]
	return handler, exists
}

func (em *EventManager) Connected() bool {
	return em.natsConn != nil
}

func (em *EventManager) Publish(event *models.Event) error {
	if em.natsConn == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return em.natsConn.Publish(eventSubjectPrefix+string(event.Type), data)
}

func (em *EventManager) SubscribeToEvents(wp *WorkerPool) error {
	if em.natsConn == nil {
		return nil
	}

	sub, err := em.natsConn.Subscribe(eventSubjectPrefix+">", func(msg *nats.Msg) {
		var event models.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			em.logger.Error("Failed to unmarshal event", zap.Error(err))
			return
		}

		wp.Submit(context.Background(), &event)
	})
	if err != nil {
		return err
	}

	em.subscription = sub
	return nil
}

// Unsubscribe drops the inbound event feed. Call it before shutting down the
// worker pool so no late message is submitted to a closed pool.
func (em *EventManager) Unsubscribe() {
	if em.subscription == nil {
		return
	}
	if err := em.subscription.Unsubscribe(); err != nil {
		em.logger.Warn("Failed to unsubscribe from events", zap.Error(err))
	}
	em.subscription = nil
}
