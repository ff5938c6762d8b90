package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"marketplace-order-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events, keyed by order so all
// events for one order land on the same partition in order.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPlaced publishes an OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderTransitioned publishes a lifecycle transition event
func (ep *EventPublisher) PublishOrderTransitioned(ctx context.Context, event *models.OrderTransitionedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishMessagePosted publishes a MessagePosted event
func (ep *EventPublisher) PublishMessagePosted(ctx context.Context, event *models.MessagePostedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onOrderPlaced       func(context.Context, *models.OrderPlacedEvent) error
	onOrderTransitioned func(context.Context, *models.OrderTransitionedEvent) error
	onMessagePosted     func(context.Context, *models.MessagePostedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderPlaced registers a handler for OrderPlaced events
func (eh *EventHandler) OnOrderPlaced(handler func(context.Context, *models.OrderPlacedEvent) error) {
	eh.onOrderPlaced = handler
}

// OnOrderTransitioned registers a handler for lifecycle transition events
func (eh *EventHandler) OnOrderTransitioned(handler func(context.Context, *models.OrderTransitionedEvent) error) {
	eh.onOrderTransitioned = handler
}

// OnMessagePosted registers a handler for MessagePosted events
func (eh *EventHandler) OnMessagePosted(handler func(context.Context, *models.MessagePostedEvent) error) {
	eh.onMessagePosted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderPlaced:
		if eh.onOrderPlaced != nil {
			var event models.OrderPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
			}
			return eh.onOrderPlaced(ctx, &event)
		}

	case models.EventTypeOrderShipped, models.EventTypeOrderDelivered, models.EventTypeOrderCompleted:
		if eh.onOrderTransitioned != nil {
			var event models.OrderTransitionedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal transition event: %w", err)
			}
			return eh.onOrderTransitioned(ctx, &event)
		}

	case models.EventTypeMessagePosted:
		if eh.onMessagePosted != nil {
			var event models.MessagePostedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal MessagePosted event: %w", err)
			}
			return eh.onMessagePosted(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
