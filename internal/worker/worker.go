package worker

import (
	"context"
	"log"

	"marketplace-order-service/internal/broker"
	"marketplace-order-service/internal/models"
)

// ActivityStore is the cache surface the worker writes to
type ActivityStore interface {
	InvalidateListings(ctx context.Context) error
	IncrActivity(ctx context.Context, userID int64) error
}

// NotificationWorker consumes order lifecycle events and maintains the
// per-user unseen-activity counters plus the listing browse cache. Each event
// notifies the counterpart of whoever acted.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	activity     ActivityStore
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, activity ActivityStore) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		activity: activity,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	eventHandler.OnOrderTransitioned(w.handleOrderTransitioned)
	eventHandler.OnMessagePosted(w.handleMessagePosted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	// The sold listing must drop off the cached browse page.
	if err := w.activity.InvalidateListings(ctx); err != nil {
		log.Printf("Failed to invalidate listing cache: %v", err)
	}
	return w.activity.IncrActivity(ctx, event.SellerID)
}

func (w *NotificationWorker) handleOrderTransitioned(ctx context.Context, event *models.OrderTransitionedEvent) error {
	// Shipping is the seller acting, so the buyer gets notified; delivery
	// and completion are the buyer acting.
	target := event.SellerID
	if event.Status == models.OrderStatusShipping {
		target = event.BuyerID
	}
	return w.activity.IncrActivity(ctx, target)
}

func (w *NotificationWorker) handleMessagePosted(ctx context.Context, event *models.MessagePostedEvent) error {
	target := event.BuyerID
	if event.SenderID == event.BuyerID {
		target = event.SellerID
	}
	return w.activity.IncrActivity(ctx, target)
}
