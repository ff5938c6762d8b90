package worker

import (
	"context"
	"encoding/json"
	"testing"

	"marketplace-order-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActivity struct {
	invalidations int
	counters      map[int64]int
}

func newFakeActivity() *fakeActivity {
	return &fakeActivity{counters: make(map[int64]int)}
}

func (f *fakeActivity) InvalidateListings(ctx context.Context) error {
	f.invalidations++
	return nil
}

func (f *fakeActivity) IncrActivity(ctx context.Context, userID int64) error {
	f.counters[userID]++
	return nil
}

func eventMessage(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestHandleOrderPlaced(t *testing.T) {
	activity := newFakeActivity()
	w := NewNotificationWorker(nil, activity)

	event := &models.OrderPlacedEvent{
		BaseEvent: models.NewBaseEvent(models.EventTypeOrderPlaced),
		OrderID:   1,
		ListingID: 7,
		BuyerID:   2,
		SellerID:  1,
		Price:     500,
	}

	err := w.eventHandler.HandleMessage(context.Background(), eventMessage(t, event))
	require.NoError(t, err)

	assert.Equal(t, 1, activity.invalidations, "sold listing must drop off the browse cache")
	assert.Equal(t, 1, activity.counters[1], "seller is notified of the sale")
	assert.Zero(t, activity.counters[2])
}

func TestHandleOrderTransitioned(t *testing.T) {
	tests := []struct {
		status string
		target int64
	}{
		{models.OrderStatusShipping, 2},  // seller acted, buyer notified
		{models.OrderStatusDelivered, 1}, // buyer acted, seller notified
		{models.OrderStatusCompleted, 1},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			activity := newFakeActivity()
			w := NewNotificationWorker(nil, activity)

			event := &models.OrderTransitionedEvent{
				BaseEvent: models.NewBaseEvent(transitionEventType(tt.status)),
				OrderID:   1,
				BuyerID:   2,
				SellerID:  1,
				Status:    tt.status,
			}

			err := w.eventHandler.HandleMessage(context.Background(), eventMessage(t, event))
			require.NoError(t, err)
			assert.Equal(t, map[int64]int{tt.target: 1}, activity.counters)
		})
	}
}

func transitionEventType(status string) string {
	switch status {
	case models.OrderStatusShipping:
		return models.EventTypeOrderShipped
	case models.OrderStatusDelivered:
		return models.EventTypeOrderDelivered
	default:
		return models.EventTypeOrderCompleted
	}
}

func TestHandleMessagePosted(t *testing.T) {
	t.Run("buyer message notifies seller", func(t *testing.T) {
		activity := newFakeActivity()
		w := NewNotificationWorker(nil, activity)

		event := &models.MessagePostedEvent{
			BaseEvent: models.NewBaseEvent(models.EventTypeMessagePosted),
			OrderID:   1,
			MessageID: 5,
			SenderID:  2,
			BuyerID:   2,
			SellerID:  1,
		}

		require.NoError(t, w.eventHandler.HandleMessage(context.Background(), eventMessage(t, event)))
		assert.Equal(t, map[int64]int{1: 1}, activity.counters)
	})

	t.Run("seller message notifies buyer", func(t *testing.T) {
		activity := newFakeActivity()
		w := NewNotificationWorker(nil, activity)

		event := &models.MessagePostedEvent{
			BaseEvent: models.NewBaseEvent(models.EventTypeMessagePosted),
			OrderID:   1,
			MessageID: 6,
			SenderID:  1,
			BuyerID:   2,
			SellerID:  1,
		}

		require.NoError(t, w.eventHandler.HandleMessage(context.Background(), eventMessage(t, event)))
		assert.Equal(t, map[int64]int{2: 1}, activity.counters)
	})
}

func TestUnknownEventIgnored(t *testing.T) {
	activity := newFakeActivity()
	w := NewNotificationWorker(nil, activity)

	msg := kafka.Message{Value: []byte(`{"event_type":"SOMETHING_ELSE"}`)}
	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))
	assert.Empty(t, activity.counters)
	assert.Zero(t, activity.invalidations)
}
