package models

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeOrderPlaced    = "ORDER_PLACED"
	EventTypeOrderShipped   = "ORDER_SHIPPED"
	EventTypeOrderDelivered = "ORDER_DELIVERED"
	EventTypeOrderCompleted = "ORDER_COMPLETED"
	EventTypeMessagePosted  = "MESSAGE_POSTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent creates event metadata with a fresh ID and timestamp
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// OrderPlacedEvent published when a purchase commits
type OrderPlacedEvent struct {
	BaseEvent
	OrderID   int64 `json:"order_id"`
	ListingID int64 `json:"listing_id"`
	BuyerID   int64 `json:"buyer_id"`
	SellerID  int64 `json:"seller_id"`
	Price     int64 `json:"price"`
}

// OrderTransitionedEvent published on each lifecycle transition
type OrderTransitionedEvent struct {
	BaseEvent
	OrderID  int64  `json:"order_id"`
	BuyerID  int64  `json:"buyer_id"`
	SellerID int64  `json:"seller_id"`
	Status   string `json:"status"`
}

// MessagePostedEvent published when a participant posts a message
type MessagePostedEvent struct {
	BaseEvent
	OrderID   int64 `json:"order_id"`
	MessageID int64 `json:"message_id"`
	SenderID  int64 `json:"sender_id"`
	BuyerID   int64 `json:"buyer_id"`
	SellerID  int64 `json:"seller_id"`
}
