package service

import (
	"context"
	"strings"

	"marketplace-order-service/internal/auth"
	"marketplace-order-service/internal/models"
	"marketplace-order-service/internal/util"

	"go.uber.org/zap"
)

// MessageStore is the persistence surface the messaging subsystem needs
type MessageStore interface {
	GetOrderDetail(ctx context.Context, id int64) (*models.OrderDetail, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, orderID int64) ([]models.Message, error)
}

// MessageEventPublisher publishes message events
type MessageEventPublisher interface {
	PublishMessagePosted(ctx context.Context, event *models.MessagePostedEvent) error
}

// MessageService handles the order-scoped conversation between buyer and
// seller. Write access is gated by the order's lifecycle state and the
// caller's access class; admins may read but never write.
type MessageService struct {
	store  MessageStore
	events MessageEventPublisher
	logger *zap.Logger
}

// NewMessageService creates a new message service
func NewMessageService(store MessageStore, events MessageEventPublisher) *MessageService {
	return &MessageService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// ListMessages returns an order's messages oldest first, for participants and admins
func (s *MessageService) ListMessages(ctx context.Context, principal models.Principal, orderID int64) ([]models.Message, error) {
	order, err := s.store.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !auth.Classify(principal, order.BuyerID, order.SellerID).CanView() {
		return nil, models.ErrForbidden
	}
	return s.store.ListMessages(ctx, orderID)
}

// PostMessage appends a message to an order's conversation. Rejected for
// admins regardless of state, for non-participants, for completed orders,
// and for bodies that trim to empty.
func (s *MessageService) PostMessage(ctx context.Context, principal models.Principal, orderID int64, text string) (*models.Message, error) {
	ctx, span := util.StartSpan(ctx, "MessageService.PostMessage")
	defer span.End()

	body := strings.TrimSpace(text)
	if body == "" {
		util.MessagesRejectedTotal.WithLabelValues("empty").Inc()
		return nil, models.ErrEmptyMessage
	}

	order, err := s.store.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if principal.IsAdmin() {
		util.MessagesRejectedTotal.WithLabelValues("admin").Inc()
		return nil, models.ErrAdminReadOnly
	}
	if !auth.CanMessage(principal, order.BuyerID, order.SellerID) {
		util.MessagesRejectedTotal.WithLabelValues("forbidden").Inc()
		return nil, models.ErrForbidden
	}
	if order.Status == models.OrderStatusCompleted {
		util.MessagesRejectedTotal.WithLabelValues("closed").Inc()
		return nil, models.ErrOrderClosed
	}

	msg := &models.Message{
		OrderID:  orderID,
		SenderID: principal.UserID,
		Body:     body,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	util.MessagesPostedTotal.Inc()
	s.logger.Info("Message posted",
		zap.Int64("order_id", orderID),
		zap.Int64("message_id", msg.ID),
		zap.Int64("sender_id", msg.SenderID))

	event := &models.MessagePostedEvent{
		BaseEvent: models.NewBaseEvent(models.EventTypeMessagePosted),
		OrderID:   orderID,
		MessageID: msg.ID,
		SenderID:  msg.SenderID,
		BuyerID:   order.BuyerID,
		SellerID:  order.SellerID,
	}
	if err := s.events.PublishMessagePosted(ctx, event); err != nil {
		s.logger.Error("Failed to publish MessagePosted event", zap.Error(err))
	}

	return msg, nil
}
