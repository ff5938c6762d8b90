package store

import (
	"context"

	"marketplace-order-service/internal/models"
)

// CreateMessage inserts a message and fills in its server-assigned fields
func (s *Store) CreateMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO order_messages (order_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.q(ctx).GetContext(ctx, msg, query,
		msg.OrderID, msg.SenderID, msg.Body)
}

// ListMessages retrieves an order's messages in insertion order
func (s *Store) ListMessages(ctx context.Context, orderID int64) ([]models.Message, error) {
	messages := []models.Message{}
	err := s.q(ctx).SelectContext(ctx, &messages, `
		SELECT id, order_id, sender_id, body, created_at
		FROM order_messages
		WHERE order_id = $1
		ORDER BY id ASC`, orderID)
	return messages, err
}
