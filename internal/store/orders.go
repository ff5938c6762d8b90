package store

import (
	"context"
	"database/sql"
	"errors"

	"marketplace-order-service/internal/models"
)

// CreateOrder inserts a new order and fills in its server-assigned fields
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (listing_id, buyer_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.q(ctx).GetContext(ctx, order, query,
		order.ListingID, order.BuyerID, order.Status)
}

const orderDetailColumns = `
	o.id, o.listing_id, o.buyer_id, o.status, o.created_at,
	l.title, l.price, l.seller_id`

// GetOrderDetail retrieves an order joined with its listing snapshot
func (s *Store) GetOrderDetail(ctx context.Context, id int64) (*models.OrderDetail, error) {
	var detail models.OrderDetail
	err := s.q(ctx).GetContext(ctx, &detail, `
		SELECT `+orderDetailColumns+`
		FROM orders o
		JOIN listings l ON o.listing_id = l.id
		WHERE o.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetOrderForUpdate locks the order row and returns it with the listing
// seller. Must be called inside WithTx; only the orders row is locked, the
// joined listing is read-only here.
func (s *Store) GetOrderForUpdate(ctx context.Context, id int64) (*models.OrderDetail, error) {
	var detail models.OrderDetail
	err := s.q(ctx).GetContext(ctx, &detail, `
		SELECT `+orderDetailColumns+`
		FROM orders o
		JOIN listings l ON o.listing_id = l.id
		WHERE o.id = $1
		FOR UPDATE OF o`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateOrderStatus writes an order's new lifecycle status
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	_, err := s.q(ctx).ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, id)
	return err
}

// ListOrdersByBuyer retrieves a buyer's orders with listing snapshots, newest first
func (s *Store) ListOrdersByBuyer(ctx context.Context, buyerID int64) ([]models.OrderDetail, error) {
	orders := []models.OrderDetail{}
	err := s.q(ctx).SelectContext(ctx, &orders, `
		SELECT `+orderDetailColumns+`
		FROM orders o
		JOIN listings l ON o.listing_id = l.id
		WHERE o.buyer_id = $1
		ORDER BY o.id DESC`, buyerID)
	return orders, err
}

// ListOrdersBySeller retrieves orders against a seller's listings, newest first
func (s *Store) ListOrdersBySeller(ctx context.Context, sellerID int64) ([]models.OrderDetail, error) {
	orders := []models.OrderDetail{}
	err := s.q(ctx).SelectContext(ctx, &orders, `
		SELECT `+orderDetailColumns+`
		FROM orders o
		JOIN listings l ON o.listing_id = l.id
		WHERE l.seller_id = $1
		ORDER BY o.id DESC`, sellerID)
	return orders, err
}

// ListAllOrders retrieves every order with listing snapshots, newest first
func (s *Store) ListAllOrders(ctx context.Context) ([]models.OrderDetail, error) {
	orders := []models.OrderDetail{}
	err := s.q(ctx).SelectContext(ctx, &orders, `
		SELECT `+orderDetailColumns+`
		FROM orders o
		JOIN listings l ON o.listing_id = l.id
		ORDER BY o.id DESC`)
	return orders, err
}
