package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-order-service/internal/auth"
	"marketplace-order-service/internal/models"
	"marketplace-order-service/internal/util"

	"go.uber.org/zap"
)

// OrderStore is the persistence surface the order engine needs. Row-locking
// getters must be called inside WithTx.
type OrderStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetListingForUpdate(ctx context.Context, id int64) (*models.Listing, error)
	UpdateListingStatus(ctx context.Context, id int64, status string) error
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderForUpdate(ctx context.Context, id int64) (*models.OrderDetail, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) error
	GetOrderDetail(ctx context.Context, id int64) (*models.OrderDetail, error)
	ListOrdersByBuyer(ctx context.Context, buyerID int64) ([]models.OrderDetail, error)
	ListOrdersBySeller(ctx context.Context, sellerID int64) ([]models.OrderDetail, error)
	ListAllOrders(ctx context.Context) ([]models.OrderDetail, error)
}

// OrderEventPublisher publishes lifecycle events. Publish failures never fail
// the request; they are logged and dropped.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderTransitioned(ctx context.Context, event *models.OrderTransitionedEvent) error
}

// OrderService handles purchases and the order lifecycle state machine
type OrderService struct {
	store  OrderStore
	events OrderEventPublisher
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, events OrderEventPublisher) *OrderService {
	return &OrderService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// Purchase atomically sells a listing to the caller. The listing row is
// locked and re-read inside the transaction, so concurrent attempts on the
// same listing serialize: the first commits the Active->Sold edge plus the
// new order, the rest observe Sold and fail with ErrNotPurchasable.
func (s *OrderService) Purchase(ctx context.Context, principal models.Principal, listingID int64) (*models.OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Purchase")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PurchaseLatency.Observe(time.Since(start).Seconds())
	}()

	var detail *models.OrderDetail
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		listing, err := s.store.GetListingForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.SellerID == principal.UserID {
			return models.ErrOwnListing
		}
		if listing.Status != models.ListingStatusActive {
			return models.ErrNotPurchasable
		}

		if err := s.store.UpdateListingStatus(ctx, listing.ID, models.ListingStatusSold); err != nil {
			return fmt.Errorf("mark listing sold: %w", err)
		}

		order := &models.Order{
			ListingID: listing.ID,
			BuyerID:   principal.UserID,
			Status:    models.OrderStatusCreated,
		}
		if err := s.store.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		detail = &models.OrderDetail{
			ID:        order.ID,
			ListingID: listing.ID,
			BuyerID:   order.BuyerID,
			Status:    order.Status,
			CreatedAt: order.CreatedAt,
			Title:     listing.Title,
			Price:     listing.Price,
			SellerID:  listing.SellerID,
		}
		return nil
	})
	if err != nil {
		util.PurchasesRejectedTotal.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	util.PurchasesTotal.Inc()
	s.logger.Info("Listing purchased",
		zap.Int64("order_id", detail.ID),
		zap.Int64("listing_id", detail.ListingID),
		zap.Int64("buyer_id", detail.BuyerID))

	event := &models.OrderPlacedEvent{
		BaseEvent: models.NewBaseEvent(models.EventTypeOrderPlaced),
		OrderID:   detail.ID,
		ListingID: detail.ListingID,
		BuyerID:   detail.BuyerID,
		SellerID:  detail.SellerID,
		Price:     detail.Price,
	}
	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	return detail, nil
}

// Ship moves an order CREATED -> SHIPPING. Seller only.
func (s *OrderService) Ship(ctx context.Context, principal models.Principal, orderID int64) (*models.OrderDetail, error) {
	return s.transition(ctx, principal, orderID, "ship",
		auth.AccessSeller, models.OrderStatusCreated, models.OrderStatusShipping)
}

// Deliver moves an order SHIPPING -> DELIVERED. Buyer only.
func (s *OrderService) Deliver(ctx context.Context, principal models.Principal, orderID int64) (*models.OrderDetail, error) {
	return s.transition(ctx, principal, orderID, "deliver",
		auth.AccessBuyer, models.OrderStatusShipping, models.OrderStatusDelivered)
}

// Complete moves an order DELIVERED -> COMPLETED, the terminal state. Buyer only.
func (s *OrderService) Complete(ctx context.Context, principal models.Principal, orderID int64) (*models.OrderDetail, error) {
	return s.transition(ctx, principal, orderID, "complete",
		auth.AccessBuyer, models.OrderStatusDelivered, models.OrderStatusCompleted)
}

// transition executes one edge of the state machine under the order's row
// lock. The caller check runs before the status check, so a wrong caller sees
// ErrForbidden even when the status would also be wrong.
func (s *OrderService) transition(ctx context.Context, principal models.Principal, orderID int64, name string, required auth.Access, from, to string) (*models.OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService."+name)
	defer span.End()

	var detail *models.OrderDetail
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		order, err := s.store.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if auth.Classify(principal, order.BuyerID, order.SellerID) != required {
			return models.ErrForbidden
		}
		if order.Status != from {
			return models.ErrInvalidTransition
		}

		if err := s.store.UpdateOrderStatus(ctx, orderID, to); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		order.Status = to
		detail = order
		return nil
	})
	if err != nil {
		util.OrderTransitionsRejectedTotal.WithLabelValues(name, rejectionReason(err)).Inc()
		return nil, err
	}

	util.OrderTransitionsTotal.WithLabelValues(name).Inc()
	s.logger.Info("Order transitioned",
		zap.Int64("order_id", detail.ID),
		zap.String("transition", name),
		zap.String("status", detail.Status))

	event := &models.OrderTransitionedEvent{
		BaseEvent: models.NewBaseEvent(transitionEventType(to)),
		OrderID:   detail.ID,
		BuyerID:   detail.BuyerID,
		SellerID:  detail.SellerID,
		Status:    detail.Status,
	}
	if err := s.events.PublishOrderTransitioned(ctx, event); err != nil {
		s.logger.Error("Failed to publish transition event", zap.Error(err))
	}

	return detail, nil
}

// GetOrder returns an order with its listing snapshot for participants and admins
func (s *OrderService) GetOrder(ctx context.Context, principal models.Principal, orderID int64) (*models.OrderDetail, error) {
	detail, err := s.store.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !auth.Classify(principal, detail.BuyerID, detail.SellerID).CanView() {
		return nil, models.ErrForbidden
	}
	return detail, nil
}

// ListForBuyer returns the caller's purchases, newest first
func (s *OrderService) ListForBuyer(ctx context.Context, principal models.Principal) ([]models.OrderDetail, error) {
	return s.store.ListOrdersByBuyer(ctx, principal.UserID)
}

// ListForSeller returns orders against the caller's listings, newest first
func (s *OrderService) ListForSeller(ctx context.Context, principal models.Principal) ([]models.OrderDetail, error) {
	return s.store.ListOrdersBySeller(ctx, principal.UserID)
}

// ListAllForAdmin returns every order. Admin only.
func (s *OrderService) ListAllForAdmin(ctx context.Context, principal models.Principal) ([]models.OrderDetail, error) {
	if !principal.IsAdmin() {
		return nil, models.ErrForbidden
	}
	return s.store.ListAllOrders(ctx)
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

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, models.ErrListingNotFound), errors.Is(err, models.ErrOrderNotFound):
		return "not_found"
	case errors.Is(err, models.ErrOwnListing):
		return "own_listing"
	case errors.Is(err, models.ErrNotPurchasable):
		return "not_purchasable"
	case errors.Is(err, models.ErrForbidden):
		return "forbidden"
	case errors.Is(err, models.ErrInvalidTransition):
		return "invalid_status"
	default:
		return "internal"
	}
}
