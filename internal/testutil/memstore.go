// Package testutil provides in-memory doubles for the store, event publisher,
// and cache, so service and handler tests run without Postgres, Kafka, or
// Redis.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace-order-service/internal/models"
)

// MemStore is an in-memory stand-in for the Postgres store. WithTx serializes
// whole transactions on one mutex, mirroring the row-lock behavior the real
// store gets from SELECT ... FOR UPDATE, and rolls the state back when the
// transaction function fails.
type MemStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	Listings map[int64]*models.Listing
	Orders   map[int64]*models.Order
	Messages []models.Message

	nextListingID int64
	nextOrderID   int64
	nextMessageID int64

	// FailCreateOrder makes the next CreateOrder fail, for abort tests.
	FailCreateOrder bool
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		Listings: make(map[int64]*models.Listing),
		Orders:   make(map[int64]*models.Order),
	}
}

// SeedListing inserts a listing with a fixed ID
func (m *MemStore) SeedListing(l models.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID > m.nextListingID {
		m.nextListingID = l.ID
	}
	cp := l
	m.Listings[l.ID] = &cp
}

// SeedOrder inserts an order with a fixed ID
func (m *MemStore) SeedOrder(o models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID > m.nextOrderID {
		m.nextOrderID = o.ID
	}
	cp := o
	m.Orders[o.ID] = &cp
}

// WithTx runs fn while holding the transaction mutex; on error all writes
// made inside fn are rolled back
func (m *MemStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	listings := make(map[int64]*models.Listing, len(m.Listings))
	for id, l := range m.Listings {
		cp := *l
		listings[id] = &cp
	}
	orders := make(map[int64]*models.Order, len(m.Orders))
	for id, o := range m.Orders {
		cp := *o
		orders[id] = &cp
	}
	messages := append([]models.Message(nil), m.Messages...)
	nextListing, nextOrder, nextMessage := m.nextListingID, m.nextOrderID, m.nextMessageID
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.Listings = listings
		m.Orders = orders
		m.Messages = messages
		m.nextListingID, m.nextOrderID, m.nextMessageID = nextListing, nextOrder, nextMessage
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemStore) CreateListing(ctx context.Context, listing *models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextListingID++
	listing.ID = m.nextListingID
	cp := *listing
	m.Listings[listing.ID] = &cp
	return nil
}

func (m *MemStore) GetListingByID(ctx context.Context, id int64) (*models.Listing, error) {
	return m.GetListingForUpdate(ctx, id)
}

func (m *MemStore) GetListingForUpdate(ctx context.Context, id int64) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.Listings[id]
	if !ok {
		return nil, models.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *MemStore) UpdateListingStatus(ctx context.Context, id int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.Listings[id]
	if !ok {
		return models.ErrListingNotFound
	}
	l.Status = status
	return nil
}

func (m *MemStore) ListListings(ctx context.Context, titleFilter string) ([]models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Listing{}
	for _, l := range m.Listings {
		if titleFilter != "" && !strings.Contains(strings.ToLower(l.Title), strings.ToLower(titleFilter)) {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemStore) ListListingsBySeller(ctx context.Context, sellerID int64) ([]models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Listing{}
	for _, l := range m.Listings {
		if l.SellerID == sellerID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemStore) DeleteListing(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Listings, id)
	return nil
}

func (m *MemStore) CreateOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreateOrder {
		return errors.New("create order failed")
	}
	m.nextOrderID++
	order.ID = m.nextOrderID
	order.CreatedAt = time.Now()
	cp := *order
	m.Orders[order.ID] = &cp
	return nil
}

func (m *MemStore) GetOrderForUpdate(ctx context.Context, id int64) (*models.OrderDetail, error) {
	return m.GetOrderDetail(ctx, id)
}

func (m *MemStore) GetOrderDetail(ctx context.Context, id int64) (*models.OrderDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.Orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return m.detailLocked(o), nil
}

func (m *MemStore) detailLocked(o *models.Order) *models.OrderDetail {
	detail := &models.OrderDetail{
		ID:        o.ID,
		ListingID: o.ListingID,
		BuyerID:   o.BuyerID,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
	if l, ok := m.Listings[o.ListingID]; ok {
		detail.Title = l.Title
		detail.Price = l.Price
		detail.SellerID = l.SellerID
	}
	return detail
}

func (m *MemStore) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.Orders[id]
	if !ok {
		return models.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (m *MemStore) ListOrdersByBuyer(ctx context.Context, buyerID int64) ([]models.OrderDetail, error) {
	return m.listOrders(func(d *models.OrderDetail) bool { return d.BuyerID == buyerID })
}

func (m *MemStore) ListOrdersBySeller(ctx context.Context, sellerID int64) ([]models.OrderDetail, error) {
	return m.listOrders(func(d *models.OrderDetail) bool { return d.SellerID == sellerID })
}

func (m *MemStore) ListAllOrders(ctx context.Context) ([]models.OrderDetail, error) {
	return m.listOrders(func(*models.OrderDetail) bool { return true })
}

func (m *MemStore) listOrders(match func(*models.OrderDetail) bool) ([]models.OrderDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.OrderDetail{}
	for _, o := range m.Orders {
		d := m.detailLocked(o)
		if match(d) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMessageID++
	msg.ID = m.nextMessageID
	msg.CreatedAt = time.Now()
	m.Messages = append(m.Messages, *msg)
	return nil
}

func (m *MemStore) ListMessages(ctx context.Context, orderID int64) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Message{}
	for _, msg := range m.Messages {
		if msg.OrderID == orderID {
			out = append(out, msg)
		}
	}
	return out, nil
}

// MemPublisher records published events
type MemPublisher struct {
	mu     sync.Mutex
	Placed []*models.OrderPlacedEvent
	Moved  []*models.OrderTransitionedEvent
	Posted []*models.MessagePostedEvent
}

func (p *MemPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Placed = append(p.Placed, event)
	return nil
}

func (p *MemPublisher) PublishOrderTransitioned(ctx context.Context, event *models.OrderTransitionedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Moved = append(p.Moved, event)
	return nil
}

func (p *MemPublisher) PublishMessagePosted(ctx context.Context, event *models.MessagePostedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Posted = append(p.Posted, event)
	return nil
}

// MemCache is an in-memory stand-in for the Redis client: the listing browse
// cache plus the per-user activity counters
type MemCache struct {
	mu            sync.Mutex
	listings      []models.Listing
	Invalidations int
	Activity      map[int64]int64
}

func (c *MemCache) GetListings(ctx context.Context) ([]models.Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listings, nil
}

func (c *MemCache) SetListings(ctx context.Context, listings []models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = listings
	return nil
}

func (c *MemCache) InvalidateListings(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = nil
	c.Invalidations++
	return nil
}

func (c *MemCache) IncrActivity(ctx context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Activity == nil {
		c.Activity = make(map[int64]int64)
	}
	c.Activity[userID]++
	return nil
}

func (c *MemCache) GetActivity(ctx context.Context, userID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Activity[userID], nil
}

func (c *MemCache) ClearActivity(ctx context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Activity, userID)
	return nil
}
