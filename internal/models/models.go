package models

import "time"

// Listing represents a sellable item in the catalog
type Listing struct {
	ID       int64  `db:"id" json:"id"`
	Title    string `db:"title" json:"title"`
	Price    int64  `db:"price" json:"price"`
	Status   string `db:"status" json:"status"`
	SellerID int64  `db:"seller_id" json:"seller_id"`
}

// Listing statuses
const (
	ListingStatusActive = "Active"
	ListingStatusPaused = "Paused"
	ListingStatusSold   = "Sold"
)

// Order represents one sale and its post-sale lifecycle
type Order struct {
	ID        int64     `db:"id" json:"id"`
	ListingID int64     `db:"listing_id" json:"listing_id"`
	BuyerID   int64     `db:"buyer_id" json:"buyer_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OrderDetail is an order joined with a snapshot of its listing
type OrderDetail struct {
	ID        int64     `db:"id" json:"id"`
	ListingID int64     `db:"listing_id" json:"listing_id"`
	BuyerID   int64     `db:"buyer_id" json:"buyer_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Title     string    `db:"title" json:"title"`
	Price     int64     `db:"price" json:"price"`
	SellerID  int64     `db:"seller_id" json:"seller_id"`
}

// Order statuses, in lifecycle order
const (
	OrderStatusCreated   = "CREATED"
	OrderStatusShipping  = "SHIPPING"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCompleted = "COMPLETED"
)

// Message is one entry in an order's buyer/seller conversation
type Message struct {
	ID        int64     `db:"id" json:"id"`
	OrderID   int64     `db:"order_id" json:"order_id"`
	SenderID  int64     `db:"sender_id" json:"sender_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Roles carried by a verified principal
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the verified caller identity attached to every request
type Principal struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the principal holds the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
