package auth

import "marketplace-order-service/internal/models"

// Access classifies a principal against an order's participant set. Every
// permission decision on orders and messages goes through this classification
// rather than ad hoc per-route checks.
type Access int

const (
	AccessNone Access = iota
	AccessBuyer
	AccessSeller
	AccessAdmin
)

// Classify computes the caller's access class for a resource owned by the
// given buyer and seller. A participant who also happens to hold the admin
// role is still classified as a participant.
func Classify(p models.Principal, buyerID, sellerID int64) Access {
	switch p.UserID {
	case buyerID:
		return AccessBuyer
	case sellerID:
		return AccessSeller
	}
	if p.IsAdmin() {
		return AccessAdmin
	}
	return AccessNone
}

// CanView reports read access: participants and admins
func (a Access) CanView() bool {
	return a != AccessNone
}

// CanMessage reports write access to an order's conversation: the buyer or
// the seller, and never an admin, not even one who is also a participant.
func CanMessage(p models.Principal, buyerID, sellerID int64) bool {
	if p.IsAdmin() {
		return false
	}
	switch Classify(p, buyerID, sellerID) {
	case AccessBuyer, AccessSeller:
		return true
	}
	return false
}
