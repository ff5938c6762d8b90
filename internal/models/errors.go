package models

import "errors"

// Domain errors returned by the services. The API layer maps each one to a
// stable HTTP status; everything else surfaces as a 500.
var (
	ErrListingNotFound   = errors.New("listing not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOwnListing        = errors.New("cannot buy own listing")
	ErrNotPurchasable    = errors.New("listing not purchasable")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrAdminReadOnly     = errors.New("admin access is read-only")
	ErrOrderClosed       = errors.New("order is completed")
	ErrEmptyMessage      = errors.New("empty message body")
	ErrBadRequest        = errors.New("bad request")
)
