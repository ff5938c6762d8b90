package store

import (
	"context"
	"database/sql"
	"errors"

	"marketplace-order-service/internal/models"
)

// CreateListing inserts a new listing and fills in its server-assigned ID
func (s *Store) CreateListing(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (title, price, status, seller_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return s.q(ctx).GetContext(ctx, &listing.ID, query,
		listing.Title, listing.Price, listing.Status, listing.SellerID)
}

// GetListingByID retrieves a listing by ID
func (s *Store) GetListingByID(ctx context.Context, id int64) (*models.Listing, error) {
	var listing models.Listing
	err := s.q(ctx).GetContext(ctx, &listing,
		"SELECT id, title, price, status, seller_id FROM listings WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetListingForUpdate locks the listing row and re-reads it under the lock.
// Must be called inside WithTx; concurrent purchases of the same listing
// serialize here.
func (s *Store) GetListingForUpdate(ctx context.Context, id int64) (*models.Listing, error) {
	var listing models.Listing
	err := s.q(ctx).GetContext(ctx, &listing,
		"SELECT id, title, price, status, seller_id FROM listings WHERE id = $1 FOR UPDATE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateListingStatus sets a listing's status
func (s *Store) UpdateListingStatus(ctx context.Context, id int64, status string) error {
	_, err := s.q(ctx).ExecContext(ctx,
		"UPDATE listings SET status = $1 WHERE id = $2", status, id)
	return err
}

// ListListings retrieves listings newest first; titleFilter is an optional
// case-insensitive substring match
func (s *Store) ListListings(ctx context.Context, titleFilter string) ([]models.Listing, error) {
	listings := []models.Listing{}
	if titleFilter != "" {
		err := s.q(ctx).SelectContext(ctx, &listings,
			"SELECT id, title, price, status, seller_id FROM listings WHERE title ILIKE '%' || $1 || '%' ORDER BY id DESC",
			titleFilter)
		return listings, err
	}
	err := s.q(ctx).SelectContext(ctx, &listings,
		"SELECT id, title, price, status, seller_id FROM listings ORDER BY id DESC")
	return listings, err
}

// ListListingsBySeller retrieves one seller's listings newest first
func (s *Store) ListListingsBySeller(ctx context.Context, sellerID int64) ([]models.Listing, error) {
	listings := []models.Listing{}
	err := s.q(ctx).SelectContext(ctx, &listings,
		"SELECT id, title, price, status, seller_id FROM listings WHERE seller_id = $1 ORDER BY id DESC",
		sellerID)
	return listings, err
}

// DeleteListing removes a listing row
func (s *Store) DeleteListing(ctx context.Context, id int64) error {
	_, err := s.q(ctx).ExecContext(ctx, "DELETE FROM listings WHERE id = $1", id)
	return err
}
