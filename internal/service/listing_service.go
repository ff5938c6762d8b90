package service

import (
	"context"
	"strings"

	"marketplace-order-service/internal/models"
	"marketplace-order-service/internal/util"

	"go.uber.org/zap"
)

// ListingStore is the persistence surface for catalog management
type ListingStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListingForUpdate(ctx context.Context, id int64) (*models.Listing, error)
	UpdateListingStatus(ctx context.Context, id int64, status string) error
	ListListings(ctx context.Context, titleFilter string) ([]models.Listing, error)
	ListListingsBySeller(ctx context.Context, sellerID int64) ([]models.Listing, error)
	DeleteListing(ctx context.Context, id int64) error
}

// ListingCache caches the unfiltered browse page. Cache failures are logged
// and never fail the request.
type ListingCache interface {
	GetListings(ctx context.Context) ([]models.Listing, error)
	SetListings(ctx context.Context, listings []models.Listing) error
	InvalidateListings(ctx context.Context) error
}

// ListingService manages the catalog outside the sold transition: creation,
// browsing, pause/activate, and deletion. The Active->Sold edge belongs to
// OrderService.
type ListingService struct {
	store  ListingStore
	cache  ListingCache
	logger *zap.Logger
}

// NewListingService creates a new listing service
func NewListingService(store ListingStore, cache ListingCache) *ListingService {
	return &ListingService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// Create adds a new Active listing owned by the caller
func (s *ListingService) Create(ctx context.Context, principal models.Principal, title string, price int64) (*models.Listing, error) {
	title = strings.TrimSpace(title)
	if title == "" || price < 0 {
		return nil, models.ErrBadRequest
	}

	listing := &models.Listing{
		Title:    title,
		Price:    price,
		Status:   models.ListingStatusActive,
		SellerID: principal.UserID,
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, err
	}

	util.ListingsCreatedTotal.Inc()
	s.logger.Info("Listing created",
		zap.Int64("listing_id", listing.ID),
		zap.Int64("seller_id", listing.SellerID))
	s.invalidateCache(ctx)

	return listing, nil
}

// List returns listings newest first. The unfiltered page is served from
// cache when warm.
func (s *ListingService) List(ctx context.Context, titleFilter string) ([]models.Listing, error) {
	titleFilter = strings.TrimSpace(titleFilter)
	if titleFilter == "" {
		if cached, err := s.cache.GetListings(ctx); err == nil && cached != nil {
			util.ListingCacheHitsTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
		util.ListingCacheHitsTotal.WithLabelValues("miss").Inc()
	}

	listings, err := s.store.ListListings(ctx, titleFilter)
	if err != nil {
		return nil, err
	}

	if titleFilter == "" {
		if err := s.cache.SetListings(ctx, listings); err != nil {
			s.logger.Warn("Failed to cache listings", zap.Error(err))
		}
	}
	return listings, nil
}

// ListMine returns the caller's own listings newest first
func (s *ListingService) ListMine(ctx context.Context, principal models.Principal) ([]models.Listing, error) {
	return s.store.ListListingsBySeller(ctx, principal.UserID)
}

// Pause moves a listing Active -> Paused. Owner or admin.
func (s *ListingService) Pause(ctx context.Context, principal models.Principal, listingID int64) (*models.Listing, error) {
	return s.setStatus(ctx, principal, listingID, models.ListingStatusActive, models.ListingStatusPaused)
}

// Activate moves a listing Paused -> Active. Owner or admin.
func (s *ListingService) Activate(ctx context.Context, principal models.Principal, listingID int64) (*models.Listing, error) {
	return s.setStatus(ctx, principal, listingID, models.ListingStatusPaused, models.ListingStatusActive)
}

func (s *ListingService) setStatus(ctx context.Context, principal models.Principal, listingID int64, from, to string) (*models.Listing, error) {
	var listing *models.Listing
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		l, err := s.store.GetListingForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if l.SellerID != principal.UserID && !principal.IsAdmin() {
			return models.ErrForbidden
		}
		if l.Status != from {
			return models.ErrInvalidTransition
		}
		if err := s.store.UpdateListingStatus(ctx, listingID, to); err != nil {
			return err
		}
		l.Status = to
		listing = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Listing status changed",
		zap.Int64("listing_id", listing.ID),
		zap.String("status", listing.Status))
	s.invalidateCache(ctx)

	return listing, nil
}

// Delete removes an Active listing. Owner or admin; sold or paused listings
// cannot be deleted.
func (s *ListingService) Delete(ctx context.Context, principal models.Principal, listingID int64) error {
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		l, err := s.store.GetListingForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if l.SellerID != principal.UserID && !principal.IsAdmin() {
			return models.ErrForbidden
		}
		if l.Status != models.ListingStatusActive {
			return models.ErrInvalidTransition
		}
		return s.store.DeleteListing(ctx, listingID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Listing deleted", zap.Int64("listing_id", listingID))
	s.invalidateCache(ctx)
	return nil
}

func (s *ListingService) invalidateCache(ctx context.Context) {
	if err := s.cache.InvalidateListings(ctx); err != nil {
		s.logger.Warn("Failed to invalidate listing cache", zap.Error(err))
	}
}
