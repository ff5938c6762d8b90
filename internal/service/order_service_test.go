package service

import (
	"context"
	"sync"
	"testing"

	"marketplace-order-service/internal/models"
	"marketplace-order-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seller = models.Principal{UserID: 1, Role: models.RoleUser}
	buyer  = models.Principal{UserID: 2, Role: models.RoleUser}
	other  = models.Principal{UserID: 3, Role: models.RoleUser}
	admin  = models.Principal{UserID: 9, Role: models.RoleAdmin}
)

func newOrderService(store *testutil.MemStore) (*OrderService, *testutil.MemPublisher) {
	pub := &testutil.MemPublisher{}
	return NewOrderService(store, pub), pub
}

func seedActiveListing(store *testutil.MemStore) {
	store.SeedListing(models.Listing{
		ID:       7,
		Title:    "vintage camera",
		Price:    500,
		Status:   models.ListingStatusActive,
		SellerID: seller.UserID,
	})
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("sells an active listing", func(t *testing.T) {
		store := testutil.NewMemStore()
		seedActiveListing(store)
		svc, pub := newOrderService(store)

		order, err := svc.Purchase(ctx, buyer, 7)
		require.NoError(t, err)

		assert.Equal(t, models.OrderStatusCreated, order.Status)
		assert.Equal(t, int64(7), order.ListingID)
		assert.Equal(t, buyer.UserID, order.BuyerID)
		assert.Equal(t, seller.UserID, order.SellerID)
		assert.Equal(t, int64(500), order.Price)
		assert.Equal(t, models.ListingStatusSold, store.Listings[7].Status)
		require.Len(t, pub.Placed, 1)
		assert.Equal(t, order.ID, pub.Placed[0].OrderID)
	})

	t.Run("rejects the seller's own listing", func(t *testing.T) {
		store := testutil.NewMemStore()
		seedActiveListing(store)
		svc, _ := newOrderService(store)

		_, err := svc.Purchase(ctx, seller, 7)
		assert.ErrorIs(t, err, models.ErrOwnListing)
		assert.Equal(t, models.ListingStatusActive, store.Listings[7].Status)
	})

	t.Run("rejects non-active listings", func(t *testing.T) {
		for _, status := range []string{models.ListingStatusPaused, models.ListingStatusSold} {
			store := testutil.NewMemStore()
			store.SeedListing(models.Listing{ID: 7, Status: status, SellerID: seller.UserID})
			svc, _ := newOrderService(store)

			_, err := svc.Purchase(ctx, buyer, 7)
			assert.ErrorIs(t, err, models.ErrNotPurchasable, "status %s", status)
		}
	})

	t.Run("rejects unknown listings", func(t *testing.T) {
		svc, _ := newOrderService(testutil.NewMemStore())

		_, err := svc.Purchase(ctx, buyer, 42)
		assert.ErrorIs(t, err, models.ErrListingNotFound)
	})

	t.Run("leaves no partial state when order insert fails", func(t *testing.T) {
		store := testutil.NewMemStore()
		seedActiveListing(store)
		store.FailCreateOrder = true
		svc, pub := newOrderService(store)

		_, err := svc.Purchase(ctx, buyer, 7)
		require.Error(t, err)
		assert.Equal(t, models.ListingStatusActive, store.Listings[7].Status)
		assert.Empty(t, store.Orders)
		assert.Empty(t, pub.Placed)
	})
}

func TestPurchaseConcurrent(t *testing.T) {
	store := testutil.NewMemStore()
	seedActiveListing(store)
	svc, _ := newOrderService(store)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := models.Principal{UserID: int64(100 + i), Role: models.RoleUser}
			_, errs[i] = svc.Purchase(context.Background(), p, 7)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		default:
			assert.ErrorIs(t, err, models.ErrNotPurchasable)
		}
	}
	assert.Equal(t, 1, won, "exactly one purchase must win")
	assert.Equal(t, models.ListingStatusSold, store.Listings[7].Status)
	assert.Len(t, store.Orders, 1)
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()

	setup := func(status string) (*OrderService, *testutil.MemStore) {
		store := testutil.NewMemStore()
		store.SeedListing(models.Listing{ID: 7, Title: "vintage camera", Price: 500, Status: models.ListingStatusSold, SellerID: seller.UserID})
		store.SeedOrder(models.Order{ID: 1, ListingID: 7, BuyerID: buyer.UserID, Status: status})
		svc, _ := newOrderService(store)
		return svc, store
	}

	t.Run("full buyer and seller flow", func(t *testing.T) {
		svc, store := setup(models.OrderStatusCreated)

		order, err := svc.Ship(ctx, seller, 1)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusShipping, order.Status)

		// The buyer cannot ship, even retroactively.
		_, err = svc.Ship(ctx, buyer, 1)
		assert.ErrorIs(t, err, models.ErrForbidden)

		order, err = svc.Deliver(ctx, buyer, 1)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusDelivered, order.Status)

		order, err = svc.Complete(ctx, buyer, 1)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCompleted, order.Status)

		assert.Equal(t, models.OrderStatusCompleted, store.Orders[1].Status)
	})

	t.Run("rejects out-of-sequence transitions", func(t *testing.T) {
		svc, store := setup(models.OrderStatusCreated)

		_, err := svc.Deliver(ctx, buyer, 1)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)

		_, err = svc.Complete(ctx, buyer, 1)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)

		assert.Equal(t, models.OrderStatusCreated, store.Orders[1].Status)
	})

	t.Run("rejects replayed transitions", func(t *testing.T) {
		svc, store := setup(models.OrderStatusShipping)

		_, err := svc.Ship(ctx, seller, 1)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		assert.Equal(t, models.OrderStatusShipping, store.Orders[1].Status)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		svc, store := setup(models.OrderStatusCompleted)

		for name, fn := range map[string]func(context.Context, models.Principal, int64) (*models.OrderDetail, error){
			"ship":     svc.Ship,
			"deliver":  svc.Deliver,
			"complete": svc.Complete,
		} {
			p := buyer
			if name == "ship" {
				p = seller
			}
			_, err := fn(ctx, p, 1)
			assert.ErrorIs(t, err, models.ErrInvalidTransition, name)
		}
		assert.Equal(t, models.OrderStatusCompleted, store.Orders[1].Status)
	})

	t.Run("gates transitions by role", func(t *testing.T) {
		svc, store := setup(models.OrderStatusCreated)

		// Wrong participant, admin, and stranger all get forbidden.
		for _, p := range []models.Principal{buyer, admin, other} {
			_, err := svc.Ship(ctx, p, 1)
			assert.ErrorIs(t, err, models.ErrForbidden)
		}
		assert.Equal(t, models.OrderStatusCreated, store.Orders[1].Status)

		_, err := svc.Ship(ctx, seller, 1)
		require.NoError(t, err)

		for _, p := range []models.Principal{seller, admin, other} {
			_, err := svc.Deliver(ctx, p, 1)
			assert.ErrorIs(t, err, models.ErrForbidden)
		}
		assert.Equal(t, models.OrderStatusShipping, store.Orders[1].Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _ := setup(models.OrderStatusCreated)
		_, err := svc.Ship(ctx, seller, 99)
		assert.ErrorIs(t, err, models.ErrOrderNotFound)
	})
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	store.SeedListing(models.Listing{ID: 7, Title: "vintage camera", Price: 500, Status: models.ListingStatusSold, SellerID: seller.UserID})
	store.SeedOrder(models.Order{ID: 1, ListingID: 7, BuyerID: buyer.UserID, Status: models.OrderStatusCreated})
	svc, _ := newOrderService(store)

	for _, p := range []models.Principal{buyer, seller, admin} {
		order, err := svc.GetOrder(ctx, p, 1)
		require.NoError(t, err)
		assert.Equal(t, "vintage camera", order.Title)
	}

	_, err := svc.GetOrder(ctx, other, 1)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.GetOrder(ctx, buyer, 99)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	store.SeedListing(models.Listing{ID: 1, Status: models.ListingStatusSold, SellerID: seller.UserID})
	store.SeedListing(models.Listing{ID: 2, Status: models.ListingStatusSold, SellerID: other.UserID})
	store.SeedOrder(models.Order{ID: 1, ListingID: 1, BuyerID: buyer.UserID, Status: models.OrderStatusCreated})
	store.SeedOrder(models.Order{ID: 2, ListingID: 2, BuyerID: buyer.UserID, Status: models.OrderStatusCreated})
	svc, _ := newOrderService(store)

	bought, err := svc.ListForBuyer(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, bought, 2)
	// Newest first.
	assert.Equal(t, int64(2), bought[0].ID)

	sold, err := svc.ListForSeller(ctx, seller)
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, int64(1), sold[0].ID)

	all, err := svc.ListAllForAdmin(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListAllForAdmin(ctx, buyer)
	assert.ErrorIs(t, err, models.ErrForbidden)
}
