package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-order-service/internal/models"

	"github.com/go-redis/redis/v8"
)

const listingsKey = "listings:browse"

type Client struct {
	rdb        *redis.Client
	listingTTL time.Duration
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, listingTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, listingTTL: listingTTL}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetListings returns the cached browse page, or (nil, nil) on a cold cache
func (c *Client) GetListings(ctx context.Context) ([]models.Listing, error) {
	data, err := c.rdb.Get(ctx, listingsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("decode cached listings: %w", err)
	}
	return listings, nil
}

// SetListings caches the browse page with the configured TTL
func (c *Client) SetListings(ctx context.Context, listings []models.Listing) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("encode listings: %w", err)
	}
	return c.rdb.Set(ctx, listingsKey, data, c.listingTTL).Err()
}

// InvalidateListings drops the cached browse page
func (c *Client) InvalidateListings(ctx context.Context) error {
	return c.rdb.Del(ctx, listingsKey).Err()
}

// IncrActivity bumps a user's unseen-activity counter
func (c *Client) IncrActivity(ctx context.Context, userID int64) error {
	return c.rdb.Incr(ctx, activityKey(userID)).Err()
}

// GetActivity returns a user's unseen-activity counter
func (c *Client) GetActivity(ctx context.Context, userID int64) (int64, error) {
	n, err := c.rdb.Get(ctx, activityKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// ClearActivity resets a user's unseen-activity counter
func (c *Client) ClearActivity(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, activityKey(userID)).Err()
}

func activityKey(userID int64) string {
	return fmt.Sprintf("activity:%d", userID)
}
