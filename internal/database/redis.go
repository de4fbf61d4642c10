package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alexnthnz/booking-notifications/internal/booking"
	"github.com/alexnthnz/booking-notifications/internal/config"
)

// RedisClient wraps redis.Client
type RedisClient struct {
	*redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{Client: rdb}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.Client.Close()
}

// ConfirmationGuard marks bookings whose confirmation was already dispatched
// so a redelivered event does not notify twice
type ConfirmationGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewConfirmationGuard creates a guard whose marks expire after ttl
func NewConfirmationGuard(client redis.Cmdable, ttl time.Duration) *ConfirmationGuard {
	return &ConfirmationGuard{client: client, ttl: ttl}
}

func confirmationKey(variant booking.Variant, bookingID string) string {
	return fmt.Sprintf("booking_confirmation:%s:%s", variant, bookingID)
}

// Acquire marks the booking and reports false if it was already marked
func (g *ConfirmationGuard) Acquire(ctx context.Context, variant booking.Variant, bookingID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, confirmationKey(variant, bookingID), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire confirmation guard: %w", err)
	}
	return ok, nil
}

// Release removes the mark so the confirmation can be dispatched again
func (g *ConfirmationGuard) Release(ctx context.Context, variant booking.Variant, bookingID string) error {
	if err := g.client.Del(ctx, confirmationKey(variant, bookingID)).Err(); err != nil {
		return fmt.Errorf("failed to release confirmation guard: %w", err)
	}
	return nil
}
