// Package redis keeps short lived seat holds so that concurrent orders for the same seat
// are turned away before they reach the database.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"train-station/internal/logger"
	"train-station/internal/models"
)

const DefaultHoldTTL = 30 * time.Second

type SeatHolds struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewSeatHolds(client *redis.Client, ttl time.Duration, log *logger.Logger) *SeatHolds {
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}
	return &SeatHolds{Client: client, TTL: ttl, Logger: log}
}

func holdKey(p models.SeatPosition) string {
	return fmt.Sprintf("seat_hold:%d:%d:%d", p.JourneyID, p.Cargo, p.Seat)
}

// Hold takes every seat for owner or none of them. When a seat is already held, by
// another owner or earlier in the same list, the seats taken so far are released and
// the index of the blocked seat is returned. The index is -1 when all seats were taken.
func (h *SeatHolds) Hold(ctx context.Context, owner string, seats []models.SeatPosition) (int, error) {
	taken := make([]models.SeatPosition, 0, len(seats))
	for i, seat := range seats {
		ok, err := h.Client.SetNX(ctx, holdKey(seat), owner, h.TTL).Result()
		if err != nil {
			h.release(taken, owner)
			return -1, fmt.Errorf("failed to hold seat %s: %w", holdKey(seat), err)
		}
		if !ok {
			h.release(taken, owner)
			h.Logger.Debug("REDIS", fmt.Sprintf("Seat %s is already held", holdKey(seat)))
			return i, nil
		}
		taken = append(taken, seat)
	}
	return -1, nil
}

// Release drops the holds owned by owner. Holds taken over by someone else after expiry
// are left alone.
func (h *SeatHolds) Release(ctx context.Context, owner string, seats []models.SeatPosition) error {
	var firstErr error
	for _, seat := range seats {
		if err := h.releaseOne(ctx, holdKey(seat), owner); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *SeatHolds) releaseOne(ctx context.Context, key, owner string) error {
	val, err := h.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val != owner {
		return nil
	}
	return h.Client.Del(ctx, key).Err()
}

func (h *SeatHolds) release(seats []models.SeatPosition, owner string) {
	if len(seats) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.Release(ctx, owner, seats); err != nil {
		h.Logger.Warn("REDIS", fmt.Sprintf("Failed to release seat holds for %s: %v", owner, err))
	}
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 10,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection error: %w", err)
	}
	return client, nil
}
