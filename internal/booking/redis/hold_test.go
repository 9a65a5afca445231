package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"train-station/internal/logger"
	"train-station/internal/models"
)

// setupTestRedis starts an in-memory miniredis server and a client connected to it.
func setupTestRedis(t *testing.T) (*SeatHolds, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := Connect(context.Background(), mr.Addr())
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewSeatHolds(client, 10*time.Second, logger.Discard()), mr
}

func seats(journeyID int64, pairs ...[2]int) []models.SeatPosition {
	out := make([]models.SeatPosition, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, models.SeatPosition{JourneyID: journeyID, Cargo: p[0], Seat: p[1]})
	}
	return out
}

func TestHoldIsAllOrNothing(t *testing.T) {
	h, mr := setupTestRedis(t)
	ctx := context.Background()

	idx, err := h.Hold(ctx, "order-a", seats(1, [2]int{1, 1}, [2]int{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
	assert.Equal(t, "order-a", mustGet(t, mr, "seat_hold:1:1:2"))

	// the second seat collides, so the first one must be released again
	idx, err = h.Hold(ctx, "order-b", seats(1, [2]int{2, 5}, [2]int{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.False(t, mr.Exists("seat_hold:1:2:5"))

	require.NoError(t, h.Release(ctx, "order-a", seats(1, [2]int{1, 1}, [2]int{1, 2})))
	assert.False(t, mr.Exists("seat_hold:1:1:1"))

	idx, err = h.Hold(ctx, "order-b", seats(1, [2]int{2, 5}, [2]int{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestHoldRejectsDuplicateWithinOneOrder(t *testing.T) {
	h, mr := setupTestRedis(t)

	idx, err := h.Hold(context.Background(), "order-a", seats(7, [2]int{1, 1}, [2]int{1, 1}))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.False(t, mr.Exists("seat_hold:7:1:1"))
}

func TestReleaseLeavesForeignHolds(t *testing.T) {
	h, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := h.Hold(ctx, "order-a", seats(1, [2]int{3, 3}))
	require.NoError(t, err)

	require.NoError(t, h.Release(ctx, "order-b", seats(1, [2]int{3, 3})))
	assert.True(t, mr.Exists("seat_hold:1:3:3"))
}

func TestHoldsExpire(t *testing.T) {
	h, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := h.Hold(ctx, "order-a", seats(1, [2]int{4, 4}))
	require.NoError(t, err)

	mr.FastForward(11 * time.Second)

	idx, err := h.Hold(ctx, "order-b", seats(1, [2]int{4, 4}))
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestConcurrentHoldsOneWinner(t *testing.T) {
	h, _ := setupTestRedis(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	results := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx, err := h.Hold(ctx, fmt.Sprintf("order-%d", i), seats(9, [2]int{1, 1}))
			assert.NoError(t, err)
			results[i] = idx
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, idx := range results {
		if idx == -1 {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestHoldFailsWhenRedisIsDown(t *testing.T) {
	h, mr := setupTestRedis(t)
	mr.Close()

	_, err := h.Hold(context.Background(), "order-a", seats(1, [2]int{1, 1}))
	assert.Error(t, err)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
