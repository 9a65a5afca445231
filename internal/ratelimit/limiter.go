// Package ratelimit is a fixed window request limiter backed by Redis counters.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"train-station/internal/auth"
	"train-station/internal/logger"
	"train-station/internal/utils"
)

type Limiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	log    *logger.Logger
}

func New(client *redis.Client, prefix string, limit int, window time.Duration, log *logger.Logger) *Limiter {
	return &Limiter{client: client, prefix: prefix, limit: limit, window: window, log: log}
}

// Allow counts one hit for key and reports whether it is still inside the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int, error) {
	windowID := time.Now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("rate:%s:%s:%d", l.prefix, key, windowID)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, fmt.Errorf("failed to count request: %w", err)
	}

	count := int(incr.Val())
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.limit, remaining, nil
}

// Middleware limits requests per authenticated user, falling back to the remote address.
// Redis failures let the request through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := auth.UserID(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}

		ok, remaining, err := l.Allow(r.Context(), key)
		if err != nil {
			l.log.Warn("RATELIMIT", err.Error())
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			l.log.LogSecurity("RATE_LIMITED", fmt.Sprintf("%s %s by %s", r.Method, r.URL.Path, key))
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			utils.WriteJSON(w, http.StatusTooManyRequests, utils.ErrorResponse("Too many requests", "rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
