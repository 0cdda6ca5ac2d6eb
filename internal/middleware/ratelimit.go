// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter increments a fixed-window counter and returns the new value.
// The window starts with the first increment of key.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ValkeyCounter implements Counter with INCR and EXPIRE, so every server
// process shares the same windows.
type ValkeyCounter struct {
	client *redis.Client
	prefix string
}

// NewValkeyCounter creates a Counter storing keys under prefix.
func NewValkeyCounter(client *redis.Client, prefix string) *ValkeyCounter {
	return &ValkeyCounter{client: client, prefix: prefix}
}

// Incr implements Counter.
func (c *ValkeyCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, c.prefix+key)
		pipe.ExpireNX(ctx, c.prefix+key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	return incr.Val(), nil
}

// RateLimiter limits requests per client IP over a fixed window.
type RateLimiter struct {
	counter Counter
	limit   int           // max requests per window
	window  time.Duration // window length
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter that allows limit requests per
// window. A nil counter disables limiting.
func NewRateLimiter(counter Counter, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// allow checks whether the given client is within the rate limit. Counter
// failures let the request through.
func (rl *RateLimiter) allow(ctx context.Context, client string) (bool, time.Duration) {
	if rl.counter == nil || rl.limit <= 0 {
		return true, 0
	}

	slot := rl.now().UnixNano() / int64(rl.window)
	key := client + ":" + strconv.FormatInt(slot, 10)

	n, err := rl.counter.Incr(ctx, key, rl.window)
	if err != nil {
		slog.Warn("rate limiter unavailable, allowing request", "error", err)
		return true, 0
	}
	if n > int64(rl.limit) {
		next := time.Unix(0, (slot+1)*int64(rl.window))
		return false, next.Sub(rl.now())
	}
	return true, 0
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.allow(r.Context(), clientIP(r))
		if !ok {
			secs := int(retry.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	// X-Forwarded-For may hold a chain; the leftmost entry is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port).
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
