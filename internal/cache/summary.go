// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"gameshelf/internal/catalog"
)

const (
	// summaryKey is the Valkey key holding the cached catalog counts.
	summaryKey = "gameshelf:summary"

	// DefaultSummaryTTL bounds how stale the index counts can get when a
	// write happens outside this process.
	DefaultSummaryTTL = time.Minute
)

// SummaryCache stores catalog counts in Valkey. Every error is logged and
// treated as a miss so the index page falls back to the database.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ catalog.SummaryCache = (*SummaryCache)(nil)

// NewSummaryCache creates a summary cache backed by the given Valkey client.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl == 0 {
		ttl = DefaultSummaryTTL
	}
	return &SummaryCache{client: client, ttl: ttl}
}

// Get returns the cached counts, or false on a miss.
func (sc *SummaryCache) Get(ctx context.Context) (*catalog.Counts, bool) {
	val, err := sc.client.Get(ctx, summaryKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("summary cache get error", "error", err)
		return nil, false
	}

	var counts catalog.Counts
	if err := json.Unmarshal(val, &counts); err != nil {
		slog.Warn("summary cache decode error", "error", err)
		return nil, false
	}
	slog.Debug("summary cache hit")
	return &counts, true
}

// Set stores counts with the configured TTL.
func (sc *SummaryCache) Set(ctx context.Context, counts catalog.Counts) {
	val, err := json.Marshal(counts)
	if err != nil {
		slog.Warn("summary cache encode error", "error", err)
		return
	}
	if err := sc.client.Set(ctx, summaryKey, val, sc.ttl).Err(); err != nil {
		slog.Warn("summary cache set error", "error", err)
	}
}

// Invalidate drops the cached counts.
func (sc *SummaryCache) Invalidate(ctx context.Context) {
	if err := sc.client.Del(ctx, summaryKey).Err(); err != nil {
		slog.Warn("summary cache invalidate error", "error", err)
		return
	}
	slog.Debug("summary cache invalidated")
}
