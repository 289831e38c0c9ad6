package domain

import (
	"context"
	"time"
)

// ScoreCache provides short-lived caching of reputation oracle scores so the
// pricing endpoints do not hit the oracle on every request. Staleness beyond
// the TTL is acceptable for display; transaction submission re-resolves.
type ScoreCache interface {
	SetScore(ctx context.Context, address string, score int64) error
	GetScore(ctx context.Context, address string) (int64, error)
	Invalidate(ctx context.Context, address string) error
}

// TokenCache memoizes ERC-20 display metadata keyed by token address.
type TokenCache interface {
	Set(ctx context.Context, info TokenInfo) error
	Get(ctx context.Context, address string) (TokenInfo, error)
}

// TradeCache stores the latest processed on-chain trade snapshots so the API
// can serve the feed without a round of contract reads per request.
type TradeCache interface {
	SetSnapshots(ctx context.Context, snaps []TradeSnapshot) error
	GetSnapshots(ctx context.Context) ([]TradeSnapshot, error)
	GetSnapshot(ctx context.Context, id string) (TradeSnapshot, error)
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager provides distributed locking, used to keep the chain poller
// single-instance across replicas.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}
