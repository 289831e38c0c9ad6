package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trusttrade/trustd/internal/domain"
)

// tradeFeedTTL is a few poll intervals, so a single missed poll does not
// empty the feed but a dead poller eventually does.
const tradeFeedTTL = 90 * time.Second

// TradeCache implements domain.TradeCache. The poller replaces the whole
// snapshot set each cycle; the API reads either the full feed or one trade.
//
// Key schema:
//
//	trades:feed - JSON array of TradeSnapshot, newest first
//	trade:{id}  - JSON TradeSnapshot
type TradeCache struct {
	rdb *redis.Client
}

// NewTradeCache creates a TradeCache backed by the given Client.
func NewTradeCache(c *Client) *TradeCache {
	return &TradeCache{rdb: c.Underlying()}
}

const tradeFeedKey = "trades:feed"

func tradeKey(id string) string { return "trade:" + id }

// SetSnapshots replaces the cached trade feed and the per-trade entries in a
// single transaction.
func (tc *TradeCache) SetSnapshots(ctx context.Context, snaps []domain.TradeSnapshot) error {
	feed, err := json.Marshal(snaps)
	if err != nil {
		return fmt.Errorf("redis: marshal trade feed: %w", err)
	}

	pipe := tc.rdb.TxPipeline()
	pipe.Set(ctx, tradeFeedKey, feed, tradeFeedTTL)
	for _, snap := range snaps {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("redis: marshal trade %s: %w", snap.ID, err)
		}
		pipe.Set(ctx, tradeKey(snap.ID), data, tradeFeedTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set trade snapshots: %w", err)
	}
	return nil
}

// GetSnapshots returns the cached trade feed.
// It returns domain.ErrNotFound when the feed has expired or was never set.
func (tc *TradeCache) GetSnapshots(ctx context.Context) ([]domain.TradeSnapshot, error) {
	data, err := tc.rdb.Get(ctx, tradeFeedKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get trade feed: %w", err)
	}

	var snaps []domain.TradeSnapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("redis: unmarshal trade feed: %w", err)
	}
	return snaps, nil
}

// GetSnapshot returns one cached trade by its decimal ID.
// It returns domain.ErrNotFound when the trade is not in the cache.
func (tc *TradeCache) GetSnapshot(ctx context.Context, id string) (domain.TradeSnapshot, error) {
	data, err := tc.rdb.Get(ctx, tradeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.TradeSnapshot{}, domain.ErrNotFound
		}
		return domain.TradeSnapshot{}, fmt.Errorf("redis: get trade %s: %w", id, err)
	}

	var snap domain.TradeSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.TradeSnapshot{}, fmt.Errorf("redis: unmarshal trade %s: %w", id, err)
	}
	return snap, nil
}

// Compile-time interface check.
var _ domain.TradeCache = (*TradeCache)(nil)
