package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trusttrade/trustd/internal/domain"
)

// scoreTTL keeps oracle scores fresh enough for fee display while absorbing
// the bulk of repeated lookups. Transaction paths re-resolve regardless.
const scoreTTL = 5 * time.Minute

// ScoreCache implements domain.ScoreCache using plain Redis strings.
//
// Key schema:
//
//	score:{address} - integer reputation score, address lowercased
type ScoreCache struct {
	rdb *redis.Client
}

// NewScoreCache creates a ScoreCache backed by the given Client.
func NewScoreCache(c *Client) *ScoreCache {
	return &ScoreCache{rdb: c.Underlying()}
}

func scoreKey(address string) string {
	return "score:" + strings.ToLower(address)
}

// SetScore stores an address's reputation score with a 5-minute TTL.
func (sc *ScoreCache) SetScore(ctx context.Context, address string, score int64) error {
	if err := sc.rdb.Set(ctx, scoreKey(address), score, scoreTTL).Err(); err != nil {
		return fmt.Errorf("redis: set score %s: %w", address, err)
	}
	return nil
}

// GetScore retrieves the cached score for an address.
// It returns domain.ErrNotFound when the key does not exist.
func (sc *ScoreCache) GetScore(ctx context.Context, address string) (int64, error) {
	score, err := sc.rdb.Get(ctx, scoreKey(address)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("redis: get score %s: %w", address, err)
	}
	return score, nil
}

// Invalidate drops the cached score for an address, forcing the next lookup
// back to the oracle. Called after a trade completes, since completions move
// the participants' scores.
func (sc *ScoreCache) Invalidate(ctx context.Context, address string) error {
	if err := sc.rdb.Del(ctx, scoreKey(address)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate score %s: %w", address, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ScoreCache = (*ScoreCache)(nil)
