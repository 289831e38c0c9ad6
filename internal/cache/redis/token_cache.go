package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trusttrade/trustd/internal/domain"
)

// tokenTTL is long because ERC-20 name/symbol/decimals are effectively
// immutable; the TTL only bounds garbage from delisted tokens.
const tokenTTL = 24 * time.Hour

// TokenCache implements domain.TokenCache with JSON-serialized metadata.
//
// Key schema:
//
//	token:{address} - JSON TokenInfo, address lowercased
type TokenCache struct {
	rdb *redis.Client
}

// NewTokenCache creates a TokenCache backed by the given Client.
func NewTokenCache(c *Client) *TokenCache {
	return &TokenCache{rdb: c.Underlying()}
}

func tokenKey(address string) string {
	return "token:" + strings.ToLower(address)
}

// Set stores token display metadata with a 24-hour TTL.
func (tc *TokenCache) Set(ctx context.Context, info domain.TokenInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("redis: marshal token %s: %w", info.Address, err)
	}
	if err := tc.rdb.Set(ctx, tokenKey(info.Address), data, tokenTTL).Err(); err != nil {
		return fmt.Errorf("redis: set token %s: %w", info.Address, err)
	}
	return nil
}

// Get retrieves token metadata by address.
// It returns domain.ErrNotFound when the key does not exist.
func (tc *TokenCache) Get(ctx context.Context, address string) (domain.TokenInfo, error) {
	data, err := tc.rdb.Get(ctx, tokenKey(address)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.TokenInfo{}, domain.ErrNotFound
		}
		return domain.TokenInfo{}, fmt.Errorf("redis: get token %s: %w", address, err)
	}

	var info domain.TokenInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return domain.TokenInfo{}, fmt.Errorf("redis: unmarshal token %s: %w", address, err)
	}
	return info, nil
}

// Compile-time interface check.
var _ domain.TokenCache = (*TokenCache)(nil)
