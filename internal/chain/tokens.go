package chain

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/trusttrade/trustd/internal/domain"
)

// knownTokens seeds metadata for tokens common on Base Sepolia, so the
// resolver never spends contract reads on them. Keys are lowercase.
var knownTokens = map[string]domain.TokenInfo{
	"0x4200000000000000000000000000000000000006": {
		Address:  "0x4200000000000000000000000000000000000006",
		Symbol:   "WETH",
		Name:     "Wrapped Ether",
		Decimals: 18,
	},
	"0x036cbd53842c5426634e7929541ec2318f3dcf7e": {
		Address:  "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		Symbol:   "USDC",
		Name:     "USD Coin",
		Decimals: 6,
	},
	"0x0000000000000000000000000000000000000000": {
		Address:  "0x0000000000000000000000000000000000000000",
		Symbol:   "ETH",
		Name:     "Ethereum",
		Decimals: 18,
	},
}

// KnownToken returns seeded metadata for an address, if any.
func KnownToken(address string) (domain.TokenInfo, bool) {
	info, ok := knownTokens[strings.ToLower(address)]
	return info, ok
}

// ShortAddress truncates an address for display: 0x1234...abcd.
func ShortAddress(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// TokenResolver resolves ERC-20 display metadata through three layers:
// the known-token seed table, the cache, then an on-chain read whose result
// is memoized for later lookups.
type TokenResolver struct {
	reader *Reader
	cache  domain.TokenCache
	logger *slog.Logger
}

// NewTokenResolver creates a TokenResolver. cache may be nil, in which case
// every unknown token costs a contract read.
func NewTokenResolver(reader *Reader, cache domain.TokenCache, logger *slog.Logger) *TokenResolver {
	return &TokenResolver{
		reader: reader,
		cache:  cache,
		logger: logger,
	}
}

// Resolve returns display metadata for a token address. Failing everything,
// it falls back to a truncated-address symbol with 18 decimals rather than
// erroring: token display must never take down a trade listing.
func (tr *TokenResolver) Resolve(ctx context.Context, address string) domain.TokenInfo {
	if info, ok := KnownToken(address); ok {
		return info
	}

	if tr.cache != nil {
		info, err := tr.cache.Get(ctx, address)
		if err == nil {
			return info
		}
		if !errors.Is(err, domain.ErrNotFound) {
			tr.logger.Warn("token cache read failed", slog.String("token", address), slog.Any("error", err))
		}
	}

	info, err := tr.reader.TokenInfo(ctx, address)
	if err != nil {
		tr.logger.Warn("token metadata read failed", slog.String("token", address), slog.Any("error", err))
		return domain.TokenInfo{
			Address:  address,
			Symbol:   ShortAddress(address),
			Name:     ShortAddress(address),
			Decimals: 18,
		}
	}

	if tr.cache != nil {
		if err := tr.cache.Set(ctx, info); err != nil {
			tr.logger.Warn("token cache write failed", slog.String("token", address), slog.Any("error", err))
		}
	}
	return info
}
