package service

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/platform/ethos"
	"github.com/trusttrade/trustd/internal/pricing"
)

type fakeOracle struct {
	scores map[string]int64
	err    error
	calls  int
}

func (f *fakeOracle) FetchScore(_ context.Context, address string) (ethos.Score, error) {
	f.calls++
	if f.err != nil {
		return ethos.Score{}, f.err
	}
	return ethos.Score{Address: address, Score: f.scores[address]}, nil
}

type memScoreCache struct {
	scores map[string]int64
}

func (m *memScoreCache) SetScore(_ context.Context, address string, score int64) error {
	m.scores[address] = score
	return nil
}

func (m *memScoreCache) GetScore(_ context.Context, address string) (int64, error) {
	score, ok := m.scores[address]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return score, nil
}

func (m *memScoreCache) Invalidate(_ context.Context, address string) error {
	delete(m.scores, address)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestResolveScore_CachesOracleResult(t *testing.T) {
	oracle := &fakeOracle{scores: map[string]int64{"0xabc": 1500}}
	cache := &memScoreCache{scores: map[string]int64{}}
	svc := NewReputationService(oracle, cache, pricing.DefaultTierConfig(), testLogger())

	score := svc.ResolveScore(context.Background(), "0xABC")
	assert.Equal(t, int64(1500), score)
	assert.Equal(t, 1, oracle.calls)

	// Second resolve hits the cache.
	score = svc.ResolveScore(context.Background(), "0xabc")
	assert.Equal(t, int64(1500), score)
	assert.Equal(t, 1, oracle.calls)
}

func TestResolveScore_OracleDownFallsBackToZero(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("connection refused")}
	cache := &memScoreCache{scores: map[string]int64{}}
	svc := NewReputationService(oracle, cache, pricing.DefaultTierConfig(), testLogger())

	score := svc.ResolveScore(context.Background(), "0xabc")
	assert.Zero(t, score)

	// The fallback is not cached; the oracle is retried.
	svc.ResolveScore(context.Background(), "0xabc")
	assert.Equal(t, 2, oracle.calls)
}

func TestGetReputation(t *testing.T) {
	oracle := &fakeOracle{scores: map[string]int64{"0xabc": 2400}}
	svc := NewReputationService(oracle, nil, pricing.DefaultTierConfig(), testLogger())

	rep, err := svc.GetReputation(context.Background(), "0xABC")
	require.NoError(t, err)
	assert.Equal(t, pricing.TierVIP, rep.Tier)
	assert.Zero(t, rep.FeeBasisPoints)
	assert.Equal(t, "0xabc", rep.Address)
}

func TestQuoteForAddress(t *testing.T) {
	oracle := &fakeOracle{scores: map[string]int64{"0xabc": 1200}}
	svc := NewReputationService(oracle, nil, pricing.DefaultTierConfig(), testLogger())

	quote, err := svc.QuoteForAddress(context.Background(), "0xabc", big.NewInt(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, pricing.TierStandard, quote.Tier)
	assert.Equal(t, int64(100), quote.FeeBasisPoints)
	assert.Equal(t, "10000", quote.Quote.FeeAmount.String())
}
