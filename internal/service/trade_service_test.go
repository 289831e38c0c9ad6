package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
)

type fakeIndex struct {
	active []domain.Trade
	byID   map[string]domain.Trade
	err    error
}

func (f *fakeIndex) FetchActiveTrades(context.Context, int) ([]domain.Trade, error) {
	return f.active, f.err
}

func (f *fakeIndex) FetchUserTrades(context.Context, string, int) ([]domain.Trade, error) {
	return f.active, f.err
}

func (f *fakeIndex) FetchTrade(_ context.Context, id string) (domain.Trade, error) {
	if f.err != nil {
		return domain.Trade{}, f.err
	}
	t, ok := f.byID[id]
	if !ok {
		return domain.Trade{}, domain.ErrNotFound
	}
	return t, nil
}

type memTradeCache struct {
	snaps []domain.TradeSnapshot
}

func (m *memTradeCache) SetSnapshots(_ context.Context, snaps []domain.TradeSnapshot) error {
	m.snaps = snaps
	return nil
}

func (m *memTradeCache) GetSnapshots(context.Context) ([]domain.TradeSnapshot, error) {
	if m.snaps == nil {
		return nil, domain.ErrNotFound
	}
	return m.snaps, nil
}

func (m *memTradeCache) GetSnapshot(_ context.Context, id string) (domain.TradeSnapshot, error) {
	for _, snap := range m.snaps {
		if snap.ID == id {
			return snap, nil
		}
	}
	return domain.TradeSnapshot{}, domain.ErrNotFound
}

func escrowSnap(id string, executedAt, duration int64) domain.TradeSnapshot {
	return domain.TradeSnapshot{
		ID:             id,
		Seller:         "0x2222222222222222222222222222222222222222",
		Buyer:          "0x3333333333333333333333333333333333333333",
		Token:          "0x4200000000000000000000000000000000000006",
		TokenAmount:    "100",
		EthPrice:       "50000000000000000",
		FeeBasisPoints: 250,
		Status:         domain.StatusEscrow,
		CreatedAt:      1_700_000_000,
		ExecutedAt:     executedAt,
		EscrowDuration: duration,
	}
}

func TestActive_SubgraphPrimary(t *testing.T) {
	index := &fakeIndex{active: []domain.Trade{{ID: "1", Status: domain.StatusActive}}}
	svc := NewTradeService(index, nil, nil, testLogger())

	trades, err := svc.Active(context.Background(), domain.ListOpts{})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "1", trades[0].ID)
}

func TestActive_FallsBackToCache(t *testing.T) {
	index := &fakeIndex{err: errors.New("subgraph down")}
	cache := &memTradeCache{snaps: []domain.TradeSnapshot{
		{ID: "1", Status: domain.StatusActive, CreatedAt: 1_700_000_000},
		{ID: "2", Status: domain.StatusCompleted, CreatedAt: 1_700_000_100},
	}}
	svc := NewTradeService(index, cache, nil, testLogger())

	trades, err := svc.Active(context.Background(), domain.ListOpts{})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "1", trades[0].ID)
	assert.Equal(t, int64(1), trades[0].TradeID)
}

func TestActive_ErrorsWhenAllLayersFail(t *testing.T) {
	index := &fakeIndex{err: errors.New("subgraph down")}
	svc := NewTradeService(index, &memTradeCache{}, nil, testLogger())

	_, err := svc.Active(context.Background(), domain.ListOpts{})
	assert.Error(t, err)
}

func TestGet_PrefersCache(t *testing.T) {
	index := &fakeIndex{err: errors.New("should not be called")}
	cache := &memTradeCache{snaps: []domain.TradeSnapshot{escrowSnap("7", 1_700_000_000, 86400)}}
	svc := NewTradeService(index, cache, nil, testLogger())

	snap, err := svc.Get(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, int64(86400), snap.EscrowDuration)
}

func TestCountdown(t *testing.T) {
	executedAt := int64(1_700_000_000)
	cache := &memTradeCache{snaps: []domain.TradeSnapshot{escrowSnap("7", executedAt, 86400)}}
	svc := NewTradeService(&fakeIndex{}, cache, nil, testLogger())
	svc.now = func() time.Time { return time.Unix(executedAt+3600, 0) }

	cd, err := svc.Countdown(context.Background(), "7")
	require.NoError(t, err)
	assert.False(t, cd.IsExpired)
	assert.Equal(t, int64(82800), cd.TotalSeconds)
	assert.Equal(t, int64(23), cd.Hours)
}

func TestCountdown_NotInEscrow(t *testing.T) {
	snap := escrowSnap("7", 0, 86400)
	snap.Status = domain.StatusActive
	cache := &memTradeCache{snaps: []domain.TradeSnapshot{snap}}
	svc := NewTradeService(&fakeIndex{}, cache, nil, testLogger())

	_, err := svc.Countdown(context.Background(), "7")
	assert.ErrorIs(t, err, domain.ErrNotInEscrow)
}

func TestReceipt(t *testing.T) {
	cache := &memTradeCache{snaps: []domain.TradeSnapshot{escrowSnap("7", 1_700_000_000, 86400)}}
	svc := NewTradeService(&fakeIndex{}, cache, nil, testLogger())
	svc.now = func() time.Time { return time.Unix(1_700_010_000, 0) }

	r, err := svc.Receipt(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "1250000000000000", r.FeeAmount)
	assert.Equal(t, "51250000000000000", r.TotalCost)
}

func TestGet_SubgraphLastResort(t *testing.T) {
	executed := time.Unix(1_700_003_600, 0).UTC()
	index := &fakeIndex{byID: map[string]domain.Trade{
		"9": {
			ID:             "9",
			Status:         domain.StatusEscrow,
			EthPrice:       "1000",
			FeeBasisPoints: 100,
			CreatedAt:      time.Unix(1_700_000_000, 0).UTC(),
			ExecutedAt:     &executed,
			EscrowDuration: 3600,
		},
	}}
	svc := NewTradeService(index, nil, nil, testLogger())

	snap, err := svc.Get(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_003_600), snap.ExecutedAt)

	_, err = svc.Get(context.Background(), "404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
