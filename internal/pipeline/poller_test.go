package pipeline

import (
	"context"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
)

type fakeReader struct {
	trades []domain.RawTrade
	model  domain.StatusModel
}

func (f *fakeReader) GetRecentTrades(_ context.Context, _ int) ([]domain.RawTrade, error) {
	return f.trades, nil
}

func (f *fakeReader) Model() domain.StatusModel { return f.model }

type memSnapshotCache struct {
	snaps []domain.TradeSnapshot
}

func (m *memSnapshotCache) SetSnapshots(_ context.Context, snaps []domain.TradeSnapshot) error {
	m.snaps = snaps
	return nil
}

func (m *memSnapshotCache) GetSnapshots(_ context.Context) ([]domain.TradeSnapshot, error) {
	return m.snaps, nil
}

func (m *memSnapshotCache) GetSnapshot(_ context.Context, id string) (domain.TradeSnapshot, error) {
	for _, s := range m.snaps {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.TradeSnapshot{}, domain.ErrNotFound
}

type memNotificationStore struct {
	created []domain.Notification
	prefs   map[string]domain.NotificationPreferences
}

func (m *memNotificationStore) Create(_ context.Context, n domain.Notification) error {
	m.created = append(m.created, n)
	return nil
}

func (m *memNotificationStore) ListByRecipient(_ context.Context, _ string, _ domain.ListOpts) ([]domain.Notification, error) {
	return m.created, nil
}

func (m *memNotificationStore) MarkRead(_ context.Context, _ string) error { return nil }

func (m *memNotificationStore) GetPreferences(_ context.Context, address string) (domain.NotificationPreferences, error) {
	if p, ok := m.prefs[address]; ok {
		return p, nil
	}
	return domain.DefaultPreferences(address), nil
}

func (m *memNotificationStore) SetPreferences(_ context.Context, _ domain.NotificationPreferences) error {
	return nil
}

type memBroadcaster struct {
	events []string
}

func (m *memBroadcaster) Broadcast(event string, _ any) {
	m.events = append(m.events, event)
}

func rawTrade(id int64, code uint8) domain.RawTrade {
	return domain.RawTrade{
		ID:             big.NewInt(id),
		Seller:         "0xSELLER",
		Buyer:          "0xBUYER",
		Token:          "0xTOKEN",
		TokenAmount:    big.NewInt(1000),
		EthPrice:       big.NewInt(50000),
		FeeBasisPoints: 100,
		StatusCode:     code,
		CreatedAt:      1700000000,
	}
}

func newTestPoller(reader *fakeReader, cache *memSnapshotCache, notifs *memNotificationStore, feed *memBroadcaster) *ChainPoller {
	var notifStore domain.NotificationStore
	if notifs != nil {
		notifStore = notifs
	}
	var broadcaster Broadcaster
	if feed != nil {
		broadcaster = feed
	}
	return NewChainPoller(
		reader, nil, cache, nil, notifStore, broadcaster, nil, nil,
		PollerConfig{}, slog.New(slog.DiscardHandler),
	)
}

func TestPoll_WritesSnapshotsToCache(t *testing.T) {
	reader := &fakeReader{
		trades: []domain.RawTrade{rawTrade(1, 0)},
		model:  domain.ModelFiveState,
	}
	cache := &memSnapshotCache{}
	p := newTestPoller(reader, cache, nil, nil)

	require.NoError(t, p.Poll(context.Background()))

	require.Len(t, cache.snaps, 1)
	snap := cache.snaps[0]
	assert.Equal(t, "1", snap.ID)
	assert.Equal(t, "0xseller", snap.Seller)
	assert.Equal(t, domain.StatusActive, snap.Status)
	assert.Equal(t, "50000", snap.EthPrice)
}

func TestPoll_FirstCycleEmitsNoTransitions(t *testing.T) {
	reader := &fakeReader{
		trades: []domain.RawTrade{rawTrade(1, 0)},
		model:  domain.ModelFiveState,
	}
	notifs := &memNotificationStore{}
	feed := &memBroadcaster{}
	p := newTestPoller(reader, &memSnapshotCache{}, notifs, feed)

	require.NoError(t, p.Poll(context.Background()))

	assert.Empty(t, notifs.created)
	assert.Equal(t, []string{"trade_feed"}, feed.events)
}

func TestPoll_StatusChangeNotifiesBothParties(t *testing.T) {
	reader := &fakeReader{
		trades: []domain.RawTrade{rawTrade(1, 0)},
		model:  domain.ModelFiveState,
	}
	notifs := &memNotificationStore{}
	feed := &memBroadcaster{}
	p := newTestPoller(reader, &memSnapshotCache{}, notifs, feed)

	require.NoError(t, p.Poll(context.Background()))

	executed := rawTrade(1, 1)
	executed.ExecutedAt = 1700000100
	reader.trades = []domain.RawTrade{executed}
	require.NoError(t, p.Poll(context.Background()))

	require.Len(t, notifs.created, 2)
	assert.Equal(t, domain.NotifyTradeExecuted, notifs.created[0].Type)
	assert.Equal(t, "0xseller", notifs.created[0].Recipient)
	assert.Equal(t, "0xbuyer", notifs.created[1].Recipient)
	assert.Equal(t, "1", notifs.created[0].TradeID)
	assert.Contains(t, feed.events, "transition")
}

func TestPoll_RespectsMutedPreferences(t *testing.T) {
	reader := &fakeReader{
		trades: []domain.RawTrade{rawTrade(1, 0)},
		model:  domain.ModelFiveState,
	}
	muted := domain.DefaultPreferences("0xseller")
	muted.TradeExecuted = false
	notifs := &memNotificationStore{
		prefs: map[string]domain.NotificationPreferences{"0xseller": muted},
	}
	p := newTestPoller(reader, &memSnapshotCache{}, notifs, nil)

	require.NoError(t, p.Poll(context.Background()))

	executed := rawTrade(1, 1)
	executed.ExecutedAt = 1700000100
	reader.trades = []domain.RawTrade{executed}
	require.NoError(t, p.Poll(context.Background()))

	require.Len(t, notifs.created, 1)
	assert.Equal(t, "0xbuyer", notifs.created[0].Recipient)
}

func TestPoll_DisputedFlagOverridesStatus(t *testing.T) {
	disputed := rawTrade(1, 1)
	disputed.Disputed = true
	disputed.ExecutedAt = 1700000100
	reader := &fakeReader{
		trades: []domain.RawTrade{disputed},
		model:  domain.ModelFiveState,
	}
	cache := &memSnapshotCache{}
	p := newTestPoller(reader, cache, nil, nil)

	require.NoError(t, p.Poll(context.Background()))

	require.Len(t, cache.snaps, 1)
	assert.Equal(t, domain.StatusDisputed, cache.snaps[0].Status)
	assert.True(t, cache.snaps[0].Disputed)
}

func TestPoll_ThreeStateExecutedMapsToCompleted(t *testing.T) {
	reader := &fakeReader{
		trades: []domain.RawTrade{rawTrade(7, 1)},
		model:  domain.ModelThreeState,
	}
	cache := &memSnapshotCache{}
	p := newTestPoller(reader, cache, nil, nil)

	require.NoError(t, p.Poll(context.Background()))

	require.Len(t, cache.snaps, 1)
	assert.Equal(t, domain.StatusCompleted, cache.snaps[0].Status)
}

func TestNextCronTime(t *testing.T) {
	after := time.Date(2025, 6, 15, 2, 30, 0, 0, time.UTC)

	next, err := nextCronTime("0 3 * * *", after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC), next)

	next, err = nextCronTime("0 3 1 * *", after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC), next)

	_, err = nextCronTime("0 3 * *", after)
	assert.Error(t, err)
}
