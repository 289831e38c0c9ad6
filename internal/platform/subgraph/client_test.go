package subgraph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
)

func newTestServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
}

func TestFetchActiveTrades(t *testing.T) {
	srv := newTestServer(t, `{
		"data": {
			"trades": [{
				"id": "0xabc-7",
				"tradeId": "7",
				"seller": { "id": "0xseller", "address": "0xseller" },
				"buyer": null,
				"token": "0x4200000000000000000000000000000000000006",
				"tokenAmount": "5000000000000000000",
				"ethPrice": "50000000000000000",
				"feeBasisPoints": "250",
				"status": "Active",
				"disputed": false,
				"createdAt": "1700000000",
				"executedAt": "",
				"completedAt": "",
				"escrowDuration": "0"
			}]
		}
	}`)
	defer srv.Close()

	c := NewClient(srv.URL, "")
	trades, err := c.FetchActiveTrades(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	tr := trades[0]
	assert.Equal(t, int64(7), tr.TradeID)
	assert.Equal(t, "0xseller", tr.Seller)
	assert.Empty(t, tr.Buyer)
	assert.Equal(t, int64(250), tr.FeeBasisPoints)
	assert.Equal(t, domain.StatusActive, tr.Status)
	assert.Equal(t, int64(1700000000), tr.CreatedAt.Unix())
	assert.Nil(t, tr.ExecutedAt)
}

func TestFetchTrade_NotFound(t *testing.T) {
	srv := newTestServer(t, `{"data": {"trades": []}}`)
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.FetchTrade(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetchTrade_EscrowTimestamps(t *testing.T) {
	srv := newTestServer(t, `{
		"data": {
			"trades": [{
				"id": "0xabc-3",
				"tradeId": "3",
				"seller": { "id": "0xs", "address": "0xs" },
				"buyer": { "id": "0xb", "address": "0xb" },
				"token": "0xtoken",
				"tokenAmount": "1",
				"ethPrice": "1000000000000000000",
				"feeBasisPoints": "100",
				"status": "Escrow",
				"disputed": false,
				"createdAt": "1700000000",
				"executedAt": "1700003600",
				"completedAt": "",
				"escrowDuration": "86400"
			}]
		}
	}`)
	defer srv.Close()

	c := NewClient(srv.URL, "")
	tr, err := c.FetchTrade(context.Background(), "3")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusEscrow, tr.Status)
	assert.Equal(t, "0xb", tr.Buyer)
	require.NotNil(t, tr.ExecutedAt)
	assert.Equal(t, int64(1700003600), tr.ExecutedAt.Unix())
	assert.Equal(t, int64(86400), tr.EscrowDuration)
	assert.Nil(t, tr.CompletedAt)
}

func TestDoQuery_GraphQLError(t *testing.T) {
	srv := newTestServer(t, `{"errors": [{"message": "field does not exist"}]}`)
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.FetchPlatformStats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field does not exist")
}

func TestFetchPlatformStats(t *testing.T) {
	srv := newTestServer(t, `{
		"data": {
			"platforms": [{
				"id": "platform",
				"totalTrades": "42",
				"totalVolume": "9000000000000000000",
				"totalUsers": "17",
				"totalReviews": "12",
				"totalDisputes": "2",
				"resolvedDisputes": "1",
				"totalEthCollected": "125000000000000000",
				"lastUpdatedBlock": "123456",
				"lastUpdatedTimestamp": "1700000000"
			}]
		}
	}`)
	defer srv.Close()

	c := NewClient(srv.URL, "")
	stats, err := c.FetchPlatformStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), stats.TotalTrades)
	assert.Equal(t, int64(2), stats.TotalDisputes)
	assert.Equal(t, "125000000000000000", stats.TotalEthCollected)
	assert.Equal(t, int64(123456), stats.LastUpdatedBlock)
}
