package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/pricing"
	"github.com/trusttrade/trustd/internal/receipt"
)

type fakeTradeService struct {
	snaps     map[string]domain.TradeSnapshot
	countdown pricing.EscrowCountdown
	cdErr     error
}

func (f *fakeTradeService) Active(context.Context, domain.ListOpts) ([]domain.Trade, error) {
	return []domain.Trade{{ID: "1", Status: domain.StatusActive}}, nil
}

func (f *fakeTradeService) ByUser(context.Context, string, domain.ListOpts) ([]domain.Trade, error) {
	return nil, nil
}

func (f *fakeTradeService) Get(_ context.Context, id string) (domain.TradeSnapshot, error) {
	snap, ok := f.snaps[id]
	if !ok {
		return domain.TradeSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

func (f *fakeTradeService) Countdown(_ context.Context, id string) (pricing.EscrowCountdown, error) {
	if _, ok := f.snaps[id]; !ok {
		return pricing.EscrowCountdown{}, domain.ErrNotFound
	}
	return f.countdown, f.cdErr
}

func (f *fakeTradeService) Receipt(_ context.Context, id string) (receipt.Receipt, error) {
	snap, err := f.Get(context.Background(), id)
	if err != nil {
		return receipt.Receipt{}, err
	}
	return receipt.Receipt{TradeID: snap.ID, FeeAmount: "1250000000000000"}, nil
}

func tradeMux(svc TradeService) *http.ServeMux {
	h := NewTradeHandler(svc, slog.New(slog.DiscardHandler))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/trades/active", h.ListActive)
	mux.HandleFunc("GET /api/trades/{id}", h.GetTrade)
	mux.HandleFunc("GET /api/trades/{id}/countdown", h.GetCountdown)
	mux.HandleFunc("GET /api/trades/{id}/receipt", h.GetReceipt)
	return mux
}

func TestListActive(t *testing.T) {
	mux := tradeMux(&fakeTradeService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trades/active", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp listTradesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestGetTrade_NotFound(t *testing.T) {
	mux := tradeMux(&fakeTradeService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trades/404", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCountdown(t *testing.T) {
	svc := &fakeTradeService{
		snaps: map[string]domain.TradeSnapshot{"7": {ID: "7"}},
		countdown: pricing.EscrowCountdown{
			Hours:        23,
			TotalSeconds: 82800,
		},
	}
	mux := tradeMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trades/7/countdown", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var cd pricing.EscrowCountdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cd))
	assert.Equal(t, int64(23), cd.Hours)
}

func TestGetCountdown_NotInEscrow(t *testing.T) {
	svc := &fakeTradeService{
		snaps: map[string]domain.TradeSnapshot{"7": {ID: "7"}},
		cdErr: domain.ErrNotInEscrow,
	}
	mux := tradeMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trades/7/countdown", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetReceipt(t *testing.T) {
	svc := &fakeTradeService{snaps: map[string]domain.TradeSnapshot{"7": {ID: "7"}}}
	mux := tradeMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trades/7/receipt", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var rcpt receipt.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rcpt))
	assert.Equal(t, "1250000000000000", rcpt.FeeAmount)
}
