package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/pricing"
)

type fakeQuoteService struct {
	scores map[string]int64
}

func (f *fakeQuoteService) QuoteForAddress(_ context.Context, address string, basePrice *big.Int) (pricing.ReputationQuote, error) {
	return pricing.BuildQuote(pricing.DefaultTierConfig(), f.scores[strings.ToLower(address)], basePrice)
}

func (f *fakeQuoteService) QuoteForScore(score int64, basePrice *big.Int) (pricing.ReputationQuote, error) {
	return pricing.BuildQuote(pricing.DefaultTierConfig(), score, basePrice)
}

func postQuote(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewQuoteHandler(&fakeQuoteService{
		scores: map[string]int64{"0xabc": 2400},
	}, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(body))
	h.CreateQuote(rec, req)
	return rec
}

func TestCreateQuote_ByAddress(t *testing.T) {
	rec := postQuote(t, `{"address":"0xABC","basePrice":"1000000000000000000"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, pricing.TierVIP, resp.Tier)
	assert.Equal(t, "0", resp.FeeAmount)
	assert.Equal(t, "1000000000000000000", resp.TotalCost)
}

func TestCreateQuote_ByScore(t *testing.T) {
	rec := postQuote(t, `{"score":500,"basePrice":"1000000"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, pricing.TierHighRisk, resp.Tier)
	assert.Equal(t, int64(250), resp.FeeBasisPoints)
	assert.Equal(t, "25000", resp.FeeAmount)
	assert.Equal(t, "975000", resp.NetProceeds)
}

func TestCreateQuote_ZeroScoreIsValid(t *testing.T) {
	rec := postQuote(t, `{"score":0,"basePrice":"1000000"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, pricing.TierHighRisk, resp.Tier)
}

func TestCreateQuote_BadRequests(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, postQuote(t, `{"basePrice":"1000"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postQuote(t, `{"score":1,"basePrice":"abc"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postQuote(t, `{"score":1,"basePrice":"-5"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postQuote(t, `not json`).Code)
}
