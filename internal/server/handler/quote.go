package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/pricing"
)

// QuoteService defines the methods the quote handler requires.
type QuoteService interface {
	QuoteForAddress(ctx context.Context, address string, basePrice *big.Int) (pricing.ReputationQuote, error)
	QuoteForScore(score int64, basePrice *big.Int) (pricing.ReputationQuote, error)
}

// QuoteHandler serves the settlement quote endpoint.
type QuoteHandler struct {
	quotes QuoteService
	logger *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler with the given service and logger.
func NewQuoteHandler(quotes QuoteService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{
		quotes: quotes,
		logger: logger,
	}
}

// quoteRequest is the POST /api/quotes body. Either address or score must be
// set; address wins when both are present.
type quoteRequest struct {
	Address   string `json:"address"`
	Score     *int64 `json:"score"`
	BasePrice string `json:"basePrice"` // wei, decimal string
}

// quoteResponse adds the wei breakdown as decimal strings on top of the
// engine output, since big.Int marshals as a bare JSON number.
type quoteResponse struct {
	Score          int64           `json:"score"`
	Tier           pricing.FeeTier `json:"tier"`
	FeePercent     float64         `json:"feePercent"`
	FeeBasisPoints int64           `json:"feeBasisPoints"`
	BasePrice      string          `json:"basePrice"`
	FeeAmount      string          `json:"feeAmount"`
	TotalCost      string          `json:"totalCost"`
	NetProceeds    string          `json:"netProceeds"`
}

// CreateQuote prices a base price at the fee tier of the given address or
// explicit score.
// POST /api/quotes
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	basePrice, ok := new(big.Int).SetString(req.BasePrice, 10)
	if !ok {
		writeError(w, http.StatusBadRequest, "basePrice must be a decimal wei string")
		return
	}

	var (
		quote pricing.ReputationQuote
		err   error
	)
	switch {
	case req.Address != "":
		quote, err = h.quotes.QuoteForAddress(r.Context(), req.Address, basePrice)
	case req.Score != nil:
		quote, err = h.quotes.QuoteForScore(*req.Score, basePrice)
	default:
		writeError(w, http.StatusBadRequest, "address or score is required")
		return
	}

	if err != nil {
		if errors.Is(err, domain.ErrInvalidPrice) {
			writeError(w, http.StatusBadRequest, "basePrice must be positive")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: quote failed",
			slog.String("address", req.Address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to build quote")
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		Score:          quote.Score,
		Tier:           quote.Tier,
		FeePercent:     quote.FeePercent,
		FeeBasisPoints: quote.FeeBasisPoints,
		BasePrice:      quote.Quote.BasePrice.String(),
		FeeAmount:      quote.Quote.FeeAmount.String(),
		TotalCost:      quote.Quote.TotalCost.String(),
		NetProceeds:    quote.Quote.NetProceeds.String(),
	})
}
