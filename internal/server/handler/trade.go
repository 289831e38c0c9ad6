package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/pricing"
	"github.com/trusttrade/trustd/internal/receipt"
)

// TradeService defines the methods the trade handler requires from the
// service layer. It is declared locally so the handler package does not
// depend on the concrete service implementation.
type TradeService interface {
	Active(ctx context.Context, opts domain.ListOpts) ([]domain.Trade, error)
	ByUser(ctx context.Context, address string, opts domain.ListOpts) ([]domain.Trade, error)
	Get(ctx context.Context, id string) (domain.TradeSnapshot, error)
	Countdown(ctx context.Context, id string) (pricing.EscrowCountdown, error)
	Receipt(ctx context.Context, id string) (receipt.Receipt, error)
}

// TradeHandler serves trade-related HTTP endpoints.
type TradeHandler struct {
	trades TradeService
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler with the given service and logger.
func NewTradeHandler(trades TradeService, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{
		trades: trades,
		logger: logger,
	}
}

// listTradesResponse wraps trade list output with the paging echo.
type listTradesResponse struct {
	Trades []domain.Trade `json:"trades"`
	Count  int            `json:"count"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ListActive returns open trades.
// GET /api/trades/active?limit=50&offset=0
func (h *TradeHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	trades, err := h.trades.Active(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list active trades failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}
	if trades == nil {
		trades = []domain.Trade{}
	}

	writeJSON(w, http.StatusOK, listTradesResponse{
		Trades: trades,
		Count:  len(trades),
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

// ListByUser returns trades where the address is seller or buyer.
// GET /api/users/{address}/trades
func (h *TradeHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}
	opts := parseListOpts(r)

	trades, err := h.trades.ByUser(r.Context(), address, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list user trades failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}
	if trades == nil {
		trades = []domain.Trade{}
	}

	writeJSON(w, http.StatusOK, listTradesResponse{
		Trades: trades,
		Count:  len(trades),
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

// GetTrade returns one trade by its decimal ID.
// GET /api/trades/{id}
func (h *TradeHandler) GetTrade(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing trade id")
		return
	}

	snap, err := h.trades.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "trade not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get trade failed",
			slog.String("trade_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get trade")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// GetCountdown returns the escrow countdown for a trade. A trade that has
// not entered escrow yields 409; expiry is a normal 200 with isExpired set.
// GET /api/trades/{id}/countdown
func (h *TradeHandler) GetCountdown(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing trade id")
		return
	}

	cd, err := h.trades.Countdown(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "trade not found")
		case errors.Is(err, domain.ErrNotInEscrow):
			writeError(w, http.StatusConflict, "trade is not in escrow")
		default:
			h.logger.ErrorContext(r.Context(), "handler: countdown failed",
				slog.String("trade_id", id),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to derive countdown")
		}
		return
	}

	writeJSON(w, http.StatusOK, cd)
}

// GetReceipt returns the settlement receipt for a trade.
// GET /api/trades/{id}/receipt
func (h *TradeHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing trade id")
		return
	}

	rcpt, err := h.trades.Receipt(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "trade not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: receipt failed",
			slog.String("trade_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to build receipt")
		return
	}

	writeJSON(w, http.StatusOK, rcpt)
}
