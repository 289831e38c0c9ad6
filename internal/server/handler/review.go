package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/trusttrade/trustd/internal/domain"
)

// ReviewService defines the methods the review handler requires.
type ReviewService interface {
	Reviews(ctx context.Context, address string, opts domain.ListOpts) ([]domain.Review, error)
}

// ReviewHandler serves review listing endpoints.
type ReviewHandler struct {
	reviews ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// listReviewsResponse wraps the review list with the paging echo.
type listReviewsResponse struct {
	Reviews []domain.Review `json:"reviews"`
	Count   int             `json:"count"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// ListByUser returns reviews written about an address.
// GET /api/reviews/user/{address}
func (h *ReviewHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}
	opts := parseListOpts(r)

	reviews, err := h.reviews.Reviews(r.Context(), address, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list reviews failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	writeJSON(w, http.StatusOK, listReviewsResponse{
		Reviews: reviews,
		Count:   len(reviews),
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
}
