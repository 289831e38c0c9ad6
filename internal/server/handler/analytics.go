package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/trusttrade/trustd/internal/domain"
)

// StatsService defines the methods the analytics handler requires.
type StatsService interface {
	Platform(ctx context.Context) (domain.PlatformStats, error)
}

// AnalyticsHandler serves platform-wide aggregate endpoints.
type AnalyticsHandler struct {
	stats  StatsService
	logger *slog.Logger
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(stats StatsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		stats:  stats,
		logger: logger,
	}
}

// GetPlatform returns the platform-wide stats.
// GET /api/analytics/platform
func (h *AnalyticsHandler) GetPlatform(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Platform(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: platform stats failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get platform stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
