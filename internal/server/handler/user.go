package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/service"
)

// UserService defines the methods the user handler requires.
type UserService interface {
	Get(ctx context.Context, address string) (service.UserView, error)
	SaveProfile(ctx context.Context, p domain.Profile) error
}

// ReputationService defines the reputation lookup the user handler requires.
type ReputationService interface {
	GetReputation(ctx context.Context, address string) (service.Reputation, error)
}

// UserHandler serves user profile and reputation endpoints.
type UserHandler struct {
	users      UserService
	reputation ReputationService
	logger     *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users UserService, reputation ReputationService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:      users,
		reputation: reputation,
		logger:     logger,
	}
}

// GetUser returns the aggregated user view for an address.
// GET /api/users/{address}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	view, err := h.users.Get(r.Context(), address)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get user failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// GetStats returns only the indexed trading record for an address.
// GET /api/users/{address}/stats
func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	view, err := h.users.Get(r.Context(), address)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get user stats failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get user stats")
		return
	}

	writeJSON(w, http.StatusOK, view.User)
}

// GetReputation returns the score, tier, and fee rate for an address.
// GET /api/users/{address}/reputation
func (h *UserHandler) GetReputation(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	rep, err := h.reputation.GetReputation(r.Context(), address)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get reputation failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get reputation")
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// profileRequest is the PUT /api/users/{address}/profile body.
type profileRequest struct {
	Twitter string `json:"twitter"`
	Discord string `json:"discord"`
}

// UpdateProfile stores the social handles for an address.
// PUT /api/users/{address}/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.users.SaveProfile(r.Context(), domain.Profile{
		Address: address,
		Twitter: req.Twitter,
		Discord: req.Discord,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: update profile failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
