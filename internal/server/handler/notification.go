package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/trusttrade/trustd/internal/domain"
)

// NotificationHandler serves in-app notification endpoints directly from the
// notification store.
type NotificationHandler struct {
	store  domain.NotificationStore
	logger *slog.Logger
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(store domain.NotificationStore, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		store:  store,
		logger: logger,
	}
}

// listNotificationsResponse wraps the notification list with the paging echo.
type listNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Count         int                   `json:"count"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
}

// ListByUser returns notifications addressed to a wallet, newest first.
// GET /api/notifications/user/{address}
func (h *NotificationHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}
	opts := parseListOpts(r)

	notifications, err := h.store.ListByRecipient(r.Context(), address, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list notifications failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}

	writeJSON(w, http.StatusOK, listNotificationsResponse{
		Notifications: notifications,
		Count:         len(notifications),
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	})
}

// createNotificationRequest is the POST /api/notifications body.
type createNotificationRequest struct {
	Recipient string                  `json:"recipient"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	TradeID   string                  `json:"tradeId,omitempty"`
	Link      string                  `json:"link,omitempty"`
}

// Create writes a notification. Most notifications originate from the chain
// poller; this endpoint exists for the dispute flow and manual ops messages.
// POST /api/notifications
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Recipient == "" || req.Type == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, "recipient, type, and title are required")
		return
	}

	n := domain.Notification{
		Recipient: req.Recipient,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		TradeID:   req.TradeID,
		Link:      req.Link,
	}
	if err := h.store.Create(r.Context(), n); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: create notification failed",
			slog.String("recipient", req.Recipient),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create notification")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// MarkRead flags one notification as read.
// POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing notification id")
		return
	}

	if err := h.store.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: mark read failed",
			slog.String("notification_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// GetPreferences returns the notification preferences for an address,
// falling back to the defaults for addresses that never saved any.
// GET /api/notifications/user/{address}/preferences
func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	prefs, err := h.store.GetPreferences(r.Context(), address)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get preferences failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences upserts the notification preferences for an address.
// PUT /api/notifications/user/{address}/preferences
func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	var prefs domain.NotificationPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	prefs.Address = address

	if err := h.store.SetPreferences(r.Context(), prefs); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: update preferences failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update preferences")
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}
