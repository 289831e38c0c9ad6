package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trusttrade/trustd/internal/domain"
)

// NotificationStore implements domain.NotificationStore using PostgreSQL.
type NotificationStore struct {
	pool *pgxpool.Pool
}

// NewNotificationStore creates a NotificationStore backed by the given pool.
func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

// Create inserts a notification. A missing ID is filled with a fresh UUID;
// a zero CreatedAt is filled with the current time.
func (s *NotificationStore) Create(ctx context.Context, n domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO notifications (
			id, recipient, type, title, message, trade_id, link, read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, query,
		n.ID, strings.ToLower(n.Recipient), string(n.Type),
		n.Title, n.Message, n.TradeID, n.Link, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create notification: %w", err)
	}
	return nil
}

// ListByRecipient returns notifications for an address, newest first.
func (s *NotificationStore) ListByRecipient(ctx context.Context, address string, opts domain.ListOpts) ([]domain.Notification, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	const query = `
		SELECT id, recipient, type, title, message, trade_id, link, read, created_at
		FROM notifications
		WHERE recipient = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, strings.ToLower(address), limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list notifications for %s: %w", address, err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var typ string
		if err := rows.Scan(
			&n.ID, &n.Recipient, &typ, &n.Title, &n.Message,
			&n.TradeID, &n.Link, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan notification: %w", err)
		}
		n.Type = domain.NotificationType(typ)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read.
// It returns domain.ErrNotFound when the ID does not exist.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE notifications SET read = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres: mark notification %s read: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetPreferences returns the stored preferences for an address, or the
// default preference set when the address has never saved any.
func (s *NotificationStore) GetPreferences(ctx context.Context, address string) (domain.NotificationPreferences, error) {
	const query = `
		SELECT address, trade_created, trade_executed, trade_completed,
			trade_cancelled, review_received, dispute_created,
			email_notifications, updated_at
		FROM notification_preferences
		WHERE address = $1`

	var p domain.NotificationPreferences
	err := s.pool.QueryRow(ctx, query, strings.ToLower(address)).Scan(
		&p.Address, &p.TradeCreated, &p.TradeExecuted, &p.TradeCompleted,
		&p.TradeCancelled, &p.ReviewReceived, &p.DisputeCreated,
		&p.EmailNotifications, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultPreferences(strings.ToLower(address)), nil
		}
		return domain.NotificationPreferences{}, fmt.Errorf("postgres: get preferences for %s: %w", address, err)
	}
	return p, nil
}

// SetPreferences upserts an address's notification preferences.
func (s *NotificationStore) SetPreferences(ctx context.Context, prefs domain.NotificationPreferences) error {
	const query = `
		INSERT INTO notification_preferences (
			address, trade_created, trade_executed, trade_completed,
			trade_cancelled, review_received, dispute_created,
			email_notifications, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (address) DO UPDATE SET
			trade_created = EXCLUDED.trade_created,
			trade_executed = EXCLUDED.trade_executed,
			trade_completed = EXCLUDED.trade_completed,
			trade_cancelled = EXCLUDED.trade_cancelled,
			review_received = EXCLUDED.review_received,
			dispute_created = EXCLUDED.dispute_created,
			email_notifications = EXCLUDED.email_notifications,
			updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		strings.ToLower(prefs.Address),
		prefs.TradeCreated, prefs.TradeExecuted, prefs.TradeCompleted,
		prefs.TradeCancelled, prefs.ReviewReceived, prefs.DisputeCreated,
		prefs.EmailNotifications,
	)
	if err != nil {
		return fmt.Errorf("postgres: set preferences for %s: %w", prefs.Address, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.NotificationStore = (*NotificationStore)(nil)
