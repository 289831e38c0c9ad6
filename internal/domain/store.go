package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// NotificationStore persists in-app notifications and per-address
// notification preferences.
type NotificationStore interface {
	Create(ctx context.Context, n Notification) error
	ListByRecipient(ctx context.Context, address string, opts ListOpts) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	GetPreferences(ctx context.Context, address string) (NotificationPreferences, error)
	SetPreferences(ctx context.Context, prefs NotificationPreferences) error
}

// ProfileStore persists user profile data (social handles, resolved ENS).
type ProfileStore interface {
	Upsert(ctx context.Context, p Profile) error
	Get(ctx context.Context, address string) (Profile, error)
}

// SnapshotStore persists the on-chain trade snapshots observed by the chain
// poller, giving the analytics endpoints a queryable history even when the
// subgraph lags.
type SnapshotStore interface {
	UpsertBatch(ctx context.Context, snaps []TradeSnapshot) error
	GetByID(ctx context.Context, id string) (TradeSnapshot, error)
	ListByStatus(ctx context.Context, status DisplayStatus, opts ListOpts) ([]TradeSnapshot, error)
	ListByAddress(ctx context.Context, address string, opts ListOpts) ([]TradeSnapshot, error)
	Count(ctx context.Context) (int64, error)
}
