package domain

import "time"

// NotificationType enumerates the events users can be notified about.
type NotificationType string

const (
	NotifyTradeCreated   NotificationType = "trade_created"
	NotifyTradeExecuted  NotificationType = "trade_executed"
	NotifyTradeCompleted NotificationType = "trade_completed"
	NotifyTradeCancelled NotificationType = "trade_cancelled"
	NotifyReviewReceived NotificationType = "review_received"
	NotifyDisputeCreated NotificationType = "dispute_created"
)

// Notification is a single in-app notification addressed to a wallet.
type Notification struct {
	ID        string           `json:"id"`
	Recipient string           `json:"recipient"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	TradeID   string           `json:"tradeId,omitempty"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NotificationPreferences controls which notification types an address
// receives. New addresses default to everything enabled except email.
type NotificationPreferences struct {
	Address            string    `json:"address"`
	TradeCreated       bool      `json:"tradeCreated"`
	TradeExecuted      bool      `json:"tradeExecuted"`
	TradeCompleted     bool      `json:"tradeCompleted"`
	TradeCancelled     bool      `json:"tradeCancelled"`
	ReviewReceived     bool      `json:"reviewReceived"`
	DisputeCreated     bool      `json:"disputeCreated"`
	EmailNotifications bool      `json:"emailNotifications"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DefaultPreferences returns the preference set applied to addresses that
// have never saved preferences.
func DefaultPreferences(address string) NotificationPreferences {
	return NotificationPreferences{
		Address:        address,
		TradeCreated:   true,
		TradeExecuted:  true,
		TradeCompleted: true,
		TradeCancelled: true,
		ReviewReceived: true,
		DisputeCreated: true,
	}
}

// Wants reports whether the given notification type is enabled.
func (p NotificationPreferences) Wants(t NotificationType) bool {
	switch t {
	case NotifyTradeCreated:
		return p.TradeCreated
	case NotifyTradeExecuted:
		return p.TradeExecuted
	case NotifyTradeCompleted:
		return p.TradeCompleted
	case NotifyTradeCancelled:
		return p.TradeCancelled
	case NotifyReviewReceived:
		return p.ReviewReceived
	case NotifyDisputeCreated:
		return p.DisputeCreated
	default:
		return false
	}
}
