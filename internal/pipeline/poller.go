// Package pipeline runs the background loops: the chain poller that mirrors
// contract state into the caches and history, the stats refresher, and the
// receipt archiver cron.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/pricing"
	"github.com/trusttrade/trustd/internal/server/ws"
)

// pollerLockKey guards the poll cycle so only one replica writes snapshots.
const pollerLockKey = "chain-poller"

// TradeReader reads trade state from the contract.
type TradeReader interface {
	GetRecentTrades(ctx context.Context, limit int) ([]domain.RawTrade, error)
	Model() domain.StatusModel
}

// TokenResolver resolves ERC-20 display metadata.
type TokenResolver interface {
	Resolve(ctx context.Context, address string) domain.TokenInfo
}

// Broadcaster pushes events to connected feed clients.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// OpsNotifier delivers operator alerts.
type OpsNotifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// transition records one trade moving between display statuses.
type transition struct {
	TradeID string               `json:"tradeId"`
	From    domain.DisplayStatus `json:"from"`
	To      domain.DisplayStatus `json:"to"`
}

// ChainPoller reads recent trades from the contract on an interval, derives
// their display state, and fans the result out: snapshot cache for the API,
// postgres history for analytics, WebSocket broadcasts for the feed, in-app
// notifications and operator alerts for lifecycle transitions.
type ChainPoller struct {
	reader        TradeReader
	tokens        TokenResolver
	cache         domain.TradeCache
	snaps         domain.SnapshotStore
	notifications domain.NotificationStore
	feed          Broadcaster
	locks         domain.LockManager
	ops           OpsNotifier
	logger        *slog.Logger

	batchSize int
	lockTTL   time.Duration

	// prev maps trade ID to the status seen last cycle. nil until the first
	// successful cycle, so a restart does not replay old transitions.
	prev map[string]domain.DisplayStatus

	// alertedExpiry dedupes escrow-expiry operator alerts per trade.
	alertedExpiry map[string]bool

	now func() time.Time
}

// PollerConfig tunes the chain poller.
type PollerConfig struct {
	BatchSize int           // recent trades read per cycle
	LockTTL   time.Duration // distributed lock TTL; should exceed one cycle
}

// NewChainPoller creates a ChainPoller. cache, snaps, notifications, feed,
// locks, and ops may each be nil; a nil dependency disables that sink.
func NewChainPoller(
	reader TradeReader,
	tokens TokenResolver,
	cache domain.TradeCache,
	snaps domain.SnapshotStore,
	notifications domain.NotificationStore,
	feed Broadcaster,
	locks domain.LockManager,
	ops OpsNotifier,
	cfg PollerConfig,
	logger *slog.Logger,
) *ChainPoller {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 50
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 25 * time.Second
	}

	return &ChainPoller{
		reader:        reader,
		tokens:        tokens,
		cache:         cache,
		snaps:         snaps,
		notifications: notifications,
		feed:          feed,
		locks:         locks,
		ops:           ops,
		logger:        logger,
		batchSize:     batch,
		lockTTL:       lockTTL,
		alertedExpiry: make(map[string]bool),
		now:           time.Now,
	}
}

// Poll executes a single poll cycle.
func (p *ChainPoller) Poll(ctx context.Context) error {
	if p.locks != nil {
		unlock, err := p.locks.Acquire(ctx, pollerLockKey, p.lockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				p.logger.DebugContext(ctx, "poller: another replica holds the lock, skipping cycle")
				return nil
			}
			return fmt.Errorf("pipeline: poller lock: %w", err)
		}
		defer unlock()
	}

	raws, err := p.reader.GetRecentTrades(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("pipeline: read recent trades: %w", err)
	}

	snaps := make([]domain.TradeSnapshot, 0, len(raws))
	var transitions []transition

	for _, raw := range raws {
		snap, err := p.buildSnapshot(ctx, raw)
		if err != nil {
			p.logger.WarnContext(ctx, "poller: skipping malformed trade",
				slog.String("trade_id", raw.ID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		snaps = append(snaps, snap)

		if p.prev != nil {
			if before, seen := p.prev[snap.ID]; seen && before != snap.Status {
				transitions = append(transitions, transition{TradeID: snap.ID, From: before, To: snap.Status})
			} else if !seen && snap.Status == domain.StatusActive {
				transitions = append(transitions, transition{TradeID: snap.ID, To: domain.StatusActive})
			}
		}
	}

	p.publish(ctx, snaps, transitions)
	p.checkEscrowExpiries(ctx, snaps)

	next := make(map[string]domain.DisplayStatus, len(snaps))
	for _, snap := range snaps {
		next[snap.ID] = snap.Status
	}
	p.prev = next

	p.logger.InfoContext(ctx, "poller: cycle complete",
		slog.Int("trades", len(snaps)),
		slog.Int("transitions", len(transitions)),
	)
	return nil
}

// buildSnapshot derives the display snapshot for a raw contract trade.
func (p *ChainPoller) buildSnapshot(ctx context.Context, raw domain.RawTrade) (domain.TradeSnapshot, error) {
	status, err := pricing.DeriveStatus(raw.StatusCode, raw.Disputed, p.reader.Model())
	if err != nil {
		return domain.TradeSnapshot{}, err
	}

	var symbol string
	if p.tokens != nil {
		symbol = p.tokens.Resolve(ctx, raw.Token).Symbol
	}

	return domain.TradeSnapshot{
		ID:             raw.ID.String(),
		Seller:         strings.ToLower(raw.Seller),
		Buyer:          strings.ToLower(raw.Buyer),
		Token:          strings.ToLower(raw.Token),
		TokenSymbol:    symbol,
		TokenAmount:    raw.TokenAmount.String(),
		EthPrice:       raw.EthPrice.String(),
		FeeBasisPoints: raw.FeeBasisPoints,
		Status:         status,
		Disputed:       raw.Disputed,
		CreatedAt:      raw.CreatedAt,
		ExecutedAt:     raw.ExecutedAt,
		EscrowDuration: raw.EscrowDuration,
	}, nil
}

// publish writes the cycle's snapshots to every configured sink.
func (p *ChainPoller) publish(ctx context.Context, snaps []domain.TradeSnapshot, transitions []transition) {
	if p.cache != nil {
		if err := p.cache.SetSnapshots(ctx, snaps); err != nil {
			p.logger.ErrorContext(ctx, "poller: snapshot cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}

	if p.snaps != nil {
		if err := p.snaps.UpsertBatch(ctx, snaps); err != nil {
			p.logger.ErrorContext(ctx, "poller: snapshot history write failed",
				slog.String("error", err.Error()),
			)
		}
	}

	if p.feed != nil {
		p.feed.Broadcast(ws.EventTradeFeed, snaps)
		for _, tr := range transitions {
			p.feed.Broadcast(ws.EventTransition, tr)
		}
	}

	for _, tr := range transitions {
		p.notifyTransition(ctx, tr, snaps)
	}
}

// notifyTransition writes in-app notifications for one lifecycle transition
// and raises operator alerts for disputes.
func (p *ChainPoller) notifyTransition(ctx context.Context, tr transition, snaps []domain.TradeSnapshot) {
	var snap domain.TradeSnapshot
	for _, s := range snaps {
		if s.ID == tr.TradeID {
			snap = s
			break
		}
	}

	notifType, title, message := describeTransition(tr, snap)
	if notifType == "" {
		return
	}

	if p.notifications != nil {
		for _, recipient := range []string{snap.Seller, snap.Buyer} {
			if recipient == "" || strings.Trim(recipient, "0x") == "" {
				continue
			}

			prefs, err := p.notifications.GetPreferences(ctx, recipient)
			if err == nil && !prefs.Wants(notifType) {
				continue
			}

			err = p.notifications.Create(ctx, domain.Notification{
				Recipient: recipient,
				Type:      notifType,
				Title:     title,
				Message:   message,
				TradeID:   snap.ID,
				Link:      "/trades/" + snap.ID,
			})
			if err != nil {
				p.logger.ErrorContext(ctx, "poller: notification write failed",
					slog.String("trade_id", snap.ID),
					slog.String("recipient", recipient),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if p.ops != nil && notifType == domain.NotifyDisputeCreated {
		if err := p.ops.Notify(ctx, "dispute", title, message); err != nil {
			p.logger.WarnContext(ctx, "poller: ops alert failed",
				slog.String("error", err.Error()),
			)
		}
	}
}

// checkEscrowExpiries raises a one-time operator alert for escrows past
// their release time that have not been settled.
func (p *ChainPoller) checkEscrowExpiries(ctx context.Context, snaps []domain.TradeSnapshot) {
	if p.ops == nil {
		return
	}

	now := p.now().Unix()
	for _, snap := range snaps {
		if snap.Status != domain.StatusEscrow || snap.ExecutedAt == 0 {
			continue
		}
		if now < snap.ExecutedAt+snap.EscrowDuration || p.alertedExpiry[snap.ID] {
			continue
		}

		p.alertedExpiry[snap.ID] = true
		err := p.ops.Notify(ctx, "escrow_expired",
			fmt.Sprintf("Escrow expired for trade %s", snap.ID),
			fmt.Sprintf("Trade %s passed its escrow release time and awaits releaseFunds.", snap.ID),
		)
		if err != nil {
			p.logger.WarnContext(ctx, "poller: escrow expiry alert failed",
				slog.String("trade_id", snap.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// describeTransition maps a status transition to its notification type and
// user-facing copy. Unknown transitions produce no notification.
func describeTransition(tr transition, snap domain.TradeSnapshot) (domain.NotificationType, string, string) {
	switch {
	case tr.From == "" && tr.To == domain.StatusActive:
		return domain.NotifyTradeCreated,
			fmt.Sprintf("Trade %s listed", snap.ID),
			fmt.Sprintf("Your %s trade is live and open for execution.", snap.TokenSymbol)
	case tr.To == domain.StatusEscrow:
		return domain.NotifyTradeExecuted,
			fmt.Sprintf("Trade %s executed", snap.ID),
			"Payment received; funds are held in escrow."
	case tr.To == domain.StatusCompleted:
		return domain.NotifyTradeCompleted,
			fmt.Sprintf("Trade %s completed", snap.ID),
			"Escrow released and the trade has settled."
	case tr.To == domain.StatusCancelled:
		return domain.NotifyTradeCancelled,
			fmt.Sprintf("Trade %s cancelled", snap.ID),
			"The trade was cancelled and any held funds were returned."
	case tr.To == domain.StatusDisputed:
		return domain.NotifyDisputeCreated,
			fmt.Sprintf("Trade %s disputed", snap.ID),
			"A dispute was opened during the escrow window."
	default:
		return "", "", ""
	}
}

// RunLoop runs the poller on a repeating interval until the context is
// cancelled. The first cycle runs immediately.
func (p *ChainPoller) RunLoop(ctx context.Context, interval time.Duration) error {
	if err := p.Poll(ctx); err != nil {
		p.logger.Error("poller: cycle failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller: loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.Poll(ctx); err != nil {
				p.logger.Error("poller: cycle failed", slog.String("error", err.Error()))
			}
		}
	}
}
