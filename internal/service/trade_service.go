package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/pricing"
	"github.com/trusttrade/trustd/internal/receipt"
)

// TradeIndex is the slice of the subgraph client the trade service needs.
type TradeIndex interface {
	FetchActiveTrades(ctx context.Context, first int) ([]domain.Trade, error)
	FetchUserTrades(ctx context.Context, address string, first int) ([]domain.Trade, error)
	FetchTrade(ctx context.Context, tradeID string) (domain.Trade, error)
}

// TradeService serves trade listings and per-trade derivations. The subgraph
// is the primary read path; the poller-maintained snapshot cache and history
// keep the API up when the subgraph lags or is down.
type TradeService struct {
	index  TradeIndex
	cache  domain.TradeCache
	snaps  domain.SnapshotStore
	logger *slog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// NewTradeService creates a TradeService. cache and snaps may be nil; every
// nil layer just removes one fallback.
func NewTradeService(index TradeIndex, cache domain.TradeCache, snaps domain.SnapshotStore, logger *slog.Logger) *TradeService {
	return &TradeService{
		index:  index,
		cache:  cache,
		snaps:  snaps,
		logger: logger,
		now:    time.Now,
	}
}

// Active returns open trades, newest first. Subgraph first, snapshot cache
// as fallback.
func (s *TradeService) Active(ctx context.Context, opts domain.ListOpts) ([]domain.Trade, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	trades, err := s.index.FetchActiveTrades(ctx, limit)
	if err == nil {
		return trades, nil
	}
	s.logger.WarnContext(ctx, "trades: subgraph active query failed, serving cached snapshots",
		slog.String("error", err.Error()),
	)

	if s.cache != nil {
		snaps, cacheErr := s.cache.GetSnapshots(ctx)
		if cacheErr == nil {
			var out []domain.Trade
			for _, snap := range snaps {
				if snap.Status != domain.StatusActive {
					continue
				}
				out = append(out, snapshotTrade(snap))
				if len(out) == limit {
					break
				}
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("trades: active: %w", err)
}

// ByUser returns trades where the address is seller or buyer.
func (s *TradeService) ByUser(ctx context.Context, address string, opts domain.ListOpts) ([]domain.Trade, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	trades, err := s.index.FetchUserTrades(ctx, address, limit)
	if err == nil {
		return trades, nil
	}
	s.logger.WarnContext(ctx, "trades: subgraph user query failed, serving snapshot history",
		slog.String("address", address),
		slog.String("error", err.Error()),
	)

	if s.snaps != nil {
		snaps, storeErr := s.snaps.ListByAddress(ctx, address, opts)
		if storeErr == nil {
			out := make([]domain.Trade, 0, len(snaps))
			for _, snap := range snaps {
				out = append(out, snapshotTrade(snap))
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("trades: by user %s: %w", address, err)
}

// Get returns one trade's snapshot view: cache, then snapshot history, then
// the subgraph. The snapshot form carries the raw escrow timestamps the
// countdown and receipt derivations need.
func (s *TradeService) Get(ctx context.Context, id string) (domain.TradeSnapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.GetSnapshot(ctx, id)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "trades: snapshot cache read failed",
				slog.String("trade_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.snaps != nil {
		snap, err := s.snaps.GetByID(ctx, id)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "trades: snapshot store read failed",
				slog.String("trade_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	trade, err := s.index.FetchTrade(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TradeSnapshot{}, domain.ErrNotFound
		}
		return domain.TradeSnapshot{}, fmt.Errorf("trades: get %s: %w", id, err)
	}
	return tradeSnapshot(trade), nil
}

// Countdown derives the escrow countdown for a trade at the current time.
// Returns domain.ErrNotInEscrow when the trade has not been executed.
func (s *TradeService) Countdown(ctx context.Context, id string) (pricing.EscrowCountdown, error) {
	snap, err := s.Get(ctx, id)
	if err != nil {
		return pricing.EscrowCountdown{}, err
	}
	return pricing.DeriveCountdown(snap.ExecutedAt, snap.EscrowDuration, s.now().Unix())
}

// Receipt builds the settlement receipt for a trade.
func (s *TradeService) Receipt(ctx context.Context, id string) (receipt.Receipt, error) {
	snap, err := s.Get(ctx, id)
	if err != nil {
		return receipt.Receipt{}, err
	}
	return receipt.Build(snap, s.now())
}

// snapshotTrade converts a poller snapshot into the subgraph trade shape so
// fallback responses look identical to primary ones.
func snapshotTrade(snap domain.TradeSnapshot) domain.Trade {
	tradeID, _ := strconv.ParseInt(snap.ID, 10, 64)
	t := domain.Trade{
		ID:             snap.ID,
		TradeID:        tradeID,
		Seller:         snap.Seller,
		Buyer:          snap.Buyer,
		Token:          snap.Token,
		TokenAmount:    snap.TokenAmount,
		EthPrice:       snap.EthPrice,
		FeeBasisPoints: snap.FeeBasisPoints,
		Status:         snap.Status,
		Disputed:       snap.Disputed,
		CreatedAt:      time.Unix(snap.CreatedAt, 0).UTC(),
		EscrowDuration: snap.EscrowDuration,
	}
	if snap.ExecutedAt > 0 {
		ts := time.Unix(snap.ExecutedAt, 0).UTC()
		t.ExecutedAt = &ts
	}
	return t
}

// tradeSnapshot is the reverse conversion for subgraph-sourced detail reads.
func tradeSnapshot(t domain.Trade) domain.TradeSnapshot {
	snap := domain.TradeSnapshot{
		ID:             t.ID,
		Seller:         t.Seller,
		Buyer:          t.Buyer,
		Token:          t.Token,
		TokenAmount:    t.TokenAmount,
		EthPrice:       t.EthPrice,
		FeeBasisPoints: t.FeeBasisPoints,
		Status:         t.Status,
		Disputed:       t.Disputed,
		CreatedAt:      t.CreatedAt.Unix(),
		EscrowDuration: t.EscrowDuration,
	}
	if t.ExecutedAt != nil {
		snap.ExecutedAt = t.ExecutedAt.Unix()
	}
	return snap
}
