package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/platform/ethos"
	"github.com/trusttrade/trustd/internal/pricing"
)

// ScoreOracle is the slice of the Ethos client the service needs.
type ScoreOracle interface {
	FetchScore(ctx context.Context, address string) (ethos.Score, error)
}

// ReputationService resolves credibility scores and turns them into fee
// tiers and settlement quotes.
type ReputationService struct {
	oracle ScoreOracle
	scores domain.ScoreCache
	tiers  pricing.TierConfig
	logger *slog.Logger
}

// NewReputationService creates a ReputationService. scores may be nil, in
// which case every lookup hits the oracle.
func NewReputationService(oracle ScoreOracle, scores domain.ScoreCache, tiers pricing.TierConfig, logger *slog.Logger) *ReputationService {
	return &ReputationService{
		oracle: oracle,
		scores: scores,
		tiers:  tiers,
		logger: logger,
	}
}

// ResolveScore returns the credibility score for an address, consulting the
// cache first. When the oracle is unreachable it falls back to zero, which
// classifies into the highest fee tier; the fallback is never cached so the
// next request retries the oracle.
func (s *ReputationService) ResolveScore(ctx context.Context, address string) int64 {
	address = strings.ToLower(address)

	if s.scores != nil {
		score, err := s.scores.GetScore(ctx, address)
		if err == nil {
			return score
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "reputation: score cache read failed",
				slog.String("address", address),
				slog.String("error", err.Error()),
			)
		}
	}

	resolved, err := s.oracle.FetchScore(ctx, address)
	if err != nil {
		s.logger.WarnContext(ctx, "reputation: oracle unavailable, using fallback score",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		return ethos.DefaultScore(address).Score
	}

	if s.scores != nil {
		if err := s.scores.SetScore(ctx, address, resolved.Score); err != nil {
			s.logger.WarnContext(ctx, "reputation: score cache write failed",
				slog.String("address", address),
				slog.String("error", err.Error()),
			)
		}
	}
	return resolved.Score
}

// Reputation is the tier summary for an address, served by the reputation
// endpoint and embedded in user views.
type Reputation struct {
	Address        string          `json:"address"`
	Score          int64           `json:"score"`
	Tier           pricing.FeeTier `json:"tier"`
	FeePercent     float64         `json:"feePercent"`
	FeeBasisPoints int64           `json:"feeBasisPoints"`
	TierColor      string          `json:"tierColor"`
}

// GetReputation resolves an address's score and classifies it.
func (s *ReputationService) GetReputation(ctx context.Context, address string) (Reputation, error) {
	score := s.ResolveScore(ctx, address)

	tier, feePercent := s.tiers.Classify(score)
	bps, err := pricing.ToBasisPoints(feePercent)
	if err != nil {
		return Reputation{}, fmt.Errorf("reputation: %w", err)
	}

	return Reputation{
		Address:        strings.ToLower(address),
		Score:          score,
		Tier:           tier,
		FeePercent:     feePercent,
		FeeBasisPoints: bps,
		TierColor:      pricing.TierColor(tier),
	}, nil
}

// QuoteForAddress resolves the address's score and prices basePrice wei at
// the resulting tier rate.
func (s *ReputationService) QuoteForAddress(ctx context.Context, address string, basePrice *big.Int) (pricing.ReputationQuote, error) {
	return pricing.BuildQuote(s.tiers, s.ResolveScore(ctx, address), basePrice)
}

// QuoteForScore prices basePrice wei for an explicit score, bypassing the
// oracle. Used when the caller already holds a trusted score.
func (s *ReputationService) QuoteForScore(score int64, basePrice *big.Int) (pricing.ReputationQuote, error) {
	return pricing.BuildQuote(s.tiers, score, basePrice)
}

// InvalidateScore drops the cached score for an address. Called after trade
// completion, which moves both participants' scores.
func (s *ReputationService) InvalidateScore(ctx context.Context, address string) {
	if s.scores == nil {
		return
	}
	if err := s.scores.Invalidate(ctx, strings.ToLower(address)); err != nil {
		s.logger.WarnContext(ctx, "reputation: score invalidate failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
	}
}
