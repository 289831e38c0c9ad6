package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/trusttrade/trustd/internal/domain"
)

// statsMaxAge bounds how stale a memoized stats payload may be served.
const statsMaxAge = 60 * time.Second

// StatsIndex is the slice of the subgraph client the stats service needs.
type StatsIndex interface {
	FetchPlatformStats(ctx context.Context) (domain.PlatformStats, error)
}

// StatsService serves platform-wide aggregates with a short in-process
// memo. The pipeline's stats refresher calls Refresh on an interval below
// statsMaxAge, so API reads almost never block on the subgraph.
type StatsService struct {
	index  StatsIndex
	logger *slog.Logger

	mu        sync.RWMutex
	cached    domain.PlatformStats
	fetchedAt time.Time
}

// NewStatsService creates a StatsService.
func NewStatsService(index StatsIndex, logger *slog.Logger) *StatsService {
	return &StatsService{
		index:  index,
		logger: logger,
	}
}

// Platform returns the platform stats, refreshing from the subgraph when the
// memo is stale. A stale memo is still served if the refresh fails.
func (s *StatsService) Platform(ctx context.Context) (domain.PlatformStats, error) {
	s.mu.RLock()
	cached, fetchedAt := s.cached, s.fetchedAt
	s.mu.RUnlock()

	if !fetchedAt.IsZero() && time.Since(fetchedAt) < statsMaxAge {
		return cached, nil
	}

	if err := s.Refresh(ctx); err != nil {
		if !fetchedAt.IsZero() {
			s.logger.WarnContext(ctx, "stats: refresh failed, serving stale",
				slog.String("error", err.Error()),
			)
			return cached, nil
		}
		return domain.PlatformStats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached, nil
}

// Refresh pulls fresh stats from the subgraph into the memo.
func (s *StatsService) Refresh(ctx context.Context) error {
	stats, err := s.index.FetchPlatformStats(ctx)
	if err != nil {
		return fmt.Errorf("stats: refresh: %w", err)
	}

	s.mu.Lock()
	s.cached = stats
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return nil
}
