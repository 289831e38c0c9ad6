package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// StatsRefresher keeps the in-process platform stats memo warm so API reads
// never wait on the subgraph.
type StatsRefresher struct {
	stats  StatsRefreshService
	logger *slog.Logger
}

// StatsRefreshService is the slice of the stats service the refresher needs.
type StatsRefreshService interface {
	Refresh(ctx context.Context) error
}

// NewStatsRefresher creates a StatsRefresher.
func NewStatsRefresher(stats StatsRefreshService, logger *slog.Logger) *StatsRefresher {
	return &StatsRefresher{stats: stats, logger: logger}
}

// RunLoop refreshes stats on an interval until the context is cancelled. The
// first refresh runs immediately.
func (r *StatsRefresher) RunLoop(ctx context.Context, interval time.Duration) error {
	if err := r.stats.Refresh(ctx); err != nil {
		r.logger.Warn("stats refresh failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stats refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.stats.Refresh(ctx); err != nil {
				r.logger.Warn("stats refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}
