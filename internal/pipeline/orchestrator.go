package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Orchestrator manages the background goroutines: chain polling, stats
// refreshing, and receipt archival. Any component may be nil, in which case
// its loop is not started; the serve-only mode runs with none of them.
type Orchestrator struct {
	poller         *ChainPoller
	statsRefresher *StatsRefresher
	archiveRunner  *ArchiveRunner
	pollInterval   time.Duration
	statsInterval  time.Duration
	archiveCron    string
	logger         *slog.Logger
}

// OrchestratorConfig carries the schedule for each loop.
type OrchestratorConfig struct {
	PollInterval  time.Duration
	StatsInterval time.Duration
	ArchiveCron   string
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	poller *ChainPoller,
	statsRefresher *StatsRefresher,
	archiveRunner *ArchiveRunner,
	cfg OrchestratorConfig,
	logger *slog.Logger,
) *Orchestrator {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	statsInterval := cfg.StatsInterval
	if statsInterval <= 0 {
		statsInterval = time.Minute
	}

	return &Orchestrator{
		poller:         poller,
		statsRefresher: statsRefresher,
		archiveRunner:  archiveRunner,
		pollInterval:   pollInterval,
		statsInterval:  statsInterval,
		archiveCron:    cfg.ArchiveCron,
		logger:         logger,
	}
}

// Run starts the configured loops as concurrent goroutines using an errgroup.
// Each goroutine respects ctx cancellation. If any goroutine returns a
// non-context error, the errgroup cancels the shared context and Run returns
// that error.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("pipeline orchestrator starting",
		slog.Duration("poll_interval", o.pollInterval),
		slog.Duration("stats_interval", o.statsInterval),
		slog.String("archive_cron", o.archiveCron),
	)

	g, ctx := errgroup.WithContext(ctx)

	if o.poller != nil {
		g.Go(func() error {
			o.logger.Info("starting chain poller loop")
			err := o.poller.RunLoop(ctx, o.pollInterval)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("chain poller: %w", err)
		})
	}

	if o.statsRefresher != nil {
		g.Go(func() error {
			o.logger.Info("starting stats refresher loop")
			err := o.statsRefresher.RunLoop(ctx, o.statsInterval)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("stats refresher: %w", err)
		})
	}

	if o.archiveRunner != nil && o.archiveCron != "" {
		g.Go(func() error {
			o.logger.Info("starting archiver cron")
			err := o.archiveRunner.RunCron(ctx, o.archiveCron)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("archiver: %w", err)
		})
	}

	err := g.Wait()
	if err != nil {
		o.logger.Error("pipeline orchestrator stopped with error", slog.String("error", err.Error()))
		return err
	}

	o.logger.Info("pipeline orchestrator stopped cleanly")
	return nil
}
