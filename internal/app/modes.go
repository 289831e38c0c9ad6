package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"

	"github.com/trusttrade/trustd/internal/chain"
	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/pipeline"
	"github.com/trusttrade/trustd/internal/platform/ensdata"
	"github.com/trusttrade/trustd/internal/platform/ethos"
	"github.com/trusttrade/trustd/internal/platform/subgraph"
	"github.com/trusttrade/trustd/internal/pricing"
	"github.com/trusttrade/trustd/internal/server"
	"github.com/trusttrade/trustd/internal/server/handler"
	"github.com/trusttrade/trustd/internal/server/ws"
	"github.com/trusttrade/trustd/internal/service"
)

// services bundles the service layer shared by the API and the pipeline.
type services struct {
	reputation *service.ReputationService
	trades     *service.TradeService
	users      *service.UserService
	stats      *service.StatsService
}

// buildServices constructs the platform clients and the service layer.
func (a *App) buildServices(deps *Dependencies) *services {
	index := subgraph.NewClient(a.cfg.Subgraph.URL, a.cfg.Subgraph.APIKey)
	oracle := ethos.NewClient(a.cfg.Ethos.BaseURL, a.cfg.Ethos.ClientHeader)
	ens := ensdata.NewClient(a.cfg.ENS.BaseURL)

	tiers := pricing.TierConfig{
		VIPThreshold:       a.cfg.Fees.VIPThreshold,
		StandardThreshold:  a.cfg.Fees.StandardThreshold,
		VIPFeePercent:      a.cfg.Fees.VIPFeePercent,
		StandardFeePercent: a.cfg.Fees.StandardFeePercent,
		HighRiskFeePercent: a.cfg.Fees.HighRiskFeePercent,
	}

	return &services{
		reputation: service.NewReputationService(oracle, deps.ScoreCache, tiers, a.logger),
		trades:     service.NewTradeService(index, deps.TradeCache, deps.SnapshotStore, a.logger),
		users:      service.NewUserService(index, deps.ProfileStore, ens, a.logger),
		stats:      service.NewStatsService(index, a.logger),
	}
}

// ServeMode runs only the HTTP/WebSocket API.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	svcs := a.buildServices(deps)
	hub := a.startHub(ctx, g)
	a.startHTTPServer(ctx, g, deps, svcs, hub)

	return g.Wait()
}

// PollMode runs only the background pipeline: chain poller, stats refresher,
// and receipt archiver. No HTTP server is started, so a poll-only replica can
// sit next to a fleet of serve replicas.
func (a *App) PollMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting poll mode")

	g, ctx := errgroup.WithContext(ctx)

	svcs := a.buildServices(deps)
	if err := a.startPipeline(ctx, g, deps, svcs, nil); err != nil {
		return fmt.Errorf("poll mode: %w", err)
	}

	return g.Wait()
}

// FullMode runs the API and the pipeline in one process, with the poller
// broadcasting straight into the WebSocket hub.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	svcs := a.buildServices(deps)
	hub := a.startHub(ctx, g)
	a.startHTTPServer(ctx, g, deps, svcs, hub)

	if err := a.startPipeline(ctx, g, deps, svcs, hub); err != nil {
		return fmt.Errorf("full mode: %w", err)
	}

	return g.Wait()
}

// startHub creates the WebSocket hub and runs it on the errgroup.
func (a *App) startHub(ctx context.Context, g *errgroup.Group) *ws.Hub {
	hub := ws.NewHub(a.logger, ws.Config{
		Network:   a.cfg.Chain.Network,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		err := hub.Run(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return err
	})
	return hub
}

// startHTTPServer registers all handlers and runs the API server on the
// errgroup, shutting it down gracefully when the context is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services, hub *ws.Hub) {
	if !a.cfg.Server.Enabled {
		a.logger.InfoContext(ctx, "server.enabled is false, skipping HTTP server")
		return
	}

	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(a.logger),
		Trades:        handler.NewTradeHandler(svcs.trades, a.logger),
		Quotes:        handler.NewQuoteHandler(svcs.reputation, a.logger),
		Users:         handler.NewUserHandler(svcs.users, svcs.reputation, a.logger),
		Reviews:       handler.NewReviewHandler(svcs.users, a.logger),
		Analytics:     handler.NewAnalyticsHandler(svcs.stats, a.logger),
		Notifications: handler.NewNotificationHandler(deps.NotificationStore, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		APIKey:          a.cfg.Server.APIKey,
		RateLimit:       a.cfg.Server.RateLimit,
		RateLimitWindow: a.cfg.Server.RateLimitWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		err := srv.Start()
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// startPipeline wires the chain stack and runs the pipeline orchestrator on
// the errgroup. feed may be nil when no WebSocket hub is running.
func (a *App) startPipeline(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services, feed pipeline.Broadcaster) error {
	eth, err := ethclient.DialContext(ctx, a.cfg.Chain.RPCURL)
	if err != nil {
		return fmt.Errorf("dial rpc %s: %w", a.cfg.Chain.RPCURL, err)
	}
	a.closers = append(a.closers, eth.Close)

	reader, err := chain.NewReader(eth, a.cfg.Chain.ContractAddress, domain.StatusModel(a.cfg.Chain.StatusModel))
	if err != nil {
		return err
	}
	tokens := chain.NewTokenResolver(reader, deps.TokenCache, a.logger)

	poller := pipeline.NewChainPoller(
		reader,
		tokens,
		deps.TradeCache,
		deps.SnapshotStore,
		deps.NotificationStore,
		feed,
		deps.LockManager,
		deps.Notifier,
		pipeline.PollerConfig{
			BatchSize: a.cfg.Pipeline.PollBatchSize,
			LockTTL:   a.cfg.Pipeline.LockTTL.Duration,
		},
		a.logger,
	)

	refresher := pipeline.NewStatsRefresher(svcs.stats, a.logger)

	var runner *pipeline.ArchiveRunner
	if deps.ReceiptArchiver != nil {
		runner = pipeline.NewArchiveRunner(deps.ReceiptArchiver, a.logger)
	} else {
		a.logger.InfoContext(ctx, "s3 disabled, receipt archival not scheduled")
	}

	orch := pipeline.NewOrchestrator(poller, refresher, runner, pipeline.OrchestratorConfig{
		PollInterval:  a.cfg.Pipeline.PollInterval.Duration,
		StatsInterval: a.cfg.Pipeline.StatsInterval.Duration,
		ArchiveCron:   a.cfg.Pipeline.ArchiveCron,
	}, a.logger)

	g.Go(func() error {
		return orch.Run(ctx)
	})

	a.logger.InfoContext(ctx, "pipeline started",
		slog.Duration("poll_interval", a.cfg.Pipeline.PollInterval.Duration),
		slog.String("contract", a.cfg.Chain.ContractAddress),
	)
	return nil
}
