// =============================
// File: internal/app/app.go
// =============================
package app

import (
	"context"
	"fmt"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/woofpad/internal/api"
	"github.com/rovshanmuradov/woofpad/internal/config"
	"github.com/rovshanmuradov/woofpad/internal/dex/amm"
	"github.com/rovshanmuradov/woofpad/internal/dex/registry"
	"github.com/rovshanmuradov/woofpad/internal/events"
	"github.com/rovshanmuradov/woofpad/internal/journal"
	"github.com/rovshanmuradov/woofpad/internal/launchpad"
	"github.com/rovshanmuradov/woofpad/internal/utils/metrics"
)

// App is a fully wired venue: engine, event bus, secondary AMM and API.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Collector
	Bus      *events.Bus
	Venue    *amm.Venue
	Factory  *registry.LocalFactory
	Engine   *launchpad.Engine
	Hub      *api.Hub
	Server   *api.Server
	shutdown *Shutdown
}

// New builds every component from cfg. Nothing listens until Run.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	genesis, err := cfg.Genesis.EngineConfig()
	if err != nil {
		return nil, fmt.Errorf("genesis config: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		Registry: reg,
		Metrics:  collector,
		Bus:      events.NewBus(logger, cfg.Events.BufferSize),
		Venue:    amm.NewVenue(cfg.AMM.FeeBps, logger),
		Factory:  registry.NewLocalFactory(cfg.AMM.AddressPrefix),
		shutdown: NewShutdown(logger),
	}

	a.Engine, err = launchpad.New(genesis,
		launchpad.WithLogger(logger),
		launchpad.WithFactory(a.Factory),
		launchpad.WithSecondaryAMM(a.Venue),
		launchpad.WithPublisher(a.Bus),
		launchpad.WithRecorder(collector),
	)
	if err != nil {
		_ = a.Bus.Shutdown(context.Background())
		return nil, fmt.Errorf("engine: %w", err)
	}

	if cfg.Journal.File != "" {
		j, err := journal.Open(cfg.Journal.File, cfg.Journal.FlushInterval, logger)
		if err != nil {
			_ = a.Bus.Shutdown(context.Background())
			return nil, fmt.Errorf("trade journal: %w", err)
		}
		a.Bus.Subscribe(events.TradeExecuted, j)
		a.shutdown.Add("trade_journal", j.Close)
	}

	a.Hub = api.NewHub(logger, collector.UpdateWebsocketClients)
	a.Bus.SubscribeAll(a.Hub)
	a.Bus.SubscribeAll(events.HandlerFunc(a.logEvent))

	a.Server = api.NewServer(api.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Engine:       a.Engine,
		Venue:        a.Venue,
		Hub:          a.Hub,
		Gatherer:     reg,
		Logger:       logger,
	})

	// Closed in reverse: the server first so no new message reaches the
	// engine, then the bus drains into the journal.
	a.shutdown.Add("event_bus", a.Bus.Shutdown)
	a.shutdown.Add("http_server", a.Server.Stop)
	return a, nil
}

func (a *App) logEvent(_ context.Context, ev events.Event) error {
	a.logger.Debug("Event committed",
		zap.String("type", string(ev.Type())),
		zap.Time("time", ev.Timestamp()))
	return nil
}

// Run serves until ctx is cancelled or the server fails, then shuts every
// component down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	return a.run(ctx, func() error { return a.Server.Start() })
}

// RunListener is Run on an existing listener.
func (a *App) RunListener(ctx context.Context, l net.Listener) error {
	return a.run(ctx, func() error { return a.Server.Serve(l) })
}

func (a *App) run(ctx context.Context, serve func() error) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := serve(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("Shutting down", zap.Duration("timeout", a.cfg.Server.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return a.shutdown.Run(shutdownCtx)
	})

	return g.Wait()
}
