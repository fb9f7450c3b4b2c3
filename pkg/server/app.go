package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"

	"RateScope/internal/chart"
	"RateScope/internal/domain/models"
	"RateScope/internal/domain/repository"
	"RateScope/internal/export"
	"RateScope/internal/handler/api"
	"RateScope/internal/handler/live"
	"RateScope/internal/usecase"
	"RateScope/pkg/cache"
	"RateScope/pkg/config"
	xhttp "RateScope/pkg/http"
	applogger "RateScope/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	metrics  repository.Metrics
	source   repository.DataSource
	cacheSvc cache.Service

	scheduler  *usecase.Scheduler
	hub        *live.Hub
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	metrics repository.Metrics,
	source repository.DataSource,
	cacheSvc cache.Service,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
		source:   source,
		cacheSvc: cacheSvc,
	}
}

// routes fans one route registration out to several handlers.
type routes []xhttp.Handler

func (r routes) RegisterRoutes(e *echo.Echo) {
	for _, h := range r {
		h.RegisterRoutes(e)
	}
}

// Run loads the input documents, builds the explorer state and blocks
// until interrupted. Either input document failing to load aborts
// startup; there is no partial mode.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loadCtx, loadCancel := context.WithTimeout(ctx, a.cfg.Source.FetchTimeout)
	ds, params, err := a.source.Load(loadCtx)
	loadCancel()
	if err != nil {
		return fmt.Errorf("load input documents: %w", err)
	}
	from, to := ds.Range()
	a.log.Info("dataset loaded",
		applogger.Int("observations", ds.Len()),
		applogger.String("from", from),
		applogger.String("to", to))

	registry, err := chart.NewStandardRegistry(ds, a.cfg.Export.ReferenceWidth)
	if err != nil {
		return fmt.Errorf("chart registry: %w", err)
	}

	session := usecase.NewSession(params, models.DateWindow{From: from, To: to})
	a.scheduler = usecase.NewScheduler(ds, registry, session,
		a.cfg.Scheduler.QuietPeriod, nil, a.metrics, a.log)
	a.hub = live.NewHub(a.scheduler, a.metrics, a.log)
	a.scheduler.SetSink(a.hub)
	a.scheduler.RunNow()

	renderer := export.NewRenderer(registry,
		a.cfg.Export.Width, a.cfg.Export.Height, a.cfg.Export.TitleBand,
		a.metrics, a.log)
	explorer := api.NewExplorerHandler(ds, session, a.scheduler, a.source,
		renderer, a.metrics, a.log)

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(routes{explorer, a.hub},
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)
	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http server start: %w", err)
	}
	a.log.Info("explorer started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("mode", a.cfg.Source.Mode))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.scheduler.Close()
	a.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	switch c := a.cacheSvc.(type) {
	case *cache.MemoryCache:
		c.Close()
	case interface{ Close() error }:
		if err := c.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
