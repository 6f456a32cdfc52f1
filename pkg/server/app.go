package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TechScreen/internal/usecase"
	pkgch "TechScreen/pkg/clickhouse"
	"TechScreen/pkg/config"
	xhttp "TechScreen/pkg/http"
	pkgkafka "TechScreen/pkg/kafka"
	applogger "TechScreen/pkg/logger"
)

// App ties the screener together: it runs one screening pass on startup,
// then serves the query API until interrupted. chClient and producer are
// optional infrastructure handles closed on shutdown.
type App struct {
	cfg        *config.Config
	manager    *usecase.Manager
	handler    xhttp.Handler
	chClient   *pkgch.Client
	producer   *pkgkafka.Producer
	log        *applogger.Logger
	httpServer *xhttp.Server
}

func New(
	cfg *config.Config,
	manager *usecase.Manager,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:      cfg,
		manager:  manager,
		handler:  handler,
		chClient: chClient,
		producer: producer,
		log:      log,
	}
}

// RunOnce executes a single screening pass and returns without serving.
func (a *App) RunOnce(ctx context.Context) error {
	results := a.manager.RunAll(ctx)
	summary := a.manager.Summary()
	a.log.Info("screening pass complete",
		applogger.Int("classes", len(results)),
		applogger.Int("total_signals", summary.TotalSignals),
		applogger.Int("buy", summary.BuySignals),
		applogger.Int("sell", summary.SellSignals),
		applogger.Int("watch", summary.WatchSignals))

	if report := a.manager.Validate(); !report.OK() {
		for _, issue := range report.Issues {
			a.log.Warn("signal failed validation",
				applogger.String("asset_class", string(issue.AssetClass)),
				applogger.String("instrument", issue.Instrument),
				applogger.String("problem", issue.Problem))
		}
	}
	return a.close()
}

// Run performs the startup screening pass, then blocks serving HTTP until
// SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	go func() {
		results := a.manager.RunAll(ctx)
		a.log.Info("startup screening pass complete", applogger.Int("classes", len(results)))
	}()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	return a.close()
}

func (a *App) close() error {
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	a.log.Info("shutdown complete")
	return nil
}
