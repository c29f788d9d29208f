package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "TradePilot/internal/domain/repository"
	"TradePilot/internal/usecase"
	pkgch "TradePilot/pkg/clickhouse"
	"TradePilot/pkg/config"
	xhttp "TradePilot/pkg/http"
	pkgkafka "TradePilot/pkg/kafka"
	applogger "TradePilot/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg      *config.Config
	logger   *applogger.Logger
	feed     drepo.PriceFeed
	cycle    *usecase.TradeCycle
	tradeLog drepo.TradeLog
	pub      drepo.Publisher
	consumer *pkgkafka.Consumer
	kh       pkgkafka.MessageHandler
	chClient *pkgch.Client

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	feed drepo.PriceFeed,
	cycle *usecase.TradeCycle,
	tradeLog drepo.TradeLog,
	pub drepo.Publisher,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		feed:     feed,
		cycle:    cycle,
		tradeLog: tradeLog,
		pub:      pub,
		consumer: consumer,
		kh:       kh,
		chClient: chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	// Ensure the audit schema exists before anything can trade.
	if a.tradeLog != nil {
		initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
		err := a.tradeLog.Init(initCtx)
		initCancel()
		if err != nil {
			return err
		}
		l.Info("trade log ready", applogger.String("database", a.cfg.ClickHouse.Database))
	}

	// Price feed: connection failures are retried inside Run.
	if err := a.feed.Connect(ctx); err != nil {
		l.Warn("price feed initial connect failed, will retry", applogger.Error(err))
	} else if err := a.feed.Subscribe(ctx); err != nil {
		l.Warn("price feed subscribe failed", applogger.Error(err))
	}
	go func() {
		if err := a.feed.Run(ctx); err != nil && ctx.Err() == nil {
			l.Error("price feed stopped", applogger.Error(err))
		}
	}()
	l.Info("price feed started", applogger.Strings("symbols", a.cfg.PriceFeed.Symbols))

	// Kafka signal inbox consumer.
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			l.Error("kafka consumer start error", applogger.Error(err))
		} else {
			l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
		}
	}

	// Auto-trade loop over active portfolios.
	go a.cycle.Run(ctx)
	if a.cfg.Trading.CycleInterval > 0 {
		l.Info("auto cycle started", applogger.Duration("interval", a.cfg.Trading.CycleInterval))
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	l := a.logger

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			l.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if err := a.feed.Close(); err != nil {
		l.Warn("price feed close error", applogger.Error(err))
	}

	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
