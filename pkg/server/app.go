package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/usecase"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/postgres"
)

// App encapsulates the application lifecycle: HTTP server, the optional
// stream warmer and archive consumer, and infrastructure teardown.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	httpServer *xhttp.Server

	warmer   *usecase.QuoteWarmer
	consumer *pkgkafka.Consumer
	kh       pkgkafka.MessageHandler
	archiver drepo.Archiver
	pg       *postgres.Client
	ch       *pkgch.Client

	logProducer *pkgkafka.Producer
}

// New creates the application with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	warmer *usecase.QuoteWarmer,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	archiver drepo.Archiver,
	pg *postgres.Client,
	ch *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		handler:  handler,
		warmer:   warmer,
		consumer: consumer,
		kh:       kh,
		archiver: archiver,
		pg:       pg,
		ch:       ch,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.attachLogCollector()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout.Std(), a.cfg.Server.WriteTimeout.Std(), a.cfg.Server.ShutdownTimeout.Std()),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(a.log),
	)

	if a.warmer != nil {
		go func() {
			if err := a.warmer.Start(ctx); err != nil {
				a.log.Error("quote warmer error", applogger.Error(err))
			}
		}()
		a.log.Info("quote warmer started", applogger.Strings("symbols", a.cfg.Stream.Symbols))
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("archive consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("listening",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("env", a.cfg.Environment))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// attachLogCollector ships aggregated logs to Kafka when a log topic is
// configured alongside brokers.
func (a *App) attachLogCollector() {
	if a.cfg.Kafka.LogTopic == "" || len(a.cfg.Kafka.Brokers) == 0 {
		return
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(a.cfg.Kafka.Brokers),
		pkgkafka.WithCompression(a.cfg.Kafka.Compression),
	)
	if err != nil {
		a.log.Warn("log collector disabled", applogger.Error(err))
		return
	}
	a.logProducer = producer
	a.log.AddCollector(&applogger.CollectorConfig{
		FlushInterval: 30 * time.Second,
		MaxEntries:    100,
		Topic:         a.cfg.Kafka.LogTopic,
		Publisher:     producer,
	})
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.warmer != nil {
		if err := a.warmer.Stop(); err != nil {
			a.log.Warn("warmer stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.archiver != nil {
		if err := a.archiver.Close(); err != nil {
			a.log.Warn("archiver close error", applogger.Error(err))
		}
	}
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.log.Warn("postgres close error", applogger.Error(err))
		}
	}

	if a.logProducer != nil {
		a.log.RemoveCollector()
		_ = a.logProducer.Close()
	}

	a.log.Info("shutdown complete")
	return nil
}
