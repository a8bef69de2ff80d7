package di

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/alphavantage"
	"StockPulse/internal/service/auth"
	"StockPulse/internal/service/finnhub"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/postgres"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger. Development gets console
// output, everything else structured JSON.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{Level: "info", Format: "json", Output: "stdout"}
	if cfg.Environment == "development" {
		lc.Level = "debug"
		lc.Format = "console"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates the Prometheus recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideTTLCache builds the TTL tier: layered memory-over-Redis when Redis
// is reachable, memory only otherwise. Cache trouble degrades to misses, so
// a missing Redis never blocks startup.
func ProvideTTLCache(cfg *config.Config, log *applogger.Logger) cache.Service {
	if cfg.Cache.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			log.Warn("redis unavailable, falling back to in-memory cache", applogger.Error(err))
		} else {
			return cache.NewLayeredCache(redisCache,
				cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
				cache.WithLayeredBackfillTTL(cfg.Cache.TTL.Quote.Std()/2))
		}
	}
	return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
}

// ProvidePostgres connects the durable store and runs migrations.
func ProvidePostgres(cfg *config.Config) (*postgres.Client, error) {
	client, err := postgres.NewClient(postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}
	if err := client.AutoMigrate(&models.User{}, &models.WatchlistItem{}, &models.QuoteRecord{}); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// ProvideQuoteStore creates the durable quote cache.
func ProvideQuoteStore(pg *postgres.Client) drepo.QuoteStore {
	return internalrepo.NewPostgresQuoteStore(pg)
}

// ProvideUserStore creates the account store.
func ProvideUserStore(pg *postgres.Client) drepo.UserStore {
	return internalrepo.NewPostgresUserStore(pg)
}

// ProvideWatchlistStore creates the watchlist store.
func ProvideWatchlistStore(pg *postgres.Client) drepo.WatchlistStore {
	return internalrepo.NewPostgresWatchlistStore(pg)
}

// ProvideClickHouseClient connects ClickHouse when the archive pipeline
// needs it; nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Archive.Backend == "none" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout.Std(), cfg.ClickHouse.ReadTimeout.Std(), cfg.ClickHouse.WriteTimeout.Std()),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stmts := append(
		[]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database},
		internalrepo.ArchiveSchema(archiveTable(cfg))...,
	)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

func archiveTable(cfg *config.Config) string {
	return cfg.ClickHouse.Database + ".quote_history"
}

// ProvideArchiver selects the archive path for fetched quotes: direct
// ClickHouse writes, a Kafka topic drained by the consumer, or nothing.
func ProvideArchiver(cfg *config.Config, ch *pkgch.Client) (drepo.Archiver, error) {
	switch cfg.Archive.Backend {
	case "clickhouse":
		return internalrepo.NewClickHouseArchive(ch.DB(), archiveTable(cfg)), nil
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaArchive(producer, cfg.Kafka.Topic), nil
	default:
		return internalrepo.NewNoopArchive(), nil
	}
}

// ProvideKafkaConsumer creates the archive-topic consumer in kafka mode;
// nil otherwise.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Archive.Backend != "kafka" {
		return nil, nil
	}
	return pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerTopic(cfg.Kafka.Topic),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.GroupID),
	)
}

// ProvideQuoteEventsHandler drains the archive topic into ClickHouse.
func ProvideQuoteEventsHandler(cfg *config.Config, ch *pkgch.Client, m drepo.Metrics) *usecase.QuoteEventsHandler {
	if cfg.Archive.Backend != "kafka" {
		return nil
	}
	sink := internalrepo.NewClickHouseArchive(ch.DB(), archiveTable(cfg))
	return usecase.NewQuoteEventsHandler(cfg.Kafka.Topic, sink, m)
}

// ProvideQuoteClient wires the upstream quote client with its cache tiers.
func ProvideQuoteClient(
	cfg *config.Config,
	ttl cache.Service,
	store drepo.QuoteStore,
	archiver drepo.Archiver,
	m drepo.Metrics,
	log *applogger.Logger,
) *alphavantage.Client {
	return alphavantage.NewClient(
		alphavantage.Config{
			APIKey:           cfg.AlphaVantage.APIKey,
			BaseURL:          cfg.AlphaVantage.BaseURL,
			QuoteTTL:         cfg.Cache.TTL.Quote.Std(),
			ChartTTL:         cfg.Cache.TTL.Chart.Std(),
			SearchTTL:        cfg.Cache.TTL.Search.Std(),
			OverviewTTL:      cfg.Cache.TTL.Overview.Std(),
			FreshWindow:      cfg.Cache.FreshWindow.Std(),
			RateCapacity:     cfg.AlphaVantage.RateCapacity,
			RateRefillPerSec: cfg.AlphaVantage.RateRefillPerSec,
		},
		xhttp.NewClient(xhttp.WithTimeout(cfg.AlphaVantage.Timeout.Std())),
		ttl, store, archiver, ratelimit.New(), m, log,
	)
}

// ProvideTokenIssuer creates the access-token signer.
func ProvideTokenIssuer(cfg *config.Config) *auth.TokenIssuer {
	return auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Std())
}

// ProvideUserService creates the account usecase.
func ProvideUserService(store drepo.UserStore, issuer *auth.TokenIssuer) *usecase.UserService {
	return usecase.NewUserService(store, issuer)
}

// ProvideWatchlistService creates the watchlist usecase.
func ProvideWatchlistService(cfg *config.Config, store drepo.WatchlistStore) *usecase.WatchlistService {
	return usecase.NewWatchlistService(store, cfg.Watchlist.MaxSize)
}

// ProvideQuoteWarmer creates the stream-driven cache warmer when the live
// stream is enabled; nil otherwise.
func ProvideQuoteWarmer(cfg *config.Config, ttl cache.Service, m drepo.Metrics, log *applogger.Logger) *usecase.QuoteWarmer {
	if !cfg.Stream.Enabled {
		return nil
	}
	stream := finnhub.New(
		cfg.Stream.APIKey,
		cfg.Stream.WebSocketURL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay.Std(),
		cfg.Stream.PingInterval.Std(),
	)
	return usecase.NewQuoteWarmer(stream, ttl, cfg.Cache.TTL.Quote.Std(), m, log)
}

// ProvideHandlers groups every route handler behind one registration point.
func ProvideHandlers(
	cfg *config.Config,
	log *applogger.Logger,
	quotes *alphavantage.Client,
	users *usecase.UserService,
	watchlist *usecase.WatchlistService,
	issuer *auth.TokenIssuer,
	store drepo.QuoteStore,
	ttl cache.Service,
	warmer *usecase.QuoteWarmer,
) xhttp.Handler {
	return xhttp.Handlers{
		api.NewMarketHandler(log, quotes, cfg.AlphaVantage.OverviewSymbols),
		api.NewAuthHandler(log, users, issuer.Verify),
		api.NewWatchlistHandler(log, watchlist, issuer.Verify),
		api.NewHealthHandler(store, ttl, warmer, cfg.Environment),
	}
}

// ProvideApp assembles the application lifecycle.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	warmer *usecase.QuoteWarmer,
	consumer *pkgkafka.Consumer,
	kh *usecase.QuoteEventsHandler,
	archiver drepo.Archiver,
	pg *postgres.Client,
	ch *pkgch.Client,
) *server.App {
	// A nil *QuoteEventsHandler must stay a nil interface.
	var mh pkgkafka.MessageHandler
	if kh != nil {
		mh = kh
	}
	return server.New(cfg, log, handler, warmer, consumer, mh, archiver, pg, ch)
}
