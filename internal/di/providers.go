package di

import (
	"fmt"

	"TradePilot/internal/domain/models"
	"TradePilot/internal/domain/repository"
	domsvc "TradePilot/internal/domain/service"
	"TradePilot/internal/handler/api"
	internalrepo "TradePilot/internal/repository"
	"TradePilot/internal/service/analyzer"
	icache "TradePilot/internal/service/cache"
	"TradePilot/internal/service/pricefeed"
	"TradePilot/internal/services/fusion"
	"TradePilot/internal/usecase"
	pkgch "TradePilot/pkg/clickhouse"
	"TradePilot/pkg/config"
	xhttp "TradePilot/pkg/http"
	pkgkafka "TradePilot/pkg/kafka"
	applogger "TradePilot/pkg/logger"
	"TradePilot/pkg/metrics"
	"TradePilot/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// audit log is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideTradeLog creates the ClickHouse trade audit log. Schema creation
// happens in App.Run, once, before trading starts.
func ProvideTradeLog(chClient *pkgch.Client, cfg *config.Config) repository.TradeLog {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseTradeLog(chClient.DB(), cfg.ClickHouse.Database+".trades")
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the trade/fusion event publisher.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.TradesTopic, cfg.Kafka.FusionsTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer for the signals topic.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.SignalsTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerRetry(3, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideSignalInbox creates the TTL inbox for asynchronously delivered
// signals.
func ProvideSignalInbox(cfg *config.Config) *usecase.SignalInbox {
	return usecase.NewSignalInbox(cfg.Trading.InboxTTL)
}

// ProvideSignalsHandler feeds Kafka signal messages into the inbox.
func ProvideSignalsHandler(inbox *usecase.SignalInbox, m repository.Metrics, cfg *config.Config) pkgkafka.MessageHandler {
	return usecase.NewKafkaSignalsHandler(cfg.Kafka.SignalsTopic, inbox, m)
}

// ProvideSignalSources builds one HTTP source per configured analyzer.
func ProvideSignalSources(cfg *config.Config) []domsvc.SignalSource {
	sources := make([]domsvc.SignalSource, 0, len(cfg.Analyzers))
	for _, a := range cfg.Analyzers {
		sources = append(sources, analyzer.NewHTTPSource(models.Source(a.Source), a.URL, a.Timeout))
	}
	return sources
}

// ProvideSignalGatherer fans analyze calls out to all sources.
func ProvideSignalGatherer(sources []domsvc.SignalSource, inbox *usecase.SignalInbox, cfg *config.Config, l *applogger.Logger) *usecase.SignalGatherer {
	return usecase.NewSignalGatherer(sources, inbox, cfg.Trading.SignalTimeout, l)
}

// ProvideFusionEngine builds the weighted consensus engine, applying any
// configured base weight overrides.
func ProvideFusionEngine(cfg *config.Config) *fusion.Engine {
	overrides := make(map[models.Source]float64, len(cfg.Fusion.BaseWeights))
	for src, w := range cfg.Fusion.BaseWeights {
		overrides[models.Source(src)] = w
	}
	return fusion.NewEngine(overrides)
}

// ProvideFusionCache picks Redis when configured, falling back to the
// in-process TTL cache.
func ProvideFusionCache(cfg *config.Config) icache.BytesCache {
	if cfg.Fusion.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Fusion.Redis.Addr,
			Password: cfg.Fusion.Redis.Password,
			DB:       cfg.Fusion.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideFusionService wraps the engine with caching and publishing.
func ProvideFusionService(engine *fusion.Engine, cache icache.BytesCache, pub repository.Publisher, m repository.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.FusionService {
	return usecase.NewFusionService(engine, cache, cfg.Fusion.CacheTTL, pub, m, l)
}

// ProvideLedger creates the portfolio ledger.
func ProvideLedger(cfg *config.Config) *usecase.Ledger {
	rate := cfg.Trading.CommissionRate
	if rate == 0 {
		rate = 0.001
	}
	return usecase.NewLedger(rate)
}

// ProvideExecutionEngine wires the execution policy from config.
func ProvideExecutionEngine(ledger *usecase.Ledger, tradeLog repository.TradeLog, pub repository.Publisher, m repository.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.ExecutionEngine {
	ec := usecase.DefaultExecutionConfig()
	if cfg.Trading.MinTradeAmount > 0 {
		ec.MinTradeAmount = cfg.Trading.MinTradeAmount
	}
	if cfg.Trading.MinSizeFraction > 0 {
		ec.MinSizeFraction = cfg.Trading.MinSizeFraction
	}
	if cfg.Trading.MaxSizeFraction > 0 {
		ec.MaxSizeFraction = cfg.Trading.MaxSizeFraction
	}
	for risk, base := range cfg.Trading.Sizing {
		if base > 0 {
			ec.Sizing[models.PortfolioRisk(risk)] = base
		}
	}
	return usecase.NewExecutionEngine(ledger, ec, tradeLog, pub, m, l)
}

// ProvidePriceFeed creates the Binance websocket feed.
func ProvidePriceFeed(cfg *config.Config, l *applogger.Logger) repository.PriceFeed {
	return pricefeed.NewBinance(
		cfg.PriceFeed.WebSocketURL,
		cfg.PriceFeed.Symbols,
		cfg.PriceFeed.ReconnectDelay,
		cfg.PriceFeed.PingInterval,
		l,
	)
}

// ProvideTradeCycle creates the gather-fuse-execute orchestrator.
func ProvideTradeCycle(g *usecase.SignalGatherer, f *usecase.FusionService, e *usecase.ExecutionEngine, ledger *usecase.Ledger, feed repository.PriceFeed, cfg *config.Config, l *applogger.Logger) *usecase.TradeCycle {
	return usecase.NewTradeCycle(g, f, e, ledger, feed, cfg.Trading.CycleInterval, l)
}

// ProvideHTTPHandler creates the trading API handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	ledger *usecase.Ledger,
	exec *usecase.ExecutionEngine,
	fuser *usecase.FusionService,
	cycle *usecase.TradeCycle,
	feed repository.PriceFeed,
	tradeLog repository.TradeLog,
) xhttp.Handler {
	return api.NewTradingHandler(l, ledger, exec, fuser, cycle, feed, tradeLog)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	feed repository.PriceFeed,
	cycle *usecase.TradeCycle,
	tradeLog repository.TradeLog,
	pub repository.Publisher,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	h xhttp.Handler,
) *server.App {
	app := server.New(cfg, l, feed, cycle, tradeLog, pub, consumer, kh, chClient)
	app.SetHTTPHandler(h)
	return app
}
