package di

import (
	"context"
	"fmt"
	"time"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/domain/repository"
	"TechScreen/internal/handler/api"
	"TechScreen/internal/report"
	internalrepo "TechScreen/internal/repository"
	"TechScreen/internal/selection"
	icache "TechScreen/internal/service/cache"
	"TechScreen/internal/service/marketdata"
	metricsvc "TechScreen/internal/service/metrics"
	"TechScreen/internal/service/universe"
	"TechScreen/internal/strategy"
	"TechScreen/internal/usecase"
	pkgch "TechScreen/pkg/clickhouse"
	"TechScreen/pkg/config"
	xhttp "TechScreen/pkg/http"
	pkgkafka "TechScreen/pkg/kafka"
	applogger "TechScreen/pkg/logger"
	"TechScreen/pkg/metrics"
	"TechScreen/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRecorder creates the Prometheus metrics recorder.
func ProvideRecorder() *metrics.Recorder {
	return metrics.New()
}

// ProvideMetrics adapts the recorder to the domain Metrics interface.
func ProvideMetrics(rec *metrics.Recorder) repository.Metrics {
	return metricsvc.NewAdapter(rec)
}

// ProvideBarCache selects the shared Redis cache when configured, otherwise
// a per-process TTL cache.
func ProvideBarCache(cfg *config.Config) icache.BarCache {
	if cfg.MarketData.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.MarketData.Redis.Addr,
			Password: cfg.MarketData.Redis.Password,
			DB:       cfg.MarketData.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideBarSource creates the daily bar client.
func ProvideBarSource(cfg *config.Config, barCache icache.BarCache, log *applogger.Logger) repository.BarSource {
	return marketdata.New(marketdata.Config{
		BaseURL:        cfg.MarketData.BaseURL,
		SymbolSuffix:   cfg.MarketData.SymbolSuffix,
		Timeout:        cfg.MarketData.Timeout,
		CacheTTL:       cfg.MarketData.CacheTTL,
		RequestsPerSec: cfg.MarketData.RequestsPerSec,
		Burst:          cfg.MarketData.Burst,
	}, barCache, log)
}

// ProvideUniverseProvider creates the instrument universe provider with the
// configured symbol files.
func ProvideUniverseProvider(cfg *config.Config, log *applogger.Logger) repository.UniverseProvider {
	files := map[models.AssetClass]string{
		models.ClassEquities:    cfg.Screener.Equities.UniverseFile,
		models.ClassBonds:       cfg.Screener.Bonds.UniverseFile,
		models.ClassCommodities: cfg.Screener.Commodities.UniverseFile,
		models.ClassGolds:       cfg.Screener.Golds.UniverseFile,
	}
	return universe.New(files, log)
}

// ProvideClickHouseClient creates the ClickHouse client and applies the
// signal schema. Returns nil when ClickHouse is disabled.
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates the Kafka producer, nil when disabled.
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
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
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

// ProvideCHSignalStore creates the ClickHouse signal store, nil when no
// ClickHouse client exists.
func ProvideCHSignalStore(chClient *pkgch.Client, log *applogger.Logger) *internalrepo.CHSignalStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewCHSignalStore(chClient, log)
}

// ProvideSignalStore exposes the store's write side. The nil checks keep the
// interfaces nil rather than wrapping a nil pointer.
func ProvideSignalStore(store *internalrepo.CHSignalStore) repository.SignalStore {
	if store == nil {
		return nil
	}
	return store
}

// ProvideSignalHistory exposes the store's read side for the HTTP surface.
func ProvideSignalHistory(store *internalrepo.CHSignalStore) repository.SignalHistory {
	if store == nil {
		return nil
	}
	return store
}

// ProvideReportSink fans selections out to the CSV writer and, when Kafka is
// enabled, the signal topic.
func ProvideReportSink(cfg *config.Config, producer *pkgkafka.Producer, log *applogger.Logger) repository.ReportSink {
	sinks := report.Fanout{report.NewCSVWriter(cfg.Report.Dir, log)}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic))
	}
	return sinks
}

// ProvideOrchestrators builds one orchestrator per asset class from the
// configured universes and bounds.
func ProvideOrchestrators(
	cfg *config.Config,
	universes repository.UniverseProvider,
	source repository.BarSource,
	m repository.Metrics,
	log *applogger.Logger,
) ([]*usecase.Orchestrator, error) {
	params := strategy.Params{
		LongDuration:    cfg.Screener.BondProxies.LongDuration,
		MidDuration:     cfg.Screener.BondProxies.MidDuration,
		ShortDuration:   cfg.Screener.BondProxies.ShortDuration,
		InvestmentGrade: cfg.Screener.BondProxies.InvestmentGrade,
		HighYield:       cfg.Screener.BondProxies.HighYield,
	}

	orchs := make([]*usecase.Orchestrator, 0, len(models.AllAssetClasses()))
	for _, class := range models.AllAssetClasses() {
		cc, err := cfg.Class(string(class))
		if err != nil {
			return nil, err
		}
		symbols, err := universes.Universe(class)
		if err != nil {
			return nil, fmt.Errorf("universe for %s: %w", class, err)
		}
		orchs = append(orchs, usecase.NewOrchestrator(usecase.OrchestratorConfig{
			Class:        class,
			Universe:     symbols,
			LookbackDays: cc.LookbackDays,
			Policy:       selection.Policy{MinPositions: cc.MinPositions, MaxPositions: cc.MaxPositions},
			Params:       params,
		}, source, m, log))
	}
	return orchs, nil
}

// ProvideManager wires the manager with optional persistence.
func ProvideManager(
	orchs []*usecase.Orchestrator,
	store repository.SignalStore,
	sink repository.ReportSink,
	log *applogger.Logger,
) *usecase.Manager {
	return usecase.NewManager(orchs, store, sink, log)
}

// ProvideHandler creates the HTTP query handler.
func ProvideHandler(log *applogger.Logger, mgr *usecase.Manager, history repository.SignalHistory) xhttp.Handler {
	return api.NewScreenerEchoHandler(log, mgr, history)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	mgr *usecase.Manager,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	log *applogger.Logger,
) *server.App {
	return server.New(cfg, mgr, handler, chClient, producer, log)
}
