package di

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"AllocDesk/internal/domain/repository"
	"AllocDesk/internal/handler/api"
	"AllocDesk/internal/handler/web"
	internalrepo "AllocDesk/internal/repository"
	"AllocDesk/internal/service/fred"
	"AllocDesk/internal/service/marketdata"
	"AllocDesk/internal/service/ratelimit"
	"AllocDesk/internal/service/yahoo"
	"AllocDesk/internal/services/rules"
	"AllocDesk/internal/usecase"
	"AllocDesk/pkg/cache"
	pkgch "AllocDesk/pkg/clickhouse"
	"AllocDesk/pkg/config"
	xhttp "AllocDesk/pkg/http"
	pkgkafka "AllocDesk/pkg/kafka"
	applogger "AllocDesk/pkg/logger"
	"AllocDesk/pkg/metrics"
	"AllocDesk/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRateLimiter creates the shared token-bucket limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideCache builds the cache: memory only, or layered over Redis when
// Redis is enabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize)), nil
}

// ProvidePriceProvider creates the Yahoo chart client.
func ProvidePriceProvider(cfg *config.Config) repository.PriceProvider {
	return yahoo.New(cfg.Sources.YahooBaseURL, cfg.Sources.Timeout)
}

// ProvideMacroProvider creates the FRED client.
func ProvideMacroProvider(cfg *config.Config) repository.MacroProvider {
	return fred.New(cfg.Sources.FredBaseURL, cfg.Sources.Timeout, 12)
}

// ProvideMarketData assembles the cached, rate-limited data facade.
func ProvideMarketData(
	prices repository.PriceProvider,
	macro repository.MacroProvider,
	c cache.Service,
	limiter *ratelimit.Limiter,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *marketdata.Service {
	return marketdata.New(prices, macro, c, limiter, m, log, marketdata.Options{
		PriceTTL:     cfg.Sources.PriceTTL,
		MacroTTL:     cfg.Sources.MacroTTL,
		RangeDays:    cfg.Sources.RangeDays,
		FXPair:       cfg.Sources.FXPair,
		FXFallback:   cfg.Sources.FXFallback,
		MacroSeries:  cfg.Sources.MacroSeries,
		RateCapacity: cfg.Sources.RateCapacity,
		RateRefill:   cfg.Sources.RateRefill,
	})
}

// ProvidePlannerConfig maps the portfolio section onto the rule configs.
func ProvidePlannerConfig(cfg *config.Config) usecase.PlannerConfig {
	legs := make([]rules.MomentumLeg, 0, len(cfg.Portfolio.Momentum))
	for _, m := range cfg.Portfolio.Momentum {
		legs = append(legs, rules.MomentumLeg{Lookback: m.Lookback, Weight: m.Weight})
	}
	if len(legs) == 0 {
		legs = rules.DefaultMomentumLegs()
	}

	dd := rules.DefaultDrawdownConfig()
	if len(cfg.Portfolio.Drawdown.Thresholds) > 0 {
		dd.Thresholds = cfg.Portfolio.Drawdown.Thresholds
		dd.Conversions = cfg.Portfolio.Drawdown.Conversions
	}
	if cfg.Portfolio.Drawdown.MAWindow > 0 {
		dd.MAWindow = cfg.Portfolio.Drawdown.MAWindow
	}
	if cfg.Portfolio.Drawdown.ProfitMaxRatio > 0 {
		dd.ProfitMaxRatio = cfg.Portfolio.Drawdown.ProfitMaxRatio
	}

	return usecase.PlannerConfig{
		VAA: rules.VAAConfig{
			Attack:  cfg.Portfolio.VAA.Attack,
			Defense: cfg.Portfolio.VAA.Defense,
			Legs:    legs,
		},
		LAA: rules.LAAConfig{
			Fixed:     cfg.Portfolio.LAA.Fixed,
			Defensive: cfg.Portfolio.LAA.Defensive,
			Growth:    cfg.Portfolio.LAA.Growth,
			Reference: cfg.Portfolio.LAA.Reference,
			MAWindow:  cfg.Portfolio.LAA.MAWindow,
		},
		DM: rules.DMConfig{
			Domestic:      cfg.Portfolio.DM.Domestic,
			International: cfg.Portfolio.DM.International,
			Cash:          cfg.Portfolio.DM.Cash,
			Fallback:      cfg.Portfolio.DM.Fallback,
			Lookback:      cfg.Portfolio.DM.Lookback,
		},
		Drawdown:     dd,
		Reference:    cfg.Portfolio.Drawdown.Reference,
		DefaultTotal: decimal.NewFromInt(cfg.Portfolio.TotalAssets),
	}
}

// ProvidePlanner creates the planner usecase.
func ProvidePlanner(market *marketdata.Service, pc usecase.PlannerConfig, log *applogger.Logger) *usecase.Planner {
	return usecase.NewPlanner(market, pc, log)
}

// ProvideHistoryStore creates the authoritative CSV log.
func ProvideHistoryStore(cfg *config.Config) (repository.HistoryStore, error) {
	return internalrepo.NewCSVHistory(cfg.History.CSVPath)
}

// ProvideClickHouseClient creates the ClickHouse pool when the mirror is
// enabled; nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	ch := cfg.History.ClickHouse
	if !ch.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", ch.Database),
		fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (ts DateTime, vaa_pick String, laa_regime String, laa_dynamic String, dm_pick String, drawdown_pct String) ENGINE=MergeTree ORDER BY ts",
			ch.Table,
		),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideHistoryMirror wraps the ClickHouse pool as a history mirror.
func ProvideHistoryMirror(client *pkgch.Client, cfg *config.Config) repository.HistoryMirror {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHouseHistory(client.DB(), cfg.History.ClickHouse.Table)
}

// ProvideKafkaProducer creates the producer when publishing is enabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	k := cfg.History.Kafka
	if !k.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithTimeouts(k.WriteTimeout, k.ReadTimeout),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideDecisionPublisher wraps the producer as a decision publisher. The
// publisher also serves as the sink for aggregated error logs, so the log
// collector is attached here.
func ProvideDecisionPublisher(producer *pkgkafka.Producer, cfg *config.Config, log *applogger.Logger) repository.DecisionPublisher {
	if producer == nil {
		return nil
	}
	pub := internalrepo.NewKafkaDecisionPublisher(producer, cfg.History.Kafka.Topic)
	log.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          cfg.History.Kafka.Topic + ".errors",
		Publisher:      pub,
	})
	return pub
}

// ProvideHistory creates the history usecase over its sinks.
func ProvideHistory(
	store repository.HistoryStore,
	mirror repository.HistoryMirror,
	pub repository.DecisionPublisher,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.History {
	return usecase.NewHistory(store, mirror, pub, m, log)
}

// ProvideAPIHandler creates the JSON API handler.
func ProvideAPIHandler(
	log *applogger.Logger,
	planner *usecase.Planner,
	history *usecase.History,
	market *marketdata.Service,
	cfg *config.Config,
) *api.DashboardHandler {
	return api.NewDashboardHandler(log, planner, history, market, cfg.Portfolio.Descriptions)
}

// ProvideWebHandler creates the HTML dashboard handler.
func ProvideWebHandler(
	log *applogger.Logger,
	planner *usecase.Planner,
	history *usecase.History,
	market *marketdata.Service,
	cfg *config.Config,
) (*web.DashboardHandler, error) {
	return web.NewDashboardHandler(log, planner, history, market, cfg.Portfolio.Descriptions)
}

// ProvideHandler combines the API and web handlers.
func ProvideHandler(apiHandler *api.DashboardHandler, webHandler *web.DashboardHandler) xhttp.Handler {
	return xhttp.Handlers{apiHandler, webHandler}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	handler xhttp.Handler,
	history *usecase.History,
	chClient *pkgch.Client,
	log *applogger.Logger,
) *server.App {
	return server.New(cfg, handler, history, chClient, log)
}
