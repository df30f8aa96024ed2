package marketdata

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"AllocDesk/internal/domain/models"
	drepo "AllocDesk/internal/domain/repository"
	"AllocDesk/internal/service/ratelimit"
	"AllocDesk/pkg/cache"
	applogger "AllocDesk/pkg/logger"
)

// Options tune the facade. TTLs follow the source cadence: prices move
// daily, the macro series monthly.
type Options struct {
	PriceTTL    time.Duration
	MacroTTL    time.Duration
	RangeDays   int
	FXPair      string
	FXFallback  float64
	MacroSeries string

	// token bucket per upstream provider
	RateCapacity float64
	RateRefill   float64
}

// Service fronts the price and macro providers with a TTL cache and a
// per-provider rate limiter. It never returns an error to callers: a
// provider fault degrades to an empty series / fallback rate, which the
// rule engine treats as "data unavailable".
type Service struct {
	prices  drepo.PriceProvider
	macro   drepo.MacroProvider
	cache   cache.Service
	limiter *ratelimit.Limiter
	metrics drepo.Metrics
	log     *applogger.Logger
	opts    Options

	mu           sync.Mutex
	lastPriceErr error
	lastMacroErr error
}

// New creates the market data facade.
func New(
	prices drepo.PriceProvider,
	macro drepo.MacroProvider,
	c cache.Service,
	limiter *ratelimit.Limiter,
	metrics drepo.Metrics,
	log *applogger.Logger,
	opts Options,
) *Service {
	if opts.PriceTTL <= 0 {
		opts.PriceTTL = time.Hour
	}
	if opts.MacroTTL <= 0 {
		opts.MacroTTL = 24 * time.Hour
	}
	if opts.RateCapacity <= 0 {
		opts.RateCapacity = 10
	}
	if opts.RateRefill <= 0 {
		opts.RateRefill = 2
	}
	return &Service{
		prices:  prices,
		macro:   macro,
		cache:   c,
		limiter: limiter,
		metrics: metrics,
		log:     log,
		opts:    opts,
	}
}

// History returns the cached or freshly fetched close series for symbol.
// The result is empty (never nil-symboled) when the provider cannot serve.
func (s *Service) History(ctx context.Context, symbol string) models.PriceSeries {
	key := cache.GenerateKey("px", symbol)
	var out models.PriceSeries
	if s.cacheGet(ctx, key, &out) {
		return out
	}

	out = models.PriceSeries{Symbol: symbol}
	if !s.limiter.Allow("yahoo", s.opts.RateCapacity, s.opts.RateRefill) {
		s.log.Warn("price fetch throttled", applogger.String("symbol", symbol))
		s.metrics.RecordError("price_throttled")
		return out
	}

	start := time.Now()
	fetched, err := s.prices.History(ctx, symbol, s.opts.RangeDays)
	s.metrics.RecordLatency("price_history", time.Since(start).Seconds())
	s.setPriceErr(err)
	if err != nil {
		s.log.Warn("price fetch failed", applogger.String("symbol", symbol), applogger.Error(err))
		s.metrics.RecordError("price_fetch")
		return out
	}

	if n := fetched.Len(); n > 0 {
		s.metrics.RecordLastPrice(symbol, fetched.Points[n-1].Price)
	}
	s.cacheSet(ctx, key, fetched, s.opts.PriceTTL)
	return fetched
}

// Table fetches each symbol's history; symbols with no data are absent.
func (s *Service) Table(ctx context.Context, symbols []string) models.PriceTable {
	table := make(models.PriceTable, len(symbols))
	for _, sym := range symbols {
		if _, done := table[sym]; done {
			continue
		}
		if series := s.History(ctx, sym); !series.Empty() {
			table[sym] = series
		}
	}
	return table
}

// ExchangeRate returns the FX rate and its source label. The configured
// fallback constant is used only when the provider yields nothing.
func (s *Service) ExchangeRate(ctx context.Context) (decimal.Decimal, string) {
	key := cache.GenerateKey("fx", s.opts.FXPair)
	var cached float64
	if s.cacheGet(ctx, key, &cached) && cached > 0 {
		return decimal.NewFromFloat(cached), models.RateLive
	}

	if s.limiter.Allow("yahoo", s.opts.RateCapacity, s.opts.RateRefill) {
		start := time.Now()
		rate, err := s.prices.Spot(ctx, s.opts.FXPair)
		s.metrics.RecordLatency("fx_spot", time.Since(start).Seconds())
		if err == nil && rate > 0 {
			s.metrics.RecordLastPrice(s.opts.FXPair, rate)
			s.cacheSet(ctx, key, rate, s.opts.PriceTTL)
			return decimal.NewFromFloat(rate), models.RateLive
		}
		if err != nil {
			s.log.Warn("fx fetch failed", applogger.String("pair", s.opts.FXPair), applogger.Error(err))
			s.metrics.RecordError("fx_fetch")
		}
	}

	return decimal.NewFromFloat(s.opts.FXFallback), models.RateFallback
}

// Macro returns the configured macro indicator, cached for a day.
func (s *Service) Macro(ctx context.Context) models.MacroIndicator {
	key := cache.GenerateKey("macro", s.opts.MacroSeries)
	var out models.MacroIndicator
	if s.cacheGet(ctx, key, &out) {
		return out
	}

	out = models.MacroIndicator{SeriesID: s.opts.MacroSeries}
	if !s.limiter.Allow("fred", s.opts.RateCapacity, s.opts.RateRefill) {
		s.log.Warn("macro fetch throttled", applogger.String("series", s.opts.MacroSeries))
		s.metrics.RecordError("macro_throttled")
		return out
	}

	start := time.Now()
	fetched, err := s.macro.Series(ctx, s.opts.MacroSeries)
	s.metrics.RecordLatency("macro_series", time.Since(start).Seconds())
	s.setMacroErr(err)
	if err != nil {
		s.log.Warn("macro fetch failed", applogger.String("series", s.opts.MacroSeries), applogger.Error(err))
		s.metrics.RecordError("macro_fetch")
		return out
	}

	s.cacheSet(ctx, key, fetched, s.opts.MacroTTL)
	return fetched
}

// Quotes reports the latest close per symbol, in the given order.
func (s *Service) Quotes(ctx context.Context, symbols []string, descriptions map[string]string) []models.Quote {
	quotes := make([]models.Quote, 0, len(symbols))
	for _, sym := range symbols {
		q := models.Quote{Symbol: sym, Description: descriptions[sym]}
		if series := s.History(ctx, sym); !series.Empty() {
			last := series.Points[series.Len()-1]
			q.Price = last.Price
			q.Available = true
			q.AsOf = last.Time
		}
		quotes = append(quotes, q)
	}
	return quotes
}

// Health reports the state of the upstream providers as seen by the most
// recent fetches.
func (s *Service) Health(_ context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]string{"prices": "ok", "macro": "ok"}
	if s.lastPriceErr != nil {
		status["prices"] = s.lastPriceErr.Error()
	}
	if s.lastMacroErr != nil {
		status["macro"] = s.lastMacroErr.Error()
	}
	return status
}

// cacheGet unmarshals a JSON-string cache entry into dest.
func (s *Service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	var raw string
	if err := s.cache.Get(ctx, key, &raw); err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

// cacheSet stores value as a JSON string so both cache layers round-trip it.
func (s *Service) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), ttl); err != nil {
		s.log.Warn("cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}

func (s *Service) setPriceErr(err error) {
	s.mu.Lock()
	s.lastPriceErr = err
	s.mu.Unlock()
}

func (s *Service) setMacroErr(err error) {
	s.mu.Lock()
	s.lastMacroErr = err
	s.mu.Unlock()
}
