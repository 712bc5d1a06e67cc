package providers

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/cache"
	"github.com/zurychhh/alpha-machine/errs"
	"github.com/zurychhh/alpha-machine/models"
	"github.com/zurychhh/alpha-machine/observability"
	"github.com/zurychhh/alpha-machine/resilience"
)

// breakerNames assigns each market-chain position a fixed breaker name, in
// chain order; a chain longer than four providers reuses the last name,
// which in practice never happens since the wired chain is exactly four
// deep (Polygon, Finnhub, Alpha Vantage, FMP).
var breakerNames = []string{
	resilience.BreakerMarketPrimary,
	resilience.BreakerMarketSecondary,
	resilience.BreakerMarketTertiary,
	resilience.BreakerMarketQuaternary,
}

func breakerNameFor(index int) string {
	if index < len(breakerNames) {
		return breakerNames[index]
	}
	return breakerNames[len(breakerNames)-1]
}

// AggregatorConfig carries the Aggregator's cache TTLs and time budgets,
// mirroring config.CacheConfig/config.AggregatorConfig without importing
// the config package directly.
type AggregatorConfig struct {
	QuoteTTL                time.Duration
	HistoricalTTL           time.Duration
	IndicatorsTTL           time.Duration
	OperationTimeout        time.Duration
	HistoricalLookbackDays  int
}

// Aggregator implements the Data Aggregator: a bounded-time, cached,
// breaker-protected view over the market and sentiment provider chains.
type Aggregator struct {
	chain  *MarketChain
	news   NewsProvider
	social SocialProvider
	cfg    AggregatorConfig

	quoteCache      *cache.Store[decimal.Decimal]
	historicalCache *cache.Store[[]models.Bar]
	indicatorsCache *cache.Store[indicatorsResult]
}

type indicatorsResult struct {
	values map[string]float64
	trend  models.VolumeTrend
}

// NewAggregator wires a market chain plus the two sentiment sources into an
// Aggregator. news or social may be nil when unconfigured; the corresponding
// SentimentSnapshot source is then reported unavailable.
func NewAggregator(chain *MarketChain, news NewsProvider, social SocialProvider, cfg AggregatorConfig) *Aggregator {
	return &Aggregator{
		chain:           chain,
		news:            news,
		social:          social,
		cfg:             cfg,
		quoteCache:      cache.NewStore[decimal.Decimal](),
		historicalCache: cache.NewStore[[]models.Bar](),
		indicatorsCache: cache.NewStore[indicatorsResult](),
	}
}

// SnapshotTicker validates raw as a ticker before calling Snapshot, surfacing
// a BadInput error before any network call per the Aggregator's contract.
func (a *Aggregator) SnapshotTicker(ctx context.Context, raw string) (models.MarketSnapshot, models.SentimentSnapshot, error) {
	ticker, err := validateTicker(raw)
	if err != nil {
		return models.MarketSnapshot{}, models.SentimentSnapshot{}, err
	}
	snapshot, sentiment := a.Snapshot(ctx, ticker)
	return snapshot, sentiment, nil
}

// Snapshot runs the four top-level operations — current price, historical,
// indicators, sentiment — concurrently, returning a MarketSnapshot and
// SentimentSnapshot as soon as all four finish. Each operation degrades
// independently: a failed operation leaves its field at zero value rather
// than failing the whole snapshot.
func (a *Aggregator) Snapshot(ctx context.Context, ticker models.Ticker) (models.MarketSnapshot, models.SentimentSnapshot) {
	now := time.Now().UTC()
	snapshot := models.MarketSnapshot{Ticker: ticker, AsOf: now}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		price, source, ok := a.quote(ctx, ticker)
		snapshot.CurrentPrice = price
		snapshot.HasPrice = ok
		if ok {
			snapshot.SourceUsed = source
		}
	}()

	go func() {
		defer wg.Done()
		bars, _, _ := a.historical(ctx, ticker)
		snapshot.Historical = bars
	}()

	go func() {
		defer wg.Done()
		result, _, ok := a.indicators(ctx, ticker)
		if ok {
			snapshot.Indicators = result.values
			snapshot.VolumeTrend = result.trend
		} else {
			snapshot.VolumeTrend = models.VolumeTrendUnknown
		}
	}()

	var sentiment models.SentimentSnapshot
	go func() {
		defer wg.Done()
		sentiment = a.sentiment(ctx, ticker, now)
	}()

	wg.Wait()
	return snapshot, sentiment
}

func (a *Aggregator) operationCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.OperationTimeout)
}

// quote tries the market chain in order for the current price, caching the
// first success and falling back to a stale cache entry if every provider
// in the chain fails.
func (a *Aggregator) quote(ctx context.Context, ticker models.Ticker) (decimal.Decimal, string, bool) {
	opCtx, cancel := a.operationCtx(ctx)
	defer cancel()

	for i, provider := range a.chain.Providers() {
		key := cache.Key(ticker.String(), "quote", provider.Name())
		if cached, ok := a.quoteCache.Get(key); ok {
			return cached, provider.Name(), true
		}

		breakerName := breakerNameFor(i)
		price, err := resilience.WithBreaker(opCtx, breakerName, func() (decimal.Decimal, error) {
			return provider.Quote(opCtx, ticker)
		})
		if err != nil {
			observability.WithProvider(provider.Name()).Warn("quote provider failed", "ticker", ticker.String(), "error", err)
			continue
		}

		a.quoteCache.Set(key, price, a.cfg.QuoteTTL)
		return price, provider.Name(), true
	}

	for _, provider := range a.chain.Providers() {
		key := cache.Key(ticker.String(), "quote", provider.Name())
		if cached, found, _ := a.quoteCache.GetStale(key); found {
			observability.Debug("serving stale quote, every provider in chain failed", "ticker", ticker.String(), "source", provider.Name())
			return cached, provider.Name(), true
		}
	}

	return decimal.Decimal{}, "", false
}

func (a *Aggregator) historical(ctx context.Context, ticker models.Ticker) ([]models.Bar, string, bool) {
	opCtx, cancel := a.operationCtx(ctx)
	defer cancel()

	days := a.cfg.HistoricalLookbackDays

	for i, provider := range a.chain.Providers() {
		key := cache.Key(ticker.String(), "historical", provider.Name())
		if cached, ok := a.historicalCache.Get(key); ok {
			return cached, provider.Name(), true
		}

		breakerName := breakerNameFor(i)
		bars, err := resilience.WithBreaker(opCtx, breakerName, func() ([]models.Bar, error) {
			return provider.Historical(opCtx, ticker, days)
		})
		if err != nil || len(bars) == 0 {
			if err != nil {
				observability.WithTicker(ticker.String()).Warn("historical provider failed", "provider", provider.Name(), "error", err)
			}
			continue
		}

		a.historicalCache.Set(key, bars, a.cfg.HistoricalTTL)
		return bars, provider.Name(), true
	}

	for _, provider := range a.chain.Providers() {
		key := cache.Key(ticker.String(), "historical", provider.Name())
		if cached, found, _ := a.historicalCache.GetStale(key); found {
			return cached, provider.Name(), true
		}
	}

	return nil, "", false
}

// indicators derives RSI, 7-day and 30-day momentum, and the volume trend
// tag from the same historical series, since no provider in this chain
// returns indicators natively.
func (a *Aggregator) indicators(ctx context.Context, ticker models.Ticker) (indicatorsResult, string, bool) {
	key := cache.Key(ticker.String(), "indicators", "computed")
	if cached, ok := a.indicatorsCache.Get(key); ok {
		return cached, "computed", true
	}

	bars, source, ok := a.historical(ctx, ticker)
	if !ok || len(bars) == 0 {
		if cached, found, _ := a.indicatorsCache.GetStale(key); found {
			return cached, "computed", true
		}
		return indicatorsResult{}, "", false
	}

	result := indicatorsResult{
		values: map[string]float64{
			"rsi":             computeRSI(closesOldestFirst(bars)),
			"price_change_7d": priceChangePct(bars, 7),
			"momentum_30d":    priceChangePct(bars, 30),
		},
		trend: volumeTrend(bars),
	}

	a.indicatorsCache.Set(key, result, a.cfg.IndicatorsTTL)
	return result, source, true
}

// sentiment queries both sources in parallel; either being unconfigured or
// failing leaves it unavailable per models.Combine's fallback rule.
func (a *Aggregator) sentiment(ctx context.Context, ticker models.Ticker, now time.Time) models.SentimentSnapshot {
	opCtx, cancel := a.operationCtx(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var news models.NewsAvailability
	var social models.RedditAvailability

	if a.news != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := resilience.WithBreaker(opCtx, resilience.BreakerSentimentNews, func() (models.NewsAvailability, error) {
				return a.news.Sentiment(opCtx, ticker)
			})
			if err != nil {
				observability.WithError(err).Warn("news sentiment failed", "ticker", ticker.String())
				return
			}
			news = result
		}()
	}

	if a.social != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := resilience.WithBreaker(opCtx, resilience.BreakerSentimentSocial, func() (models.RedditAvailability, error) {
				return a.social.Sentiment(opCtx, ticker)
			})
			if err != nil {
				observability.WithError(err).Warn("social sentiment failed", "ticker", ticker.String())
				return
			}
			social = result
		}()
	}

	wg.Wait()
	return models.NewSentimentSnapshot(ticker, now, social, news)
}

// validateTicker rejects malformed tickers before any network call, per the
// Aggregator's BadInput-before-I/O contract.
func validateTicker(raw string) (models.Ticker, error) {
	ticker, err := models.NewTicker(raw)
	if err != nil {
		return ticker, errs.New(errs.BadInput, "aggregator.validate_ticker", err)
	}
	return ticker, nil
}
