// Package providers adapts external market-data and sentiment vendors into
// the Data Aggregator's provider chains, wrapping each call with retry,
// circuit-breaker, and cache primitives from resilience and cache.
package providers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/models"
)

// MarketProvider is the capability every market-data adapter satisfies.
type MarketProvider interface {
	Name() string
	Quote(ctx context.Context, ticker models.Ticker) (decimal.Decimal, error)
	Historical(ctx context.Context, ticker models.Ticker, days int) ([]models.Bar, error)
}

// MarketChain tries each provider in order until one succeeds. Order is
// fixed at construction time and never reordered at runtime, matching the
// deterministic chain-order guarantee.
type MarketChain struct {
	providers []MarketProvider
}

// NewMarketChain builds a chain from providers in priority order.
func NewMarketChain(providers ...MarketProvider) *MarketChain {
	return &MarketChain{providers: providers}
}

// Providers exposes the chain in order, for callers that need per-provider
// breaker/cache names.
func (c *MarketChain) Providers() []MarketProvider {
	return c.providers
}

// httpTimeout is the per-call client timeout every adapter in this package
// uses; the aggregator layers its own per-operation deadline on top via ctx.
const httpTimeout = 15 * time.Second
