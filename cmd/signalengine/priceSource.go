package main

import (
	"context"
	"sort"
	"time"

	"github.com/zurychhh/alpha-machine/backtest"
	"github.com/zurychhh/alpha-machine/models"
	"github.com/zurychhh/alpha-machine/observability"
	"github.com/zurychhh/alpha-machine/providers"
)

// backtestEngine pairs the Backtest Engine's domain logic with the
// chain-backed PriceSource it reads bars from, so buildEngine has one thing
// to hand off per operation.
type backtestEngine struct {
	engine *backtest.Engine
	source backtest.PriceSource
}

func newBacktestEngine(chain *providers.MarketChain, holdPeriodDays int) *backtestEngine {
	source := &chainPriceSource{chain: chain}
	return &backtestEngine{engine: backtest.NewEngine(source, holdPeriodDays), source: source}
}

// chainPriceSource adapts providers.MarketChain's "most recent N days from
// now" Historical call into the arbitrary from/to window backtest.PriceSource
// needs: a simulated trade's hold-period window starts at its own entry
// date, not at the current moment, so Historical's output is filtered down
// to [from,to] rather than trusted as already scoped to the request.
type chainPriceSource struct {
	chain *providers.MarketChain
}

func (c *chainPriceSource) Bars(ctx context.Context, ticker models.Ticker, from, to time.Time) ([]models.Bar, error) {
	days := int(time.Since(from).Hours()/24) + 1

	var bars []models.Bar
	var lastErr error
	for _, provider := range c.chain.Providers() {
		result, err := provider.Historical(ctx, ticker, days)
		if err != nil {
			lastErr = err
			observability.Warn("backtest historical provider failed", "provider", provider.Name(), "ticker", ticker.String(), "error", err)
			continue
		}
		if len(result) == 0 {
			continue
		}
		bars = result
		break
	}

	if bars == nil {
		return nil, lastErr
	}

	filtered := make([]models.Bar, 0, len(bars))
	for _, bar := range bars {
		if bar.Date.Before(from) || bar.Date.After(to) {
			continue
		}
		filtered = append(filtered, bar)
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Date.Before(filtered[j].Date) })
	return filtered, nil
}
