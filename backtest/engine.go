package backtest

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/models"
	"github.com/zurychhh/alpha-machine/observability"
)

// Engine ties ranking, allocation, simulation, and aggregation together into
// the Backtest Engine's run_backtest and compare_backtest_modes operations.
type Engine struct {
	source         PriceSource
	holdPeriodDays int
}

// NewEngine builds an Engine that reads historical prices from source.
// holdPeriodDays of 0 falls back to the 30-day default.
func NewEngine(source PriceSource, holdPeriodDays int) *Engine {
	if holdPeriodDays <= 0 {
		holdPeriodDays = defaultHoldPeriodDays
	}
	return &Engine{source: source, holdPeriodDays: holdPeriodDays}
}

// RunBacktest replays verdicts (already selected by the caller for the date
// range and BUY-only filter) through ranking, allocation under mode, and
// per-trade simulation, returning one aggregated report. Selection is the
// caller's responsibility since it is a persistence-layer query, not
// something the Backtest Engine itself can perform.
func (e *Engine) RunBacktest(ctx context.Context, verdicts []*models.Verdict, period models.BacktestPeriod, mode models.AllocationMode, startingCapital decimal.Decimal) (*models.BacktestReport, error) {
	if len(verdicts) == 0 {
		return nil, errEmptySelection()
	}

	report := models.NewBacktestReport(mode, period, startingCapital)
	runLog := observability.WithRunID(report.ID.String())

	ranked := RankBuyVerdicts(verdicts)
	allocations := Allocate(ranked, startingCapital, mode)

	trades := make([]models.BacktestTrade, 0, len(allocations))
	for _, alloc := range allocations {
		trade, err := SimulateTrade(ctx, e.source, alloc, e.holdPeriodDays)
		if err != nil {
			runLog.Warn("trade simulation failed, skipping allocation", "rank", alloc.Rank, "ticker", alloc.Verdict.Ticker.String(), "error", err)
			report.Warnings = append(report.Warnings, fmt.Sprintf("rank %d (%s): %v", alloc.Rank, alloc.Verdict.Ticker, err))
			continue
		}
		trades = append(trades, *trade)
	}

	report.Trades = trades
	Aggregate(report)
	runLog.Info("backtest run complete", "mode", mode, "trades", len(trades))
	return report, nil
}

// CompareModes runs RunBacktest independently for each of the three
// allocation modes over the same verdicts, per the compare_backtest_modes
// operation.
func (e *Engine) CompareModes(ctx context.Context, verdicts []*models.Verdict, period models.BacktestPeriod, startingCapital decimal.Decimal) (map[models.AllocationMode]*models.BacktestReport, error) {
	modes := []models.AllocationMode{models.AllocationCoreFocus, models.AllocationBalanced, models.AllocationDiversified}

	reports := make(map[models.AllocationMode]*models.BacktestReport, len(modes))
	for _, mode := range modes {
		report, err := e.RunBacktest(ctx, verdicts, period, mode, startingCapital)
		if err != nil {
			return nil, err
		}
		reports[mode] = report
	}
	return reports, nil
}
