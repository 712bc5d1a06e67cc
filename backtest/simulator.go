package backtest

import (
	"context"
	"time"

	"github.com/zurychhh/alpha-machine/models"
)

// PriceSource supplies the historical OHLCV series a simulated trade walks
// day by day. Unlike providers.MarketProvider's "last N days from now"
// contract, a backtest needs an arbitrary, possibly far-past window, so this
// is its own narrower capability rather than a reuse of the live chain.
type PriceSource interface {
	Bars(ctx context.Context, ticker models.Ticker, from, to time.Time) ([]models.Bar, error)
}

const defaultHoldPeriodDays = 30

// SimulateTrade replays alloc from its Verdict's creation date forward for up
// to holdPeriodDays, exiting at the first of target hit, stop hit, or hold
// period elapsed. A day whose high clears the target and whose low breaches
// the stop exits STOP_LOSS, the conservative reading of an ambiguous bar.
//
// A missing or empty price series is reported to the caller rather than
// panicking, so the engine can drop the trade and record a warning.
func SimulateTrade(ctx context.Context, source PriceSource, alloc Allocation, holdPeriodDays int) (*models.BacktestTrade, error) {
	if holdPeriodDays <= 0 {
		holdPeriodDays = defaultHoldPeriodDays
	}

	v := alloc.Verdict
	entryDate := v.CreatedAt.UTC().Truncate(24 * time.Hour)
	windowEnd := entryDate.AddDate(0, 0, holdPeriodDays+1)

	bars, err := source.Bars(ctx, v.Ticker, entryDate, windowEnd)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, errNoHistoricalData(v.Ticker)
	}

	trade := &models.BacktestTrade{
		VerdictID:          v.ID,
		Ticker:             v.Ticker,
		EntryDate:          entryDate,
		EntryPrice:         v.EntryPrice,
		Shares:             alloc.Shares,
		PositionType:       alloc.PositionType,
		AllocationPct:      alloc.AllocationPct,
		ContributingAgents: contributingAgents(v),
	}

	target := v.TargetPrice
	stop := v.StopLoss

	limit := holdPeriodDays
	if limit > len(bars) {
		limit = len(bars)
	}

	for i := 0; i < limit; i++ {
		bar := bars[i]

		hitTarget := !target.IsZero() && bar.High.GreaterThanOrEqual(target)
		hitStop := !stop.IsZero() && bar.Low.LessThanOrEqual(stop)

		switch {
		case hitTarget && hitStop:
			trade.ExitDate = bar.Date
			trade.ExitPrice = stop
			trade.ExitReason = models.ExitStopLoss
		case hitStop:
			trade.ExitDate = bar.Date
			trade.ExitPrice = stop
			trade.ExitReason = models.ExitStopLoss
		case hitTarget:
			trade.ExitDate = bar.Date
			trade.ExitPrice = target
			trade.ExitReason = models.ExitTakeProfit
		default:
			if i == limit-1 {
				trade.ExitDate = bar.Date
				trade.ExitPrice = bar.Close
				trade.ExitReason = models.ExitHoldPeriodEnd
			}
			continue
		}
		break
	}

	trade.ComputePnL()
	return trade, nil
}

func contributingAgents(v *models.Verdict) []string {
	names := make([]string, 0, len(v.AgentVerdicts))
	for _, av := range v.AgentVerdicts {
		if !av.Failed {
			names = append(names, av.AgentName)
		}
	}
	return names
}
