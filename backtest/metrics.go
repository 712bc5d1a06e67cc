package backtest

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/models"
)

const tradingDaysPerYear = 252

// Aggregate fills report's metrics (win_rate, sharpe, max_drawdown,
// per-agent attribution, equity curve) from its already-populated Trades and
// StartingCapital. Trades must already be in allocation-time (rank) order;
// report.Trades keeps that order, while the equity curve is built in
// exit-date order.
func Aggregate(report *models.BacktestReport) {
	trades := report.Trades
	if len(trades) == 0 {
		report.EndingCapital = report.StartingCapital
		return
	}

	var totalPnL decimal.Decimal
	var wins int
	for _, t := range trades {
		totalPnL = totalPnL.Add(t.PnL)
		if t.Result == models.ResultWin {
			wins++
		}
	}

	report.EndingCapital = report.StartingCapital.Add(totalPnL)
	if !report.StartingCapital.IsZero() {
		report.ReturnPct = totalPnL.Div(report.StartingCapital)
	}
	report.WinRate = float64(wins) / float64(len(trades))

	equityCurve := buildEquityCurve(report.StartingCapital, trades)
	report.EquityCurve = equityCurve
	report.Sharpe = sharpeRatio(equityCurve)
	report.MaxDrawdown = maxDrawdown(equityCurve)
	report.PerAgentAttribution = perAgentAttribution(trades)
}

// buildEquityCurve walks trades in exit-date order, adding realized PnL to
// starting capital, one point per exit day (trades exiting on the same day
// share one point).
func buildEquityCurve(startingCapital decimal.Decimal, trades []models.BacktestTrade) []models.EquityPoint {
	ordered := make([]models.BacktestTrade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitDate.Before(ordered[j].ExitDate)
	})

	curve := make([]models.EquityPoint, 0, len(ordered))
	running := startingCapital
	for _, t := range ordered {
		running = running.Add(t.PnL)
		if n := len(curve); n > 0 && curve[n-1].Date.Equal(t.ExitDate) {
			curve[n-1].Value = running
			continue
		}
		curve = append(curve, models.EquityPoint{Date: t.ExitDate, Value: running})
	}
	return curve
}

// sharpeRatio computes mean(daily_returns)/stddev(daily_returns)*sqrt(252)
// over the equity curve's point-to-point returns, 0 when stddev is 0 or
// there are fewer than two points.
func sharpeRatio(curve []models.EquityPoint) float64 {
	if len(curve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	prev, _ := curve[0].Value.Float64()
	for _, p := range curve[1:] {
		v, _ := p.Value.Float64()
		if prev != 0 {
			returns = append(returns, (v-prev)/prev)
		}
		prev = v
	}
	if len(returns) == 0 {
		return 0
	}

	mean := meanOf(returns)
	sd := stddevOf(returns, mean)
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(tradingDaysPerYear)
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddevOf(xs []float64, mean float64) float64 {
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// maxDrawdown returns the largest peak-to-trough decline, as a fraction of
// the running peak, observed along the equity curve.
func maxDrawdown(curve []models.EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}

	peak, _ := curve[0].Value.Float64()
	var worst float64
	for _, p := range curve {
		v, _ := p.Value.Float64()
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		drawdown := (peak - v) / peak
		if drawdown > worst {
			worst = drawdown
		}
	}
	return worst
}

// perAgentAttribution reports, for every agent name appearing as a
// non-failed contributor on any trade's source Verdict, that agent's win
// rate and average pnl across the trades it backed.
func perAgentAttribution(trades []models.BacktestTrade) map[string]models.AgentAttribution {
	type accum struct {
		wins, total int
		pnlSum      decimal.Decimal
	}
	byAgent := make(map[string]*accum)

	for _, t := range trades {
		for _, agent := range t.ContributingAgents {
			a, ok := byAgent[agent]
			if !ok {
				a = &accum{}
				byAgent[agent] = a
			}
			a.total++
			a.pnlSum = a.pnlSum.Add(t.PnL)
			if t.Result == models.ResultWin {
				a.wins++
			}
		}
	}

	out := make(map[string]models.AgentAttribution, len(byAgent))
	for name, a := range byAgent {
		out[name] = models.AgentAttribution{
			WinRate: float64(a.wins) / float64(a.total),
			AvgPnL:  a.pnlSum.Div(decimal.NewFromInt(int64(a.total))),
		}
	}
	return out
}
