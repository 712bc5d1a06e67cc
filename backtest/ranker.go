// Package backtest implements the Backtest Engine: it replays persisted BUY
// Verdicts against an allocation policy and a historical price series to
// produce a per-trade and portfolio-level report.
package backtest

import (
	"sort"

	"github.com/zurychhh/alpha-machine/models"
)

// RankedVerdict pairs a BUY Verdict with its composite quality score and the
// two inputs that produced it, so downstream allocation and reporting can
// show their work.
type RankedVerdict struct {
	Verdict        *models.Verdict
	Score          float64
	ExpectedReturn float64
	RiskFactor     float64
}

// RankBuyVerdicts scores and sorts the BUY-signal subset of verdicts by
// composite = confidence * expected_return * (1 / risk_factor), descending.
// Non-BUY verdicts are dropped; a verdict with a non-positive entry price or
// zero risk_factor is dropped too, since neither produces a meaningful score.
func RankBuyVerdicts(verdicts []*models.Verdict) []RankedVerdict {
	ranked := make([]RankedVerdict, 0, len(verdicts))

	for _, v := range verdicts {
		if v.SignalType != models.SignalTypeBuy {
			continue
		}
		entry, _ := v.EntryPrice.Float64()
		if entry <= 0 {
			continue
		}
		target, _ := v.TargetPrice.Float64()
		stop, _ := v.StopLoss.Float64()

		expectedReturn := (target - entry) / entry
		riskFactor := (entry - stop) / entry
		if riskFactor == 0 {
			continue
		}

		score := v.Confidence * expectedReturn * (1 / riskFactor)

		ranked = append(ranked, RankedVerdict{
			Verdict:        v,
			Score:          score,
			ExpectedReturn: expectedReturn,
			RiskFactor:     riskFactor,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}
