package providers

import (
	"github.com/zurychhh/alpha-machine/models"
)

// rsiPeriod is Wilder's standard lookback.
const rsiPeriod = 14

// computeRSI applies Wilder's 14-period RSI to an oldest-first close series.
// Fewer than period+1 points returns the neutral midpoint; an average loss of
// zero (straight uptrend) returns the ceiling value.
func computeRSI(closesOldestFirst []float64) float64 {
	if len(closesOldestFirst) < rsiPeriod+1 {
		return 50
	}

	var gainSum, lossSum float64
	for i := 1; i <= rsiPeriod; i++ {
		delta := closesOldestFirst[i] - closesOldestFirst[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum += -delta
		}
	}
	avgGain := gainSum / rsiPeriod
	avgLoss := lossSum / rsiPeriod

	for i := rsiPeriod + 1; i < len(closesOldestFirst); i++ {
		delta := closesOldestFirst[i] - closesOldestFirst[i-1]
		var gain, loss float64
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(rsiPeriod-1) + gain) / rsiPeriod
		avgLoss = (avgLoss*(rsiPeriod-1) + loss) / rsiPeriod
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// priceChangePct computes the percentage change over n days given a
// newest-first bar slice: close[0] against close[n-1]. Returns 0 when there
// are fewer than n bars or the prior close is 0.
func priceChangePct(barsNewestFirst []models.Bar, n int) float64 {
	if len(barsNewestFirst) < n {
		return 0
	}
	priorIdx := n - 1
	if priorIdx > len(barsNewestFirst)-1 {
		priorIdx = len(barsNewestFirst) - 1
	}
	latest, _ := barsNewestFirst[0].Close.Float64()
	prior, _ := barsNewestFirst[priorIdx].Close.Float64()
	if prior == 0 {
		return 0
	}
	return (latest - prior) / prior * 100
}

// volumeTrend compares mean volume of the most recent 5 bars against the
// prior 5, tagging a >20% move in either direction; unknown when fewer than
// 10 bars are available.
func volumeTrend(barsNewestFirst []models.Bar) models.VolumeTrend {
	if len(barsNewestFirst) < 10 {
		return models.VolumeTrendUnknown
	}

	var recent, prior int64
	for i := 0; i < 5; i++ {
		recent += barsNewestFirst[i].Volume
	}
	for i := 5; i < 10; i++ {
		prior += barsNewestFirst[i].Volume
	}
	if prior == 0 {
		return models.VolumeTrendNeutral
	}

	recentMean := float64(recent) / 5
	priorMean := float64(prior) / 5
	change := (recentMean - priorMean) / priorMean

	switch {
	case change > 0.20:
		return models.VolumeTrendIncreasing
	case change < -0.20:
		return models.VolumeTrendDecreasing
	default:
		return models.VolumeTrendNeutral
	}
}

// closesOldestFirst reverses a newest-first bar slice into an oldest-first
// close-price series for indicator math that reads chronologically forward.
func closesOldestFirst(barsNewestFirst []models.Bar) []float64 {
	out := make([]float64, len(barsNewestFirst))
	for i, b := range barsNewestFirst {
		f, _ := b.Close.Float64()
		out[len(out)-1-i] = f
	}
	return out
}
