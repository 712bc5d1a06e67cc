package agents

import (
	"context"
	"fmt"

	"github.com/zurychhh/alpha-machine/models"
)

const predictorAgentName = "predictor"

const (
	predictorRSIWeight       = 0.30
	predictorMomentumWeight  = 0.20
	predictorVolumeWeight    = 0.10
	predictorSentimentWeight = 0.40
)

// PredictorAgent is the deterministic, rule-based panel member: a weighted
// blend of RSI mean-reversion, short-horizon momentum, volume trend and
// sentiment. It never depends on an external vendor and always succeeds
// given non-empty inputs, serving as the panel's always-available baseline.
type PredictorAgent struct {
	weight     float64
	thresholds Thresholds
}

// NewPredictorAgent builds a PredictorAgent. weight defaults to 1.0 when 0.
func NewPredictorAgent(weight float64, thresholds Thresholds) *PredictorAgent {
	if weight == 0 {
		weight = 1.0
	}
	return &PredictorAgent{weight: weight, thresholds: thresholds}
}

func (a *PredictorAgent) Name() string   { return predictorAgentName }
func (a *PredictorAgent) Weight() float64 { return a.weight }

func (a *PredictorAgent) Analyze(ctx context.Context, ticker models.Ticker, market models.MarketSnapshot, sentiment models.SentimentSnapshot) models.AgentVerdict {
	rsi := rsiOrNeutral(market)
	momentum7d := market.Indicators["price_change_7d"] // absent historical -> zero, per edge-case policy
	combinedSentiment := sentimentOrZero(sentiment)

	rawScore := predictorRSIWeight*rsiScore(rsi) +
		predictorMomentumWeight*clamp(momentum7d/10, -1, 1) +
		predictorVolumeWeight*volumeScore(market.VolumeTrend) +
		predictorSentimentWeight*combinedSentiment

	return models.AgentVerdict{
		AgentName:  a.Name(),
		Signal:     models.LevelFromScore(rawScore, a.thresholds.BuySell, a.thresholds.Strong),
		RawScore:   rawScore,
		Confidence: 1.0,
		Reasoning: fmt.Sprintf(
			"rsi=%.1f momentum_7d=%+.2f%% volume_trend=%s sentiment=%.3f -> score=%.3f",
			rsi, momentum7d, market.VolumeTrend, combinedSentiment, rawScore,
		),
		DataUsed: map[string]string{
			"rsi":          fmt.Sprintf("%.1f", rsi),
			"momentum_7d":  fmt.Sprintf("%+.2f", momentum7d),
			"volume_trend": string(market.VolumeTrend),
			"sentiment":    fmt.Sprintf("%.3f", combinedSentiment),
		},
	}
}

// rsiScore applies the mean-reversion rule: oversold favors a positive
// score, overbought a negative one, and the neutral band interpolates.
func rsiScore(rsi float64) float64 {
	switch {
	case rsi < 30:
		return 1
	case rsi > 70:
		return -1
	default:
		return (50 - rsi) / 50 * 0.5
	}
}

func volumeScore(trend models.VolumeTrend) float64 {
	switch trend {
	case models.VolumeTrendIncreasing:
		return 0.3
	case models.VolumeTrendDecreasing:
		return -0.3
	default:
		return 0
	}
}
