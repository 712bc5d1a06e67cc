// Package agents implements the Agent Panel: a fixed set of independent
// analysts that each turn a MarketSnapshot/SentimentSnapshot pair into one
// AgentVerdict, invoked concurrently by Panel.Analyze.
package agents

import (
	"context"

	"github.com/zurychhh/alpha-machine/models"
)

// Agent is the capability every panel member satisfies. Implementations
// must never let an internal error escape Analyze; they convert it to a
// models.FailedVerdict instead.
type Agent interface {
	Name() string
	Weight() float64
	Analyze(ctx context.Context, ticker models.Ticker, market models.MarketSnapshot, sentiment models.SentimentSnapshot) models.AgentVerdict
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// rsiOrNeutral applies the panel's missing-RSI edge case: absent RSI is
// treated as neutral 50, and any present value is clamped to [0,100].
func rsiOrNeutral(market models.MarketSnapshot) float64 {
	rsi, ok := market.RSI()
	if !ok {
		return 50
	}
	return clamp(rsi, 0, 100)
}

// sentimentOrZero applies the panel's missing-sentiment edge case.
func sentimentOrZero(sentiment models.SentimentSnapshot) float64 {
	if !sentiment.CombinedAvailable {
		return 0
	}
	return clamp(sentiment.CombinedSentiment, -1, 1)
}

// recommendationToScore maps an LLM's {BUY,SELL,HOLD} recommendation and
// normalized [0,1] confidence to the +-1/0 raw_score convention shared by
// every LLM-backed agent.
func recommendationToScore(recommendation string, confidence float64) float64 {
	switch recommendation {
	case "BUY":
		return confidence
	case "SELL":
		return -confidence
	default:
		return 0
	}
}
