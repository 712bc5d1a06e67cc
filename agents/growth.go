package agents

import (
	"context"
	"fmt"

	"github.com/zurychhh/alpha-machine/llm"
	"github.com/zurychhh/alpha-machine/models"
)

const growthSystemPrompt = `You are a growth and momentum investor. You buy strength and sell weakness.

Rules:
1. Strong positive 30-day momentum combined with positive sentiment favors BUY.
2. Negative momentum favors avoidance - prefer HOLD or SELL even on other positive signals.
3. An overbought RSI (above 70) without a confirming positive volume trend should be skipped
   (prefer HOLD) rather than chased.

Respond with ONLY a JSON object of the form:
{"recommendation": "BUY" | "SELL" | "HOLD", "confidence": 1-5, "reasoning": "one or two sentences"}`

const growthAgentName = "growth"

// GrowthAgent is the LLM-backed (model B / Bedrock) momentum agent.
type GrowthAgent struct {
	client     llm.Client
	weight     float64
	thresholds Thresholds
}

// NewGrowthAgent builds a GrowthAgent. weight defaults to 1.0 when 0.
func NewGrowthAgent(client llm.Client, weight float64, thresholds Thresholds) *GrowthAgent {
	if weight == 0 {
		weight = 1.0
	}
	return &GrowthAgent{client: client, weight: weight, thresholds: thresholds}
}

func (a *GrowthAgent) Name() string   { return growthAgentName }
func (a *GrowthAgent) Weight() float64 { return a.weight }

func (a *GrowthAgent) Analyze(ctx context.Context, ticker models.Ticker, market models.MarketSnapshot, sentiment models.SentimentSnapshot) models.AgentVerdict {
	rsi := rsiOrNeutral(market)
	momentum30d := market.Indicators["momentum_30d"] // absent historical -> zero value, per edge-case policy
	combinedSentiment := sentimentOrZero(sentiment)

	userPrompt := fmt.Sprintf(`Ticker: %s
Current price: %s
RSI: %.1f
30-day momentum: %+.2f%%
Volume trend: %s
Combined sentiment: %.3f

Apply the growth/momentum rule and respond with the required JSON.`,
		ticker.String(),
		market.CurrentPrice.String(),
		rsi,
		momentum30d,
		market.VolumeTrend,
		combinedSentiment,
	)

	var resp llmResponse
	if err := a.client.InvokeStructured(ctx, growthSystemPrompt, userPrompt, &resp); err != nil {
		return models.FailedVerdict(a.Name(), err.Error())
	}
	if err := resp.validate(); err != nil {
		return models.FailedVerdict(a.Name(), "schema violation: "+err.Error())
	}
	return resp.toVerdict(a.Name(), a.thresholds)
}
