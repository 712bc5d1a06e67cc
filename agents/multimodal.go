package agents

import (
	"context"
	"fmt"

	"github.com/zurychhh/alpha-machine/llm"
	"github.com/zurychhh/alpha-machine/models"
)

const multiModalSystemPrompt = `You are a synthesis analyst combining technical indicators with news and
social sentiment into one view.

Rules:
1. When technical and sentiment signals agree, confidence should be high.
2. When they conflict, lower confidence and prefer HOLD.
3. Weigh sustained sentiment (higher mention/article counts) more than a thin sample.

Respond with ONLY a JSON object of the form:
{"recommendation": "BUY" | "SELL" | "HOLD", "confidence": 1-5, "reasoning": "one or two sentences"}`

const multiModalAgentName = "multi-modal"

// MultiModalAgent is the LLM-backed (model C / Bedrock, distinct model ID)
// synthesis agent that additionally receives a text summary of recent
// sentiment volume: per-source mention/article counts, scores and
// availability. No article or post text is included in its prompt.
type MultiModalAgent struct {
	client     llm.Client
	weight     float64
	thresholds Thresholds
}

// NewMultiModalAgent builds a MultiModalAgent. weight defaults to 1.0 when 0.
func NewMultiModalAgent(client llm.Client, weight float64, thresholds Thresholds) *MultiModalAgent {
	if weight == 0 {
		weight = 1.0
	}
	return &MultiModalAgent{client: client, weight: weight, thresholds: thresholds}
}

func (a *MultiModalAgent) Name() string   { return multiModalAgentName }
func (a *MultiModalAgent) Weight() float64 { return a.weight }

func (a *MultiModalAgent) Analyze(ctx context.Context, ticker models.Ticker, market models.MarketSnapshot, sentiment models.SentimentSnapshot) models.AgentVerdict {
	rsi := rsiOrNeutral(market)
	combinedSentiment := sentimentOrZero(sentiment)
	priceChange7d := market.Indicators["price_change_7d"]

	userPrompt := fmt.Sprintf(`Ticker: %s
Current price: %s
RSI: %.1f
7-day price change: %+.2f%%
Volume trend: %s

=== Sentiment snapshot ===
Combined sentiment: %.3f
Reddit: %d mentions, score %.3f, available=%t
News: %d articles, score %.3f, available=%t

Synthesize all of the above and respond with the required JSON.`,
		ticker.String(),
		market.CurrentPrice.String(),
		rsi,
		priceChange7d,
		market.VolumeTrend,
		combinedSentiment,
		sentiment.Reddit.Mentions, sentiment.Reddit.Score, sentiment.Reddit.Available,
		sentiment.News.ArticleCount, sentiment.News.Score, sentiment.News.Available,
	)

	var resp llmResponse
	if err := a.client.InvokeStructured(ctx, multiModalSystemPrompt, userPrompt, &resp); err != nil {
		return models.FailedVerdict(a.Name(), err.Error())
	}
	if err := resp.validate(); err != nil {
		return models.FailedVerdict(a.Name(), "schema violation: "+err.Error())
	}
	return resp.toVerdict(a.Name(), a.thresholds)
}
