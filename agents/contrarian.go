package agents

import (
	"context"
	"fmt"

	"github.com/zurychhh/alpha-machine/llm"
	"github.com/zurychhh/alpha-machine/models"
)

const contrarianSystemPrompt = `You are a contrarian value investor. Your edge comes from taking the
opposite side of crowd extremes rather than following them.

Rules:
1. Negative sentiment combined with an oversold RSI (below 30) favors BUY - the crowd is
   fearful and price has likely overshot to the downside.
2. Positive sentiment combined with an overbought RSI (above 70) favors SELL - the crowd is
   greedy and price has likely overshot to the upside.
3. Absent an extreme in both sentiment and RSI, there is nothing to fade; prefer HOLD.

Respond with ONLY a JSON object of the form:
{"recommendation": "BUY" | "SELL" | "HOLD", "confidence": 1-5, "reasoning": "one or two sentences"}`

const contrarianAgentName = "contrarian"

// ContrarianAgent is the LLM-backed (model A / OpenAI) agent applying the
// panel's contrarian rule.
type ContrarianAgent struct {
	client     llm.Client
	weight     float64
	thresholds Thresholds
}

// NewContrarianAgent builds a ContrarianAgent. weight defaults to 1.0 when 0.
func NewContrarianAgent(client llm.Client, weight float64, thresholds Thresholds) *ContrarianAgent {
	if weight == 0 {
		weight = 1.0
	}
	return &ContrarianAgent{client: client, weight: weight, thresholds: thresholds}
}

func (a *ContrarianAgent) Name() string   { return contrarianAgentName }
func (a *ContrarianAgent) Weight() float64 { return a.weight }

func (a *ContrarianAgent) Analyze(ctx context.Context, ticker models.Ticker, market models.MarketSnapshot, sentiment models.SentimentSnapshot) models.AgentVerdict {
	rsi := rsiOrNeutral(market)
	combinedSentiment := sentimentOrZero(sentiment)

	userPrompt := fmt.Sprintf(`Ticker: %s
Current price: %s
RSI: %.1f
Combined sentiment: %.3f
Reddit mentions: %d
News articles: %d

Apply the contrarian rule and respond with the required JSON.`,
		ticker.String(),
		market.CurrentPrice.String(),
		rsi,
		combinedSentiment,
		sentiment.Reddit.Mentions,
		sentiment.News.ArticleCount,
	)

	var resp llmResponse
	if err := a.client.InvokeStructured(ctx, contrarianSystemPrompt, userPrompt, &resp); err != nil {
		return models.FailedVerdict(a.Name(), err.Error())
	}
	if err := resp.validate(); err != nil {
		return models.FailedVerdict(a.Name(), "schema violation: "+err.Error())
	}
	return resp.toVerdict(a.Name(), a.thresholds)
}
