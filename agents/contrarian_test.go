package agents

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/models"
)

func testMarket(rsi float64) models.MarketSnapshot {
	return models.MarketSnapshot{
		CurrentPrice: decimal.NewFromInt(100),
		Indicators:   map[string]float64{"rsi": rsi, "price_change_7d": 0, "momentum_30d": 0},
		VolumeTrend:  models.VolumeTrendNeutral,
	}
}

func testSentiment(score float64, available bool) models.SentimentSnapshot {
	return models.SentimentSnapshot{
		CombinedSentiment: score,
		CombinedAvailable: available,
	}
}

func TestContrarianAgent_Analyze_Success(t *testing.T) {
	client := &stubLLMClient{resp: llmResponse{Recommendation: "BUY", Confidence: 4, Reasoning: "oversold and fearful"}}
	agent := NewContrarianAgent(client, 1.0, DefaultThresholds())

	verdict := agent.Analyze(context.Background(), "AAPL", testMarket(25), testSentiment(-0.6, true))

	if verdict.Failed {
		t.Fatalf("unexpected failed verdict: %+v", verdict)
	}
	if verdict.RawScore != 0.8 {
		t.Errorf("RawScore = %v, want 0.8", verdict.RawScore)
	}
	if verdict.Signal != models.SignalStrongBuy {
		t.Errorf("Signal = %v, want STRONG_BUY", verdict.Signal)
	}
}

func TestContrarianAgent_Analyze_InvokeError(t *testing.T) {
	client := &stubLLMClient{err: errNope}
	agent := NewContrarianAgent(client, 1.0, DefaultThresholds())

	verdict := agent.Analyze(context.Background(), "AAPL", testMarket(50), testSentiment(0, false))

	if !verdict.Failed {
		t.Error("expected failed verdict on invoke error")
	}
	if verdict.Signal != models.SignalHold {
		t.Errorf("Signal = %v, want HOLD", verdict.Signal)
	}
}

func TestContrarianAgent_Analyze_SchemaViolation(t *testing.T) {
	client := &stubLLMClient{resp: llmResponse{Recommendation: "MAYBE", Confidence: 3}}
	agent := NewContrarianAgent(client, 1.0, DefaultThresholds())

	verdict := agent.Analyze(context.Background(), "AAPL", testMarket(50), testSentiment(0, false))

	if !verdict.Failed {
		t.Error("expected failed verdict on schema violation")
	}
}

func TestContrarianAgent_DefaultWeight(t *testing.T) {
	agent := NewContrarianAgent(&stubLLMClient{}, 0, DefaultThresholds())
	if agent.Weight() != 1.0 {
		t.Errorf("Weight() = %v, want 1.0", agent.Weight())
	}
}
