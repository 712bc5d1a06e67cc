package agents

import (
	"context"
	"testing"

	"github.com/zurychhh/alpha-machine/models"
)

func TestMultiModalAgent_Analyze_Success(t *testing.T) {
	client := &stubLLMClient{resp: llmResponse{Recommendation: "SELL", Confidence: 3, Reasoning: "conflicting signals"}}
	agent := NewMultiModalAgent(client, 1.0, DefaultThresholds())

	sentiment := models.SentimentSnapshot{
		CombinedSentiment: -0.2,
		CombinedAvailable: true,
		Reddit:            models.RedditAvailability{Mentions: 30, Score: -0.3, Available: true},
		News:              models.NewsAvailability{ArticleCount: 5, Score: -0.1, Available: true},
	}

	verdict := agent.Analyze(context.Background(), "TSLA", testMarket(72), sentiment)

	if verdict.Failed {
		t.Fatalf("unexpected failed verdict: %+v", verdict)
	}
	if verdict.RawScore != -0.6 {
		t.Errorf("RawScore = %v, want -0.6", verdict.RawScore)
	}
}

func TestMultiModalAgent_Analyze_InvalidJSON(t *testing.T) {
	client := &stubLLMClient{raw: "not json"}
	agent := NewMultiModalAgent(client, 1.0, DefaultThresholds())

	verdict := agent.Analyze(context.Background(), "TSLA", testMarket(50), testSentiment(0, false))

	if !verdict.Failed {
		t.Error("expected failed verdict on invalid JSON")
	}
}
