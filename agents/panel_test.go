package agents

import (
	"context"
	"testing"
	"time"

	"github.com/zurychhh/alpha-machine/models"
)

type stubAgent struct {
	name    string
	weight  float64
	verdict models.AgentVerdict
	delay   time.Duration
	panics  bool
}

func (a *stubAgent) Name() string   { return a.name }
func (a *stubAgent) Weight() float64 { return a.weight }

func (a *stubAgent) Analyze(ctx context.Context, ticker models.Ticker, market models.MarketSnapshot, sentiment models.SentimentSnapshot) models.AgentVerdict {
	if a.panics {
		panic("boom")
	}
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
		}
	}
	return a.verdict
}

func TestPanel_Analyze_AllSucceed(t *testing.T) {
	a1 := &stubAgent{name: "a", weight: 1, verdict: models.AgentVerdict{AgentName: "a", Signal: models.SignalBuy}}
	a2 := &stubAgent{name: "b", weight: 1, verdict: models.AgentVerdict{AgentName: "b", Signal: models.SignalSell}}

	panel := NewPanel([]Agent{a1, a2}, time.Second)
	verdicts := panel.Analyze(context.Background(), "AAPL", models.MarketSnapshot{}, models.SentimentSnapshot{})

	if len(verdicts) != 2 {
		t.Fatalf("len(verdicts) = %d, want 2", len(verdicts))
	}
	if verdicts[0].AgentName != "a" || verdicts[1].AgentName != "b" {
		t.Errorf("verdicts not in agent order: %+v", verdicts)
	}
}

func TestPanel_Analyze_DeadlineExceeded(t *testing.T) {
	fast := &stubAgent{name: "fast", weight: 1, verdict: models.AgentVerdict{AgentName: "fast", Signal: models.SignalBuy}}
	slow := &stubAgent{name: "slow", weight: 1, delay: time.Second}

	panel := NewPanel([]Agent{fast, slow}, 20*time.Millisecond)
	verdicts := panel.Analyze(context.Background(), "AAPL", models.MarketSnapshot{}, models.SentimentSnapshot{})

	if !verdicts[1].Failed {
		t.Errorf("expected slow agent to be marked failed on deadline, got %+v", verdicts[1])
	}
}

func TestPanel_Analyze_AgentPanics(t *testing.T) {
	panicker := &stubAgent{name: "panicker", weight: 1, panics: true}
	panel := NewPanel([]Agent{panicker}, time.Second)

	verdicts := panel.Analyze(context.Background(), "AAPL", models.MarketSnapshot{}, models.SentimentSnapshot{})

	if !verdicts[0].Failed {
		t.Errorf("expected panicking agent to yield a failed verdict, got %+v", verdicts[0])
	}
}

func TestPanel_Analyze_DefaultDeadline(t *testing.T) {
	panel := NewPanel(nil, 0)
	if panel.deadline != 30*time.Second {
		t.Errorf("deadline = %v, want 30s default", panel.deadline)
	}
}
