package agents

import (
	"context"
	"time"

	"github.com/zurychhh/alpha-machine/models"
	"github.com/zurychhh/alpha-machine/observability"
)

// Panel runs a fixed set of Agents concurrently under one shared deadline
// and collects one AgentVerdict per member.
type Panel struct {
	agents   []Agent
	deadline time.Duration
}

// NewPanel builds a Panel over agents, with deadline as the shared time
// budget for every member (default 30s per spec).
func NewPanel(agents []Agent, deadline time.Duration) *Panel {
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	return &Panel{agents: agents, deadline: deadline}
}

// Agents exposes the panel's configured members, in invocation order.
func (p *Panel) Agents() []Agent { return p.agents }

// Analyze invokes every agent concurrently against the same snapshot pair.
// Any agent still running when the shared deadline elapses is recorded as a
// failed=true HOLD rather than blocking the rest of the panel.
func (p *Panel) Analyze(ctx context.Context, ticker models.Ticker, market models.MarketSnapshot, sentiment models.SentimentSnapshot) []models.AgentVerdict {
	ctx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	verdicts := make([]models.AgentVerdict, len(p.agents))
	results := make(chan struct {
		index   int
		verdict models.AgentVerdict
	}, len(p.agents))

	for i, agent := range p.agents {
		go func(i int, agent Agent) {
			results <- struct {
				index   int
				verdict models.AgentVerdict
			}{i, safeAnalyze(ctx, agent, ticker, market, sentiment)}
		}(i, agent)
	}

	pending := make(map[int]string, len(p.agents))
	for i, agent := range p.agents {
		pending[i] = agent.Name()
	}

	for range p.agents {
		select {
		case r := <-results:
			verdicts[r.index] = r.verdict
			delete(pending, r.index)
		case <-ctx.Done():
			for i, name := range pending {
				observability.WithAgent(name).Warn("panel deadline exceeded, recording failed verdict", "ticker", ticker.String())
				verdicts[i] = models.FailedVerdict(name, "panel deadline exceeded")
			}
			return verdicts
		}
	}

	return verdicts
}

// safeAnalyze enforces the panel's never-panic boundary: a panicking agent
// still yields a failed verdict instead of taking the whole panel down.
func safeAnalyze(ctx context.Context, agent Agent, ticker models.Ticker, market models.MarketSnapshot, sentiment models.SentimentSnapshot) (verdict models.AgentVerdict) {
	defer func() {
		if r := recover(); r != nil {
			observability.WithAgent(agent.Name()).Warn("agent panicked during analysis", "ticker", ticker.String(), "recovered", r)
			verdict = models.FailedVerdict(agent.Name(), "agent panicked during analysis")
		}
	}()
	return agent.Analyze(ctx, ticker, market, sentiment)
}
