package agents

import (
	"fmt"

	"github.com/zurychhh/alpha-machine/models"
)

// llmResponse is the strict JSON schema every LLM-backed agent in this
// panel asks its model for.
type llmResponse struct {
	Recommendation string `json:"recommendation"`
	Confidence     int    `json:"confidence"`
	Reasoning      string `json:"reasoning"`
}

func (r llmResponse) validate() error {
	switch r.Recommendation {
	case "BUY", "SELL", "HOLD":
	default:
		return fmt.Errorf("unrecognized recommendation %q", r.Recommendation)
	}
	if r.Confidence < 1 || r.Confidence > 5 {
		return fmt.Errorf("confidence %d out of range 1..5", r.Confidence)
	}
	return nil
}

// toVerdict converts a validated response to an AgentVerdict, normalizing
// confidence to [0,1] and deriving raw_score per the panel's +1/-1/0
// recommendation convention.
func (r llmResponse) toVerdict(agentName string, thresholds Thresholds) models.AgentVerdict {
	confidence := clamp(float64(r.Confidence)/5, 0, 1)
	rawScore := recommendationToScore(r.Recommendation, confidence)
	return models.AgentVerdict{
		AgentName:  agentName,
		Signal:     models.LevelFromScore(rawScore, thresholds.BuySell, thresholds.Strong),
		RawScore:   rawScore,
		Confidence: confidence,
		Reasoning:  r.Reasoning,
	}
}

// Thresholds carries the score-to-level mapping every agent and the
// Consensus Engine share, so a Predictor verdict and an LLM verdict land on
// the same 5-level scale under the same defaults.
type Thresholds struct {
	BuySell float64
	Strong  float64
}

// DefaultThresholds returns the spec's default +-0.1/+-0.5 bands.
func DefaultThresholds() Thresholds {
	return Thresholds{BuySell: 0.1, Strong: 0.5}
}
