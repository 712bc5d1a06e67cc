// Package consensus implements the Consensus Engine: it reduces an Agent
// Panel's AgentVerdicts into one persisted Verdict carrying risk parameters
// and a position size.
package consensus

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/models"
)

// Config carries the Consensus Engine's tunable thresholds and risk/sizing
// constants, mirroring config.ConsensusConfig without importing the config
// package directly.
type Config struct {
	BuySellThreshold float64 // default 0.1
	StrongThreshold  float64 // default 0.5
	StopLossPct      float64 // S, default 0.10
	TargetPct        float64 // T1, default 0.25
	Capital          float64 // default 50000
	MaxPositionPct   float64 // default 0.10
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		BuySellThreshold: 0.1,
		StrongThreshold:  0.5,
		StopLossPct:      0.10,
		TargetPct:        0.25,
		Capital:          50000,
		MaxPositionPct:   0.10,
	}
}

// WeightedVerdict pairs a panel member's verdict with its configured panel
// weight, since models.AgentVerdict itself carries no weight.
type WeightedVerdict struct {
	Verdict models.AgentVerdict
	Weight  float64
}

const tieEpsilon = 1e-6

// Synthesize blends a panel's verdicts into one Verdict for ticker at
// entryPrice, per spec §4.3's weighted aggregation, tie-breaking, risk
// parameter, and position sizing rules.
func Synthesize(ticker models.Ticker, entryPrice decimal.Decimal, verdicts []WeightedVerdict, cfg Config) *models.Verdict {
	agentVerdicts := make([]models.AgentVerdict, len(verdicts))
	for i, wv := range verdicts {
		agentVerdicts[i] = wv.Verdict
	}

	blendedScore, agreementRatio, tie := blend(verdicts)

	consensusConfidence := clamp(0.5*math.Abs(blendedScore)+0.5*agreementRatio, 0, 1)

	var signalType models.SignalType
	switch {
	case tie:
		signalType = models.SignalTypeHold
		consensusConfidence = agreementRatio
	case blendedScore >= cfg.BuySellThreshold:
		signalType = models.SignalTypeBuy
	case blendedScore <= -cfg.BuySellThreshold:
		signalType = models.SignalTypeSell
	default:
		signalType = models.SignalTypeHold
	}

	if allFailed(verdicts) {
		signalType = models.SignalTypeHold
		consensusConfidence = 0
	}

	verdict := models.NewVerdict(ticker, signalType, entryPrice, agentVerdicts)
	verdict.Confidence = consensusConfidence

	if signalType != models.SignalTypeHold {
		verdict.StopLoss, verdict.TargetPrice = riskParameters(entryPrice, signalType, cfg)
	}

	verdict.PositionSize = positionSize(entryPrice, signalType, consensusConfidence, cfg)

	return verdict
}

// blend computes blended_score and agreement_ratio over the non-failed
// verdicts, and reports whether the weighted positive/negative mass is a
// true split within tieEpsilon.
func blend(verdicts []WeightedVerdict) (blendedScore, agreementRatio float64, tie bool) {
	var numerator, denominator float64
	var positiveMass, negativeMass float64
	var positive, negative, zero, total int

	for _, wv := range verdicts {
		v := wv.Verdict
		if v.Failed {
			continue
		}
		total++

		contribution := wv.Weight * v.Confidence * v.RawScore
		numerator += contribution
		denominator += wv.Weight * v.Confidence

		switch {
		case v.RawScore > 0:
			positive++
			positiveMass += math.Abs(contribution)
		case v.RawScore < 0:
			negative++
			negativeMass += math.Abs(contribution)
		default:
			zero++
		}
	}

	if denominator > 0 {
		blendedScore = numerator / denominator
	}

	if total > 0 {
		majority := positive
		if negative > majority {
			majority = negative
		}
		if zero > majority {
			majority = zero
		}
		agreementRatio = float64(majority) / float64(total)
	}

	tie = positiveMass > 0 && negativeMass > 0 && math.Abs(positiveMass-negativeMass) < tieEpsilon
	return blendedScore, agreementRatio, tie
}

func allFailed(verdicts []WeightedVerdict) bool {
	for _, wv := range verdicts {
		if !wv.Verdict.Failed {
			return false
		}
	}
	return true
}

// riskParameters computes stop_loss/target_price for a non-HOLD signal.
func riskParameters(entryPrice decimal.Decimal, signalType models.SignalType, cfg Config) (stopLoss, targetPrice decimal.Decimal) {
	stopLossPct := decimal.NewFromFloat(cfg.StopLossPct)
	targetPct := decimal.NewFromFloat(cfg.TargetPct)
	one := decimal.NewFromInt(1)

	if signalType == models.SignalTypeBuy {
		stopLoss = entryPrice.Mul(one.Sub(stopLossPct))
		targetPrice = entryPrice.Mul(one.Add(targetPct))
		return stopLoss, targetPrice
	}

	stopLoss = entryPrice.Mul(one.Add(stopLossPct))
	targetPrice = entryPrice.Mul(one.Sub(targetPct))
	return stopLoss, targetPrice
}

// minShares is the floor applied to any non-HOLD position size, so a
// high-priced ticker or modest confidence never rounds a BUY/SELL down to a
// 0-share position — position_size = 0 iff signal_type = HOLD per spec §4.3.
const minShares = 1

// positionSize is 0 for HOLD or a non-positive entry price, per spec §4.3;
// otherwise it is at least minShares.
func positionSize(entryPrice decimal.Decimal, signalType models.SignalType, consensusConfidence float64, cfg Config) int64 {
	if signalType == models.SignalTypeHold || entryPrice.Sign() <= 0 {
		return 0
	}

	maxPositionValue := decimal.NewFromFloat(cfg.Capital).Mul(decimal.NewFromFloat(cfg.MaxPositionPct))
	scaledValue := maxPositionValue.Mul(decimal.NewFromFloat(consensusConfidence))
	shares := scaledValue.Div(entryPrice).Floor().IntPart()
	if shares < minShares {
		shares = minShares
	}
	return shares
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
