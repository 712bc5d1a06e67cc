package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/errs"
)

// SignalLevel is the 5-level scale produced by individual agents and the
// Predictor's score mapping.
type SignalLevel string

const (
	SignalStrongSell SignalLevel = "STRONG_SELL"
	SignalSell       SignalLevel = "SELL"
	SignalHold       SignalLevel = "HOLD"
	SignalBuy        SignalLevel = "BUY"
	SignalStrongBuy  SignalLevel = "STRONG_BUY"
)

// SignalType is the 3-level scale the Consensus Engine collapses the panel
// onto for the persisted Verdict.
type SignalType string

const (
	SignalTypeBuy  SignalType = "BUY"
	SignalTypeSell SignalType = "SELL"
	SignalTypeHold SignalType = "HOLD"
)

// LevelFromScore maps a raw_score in [-1,1] onto the 5-level scale using the
// tunable thresholds (defaults: +-0.1 buy/sell band, +-0.5 strong band).
func LevelFromScore(score, buySellThreshold, strongThreshold float64) SignalLevel {
	switch {
	case score >= strongThreshold:
		return SignalStrongBuy
	case score >= buySellThreshold:
		return SignalBuy
	case score <= -strongThreshold:
		return SignalStrongSell
	case score <= -buySellThreshold:
		return SignalSell
	default:
		return SignalHold
	}
}

// AgentVerdict is one panel member's opinion for a single request.
type AgentVerdict struct {
	AgentName string            `json:"agent_name"`
	Signal    SignalLevel       `json:"signal"`
	RawScore  float64           `json:"raw_score"`
	Confidence float64          `json:"confidence"`
	Reasoning string            `json:"reasoning"`
	DataUsed  map[string]string `json:"data_used,omitempty"`
	Failed    bool              `json:"failed"`
}

// FailedVerdict builds the canonical failed=true HOLD verdict an agent must
// return when it cannot complete analysis.
func FailedVerdict(agentName, reason string) AgentVerdict {
	return AgentVerdict{
		AgentName:  agentName,
		Signal:     SignalHold,
		RawScore:   0,
		Confidence: 0,
		Reasoning:  "Analysis failed: " + reason,
		Failed:     true,
	}
}

// VerdictStatus is the persisted lifecycle state of a Verdict.
type VerdictStatus string

const (
	StatusPending  VerdictStatus = "PENDING"
	StatusApproved VerdictStatus = "APPROVED"
	StatusExecuted VerdictStatus = "EXECUTED"
	StatusClosed   VerdictStatus = "CLOSED"
)

var allowedTransitions = map[VerdictStatus]VerdictStatus{
	StatusPending:  StatusApproved,
	StatusApproved: StatusExecuted,
	StatusExecuted: StatusClosed,
}

// Verdict is the Consensus Engine's output: one persisted decision per
// request, carrying risk parameters and the full panel for audit.
type Verdict struct {
	ID            uuid.UUID       `json:"id"`
	Ticker        Ticker          `json:"ticker"`
	CreatedAt     time.Time       `json:"created_at"`
	SignalType    SignalType      `json:"signal_type"`
	Confidence    float64         `json:"confidence"`
	EntryPrice    decimal.Decimal `json:"entry_price"`
	StopLoss      decimal.Decimal `json:"stop_loss"`
	TargetPrice   decimal.Decimal `json:"target_price"`
	PositionSize  int64           `json:"position_size"`
	Status        VerdictStatus   `json:"status"`
	AgentVerdicts []AgentVerdict  `json:"agent_verdicts"`
	PnL           decimal.Decimal `json:"pnl,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// verdictJSON mirrors Verdict for marshaling only. decimal.Decimal's zero
// value marshals as "0", so a plain `omitempty` tag on StopLoss/TargetPrice
// never actually omits them; routing through pointers here is what makes a
// HOLD verdict's JSON match spec's "present iff signal_type != HOLD" shape.
type verdictJSON struct {
	ID            uuid.UUID        `json:"id"`
	Ticker        Ticker           `json:"ticker"`
	CreatedAt     time.Time        `json:"created_at"`
	SignalType    SignalType       `json:"signal_type"`
	Confidence    float64          `json:"confidence"`
	EntryPrice    decimal.Decimal  `json:"entry_price"`
	StopLoss      *decimal.Decimal `json:"stop_loss,omitempty"`
	TargetPrice   *decimal.Decimal `json:"target_price,omitempty"`
	PositionSize  int64            `json:"position_size"`
	Status        VerdictStatus    `json:"status"`
	AgentVerdicts []AgentVerdict   `json:"agent_verdicts"`
	PnL           decimal.Decimal  `json:"pnl,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// MarshalJSON omits stop_loss/target_price for HOLD verdicts, which carry no
// risk parameters, instead of serializing them as the zero decimal "0".
func (v Verdict) MarshalJSON() ([]byte, error) {
	out := verdictJSON{
		ID:            v.ID,
		Ticker:        v.Ticker,
		CreatedAt:     v.CreatedAt,
		SignalType:    v.SignalType,
		Confidence:    v.Confidence,
		EntryPrice:    v.EntryPrice,
		PositionSize:  v.PositionSize,
		Status:        v.Status,
		AgentVerdicts: v.AgentVerdicts,
		PnL:           v.PnL,
		Notes:         v.Notes,
	}
	if v.SignalType != SignalTypeHold {
		out.StopLoss = &v.StopLoss
		out.TargetPrice = &v.TargetPrice
	}
	return json.Marshal(out)
}

// NewVerdict constructs a PENDING verdict with a freshly assigned ID.
func NewVerdict(ticker Ticker, signalType SignalType, entryPrice decimal.Decimal, agentVerdicts []AgentVerdict) *Verdict {
	return &Verdict{
		ID:            uuid.New(),
		Ticker:        ticker,
		CreatedAt:     time.Now().UTC(),
		SignalType:    signalType,
		EntryPrice:    entryPrice,
		Status:        StatusPending,
		AgentVerdicts: agentVerdicts,
	}
}

// Transition moves the verdict to newStatus if the move is permitted by the
// linear PENDING->APPROVED->EXECUTED->CLOSED lifecycle.
func (v *Verdict) Transition(newStatus VerdictStatus, pnl *decimal.Decimal, notes string) error {
	next, ok := allowedTransitions[v.Status]
	if !ok || next != newStatus {
		return errs.New(errs.InvalidState, "Verdict.Transition", transitionError(v.Status, newStatus))
	}
	v.Status = newStatus
	if pnl != nil {
		v.PnL = *pnl
	}
	if notes != "" {
		v.Notes = notes
	}
	return nil
}

type transitionErr struct {
	from, to VerdictStatus
}

func transitionError(from, to VerdictStatus) error {
	return &transitionErr{from: from, to: to}
}

func (e *transitionErr) Error() string {
	return "invalid status transition from " + string(e.from) + " to " + string(e.to)
}
