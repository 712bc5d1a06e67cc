package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/errs"
)

func TestLevelFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  SignalLevel
	}{
		{0.9, SignalStrongBuy},
		{0.5, SignalStrongBuy},
		{0.3, SignalBuy},
		{0.1, SignalBuy},
		{0.05, SignalHold},
		{0, SignalHold},
		{-0.05, SignalHold},
		{-0.1, SignalSell},
		{-0.3, SignalSell},
		{-0.5, SignalStrongSell},
		{-0.9, SignalStrongSell},
	}
	for _, tt := range tests {
		got := LevelFromScore(tt.score, 0.1, 0.5)
		if got != tt.want {
			t.Errorf("LevelFromScore(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestFailedVerdict(t *testing.T) {
	v := FailedVerdict("contrarian", "timeout calling llm")
	if !v.Failed {
		t.Error("expected Failed=true")
	}
	if v.Signal != SignalHold {
		t.Errorf("expected HOLD signal, got %v", v.Signal)
	}
	if v.Confidence != 0 {
		t.Errorf("expected confidence 0, got %v", v.Confidence)
	}
	if v.Reasoning != "Analysis failed: timeout calling llm" {
		t.Errorf("unexpected reasoning: %q", v.Reasoning)
	}
}

func TestVerdict_Transition(t *testing.T) {
	v := NewVerdict("AAPL", SignalTypeBuy, decimal.NewFromInt(100), nil)

	if err := v.Transition(StatusApproved, nil, ""); err != nil {
		t.Fatalf("PENDING->APPROVED should succeed: %v", err)
	}
	if v.Status != StatusApproved {
		t.Errorf("status = %v, want APPROVED", v.Status)
	}

	if err := v.Transition(StatusExecuted, nil, ""); err != nil {
		t.Fatalf("APPROVED->EXECUTED should succeed: %v", err)
	}

	pnl := decimal.NewFromInt(500)
	if err := v.Transition(StatusClosed, &pnl, "closed manually"); err != nil {
		t.Fatalf("EXECUTED->CLOSED should succeed: %v", err)
	}
	if !v.PnL.Equal(pnl) {
		t.Errorf("pnl = %v, want %v", v.PnL, pnl)
	}
}

func TestVerdict_Transition_Invalid(t *testing.T) {
	v := NewVerdict("AAPL", SignalTypeBuy, decimal.NewFromInt(100), nil)

	err := v.Transition(StatusExecuted, nil, "")
	if err == nil {
		t.Fatal("expected error skipping APPROVED")
	}
	if errs.KindOf(err) != errs.InvalidState {
		t.Errorf("expected InvalidState kind, got %v", errs.KindOf(err))
	}
	if v.Status != StatusPending {
		t.Errorf("status should be unchanged, got %v", v.Status)
	}
}

func TestVerdict_Transition_FromTerminal(t *testing.T) {
	v := NewVerdict("AAPL", SignalTypeBuy, decimal.NewFromInt(100), nil)
	v.Status = StatusClosed

	if err := v.Transition(StatusApproved, nil, ""); err == nil {
		t.Fatal("expected error transitioning out of CLOSED")
	}
}

func TestVerdict_MarshalJSON_HoldOmitsRiskParameters(t *testing.T) {
	v := NewVerdict("AAPL", SignalTypeHold, decimal.NewFromInt(100), nil)

	encoded, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := decoded["stop_loss"]; ok {
		t.Error("expected stop_loss to be omitted for a HOLD verdict")
	}
	if _, ok := decoded["target_price"]; ok {
		t.Error("expected target_price to be omitted for a HOLD verdict")
	}
}

func TestVerdict_MarshalJSON_BuyIncludesRiskParameters(t *testing.T) {
	v := NewVerdict("AAPL", SignalTypeBuy, decimal.NewFromInt(100), nil)
	v.StopLoss = decimal.NewFromInt(95)
	v.TargetPrice = decimal.NewFromInt(110)

	encoded, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := decoded["stop_loss"]; !ok {
		t.Error("expected stop_loss to be present for a BUY verdict")
	}
	if _, ok := decoded["target_price"]; !ok {
		t.Error("expected target_price to be present for a BUY verdict")
	}
}
