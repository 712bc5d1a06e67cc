package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationMode selects the portfolio-allocation table the Backtest Engine
// applies to a ranked set of Verdicts.
type AllocationMode string

const (
	AllocationCoreFocus   AllocationMode = "CORE_FOCUS"
	AllocationBalanced    AllocationMode = "BALANCED"
	AllocationDiversified AllocationMode = "DIVERSIFIED"
)

// PositionType tags the slot a BacktestTrade was allocated into.
type PositionType string

const (
	PositionCore      PositionType = "CORE"
	PositionSatellite PositionType = "SATELLITE"
	PositionEqual     PositionType = "EQUAL"
)

// TradeResult is WIN or LOSS by realized pnl sign.
type TradeResult string

const (
	ResultWin  TradeResult = "WIN"
	ResultLoss TradeResult = "LOSS"
)

// ExitReason records which of the three exit conditions fired.
type ExitReason string

const (
	ExitStopLoss      ExitReason = "STOP_LOSS"
	ExitTakeProfit    ExitReason = "TAKE_PROFIT"
	ExitHoldPeriodEnd ExitReason = "HOLD_PERIOD_END"
)

// BacktestTrade is one simulated round-trip produced by replaying a source
// Verdict through the hold-period walk.
type BacktestTrade struct {
	VerdictID     uuid.UUID       `json:"verdict_id"`
	Ticker        Ticker          `json:"ticker"`
	EntryDate     time.Time       `json:"entry_date"`
	ExitDate      time.Time       `json:"exit_date"`
	EntryPrice    decimal.Decimal `json:"entry_price"`
	ExitPrice     decimal.Decimal `json:"exit_price"`
	Shares        int64           `json:"shares"`
	PnL           decimal.Decimal `json:"pnl"`
	PnLPct        decimal.Decimal `json:"pnl_pct"`
	Result        TradeResult     `json:"result"`
	ExitReason    ExitReason      `json:"exit_reason"`
	PositionType  PositionType    `json:"position_type"`
	AllocationPct float64         `json:"allocation_pct"`
	// ContributingAgents records which non-failed panel members backed the
	// source Verdict, for per-agent attribution in the report.
	ContributingAgents []string `json:"contributing_agents,omitempty"`
}

// ComputePnL fills PnL and PnLPct from EntryPrice, ExitPrice and Shares, and
// sets Result accordingly.
func (t *BacktestTrade) ComputePnL() {
	sharesDec := decimal.NewFromInt(t.Shares)
	t.PnL = t.ExitPrice.Sub(t.EntryPrice).Mul(sharesDec)
	denom := t.EntryPrice.Mul(sharesDec)
	if denom.IsZero() {
		t.PnLPct = decimal.Zero
	} else {
		t.PnLPct = t.PnL.Div(denom)
	}
	if t.PnL.Sign() >= 0 {
		t.Result = ResultWin
	} else {
		t.Result = ResultLoss
	}
}

// AgentAttribution is one agent's contribution to a backtest's results.
type AgentAttribution struct {
	WinRate float64         `json:"win_rate"`
	AvgPnL  decimal.Decimal `json:"avg_pnl"`
}

// EquityPoint is one day's portfolio value along the backtest's equity curve.
type EquityPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// BacktestPeriod bounds the Verdict selection window.
type BacktestPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BacktestReport is the Backtest Engine's output for one allocation mode.
type BacktestReport struct {
	ID                uuid.UUID                   `json:"id"`
	Mode              AllocationMode              `json:"mode"`
	Period            BacktestPeriod              `json:"period"`
	StartingCapital   decimal.Decimal             `json:"starting_capital"`
	EndingCapital     decimal.Decimal             `json:"ending_capital"`
	ReturnPct         decimal.Decimal             `json:"return_pct"`
	Trades            []BacktestTrade             `json:"trades"`
	WinRate           float64                     `json:"win_rate"`
	Sharpe            float64                     `json:"sharpe"`
	MaxDrawdown       float64                     `json:"max_drawdown"`
	PerAgentAttribution map[string]AgentAttribution `json:"per_agent_attribution"`
	EquityCurve       []EquityPoint               `json:"equity_curve"`
	Warnings          []string                    `json:"warnings,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
}

// NewBacktestReport initializes an empty report shell for mode over period.
func NewBacktestReport(mode AllocationMode, period BacktestPeriod, startingCapital decimal.Decimal) *BacktestReport {
	return &BacktestReport{
		ID:                  uuid.New(),
		Mode:                mode,
		Period:              period,
		StartingCapital:     startingCapital,
		EndingCapital:       startingCapital,
		PerAgentAttribution: make(map[string]AgentAttribution),
		CreatedAt:           time.Now().UTC(),
	}
}

// AllocationSlot describes one rank's share of capital under a mode.
type AllocationSlot struct {
	Rank          int
	AllocationPct float64
	PositionType  PositionType
}

// AllocationTable returns the ordered slots (by rank) and cash reserve for
// mode, per the CORE_FOCUS/BALANCED/DIVERSIFIED table.
func AllocationTable(mode AllocationMode) (slots []AllocationSlot, cashReserve float64) {
	switch mode {
	case AllocationCoreFocus:
		return []AllocationSlot{
			{Rank: 1, AllocationPct: 0.60, PositionType: PositionCore},
			{Rank: 2, AllocationPct: 0.10, PositionType: PositionSatellite},
			{Rank: 3, AllocationPct: 0.10, PositionType: PositionSatellite},
			{Rank: 4, AllocationPct: 0.10, PositionType: PositionSatellite},
		}, 0.10
	case AllocationBalanced:
		return []AllocationSlot{
			{Rank: 1, AllocationPct: 0.40, PositionType: PositionCore},
			{Rank: 2, AllocationPct: 0.125, PositionType: PositionSatellite},
			{Rank: 3, AllocationPct: 0.125, PositionType: PositionSatellite},
			{Rank: 4, AllocationPct: 0.125, PositionType: PositionSatellite},
			{Rank: 5, AllocationPct: 0.125, PositionType: PositionSatellite},
		}, 0.10
	case AllocationDiversified:
		return []AllocationSlot{
			{Rank: 1, AllocationPct: 0.16, PositionType: PositionEqual},
			{Rank: 2, AllocationPct: 0.16, PositionType: PositionEqual},
			{Rank: 3, AllocationPct: 0.16, PositionType: PositionEqual},
			{Rank: 4, AllocationPct: 0.16, PositionType: PositionEqual},
			{Rank: 5, AllocationPct: 0.16, PositionType: PositionEqual},
		}, 0.20
	default:
		return nil, 1.0
	}
}
