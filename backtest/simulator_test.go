package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/models"
)

type stubPriceSource struct {
	bars []models.Bar
	err  error
}

func (s *stubPriceSource) Bars(ctx context.Context, ticker models.Ticker, from, to time.Time) ([]models.Bar, error) {
	return s.bars, s.err
}

func bar(daysAfter int, low, high, close float64) models.Bar {
	return models.Bar{
		Date:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, daysAfter),
		Low:   decimal.NewFromFloat(low),
		High:  decimal.NewFromFloat(high),
		Close: decimal.NewFromFloat(close),
	}
}

func testAllocation(entry, stop, target float64) Allocation {
	return Allocation{
		Verdict: &models.Verdict{
			Ticker:      "AAPL",
			CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EntryPrice:  decimal.NewFromFloat(entry),
			StopLoss:    decimal.NewFromFloat(stop),
			TargetPrice: decimal.NewFromFloat(target),
			AgentVerdicts: []models.AgentVerdict{
				{AgentName: "predictor", Failed: false},
				{AgentName: "contrarian", Failed: true},
			},
		},
		Shares: 10,
	}
}

func TestSimulateTrade_ExitsOnTakeProfit(t *testing.T) {
	source := &stubPriceSource{bars: []models.Bar{
		bar(0, 98, 102, 100),
		bar(1, 99, 111, 110), // high clears target=110
	}}

	trade, err := SimulateTrade(context.Background(), source, testAllocation(100, 90, 110), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trade.ExitReason != models.ExitTakeProfit {
		t.Errorf("ExitReason = %v, want TAKE_PROFIT", trade.ExitReason)
	}
	if !trade.ExitPrice.Equal(decimal.NewFromFloat(110)) {
		t.Errorf("ExitPrice = %v, want 110", trade.ExitPrice)
	}
	if len(trade.ContributingAgents) != 1 || trade.ContributingAgents[0] != "predictor" {
		t.Errorf("ContributingAgents = %v, want [predictor]", trade.ContributingAgents)
	}
}

func TestSimulateTrade_StopLossWinsOnSameDayTie(t *testing.T) {
	source := &stubPriceSource{bars: []models.Bar{
		bar(0, 85, 115, 100), // low breaches stop=90 AND high clears target=110 same day
	}}

	trade, err := SimulateTrade(context.Background(), source, testAllocation(100, 90, 110), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trade.ExitReason != models.ExitStopLoss {
		t.Errorf("ExitReason = %v, want STOP_LOSS on a same-day tie", trade.ExitReason)
	}
	if !trade.ExitPrice.Equal(decimal.NewFromFloat(90)) {
		t.Errorf("ExitPrice = %v, want 90", trade.ExitPrice)
	}
}

func TestSimulateTrade_HoldPeriodEndExitsAtFinalClose(t *testing.T) {
	source := &stubPriceSource{bars: []models.Bar{
		bar(0, 98, 102, 100),
		bar(1, 97, 103, 101),
	}}

	trade, err := SimulateTrade(context.Background(), source, testAllocation(100, 50, 200), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trade.ExitReason != models.ExitHoldPeriodEnd {
		t.Errorf("ExitReason = %v, want HOLD_PERIOD_END", trade.ExitReason)
	}
	if !trade.ExitPrice.Equal(decimal.NewFromFloat(101)) {
		t.Errorf("ExitPrice = %v, want 101 (final day close)", trade.ExitPrice)
	}
}

func TestSimulateTrade_NoBarsReturnsError(t *testing.T) {
	source := &stubPriceSource{bars: nil}
	_, err := SimulateTrade(context.Background(), source, testAllocation(100, 90, 110), 30)
	if err == nil {
		t.Fatal("expected an error for an empty price series")
	}
}
