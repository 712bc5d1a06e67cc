package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/models"
)

func verdictAt(ticker models.Ticker, entry, stop, target, confidence float64, createdAt time.Time) *models.Verdict {
	v := buyVerdict(ticker, entry, stop, target, confidence)
	v.CreatedAt = createdAt
	return v
}

func TestEngine_RunBacktest_EmptySelectionIsInvalidState(t *testing.T) {
	engine := NewEngine(&stubPriceSource{}, 30)
	_, err := engine.RunBacktest(context.Background(), nil, models.BacktestPeriod{}, models.AllocationCoreFocus, decimal.NewFromInt(10000))
	if err == nil {
		t.Fatal("expected an error for an empty selection")
	}
}

func TestEngine_RunBacktest_AggregatesSimulatedTrades(t *testing.T) {
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	verdicts := []*models.Verdict{
		verdictAt("AAA", 100, 90, 130, 1.0, createdAt),
		verdictAt("BBB", 50, 45, 60, 0.8, createdAt),
	}

	source := &stubPriceSource{bars: []models.Bar{
		bar(0, 98, 102, 100),
		bar(1, 95, 135, 130), // clears target for both tickers' relative thresholds
	}}

	engine := NewEngine(source, 10)
	report, err := engine.RunBacktest(context.Background(), verdicts, models.BacktestPeriod{Start: createdAt, End: createdAt}, models.AllocationCoreFocus, decimal.NewFromInt(100000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Trades) != 2 {
		t.Fatalf("len(report.Trades) = %d, want 2", len(report.Trades))
	}
}

func TestEngine_RunBacktest_DropsTradeWithNoHistoricalData(t *testing.T) {
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	verdicts := []*models.Verdict{
		verdictAt("AAA", 100, 90, 130, 1.0, createdAt),
	}

	source := &stubPriceSource{bars: nil}

	engine := NewEngine(source, 10)
	report, err := engine.RunBacktest(context.Background(), verdicts, models.BacktestPeriod{}, models.AllocationCoreFocus, decimal.NewFromInt(100000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Trades) != 0 {
		t.Errorf("len(report.Trades) = %d, want 0", len(report.Trades))
	}
	if len(report.Warnings) != 1 {
		t.Errorf("len(report.Warnings) = %d, want 1", len(report.Warnings))
	}
}

func TestEngine_CompareModes_ReturnsAllThreeModes(t *testing.T) {
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	verdicts := []*models.Verdict{
		verdictAt("AAA", 100, 90, 130, 1.0, createdAt),
	}
	source := &stubPriceSource{bars: []models.Bar{bar(0, 95, 135, 130)}}

	engine := NewEngine(source, 10)
	reports, err := engine.CompareModes(context.Background(), verdicts, models.BacktestPeriod{}, decimal.NewFromInt(100000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, mode := range []models.AllocationMode{models.AllocationCoreFocus, models.AllocationBalanced, models.AllocationDiversified} {
		if _, ok := reports[mode]; !ok {
			t.Errorf("missing report for mode %v", mode)
		}
	}
}
