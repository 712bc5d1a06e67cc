package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/consensus"
	"github.com/zurychhh/alpha-machine/models"
	"github.com/zurychhh/alpha-machine/observability"
	"github.com/zurychhh/alpha-machine/repository"
)

// generateSignal runs the generate_signal pipeline for a single ticker:
// snapshot, panel analysis, consensus synthesis, and persistence if a
// repository is wired. Shared by runGenerateSignal and runGenerateBatch.
func generateSignal(ctx context.Context, eng *engine, ticker string) (*models.Verdict, error) {
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	metrics.RecordSignalRequest(ticker)

	market, sentiment, err := eng.aggregator.SnapshotTicker(ctx, ticker)
	if err != nil {
		timer.ObserveSignal(ticker, "error")
		metrics.RecordSignalError(ticker, "bad_input")
		return nil, err
	}
	if !market.HasPrice {
		timer.ObserveSignal(ticker, "error")
		metrics.RecordSignalError(ticker, "unavailable")
		return nil, fmt.Errorf("no market provider returned a price for %s", market.Ticker)
	}

	agentVerdicts := eng.panel.Analyze(ctx, market.Ticker, market, sentiment)

	weighted := make([]consensus.WeightedVerdict, len(agentVerdicts))
	for i, av := range agentVerdicts {
		weight := 1.0
		for _, member := range eng.panel.Agents() {
			if member.Name() == av.AgentName {
				weight = member.Weight()
				break
			}
		}
		weighted[i] = consensus.WeightedVerdict{Verdict: av, Weight: weight}
	}

	cfg := consensus.Config{
		BuySellThreshold: eng.cfg.Consensus.BuySellThreshold,
		StrongThreshold:  eng.cfg.Consensus.StrongThreshold,
		StopLossPct:      eng.cfg.Consensus.StopLossPct,
		TargetPct:        eng.cfg.Consensus.TargetPct,
		Capital:          eng.cfg.Consensus.Capital,
		MaxPositionPct:   eng.cfg.Consensus.MaxPositionPct,
	}
	verdict := consensus.Synthesize(market.Ticker, market.CurrentPrice, weighted, cfg)

	metrics.RecordVerdict(string(verdict.SignalType), verdict.Confidence)
	for _, av := range agentVerdicts {
		metrics.RecordAgentScore(av.AgentName, av.RawScore)
		if av.Failed {
			metrics.RecordAgentError(av.AgentName, "failed")
		}
	}

	if eng.repo != nil {
		if _, err := eng.repo.SaveVerdict(ctx, verdict); err != nil {
			observability.WithContext(ctx).Warn("failed to persist verdict", "ticker", market.Ticker.String(), "error", err)
		}
	}

	timer.ObserveSignal(ticker, "ok")
	return verdict, nil
}

// runGenerateSignal implements the generate_signal operation.
func runGenerateSignal(ctx context.Context, eng *engine, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: generate-signal <TICKER>")
	}

	verdict, err := generateSignal(ctx, eng, args[0])
	if err != nil {
		return err
	}
	return printJSON(verdict)
}

// runGenerateBatch implements the generate_batch operation: runs
// generate_signal for each ticker in turn and prints the resulting Verdict
// slice as JSON. A ticker that fails is logged and skipped rather than aborting the
// whole batch, so one bad symbol doesn't sink the rest of the list.
func runGenerateBatch(ctx context.Context, eng *engine, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: generate-batch <TICKER> [TICKER...]")
	}

	verdicts := make([]*models.Verdict, 0, len(args))
	for _, ticker := range args {
		verdict, err := generateSignal(ctx, eng, ticker)
		if err != nil {
			observability.Warn("generate_batch: skipping ticker", "ticker", ticker, "error", err)
			continue
		}
		verdicts = append(verdicts, verdict)
	}

	return printJSON(verdicts)
}

// runGetSignal implements the get_signal operation.
func runGetSignal(ctx context.Context, eng *engine, args []string) error {
	if eng.repo == nil {
		return fmt.Errorf("no database configured, cannot get signal")
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: get-signal <ID>")
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid verdict id: %w", err)
	}

	verdict, err := eng.repo.LoadVerdict(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(verdict)
}

// runListSignals implements the list_signals operation.
func runListSignals(ctx context.Context, eng *engine, args []string) error {
	if eng.repo == nil {
		return fmt.Errorf("no database configured, cannot list signals")
	}

	filter := repository.VerdictFilter{Limit: 50}
	if len(args) > 0 && args[0] != "-" {
		filter.Ticker = models.Ticker(args[0])
	}
	if len(args) > 1 && args[1] != "-" {
		filter.Status = models.VerdictStatus(args[1])
	}
	if len(args) > 2 {
		if limit, err := strconv.Atoi(args[2]); err == nil {
			filter.Limit = limit
		}
	}

	verdicts, err := eng.repo.ListVerdicts(ctx, filter)
	if err != nil {
		return err
	}
	return printJSON(verdicts)
}

// runUpdateStatus implements the update_signal_status operation. The
// repository enforces the lifecycle transition (models.Verdict.Transition)
// and returns errs.InvalidState for an illegal or already-applied move; that
// error surfaces here unchanged rather than being swallowed.
func runUpdateStatus(ctx context.Context, eng *engine, args []string) error {
	if eng.repo == nil {
		return fmt.Errorf("no database configured, cannot update signal status")
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: update-status <ID> <STATUS> [PNL] [NOTES]")
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid verdict id: %w", err)
	}
	status := models.VerdictStatus(args[1])

	var pnl *decimal.Decimal
	if len(args) > 2 {
		parsed, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("invalid pnl: %w", err)
		}
		pnl = &parsed
	}
	var notes string
	if len(args) > 3 {
		notes = args[3]
	}

	verdict, err := eng.repo.UpdateStatus(ctx, id, status, pnl, notes)
	if err != nil {
		return err
	}
	return printJSON(verdict)
}

// loadVerdictsForBacktest selects the persisted BUY verdicts within the
// trailing lookbackDays window; selection is the caller's responsibility per
// the Backtest Engine's contract (it ranks/allocates/simulates only).
func loadVerdictsForBacktest(ctx context.Context, eng *engine, lookbackDays int) ([]*models.Verdict, models.BacktestPeriod, error) {
	if eng.repo == nil {
		return nil, models.BacktestPeriod{}, fmt.Errorf("no database configured, cannot select verdicts for backtest")
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)

	verdicts, err := eng.repo.ListVerdicts(ctx, repository.VerdictFilter{
		SignalType:  models.SignalTypeBuy,
		WindowStart: start,
		WindowEnd:   end,
		Limit:       1000,
	})
	if err != nil {
		return nil, models.BacktestPeriod{}, err
	}

	selected := make([]*models.Verdict, len(verdicts))
	for i := range verdicts {
		selected[i] = &verdicts[i]
	}
	return selected, models.BacktestPeriod{Start: start, End: end}, nil
}

// runBacktest implements the run_backtest operation.
func runBacktest(ctx context.Context, eng *engine, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: run-backtest <MODE> <LOOKBACK_DAYS> <CAPITAL>")
	}

	mode := models.AllocationMode(args[0])
	lookbackDays, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid lookback days: %w", err)
	}
	capital, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("invalid capital: %w", err)
	}

	verdicts, period, err := loadVerdictsForBacktest(ctx, eng, lookbackDays)
	if err != nil {
		return err
	}

	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()

	report, err := eng.backtest.engine.RunBacktest(ctx, verdicts, period, mode, capital)
	if err != nil {
		return err
	}
	metrics.RecordBacktestRun(string(mode), timer.Duration(), len(report.Trades))

	if eng.repo != nil {
		if _, err := eng.repo.SaveBacktest(ctx, report); err != nil {
			observability.Warn("failed to persist backtest report", "mode", mode, "error", err)
		}
	}

	return printJSON(report)
}

// runCompareBacktest implements the compare_backtest_modes operation.
func runCompareBacktest(ctx context.Context, eng *engine, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: compare-backtest <LOOKBACK_DAYS> <CAPITAL>")
	}

	lookbackDays, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid lookback days: %w", err)
	}
	capital, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid capital: %w", err)
	}

	verdicts, period, err := loadVerdictsForBacktest(ctx, eng, lookbackDays)
	if err != nil {
		return err
	}

	reports, err := eng.backtest.engine.CompareModes(ctx, verdicts, period, capital)
	if err != nil {
		return err
	}

	if eng.repo != nil {
		for _, report := range reports {
			if _, err := eng.repo.SaveBacktest(ctx, report); err != nil {
				observability.Warn("failed to persist backtest report", "mode", report.Mode, "error", err)
			}
		}
	}

	return printJSON(reports)
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
