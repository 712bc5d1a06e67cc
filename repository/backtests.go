package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/zurychhh/alpha-machine/models"
	"github.com/zurychhh/alpha-machine/observability"
)

// SaveBacktest persists a BacktestReport, serializing its trades, equity
// curve, and per-agent attribution as JSON columns.
func (r *Repository) SaveBacktest(ctx context.Context, report *models.BacktestReport) (uuid.UUID, error) {
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("insert", "backtest_results")

	tradesJSON, err := json.Marshal(report.Trades)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal trades: %w", err)
	}
	equityJSON, err := json.Marshal(report.EquityCurve)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal equity_curve: %w", err)
	}
	attributionJSON, err := json.Marshal(report.PerAgentAttribution)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal per_agent_attribution: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO backtest_results (id, mode, period_start, period_end, starting_capital,
			ending_capital, return_pct, trades, win_rate, sharpe, max_drawdown,
			per_agent_attribution, equity_curve, warnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, report.ID, report.Mode, report.Period.Start, report.Period.End, report.StartingCapital,
		report.EndingCapital, report.ReturnPct, tradesJSON, report.WinRate, report.Sharpe, report.MaxDrawdown,
		attributionJSON, equityJSON, report.Warnings, report.CreatedAt)

	if err != nil {
		metrics.RecordDBError("insert", "backtest_results")
		return uuid.Nil, fmt.Errorf("failed to save backtest report: %w", err)
	}
	return report.ID, nil
}

// LoadBacktest returns a single BacktestReport by ID, or nil if no row matches.
func (r *Repository) LoadBacktest(ctx context.Context, id uuid.UUID) (*models.BacktestReport, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, mode, period_start, period_end, starting_capital, ending_capital, return_pct,
			trades, win_rate, sharpe, max_drawdown, per_agent_attribution, equity_curve, warnings, created_at
		FROM backtest_results WHERE id = $1
	`, id)

	report, err := scanBacktest(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load backtest report: %w", err)
	}
	return report, nil
}

// ListBacktests returns BacktestReports for mode, newest first. An empty
// mode returns reports across all modes.
func (r *Repository) ListBacktests(ctx context.Context, mode models.AllocationMode, limit int) ([]models.BacktestReport, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, mode, period_start, period_end, starting_capital, ending_capital, return_pct,
			trades, win_rate, sharpe, max_drawdown, per_agent_attribution, equity_curve, warnings, created_at
		FROM backtest_results
		WHERE ($1 = '' OR mode = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, mode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest reports: %w", err)
	}
	defer rows.Close()

	var reports []models.BacktestReport
	for rows.Next() {
		report, err := scanBacktest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backtest report: %w", err)
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

func scanBacktest(row pgx.Row) (*models.BacktestReport, error) {
	var report models.BacktestReport
	var tradesJSON, equityJSON, attributionJSON []byte

	err := row.Scan(&report.ID, &report.Mode, &report.Period.Start, &report.Period.End,
		&report.StartingCapital, &report.EndingCapital, &report.ReturnPct,
		&tradesJSON, &report.WinRate, &report.Sharpe, &report.MaxDrawdown,
		&attributionJSON, &equityJSON, &report.Warnings, &report.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(tradesJSON) > 0 {
		if err := json.Unmarshal(tradesJSON, &report.Trades); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trades: %w", err)
		}
	}
	if len(equityJSON) > 0 {
		if err := json.Unmarshal(equityJSON, &report.EquityCurve); err != nil {
			return nil, fmt.Errorf("failed to unmarshal equity_curve: %w", err)
		}
	}
	if len(attributionJSON) > 0 {
		if err := json.Unmarshal(attributionJSON, &report.PerAgentAttribution); err != nil {
			return nil, fmt.Errorf("failed to unmarshal per_agent_attribution: %w", err)
		}
	}

	return &report, nil
}
