package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/errs"
	"github.com/zurychhh/alpha-machine/models"
	"github.com/zurychhh/alpha-machine/observability"
)

// SaveVerdict persists a new Verdict along with its embedded panel for audit.
func (r *Repository) SaveVerdict(ctx context.Context, v *models.Verdict) (uuid.UUID, error) {
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("insert", "signals")

	agentVerdictsJSON, err := json.Marshal(v.AgentVerdicts)
	if err != nil {
		metrics.RecordDBError("insert", "signals")
		return uuid.Nil, fmt.Errorf("failed to marshal agent_verdicts: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO signals (id, ticker, created_at, signal_type, confidence, entry_price,
			stop_loss, target_price, position_size, status, agent_verdicts, pnl, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, v.ID, v.Ticker, v.CreatedAt, v.SignalType, v.Confidence, v.EntryPrice,
		v.StopLoss, v.TargetPrice, v.PositionSize, v.Status, agentVerdictsJSON, v.PnL, v.Notes)

	if err != nil {
		metrics.RecordDBError("insert", "signals")
		return uuid.Nil, fmt.Errorf("failed to save verdict: %w", err)
	}

	return v.ID, nil
}

// LoadVerdict returns a single Verdict by ID, or nil if no row matches.
func (r *Repository) LoadVerdict(ctx context.Context, id uuid.UUID) (*models.Verdict, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, ticker, created_at, signal_type, confidence, entry_price,
			stop_loss, target_price, position_size, status, agent_verdicts, pnl, notes
		FROM signals WHERE id = $1
	`, id)

	v, err := scanVerdict(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load verdict: %w", err)
	}
	return v, nil
}

// ListVerdicts returns Verdicts matching filter, newest first.
func (r *Repository) ListVerdicts(ctx context.Context, filter VerdictFilter) ([]models.Verdict, error) {
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "signals")

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, ticker, created_at, signal_type, confidence, entry_price,
			stop_loss, target_price, position_size, status, agent_verdicts, pnl, notes
		FROM signals
		WHERE ($1 = '' OR ticker = $1)
		  AND ($2 = '' OR signal_type = $2)
		  AND ($3 = '' OR status = $3)
		  AND ($4::timestamptz IS NULL OR created_at >= $4)
		  AND ($5::timestamptz IS NULL OR created_at <= $5)
		ORDER BY created_at DESC
		LIMIT $6 OFFSET $7
	`

	var since, until any
	if !filter.WindowStart.IsZero() {
		since = filter.WindowStart
	}
	if !filter.WindowEnd.IsZero() {
		until = filter.WindowEnd
	}

	rows, err := r.db.Query(ctx, query, filter.Ticker, filter.SignalType, filter.Status, since, until, limit, filter.Offset)
	if err != nil {
		metrics.RecordDBError("select", "signals")
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []models.Verdict
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			metrics.RecordDBError("select", "signals")
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		verdicts = append(verdicts, *v)
	}
	return verdicts, nil
}

// UpdateStatus transitions a persisted Verdict's status, recording an
// optional realized pnl and notes, per spec §6.2's update_signal_status.
// The transition itself is enforced by models.Verdict.Transition, which
// rejects any move off the linear PENDING->APPROVED->EXECUTED->CLOSED
// lifecycle (including repeating an already-applied transition) with
// errs.InvalidState; this method never writes a status the domain model
// didn't first validate.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.VerdictStatus, pnl *decimal.Decimal, notes string) (*models.Verdict, error) {
	v, err := r.LoadVerdict(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errs.New(errs.BadInput, "Repository.UpdateStatus", fmt.Errorf("no verdict with id %s", id))
	}

	if err := v.Transition(status, pnl, notes); err != nil {
		return nil, err
	}

	_, err = r.db.Exec(ctx, `
		UPDATE signals SET status = $2, pnl = $3, notes = $4
		WHERE id = $1
	`, id, v.Status, v.PnL, v.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to update verdict status: %w", err)
	}
	return v, nil
}

func scanVerdict(row pgx.Row) (*models.Verdict, error) {
	var v models.Verdict
	var agentVerdictsJSON []byte

	err := row.Scan(&v.ID, &v.Ticker, &v.CreatedAt, &v.SignalType, &v.Confidence, &v.EntryPrice,
		&v.StopLoss, &v.TargetPrice, &v.PositionSize, &v.Status, &agentVerdictsJSON, &v.PnL, &v.Notes)
	if err != nil {
		return nil, err
	}

	if len(agentVerdictsJSON) > 0 {
		if err := json.Unmarshal(agentVerdictsJSON, &v.AgentVerdicts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal agent_verdicts: %w", err)
		}
	}

	return &v, nil
}
