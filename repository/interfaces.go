package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/models"
)

// VerdictFilter narrows ListVerdicts per the persistence boundary's
// {ticker?, type?, status?, window?, limit, offset} contract (spec §6.2's
// list_signals). A zero field means "unfiltered" on that dimension.
type VerdictFilter struct {
	Ticker       models.Ticker
	SignalType   models.SignalType
	Status       models.VerdictStatus
	WindowStart  time.Time
	WindowEnd    time.Time
	Limit        int
	Offset       int
}

// RepositoryInterface is the persistence boundary spec §6.1 names: Verdict
// and BacktestReport CRUD plus the status-transition operation, independent
// of the concrete SQL store.
type RepositoryInterface interface {
	Close()
	Health(ctx context.Context) error

	SaveVerdict(ctx context.Context, v *models.Verdict) (uuid.UUID, error)
	LoadVerdict(ctx context.Context, id uuid.UUID) (*models.Verdict, error)
	ListVerdicts(ctx context.Context, filter VerdictFilter) ([]models.Verdict, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.VerdictStatus, pnl *decimal.Decimal, notes string) (*models.Verdict, error)

	SaveBacktest(ctx context.Context, r *models.BacktestReport) (uuid.UUID, error)
	LoadBacktest(ctx context.Context, id uuid.UUID) (*models.BacktestReport, error)
	ListBacktests(ctx context.Context, mode models.AllocationMode, limit int) ([]models.BacktestReport, error)
}

var _ RepositoryInterface = (*Repository)(nil)
