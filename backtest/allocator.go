package backtest

import (
	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/models"
)

// Allocation is one ranked Verdict's assigned slice of starting capital,
// ready to be handed to the day-by-day simulator.
type Allocation struct {
	Verdict       *models.Verdict
	Rank          int
	Score         float64
	AllocationPct float64
	Dollars       decimal.Decimal
	Shares        int64
	PositionType  models.PositionType
}

// Allocate assigns capital to the top-ranked verdicts per mode's
// CORE_FOCUS/BALANCED/DIVERSIFIED table. Ranked verdicts beyond the table's
// slot count receive no allocation and are not simulated.
func Allocate(ranked []RankedVerdict, capital decimal.Decimal, mode models.AllocationMode) []Allocation {
	slots, _ := models.AllocationTable(mode)

	n := len(slots)
	if len(ranked) < n {
		n = len(ranked)
	}

	allocations := make([]Allocation, 0, n)
	for i := 0; i < n; i++ {
		slot := slots[i]
		rv := ranked[i]

		dollars := capital.Mul(decimal.NewFromFloat(slot.AllocationPct))
		shares := dollars.Div(rv.Verdict.EntryPrice).Floor().IntPart()

		allocations = append(allocations, Allocation{
			Verdict:       rv.Verdict,
			Rank:          slot.Rank,
			Score:         rv.Score,
			AllocationPct: slot.AllocationPct,
			Dollars:       dollars,
			Shares:        shares,
			PositionType:  slot.PositionType,
		})
	}

	return allocations
}
