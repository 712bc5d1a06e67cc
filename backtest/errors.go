package backtest

import (
	"fmt"

	"github.com/zurychhh/alpha-machine/errs"
	"github.com/zurychhh/alpha-machine/models"
)

func errNoHistoricalData(ticker models.Ticker) error {
	return errs.New(errs.Transient, "backtest.SimulateTrade", fmt.Errorf("no historical prices for %s", ticker))
}

func errEmptySelection() error {
	return errs.New(errs.InvalidState, "backtest.RunBacktest", fmt.Errorf("no verdicts in selection window"))
}
