// Command signalengine is the engine's CLI entrypoint: it wires the Data
// Aggregator, Agent Panel, Consensus Engine, Backtest Engine, and the
// persistence boundary, then dispatches a single operation named on the
// command line.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/zurychhh/alpha-machine/config"
	"github.com/zurychhh/alpha-machine/observability"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	observability.InitLogger(os.Getenv("ENV") == "production")
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	eng := buildEngine(ctx, cfg)
	if eng.repo != nil {
		defer eng.repo.Close()
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var cmdErr error
	switch cmd {
	case "generate-signal":
		cmdErr = runGenerateSignal(ctx, eng, args)
	case "generate-batch":
		cmdErr = runGenerateBatch(ctx, eng, args)
	case "get-signal":
		cmdErr = runGetSignal(ctx, eng, args)
	case "list-signals":
		cmdErr = runListSignals(ctx, eng, args)
	case "update-status":
		cmdErr = runUpdateStatus(ctx, eng, args)
	case "run-backtest":
		cmdErr = runBacktest(ctx, eng, args)
	case "compare-backtest":
		cmdErr = runCompareBacktest(ctx, eng, args)
	default:
		printUsage()
		os.Exit(1)
	}

	if cmdErr != nil {
		observability.Error("command failed", "command", cmd, "error", cmdErr)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: signalengine <command> [args]

commands:
  generate-signal <TICKER>
  generate-batch <TICKER> [TICKER...]
  get-signal <ID>
  list-signals [TICKER] [STATUS] [LIMIT]
  update-status <ID> <STATUS> [PNL] [NOTES]
  run-backtest <MODE> <LOOKBACK_DAYS> <CAPITAL>
  compare-backtest <LOOKBACK_DAYS> <CAPITAL>`)
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
